package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"replycast/pkg/config"
	"replycast/pkg/converter"
	"replycast/pkg/logger"
	"replycast/pkg/template"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "replycast",
	Short: "Render channel-agnostic bot replies into channel payloads",
	Long: `replycast turns one description of a rich bot reply (link, image, video,
buttons, dropdown) into the exact payload Slack, Telegram, Messenger, WhatsApp,
Google Chat or Microsoft Teams expects.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every command needs after startup.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	factory *converter.Factory
}

func loadRuntime(component string) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	slog.SetDefault(appLogger)

	registry, err := loadRegistry(cfg.Templates)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     slog.Default().With("component", component),
		factory: converter.NewFactory(registry, appLogger),
	}, nil
}

func loadRegistry(cfg config.TemplatesConfig) (*template.Registry, error) {
	if cfg.Path == "" {
		registry, err := template.Default()
		if err != nil {
			return nil, fmt.Errorf("load embedded templates: %w", err)
		}
		return registry, nil
	}

	registry, err := template.LoadFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	return registry, nil
}
