package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"replycast/pkg/converter"
	"replycast/pkg/message"
	"replycast/pkg/ui/report"
)

var (
	renderChannel  string
	renderKind     string
	renderInput    string
	renderFallback bool
	renderPretty   bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one element for a channel",
	Long:  "Reads a canonical element as JSON from --input (or stdin) and prints the channel payload.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime("cmd.render")
		if err != nil {
			return err
		}

		raw, err := readElement(cmd.InOrStdin(), renderInput)
		if err != nil {
			return err
		}

		kind, ok := message.ParseKind(renderKind)
		if !ok {
			return fmt.Errorf("unknown kind %q (want one of %v)", renderKind, message.Kinds())
		}

		err = renderElement(cmd.OutOrStdout(), rt.factory, kind, renderChannel, raw, renderPretty)
		if err == nil {
			return nil
		}

		rt.log.Warn("Render failed", "channel", renderChannel, "kind", string(kind), "category", message.CategoryFromError(err))
		if !renderFallback {
			fmt.Fprintln(cmd.ErrOrStderr(), report.Error(err))
			return err
		}

		text, fallbackErr := converter.PlainText(kind, raw)
		if fallbackErr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), report.Error(err))
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderChannel, "channel", "c", "", "target channel (slack, telegram, messenger, whatsapp, hangouts, msteams, ...)")
	renderCmd.Flags().StringVarP(&renderKind, "kind", "k", "", "content kind (link, image, video, button, dropdown)")
	renderCmd.Flags().StringVarP(&renderInput, "input", "i", "-", "element JSON file, or - for stdin")
	renderCmd.Flags().BoolVar(&renderFallback, "fallback", false, "print plain text instead of failing")
	renderCmd.Flags().BoolVar(&renderPretty, "pretty", false, "indent the payload")
	_ = renderCmd.MarkFlagRequired("channel")
	_ = renderCmd.MarkFlagRequired("kind")
}

func readElement(stdin io.Reader, path string) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read element: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse element: %w", err)
	}

	return raw, nil
}

func renderElement(w io.Writer, factory *converter.Factory, kind message.Kind, channel string, raw any, pretty bool) error {
	payload, err := factory.Convert(kind, channel, raw)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	return nil
}
