package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"replycast/pkg/bus"
)

const maxRequestLine = 4 << 20

var (
	batchInput    string
	batchWorkers  int
	batchFallback bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Render a stream of requests concurrently",
	Long: `Reads one JSON render request per line ({"id","channel","kind","element"})
and writes one JSON result per line in the same order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime("cmd.batch")
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if batchInput != "" && batchInput != "-" {
			file, err := os.Open(batchInput)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer file.Close()
			in = file
		}

		reqs, err := readRequests(in)
		if err != nil {
			return err
		}

		opts := bus.PoolOptions{
			Workers:  rt.cfg.Batch.Workers,
			Fallback: rt.cfg.Batch.FallbackPlainText,
			Logger:   slog.Default(),
		}
		if cmd.Flags().Changed("workers") {
			opts.Workers = batchWorkers
		}
		if cmd.Flags().Changed("fallback") {
			opts.Fallback = batchFallback
		}

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		results, err := runBatch(runCtx, bus.NewPool(rt.factory, opts), reqs, rt.log)
		if err != nil {
			return err
		}

		return writeResults(cmd.OutOrStdout(), results)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "-", "JSON lines file, or - for stdin")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "concurrent workers (default from config)")
	batchCmd.Flags().BoolVar(&batchFallback, "fallback", false, "attach a plain-text rendering to failed results")
}

func readRequests(r io.Reader) ([]bus.RenderRequest, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestLine)

	var reqs []bus.RenderRequest
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var req bus.RenderRequest
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return nil, fmt.Errorf("line %d: parse request: %w", line, err)
		}
		reqs = append(reqs, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}

	return reqs, nil
}

func runBatch(ctx context.Context, pool *bus.Pool, reqs []bus.RenderRequest, log *slog.Logger) ([]bus.RenderResult, error) {
	mb := bus.NewMessageBus()
	events, unsubscribe := mb.SubscribeEvents(ctx, 0)
	defer unsubscribe()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for event := range events {
			if event.Type == bus.EventRenderFailed {
				log.Debug("Request failed", "request_id", event.RequestID, "channel", event.Channel, "kind", string(event.Kind), "fallback", event.Fallback)
			}
		}
	}()

	results, err := pool.RenderAllOn(ctx, mb, reqs)
	<-drained
	if err != nil {
		return nil, err
	}

	failures := 0
	for _, result := range results {
		if !result.OK() {
			failures++
		}
	}

	log.Info("Batch complete", "requests", len(reqs), "failed", failures, "workers", pool.Workers())
	return results, nil
}

func writeResults(w io.Writer, results []bus.RenderResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, result := range results {
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	return nil
}
