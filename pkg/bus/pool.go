package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"replycast/pkg/converter"
	"replycast/pkg/message"
)

const defaultWorkers = 4

// Converter renders one element for a channel. *converter.Factory
// satisfies it.
type Converter interface {
	Convert(kind message.Kind, channel string, raw any) (message.Payload, error)
}

// PoolOptions configures a Pool.
type PoolOptions struct {
	Workers  int
	Fallback bool
	Logger   *slog.Logger
}

// Pool renders batches of requests on a fixed number of workers.
type Pool struct {
	converter Converter
	workers   int
	fallback  bool
	log       *slog.Logger
}

func NewPool(conv Converter, opts PoolOptions) *Pool {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Pool{
		converter: conv,
		workers:   workers,
		fallback:  opts.Fallback,
		log:       log.With("component", "bus.pool"),
	}
}

// Workers returns the number of concurrent workers.
func (p *Pool) Workers() int {
	return p.workers
}

// Serve runs the workers against mb until ctx ends or mb closes.
func (p *Pool) Serve(ctx context.Context, mb *MessageBus) {
	var wg sync.WaitGroup
	for range p.workers {
		wg.Go(func() {
			for {
				req, ok := mb.ConsumeRequest(ctx)
				if !ok {
					return
				}

				mb.PublishEvent(ctx, Event{Type: EventRenderStarted, Channel: req.Channel, Kind: req.Kind, RequestID: req.ID})

				result := p.Render(req)
				event := Event{Type: EventRenderCompleted, Channel: req.Channel, Kind: req.Kind, RequestID: req.ID}
				if !result.OK() {
					event.Type = EventRenderFailed
					event.Error = result.Error
					event.Fallback = result.Fallback != ""
				}
				mb.PublishEvent(ctx, event)

				if !mb.PublishResult(ctx, result) {
					return
				}
			}
		})
	}

	wg.Wait()
}

// RenderAll renders reqs concurrently and returns results in input order.
// Requests without an id get a generated one. If ctx ends first, the results
// rendered so far are discarded and ctx's error is returned.
func (p *Pool) RenderAll(ctx context.Context, reqs []RenderRequest) ([]RenderResult, error) {
	return p.RenderAllOn(ctx, NewMessageBus(), reqs)
}

// RenderAllOn is RenderAll over a caller-owned bus, so observers can
// subscribe to its events first. The bus is closed on return.
func (p *Pool) RenderAllOn(ctx context.Context, mb *MessageBus, reqs []RenderRequest) ([]RenderResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	defer mb.Close()

	if len(reqs) == 0 {
		return nil, nil
	}

	served := make(chan struct{})
	go func() {
		defer close(served)
		p.Serve(ctx, mb)
	}()

	go func() {
		for i, req := range reqs {
			if req.ID == "" {
				req.ID = uuid.NewString()
			}
			req.seq = i
			if !mb.PublishRequest(ctx, req) {
				return
			}
		}
	}()

	results := make([]RenderResult, len(reqs))
	for received := 0; received < len(reqs); received++ {
		result, ok := mb.ConsumeResult(ctx)
		if !ok {
			mb.Close()
			<-served
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("render batch: %w", err)
			}
			return nil, fmt.Errorf("render batch: bus closed after %d of %d results", received, len(reqs))
		}
		results[result.seq] = result
	}

	mb.Close()
	<-served

	p.log.Debug("Batch rendered", "requests", len(reqs), "workers", p.workers)
	return results, nil
}

// Render converts a single request. Failures are reported in the result.
func (p *Pool) Render(req RenderRequest) RenderResult {
	result := RenderResult{
		ID:       req.ID,
		Channel:  req.Channel,
		Kind:     req.Kind,
		Metadata: req.Metadata,
		seq:      req.seq,
	}

	payload, err := p.converter.Convert(req.Kind, req.Channel, req.Element)
	if err == nil {
		result.Payload = payload
		return result
	}

	result.Error = err.Error()
	result.Category = message.CategoryFromError(err)
	p.log.Warn("Render failed", "request_id", req.ID, "channel", req.Channel, "kind", string(req.Kind), "category", result.Category)

	if p.fallback {
		text, fallbackErr := converter.PlainText(req.Kind, req.Element)
		if fallbackErr != nil {
			p.log.Debug("Plain text fallback failed", "request_id", req.ID, "error", fallbackErr)
		} else {
			result.Fallback = text
		}
	}

	return result
}
