package bus

import (
	"context"
	"sync"
)

const defaultBufferSize = 100

// MessageBus moves render requests to workers and results back to the
// collector. Both queues are bounded; publishers block until space frees up,
// the context ends, or the bus closes.
type MessageBus struct {
	requests chan RenderRequest
	results  chan RenderResult

	eventSubscribers      map[uint64]chan Event
	nextEventSubscriberID uint64

	done      chan struct{}
	closeOnce sync.Once

	mu sync.RWMutex
}

func NewMessageBus() *MessageBus {
	return &MessageBus{
		requests:         make(chan RenderRequest, defaultBufferSize),
		results:          make(chan RenderResult, defaultBufferSize),
		eventSubscribers: make(map[uint64]chan Event),
		done:             make(chan struct{}),
	}
}

func (mb *MessageBus) PublishRequest(ctx context.Context, req RenderRequest) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-ctx.Done():
		return false
	case <-mb.done:
		return false
	default:
	}

	select {
	case <-ctx.Done():
		return false
	case <-mb.done:
		return false
	case mb.requests <- req:
		return true
	}
}

func (mb *MessageBus) ConsumeRequest(ctx context.Context) (RenderRequest, bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-ctx.Done():
		return RenderRequest{}, false
	case <-mb.done:
		return RenderRequest{}, false
	case req := <-mb.requests:
		return req, true
	}
}

func (mb *MessageBus) PublishResult(ctx context.Context, result RenderResult) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-ctx.Done():
		return false
	case <-mb.done:
		return false
	default:
	}

	select {
	case <-ctx.Done():
		return false
	case <-mb.done:
		return false
	case mb.results <- result:
		return true
	}
}

func (mb *MessageBus) ConsumeResult(ctx context.Context) (RenderResult, bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-ctx.Done():
		return RenderResult{}, false
	case <-mb.done:
		return RenderResult{}, false
	case result := <-mb.results:
		return result, true
	}
}

func (mb *MessageBus) Close() {
	mb.closeOnce.Do(func() {
		close(mb.done)

		mb.mu.Lock()
		for id, ch := range mb.eventSubscribers {
			close(ch)
			delete(mb.eventSubscribers, id)
		}
		mb.mu.Unlock()
	})
}
