package bus

import (
	"replycast/pkg/message"
)

// RenderRequest asks for one canonical element to be rendered for a channel.
type RenderRequest struct {
	ID       string            `json:"id,omitempty"`
	Channel  string            `json:"channel"`
	Kind     message.Kind      `json:"kind"`
	Element  any               `json:"element"`
	Metadata map[string]string `json:"metadata,omitempty"`

	seq int
}

// RenderResult carries the payload, or the failure, for one request. When
// fallback is enabled a failed request also carries its plain-text rendering.
type RenderResult struct {
	ID       string            `json:"id"`
	Channel  string            `json:"channel"`
	Kind     message.Kind      `json:"kind"`
	Payload  message.Payload   `json:"payload,omitempty"`
	Fallback string            `json:"fallback,omitempty"`
	Error    string            `json:"error,omitempty"`
	Category string            `json:"category,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`

	seq int
}

// OK reports whether the request produced a channel payload.
func (r RenderResult) OK() bool {
	return r.Error == ""
}
