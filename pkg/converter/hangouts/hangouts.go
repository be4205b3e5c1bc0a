// Package hangouts writes Google Chat (Hangouts) messages.
package hangouts

import (
	"log/slog"

	"replycast/pkg/converter/base"
	"replycast/pkg/message"
	"replycast/pkg/template"
)

// Converter renders links as <url|label> text, images as a card with a
// caption paragraph and video as its URL. Buttons and dropdowns are not
// available on this channel.
type Converter struct {
	*base.Converter
}

// New returns a hangouts converter bound to kind. Passing a channel name the
// registry does not know produces a converter that fails on every call.
func New(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) *Converter {
	c := &Converter{Converter: base.New(kind, channel, registry, log, base.WithMarkup(base.AngleLink))}
	c.Disable(message.KindButton)
	c.Disable(message.KindDropdown)

	return c
}
