package base

import (
	"errors"
	"fmt"
	"log/slog"

	"replycast/pkg/message"
	"replycast/pkg/template"
)

// EncodeFunc turns a canonical element into a payload using the channel
// template for its kind.
type EncodeFunc func(tmpl template.Template, raw any) (message.Payload, error)

// Converter is the shared transformer for one channel. It owns the fixed
// kind -> encoder table; channel packages replace entries at construction.
// A Converter with only the generic encoders serves registry-only channels.
type Converter struct {
	channel  message.Channel
	kind     message.Kind
	registry *template.Registry
	markup   MarkupFunc
	encoders map[message.Kind]EncodeFunc
	log      *slog.Logger
}

// Option customizes a Converter at construction.
type Option func(*Converter)

// WithMarkup sets how link fragments are written into text.
func WithMarkup(markup MarkupFunc) Option {
	return func(c *Converter) {
		if markup != nil {
			c.markup = markup
		}
	}
}

// New builds a converter bound to kind for channel. The channel name is not
// checked here: an unknown channel fails on Convert.
func New(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger, opts ...Option) *Converter {
	if log == nil {
		log = slog.Default()
	}

	c := &Converter{
		channel:  channel,
		kind:     kind,
		registry: registry,
		markup:   LabelWithURL,
		log:      log.With("component", "converter."+string(channel), "channel", string(channel), "kind", string(kind)),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.encoders = map[message.Kind]EncodeFunc{
		message.KindLink:     c.EncodeLink,
		message.KindImage:    c.EncodeImage,
		message.KindVideo:    c.EncodeVideo,
		message.KindButton:   c.EncodeButton,
		message.KindDropdown: c.EncodeDropdown,
	}

	return c
}

// Handle replaces the encoder for kind. It must only be called while the
// owning transformer is being constructed.
func (c *Converter) Handle(kind message.Kind, encode EncodeFunc) {
	if encode == nil {
		delete(c.encoders, kind)
		return
	}
	c.encoders[kind] = encode
}

// Disable marks kind as unsupported for this channel regardless of templates.
func (c *Converter) Disable(kind message.Kind) {
	delete(c.encoders, kind)
}

// Channel returns the channel this converter writes for.
func (c *Converter) Channel() message.Channel {
	return c.channel
}

// Kind returns the content kind Convert dispatches to.
func (c *Converter) Kind() message.Kind {
	return c.kind
}

// Registry returns the template registry shared by this converter.
func (c *Converter) Registry() *template.Registry {
	return c.registry
}

// Logger returns the component logger.
func (c *Converter) Logger() *slog.Logger {
	return c.log
}

// Markup returns the link markup used by this converter.
func (c *Converter) Markup() MarkupFunc {
	return c.markup
}

// Supports reports whether kind has both an encoder and a template.
func (c *Converter) Supports(kind message.Kind) bool {
	if _, ok := c.encoders[kind]; !ok {
		return false
	}

	_, ok := c.registry.Template(c.channel, kind)
	return ok
}

// Convert renders raw as the converter's bound kind.
func (c *Converter) Convert(raw any) (message.Payload, error) {
	return c.ConvertKind(c.kind, raw)
}

// ConvertKind renders raw as kind. Every failure is a ConversionError; the
// extractor's MalformedInput or ExhaustedSequence stays reachable via errors.Is.
func (c *Converter) ConvertKind(kind message.Kind, raw any) (message.Payload, error) {
	encode, ok := c.encoders[kind]
	if !ok {
		return nil, c.fail(kind, message.ConversionError(c.channel, kind, "kind not supported by channel", message.Unsupported(c.channel, kind)))
	}

	tmpl, ok := c.registry.Template(c.channel, kind)
	if !ok {
		return nil, c.fail(kind, message.ConversionError(c.channel, kind, "no template registered", message.Unsupported(c.channel, kind)))
	}

	payload, err := encode(tmpl, raw)
	if err != nil {
		if !errors.Is(err, message.ErrConversion) {
			err = message.ConversionError(c.channel, kind, "encode", err)
		}
		return nil, c.fail(kind, err)
	}

	c.log.Debug("Converted element", "target_kind", string(kind), "keys", len(payload))
	return payload, nil
}

func (c *Converter) fail(kind message.Kind, err error) error {
	c.log.Warn("Conversion failed", "target_kind", string(kind), "category", message.CategoryFromError(err), "error", err)
	return err
}

// Limits returns the channel limits from the registry.
func (c *Converter) Limits() template.Limits {
	limits, _ := c.registry.Limits(c.channel)
	return limits
}

// CheckCount enforces a channel cardinality limit. A zero limit is unlimited.
func (c *Converter) CheckCount(kind message.Kind, what string, count int, limit int) error {
	if limit <= 0 || count <= limit {
		return nil
	}

	return message.ConversionError(c.channel, kind, fmt.Sprintf("%s allows at most %d %s, got %d", c.channel, limit, what, count), nil)
}
