// Package converter selects the channel transformer for a (kind, channel)
// pair and reports which pairs are supported.
package converter

import (
	"log/slog"

	"replycast/pkg/converter/base"
	"replycast/pkg/converter/hangouts"
	"replycast/pkg/converter/messenger"
	"replycast/pkg/converter/msteams"
	"replycast/pkg/converter/slack"
	"replycast/pkg/converter/telegram"
	"replycast/pkg/converter/whatsapp"
	"replycast/pkg/message"
	"replycast/pkg/template"
)

// Transformer converts canonical elements into one channel's payloads.
// Implementations are stateless and safe for concurrent use.
type Transformer interface {
	Channel() message.Channel
	Kind() message.Kind
	Supports(kind message.Kind) bool
	Convert(raw any) (message.Payload, error)
	ConvertKind(kind message.Kind, raw any) (message.Payload, error)
}

// Constructor builds a transformer bound to kind for channel.
type Constructor func(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) Transformer

var constructors = map[message.Channel]Constructor{
	message.ChannelHangouts: func(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) Transformer {
		return hangouts.New(kind, channel, registry, log)
	},
	message.ChannelSlack: func(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) Transformer {
		return slack.New(kind, channel, registry, log)
	},
	message.ChannelTelegram: func(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) Transformer {
		return telegram.New(kind, channel, registry, log)
	},
	message.ChannelMessenger: func(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) Transformer {
		return messenger.New(kind, channel, registry, log)
	},
	message.ChannelWhatsApp: func(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) Transformer {
		return whatsapp.New(kind, channel, registry, log)
	},
	message.ChannelMSTeams: func(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) Transformer {
		return msteams.New(kind, channel, registry, log)
	},
}

// Factory hands out transformers backed by one template registry.
type Factory struct {
	registry *template.Registry
	log      *slog.Logger
}

// NewFactory creates a factory. A nil logger uses slog.Default().
func NewFactory(registry *template.Registry, log *slog.Logger) *Factory {
	if log == nil {
		log = slog.Default()
	}

	return &Factory{registry: registry, log: log}
}

// Registry returns the registry shared by every transformer.
func (f *Factory) Registry() *template.Registry {
	return f.registry
}

// New constructs the transformer for channel without checking support.
// Channels without a dedicated transformer get the generic encoder; an
// unknown channel yields a transformer whose conversions fail.
func (f *Factory) New(kind message.Kind, channel message.Channel) Transformer {
	if build, ok := constructors[channel]; ok {
		return build(kind, channel, f.registry, f.log)
	}

	return base.New(kind, channel, f.registry, f.log)
}

// Lookup returns the transformer for (kind, channel). The boolean is false
// when the channel is unknown or does not support kind.
func (f *Factory) Lookup(kind message.Kind, channel string) (Transformer, bool) {
	name := message.ParseChannel(channel)
	if !kind.Valid() || !f.registry.HasChannel(name) {
		f.log.Debug("Transformer not found", "component", "converter", "channel", channel, "kind", string(kind))
		return nil, false
	}

	t := f.New(kind, name)
	if !t.Supports(kind) {
		f.log.Debug("Kind not supported", "component", "converter", "channel", string(name), "kind", string(kind))
		return nil, false
	}

	return t, true
}

// Convert looks up the transformer and converts raw. An unsupported pair is a
// ConversionError wrapping message.ErrUnsupported.
func (f *Factory) Convert(kind message.Kind, channel string, raw any) (message.Payload, error) {
	t, ok := f.Lookup(kind, channel)
	if !ok {
		name := message.ParseChannel(channel)
		return nil, message.ConversionError(name, kind, "no transformer", message.Unsupported(name, kind))
	}

	return t.Convert(raw)
}

// SupportedKinds lists the kinds channel can render, in dispatch order.
func (f *Factory) SupportedKinds(channel string) []message.Kind {
	name := message.ParseChannel(channel)
	if !f.registry.HasChannel(name) {
		return nil
	}

	t := f.New(message.KindLink, name)

	var kinds []message.Kind
	for _, kind := range message.Kinds() {
		if t.Supports(kind) {
			kinds = append(kinds, kind)
		}
	}

	return kinds
}

// Channels lists every channel with at least one supported kind.
func (f *Factory) Channels() []message.Channel {
	var channels []message.Channel
	for _, channel := range f.registry.Channels() {
		if len(f.SupportedKinds(string(channel))) > 0 {
			channels = append(channels, channel)
		}
	}

	return channels
}

// Capability is one row of the support matrix.
type Capability struct {
	Channel message.Channel `json:"channel"`
	Generic bool            `json:"generic"`
	Kinds   []message.Kind  `json:"kinds"`
	Limits  template.Limits `json:"limits"`
}

// Capabilities reports the support matrix for every channel.
func (f *Factory) Capabilities() []Capability {
	channels := f.Channels()

	matrix := make([]Capability, 0, len(channels))
	for _, channel := range channels {
		_, dedicated := constructors[channel]
		limits, _ := f.registry.Limits(channel)
		matrix = append(matrix, Capability{
			Channel: channel,
			Generic: !dedicated,
			Kinds:   f.SupportedKinds(string(channel)),
			Limits:  limits,
		})
	}

	return matrix
}
