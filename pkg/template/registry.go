package template

import (
	"embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"replycast/pkg/message"
)

//go:embed templates/*.yaml
var templateFiles embed.FS

const defaultTemplateFile = "templates/channels.yaml"

// Template is a channel payload skeleton with <name> placeholders.
// Templates held by a Registry are shared and must not be modified.
type Template map[string]any

// Limits are per-channel cardinality constraints. Zero means unlimited.
type Limits struct {
	Buttons      int `yaml:"buttons" json:"buttons,omitempty"`
	Options      int `yaml:"options" json:"options,omitempty"`
	PayloadBytes int `yaml:"payload_bytes" json:"payload_bytes,omitempty"`
}

type channelFile struct {
	Limits    Limits                    `yaml:"limits"`
	Templates map[string]map[string]any `yaml:"templates"`
}

type registryFile struct {
	Channels map[string]channelFile `yaml:"channels"`
}

type channelEntry struct {
	limits    Limits
	templates map[message.Kind]Template
}

// Registry holds the template for every supported (channel, kind) pair.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	channels map[message.Channel]channelEntry
}

// Default loads the registry shipped with the binary.
func Default() (*Registry, error) {
	data, err := templateFiles.ReadFile(defaultTemplateFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", defaultTemplateFile, err)
	}

	return Parse(data)
}

// LoadFile loads a registry from an external YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}

	registry, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return registry, nil
}

// Parse decodes and validates registry YAML.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal templates: %w", err)
	}
	if len(file.Channels) == 0 {
		return nil, fmt.Errorf("no channels defined")
	}

	r := &Registry{channels: make(map[message.Channel]channelEntry, len(file.Channels))}
	for name, ch := range file.Channels {
		channel := message.ParseChannel(name)
		if channel == "" {
			return nil, fmt.Errorf("empty channel name")
		}
		if _, exists := r.channels[channel]; exists {
			return nil, fmt.Errorf("channel %s defined twice", channel)
		}
		if ch.Limits.Buttons < 0 || ch.Limits.Options < 0 || ch.Limits.PayloadBytes < 0 {
			return nil, fmt.Errorf("channel %s: limits must not be negative", channel)
		}

		entry := channelEntry{limits: ch.Limits, templates: make(map[message.Kind]Template, len(ch.Templates))}
		for rawKind, body := range ch.Templates {
			kind, ok := message.ParseKind(rawKind)
			if !ok {
				return nil, fmt.Errorf("channel %s: unknown content kind %q", channel, rawKind)
			}
			if len(body) == 0 {
				return nil, fmt.Errorf("channel %s: template %s is empty", channel, kind)
			}
			entry.templates[kind] = Template(body)
		}

		r.channels[channel] = entry
	}

	return r, nil
}

// Template returns the template for (channel, kind). A missing pair is the
// normal "unsupported" signal, not an error.
func (r *Registry) Template(channel message.Channel, kind message.Kind) (Template, bool) {
	if r == nil {
		return nil, false
	}

	entry, ok := r.channels[channel]
	if !ok {
		return nil, false
	}

	tmpl, ok := entry.templates[kind]
	return tmpl, ok
}

// Limits returns the cardinality limits configured for channel.
func (r *Registry) Limits(channel message.Channel) (Limits, bool) {
	if r == nil {
		return Limits{}, false
	}

	entry, ok := r.channels[channel]
	return entry.limits, ok
}

// HasChannel reports whether channel has any templates registered.
func (r *Registry) HasChannel(channel message.Channel) bool {
	if r == nil {
		return false
	}

	_, ok := r.channels[channel]
	return ok
}

// Channels returns registered channels in name order.
func (r *Registry) Channels() []message.Channel {
	if r == nil {
		return nil
	}

	channels := make([]message.Channel, 0, len(r.channels))
	for channel := range r.channels {
		channels = append(channels, channel)
	}
	slices.Sort(channels)

	return channels
}

// Kinds returns the kinds registered for channel in dispatch order.
func (r *Registry) Kinds(channel message.Channel) []message.Kind {
	if r == nil {
		return nil
	}

	entry, ok := r.channels[channel]
	if !ok {
		return nil
	}

	kinds := make([]message.Kind, 0, len(entry.templates))
	for _, kind := range message.Kinds() {
		if _, ok := entry.templates[kind]; ok {
			kinds = append(kinds, kind)
		}
	}

	return kinds
}
