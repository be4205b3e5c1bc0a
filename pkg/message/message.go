package message

import (
	"encoding/json"
	"strings"
)

// Kind identifies the rich content category being rendered.
type Kind string

const (
	KindLink     Kind = "link"
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindButton   Kind = "button"
	KindDropdown Kind = "dropdown"
)

// Kinds lists every content kind in dispatch order.
func Kinds() []Kind {
	return []Kind{KindLink, KindImage, KindVideo, KindButton, KindDropdown}
}

// Valid reports whether k is one of the known content kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindLink, KindImage, KindVideo, KindButton, KindDropdown:
		return true
	default:
		return false
	}
}

// ParseKind normalizes a kind name. The boolean is false for unknown kinds.
func ParseKind(input string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(input)))
	return kind, kind.Valid()
}

// Channel identifies a target messaging platform. The set is open: channels
// outside the constants below may still be served from the template registry.
type Channel string

const (
	ChannelSlack     Channel = "slack"
	ChannelTelegram  Channel = "telegram"
	ChannelMessenger Channel = "messenger"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelHangouts  Channel = "hangouts"
	ChannelMSTeams   Channel = "msteams"
)

var channelAliases = map[string]Channel{
	"hangout":         ChannelHangouts,
	"google_hangouts": ChannelHangouts,
	"teams":           ChannelMSTeams,
	"ms_teams":        ChannelMSTeams,
	"facebook":        ChannelMessenger,
}

// ParseChannel normalizes a channel name: trimmed, lower-cased, aliases resolved.
// It never rejects a name; whether the channel is usable is decided by the registry.
func ParseChannel(input string) Channel {
	name := strings.ToLower(strings.TrimSpace(input))
	if alias, ok := channelAliases[name]; ok {
		return alias
	}

	return Channel(name)
}

// Payload is a channel wire payload: a JSON object ready for delivery.
// Ownership transfers to the caller on return.
type Payload map[string]any

// JSON encodes the payload. Map keys are sorted, so equal payloads encode identically.
func (p Payload) JSON() ([]byte, error) {
	return json.Marshal(p)
}
