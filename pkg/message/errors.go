package message

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ErrorUnsupported       = "unsupported"
	ErrorMalformedInput    = "malformed_input"
	ErrorExhaustedSequence = "exhausted_sequence"
	ErrorConversion        = "conversion_error"
)

// Sentinels for errors.Is. They match any *Error with the same category.
var (
	ErrUnsupported       = &Error{Category: ErrorUnsupported}
	ErrMalformedInput    = &Error{Category: ErrorMalformedInput}
	ErrExhaustedSequence = &Error{Category: ErrorExhaustedSequence}
	ErrConversion        = &Error{Category: ErrorConversion}
)

// Error is a categorized rendering failure. Channel and Kind are set when the
// failure happened inside a specific transformer.
type Error struct {
	Category string
	Channel  Channel
	Kind     Kind
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(e.Category)
	if e.Channel != "" || e.Kind != "" {
		fmt.Fprintf(&b, " [%s/%s]", e.Channel, e.Kind)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Is matches sentinel errors by category.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok || e == nil || other == nil {
		return false
	}

	return other.Detail == "" && other.Err == nil && other.Channel == "" && other.Kind == "" && other.Category == e.Category
}

// MalformedInput reports a canonical element with a missing or mistyped field.
func MalformedInput(format string, args ...any) error {
	return &Error{Category: ErrorMalformedInput, Detail: fmt.Sprintf(format, args...)}
}

// ExhaustedSequence reports a read past the end of a fragment stream.
func ExhaustedSequence(detail string) error {
	return &Error{Category: ErrorExhaustedSequence, Detail: detail}
}

// Unsupported reports a channel/kind pair without a transformer or template.
func Unsupported(channel Channel, kind Kind) error {
	return &Error{
		Category: ErrorUnsupported,
		Channel:  channel,
		Kind:     kind,
		Detail:   fmt.Sprintf("element key mapping missing for %s or %s", channel, kind),
	}
}

// ConversionError wraps a failure raised while encoding for a channel.
// The cause stays reachable through errors.Is/As.
func ConversionError(channel Channel, kind Kind, detail string, cause error) error {
	return &Error{
		Category: ErrorConversion,
		Channel:  channel,
		Kind:     kind,
		Detail:   detail,
		Err:      cause,
	}
}

// CategoryFromError returns the outermost category, or "" for uncategorized errors.
func CategoryFromError(err error) string {
	if err == nil {
		return ""
	}

	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Category
	}

	return ""
}
