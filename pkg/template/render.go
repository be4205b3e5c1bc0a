package template

import (
	"fmt"
	"maps"
	"regexp"
	"strings"

	"replycast/pkg/message"
)

var (
	tokenPattern      = regexp.MustCompile(`<([A-Za-z_][A-Za-z0-9_]*)>`)
	wholeTokenPattern = regexp.MustCompile(`^<([A-Za-z_][A-Za-z0-9_]*)>$`)
)

// Values is the data merged into a template. A value may be:
//   - string: replaces the token in place;
//   - []string: joined by the Renderer's Join func, then replaced;
//   - []Values: repeats the first element of the template list stored under
//     the same key, once per item, with the item's values layered on top;
//   - any other value: replaces a string that consists of the token alone,
//     keeping its type (bools, numbers, nested objects).
type Values map[string]any

// JoinFunc joins list-valued data for one placeholder.
type JoinFunc func(key string, items []string) string

// Renderer performs one substitution pass over a template.
type Renderer struct {
	Join JoinFunc
}

// Render substitutes values with the default renderer, which concatenates
// list items without a separator.
func Render(tmpl Template, values Values) message.Payload {
	return Renderer{}.Render(tmpl, values)
}

// Render returns a populated copy of tmpl. Tokens without a value are kept
// verbatim; substituted text is never scanned again. The template is not
// modified and the result shares no maps or slices with it.
func (r Renderer) Render(tmpl Template, values Values) message.Payload {
	out := make(message.Payload, len(tmpl))
	for key, child := range tmpl {
		out[key] = r.node(child, key, values)
	}

	return out
}

func (r Renderer) node(n any, key string, values Values) any {
	switch value := n.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for childKey, child := range value {
			out[childKey] = r.node(child, childKey, values)
		}
		return out
	case []any:
		return r.list(value, key, values)
	case string:
		return r.text(value, values)
	default:
		return value
	}
}

func (r Renderer) list(items []any, key string, values Values) []any {
	if repeated, ok := values[key].([]Values); ok && len(items) > 0 {
		scope := maps.Clone(values)
		delete(scope, key)

		out := make([]any, 0, len(repeated))
		for _, item := range repeated {
			itemValues := maps.Clone(scope)
			maps.Copy(itemValues, item)
			out = append(out, r.node(items[0], "", itemValues))
		}
		return out
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, r.node(item, "", values))
	}

	return out
}

func (r Renderer) text(s string, values Values) any {
	if match := wholeTokenPattern.FindStringSubmatch(s); match != nil {
		value, ok := values[match[1]]
		if !ok {
			return s
		}
		switch typed := value.(type) {
		case string:
			return typed
		case []string:
			return r.join(match[1], typed)
		case []Values:
			return s
		default:
			return typed
		}
	}

	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		name := token[1 : len(token)-1]
		value, ok := values[name]
		if !ok {
			return token
		}
		switch typed := value.(type) {
		case string:
			return typed
		case []string:
			return r.join(name, typed)
		case []Values, map[string]any:
			return token
		default:
			return fmt.Sprint(typed)
		}
	})
}

func (r Renderer) join(key string, items []string) string {
	if r.Join != nil {
		return r.Join(key, items)
	}

	return strings.Join(items, "")
}
