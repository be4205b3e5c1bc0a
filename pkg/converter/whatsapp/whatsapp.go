// Package whatsapp writes WhatsApp Cloud API message bodies. Buttons and
// dropdowns become interactive "button" and "list" messages.
package whatsapp

import (
	"log/slog"

	"replycast/pkg/converter/base"
	"replycast/pkg/message"
	"replycast/pkg/template"
)

type Converter struct {
	*base.Converter
}

// New returns a whatsapp converter bound to kind.
func New(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) *Converter {
	c := &Converter{Converter: base.New(kind, channel, registry, log, base.WithMarkup(base.PlainURL))}
	c.Handle(message.KindDropdown, c.list)

	return c
}

// list renders a list message. The header is dropped when the element has
// none and rows drop empty descriptions; the API rejects blank values.
func (c *Converter) list(tmpl template.Template, raw any) (message.Payload, error) {
	menu, err := c.Dropdown(raw)
	if err != nil {
		return nil, err
	}

	values := base.DropdownValues(menu)
	values["rows"] = base.ChoiceValues(menu.Options)
	payload := c.Render(tmpl, values)

	if menu.Header == "" {
		delete(payload, "header")
	}

	action, _ := payload["action"].(map[string]any)
	sections, _ := action["sections"].([]any)
	for _, section := range sections {
		fields, _ := section.(map[string]any)
		rows, _ := fields["rows"].([]any)
		for _, row := range rows {
			if r, ok := row.(map[string]any); ok && r["description"] == "" {
				delete(r, "description")
			}
		}
	}

	return payload, nil
}
