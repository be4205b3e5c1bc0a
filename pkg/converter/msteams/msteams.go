// Package msteams writes Bot Framework activities for Microsoft Teams.
// Rich kinds are sent as Adaptive Card attachments.
package msteams

import (
	"log/slog"

	"replycast/pkg/converter/base"
	"replycast/pkg/message"
	"replycast/pkg/template"
)

type Converter struct {
	*base.Converter
}

// New returns a Teams converter bound to kind. Links use markdown.
func New(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) *Converter {
	c := &Converter{Converter: base.New(kind, channel, registry, log, base.WithMarkup(base.MarkdownLink))}
	c.Handle(message.KindButton, c.button)
	c.Handle(message.KindDropdown, c.dropdown)

	return c
}

func (c *Converter) button(tmpl template.Template, raw any) (message.Payload, error) {
	set, err := c.Buttons(raw)
	if err != nil {
		return nil, err
	}

	return c.Render(tmpl, template.Values{
		"bodytext": set.Body,
		"actions":  base.ChoiceValues(set.Buttons),
	}), nil
}

func (c *Converter) dropdown(tmpl template.Template, raw any) (message.Payload, error) {
	menu, err := c.Dropdown(raw)
	if err != nil {
		return nil, err
	}

	values := base.DropdownValues(menu)
	values["choices"] = base.ChoiceValues(menu.Options)
	payload := c.Render(tmpl, values)

	if menu.Header != "" {
		prependHeader(payload, menu.Header)
	}

	return payload, nil
}

// prependHeader adds a bold TextBlock above the body of the first card.
func prependHeader(payload message.Payload, header string) {
	attachments, _ := payload["attachments"].([]any)
	if len(attachments) == 0 {
		return
	}

	attachment, _ := attachments[0].(map[string]any)
	content, ok := attachment["content"].(map[string]any)
	if !ok {
		return
	}

	body, _ := content["body"].([]any)
	block := map[string]any{
		"type":   "TextBlock",
		"text":   header,
		"weight": "Bolder",
		"size":   "Medium",
		"wrap":   true,
	}
	content["body"] = append([]any{block}, body...)
}
