// Package messenger writes Facebook Messenger Send API message objects.
package messenger

import (
	"log/slog"

	"replycast/pkg/converter/base"
	"replycast/pkg/extract"
	"replycast/pkg/message"
	"replycast/pkg/template"
)

// defaultTitle fills the generic template title, which Messenger requires.
const defaultTitle = "Image"

type Converter struct {
	*base.Converter
}

// New returns a messenger converter bound to kind. Buttons are sent as quick
// replies; Messenger has no dropdown.
func New(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) *Converter {
	c := &Converter{Converter: base.New(kind, channel, registry, log, base.WithMarkup(base.PlainURL))}
	c.Handle(message.KindImage, c.image)
	c.Handle(message.KindButton, c.button)
	c.Disable(message.KindDropdown)

	return c
}

func (c *Converter) image(tmpl template.Template, raw any) (message.Payload, error) {
	media, err := extract.Image(raw)
	if err != nil {
		return nil, err
	}
	if media.Caption == "" {
		media.Caption = defaultTitle
	}

	return c.Render(tmpl, base.MediaValues(media)), nil
}

func (c *Converter) button(tmpl template.Template, raw any) (message.Payload, error) {
	set, err := c.Buttons(raw)
	if err != nil {
		return nil, err
	}

	return c.Render(tmpl, template.Values{
		"bodytext":      set.Body,
		"quick_replies": base.ChoiceValues(set.Buttons),
	}), nil
}
