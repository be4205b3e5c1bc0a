// Package slack writes Slack Block Kit messages.
package slack

import (
	"log/slog"
	"strings"

	"replycast/pkg/converter/base"
	"replycast/pkg/extract"
	"replycast/pkg/message"
	"replycast/pkg/template"
)

const defaultAltText = "Image"

var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Converter renders every kind as a list of blocks.
type Converter struct {
	*base.Converter
}

// New returns a slack converter bound to kind.
func New(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) *Converter {
	c := &Converter{Converter: base.New(kind, channel, registry, log, base.WithMarkup(mrkdwn))}
	c.Handle(message.KindImage, c.image)
	c.Handle(message.KindButton, c.button)
	c.Handle(message.KindDropdown, c.dropdown)

	return c
}

// mrkdwn escapes control characters in text and writes links as <url|label>.
func mrkdwn(f extract.Fragment) string {
	if f.Type != extract.FragmentLink {
		return mrkdwnEscaper.Replace(f.Value)
	}

	return base.AngleLink(extract.Fragment{Type: f.Type, URL: f.URL, Value: mrkdwnEscaper.Replace(f.Value)})
}

func (c *Converter) image(tmpl template.Template, raw any) (message.Payload, error) {
	media, err := extract.Image(raw)
	if err != nil {
		return nil, err
	}
	if media.Caption == "" {
		media.Caption = defaultAltText
	}

	return c.Render(tmpl, base.MediaValues(media)), nil
}

func (c *Converter) button(tmpl template.Template, raw any) (message.Payload, error) {
	set, err := c.Buttons(raw)
	if err != nil {
		return nil, err
	}

	return c.Render(tmpl, template.Values{
		"bodytext": set.Body,
		"elements": base.ChoiceValues(set.Buttons),
	}), nil
}

func (c *Converter) dropdown(tmpl template.Template, raw any) (message.Payload, error) {
	menu, err := c.Dropdown(raw)
	if err != nil {
		return nil, err
	}

	values := base.DropdownValues(menu)
	values["options"] = base.ChoiceValues(menu.Options)
	payload := c.Render(tmpl, values)

	if menu.Header != "" {
		blocks, _ := payload["blocks"].([]any)
		header := map[string]any{
			"type": "header",
			"text": map[string]any{"type": "plain_text", "text": menu.Header, "emoji": true},
		}
		payload["blocks"] = append([]any{header}, blocks...)
	}

	return payload, nil
}
