// Package telegram writes Telegram Bot API sendMessage/sendPhoto bodies.
package telegram

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"replycast/pkg/converter/base"
	"replycast/pkg/extract"
	"replycast/pkg/message"
	"replycast/pkg/template"
)

// Converter renders text with the HTML parse mode. Buttons and dropdown
// options become an inline keyboard with one button per row.
type Converter struct {
	*base.Converter
}

// New returns a telegram converter bound to kind.
func New(kind message.Kind, channel message.Channel, registry *template.Registry, log *slog.Logger) *Converter {
	c := &Converter{Converter: base.New(kind, channel, registry, log, base.WithMarkup(htmlText))}
	c.Handle(message.KindVideo, c.video)
	c.Handle(message.KindButton, c.button)
	c.Handle(message.KindDropdown, c.dropdown)

	return c
}

// htmlText escapes text for the HTML parse mode and writes links as bare
// URLs; Telegram links them itself.
func htmlText(f extract.Fragment) string {
	return html.EscapeString(base.PlainURL(f))
}

// video sends the URL as HTML text, escaped like link text.
func (c *Converter) video(tmpl template.Template, raw any) (message.Payload, error) {
	media, err := extract.Video(raw)
	if err != nil {
		return nil, err
	}

	return c.Render(tmpl, template.Values{"data": html.EscapeString(media.URL)}), nil
}

func (c *Converter) button(tmpl template.Template, raw any) (message.Payload, error) {
	set, err := c.Buttons(raw)
	if err != nil {
		return nil, err
	}

	markup, err := c.keyboard(message.KindButton, set.Buttons)
	if err != nil {
		return nil, err
	}

	return c.Render(tmpl, template.Values{
		"bodytext":     set.Body,
		"reply_markup": markup,
	}), nil
}

func (c *Converter) dropdown(tmpl template.Template, raw any) (message.Payload, error) {
	menu, err := c.Dropdown(raw)
	if err != nil {
		return nil, err
	}

	markup, err := c.keyboard(message.KindDropdown, menu.Options)
	if err != nil {
		return nil, err
	}

	text := html.EscapeString(menu.Body)
	if menu.Header != "" {
		text = fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(menu.Header), text)
	}

	return c.Render(tmpl, template.Values{
		"bodytext":     text,
		"reply_markup": markup,
	}), nil
}

// keyboard builds the inline keyboard and returns it in its wire form.
func (c *Converter) keyboard(kind message.Kind, choices []extract.Choice) (map[string]any, error) {
	limit := c.Limits().PayloadBytes

	rows := make([][]telego.InlineKeyboardButton, 0, len(choices))
	for _, choice := range choices {
		if limit > 0 && len(choice.Payload) > limit {
			return nil, message.ConversionError(c.Channel(), kind,
				fmt.Sprintf("callback data for %q is %d bytes, limit is %d", choice.Label, len(choice.Payload), limit), nil)
		}
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(choice.Label).WithCallbackData(choice.Payload),
		))
	}

	data, err := json.Marshal(tu.InlineKeyboard(rows...))
	if err != nil {
		return nil, fmt.Errorf("marshal inline keyboard: %w", err)
	}

	var markup map[string]any
	if err := json.Unmarshal(data, &markup); err != nil {
		return nil, fmt.Errorf("unmarshal inline keyboard: %w", err)
	}

	return markup, nil
}
