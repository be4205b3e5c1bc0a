package converter

import (
	"fmt"
	"strings"

	"replycast/pkg/converter/base"
	"replycast/pkg/extract"
	"replycast/pkg/message"
)

// PlainText renders raw as flat text any channel can deliver. Links become
// "label (url)", media its caption and URL, choices a numbered list.
func PlainText(kind message.Kind, raw any) (string, error) {
	data, err := extract.Extract(raw, kind)
	if err != nil {
		return "", err
	}

	switch kind {
	case message.KindLink:
		return base.JoinText(base.Blocks(data.Fragments, base.LabelWithURL)), nil
	case message.KindImage, message.KindVideo:
		if data.Media.Caption == "" {
			return data.Media.URL, nil
		}
		return fmt.Sprintf("%s %s", data.Media.Caption, data.Media.URL), nil
	case message.KindButton:
		return numbered(data.Buttons.Body, data.Buttons.Buttons), nil
	case message.KindDropdown:
		body := data.Dropdown.Body
		if data.Dropdown.Header != "" {
			body = data.Dropdown.Header + "\n" + body
		}
		return numbered(body, data.Dropdown.Options), nil
	}

	return "", message.MalformedInput("unknown content kind %q", kind)
}

func numbered(body string, choices []extract.Choice) string {
	var b strings.Builder
	b.WriteString(body)
	for i, choice := range choices {
		fmt.Fprintf(&b, "\n%d. %s", i+1, choice.Label)
	}

	return b.String()
}
