package base

import (
	"replycast/pkg/extract"
	"replycast/pkg/message"
	"replycast/pkg/template"
)

// Render fills tmpl with the shared text renderer.
func (c *Converter) Render(tmpl template.Template, values template.Values) message.Payload {
	return TextRenderer.Render(tmpl, values)
}

// LinkText flattens a link element into channel text. The first fragment is
// read eagerly, so an element with no text fails with ExhaustedSequence.
func (c *Converter) LinkText(raw any) (string, error) {
	stream := extract.NewFragmentStream(raw)

	first, err := stream.Next()
	if err != nil {
		return "", err
	}

	rest, err := stream.Collect()
	if err != nil {
		return "", err
	}

	return JoinText(Blocks(append([]extract.Fragment{first}, rest...), c.markup)), nil
}

// MediaValues are the placeholders shared by image and video templates.
func MediaValues(media extract.Media) template.Values {
	return template.Values{
		"data":     media.URL,
		"imageurl": media.URL,
		"videourl": media.URL,
		"alttext":  media.Caption,
	}
}

// ChoiceValues maps buttons or options onto repeated template items.
func ChoiceValues(choices []extract.Choice) []template.Values {
	items := make([]template.Values, 0, len(choices))
	for _, choice := range choices {
		items = append(items, template.Values{
			"text":        choice.Label,
			"payload":     choice.Payload,
			"description": choice.Description,
		})
	}

	return items
}

// DropdownValues are the scalar placeholders of a dropdown template.
func DropdownValues(menu extract.Dropdown) template.Values {
	return template.Values{
		"header":       menu.Header,
		"bodytext":     menu.Body,
		"buttontext":   menu.Button,
		"sectiontitle": menu.Section,
	}
}

// EncodeLink is the generic link encoder.
func (c *Converter) EncodeLink(tmpl template.Template, raw any) (message.Payload, error) {
	text, err := c.LinkText(raw)
	if err != nil {
		return nil, err
	}

	return c.Render(tmpl, template.Values{"data": text}), nil
}

// EncodeImage is the generic image encoder.
func (c *Converter) EncodeImage(tmpl template.Template, raw any) (message.Payload, error) {
	media, err := extract.Image(raw)
	if err != nil {
		return nil, err
	}

	return c.Render(tmpl, MediaValues(media)), nil
}

// EncodeVideo is the generic video encoder. Video is sent as its URL.
func (c *Converter) EncodeVideo(tmpl template.Template, raw any) (message.Payload, error) {
	media, err := extract.Video(raw)
	if err != nil {
		return nil, err
	}

	return c.Render(tmpl, MediaValues(media)), nil
}

// Buttons extracts a button set and enforces the channel button limit.
func (c *Converter) Buttons(raw any) (extract.ButtonSet, error) {
	set, err := extract.Buttons(raw)
	if err != nil {
		return extract.ButtonSet{}, err
	}
	if err := c.CheckCount(message.KindButton, "buttons", len(set.Buttons), c.Limits().Buttons); err != nil {
		return extract.ButtonSet{}, err
	}

	return set, nil
}

// Dropdown extracts a dropdown and enforces the channel option limit.
func (c *Converter) Dropdown(raw any) (extract.Dropdown, error) {
	menu, err := extract.DropdownMenu(raw)
	if err != nil {
		return extract.Dropdown{}, err
	}
	if err := c.CheckCount(message.KindDropdown, "options", len(menu.Options), c.Limits().Options); err != nil {
		return extract.Dropdown{}, err
	}

	return menu, nil
}

// EncodeButton is the generic button encoder. Templates repeat the list
// stored under "buttons".
func (c *Converter) EncodeButton(tmpl template.Template, raw any) (message.Payload, error) {
	set, err := c.Buttons(raw)
	if err != nil {
		return nil, err
	}

	return c.Render(tmpl, template.Values{
		"bodytext": set.Body,
		"buttons":  ChoiceValues(set.Buttons),
	}), nil
}

// EncodeDropdown is the generic dropdown encoder. Templates repeat the list
// stored under "options".
func (c *Converter) EncodeDropdown(tmpl template.Template, raw any) (message.Payload, error) {
	menu, err := c.Dropdown(raw)
	if err != nil {
		return nil, err
	}

	values := DropdownValues(menu)
	values["options"] = ChoiceValues(menu.Options)

	return c.Render(tmpl, values), nil
}
