package extract

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"replycast/pkg/message"
)

// DefaultButtonBody is the prompt shown above quick-reply buttons when the
// element does not carry its own body text.
const DefaultButtonBody = "Please select from quick buttons:"

// Dropdown labels used when the element leaves them out.
const (
	DefaultDropdownButton  = "Select"
	DefaultDropdownSection = "Options"
)

// Media is an image or video element.
type Media struct {
	Type    message.Kind
	URL     string
	Caption string
}

// Validate checks that the media URL is present and absolute.
func (m Media) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.URL, validation.Required, is.URL),
	)
}

// Choice is one labelled action: a button or a dropdown option.
type Choice struct {
	Label       string
	Payload     string
	Description string
}

// Validate requires a label on every choice.
func (c Choice) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Label, validation.Required),
	)
}

// ButtonSet is an ordered group of quick-reply buttons.
type ButtonSet struct {
	Body    string
	Buttons []Choice
}

// Validate requires at least one button with a label and a payload.
// Per-channel count limits are enforced by the transformers.
func (b ButtonSet) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Body, validation.Required),
		validation.Field(&b.Buttons, validation.Required, validation.Each(validation.By(requirePayload))),
	)
}

// Dropdown is a single-select option list with an optional header.
type Dropdown struct {
	Header     string
	Body       string
	Button     string
	Section    string
	AllowBlank bool
	Options    []Choice
}

// Validate requires at least one labelled option.
func (d Dropdown) Validate() error {
	rules := []validation.Rule{validation.Required}
	if !d.AllowBlank {
		rules = append(rules, validation.Each(validation.By(requirePayload)))
	}

	return validation.ValidateStruct(&d,
		validation.Field(&d.Body, validation.Required),
		validation.Field(&d.Options, rules...),
	)
}

func requirePayload(value any) error {
	choice, ok := value.(Choice)
	if !ok {
		return fmt.Errorf("unexpected %T", value)
	}
	if strings.TrimSpace(choice.Payload) == "" {
		return validation.NewError("validation_payload_required", "payload cannot be blank")
	}

	return nil
}

// Data is the extracted form of one canonical element. Exactly one of the
// kind-specific fields is populated.
type Data struct {
	Kind      message.Kind
	Fragments []Fragment
	Media     *Media
	Buttons   *ButtonSet
	Dropdown  *Dropdown
}

// Extract projects raw onto the extracted form for kind. It never mutates raw.
func Extract(raw any, kind message.Kind) (Data, error) {
	data := Data{Kind: kind}

	switch kind {
	case message.KindLink:
		fragments, err := NewFragmentStream(raw).Collect()
		if err != nil {
			return Data{}, err
		}
		data.Fragments = fragments
	case message.KindImage:
		media, err := Image(raw)
		if err != nil {
			return Data{}, err
		}
		data.Media = &media
	case message.KindVideo:
		media, err := Video(raw)
		if err != nil {
			return Data{}, err
		}
		data.Media = &media
	case message.KindButton:
		buttons, err := Buttons(raw)
		if err != nil {
			return Data{}, err
		}
		data.Buttons = &buttons
	case message.KindDropdown:
		dropdown, err := DropdownMenu(raw)
		if err != nil {
			return Data{}, err
		}
		data.Dropdown = &dropdown
	default:
		return Data{}, message.MalformedInput("unknown content kind %q", kind)
	}

	return data, nil
}

// Image extracts {url, caption} from an image node. The caption comes from
// alt, then from the node's child text.
func Image(raw any) (Media, error) {
	return media(raw, message.KindImage, []string{"src", "url"})
}

// Video extracts {url} from a video node; a caption is optional.
func Video(raw any) (Media, error) {
	return media(raw, message.KindVideo, []string{"url", "src"})
}

func media(raw any, kind message.Kind, urlKeys []string) (Media, error) {
	node, err := elementNode(raw, kind)
	if err != nil {
		return Media{}, err
	}

	url, err := optionalString(node, urlKeys...)
	if err != nil {
		return Media{}, err
	}

	caption, err := optionalString(node, "alt", "caption")
	if err != nil {
		return Media{}, err
	}
	if strings.TrimSpace(caption) == "" {
		caption, err = collectText(node["children"])
		if err != nil {
			return Media{}, err
		}
	}

	result := Media{Type: kind, URL: strings.TrimSpace(url), Caption: strings.TrimSpace(caption)}
	if err := result.Validate(); err != nil {
		return Media{}, message.MalformedInput("%s: %v", kind, err)
	}

	return result, nil
}

// Buttons extracts an ordered button set. It accepts a list of button nodes,
// a single button node, or an object holding "body" and "buttons".
func Buttons(raw any) (ButtonSet, error) {
	set := ButtonSet{Body: DefaultButtonBody}

	var nodes []any
	switch value := raw.(type) {
	case []any:
		nodes = value
	case map[string]any:
		if list, ok := value["buttons"]; ok {
			items, isList := list.([]any)
			if !isList {
				return ButtonSet{}, message.MalformedInput("buttons must be a list, got %T", list)
			}
			nodes = items

			body, err := optionalString(value, "body", "text")
			if err != nil {
				return ButtonSet{}, err
			}
			if strings.TrimSpace(body) != "" {
				set.Body = body
			}
		} else {
			nodes = []any{value}
		}
	default:
		return ButtonSet{}, message.MalformedInput("button element must be a list or object, got %T", raw)
	}

	for i, item := range nodes {
		node, ok := item.(map[string]any)
		if !ok {
			return ButtonSet{}, message.MalformedInput("button %d must be an object, got %T", i, item)
		}

		choice, err := buttonChoice(node)
		if err != nil {
			return ButtonSet{}, fmt.Errorf("button %d: %w", i, err)
		}
		set.Buttons = append(set.Buttons, choice)
	}

	if err := set.Validate(); err != nil {
		return ButtonSet{}, message.MalformedInput("button: %v", err)
	}

	return set, nil
}

func buttonChoice(node map[string]any) (Choice, error) {
	label, err := optionalString(node, "text", "label")
	if err != nil {
		return Choice{}, err
	}
	if strings.TrimSpace(label) == "" {
		label, err = collectText(node["children"])
		if err != nil {
			return Choice{}, err
		}
	}

	payload, err := optionalString(node, "value", "payload")
	if err != nil {
		return Choice{}, err
	}

	return Choice{Label: strings.TrimSpace(label), Payload: strings.TrimSpace(payload)}, nil
}

// DropdownMenu extracts a dropdown element. Options keep their input order;
// blank intent or slot values never drop an option.
func DropdownMenu(raw any) (Dropdown, error) {
	node, err := elementNode(raw, message.KindDropdown)
	if err != nil {
		return Dropdown{}, err
	}

	menu := Dropdown{
		AllowBlank: true,
		Body:       DefaultButtonBody,
		Button:     DefaultDropdownButton,
		Section:    DefaultDropdownSection,
	}
	fields := map[string]*string{
		"header":  &menu.Header,
		"body":    &menu.Body,
		"button":  &menu.Button,
		"section": &menu.Section,
	}
	for key, target := range fields {
		value, err := optionalString(node, key)
		if err != nil {
			return Dropdown{}, err
		}
		if strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}

	if rawAllow, ok := node["allow_blank"]; ok {
		allow, isBool := rawAllow.(bool)
		if !isBool {
			return Dropdown{}, message.MalformedInput("allow_blank must be a boolean, got %T", rawAllow)
		}
		menu.AllowBlank = allow
	}

	rawOptions, ok := node["options"]
	if !ok {
		return Dropdown{}, message.MalformedInput("dropdown is missing options")
	}
	options, ok := rawOptions.([]any)
	if !ok {
		return Dropdown{}, message.MalformedInput("options must be a list, got %T", rawOptions)
	}

	for i, item := range options {
		option, ok := item.(map[string]any)
		if !ok {
			return Dropdown{}, message.MalformedInput("option %d must be an object, got %T", i, item)
		}

		choice, err := dropdownChoice(option)
		if err != nil {
			return Dropdown{}, fmt.Errorf("option %d: %w", i, err)
		}
		menu.Options = append(menu.Options, choice)
	}

	if err := menu.Validate(); err != nil {
		return Dropdown{}, message.MalformedInput("dropdown: %v", err)
	}

	for i := range menu.Options {
		if menu.Options[i].Payload == "" {
			menu.Options[i].Payload = menu.Options[i].Label
		}
	}

	return menu, nil
}

func dropdownChoice(option map[string]any) (Choice, error) {
	values := make(map[string]string, 5)
	for _, key := range []string{"label", "value", "intent", "slot", "description"} {
		value, err := optionalString(option, key)
		if err != nil {
			return Choice{}, err
		}
		values[key] = strings.TrimSpace(value)
	}

	return Choice{
		Label:       values["label"],
		Payload:     optionPayload(values["intent"], values["slot"], values["value"]),
		Description: values["description"],
	}, nil
}

// optionPayload builds the reply sent back when an option is picked:
// /intent{"slot":"value"} when intent and slot are set, /intent when only the
// intent is set, otherwise the raw value.
func optionPayload(intent, slot, value string) string {
	if intent == "" {
		return value
	}

	intent = "/" + strings.TrimPrefix(intent, "/")
	if slot == "" {
		return intent
	}

	return fmt.Sprintf("%s{%q:%q}", intent, slot, value)
}

// elementNode unwraps a one-element list and returns the node of the wanted
// type, falling back to the first object.
func elementNode(raw any, kind message.Kind) (map[string]any, error) {
	switch value := raw.(type) {
	case map[string]any:
		return value, nil
	case []any:
		var first map[string]any
		for _, item := range value {
			node, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if nodeType, _ := node["type"].(string); nodeType == string(kind) {
				return node, nil
			}
			if first == nil {
				first = node
			}
		}
		if first != nil {
			return first, nil
		}
		return nil, message.MalformedInput("%s element has no object node", kind)
	default:
		return nil, message.MalformedInput("%s element must be a list or object, got %T", kind, raw)
	}
}

// optionalString returns the first present key as a string. A present key
// with a non-string value is malformed input.
func optionalString(node map[string]any, keys ...string) (string, error) {
	for _, key := range keys {
		value, ok := node[key]
		if !ok || value == nil {
			continue
		}

		text, isString := value.(string)
		if !isString {
			return "", message.MalformedInput("%s must be a string, got %T", key, value)
		}
		return text, nil
	}

	return "", nil
}

// collectText concatenates every text leaf under node in document order.
func collectText(node any) (string, error) {
	var b strings.Builder

	stack := []any{node}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch value := current.(type) {
		case nil:
		case string:
			b.WriteString(value)
		case []any:
			for i := len(value) - 1; i >= 0; i-- {
				stack = append(stack, value[i])
			}
		case map[string]any:
			if children, ok := value["children"]; ok {
				stack = append(stack, children)
			}
			text, err := optionalString(value, "text")
			if err != nil {
				return "", err
			}
			b.WriteString(text)
		default:
			return "", message.MalformedInput("unexpected %T in text content", current)
		}
	}

	return b.String(), nil
}
