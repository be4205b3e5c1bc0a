package base

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"replycast/pkg/extract"
	"replycast/pkg/message"
	"replycast/pkg/template"
)

const testTemplates = `
channels:
  line:
    limits: {buttons: 2, options: 2}
    templates:
      link: {text: "<data>"}
      image: {url: "<imageurl>", caption: "<alttext>"}
      video: {text: "<data>"}
      button:
        text: "<bodytext>"
        buttons:
          - {label: "<text>", data: "<payload>"}
      dropdown:
        title: "<header>"
        text: "<bodytext>"
        options:
          - {label: "<text>", value: "<payload>"}
`

func testRegistry(t *testing.T) *template.Registry {
	t.Helper()

	registry, err := template.Parse([]byte(testTemplates))
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	return registry
}

func decode(t *testing.T, raw string) any {
	t.Helper()

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	return value
}

func payloadJSON(t *testing.T, payload message.Payload) string {
	t.Helper()

	data, err := payload.JSON()
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	return string(data)
}

func TestGenericLink(t *testing.T) {
	c := New(message.KindLink, "line", testRegistry(t), nil)

	payload, err := c.Convert(decode(t, `[
		{"type":"paragraph","children":[{"text":"See "},{"type":"link","href":"https://a.example","children":[{"text":"A"}]}]},
		{"type":"paragraph","children":[{"text":"and "},{"type":"link","href":"https://b.example","children":[]}]}
	]`))
	require.NoError(t, err)
	require.JSONEq(t, `{"text":"See A (https://a.example) and https://b.example"}`, payloadJSON(t, payload))
}

func TestGenericMediaAndChoices(t *testing.T) {
	c := New(message.KindImage, "line", testRegistry(t), nil)

	payload, err := c.Convert(decode(t, `[{"type":"image","src":"https://a.example/dog.png","alt":"Dog"}]`))
	require.NoError(t, err)
	require.JSONEq(t, `{"url":"https://a.example/dog.png","caption":"Dog"}`, payloadJSON(t, payload))

	payload, err = c.ConvertKind(message.KindButton, decode(t, `[
		{"type":"button","value":"/yes","children":[{"text":"Yes"}]},
		{"type":"button","value":"/no","children":[{"text":"No"}]}
	]`))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"text":"Please select from quick buttons:",
		"buttons":[{"label":"Yes","data":"/yes"},{"label":"No","data":"/no"}]
	}`, payloadJSON(t, payload))

	payload, err = c.ConvertKind(message.KindDropdown, decode(t, `{"header":"Fruit","body":"Pick","options":[{"label":"Apple","value":"apple"}]}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"title":"Fruit","text":"Pick","options":[{"label":"Apple","value":"apple"}]}`, payloadJSON(t, payload))
}

func TestLimitsAreConversionErrors(t *testing.T) {
	c := New(message.KindButton, "line", testRegistry(t), nil)

	_, err := c.Convert(decode(t, `[
		{"type":"button","value":"/1","children":[{"text":"1"}]},
		{"type":"button","value":"/2","children":[{"text":"2"}]},
		{"type":"button","value":"/3","children":[{"text":"3"}]}
	]`))
	require.ErrorIs(t, err, message.ErrConversion)
	require.Contains(t, err.Error(), "at most 2 buttons")
}

func TestUnknownChannelFails(t *testing.T) {
	for _, channel := range []message.Channel{"hangout_fail", "messenger_fake", ""} {
		c := New(message.KindLink, channel, testRegistry(t), nil)

		payload, err := c.Convert(decode(t, `[{"type":"paragraph","children":[{"text":"hi"}]}]`))
		require.Nil(t, payload)
		require.ErrorIs(t, err, message.ErrConversion)
		require.ErrorIs(t, err, message.ErrUnsupported)
		require.False(t, c.Supports(message.KindLink))
	}
}

func TestDisabledKind(t *testing.T) {
	c := New(message.KindButton, "line", testRegistry(t), nil)
	c.Disable(message.KindButton)

	require.False(t, c.Supports(message.KindButton))
	require.True(t, c.Supports(message.KindLink))

	_, err := c.Convert(decode(t, `[{"type":"button","value":"/x","children":[{"text":"x"}]}]`))
	require.ErrorIs(t, err, message.ErrUnsupported)
}

func TestExtractorErrorsSurviveWrapping(t *testing.T) {
	c := New(message.KindLink, "line", testRegistry(t), nil)

	_, err := c.Convert([]any{})
	require.ErrorIs(t, err, message.ErrConversion)
	require.ErrorIs(t, err, message.ErrExhaustedSequence)
	require.False(t, errors.Is(err, message.ErrMalformedInput))

	_, err = c.ConvertKind(message.KindImage, decode(t, `[{"type":"image","alt":"no url"}]`))
	require.ErrorIs(t, err, message.ErrConversion)
	require.ErrorIs(t, err, message.ErrMalformedInput)
	require.Equal(t, message.ErrorConversion, message.CategoryFromError(err))
}

func TestHandleOverridesEncoder(t *testing.T) {
	c := New(message.KindLink, "line", testRegistry(t), nil)
	c.Handle(message.KindLink, func(tmpl template.Template, raw any) (message.Payload, error) {
		return message.Payload{"custom": true}, nil
	})

	payload, err := c.Convert(nil)
	require.NoError(t, err)
	require.Equal(t, message.Payload{"custom": true}, payload)
}

func TestMarkups(t *testing.T) {
	link := extract.Fragment{Type: extract.FragmentLink, Value: "Google", URL: "http://www.google.com"}
	text := extract.Fragment{Type: extract.FragmentText, Value: "plain"}

	cases := []struct {
		name   string
		markup MarkupFunc
		want   string
	}{
		{"angle", AngleLink, "<http://www.google.com|Google>"},
		{"markdown", MarkdownLink, "[Google](http://www.google.com)"},
		{"plain", PlainURL, "http://www.google.com"},
		{"label", LabelWithURL, "Google (http://www.google.com)"},
	}

	for _, tc := range cases {
		if got := tc.markup(link); got != tc.want {
			t.Fatalf("%s(link) = %q, want %q", tc.name, got, tc.want)
		}
		if got := tc.markup(text); got != "plain" {
			t.Fatalf("%s(text) = %q, want %q", tc.name, got, "plain")
		}
	}
}

func TestBlocks(t *testing.T) {
	fragments := []extract.Fragment{
		{Type: extract.FragmentText, Value: "one ", Block: 0},
		{Type: extract.FragmentText, Value: "two", Block: 0},
		{Type: extract.FragmentText, Value: "three", Block: 2},
	}

	require.Equal(t, []string{"one two", "three"}, Blocks(fragments, PlainURL))
	require.Nil(t, Blocks(nil, PlainURL))
	require.Equal(t, "a b", JoinText([]string{" a", "b "}))

	payload := TextRenderer.Render(template.Template{"text": "<data>"}, template.Values{"data": []string{"x ", " y"}})
	require.Equal(t, "x   y", payload["text"])
}
