package slack

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"replycast/pkg/message"
	"replycast/pkg/template"
)

func convert(t *testing.T, kind message.Kind, raw string) (string, error) {
	t.Helper()

	registry, err := template.Default()
	require.NoError(t, err)

	var value any
	require.NoError(t, json.Unmarshal([]byte(raw), &value))

	payload, err := New(kind, message.ChannelSlack, registry, nil).Convert(value)
	if err != nil {
		return "", err
	}

	data, err := payload.JSON()
	require.NoError(t, err)

	return string(data), nil
}

func TestLink(t *testing.T) {
	got, err := convert(t, message.KindLink, `[{"type":"paragraph","children":[{"text":"Fish & chips on "},{"type":"link","href":"http://www.google.com","children":[{"text":"GoogleLink"}]}]}]`)
	require.NoError(t, err)
	require.JSONEq(t, `{"blocks":[{"type":"section","text":{"type":"mrkdwn","text":"Fish &amp; chips on <http://www.google.com|GoogleLink>"}}]}`, got)
}

func TestImage(t *testing.T) {
	got, err := convert(t, message.KindImage, `[{"type":"image","alt":"Dog Image","src":"https://i.imgur.com/nFL91Pc.jpeg","children":[{"text":"Dog Image"}]}]`)
	require.NoError(t, err)
	require.JSONEq(t, `{"blocks":[{
		"type":"image",
		"title":{"type":"plain_text","text":"Dog Image","emoji":true},
		"image_url":"https://i.imgur.com/nFL91Pc.jpeg",
		"alt_text":"Dog Image"
	}]}`, got)

	got, err = convert(t, message.KindImage, `{"type":"image","src":"https://i.imgur.com/nFL91Pc.jpeg"}`)
	require.NoError(t, err)
	require.Contains(t, got, `"alt_text":"Image"`)
}

func TestButtons(t *testing.T) {
	got, err := convert(t, message.KindButton, `[
		{"type":"button","value":"/greet","children":[{"text":"Hello"}]},
		{"type":"button","value":"/bye","children":[{"text":"Bye"}]}
	]`)
	require.NoError(t, err)
	require.JSONEq(t, `{"blocks":[
		{"type":"section","text":{"type":"mrkdwn","text":"Please select from quick buttons:"}},
		{"type":"actions","elements":[
			{"type":"button","text":{"type":"plain_text","text":"Hello","emoji":true},"value":"/greet"},
			{"type":"button","text":{"type":"plain_text","text":"Bye","emoji":true},"value":"/bye"}
		]}
	]}`, got)
}

func TestDropdownWithHeader(t *testing.T) {
	got, err := convert(t, message.KindDropdown, `{"header":"Fruits","body":"Pick one","button":"Choose","options":[
		{"label":"Apple","intent":"order","slot":"fruit","value":"apple"},
		{"label":"Pear","value":"pear"}
	]}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"blocks":[
		{"type":"header","text":{"type":"plain_text","text":"Fruits","emoji":true}},
		{"type":"section","text":{"type":"mrkdwn","text":"Pick one"},"accessory":{
			"type":"static_select",
			"placeholder":{"type":"plain_text","text":"Choose","emoji":true},
			"options":[
				{"text":{"type":"plain_text","text":"Apple","emoji":true},"value":"/order{\"fruit\":\"apple\"}"},
				{"text":{"type":"plain_text","text":"Pear","emoji":true},"value":"pear"}
			]
		}}
	]}`, got)
}

func TestDropdownWithoutHeader(t *testing.T) {
	got, err := convert(t, message.KindDropdown, `{"options":[{"label":"Apple","value":"apple"}]}`)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &payload))
	require.Len(t, payload["blocks"], 1)
	require.Contains(t, got, `"text":"Select"`)
}

func TestVideo(t *testing.T) {
	got, err := convert(t, message.KindVideo, `[{"type":"video","url":"https://www.youtube.com/watch?v=YFbCaahCWQ0"}]`)
	require.NoError(t, err)
	require.JSONEq(t, `{"blocks":[{"type":"section","text":{"type":"mrkdwn","text":"https://www.youtube.com/watch?v=YFbCaahCWQ0"}}]}`, got)
}
