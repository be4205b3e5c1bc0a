package converter

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"replycast/pkg/message"
	"replycast/pkg/template"
)

const (
	linkJSON   = `[{"type":"paragraph","children":[{"text":"This is "},{"type":"link","href":"http://www.google.com","children":[{"text":"GoogleLink"}]},{"text":" use for search"}]}]`
	imageJSON  = `[{"type":"image","alt":"Dog Image","src":"https://i.imgur.com/nFL91Pc.jpeg","children":[{"text":"Dog Image"}]}]`
	buttonJSON = `[
		{"type":"button","value":"/one","children":[{"text":"One"}]},
		{"type":"button","value":"/two","children":[{"text":"Two"}]},
		{"type":"button","value":"/three","children":[{"text":"Three"}]}
	]`
)

func newFactory(t *testing.T) *Factory {
	t.Helper()

	registry, err := template.Default()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}

	return NewFactory(registry, nil)
}

func decode(t *testing.T, raw string) any {
	t.Helper()

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	return value
}

func encode(t *testing.T, payload message.Payload) string {
	t.Helper()

	data, err := payload.JSON()
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}

	return string(data)
}

func TestLookupMatrix(t *testing.T) {
	f := newFactory(t)

	supported := map[message.Channel][]message.Kind{
		message.ChannelHangouts:  {message.KindLink, message.KindImage, message.KindVideo},
		message.ChannelSlack:     message.Kinds(),
		message.ChannelTelegram:  message.Kinds(),
		message.ChannelMessenger: {message.KindLink, message.KindImage, message.KindVideo, message.KindButton},
		message.ChannelWhatsApp:  message.Kinds(),
		message.ChannelMSTeams:   message.Kinds(),
		"instagram":              {message.KindLink, message.KindImage, message.KindVideo},
	}

	for channel, kinds := range supported {
		require.Equal(t, kinds, f.SupportedKinds(string(channel)), "channel %s", channel)

		for _, kind := range message.Kinds() {
			tr, ok := f.Lookup(kind, string(channel))
			want := false
			for _, k := range kinds {
				if k == kind {
					want = true
				}
			}
			if ok != want {
				t.Fatalf("Lookup(%s, %s) ok = %v, want %v", kind, channel, ok, want)
			}
			if ok {
				require.Equal(t, channel, tr.Channel())
				require.Equal(t, kind, tr.Kind())
			}
		}
	}
}

func TestLookupNotFound(t *testing.T) {
	f := newFactory(t)

	cases := []struct {
		kind    message.Kind
		channel string
	}{
		{message.KindLink, "hangout_fail"},
		{message.KindLink, "messenger_fake"},
		{message.KindImage, "nochannel"},
		{message.Kind("image_negative"), "slack"},
		{message.KindButton, "hangouts"},
	}

	for _, tc := range cases {
		tr, ok := f.Lookup(tc.kind, tc.channel)
		if ok || tr != nil {
			t.Fatalf("Lookup(%s, %s) = %v, %v, want not found", tc.kind, tc.channel, tr, ok)
		}
	}
}

func TestLookupAliases(t *testing.T) {
	f := newFactory(t)

	tr, ok := f.Lookup(message.KindLink, " Hangout ")
	require.True(t, ok)
	require.Equal(t, message.ChannelHangouts, tr.Channel())

	tr, ok = f.Lookup(message.KindButton, "teams")
	require.True(t, ok)
	require.Equal(t, message.ChannelMSTeams, tr.Channel())
}

func TestScenarioHangoutsLink(t *testing.T) {
	tr, ok := newFactory(t).Lookup(message.KindLink, "hangouts")
	require.True(t, ok)

	payload, err := tr.Convert(decode(t, linkJSON))
	require.NoError(t, err)
	require.JSONEq(t, `{"text":"This is <http://www.google.com|GoogleLink> use for search"}`, encode(t, payload))
}

func TestScenarioWhatsAppLink(t *testing.T) {
	payload, err := newFactory(t).Convert(message.KindLink, "whatsapp", decode(t, linkJSON))
	require.NoError(t, err)
	require.JSONEq(t, `{"preview_url":true,"body":"This is http://www.google.com use for search"}`, encode(t, payload))
}

func TestScenarioWhatsAppButtonLimit(t *testing.T) {
	f := newFactory(t)

	payload, err := f.Convert(message.KindButton, "whatsapp", decode(t, buttonJSON))
	require.NoError(t, err)
	require.Contains(t, encode(t, payload), `"id":"/one"`)

	four := `[
		{"type":"button","value":"/one","children":[{"text":"One"}]},
		{"type":"button","value":"/two","children":[{"text":"Two"}]},
		{"type":"button","value":"/three","children":[{"text":"Three"}]},
		{"type":"button","value":"/four","children":[{"text":"Four"}]}
	]`
	_, err = f.Convert(message.KindButton, "whatsapp", decode(t, four))
	require.ErrorIs(t, err, message.ErrConversion)
	require.False(t, errors.Is(err, message.ErrUnsupported))
}

func TestScenarioHangoutsImage(t *testing.T) {
	payload, err := newFactory(t).Convert(message.KindImage, "hangouts", decode(t, imageJSON))
	require.NoError(t, err)
	require.JSONEq(t, `{"cards":[{"sections":[{"widgets":[
		{"textParagraph":{"text":"Dog Image"}},
		{"image":{"imageUrl":"https://i.imgur.com/nFL91Pc.jpeg","onClick":{"openLink":{"url":"https://i.imgur.com/nFL91Pc.jpeg"}}}}
	]}]}]}`, encode(t, payload))
}

func TestScenarioUnknownChannel(t *testing.T) {
	f := newFactory(t)

	_, err := f.Convert(message.KindLink, "hangout_fail", decode(t, linkJSON))
	require.ErrorIs(t, err, message.ErrConversion)
	require.ErrorIs(t, err, message.ErrUnsupported)

	for _, channel := range []message.Channel{"hangout_fail", "messenger_fake", "whatsapp_failed"} {
		payload, err := f.New(message.KindLink, channel).Convert(decode(t, linkJSON))
		require.Nil(t, payload)
		require.ErrorIs(t, err, message.ErrConversion, "channel %s", channel)
	}
}

func TestConvertIsIdempotent(t *testing.T) {
	f := newFactory(t)

	for _, channel := range f.Channels() {
		for _, kind := range []message.Kind{message.KindLink, message.KindImage} {
			tr, ok := f.Lookup(kind, string(channel))
			require.True(t, ok)

			raw := decode(t, linkJSON)
			if kind == message.KindImage {
				raw = decode(t, imageJSON)
			}

			first, err := tr.Convert(raw)
			require.NoError(t, err)
			second, err := tr.Convert(raw)
			require.NoError(t, err)
			require.Equal(t, encode(t, first), encode(t, second))
		}
	}
}

func TestConcurrentConversions(t *testing.T) {
	tr, ok := newFactory(t).Lookup(message.KindButton, "slack")
	require.True(t, ok)

	raw := decode(t, buttonJSON)
	want, err := tr.Convert(raw)
	require.NoError(t, err)
	wantJSON := encode(t, want)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Go(func() {
			got, err := tr.Convert(raw)
			if err != nil {
				errs <- err
				return
			}
			data, err := got.JSON()
			if err != nil {
				errs <- err
				return
			}
			if string(data) != wantJSON {
				errs <- errors.New("payload differs")
			}
		})
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent convert: %v", err)
	}
}

func TestCapabilities(t *testing.T) {
	matrix := newFactory(t).Capabilities()
	require.Len(t, matrix, 7)

	byChannel := make(map[message.Channel]Capability, len(matrix))
	for _, row := range matrix {
		byChannel[row.Channel] = row
	}

	require.True(t, byChannel["instagram"].Generic)
	require.False(t, byChannel[message.ChannelSlack].Generic)
	require.Equal(t, 3, byChannel[message.ChannelWhatsApp].Limits.Buttons)
}

func TestPlainText(t *testing.T) {
	cases := []struct {
		kind message.Kind
		raw  string
		want string
	}{
		{message.KindLink, linkJSON, "This is GoogleLink (http://www.google.com) use for search"},
		{message.KindImage, imageJSON, "Dog Image https://i.imgur.com/nFL91Pc.jpeg"},
		{message.KindVideo, `[{"type":"video","url":"https://www.youtube.com/watch?v=YFbCaahCWQ0"}]`, "https://www.youtube.com/watch?v=YFbCaahCWQ0"},
		{message.KindButton, buttonJSON, "Please select from quick buttons:\n1. One\n2. Two\n3. Three"},
		{message.KindDropdown, `{"header":"Fruit","body":"Pick","options":[{"label":"Apple"}]}`, "Fruit\nPick\n1. Apple"},
	}

	for _, tc := range cases {
		got, err := PlainText(tc.kind, decode(t, tc.raw))
		if err != nil {
			t.Fatalf("PlainText(%s) error = %v", tc.kind, err)
		}
		if got != tc.want {
			t.Fatalf("PlainText(%s) = %q, want %q", tc.kind, got, tc.want)
		}
	}

	_, err := PlainText(message.KindImage, decode(t, `[{"type":"image"}]`))
	require.ErrorIs(t, err, message.ErrMalformedInput)
}
