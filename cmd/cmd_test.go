package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"replycast/pkg/bus"
	"replycast/pkg/config"
	"replycast/pkg/converter"
	"replycast/pkg/message"
	"replycast/pkg/template"
)

const linkJSON = `[{"type":"paragraph","children":[{"text":"This is "},{"type":"link","href":"http://www.google.com","children":[{"text":"GoogleLink"}]},{"text":" use for search"}]}]`

func testFactory(t *testing.T) *converter.Factory {
	t.Helper()

	registry, err := template.Default()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}

	return converter.NewFactory(registry, nil)
}

func isolateConfig(t *testing.T) {
	t.Helper()

	t.Setenv("REPLYCAST_CONFIG", "")
	t.Setenv("REPLYCAST_TEMPLATES", "")
	t.Setenv("REPLYCAST_BATCH_WORKERS", "")
	t.Setenv("REPLYCAST_LOG_LEVEL", "error")
	t.Chdir(t.TempDir())
}

func TestReadElementFromStdinAndFile(t *testing.T) {
	raw, err := readElement(strings.NewReader(linkJSON), "-")
	require.NoError(t, err)
	require.IsType(t, []any{}, raw)

	path := filepath.Join(t.TempDir(), "element.json")
	if err := os.WriteFile(path, []byte(linkJSON), 0o600); err != nil {
		t.Fatalf("write element: %v", err)
	}
	raw, err = readElement(nil, path)
	require.NoError(t, err)
	require.IsType(t, []any{}, raw)

	_, err = readElement(strings.NewReader("{"), "-")
	require.Error(t, err)
}

func TestRenderElementWritesUnescapedJSON(t *testing.T) {
	raw, err := readElement(strings.NewReader(linkJSON), "-")
	require.NoError(t, err)

	var out bytes.Buffer
	err = renderElement(&out, testFactory(t), message.KindLink, "hangouts", raw, false)
	require.NoError(t, err)
	require.Equal(t, `{"text":"This is <http://www.google.com|GoogleLink> use for search"}`+"\n", out.String())
}

func TestRenderElementUnknownChannel(t *testing.T) {
	raw, err := readElement(strings.NewReader(linkJSON), "-")
	require.NoError(t, err)

	var out bytes.Buffer
	err = renderElement(&out, testFactory(t), message.KindLink, "hangout_fail", raw, false)
	require.ErrorIs(t, err, message.ErrConversion)
	require.Empty(t, out.String())
}

func TestRenderCommand(t *testing.T) {
	isolateConfig(t)

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(linkJSON))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"render", "--channel", "WhatsApp", "--kind", "link", "--input", "-"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	require.JSONEq(t, `{"preview_url":true,"body":"This is http://www.google.com use for search"}`, out.String())
}

func TestLoadRegistryFromFile(t *testing.T) {
	registry, err := loadRegistry(config.TemplatesConfig{})
	require.NoError(t, err)
	require.True(t, registry.HasChannel(message.ChannelSlack))

	path := filepath.Join(t.TempDir(), "channels.yaml")
	if err := os.WriteFile(path, []byte("channels:\n  line:\n    templates:\n      link: {text: \"<data>\"}\n"), 0o600); err != nil {
		t.Fatalf("write templates: %v", err)
	}

	registry, err = loadRegistry(config.TemplatesConfig{Path: path})
	require.NoError(t, err)
	require.Equal(t, []message.Channel{"line"}, registry.Channels())

	_, err = loadRegistry(config.TemplatesConfig{Path: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestReadRequests(t *testing.T) {
	input := `{"id":"a","channel":"slack","kind":"link","element":` + linkJSON + `}

{"channel":"whatsapp","kind":"image","element":{"type":"image","src":"https://i.imgur.com/nFL91Pc.jpeg"}}
`
	reqs, err := readRequests(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	require.Equal(t, "a", reqs[0].ID)
	require.Equal(t, message.KindImage, reqs[1].Kind)

	_, err = readRequests(strings.NewReader("not json\n"))
	require.ErrorContains(t, err, "line 1")
}

func TestRunBatchAndWriteResults(t *testing.T) {
	reqs, err := readRequests(strings.NewReader(
		`{"id":"a","channel":"hangouts","kind":"link","element":` + linkJSON + "}\n" +
			`{"id":"b","channel":"hangouts","kind":"button","element":[{"type":"button","value":"/yes","children":[{"text":"Yes"}]}]}` + "\n",
	))
	require.NoError(t, err)

	pool := bus.NewPool(testFactory(t), bus.PoolOptions{Workers: 2, Fallback: true})
	results, err := runBatch(context.Background(), pool, reqs, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeResults(&out, results))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first, second bus.RenderResult
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	require.Equal(t, "a", first.ID)
	require.True(t, first.OK())
	require.Equal(t, "b", second.ID)
	require.Equal(t, message.ErrorConversion, second.Category)
	require.Equal(t, "Please select from quick buttons:\n1. Yes", second.Fallback)
}
