package base

import (
	"fmt"
	"strings"

	"replycast/pkg/extract"
	"replycast/pkg/template"
)

// MarkupFunc writes one fragment into channel text.
type MarkupFunc func(extract.Fragment) string

// AngleLink writes links as <url|label>.
func AngleLink(f extract.Fragment) string {
	if f.Type != extract.FragmentLink {
		return f.Value
	}

	return fmt.Sprintf("<%s|%s>", f.URL, f.Value)
}

// MarkdownLink writes links as [label](url).
func MarkdownLink(f extract.Fragment) string {
	if f.Type != extract.FragmentLink {
		return f.Value
	}

	return fmt.Sprintf("[%s](%s)", f.Value, f.URL)
}

// PlainURL writes links as the bare URL and drops the label.
func PlainURL(f extract.Fragment) string {
	if f.Type != extract.FragmentLink {
		return f.Value
	}

	return f.URL
}

// LabelWithURL writes links as "label (url)", or the URL alone when the label
// is the URL.
func LabelWithURL(f extract.Fragment) string {
	if f.Type != extract.FragmentLink {
		return f.Value
	}
	if f.Value == "" || f.Value == f.URL {
		return f.URL
	}

	return fmt.Sprintf("%s (%s)", f.Value, f.URL)
}

// Blocks renders fragments with markup and groups them by top-level block.
func Blocks(fragments []extract.Fragment, markup MarkupFunc) []string {
	var (
		blocks  []string
		current strings.Builder
		block   = -1
	)

	for _, f := range fragments {
		if f.Block != block && block != -1 {
			blocks = append(blocks, current.String())
			current.Reset()
		}
		block = f.Block
		current.WriteString(markup(f))
	}
	if block != -1 {
		blocks = append(blocks, current.String())
	}

	return blocks
}

// JoinText joins block text with single spaces and trims the result.
func JoinText(blocks []string) string {
	return strings.TrimSpace(strings.Join(blocks, " "))
}

// TextRenderer is the renderer used for all text-bearing templates.
var TextRenderer = template.Renderer{
	Join: func(_ string, blocks []string) string { return JoinText(blocks) },
}
