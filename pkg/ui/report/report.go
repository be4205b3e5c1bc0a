// Package report renders CLI output for humans.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"replycast/pkg/converter"
	"replycast/pkg/message"
)

const (
	channelWidth = 12
	kindWidth    = 10
	mark         = "yes"
	noMark       = "-"
)

// Matrix renders the channel x kind support table.
func Matrix(rows []converter.Capability) string {
	th := defaultTheme()

	header := []string{th.header.Width(channelWidth).Render("channel")}
	for _, kind := range message.Kinds() {
		header = append(header, th.header.Width(kindWidth).Render(string(kind)))
	}
	header = append(header, th.header.Render("limits"))

	lines := []string{
		th.title.Render("Supported channels"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, header...),
	}

	for _, row := range rows {
		cells := []string{th.channel.Width(channelWidth).Render(channelLabel(row))}
		for _, kind := range message.Kinds() {
			if supports(row, kind) {
				cells = append(cells, th.supported.Width(kindWidth).Render(mark))
			} else {
				cells = append(cells, th.missing.Width(kindWidth).Render(noMark))
			}
		}
		cells = append(cells, th.limits.Render(limitsLabel(row)))
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	lines = append(lines, "", th.hint.Render("* served by the generic encoder"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Error renders a failure in a bordered box.
func Error(err error) string {
	title := "render failed"
	if category := message.CategoryFromError(err); category != "" {
		title = category
	}

	return defaultTheme().errorBox.Render(fmt.Sprintf("%s\n%v", title, err))
}

func channelLabel(row converter.Capability) string {
	if row.Generic {
		return string(row.Channel) + "*"
	}

	return string(row.Channel)
}

func supports(row converter.Capability, kind message.Kind) bool {
	for _, k := range row.Kinds {
		if k == kind {
			return true
		}
	}

	return false
}

func limitsLabel(row converter.Capability) string {
	var parts []string
	if row.Limits.Buttons > 0 {
		parts = append(parts, fmt.Sprintf("buttons<=%d", row.Limits.Buttons))
	}
	if row.Limits.Options > 0 {
		parts = append(parts, fmt.Sprintf("options<=%d", row.Limits.Options))
	}
	if row.Limits.PayloadBytes > 0 {
		parts = append(parts, fmt.Sprintf("payload<=%dB", row.Limits.PayloadBytes))
	}

	return strings.Join(parts, " ")
}
