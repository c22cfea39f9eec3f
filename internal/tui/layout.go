package tui

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// renderHeader renders the title with view tabs.
func (m Model) renderHeader(accent, dim color.Color) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	active := lipgloss.NewStyle().Bold(true).Foreground(accent)
	inactive := lipgloss.NewStyle().Foreground(dim)
	tab := func(v View, label string) string {
		if m.view == v {
			return active.Render("[" + label + "]")
		}
		return inactive.Render(" " + label + " ")
	}
	return titleStyle.Render("actionboard") + "  " + tab(ViewUpload, "Upload") + " " + tab(ViewBoard, "Board")
}

// withFooter pins extra lines, the status line, and the help line to the bottom of the frame.
func (m Model) withFooter(content string, keys viewKeys, extra []string) string {
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	footer := append([]string(nil), extra...)
	if strings.TrimSpace(m.status) != "" {
		footer = append(footer, lipgloss.NewStyle().Foreground(dim).Render(m.status))
	}
	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	footer = append(footer, lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(keys)))
	footerText := strings.Join(footer, "\n")

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(footerText)))
	}
	return content + "\n" + footerText
}

// renderOverlay renders the topmost modal, if any.
func (m Model) renderOverlay() string {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	maxWidth := m.width - 8
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	switch {
	case m.confirm != nil:
		if maxWidth > 0 {
			box = box.Width(clamp(maxWidth, 36, 72))
		}
		confirmStyle := hintStyle
		cancelStyle := hintStyle
		if m.confirm.choice == 0 {
			confirmStyle = titleStyle
		} else {
			cancelStyle = titleStyle
		}
		lines := []string{
			titleStyle.Render("Delete Task"),
			m.confirm.prompt.Question(),
			"",
			confirmStyle.Render("[delete]") + "  " + cancelStyle.Render("[cancel]"),
			hintStyle.Render("y confirm • n/esc cancel • h/l switch • enter apply"),
		}
		return box.Render(strings.Join(lines, "\n"))

	case len(m.alerts) > 0:
		alert := m.alerts[0]
		red := lipgloss.Color("#EF4444")
		box = box.BorderForeground(red)
		if maxWidth > 0 {
			box = box.Width(clamp(maxWidth, 36, 72))
		}
		lines := []string{
			lipgloss.NewStyle().Bold(true).Foreground(red).Render(alert.Title),
			alert.Message,
			"",
			hintStyle.Render("enter/esc dismiss"),
		}
		return box.Render(strings.Join(lines, "\n"))

	case m.help.ShowAll:
		keys := m.keys.uploadHelp()
		if m.view == ViewBoard {
			keys = m.keys.boardHelp()
		}
		h := m.help
		h.SetWidth(max(20, maxWidth-4))
		return box.Render(titleStyle.Render("Keys") + "\n" + h.View(keys))
	}
	return ""
}

// clamp clamps v into [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or truncates content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay over base on a canvas.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}

func countLines(s string) int {
	return strings.Count(s, "\n") + 1
}
