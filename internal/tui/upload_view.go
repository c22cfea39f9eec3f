package tui

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/filepicker"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"
	"github.com/hylla/actionboard/internal/app"
	"github.com/hylla/actionboard/internal/domain"
)

// handleUploadKey handles keys of the upload view outside the file inputs.
func (m Model) handleUploadKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.openPicker):
		return m.openPicker()
	case key.Matches(msg, m.keys.typePath):
		m.uploadMode = uploadModePath
		m.pathInput.SetValue("")
		if file, ok := m.upload.File(); ok {
			m.pathInput.SetValue(file.Path)
		}
		return m, m.pathInput.Focus()
	case key.Matches(msg, m.keys.destination):
		if m.upload.Busy() {
			m.status = "destination is locked while uploading"
			return m, nil
		}
		d := m.upload.ToggleDestination()
		m.status = "destination: " + destinationLabel(d)
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m.submitUpload()
	case key.Matches(msg, m.keys.clearFile):
		if m.upload.Busy() {
			return m, nil
		}
		m.upload.ClearFile()
		m.status = "file cleared"
		return m, nil
	case key.Matches(msg, m.keys.copySummary):
		return m.copySummary()
	}
	return m, nil
}

// openPicker starts the file browser filtered by the accepted extensions.
func (m Model) openPicker() (tea.Model, tea.Cmd) {
	if m.upload.Busy() {
		m.status = "upload in progress"
		return m, nil
	}
	fp := filepicker.New()
	fp.AllowedTypes = m.upload.AcceptedExtensions()
	fp.CurrentDirectory = m.startDir
	m.picker = fp
	m.uploadMode = uploadModePicker
	m.status = "choose an audio file"
	return m, m.picker.Init()
}

// updatePicker forwards one message to the file browser and applies a selection.
func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.uploadMode = uploadModeNone
		m.selectFile(path)
		return m, cmd
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.status = fmt.Sprintf("%s is not an accepted audio file", path)
	}
	return m, cmd
}

// handlePathKey edits the typed path input.
func (m Model) handlePathKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.uploadMode = uploadModeNone
		m.pathInput.Blur()
		m.status = "cancelled"
		return m, nil
	case msg.String() == "enter":
		if m.selectFile(m.pathInput.Value()) {
			m.uploadMode = uploadModeNone
			m.pathInput.Blur()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

// selectFile stores one selection and reports whether it was accepted.
func (m *Model) selectFile(path string) bool {
	file, err := m.upload.SelectFile(path)
	if err != nil {
		m.status = err.Error()
		return false
	}
	if !m.upload.AcceptsHint(file.Name) {
		m.status = fmt.Sprintf("selected %s; expected %s, the backend may reject it", file.Name, strings.Join(m.upload.AcceptedExtensions(), ", "))
		return true
	}
	m.status = "selected " + file.Name
	return true
}

// submitUpload starts the workflow for the selected file.
func (m Model) submitUpload() (tea.Model, tea.Cmd) {
	req, ok := m.upload.Submit()
	if !ok {
		if m.upload.Busy() {
			m.status = app.ErrUploadInFlight.Error()
		} else {
			m.status = app.ErrNoFileSelected.Error()
		}
		return m, nil
	}
	file, _ := m.upload.File()
	m.status = "uploading " + file.Name
	return m, tea.Batch(
		runRequest(m.ctx, req, func(out app.WorkflowOutcome) tea.Msg { return workflowMsg{out: out} }),
		m.spinner.Tick,
	)
}

// copySummary writes the current result summary to the clipboard.
func (m Model) copySummary() (tea.Model, tea.Cmd) {
	result, ok := m.upload.Result()
	if !ok || result.SummaryText() == "" {
		m.status = "no summary to copy"
		return m, nil
	}
	write := m.copyText
	text := result.SummaryText()
	return m, func() tea.Msg {
		return copiedMsg{err: write(text)}
	}
}

// renderUploadView renders the upload screen with its status and result panels.
func (m Model) renderUploadView() string {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	labelStyle := lipgloss.NewStyle().Foreground(muted)
	valueStyle := lipgloss.NewStyle().Bold(true)

	sections := []string{m.renderHeader(accent, dim), ""}

	fileLine := labelStyle.Render("file         ") + lipgloss.NewStyle().Foreground(dim).Render("no file selected")
	if file, ok := m.upload.File(); ok {
		fileLine = labelStyle.Render("file         ") + valueStyle.Render(file.Name) + labelStyle.Render("  "+humanize.Bytes(uint64(max(0, file.Size))))
	}
	sections = append(sections,
		fileLine,
		labelStyle.Render("accepts      ")+strings.Join(m.upload.AcceptedExtensions(), ", "),
		labelStyle.Render("destination  ")+valueStyle.Render(destinationLabel(m.upload.Destination())),
	)

	switch m.uploadMode {
	case uploadModePicker:
		sections = append(sections, "", lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Choose audio file"), m.picker.View())
	case uploadModePath:
		sections = append(sections, "", m.pathInput.View())
	}

	if line := m.renderWorkflowStatus(); line != "" {
		sections = append(sections, "", line)
	}
	if result, ok := m.upload.Result(); ok {
		sections = append(sections, "", m.renderResult(app.RenderResult(result), accent, muted))
	}
	return m.withFooter(strings.Join(sections, "\n"), m.keys.uploadHelp(), nil)
}

// renderWorkflowStatus renders the status line for the current workflow stage.
func (m Model) renderWorkflowStatus() string {
	p := m.upload.Presentation()
	if !p.Visible {
		return ""
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Color))
	prefix := p.Icon
	if p.Spinner {
		prefix = m.spinner.View() + " " + p.Icon
	}
	line := style.Render(prefix + " " + p.Label)
	if p.Detail != "" {
		line += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render(p.Detail)
	}
	return line
}

// renderResult renders one workflow result panel.
func (m Model) renderResult(view app.ResultView, accent, muted color.Color) string {
	width := clamp(m.width-4, 30, 100)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)
	lines := []string{titleStyle.Render(view.Headline)}
	if view.Summary != "" {
		lines = append(lines, "", m.markdown.render(view.Summary, width-4))
	}
	if len(view.Items) > 0 {
		lines = append(lines, "")
		for _, item := range view.Items {
			lines = append(lines, fmt.Sprintf("%s %s %s",
				badgeStyle(item.Kind).Render(item.Badge),
				truncate(item.Task, max(10, width-30)),
				hintStyle.Render("· "+item.Assignee),
			))
		}
	}
	if view.Hint != "" {
		lines = append(lines, "", hintStyle.Render(view.Hint))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// badgeStyle returns the badge style for one result item kind.
func badgeStyle(kind app.BadgeKind) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch kind {
	case app.BadgeSuccess:
		return base.Foreground(lipgloss.Color("#10B981"))
	case app.BadgeFailure:
		return base.Foreground(lipgloss.Color("#EF4444"))
	default:
		return base.Foreground(lipgloss.Color("#3B82F6"))
	}
}

func destinationLabel(d domain.Destination) string {
	switch d {
	case domain.DestinationNotion:
		return "Notion"
	case domain.DestinationInternal:
		return "Internal board"
	default:
		return string(d)
	}
}
