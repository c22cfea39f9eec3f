package tui

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/actionboard/internal/app"
	"github.com/hylla/actionboard/internal/domain"
)

const (
	// boardTop is the first row of the column boxes: header, then a spacer.
	boardTop = 2
	// cardRows is the height of one card: title, meta, gap.
	cardRows = 3
	// cardsOffset is the row of the first card below the box top: border, title, gap.
	cardsOffset = 3
	// boardFooterRows reserves summary, status, and help lines below the columns.
	boardFooterRows = 5
)

// handleBoardKey handles keys of the board view.
func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.reload):
		m.status = "refreshing..."
		return m, m.fetchTasks()
	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn = clamp(m.selectedColumn-1, 0, len(domain.Statuses())-1)
		m.clampSelection()
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn = clamp(m.selectedColumn+1, 0, len(domain.Statuses())-1)
		m.clampSelection()
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.selectedTask--
		m.clampSelection()
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selectedTask++
		m.clampSelection()
		return m, nil
	case key.Matches(msg, m.keys.advanceTask):
		return m.stepSelected(m.board.Advance, "already done")
	case key.Matches(msg, m.keys.regressTask):
		return m.stepSelected(m.board.Regress, "already in To Do")
	case key.Matches(msg, m.keys.deleteTask):
		return m.deleteSelected()
	}
	return m, nil
}

// stepSelected moves the selected task one status step and keeps it selected.
func (m Model) stepSelected(step func(int64) (app.Request[app.StatusResult], error), edgeMsg string) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskValue()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	req, err := step(task.ID)
	if err != nil {
		m.status = fmt.Sprintf("task #%d: %s", task.ID, edgeMsg)
		return m, nil
	}
	m.followTask(task.ID)
	current, _ := m.board.Task(task.ID)
	m.status = fmt.Sprintf("moving task #%d to %s...", task.ID, current.Status)
	return m, m.saveStatus(req)
}

// deleteSelected opens the delete confirmation, or deletes directly when confirmation is off.
func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskValue()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	prompt, err := m.board.PrepareDelete(task.ID)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.confirm = &confirmState{prompt: prompt}
	if !m.confirmDelete {
		return m.resolveConfirm(true)
	}
	m.status = "confirm delete"
	return m, nil
}

// saveStatus runs one status write.
func (m Model) saveStatus(req app.Request[app.StatusResult]) tea.Cmd {
	return runRequest(m.ctx, req, func(res app.StatusResult) tea.Msg { return statusSavedMsg{res: res} })
}

// handleBoardClick selects the card under the pointer and starts a drag.
func (m Model) handleBoardClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	m.drag = nil
	if msg.Button != tea.MouseLeft {
		return m, nil
	}
	col, ok := m.columnAt(msg.X)
	if !ok {
		return m, nil
	}
	m.selectedColumn = col
	idx, ok := m.cardAt(col, msg.Y)
	if !ok {
		m.clampSelection()
		return m, nil
	}
	m.selectedTask = idx
	m.clampSelection()
	if task, ok := m.selectedTaskValue(); ok {
		m.drag = &dragState{taskID: task.ID, fromColumn: col}
	}
	return m, nil
}

// handleBoardRelease drops a dragged card on the column under the pointer.
func (m Model) handleBoardRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	drag := m.drag
	m.drag = nil
	if drag == nil {
		return m, nil
	}
	col, ok := m.columnAt(msg.X)
	if !ok || col == drag.fromColumn {
		return m, nil
	}
	target := domain.Statuses()[col]
	req, moved, err := m.board.MoveViaDrag(app.DropEvent{SourceTaskID: drag.taskID, TargetColumn: target})
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	if !moved {
		return m, nil
	}
	m.followTask(drag.taskID)
	m.status = fmt.Sprintf("moving task #%d to %s...", drag.taskID, target)
	return m, m.saveStatus(req)
}

// columnAt maps a pointer column to a board column index.
func (m Model) columnAt(x int) (int, bool) {
	slot := m.columnSlotWidth()
	if x < 0 || slot <= 0 {
		return 0, false
	}
	idx := x / slot
	if idx >= len(domain.Statuses()) {
		return 0, false
	}
	return idx, true
}

// cardAt maps a pointer row to a card index within one column.
func (m Model) cardAt(col, y int) (int, bool) {
	rel := y - boardTop - cardsOffset
	if rel < 0 {
		return 0, false
	}
	part := m.board.Columns()
	if col < 0 || col >= len(part.Columns) {
		return 0, false
	}
	tasks := part.Columns[col].Tasks
	idx := m.columnScroll(col, len(tasks)) + rel/cardRows
	if rel/cardRows >= m.visibleCards() || idx >= len(tasks) {
		return 0, false
	}
	return idx, true
}

// selectedTaskValue returns the task under the cursor.
func (m Model) selectedTaskValue() (domain.Task, bool) {
	part := m.board.Columns()
	if m.selectedColumn < 0 || m.selectedColumn >= len(part.Columns) {
		return domain.Task{}, false
	}
	tasks := part.Columns[m.selectedColumn].Tasks
	if m.selectedTask < 0 || m.selectedTask >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.selectedTask], true
}

// followTask moves the cursor to wherever the task now sits.
func (m *Model) followTask(id int64) {
	for col, column := range m.board.Columns().Columns {
		for idx, task := range column.Tasks {
			if task.ID == id {
				m.selectedColumn = col
				m.selectedTask = idx
				return
			}
		}
	}
	m.clampSelection()
}

// clampSelection keeps the cursor inside the current partition.
func (m *Model) clampSelection() {
	part := m.board.Columns()
	m.selectedColumn = clamp(m.selectedColumn, 0, len(part.Columns)-1)
	if len(part.Columns) == 0 {
		m.selectedTask = 0
		return
	}
	m.selectedTask = clamp(m.selectedTask, 0, len(part.Columns[m.selectedColumn].Tasks)-1)
}

// columnStyle returns the box style shared by rendering and hit testing.
func (m Model) columnStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		MarginRight(1).
		Width(m.columnWidth())
}

// columnWidth returns the content width of one column.
func (m Model) columnWidth() int {
	columns := len(domain.Statuses())
	// border (2) + padding (2) + margin (1)
	const overhead = 5
	w := 28
	if m.width > 0 {
		w = (m.width - columns*overhead) / columns
	}
	return clamp(w, 18, 48)
}

// columnSlotWidth returns the rendered width of one column including its margin.
func (m Model) columnSlotWidth() int {
	return lipgloss.Width(m.columnStyle().Render(""))
}

// columnHeight returns the inner height of one column.
func (m Model) columnHeight() int {
	h := m.height - boardTop - boardFooterRows - 2
	return max(h, cardsOffset+cardRows)
}

// visibleCards returns how many cards fit in one column.
func (m Model) visibleCards() int {
	return max(1, (m.columnHeight()-(cardsOffset-1))/cardRows)
}

// columnScroll returns the first visible card of one column. Only the selected column scrolls.
func (m Model) columnScroll(col, total int) int {
	if col != m.selectedColumn {
		return 0
	}
	visible := m.visibleCards()
	if total <= visible || m.selectedTask < visible {
		return 0
	}
	return clamp(m.selectedTask-visible+1, 0, total-visible)
}

// renderBoardView renders the three status columns with footer.
func (m Model) renderBoardView() string {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	header := m.renderHeader(accent, dim)
	var body string
	switch {
	case m.board.Loading():
		body = m.spinner.View() + " loading tasks..."
	case m.board.Err() != nil:
		body = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Render("error: "+app.FailureDetail(m.board.Err())) +
			"\n\n" + lipgloss.NewStyle().Foreground(muted).Render("press r to retry")
	default:
		body = m.renderColumns(accent, muted, dim)
	}

	var extra []string
	part := m.board.Columns()
	summary := m.board.Summary()
	if n := m.board.PendingEdits(); n > 0 {
		summary += fmt.Sprintf(" | saving %d", n)
	}
	extra = append(extra, lipgloss.NewStyle().Foreground(muted).Render(summary))
	if m.cardFields.ShowUnrecognized && len(part.Unrecognized) > 0 {
		extra = append(extra, lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Render(unrecognizedLine(part.Unrecognized)))
	}
	if !m.reconciliation.Empty() {
		extra = append(extra, lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Render(reconciliationLine(m.reconciliation)))
	}
	return m.withFooter(header+"\n\n"+body, m.keys.boardHelp(), extra)
}

// renderColumns renders every status column side by side.
func (m Model) renderColumns(accent, muted, dim color.Color) string {
	part := m.board.Columns()
	base := m.columnStyle().BorderForeground(dim).Height(m.columnHeight())
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	draggedStyle := selectedStyle.Underline(true)
	metaStyle := lipgloss.NewStyle().Foreground(muted)
	width := max(8, m.columnWidth()-4)
	visible := m.visibleCards()

	views := make([]string, 0, len(part.Columns))
	for col, column := range part.Columns {
		style := base
		if col == m.selectedColumn {
			style = style.BorderForeground(accent)
		}
		lines := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", column.Status, len(column.Tasks))), ""}
		if len(column.Tasks) == 0 {
			lines = append(lines, metaStyle.Render("(empty)"))
		}
		start := m.columnScroll(col, len(column.Tasks))
		end := min(len(column.Tasks), start+visible)
		for idx := start; idx < end; idx++ {
			task := column.Tasks[idx]
			title := truncate(fmt.Sprintf("#%d %s", task.ID, task.Task), width)
			switch {
			case m.drag != nil && m.drag.taskID == task.ID:
				title = draggedStyle.Render(title)
			case col == m.selectedColumn && idx == m.selectedTask:
				title = selectedStyle.Render(title)
			}
			lines = append(lines, title, metaStyle.Render(truncate(m.cardMeta(task), width)), "")
		}
		views = append(views, style.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// cardMeta renders the second card line.
func (m Model) cardMeta(task domain.Task) string {
	parts := []string{task.AssigneeLabel()}
	if m.cardFields.ShowDueDate {
		if due := task.DueLabel(); due != "" {
			parts = append(parts, "due "+due)
		}
	}
	if m.cardFields.ShowConfidence && task.Confidence != nil {
		parts = append(parts, fmt.Sprintf("%.0f%%", *task.Confidence*100))
	}
	return strings.Join(parts, " · ")
}

func unrecognizedLine(tasks []domain.Task) string {
	labels := make([]string, 0, len(tasks))
	for _, task := range tasks {
		labels = append(labels, fmt.Sprintf("#%d %q", task.ID, task.Status))
	}
	return fmt.Sprintf("%d tasks with unknown status: %s", len(tasks), truncate(strings.Join(labels, ", "), 80))
}

func reconciliationLine(r app.Reconciliation) string {
	return fmt.Sprintf("refresh replaced %d unsaved move(s) with server state", len(r.Discarded))
}
