package tui

import (
	"context"
	"fmt"
	"os"

	"charm.land/bubbles/v2/filepicker"
	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/actionboard/internal/app"
)

// View names one top-level screen.
type View string

const (
	ViewUpload View = "upload"
	ViewBoard  View = "board"
)

// uploadMode tracks which file input, if any, owns the keyboard.
type uploadMode int

const (
	uploadModeNone uploadMode = iota
	uploadModePicker
	uploadModePath
)

// confirmState holds an open delete confirmation. choice 0 confirms, 1 cancels.
type confirmState struct {
	prompt app.DeletePrompt
	choice int
}

// dragState tracks a card grabbed by the mouse.
type dragState struct {
	taskID     int64
	fromColumn int
}

// Model is the root bubbletea model routing between the upload and board views.
type Model struct {
	ctx     context.Context
	backend app.Backend
	board   *app.Board
	upload  *app.Upload

	uploadOpts []app.UploadOption

	ready  bool
	width  int
	height int
	view   View
	status string

	help     help.Model
	keys     keyMap
	spinner  spinner.Model
	markdown *markdownRenderer

	cardFields    CardFieldConfig
	confirmDelete bool
	startDir      string
	copyText      func(string) error

	uploadMode uploadMode
	picker     filepicker.Model
	pathInput  textinput.Model

	selectedColumn int
	selectedTask   int
	drag           *dragState
	confirm        *confirmState
	alerts         []app.Alert

	reconciliation app.Reconciliation
}

type fetchedMsg struct {
	res app.FetchResult
}

type statusSavedMsg struct {
	res app.StatusResult
}

type deletedMsg struct {
	res app.DeleteResult
}

type workflowMsg struct {
	out app.WorkflowOutcome
}

type copiedMsg struct {
	err error
}

// NewModel constructs the root model over one backend.
func NewModel(backend app.Backend, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	pathInput := textinput.New()
	pathInput.Prompt = "path: "
	pathInput.Placeholder = "/path/to/meeting.mp3"
	pathInput.CharLimit = 1024

	m := Model{
		ctx:           context.Background(),
		backend:       backend,
		view:          ViewUpload,
		help:          h,
		keys:          newKeyMap(),
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		markdown:      &markdownRenderer{},
		cardFields:    DefaultCardFieldConfig(),
		confirmDelete: true,
		copyText:      clipboard.WriteAll,
		pathInput:     pathInput,
	}
	if cwd, err := os.Getwd(); err == nil {
		m.startDir = cwd
	} else {
		m.startDir = "."
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.board = app.NewBoard(backend)
	m.upload = app.NewUpload(backend, m.uploadOpts...)
	return m
}

// Init fetches the board when it is the first view.
func (m Model) Init() tea.Cmd {
	if m.view == ViewBoard {
		return m.fetchTasks()
	}
	return nil
}

// Update routes one message to the owning view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		if m.uploadMode == uploadModePicker {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		return m, nil

	case spinner.TickMsg:
		if !m.upload.Busy() && !m.board.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchedMsg:
		m.reconciliation = m.board.ApplyFetch(msg.res)
		if err := m.board.Err(); err != nil {
			m.status = "load failed: " + app.FailureDetail(err)
		} else if !m.board.Loading() {
			m.status = "ready"
		}
		m.clampSelection()
		return m, nil

	case statusSavedMsg:
		if alert := m.board.ApplyStatus(msg.res); alert != nil {
			m.alerts = append(m.alerts, *alert)
			m.status = "status update failed"
		} else {
			m.status = fmt.Sprintf("task #%d saved as %s", msg.res.TaskID, msg.res.Status)
		}
		return m, nil

	case deletedMsg:
		if alert := m.board.ApplyDelete(msg.res); alert != nil {
			m.alerts = append(m.alerts, *alert)
			m.status = "delete failed"
		} else {
			m.status = fmt.Sprintf("task #%d deleted", msg.res.TaskID)
		}
		m.clampSelection()
		return m, nil

	case workflowMsg:
		m.upload.ApplyOutcome(msg.out)
		if msg.out.Err != nil {
			m.status = "upload failed"
		} else {
			m.status = "upload complete"
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		} else {
			m.status = "summary copied"
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		if m.view == ViewBoard && !m.modalOpen() {
			return m.handleBoardClick(msg)
		}
		return m, nil

	case tea.MouseReleaseMsg:
		if m.view == ViewBoard && !m.modalOpen() {
			return m.handleBoardRelease(msg)
		}
		return m, nil
	}

	if m.uploadMode == uploadModePicker {
		return m.updatePicker(msg)
	}
	return m, nil
}

// View renders the active screen.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// render returns the full frame as text.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}
	var body string
	switch m.view {
	case ViewBoard:
		body = m.renderBoardView()
	default:
		body = m.renderUploadView()
	}
	if overlay := m.renderOverlay(); overlay != "" {
		height := m.height
		if height <= 0 {
			height = countLines(body)
		}
		body = overlayOnContent(body, overlay, max(1, m.width), max(1, height))
	}
	return body
}

// modalOpen reports whether a modal owns the keyboard.
func (m Model) modalOpen() bool {
	return m.confirm != nil || len(m.alerts) > 0 || m.help.ShowAll
}

// handleKey applies the key precedence: confirm modal, alerts, upload inputs, then view keys.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}
	if len(m.alerts) > 0 {
		switch {
		case key.Matches(msg, m.keys.confirmApply), key.Matches(msg, m.keys.cancel):
			m.alerts = m.alerts[1:]
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		}
		return m, nil
	}
	if m.view == ViewUpload {
		switch m.uploadMode {
		case uploadModePicker:
			if key.Matches(msg, m.keys.cancel) {
				m.uploadMode = uploadModeNone
				m.status = "cancelled"
				return m, nil
			}
			return m.updatePicker(msg)
		case uploadModePath:
			return m.handlePathKey(msg)
		}
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case m.help.ShowAll && key.Matches(msg, m.keys.cancel):
		m.help.ShowAll = false
		return m, nil
	case key.Matches(msg, m.keys.switchView):
		return m.switchView()
	}
	if m.help.ShowAll {
		return m, nil
	}

	if m.view == ViewBoard {
		return m.handleBoardKey(msg)
	}
	return m.handleUploadKey(msg)
}

// switchView toggles between upload and board. Leaving the upload view drops its result.
func (m Model) switchView() (tea.Model, tea.Cmd) {
	if m.view == ViewUpload {
		m.upload.DiscardResult()
		m.view = ViewBoard
		m.status = ""
		return m, m.fetchTasks()
	}
	m.view = ViewUpload
	m.drag = nil
	m.status = ""
	return m, nil
}

// handleConfirmKey resolves the delete confirmation.
func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirmYes):
		return m.resolveConfirm(true)
	case key.Matches(msg, m.keys.confirmNo):
		return m.resolveConfirm(false)
	case key.Matches(msg, m.keys.confirmSwitch):
		m.confirm.choice = 1 - m.confirm.choice
		return m, nil
	case key.Matches(msg, m.keys.confirmApply):
		return m.resolveConfirm(m.confirm.choice == 0)
	}
	return m, nil
}

// resolveConfirm closes the confirmation and issues the delete when accepted.
func (m Model) resolveConfirm(confirmed bool) (tea.Model, tea.Cmd) {
	prompt := m.confirm.prompt
	m.confirm = nil
	req, ok := m.board.ConfirmDelete(prompt, confirmed)
	if !ok {
		m.status = "cancelled"
		return m, nil
	}
	m.status = fmt.Sprintf("deleting task #%d...", prompt.Task.ID)
	return m, runRequest(m.ctx, req, func(res app.DeleteResult) tea.Msg { return deletedMsg{res: res} })
}

// fetchTasks starts one board fetch with the loading spinner.
func (m Model) fetchTasks() tea.Cmd {
	req := m.board.FetchAll()
	return tea.Batch(
		runRequest(m.ctx, req, func(res app.FetchResult) tea.Msg { return fetchedMsg{res: res} }),
		m.spinner.Tick,
	)
}

// runRequest adapts one deferred backend call to a command.
func runRequest[T any](ctx context.Context, req app.Request[T], wrap func(T) tea.Msg) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		return wrap(req(ctx))
	}
}
