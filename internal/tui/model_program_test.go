package tui

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

// frameLog keeps the most recent frame a program rendered.
type frameLog struct {
	mu    sync.Mutex
	frame string
}

func (f *frameLog) set(frame string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frame = frame
}

func (f *frameLog) get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame
}

// recordingModel wraps Model and records each rendered frame as plain text.
type recordingModel struct {
	inner  Model
	frames *frameLog
}

func (r recordingModel) Init() tea.Cmd {
	return r.inner.Init()
}

func (r recordingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := r.inner.Update(msg)
	if m, ok := updated.(Model); ok {
		r.inner = m
	}
	return r, cmd
}

func (r recordingModel) View() tea.View {
	r.frames.set(ansi.Strip(r.inner.render()))
	return r.inner.View()
}

// programHarness runs a model inside a real bubbletea program loop.
type programHarness struct {
	t       *testing.T
	program *tea.Program
	frames  *frameLog
	done    chan error
}

const programWait = 3 * time.Second

func startProgram(t *testing.T, m Model) *programHarness {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	frames := &frameLog{}
	p := tea.NewProgram(
		recordingModel{inner: m, frames: frames},
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)
	h := &programHarness{t: t, program: p, frames: frames, done: make(chan error, 1)}
	go func() {
		_, err := p.Run()
		h.done <- err
	}()
	t.Cleanup(cancel)
	p.Send(tea.WindowSizeMsg{Width: 120, Height: 35})
	return h
}

// waitFor polls the latest frame until it contains want.
func (h *programHarness) waitFor(want string) {
	h.t.Helper()
	deadline := time.Now().Add(programWait)
	for time.Now().Before(deadline) {
		if strings.Contains(h.frames.get(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	h.t.Fatalf("timed out waiting for %q\nlast frame:\n%s", want, h.frames.get())
}

func (h *programHarness) send(msg tea.Msg) {
	h.program.Send(msg)
}

// quit presses q and waits for the program to exit cleanly.
func (h *programHarness) quit() {
	h.t.Helper()
	h.send(tea.KeyPressMsg{Code: 'q', Text: "q"})
	select {
	case err := <-h.done:
		if err != nil {
			h.t.Fatalf("program Run() error = %v", err)
		}
	case <-time.After(programWait):
		h.t.Fatal("program did not exit after q")
	}
}

func TestProgramRendersBoard(t *testing.T) {
	h := startProgram(t, NewModel(&fakeBackend{tasks: sampleTasks()}, WithStartView(ViewBoard)))
	h.waitFor("Draft agenda")
	h.quit()
}

func TestProgramUploadSwitchesToBoard(t *testing.T) {
	h := startProgram(t, NewModel(&fakeBackend{tasks: sampleTasks()}))
	h.waitFor("no file selected")

	h.send(tea.KeyPressMsg{Code: tea.KeyTab})
	h.waitFor("Book venue")

	h.send(tea.KeyPressMsg{Code: '?', Text: "?"})
	h.waitFor("column left")

	h.quit()
}
