package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hylla/actionboard/internal/domain"
)

// DefaultAcceptedExtensions lists the audio containers offered by the file picker.
var DefaultAcceptedExtensions = []string{".mp3", ".m4a", ".wav"}

// SelectedFile describes the audio file chosen for upload.
type SelectedFile struct {
	Path string
	Name string
	Size int64
}

// WorkflowOutcome is the result of one workflow upload request.
type WorkflowOutcome struct {
	File   SelectedFile
	Result domain.WorkflowResult
	Err    error
}

// Upload owns file selection, destination choice, and the workflow status.
type Upload struct {
	backend     WorkflowBackend
	accepted    []string
	file        *SelectedFile
	destination domain.Destination
	status      domain.WorkflowStatus
	errMsg      string
	result      *domain.WorkflowResult
}

// UploadOption customizes an Upload controller.
type UploadOption func(*Upload)

// WithDefaultDestination sets the initial destination.
func WithDefaultDestination(d domain.Destination) UploadOption {
	return func(u *Upload) {
		if d == domain.DestinationNotion || d == domain.DestinationInternal {
			u.destination = d
		}
	}
}

// WithAcceptedExtensions overrides the file picker hint.
func WithAcceptedExtensions(exts []string) UploadOption {
	return func(u *Upload) {
		normalized := normalizeExtensions(exts)
		if len(normalized) > 0 {
			u.accepted = normalized
		}
	}
}

// NewUpload constructs an idle upload controller.
func NewUpload(backend WorkflowBackend, opts ...UploadOption) *Upload {
	u := &Upload{
		backend:     backend,
		accepted:    append([]string(nil), DefaultAcceptedExtensions...),
		destination: domain.DestinationNotion,
		status:      domain.WorkflowIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	return u
}

// SelectFile replaces the selected file. Only existence is checked; the
// accepted extensions are a hint, see AcceptsHint.
func (u *Upload) SelectFile(path string) (SelectedFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return SelectedFile{}, ErrNoFileSelected
	}
	info, err := os.Stat(path)
	if err != nil {
		return SelectedFile{}, fmt.Errorf("select file: %w", err)
	}
	if info.IsDir() {
		return SelectedFile{}, fmt.Errorf("select file %q: is a directory", path)
	}
	file := SelectedFile{Path: path, Name: filepath.Base(path), Size: info.Size()}
	u.file = &file
	return file, nil
}

// ClearFile drops the current selection.
func (u *Upload) ClearFile() {
	u.file = nil
}

// File returns the current selection.
func (u *Upload) File() (SelectedFile, bool) {
	if u.file == nil {
		return SelectedFile{}, false
	}
	return *u.file, true
}

// AcceptedExtensions returns the file picker hint.
func (u *Upload) AcceptedExtensions() []string {
	return append([]string(nil), u.accepted...)
}

// AcceptsHint reports whether name matches the extension hint.
func (u *Upload) AcceptsHint(name string) bool {
	return slices.Contains(u.accepted, strings.ToLower(filepath.Ext(name)))
}

// Destination returns the chosen sink.
func (u *Upload) Destination() domain.Destination {
	return u.destination
}

// SetDestination changes the sink used by the next submit.
func (u *Upload) SetDestination(d domain.Destination) error {
	if d != domain.DestinationNotion && d != domain.DestinationInternal {
		return fmt.Errorf("set destination %q: %w", d, domain.ErrInvalidDestination)
	}
	u.destination = d
	return nil
}

// ToggleDestination flips between the two sinks.
func (u *Upload) ToggleDestination() domain.Destination {
	u.destination = u.destination.Toggle()
	return u.destination
}

// Status returns the workflow status and error text.
func (u *Upload) Status() (domain.WorkflowStatus, string) {
	return u.status, u.errMsg
}

// Presentation returns the display tuple for the current status.
func (u *Upload) Presentation() StatusPresentation {
	return PresentStatus(u.status, u.errMsg)
}

// Result returns the last successful workflow result.
func (u *Upload) Result() (domain.WorkflowResult, bool) {
	if u.result == nil {
		return domain.WorkflowResult{}, false
	}
	return *u.result, true
}

// Busy reports whether an upload is in flight.
func (u *Upload) Busy() bool {
	return u.status == domain.WorkflowUploading
}

// Submit starts one upload of the selected file. It is a no-op without a
// selection and while another upload is in flight. The request opens the
// file when it runs.
func (u *Upload) Submit() (Request[WorkflowOutcome], bool) {
	if u.file == nil || u.Busy() {
		return nil, false
	}
	u.status = domain.WorkflowUploading
	u.errMsg = ""
	u.result = nil

	file := *u.file
	destination := u.destination
	backend := u.backend
	return func(ctx context.Context) WorkflowOutcome {
		f, err := os.Open(file.Path)
		if err != nil {
			return WorkflowOutcome{File: file, Err: fmt.Errorf("open %s: %w", file.Name, err)}
		}
		defer f.Close()
		result, err := backend.ProcessWorkflow(ctx, AudioUpload{FileName: file.Name, Body: f}, destination)
		return WorkflowOutcome{File: file, Result: result, Err: err}
	}, true
}

// ApplyOutcome moves the status to completed or error.
func (u *Upload) ApplyOutcome(out WorkflowOutcome) {
	if out.Err != nil {
		u.status = domain.WorkflowError
		u.errMsg = FailureDetail(out.Err)
		u.result = nil
		return
	}
	result := out.Result
	u.status = domain.WorkflowCompleted
	u.errMsg = ""
	u.result = &result
}

// DiscardResult drops the one-shot result when its view goes away.
func (u *Upload) DiscardResult() {
	u.result = nil
	if u.status == domain.WorkflowCompleted {
		u.status = domain.WorkflowIdle
	}
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(out, ext) {
			out = append(out, ext)
		}
	}
	return out
}
