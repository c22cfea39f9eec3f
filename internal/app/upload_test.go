package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hylla/actionboard/internal/domain"
)

func writeAudio(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestUploadSubmitWithoutFileIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	upload := NewUpload(backend)
	if req, ok := upload.Submit(); ok || req != nil {
		t.Fatal("expected no request without a selected file")
	}
	status, _ := upload.Status()
	if status != domain.WorkflowIdle {
		t.Fatalf("unexpected status %q", status)
	}
	if upload.Destination() != domain.DestinationNotion {
		t.Fatalf("expected notion default, got %q", upload.Destination())
	}
}

func TestUploadSubmitSuccess(t *testing.T) {
	summary := "Weekly sync"
	backend := &fakeBackend{workflow: domain.WorkflowResult{
		Destination:      domain.DestinationInternal,
		ActionItemsCount: 1,
		Summary:          &summary,
		SavedTasks:       []domain.Task{{ID: 9, Task: "Follow up", Status: domain.StatusTodo}},
	}}
	upload := NewUpload(backend, WithDefaultDestination(domain.DestinationInternal))

	path := writeAudio(t, "standup.m4a", "RIFFDATA")
	file, err := upload.SelectFile(path)
	if err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if file.Name != "standup.m4a" || file.Size != int64(len("RIFFDATA")) {
		t.Fatalf("unexpected file %#v", file)
	}

	req, ok := upload.Submit()
	if !ok {
		t.Fatal("expected upload request")
	}
	if !upload.Busy() {
		t.Fatal("expected uploading status after submit")
	}
	if _, again := upload.Submit(); again {
		t.Fatal("expected duplicate submit to be ignored while uploading")
	}

	upload.ApplyOutcome(req(context.Background()))
	status, errMsg := upload.Status()
	if status != domain.WorkflowCompleted || errMsg != "" {
		t.Fatalf("unexpected status %q %q", status, errMsg)
	}
	res, ok := upload.Result()
	if !ok || res.ActionItemsCount != 1 {
		t.Fatalf("unexpected result %#v", res)
	}
	if backend.uploads[0] != "standup.m4a" || backend.uploadBody[0] != "RIFFDATA" || backend.destination[0] != domain.DestinationInternal {
		t.Fatalf("unexpected upload call %#v %#v %#v", backend.uploads, backend.uploadBody, backend.destination)
	}

	upload.DiscardResult()
	if _, ok := upload.Result(); ok {
		t.Fatal("expected result discarded")
	}
}

func TestUploadSubmitFailureSurfacesDetail(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "application", err: &APIError{StatusCode: 400, Detail: "Invalid file format. Allowed: .mp3, .m4a, .wav"}, want: "Invalid file format. Allowed: .mp3, .m4a, .wav"},
		{name: "transport", err: &TransportError{Op: "process workflow", Err: errors.New("connection refused")}, want: "Network error: connection refused"},
		{name: "status text", err: &APIError{StatusCode: 502}, want: "Bad Gateway"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			upload := NewUpload(&fakeBackend{workflowErr: tc.err})
			if _, err := upload.SelectFile(writeAudio(t, "a.mp3", "x")); err != nil {
				t.Fatalf("SelectFile() error = %v", err)
			}
			req, _ := upload.Submit()
			upload.ApplyOutcome(req(context.Background()))
			status, errMsg := upload.Status()
			if status != domain.WorkflowError || errMsg != tc.want {
				t.Fatalf("unexpected status %q %q", status, errMsg)
			}
			p := upload.Presentation()
			if !p.Terminal || p.Spinner || p.Detail != tc.want {
				t.Fatalf("unexpected presentation %#v", p)
			}
		})
	}
}

func TestUploadSelectFileValidation(t *testing.T) {
	upload := NewUpload(&fakeBackend{}, WithAcceptedExtensions([]string{"MP3", ".ogg", "mp3"}))
	if _, err := upload.SelectFile("  "); !errors.Is(err, ErrNoFileSelected) {
		t.Fatalf("expected ErrNoFileSelected, got %v", err)
	}
	if _, err := upload.SelectFile(t.TempDir()); err == nil {
		t.Fatal("expected directory to be rejected")
	}
	if _, err := upload.SelectFile(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatal("expected missing file to be rejected")
	}
	got := upload.AcceptedExtensions()
	if len(got) != 2 || got[0] != ".mp3" || got[1] != ".ogg" {
		t.Fatalf("unexpected extensions %#v", got)
	}
	if !upload.AcceptsHint("MEETING.MP3") || upload.AcceptsHint("notes.txt") {
		t.Fatal("unexpected extension hint result")
	}
	path := writeAudio(t, "notes.txt", "text")
	if _, err := upload.SelectFile(path); err != nil {
		t.Fatalf("extension hint must not block selection, got %v", err)
	}
}

func TestUploadDestinationToggle(t *testing.T) {
	upload := NewUpload(&fakeBackend{})
	if got := upload.ToggleDestination(); got != domain.DestinationInternal {
		t.Fatalf("unexpected destination %q", got)
	}
	if err := upload.SetDestination("slack"); !errors.Is(err, domain.ErrInvalidDestination) {
		t.Fatalf("expected ErrInvalidDestination, got %v", err)
	}
}
