package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hylla/actionboard/internal/domain"
)

func TestPresentStatus(t *testing.T) {
	cases := []struct {
		status   domain.WorkflowStatus
		visible  bool
		spinner  bool
		terminal bool
	}{
		{domain.WorkflowIdle, false, false, false},
		{domain.WorkflowUploading, true, true, false},
		{domain.WorkflowTranscribing, true, true, false},
		{domain.WorkflowAnalyzing, true, true, false},
		{domain.WorkflowPushing, true, true, false},
		{domain.WorkflowCompleted, true, false, true},
		{domain.WorkflowError, true, false, true},
	}
	labels := map[string]bool{}
	for _, tc := range cases {
		got := PresentStatus(tc.status, "boom")
		if got.Visible != tc.visible || got.Spinner != tc.spinner || got.Terminal != tc.terminal {
			t.Fatalf("PresentStatus(%q) = %#v", tc.status, got)
		}
		if tc.visible {
			if got.Label == "" || got.Icon == "" || got.Color == "" {
				t.Fatalf("PresentStatus(%q) missing display fields: %#v", tc.status, got)
			}
			if labels[got.Label] {
				t.Fatalf("duplicate label %q", got.Label)
			}
			labels[got.Label] = true
		}
		if again := PresentStatus(tc.status, "boom"); again != got {
			t.Fatalf("PresentStatus(%q) is not deterministic", tc.status)
		}
	}
	if got := PresentStatus(domain.WorkflowError, "bad file"); got.Detail != "bad file" {
		t.Fatalf("expected error detail, got %#v", got)
	}
	if got := PresentStatus(domain.WorkflowCompleted, "ignored"); got.Detail != "" {
		t.Fatalf("expected no detail for completed, got %q", got.Detail)
	}
	if got := PresentStatus("streaming", ""); got.Label != PresentStatus(domain.WorkflowUploading, "").Label {
		t.Fatalf("expected unknown status to fall back to uploading, got %#v", got)
	}
}

func TestRenderResultInternal(t *testing.T) {
	res := domain.WorkflowResult{
		Destination:      domain.DestinationInternal,
		ActionItemsCount: 3,
		SavedTasks: []domain.Task{
			{ID: 1, Task: "a", Status: domain.StatusTodo},
			{ID: 2, Task: "b", Status: domain.StatusTodo},
			{ID: 3, Task: "c", Status: domain.StatusTodo},
		},
		NotionResult: &domain.NotionResult{Results: []domain.NotionItem{{Task: "ignored"}}},
	}
	view := RenderResult(res)
	if len(view.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(view.Items))
	}
	for _, item := range view.Items {
		if item.Kind != BadgeStatus || item.Badge != string(domain.StatusTodo) {
			t.Fatalf("expected status badges, got %#v", item)
		}
	}
	if view.Hint == "" {
		t.Fatal("expected board hint for internal results")
	}
}

func TestRenderResultNotion(t *testing.T) {
	res := domain.WorkflowResult{
		Destination:      domain.DestinationNotion,
		ActionItemsCount: 2,
		NotionResult: &domain.NotionResult{Results: []domain.NotionItem{
			{Task: "ok", Assignee: "Lee", Result: domain.NotionItemResult{Status: "success", PageID: "p1"}},
			{Task: "bad", Result: domain.NotionItemResult{Status: "error", Error: "rate limited"}},
			{Task: "shouting", Result: domain.NotionItemResult{Status: "SUCCESS"}},
		}},
	}
	view := RenderResult(res)
	if len(view.Items) != 3 || view.Hint != "" {
		t.Fatalf("unexpected view %#v", view)
	}
	if view.Items[0].Kind != BadgeSuccess || view.Items[1].Kind != BadgeFailure || view.Items[2].Kind != BadgeFailure {
		t.Fatalf("unexpected badges %#v", view.Items)
	}
	if view.Items[1].Assignee != "Unassigned" {
		t.Fatalf("unexpected assignee %q", view.Items[1].Assignee)
	}
}

func TestRenderResultAbsentArrays(t *testing.T) {
	for _, dest := range []domain.Destination{domain.DestinationNotion, domain.DestinationInternal, "other"} {
		view := RenderResult(domain.WorkflowResult{Destination: dest})
		if view.Items == nil || len(view.Items) != 0 {
			t.Fatalf("expected empty list for %q, got %#v", dest, view.Items)
		}
	}
}

func TestFailureTaxonomy(t *testing.T) {
	transport := fmt.Errorf("list: %w", &TransportError{Op: "list tasks", Err: errors.New("dial tcp: refused")})
	if FailureKindOf(transport) != FailureTransport || !errors.Is(transport, ErrTransport) {
		t.Fatalf("unexpected transport classification %q", FailureKindOf(transport))
	}
	appErr := fmt.Errorf("delete: %w", &APIError{StatusCode: 404, Detail: "Task not found"})
	if FailureKindOf(appErr) != FailureApplication || FailureDetail(appErr) != "Task not found" {
		t.Fatalf("unexpected application classification %q %q", FailureKindOf(appErr), FailureDetail(appErr))
	}
	if FailureKindOf(nil) != FailureNone || FailureDetail(nil) != "" {
		t.Fatal("expected nil error to classify as none")
	}
	if FailureKindOf(errors.New("x")) != FailureInternal {
		t.Fatal("expected plain error to classify as internal")
	}
}
