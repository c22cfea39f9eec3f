package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"To Do", StatusTodo},
		{" In Progress ", StatusInProgress},
		{"Done", StatusDone},
		{"todo", StatusTodo},
		{"in-progress", StatusInProgress},
		{"progress", StatusInProgress},
		{"DONE", StatusDone},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q) error = %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
	if _, err := ParseStatus("Blocked"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestStatusOrder(t *testing.T) {
	if next, ok := StatusTodo.Next(); !ok || next != StatusInProgress {
		t.Fatalf("unexpected next for To Do: %q %v", next, ok)
	}
	if next, ok := StatusInProgress.Next(); !ok || next != StatusDone {
		t.Fatalf("unexpected next for In Progress: %q %v", next, ok)
	}
	if _, ok := StatusDone.Next(); ok {
		t.Fatal("expected no next status from Done")
	}
	if _, ok := StatusTodo.Prev(); ok {
		t.Fatal("expected no prev status from To Do")
	}
	if prev, ok := StatusDone.Prev(); !ok || prev != StatusInProgress {
		t.Fatalf("unexpected prev for Done: %q %v", prev, ok)
	}
	if _, ok := Status("Blocked").Next(); ok {
		t.Fatal("expected unknown status to have no next")
	}
	if Status("done").Valid() {
		t.Fatal("expected lowercase wire value to be invalid")
	}
}

func TestParseDestination(t *testing.T) {
	d, err := ParseDestination(" Internal ")
	if err != nil || d != DestinationInternal {
		t.Fatalf("ParseDestination() = %q, %v", d, err)
	}
	if DestinationNotion.Toggle() != DestinationInternal || DestinationInternal.Toggle() != DestinationNotion {
		t.Fatal("expected toggle to flip destinations")
	}
	if _, err := ParseDestination("slack"); !errors.Is(err, ErrInvalidDestination) {
		t.Fatalf("expected ErrInvalidDestination, got %v", err)
	}
}

func TestNotionItemResultSucceeded(t *testing.T) {
	cases := map[string]bool{
		"success":   true,
		"SUCCESS":   false,
		"Success":   false,
		" success ": false,
		"error":     false,
		"":          false,
	}
	for status, want := range cases {
		if got := (NotionItemResult{Status: status}).Succeeded(); got != want {
			t.Fatalf("Succeeded(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestWorkflowResultDecodeAbsentArrays(t *testing.T) {
	var res WorkflowResult
	if err := json.Unmarshal([]byte(`{"destination":"notion","action_items_count":0}`), &res); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if res.NotionResult != nil || res.SavedTasks != nil {
		t.Fatalf("expected absent arrays, got %#v", res)
	}
	if res.SummaryText() != "" {
		t.Fatalf("expected empty summary, got %q", res.SummaryText())
	}
}

func TestTaskDecodeKeepsUnknownStatus(t *testing.T) {
	var task Task
	raw := `{"id":7,"task":"Ship it","assignee":null,"confidence":0.9,"status":"Blocked"}`
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if task.Status != "Blocked" || task.Status.Valid() {
		t.Fatalf("unexpected status %q", task.Status)
	}
	if task.AssigneeLabel() != "Unassigned" {
		t.Fatalf("unexpected assignee label %q", task.AssigneeLabel())
	}
	clone := task.Clone()
	*clone.Confidence = 0.1
	if *task.Confidence != 0.9 {
		t.Fatal("expected clone to not alias confidence")
	}
}

func TestNewTaskFromActionItem(t *testing.T) {
	due := " 2026-11-01 "
	task, err := NewTaskFromActionItem(ActionItem{Assignee: " Kim ", Task: " Draft agenda ", DueDate: &due, Confidence: 0.8}, "transcription_ab12cd34")
	if err != nil {
		t.Fatalf("NewTaskFromActionItem() error = %v", err)
	}
	if task.Status != StatusTodo || task.Task != "Draft agenda" || task.AssigneeLabel() != "Kim" || task.DueLabel() != "2026-11-01" {
		t.Fatalf("unexpected task %#v", task)
	}
	if _, err := NewTaskFromActionItem(ActionItem{Task: "  "}, ""); !errors.Is(err, ErrInvalidTaskText) {
		t.Fatalf("expected ErrInvalidTaskText, got %v", err)
	}
}
