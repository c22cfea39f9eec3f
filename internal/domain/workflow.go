package domain

import (
	"strings"
)

type Destination string

const (
	DestinationNotion   Destination = "notion"
	DestinationInternal Destination = "internal"
)

// ParseDestination resolves a destination flag or config value.
func ParseDestination(raw string) (Destination, error) {
	switch Destination(strings.ToLower(strings.TrimSpace(raw))) {
	case DestinationNotion:
		return DestinationNotion, nil
	case DestinationInternal:
		return DestinationInternal, nil
	default:
		return "", ErrInvalidDestination
	}
}

// Toggle returns the other destination.
func (d Destination) Toggle() Destination {
	if d == DestinationInternal {
		return DestinationNotion
	}
	return DestinationInternal
}

// WorkflowStatus is the client-visible stage of one upload.
type WorkflowStatus string

const (
	WorkflowIdle         WorkflowStatus = "idle"
	WorkflowUploading    WorkflowStatus = "uploading"
	WorkflowTranscribing WorkflowStatus = "transcribing"
	WorkflowAnalyzing    WorkflowStatus = "analyzing"
	WorkflowPushing      WorkflowStatus = "pushing"
	WorkflowCompleted    WorkflowStatus = "completed"
	WorkflowError        WorkflowStatus = "error"
)

// Terminal reports whether no further progress is expected.
func (s WorkflowStatus) Terminal() bool {
	return s == WorkflowCompleted || s == WorkflowError
}

// ActionItem is one extracted action item before it lands in a destination.
type ActionItem struct {
	Assignee   string  `json:"assignee" toml:"assignee"`
	Task       string  `json:"task" toml:"task"`
	DueDate    *string `json:"due_date,omitempty" toml:"due_date"`
	Confidence float64 `json:"confidence" toml:"confidence"`
}

// NotionItemResult is the per-item outcome reported by the document service push.
type NotionItemResult struct {
	Status string `json:"status"`
	PageID string `json:"page_id,omitempty"`
	Error  any    `json:"error,omitempty"`
}

// Succeeded reports whether the push for one item worked. Only the exact
// token "success" counts.
func (r NotionItemResult) Succeeded() bool {
	return r.Status == "success"
}

type NotionItem struct {
	Task     string           `json:"task"`
	Assignee string           `json:"assignee"`
	Result   NotionItemResult `json:"result"`
}

type NotionResult struct {
	Status  string       `json:"status,omitempty"`
	Message string       `json:"message,omitempty"`
	Results []NotionItem `json:"results"`
}

// WorkflowResult is the one-shot response of a full workflow upload.
type WorkflowResult struct {
	Status           string        `json:"status,omitempty"`
	JobName          string        `json:"job_name,omitempty"`
	Summary          *string       `json:"summary,omitempty"`
	ActionItemsCount int           `json:"action_items_count"`
	Destination      Destination   `json:"destination"`
	NotionResult     *NotionResult `json:"notion_result,omitempty"`
	SavedTasks       []Task        `json:"saved_tasks,omitempty"`
}

// SummaryText returns the summary or an empty string.
func (r WorkflowResult) SummaryText() string {
	if r.Summary == nil {
		return ""
	}
	return strings.TrimSpace(*r.Summary)
}
