package domain

import (
	"strings"
)

type Status string

const (
	StatusTodo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

var orderedStatuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Statuses returns the board statuses in column order.
func Statuses() []Status {
	return append([]Status(nil), orderedStatuses...)
}

// ParseStatus resolves a wire value or a CLI slug to one board status.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range orderedStatuses {
		if raw == string(s) {
			return s, nil
		}
	}
	switch strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(raw)) {
	case "todo", "to_do":
		return StatusTodo, nil
	case "in_progress", "progress", "doing":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", ErrInvalidStatus
}

func (s Status) Valid() bool {
	return s.index() >= 0
}

// Next reports the status one step forward in To Do -> In Progress -> Done.
func (s Status) Next() (Status, bool) {
	idx := s.index()
	if idx < 0 || idx == len(orderedStatuses)-1 {
		return "", false
	}
	return orderedStatuses[idx+1], true
}

// Prev reports the status one step backward.
func (s Status) Prev() (Status, bool) {
	idx := s.index()
	if idx <= 0 {
		return "", false
	}
	return orderedStatuses[idx-1], true
}

func (s Status) index() int {
	for i, candidate := range orderedStatuses {
		if s == candidate {
			return i
		}
	}
	return -1
}

// Slug returns a short identifier used in CLI output.
func (s Status) Slug() string {
	switch s {
	case StatusTodo:
		return "todo"
	case StatusInProgress:
		return "in_progress"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Task is the backend-owned action item. Status keeps the raw wire value, so a
// task with an unrecognized status survives a fetch and can be surfaced.
type Task struct {
	ID         int64    `json:"id"`
	Task       string   `json:"task"`
	Assignee   *string  `json:"assignee"`
	DueDate    *string  `json:"due_date,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Status     Status   `json:"status"`
	JobName    string   `json:"job_name,omitempty"`
	CreatedAt  string   `json:"created_at,omitempty"`
	UpdatedAt  string   `json:"updated_at,omitempty"`
}

// AssigneeLabel returns the assignee or a placeholder.
func (t Task) AssigneeLabel() string {
	if t.Assignee == nil || strings.TrimSpace(*t.Assignee) == "" {
		return "Unassigned"
	}
	return strings.TrimSpace(*t.Assignee)
}

func (t Task) DueLabel() string {
	if t.DueDate == nil {
		return ""
	}
	return strings.TrimSpace(*t.DueDate)
}

// Clone returns a deep copy so cached tasks never alias response buffers.
func (t Task) Clone() Task {
	out := t
	if t.Assignee != nil {
		v := *t.Assignee
		out.Assignee = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		out.DueDate = &v
	}
	if t.Confidence != nil {
		v := *t.Confidence
		out.Confidence = &v
	}
	return out
}

// CloneTasks copies a task slice element by element.
func CloneTasks(in []Task) []Task {
	if in == nil {
		return nil
	}
	out := make([]Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

// NewTaskFromActionItem builds an unsaved To Do task from one extracted item.
func NewTaskFromActionItem(item ActionItem, jobName string) (Task, error) {
	text := strings.TrimSpace(item.Task)
	if text == "" {
		return Task{}, ErrInvalidTaskText
	}
	task := Task{
		Task:    text,
		Status:  StatusTodo,
		JobName: strings.TrimSpace(jobName),
	}
	if assignee := strings.TrimSpace(item.Assignee); assignee != "" {
		task.Assignee = &assignee
	}
	if item.DueDate != nil {
		if due := strings.TrimSpace(*item.DueDate); due != "" {
			task.DueDate = &due
		}
	}
	confidence := item.Confidence
	task.Confidence = &confidence
	return task, nil
}
