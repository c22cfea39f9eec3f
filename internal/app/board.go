package app

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hylla/actionboard/internal/domain"
)

// Alert is a blocking notification raised by a failed per-task mutation.
type Alert struct {
	Title   string
	Message string
	Kind    FailureKind
}

// FetchResult is the outcome of one task collection fetch.
type FetchResult struct {
	Seq   uint64
	Tasks []domain.Task
	Err   error
}

// StatusResult is the outcome of one status write.
type StatusResult struct {
	TaskID   int64
	Status   domain.Status
	Previous domain.Status
	Seq      uint64
	Err      error
}

// DeleteResult is the outcome of one delete request.
type DeleteResult struct {
	TaskID int64
	Err    error
}

// DropEvent is a drag gesture delivered to the board: the dragged task id and
// the column it was released over.
type DropEvent struct {
	SourceTaskID int64
	TargetColumn domain.Status
}

// DeletePrompt is the pending confirmation for one delete.
type DeletePrompt struct {
	Task domain.Task
}

// Question returns the yes/no prompt text.
func (p DeletePrompt) Question() string {
	return fmt.Sprintf("Delete task %q?", p.Task.Task)
}

// Column is one status column of the board.
type Column struct {
	Status domain.Status
	Tasks  []domain.Task
}

// Partition groups cached tasks by status. Unrecognized holds tasks whose
// status matches none of the columns; they appear in no column.
type Partition struct {
	Columns      []Column
	Unrecognized []domain.Task
}

// Counts returns the per-column task counts in column order.
func (p Partition) Counts() []int {
	out := make([]int, 0, len(p.Columns))
	for _, column := range p.Columns {
		out = append(out, len(column.Tasks))
	}
	return out
}

// StatusEdit describes one optimistic status edit that a fetch overrode.
type StatusEdit struct {
	TaskID       int64
	Requested    domain.Status
	ServerStatus domain.Status
	Removed      bool
}

// Reconciliation reports the optimistic edits discarded by one fetch.
type Reconciliation struct {
	Discarded []StatusEdit
}

// Empty reports whether the fetch discarded nothing.
func (r Reconciliation) Empty() bool {
	return len(r.Discarded) == 0
}

type pendingEdit struct {
	status domain.Status
	seq    uint64
}

// Board owns the cached task collection and mediates every mutation through
// the backend. It is not safe for concurrent use: one event loop owns it and
// runs the returned requests elsewhere.
type Board struct {
	backend  TaskBackend
	filter   TaskFilter
	tasks    []domain.Task
	loaded   bool
	inFlight int
	err      error
	fetchSeq uint64
	editSeq  uint64
	pending  map[int64]pendingEdit
}

// NewBoard constructs an empty board over backend.
func NewBoard(backend TaskBackend) *Board {
	return &Board{
		backend: backend,
		pending: map[int64]pendingEdit{},
	}
}

// SetFilter sets the listing filter used by later fetches.
func (b *Board) SetFilter(filter TaskFilter) {
	b.filter = filter
}

// Loading reports whether a fetch is outstanding.
func (b *Board) Loading() bool {
	return b.inFlight > 0
}

// Loaded reports whether any fetch has completed.
func (b *Board) Loaded() bool {
	return b.loaded
}

// Err returns the board-level fetch error, if any.
func (b *Board) Err() error {
	return b.err
}

// PendingEdits returns the number of optimistic edits not yet confirmed.
func (b *Board) PendingEdits() int {
	return len(b.pending)
}

// Tasks returns a copy of the cache in backend order.
func (b *Board) Tasks() []domain.Task {
	return domain.CloneTasks(b.tasks)
}

// Task returns one cached task.
func (b *Board) Task(id int64) (domain.Task, bool) {
	idx := b.indexOf(id)
	if idx < 0 {
		return domain.Task{}, false
	}
	return b.tasks[idx].Clone(), true
}

// FetchAll marks the board loading and returns the listing request.
func (b *Board) FetchAll() Request[FetchResult] {
	b.fetchSeq++
	b.inFlight++
	b.err = nil
	seq := b.fetchSeq
	backend := b.backend
	filter := b.filter
	return func(ctx context.Context) FetchResult {
		tasks, err := backend.ListTasks(ctx, filter)
		return FetchResult{Seq: seq, Tasks: tasks, Err: err}
	}
}

// ApplyFetch replaces the cache with one fetch result. Results apply in
// arrival order, so an older response arriving last wins.
func (b *Board) ApplyFetch(res FetchResult) Reconciliation {
	if b.inFlight > 0 {
		b.inFlight--
	}
	b.loaded = true
	if res.Err != nil {
		b.err = res.Err
		b.tasks = nil
		clear(b.pending)
		return Reconciliation{}
	}
	b.err = nil
	report := b.reconcile(res.Tasks)
	b.tasks = domain.CloneTasks(res.Tasks)
	if b.tasks == nil {
		b.tasks = []domain.Task{}
	}
	clear(b.pending)
	return report
}

// reconcile lists pending edits that server truth does not reflect.
func (b *Board) reconcile(server []domain.Task) Reconciliation {
	if len(b.pending) == 0 {
		return Reconciliation{}
	}
	byID := make(map[int64]domain.Status, len(server))
	for _, task := range server {
		byID[task.ID] = task.Status
	}
	out := Reconciliation{}
	for id, edit := range b.pending {
		status, ok := byID[id]
		switch {
		case !ok:
			out.Discarded = append(out.Discarded, StatusEdit{TaskID: id, Requested: edit.status, Removed: true})
		case status != edit.status:
			out.Discarded = append(out.Discarded, StatusEdit{TaskID: id, Requested: edit.status, ServerStatus: status})
		}
	}
	slices.SortFunc(out.Discarded, func(a, b StatusEdit) int {
		return cmp.Compare(a.TaskID, b.TaskID)
	})
	return out
}

// SetStatus writes status into the cache immediately and returns the write
// request. The cache is not rolled back if the write fails.
func (b *Board) SetStatus(id int64, status domain.Status) (Request[StatusResult], error) {
	if !status.Valid() {
		return nil, fmt.Errorf("set status %q: %w", status, domain.ErrInvalidStatus)
	}
	idx := b.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("set status for task %d: %w", id, ErrTaskNotCached)
	}
	previous := b.tasks[idx].Status
	b.tasks[idx].Status = status
	b.editSeq++
	seq := b.editSeq
	b.pending[id] = pendingEdit{status: status, seq: seq}

	backend := b.backend
	return func(ctx context.Context) StatusResult {
		err := backend.UpdateTaskStatus(ctx, id, status)
		return StatusResult{TaskID: id, Status: status, Previous: previous, Seq: seq, Err: err}
	}, nil
}

// ApplyStatus records one write outcome. A success writes the confirmed
// status, so the last response to arrive wins; a failure leaves the cache
// as is and returns an alert.
func (b *Board) ApplyStatus(res StatusResult) *Alert {
	if res.Err != nil {
		return &Alert{
			Title:   "Status update failed",
			Message: fmt.Sprintf("Could not move task %d to %s: %s", res.TaskID, res.Status, FailureDetail(res.Err)),
			Kind:    FailureKindOf(res.Err),
		}
	}
	if edit, ok := b.pending[res.TaskID]; ok && edit.seq <= res.Seq {
		delete(b.pending, res.TaskID)
	}
	if idx := b.indexOf(res.TaskID); idx >= 0 {
		b.tasks[idx].Status = res.Status
	}
	return nil
}

// MoveViaDrag applies a drop. It returns ok=false and no request when the
// task already has the target status.
func (b *Board) MoveViaDrag(drop DropEvent) (Request[StatusResult], bool, error) {
	task, found := b.Task(drop.SourceTaskID)
	if !found {
		return nil, false, fmt.Errorf("drop task %d: %w", drop.SourceTaskID, ErrTaskNotCached)
	}
	if !drop.TargetColumn.Valid() {
		return nil, false, fmt.Errorf("drop on %q: %w", drop.TargetColumn, domain.ErrInvalidStatus)
	}
	if task.Status == drop.TargetColumn {
		return nil, false, nil
	}
	req, err := b.SetStatus(task.ID, drop.TargetColumn)
	if err != nil {
		return nil, false, err
	}
	return req, true, nil
}

// CanAdvance reports whether the task has a next status.
func (b *Board) CanAdvance(id int64) bool {
	task, ok := b.Task(id)
	if !ok {
		return false
	}
	_, ok = task.Status.Next()
	return ok
}

// CanRegress reports whether the task has a previous status.
func (b *Board) CanRegress(id int64) bool {
	task, ok := b.Task(id)
	if !ok {
		return false
	}
	_, ok = task.Status.Prev()
	return ok
}

// Advance moves a task one status forward.
func (b *Board) Advance(id int64) (Request[StatusResult], error) {
	task, ok := b.Task(id)
	if !ok {
		return nil, fmt.Errorf("advance task %d: %w", id, ErrTaskNotCached)
	}
	next, ok := task.Status.Next()
	if !ok {
		return nil, fmt.Errorf("advance task %d from %q: %w", id, task.Status, ErrTransitionUnavailable)
	}
	return b.SetStatus(id, next)
}

// Regress moves a task one status backward.
func (b *Board) Regress(id int64) (Request[StatusResult], error) {
	task, ok := b.Task(id)
	if !ok {
		return nil, fmt.Errorf("regress task %d: %w", id, ErrTaskNotCached)
	}
	prev, ok := task.Status.Prev()
	if !ok {
		return nil, fmt.Errorf("regress task %d from %q: %w", id, task.Status, ErrTransitionUnavailable)
	}
	return b.SetStatus(id, prev)
}

// PrepareDelete returns the confirmation prompt for one cached task.
func (b *Board) PrepareDelete(id int64) (DeletePrompt, error) {
	task, ok := b.Task(id)
	if !ok {
		return DeletePrompt{}, fmt.Errorf("delete task %d: %w", id, ErrTaskNotCached)
	}
	return DeletePrompt{Task: task}, nil
}

// ConfirmDelete returns the delete request when confirmed. A declined
// prompt returns ok=false; the cache never changes here.
func (b *Board) ConfirmDelete(prompt DeletePrompt, confirmed bool) (Request[DeleteResult], bool) {
	if !confirmed {
		return nil, false
	}
	id := prompt.Task.ID
	backend := b.backend
	return func(ctx context.Context) DeleteResult {
		return DeleteResult{TaskID: id, Err: backend.DeleteTask(ctx, id)}
	}, true
}

// ApplyDelete removes the task once the backend confirmed the delete.
func (b *Board) ApplyDelete(res DeleteResult) *Alert {
	if res.Err != nil {
		return &Alert{
			Title:   "Delete failed",
			Message: fmt.Sprintf("Could not delete task %d: %s", res.TaskID, FailureDetail(res.Err)),
			Kind:    FailureKindOf(res.Err),
		}
	}
	if idx := b.indexOf(res.TaskID); idx >= 0 {
		b.tasks = slices.Delete(b.tasks, idx, idx+1)
	}
	delete(b.pending, res.TaskID)
	return nil
}

// Columns partitions the cache by exact status match. Nothing is visible
// while a fetch is outstanding or after a failed fetch.
func (b *Board) Columns() Partition {
	statuses := domain.Statuses()
	out := Partition{Columns: make([]Column, len(statuses))}
	for i, status := range statuses {
		out.Columns[i] = Column{Status: status, Tasks: []domain.Task{}}
	}
	if b.Loading() || b.err != nil {
		return out
	}
	for _, task := range b.tasks {
		placed := false
		for i := range out.Columns {
			if out.Columns[i].Status == task.Status {
				out.Columns[i].Tasks = append(out.Columns[i].Tasks, task.Clone())
				placed = true
				break
			}
		}
		if !placed {
			out.Unrecognized = append(out.Unrecognized, task.Clone())
		}
	}
	return out
}

// Summary returns a one-line description of the board.
func (b *Board) Summary() string {
	switch {
	case b.Loading():
		return "loading tasks..."
	case b.err != nil:
		return "failed to load tasks: " + FailureDetail(b.err)
	}
	part := b.Columns()
	pieces := make([]string, 0, len(part.Columns)+1)
	for _, column := range part.Columns {
		pieces = append(pieces, fmt.Sprintf("%s %d", column.Status, len(column.Tasks)))
	}
	if n := len(part.Unrecognized); n > 0 {
		pieces = append(pieces, fmt.Sprintf("unrecognized %d", n))
	}
	return strings.Join(pieces, " | ")
}

func (b *Board) indexOf(id int64) int {
	return slices.IndexFunc(b.tasks, func(t domain.Task) bool { return t.ID == id })
}
