package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hylla/actionboard/internal/domain"
)

type statusCall struct {
	id     int64
	status domain.Status
}

type fakeBackend struct {
	tasks       []domain.Task
	listErr     error
	statusErr   error
	deleteErr   error
	listCalls   int
	lastFilter  TaskFilter
	statusCalls []statusCall
	deleteCalls []int64
	workflow    domain.WorkflowResult
	workflowErr error
	uploads     []string
	uploadBody  []string
	destination []domain.Destination
}

func (f *fakeBackend) ListTasks(_ context.Context, filter TaskFilter) ([]domain.Task, error) {
	f.listCalls++
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return domain.CloneTasks(f.tasks), nil
}

func (f *fakeBackend) UpdateTaskStatus(_ context.Context, id int64, status domain.Status) error {
	f.statusCalls = append(f.statusCalls, statusCall{id: id, status: status})
	return f.statusErr
}

func (f *fakeBackend) DeleteTask(_ context.Context, id int64) error {
	f.deleteCalls = append(f.deleteCalls, id)
	return f.deleteErr
}

func (f *fakeBackend) ProcessWorkflow(_ context.Context, upload AudioUpload, destination domain.Destination) (domain.WorkflowResult, error) {
	f.uploads = append(f.uploads, upload.FileName)
	buf := new(strings.Builder)
	if upload.Body != nil {
		b := make([]byte, 512)
		n, _ := upload.Body.Read(b)
		buf.Write(b[:n])
	}
	f.uploadBody = append(f.uploadBody, buf.String())
	f.destination = append(f.destination, destination)
	return f.workflow, f.workflowErr
}

func sampleTasks() []domain.Task {
	kim := "Kim"
	return []domain.Task{
		{ID: 1, Task: "Draft agenda", Assignee: &kim, Status: domain.StatusTodo},
		{ID: 2, Task: "Book venue", Status: domain.StatusInProgress},
		{ID: 3, Task: "Send notes", Status: domain.StatusDone},
	}
}

func loadedBoard(t *testing.T, backend *fakeBackend) *Board {
	t.Helper()
	board := NewBoard(backend)
	res := board.FetchAll()(context.Background())
	if res.Err != nil {
		t.Fatalf("FetchAll() error = %v", res.Err)
	}
	board.ApplyFetch(res)
	return board
}

func TestBoardFetchPartitionsIntoThreeColumns(t *testing.T) {
	board := loadedBoard(t, &fakeBackend{tasks: sampleTasks()})
	part := board.Columns()
	counts := part.Counts()
	if len(counts) != 3 || counts[0] != 1 || counts[1] != 1 || counts[2] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
	for i, status := range domain.Statuses() {
		if part.Columns[i].Status != status {
			t.Fatalf("column %d status = %q, want %q", i, part.Columns[i].Status, status)
		}
		if part.Columns[i].Tasks[0].Status != status {
			t.Fatalf("column %d holds task with status %q", i, part.Columns[i].Tasks[0].Status)
		}
	}
	if len(part.Unrecognized) != 0 {
		t.Fatalf("expected no unrecognized tasks, got %#v", part.Unrecognized)
	}
}

func TestBoardPartitionExcludesUnrecognizedStatuses(t *testing.T) {
	tasks := append(sampleTasks(),
		domain.Task{ID: 4, Task: "Lowercase", Status: "done"},
		domain.Task{ID: 5, Task: "Blocked", Status: "Blocked"},
	)
	board := loadedBoard(t, &fakeBackend{tasks: tasks})
	part := board.Columns()

	seen := map[int64]int{}
	for _, column := range part.Columns {
		for _, task := range column.Tasks {
			seen[task.ID]++
		}
	}
	for _, task := range tasks {
		want := 0
		if task.Status.Valid() {
			want = 1
		}
		if seen[task.ID] != want {
			t.Fatalf("task %d appears in %d columns, want %d", task.ID, seen[task.ID], want)
		}
	}
	if len(part.Unrecognized) != 2 {
		t.Fatalf("expected 2 unrecognized tasks, got %d", len(part.Unrecognized))
	}
	if !strings.Contains(board.Summary(), "unrecognized 2") {
		t.Fatalf("summary should surface unrecognized tasks, got %q", board.Summary())
	}
}

func TestBoardFetchLoadingHidesTasks(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	board := loadedBoard(t, backend)

	req := board.FetchAll()
	if !board.Loading() {
		t.Fatal("expected loading while fetch is pending")
	}
	for _, column := range board.Columns().Columns {
		if len(column.Tasks) != 0 {
			t.Fatalf("expected no stale tasks while loading, got %#v", column.Tasks)
		}
	}
	board.ApplyFetch(req(context.Background()))
	if board.Loading() {
		t.Fatal("expected loading cleared")
	}
	if got := board.Columns().Counts(); got[0] != 1 {
		t.Fatalf("unexpected counts after fetch %v", got)
	}
}

func TestBoardFetchFailureShowsNoTasks(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	board := loadedBoard(t, backend)

	backend.listErr = &TransportError{Op: "list tasks", Err: errors.New("connection refused")}
	board.ApplyFetch(board.FetchAll()(context.Background()))
	if board.Err() == nil {
		t.Fatal("expected board error")
	}
	if len(board.Tasks()) != 0 {
		t.Fatalf("expected no tasks after failed fetch, got %d", len(board.Tasks()))
	}
	if !strings.Contains(board.Summary(), "connection refused") {
		t.Fatalf("unexpected summary %q", board.Summary())
	}

	backend.listErr = nil
	board.ApplyFetch(board.FetchAll()(context.Background()))
	if board.Err() != nil || len(board.Tasks()) != 3 {
		t.Fatalf("expected refresh to recover, err=%v tasks=%d", board.Err(), len(board.Tasks()))
	}
}

func TestBoardFetchLastArrivalWins(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	board := NewBoard(backend)

	first := board.FetchAll()
	second := board.FetchAll()
	secondRes := second(context.Background())

	backend.tasks = sampleTasks()[:1]
	firstRes := first(context.Background())

	board.ApplyFetch(secondRes)
	if !board.Loading() {
		t.Fatal("expected loading until every fetch arrived")
	}
	board.ApplyFetch(firstRes)
	if got := len(board.Tasks()); got != 1 {
		t.Fatalf("expected the later-arriving response to win, got %d tasks", got)
	}
}

func TestBoardFetchPassesFilter(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	board := NewBoard(backend)
	board.SetFilter(TaskFilter{Status: domain.StatusDone})
	board.ApplyFetch(board.FetchAll()(context.Background()))
	if backend.lastFilter.Status != domain.StatusDone {
		t.Fatalf("unexpected filter %#v", backend.lastFilter)
	}
}

func TestBoardSetStatusIsOptimistic(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	board := loadedBoard(t, backend)

	req, err := board.SetStatus(1, domain.StatusDone)
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	task, _ := board.Task(1)
	if task.Status != domain.StatusDone {
		t.Fatalf("expected optimistic status Done before response, got %q", task.Status)
	}
	if len(backend.statusCalls) != 0 {
		t.Fatal("expected the write to be deferred to the returned request")
	}

	res := req(context.Background())
	if alert := board.ApplyStatus(res); alert != nil {
		t.Fatalf("unexpected alert %#v", alert)
	}
	if len(backend.statusCalls) != 1 || backend.statusCalls[0] != (statusCall{id: 1, status: domain.StatusDone}) {
		t.Fatalf("unexpected status calls %#v", backend.statusCalls)
	}
	if board.PendingEdits() != 0 {
		t.Fatalf("expected confirmed edit cleared, got %d pending", board.PendingEdits())
	}
}

func TestBoardSetStatusPreconditions(t *testing.T) {
	board := loadedBoard(t, &fakeBackend{tasks: sampleTasks()})
	if _, err := board.SetStatus(99, domain.StatusDone); !errors.Is(err, ErrTaskNotCached) {
		t.Fatalf("expected ErrTaskNotCached, got %v", err)
	}
	if _, err := board.SetStatus(1, "Blocked"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestBoardAdvanceFailureKeepsLocalStatusAndAlerts(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	board := loadedBoard(t, backend)

	req, err := board.Advance(1)
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	backend.statusErr = &APIError{StatusCode: 500, Detail: "database is locked"}
	alert := board.ApplyStatus(req(context.Background()))
	if alert == nil {
		t.Fatal("expected alert on failed write")
	}
	if !strings.Contains(alert.Message, "database is locked") || alert.Kind != FailureApplication {
		t.Fatalf("unexpected alert %#v", alert)
	}
	task, _ := board.Task(1)
	if task.Status != domain.StatusInProgress {
		t.Fatalf("expected no rollback, got %q", task.Status)
	}
	if board.Err() != nil {
		t.Fatal("per-task failure must not set the board error")
	}
}

func TestBoardAdvanceRegressBounds(t *testing.T) {
	board := loadedBoard(t, &fakeBackend{tasks: sampleTasks()})
	if _, err := board.Advance(3); !errors.Is(err, ErrTransitionUnavailable) {
		t.Fatalf("expected ErrTransitionUnavailable advancing Done, got %v", err)
	}
	if _, err := board.Regress(1); !errors.Is(err, ErrTransitionUnavailable) {
		t.Fatalf("expected ErrTransitionUnavailable regressing To Do, got %v", err)
	}
	if board.CanAdvance(3) || board.CanRegress(1) || !board.CanAdvance(1) || !board.CanRegress(3) {
		t.Fatal("unexpected control availability")
	}
	if _, err := board.Regress(3); err != nil {
		t.Fatalf("Regress() error = %v", err)
	}
	task, _ := board.Task(3)
	if task.Status != domain.StatusInProgress {
		t.Fatalf("unexpected status after regress %q", task.Status)
	}
}

func TestBoardMoveViaDragSameColumnIsNoop(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	board := loadedBoard(t, backend)
	before := board.Tasks()

	req, ok, err := board.MoveViaDrag(DropEvent{SourceTaskID: 2, TargetColumn: domain.StatusInProgress})
	if err != nil || ok || req != nil {
		t.Fatalf("expected no-op, got ok=%v err=%v", ok, err)
	}
	if len(backend.statusCalls) != 0 || board.PendingEdits() != 0 {
		t.Fatal("expected zero network calls and no pending edits")
	}
	after := board.Tasks()
	for i := range before {
		if before[i].Status != after[i].Status {
			t.Fatalf("cache changed for task %d", before[i].ID)
		}
	}
}

func TestBoardMoveViaDragChangesStatus(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	board := loadedBoard(t, backend)

	req, ok, err := board.MoveViaDrag(DropEvent{SourceTaskID: 1, TargetColumn: domain.StatusDone})
	if err != nil || !ok {
		t.Fatalf("MoveViaDrag() ok=%v err=%v", ok, err)
	}
	board.ApplyStatus(req(context.Background()))
	if got := board.Columns().Counts(); got[0] != 0 || got[2] != 2 {
		t.Fatalf("unexpected counts %v", got)
	}
	if _, _, err := board.MoveViaDrag(DropEvent{SourceTaskID: 42, TargetColumn: domain.StatusDone}); !errors.Is(err, ErrTaskNotCached) {
		t.Fatalf("expected ErrTaskNotCached, got %v", err)
	}
}

func TestBoardDeleteWaitsForConfirmation(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	board := loadedBoard(t, backend)

	prompt, err := board.PrepareDelete(2)
	if err != nil {
		t.Fatalf("PrepareDelete() error = %v", err)
	}
	if !strings.Contains(prompt.Question(), "Book venue") {
		t.Fatalf("unexpected prompt %q", prompt.Question())
	}
	if req, ok := board.ConfirmDelete(prompt, false); ok || req != nil {
		t.Fatal("declined confirmation must not issue a request")
	}
	req, ok := board.ConfirmDelete(prompt, true)
	if !ok {
		t.Fatal("expected delete request")
	}
	if _, found := board.Task(2); !found {
		t.Fatal("task must stay cached until the backend confirms")
	}
	if alert := board.ApplyDelete(req(context.Background())); alert != nil {
		t.Fatalf("unexpected alert %#v", alert)
	}
	if _, found := board.Task(2); found {
		t.Fatal("expected task removed after confirmation")
	}
	if len(backend.deleteCalls) != 1 || backend.deleteCalls[0] != 2 {
		t.Fatalf("unexpected delete calls %#v", backend.deleteCalls)
	}
}

func TestBoardDeleteFailureKeepsTask(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks(), deleteErr: &APIError{StatusCode: 404, Detail: "not found"}}
	board := loadedBoard(t, backend)

	prompt, _ := board.PrepareDelete(3)
	req, _ := board.ConfirmDelete(prompt, true)
	alert := board.ApplyDelete(req(context.Background()))
	if alert == nil || !strings.Contains(alert.Message, "not found") {
		t.Fatalf("expected alert containing detail, got %#v", alert)
	}
	if _, found := board.Task(3); !found {
		t.Fatal("expected task to remain visible")
	}
}

func TestBoardFetchDiscardsOptimisticEdits(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	board := loadedBoard(t, backend)

	if _, err := board.SetStatus(1, domain.StatusDone); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if _, err := board.SetStatus(2, domain.StatusTodo); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	backend.tasks = sampleTasks()[:1]

	report := board.ApplyFetch(board.FetchAll()(context.Background()))
	task, _ := board.Task(1)
	if task.Status != domain.StatusTodo {
		t.Fatalf("expected server truth to replace optimistic edit, got %q", task.Status)
	}
	if len(board.Tasks()) != 1 {
		t.Fatalf("expected cache replaced entirely, got %d tasks", len(board.Tasks()))
	}
	if len(report.Discarded) != 2 {
		t.Fatalf("expected 2 discarded edits, got %#v", report.Discarded)
	}
	if report.Discarded[0].TaskID != 1 || report.Discarded[0].ServerStatus != domain.StatusTodo {
		t.Fatalf("unexpected first discarded edit %#v", report.Discarded[0])
	}
	if !report.Discarded[1].Removed {
		t.Fatalf("expected second edit reported as removed, got %#v", report.Discarded[1])
	}
	if board.PendingEdits() != 0 {
		t.Fatal("expected pending edits cleared")
	}
}

func TestBoardSameTaskLastResponseWins(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	board := loadedBoard(t, backend)

	first, _ := board.SetStatus(1, domain.StatusInProgress)
	second, _ := board.SetStatus(1, domain.StatusDone)
	task, _ := board.Task(1)
	if task.Status != domain.StatusDone {
		t.Fatalf("expected last issued status locally, got %q", task.Status)
	}

	board.ApplyStatus(second(context.Background()))
	board.ApplyStatus(first(context.Background()))
	task, _ = board.Task(1)
	if task.Status != domain.StatusInProgress {
		t.Fatalf("expected last arriving response to win, got %q", task.Status)
	}
}
