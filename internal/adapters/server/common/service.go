package common

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/actionboard/internal/domain"
)

// AcceptedExtensions lists the upload extensions the devserver accepts.
var AcceptedExtensions = []string{".mp3", ".m4a", ".wav"}

// Service is the devserver backend: a sqlite task store plus a fixture-driven
// stand-in for the transcription and extraction pipeline.
type Service struct {
	store   TaskStore
	fixture Fixture
	now     func() time.Time
	newID   func() string
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the job/page id source.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService builds a devserver service over store.
func NewService(store TaskStore, fixture Fixture, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("task store is required")
	}
	svc := &Service{
		store:   store,
		fixture: fixture,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

var (
	_ TaskService     = (*Service)(nil)
	_ WorkflowService = (*Service)(nil)
)

// ListTasks returns tasks newest first.
func (s *Service) ListTasks(ctx context.Context, status domain.Status) ([]domain.Task, error) {
	return s.store.ListTasks(ctx, status)
}

// UpdateTaskStatus sets one task status.
func (s *Service) UpdateTaskStatus(ctx context.Context, id int64, status domain.Status) (domain.Task, error) {
	if !status.Valid() {
		return domain.Task{}, fmt.Errorf("status %q: %w", status, domain.ErrInvalidStatus)
	}
	return s.store.UpdateTaskStatus(ctx, id, status, s.now())
}

// DeleteTask removes one task.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	return s.store.DeleteTask(ctx, id)
}

// ProcessWorkflow validates the upload, then either saves the fixture items
// as To Do tasks (internal) or reports a simulated document push (notion).
// Unknown destinations are treated as internal.
func (s *Service) ProcessWorkflow(ctx context.Context, req WorkflowRequest) (domain.WorkflowResult, error) {
	ext := strings.ToLower(filepath.Ext(req.FileName))
	if !slices.Contains(AcceptedExtensions, ext) {
		return domain.WorkflowResult{}, &DetailError{
			Detail: "Invalid file format. Allowed: " + strings.Join(AcceptedExtensions, ", "),
			Err:    ErrUnsupportedFile,
		}
	}
	if detail := strings.TrimSpace(s.fixture.Failure); detail != "" {
		return domain.WorkflowResult{}, &DetailError{Detail: detail, Err: ErrPipelineFailed}
	}

	jobName := "transcription_" + s.shortID()
	summary := s.fixture.Summary
	result := domain.WorkflowResult{
		Status:           "success",
		JobName:          jobName,
		Summary:          &summary,
		ActionItemsCount: len(s.fixture.ActionItems),
	}

	if strings.TrimSpace(req.Destination) == string(domain.DestinationNotion) {
		result.Destination = domain.DestinationNotion
		result.NotionResult = s.simulateNotionPush()
		return result, nil
	}

	result.Destination = domain.DestinationInternal
	result.SavedTasks = make([]domain.Task, 0, len(s.fixture.ActionItems))
	now := s.now()
	for _, item := range s.fixture.ActionItems {
		task, err := domain.NewTaskFromActionItem(item, jobName)
		if err != nil {
			return domain.WorkflowResult{}, err
		}
		saved, err := s.store.CreateTask(ctx, task, now)
		if err != nil {
			return domain.WorkflowResult{}, fmt.Errorf("save action item: %w", err)
		}
		result.SavedTasks = append(result.SavedTasks, domain.Task{
			ID:       saved.ID,
			Assignee: saved.Assignee,
			Task:     saved.Task,
			Status:   saved.Status,
		})
	}
	return result, nil
}

func (s *Service) simulateNotionPush() *domain.NotionResult {
	results := make([]domain.NotionItem, 0, len(s.fixture.ActionItems))
	for _, item := range s.fixture.ActionItems {
		assignee := item.Assignee
		if strings.TrimSpace(assignee) == "" {
			assignee = "Unassigned"
		}
		results = append(results, domain.NotionItem{
			Task:     item.Task,
			Assignee: assignee,
			Result:   domain.NotionItemResult{Status: "success", PageID: "page_" + s.shortID()},
		})
	}
	return &domain.NotionResult{
		Status:  "success",
		Message: fmt.Sprintf("Successfully created %d/%d tasks in Notion", len(results), len(results)),
		Results: results,
	}
}

func (s *Service) shortID() string {
	id := strings.ReplaceAll(s.newID(), "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}
