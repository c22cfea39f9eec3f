package app

import (
	"context"
	"io"

	"github.com/hylla/actionboard/internal/domain"
)

// TaskFilter narrows one task listing.
type TaskFilter struct {
	Status domain.Status
}

// TaskBackend is the task surface of the external backend.
type TaskBackend interface {
	ListTasks(context.Context, TaskFilter) ([]domain.Task, error)
	UpdateTaskStatus(context.Context, int64, domain.Status) error
	DeleteTask(context.Context, int64) error
}

// AudioUpload carries one file to the workflow endpoint.
type AudioUpload struct {
	FileName string
	Body     io.Reader
}

// WorkflowBackend is the upload surface of the external backend.
type WorkflowBackend interface {
	ProcessWorkflow(context.Context, AudioUpload, domain.Destination) (domain.WorkflowResult, error)
}

// Backend combines both backend surfaces.
type Backend interface {
	TaskBackend
	WorkflowBackend
}

// Request is one deferred backend call. Callers run it off the event loop and
// feed the result back into the owning controller.
type Request[T any] func(context.Context) T
