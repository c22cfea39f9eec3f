// Package common provides transport-agnostic devserver contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/hylla/actionboard/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrUnsupportedFile reports an upload whose extension is not accepted.
var ErrUnsupportedFile = errors.New("unsupported file format")

// ErrPipelineFailed reports a simulated workflow failure.
var ErrPipelineFailed = errors.New("workflow pipeline failed")

// DetailError carries the client-facing detail message for one failure.
type DetailError struct {
	Detail string
	Err    error
}

// Error returns the detail message.
func (e *DetailError) Error() string {
	return e.Detail
}

// Unwrap exposes the classifying sentinel.
func (e *DetailError) Unwrap() error {
	return e.Err
}

// TaskStore persists devserver tasks.
type TaskStore interface {
	CreateTask(context.Context, domain.Task, time.Time) (domain.Task, error)
	GetTask(context.Context, int64) (domain.Task, error)
	ListTasks(context.Context, domain.Status) ([]domain.Task, error)
	UpdateTaskStatus(context.Context, int64, domain.Status, time.Time) (domain.Task, error)
	DeleteTask(context.Context, int64) error
}

// TaskService is the task surface shared by the REST and MCP adapters.
type TaskService interface {
	ListTasks(context.Context, domain.Status) ([]domain.Task, error)
	UpdateTaskStatus(context.Context, int64, domain.Status) (domain.Task, error)
	DeleteTask(context.Context, int64) error
}

// WorkflowRequest describes one uploaded recording.
type WorkflowRequest struct {
	FileName    string
	Size        int64
	Destination string
}

// WorkflowService runs the simulated upload pipeline.
type WorkflowService interface {
	ProcessWorkflow(context.Context, WorkflowRequest) (domain.WorkflowResult, error)
}

// TasksResponse is the GET /tasks envelope.
type TasksResponse struct {
	Status string        `json:"status"`
	Tasks  []domain.Task `json:"tasks"`
	Total  int           `json:"total"`
}

// MessageResponse is a status + message envelope.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusUpdateRequest is the PATCH /tasks/{id}/status body.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}
