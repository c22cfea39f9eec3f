// Package httpapi provides the REST HTTP adapter for the devserver surface.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hylla/actionboard/internal/adapters/server/common"
	"github.com/hylla/actionboard/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// maxUploadMemoryBytes bounds in-memory multipart parsing; larger parts spill to disk.
const maxUploadMemoryBytes int64 = 32 << 20

// serviceName is reported by the root and health endpoints.
const serviceName = "actionboard devserver"

// Handler serves the task and workflow routes at the server root.
type Handler struct {
	tasks    common.TaskService
	workflow common.WorkflowService
	now      func() time.Time
}

// ErrorEnvelope is the `{"detail": ...}` failure body the client reads.
type ErrorEnvelope struct {
	Detail string `json:"detail"`
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// NewHandler constructs one HTTP API adapter from the task and workflow services.
func NewHandler(tasks common.TaskService, workflow common.WorkflowService) *Handler {
	return &Handler{
		tasks:    tasks,
		workflow: workflow,
		now:      time.Now,
	}
}

// ServeHTTP routes one API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)
	switch path {
	case "":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": serviceName})
		return
	case "health":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:    "healthy",
			Service:   serviceName,
			Timestamp: h.now().UTC().Format(time.RFC3339),
		})
		return
	case "tasks":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListTasks(w, r)
		return
	case "process-full-workflow":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleProcessWorkflow(w, r)
		return
	}

	id, sub, ok := resolveTaskPath(path)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorEnvelope{Detail: "Not Found"})
		return
	}
	switch sub {
	case "":
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w, http.MethodDelete)
			return
		}
		h.handleDeleteTask(w, r, id)
	case "status":
		if r.Method != http.MethodPatch {
			writeMethodNotAllowed(w, http.MethodPatch)
			return
		}
		h.handleUpdateStatus(w, r, id)
	}
}

// handleListTasks serves GET `/tasks`.
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if h.tasks == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorEnvelope{Detail: "task service is not configured"})
		return
	}
	status := domain.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	tasks, err := h.tasks.ListTasks(r.Context(), status)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.TasksResponse{
		Status: "success",
		Tasks:  tasks,
		Total:  len(tasks),
	})
}

// handleUpdateStatus serves PATCH `/tasks/{id}/status`.
func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request, id int64) {
	if h.tasks == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorEnvelope{Detail: "task service is not configured"})
		return
	}
	var req common.StatusUpdateRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	task, err := h.tasks.UpdateTaskStatus(r.Context(), id, domain.Status(strings.TrimSpace(req.Status)))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleDeleteTask serves DELETE `/tasks/{id}`.
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request, id int64) {
	if h.tasks == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorEnvelope{Detail: "task service is not configured"})
		return
	}
	if err := h.tasks.DeleteTask(r.Context(), id); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.MessageResponse{
		Status:  "success",
		Message: fmt.Sprintf("Task %d deleted successfully", id),
	})
}

// handleProcessWorkflow serves POST `/process-full-workflow`.
func (h *Handler) handleProcessWorkflow(w http.ResponseWriter, r *http.Request) {
	if h.workflow == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorEnvelope{Detail: "workflow service is not configured"})
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemoryBytes); err != nil {
		writeErrorFrom(w, fmt.Errorf("parse multipart form: %w", errors.Join(common.ErrInvalidRequest, err)))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorEnvelope{Detail: "Field required: file"})
		return
	}
	_ = file.Close()

	result, err := h.workflow.ProcessWorkflow(r.Context(), common.WorkflowRequest{
		FileName:    header.Filename,
		Size:        header.Size,
		Destination: strings.TrimSpace(r.URL.Query().Get("destination")),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// resolveTaskPath parses `tasks/{id}` and `tasks/{id}/status`.
func resolveTaskPath(path string) (int64, string, bool) {
	rest, ok := strings.CutPrefix(path, "tasks/")
	if !ok {
		return 0, "", false
	}
	rawID, sub, _ := strings.Cut(rest, "/")
	if sub != "" && sub != "status" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, sub, true
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into `{"detail"}` HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusInternalServerError, ErrorEnvelope{Detail: "unknown error"})
	case errors.Is(err, domain.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, ErrorEnvelope{Detail: "Task not found"})
	case errors.Is(err, domain.ErrInvalidStatus):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorEnvelope{Detail: "Invalid status. Allowed: " + allowedStatuses()})
	case errors.Is(err, common.ErrUnsupportedFile):
		writeJSON(w, http.StatusBadRequest, ErrorEnvelope{Detail: detailOf(err)})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, ErrorEnvelope{Detail: err.Error()})
	case errors.Is(err, common.ErrPipelineFailed):
		writeJSON(w, http.StatusInternalServerError, ErrorEnvelope{Detail: detailOf(err)})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorEnvelope{Detail: err.Error()})
	}
}

// detailOf prefers the client-facing detail carried by a DetailError.
func detailOf(err error) string {
	var target *common.DetailError
	if errors.As(err, &target) && strings.TrimSpace(target.Detail) != "" {
		return target.Detail
	}
	return err.Error()
}

func allowedStatuses() string {
	names := make([]string, 0, 3)
	for _, status := range domain.Statuses() {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}

// writeMethodNotAllowed writes a 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSON(w, http.StatusMethodNotAllowed, ErrorEnvelope{Detail: "Method Not Allowed"})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"detail":"%s"}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
