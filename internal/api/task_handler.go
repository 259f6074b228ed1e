package api

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/PrateekJaiswal16/taskflow-api/internal/api/middleware"
	"github.com/PrateekJaiswal16/taskflow-api/internal/api/shared"
	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
	"github.com/PrateekJaiswal16/taskflow-api/internal/service"
)

// maxUploadBytes bounds the in-memory portion of a multipart request body.
const maxUploadBytes = 32 << 20

// documentsFormField is the multipart field carrying attached documents.
const documentsFormField = "documents"

// CreateTaskRequest represents the request body for creating a task. Sent as
// JSON or as the value fields of a multipart form when documents are attached.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	AssignedTo  string `json:"assigned_to" validate:"required,email"`
}

// UpdateTaskRequest represents a partial task update. Omitted fields keep
// their prior value; a present-but-empty description clears it.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,email"`
}

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	var files []service.IncomingFile

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		req = CreateTaskRequest{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Status:      r.FormValue("status"),
			Priority:    r.FormValue("priority"),
			DueDate:     r.FormValue("due_date"),
			AssignedTo:  r.FormValue("assigned_to"),
		}
		parsed, err := readUploadedFiles(r)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Failed to read uploaded files")
			return
		}
		files = parsed
	} else {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	input := service.CreateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		AssignedToEmail: req.AssignedTo,
	}

	if req.Status != "" {
		status, err := domain.ParseTaskStatus(req.Status)
		if err != nil {
			respondWithMappedError(w, r, err)
			return
		}
		input.Status = status
	}
	if req.Priority != "" {
		priority, err := domain.ParseTaskPriority(req.Priority)
		if err != nil {
			respondWithMappedError(w, r, err)
			return
		}
		input.Priority = priority
	}
	if req.DueDate != "" {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due date")
			return
		}
		input.DueDate = &due
	}

	detail, err := h.taskService.CreateTask(r.Context(), actor, input, files)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(detail))
}

// ListOwnTasks handles GET /api/tasks requests, scoped to the actor.
func (h *TaskHandler) ListOwnTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	input, err := parseListInput(r)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	list, err := h.taskService.ListOwnTasks(r.Context(), actor, input)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskListToResponse(list))
}

// ListAllTasks handles GET /api/tasks/all requests. Admin only.
func (h *TaskHandler) ListAllTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	input, err := parseListInput(r)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	list, err := h.taskService.ListAllTasks(r.Context(), actor, input)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskListToResponse(list))
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	detail, err := h.taskService.GetTask(r.Context(), actor, id)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(detail))
}

// UpdateTask handles PUT /api/tasks/{id} requests.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	var files []service.IncomingFile

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		req = UpdateTaskRequest{
			Title:       formValue(r, "title"),
			Description: formValue(r, "description"),
			Status:      formValue(r, "status"),
			Priority:    formValue(r, "priority"),
			DueDate:     formValue(r, "due_date"),
			AssignedTo:  formValue(r, "assigned_to"),
		}
		parsed, err := readUploadedFiles(r)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Failed to read uploaded files")
			return
		}
		files = parsed
	} else {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	input := service.UpdateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		AssignedToEmail: req.AssignedTo,
	}

	if req.Status != nil {
		status, err := domain.ParseTaskStatus(*req.Status)
		if err != nil {
			respondWithMappedError(w, r, err)
			return
		}
		input.Status = &status
	}
	if req.Priority != nil {
		priority, err := domain.ParseTaskPriority(*req.Priority)
		if err != nil {
			respondWithMappedError(w, r, err)
			return
		}
		input.Priority = &priority
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due date")
			return
		}
		input.DueDate = &due
	}

	detail, err := h.taskService.UpdateTask(r.Context(), actor, id, input, files)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(detail))
}

// DeleteTask handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), actor, id); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "Task deleted"})
}

// RequestStatusChange handles PATCH /api/tasks/{id}/request-change requests.
// The assignee asks to move an open task into review.
func (h *TaskHandler) RequestStatusChange(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	detail, err := h.taskService.RequestStatusChange(r.Context(), actor, id)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(detail))
}

// ApproveTask handles PATCH /api/tasks/{id}/approve requests. Admin only.
func (h *TaskHandler) ApproveTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	detail, err := h.taskService.ApproveTask(r.Context(), actor, id)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(detail))
}

// taskIDParam extracts and parses the {id} URL parameter, responding with a
// 400 on failure.
func taskIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, false
	}
	return id, true
}

// isMultipart reports whether the request body is a multipart form.
func isMultipart(r *http.Request) bool {
	contentType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return strings.HasPrefix(contentType, "multipart/")
}

// formValue returns the named multipart form value as a pointer, or nil when
// the field was not sent. Distinguishing absent from empty preserves partial
// update semantics.
func formValue(r *http.Request, name string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// readUploadedFiles drains the documents field of a parsed multipart form
// into memory.
func readUploadedFiles(r *http.Request) ([]service.IncomingFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File[documentsFormField]
	files := make([]service.IncomingFile, 0, len(headers))
	for _, header := range headers {
		file, err := readUploadedFile(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readUploadedFile(header *multipart.FileHeader) (service.IncomingFile, error) {
	f, err := header.Open()
	if err != nil {
		return service.IncomingFile{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.IncomingFile{}, err
	}

	return service.IncomingFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// parseDueDate accepts either an RFC 3339 timestamp or a bare date.
func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// parseListInput builds a listing input from query parameters. Unknown sort
// columns are rejected by the store, so only status and priority need
// validation here.
func parseListInput(r *http.Request) (service.ListTasksInput, error) {
	query := r.URL.Query()
	input := service.ListTasksInput{
		SortBy:    query.Get("sort_by"),
		Ascending: query.Get("order") == "asc",
	}

	if raw := query.Get("status"); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			return input, err
		}
		input.Status = &status
	}
	if raw := query.Get("priority"); raw != "" {
		priority, err := domain.ParseTaskPriority(raw)
		if err != nil {
			return input, err
		}
		input.Priority = &priority
	}
	if raw := query.Get("assigned_to"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return input, domain.ErrInvalidID
		}
		input.AssignedTo = &id
	}
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return input, domain.ErrValidation
		}
		input.Page = page
	}
	if raw := query.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return input, domain.ErrValidation
		}
		input.PageSize = size
	}

	return input, nil
}

// requireActor pulls the authenticated actor injected by the auth middleware,
// responding with a 401 when it is missing.
func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return domain.Actor{}, false
	}
	return actor, true
}
