package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
	"github.com/PrateekJaiswal16/taskflow-api/internal/platform/logger"
	"github.com/PrateekJaiswal16/taskflow-api/internal/store"
)

// TaskRepository defines the repository interface for the service layer.
// This is aligned with store.TaskStore to ensure proper separation of
// concerns.
type TaskRepository interface {
	// Create saves a new task, attachments included, in one write.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns the page of tasks selected by the filter.
	List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error)

	// Update overwrites an existing task record in one write.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task record by its ID.
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserDirectory is the read-only user lookup consumed by the task engine.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CreateTaskInput carries the fields for a new task. Status and Priority are
// optional and default to To Do / Medium. The assignee is referenced by
// email and resolved to an ID.
type CreateTaskInput struct {
	Title           string
	Description     string
	Status          domain.TaskStatus
	Priority        domain.TaskPriority
	DueDate         *time.Time
	AssignedToEmail string
}

// UpdateTaskInput carries a partial update: nil fields keep their prior
// value, set fields are applied. A present-but-empty Description clears the
// description; the two states are deliberately distinguishable.
type UpdateTaskInput struct {
	Title           *string
	Description     *string
	Status          *domain.TaskStatus
	Priority        *domain.TaskPriority
	DueDate         *time.Time
	AssignedToEmail *string
}

// ListTasksInput narrows and orders a task listing. The AssignedTo filter is
// honored only in admin scope; own-scope listings are always forced to the
// actor's tasks.
type ListTasksInput struct {
	AssignedTo *uuid.UUID
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	SortBy     string
	Ascending  bool
	Page       int
	PageSize   int
}

// UserRef is the display identity of a referenced user.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// TaskDetail is a task with its referenced users resolved for display.
type TaskDetail struct {
	Task     *domain.Task
	Assignee *UserRef
	Creator  *UserRef
}

// TaskList is one page of resolved tasks plus pagination bookkeeping.
type TaskList struct {
	Tasks []*TaskDetail
	Page  int
	Pages int
	Total int
}

// TaskService composes the authorization policy, the workflow engine, the
// attachment lifecycle manager and the task repository for each use case.
// It is the only component that talks to both the attachment manager and the
// repository, so the record write always happens once, after all attachment
// work for the call has resolved.
type TaskService interface {
	CreateTask(ctx context.Context, actor domain.Actor, input CreateTaskInput, files []IncomingFile) (*TaskDetail, error)
	ListOwnTasks(ctx context.Context, actor domain.Actor, input ListTasksInput) (*TaskList, error)
	ListAllTasks(ctx context.Context, actor domain.Actor, input ListTasksInput) (*TaskList, error)
	GetTask(ctx context.Context, actor domain.Actor, id uuid.UUID) (*TaskDetail, error)
	UpdateTask(ctx context.Context, actor domain.Actor, id uuid.UUID, input UpdateTaskInput, files []IncomingFile) (*TaskDetail, error)
	DeleteTask(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	RequestStatusChange(ctx context.Context, actor domain.Actor, id uuid.UUID) (*TaskDetail, error)
	ApproveTask(ctx context.Context, actor domain.Actor, id uuid.UUID) (*TaskDetail, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	repo        TaskRepository
	users       UserDirectory
	attachments *AttachmentLifecycleManager
	policy      AuthorizationPolicy
	workflow    TaskWorkflowEngine
	logger      *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	repo TaskRepository,
	users UserDirectory,
	attachments *AttachmentLifecycleManager,
	logger *slog.Logger,
) (TaskService, error) {
	if repo == nil {
		return nil, errors.New("task repository cannot be nil")
	}
	if users == nil {
		return nil, errors.New("user directory cannot be nil")
	}
	if attachments == nil {
		return nil, errors.New("attachment lifecycle manager cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &taskServiceImpl{
		repo:        repo,
		users:       users,
		attachments: attachments,
		policy:      NewAuthorizationPolicy(),
		workflow:    NewTaskWorkflowEngine(),
		logger:      logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	actor domain.Actor,
	input CreateTaskInput,
	files []IncomingFile,
) (*TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.policy.Authorize(actor, ActionCreate, nil); err != nil {
		return nil, err
	}

	assignee, err := s.resolveAssignee(ctx, input.AssignedToEmail)
	if err != nil {
		return nil, err
	}

	docs, err := s.attachments.Attach(ctx, nil, files, actor.ID)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(
		input.Title,
		input.Description,
		input.Status,
		input.Priority,
		input.DueDate,
		assignee.ID,
		actor.ID,
		docs,
	)
	if err != nil {
		// The task never existed; its freshly uploaded blobs are orphans.
		s.attachments.Release(ctx, docs)
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.attachments.Release(ctx, docs)
		return nil, NewTaskServiceError("create_task", "failed to persist task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("created_by", actor.ID.String()),
		slog.String("assigned_to", assignee.ID.String()))

	return s.resolveDetail(ctx, task), nil
}

// ListOwnTasks implements TaskService.ListOwnTasks. The listing is always
// scoped to tasks assigned to the actor, whatever filter is supplied.
func (s *taskServiceImpl) ListOwnTasks(
	ctx context.Context,
	actor domain.Actor,
	input ListTasksInput,
) (*TaskList, error) {
	if err := s.policy.Authorize(actor, ActionListOwn, nil); err != nil {
		return nil, err
	}

	input.AssignedTo = &actor.ID
	return s.list(ctx, input)
}

// ListAllTasks implements TaskService.ListAllTasks. Admin scope: the
// AssignedTo filter is honored as given, or left unset for a roster-wide
// listing.
func (s *taskServiceImpl) ListAllTasks(
	ctx context.Context,
	actor domain.Actor,
	input ListTasksInput,
) (*TaskList, error) {
	if err := s.policy.Authorize(actor, ActionListAll, nil); err != nil {
		return nil, err
	}

	return s.list(ctx, input)
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
) (*TaskDetail, error) {
	task, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(actor, ActionView, task); err != nil {
		return nil, err
	}

	return s.resolveDetail(ctx, task), nil
}

// UpdateTask implements TaskService.UpdateTask. Only the fields present in
// the input are applied; files, when present, merge onto the existing
// attachment list under the cap. The record is written once, after all
// attachment work has resolved.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
	input UpdateTaskInput,
	files []IncomingFile,
) (*TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(actor, ActionUpdate, task); err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		// Administrative override: direct edits may set any status.
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.AssignedToEmail != nil {
		assignee, err := s.resolveAssignee(ctx, *input.AssignedToEmail)
		if err != nil {
			return nil, err
		}
		task.AssignedTo = assignee.ID
	}

	priorCount := len(task.AttachedDocuments)
	docs, err := s.attachments.Attach(ctx, task.AttachedDocuments, files, actor.ID)
	if err != nil {
		return nil, err
	}
	task.AttachedDocuments = docs

	if err := task.Validate(); err != nil {
		s.attachments.Release(ctx, docs[priorCount:])
		return nil, err
	}

	if err := s.repo.Update(ctx, task); err != nil {
		// Only the blobs added by this call are orphans; the previously
		// persisted attachments are still referenced by the stored record.
		s.attachments.Release(ctx, docs[priorCount:])
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, NewTaskServiceError("update_task", "failed to persist task", err)
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("updated_by", actor.ID.String()),
		slog.Int("attachments_added", len(docs)-priorCount))

	return s.resolveDetail(ctx, task), nil
}

// DeleteTask implements TaskService.DeleteTask. Attachment blobs are released
// best-effort first; the record deletion proceeds, and is the authoritative
// outcome, even if every blob delete fails.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}

	if err := s.policy.Authorize(actor, ActionDelete, task); err != nil {
		return err
	}

	s.attachments.Release(ctx, task.AttachedDocuments)

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("deleted_by", actor.ID.String()),
		slog.Int("attachments_released", len(task.AttachedDocuments)))
	return nil
}

// RequestStatusChange implements TaskService.RequestStatusChange: the
// assignee's guarded hand-off into Pending Approval.
func (s *taskServiceImpl) RequestStatusChange(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
) (*TaskDetail, error) {
	return s.transition(ctx, actor, id, ActionRequestChange, s.workflow.RequestChange)
}

// ApproveTask implements TaskService.ApproveTask: the admin's guarded
// sign-off from Pending Approval into Done.
func (s *taskServiceImpl) ApproveTask(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
) (*TaskDetail, error) {
	return s.transition(ctx, actor, id, ActionApprove, s.workflow.Approve)
}

// transition runs the shared fetch → authorize → guard → persist sequence
// for the two guarded workflow operations. Policy and workflow failures are
// deterministic and surfaced immediately, never retried.
func (s *taskServiceImpl) transition(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
	action Action,
	guard func(domain.TaskStatus) (domain.TaskStatus, error),
) (*TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(actor, action, task); err != nil {
		return nil, err
	}

	next, err := guard(task.Status)
	if err != nil {
		return nil, err
	}

	prior := task.Status
	task.Status = next
	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, NewTaskServiceError(string(action), "failed to persist status change", err)
	}

	log.Info("task status changed",
		slog.String("task_id", task.ID.String()),
		slog.String("actor_id", actor.ID.String()),
		slog.String("from", string(prior)),
		slog.String("to", string(next)))

	return s.resolveDetail(ctx, task), nil
}

// list runs the repository query and resolves user references for display.
func (s *taskServiceImpl) list(ctx context.Context, input ListTasksInput) (*TaskList, error) {
	page, err := s.repo.List(ctx, store.TaskFilter{
		AssignedTo: input.AssignedTo,
		Status:     input.Status,
		Priority:   input.Priority,
		SortBy:     input.SortBy,
		Ascending:  input.Ascending,
		Page:       input.Page,
		PageSize:   input.PageSize,
	})
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to query tasks", err)
	}

	details := make([]*TaskDetail, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		details = append(details, s.resolveDetail(ctx, task))
	}

	return &TaskList{
		Tasks: details,
		Page:  page.Page,
		Pages: page.Pages,
		Total: page.Total,
	}, nil
}

// fetch loads a task, mapping the store's not-found to the service sentinel.
func (s *taskServiceImpl) fetch(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, NewTaskServiceError("get_task", "failed to fetch task", err)
	}
	return task, nil
}

// resolveAssignee looks up the target user by email.
// Returns ErrUserNotFound if no user carries that email.
func (s *taskServiceImpl) resolveAssignee(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, NewTaskServiceError("resolve_assignee", "failed to look up user", err)
	}
	return user, nil
}

// resolveDetail attaches display identities for the task's referenced users.
// Lookup failures degrade to an ID-only reference rather than failing the
// whole call.
func (s *taskServiceImpl) resolveDetail(ctx context.Context, task *domain.Task) *TaskDetail {
	return &TaskDetail{
		Task:     task,
		Assignee: s.userRef(ctx, task.AssignedTo),
		Creator:  s.userRef(ctx, task.CreatedBy),
	}
}

func (s *taskServiceImpl) userRef(ctx context.Context, id uuid.UUID) *UserRef {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return &UserRef{ID: id}
	}
	return &UserRef{ID: user.ID, Name: user.Name, Email: user.Email}
}
