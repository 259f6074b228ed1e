package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
	"github.com/PrateekJaiswal16/taskflow-api/internal/platform/logger"
	"github.com/PrateekJaiswal16/taskflow-api/internal/store"
)

// taskSortColumns whitelists the sortable columns. Anything else falls back
// to created_at to keep the ORDER BY clause free of caller input.
var taskSortColumns = map[string]string{
	store.SortByCreatedAt: "created_at",
	store.SortByDueDate:   "due_date",
	store.SortByPriority:  "priority",
	store.SortByStatus:    "status",
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend. Attached documents are
// persisted as a JSONB array on the task row, so the record and its
// attachment list always change in one write.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if a referenced user does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	docs, err := marshalAttachments(task.AttachedDocuments)
	if err != nil {
		return store.NewStoreError("task", "create", "failed to encode attachments", err)
	}

	query := `
		INSERT INTO tasks (
			id, title, description, status, priority, due_date,
			assigned_to, created_by, attached_documents, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.AssignedTo,
		task.CreatedBy,
		docs,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("assigned_to", task.AssignedTo.String()))
			return fmt.Errorf("%w: referenced user not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("assigned_to", task.AssignedTo.String()),
		slog.Int("attachments", len(task.AttachedDocuments)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, title, description, status, priority, due_date,
		       assigned_to, created_by, attached_documents, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get", "scan failed", err)
	}
	return task, nil
}

// List implements store.TaskStore.List
// It runs a COUNT over the filtered set for pagination bookkeeping, then
// fetches the requested page.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildTaskWhere(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM tasks" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "count failed", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = store.DefaultPageSize
	}

	column, ok := taskSortColumns[filter.SortBy]
	if !ok {
		column = taskSortColumns[store.SortByCreatedAt]
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT id, title, description, status, priority, due_date,
		       assigned_to, created_by, attached_documents, created_at, updated_at
		FROM tasks%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, column, direction, len(args)+1, len(args)+2)
	args = append(args, size, (page-1)*size)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "query failed", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "list", "scan failed", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "list", "iteration failed", err)
	}

	pages := (total + size - 1) / size

	return &store.TaskPage{
		Tasks: tasks,
		Page:  page,
		Pages: pages,
		Total: total,
	}, nil
}

// Update implements store.TaskStore.Update
// The whole record, attachments included, is overwritten in one write.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	docs, err := marshalAttachments(task.AttachedDocuments)
	if err != nil {
		return store.NewStoreError("task", "update", "failed to encode attachments", err)
	}

	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5,
		    due_date = $6, assigned_to = $7, attached_documents = $8,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.AssignedTo,
		docs,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced user not found", store.ErrInvalidEntity)
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("task", "update", "failed to read affected rows", err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("task", "delete", "failed to read affected rows", err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// buildTaskWhere assembles the WHERE clause and arguments for a filter.
// Returns an empty string when no filters are set.
func buildTaskWhere(filter store.TaskFilter) (string, []any) {
	var clauses []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.AssignedTo != nil {
		add("assigned_to", *filter.AssignedTo)
	}
	if filter.Status != nil {
		add("status", *filter.Status)
	}
	if filter.Priority != nil {
		add("priority", *filter.Priority)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// marshalAttachments encodes the attachment list for the JSONB column.
// An empty list is stored as [] rather than NULL.
func marshalAttachments(docs []domain.Attachment) ([]byte, error) {
	if docs == nil {
		docs = []domain.Attachment{}
	}
	return json.Marshal(docs)
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans a single task row, decoding the attachments JSONB column.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var docs []byte
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.AssignedTo,
		&task.CreatedBy,
		&docs,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &task.AttachedDocuments); err != nil {
			return nil, fmt.Errorf("failed to decode attachments: %w", err)
		}
	}
	if task.AttachedDocuments == nil {
		task.AttachedDocuments = []domain.Attachment{}
	}
	return &task, nil
}
