package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/google/uuid"
)

const taskColumns = `id, user_id, title, description, status, priority, due_date, tags, created_at, updated_at`

// sortColumns maps the externally accepted sortBy names onto real columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
}

// SortableField reports whether name is an accepted sortBy value.
func SortableField(name string) bool {
	_, ok := sortColumns[name]
	return ok
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var tags []byte
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status,
		&t.Priority, &t.DueDate, &tags, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal(tags, &t.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.ID = uuid.NewString()

	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}

	query := `INSERT INTO tasks (id, user_id, title, description, status, priority, due_date, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING ` + taskColumns

	return scanTask(r.db.QueryRowContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description, task.Status,
		task.Priority, task.DueDate, tags))
}

func (r *PostgresRepository) GetByID(ctx context.Context, owner string, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	return scanTask(r.db.QueryRowContext(ctx, query, id, owner))
}

func (r *PostgresRepository) Update(ctx context.Context, owner string, id string, patch Patch) (*models.Task, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.Tags != nil {
		tags, err := json.Marshal(*patch.Tags)
		if err != nil {
			return nil, fmt.Errorf("encoding tags: %w", err)
		}
		add("tags", tags)
	}

	args = append(args, id, owner)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), taskColumns)

	return scanTask(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository) Delete(ctx context.Context, owner string, id string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, owner)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// likeEscaper neutralizes ILIKE metacharacters so the search text matches
// literally: "100%" must not mean "starts with 100".
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildPredicate renders the WHERE clause shared by the count and page
// queries: always owner-scoped, narrowed by status/priority equality and a
// case-insensitive substring match over title, description, and tags.
func buildPredicate(owner string, f Filter) (string, []any) {
	where := []string{"user_id = $1"}
	args := []any{owner}

	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			`(title ILIKE $%d OR description ILIKE $%d OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) tag WHERE tag ILIKE $%d))`,
			n, n, n))
	}

	return strings.Join(where, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, owner string, f Filter) ([]*models.Task, int, error) {
	predicate, args := buildPredicate(owner, f)

	var total int
	countQuery := `SELECT count(*) FROM tasks WHERE ` + predicate
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}

	args = append(args, f.Limit, f.Offset)
	pageQuery := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		taskColumns, predicate, column, direction, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Task, 0, f.Limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return items, total, nil
}
