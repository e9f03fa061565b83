package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Patch carries the mutable task fields for a partial update.
// Nil means "leave as is".
type Patch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	Tags        *[]string
}

// Filter is the validated query configuration for listing tasks. Zero-value
// string fields mean the filter is not applied. SortBy must be one of the
// sortable column names; callers validate before building a Filter.
type Filter struct {
	Status   string
	Priority string
	Search   string
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

// Repository persists task records. Every operation is scoped to the owner;
// a task owned by someone else is indistinguishable from a missing one.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, owner string, id string) (*models.Task, error)
	Update(ctx context.Context, owner string, id string, patch Patch) (*models.Task, error)
	Delete(ctx context.Context, owner string, id string) error

	// List returns one page of matching tasks plus the total match count.
	List(ctx context.Context, owner string, f Filter) ([]*models.Task, int, error)
}
