package services

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// TaskService implements ownership-scoped task CRUD and the list query
// engine. The owner always comes from the authenticated identity, never from
// client input.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// CreateTaskParams is the validated input for Create. Empty optional fields
// mean "absent".
type CreateTaskParams struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
	Tags        []string
}

func (p CreateTaskParams) Validate() error {
	var c fieldCollector
	if n := runeLen(strings.TrimSpace(p.Title)); n < 1 || n > 100 {
		c.add("title", "is required and must be between 1 and 100 characters")
	}
	if runeLen(p.Description) > 500 {
		c.add("description", "must be at most 500 characters")
	}
	if p.Status != "" && !models.ValidStatus(p.Status) {
		c.add("status", "must be one of pending, in-progress, completed")
	}
	if p.Priority != "" && !models.ValidPriority(p.Priority) {
		c.add("priority", "must be one of low, medium, high")
	}
	if p.DueDate != "" {
		if _, err := parseDate(p.DueDate); err != nil {
			c.add("dueDate", "must be a valid date")
		}
	}
	return c.err()
}

// Create stores a new task owned by owner.
func (s *TaskService) Create(ctx context.Context, owner string, p CreateTaskParams) (*models.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      owner,
		Title:       strings.TrimSpace(p.Title),
		Description: p.Description,
		Status:      models.StatusPending,
		Tags:        p.Tags,
	}
	if p.Status != "" {
		task.Status = p.Status
	}
	if p.Priority != "" {
		priority := p.Priority
		task.Priority = &priority
	}
	if p.DueDate != "" {
		due, _ := parseDate(p.DueDate)
		task.DueDate = &due
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	return s.repomanager.Tasks(s.db).Create(ctx, task)
}

// UpdateTaskParams carries a partial patch: nil fields keep prior values.
// DueDate, when set, must parse as a date.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
	Tags        *[]string
}

func (p UpdateTaskParams) Validate() error {
	var c fieldCollector
	if p.Title != nil {
		if n := runeLen(strings.TrimSpace(*p.Title)); n < 1 || n > 100 {
			c.add("title", "must be between 1 and 100 characters")
		}
	}
	if p.Description != nil && runeLen(*p.Description) > 500 {
		c.add("description", "must be at most 500 characters")
	}
	if p.Status != nil && !models.ValidStatus(*p.Status) {
		c.add("status", "must be one of pending, in-progress, completed")
	}
	if p.Priority != nil && !models.ValidPriority(*p.Priority) {
		c.add("priority", "must be one of low, medium, high")
	}
	if p.DueDate != nil {
		if _, err := parseDate(*p.DueDate); err != nil {
			c.add("dueDate", "must be a valid date")
		}
	}
	return c.err()
}

// Update applies the patch to the task with the given id owned by owner.
// A task owned by someone else is reported as common.ErrorNotFound, exactly
// like a missing one.
func (s *TaskService) Update(ctx context.Context, owner string, id string, p UpdateTaskParams) (*models.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	patch := tasks.Patch{
		Description: p.Description,
		Status:      p.Status,
		Priority:    p.Priority,
		Tags:        p.Tags,
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		patch.Title = &title
	}
	if p.DueDate != nil {
		due, _ := parseDate(*p.DueDate)
		patch.DueDate = &due
	}

	return s.repomanager.Tasks(s.db).Update(ctx, owner, id, patch)
}

// Delete removes the task irreversibly, under the same ownership scoping
// as Update.
func (s *TaskService) Delete(ctx context.Context, owner string, id string) error {
	return s.repomanager.Tasks(s.db).Delete(ctx, owner, id)
}

// Get returns a single task owned by owner.
func (s *TaskService) Get(ctx context.Context, owner string, id string) (*models.Task, error) {
	return s.repomanager.Tasks(s.db).GetByID(ctx, owner, id)
}

// ListTaskParams carries the raw query configuration for List. String fields
// arrive unparsed from the transport; Validate rejects malformed values
// before any predicate is built.
type ListTaskParams struct {
	Page      string
	Limit     string
	Status    string
	Priority  string
	Search    string
	SortBy    string
	SortOrder string
}

func (p ListTaskParams) Validate() error {
	var c fieldCollector
	if p.Page != "" {
		if n, err := strconv.Atoi(p.Page); err != nil || n < 1 {
			c.add("page", "must be a positive integer")
		}
	}
	if p.Limit != "" {
		if n, err := strconv.Atoi(p.Limit); err != nil || n < 1 || n > maxLimit {
			c.add("limit", "must be between 1 and 100")
		}
	}
	if p.Status != "" && !models.ValidStatus(p.Status) {
		c.add("status", "must be one of pending, in-progress, completed")
	}
	if p.Priority != "" && !models.ValidPriority(p.Priority) {
		c.add("priority", "must be one of low, medium, high")
	}
	if p.SortBy != "" && !tasks.SortableField(p.SortBy) {
		c.add("sortBy", "is not a sortable field")
	}
	if p.SortOrder != "" && p.SortOrder != "asc" && p.SortOrder != "desc" {
		c.add("sortOrder", "must be asc or desc")
	}
	return c.err()
}

// Pagination is the page metadata returned alongside a task listing.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// TaskPage is one page of tasks plus its pagination metadata.
type TaskPage struct {
	Tasks      []*models.Task `json:"tasks"`
	Pagination Pagination     `json:"pagination"`
}

// List runs the query engine: a deterministic, bounded page of the owner's
// tasks narrowed by the supplied filters.
func (s *TaskService) List(ctx context.Context, owner string, p ListTaskParams) (*TaskPage, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	page := defaultPage
	if p.Page != "" {
		page, _ = strconv.Atoi(p.Page)
	}
	limit := defaultLimit
	if p.Limit != "" {
		limit, _ = strconv.Atoi(p.Limit)
	}
	sortBy := "createdAt"
	if p.SortBy != "" {
		sortBy = p.SortBy
	}
	sortDesc := p.SortOrder != "asc"

	filter := tasks.Filter{
		Status:   p.Status,
		Priority: p.Priority,
		Search:   p.Search,
		SortBy:   sortBy,
		SortDesc: sortDesc,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	items, total, err := s.repomanager.Tasks(s.db).List(ctx, owner, filter)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit

	return &TaskPage{
		Tasks: items,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}
