package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.tasks.List(r.Context(), userIDFromContext(r.Context()), services.ListTaskParams{
		Page:      q.Get("page"),
		Limit:     q.Get("limit"),
		Status:    q.Get("status"),
		Priority:  q.Get("priority"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	})
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "", page)
}

type createTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"dueDate"`
	Tags        []string `json:"tags"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r, w, err)
		return
	}

	// The owner comes from the resolved identity; anything owner-like in
	// the body is ignored.
	task, err := s.tasks.Create(r.Context(), userIDFromContext(r.Context()), services.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusCreated, "Task created successfully", map[string]any{
		"task": task,
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Get(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "", map[string]any{
		"task": task,
	})
}

type updateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
	DueDate     *string   `json:"dueDate"`
	Tags        *[]string `json:"tags"`
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r, w, err)
		return
	}

	task, err := s.tasks.Update(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"), services.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Task updated successfully", map[string]any{
		"task": task,
	})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(r.Context(), userIDFromContext(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(r, w, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Task deleted successfully", nil)
}
