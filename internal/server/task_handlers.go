package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"todoapp/internal/service"
)

func parseUintParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// parseFilter reads the category-filter form. The filter applies only
// when the make-filter flag was submitted.
func parseFilter(values url.Values) service.CategoryFilter {
	filter := service.CategoryFilter{Submitted: values.Has("make-filter")}
	for _, raw := range values["user_category_filter"] {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CategoryIDs = append(filter.CategoryIDs, uint(id))
		}
	}
	return filter
}

// parseDueDate accepts a date with or without a time component.
func parseDueDate(raw string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTaskInput(values url.Values) (service.TaskInput, bool) {
	due, ok := parseDueDate(values.Get("due_date"))
	if !ok {
		return service.TaskInput{}, false
	}

	progress, _ := strconv.Atoi(values.Get("progress"))
	notifyMinutes, _ := strconv.Atoi(values.Get("notification_time"))

	input := service.TaskInput{
		Name:                 values.Get("name"),
		Description:          values.Get("description"),
		DueDate:              due,
		Progress:             progress,
		NotificationsEnabled: values.Get("notifications_enabled") != "",
		NotificationTime:     notifyMinutes,
		NotificationType:     values.Get("notification_type"),
	}
	for _, raw := range values["categories"] {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			input.CategoryIDs = append(input.CategoryIDs, uint(id))
		}
	}
	return input, true
}

// handleTaskView shows the user's own and shared tasks, pending
// collaboration requests, and (on request) an AI task suggestion.
func (s *Server) handleTaskView(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	ctx := r.Context()

	sets, err := s.filter.TasksFor(ctx, user, parseFilter(r.URL.Query()))
	if err != nil {
		s.logger.Error("load tasks", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	requests, err := s.collab.ReceivedRequests(ctx, user)
	if err != nil {
		s.logger.Error("load collab requests", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	hasTask, err := s.tasks.HasTasks(ctx, user)
	if err != nil {
		s.logger.Error("count tasks", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var suggestion *service.TaskSuggestion
	if r.URL.Query().Has("generate-task") {
		suggestion, err = s.suggestions.Suggest(ctx, user)
		if err != nil {
			// A malformed model reply degrades to no suggestion.
			s.logger.Error("task suggestion", "err", err)
			suggestion = nil
		}
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		s.logger.Error("load categories", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "task_view.html", map[string]any{
		"User":         user,
		"MyTasks":      sets.Owned,
		"SharedTasks":  sets.Shared,
		"TaskRequests": requests,
		"HasTask":      hasTask,
		"Categories":   categories,
		"Suggestion":   suggestion,
	})
}

// handleAddTaskForm renders the creation form, pre-filled from query
// parameters when a suggestion was accepted.
func (s *Server) handleAddTaskForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	categories, err := s.categories.List(ctx)
	if err != nil {
		s.logger.Error("load categories", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	preselected := map[uint]bool{}
	if names := q["categories"]; len(names) > 0 {
		matched, err := s.categories.ResolveNames(ctx, names)
		if err == nil {
			for _, c := range matched {
				preselected[c.ID] = true
			}
		}
	}

	dueDate := ""
	if raw := q.Get("due_date"); raw != "" {
		if t, ok := parseDueDate(raw); ok {
			dueDate = t.Format("2006-01-02")
		}
	}

	s.render(w, "add_task.html", map[string]any{
		"User":        currentUser(r),
		"Categories":  categories,
		"Preselected": preselected,
		"Name":        q.Get("name"),
		"Description": q.Get("description"),
		"DueDate":     dueDate,
	})
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	input, ok := parseTaskInput(r.PostForm)
	if !ok {
		http.Error(w, "invalid due date", http.StatusBadRequest)
		return
	}

	if _, err := s.tasks.Create(r.Context(), currentUser(r), input); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("create task", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

func (s *Server) handleEditTaskForm(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseUintParam(r, "taskID")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	task, err := s.tasks.Get(r.Context(), taskID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	categories, err := s.categories.List(r.Context())
	if err != nil {
		s.logger.Error("load categories", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	selected := map[uint]bool{}
	for _, c := range task.Categories {
		selected[c.ID] = true
	}

	s.render(w, "add_task.html", map[string]any{
		"User":        currentUser(r),
		"EditMode":    true,
		"Task":        task,
		"Categories":  categories,
		"Preselected": selected,
		"Name":        task.Name,
		"Description": task.Description,
		"DueDate":     task.DueDate.Format("2006-01-02"),
	})
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseUintParam(r, "taskID")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	input, ok := parseTaskInput(r.PostForm)
	if !ok {
		http.Error(w, "invalid due date", http.StatusBadRequest)
		return
	}

	if _, err := s.tasks.Update(r.Context(), currentUser(r), taskID, input); err != nil {
		s.taskError(w, r, "edit task", err)
		return
	}
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseUintParam(r, "taskID")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := s.tasks.Delete(r.Context(), currentUser(r), taskID); err != nil {
		s.taskError(w, r, "delete task", err)
		return
	}
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseUintParam(r, "taskID")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	progress, err := strconv.Atoi(r.PostFormValue("progress"))
	if err != nil {
		http.Error(w, "invalid progress", http.StatusBadRequest)
		return
	}

	if _, err := s.tasks.UpdateProgress(r.Context(), currentUser(r), taskID, progress, time.Now()); err != nil {
		s.taskError(w, r, "update progress", err)
		return
	}
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

func (s *Server) handleArchiveTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseUintParam(r, "taskID")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := s.tasks.Archive(r.Context(), currentUser(r), taskID); err != nil {
		s.taskError(w, r, "archive task", err)
		return
	}
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

func (s *Server) handleRestoreTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseUintParam(r, "taskID")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := s.tasks.Restore(r.Context(), currentUser(r), taskID); err != nil {
		s.taskError(w, r, "restore task", err)
		return
	}
	http.Redirect(w, r, "/task_archive/", http.StatusSeeOther)
}

func (s *Server) handleTaskArchive(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	sets, err := s.filter.TasksFor(r.Context(), user, parseFilter(r.URL.Query()))
	if err != nil {
		s.logger.Error("load archive", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	categories, err := s.categories.List(r.Context())
	if err != nil {
		s.logger.Error("load categories", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "task_archive.html", map[string]any{
		"User":          user,
		"ArchivedTasks": sets.Archived,
		"Categories":    categories,
	})
}

// taskError maps workflow errors onto HTTP responses.
func (s *Server) taskError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.NotFound(w, r)
	case errors.Is(err, service.ErrNotAuthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error(op, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
