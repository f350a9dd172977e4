package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"todoapp/internal/service"
)

// handleShareTaskForm shows the candidate picker plus the share link
// for the task.
func (s *Server) handleShareTaskForm(w http.ResponseWriter, r *http.Request) {
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

	candidates, err := s.collab.EligibleCandidates(r.Context(), currentUser(r), task)
	if err != nil {
		s.logger.Error("load candidates", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "share_task.html", map[string]any{
		"User":       currentUser(r),
		"Task":       task,
		"Candidates": candidates,
		"ShareURL":   fmt.Sprintf("%s/shared_task/%d", s.cfg.BaseURL, task.ID),
	})
}

func (s *Server) handleShareTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseUintParam(r, "taskID")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	candidateID, err := strconv.ParseUint(r.PostFormValue("to_user"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user", http.StatusBadRequest)
		return
	}

	_, err = s.collab.ShareTask(r.Context(), currentUser(r), taskID, uint(candidateID))
	switch {
	case err == nil:
		http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
	case errors.Is(err, service.ErrRequestAlreadySent):
		// Matches the long-standing behavior of answering the form
		// post with a bare acknowledgment.
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Request was already sent")
	case errors.Is(err, service.ErrNotEligible):
		http.Error(w, "user is not eligible for this task", http.StatusBadRequest)
	default:
		s.taskError(w, r, "share task", err)
	}
}

// handleAcceptTask resolves a pending request: accept adds the
// addressee to the task, decline just drops the request.
func (s *Server) handleAcceptTask(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseUintParam(r, "requestID")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch {
	case r.PostForm.Has("accept_request"):
		err = s.collab.Accept(r.Context(), currentUser(r), requestID)
	case r.PostForm.Has("decline_request"):
		err = s.collab.Decline(r.Context(), currentUser(r), requestID)
	default:
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.taskError(w, r, "resolve collab request", err)
		return
	}
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

// handleSharedTaskView is the public landing page for a share link.
// Signed-in visitors who are eligible get an accept button.
func (s *Server) handleSharedTaskView(w http.ResponseWriter, r *http.Request) {
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

	user := currentUser(r)
	canAccept := false
	if user != nil {
		canAccept, err = s.collab.CanAcceptByLink(r.Context(), user, task)
		if err != nil {
			s.logger.Error("check link eligibility", "err", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	s.render(w, "shared_task_view.html", map[string]any{
		"User":       user,
		"Task":       task,
		"ShowButton": canAccept,
	})
}

// handleAcceptTaskLink joins the visitor to the task via the share
// link. Ineligible visitors are sent back to the landing page with no
// effect.
func (s *Server) handleAcceptTaskLink(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseUintParam(r, "taskID")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = s.collab.AcceptByLink(r.Context(), currentUser(r), taskID)
	switch {
	case err == nil:
		http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
	case errors.Is(err, service.ErrNotEligible):
		http.Redirect(w, r, fmt.Sprintf("/shared_task/%d", taskID), http.StatusSeeOther)
	default:
		s.taskError(w, r, "accept by link", err)
	}
}

func (s *Server) handleExitTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseUintParam(r, "taskID")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := s.collab.Exit(r.Context(), currentUser(r), taskID); err != nil {
		s.taskError(w, r, "exit task", err)
		return
	}
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}
