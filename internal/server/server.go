package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"todoapp/internal/auth"
	"todoapp/internal/config"
	"todoapp/internal/repository"
	"todoapp/internal/service"
)

// Server wires the HTTP surface: authentication pages, task CRUD, the
// sharing workflow, archive, calendar and push subscription endpoints.
type Server struct {
	cfg    config.Config
	logger *slog.Logger

	sessions *auth.Manager

	userRepo *repository.UserRepository
	pushRepo *repository.PushRepository

	tasks       *service.TaskService
	collab      *service.CollabService
	filter      *service.FilterService
	categories  *service.CategoryService
	quotes      *service.QuoteService
	holidays    *service.HolidayService
	suggestions *service.SuggestionService
}

func New(
	cfg config.Config,
	logger *slog.Logger,
	sessions *auth.Manager,
	userRepo *repository.UserRepository,
	pushRepo *repository.PushRepository,
	tasks *service.TaskService,
	collab *service.CollabService,
	filter *service.FilterService,
	categories *service.CategoryService,
	quotes *service.QuoteService,
	holidays *service.HolidayService,
	suggestions *service.SuggestionService,
) *Server {
	return &Server{
		cfg:         cfg,
		logger:      logger,
		sessions:    sessions,
		userRepo:    userRepo,
		pushRepo:    pushRepo,
		tasks:       tasks,
		collab:      collab,
		filter:      filter,
		categories:  categories,
		quotes:      quotes,
		holidays:    holidays,
		suggestions: suggestions,
	}
}

// Routes builds the router. Pages that need a signed-in user sit behind
// requireUser; the shared-task link view is public so invitees can see
// what they were sent.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.withUser)

	r.Get("/", s.handleIndex)
	r.Post("/", s.handleLogin)
	r.Get("/register/", s.handleRegisterForm)
	r.Post("/register/", s.handleRegister)
	r.Post("/logout/", s.handleLogout)
	r.Get("/about/", s.handleAbout)

	r.Get("/shared_task/{taskID}", s.handleSharedTaskView)
	r.Get("/webpush-sw.js", s.handleServiceWorker)
	r.Get("/service-worker.js", s.handleServiceWorker)
	r.Post("/save-subscription/", s.handleSaveSubscription)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/tasks/", s.handleTaskView)
		r.Get("/tasks/add/", s.handleAddTaskForm)
		r.Post("/tasks/add/", s.handleAddTask)
		r.Get("/tasks/edit/{taskID}/", s.handleEditTaskForm)
		r.Post("/tasks/edit/{taskID}/", s.handleEditTask)
		r.Post("/tasks/delete/{taskID}/", s.handleDeleteTask)
		r.Post("/tasks/progress/{taskID}/", s.handleUpdateProgress)
		r.Post("/tasks/archive/{taskID}/", s.handleArchiveTask)
		r.Post("/tasks/restore/{taskID}/", s.handleRestoreTask)
		r.Get("/task_archive/", s.handleTaskArchive)

		r.Get("/tasks/share/{taskID}", s.handleShareTaskForm)
		r.Post("/tasks/share/{taskID}", s.handleShareTask)
		r.Post("/tasks/accept/{requestID}/", s.handleAcceptTask)
		r.Post("/shared_task/accept_request_link/{taskID}", s.handleAcceptTaskLink)
		r.Post("/tasks/exit/{taskID}/", s.handleExitTask)

		r.Get("/home/", s.handleCalendar)
		r.Get("/profile_settings/", s.handleProfileSettings)
		r.Get("/edit_profile/", s.handleEditProfileForm)
		r.Post("/edit_profile/", s.handleEditProfile)
	})

	return r
}
