package main

import (
	"fmt"
	"log/slog"
	"os"

	"gorm.io/gorm"

	"todoapp/internal/auth"
	"todoapp/internal/config"
	"todoapp/internal/notify"
	"todoapp/internal/repository"
	"todoapp/internal/server"
	"todoapp/internal/service"
)

// app holds the wired-up service graph shared by every command.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	db     *gorm.DB

	userRepo *repository.UserRepository
	pushRepo *repository.PushRepository

	tasks       *service.TaskService
	collab      *service.CollabService
	filter      *service.FilterService
	categories  *service.CategoryService
	reminders   *service.ReminderService
	quotes      *service.QuoteService
	holidays    *service.HolidayService
	suggestions *service.SuggestionService

	sessions *auth.Manager
}

// newApp loads config, opens the database and builds the services.
// The returned closer shuts the database connection.
func newApp() (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	closer := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	collabRepo := repository.NewCollabRepository(db)
	pushRepo := repository.NewPushRepository(db)

	pushSender := notify.NewWebPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
	emailSender := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail)

	a := &app{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		userRepo:    userRepo,
		pushRepo:    pushRepo,
		tasks:       service.NewTaskService(taskRepo, categoryRepo),
		collab:      service.NewCollabService(taskRepo, userRepo, collabRepo),
		filter:      service.NewFilterService(taskRepo),
		categories:  service.NewCategoryService(categoryRepo),
		reminders:   service.NewReminderService(taskRepo, pushRepo, pushSender, emailSender, logger),
		quotes:      service.NewQuoteService(cfg.QuoteURL),
		holidays:    service.NewHolidayService(),
		suggestions: service.NewSuggestionService(cfg.AnthropicAPIKey, cfg.AnthropicModel, taskRepo),
		sessions:    auth.NewManager(cfg.JWTSecret, cfg.SessionTTL),
	}
	return a, closer, nil
}

func (a *app) server() *server.Server {
	return server.New(
		a.cfg,
		a.logger,
		a.sessions,
		a.userRepo,
		a.pushRepo,
		a.tasks,
		a.collab,
		a.filter,
		a.categories,
		a.quotes,
		a.holidays,
		a.suggestions,
	)
}
