package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"todoapp/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web application",
	Long: `Starts the HTTP server. When REMINDER_INTERVAL is set, the push
reminder job runs in-process on that interval; EMAIL_REMINDER_TIME adds
a daily in-process email job. Otherwise schedule the
send-task-reminders and send-due-task-notifications commands
externally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeDB, err := newApp()
		if err != nil {
			return err
		}
		defer closeDB()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		httpServer := &http.Server{
			Addr:    app.cfg.HTTPAddr,
			Handler: app.server().Routes(),
		}

		var scheduler *service.SchedulerService
		if app.cfg.ReminderInterval > 0 || app.cfg.EmailReminderTime != "" {
			scheduler = service.NewSchedulerService(time.Local)
		}
		if app.cfg.ReminderInterval > 0 {
			if _, err := scheduler.ScheduleInterval(app.cfg.ReminderInterval, func() {
				jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()
				if _, err := app.reminders.SendPushReminders(jobCtx, time.Now()); err != nil {
					app.logger.Error("push reminder job", "err", err)
				}
			}); err != nil {
				return err
			}
		}
		if app.cfg.EmailReminderTime != "" {
			if _, err := scheduler.ScheduleDaily(app.cfg.EmailReminderTime, func() {
				jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()
				if _, err := app.reminders.SendEmailReminders(jobCtx, time.Now()); err != nil {
					app.logger.Error("email reminder job", "err", err)
				}
			}); err != nil {
				return err
			}
		}
		if scheduler != nil {
			scheduler.Start()
			defer scheduler.Stop()
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			app.logger.Info("listening", "addr", app.cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		app.logger.Info("shutdown complete")
		return nil
	},
}
