package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"todoapp/internal/notify"
	"todoapp/internal/repository"
)

// EmailWindow is how far ahead the email job looks for due tasks.
const EmailWindow = 24 * time.Hour

// ReminderService runs the two notification batch jobs. Both jobs
// isolate per-recipient failures: one bad subscription or mailbox never
// aborts the rest of the batch. There is no catch-up for missed windows.
type ReminderService struct {
	taskRepo *repository.TaskRepository
	pushRepo *repository.PushRepository
	push     notify.PushSender
	email    notify.EmailSender
	limiter  *rate.Limiter
	logger   *slog.Logger
}

func NewReminderService(
	taskRepo *repository.TaskRepository,
	pushRepo *repository.PushRepository,
	push notify.PushSender,
	email notify.EmailSender,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		taskRepo: taskRepo,
		pushRepo: pushRepo,
		push:     push,
		email:    email,
		// Push endpoints throttle bursty senders; 20/s is well under
		// typical service limits.
		limiter: rate.NewLimiter(rate.Limit(20), 20),
		logger:  logger,
	}
}

// SendPushReminders pushes one reminder per distinct recipient of every
// task whose notification window [due - lead, due] contains now.
// Returns the number of notifications delivered.
func (s *ReminderService) SendPushReminders(ctx context.Context, now time.Time) (int, error) {
	tasks, err := s.taskRepo.ListNotifiable(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list notifiable tasks: %w", err)
	}

	sent := 0
	for i := range tasks {
		task := &tasks[i]
		if !task.InPushWindow(now) {
			continue
		}

		payload := notify.PushPayload{
			Head: "Task Reminder!",
			Body: fmt.Sprintf("'%s' is coming up at %s", task.Name, task.DueDate.Format("03:04 PM")),
			URL:  "/task_view/",
		}

		for _, user := range task.Recipients() {
			sub, err := s.pushRepo.FindByUser(ctx, user.ID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					s.logger.Error("load push subscription", "user", user.Username, "err", err)
				}
				continue
			}

			if err := s.limiter.Wait(ctx); err != nil {
				return sent, err
			}
			if err := s.push.Send(ctx, sub, payload); err != nil {
				s.logger.Error("push reminder", "user", user.Username, "task", task.Name, "err", err)
				continue
			}
			sent++
			s.logger.Info("push reminder sent", "user", user.Username, "task", task.Name)
		}
	}
	return sent, nil
}

// SendEmailReminders emails every distinct recipient with an address for
// email-channel tasks due within the next 24 hours. Returns the number
// of emails delivered.
func (s *ReminderService) SendEmailReminders(ctx context.Context, now time.Time) (int, error) {
	tasks, err := s.taskRepo.ListEmailNotifiable(ctx, now, now.Add(EmailWindow))
	if err != nil {
		return 0, fmt.Errorf("list email tasks: %w", err)
	}

	sent := 0
	for i := range tasks {
		task := &tasks[i]
		subject := fmt.Sprintf("Reminder: Task '%s' is due soon!", task.Name)
		dueStr := task.DueDate.Format("2006-01-02 15:04")

		for _, user := range task.Recipients() {
			if user.Email == "" {
				continue
			}
			body := fmt.Sprintf(
				"Hi %s,\n\nYour task %q is due on %s.\n\nDon't forget to complete it.",
				user.Username, task.Name, dueStr,
			)
			if err := s.email.Send(ctx, user.Email, subject, body); err != nil {
				s.logger.Error("email reminder", "to", user.Email, "task", task.Name, "err", err)
				continue
			}
			sent++
			s.logger.Info("email reminder sent", "to", user.Email, "task", task.Name)
		}
	}
	return sent, nil
}
