package main

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// The two batch commands are meant to be invoked from cron with no
// arguments. Overlapping runs are not guarded against; keep the cron
// cadence above the expected run time.

var sendDueTaskNotificationsCmd = &cobra.Command{
	Use:   "send-due-task-notifications",
	Short: "Send push notifications for upcoming due tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeDB, err := newApp()
		if err != nil {
			return err
		}
		defer closeDB()

		sent, err := app.reminders.SendPushReminders(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		color.Green("%d push notification(s) sent.", sent)
		return nil
	},
}

var sendTaskRemindersCmd = &cobra.Command{
	Use:   "send-task-reminders",
	Short: "Send email reminders for tasks due within 24 hours",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeDB, err := newApp()
		if err != nil {
			return err
		}
		defer closeDB()

		sent, err := app.reminders.SendEmailReminders(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		color.Green("%d task reminder(s) sent.", sent)
		return nil
	},
}
