package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "todoapp",
	Short: "Multi-user to-do list service",
	Long: `todoapp serves the shared to-do list web application and runs its
scheduled notification jobs.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendTaskRemindersCmd)
	rootCmd.AddCommand(sendDueTaskNotificationsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
