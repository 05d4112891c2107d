package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"duopet-backend/config"
)

var rootCmd = &cobra.Command{
	Use:           "duopet",
	Short:         "DuoPet authentication and session backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		config.Log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// bootstrap loads configuration and switches logging to its configured sinks.
func bootstrap() error {
	if err := config.LoadConfig(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	config.InitLogger()
	return nil
}
