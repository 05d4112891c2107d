package main

import (
	"github.com/spf13/cobra"

	"duopet-backend/config"
	"duopet-backend/jobs"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply, roll back or inspect the database schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}
		if err := bootstrap(); err != nil {
			return err
		}
		if err := config.InitDB(); err != nil {
			return err
		}
		defer config.CloseDB()

		return config.Migrate(cmd.Context(), config.DB, direction)
	},
}

var releaseCmd = &cobra.Command{
	Use:   "release-suspensions",
	Short: "Lift every expired suspension once and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := bootstrap(); err != nil {
			return err
		}
		if err := config.InitDB(); err != nil {
			return err
		}
		defer config.CloseDB()

		n, err := jobs.NewSuspensionJob(config.DB, config.Log.WithField("job", "suspension"), nil).Run(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Printf("released %d suspension(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, releaseCmd)
}
