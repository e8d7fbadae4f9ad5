package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"restaurant_pos_backend/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the embedded schema migrations",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(database.Up), string(database.Down)},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := database.Up
		if len(args) == 1 {
			dir = database.Direction(args[0])
		}
		if dir != database.Up && dir != database.Down {
			return fmt.Errorf("unknown direction %q: use up or down", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return database.RunMigrations(cfg.DB, dir)
	},
}
