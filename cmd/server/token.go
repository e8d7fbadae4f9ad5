package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"restaurant_pos_backend/internal/middleware"
	"restaurant_pos_backend/pkg/utils"
)

var (
	tokenStaffID  int64
	tokenRole     string
	tokenUsername string
)

// tokenCmd issues a bearer token for local testing. Login is handled outside this service.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a staff member",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenStaffID <= 0 {
			return fmt.Errorf("--staff-id must be a positive integer")
		}
		switch tokenRole {
		case middleware.RoleAdmin, middleware.RoleWaiter, middleware.RoleKitchen:
		default:
			return fmt.Errorf("--role must be one of %s, %s, %s", middleware.RoleAdmin, middleware.RoleWaiter, middleware.RoleKitchen)
		}
		if _, err := loadConfig(); err != nil {
			return err
		}

		username := tokenUsername
		if utils.IsEmpty(username) {
			username = "staff-" + utils.Int64ToStr(tokenStaffID)
		}
		token, err := utils.GenerateAccessToken(tokenStaffID, username, tokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenStaffID, "staff-id", 0, "Staff member id carried in the token")
	tokenCmd.Flags().StringVar(&tokenRole, "role", middleware.RoleWaiter, "Role: Admin, Waiter or Kitchen")
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "", "Display name (defaults to staff-<id>)")
}
