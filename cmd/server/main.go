package main

import (
	"os"

	"github.com/spf13/cobra"

	"restaurant_pos_backend/internal/config"
	"restaurant_pos_backend/pkg/utils"
)

var rootCmd = &cobra.Command{
	Use:           "pos-server",
	Short:         "Restaurant POS order and ingredient inventory backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig reads configuration and initializes the global logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL)
	return cfg, nil
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		utils.LogError(err, "Command failed")
		os.Exit(1)
	}
}
