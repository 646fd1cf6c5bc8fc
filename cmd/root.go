package cmd

import (
	"fmt"

	"github.com/abhisek/adaptlearn/internal/config"
	"github.com/abhisek/adaptlearn/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "adaptlearn",
	Short: "Adaptive learning in the terminal",
	Long:  "adaptlearn: a terminal client for the adaptive-learning service. Pick a domain, take the placement assessment, then learn topic by topic.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/adaptlearn/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ADAPTLEARN_DB env var)")
	rootCmd.PersistentFlags().String("api-url", "", "Backend base URL (overrides api.base_url)")
	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(domainsCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(apilogCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config and applies --api-url.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.API.BaseURL = u
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then db.path from the config, then ADAPTLEARN_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	p, err := store.DefaultDBPath()
	if err != nil {
		return "", fmt.Errorf("default database path: %w", err)
	}
	return p, nil
}
