package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-agent/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "leads-agent",
	Short: "Inbound lead triage and research agent",
	Long:  "Watches the leads channel for HubSpot form notifications, triages each lead, researches pursued ones within a search budget, and posts the verdict back to the thread.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
