package main

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "jobrunnerd",
	Short: "SRCF control plane job runner",
	Long: `jobrunnerd dispatches jobs queued by the SRCF web control panel:
member and society account provisioning, password resets, mailing lists,
vhosts, SQL databases, and account deletion.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config YAML (overlaid with SRCF_ environment variables)")
}
