// Package commands implements the notifyy command line.
package commands

import (
	"github.com/spf13/cobra"

	"notifyy/internal/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

// rootCmd runs the desktop helper when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "notifyy",
	Short: "Notifyy - serve the Notifyy web app from your desktop",
	Long: `Notifyy serves its bundled web app on http://localhost and keeps a small
control panel and tray icon around to open it, toggle launch at login and exit.

Port 8000 is tried first; if it is taken the next free port is used.

Examples:
  # Start with the control panel visible
  notifyy --show

  # Use another asset directory and more verbose logs
  notifyy --web-dir ./web --log-level debug --console

  # Environment variables override the config file
  NOTIFYY_PORT=9000 notifyy`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: notifyy.yaml beside the executable)")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(autostartCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
