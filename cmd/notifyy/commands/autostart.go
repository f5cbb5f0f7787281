package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dryRun bool

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Inspect or change launch at login",
	Long: `Inspect or change whether Notifyy starts when you log in.

The entry is a desktop file on Linux, a LaunchAgent on macOS and a value
under HKCU\Software\Microsoft\Windows\CurrentVersion\Run on Windows.

Examples:
  notifyy autostart status
  notifyy autostart enable
  notifyy autostart disable --dry-run`,
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether launch at login is enabled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = env.logger.Sync() }()

		registered := env.registrar(dryRun).IsEnabled()
		stored := env.preferenceStore().Load().StartupEnabled

		cmd.Printf("Launch at login: %s\n", onOff(registered))
		if stored != registered {
			cmd.Printf("Stored preference (%s) differs from the system entry\n", onOff(stored))
		}
		return nil
	},
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Start Notifyy at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAutostart(cmd, true)
	},
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop starting Notifyy at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAutostart(cmd, false)
	},
}

func init() {
	autostartCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "do not touch the system entry")

	autostartCmd.AddCommand(autostartStatusCmd)
	autostartCmd.AddCommand(autostartEnableCmd)
	autostartCmd.AddCommand(autostartDisableCmd)
}

func setAutostart(cmd *cobra.Command, enable bool) error {
	env, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = env.logger.Sync() }()

	registrar := env.registrar(dryRun)
	if enable {
		command := env.launchCommand(nil)
		if err := registrar.Enable(command); err != nil {
			return fmt.Errorf("failed to enable auto-startup: %w", err)
		}
		cmd.Printf("Launch at login enabled: %s\n", command)
	} else {
		if err := registrar.Disable(); err != nil {
			return fmt.Errorf("failed to disable auto-startup: %w", err)
		}
		cmd.Println("Launch at login disabled")
	}

	if dryRun {
		return nil
	}

	store := env.preferenceStore()
	rec := store.Load()
	rec.StartupEnabled = enable
	if !store.Save(rec) {
		cmd.PrintErrf("Warning: could not save preference to %s\n", store.Path())
	}
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
