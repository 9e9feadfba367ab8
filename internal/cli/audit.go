package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfaudit/pfaudit/internal/compliance"
	"github.com/pfaudit/pfaudit/internal/report"
)

var auditCmd = &cobra.Command{
	Use:   "audit <device-id>",
	Short: "Run the automated checks against a device",
	Long: `Connects to the device over SSH, fetches its configuration export,
runs every automated check, and records the verdicts as reviews. With
--local, evaluates a config.xml file on disk instead of connecting.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseDeviceID(args[0])
		if err != nil {
			return err
		}
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		device, err := app.store.GetDevice(cmd.Context(), id)
		if err != nil {
			return err
		}

		runner := app.runner()
		localPath, _ := cmd.Flags().GetString("local")
		if localPath != "" {
			data, err := os.ReadFile(localPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", localPath, err)
			}
			err = runner.RunLocal(cmd.Context(), device, data)
			if err != nil {
				return err
			}
		} else {
			// A failed run still persists Not Reviewed verdicts; report the
			// cause but fall through to print the resulting state.
			if err := runner.RunSSH(cmd.Context(), device); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "audit failed: %v\n", err)
			}
		}

		overrides, err := app.store.Overrides(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Print(report.Summary(device, compliance.Summarize(app.catalog, overrides)))
		return nil
	},
}

func init() {
	auditCmd.Flags().String("local", "", "audit a local config.xml instead of connecting")
	rootCmd.AddCommand(auditCmd)
}
