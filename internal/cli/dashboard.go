package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfaudit/pfaudit/internal/compliance"
	"github.com/pfaudit/pfaudit/internal/report"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the compliance summary for every device",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		devices, err := app.store.ListDevices(cmd.Context())
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("no devices registered")
			return nil
		}

		for i := range devices {
			overrides, err := app.store.Overrides(cmd.Context(), devices[i].ID)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(report.Summary(&devices[i], compliance.Summarize(app.catalog, overrides)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
