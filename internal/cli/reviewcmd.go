package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfaudit/pfaudit/internal/catalog"
)

var reviewCmd = &cobra.Command{
	Use:   "review <device-id> <control-id>",
	Short: "Record a manual review for one control",
	Long: `Sets the review status and note for one control on one device.
The status must be one of: Compliant, "Non Compliant", "Non Applicable",
"Not Reviewed". A later automated audit may overwrite manual reviews for
controls it covers.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseDeviceID(args[0])
		if err != nil {
			return err
		}
		controlID := args[1]

		statusArg, _ := cmd.Flags().GetString("status")
		note, _ := cmd.Flags().GetString("note")
		status := catalog.Verdict(statusArg)
		if !status.Valid() {
			return fmt.Errorf("invalid status %q", statusArg)
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if _, err := app.store.GetDevice(cmd.Context(), id); err != nil {
			return err
		}
		ordinal, ok := app.catalog.OrdinalOf(controlID)
		if !ok {
			return fmt.Errorf("unknown control %q", controlID)
		}
		if err := app.store.SaveOverride(cmd.Context(), id, ordinal, status, note); err != nil {
			return err
		}
		fmt.Printf("%s recorded as %s\n", controlID, status)
		return nil
	},
}

func init() {
	reviewCmd.Flags().String("status", "", "review status (required)")
	reviewCmd.Flags().String("note", "", "review note")
	reviewCmd.MarkFlagRequired("status")
	rootCmd.AddCommand(reviewCmd)
}
