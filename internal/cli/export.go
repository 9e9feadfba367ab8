package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfaudit/pfaudit/internal/compliance"
	"github.com/pfaudit/pfaudit/internal/export"
	"github.com/pfaudit/pfaudit/internal/review"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export compliance reports",
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv <device-id>",
	Short: "Export a device's compliance view as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, args[0], "csv")
	},
}

var exportPDFCmd = &cobra.Command{
	Use:   "pdf <device-id>",
	Short: "Export a device's compliance report as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, args[0], "pdf")
	},
}

func runExport(cmd *cobra.Command, idArg, format string) error {
	id, err := parseDeviceID(idArg)
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
	overrides, err := app.store.Overrides(cmd.Context(), id)
	if err != nil {
		return err
	}
	items := compliance.BuildView(app.catalog, overrides)

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		if err := os.MkdirAll(app.cfg.Export.Dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
		outPath = filepath.Join(app.cfg.Export.Dir, export.Filename(device.Name, format, time.Now()))
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	if err := writeExport(f, format, device, items, compliance.Summarize(app.catalog, overrides)); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func writeExport(f *os.File, format string, device *review.Device, items []compliance.EffectiveItem, summary compliance.Summary) error {
	switch format {
	case "csv":
		return export.WriteCSV(f, device, items)
	case "pdf":
		return export.WritePDF(f, device, items, summary, time.Now())
	}
	return fmt.Errorf("unknown export format %q", format)
}

func init() {
	for _, c := range []*cobra.Command{exportCSVCmd, exportPDFCmd} {
		c.Flags().String("out", "", "output file (default: export dir with timestamped name)")
		exportCmd.AddCommand(c)
	}
	rootCmd.AddCommand(exportCmd)
}
