package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfaudit/pfaudit/internal/compliance"
	"github.com/pfaudit/pfaudit/internal/report"
	"github.com/pfaudit/pfaudit/internal/review"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Manage audited devices",
}

var deviceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a device",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		name, _ := cmd.Flags().GetString("name")
		hostname, _ := cmd.Flags().GetString("hostname")
		mgmt, _ := cmd.Flags().GetString("mgmt")
		sshUser, _ := cmd.Flags().GetString("ssh-user")
		notes, _ := cmd.Flags().GetString("notes")

		id, err := app.store.CreateDevice(cmd.Context(), &review.Device{
			Name:     name,
			Hostname: hostname,
			MgmtAddr: mgmt,
			SSHUser:  sshUser,
			Notes:    notes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("device %d created\n", id)
		return nil
	},
}

var deviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered devices",
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
		for _, d := range devices {
			overrides, err := app.store.Overrides(cmd.Context(), d.ID)
			if err != nil {
				return err
			}
			s := compliance.Summarize(app.catalog, overrides)
			fmt.Printf("%3d  %-24s %-20s %5.1f%%\n", d.ID, d.Name, d.Hostname, s.CompliancePct)
		}
		return nil
	},
}

var deviceShowCmd = &cobra.Command{
	Use:   "show <device-id>",
	Short: "Show a device's compliance state",
	Args:  cobra.ExactArgs(1),
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
		overrides, err := app.store.Overrides(cmd.Context(), id)
		if err != nil {
			return err
		}

		items := compliance.BuildView(app.catalog, overrides)
		summary := compliance.Summarize(app.catalog, overrides)
		fmt.Print(report.Summary(device, summary))
		fmt.Println()
		fmt.Print(report.ControlTable(items))
		return nil
	},
}

var deviceEditCmd = &cobra.Command{
	Use:   "edit <device-id>",
	Short: "Update a device's fields",
	Args:  cobra.ExactArgs(1),
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
		for flag, dst := range map[string]*string{
			"name":     &device.Name,
			"hostname": &device.Hostname,
			"mgmt":     &device.MgmtAddr,
			"ssh-user": &device.SSHUser,
			"notes":    &device.Notes,
		} {
			if cmd.Flags().Changed(flag) {
				*dst, _ = cmd.Flags().GetString(flag)
			}
		}

		if err := app.store.UpdateDevice(cmd.Context(), device); err != nil {
			return err
		}
		fmt.Printf("device %d updated\n", id)
		return nil
	},
}

var deviceRmCmd = &cobra.Command{
	Use:   "rm <device-id>",
	Short: "Remove a device and all its reviews",
	Args:  cobra.ExactArgs(1),
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

		if err := app.store.DeleteDevice(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("device %d removed\n", id)
		return nil
	},
}

func init() {
	deviceAddCmd.Flags().String("name", "", "display name (required)")
	deviceAddCmd.Flags().String("hostname", "", "device hostname")
	deviceAddCmd.Flags().String("mgmt", "", "management address for SSH audits")
	deviceAddCmd.Flags().String("ssh-user", "", "SSH user for audits")
	deviceAddCmd.Flags().String("notes", "", "free-form notes")
	deviceAddCmd.MarkFlagRequired("name")

	deviceEditCmd.Flags().String("name", "", "display name")
	deviceEditCmd.Flags().String("hostname", "", "device hostname")
	deviceEditCmd.Flags().String("mgmt", "", "management address for SSH audits")
	deviceEditCmd.Flags().String("ssh-user", "", "SSH user for audits")
	deviceEditCmd.Flags().String("notes", "", "free-form notes")

	deviceCmd.AddCommand(deviceAddCmd, deviceListCmd, deviceShowCmd, deviceEditCmd, deviceRmCmd)
	rootCmd.AddCommand(deviceCmd)
}
