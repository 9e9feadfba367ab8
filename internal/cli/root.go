// Package cli wires the pfaudit command tree: device management, audit runs,
// manual reviews, and report exports.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfaudit/pfaudit/internal/audit"
	"github.com/pfaudit/pfaudit/internal/catalog"
	"github.com/pfaudit/pfaudit/internal/config"
	"github.com/pfaudit/pfaudit/internal/review"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pfaudit",
	Short: "Compliance auditing for pfSense appliances",
	Long: `pfaudit evaluates pfSense firewalls against a security benchmark:
it pulls the device configuration over SSH, runs the automated checks,
tracks per-device manual reviews, and exports compliance reports.`,
	Version:      Version,
	SilenceUsage: true,
}

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Execute adds all child commands to the root command and runs it.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "pfaudit.yaml", "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log connection and audit progress")
}

// app holds the shared wiring every subcommand needs.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   review.Store
	catalog *catalog.Catalog
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	var logOut io.Writer = os.Stderr
	if !verbose {
		logOut = io.Discard
	}
	logger := log.New(logOut, "pfaudit: ", log.LstdFlags)

	cat, err := catalog.Load(logger, cfg.Catalog.CKLPath, cfg.Catalog.JSONPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	store, err := review.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &app{cfg: cfg, logger: logger, store: store, catalog: cat}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Printf("close store: %v", err)
	}
}

func (a *app) runner() *audit.Runner {
	return audit.NewRunner(a.catalog, a.store, audit.SSHConfig{
		KeyFile:                   a.cfg.SSH.KeyFile,
		KnownHostsFile:            a.cfg.SSH.KnownHostsFile,
		InsecureSkipHostKeyVerify: a.cfg.SSH.InsecureSkipHostKeyVerify,
		Timeout:                   time.Duration(a.cfg.SSH.Timeout),
		ConfigPath:                a.cfg.SSH.ConfigPath,
	}, a.logger)
}

// parseDeviceID converts a positional argument into a device id.
func parseDeviceID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid device id %q", arg)
	}
	return id, nil
}
