// Package audit orchestrates an automated check run against one device:
// connect, fetch the configuration export, evaluate every registered check,
// and persist the verdicts as review overrides.
package audit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pfaudit/pfaudit/internal/catalog"
	"github.com/pfaudit/pfaudit/internal/checks"
	"github.com/pfaudit/pfaudit/internal/confdoc"
	"github.com/pfaudit/pfaudit/internal/remote"
	"github.com/pfaudit/pfaudit/internal/review"
)

// DefaultConfigPath is where a pfSense appliance keeps its configuration.
const DefaultConfigPath = "/conf/config.xml"

// SSHConfig carries the connection defaults applied to every device audit.
type SSHConfig struct {
	KeyFile                   string
	KnownHostsFile            string
	InsecureSkipHostKeyVerify bool
	Timeout                   time.Duration
	// ConfigPath is the remote path of the configuration export. Defaults
	// to DefaultConfigPath.
	ConfigPath string
}

// Runner executes the automated check registry against devices and writes
// the results into the review store.
type Runner struct {
	Catalog *catalog.Catalog
	Store   review.Store
	SSH     SSHConfig
	Logger  *log.Logger

	// entries defaults to the full registry; tests substitute their own.
	entries []checks.Entry
	// dial defaults to remote.Dial; tests substitute a fake.
	dial func(remote.Options) (remote.Inspector, error)
}

// NewRunner builds a Runner over the full check registry.
func NewRunner(cat *catalog.Catalog, store review.Store, ssh SSHConfig, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Catalog: cat,
		Store:   store,
		SSH:     ssh,
		Logger:  logger,
		entries: checks.Registry(),
		dial: func(opts remote.Options) (remote.Inspector, error) {
			return remote.Dial(opts)
		},
	}
}

// RunSSH connects to the device, pulls its configuration export, runs every
// automated check, and saves the verdicts. If the connection, fetch, or parse
// fails, every registered control is marked Not Reviewed with the error as
// its note, and the error is returned.
func (r *Runner) RunSSH(ctx context.Context, device *review.Device) error {
	if device.MgmtAddr == "" {
		err := fmt.Errorf("device %q has no management address", device.Name)
		r.markAllUnreviewed(ctx, device.ID, err)
		return err
	}

	insp, err := r.dial(remote.Options{
		Host:                      device.MgmtAddr,
		User:                      device.SSHUser,
		KeyFile:                   r.SSH.KeyFile,
		KnownHostsFile:            r.SSH.KnownHostsFile,
		InsecureSkipHostKeyVerify: r.SSH.InsecureSkipHostKeyVerify,
		Timeout:                   r.SSH.Timeout,
		Logger:                    r.Logger,
	})
	if err != nil {
		err = fmt.Errorf("connect to %s: %w", device.MgmtAddr, err)
		r.markAllUnreviewed(ctx, device.ID, err)
		return err
	}
	defer insp.Close()

	configPath := r.SSH.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	raw, err := insp.ReadFile(configPath)
	if err == nil && raw == "" {
		err = fmt.Errorf("%s not found on device", configPath)
	}
	if err != nil {
		err = fmt.Errorf("fetch %s: %w", configPath, err)
		r.markAllUnreviewed(ctx, device.ID, err)
		return err
	}

	doc, err := confdoc.Parse([]byte(raw))
	if err != nil {
		err = fmt.Errorf("parse %s: %w", configPath, err)
		r.markAllUnreviewed(ctx, device.ID, err)
		return err
	}

	return r.evaluate(ctx, device, doc, insp)
}

// RunLocal evaluates the checks against an already-fetched configuration
// export. Checks that need a live SSH session report themselves Not Reviewed.
func (r *Runner) RunLocal(ctx context.Context, device *review.Device, configXML []byte) error {
	doc, err := confdoc.Parse(configXML)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return r.evaluate(ctx, device, doc, nil)
}

func (r *Runner) evaluate(ctx context.Context, device *review.Device, doc *confdoc.Document, insp remote.Inspector) error {
	results := checks.RunAll(r.entries, doc, insp)

	var saved, skipped int
	for _, res := range results {
		ordinal, ok := r.Catalog.OrdinalOf(res.ControlID)
		if !ok {
			r.Logger.Printf("check %s has no catalog entry, result dropped", res.ControlID)
			skipped++
			continue
		}
		if err := r.Store.SaveOverride(ctx, device.ID, ordinal, res.Status, res.Note); err != nil {
			return fmt.Errorf("save result for %s: %w", res.ControlID, err)
		}
		saved++
	}

	r.Logger.Printf("audit of %q complete: %d results saved, %d skipped", device.Name, saved, skipped)
	return nil
}

// markAllUnreviewed records a connection-level failure against every
// registered control so the report shows the run was attempted and why it
// produced nothing.
func (r *Runner) markAllUnreviewed(ctx context.Context, deviceID int64, cause error) {
	note := fmt.Sprintf("Auto-check error: %v", cause)
	for _, e := range r.entries {
		ordinal, ok := r.Catalog.OrdinalOf(e.ControlID)
		if !ok {
			continue
		}
		if err := r.Store.SaveOverride(ctx, deviceID, ordinal, catalog.NotReviewed, note); err != nil {
			r.Logger.Printf("record failure for %s: %v", e.ControlID, err)
		}
	}
}
