// Package review persists devices and their per-control review state.
//
// Overrides are keyed by (device id, catalog ordinal). The ordinal key
// matches the historical database layout; it means stored reviews are only
// meaningful against the catalog they were written under, and a reordered
// catalog invalidates them.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pfaudit/pfaudit/internal/catalog"
	"github.com/pfaudit/pfaudit/internal/compliance"
)

// ErrNotFound is returned when a device id does not exist.
var ErrNotFound = errors.New("device not found")

// Device is a managed appliance under review. SSH credentials are never
// stored; MgmtAddr and SSHUser only reference out-of-band key-based access.
type Device struct {
	ID       int64
	Name     string
	Hostname string
	Notes    string
	MgmtAddr string
	SSHUser  string
}

// Validate rejects devices that must not reach the engine or the store.
func (d *Device) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("device name is required")
	}
	return nil
}

// Store defines the persistence interface for devices and review overrides.
// The primary implementation uses SQLite (see sqlite.go).
type Store interface {
	CreateDevice(ctx context.Context, d *Device) (int64, error)
	GetDevice(ctx context.Context, id int64) (*Device, error)
	ListDevices(ctx context.Context) ([]Device, error)
	UpdateDevice(ctx context.Context, d *Device) error
	// DeleteDevice removes the device and cascades to all its overrides.
	DeleteDevice(ctx context.Context, id int64) error

	// Overrides returns the device's review overrides keyed by catalog
	// ordinal.
	Overrides(ctx context.Context, deviceID int64) (map[int]compliance.Override, error)
	// SaveOverride upserts one review; last write wins on the
	// (deviceID, ordinal) pair.
	SaveOverride(ctx context.Context, deviceID int64, ordinal int, status catalog.Verdict, note string) error

	Close() error
}
