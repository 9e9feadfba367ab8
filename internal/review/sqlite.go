package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/pfaudit/pfaudit/internal/catalog"
	"github.com/pfaudit/pfaudit/internal/compliance"
)

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS devices (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		name      TEXT NOT NULL,
		hostname  TEXT NOT NULL DEFAULT '',
		notes     TEXT NOT NULL DEFAULT '',
		mgmt_addr TEXT NOT NULL DEFAULT '',
		ssh_user  TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS reviews (
		device_id  INTEGER NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		item_index INTEGER NOT NULL,
		status     TEXT NOT NULL,
		note       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (device_id, item_index)
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_device ON reviews(device_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateDevice inserts a new device and returns its id.
func (s *SQLiteStore) CreateDevice(ctx context.Context, d *Device) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO devices (name, hostname, notes, mgmt_addr, ssh_user)
		 VALUES (?, ?, ?, ?, ?)`,
		d.Name, d.Hostname, d.Notes, d.MgmtAddr, d.SSHUser)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetDevice retrieves a device by id.
func (s *SQLiteStore) GetDevice(ctx context.Context, id int64) (*Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, hostname, notes, mgmt_addr, ssh_user FROM devices WHERE id = ?`, id)

	var d Device
	err := row.Scan(&d.ID, &d.Name, &d.Hostname, &d.Notes, &d.MgmtAddr, &d.SSHUser)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("device %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDevices returns all devices ordered by id.
func (s *SQLiteStore) ListDevices(ctx context.Context) ([]Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, hostname, notes, mgmt_addr, ssh_user FROM devices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.Name, &d.Hostname, &d.Notes, &d.MgmtAddr, &d.SSHUser); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// UpdateDevice rewrites a device's fields.
func (s *SQLiteStore) UpdateDevice(ctx context.Context, d *Device) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE devices SET name = ?, hostname = ?, notes = ?, mgmt_addr = ?, ssh_user = ?
		 WHERE id = ?`,
		d.Name, d.Hostname, d.Notes, d.MgmtAddr, d.SSHUser, d.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("device %d: %w", d.ID, ErrNotFound)
	}
	return nil
}

// DeleteDevice removes the device; its reviews go with it via the cascade.
func (s *SQLiteStore) DeleteDevice(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("device %d: %w", id, ErrNotFound)
	}
	return nil
}

// Overrides returns the device's review overrides keyed by catalog ordinal.
// Stored statuses are normalized through ParseVerdict so a corrupted row can
// never yield an undefined verdict.
func (s *SQLiteStore) Overrides(ctx context.Context, deviceID int64) (map[int]compliance.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT item_index, status, note FROM reviews WHERE device_id = ?`, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make(map[int]compliance.Override)
	for rows.Next() {
		var idx int
		var status, note string
		if err := rows.Scan(&idx, &status, &note); err != nil {
			return nil, err
		}
		overrides[idx] = compliance.Override{
			Status: catalog.ParseVerdict(status),
			Note:   note,
		}
	}
	return overrides, rows.Err()
}

// SaveOverride upserts one review row; the upsert is atomic on the
// (device_id, item_index) pair so racing writers resolve to last-write-wins.
func (s *SQLiteStore) SaveOverride(ctx context.Context, deviceID int64, ordinal int, status catalog.Verdict, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (device_id, item_index, status, note)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(device_id, item_index) DO UPDATE SET
		   status = excluded.status,
		   note   = excluded.note`,
		deviceID, ordinal, string(status), note)
	return err
}
