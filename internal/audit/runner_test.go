package audit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/pfaudit/pfaudit/internal/catalog"
	"github.com/pfaudit/pfaudit/internal/checks"
	"github.com/pfaudit/pfaudit/internal/compliance"
	"github.com/pfaudit/pfaudit/internal/remote"
	"github.com/pfaudit/pfaudit/internal/review"
)

type savedOverride struct {
	ordinal int
	status  catalog.Verdict
	note    string
}

// memStore records SaveOverride calls; the device CRUD half is unused by the
// runner and fails loudly if reached.
type memStore struct {
	saves   []savedOverride
	saveErr error
}

func (m *memStore) CreateDevice(context.Context, *review.Device) (int64, error) {
	return 0, errors.New("not implemented")
}
func (m *memStore) GetDevice(context.Context, int64) (*review.Device, error) {
	return nil, errors.New("not implemented")
}
func (m *memStore) ListDevices(context.Context) ([]review.Device, error) {
	return nil, errors.New("not implemented")
}
func (m *memStore) UpdateDevice(context.Context, *review.Device) error {
	return errors.New("not implemented")
}
func (m *memStore) DeleteDevice(context.Context, int64) error {
	return errors.New("not implemented")
}
func (m *memStore) Overrides(context.Context, int64) (map[int]compliance.Override, error) {
	return nil, errors.New("not implemented")
}
func (m *memStore) SaveOverride(_ context.Context, _ int64, ordinal int, status catalog.Verdict, note string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves = append(m.saves, savedOverride{ordinal, status, note})
	return nil
}
func (m *memStore) Close() error { return nil }

type stubInspector struct {
	files  map[string]string
	closed bool
}

func (s *stubInspector) ReadFile(path string) (string, error) {
	return s.files[path], nil
}
func (s *stubInspector) FileExists(path string) (bool, error) {
	_, ok := s.files[path]
	return ok, nil
}
func (s *stubInspector) Close() error {
	s.closed = true
	return nil
}

// registryCatalog builds a catalog with one control per registry entry so
// every check result has an ordinal to land on.
func registryCatalog() *catalog.Catalog {
	var items []catalog.ControlItem
	seen := make(map[string]bool)
	for _, e := range checks.Registry() {
		if seen[e.ControlID] {
			continue
		}
		seen[e.ControlID] = true
		items = append(items, catalog.ControlItem{
			Section:       "Test",
			ControlID:     e.ControlID,
			Title:         "control " + e.ControlID,
			DefaultStatus: catalog.NotReviewed,
		})
	}
	return catalog.New(items)
}

func testRunner(t *testing.T, store review.Store, dial func(remote.Options) (remote.Inspector, error)) *Runner {
	t.Helper()
	r := NewRunner(registryCatalog(), store, SSHConfig{}, log.New(&strings.Builder{}, "", 0))
	if dial != nil {
		r.dial = dial
	}
	return r
}

const minimalConfig = `<pfsense><system><hostname>fw01</hostname></system></pfsense>`

func TestRunSSHSavesEveryResult(t *testing.T) {
	store := &memStore{}
	insp := &stubInspector{files: map[string]string{DefaultConfigPath: minimalConfig}}
	r := testRunner(t, store, func(remote.Options) (remote.Inspector, error) { return insp, nil })

	dev := &review.Device{ID: 5, Name: "fw01", MgmtAddr: "192.0.2.1", SSHUser: "audit"}
	if err := r.RunSSH(context.Background(), dev); err != nil {
		t.Fatalf("RunSSH: %v", err)
	}

	if len(store.saves) != len(checks.Registry()) {
		t.Errorf("saved %d results, want %d", len(store.saves), len(checks.Registry()))
	}
	if !insp.closed {
		t.Error("inspector not closed after run")
	}
	for _, s := range store.saves {
		if !s.status.Valid() {
			t.Errorf("ordinal %d: invalid status %q", s.ordinal, s.status)
		}
	}
}

func TestRunSSHDialFailureMarksAllUnreviewed(t *testing.T) {
	store := &memStore{}
	r := testRunner(t, store, func(remote.Options) (remote.Inspector, error) {
		return nil, errors.New("connection refused")
	})

	dev := &review.Device{ID: 1, Name: "fw01", MgmtAddr: "192.0.2.1", SSHUser: "audit"}
	err := r.RunSSH(context.Background(), dev)
	if err == nil {
		t.Fatal("expected dial error")
	}

	if len(store.saves) != len(checks.Registry()) {
		t.Fatalf("saved %d failure rows, want %d", len(store.saves), len(checks.Registry()))
	}
	for _, s := range store.saves {
		if s.status != catalog.NotReviewed {
			t.Errorf("ordinal %d: status %q, want Not Reviewed", s.ordinal, s.status)
		}
		if !strings.HasPrefix(s.note, "Auto-check error: ") {
			t.Errorf("ordinal %d: note %q lacks error prefix", s.ordinal, s.note)
		}
		if !strings.Contains(s.note, "connection refused") {
			t.Errorf("ordinal %d: note %q omits cause", s.ordinal, s.note)
		}
	}
}

func TestRunSSHMissingConfigMarksAllUnreviewed(t *testing.T) {
	store := &memStore{}
	insp := &stubInspector{files: map[string]string{}}
	r := testRunner(t, store, func(remote.Options) (remote.Inspector, error) { return insp, nil })

	dev := &review.Device{ID: 1, Name: "fw01", MgmtAddr: "192.0.2.1", SSHUser: "audit"}
	err := r.RunSSH(context.Background(), dev)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want missing-config error", err)
	}
	if !insp.closed {
		t.Error("inspector not closed after fetch failure")
	}
	if len(store.saves) != len(checks.Registry()) {
		t.Errorf("saved %d failure rows, want %d", len(store.saves), len(checks.Registry()))
	}
}

func TestRunSSHUnparseableConfigMarksAllUnreviewed(t *testing.T) {
	store := &memStore{}
	insp := &stubInspector{files: map[string]string{DefaultConfigPath: "not xml <<<"}}
	r := testRunner(t, store, func(remote.Options) (remote.Inspector, error) { return insp, nil })

	dev := &review.Device{ID: 1, Name: "fw01", MgmtAddr: "192.0.2.1", SSHUser: "audit"}
	if err := r.RunSSH(context.Background(), dev); err == nil {
		t.Fatal("expected parse error")
	}
	for _, s := range store.saves {
		if s.status != catalog.NotReviewed {
			t.Errorf("ordinal %d: status %q, want Not Reviewed", s.ordinal, s.status)
		}
	}
}

func TestRunSSHRequiresMgmtAddr(t *testing.T) {
	store := &memStore{}
	r := testRunner(t, store, func(remote.Options) (remote.Inspector, error) {
		t.Fatal("dial must not be attempted without an address")
		return nil, nil
	})

	dev := &review.Device{ID: 1, Name: "fw01"}
	if err := r.RunSSH(context.Background(), dev); err == nil {
		t.Fatal("expected error for device without management address")
	}
	if len(store.saves) != len(checks.Registry()) {
		t.Errorf("saved %d failure rows, want %d", len(store.saves), len(checks.Registry()))
	}
}

func TestRunSSHCustomConfigPath(t *testing.T) {
	store := &memStore{}
	insp := &stubInspector{files: map[string]string{"/cf/conf/config.xml": minimalConfig}}
	r := testRunner(t, store, func(remote.Options) (remote.Inspector, error) { return insp, nil })
	r.SSH.ConfigPath = "/cf/conf/config.xml"

	dev := &review.Device{ID: 1, Name: "fw01", MgmtAddr: "192.0.2.1", SSHUser: "audit"}
	if err := r.RunSSH(context.Background(), dev); err != nil {
		t.Fatalf("RunSSH: %v", err)
	}
}

func TestRunLocalNeedsNoConnection(t *testing.T) {
	store := &memStore{}
	r := testRunner(t, store, func(remote.Options) (remote.Inspector, error) {
		t.Fatal("RunLocal must not dial")
		return nil, nil
	})

	dev := &review.Device{ID: 2, Name: "fw01"}
	if err := r.RunLocal(context.Background(), dev, []byte(minimalConfig)); err != nil {
		t.Fatalf("RunLocal: %v", err)
	}
	if len(store.saves) != len(checks.Registry()) {
		t.Errorf("saved %d results, want %d", len(store.saves), len(checks.Registry()))
	}

	// SSH-dependent checks must degrade, not fail the run.
	ord, _ := r.Catalog.OrdinalOf("1.1")
	for _, s := range store.saves {
		if s.ordinal == ord {
			if s.status != catalog.NotReviewed {
				t.Errorf("1.1 without SSH = %q, want Not Reviewed", s.status)
			}
		}
	}
}

func TestRunSSHUnknownControlSkipped(t *testing.T) {
	store := &memStore{}
	insp := &stubInspector{files: map[string]string{DefaultConfigPath: minimalConfig}}
	r := testRunner(t, store, func(remote.Options) (remote.Inspector, error) { return insp, nil })
	r.entries = append(r.entries, checks.Entry{
		ControlID: "99.99",
		Run: func(c *checks.Checker) (catalog.Verdict, string) {
			return catalog.Compliant, "synthetic"
		},
	})

	dev := &review.Device{ID: 1, Name: "fw01", MgmtAddr: "192.0.2.1", SSHUser: "audit"}
	if err := r.RunSSH(context.Background(), dev); err != nil {
		t.Fatalf("RunSSH: %v", err)
	}
	if len(store.saves) != len(checks.Registry()) {
		t.Errorf("saved %d results, want %d (unknown control dropped)", len(store.saves), len(checks.Registry()))
	}
}

func TestRunSSHStoreFailureAborts(t *testing.T) {
	store := &memStore{saveErr: fmt.Errorf("disk full")}
	insp := &stubInspector{files: map[string]string{DefaultConfigPath: minimalConfig}}
	r := testRunner(t, store, func(remote.Options) (remote.Inspector, error) { return insp, nil })

	dev := &review.Device{ID: 1, Name: "fw01", MgmtAddr: "192.0.2.1", SSHUser: "audit"}
	err := r.RunSSH(context.Background(), dev)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v, want wrapped store failure", err)
	}
}
