package commands

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
	"time"
)

func TestSaveAndLoadState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connection.json")

	state := &ConnectionState{
		Region:      "de_berlin",
		ServerCN:    "berlin402",
		ServerIP:    "10.10.1.2",
		ServerVIP:   "10.9.0.1",
		PeerIP:      "10.9.112.42",
		ConnectedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	if err := SaveState(path, state); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	loaded, err := LoadState(path)
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if !reflect.DeepEqual(state, loaded) {
		t.Errorf("loaded state = %+v, want %+v", loaded, state)
	}
}

func TestSaveState_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "connection.json")
	if err := SaveState(path, &ConnectionState{Region: "x"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("state file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestRemoveState_MissingFileIsFine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	if err := RemoveState(path); err != nil {
		t.Errorf("RemoveState() on missing file = %v", err)
	}
}

func TestPortStatusRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forwarded-port.json")

	status := &PortStatus{
		Port:      34567,
		ExpiresAt: time.Date(2026, 10, 30, 12, 0, 0, 0, time.UTC),
	}
	if err := WritePortStatus(path, status); err != nil {
		t.Fatalf("WritePortStatus() error = %v", err)
	}

	loaded, err := ReadPortStatus(path)
	if err != nil {
		t.Fatalf("ReadPortStatus() error = %v", err)
	}
	if !reflect.DeepEqual(status, loaded) {
		t.Errorf("loaded port status = %+v, want %+v", loaded, status)
	}

	if err := RemovePortStatus(path); err != nil {
		t.Fatalf("RemovePortStatus() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("port status file still exists after removal")
	}
}
