package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/errors"
)

// ConnectionState is persisted after a successful connect so that later
// invocations (status, port forwarding, disconnect) know which server
// the tunnel was established against.
type ConnectionState struct {
	Region      string    `json:"region"`
	ServerCN    string    `json:"server_cn"`
	ServerIP    string    `json:"server_ip"`
	ServerVIP   string    `json:"server_vip"`
	PeerIP      string    `json:"peer_ip"`
	ConnectedAt time.Time `json:"connected_at"`
}

// SaveState writes the connection state file with 0600 permissions.
func SaveState(path string, state *ConnectionState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.NewInternalError("failed to serialize connection state", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewInternalError("failed to create state directory", err)
	}
	return os.WriteFile(path, data, 0600)
}

// LoadState reads the connection state file.
func LoadState(path string) (*ConnectionState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var state ConnectionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.NewInternalError("failed to parse connection state", err)
	}
	return &state, nil
}

// RemoveState deletes the connection state file. A missing file is fine.
func RemoveState(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
