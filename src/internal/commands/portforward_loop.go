package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/config"
	"github.com/Penguin-Guru/manual-connections/src/internal/errors"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
)

// PortStatus is the on-disk record of the currently forwarded port,
// written for other tools to consume.
type PortStatus struct {
	Port      int       `json:"port"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WritePortStatus writes the forwarded port status file.
func WritePortStatus(path string, status *PortStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return errors.NewInternalError("failed to serialize port status", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewInternalError("failed to create port status directory", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPortStatus reads the forwarded port status file.
func ReadPortStatus(path string) (*PortStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var status PortStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, errors.NewInternalError("failed to parse port status", err)
	}
	return &status, nil
}

// RemovePortStatus deletes the port status file. A missing file is fine.
func RemovePortStatus(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PortForwarder obtains a forwarded port from the connected server and
// keeps the binding alive. The server drops the binding if it is not
// refreshed within its expiry window, so Run rebinds periodically until
// the signature payload itself expires or the context is cancelled.
type PortForwarder struct {
	cfg     *config.Config
	manager *ConnectionManager
}

// NewPortForwarder creates a port forwarder bound to a connection manager.
func NewPortForwarder(cfg *config.Config, manager *ConnectionManager) *PortForwarder {
	return &PortForwarder{cfg: cfg, manager: manager}
}

// Run acquires a port and keeps it bound until ctx is cancelled or the
// signature expires. The forwarded port is written to the status file
// after the first successful bind.
func (p *PortForwarder) Run(ctx context.Context) error {
	state, err := LoadState(p.cfg.GetAbsStateFile())
	if err != nil {
		return errors.NewPortForwardError(
			"no connection state: establish the tunnel with connect first", err)
	}
	if state.ServerVIP == "" {
		return errors.NewPortForwardError("connection state has no server virtual address", nil)
	}

	token, err := p.manager.Token()
	if err != nil {
		return err
	}

	client := p.manager.Client()
	sig, payload, err := client.GetSignature(state.ServerVIP, state.ServerCN, token)
	if err != nil {
		return err
	}
	log.Infof("obtained forwarded port %d (expires %s)",
		payload.Port, payload.ExpiresAt.Format(time.RFC3339))

	bind := func() error {
		return client.BindPort(state.ServerVIP, state.ServerCN, sig.Payload, sig.Signature)
	}
	if err := bind(); err != nil {
		return err
	}

	statusFile := p.cfg.GetAbsPortStatusFile()
	if err := WritePortStatus(statusFile, &PortStatus{Port: payload.Port, ExpiresAt: payload.ExpiresAt}); err != nil {
		log.Warnf("failed to write port status: %v", err)
	} else {
		log.Infof("port status written to %s", statusFile)
	}

	ticker := time.NewTicker(p.cfg.RebindInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !payload.ExpiresAt.IsZero() && time.Now().After(payload.ExpiresAt) {
				return errors.NewPortForwardError(
					"port forwarding signature expired, reconnect to obtain a new port", nil)
			}
			if err := bind(); err != nil {
				return err
			}
			log.Debugf("port %d binding refreshed", payload.Port)
		}
	}
}
