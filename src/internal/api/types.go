package api

import (
	"context"
	"time"
)

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// TunnelStatus describes the tunnel as reported over the control API.
type TunnelStatus struct {
	Connected     bool       `json:"connected"`
	Interface     string     `json:"interface"`
	Addresses     []string   `json:"addresses,omitempty"`
	Endpoint      string     `json:"endpoint,omitempty"`
	Region        string     `json:"region,omitempty"`
	ConnectedAt   *time.Time `json:"connected_at,omitempty"`
	KillSwitch    bool       `json:"kill_switch"`
	ForwardedPort int        `json:"forwarded_port,omitempty"`
	PortExpiresAt *time.Time `json:"port_expires_at,omitempty"`
}

// PortInfo describes the currently forwarded port.
type PortInfo struct {
	Port      int        `json:"port"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// VersionInfo contains build version information.
type VersionInfo struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Healthy bool        `json:"healthy"`
	Version VersionInfo `json:"version"`
}

// ConnectionService is implemented by the connection layer. The API
// server never manipulates the tunnel itself, it only delegates.
type ConnectionService interface {
	Connect(ctx context.Context) (*TunnelStatus, error)
	Disconnect() error
	Status() (*TunnelStatus, error)
	ForwardedPort() (*PortInfo, bool)
}
