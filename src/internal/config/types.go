package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/utils"
)

type Config struct {
	// ConfigVersion is the configuration file version.
	ConfigVersion uint8 `toml:"config_version" json:"config_version"`
	// General holds general configuration.
	General *GeneralConfig `toml:"general"`
	// Provider holds the VPN provider API endpoints and credentials.
	Provider *ProviderConfig `toml:"provider"`
	// Tunnel holds the tunnel identity preferences.
	Tunnel *TunnelConfig `toml:"tunnel"`
	// KillSwitch holds the firewall kill switch settings.
	KillSwitch *KillSwitchConfig `toml:"killswitch"`
	// PortForwarding holds the port forwarding settings.
	PortForwarding *PortForwardingConfig `toml:"port_forwarding"`
	// Service holds the long-running service mode settings.
	Service *ServiceConfig `toml:"service"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// TunnelConfigFile is the path of the WireGuard tunnel config file.
	TunnelConfigFile string `toml:"tunnel_config_file" json:"tunnel_config_file" validate:"required"`
	// InterfaceName is the tunnel interface name, derived from the config file name by wg-quick.
	InterfaceName string `toml:"interface_name" json:"interface_name" validate:"required,interface_name"`
	// TokenCacheFile is where the provider auth token is cached between runs (mode 0600).
	TokenCacheFile string `toml:"token_cache_file" json:"token_cache_file" validate:"required"`
	// StateFile is where connection metadata (region, server addresses) is persisted between invocations.
	StateFile string `toml:"state_file" json:"state_file" validate:"required"`
}

type ProviderConfig struct {
	// TokenURL is the endpoint exchanging credentials for an auth token.
	TokenURL string `toml:"token_url" json:"token_url" validate:"required,url"`
	// ServerListURL is the endpoint listing regions and their servers.
	ServerListURL string `toml:"server_list_url" json:"server_list_url" validate:"required,url"`
	// CAFile is the provider CA certificate used to verify key-exchange servers (relative paths resolve against the config directory).
	CAFile string `toml:"ca_file" json:"ca_file" validate:"required"`
	// Username and Password are the provider credentials. The PIA_USER and PIA_PASS environment variables take precedence.
	Username string `toml:"username" json:"username"`
	Password string `toml:"password" json:"-"`
	// Region is the region slug to connect to. Empty selects the lowest-latency region automatically.
	Region string `toml:"region" json:"region" validate:"region_slug"`
	// MaxLatencyMS caps acceptable region latency during automatic selection (default: 100).
	MaxLatencyMS int `toml:"max_latency_ms" json:"max_latency_ms" validate:"gte=0"`
}

type TunnelConfig struct {
	// UseProviderDNS writes the resolver returned by the key exchange into the tunnel config.
	UseProviderDNS bool `toml:"use_provider_dns" json:"use_provider_dns"`
	// DNS pins the tunnel resolver to a fixed address, taking precedence over the provider's resolver.
	DNS string `toml:"dns" json:"dns" validate:"ip_or_empty"`
	// AllowedIPs used when synthesizing a fresh tunnel config (default: 0.0.0.0/0). An existing file keeps its own value.
	AllowedIPs string `toml:"allowed_ips" json:"allowed_ips"`
	// KeepaliveSeconds used when synthesizing a fresh tunnel config (default: 25).
	KeepaliveSeconds int `toml:"keepalive_seconds" json:"keepalive_seconds" validate:"gte=0,lte=65535"`
}

type KillSwitchConfig struct {
	// Enabled blocks all non-tunnel traffic while the tunnel is up.
	Enabled bool `toml:"enabled" json:"enabled"`
	// AllowLAN keeps RFC1918 destinations reachable outside the tunnel.
	AllowLAN bool `toml:"allow_lan" json:"allow_lan"`
}

type PortForwardingConfig struct {
	// Enabled requests a forwarded port after connecting and keeps it bound.
	Enabled bool `toml:"enabled" json:"enabled"`
	// StatusFile is where the currently forwarded port is written for other tools.
	StatusFile string `toml:"status_file" json:"status_file"`
	// RebindIntervalSeconds is the keepalive interval of the port binding (default: 900).
	RebindIntervalSeconds int `toml:"rebind_interval_seconds" json:"rebind_interval_seconds" validate:"gte=0"`
}

type ServiceConfig struct {
	// Listen is the local control API address in service mode (default: 127.0.0.1:8422).
	Listen string `toml:"listen" json:"listen" validate:"hostport_or_empty"`
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

// GetAbsCAFile resolves the provider CA certificate path.
func (c *Config) GetAbsCAFile() string {
	return utils.GetAbsolutePath(c.Provider.CAFile, c.GetConfigDir())
}

// GetAbsTokenCacheFile resolves the token cache path.
func (c *Config) GetAbsTokenCacheFile() string {
	return utils.GetAbsolutePath(c.General.TokenCacheFile, c.GetConfigDir())
}

// GetAbsTunnelConfigFile resolves the tunnel config file path.
func (c *Config) GetAbsTunnelConfigFile() string {
	return utils.GetAbsolutePath(c.General.TunnelConfigFile, c.GetConfigDir())
}

// GetAbsStateFile resolves the connection state file path.
func (c *Config) GetAbsStateFile() string {
	return utils.GetAbsolutePath(c.General.StateFile, c.GetConfigDir())
}

// GetAbsPortStatusFile resolves the forwarded port status file path.
func (c *Config) GetAbsPortStatusFile() string {
	return utils.GetAbsolutePath(c.PortForwarding.StatusFile, c.GetConfigDir())
}

// Credentials returns the provider username and password. Environment
// variables PIA_USER and PIA_PASS take precedence over the config file.
func (c *Config) Credentials() (string, string) {
	user := os.Getenv("PIA_USER")
	if user == "" {
		user = c.Provider.Username
	}
	pass := os.Getenv("PIA_PASS")
	if pass == "" {
		pass = c.Provider.Password
	}
	return user, pass
}

// RebindInterval returns the port forwarding rebind interval.
func (c *Config) RebindInterval() time.Duration {
	secs := 900
	if c.PortForwarding != nil && c.PortForwarding.RebindIntervalSeconds > 0 {
		secs = c.PortForwarding.RebindIntervalSeconds
	}
	return time.Duration(secs) * time.Second
}

// applyDefaults fills in the optional sections and their default values
// after the file has been decoded.
func (c *Config) applyDefaults() {
	if c.General == nil {
		c.General = &GeneralConfig{}
	}
	if c.General.TunnelConfigFile == "" {
		c.General.TunnelConfigFile = "/etc/wireguard/pia.conf"
	}
	if c.General.InterfaceName == "" {
		c.General.InterfaceName = "pia"
	}
	if c.General.TokenCacheFile == "" {
		c.General.TokenCacheFile = "token.json"
	}
	if c.General.StateFile == "" {
		c.General.StateFile = "connection.json"
	}

	if c.Provider == nil {
		c.Provider = &ProviderConfig{}
	}
	if c.Provider.TokenURL == "" {
		c.Provider.TokenURL = "https://www.privateinternetaccess.com/api/client/v2/token"
	}
	if c.Provider.ServerListURL == "" {
		c.Provider.ServerListURL = "https://serverlist.piaservers.net/vpninfo/servers/v6"
	}
	if c.Provider.CAFile == "" {
		c.Provider.CAFile = "ca.rsa.4096.crt"
	}
	if c.Provider.MaxLatencyMS == 0 {
		c.Provider.MaxLatencyMS = 100
	}

	if c.Tunnel == nil {
		c.Tunnel = &TunnelConfig{UseProviderDNS: true}
	}
	if c.Tunnel.AllowedIPs == "" {
		c.Tunnel.AllowedIPs = "0.0.0.0/0"
	}
	if c.Tunnel.KeepaliveSeconds == 0 {
		c.Tunnel.KeepaliveSeconds = 25
	}

	if c.KillSwitch == nil {
		c.KillSwitch = &KillSwitchConfig{}
	}

	if c.PortForwarding == nil {
		c.PortForwarding = &PortForwardingConfig{}
	}
	if c.PortForwarding.StatusFile == "" {
		c.PortForwarding.StatusFile = "forwarded-port.json"
	}
	if c.PortForwarding.RebindIntervalSeconds == 0 {
		c.PortForwarding.RebindIntervalSeconds = 900
	}

	if c.Service == nil {
		c.Service = &ServiceConfig{}
	}
	if c.Service.Listen == "" {
		c.Service.Listen = "127.0.0.1:8422"
	}
}
