package commands

import (
	"context"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/config"
	"github.com/Penguin-Guru/manual-connections/src/internal/dnscheck"
	"github.com/Penguin-Guru/manual-connections/src/internal/errors"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
	"github.com/Penguin-Guru/manual-connections/src/internal/networking"
	"github.com/Penguin-Guru/manual-connections/src/internal/pia"
	"github.com/Penguin-Guru/manual-connections/src/internal/wgconf"
	"github.com/Penguin-Guru/manual-connections/src/internal/wgkeys"
)

// ConnectionStatus is a snapshot of the tunnel state.
type ConnectionStatus struct {
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

// ConnectionManager orchestrates the full connection lifecycle: token,
// region selection, key exchange, tunnel config merge, wg-quick and the
// kill switch. It is shared by the CLI commands and the service API.
type ConnectionManager struct {
	cfg    *config.Config
	client *pia.Client
	wg     *networking.WGQuick

	mu sync.Mutex
}

// NewConnectionManager creates a connection manager for the given config.
func NewConnectionManager(cfg *config.Config) *ConnectionManager {
	return &ConnectionManager{
		cfg:    cfg,
		client: pia.NewClient(cfg.Provider.TokenURL, cfg.Provider.ServerListURL, cfg.GetAbsCAFile(), nil),
		wg:     networking.NewWGQuick(nil),
	}
}

// Client returns the provider API client used by this manager.
func (m *ConnectionManager) Client() *pia.Client {
	return m.client
}

// Token returns a valid provider token, using the on-disk cache.
func (m *ConnectionManager) Token() (string, error) {
	user, pass := m.cfg.Credentials()
	if user == "" || pass == "" {
		return "", errors.NewAuthError(
			"no credentials: set username/password in the config or the PIA_USER/PIA_PASS environment variables", nil)
	}
	return m.client.CachedTokenFor(user, pass, m.cfg.GetAbsTokenCacheFile())
}

// Connect establishes the tunnel end to end and returns its status.
func (m *ConnectionManager) Connect(ctx context.Context) (*ConnectionStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.wg.CheckExecutable(); err != nil {
		return nil, err
	}

	token, err := m.Token()
	if err != nil {
		return nil, err
	}

	regions, err := m.client.GetRegions()
	if err != nil {
		return nil, err
	}

	maxLatency := time.Duration(m.cfg.Provider.MaxLatencyMS) * time.Millisecond
	region, err := pia.SelectRegion(regions, m.cfg.Provider.Region, maxLatency, m.cfg.PortForwarding.Enabled)
	if err != nil {
		return nil, err
	}
	if len(region.Servers.WG) == 0 {
		return nil, errors.NewAPIError("selected region has no WireGuard servers", nil)
	}
	server := region.Servers.WG[0]
	log.Infof("connecting to region %s via %s (%s)", region.ID, server.CN, server.IP)

	keys, err := wgkeys.Generate()
	if err != nil {
		return nil, errors.NewInternalError("failed to generate WireGuard keypair", err)
	}

	reply, err := m.client.AddKey(server, token, keys.PublicKey)
	if err != nil {
		return nil, err
	}
	log.Infof("key registered, peer address %s", reply.PeerIP)

	dns := tunnelResolver(m.cfg.Tunnel, reply)

	identity := wgconf.TunnelIdentity{
		Address:    reply.PeerIP,
		PrivateKey: keys.PrivateKey,
		DNS:        dns,
		ServerKey:  reply.ServerKey,
		Endpoint:   net.JoinHostPort(reply.ServerIP, strconv.Itoa(reply.ServerPort)),
		AllowedIPs: m.cfg.Tunnel.AllowedIPs,
		Keepalive:  m.cfg.Tunnel.KeepaliveSeconds,
	}

	tunnelFile := m.cfg.GetAbsTunnelConfigFile()
	if err := wgconf.UpdateFile(tunnelFile, identity); err != nil {
		return nil, err
	}
	log.Infof("tunnel config written to %s", tunnelFile)

	// A stale tunnel from a previous run has to go down first, wg-quick
	// refuses to bring up an interface that already exists.
	if networking.InterfaceExists(m.cfg.General.InterfaceName) {
		if err := m.wg.Down(tunnelFile); err != nil {
			return nil, err
		}
	}
	if err := m.wg.Up(tunnelFile); err != nil {
		return nil, err
	}
	log.Infof("tunnel %s is up", m.cfg.General.InterfaceName)

	if dns != "" {
		m.verifyDNS(ctx, dns)
	}

	if m.cfg.KillSwitch.Enabled {
		ks, err := networking.NewKillSwitch(networking.KillSwitchOptions{
			InterfaceName: m.cfg.General.InterfaceName,
			EndpointIP:    reply.ServerIP,
			AllowLAN:      m.cfg.KillSwitch.AllowLAN,
		})
		if err != nil {
			return nil, err
		}
		if err := ks.Enable(); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	state := &ConnectionState{
		Region:      region.ID,
		ServerCN:    server.CN,
		ServerIP:    reply.ServerIP,
		ServerVIP:   reply.ServerVIP,
		PeerIP:      reply.PeerIP,
		ConnectedAt: now,
	}
	if err := SaveState(m.cfg.GetAbsStateFile(), state); err != nil {
		log.Warnf("failed to save connection state: %v", err)
	}

	return &ConnectionStatus{
		Connected:   true,
		Interface:   m.cfg.General.InterfaceName,
		Endpoint:    identity.Endpoint,
		Region:      region.ID,
		ConnectedAt: &now,
		KillSwitch:  m.cfg.KillSwitch.Enabled,
	}, nil
}

// Disconnect tears the tunnel down and removes the kill switch.
func (m *ConnectionManager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ks, err := networking.NewKillSwitch(networking.KillSwitchOptions{
		InterfaceName: m.cfg.General.InterfaceName,
	})
	if err == nil {
		if err := ks.Disable(); err != nil {
			log.Warnf("failed to disable kill switch: %v", err)
		}
	}

	if err := m.wg.Down(m.cfg.GetAbsTunnelConfigFile()); err != nil {
		return err
	}
	log.Infof("tunnel %s is down", m.cfg.General.InterfaceName)

	if err := RemoveState(m.cfg.GetAbsStateFile()); err != nil {
		log.Warnf("failed to remove connection state: %v", err)
	}
	if err := RemovePortStatus(m.cfg.GetAbsPortStatusFile()); err != nil {
		log.Warnf("failed to remove port status: %v", err)
	}
	return nil
}

// Status reports the current tunnel state without touching the tunnel.
func (m *ConnectionManager) Status() (*ConnectionStatus, error) {
	status := &ConnectionStatus{Interface: m.cfg.General.InterfaceName}

	if iface, err := networking.GetInterface(m.cfg.General.InterfaceName); err == nil {
		status.Connected = iface.IsUp()
		if ips, err := iface.AddrsIps(); err == nil {
			for _, ip := range ips {
				status.Addresses = append(status.Addresses, ip.String())
			}
		}
	}

	if endpoint, ok := lookupTunnelField(m.cfg.GetAbsTunnelConfigFile(), "Endpoint"); ok {
		status.Endpoint = endpoint
	}

	if state, err := LoadState(m.cfg.GetAbsStateFile()); err == nil {
		status.Region = state.Region
		connectedAt := state.ConnectedAt
		status.ConnectedAt = &connectedAt
	}

	if ks, err := networking.NewKillSwitch(networking.KillSwitchOptions{
		InterfaceName: m.cfg.General.InterfaceName,
	}); err == nil {
		if enabled, err := ks.IsEnabled(); err == nil {
			status.KillSwitch = enabled
		}
	}

	if port, err := ReadPortStatus(m.cfg.GetAbsPortStatusFile()); err == nil {
		status.ForwardedPort = port.Port
		expires := port.ExpiresAt
		status.PortExpiresAt = &expires
	}

	return status, nil
}

// tunnelResolver picks the resolver written into the tunnel config: a
// pinned address from the config wins, otherwise the provider's first
// resolver when requested.
func tunnelResolver(tunnel *config.TunnelConfig, reply *pia.KeyExchangeReply) string {
	if tunnel.DNS != "" {
		return tunnel.DNS
	}
	if tunnel.UseProviderDNS && len(reply.DNSServers) > 0 {
		return reply.DNSServers[0]
	}
	return ""
}

func readTunnelConfig(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// lookupTunnelField reads one logical field out of the tunnel config
// file. A missing file and a missing field both report false.
func lookupTunnelField(path, key string) (string, bool) {
	content, err := readTunnelConfig(path)
	if err != nil {
		return "", false
	}
	return wgconf.Parse(content).Lookup(key)
}

// verifyDNS runs a canary lookup against the provider resolver. A
// failure is logged but does not tear the tunnel down: the operator may
// have their own resolver setup.
func (m *ConnectionManager) verifyDNS(ctx context.Context, resolver string) {
	checker, err := dnscheck.NewChecker(resolver)
	if err != nil {
		log.Warnf("invalid provider resolver %q: %v", resolver, err)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := checker.Verify(checkCtx); err != nil {
		log.Warnf("DNS check through tunnel failed: %v", err)
		return
	}
	log.Infof("DNS through tunnel resolver %s is working", resolver)
}
