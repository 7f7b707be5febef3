package networking

import (
	"fmt"

	"github.com/Penguin-Guru/manual-connections/src/internal/log"
	"github.com/coreos/go-iptables/iptables"
)

// killSwitchChain is the name of the iptables chain holding the
// kill switch rules.
const killSwitchChain = "MANCON_KILLSWITCH"

// lanNetworks are the private ranges kept reachable when the kill
// switch is configured to allow LAN traffic.
var lanNetworks = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

// KillSwitchOptions describes what traffic stays allowed while the
// kill switch is active.
type KillSwitchOptions struct {
	// InterfaceName is the tunnel interface whose traffic is allowed.
	InterfaceName string
	// EndpointIP is the VPN server address; handshake traffic to it
	// must bypass the tunnel.
	EndpointIP string
	// AllowLAN keeps private networks reachable outside the tunnel.
	AllowLAN bool
}

// KillSwitch blocks all outbound traffic except through the tunnel.
// It installs a dedicated chain in the filter table and links it from
// OUTPUT, so Disable can remove everything in one step.
type KillSwitch struct {
	ipt  *iptables.IPTables
	opts KillSwitchOptions
}

// NewKillSwitch creates a kill switch manager for IPv4.
func NewKillSwitch(opts KillSwitchOptions) (*KillSwitch, error) {
	ipt, err := iptables.NewWithProtocol(iptables.ProtocolIPv4)
	if err != nil {
		return nil, fmt.Errorf("failed to create iptables client: %w", err)
	}
	return &KillSwitch{ipt: ipt, opts: opts}, nil
}

// killSwitchRules returns the rules of the kill switch chain in order.
// The trailing DROP makes the chain a default-deny for everything the
// earlier rules did not accept.
func killSwitchRules(opts KillSwitchOptions) [][]string {
	rules := [][]string{
		{"-o", "lo", "-j", "ACCEPT"},
		{"-o", opts.InterfaceName, "-j", "ACCEPT"},
	}
	if opts.EndpointIP != "" {
		rules = append(rules, []string{"-d", opts.EndpointIP, "-p", "udp", "-j", "ACCEPT"})
	}
	if opts.AllowLAN {
		for _, network := range lanNetworks {
			rules = append(rules, []string{"-d", network, "-j", "ACCEPT"})
		}
	}
	return append(rules, []string{"-j", "DROP"})
}

// Enable installs the kill switch chain and links it from OUTPUT.
func (k *KillSwitch) Enable() error {
	if err := k.ipt.NewChain("filter", killSwitchChain); err != nil {
		if eerr, ok := err.(*iptables.Error); !(ok && eerr.ExitStatus() == 1) {
			return fmt.Errorf("failed to create chain: %w", err)
		}
	}
	if err := k.ipt.ClearChain("filter", killSwitchChain); err != nil {
		return fmt.Errorf("failed to clear chain: %w", err)
	}

	for _, rule := range killSwitchRules(k.opts) {
		if err := k.ipt.AppendUnique("filter", killSwitchChain, rule...); err != nil {
			return fmt.Errorf("failed to add kill switch rule: %w", err)
		}
	}

	if err := k.ipt.InsertUnique("filter", "OUTPUT", 1, "-j", killSwitchChain); err != nil {
		return fmt.Errorf("failed to link chain: %w", err)
	}

	log.Infof("kill switch enabled (tunnel %s)", k.opts.InterfaceName)
	return nil
}

// Disable removes the kill switch chain and its link from OUTPUT.
func (k *KillSwitch) Disable() error {
	if err := k.ipt.DeleteIfExists("filter", "OUTPUT", "-j", killSwitchChain); err != nil {
		log.Debugf("failed to unlink kill switch chain: %v", err)
	}
	if err := k.ipt.ClearChain("filter", killSwitchChain); err != nil {
		log.Debugf("failed to clear kill switch chain: %v", err)
		return nil
	}
	if err := k.ipt.DeleteChain("filter", killSwitchChain); err != nil {
		log.Debugf("failed to delete kill switch chain: %v", err)
		return nil
	}

	log.Infof("kill switch disabled")
	return nil
}

// IsEnabled reports whether the kill switch chain is currently installed.
func (k *KillSwitch) IsEnabled() (bool, error) {
	return k.ipt.ChainExists("filter", killSwitchChain)
}
