package commands

import (
	"context"
	"crypto/x509"
	"encoding/binary"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/config"
	"github.com/Penguin-Guru/manual-connections/src/internal/dnscheck"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
	"github.com/Penguin-Guru/manual-connections/src/internal/networking"
	"github.com/Penguin-Guru/manual-connections/src/internal/wgconf"
)

func CreateSelfCheckCommand() *SelfCheckCommand {
	gc := &SelfCheckCommand{
		fs:   flag.NewFlagSet("self-check", flag.ExitOnError),
		dial: net.DialTimeout,
	}
	return gc
}

type SelfCheckCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config

	dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

func (g *SelfCheckCommand) Name() string {
	return g.fs.Name()
}

func (g *SelfCheckCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx

	if err := g.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	g.cfg = cfg

	return nil
}

func (g *SelfCheckCommand) Run() error {
	log.Infof("Running self-check...")
	log.Infof("---------------- Configuration START -----------------")

	if cfg, err := g.cfg.SerializeConfig(); err != nil {
		log.Errorf("Failed to serialize config: %v", err)
		return err
	} else {
		if err := binary.Write(os.Stdout, binary.LittleEndian, cfg.Bytes()); err != nil {
			log.Errorf("Failed to output config: %v", err)
			return err
		}
	}

	log.Infof("----------------- Configuration END ------------------")

	hasFailures := false
	for _, check := range []struct {
		name string
		run  func() error
	}{
		{"wg-quick executable", g.checkWGQuick},
		{"provider CA certificate", g.checkCACert},
		{"credentials", g.checkCredentials},
		{"tunnel config file", g.checkTunnelConfig},
		{"tunnel interface", g.checkInterface},
		{"tunnel endpoint", g.checkEndpoint},
		{"tunnel DNS resolver", g.checkDNS},
	} {
		if err := check.run(); err != nil {
			log.Errorf("[FAIL] %s: %v", check.name, err)
			hasFailures = true
		} else {
			log.Infof("[ OK ] %s", check.name)
		}
	}

	if hasFailures {
		log.Errorf("Self-check completed with failures")
		return fmt.Errorf("self-check failed")
	}

	log.Infof("Self-check completed successfully")
	return nil
}

func (g *SelfCheckCommand) checkWGQuick() error {
	return networking.NewWGQuick(nil).CheckExecutable()
}

func (g *SelfCheckCommand) checkCACert() error {
	data, err := os.ReadFile(g.cfg.GetAbsCAFile())
	if err != nil {
		return err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return fmt.Errorf("no PEM certificates in %s", g.cfg.GetAbsCAFile())
	}
	return nil
}

func (g *SelfCheckCommand) checkCredentials() error {
	user, pass := g.cfg.Credentials()
	if user == "" || pass == "" {
		return fmt.Errorf("no credentials in config or PIA_USER/PIA_PASS environment")
	}
	return nil
}

// checkTunnelConfig verifies an existing tunnel config file can be
// parsed and would accept updates. A missing file is fine, it will be
// synthesized on the first connect.
func (g *SelfCheckCommand) checkTunnelConfig() error {
	path := g.cfg.GetAbsTunnelConfigFile()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Debugf("no tunnel config at %s yet", path)
		return nil
	}
	if err != nil {
		return err
	}

	doc := wgconf.Parse(string(data))
	for _, section := range []string{"[Interface]", "[Peer]"} {
		found := false
		for _, line := range doc.Lines {
			if line.Kind == wgconf.LineSection && line.Section == section {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("tunnel config %s has no %s section", path, section)
		}
	}
	return nil
}

// checkEndpoint probes the tunnel endpoint host. WireGuard itself is
// UDP and answers nothing, so reachability is measured the same way
// region latency is: a TCP dial to the provider's API port on the same
// host. Not being connected yet is fine.
func (g *SelfCheckCommand) checkEndpoint() error {
	host := ""
	if endpoint, ok := lookupTunnelField(g.cfg.GetAbsTunnelConfigFile(), "Endpoint"); ok {
		if h, _, err := net.SplitHostPort(endpoint); err == nil {
			host = h
		}
	}
	if host == "" {
		if state, err := LoadState(g.cfg.GetAbsStateFile()); err == nil {
			host = state.ServerIP
		}
	}
	if host == "" {
		log.Debugf("no endpoint recorded yet (not connected)")
		return nil
	}

	conn, err := g.dial("tcp", net.JoinHostPort(host, "443"), 3*time.Second)
	if err != nil {
		return fmt.Errorf("endpoint %s is unreachable: %v", host, err)
	}
	return conn.Close()
}

// checkDNS runs a canary lookup against the resolver written into the
// tunnel config. No DNS entry means the operator did not request one,
// nothing to verify.
func (g *SelfCheckCommand) checkDNS() error {
	resolver, ok := lookupTunnelField(g.cfg.GetAbsTunnelConfigFile(), "DNS")
	if !ok || resolver == "" {
		log.Debugf("tunnel config has no DNS entry")
		return nil
	}

	checker, err := dnscheck.NewChecker(resolver)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return checker.Verify(ctx)
}

func (g *SelfCheckCommand) checkInterface() error {
	name := g.cfg.General.InterfaceName
	if !networking.InterfaceExists(name) {
		log.Debugf("tunnel interface %s not present (not connected)", name)
		return nil
	}
	iface, err := networking.GetInterface(name)
	if err != nil {
		return err
	}
	if !iface.IsUp() {
		return fmt.Errorf("interface %s exists but is down", name)
	}
	return nil
}
