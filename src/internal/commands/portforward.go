package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Penguin-Guru/manual-connections/src/internal/config"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
)

func CreatePortForwardCommand() *PortForwardCommand {
	pc := &PortForwardCommand{
		fs: flag.NewFlagSet("portforward", flag.ExitOnError),
	}
	return pc
}

// PortForwardCommand obtains a forwarded port and keeps it bound in the
// foreground until interrupted.
type PortForwardCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
}

func (p *PortForwardCommand) Name() string {
	return p.fs.Name()
}

func (p *PortForwardCommand) Init(args []string, ctx *AppContext) error {
	p.ctx = ctx

	if err := p.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	p.cfg = cfg

	return nil
}

func (p *PortForwardCommand) Run() error {
	manager := NewConnectionManager(p.cfg)
	forwarder := NewPortForwarder(p.cfg, manager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Infof("received signal %v, releasing port", sig)
		cancel()
	}()

	err := forwarder.Run(ctx)
	if removeErr := RemovePortStatus(p.cfg.GetAbsPortStatusFile()); removeErr != nil {
		log.Warnf("failed to remove port status: %v", removeErr)
	}
	return err
}
