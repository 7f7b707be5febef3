package commands

import (
	"context"
	"flag"

	"github.com/Penguin-Guru/manual-connections/src/internal/config"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
)

func CreateConnectCommand() *ConnectCommand {
	cc := &ConnectCommand{
		fs: flag.NewFlagSet("connect", flag.ExitOnError),
	}

	cc.fs.StringVar(&cc.Region, "region", "", "Region slug to connect to (overrides config, empty = lowest latency)")

	return cc
}

type ConnectCommand struct {
	fs     *flag.FlagSet
	ctx    *AppContext
	cfg    *config.Config
	Region string
}

func (c *ConnectCommand) Name() string {
	return c.fs.Name()
}

func (c *ConnectCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.Region != "" {
		c.cfg.Provider.Region = c.Region
	}

	return nil
}

func (c *ConnectCommand) Run() error {
	manager := NewConnectionManager(c.cfg)

	status, err := manager.Connect(context.Background())
	if err != nil {
		return err
	}

	log.Infof("connected to %s via %s", status.Region, status.Endpoint)
	if c.cfg.PortForwarding.Enabled {
		log.Infof("run the portforward command to obtain and hold a forwarded port")
	}
	return nil
}
