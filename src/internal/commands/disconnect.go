package commands

import (
	"flag"

	"github.com/Penguin-Guru/manual-connections/src/internal/config"
)

func CreateDisconnectCommand() *DisconnectCommand {
	dc := &DisconnectCommand{
		fs: flag.NewFlagSet("disconnect", flag.ExitOnError),
	}
	return dc
}

type DisconnectCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
}

func (d *DisconnectCommand) Name() string {
	return d.fs.Name()
}

func (d *DisconnectCommand) Init(args []string, ctx *AppContext) error {
	d.ctx = ctx

	if err := d.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	d.cfg = cfg

	return nil
}

func (d *DisconnectCommand) Run() error {
	return NewConnectionManager(d.cfg).Disconnect()
}
