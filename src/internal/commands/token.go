package commands

import (
	"flag"
	"fmt"

	"github.com/Penguin-Guru/manual-connections/src/internal/config"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
)

func CreateTokenCommand() *TokenCommand {
	tc := &TokenCommand{
		fs: flag.NewFlagSet("token", flag.ExitOnError),
	}
	return tc
}

// TokenCommand fetches (or reuses) a provider token and prints it, for
// use with other provider tooling.
type TokenCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
}

func (t *TokenCommand) Name() string {
	return t.fs.Name()
}

func (t *TokenCommand) Init(args []string, ctx *AppContext) error {
	t.ctx = ctx

	if err := t.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	t.cfg = cfg

	return nil
}

func (t *TokenCommand) Run() error {
	// Keep stdout reserved for the token itself.
	log.SetForceStdErr(true)

	token, err := NewConnectionManager(t.cfg).Token()
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
