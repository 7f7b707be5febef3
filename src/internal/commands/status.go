package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/config"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
)

func CreateStatusCommand() *StatusCommand {
	sc := &StatusCommand{
		fs: flag.NewFlagSet("status", flag.ExitOnError),
	}

	sc.fs.BoolVar(&sc.JSON, "json", false, "Print status as JSON")

	return sc
}

type StatusCommand struct {
	fs   *flag.FlagSet
	ctx  *AppContext
	cfg  *config.Config
	JSON bool
}

func (s *StatusCommand) Name() string {
	return s.fs.Name()
}

func (s *StatusCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx

	if err := s.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	s.cfg = cfg

	return nil
}

func (s *StatusCommand) Run() error {
	if s.JSON {
		// Keep stdout reserved for the JSON document.
		log.SetForceStdErr(true)
	}

	status, err := NewConnectionManager(s.cfg).Status()
	if err != nil {
		return err
	}

	if s.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	state := "down"
	if status.Connected {
		state = "up"
	}
	fmt.Printf("Tunnel:         %s (%s)\n", status.Interface, state)
	if len(status.Addresses) > 0 {
		fmt.Printf("Addresses:      %s\n", strings.Join(status.Addresses, ", "))
	}
	if status.Endpoint != "" {
		fmt.Printf("Endpoint:       %s\n", status.Endpoint)
	}
	if status.Region != "" {
		fmt.Printf("Region:         %s\n", status.Region)
	}
	if status.ConnectedAt != nil {
		fmt.Printf("Connected at:   %s\n", status.ConnectedAt.Format(time.RFC3339))
	}
	fmt.Printf("Kill switch:    %v\n", status.KillSwitch)
	if status.ForwardedPort != 0 {
		fmt.Printf("Forwarded port: %d", status.ForwardedPort)
		if status.PortExpiresAt != nil {
			fmt.Printf(" (expires %s)", status.PortExpiresAt.Format(time.RFC3339))
		}
		fmt.Println()
	}
	return nil
}
