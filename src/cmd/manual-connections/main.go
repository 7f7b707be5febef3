package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Penguin-Guru/manual-connections/src/internal/api"
	"github.com/Penguin-Guru/manual-connections/src/internal/commands"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	ctx := &commands.AppContext{}

	flag.StringVar(&ctx.ConfigPath, "config", "/etc/manual-connections/manual-connections.conf", "Path to configuration file")
	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Manual WireGuard connections for Private Internet Access\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  connect                 Establish the WireGuard tunnel\n")
		fmt.Fprintf(os.Stderr, "  disconnect              Tear the tunnel down\n")
		fmt.Fprintf(os.Stderr, "  status                  Show tunnel status\n")
		fmt.Fprintf(os.Stderr, "  regions                 List provider regions\n")
		fmt.Fprintf(os.Stderr, "  token                   Print a provider auth token\n")
		fmt.Fprintf(os.Stderr, "  portforward             Obtain and hold a forwarded port (foreground)\n")
		fmt.Fprintf(os.Stderr, "  service                 Run as a service/daemon with a local control API\n")
		fmt.Fprintf(os.Stderr, "  self-check              Run self-check\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	// Ensure cfg file exists
	if _, err := os.Stat(ctx.ConfigPath); errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Configuration file not found: %s", ctx.ConfigPath)
	}

	buildInfo := api.VersionInfo{Version: version, Commit: commit, Date: date}

	cmds := []commands.Runner{
		commands.CreateConnectCommand(),
		commands.CreateDisconnectCommand(),
		commands.CreateStatusCommand(),
		commands.CreateRegionsCommand(),
		commands.CreateTokenCommand(),
		commands.CreatePortForwardCommand(),
		commands.CreateServiceCommand(buildInfo),
		commands.CreateSelfCheckCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], ctx); err != nil {
				log.Fatalf("Failed to initialize command: %v", err)
			}

			if err := cmd.Run(); err != nil {
				log.Fatalf("Failed to run command: %v", err)
			}

			os.Exit(0)
		}
	}

	log.Fatalf("Unknown subcommand: %s", subcommand)
}
