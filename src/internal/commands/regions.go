package commands

import (
	"flag"
	"fmt"
	"sort"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/config"
	"github.com/Penguin-Guru/manual-connections/src/internal/pia"
)

func CreateRegionsCommand() *RegionsCommand {
	rc := &RegionsCommand{
		fs: flag.NewFlagSet("regions", flag.ExitOnError),
	}

	rc.fs.BoolVar(&rc.Ping, "ping", false, "Measure latency to each region and sort by it")
	rc.fs.BoolVar(&rc.PortForward, "port-forward", false, "Only show regions that support port forwarding")

	return rc
}

type RegionsCommand struct {
	fs          *flag.FlagSet
	ctx         *AppContext
	cfg         *config.Config
	Ping        bool
	PortForward bool
}

func (r *RegionsCommand) Name() string {
	return r.fs.Name()
}

func (r *RegionsCommand) Init(args []string, ctx *AppContext) error {
	r.ctx = ctx

	if err := r.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	r.cfg = cfg

	return nil
}

func (r *RegionsCommand) Run() error {
	manager := NewConnectionManager(r.cfg)

	regions, err := manager.Client().GetRegions()
	if err != nil {
		return err
	}

	if r.Ping {
		maxLatency := time.Duration(r.cfg.Provider.MaxLatencyMS) * time.Millisecond
		regions = pia.PingRegions(regions, maxLatency)
	} else {
		sort.Slice(regions, func(i, j int) bool { return regions[i].ID < regions[j].ID })
	}

	fmt.Printf("%-24s %-28s %-4s %-3s %s\n", "ID", "NAME", "CC", "PF", "LATENCY")
	for _, region := range regions {
		if r.PortForward && !region.PortForward {
			continue
		}
		pf := "no"
		if region.PortForward {
			pf = "yes"
		}
		latency := "-"
		if region.Latency > 0 {
			latency = region.Latency.Round(time.Millisecond).String()
		}
		fmt.Printf("%-24s %-28s %-4s %-3s %s\n", region.ID, region.Name, region.Country, pf, latency)
	}
	return nil
}
