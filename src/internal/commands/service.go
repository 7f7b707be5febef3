package commands

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/api"
	"github.com/Penguin-Guru/manual-connections/src/internal/config"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
)

func CreateServiceCommand(version api.VersionInfo) *ServiceCommand {
	sc := &ServiceCommand{
		fs:      flag.NewFlagSet("service", flag.ExitOnError),
		version: version,
	}

	sc.fs.BoolVar(&sc.AutoConnect, "auto-connect", false, "Establish the tunnel on startup")

	return sc
}

// ServiceCommand runs the long-lived service mode: a loopback control
// API plus supervision of the port forwarding keepalive.
type ServiceCommand struct {
	fs          *flag.FlagSet
	ctx         *AppContext
	cfg         *config.Config
	version     api.VersionInfo
	AutoConnect bool

	service    *connectionService
	httpServer *http.Server
	apiRunner  *RestartableRunner
}

func (s *ServiceCommand) Name() string {
	return s.fs.Name()
}

func (s *ServiceCommand) Init(args []string, ctx *AppContext) error {
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

func (s *ServiceCommand) Run() error {
	log.Infof("Starting manual-connections service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	s.service = newConnectionService(ctx, s.cfg)

	if s.AutoConnect {
		log.Infof("Auto-connect requested, establishing tunnel...")
		if _, err := s.service.Connect(ctx); err != nil {
			log.Errorf("Auto-connect failed: %v", err)
			log.Warnf("Service will continue, connect through the API when ready")
		}
	}

	if err := s.startAPIServer(ctx); err != nil {
		return err
	}

	log.Infof("Service started. Send SIGHUP to reload configuration")

	for sig := range sigChan {
		switch sig {
		case syscall.SIGHUP:
			log.Infof("Received SIGHUP, reloading configuration...")
			if err := s.reload(); err != nil {
				log.Errorf("Failed to reload configuration: %v", err)
			} else {
				log.Infof("Configuration reloaded")
			}

		case syscall.SIGINT, syscall.SIGTERM:
			log.Infof("Received signal %v, shutting down...", sig)
			return s.shutdown()
		}
	}
	return nil
}

func (s *ServiceCommand) reload() error {
	cfg, err := loadAndValidateConfigOrFail(s.ctx.ConfigPath)
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.service.swapConfig(cfg)
	return nil
}

// startAPIServer starts the control API in a crash-isolated runner.
func (s *ServiceCommand) startAPIServer(ctx context.Context) error {
	bindAddr := s.cfg.Service.Listen
	log.Infof("Starting control API on %s (loopback only)", bindAddr)

	router := api.NewRouter(s.service, s.version)

	s.httpServer = &http.Server{
		Addr:         bindAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.apiRunner = NewRestartableRunner(RunnerConfig{
		Name:           "control API",
		MaxRestarts:    0,
		RestartBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
	}, func(runCtx context.Context) error {
		log.Infof("control API listening on http://%s", bindAddr)
		err := s.httpServer.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})

	return s.apiRunner.Start(ctx)
}

func (s *ServiceCommand) shutdown() error {
	log.Infof("Shutting down service...")

	s.service.stopPortForwarding()

	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error during API shutdown: %v", err)
			s.httpServer.Close()
		}
	}

	if s.apiRunner != nil {
		if err := s.apiRunner.Stop(); err != nil {
			log.Errorf("Error stopping API runner: %v", err)
		}
	}

	log.Infof("Service stopped")
	return nil
}

// connectionService adapts ConnectionManager to the control API and
// supervises the port forwarding keepalive.
type connectionService struct {
	baseCtx context.Context

	mu       sync.Mutex
	cfg      *config.Config
	manager  *ConnectionManager
	pfRunner *RestartableRunner
}

var _ api.ConnectionService = (*connectionService)(nil)

func newConnectionService(ctx context.Context, cfg *config.Config) *connectionService {
	return &connectionService{
		baseCtx: ctx,
		cfg:     cfg,
		manager: NewConnectionManager(cfg),
	}
}

func (s *connectionService) swapConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.manager = NewConnectionManager(cfg)
}

func (s *connectionService) Connect(ctx context.Context) (*api.TunnelStatus, error) {
	s.mu.Lock()
	cfg, manager := s.cfg, s.manager
	s.mu.Unlock()

	status, err := manager.Connect(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.PortForwarding.Enabled {
		s.startPortForwarding(cfg, manager)
	}

	return toAPIStatus(status), nil
}

func (s *connectionService) Disconnect() error {
	s.stopPortForwarding()

	s.mu.Lock()
	manager := s.manager
	s.mu.Unlock()

	return manager.Disconnect()
}

func (s *connectionService) Status() (*api.TunnelStatus, error) {
	s.mu.Lock()
	manager := s.manager
	s.mu.Unlock()

	status, err := manager.Status()
	if err != nil {
		return nil, err
	}
	return toAPIStatus(status), nil
}

func (s *connectionService) ForwardedPort() (*api.PortInfo, bool) {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	port, err := ReadPortStatus(cfg.GetAbsPortStatusFile())
	if err != nil {
		return nil, false
	}
	expires := port.ExpiresAt
	return &api.PortInfo{Port: port.Port, ExpiresAt: &expires}, true
}

// startPortForwarding launches the keepalive loop in a crash-isolated
// runner, replacing any previous loop.
func (s *connectionService) startPortForwarding(cfg *config.Config, manager *ConnectionManager) {
	s.stopPortForwarding()

	forwarder := NewPortForwarder(cfg, manager)
	runner := NewRestartableRunner(RunnerConfig{
		Name:           "port forwarding",
		MaxRestarts:    5,
		RestartBackoff: 5 * time.Second,
		MaxBackoff:     2 * time.Minute,
	}, forwarder.Run)

	if err := runner.Start(s.baseCtx); err != nil {
		log.Errorf("Failed to start port forwarding: %v", err)
		return
	}

	s.mu.Lock()
	s.pfRunner = runner
	s.mu.Unlock()
}

func (s *connectionService) stopPortForwarding() {
	s.mu.Lock()
	runner := s.pfRunner
	s.pfRunner = nil
	s.mu.Unlock()

	if runner != nil {
		if err := runner.Stop(); err != nil {
			log.Errorf("Error stopping port forwarding: %v", err)
		}
	}
}

func toAPIStatus(status *ConnectionStatus) *api.TunnelStatus {
	return &api.TunnelStatus{
		Connected:     status.Connected,
		Interface:     status.Interface,
		Addresses:     status.Addresses,
		Endpoint:      status.Endpoint,
		Region:        status.Region,
		ConnectedAt:   status.ConnectedAt,
		KillSwitch:    status.KillSwitch,
		ForwardedPort: status.ForwardedPort,
		PortExpiresAt: status.PortExpiresAt,
	}
}
