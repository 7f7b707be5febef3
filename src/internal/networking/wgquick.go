package networking

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/Penguin-Guru/manual-connections/src/internal/errors"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
)

const wgQuickCommand = "wg-quick"

// CommandRunner executes external commands. It exists so tests can
// substitute a fake instead of shelling out.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// WGQuick brings WireGuard tunnels up and down through the wg-quick tool.
type WGQuick struct {
	runner CommandRunner
}

// NewWGQuick creates a wg-quick wrapper. If runner is nil, commands are
// executed directly.
func NewWGQuick(runner CommandRunner) *WGQuick {
	if runner == nil {
		runner = execRunner{}
	}
	return &WGQuick{runner: runner}
}

// CheckExecutable verifies that wg-quick is available in PATH.
func (w *WGQuick) CheckExecutable() error {
	if _, err := exec.LookPath(wgQuickCommand); err != nil {
		return errors.NewInterfaceError("failed to find wg-quick command", err)
	}
	return nil
}

// Up activates the tunnel described by the given config file.
func (w *WGQuick) Up(configFile string) error {
	log.Debugf("running %s up %s", wgQuickCommand, configFile)
	output, err := w.runner.Run(wgQuickCommand, "up", configFile)
	if err != nil {
		return errors.NewInterfaceError(
			fmt.Sprintf("wg-quick up failed: %s", firstLine(output)), err)
	}
	return nil
}

// Down deactivates the tunnel described by the given config file.
// Tearing down a tunnel that is not up is not treated as an error.
func (w *WGQuick) Down(configFile string) error {
	log.Debugf("running %s down %s", wgQuickCommand, configFile)
	output, err := w.runner.Run(wgQuickCommand, "down", configFile)
	if err != nil {
		if strings.Contains(string(output), "is not a WireGuard interface") {
			log.Debugf("tunnel already down")
			return nil
		}
		return errors.NewInterfaceError(
			fmt.Sprintf("wg-quick down failed: %s", firstLine(output)), err)
	}
	return nil
}

func firstLine(output []byte) string {
	s := strings.TrimSpace(string(output))
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}
