package wgconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/Penguin-Guru/manual-connections/src/internal/errors"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
	"github.com/Penguin-Guru/manual-connections/src/internal/utils"
)

// UpdateFile brings the tunnel config file at path in line with the
// given identity. A missing file is synthesized from the template; an
// existing file is merged so operator customizations survive. The file
// is replaced atomically, or left untouched when anything fails.
func UpdateFile(path string, id TunnelIdentity) error {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Debugf("No tunnel config at %s, writing a fresh one", path)
		return writeAtomic(path, []byte(RenderFresh(id)))
	}
	if err != nil {
		return fmt.Errorf("failed to read tunnel config %s: %w", path, err)
	}

	doc := Parse(string(content))
	merged, err := Merge(doc, id.Updates())
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodePlacement {
			return apperrors.NewPlacementError(
				fmt.Sprintf("%s: delete %s and reconnect to start from a fresh config", appErr.Message, path),
				appErr.Cause)
		}
		return err
	}

	log.Debugf("Merged %d field(s) into existing tunnel config %s (%d lines)",
		len(id.Updates()), path, merged.Len())
	return writeAtomic(path, []byte(merged.String()))
}

// writeAtomic replaces the file at path via a temp file and rename, so
// an interrupted write never leaves a partial config behind. The file is
// created with mode 0600: it contains a private key.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		utils.CloseOrWarn(tmp)
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		utils.CloseOrWarn(tmp)
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp config file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		utils.CloseOrWarn(tmp)
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace config file %s: %w", path, err)
	}
	return nil
}
