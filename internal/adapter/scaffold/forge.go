package scaffold

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"solclone/internal/pkg/apperrors"
)

// runForgeInit initializes the Foundry scaffold in dest. A non-zero exit
// surfaces as InitFailedError with the tool's exit code and stderr.
func (m *forgeMaterializer) runForgeInit(ctx context.Context, dest string) error {
	cmd := exec.CommandContext(ctx, m.cfg.ForgeBinary, "init", "--no-commit", ".")
	cmd.Dir = dest

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	m.logger.Info("Initializing forge project", zap.String("path", dest))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &apperrors.InitFailedError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		return fmt.Errorf("%w: %v", apperrors.ErrInitFailed, err)
	}
	return nil
}

// removeTemplateFiles deletes the Counter example the forge template ships
// with; its test and script reference the removed contract and would break
// the first build.
func (m *forgeMaterializer) removeTemplateFiles(dest string) error {
	for _, dir := range []string{m.cfg.SourcesDir, "test", "script"} {
		root := filepath.Join(dest, dir)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.Contains(d.Name(), "Counter") {
				return nil
			}
			m.logger.Debug("Removing template file", zap.String("path", path))
			return os.Remove(path)
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to clean template files: %w", err)
		}
	}
	return nil
}

// foundryProfile mirrors the profile table of foundry.toml.
type foundryProfile struct {
	Src  string   `toml:"src"`
	Out  string   `toml:"out"`
	Libs []string `toml:"libs"`
}

type foundryConfig struct {
	Profile map[string]foundryProfile `toml:"profile"`
}

// writeFoundryConfig renders the minimal foundry.toml that makes dest a
// recognizable Foundry project when forge init is skipped.
func (m *forgeMaterializer) writeFoundryConfig(dest string) error {
	cfg := foundryConfig{
		Profile: map[string]foundryProfile{
			"default": {
				Src:  m.cfg.SourcesDir,
				Out:  "out",
				Libs: []string{"lib"},
			},
		},
	}

	b, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode foundry.toml: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dest, "foundry.toml"), b, 0o644); err != nil {
		return fmt.Errorf("failed to write foundry.toml: %w", err)
	}
	m.logger.Info("Wrote foundry.toml", zap.String("path", dest))
	return nil
}
