// Package scaffold materializes normalized contract sources as a local
// Foundry project.
package scaffold

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"solclone/internal/config"
	"solclone/internal/entity"
	"solclone/internal/pkg/apperrors"
	"solclone/internal/usecase"
)

// metadataFile is the sidecar recording what the explorer asserted about the
// cloned contract (name, compiler, license, file list).
const metadataFile = ".solclone.json"

// Compile-time check
var _ usecase.ProjectMaterializer = (*forgeMaterializer)(nil)

type forgeMaterializer struct {
	cfg      config.ScaffoldConfig
	skipInit bool
	logger   *zap.Logger
}

// NewForgeMaterializer builds the project scaffold with `forge init`. With
// skipInit set it writes a minimal foundry.toml instead, so no forge binary
// is needed.
func NewForgeMaterializer(cfg config.ScaffoldConfig, skipInit bool, logger *zap.Logger) usecase.ProjectMaterializer {
	return &forgeMaterializer{
		cfg:      cfg,
		skipInit: skipInit,
		logger:   logger.Named("ForgeMaterializer"),
	}
}

// Materialize creates dest, initializes the project scaffold and writes every
// source file under the sources directory. A failure after initialization
// leaves the files written so far in place; partial output is reported as the
// error, never rolled back silently.
func (m *forgeMaterializer) Materialize(ctx context.Context, src *entity.ContractSource, dest string) error {
	if err := ensureFreshDestination(dest); err != nil {
		return err
	}
	m.logger.Info("Created destination", zap.String("path", dest))

	if m.skipInit {
		if err := m.writeFoundryConfig(dest); err != nil {
			return err
		}
	} else {
		if err := m.runForgeInit(ctx, dest); err != nil {
			return err
		}
		if err := m.removeTemplateFiles(dest); err != nil {
			return err
		}
	}

	sourcesRoot := filepath.Join(dest, m.cfg.SourcesDir)
	if err := os.MkdirAll(sourcesRoot, 0o755); err != nil {
		return fmt.Errorf("failed to create sources directory: %w", err)
	}

	for _, f := range src.Files {
		if err := m.writeSourceFile(sourcesRoot, f); err != nil {
			return err
		}
	}

	return m.writeMetadata(dest, src)
}

// ensureFreshDestination creates dest, refusing to touch an existing
// non-empty directory. An existing empty directory is acceptable.
func ensureFreshDestination(dest string) error {
	info, err := os.Stat(dest)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return fmt.Errorf("failed to create destination: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat destination: %w", err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s", apperrors.ErrPathExists, dest)
	}

	dirEntries, err := os.ReadDir(dest)
	if err != nil {
		return fmt.Errorf("failed to read destination: %w", err)
	}
	if len(dirEntries) > 0 {
		return fmt.Errorf("%w: %s is not empty", apperrors.ErrPathExists, dest)
	}
	return nil
}

func (m *forgeMaterializer) writeSourceFile(sourcesRoot string, f entity.SourceFile) error {
	rel := filepath.FromSlash(f.RelativePath)
	// The normalizer sanitizes payload paths already; re-check here so the
	// writer never trusts its input.
	if !filepath.IsLocal(rel) {
		return &apperrors.UnsafePathError{Path: f.RelativePath}
	}

	target := filepath.Join(sourcesRoot, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.RelativePath, err)
	}
	if err := os.WriteFile(target, []byte(f.Contents), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.RelativePath, err)
	}
	m.logger.Debug("Wrote source file", zap.String("path", target))
	return nil
}

func (m *forgeMaterializer) writeMetadata(dest string, src *entity.ContractSource) error {
	b, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	b = append(b, '\n')
	if err := os.WriteFile(filepath.Join(dest, metadataFile), b, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}
