// Package chains maps user-supplied chain identifiers to explorer endpoints.
// The registry is data, not code: adding a chain is an edit to chains.yaml.
package chains

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"solclone/internal/entity"
	"solclone/internal/pkg/apperrors"
)

//go:embed chains.yaml
var registryYAML []byte

type registryFile struct {
	Chains []entity.ChainConfig `yaml:"chains"`
}

// Registry resolves chain aliases and numeric chain IDs to explorer configs.
type Registry struct {
	byAlias map[string]entity.ChainConfig
	byID    map[int64]entity.ChainConfig
}

// NewRegistry loads the embedded chain table.
func NewRegistry() (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(registryYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse embedded chain registry: %w", err)
	}

	r := &Registry{
		byAlias: make(map[string]entity.ChainConfig, len(file.Chains)),
		byID:    make(map[int64]entity.ChainConfig, len(file.Chains)),
	}
	for _, c := range file.Chains {
		r.byAlias[strings.ToLower(c.Alias)] = c
		r.byID[c.ChainID] = c
	}
	return r, nil
}

// Resolve maps an alias (case-insensitive) or a non-negative numeric chain ID
// to its explorer config. Identifiers outside the registry fail with
// apperrors.ErrUnknownChain. Pure lookup, no side effects.
func (r *Registry) Resolve(identifier string) (entity.ChainConfig, error) {
	if cfg, ok := r.byAlias[strings.ToLower(identifier)]; ok {
		return cfg, nil
	}

	id, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil || id < 0 {
		return entity.ChainConfig{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownChain, identifier)
	}
	if cfg, ok := r.byID[id]; ok {
		return cfg, nil
	}
	return entity.ChainConfig{}, fmt.Errorf("%w: chain id %d is not registered", apperrors.ErrUnknownChain, id)
}

// Aliases returns the registered aliases, for help and error output.
func (r *Registry) Aliases() []string {
	aliases := make([]string, 0, len(r.byAlias))
	for alias := range r.byAlias {
		aliases = append(aliases, alias)
	}
	return aliases
}
