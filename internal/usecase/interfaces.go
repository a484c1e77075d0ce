package usecase

import (
	"context"
	"time"

	"solclone/internal/entity"
)

// ChainResolver maps a user-supplied chain identifier (alias or numeric
// chain ID) to the explorer config serving that chain.
type ChainResolver interface {
	Resolve(identifier string) (entity.ChainConfig, error)
}

// ExplorerRepository fetches verified contract source from a block explorer.
type ExplorerRepository interface {
	FetchSource(ctx context.Context, cfg entity.ChainConfig, address, apiKey string) (entity.ExplorerResponse, error)
}

// CacheRepository caches normalized contract source per chain and address.
type CacheRepository interface {
	GetSource(ctx context.Context, chainID int64, address string) (*entity.ContractSource, error)
	SetSource(ctx context.Context, chainID int64, address string, src *entity.ContractSource, ttl time.Duration) error
}

// ProjectMaterializer writes normalized source files into a project scaffold.
type ProjectMaterializer interface {
	Materialize(ctx context.Context, src *entity.ContractSource, dest string) error
}

// CloneRequest is the user's ask: one contract on one chain into one directory.
type CloneRequest struct {
	Chain       string
	Address     string
	Destination string
	FollowProxy bool
}

// CloneUseCase defines the contract cloning pipeline.
type CloneUseCase interface {
	Clone(ctx context.Context, req CloneRequest) (*entity.ContractSource, error)
}
