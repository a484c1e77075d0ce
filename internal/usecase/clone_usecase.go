package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"solclone/internal/config"
	"solclone/internal/entity"
	"solclone/internal/pkg/apperrors"
)

// Compile-time check to ensure cloneUseCase implements CloneUseCase
var _ CloneUseCase = (*cloneUseCase)(nil)

type cloneUseCase struct {
	resolver ChainResolver
	explorer ExplorerRepository
	cache    CacheRepository
	scaffold ProjectMaterializer
	logger   *zap.Logger
	cfg      config.Config
}

func NewCloneUseCase(
	resolver ChainResolver,
	explorer ExplorerRepository,
	cache CacheRepository,
	scaffold ProjectMaterializer,
	logger *zap.Logger,
	cfg config.Config,
) CloneUseCase {
	return &cloneUseCase{
		resolver: resolver,
		explorer: explorer,
		cache:    cache,
		scaffold: scaffold,
		logger:   logger.Named("CloneUseCase"),
		cfg:      cfg,
	}
}

// Clone runs the pipeline: resolve chain, look up the API key, fetch and
// normalize the contract source, then materialize the project. Strictly
// sequential; the first failure aborts, nothing retries internally.
func (uc *cloneUseCase) Clone(ctx context.Context, req CloneRequest) (*entity.ContractSource, error) {
	chainCfg, err := uc.resolver.Resolve(req.Chain)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Resolved chain",
		zap.String("chain", chainCfg.Name),
		zap.Int64("chainId", chainCfg.ChainID))

	// Only the chain-specific key variable is consulted; keys for other
	// chains may be set or absent without effect.
	apiKey, ok := os.LookupEnv(chainCfg.APIKeyEnv)
	if !ok || apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", apperrors.ErrMissingAPIKey, chainCfg.APIKeyEnv)
	}

	src, err := uc.fetchSource(ctx, chainCfg, req.Address, apiKey)
	if err != nil {
		return nil, err
	}

	if req.FollowProxy && src.Proxy && src.Implementation != "" &&
		!strings.EqualFold(src.Implementation, req.Address) {
		uc.logger.Info("Contract is a proxy, fetching implementation",
			zap.String("implementation", src.Implementation))
		implSrc, err := uc.fetchSource(ctx, chainCfg, src.Implementation, apiKey)
		if err != nil {
			return nil, err
		}
		src = mergeProxySources(src, implSrc)
	}

	uc.logger.Info("Fetched contract source",
		zap.String("contract", src.ContractName),
		zap.Int("files", len(src.Files)))

	if err := uc.scaffold.Materialize(ctx, src, req.Destination); err != nil {
		return nil, err
	}

	return src, nil
}

// fetchSource returns the normalized source for one address, via the cache
// when possible. Cache failures are logged and never fail the pipeline.
func (uc *cloneUseCase) fetchSource(ctx context.Context, chainCfg entity.ChainConfig, address, apiKey string) (*entity.ContractSource, error) {
	cached, err := uc.cache.GetSource(ctx, chainCfg.ChainID, address)
	if err == nil && cached != nil {
		uc.logger.Debug("Cache hit for contract source", zap.String("address", address))
		return cached, nil
	}
	uc.logger.Debug("Cache miss for contract source", zap.String("address", address), zap.Error(err))

	resp, err := uc.explorer.FetchSource(ctx, chainCfg, address, apiKey)
	if err != nil {
		return nil, err
	}

	src, err := Normalize(resp.Body)
	if err != nil {
		return nil, err
	}

	ttl := uc.cfg.Cache.GetDefaultExpiration()
	if err := uc.cache.SetSource(ctx, chainCfg.ChainID, address, src, ttl); err != nil {
		uc.logger.Error("Failed to cache contract source", zap.String("address", address), zap.Error(err))
	}
	return src, nil
}

// mergeProxySources appends the implementation's files to the proxy's.
// Colliding paths move under an implementation/ prefix so neither side is
// silently overwritten.
func mergeProxySources(proxy, impl *entity.ContractSource) *entity.ContractSource {
	seen := make(map[string]struct{}, len(proxy.Files))
	for _, f := range proxy.Files {
		seen[f.RelativePath] = struct{}{}
	}

	merged := *proxy
	merged.Files = append([]entity.SourceFile(nil), proxy.Files...)
	for _, f := range impl.Files {
		if _, dup := seen[f.RelativePath]; dup {
			f.RelativePath = "implementation/" + f.RelativePath
		}
		merged.Files = append(merged.Files, f)
	}
	if impl.ContractName != "" {
		merged.ContractName = proxy.ContractName + " -> " + impl.ContractName
	}
	return &merged
}
