package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"solclone/internal/adapter/repository"
	"solclone/internal/adapter/scaffold"
	"solclone/internal/chains"
	"solclone/internal/config"
	"solclone/internal/logger"
	"solclone/internal/pkg/apperrors"
	"solclone/internal/usecase"
)

// Exit codes are part of the CLI contract; see README.
const (
	exitUsage      = 1
	exitConfig     = 2
	exitNetwork    = 3
	exitParse      = 4
	exitFilesystem = 5
)

var cli struct {
	Chain   string `arg:"" help:"Chain alias (eth, base) or numeric chain id."`
	Address string `arg:"" help:"Address of the verified contract to clone."`
	Path    string `arg:"" help:"Destination directory for the new Foundry project."`

	FollowProxy bool          `help:"Also clone the implementation behind a proxy contract."`
	SkipInit    bool          `help:"Write a minimal foundry.toml instead of running 'forge init'."`
	Config      string        `help:"Directory holding an optional config.yaml." default:"configs"`
	Timeout     time.Duration `help:"Explorer request timeout override."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("solclone"),
		kong.Description("Clone a verified smart contract from a block explorer into a local Foundry project."),
		kong.UsageOnError(),
	)

	// API keys commonly live in a local .env; absence is fine.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "solclone: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cli.Timeout > 0 {
		cfg.Explorer.RequestTimeout = cli.Timeout
	}

	// --- Logger ---
	zapLogger, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer zapLogger.Sync() // Ensure logs are flushed before exiting

	// --- Dependency Injection (Manual) ---
	registry, err := chains.NewRegistry()
	if err != nil {
		return err
	}

	explorerRepo := repository.NewEtherscanRepo(cfg.Explorer, zapLogger)
	cacheRepo := repository.NewGoCacheRepo(cfg.Cache, zapLogger)
	materializer := scaffold.NewForgeMaterializer(cfg.Scaffold, cli.SkipInit, zapLogger)

	cloneUseCase := usecase.NewCloneUseCase(registry, explorerRepo, cacheRepo, materializer, zapLogger, *cfg)

	// --- Pipeline ---
	src, err := cloneUseCase.Clone(context.Background(), usecase.CloneRequest{
		Chain:       cli.Chain,
		Address:     cli.Address,
		Destination: cli.Path,
		FollowProxy: cli.FollowProxy,
	})
	if err != nil {
		return err
	}

	zapLogger.Info("Contract cloned",
		zap.String("contract", src.ContractName),
		zap.Int("files", len(src.Files)),
		zap.String("path", cli.Path))
	return nil
}

// exitCode maps the failure class to a stable exit code.
func exitCode(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnknownChain),
		errors.Is(err, apperrors.ErrInvalidAddress):
		return exitUsage
	case errors.Is(err, apperrors.ErrMissingAPIKey):
		return exitConfig
	case errors.Is(err, apperrors.ErrNetwork),
		errors.Is(err, apperrors.ErrExplorerRejected):
		return exitNetwork
	case errors.Is(err, apperrors.ErrMalformedEnvelope),
		errors.Is(err, apperrors.ErrEmptySource),
		errors.Is(err, apperrors.ErrUnsafePath):
		return exitParse
	case errors.Is(err, apperrors.ErrPathExists),
		errors.Is(err, apperrors.ErrInitFailed):
		return exitFilesystem
	default:
		return exitFilesystem
	}
}
