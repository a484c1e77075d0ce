package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"solclone/internal/config"
	"solclone/internal/entity"
	"solclone/internal/pkg/apperrors"
	"solclone/internal/usecase"
)

// Compile-time check
var _ usecase.ExplorerRepository = (*etherscanRepo)(nil)

type etherscanRepo struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewEtherscanRepo(cfg config.ExplorerConfig, logger *zap.Logger) usecase.ExplorerRepository {
	timeout := cfg.GetTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &etherscanRepo{
		client:  &fasthttp.Client{ReadTimeout: timeout},
		timeout: timeout,
		logger:  logger.Named("EtherscanRepo"),
	}
}

// FetchSource issues exactly one getsourcecode GET against the chain's
// explorer. Transport failures, timeouts and non-2xx statuses map to
// ErrNetwork; an error signalled inside a 200 envelope (status != "1",
// message NOTOK) maps to ExplorerRejectedError so an unverified contract is
// distinguishable from a broken network. No retries.
func (r *etherscanRepo) FetchSource(ctx context.Context, chainCfg entity.ChainConfig, address, apiKey string) (entity.ExplorerResponse, error) {
	if !common.IsHexAddress(address) {
		return entity.ExplorerResponse{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidAddress, address)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(chainCfg.APIURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	args := req.URI().QueryArgs()
	args.Set("chainid", strconv.FormatInt(chainCfg.ChainID, 10))
	args.Set("module", "contract")
	args.Set("action", "getsourcecode")
	args.Set("address", address)
	args.Set("apikey", apiKey)

	timeout := r.timeout
	if deadline, hasDeadline := ctx.Deadline(); hasDeadline {
		requestTimeout := time.Until(deadline)
		if requestTimeout > 0 && requestTimeout < timeout {
			timeout = requestTimeout
		}
	}

	r.logger.Debug("Fetching contract source",
		zap.String("explorer", chainCfg.APIURL),
		zap.String("address", address))

	if err := r.client.DoTimeout(req, resp, timeout); err != nil {
		r.logger.Error("Failed to execute explorer request", zap.Error(err))
		return entity.ExplorerResponse{}, fmt.Errorf("%w: %v", apperrors.ErrNetwork, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		r.logger.Error("Explorer returned non-OK status",
			zap.Int("statusCode", resp.StatusCode()))
		return entity.ExplorerResponse{}, fmt.Errorf("%w: explorer returned status %d", apperrors.ErrNetwork, resp.StatusCode())
	}

	// The response buffer is recycled on release; callers own a copy.
	body := append([]byte(nil), resp.Body()...)

	if rejected := explorerRejection(body); rejected != nil {
		r.logger.Error("Explorer rejected request",
			zap.String("address", address),
			zap.Error(rejected))
		return entity.ExplorerResponse{}, rejected
	}

	r.logger.Info("Fetched contract source",
		zap.String("address", address),
		zap.Int("bytes", len(body)))
	return entity.ExplorerResponse{Body: body}, nil
}

// explorerRejection detects an error signalled inside the 200 envelope.
// A body that does not decode is left for the normalizer to report.
func explorerRejection(body []byte) error {
	var envelope entity.ExplorerEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if envelope.Status == "" || envelope.Status == "1" {
		return nil
	}

	// For rejected requests the result member is usually a plain string
	// with detail, e.g. "Invalid API Key".
	var detail string
	_ = json.Unmarshal(envelope.Result, &detail)
	return &apperrors.ExplorerRejectedError{Message: envelope.Message, Detail: detail}
}
