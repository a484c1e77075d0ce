package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solclone/internal/config"
	"solclone/internal/entity"
	"solclone/internal/pkg/apperrors"
)

const testAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

func newTestRepo(timeout time.Duration) *etherscanRepo {
	repo := NewEtherscanRepo(config.ExplorerConfig{RequestTimeout: timeout}, zap.NewNop())
	return repo.(*etherscanRepo)
}

func chainConfigFor(serverURL string) entity.ChainConfig {
	return entity.ChainConfig{
		Alias:   "eth",
		Name:    "Ethereum",
		ChainID: 1,
		APIURL:  serverURL,
	}
}

func TestFetchSourceSuccess(t *testing.T) {
	const body = `{"status":"1","message":"OK","result":[{"SourceCode":"contract A{}","ContractName":"A"}]}`

	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"chainid": r.URL.Query().Get("chainid"),
			"module":  r.URL.Query().Get("module"),
			"action":  r.URL.Query().Get("action"),
			"address": r.URL.Query().Get("address"),
			"apikey":  r.URL.Query().Get("apikey"),
		}
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	repo := newTestRepo(5 * time.Second)
	resp, err := repo.FetchSource(context.Background(), chainConfigFor(server.URL), testAddress, "secret")
	require.NoError(t, err)
	assert.Equal(t, body, string(resp.Body))

	assert.Equal(t, "1", gotQuery["chainid"])
	assert.Equal(t, "contract", gotQuery["module"])
	assert.Equal(t, "getsourcecode", gotQuery["action"])
	assert.Equal(t, testAddress, gotQuery["address"])
	assert.Equal(t, "secret", gotQuery["apikey"])
}

func TestFetchSourceInvalidAddress(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	repo := newTestRepo(5 * time.Second)
	for _, address := range []string{"", "vitalik.eth", "0x1234", "5FbDB2315678afecb367f032d93F642f64180aa3zzzz"} {
		_, err := repo.FetchSource(context.Background(), chainConfigFor(server.URL), address, "secret")
		assert.ErrorIs(t, err, apperrors.ErrInvalidAddress, "address %q", address)
	}
	assert.Zero(t, hits, "invalid addresses never reach the network")
}

func TestFetchSourceExplorerRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"0","message":"NOTOK","result":"Invalid API Key"}`))
	}))
	defer server.Close()

	repo := newTestRepo(5 * time.Second)
	_, err := repo.FetchSource(context.Background(), chainConfigFor(server.URL), testAddress, "bad")
	assert.ErrorIs(t, err, apperrors.ErrExplorerRejected)

	var rejected *apperrors.ExplorerRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "NOTOK", rejected.Message)
	assert.Equal(t, "Invalid API Key", rejected.Detail)
}

func TestFetchSourceHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	repo := newTestRepo(5 * time.Second)
	_, err := repo.FetchSource(context.Background(), chainConfigFor(server.URL), testAddress, "secret")
	assert.ErrorIs(t, err, apperrors.ErrNetwork)
	assert.NotErrorIs(t, err, apperrors.ErrExplorerRejected)
}

func TestFetchSourceTransportFailure(t *testing.T) {
	// Nothing listens here.
	cfg := chainConfigFor("http://127.0.0.1:1")

	repo := newTestRepo(2 * time.Second)
	_, err := repo.FetchSource(context.Background(), cfg, testAddress, "secret")
	assert.ErrorIs(t, err, apperrors.ErrNetwork)
}

func TestFetchSourceTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	repo := newTestRepo(50 * time.Millisecond)
	_, err := repo.FetchSource(context.Background(), chainConfigFor(server.URL), testAddress, "secret")
	assert.ErrorIs(t, err, apperrors.ErrNetwork)
}
