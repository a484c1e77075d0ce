package usecase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solclone/internal/pkg/apperrors"
)

// sourceBody builds a getsourcecode response body with one result entry.
func sourceBody(t *testing.T, entry map[string]string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"status":  "1",
		"message": "OK",
		"result":  []map[string]string{entry},
	})
	require.NoError(t, err)
	return b
}

func TestNormalizeFlatSource(t *testing.T) {
	const flat = "pragma solidity ^0.8.0;\ncontract Greeter {}\n"
	body := sourceBody(t, map[string]string{
		"SourceCode":      flat,
		"ContractName":    "Greeter",
		"CompilerVersion": "v0.8.19+commit.7dd6d404",
	})

	src, err := Normalize(body)
	require.NoError(t, err)
	require.Len(t, src.Files, 1)
	assert.Equal(t, "Greeter.sol", src.Files[0].RelativePath)
	assert.Equal(t, flat, src.Files[0].Contents)
	assert.Equal(t, "Greeter", src.ContractName)
	assert.Equal(t, "v0.8.19+commit.7dd6d404", src.CompilerVersion)
	assert.False(t, src.Proxy)
}

func TestNormalizeFlatSourceWithoutName(t *testing.T) {
	body := sourceBody(t, map[string]string{"SourceCode": "pragma solidity ^0.8.0;"})

	src, err := Normalize(body)
	require.NoError(t, err)
	require.Len(t, src.Files, 1)
	assert.Equal(t, "Contract.sol", src.Files[0].RelativePath)
}

func TestNormalizeMultiFileMap(t *testing.T) {
	body := sourceBody(t, map[string]string{
		"SourceCode":   `{"A.sol":{"content":"contract A{}"},"B.sol":{"content":"contract B{}"}}`,
		"ContractName": "A",
	})

	src, err := Normalize(body)
	require.NoError(t, err)
	require.Len(t, src.Files, 2)
	assert.Equal(t, "A.sol", src.Files[0].RelativePath)
	assert.Equal(t, "contract A{}", src.Files[0].Contents)
	assert.Equal(t, "B.sol", src.Files[1].RelativePath)
	assert.Equal(t, "contract B{}", src.Files[1].Contents)
}

func TestNormalizeStandardInputDoubleBraced(t *testing.T) {
	body := sourceBody(t, map[string]string{
		"SourceCode":   `{{"language":"Solidity","sources":{"contracts/Token.sol":{"content":"contract Token{}"},"contracts/lib/Math.sol":{"content":"library Math{}"}},"settings":{"optimizer":{"enabled":true,"runs":200}}}}`,
		"ContractName": "Token",
	})

	src, err := Normalize(body)
	require.NoError(t, err)
	require.Len(t, src.Files, 2)
	assert.Equal(t, "contracts/Token.sol", src.Files[0].RelativePath)
	assert.Equal(t, "contracts/lib/Math.sol", src.Files[1].RelativePath)
	assert.Equal(t, "library Math{}", src.Files[1].Contents)
}

func TestNormalizePreservesPayloadOrder(t *testing.T) {
	// Keys chosen so that any sort would reorder them.
	body := sourceBody(t, map[string]string{
		"SourceCode": `{"z/Last.sol":{"content":"z"},"a/First.sol":{"content":"a"},"m/Mid.sol":{"content":"m"}}`,
	})

	src, err := Normalize(body)
	require.NoError(t, err)
	require.Len(t, src.Files, 3)
	assert.Equal(t, "z/Last.sol", src.Files[0].RelativePath)
	assert.Equal(t, "a/First.sol", src.Files[1].RelativePath)
	assert.Equal(t, "m/Mid.sol", src.Files[2].RelativePath)
}

func TestNormalizeTraversalPathRejected(t *testing.T) {
	body := sourceBody(t, map[string]string{
		"SourceCode": `{"../../evil.sol":{"content":"contract Evil{}"}}`,
	})

	_, err := Normalize(body)
	assert.ErrorIs(t, err, apperrors.ErrUnsafePath)

	var unsafeErr *apperrors.UnsafePathError
	require.ErrorAs(t, err, &unsafeErr)
	assert.Equal(t, "../../evil.sol", unsafeErr.Path)
}

func TestNormalizeAbsolutePathRejected(t *testing.T) {
	body := sourceBody(t, map[string]string{
		"SourceCode": `{"/etc/evil.sol":{"content":"contract Evil{}"}}`,
	})

	_, err := Normalize(body)
	assert.ErrorIs(t, err, apperrors.ErrUnsafePath)
}

func TestNormalizeCleansDotSegments(t *testing.T) {
	body := sourceBody(t, map[string]string{
		"SourceCode": `{"./contracts/./A.sol":{"content":"contract A{}"}}`,
	})

	src, err := Normalize(body)
	require.NoError(t, err)
	require.Len(t, src.Files, 1)
	assert.Equal(t, "contracts/A.sol", src.Files[0].RelativePath)
}

func TestNormalizeEmptyResultArray(t *testing.T) {
	body := []byte(`{"status":"1","message":"OK","result":[]}`)

	_, err := Normalize(body)
	assert.ErrorIs(t, err, apperrors.ErrEmptySource)
}

func TestNormalizeEmptySourceCode(t *testing.T) {
	body := sourceBody(t, map[string]string{"SourceCode": "", "ContractName": "Ghost"})

	_, err := Normalize(body)
	assert.ErrorIs(t, err, apperrors.ErrEmptySource)
}

func TestNormalizeEmptyNestedSources(t *testing.T) {
	body := sourceBody(t, map[string]string{
		"SourceCode": `{"language":"Solidity","sources":{}}`,
	})

	_, err := Normalize(body)
	assert.ErrorIs(t, err, apperrors.ErrEmptySource)
}

func TestNormalizeMalformedBody(t *testing.T) {
	_, err := Normalize([]byte("<html>not json</html>"))
	assert.ErrorIs(t, err, apperrors.ErrMalformedEnvelope)
}

func TestNormalizeNonArrayResult(t *testing.T) {
	body := []byte(`{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`)

	_, err := Normalize(body)
	assert.ErrorIs(t, err, apperrors.ErrMalformedEnvelope)
}

func TestNormalizeBracedButNotJSONFallsBackToFlat(t *testing.T) {
	// A source that happens to start with a brace but is not a nested
	// document must survive as flat source.
	const weird = "{ this is not json but still the whole source }"
	body := sourceBody(t, map[string]string{
		"SourceCode":   weird,
		"ContractName": "Odd",
	})

	src, err := Normalize(body)
	require.NoError(t, err)
	require.Len(t, src.Files, 1)
	assert.Equal(t, "Odd.sol", src.Files[0].RelativePath)
	assert.Equal(t, weird, src.Files[0].Contents)
}

func TestNormalizeProxyMetadata(t *testing.T) {
	body := sourceBody(t, map[string]string{
		"SourceCode":     "contract Proxy {}",
		"ContractName":   "Proxy",
		"Proxy":          "1",
		"Implementation": "0x000000000000000000000000000000000000dEaD",
	})

	src, err := Normalize(body)
	require.NoError(t, err)
	assert.True(t, src.Proxy)
	assert.Equal(t, "0x000000000000000000000000000000000000dEaD", src.Implementation)
}
