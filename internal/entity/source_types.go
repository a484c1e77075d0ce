package entity

import "encoding/json"

// ExplorerResponse is the raw body of one getsourcecode call. It is owned by
// the explorer client until handed to the normalizer; nothing retains it
// afterward.
type ExplorerResponse struct {
	Body []byte
}

// ExplorerEnvelope is the outer JSON envelope every Etherscan-family API
// wraps its answers in. Result is kept raw because its shape depends on the
// requested action.
type ExplorerEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// ContractEntry is one element of the getsourcecode result array. The schema
// is owned by the explorer; fields not consumed here are dropped on decode.
type ContractEntry struct {
	SourceCode           string `json:"SourceCode"`
	ABI                  string `json:"ABI"`
	ContractName         string `json:"ContractName"`
	CompilerVersion      string `json:"CompilerVersion"`
	OptimizationUsed     string `json:"OptimizationUsed"`
	Runs                 string `json:"Runs"`
	EVMVersion           string `json:"EVMVersion"`
	LicenseType          string `json:"LicenseType"`
	Proxy                string `json:"Proxy"`
	Implementation       string `json:"Implementation"`
	ConstructorArguments string `json:"ConstructorArguments"`
}

// SourceFile is one compilation unit of the fetched contract. RelativePath is
// always slash-separated and local to the project's sources directory.
type SourceFile struct {
	RelativePath string `json:"path"`
	Contents     string `json:"-"`
}

// ContractSource is the normalized outcome of one fetch: the ordered source
// files plus the metadata the explorer asserted about them. Order follows the
// explorer payload's enumeration order so output is deterministic.
type ContractSource struct {
	ContractName    string       `json:"contractName"`
	CompilerVersion string       `json:"compilerVersion,omitempty"`
	LicenseType     string       `json:"licenseType,omitempty"`
	Proxy           bool         `json:"proxy"`
	Implementation  string       `json:"implementation,omitempty"`
	Files           []SourceFile `json:"files"`
}
