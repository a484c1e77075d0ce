package entity

// ChainConfig holds everything needed to query one chain's block explorer.
type ChainConfig struct {
	Alias     string `yaml:"alias"`
	Name      string `yaml:"name"`
	ChainID   int64  `yaml:"chainId"`
	APIURL    string `yaml:"apiUrl"`
	APIKeyEnv string `yaml:"apiKeyEnv"`
}
