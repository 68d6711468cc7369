package config

// Config holds optbench configuration.
// Loaded from config.yaml with OPTBENCH_ environment overrides.
type Config struct {
	APIKeys map[string]string `mapstructure:"api_keys" yaml:"api_keys"` // provider -> key, supports ${ENV_VAR} syntax
	Bench   BenchCfg          `mapstructure:"bench" yaml:"bench"`
	Catalog CatalogCfg        `mapstructure:"catalog" yaml:"catalog"`
	Shopify ShopifyCfg        `mapstructure:"shopify" yaml:"shopify"`
}

// BenchCfg sets benchmark run defaults.
type BenchCfg struct {
	Provider     string   `mapstructure:"provider" yaml:"provider"`         // "openrouter" or "openai"
	Model        string   `mapstructure:"model" yaml:"model"`               // model identifier for the provider
	Strategies   []string `mapstructure:"strategies" yaml:"strategies"`     // empty means all registered strategies
	RunsPerQuery int      `mapstructure:"runs_per_query" yaml:"runs_per_query"`
	ParseRetries int      `mapstructure:"parse_retries" yaml:"parse_retries"`
	Temperature  float64  `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens    int      `mapstructure:"max_tokens" yaml:"max_tokens"`
	RPM          int      `mapstructure:"rpm" yaml:"rpm"` // client-side requests-per-minute cap
	OutputDir    string   `mapstructure:"output_dir" yaml:"output_dir"`
}

// CatalogCfg locates the product cache.
type CatalogCfg struct {
	Path string `mapstructure:"path" yaml:"path"` // SQLite file path
}

// ShopifyCfg configures the product source for catalog sync.
type ShopifyCfg struct {
	ShopURL     string `mapstructure:"shop_url" yaml:"shop_url"`
	AccessToken string `mapstructure:"access_token" yaml:"access_token"` // supports ${ENV_VAR} syntax
	APIVersion  string `mapstructure:"api_version" yaml:"api_version"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIKeys: map[string]string{
			"openrouter": "${OPENROUTER_API_KEY}",
			"openai":     "${OPENAI_API_KEY}",
		},
		Bench: BenchCfg{
			Provider:     "openrouter",
			Model:        "openai/gpt-4o-mini",
			RunsPerQuery: 3,
			ParseRetries: 2,
			Temperature:  0.0,
			MaxTokens:    2000,
			RPM:          60,
			OutputDir:    "results",
		},
		Catalog: CatalogCfg{
			Path: "optbench.db",
		},
		Shopify: ShopifyCfg{
			AccessToken: "${SHOPIFY_ACCESS_TOKEN}",
		},
	}
}

// ResolveAPIKey returns the API key for a provider with ${ENV_VAR}
// references expanded. Empty when the provider is not configured.
func (c *Config) ResolveAPIKey(provider string) string {
	return ResolveEnvVars(c.APIKeys[provider])
}

// ResolveShopifyToken returns the Shopify access token with ${ENV_VAR}
// references expanded.
func (c *Config) ResolveShopifyToken() string {
	return ResolveEnvVars(c.Shopify.AccessToken)
}
