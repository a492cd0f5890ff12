package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "shoreline/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Defaults for the E-utilities client.
const (
	DefaultEutilsBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultTool          = "shoreline"
	DefaultMinInterval   = 350 * time.Millisecond
	DefaultBatchSize     = 10
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultUserAgent     = "shoreline/0.1"
)

// EutilsConfig holds settings for the NCBI E-utilities client.
type EutilsConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities endpoint root.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is an optional NCBI API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Tool and Email identify the caller to NCBI.
	Tool  string `json:"tool" yaml:"tool" mapstructure:"tool"`
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// MinInterval is the minimum delay between any two calls (default 350ms).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval" mapstructure:"min_interval"`

	// BatchSize caps the PMIDs per efetch call (default 10).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`

	// Sort is the esearch sort order (default "relevance").
	Sort string `json:"sort" yaml:"sort" mapstructure:"sort"`
}

// DefaultEutilsConfig returns an EutilsConfig with every default applied.
func DefaultEutilsConfig() EutilsConfig {
	var c EutilsConfig
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero fields with defaults.
func (c *EutilsConfig) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultEutilsBaseURL
	}
	if c.Tool == "" {
		c.Tool = DefaultTool
	}
	if c.MinInterval <= 0 {
		c.MinInterval = DefaultMinInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Sort == "" {
		c.Sort = "relevance"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultHTTPTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// CacheBackend selects the record cache implementation.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
	CacheRedis  CacheBackend = "redis"
)

// DefaultCacheMaxEntries bounds the cache unless configured otherwise.
const DefaultCacheMaxEntries = 50000

// CacheConfig holds settings for the record cache.
type CacheConfig struct {
	Backend CacheBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the SQLite database file (default "shoreline.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// RedisURL is a redis:// URL used by the redis backend.
	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty" mapstructure:"redis_url"`

	// KeyPrefix namespaces redis keys (default "shoreline:record:").
	KeyPrefix string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty" mapstructure:"key_prefix"`

	// MaxEntries bounds the memory and sqlite backends; oldest entries are
	// evicted first. Negative disables the bound.
	MaxEntries int `json:"max_entries" yaml:"max_entries" mapstructure:"max_entries"`

	// TTL expires redis entries. Zero keeps them indefinitely.
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// ApplyDefaults fills zero fields with defaults.
func (c *CacheConfig) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = CacheSQLite
	}
	if c.Path == "" {
		c.Path = "shoreline.db"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "shoreline:record:"
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultCacheMaxEntries
	}
}

// RankConfig holds the composite scoring constants. The position score for
// a 0-based position p is max(PositionFloor, PositionCeiling - min(p+1, PositionCap)).
type RankConfig struct {
	OverlapWeight    int `json:"overlap_weight" yaml:"overlap_weight" mapstructure:"overlap_weight"`
	PositionCeiling  int `json:"position_ceiling" yaml:"position_ceiling" mapstructure:"position_ceiling"`
	PositionFloor    int `json:"position_floor" yaml:"position_floor" mapstructure:"position_floor"`
	PositionCap      int `json:"position_cap" yaml:"position_cap" mapstructure:"position_cap"`
	PerStrategyLimit int `json:"per_strategy_limit" yaml:"per_strategy_limit" mapstructure:"per_strategy_limit"`

	// Cap is the maximum number of ranked records returned (default 12).
	Cap int `json:"cap" yaml:"cap" mapstructure:"cap"`
}

// DefaultRankConfig returns the standard ranking constants.
func DefaultRankConfig() RankConfig {
	return RankConfig{
		OverlapWeight:    3,
		PositionCeiling:  6,
		PositionFloor:    1,
		PositionCap:      5,
		PerStrategyLimit: 10,
		Cap:              12,
	}
}

// ApplyDefaults fills the scoring constants only when all four are zero, so
// an explicit zero weight or floor survives alongside the other constants.
// PerStrategyLimit and Cap are defaulted whenever they are not positive.
func (c *RankConfig) ApplyDefaults() {
	d := DefaultRankConfig()
	if c.OverlapWeight == 0 && c.PositionCeiling == 0 && c.PositionFloor == 0 && c.PositionCap == 0 {
		c.OverlapWeight = d.OverlapWeight
		c.PositionCeiling = d.PositionCeiling
		c.PositionFloor = d.PositionFloor
		c.PositionCap = d.PositionCap
	}
	if c.PerStrategyLimit <= 0 {
		c.PerStrategyLimit = d.PerStrategyLimit
	}
	if c.Cap <= 0 {
		c.Cap = d.Cap
	}
}

// LLMConfig holds settings for the OpenAI-compatible generative endpoint.
type LLMConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Model is the model identifier sent with each request.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// MaxTokens bounds each completion (default 2048).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ApplyDefaults fills zero fields with defaults.
func (c *LLMConfig) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-4o"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2048
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output is stderr or stdout.
	Output string `json:"output" yaml:"output" mapstructure:"output"`
}

// MetricsConfig holds Prometheus export settings.
type MetricsConfig struct {
	// TextfilePath, when set, receives the metrics in text exposition
	// format at the end of each command.
	TextfilePath string `json:"textfile_path,omitempty" yaml:"textfile_path,omitempty" mapstructure:"textfile_path"`
}

// Config is the full shoreline configuration.
type Config struct {
	Eutils  EutilsConfig  `json:"eutils" yaml:"eutils" mapstructure:"eutils"`
	Cache   CacheConfig   `json:"cache" yaml:"cache" mapstructure:"cache"`
	Rank    RankConfig    `json:"rank" yaml:"rank" mapstructure:"rank"`
	LLM     LLMConfig     `json:"llm" yaml:"llm" mapstructure:"llm"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills zero fields in every section.
func (c *Config) ApplyDefaults() {
	c.Eutils.ApplyDefaults()
	c.Cache.ApplyDefaults()
	c.Rank.ApplyDefaults()
	c.LLM.ApplyDefaults()
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
}
