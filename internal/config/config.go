package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/simcheck/internal/domain"
)

// Config holds the simcheck configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	Database    DatabaseConfig    `yaml:"database"`
	Storage     StorageConfig     `yaml:"storage"`
	Index       IndexConfig       `yaml:"index"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Narrative   NarrativeConfig   `yaml:"narrative"`
	Similarity  SimilarityConfig  `yaml:"similarity"`
	Collections CollectionsConfig `yaml:"collections"`
	Gaps        GapsConfig        `yaml:"gaps"`
	Indexer     IndexerConfig     `yaml:"indexer"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Vector index drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverQdrant = "qdrant"
)

// DatabaseConfig holds vector index connection settings.
// Addrs and Password are used by redis/valkey, URL and APIKey by qdrant.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	URL              string   `yaml:"url"`
	APIKey           string   `yaml:"api_key"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds key layout settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// IndexConfig holds HNSW index settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"` // 0 = no expiry
}

// NarrativeConfig holds chat-completion settings for narrative analysis.
type NarrativeConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// SimilarityConfig holds report assembly settings.
type SimilarityConfig struct {
	TopK          int `yaml:"top_k"`
	NarrativeTopK int `yaml:"narrative_top_k"`
	DisplayChars  int `yaml:"display_chars"`
	Keywords      int `yaml:"keywords"`
	MatchKeywords int `yaml:"match_keywords"`
	SearchLimit   int `yaml:"search_limit"`
	CallTimeout   int `yaml:"call_timeout_sec"`
}

// CollectionsConfig maps source keys to vector index collections.
type CollectionsConfig struct {
	Default string            `yaml:"default"`
	Sources map[string]string `yaml:"sources"`
}

// GapsConfig holds gap analysis settings.
type GapsConfig struct {
	BatchSize           int     `yaml:"batch_size"`
	BatchDelayMs        int     `yaml:"batch_delay_ms"`
	Workers             int     `yaml:"workers"`
	CallTimeoutSec      int     `yaml:"call_timeout_sec"`
	SearchLimit         int     `yaml:"search_limit"`
	MinSimilarity       float64 `yaml:"min_similarity"`
	FunnelMinSimilarity float64 `yaml:"funnel_min_similarity"`
	TaxonomyDir         string  `yaml:"taxonomy_dir"`
	StorePath           string  `yaml:"store_path"`
}

// IndexerConfig holds batch indexing settings.
type IndexerConfig struct {
	BatchSize    int `yaml:"batch_size"`
	BatchDelayMs int `yaml:"batch_delay_ms"`
	MaxTokens    int `yaml:"max_tokens"`
}

// Load reads configuration from CONFIG_PATH or from config/<env>.yaml.
func Load(env string) (Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = findConfigPath(env)
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	c.applyHTTPDefaults()
	c.applyStoreDefaults()
	c.applyModelDefaults()
	c.applySimilarityDefaults()
	c.applyGapDefaults()
	c.applyIndexerDefaults()
}

func (c *Config) applyHTTPDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
}

func (c *Config) applyStoreDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "simcheck:"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Collections.Default == "" {
		c.Collections.Default = "froala_blogs"
	}
	if c.Collections.Sources == nil {
		c.Collections.Sources = map[string]string{
			"filestack": "filestack_blogs",
			"froala":    "froala_blogs",
		}
	}
}

func (c *Config) applyModelDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-large"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 3072
	}
	if c.Narrative.APIKey == "" {
		c.Narrative.APIKey = c.Embedding.APIKey
	}
	if c.Narrative.BaseURL == "" {
		c.Narrative.BaseURL = c.Embedding.BaseURL
	}
	if c.Narrative.Model == "" {
		c.Narrative.Model = "gpt-4o-mini"
	}
	if c.Narrative.MaxTokens <= 0 {
		c.Narrative.MaxTokens = 4000
	}
	if c.Narrative.Temperature <= 0 {
		c.Narrative.Temperature = 0.2
	}
}

func (c *Config) applySimilarityDefaults() {
	s := &c.Similarity
	if s.TopK <= 0 {
		s.TopK = 10
	}
	if s.NarrativeTopK <= 0 {
		s.NarrativeTopK = 3
	}
	if s.DisplayChars <= 0 {
		s.DisplayChars = 3000
	}
	if s.Keywords <= 0 {
		s.Keywords = 10
	}
	if s.MatchKeywords <= 0 {
		s.MatchKeywords = 5
	}
	if s.SearchLimit <= 0 {
		s.SearchLimit = 5
	}
	if s.CallTimeout <= 0 {
		s.CallTimeout = 60
	}
}

func (c *Config) applyGapDefaults() {
	// a negative delay disables pacing; zero means "use the default"
	g := &c.Gaps
	if g.BatchSize <= 0 {
		g.BatchSize = 10
	}
	if g.BatchDelayMs < 0 {
		g.BatchDelayMs = 0
	} else if g.BatchDelayMs == 0 {
		g.BatchDelayMs = 1000
	}
	if g.Workers <= 0 {
		g.Workers = g.BatchSize
	}
	if g.CallTimeoutSec <= 0 {
		g.CallTimeoutSec = 30
	}
	if g.SearchLimit <= 0 {
		g.SearchLimit = 5
	}
	if g.MinSimilarity <= 0 {
		g.MinSimilarity = 0.4
	}
	if g.FunnelMinSimilarity <= 0 {
		g.FunnelMinSimilarity = 0.3
	}
	if g.StorePath == "" {
		g.StorePath = "simcheck.db"
	}
}

func (c *Config) applyIndexerDefaults() {
	if c.Indexer.BatchSize <= 0 {
		c.Indexer.BatchSize = 5
	}
	if c.Indexer.BatchDelayMs < 0 {
		c.Indexer.BatchDelayMs = 0
	} else if c.Indexer.BatchDelayMs == 0 {
		c.Indexer.BatchDelayMs = 1000
	}
	if c.Indexer.MaxTokens <= 0 {
		c.Indexer.MaxTokens = 8000
	}
}

// Validate checks the configuration for correctness. Credentials are checked
// separately by RequireEmbedding and RequireNarrative.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverQdrant:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be one of redis, valkey, qdrant, got %q", c.Database.Driver)
	}
	if c.Gaps.MinSimilarity > 1 || c.Gaps.FunnelMinSimilarity > 1 {
		return fmt.Errorf("gaps similarity floors must be within (0, 1]")
	}
	if c.Similarity.NarrativeTopK > c.Similarity.TopK {
		return fmt.Errorf("similarity.narrative_top_k (%d) exceeds similarity.top_k (%d)",
			c.Similarity.NarrativeTopK, c.Similarity.TopK)
	}
	return nil
}

// RequireEmbedding fails with a ConfigurationError when the embedding
// credentials are missing or still a placeholder.
func (c *Config) RequireEmbedding() error {
	return requireSecret("embedding.api_key", c.Embedding.APIKey)
}

// RequireNarrative is RequireEmbedding for the narrative model.
func (c *Config) RequireNarrative() error {
	return requireSecret("narrative.api_key", c.Narrative.APIKey)
}

// RequireQdrant checks the Qdrant API key when the qdrant driver is selected.
// Local Qdrant without auth is allowed when the key is empty.
func (c *Config) RequireQdrant() error {
	if c.Database.Driver != DriverQdrant || c.Database.APIKey == "" {
		return nil
	}
	return requireSecret("database.api_key", c.Database.APIKey)
}

// CollectionFor maps a source key to its collection, falling back to the default.
func (c *Config) CollectionFor(source string) string {
	if name, ok := c.Collections.Sources[source]; ok && name != "" {
		return name
	}
	return c.Collections.Default
}

// IndexerBatchDelay returns the pause between indexer batches.
func (c *Config) IndexerBatchDelay() time.Duration {
	return time.Duration(c.Indexer.BatchDelayMs) * time.Millisecond
}

// GapBatchDelay returns the inter-batch delay for gap analysis.
func (c *Config) GapBatchDelay() time.Duration {
	return time.Duration(c.Gaps.BatchDelayMs) * time.Millisecond
}

var placeholderRegex = regexp.MustCompile(`(?i)^(your[-_].*|.*[-_]here|changeme|<.*>)$`)

func requireSecret(key, value string) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return domain.NewConfigurationError(key, "")
	}
	if placeholderRegex.MatchString(v) {
		return domain.NewConfigurationError(key, "is a placeholder value")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
