package config

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/simcheck/internal/domain"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "bad port",
			mutate: func(c *Config) { c.HTTP.Port = 70000 },
			want:   "http.port must be between 1 and 65535, got 70000",
		},
		{
			name:   "redis without addrs",
			mutate: func(c *Config) { c.Database.Addrs = nil },
			want:   `database.addrs is required for driver "redis"`,
		},
		{
			name:   "qdrant without url",
			mutate: func(c *Config) { c.Database.Driver = DriverQdrant },
			want:   `database.url is required for driver "qdrant"`,
		},
		{
			name:   "unknown driver",
			mutate: func(c *Config) { c.Database.Driver = "mongo" },
			want:   `database.driver must be one of redis, valkey, qdrant, got "mongo"`,
		},
		{
			name:   "floor above one",
			mutate: func(c *Config) { c.Gaps.MinSimilarity = 1.5 },
			want:   "gaps similarity floors must be within (0, 1]",
		},
		{
			name:   "narrative top k too large",
			mutate: func(c *Config) { c.Similarity.NarrativeTopK = 20 },
			want:   "similarity.narrative_top_k (20) exceeds similarity.top_k (10)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.want {
				t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Embedding: EmbeddingConfig{APIKey: "sk-live", BaseURL: "https://api.openai.com/v1"}}
	cfg.ApplyDefaults()

	if cfg.Gaps.BatchSize != 10 || cfg.Gaps.BatchDelayMs != 1000 || cfg.Gaps.Workers != 10 {
		t.Errorf("gap defaults = %+v", cfg.Gaps)
	}
	if cfg.Gaps.MinSimilarity != 0.4 || cfg.Gaps.FunnelMinSimilarity != 0.3 {
		t.Errorf("floor defaults = %v/%v", cfg.Gaps.MinSimilarity, cfg.Gaps.FunnelMinSimilarity)
	}
	if cfg.Similarity.TopK != 10 || cfg.Similarity.NarrativeTopK != 3 || cfg.Similarity.DisplayChars != 3000 {
		t.Errorf("similarity defaults = %+v", cfg.Similarity)
	}
	if cfg.Narrative.APIKey != "sk-live" || cfg.Narrative.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("narrative should inherit embedding credentials: %+v", cfg.Narrative)
	}
	if cfg.Narrative.Model != "gpt-4o-mini" || cfg.Narrative.MaxTokens != 4000 {
		t.Errorf("narrative defaults = %+v", cfg.Narrative)
	}
	if cfg.Embedding.Dimensions != 3072 || cfg.Embedding.Model != "text-embedding-3-large" {
		t.Errorf("embedding defaults = %+v", cfg.Embedding)
	}
	if cfg.Indexer.BatchSize != 5 || cfg.Indexer.MaxTokens != 8000 {
		t.Errorf("indexer defaults = %+v", cfg.Indexer)
	}
}

func TestApplyDefaults_NegativeDelayDisablesPacing(t *testing.T) {
	cfg := Config{Gaps: GapsConfig{BatchDelayMs: -1}}
	cfg.ApplyDefaults()
	if cfg.GapBatchDelay() != 0 {
		t.Errorf("delay = %v", cfg.GapBatchDelay())
	}
}

func TestRequireEmbedding(t *testing.T) {
	for _, key := range []string{"", "  ", "your-openai-api-key-here", "your_api_key", "changeme", "<api-key>"} {
		cfg := Config{Embedding: EmbeddingConfig{APIKey: key}}
		err := cfg.RequireEmbedding()
		if !errors.Is(err, domain.ErrNotConfigured) {
			t.Errorf("key %q: expected ErrNotConfigured, got %v", key, err)
		}
	}
	cfg := Config{Embedding: EmbeddingConfig{APIKey: "sk-proj-abc123"}}
	if err := cfg.RequireEmbedding(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireQdrant(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = DriverQdrant
	if err := cfg.RequireQdrant(); err != nil {
		t.Errorf("empty key should be allowed for local qdrant: %v", err)
	}
	cfg.Database.APIKey = "your-qdrant-api-key-here"
	if err := cfg.RequireQdrant(); !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCollectionFor(t *testing.T) {
	cfg := validConfig()
	if got := cfg.CollectionFor("filestack"); got != "filestack_blogs" {
		t.Errorf("filestack -> %s", got)
	}
	if got := cfg.CollectionFor("anything"); got != "froala_blogs" {
		t.Errorf("fallback -> %s", got)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("SIMCHECK_TEST_PORT", "9090")
	t.Setenv("SIMCHECK_TEST_KEY", "")
	data := []byte(`
http:
  port: ${SIMCHECK_TEST_PORT}
database:
  addrs: ["${SIMCHECK_TEST_ADDR:-localhost:6380}"]
embedding:
  api_key: ${SIMCHECK_TEST_KEY:-sk-default}
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(): %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Database.Addrs[0] != "localhost:6380" {
		t.Errorf("addr = %s", cfg.Database.Addrs[0])
	}
	if cfg.Embedding.APIKey != "sk-default" {
		t.Errorf("api key = %s", cfg.Embedding.APIKey)
	}
}
