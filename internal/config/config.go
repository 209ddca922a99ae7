// Package config loads datascout settings from an optional YAML file,
// DATASCOUT_* environment variables and the usual provider credential variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"datascout/internal/artifact"
	"datascout/internal/search"
)

type Config struct {
	DataDir     string            `mapstructure:"data_dir"`
	Artifact    ArtifactConfig    `mapstructure:"artifact"`
	Scrape      ScrapeConfig      `mapstructure:"scrape"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Search      SearchConfig      `mapstructure:"search"`
	Kaggle      KaggleConfig      `mapstructure:"kaggle"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
}

type ArtifactConfig struct {
	Backend     string   `mapstructure:"backend"`
	S3          S3Config `mapstructure:"s3"`
	PostgresDSN string   `mapstructure:"postgres_dsn"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type ScrapeConfig struct {
	Reader      string        `mapstructure:"reader"`
	JinaBaseURL string        `mapstructure:"jina_base_url"`
	JinaAPIKey  string        `mapstructure:"jina_api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float32 `mapstructure:"temperature"`
	RPS         float64 `mapstructure:"rps"`
	Burst       int     `mapstructure:"burst"`
	MaxAttempts int     `mapstructure:"max_attempts"`
}

type SearchConfig struct {
	Sources               []string      `mapstructure:"sources"`
	MaxKeywordsPerUseCase int           `mapstructure:"max_keywords_per_use_case"`
	MaxResultsPerKeyword  int           `mapstructure:"max_results_per_keyword"`
	Workers               int           `mapstructure:"workers"`
	RPS                   float64       `mapstructure:"rps"`
	Burst                 int           `mapstructure:"burst"`
	MaxAttempts           int           `mapstructure:"max_attempts"`
	BaseDelay             time.Duration `mapstructure:"base_delay"`
	CacheSize             int           `mapstructure:"cache_size"`
	Timeout               time.Duration `mapstructure:"timeout"`
	// KeywordTimeout bounds one keyword search including retries and catalog
	// fan-out. 0 derives it from Timeout, MaxAttempts, BaseDelay and RPS.
	KeywordTimeout time.Duration `mapstructure:"keyword_timeout"`
}

// defaultBaseDelay mirrors the retry package default applied when BaseDelay is unset.
const defaultBaseDelay = 300 * time.Millisecond

// KeywordDeadline is the per-keyword budget handed to the aggregation engine.
// It must outlast every retry of a single HTTP attempt, otherwise a timed-out
// attempt also expires the keyword and retries never run.
func (s SearchConfig) KeywordDeadline() time.Duration {
	if s.KeywordTimeout > 0 {
		return s.KeywordTimeout
	}
	if s.Timeout <= 0 {
		return 0
	}
	attempts := max(s.MaxAttempts, 1)
	delay := s.BaseDelay
	if delay <= 0 {
		delay = defaultBaseDelay
	}
	total := s.Timeout * time.Duration(attempts)
	for i := 0; i < attempts-1; i++ {
		total += delay * time.Duration(1<<i)
	}
	if s.RPS > 0 {
		total += time.Duration(float64(attempts) * float64(time.Second) / s.RPS)
	}
	return total
}

type KaggleConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Username string `mapstructure:"username"`
	Key      string `mapstructure:"key"`
}

type HuggingFaceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

const (
	ReaderJina   = "jina"
	ReaderDirect = "direct"

	ProviderGemini = "gemini"
	ProviderFake   = "fake"

	SourceKaggle      = "kaggle"
	SourceHuggingFace = "huggingface"
)

// Load reads .env, then cfgFile (or datascout.yaml in the working directory
// or ~/.config/datascout when cfgFile is empty), then the environment.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("datascout")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/datascout")
	}
	v.SetEnvPrefix("DATASCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	applyCredentialEnv(&cfg)
	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")

	v.SetDefault("artifact.backend", artifact.BackendFile)
	v.SetDefault("artifact.s3.region", "us-east-1")
	v.SetDefault("artifact.s3.bucket", "datascout-artifacts")
	v.SetDefault("artifact.s3.use_ssl", true)

	v.SetDefault("scrape.reader", ReaderJina)
	v.SetDefault("scrape.jina_base_url", "https://r.jina.ai")
	v.SetDefault("scrape.timeout", 60*time.Second)

	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.temperature", 0.67)
	v.SetDefault("llm.rps", 1.0)
	v.SetDefault("llm.burst", 1)
	v.SetDefault("llm.max_attempts", 3)

	v.SetDefault("search.sources", []string{SourceKaggle})
	v.SetDefault("search.max_keywords_per_use_case", 4)
	v.SetDefault("search.max_results_per_keyword", 1)
	v.SetDefault("search.workers", 1)
	v.SetDefault("search.rps", 2.0)
	v.SetDefault("search.burst", 1)
	v.SetDefault("search.max_attempts", 3)
	v.SetDefault("search.base_delay", 500*time.Millisecond)
	v.SetDefault("search.cache_size", 256)
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.keyword_timeout", 0)

	v.SetDefault("kaggle.base_url", search.DefaultKaggleBaseURL)
	v.SetDefault("huggingface.base_url", search.DefaultHuggingFaceBaseURL)
}

// applyCredentialEnv fills secrets from the provider-native variable names
// when they were not set through the config file or DATASCOUT_* variables.
func applyCredentialEnv(cfg *Config) {
	cfg.LLM.APIKey = firstNonEmpty(cfg.LLM.APIKey, env("GEMINI_API_KEY"), env("GOOGLE_API_KEY"))
	cfg.Scrape.JinaAPIKey = firstNonEmpty(cfg.Scrape.JinaAPIKey, env("JINA_API_KEY"))
	cfg.Kaggle.Username = firstNonEmpty(cfg.Kaggle.Username, env("KAGGLE_USERNAME"))
	cfg.Kaggle.Key = firstNonEmpty(cfg.Kaggle.Key, env("KAGGLE_KEY"))
	if cfg.Kaggle.Username == "" || cfg.Kaggle.Key == "" {
		if home, err := os.UserHomeDir(); err == nil {
			if user, key, err := search.LoadKaggleCredentials(filepath.Join(home, ".kaggle", "kaggle.json")); err == nil {
				cfg.Kaggle.Username = firstNonEmpty(cfg.Kaggle.Username, user)
				cfg.Kaggle.Key = firstNonEmpty(cfg.Kaggle.Key, key)
			}
		}
	}
	cfg.HuggingFace.Token = firstNonEmpty(cfg.HuggingFace.Token, env("HF_TOKEN"))

	s3 := &cfg.Artifact.S3
	s3.Endpoint = firstNonEmpty(s3.Endpoint, env("ARTIFACT_S3_ENDPOINT"))
	s3.Region = firstNonEmpty(env("ARTIFACT_S3_REGION"), s3.Region)
	s3.AccessKey = firstNonEmpty(s3.AccessKey, env("ARTIFACT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER"))
	s3.SecretKey = firstNonEmpty(s3.SecretKey, env("ARTIFACT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD"))
	s3.Bucket = firstNonEmpty(env("ARTIFACT_S3_BUCKET"), s3.Bucket)
	if raw := env("ARTIFACT_S3_USE_SSL"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			s3.UseSSL = b
		}
	}
	cfg.Artifact.PostgresDSN = firstNonEmpty(cfg.Artifact.PostgresDSN, env("ARTIFACT_PG_DSN"))
}

func normalize(cfg *Config) {
	cfg.Artifact.Backend = strings.ToLower(strings.TrimSpace(cfg.Artifact.Backend))
	cfg.Scrape.Reader = strings.ToLower(strings.TrimSpace(cfg.Scrape.Reader))
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	sources := make([]string, 0, len(cfg.Search.Sources))
	for _, s := range cfg.Search.Sources {
		// viper hands env-provided lists over as a single comma separated value
		for _, part := range strings.Split(s, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				sources = append(sources, part)
			}
		}
	}
	cfg.Search.Sources = sources
}

func validate(cfg *Config) error {
	switch cfg.Artifact.Backend {
	case artifact.BackendFile, artifact.BackendMemory, artifact.BackendS3, artifact.BackendPostgres:
	default:
		return fmt.Errorf("invalid artifact backend: %s (must be file, memory, s3 or postgres)", cfg.Artifact.Backend)
	}
	if cfg.Artifact.Backend == artifact.BackendFile && strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("data_dir is required for the file artifact backend")
	}
	if cfg.Scrape.Reader != ReaderJina && cfg.Scrape.Reader != ReaderDirect {
		return fmt.Errorf("invalid scrape reader: %s (must be jina or direct)", cfg.Scrape.Reader)
	}
	if cfg.LLM.Provider != ProviderGemini && cfg.LLM.Provider != ProviderFake {
		return fmt.Errorf("invalid llm provider: %s (must be gemini or fake)", cfg.LLM.Provider)
	}
	if len(cfg.Search.Sources) == 0 {
		return fmt.Errorf("search.sources must name at least one catalog")
	}
	for _, s := range cfg.Search.Sources {
		if s != SourceKaggle && s != SourceHuggingFace {
			return fmt.Errorf("invalid search source: %s (must be kaggle or huggingface)", s)
		}
	}
	if cfg.Search.MaxKeywordsPerUseCase < 1 {
		return fmt.Errorf("search.max_keywords_per_use_case must be at least 1")
	}
	if cfg.Search.MaxResultsPerKeyword < 1 {
		return fmt.Errorf("search.max_results_per_keyword must be at least 1")
	}
	if cfg.Search.Workers < 1 {
		return fmt.Errorf("search.workers must be at least 1")
	}
	if cfg.Search.KeywordTimeout > 0 && cfg.Search.Timeout > 0 && cfg.Search.KeywordTimeout < cfg.Search.Timeout {
		return fmt.Errorf("search.keyword_timeout must not be shorter than search.timeout")
	}
	return nil
}

// ArtifactStore returns the artifact.Config for the selected backend.
func (c *Config) ArtifactStore() artifact.Config {
	s3 := c.Artifact.S3
	return artifact.Config{
		Backend: c.Artifact.Backend,
		Dir:     c.DataDir,
		S3: artifact.S3Config{
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.Bucket,
			UseSSL:    s3.UseSSL,
		},
		PostgresDSN: c.Artifact.PostgresDSN,
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
