package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment variables read by Load.
const EnvPrefix = "PAPER_ASSISTANT"

type Config struct {
	Provider             string        `mapstructure:"provider" yaml:"provider"`
	Model                string        `mapstructure:"model" yaml:"model"`
	APIKey               string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL              string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Temperature          float64       `mapstructure:"temperature" yaml:"temperature"`
	TopP                 float64       `mapstructure:"top_p" yaml:"top_p"`
	TopK                 int           `mapstructure:"top_k" yaml:"top_k"`
	MaxOutputTokens      int           `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	ContentLimit         int           `mapstructure:"content_limit" yaml:"content_limit"`
	RequestsPerMinute    int           `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	SummaryCacheTTL      time.Duration `mapstructure:"summary_cache_ttl" yaml:"summary_cache_ttl"`
	SessionTTL           time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	MistralAPIKey        string        `mapstructure:"mistral_api_key" yaml:"mistral_api_key,omitempty"`
	Port                 string        `mapstructure:"port" yaml:"port"`
	AllowOrigins         []string      `mapstructure:"allow_origins" yaml:"allow_origins"`
	DefaultCitationStyle string        `mapstructure:"default_citation_style" yaml:"default_citation_style"`
	SearchTopK           int           `mapstructure:"search_top_k" yaml:"search_top_k"`
}

// Defaults registers default values on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("provider", "googleai")
	v.SetDefault("model", "gemini-1.5-flash")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("top_p", 0.95)
	v.SetDefault("top_k", 40)
	v.SetDefault("max_output_tokens", 1024)
	v.SetDefault("content_limit", 1000)
	v.SetDefault("requests_per_minute", 0)
	v.SetDefault("summary_cache_ttl", time.Hour)
	v.SetDefault("session_ttl", 2*time.Hour)
	v.SetDefault("port", "8081")
	v.SetDefault("allow_origins", []string{"*"})
	v.SetDefault("default_citation_style", "APA")
	v.SetDefault("search_top_k", 5)
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("mistral_api_key", "")
}

// New returns a viper instance wired to defaults and the environment.
// configFile is optional and falls back to $PAPER_ASSISTANT_CONFIG.
func New(configFile string) (*viper.Viper, error) {
	// It's okay if .env doesn't exist, as long as env vars are set
	_ = godotenv.Load()

	if configFile == "" {
		configFile = getEnv(EnvPrefix+"_CONFIG", "")
	}

	v := viper.New()
	Defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Well-known variables without the prefix.
	_ = v.BindEnv("port", EnvPrefix+"_PORT", "PORT")
	_ = v.BindEnv("mistral_api_key", EnvPrefix+"_MISTRAL_API_KEY", "MISTRAL_API_KEY")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// FromViper decodes v into a Config and fills in the provider API key from
// the provider's conventional variable when none was configured.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.Provider = strings.ToLower(cfg.Provider)
	if cfg.APIKey == "" {
		cfg.APIKey = getEnv(providerKeyEnv(cfg.Provider), "")
	}
	if cfg.APIKey == "" && (cfg.Provider == "googleai" || cfg.Provider == "genai") {
		cfg.APIKey = getEnv("GEMINI_API_KEY", "")
	}
	return cfg, nil
}

// Load reads .env, the optional config file and the environment.
func Load(configFile string) (*Config, error) {
	v, err := New(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

func providerKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	default:
		return "GOOGLE_API_KEY"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
