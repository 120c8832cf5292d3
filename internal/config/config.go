package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
	ContextPath string   `mapstructure:"CONTEXT_PATH"`

	OTLPLogsGRPCEnabled bool   `mapstructure:"OTLP_LOGS_GRPC_ENABLED"`
	OTLPLogsGRPCHost    string `mapstructure:"OTLP_LOGS_GRPC_HOST"`
	OTLPLogsHTTPEnabled bool   `mapstructure:"OTLP_LOGS_HTTP_ENABLED"`
	OTLPLogsHTTPHost    string `mapstructure:"OTLP_LOGS_HTTP_HOST"`
	OTLPLogsIntervalSec int    `mapstructure:"OTLP_LOGS_INTERVAL_SECONDS"`

	SelfDisclosureAttrs string `mapstructure:"SELF_DISCLOSURE_ATTRIBUTES"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("CONTEXT_PATH", "")
	v.SetDefault("OTLP_LOGS_GRPC_ENABLED", false)
	v.SetDefault("OTLP_LOGS_HTTP_ENABLED", false)
	v.SetDefault("OTLP_LOGS_INTERVAL_SECONDS", 60)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("CONTEXT_PATH")
	v.BindEnv("OTLP_LOGS_GRPC_ENABLED")
	v.BindEnv("OTLP_LOGS_GRPC_HOST")
	v.BindEnv("OTLP_LOGS_HTTP_ENABLED")
	v.BindEnv("OTLP_LOGS_HTTP_HOST")
	v.BindEnv("OTLP_LOGS_INTERVAL_SECONDS")
	v.BindEnv("SELF_DISCLOSURE_ATTRIBUTES")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.OTLPLogsIntervalSec <= 0 {
		return nil, fmt.Errorf("OTLP_LOGS_INTERVAL_SECONDS must be positive")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// NormalizedContextPath returns the configured path prefix with a leading
// slash and no trailing slash, or "" when unset. It is prepended to
// generated Location headers and the broadcast topic name.
func (c *Config) NormalizedContextPath() string {
	p := strings.TrimSpace(c.ContextPath)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

// SelfDisclosureAttributes parses the configured comma separated key=value
// list into a map. Entries without "=" are skipped.
func (c *Config) SelfDisclosureAttributes() map[string]string {
	attrs := make(map[string]string)
	for _, pair := range strings.Split(c.SelfDisclosureAttrs, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		attrs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return attrs
}
