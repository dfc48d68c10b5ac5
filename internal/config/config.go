package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Slack    SlackConfig
	Ingest   IngestConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type StorageConfig struct {
	// TTL is configured in milliseconds.
	TTL           time.Duration
	SweepInterval time.Duration
	DataDir       string
}

// TTLSeconds converts TTL to whole seconds, rounding down, for backends
// with second-granularity expiry. It never returns less than 1.
func (s StorageConfig) TTLSeconds() int64 {
	secs := int64(s.TTL / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

type RedisConfig struct {
	URL string
}

func (r RedisConfig) Enabled() bool { return r.URL != "" }

type DatabaseConfig struct {
	URL      string
	MaxConns int
}

func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

type SlackConfig struct {
	APIURL       string
	BotToken     string
	AppToken     string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// OAuthEnabled reports whether the multi-workspace install flow can run.
func (s SlackConfig) OAuthEnabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

type IngestConfig struct {
	DownloadTimeout  time.Duration
	DownloadMaxBytes int64
	DedupTTL         time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("PORT", 3000)
	v.SetDefault("BASE_URL", "http://localhost:3000")
	v.SetDefault("STORAGE_TTL", 24*60*60*1000)
	v.SetDefault("SWEEP_INTERVAL", "1h")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_MAX_CONNS", 4)
	v.SetDefault("SLACK_API_URL", "")
	v.SetDefault("SLACK_BOT_TOKEN", "")
	v.SetDefault("SLACK_APP_TOKEN", "")
	v.SetDefault("SLACK_CLIENT_ID", "")
	v.SetDefault("SLACK_CLIENT_SECRET", "")
	v.SetDefault("SLACK_REDIRECT_URL", "")
	v.SetDefault("SLACK_SCOPES", "files:read,chat:write")
	v.SetDefault("DOWNLOAD_TIMEOUT", "30s")
	v.SetDefault("DOWNLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("EVENT_DEDUP_TTL", "10m")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	ttlMillis := v.GetInt64("STORAGE_TTL")
	if ttlMillis <= 0 {
		ttlMillis = 24 * 60 * 60 * 1000
	}

	sweep, err := time.ParseDuration(v.GetString("SWEEP_INTERVAL"))
	if err != nil || sweep <= 0 {
		sweep = time.Hour
	}

	timeout, err := time.ParseDuration(v.GetString("DOWNLOAD_TIMEOUT"))
	if err != nil {
		timeout = 30 * time.Second
	}

	dedupTTL, err := time.ParseDuration(v.GetString("EVENT_DEDUP_TTL"))
	if err != nil {
		dedupTTL = 10 * time.Minute
	}

	redirectURL := v.GetString("SLACK_REDIRECT_URL")
	baseURL := strings.TrimRight(v.GetString("BASE_URL"), "/")
	if redirectURL == "" {
		redirectURL = baseURL + "/slack/oauth_redirect"
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:    v.GetString("SERVER_HOST"),
			Port:    v.GetInt("PORT"),
			BaseURL: baseURL,
		},
		Storage: StorageConfig{
			TTL:           time.Duration(ttlMillis) * time.Millisecond,
			SweepInterval: sweep,
			DataDir:       v.GetString("DATA_DIR"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: v.GetInt("DATABASE_MAX_CONNS"),
		},
		Slack: SlackConfig{
			APIURL:       v.GetString("SLACK_API_URL"),
			BotToken:     v.GetString("SLACK_BOT_TOKEN"),
			AppToken:     v.GetString("SLACK_APP_TOKEN"),
			ClientID:     v.GetString("SLACK_CLIENT_ID"),
			ClientSecret: v.GetString("SLACK_CLIENT_SECRET"),
			RedirectURL:  redirectURL,
			Scopes:       splitList(v.GetString("SLACK_SCOPES")),
		},
		Ingest: IngestConfig{
			DownloadTimeout:  timeout,
			DownloadMaxBytes: v.GetInt64("DOWNLOAD_MAX_BYTES"),
			DedupTTL:         dedupTTL,
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
