package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	QBittorrent   QBittorrentConfig
	Jackett       JackettConfig
	Notifications NotificationsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// QBittorrentConfig carries connection settings for the shared qBittorrent instance.
type QBittorrentConfig struct {
	Host     string
	Username string
	Password string
}

// JackettConfig carries connection settings for the Jackett indexer proxy.
type JackettConfig struct {
	URL            string
	APIKey         string
	SearchTimeout  time.Duration
	SearchCacheTTL time.Duration
	MaxResults     int
}

// NotificationsConfig tunes the completion poller and its worker queue.
type NotificationsConfig struct {
	Enabled       bool
	PollInterval  time.Duration
	WorkerCount   int
	WorkerRetries int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.QBittorrent = QBittorrentConfig{
		Host:     v.GetString("QBIT_HOST"),
		Username: v.GetString("QBIT_USERNAME"),
		Password: v.GetString("QBIT_PASSWORD"),
	}

	maxResults := v.GetInt("JACKETT_MAX_RESULTS")
	if maxResults <= 0 {
		maxResults = 50
	}
	cfg.Jackett = JackettConfig{
		URL:            v.GetString("JACKETT_URL"),
		APIKey:         v.GetString("JACKETT_API_KEY"),
		SearchTimeout:  parseDuration(v.GetString("JACKETT_SEARCH_TIMEOUT"), 30*time.Second),
		SearchCacheTTL: parseDuration(v.GetString("JACKETT_SEARCH_CACHE_TTL"), 5*time.Minute),
		MaxResults:     maxResults,
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:       v.GetBool("ENABLE_NOTIFICATIONS"),
		PollInterval:  parseDuration(v.GetString("NOTIFICATIONS_POLL_INTERVAL"), 30*time.Second),
		WorkerCount:   v.GetInt("NOTIFICATIONS_WORKER_COUNT"),
		WorkerRetries: v.GetInt("NOTIFICATIONS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "qbitmaster")
	v.SetDefault("DB_NAME", "qbitmaster")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("QBIT_HOST", "http://localhost:8080")
	v.SetDefault("QBIT_USERNAME", "admin")
	v.SetDefault("JACKETT_URL", "http://localhost:9117")
	v.SetDefault("ENABLE_NOTIFICATIONS", true)
	v.SetDefault("NOTIFICATIONS_WORKER_COUNT", 1)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
