package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/mt-ctf/rankings-bot/internal/leaderboard"
	"github.com/mt-ctf/rankings-bot/internal/models"
)

type Config struct {
	Env string `validate:"required"`

	// Discord
	Token            string `validate:"required"`
	GuildID          string `validate:"required"`
	RankingsChannel  string
	GameStatsChannel string
	MuteRole         string `validate:"required"`

	// Relay server
	Host           string `validate:"required"`
	RelayPort      int    `validate:"min=1,max=65535"`
	AllowedOrigins []string

	// Redis
	UseRedis      bool
	RedisHost     string `validate:"required_if=UseRedis true"`
	RedisPort     int    `validate:"min=1,max=65535"`
	RedisPassword string
	RedisDB       int `validate:"min=0"`

	// Aggregation
	Modes              []string
	ModePrefix         string
	PollInterval       time.Duration `validate:"min=1s"`
	AggregationTimeout time.Duration `validate:"min=1s"`
	FetchConcurrency   int           `validate:"min=1,max=256"`

	// Game status
	GameAPIURL        string        `validate:"required,url"`
	GameStatsInterval time.Duration `validate:"min=1s"`

	// Leaderboard
	LeaderboardMaxEntries int `validate:"min=1"`
	LeaderboardRows       int `validate:"min=1"`
}

// Load loads configuration from environment variables, reading a .env file
// first when one exists. Variables already set in the environment win.
// It returns an error if critical configuration is missing or invalid.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		RankingsChannel:  getEnv("RANKINGS_CHANNEL", ""),
		GameStatsChannel: getEnv("GAME_STATS_CHANNEL", ""),
		MuteRole:         getEnv("MUTE_ROLE", "Muterated"),

		Host:           getEnv("HOST", "127.0.0.1"),
		RelayPort:      getEnvInt("RELAY_PORT", 31337),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),

		UseRedis:      getEnvBool("USE_REDIS", true),
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnvInt("REDIS_PORT", 6379),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		Modes:              getEnvList("MODES", nil),
		ModePrefix:         getEnv("MODE_PREFIX", "ctf_mode_"),
		PollInterval:       getEnvDuration("POLL_INTERVAL", 5*time.Minute),
		AggregationTimeout: getEnvDuration("AGGREGATION_TIMEOUT", 2*time.Minute),
		FetchConcurrency:   getEnvInt("FETCH_CONCURRENCY", 16),

		GameAPIURL:        getEnv("GAME_API_URL", "http://ctf.rubenwardy.com/api"),
		GameStatsInterval: getEnvDuration("GAME_STATS_INTERVAL", 30*time.Second),

		LeaderboardMaxEntries: getEnvInt("LEADERBOARD_MAX_ENTRIES", leaderboard.DefaultLayout.MaxEntries),
		LeaderboardRows:       getEnvInt("LEADERBOARD_ROWS", leaderboard.DefaultLayout.RowsPerSection),
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.Token, err = getEnvRequired("TOKEN"); err != nil {
		return nil, err
	}
	if cfg.GuildID, err = getEnvRequired("GUILD_ID"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints, that the leaderboard fits in one embed
// and that no two configured modes share a display name.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.Layout().Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	names := make(map[string]string, len(c.Modes))
	for _, mode := range c.Modes {
		name := models.ModeDisplayName(mode, c.ModePrefix)
		if other, dup := names[name]; dup && other != mode {
			return fmt.Errorf("invalid configuration: modes %q and %q are both shown as %q", other, mode, name)
		}
		names[name] = mode
	}
	return nil
}

// Layout is the leaderboard layout derived from the configured caps.
func (c *Config) Layout() leaderboard.Layout {
	layout := leaderboard.DefaultLayout
	layout.MaxEntries = c.LeaderboardMaxEntries
	layout.RowsPerSection = c.LeaderboardRows
	return layout
}

// RelayAddr is the listen address of the relay server.
func (c *Config) RelayAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.RelayPort))
}

// RedisAddr is the address of the score store.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

// IsDevelopment reports whether development logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping blank items.
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
