package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from the given lookup function. Missing required
// keys are fatal.
func FromLookup(lookup func(string) (string, bool)) Config {
	getEnv := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return ""
	}
	getOptional := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}
	getDuration := func(key string, fallback time.Duration) time.Duration {
		raw, ok := lookup(key)
		if !ok || raw == "" {
			return fallback
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Warn("Invalid duration, using default", "key", key, "value", raw, "default", fallback)
			return fallback
		}
		return d
	}
	getInt := func(key string, fallback int64) int64 {
		raw, ok := lookup(key)
		if !ok || raw == "" {
			return fallback
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Warn("Invalid integer, using default", "key", key, "value", raw, "default", fallback)
			return fallback
		}
		return n
	}

	rate, err := strconv.ParseFloat(getOptional("LOGIN_RATE_LIMIT", "5"), 64)
	if err != nil {
		log.Warn("Invalid LOGIN_RATE_LIMIT, using default", "error", err)
		rate = 5
	}

	return Config{
		DBName: getEnv("DB_NAME"),
		Port:   getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: getOptional("TURSO_PRIMARY_URL", ""),
			AuthToken:  getOptional("TURSO_AUTH_TOKEN", ""),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET"),
			AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			AdminAddresses:  splitList(getOptional("ADMIN_ADDRESSES", "")),
			LoginRateLimit:  rate,
			LoginRateBurst:  int(getInt("LOGIN_RATE_BURST", 10)),
		},
		Referral: ReferralConfig{
			SeasonID:     getInt("REFERRAL_SEASON_ID", 1),
			SignupBonus:  getInt("REFERRAL_SIGNUP_BONUS", 500),
			BonusPercent: getInt("REFERRAL_BONUS_PERCENT", 10),
		},
		Slack: SlackConfig{
			Token:         getOptional("SLACK_BOT_TOKEN", ""),
			ChannelID:     getOptional("SLACK_CHANNEL_ID", ""),
			SigningSecret: getOptional("SLACK_SIGNING_SECRET", ""),
		},
		RedisAddr:      getOptional("REDIS_ADDR", ""),
		CacheTTL:       getDuration("LEADERBOARD_CACHE_TTL", 30*time.Second),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		ProjectID:      getOptional("GCP_PROJECT", ""),
		PushToken:      getOptional("PUBSUB_PUSH_TOKEN", ""),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
