package config

import "time"

// Config holds all configuration for the application.
// PushToken must match the token query parameter of every pubsub push request.
type Config struct {
	DBName         string
	Port           string
	Turso          TursoConfig
	Auth           AuthConfig
	Referral       ReferralConfig
	Slack          SlackConfig
	RedisAddr      string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	ProjectID      string
	PushToken      string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AdminAddresses  []string
	LoginRateLimit  float64
	LoginRateBurst  int
}

type ReferralConfig struct {
	SeasonID     int64
	SignupBonus  int64
	BonusPercent int64
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}
