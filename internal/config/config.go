// Package config loads the bot configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"petbot/internal/common"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string `env:"PETBOT_DISCORD_TOKEN,required,notEmpty"`
	Prefix       string `env:"PETBOT_PREFIX" envDefault:"?"`
	DatabasePath string `env:"PETBOT_DATABASE" envDefault:"petbot.db"`
	CatalogPath  string `env:"PETBOT_CATALOG"`

	LogLevel  string `env:"PETBOT_LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"PETBOT_LOG_PRETTY" envDefault:"false"`

	TenorKey          string        `env:"PETBOT_TENOR_KEY"`
	TenorRequests     int           `env:"PETBOT_TENOR_REQUESTS" envDefault:"1"`
	TenorWindow       time.Duration `env:"PETBOT_TENOR_WINDOW" envDefault:"1s"`
	TenorCacheTtl     time.Duration `env:"PETBOT_TENOR_CACHE_TTL" envDefault:"1h"`
	TenorHousekeeping time.Duration `env:"PETBOT_TENOR_HOUSEKEEPING" envDefault:"10m"`

	ChallengeTimeout time.Duration `env:"PETBOT_CHALLENGE_TIMEOUT" envDefault:"2m"`
	IdleTimeout      time.Duration `env:"PETBOT_IDLE_TIMEOUT" envDefault:"5m"`
	SweepPeriod      time.Duration `env:"PETBOT_SWEEP_PERIOD" envDefault:"10s"`
	MainCycle        time.Duration `env:"PETBOT_MAIN_CYCLE" envDefault:"1s"`

	DailyReward   int           `env:"PETBOT_DAILY_REWARD" envDefault:"100"`
	DailyCooldown time.Duration `env:"PETBOT_DAILY_COOLDOWN" envDefault:"24h"`

	FilterCacheSize int           `env:"PETBOT_FILTER_CACHE_SIZE" envDefault:"256"`
	FilterCacheTtl  time.Duration `env:"PETBOT_FILTER_CACHE_TTL" envDefault:"10m"`
}

// Load reads the optional .env files and then parses the environment.
// Variables already present in the environment take precedence
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Prefix == "" {
		return errors.New("prefix cannot be empty")
	}
	for name, value := range map[string]time.Duration{
		"challenge timeout": cfg.ChallengeTimeout,
		"idle timeout":      cfg.IdleTimeout,
		"sweep period":      cfg.SweepPeriod,
		"main cycle":        cfg.MainCycle,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, value)
		}
	}
	if cfg.DailyReward <= 0 {
		return fmt.Errorf("daily reward must be positive, got %d", cfg.DailyReward)
	}
	return nil
}

// Restrictions applied to the requests sent to Tenor
func (cfg *Config) TenorRestrictions() []common.Restriction {
	return []common.Restriction{{Requests: cfg.TenorRequests, Duration: cfg.TenorWindow}}
}
