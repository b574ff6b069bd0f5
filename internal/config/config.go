// Package config loads session-guard settings from a TOML file and SG_* env vars.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "SG"
	appDirName = "session-guard"

	DefaultBanListFile = "banlist.json"
)

// Keys as they appear in config.toml. SG_GENERAL_ENFORCEMENT_MODE and friends
// override them.
const (
	KeyEnforcementMode         = "general.enforcement_mode"
	KeyAutoDetect              = "general.auto_detect"
	KeyBanCheckInterval        = "performance.ban_check_interval"
	KeyIdentityRefreshInterval = "performance.identity_refresh_interval"
	KeyStatsInterval           = "performance.stats_interval"
	KeyUnbanGrace              = "protection.unban_grace"
	KeyAuthorityCooldown       = "protection.authority_cooldown"
	KeyBanListPath             = "banlist.path"
	KeyLogLevel                = "log.level"
	KeyLogFormat               = "log.format"

	// legacyKeyEnforcementMode held PassiveKick / AggressiveKick in older files.
	legacyKeyEnforcementMode = "general.default_enforcement_mode"
)

const (
	DefaultBanCheckInterval        = 500 * time.Millisecond
	DefaultIdentityRefreshInterval = 30 * time.Second
	DefaultStatsInterval           = 60 * time.Second
	DefaultUnbanGrace              = 10 * time.Second
	DefaultAuthorityCooldown       = 5 * time.Second

	MinBanCheckInterval        = 100 * time.Millisecond
	MaxBanCheckInterval        = 5 * time.Second
	MinIdentityRefreshInterval = 10 * time.Second
	MaxIdentityRefreshInterval = 300 * time.Second
)

type Config struct {
	EnforcementMode domain.Strategy
	AutoDetect      bool

	BanCheckInterval        time.Duration
	IdentityRefreshInterval time.Duration
	StatsInterval           time.Duration

	UnbanGrace        time.Duration
	AuthorityCooldown time.Duration

	BanListPath string

	LogLevel  string
	LogFormat string

	// Dir is the directory config.toml is read from and written to.
	Dir string
	// Migrated is set when a legacy key was rewritten during Load.
	Migrated bool
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) Config {
	return Config{
		EnforcementMode:         domain.StrategyAggressive,
		AutoDetect:              true,
		BanCheckInterval:        DefaultBanCheckInterval,
		IdentityRefreshInterval: DefaultIdentityRefreshInterval,
		StatsInterval:           DefaultStatsInterval,
		UnbanGrace:              DefaultUnbanGrace,
		AuthorityCooldown:       DefaultAuthorityCooldown,
		BanListPath:             filepath.Join(dir, DefaultBanListFile),
		LogLevel:                "info",
		LogFormat:               "console",
		Dir:                     dir,
	}
}

// DefaultDir is <user config dir>/session-guard.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// Path returns the config file location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, configName+"."+configType)
}

// Load reads dir/config.toml (a missing file is fine), applies SG_* overrides,
// migrates legacy keys and validates the result.
func Load(v *viper.Viper, dir string, logger zerolog.Logger) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	def := Default(dir)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyEnforcementMode, def.EnforcementMode.String())
	v.SetDefault(KeyAutoDetect, def.AutoDetect)
	v.SetDefault(KeyBanCheckInterval, def.BanCheckInterval)
	v.SetDefault(KeyIdentityRefreshInterval, def.IdentityRefreshInterval)
	v.SetDefault(KeyStatsInterval, def.StatsInterval)
	v.SetDefault(KeyUnbanGrace, def.UnbanGrace)
	v.SetDefault(KeyAuthorityCooldown, def.AuthorityCooldown)
	v.SetDefault(KeyBanListPath, def.BanListPath)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyLogFormat, def.LogFormat)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	migrated := migrateLegacy(v, logger)

	cfg := Config{
		AutoDetect:              v.GetBool(KeyAutoDetect),
		BanCheckInterval:        v.GetDuration(KeyBanCheckInterval),
		IdentityRefreshInterval: v.GetDuration(KeyIdentityRefreshInterval),
		StatsInterval:           v.GetDuration(KeyStatsInterval),
		UnbanGrace:              v.GetDuration(KeyUnbanGrace),
		AuthorityCooldown:       v.GetDuration(KeyAuthorityCooldown),
		BanListPath:             v.GetString(KeyBanListPath),
		LogLevel:                v.GetString(KeyLogLevel),
		LogFormat:               v.GetString(KeyLogFormat),
		Dir:                     dir,
		Migrated:                migrated,
	}

	mode, err := domain.ParseStrategy(v.GetString(KeyEnforcementMode))
	if err != nil {
		logger.Warn().Err(err).Str("key", KeyEnforcementMode).Msg("invalid enforcement mode, using default")
		mode = def.EnforcementMode
	}
	cfg.EnforcementMode = mode

	if strings.TrimSpace(cfg.BanListPath) == "" {
		cfg.BanListPath = def.BanListPath
	}
	absPath, err := filepath.Abs(cfg.BanListPath)
	if err != nil {
		return Config{}, fmt.Errorf("resolve ban list path: %w", err)
	}
	cfg.BanListPath = filepath.Clean(absPath)

	cfg.Validate(logger)
	return cfg, nil
}

// migrateLegacy copies general.default_enforcement_mode to the current key when
// only the old one is present in the file.
func migrateLegacy(v *viper.Viper, logger zerolog.Logger) bool {
	if !v.InConfig(legacyKeyEnforcementMode) || v.InConfig(KeyEnforcementMode) {
		return false
	}

	raw := v.GetString(legacyKeyEnforcementMode)
	mode, err := domain.ParseStrategy(raw)
	if err != nil {
		logger.Warn().Str("value", raw).Msg("unrecognized legacy enforcement mode, ignoring")
		return false
	}

	v.Set(KeyEnforcementMode, mode.String())
	logger.Info().
		Str("from", legacyKeyEnforcementMode).
		Str("to", KeyEnforcementMode).
		Str("mode", mode.String()).
		Msg("migrated legacy enforcement mode")
	return true
}

// Validate resets out-of-range values to their defaults and logs a warning for
// each one.
func (c *Config) Validate(logger zerolog.Logger) {
	def := Default(c.Dir)

	if !c.EnforcementMode.Valid() {
		logger.Warn().Str("value", string(c.EnforcementMode)).Msg("invalid enforcement mode, using default")
		c.EnforcementMode = def.EnforcementMode
	}

	c.BanCheckInterval = clampOrDefault(logger, KeyBanCheckInterval, c.BanCheckInterval,
		MinBanCheckInterval, MaxBanCheckInterval, def.BanCheckInterval)
	c.IdentityRefreshInterval = clampOrDefault(logger, KeyIdentityRefreshInterval, c.IdentityRefreshInterval,
		MinIdentityRefreshInterval, MaxIdentityRefreshInterval, def.IdentityRefreshInterval)

	if c.StatsInterval <= 0 {
		logger.Warn().Dur("value", c.StatsInterval).Str("key", KeyStatsInterval).Msg("out of range, using default")
		c.StatsInterval = def.StatsInterval
	}
	if c.UnbanGrace <= 0 {
		logger.Warn().Dur("value", c.UnbanGrace).Str("key", KeyUnbanGrace).Msg("out of range, using default")
		c.UnbanGrace = def.UnbanGrace
	}
	if c.AuthorityCooldown <= 0 {
		logger.Warn().Dur("value", c.AuthorityCooldown).Str("key", KeyAuthorityCooldown).Msg("out of range, using default")
		c.AuthorityCooldown = def.AuthorityCooldown
	}
}

func clampOrDefault(logger zerolog.Logger, key string, value, lo, hi, fallback time.Duration) time.Duration {
	if value < lo || value > hi {
		logger.Warn().
			Str("key", key).
			Dur("value", value).
			Dur("min", lo).
			Dur("max", hi).
			Msg("out of range, using default")
		return fallback
	}
	return value
}
