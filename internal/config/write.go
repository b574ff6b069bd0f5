package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	fileMode        = 0o600
	dirMode         = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

type fileSchema struct {
	General     generalSchema     `toml:"general"`
	Performance performanceSchema `toml:"performance"`
	Protection  protectionSchema  `toml:"protection"`
	BanList     banListSchema     `toml:"banlist"`
	Log         logSchema         `toml:"log"`
}

type generalSchema struct {
	EnforcementMode string `toml:"enforcement_mode"`
	AutoDetect      bool   `toml:"auto_detect"`
}

type performanceSchema struct {
	BanCheckInterval        string `toml:"ban_check_interval"`
	IdentityRefreshInterval string `toml:"identity_refresh_interval"`
	StatsInterval           string `toml:"stats_interval"`
}

type protectionSchema struct {
	UnbanGrace        string `toml:"unban_grace"`
	AuthorityCooldown string `toml:"authority_cooldown"`
}

type banListSchema struct {
	Path string `toml:"path"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func toSchema(cfg Config) fileSchema {
	return fileSchema{
		General: generalSchema{
			EnforcementMode: cfg.EnforcementMode.String(),
			AutoDetect:      cfg.AutoDetect,
		},
		Performance: performanceSchema{
			BanCheckInterval:        cfg.BanCheckInterval.String(),
			IdentityRefreshInterval: cfg.IdentityRefreshInterval.String(),
			StatsInterval:           cfg.StatsInterval.String(),
		},
		Protection: protectionSchema{
			UnbanGrace:        cfg.UnbanGrace.String(),
			AuthorityCooldown: cfg.AuthorityCooldown.String(),
		},
		BanList: banListSchema{Path: cfg.BanListPath},
		Log: logSchema{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
		},
	}
}

// Write stores cfg as dir/config.toml, replacing the file atomically. Legacy keys
// are not carried over.
func Write(cfg Config) error {
	path := Path(cfg.Dir)

	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(toSchema(cfg))
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	cleanup = false

	return nil
}
