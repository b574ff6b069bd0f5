package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	banlistrender "github.com/bnema/session-guard/internal/adapters/render/banlist"
	"github.com/bnema/session-guard/internal/adapters/repo/jsonfile"
	tomlrepo "github.com/bnema/session-guard/internal/adapters/repo/toml"
	"github.com/bnema/session-guard/internal/adapters/session/offline"
	"github.com/bnema/session-guard/internal/application"
	"github.com/bnema/session-guard/internal/config"
	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/logging"
	"github.com/bnema/session-guard/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type app struct {
	cfg         config.Config
	logger      zerolog.Logger
	repo        ports.BanRepository
	banRenderer func([]domain.BanRecord, banlistrender.RenderOptions) (string, error)
	now         func() time.Time
}

func wireApp() (*app, error) {
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}

	bootLogger := logging.New(logging.Config{Level: "warn", Format: logging.FormatConsole, Output: os.Stderr})
	cfg, err := config.Load(viper.New(), dir, bootLogger)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Migrated {
		if err := config.Write(cfg); err != nil {
			bootLogger.Warn().Err(err).Msg("failed to rewrite migrated config")
		}
	}

	repo, err := newBanRepository(cfg.BanListPath)
	if err != nil {
		return nil, fmt.Errorf("wire ban list repository: %w", err)
	}

	return &app{
		cfg:         cfg,
		logger:      logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr}),
		repo:        repo,
		banRenderer: banlistrender.Render,
		now:         time.Now,
	}, nil
}

// newBanRepository picks the storage format from the file extension. Anything
// other than .toml is the JSON list the in-session guard reads.
func newBanRepository(path string) (ports.BanRepository, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return tomlrepo.NewRepository(path)
	}
	return jsonfile.NewRepository(path)
}

// openRegistry loads the ban list outside any session. The caller must Close it.
func (a *app) openRegistry(ctx context.Context) *application.Registry {
	return application.NewRegistry(ctx, a.repo, application.RegistryDeps{
		Session: offline.New(),
		Clock:   ports.SystemClock{},
		Logger:  logging.Component(a.logger, "registry"),
	})
}
