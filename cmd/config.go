package cmd

import (
	"fmt"
	"strconv"

	"github.com/bnema/session-guard/internal/config"
	"github.com/bnema/session-guard/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type configOutput struct {
	Path                    string `json:"path"`
	EnforcementMode         string `json:"enforcement_mode"`
	AutoDetect              bool   `json:"auto_detect"`
	BanCheckInterval        string `json:"ban_check_interval"`
	IdentityRefreshInterval string `json:"identity_refresh_interval"`
	StatsInterval           string `json:"stats_interval"`
	UnbanGrace              string `json:"unban_grace"`
	AuthorityCooldown       string `json:"authority_cooldown"`
	BanListPath             string `json:"ban_list_path"`
	LogLevel                string `json:"log_level"`
	LogFormat               string `json:"log_format"`
}

func newConfigCmd(app *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change settings",
	}

	configCmd.AddCommand(
		newConfigShowCmd(app),
		newConfigSetModeCmd(app),
		newConfigSetAutoDetectCmd(app),
	)

	return configCmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := toConfigOutput(app.cfg)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(),
				"config file: %s\nenforcement mode: %s\nauto detect: %t\nban check interval: %s\nidentity refresh interval: %s\nstats interval: %s\nunban grace: %s\nauthority cooldown: %s\nban list: %s\nlog: %s (%s)\n",
				out.Path,
				out.EnforcementMode,
				out.AutoDetect,
				out.BanCheckInterval,
				out.IdentityRefreshInterval,
				out.StatsInterval,
				out.UnbanGrace,
				out.AuthorityCooldown,
				out.BanListPath,
				out.LogLevel,
				out.LogFormat,
			)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the configuration as JSON")

	return cmd
}

func newConfigSetModeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:       "set-mode <Aggressive|Passive>",
		Short:     "Change the enforcement strategy",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{domain.StrategyAggressive.String(), domain.StrategyPassive.String()},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := domain.ParseStrategy(args[0])
			if err != nil {
				return err
			}

			cfg := app.cfg
			cfg.EnforcementMode = mode
			if err := config.Write(cfg); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			app.cfg = cfg

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "enforcement mode set to %s\n", mode)
			return err
		},
	}
}

func newConfigSetAutoDetectCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-auto-detect <true|false>",
		Short: "Enable or disable bans reported by third-party detectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("invalid value %q: want true or false", args[0])
			}

			cfg := app.cfg
			cfg.AutoDetect = enabled
			if err := config.Write(cfg); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			app.cfg = cfg

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "auto detect set to %t\n", enabled)
			return err
		},
	}
}

func toConfigOutput(cfg config.Config) configOutput {
	return configOutput{
		Path:                    config.Path(cfg.Dir),
		EnforcementMode:         cfg.EnforcementMode.String(),
		AutoDetect:              cfg.AutoDetect,
		BanCheckInterval:        cfg.BanCheckInterval.String(),
		IdentityRefreshInterval: cfg.IdentityRefreshInterval.String(),
		StatsInterval:           cfg.StatsInterval.String(),
		UnbanGrace:              cfg.UnbanGrace.String(),
		AuthorityCooldown:       cfg.AuthorityCooldown.String(),
		BanListPath:             cfg.BanListPath,
		LogLevel:                cfg.LogLevel,
		LogFormat:               cfg.LogFormat,
	}
}
