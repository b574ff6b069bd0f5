package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	banlistrender "github.com/bnema/session-guard/internal/adapters/render/banlist"
	"github.com/bnema/session-guard/internal/application"
	"github.com/bnema/session-guard/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const flushTimeout = 10 * time.Second

type banRecordOutput struct {
	PlayerName string `json:"player_name"`
	Identity   string `json:"identity"`
	BanDate    string `json:"ban_date"`
	Reason     string `json:"reason,omitempty"`
}

func newBanListCmd(app *app) *cobra.Command {
	banListCmd := &cobra.Command{
		Use:     "banlist",
		Aliases: []string{"bans"},
		Short:   "Inspect and edit the ban list",
	}

	banListCmd.AddCommand(
		newBanListListCmd(app),
		newBanListAddCmd(app),
		newBanListRemoveCmd(app),
		newBanListCheckCmd(app),
		newBanListClearCmd(app),
	)

	return banListCmd
}

func newBanListListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List banned players",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := app.openRegistry(cmd.Context())
			defer registry.Close()

			records := registry.List()
			if asJSON {
				out := make([]banRecordOutput, 0, len(records))
				for _, r := range records {
					out = append(out, toBanRecordOutput(r))
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			rendered, err := app.banRenderer(records, banlistrender.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render ban list: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the ban list as JSON")

	return cmd
}

func newBanListAddCmd(app *app) *cobra.Command {
	var (
		name     string
		identity string
		reason   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Ban a player by name or platform identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := app.openRegistry(cmd.Context())
			defer registry.Close()

			var err error
			label := strings.TrimSpace(name)
			if label != "" {
				err = registry.BanByName(name, reason)
			} else {
				label = strings.TrimSpace(identity)
				err = registry.BanByPlatformIdentity(identity, reason)
			}

			switch {
			case errors.Is(err, domain.ErrAlreadyBanned):
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is already banned\n", label)
				return err
			case err != nil:
				return fmt.Errorf("ban %s: %w", label, err)
			}

			if err := flushRegistry(cmd.Context(), registry); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "banned %s\n", label)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player display name")
	cmd.Flags().StringVar(&identity, "id", "", "Platform identity (digits only)")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason stored with the ban")
	cmd.MarkFlagsOneRequired("name", "id")
	cmd.MarkFlagsMutuallyExclusive("name", "id")

	return cmd
}

func newBanListRemoveCmd(app *app) *cobra.Command {
	var (
		name     string
		identity string
	)

	cmd := &cobra.Command{
		Use:     "remove",
		Aliases: []string{"unban"},
		Short:   "Unban a player by name or platform identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := app.openRegistry(cmd.Context())
			defer registry.Close()

			removed, ok := registry.Unban(name, identity)
			if !ok {
				return fmt.Errorf("%s: %w", lookupLabel(name, identity), domain.ErrNotBanned)
			}

			if err := flushRegistry(cmd.Context(), registry); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "unbanned %s\n", removed.Label())
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player display name")
	cmd.Flags().StringVar(&identity, "id", "", "Platform identity")
	cmd.MarkFlagsOneRequired("name", "id")

	return cmd
}

func newBanListCheckCmd(app *app) *cobra.Command {
	var (
		name     string
		identity string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether a name or platform identity is banned",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := app.openRegistry(cmd.Context())
			defer registry.Close()

			record, ok := registry.Find(domain.Participant{DisplayName: name, PlatformIdentity: identity})
			if !ok {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: not banned\n", lookupLabel(name, identity))
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: banned since %s (%s)\n",
				lookupLabel(name, identity), record.BanDate, reasonOrNA(record.Reason))
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player display name")
	cmd.Flags().StringVar(&identity, "id", "", "Platform identity")
	cmd.MarkFlagsOneRequired("name", "id")

	return cmd
}

func newBanListClearCmd(app *app) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every ban",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return errors.New("refusing to clear the ban list without --yes")
			}

			registry := app.openRegistry(cmd.Context())
			defer registry.Close()

			n := registry.Len()
			registry.Reset()
			if err := flushRegistry(cmd.Context(), registry); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %d bans\n", n)
			return err
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm clearing the ban list")

	return cmd
}

func flushRegistry(ctx context.Context, registry *application.Registry) error {
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := registry.Flush(ctx); err != nil {
		return fmt.Errorf("save ban list: %w", err)
	}
	return nil
}

func toBanRecordOutput(r domain.BanRecord) banRecordOutput {
	return banRecordOutput{
		PlayerName: r.PlayerName,
		Identity:   r.PlatformIdentity,
		BanDate:    r.BanDate,
		Reason:     r.Reason,
	}
}

func lookupLabel(name, identity string) string {
	if strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(identity)
}

func reasonOrNA(reason string) string {
	if reason == "" {
		return "no reason given"
	}
	return reason
}
