package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/session-guard/internal/adapters/repo/jsonfile"
	"github.com/bnema/session-guard/internal/adapters/session/offline"
	"github.com/bnema/session-guard/internal/application"
	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/logging"
	"github.com/bnema/session-guard/internal/metrics"
	"github.com/bnema/session-guard/internal/ports"
	"github.com/bnema/session-guard/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

const simulationTick = 50 * time.Millisecond

type simulateOptions struct {
	duration    time.Duration
	mode        string
	hijack      bool
	noSpinner   bool
	showMetrics bool
}

type simulationResult struct {
	strategy      domain.Strategy
	bans          int
	targets       []domain.ActorID
	relocations   int
	recoveries    int
	noops         int
	claims        int
	admitted      bool
	announcements []string
}

var (
	simHost     = domain.Participant{ActorID: 1, DisplayName: "Host", PlatformIdentity: "76561198000000001", IsLocal: true, IsAuthority: true}
	simGuest    = domain.Participant{ActorID: 2, DisplayName: "Guest", PlatformIdentity: "76561198000000002"}
	simIntruder = domain.Participant{ActorID: 7, DisplayName: "Intruder", PlatformIdentity: "76561198000000007"}
)

func newSimulateCmd(app *app) *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a scripted session against the current settings",
		Long:  "simulate runs the guard against an in-memory session with one banned intruder, optionally followed by a host steal attempt, and prints what the guard did. The real ban list is copied, never modified.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			strategy := app.cfg.EnforcementMode
			if opts.mode != "" {
				parsed, err := domain.ParseStrategy(opts.mode)
				if err != nil {
					return err
				}
				strategy = parsed
			}

			reg := prometheus.NewRegistry()
			progress := &simulationProgress{}
			var result simulationResult
			run := func(ctx context.Context) error {
				var err error
				result, err = runSimulation(ctx, app, strategy, opts, metrics.New(reg), progress)
				return err
			}

			var err error
			if opts.noSpinner {
				err = run(cmd.Context())
			} else {
				err = runSimulationSpinner(cmd.Context(), cmd.ErrOrStderr(), "Simulating session...", progress, run)
			}
			if err != nil {
				return err
			}

			if err := writeSimulationResult(cmd.OutOrStdout(), opts.duration, result); err != nil {
				return err
			}
			if opts.showMetrics {
				return writeMetrics(cmd.OutOrStdout(), reg)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.duration, "duration", 3*time.Second, "How long to run the simulated session")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "Override the enforcement strategy (Aggressive or Passive)")
	cmd.Flags().BoolVar(&opts.hijack, "hijack", false, "Have a guest attempt to steal host")
	cmd.Flags().BoolVar(&opts.noSpinner, "no-spinner", false, "Disable the progress spinner")
	cmd.Flags().BoolVar(&opts.showMetrics, "metrics", false, "Print the Prometheus metrics collected during the run")

	return cmd
}

func runSimulation(ctx context.Context, app *app, strategy domain.Strategy, opts simulateOptions, m *metrics.Metrics, progress *simulationProgress) (simulationResult, error) {
	scratch, err := os.MkdirTemp("", "sg-simulate-*")
	if err != nil {
		return simulationResult{}, fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	repo, err := seedScratchRepository(ctx, app, filepath.Join(scratch, "banlist.json"))
	if err != nil {
		return simulationResult{}, err
	}

	session := offline.New()
	session.Join(simHost)
	session.Join(simGuest)
	session.Join(simIntruder)

	logger := logging.Component(app.logger, "simulate")
	recorder := offline.NewRecorder(session, logging.Component(logger, "transport"))

	cfg := app.cfg
	cfg.EnforcementMode = strategy
	guard := application.NewGuard(ctx, cfg, application.Deps{
		Session:    session,
		Enforcer:   recorder,
		Transport:  recorder,
		Repository: repo,
		Announcer:  recorder,
		Clock:      ports.SystemClock{},
		Logger:     logger,
		Metrics:    m,
	})
	defer guard.Close()
	progress.attach(guard)

	guard.OnJoinedSession()
	intruder := simIntruder
	if err := guard.Registry.Ban(&intruder, "", "simulated ban"); err != nil && !errors.Is(err, domain.ErrAlreadyBanned) {
		return simulationResult{}, fmt.Errorf("ban simulated intruder: %w", err)
	}

	if opts.hijack {
		guard.Authority.ValidateTransfer(ctx, simGuest)
	}

	admitted := guard.Filter.ShouldAdmit(simIntruder.ActorID, domain.EventOther)

	driver := scheduler.NewDriver(simulationTick, ports.SystemClock{}, guard.Tick)
	driver.Start(ctx)

	timer := time.NewTimer(opts.duration)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
	}
	driver.Stop()

	return simulationResult{
		strategy:      guard.Settings().Strategy(),
		bans:          guard.Registry.Len(),
		targets:       guard.Engine.TargetedActorIDs(),
		relocations:   recorder.Count(offline.ActionRelocate),
		recoveries:    recorder.Count(offline.ActionRecover),
		noops:         recorder.Count(offline.ActionNoop),
		claims:        recorder.Count(offline.ActionClaim),
		admitted:      admitted,
		announcements: recorder.Announcements(),
	}, ctx.Err()
}

// seedScratchRepository copies the configured ban list into a throwaway JSON
// file so the simulation never writes to the real one.
func seedScratchRepository(ctx context.Context, app *app, path string) (ports.BanRepository, error) {
	registry := app.openRegistry(ctx)
	records := registry.List()
	registry.Close()

	repo, err := jsonfile.NewRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open scratch ban list: %w", err)
	}
	if err := repo.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("seed scratch ban list: %w", err)
	}
	return repo, nil
}

func writeSimulationResult(w io.Writer, duration time.Duration, r simulationResult) error {
	verdict := "dropped"
	if r.admitted {
		verdict = "admitted"
	}

	if _, err := fmt.Fprintf(w,
		"simulated %s with strategy %s\nbans: %d\ntargets: %v\nrelocations: %d\nrecoveries: %d\nnoop messages: %d\nauthority reclaims: %d\nintruder events: %s\n",
		duration, r.strategy, r.bans, r.targets, r.relocations, r.recoveries, r.noops, r.claims, verdict,
	); err != nil {
		return err
	}

	for _, msg := range r.announcements {
		if _, err := fmt.Fprintf(w, "announced: %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
