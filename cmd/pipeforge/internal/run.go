package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pipeforge/pipeforge/internal/condition"
	"github.com/pipeforge/pipeforge/internal/engine"
	"github.com/pipeforge/pipeforge/internal/hints"
	"github.com/pipeforge/pipeforge/internal/model"
	"github.com/pipeforge/pipeforge/internal/notify"
	"github.com/pipeforge/pipeforge/internal/statusserver"
	"github.com/pipeforge/pipeforge/internal/trust"
	"github.com/pipeforge/pipeforge/internal/watch"
	"github.com/pipeforge/pipeforge/internal/yamlio"
)

// DefaultServeAddr is used when --watch implicitly starts the status
// server without an explicit --serve address.
const DefaultServeAddr = "127.0.0.1:4848"

func NewRunCmd() *cobra.Command {
	var interactive, watchMode, verbose, quiet, notifyFlag bool
	var serveAddr string

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Load and execute a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				quiet = false // verbose wins when both are given (spec §6)
			}

			def, err := yamlio.LoadFile(args[0])
			if err != nil {
				return err
			}

			evaluator, err := condition.NewEvaluator()
			if err != nil {
				return fmt.Errorf("create condition evaluator: %w", err)
			}

			addr := serveAddr
			if addr == "" && watchMode {
				addr = DefaultServeAddr
			}
			var srv *statusserver.Server
			if addr != "" {
				srv = statusserver.New(addr, nil)
				srv.Start()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				fmt.Fprintf(cmd.OutOrStdout(), "status endpoint listening on http://%s/runs/current\n", addr)
			}

			var runObserver engine.RunObserver
			if srv != nil {
				runObserver = srv
			}
			eng := engine.New(nil, hints.Default(), evaluator, runObserver)
			observer := newCLIObserver(cmd.OutOrStdout(), cmd.InOrStdin(), verbose, quiet)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			store := openTrustStore()

			if !watchMode {
				return runOnce(ctx, cmd, eng, def, args[0], store, interactive, observer, model.TriggerManual, "")
			}
			return runWatch(ctx, cmd, eng, def, args[0], store, interactive, observer, notifyFlag)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pause before every step for a breakpoint decision")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Run once, then re-run on matching filesystem changes until interrupted")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every captured output line")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-line output and per-step summaries, printing only the run summary")
	cmd.Flags().BoolVar(&notifyFlag, "notify", false, "Raise a best-effort OS notification on watch-mode completion")
	cmd.Flags().StringVar(&serveAddr, "serve", "", "Start a read-only status endpoint at this address (implied by --watch)")
	return cmd
}

// openTrustStore opens the trust store at its default location. A home
// directory that cannot be resolved disables trust entirely for this
// invocation, consistent with the store's own advisory-only contract
// (spec §4.5/§7: trust failures never block a run).
func openTrustStore() *trust.Store {
	path, err := trust.DefaultPath()
	if err != nil {
		return nil
	}
	return trust.Open(path, nil)
}

// consultTrust checks path against store and prints its trust status.
// The store may be nil (home directory unresolved); consulting it is then
// a no-op, matching the spec's "advisory, never blocking" guarantee.
func consultTrust(cmd *cobra.Command, store *trust.Store, path string) {
	if store == nil {
		return
	}
	result, err := store.Check(path)
	if err != nil {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "trust: %s (%s)\n", result.Status, path)
}

// recordTrust trusts path at its current hash once a run against it has
// completed successfully, per spec §4.5's "consulted once per run"
// Check-then-Trust cycle.
func recordTrust(store *trust.Store, path string) {
	if store == nil {
		return
	}
	_ = store.Trust(path, "")
}

// executeAndReport runs def once and prints a one-line summary.
func executeAndReport(ctx context.Context, cmd *cobra.Command, eng *engine.Engine, def *model.PipelineDefinition, path string, store *trust.Store, interactive bool, observer engine.Observer, trigger model.TriggerKind, reason string) (*model.PipelineRun, error) {
	consultTrust(cmd, store, path)

	run, err := eng.Execute(ctx, def, engine.RunOptions{
		Interactive:   interactive,
		Observer:      observer,
		Trigger:       trigger,
		TriggerReason: reason,
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nrun %s: %s (%d success, %d failed, %d skipped)\n",
		run.ID, run.Status, run.SuccessCount(), run.FailedCount(), run.SkippedCount())

	if run.Status == model.RunSuccess {
		recordTrust(store, path)
	}
	return run, nil
}

func runOnce(ctx context.Context, cmd *cobra.Command, eng *engine.Engine, def *model.PipelineDefinition, path string, store *trust.Store, interactive bool, observer engine.Observer, trigger model.TriggerKind, reason string) error {
	run, err := executeAndReport(ctx, cmd, eng, def, path, store, interactive, observer, trigger, reason)
	if err != nil {
		return err
	}
	if run.Status != model.RunSuccess {
		return errors.New("pipeline run did not succeed")
	}
	return nil
}

func runWatch(ctx context.Context, cmd *cobra.Command, eng *engine.Engine, def *model.PipelineDefinition, defPath string, store *trust.Store, interactive bool, observer engine.Observer, notifyFlag bool) error {
	if _, err := executeAndReport(ctx, cmd, eng, def, defPath, store, interactive, observer, model.TriggerManual, ""); err != nil {
		return err
	}
	signalCompletion(cmd, notifyFlag)

	if len(def.WatchTriggers) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no watch triggers declared; exiting after the first run")
		return nil
	}

	watcher, err := watch.New(nil)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Dispose()

	base := filepath.Dir(defPath)
	for _, trigger := range def.WatchTriggers {
		t := trigger
		reg := watch.Registration{
			Path:           resolveWatchPath(t.Path, base),
			Filter:         t.Filter,
			Recursive:      t.IncludeSubdirectories,
			DebounceMillis: t.DebounceMS,
		}
		err := watcher.Register(reg, func(path string, eventType watch.EventType) {
			fmt.Fprintf(cmd.OutOrStdout(), "\nwatch trigger fired for %s, re-running pipeline\n", path)
			if _, err := executeAndReport(ctx, cmd, eng, def, defPath, store, interactive, observer, model.TriggerWatch, "watch: "+path); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "run failed: %v\n", err)
			}
			signalCompletion(cmd, notifyFlag)
		})
		if err != nil {
			return fmt.Errorf("register watch on %s: %w", t.Path, err)
		}
	}

	<-ctx.Done()
	return nil
}

func resolveWatchPath(path, base string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func signalCompletion(cmd *cobra.Command, notifyFlag bool) {
	notify.Bell(cmd.OutOrStdout())
	if notifyFlag {
		notify.Desktop("PipeForge", "watch run complete", nil)
	}
}
