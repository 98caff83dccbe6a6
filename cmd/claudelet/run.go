package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jasonkneen/claudelet/internal/api"
	"github.com/jasonkneen/claudelet/internal/config"
	"github.com/jasonkneen/claudelet/internal/orchestrator"
	"github.com/jasonkneen/claudelet/internal/state"
	"github.com/jasonkneen/claudelet/pkg/models"
)

var (
	runVerbose bool
	runPersist bool
	runTimeout time.Duration
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	faintStyle  = lipgloss.NewStyle().Faint(true)

	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
	okColor   = color.New(color.FgGreen)
)

var runCmd = &cobra.Command{
	Use:   "run [request]",
	Short: "Run a request through the orchestration engine",
	Long: `Run triages the request, fans sub-tasks out to tiered workers, and
prints the aggregated response. Trivial conversational messages skip
the engine and get a direct answer from the cheapest tier.

Press Ctrl-C to interrupt; in-flight work is canceled cooperatively.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "stream engine events while running")
	runCmd.Flags().BoolVar(&runPersist, "persist", false, "record the context and results in the local database")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "interrupt the request if it does not settle in time")
}

func runRun(cmd *cobra.Command, args []string) error {
	request := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	factory, err := buildFactory(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Greetings and acknowledgments skip the engine; one cheap session
	// answers directly with no planner, pool, or summarizer overhead.
	analysis := orchestrator.NewTaskAnalyzer().Analyze(request, nil)
	if analysis.Intent == models.IntentConversational {
		session, err := factory.NewSession(ctx, models.TierScout)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		defer session.Terminate()

		output, err := session.Execute(ctx, request)
		if err != nil {
			return fmt.Errorf("execute: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	var store state.Store
	if runPersist {
		db, err := state.Open(state.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("open state db: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return fmt.Errorf("migrate state db: %w", err)
		}
		defer db.Close()
		store = db
	}

	logger := orchestrator.NopLogger()
	if cfg.Debug.LogPath != "" {
		logger, err = orchestrator.NewDebugLogger(cfg.Debug.LogPath)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer logger.Close()
		logger.SetEnabled(cfg.Debug.Enabled)
	}

	// Config edits take effect while a long run is in flight: toggling
	// debug.enabled starts or stops debug logging without a restart.
	config.Watch(func(next *config.Config) {
		logger.SetEnabled(next.Debug.Enabled)
	})

	coord := orchestrator.NewCoordinator(orchestrator.CoordinatorConfig{
		Factory:    factory,
		MaxWorkers: cfg.Defaults.MaxWorkers,
		Store:      store,
		Logger:     logger,
	})
	defer coord.Dispose()

	events, stopEvents := coord.Hub().Channel(128)
	drained := make(chan struct{})
	go streamEvents(events, drained)

	contextID, future, err := coord.Start(ctx, models.Task{Content: request})
	if err != nil {
		stopEvents()
		<-drained
		return err
	}

	if runVerbose {
		fmt.Println(faintStyle.Render("context " + contextID))
	}

	if runTimeout > 0 {
		go func() {
			if _, err := coord.WaitForContext(ctx, contextID, runTimeout); err != nil {
				coord.InterruptContext(contextID, fmt.Sprintf("timed out after %s", runTimeout))
			}
		}()
	}

	result := <-future
	stopEvents()
	<-drained

	if result.Err != nil {
		return result.Err
	}

	fmt.Println(result.Output)

	if runVerbose {
		printUsage(coord, factory.Tracker())
	}
	return nil
}

// streamEvents renders hub events to stderr so stdout stays clean for
// the final response.
func streamEvents(events <-chan orchestrator.Event, drained chan struct{}) {
	defer close(drained)
	for e := range events {
		switch e.Type {
		case orchestrator.EventWarning:
			warnColor.Fprintf(os.Stderr, "! %s\n", e.Message)
		case orchestrator.EventWorkerFailed:
			failColor.Fprintf(os.Stderr, "x task %s failed: %s\n", e.TaskID, e.Message)
		case orchestrator.EventWorkerCompleted:
			if runVerbose {
				okColor.Fprintf(os.Stderr, "+ task %s done (%s, %d tokens)\n", e.TaskID, e.Tier, e.TokensUsed)
			}
		case orchestrator.EventWorkerSpawned:
			if runVerbose {
				fmt.Fprintf(os.Stderr, "%s\n", faintStyle.Render(fmt.Sprintf("  spawned %s worker %s", e.Tier, e.WorkerID)))
			}
		case orchestrator.EventContextUpdate:
			if runVerbose && e.Status != "" && e.TaskID == "" {
				fmt.Fprintf(os.Stderr, "%s\n", faintStyle.Render("  "+string(e.Status)))
			}
		}
	}
}

// printUsage reports the worker count and client-wide API usage.
func printUsage(coord *orchestrator.Coordinator, tracker *api.TokenTracker) {
	if tracker.Calls() == 0 {
		return
	}

	in, out := tracker.Total()
	fmt.Fprintln(os.Stderr, headerStyle.Render("usage"))
	fmt.Fprintf(os.Stderr, "  workers: %d  api calls: %d  tokens: %d in / %d out  est. cost: $%.4f\n",
		len(coord.Workers()), tracker.Calls(), in, out, tracker.Cost())
}
