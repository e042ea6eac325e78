package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ghostrap/internal/harness"
	"github.com/roach88/ghostrap/internal/store"
	"github.com/roach88/ghostrap/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// Sessions names persisted runs of scenarios without a fixed session.
	// If nil, defaults to trace.UUIDv7Generator.
	Sessions trace.SessionGenerator
}

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Name    string   `json:"name"`
	Session string   `json:"session,omitempty"`
	Pass    bool     `json:"pass"`
	Events  int      `json:"events"`
	Errors  []string `json:"errors,omitempty"`
}

// RunSummary is the output of run and test.
type RunSummary struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (s *RunSummary) add(r ScenarioResult) {
	s.Scenarios = append(s.Scenarios, r)
	s.Total++
	if r.Pass {
		s.Passed++
	} else {
		s.Failed++
	}
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>...",
		Short: "Run scenarios and report their results",
		Long: `Run one or more scenario files against fresh objects.

Each step's expect and error clauses and each assertion are checked.
With --db the recorded traces are appended to a SQLite trace log;
scenarios without a fixed session get a new UUIDv7 session per run.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (unreadable scenario, database error)

Examples:
  ghostrap run scenarios/get_fold.yaml
  ghostrap run --db ./trace.db scenarios/*.yaml
  ghostrap run --format json scenarios/lifecycle.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "append traces to this SQLite database")

	return cmd
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var st *store.Store
	if opts.Database != "" {
		var err error
		st, err = store.Open(opts.Database)
		if err != nil {
			if out.JSON() {
				_ = out.Error(ErrCodeDatabase, "failed to open database", map[string]string{"db": opts.Database})
			}
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				logger.Error("error closing database", "error", err)
			}
		}()
	}

	sessions := opts.Sessions
	if sessions == nil {
		sessions = trace.UUIDv7Generator{}
	}

	summary := RunSummary{Scenarios: []ScenarioResult{}}
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			if out.JSON() {
				_ = out.Error(ErrCodeLoad, "failed to load scenario", map[string]string{"path": path, "error": err.Error()})
			}
			return WrapExitError(ExitCommandError, "failed to load scenario", err)
		}

		runOpts := []harness.Option{harness.WithLogger(logger)}
		if st != nil && scenario.Session == "" {
			runOpts = append(runOpts, harness.WithSession(sessions.Generate()))
		}
		result, err := harness.Run(scenario, runOpts...)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s", scenario.Name), err)
		}

		if st != nil {
			if err := persist(ctx, st, scenario.Name, result); err != nil {
				if out.JSON() {
					_ = out.Error(ErrCodeDatabase, "failed to persist trace", map[string]string{"scenario": scenario.Name})
				}
				return WrapExitError(ExitCommandError, "failed to persist trace", err)
			}
			logger.Info("trace persisted", "scenario", scenario.Name, "session", result.Session, "events", len(result.Trace))
		}

		r := ScenarioResult{
			Name:    scenario.Name,
			Session: result.Session,
			Pass:    result.Pass,
			Events:  len(result.Trace),
			Errors:  result.Errors,
		}
		summary.add(r)
		printScenario(out, r)
	}

	return finishSummary(out, summary)
}

// persist appends a run's session and events to the trace log.
func persist(ctx context.Context, st *store.Store, name string, result *harness.Result) error {
	existing, err := st.Sessions(ctx)
	if err != nil {
		return err
	}
	var next int64 = 1
	for _, s := range existing {
		if s.CreatedAtSeq >= next {
			next = s.CreatedAtSeq + 1
		}
	}
	sess := store.Session{ID: result.Session, Name: name, CreatedAtSeq: next}
	if err := st.WriteSession(ctx, sess); err != nil {
		return err
	}
	return st.WriteEvents(ctx, result.Trace)
}

func printScenario(out *OutputFormatter, r ScenarioResult) {
	if r.Pass {
		out.Printf("✓ %s (%d events)\n", r.Name, r.Events)
		return
	}
	out.Printf("✗ %s\n", r.Name)
	for _, e := range r.Errors {
		out.Printf("  %s\n", e)
	}
}

// finishSummary prints the summary and maps failures to ExitFailure.
func finishSummary(out *OutputFormatter, summary RunSummary) error {
	var failure *CLIError
	if summary.Failed > 0 {
		failure = &CLIError{
			Code:    ErrCodeFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", summary.Failed),
		}
	}

	if out.JSON() {
		if err := out.Respond(summary, failure); err != nil {
			return err
		}
	} else {
		out.Printf("\nSummary: %d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)
	}

	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}
