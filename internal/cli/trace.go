package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/ghostrap/internal/handler"
	"github.com/roach88/ghostrap/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Key      string // optional - filter to one property
	Phase    string // optional - filter to one phase
}

// TraceEvent is one event of a printed trace.
type TraceEvent struct {
	Seq   int64           `json:"seq"`
	ID    string          `json:"id"`
	Phase string          `json:"phase"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
	Args  json.RawMessage `json:"args"`
}

// TraceResult is the output of trace with --session.
type TraceResult struct {
	Session  string       `json:"session"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats summarizes a printed trace.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	ByPhase     map[string]int `json:"by_phase"`
	Keys        []string       `json:"keys"`
}

// SessionSummary is one row of trace without --session.
type SessionSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreatedAtSeq int64  `json:"created_at_seq"`
	Events       int    `json:"events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect traces stored by run --db",
		Long: `Inspect the SQLite trace log written by "ghostrap run --db".

Without --session, lists the recorded sessions. With --session, prints
that session's events in seq order, optionally narrowed to one key or
one phase.

Examples:
  ghostrap trace --db ./trace.db
  ghostrap trace --db ./trace.db --session 0190...
  ghostrap trace --db ./trace.db --session 0190... --key a --phase get
  ghostrap trace --db ./trace.db --session 0190... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to print")
	cmd.Flags().StringVar(&opts.Key, "key", "", "filter to one property key")
	cmd.Flags().StringVar(&opts.Phase, "phase", "", "filter to one phase")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	var filter store.EventFilter
	filter.Key = opts.Key
	if opts.Phase != "" {
		p, ok := handler.ParsePhase(opts.Phase)
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown phase %q", opts.Phase))
		}
		filter.Phase = p
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Session == "" {
		return listSessions(ctx, st, out)
	}

	sessions, err := st.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read sessions", err)
	}
	if !slices.ContainsFunc(sessions, func(s store.Session) bool { return s.ID == opts.Session }) {
		if out.JSON() {
			_ = out.Error(ErrCodeNotFound, "session not found", map[string]string{"session": opts.Session})
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
	}

	events, err := st.QueryEvents(ctx, opts.Session, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := TraceResult{
		Session:  opts.Session,
		Timeline: make([]TraceEvent, 0, len(events)),
		Stats: TraceStats{
			ByPhase: make(map[string]int),
			Keys:    []string{},
		},
	}
	for _, e := range events {
		result.Timeline = append(result.Timeline, TraceEvent{
			Seq:   e.Seq,
			ID:    e.ID,
			Phase: string(e.Phase),
			Key:   e.Key,
			Value: e.Value,
			Args:  e.Args,
		})
		result.Stats.ByPhase[string(e.Phase)]++
		if !slices.Contains(result.Stats.Keys, e.Key) {
			result.Stats.Keys = append(result.Stats.Keys, e.Key)
		}
	}
	result.Stats.TotalEvents = len(result.Timeline)
	slices.Sort(result.Stats.Keys)

	if out.JSON() {
		return out.Respond(result, nil)
	}
	return outputTraceText(out, result)
}

func listSessions(ctx context.Context, st *store.Store, out *OutputFormatter) error {
	sessions, err := st.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read sessions", err)
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		n, err := st.CountEvents(ctx, s.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to count events", err)
		}
		summaries = append(summaries, SessionSummary{
			ID:           s.ID,
			Name:         s.Name,
			CreatedAtSeq: s.CreatedAtSeq,
			Events:       n,
		})
	}

	if out.JSON() {
		return out.Respond(summaries, nil)
	}
	if len(summaries) == 0 {
		out.Printf("No sessions recorded.\n")
		return nil
	}
	for _, s := range summaries {
		out.Printf("%s  %-24s %d events\n", s.ID, s.Name, s.Events)
	}
	return nil
}

func outputTraceText(out *OutputFormatter, result TraceResult) error {
	out.Printf("Session: %s\n\n", result.Session)
	if len(result.Timeline) == 0 {
		out.Printf("No matching events.\n")
		return nil
	}
	for _, e := range result.Timeline {
		if string(e.Args) == "null" {
			out.Printf("[%d] %s:%s %s\n", e.Seq, e.Phase, e.Key, e.Value)
			continue
		}
		out.Printf("[%d] %s:%s %s args=%s\n", e.Seq, e.Phase, e.Key, e.Value, e.Args)
	}
	out.Printf("\n%d events", result.Stats.TotalEvents)
	for _, p := range handler.Phases {
		if n := result.Stats.ByPhase[string(p)]; n > 0 {
			out.Printf(", %s=%d", p, n)
		}
	}
	out.Printf("\n")
	return nil
}
