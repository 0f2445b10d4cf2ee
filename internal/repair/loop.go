package repair

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"stitch/internal/checker"
	"stitch/internal/diag"
	"stitch/internal/patch"
)

// DefaultMaxIterations bounds the loop when the caller does not.
const DefaultMaxIterations = 10

// Options configures one repair run.
type Options struct {
	// Target is the file being repaired; diagnostics elsewhere are ignored.
	Target string
	// MaxIterations is the hard cap; <= 0 means DefaultMaxIterations.
	MaxIterations int
	// Checker runs the external build and parses its diagnostics.
	Checker *checker.Runner

	// MatchCode, when set, restricts actionable diagnostics to this code.
	MatchCode string
	// MatchText, when set, restricts actionable diagnostics to those whose
	// headline contains this substring.
	MatchText string

	// CommentText overrides the explanatory comment written above each
	// neutralized line. Empty means a note derived from the diagnostic.
	CommentText string
	// Tag prefixes the per-iteration backup tags ("<tag>-i<N>").
	Tag string

	// Ledger, when set, records applied operations and stops the loop when
	// an operation was already applied by a previous run.
	Ledger *patch.Ledger
	// Events, when set, receives progress notifications. Sends never block;
	// a slow or absent reader drops events.
	Events chan<- Event
}

// Result of a repair run. Aborted is a terminal state, not an error: Applied
// always carries every patch for audit.
type Result struct {
	State      State
	Iterations int
	Applied    []*patch.Applied
	// Remaining counts the actionable diagnostics observed in the last
	// checker run.
	Remaining int
}

// Run executes the repair cycle. A checker invocation failure or a patch
// write failure is a hard error; the partial result is returned alongside so
// already-applied patches stay auditable.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Target == "" {
		return nil, fmt.Errorf("repair: no target file")
	}
	if opts.Checker == nil {
		return nil, fmt.Errorf("repair: no checker configured")
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	tag := opts.Tag
	if tag == "" {
		tag = "repair"
	}

	res := &Result{State: StateIdle}
	for i := 1; ; i++ {
		if i > maxIter {
			res.State = StateAborted
			emit(opts.Events, Event{Iteration: maxIter, State: StateAborted,
				Note: fmt.Sprintf("iteration cap %d hit, manual review required", maxIter)})
			break
		}
		res.Iterations = i

		emit(opts.Events, Event{Iteration: i, State: StateChecking})
		run, err := opts.Checker.Run(ctx)
		if err != nil {
			res.State = StateAborted
			return res, fmt.Errorf("repair: %w", err)
		}

		emit(opts.Events, Event{Iteration: i, State: StateDiagnosing})
		actionable := pick(run.Bag, opts)
		res.Remaining = len(actionable)
		if len(actionable) == 0 {
			res.State = StateDone
			emit(opts.Events, Event{Iteration: i, State: StateDone})
			break
		}
		d := actionable[0]

		op := patch.Operation{
			Target:      opts.Target,
			Mode:        patch.CommentOut,
			StartLine:   d.Primary.Line,
			EndLine:     d.Primary.Line,
			CommentText: commentText(opts, d),
			Tag:         fmt.Sprintf("%s-i%d", tag, i),
		}

		if opts.Ledger != nil && opts.Ledger.Seen(op.Key()) {
			// та же правка уже применялась раньше и не помогла
			res.State = StateAborted
			emit(opts.Events, Event{Iteration: i, State: StateAborted,
				Note: fmt.Sprintf("edit already applied by a previous run: %s", op.Key())})
			break
		}

		emit(opts.Events, Event{Iteration: i, State: StatePatching,
			Note: fmt.Sprintf("%s %s", d.Primary, d.Headline())})
		applied, err := patch.Apply(op)
		if err != nil {
			res.State = StateAborted
			return res, fmt.Errorf("repair: %w", err)
		}
		if applied.NoOp {
			// правка ничего не меняет — прогресса не будет
			res.State = StateAborted
			emit(opts.Events, Event{Iteration: i, State: StateAborted,
				Note: "patch is a no-op, stopping"})
			break
		}
		res.Applied = append(res.Applied, applied)
		if opts.Ledger != nil {
			opts.Ledger.Record(applied)
		}
	}

	if opts.Ledger != nil && len(res.Applied) > 0 {
		if err := opts.Ledger.Save(); err != nil {
			return res, err
		}
	}
	return res, nil
}

// pick returns the error-severity diagnostics that point into the target and
// pass the code/text filters, in bag order.
func pick(bag *diag.Bag, opts Options) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range bag.Errors() {
		if d.Primary.IsZero() || !sameFile(d.Primary.File, opts.Target) {
			continue
		}
		if opts.MatchCode != "" && d.Code != opts.MatchCode {
			continue
		}
		if opts.MatchText != "" && !strings.Contains(d.Headline(), opts.MatchText) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// sameFile compares paths leniently: checker output is usually relative to
// the build directory while the target may be absolute, so one path being a
// component-aligned suffix of the other counts as a match.
func sameFile(a, b string) bool {
	a = filepath.ToSlash(filepath.Clean(a))
	b = filepath.ToSlash(filepath.Clean(b))
	if a == b {
		return true
	}
	return strings.HasSuffix(a, "/"+b) || strings.HasSuffix(b, "/"+a)
}

func commentText(opts Options, d diag.Diagnostic) string {
	if opts.CommentText != "" {
		return opts.CommentText
	}
	return "stitch: " + d.Headline()
}

func emit(ch chan<- Event, ev Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}
