package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"stitch/internal/diag"
)

// ErrCheckerFailed is returned when the checker exits non-zero and produced
// no parseable diagnostics at all — a broken invocation rather than a build
// with findings.
var ErrCheckerFailed = errors.New("external checker failed")

// Result is one checker run: typed diagnostics, raw message objects in
// stream order, the process return code, and the count of skipped lines.
type Result struct {
	Bag        *diag.Bag
	Raw        []json.RawMessage
	ReturnCode int
	Skipped    int
}

// ErrorKeys returns the fingerprints of the error-severity diagnostics.
func (r *Result) ErrorKeys() []string {
	return diag.Fingerprints(r.Bag.Errors())
}

// Runner invokes the external checker. The call blocks until the process
// exits; callers wanting a timeout pass a context with a deadline.
type Runner struct {
	// Command is the checker argv, e.g. ["cargo", "check", "--message-format=json"].
	Command []string
	// Dir is the working directory; empty means inherit.
	Dir string
	// MaxDiagnostics caps the bag; <= 0 means unlimited.
	MaxDiagnostics int
}

// Run executes the checker, parses its stdout stream, and returns the result.
// A non-zero exit with parseable diagnostics is a normal outcome (the build
// has errors); only a non-zero exit with zero diagnostics is ErrCheckerFailed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if len(r.Command) == 0 {
		return nil, fmt.Errorf("checker: empty command")
	}

	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...) // #nosec G204 -- checker command comes from the manifest
	cmd.Dir = r.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("checker: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("checker: start %q: %w", r.Command[0], err)
	}

	bag := diag.NewBag(r.MaxDiagnostics)
	raw, skipped, parseErr := ParseStream(stdout, bag)

	waitErr := cmd.Wait()
	if parseErr != nil {
		return nil, fmt.Errorf("checker: read output: %w", parseErr)
	}

	result := &Result{Bag: bag, Raw: raw, Skipped: skipped}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("checker: %w", waitErr)
		}
		result.ReturnCode = exitErr.ExitCode()
	}

	if result.ReturnCode != 0 && bag.Len() == 0 {
		return result, fmt.Errorf("%w: exit code %d, no diagnostics parsed (stderr: %s)",
			ErrCheckerFailed, result.ReturnCode, firstLine(stderr.String()))
	}
	return result, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
