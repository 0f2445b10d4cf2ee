// Package baseline persists one checker run's diagnostics and fingerprints,
// and diffs fingerprint sets across runs for progress reporting.
package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultPath is the baseline file written next to the project root.
const DefaultPath = ".stitch_progress.json"

// Baseline is a persisted snapshot of one checker run. Field names are part
// of the on-disk format.
type Baseline struct {
	Timestamp  string            `json:"timestamp"`
	ReturnCode int               `json:"return_code"`
	Messages   []json.RawMessage `json:"messages"`
	ErrorKeys  []string          `json:"error_keys"`
}

// New builds a baseline stamped with the current UTC time.
func New(returnCode int, messages []json.RawMessage, errorKeys []string) *Baseline {
	return &Baseline{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		ReturnCode: returnCode,
		Messages:   messages,
		ErrorKeys:  errorKeys,
	}
}

// Load reads a baseline file. A missing or unreadable file yields (nil, nil):
// the previous run simply does not exist, which callers treat as "nothing to
// diff against".
func Load(path string) (*Baseline, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("baseline: read %s: %w", path, err)
	}
	var b Baseline
	if err := json.Unmarshal(content, &b); err != nil {
		// повреждённый baseline — как отсутствующий
		return nil, nil
	}
	return &b, nil
}

// Save writes the baseline all-or-nothing: a full temp file in the target
// directory, then an atomic rename. There is no partial or append format.
func Save(path string, b *Baseline) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("baseline: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".baseline-*")
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op после успешного rename

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("baseline: write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("baseline: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("baseline: rename to %s: %w", path, err)
	}
	return nil
}
