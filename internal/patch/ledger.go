package patch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when ledgerPayload format changes
const ledgerSchemaVersion uint16 = 1

// DefaultLedgerName is the ledger file written under the project root.
const DefaultLedgerName = ".stitch_ledger.mp"

// Entry records one applied operation. The repair loop consults entries to
// avoid re-patching a target it already touched for the same logical edit.
type Entry struct {
	Key        string
	Target     string
	Mode       string
	Tag        string
	BackupPath string
	AppliedAt  time.Time
}

// ledgerPayload is the on-disk shape. Entries stay ordered by application
// time so the file doubles as an audit log.
type ledgerPayload struct {
	Schema  uint16
	Entries []Entry
}

// Ledger хранит историю применённых правок на диске.
// Thread-safe for concurrent access.
type Ledger struct {
	mu      sync.RWMutex
	path    string
	entries []Entry
	index   map[string]int // Key -> позиция в entries
}

// OpenLedger loads the ledger at path, or starts an empty one when the file
// does not exist. A payload with an unknown schema version is discarded
// rather than misread.
func OpenLedger(path string) (*Ledger, error) {
	l := &Ledger{path: path, index: make(map[string]int)}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	defer f.Close()

	var payload ledgerPayload
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("ledger: decode %s: %w", path, err)
	}
	if payload.Schema != ledgerSchemaVersion {
		// несовместимая схема — начинаем заново
		return l, nil
	}
	l.entries = payload.Entries
	for i, e := range l.entries {
		l.index[e.Key] = i
	}
	return l, nil
}

// Seen reports whether an operation with this key was already recorded.
func (l *Ledger) Seen(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.index[key]
	return ok
}

// Record remembers an applied operation. Re-recording the same key updates
// the existing entry in place.
func (l *Ledger) Record(a *Applied) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		Key:        a.Key,
		Target:     a.Op.Target,
		Mode:       a.Op.Mode.String(),
		Tag:        a.Op.tag(),
		BackupPath: a.BackupPath,
		AppliedAt:  a.AppliedAt,
	}
	if i, ok := l.index[e.Key]; ok {
		l.entries[i] = e
		return
	}
	l.index[e.Key] = len(l.entries)
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the recorded history in application order.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded operations.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Save writes the ledger whole via a sibling temp file and rename.
func (l *Ledger) Save() error {
	l.mu.RLock()
	payload := ledgerPayload{Schema: ledgerSchemaVersion, Entries: l.entries}
	l.mu.RUnlock()

	dir := filepath.Dir(l.path)
	f, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op после успешного rename

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&payload); err != nil {
		f.Close()
		return fmt.Errorf("ledger: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("ledger: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("ledger: rename to %s: %w", l.path, err)
	}
	return nil
}
