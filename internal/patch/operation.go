// Package patch applies targeted, transactional edits to a file: validate,
// back up, write whole, never leave a half-written target. Edits address
// either an explicit 1-based line range or a balanced span located by the
// anchor package.
package patch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Mode selects how the operation addresses and rewrites the target.
type Mode uint8

const (
	// RangeReplace replaces lines [StartLine, EndLine] with Replacement.
	RangeReplace Mode = iota
	// CommentOut prefixes every line in [StartLine, EndLine] with "// ",
	// preserving each line's indentation.
	CommentOut
	// InsertBefore inserts Replacement immediately before the anchor body.
	InsertBefore
	// InsertAfter inserts Replacement immediately after the anchor body.
	InsertAfter
	// ReplaceBody replaces the anchor's balanced [BodyStart, BodyEnd) span.
	ReplaceBody
)

func (m Mode) String() string {
	switch m {
	case RangeReplace:
		return "range-replace"
	case CommentOut:
		return "comment-out"
	case InsertBefore:
		return "insert-before"
	case InsertAfter:
		return "insert-after"
	case ReplaceBody:
		return "replace-body"
	}
	return "unknown"
}

// ErrRangeOutOfBounds is returned when a line range falls outside
// [1, lineCount]. Validation happens before any write: no backup is
// created for an invalid operation.
var ErrRangeOutOfBounds = errors.New("line range out of bounds")

// Operation describes one edit. Construct, validate, apply, discard;
// operations are never retried automatically.
type Operation struct {
	// Target is the path of the file to edit.
	Target string
	Mode   Mode

	// StartLine/EndLine address RangeReplace and CommentOut, 1-based inclusive.
	StartLine uint32
	EndLine   uint32

	// Marker/Occurrence address the anchor modes.
	Marker     string
	Occurrence int

	// Replacement is the literal new content (without trailing newline;
	// one is added when splicing whole lines).
	Replacement []byte

	// Tag names the backup artifact; same tag overwrites, different tags
	// coexist. Empty means "stitch".
	Tag string

	// CommentText, for CommentOut, is written as an explanatory comment
	// line above the neutralized range.
	CommentText string
}

// Key identifies the logical edit for the ledger: idempotence is a property
// of the recorded operation, not of incidental string matching.
func (op Operation) Key() string {
	loc := fmt.Sprintf("%d-%d", op.StartLine, op.EndLine)
	if op.Marker != "" {
		occ := op.Occurrence
		if occ <= 0 {
			occ = 1
		}
		loc = fmt.Sprintf("%s#%d", op.Marker, occ)
	}
	return strings.Join([]string{filepath.ToSlash(op.Target), op.Mode.String(), loc, op.tag()}, "|")
}

func (op Operation) tag() string {
	if op.Tag == "" {
		return "stitch"
	}
	return op.Tag
}

// BackupPath derives the backup artifact name deterministically from the
// target path and tag: target + "." + tag + ".bak". Stitch never deletes
// backups; same-tag reapplication overwrites the same artifact.
func BackupPath(target, tag string) string {
	if tag == "" {
		tag = "stitch"
	}
	return target + "." + tag + ".bak"
}
