package patch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stitch/internal/anchor"
	"stitch/internal/source"
)

// Applied reports the outcome of one operation.
type Applied struct {
	Op         Operation
	Key        string
	BackupPath string
	// NoOp means the rendered content matched the current content byte for
	// byte; the target and backup were left untouched.
	NoOp      bool
	AppliedAt time.Time
}

// Apply performs one edit transactionally: load, render the full new content,
// validate, back up the pre-edit bytes, write the target whole via temp file
// and rename. A failed validation leaves both the target and the backup
// untouched. Line endings are normalized to LF on write.
func Apply(op Operation) (*Applied, error) {
	// raw disk bytes for the backup: the artifact is an exact pre-edit copy
	// #nosec G304 -- target is provided by the caller
	raw, err := os.ReadFile(op.Target)
	if err != nil {
		return nil, fmt.Errorf("patch: read %s: %w", op.Target, err)
	}

	fs := source.NewFileSet()
	id, err := fs.Load(op.Target)
	if err != nil {
		return nil, fmt.Errorf("patch: %w", err)
	}
	f := fs.Get(id)

	newContent, err := render(f, op)
	if err != nil {
		return nil, err
	}

	res := &Applied{
		Op:        op,
		Key:       op.Key(),
		AppliedAt: time.Now().UTC(),
	}
	if bytes.Equal(newContent, f.Content) {
		res.NoOp = true
		return res, nil
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(op.Target); statErr == nil {
		mode = info.Mode().Perm()
	}

	backup := BackupPath(op.Target, op.Tag)
	if err := os.WriteFile(backup, raw, mode); err != nil {
		return nil, fmt.Errorf("patch: backup %s: %w", backup, err)
	}
	res.BackupPath = backup

	if err := writeAtomic(op.Target, newContent, mode); err != nil {
		return nil, err
	}
	return res, nil
}

// render builds the complete post-edit content. All validation lives here,
// before any byte hits disk.
func render(f *source.File, op Operation) ([]byte, error) {
	switch op.Mode {
	case RangeReplace:
		return renderRange(f, op)
	case CommentOut:
		return renderCommentOut(f, op)
	case InsertBefore, InsertAfter, ReplaceBody:
		return renderAnchored(f, op)
	}
	return nil, fmt.Errorf("patch: unknown mode %d", op.Mode)
}

func checkRange(f *source.File, op Operation) error {
	if op.StartLine == 0 || op.EndLine < op.StartLine || op.EndLine > f.LineCount() {
		return fmt.Errorf("%w: %d-%d of %d lines in %s",
			ErrRangeOutOfBounds, op.StartLine, op.EndLine, f.LineCount(), f.Path)
	}
	return nil
}

func renderRange(f *source.File, op Operation) ([]byte, error) {
	if err := checkRange(f, op); err != nil {
		return nil, err
	}
	startSpan := f.LineSpan(op.StartLine)
	endSpan := f.LineSpan(op.EndLine)

	repl := bytes.TrimSuffix(op.Replacement, []byte("\n"))

	out := make([]byte, 0, len(f.Content)+len(repl))
	out = append(out, f.Content[:startSpan.Start]...)
	out = append(out, repl...)
	// хвост начинается с \n, завершавшего end-строку (если он был)
	out = append(out, f.Content[endSpan.End:]...)
	return out, nil
}

func renderCommentOut(f *source.File, op Operation) ([]byte, error) {
	if err := checkRange(f, op); err != nil {
		return nil, err
	}

	var block bytes.Buffer
	if op.CommentText != "" {
		block.WriteString(indentOf(f.GetLine(op.StartLine)))
		block.WriteString("// ")
		block.WriteString(op.CommentText)
		block.WriteByte('\n')
	}
	for n := op.StartLine; n <= op.EndLine; n++ {
		line := f.GetLine(n)
		indent := indentOf(line)
		block.WriteString(indent)
		block.WriteString("// ")
		block.WriteString(line[len(indent):])
		if n < op.EndLine {
			block.WriteByte('\n')
		}
	}

	rangeOp := op
	rangeOp.Replacement = block.Bytes()
	return renderRange(f, rangeOp)
}

func renderAnchored(f *source.File, op Operation) ([]byte, error) {
	a, err := anchor.Locate(f, op.Marker, anchor.Options{Occurrence: op.Occurrence})
	if err != nil {
		return nil, fmt.Errorf("patch: %w", err)
	}

	var at, upto uint32
	switch op.Mode {
	case InsertBefore:
		at, upto = a.BodyStart, a.BodyStart
	case InsertAfter:
		at, upto = a.BodyEnd, a.BodyEnd
	case ReplaceBody:
		at, upto = a.BodyStart, a.BodyEnd
	}

	out := make([]byte, 0, len(f.Content)+len(op.Replacement))
	out = append(out, f.Content[:at]...)
	out = append(out, op.Replacement...)
	out = append(out, f.Content[upto:]...)
	return out, nil
}

// indentOf returns the leading whitespace of a line.
func indentOf(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}

// writeAtomic writes content to path via a sibling temp file and rename, so a
// crash mid-write never leaves a truncated target.
func writeAtomic(path string, content []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".patch-*")
	if err != nil {
		return fmt.Errorf("patch: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op после успешного rename

	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("patch: write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("patch: close %s: %w", tmp, err)
	}
	if err := os.Chmod(tmp, mode); err != nil {
		return fmt.Errorf("patch: chmod %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("patch: rename to %s: %w", path, err)
	}
	return nil
}
