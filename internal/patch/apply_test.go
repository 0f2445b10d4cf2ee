package patch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTarget(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.rs")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readTarget(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(content)
}

func TestRangeReplace(t *testing.T) {
	path := writeTarget(t, "one\ntwo\nthree\nfour\n")

	res, err := Apply(Operation{
		Target:      path,
		Mode:        RangeReplace,
		StartLine:   2,
		EndLine:     3,
		Replacement: []byte("TWO\nTHREE"),
		Tag:         "test",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.NoOp {
		t.Fatal("unexpected no-op")
	}

	if got := readTarget(t, path); got != "one\nTWO\nTHREE\nfour\n" {
		t.Errorf("target = %q", got)
	}
	if got := readTarget(t, res.BackupPath); got != "one\ntwo\nthree\nfour\n" {
		t.Errorf("backup = %q, want pre-edit content", got)
	}
	if res.BackupPath != path+".test.bak" {
		t.Errorf("backup path = %q", res.BackupPath)
	}
}

func TestRangeReplaceLastLineNoNewline(t *testing.T) {
	path := writeTarget(t, "a\nb")

	if _, err := Apply(Operation{
		Target: path, Mode: RangeReplace,
		StartLine: 2, EndLine: 2,
		Replacement: []byte("B"),
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := readTarget(t, path); got != "a\nB" {
		t.Errorf("target = %q", got)
	}
}

// Повторное применение той же правки — no-op: файл и бэкап не трогаются.
func TestApplyIdempotent(t *testing.T) {
	path := writeTarget(t, "a\nb\nc\n")
	op := Operation{
		Target: path, Mode: RangeReplace,
		StartLine: 2, EndLine: 2,
		Replacement: []byte("B"),
		Tag:         "idem",
	}

	first, err := Apply(op)
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if first.NoOp {
		t.Fatal("first application must not be a no-op")
	}
	afterFirst := readTarget(t, path)
	backupAfterFirst := readTarget(t, first.BackupPath)

	second, err := Apply(op)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if !second.NoOp {
		t.Error("second application must be a no-op")
	}
	if second.BackupPath != "" {
		t.Errorf("no-op created backup %q", second.BackupPath)
	}
	if got := readTarget(t, path); got != afterFirst {
		t.Errorf("target changed on no-op: %q", got)
	}
	if got := readTarget(t, first.BackupPath); got != backupAfterFirst {
		t.Errorf("backup changed on no-op: %q", got)
	}
	if first.Key != second.Key {
		t.Errorf("keys differ: %q vs %q", first.Key, second.Key)
	}
}

func TestRangeOutOfBounds(t *testing.T) {
	original := "a\nb\nc\n"
	path := writeTarget(t, original)

	cases := []struct {
		name       string
		start, end uint32
	}{
		{"zero start", 0, 1},
		{"end beyond file", 1, 4},
		{"inverted", 3, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Apply(Operation{
				Target: path, Mode: RangeReplace,
				StartLine: tc.start, EndLine: tc.end,
				Replacement: []byte("x"),
				Tag:         "oob",
			})
			if !errors.Is(err, ErrRangeOutOfBounds) {
				t.Fatalf("err = %v, want ErrRangeOutOfBounds", err)
			}
			if got := readTarget(t, path); got != original {
				t.Errorf("target modified: %q", got)
			}
			if _, statErr := os.Stat(BackupPath(path, "oob")); !errors.Is(statErr, os.ErrNotExist) {
				t.Error("backup created for invalid operation")
			}
		})
	}
}

func TestCommentOutPreservesIndent(t *testing.T) {
	path := writeTarget(t, "fn main() {\n    let a = 1;\n\tlet b = 2;\n}\n")

	res, err := Apply(Operation{
		Target: path, Mode: CommentOut,
		StartLine: 2, EndLine: 3,
		CommentText: "duplicate of earlier definition",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.NoOp {
		t.Fatal("unexpected no-op")
	}

	want := "fn main() {\n" +
		"    // duplicate of earlier definition\n" +
		"    // let a = 1;\n" +
		"\t// let b = 2;\n" +
		"}\n"
	if got := readTarget(t, path); got != want {
		t.Errorf("target = %q, want %q", got, want)
	}
}

func TestInsertAfterAnchor(t *testing.T) {
	path := writeTarget(t, "fn first() {\n    body();\n}\n")

	if _, err := Apply(Operation{
		Target: path, Mode: InsertAfter,
		Marker:      "fn first()",
		Replacement: []byte("\n\nfn second() {}"),
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := "fn first() {\n    body();\n}\n\nfn second() {}\n"
	if got := readTarget(t, path); got != want {
		t.Errorf("target = %q, want %q", got, want)
	}
}

func TestReplaceBody(t *testing.T) {
	path := writeTarget(t, "fn f() { old(); }\nfn g() {}\n")

	if _, err := Apply(Operation{
		Target: path, Mode: ReplaceBody,
		Marker:      "fn f()",
		Replacement: []byte("{ new(); }"),
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := "fn f() { new(); }\nfn g() {}\n"
	if got := readTarget(t, path); got != want {
		t.Errorf("target = %q, want %q", got, want)
	}
}

func TestAnchorSecondOccurrence(t *testing.T) {
	path := writeTarget(t, "fn dup() { a(); }\nfn dup() { b(); }\n")

	if _, err := Apply(Operation{
		Target: path, Mode: ReplaceBody,
		Marker:      "fn dup()",
		Occurrence:  2,
		Replacement: []byte("{ /* removed */ }"),
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := readTarget(t, path)
	if !strings.Contains(got, "fn dup() { a(); }") {
		t.Errorf("first occurrence touched: %q", got)
	}
	if !strings.Contains(got, "fn dup() { /* removed */ }") {
		t.Errorf("second occurrence not replaced: %q", got)
	}
}

func TestApplyNoStrayTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target.rs")
	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Apply(Operation{
		Target: path, Mode: RangeReplace,
		StartLine: 1, EndLine: 1,
		Replacement: []byte("A"),
		Tag:         "tmp",
	}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	// target + backup, ничего лишнего
	if len(entries) != 2 {
		t.Errorf("unexpected files: %v", entries)
	}
}
