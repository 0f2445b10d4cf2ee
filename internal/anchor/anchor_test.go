package anchor_test

import (
	"errors"
	"strings"
	"testing"

	"stitch/internal/anchor"
	"stitch/internal/source"
)

func makeFile(t *testing.T, input string) *source.File {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rs", []byte(input))
	return fs.Get(id)
}

func TestLocateSimpleBlock(t *testing.T) {
	input := "fn helper() {}\n\npub fn target(x: i32) {\n    if x > 0 {\n        y();\n    }\n}\n\nfn tail() {}\n"
	f := makeFile(t, input)

	a, err := anchor.Locate(f, "pub fn target", anchor.Options{})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}

	body := string(f.Content[a.BodyStart:a.BodyEnd])
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		t.Fatalf("body = %q", body)
	}
	// сбалансированность: число { равно числу }
	if strings.Count(body, "{") != strings.Count(body, "}") {
		t.Errorf("unbalanced body %q", body)
	}
	if !strings.Contains(body, "if x > 0 {") {
		t.Errorf("nested block missing from body %q", body)
	}
	// BodyEnd — сразу после закрывающей скобки
	if f.Content[a.BodyEnd-1] != '}' {
		t.Errorf("BodyEnd points at %q", f.Content[a.BodyEnd-1])
	}
	if a.BodyStart >= a.BodyEnd {
		t.Errorf("BodyStart %d >= BodyEnd %d", a.BodyStart, a.BodyEnd)
	}
}

func TestLocateIgnoresBracesInStringsAndComments(t *testing.T) {
	input := "fn target() {\n    let s = \"}\"; // }\n    /* } */\n    real();\n}\nfn after() {}\n"
	f := makeFile(t, input)

	a, err := anchor.Locate(f, "fn target", anchor.Options{})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	body := string(f.Content[a.BodyStart:a.BodyEnd])
	if !strings.Contains(body, "real();") {
		t.Errorf("body closed too early: %q", body)
	}
	if strings.Contains(body, "fn after") {
		t.Errorf("body overshot: %q", body)
	}
}

func TestLocateNthOccurrence(t *testing.T) {
	input := "fn dup() { first(); }\n\nfn dup() { second(); }\n"
	f := makeFile(t, input)

	first, err := anchor.Locate(f, "fn dup", anchor.Options{Occurrence: 1})
	if err != nil {
		t.Fatalf("occurrence 1: %v", err)
	}
	second, err := anchor.Locate(f, "fn dup", anchor.Options{Occurrence: 2})
	if err != nil {
		t.Fatalf("occurrence 2: %v", err)
	}

	if !strings.Contains(string(f.Content[first.BodyStart:first.BodyEnd]), "first()") {
		t.Error("occurrence 1 located the wrong block")
	}
	if !strings.Contains(string(f.Content[second.BodyStart:second.BodyEnd]), "second()") {
		t.Error("occurrence 2 located the wrong block")
	}

	if _, err := anchor.Locate(f, "fn dup", anchor.Options{Occurrence: 3}); !errors.Is(err, anchor.ErrAnchorNotFound) {
		t.Errorf("occurrence 3: expected ErrAnchorNotFound, got %v", err)
	}
}

func TestLocateParenDelimiter(t *testing.T) {
	input := "call_site(a, (b, c), d);\n"
	f := makeFile(t, input)

	a, err := anchor.Locate(f, "call_site", anchor.Options{Delim: '('})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got := string(f.Content[a.BodyStart:a.BodyEnd]); got != "(a, (b, c), d)" {
		t.Errorf("body = %q", got)
	}
}

func TestLocateMarkerNotFound(t *testing.T) {
	f := makeFile(t, "fn something() {}\n")
	_, err := anchor.Locate(f, "fn missing", anchor.Options{})
	if !errors.Is(err, anchor.ErrAnchorNotFound) {
		t.Errorf("expected ErrAnchorNotFound, got %v", err)
	}
}

func TestLocateUnbalanced(t *testing.T) {
	// открыли и не закрыли
	f := makeFile(t, "fn broken() {\n    if x {\n}\n")
	_, err := anchor.Locate(f, "fn broken", anchor.Options{})
	if !errors.Is(err, anchor.ErrUnbalancedAnchor) {
		t.Errorf("expected ErrUnbalancedAnchor, got %v", err)
	}

	// маркер есть, но блока после него нет
	f = makeFile(t, "// fn broken has no body\nconst X: i32 = 1;\n")
	_, err = anchor.Locate(f, "fn broken", anchor.Options{})
	if !errors.Is(err, anchor.ErrUnbalancedAnchor) {
		t.Errorf("expected ErrUnbalancedAnchor for missing block, got %v", err)
	}
}

func TestOccurrences(t *testing.T) {
	f := makeFile(t, "aba aba aba")
	offs := anchor.Occurrences(f, "aba")
	if len(offs) != 3 || offs[0] != 0 || offs[1] != 4 || offs[2] != 8 {
		t.Errorf("Occurrences = %v", offs)
	}
	if got := anchor.Occurrences(f, "zzz"); len(got) != 0 {
		t.Errorf("expected none, got %v", got)
	}
}
