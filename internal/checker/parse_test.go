package checker

import (
	"strings"
	"testing"

	"stitch/internal/diag"
)

const sampleStream = `
{"reason":"compiler-artifact","target":{"name":"demo"}}
not json at all, build noise
{"reason":"compiler-message","message":{"level":"error","code":{"code":"E0425"},"spans":[{"is_primary":false,"file_name":"src/other.rs","line_start":1,"column_start":1},{"is_primary":true,"file_name":"src/main.rs","line_start":12,"column_start":9}],"rendered":"error[E0425]: cannot find value x\n --> src/main.rs:12:9\n"}}

{"reason":"compiler-message","message":{"level":"warning","code":null,"spans":[],"rendered":"warning: unused import\n"}}
{"reason":"build-finished","success":false}
`

func TestParseStream(t *testing.T) {
	bag := diag.NewBag(0)
	raw, skipped, err := ParseStream(strings.NewReader(sampleStream), bag)
	if err != nil {
		t.Fatalf("ParseStream: %v", err)
	}

	if skipped != 1 {
		t.Errorf("skipped = %d, want 1 (the noise line)", skipped)
	}
	if bag.Len() != 2 {
		t.Fatalf("got %d diagnostics, want 2", bag.Len())
	}
	if len(raw) != 2 {
		t.Fatalf("got %d raw messages, want 2", len(raw))
	}

	e := bag.Items()[0]
	if e.Severity != diag.SevError || e.Code != "E0425" {
		t.Errorf("first diagnostic = %+v", e)
	}
	// primary span выбирается по is_primary, а не по порядку
	want := diag.Location{File: "src/main.rs", Line: 12, Col: 9}
	if e.Primary != want {
		t.Errorf("primary = %+v, want %+v", e.Primary, want)
	}
	if e.Headline() != "error[E0425]: cannot find value x" {
		t.Errorf("headline = %q", e.Headline())
	}

	w := bag.Items()[1]
	if w.Severity != diag.SevWarning || w.Code != "" {
		t.Errorf("second diagnostic = %+v", w)
	}
	// отсутствие primary span — пустая Location, не ошибка
	if !w.Primary.IsZero() {
		t.Errorf("expected zero location, got %+v", w.Primary)
	}
}

func TestParseStreamEmptyAndGarbage(t *testing.T) {
	bag := diag.NewBag(0)
	raw, skipped, err := ParseStream(strings.NewReader("\n\n\tgarbage\n[1,2,3]\n"), bag)
	if err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	if bag.Len() != 0 || len(raw) != 0 {
		t.Error("expected no diagnostics")
	}
	if skipped == 0 {
		t.Error("expected skipped lines")
	}
}
