package diag

import (
	"strings"
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	d := Diagnostic{
		Severity: SevError,
		Level:    "error",
		Code:     "E0425",
		Primary:  Location{File: "src/main.rs", Line: 10, Col: 5},
		Rendered: "error[E0425]: cannot find value `x`\n --> src/main.rs:10:5\nnote: extra",
	}
	a := Fingerprint(d)
	b := Fingerprint(d)
	if a != b {
		t.Fatalf("fingerprint not deterministic: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected sha256 hex length 64, got %d", len(a))
	}
}

// Третья и последующие строки rendered не участвуют в отпечатке:
// несущественный текст не должен ломать сравнение между прогонами.
func TestFingerprintIgnoresTrailingRenderedLines(t *testing.T) {
	base := Diagnostic{
		Level:    "error",
		Code:     "E0308",
		Primary:  Location{File: "src/lib.rs", Line: 3, Col: 1},
		Rendered: "error[E0308]: mismatched types\n --> src/lib.rs:3:1\nexpected i32",
	}
	other := base
	other.Rendered = "error[E0308]: mismatched types\n --> src/lib.rs:3:1\nexpected u64, found chaos"

	if Fingerprint(base) != Fingerprint(other) {
		t.Error("fingerprint should ignore rendered lines past the second")
	}

	changed := base
	changed.Rendered = "error[E0308]: different headline\n --> src/lib.rs:3:1\n"
	if Fingerprint(base) == Fingerprint(changed) {
		t.Error("fingerprint should react to headline changes")
	}
}

func TestFingerprintDistinguishesFields(t *testing.T) {
	base := Diagnostic{Level: "error", Code: "E1", Primary: Location{File: "a.rs", Line: 1, Col: 1}, Rendered: "boom"}

	byCode := base
	byCode.Code = "E2"
	byLoc := base
	byLoc.Primary.Line = 2
	byLevel := base
	byLevel.Level = "warning"

	fp := Fingerprint(base)
	for name, d := range map[string]Diagnostic{"code": byCode, "location": byLoc, "level": byLevel} {
		if Fingerprint(d) == fp {
			t.Errorf("fingerprint ignores %s", name)
		}
	}
}

func TestFingerprintEmptyCode(t *testing.T) {
	d := Diagnostic{Level: "error", Rendered: "boom"}
	// пустой code подменяется на "nocode", отпечаток стабилен
	if Fingerprint(d) != Fingerprint(d) {
		t.Fatal("unstable")
	}
	if strings.Contains(Fingerprint(d), "|") {
		t.Fatal("fingerprint must be hex")
	}
}

func TestSeverityForLevel(t *testing.T) {
	cases := map[string]Severity{
		"error":   SevError,
		"warning": SevWarning,
		"note":    SevOther,
		"help":    SevOther,
		"":        SevOther,
	}
	for level, want := range cases {
		if got := SeverityForLevel(level); got != want {
			t.Errorf("SeverityForLevel(%q) = %v, want %v", level, got, want)
		}
	}
}

func TestBagSortAndFilter(t *testing.T) {
	b := NewBag(0)
	b.Add(Diagnostic{Severity: SevWarning, Level: "warning", Primary: Location{File: "b.rs", Line: 2}})
	b.Add(Diagnostic{Severity: SevError, Level: "error", Primary: Location{File: "a.rs", Line: 9}})
	b.Add(Diagnostic{Severity: SevError, Level: "error", Primary: Location{File: "a.rs", Line: 1}})

	b.Sort()
	items := b.Items()
	if items[0].Primary.Line != 1 || items[1].Primary.Line != 9 || items[2].Primary.File != "b.rs" {
		t.Errorf("bad sort order: %+v", items)
	}
	if len(b.Errors()) != 2 || len(b.Warnings()) != 1 {
		t.Error("filter counts wrong")
	}
	if !b.HasErrors() {
		t.Error("HasErrors should be true")
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(1)
	if !b.Add(Diagnostic{}) {
		t.Fatal("first add should succeed")
	}
	if b.Add(Diagnostic{}) {
		t.Fatal("second add should hit the cap")
	}
	if b.Len() != 1 {
		t.Fatalf("len = %d", b.Len())
	}
}
