package repair

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stitch/internal/checker"
	"stitch/internal/patch"
)

// fakeChecker пишет один и тот же диагностический поток и выходит с кодом 101.
func fakeChecker(t *testing.T, target string) *checker.Runner {
	t.Helper()
	stream := fmt.Sprintf(`{"reason":"compiler-message","message":{"level":"error","code":{"code":"E0425"},"spans":[{"is_primary":true,"file_name":%q,"line_start":2,"column_start":5}],"rendered":"error[E0425]: cannot find value\n --> src/main.rs:2:5\n"}}`, target)
	script := filepath.Join(t.TempDir(), "diag.json")
	if err := os.WriteFile(script, []byte(stream+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return &checker.Runner{Command: []string{"sh", "-c", "cat " + script + "; exit 101"}}
}

func writeTarget(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.rs")
	content := "fn main() {\n    undefined_value;\n}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Чекер, который всегда сообщает одну и ту же ошибку: цикл обязан
// остановиться ровно на лимите итераций с ровно cap применёнными патчами.
func TestRunIterationCap(t *testing.T) {
	target := writeTarget(t)

	res, err := Run(context.Background(), Options{
		Target:        target,
		MaxIterations: 3,
		Checker:       fakeChecker(t, target),
		Tag:           "test",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateAborted {
		t.Errorf("state = %v, want aborted", res.State)
	}
	if len(res.Applied) != 3 {
		t.Fatalf("applied = %d, want exactly 3", len(res.Applied))
	}
	if res.Remaining == 0 {
		t.Error("remaining = 0, diagnostics still outstanding")
	}
	for i, a := range res.Applied {
		wantTag := fmt.Sprintf("test-i%d", i+1)
		if a.Op.Tag != wantTag {
			t.Errorf("applied[%d].Tag = %q, want %q", i, a.Op.Tag, wantTag)
		}
		if _, statErr := os.Stat(a.BackupPath); statErr != nil {
			t.Errorf("backup %s missing: %v", a.BackupPath, statErr)
		}
	}

	// строка с ошибкой закомментирована, по одной пояснительной строке
	// на итерацию
	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "// undefined_value;") {
		t.Errorf("target after repair: %q", string(content))
	}
	if n := strings.Count(string(content), "stitch:"); n != 3 {
		t.Errorf("note lines = %d, want 3\n%s", n, string(content))
	}
}

func TestRunDoneWhenClean(t *testing.T) {
	target := writeTarget(t)

	res, err := Run(context.Background(), Options{
		Target:  target,
		Checker: &checker.Runner{Command: []string{"sh", "-c", "exit 0"}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateDone {
		t.Errorf("state = %v, want done", res.State)
	}
	if len(res.Applied) != 0 || res.Remaining != 0 {
		t.Errorf("applied = %d, remaining = %d", len(res.Applied), res.Remaining)
	}
	if res.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", res.Iterations)
	}
}

func TestRunMatchCodeFilter(t *testing.T) {
	target := writeTarget(t)

	// диагностика с кодом E0425, фильтр требует другой код — ничего actionable
	res, err := Run(context.Background(), Options{
		Target:    target,
		MatchCode: "E9999",
		Checker:   fakeChecker(t, target),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateDone {
		t.Errorf("state = %v, want done", res.State)
	}
	if len(res.Applied) != 0 {
		t.Errorf("applied = %d, want 0", len(res.Applied))
	}
}

// Повторный запуск с тем же ledger останавливается сразу: правка первой
// итерации уже применялась раньше.
func TestRunLedgerStopsRepeat(t *testing.T) {
	target := writeTarget(t)
	ledgerPath := filepath.Join(filepath.Dir(target), patch.DefaultLedgerName)

	ledger, err := patch.OpenLedger(ledgerPath)
	if err != nil {
		t.Fatal(err)
	}
	first, err := Run(context.Background(), Options{
		Target:        target,
		MaxIterations: 2,
		Checker:       fakeChecker(t, target),
		Ledger:        ledger,
	})
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if len(first.Applied) != 2 {
		t.Fatalf("first applied = %d, want 2", len(first.Applied))
	}

	reloaded, err := patch.OpenLedger(ledgerPath)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(context.Background(), Options{
		Target:        target,
		MaxIterations: 2,
		Checker:       fakeChecker(t, target),
		Ledger:        reloaded,
	})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.State != StateAborted {
		t.Errorf("state = %v, want aborted", second.State)
	}
	if len(second.Applied) != 0 {
		t.Errorf("second applied = %d, want 0", len(second.Applied))
	}
}

func TestRunEventsEmitted(t *testing.T) {
	target := writeTarget(t)
	events := make(chan Event, 64)

	_, err := Run(context.Background(), Options{
		Target:        target,
		MaxIterations: 1,
		Checker:       fakeChecker(t, target),
		Events:        events,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	close(events)

	var states []State
	for ev := range events {
		states = append(states, ev.State)
	}
	if len(states) == 0 {
		t.Fatal("no events emitted")
	}
	if states[0] != StateChecking {
		t.Errorf("first event = %v, want checking", states[0])
	}
	last := states[len(states)-1]
	if last != StateAborted {
		t.Errorf("last event = %v, want aborted", last)
	}
}
