package baseline

import (
	"fmt"
	"sort"
	"strings"

	"stitch/internal/diag"
)

// Summary aggregates one run's diagnostics by code and file.
type Summary struct {
	TotalErrors   int
	TotalWarnings int
	ByCode        map[string]int
	ByFile        map[string]int
}

// Summarize counts errors and warnings and buckets errors by diagnostic code
// and by primary file.
func Summarize(bag *diag.Bag) Summary {
	s := Summary{
		ByCode: make(map[string]int),
		ByFile: make(map[string]int),
	}
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevWarning:
			s.TotalWarnings++
		case diag.SevError:
			s.TotalErrors++
			code := d.Code
			if code == "" {
				code = "nocode"
			}
			s.ByCode[code]++
			if !d.Primary.IsZero() {
				s.ByFile[d.Primary.File]++
			}
		}
	}
	return s
}

// FormatCounter renders a counter as aligned "key × count" lines, most
// frequent first, capped at top entries.
func FormatCounter(counts map[string]int, top int) string {
	type kv struct {
		key   string
		count int
	}
	items := make([]kv, 0, len(counts))
	for k, v := range counts {
		items = append(items, kv{k, v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return items[i].key < items[j].key
	})
	if top > 0 && len(items) > top {
		items = items[:top]
	}
	if len(items) == 0 {
		return "  (none)"
	}

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %12s × %d", item.key, item.count)
	}
	return b.String()
}
