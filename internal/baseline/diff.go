package baseline

import "sort"

// Result of diffing two fingerprint sets. New and Resolved are sorted for
// deterministic output; Unchanged counts the intersection.
type Result struct {
	New       []string
	Resolved  []string
	Unchanged int
	prevTotal int
}

// Diff computes pure set algebra over fingerprints:
// new = current − previous, resolved = previous − current,
// unchanged = |current ∩ previous|.
// Diffing an unchanged set yields empty new/resolved and unchanged == |previous|.
func Diff(previous, current []string) Result {
	prev := toSet(previous)
	cur := toSet(current)

	res := Result{prevTotal: len(prev)}
	for k := range cur {
		if _, ok := prev[k]; ok {
			res.Unchanged++
		} else {
			res.New = append(res.New, k)
		}
	}
	for k := range prev {
		if _, ok := cur[k]; !ok {
			res.Resolved = append(res.Resolved, k)
		}
	}
	sort.Strings(res.New)
	sort.Strings(res.Resolved)
	return res
}

// Progress returns the percentage of prior errors resolved since the
// previous run: |resolved| / max(|previous|, 1) * 100.
func (r Result) Progress() float64 {
	denom := r.prevTotal
	if denom == 0 {
		denom = 1
	}
	return float64(len(r.Resolved)) / float64(denom) * 100.0
}

// HasNew reports whether any fingerprint appeared since the previous run.
func (r Result) HasNew() bool {
	return len(r.New) > 0
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
