package diag

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint computes a stable identity hash for cross-run comparison.
// It digests severity level, code, primary location, and only the first two
// rendered lines: the full message body churns between compiler versions
// and would defeat set comparison.
func Fingerprint(d Diagnostic) string {
	code := d.Code
	if code == "" {
		code = "nocode"
	}

	lines := strings.SplitN(d.Rendered, "\n", 3)
	if len(lines) > 2 {
		lines = lines[:2]
	}
	headline := strings.TrimSpace(strings.Join(lines, " | "))

	raw := d.Level + "|" + code + "|" + d.Primary.String() + "|" + headline
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Fingerprints maps a diagnostic slice to its fingerprint strings,
// preserving order.
func Fingerprints(ds []Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = Fingerprint(d)
	}
	return out
}
