package diag

// Severity buckets the checker's verbatim level string.
type Severity uint8

const (
	// SevOther is for notes, helps, and anything that is not a warning or error.
	SevOther Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevOther:
		return "OTHER"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// SeverityForLevel maps a checker level string to a Severity.
// Unrecognized levels land in SevOther; the verbatim level is kept on the
// Diagnostic for fingerprinting.
func SeverityForLevel(level string) Severity {
	switch level {
	case "error", "error: internal compiler error":
		return SevError
	case "warning":
		return SevWarning
	default:
		return SevOther
	}
}
