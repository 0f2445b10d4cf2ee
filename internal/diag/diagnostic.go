package diag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Location is a primary position reported by the checker.
// A zero Location means the diagnostic carried no primary span.
type Location struct {
	File string
	Line uint32
	Col  uint32
}

func (l Location) IsZero() bool {
	return l == Location{}
}

func (l Location) String() string {
	if l.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Diagnostic is one typed record parsed from the checker's message stream.
type Diagnostic struct {
	Severity Severity
	// Level is the checker's verbatim level string ("error", "warning", ...).
	Level string
	// Code is the checker's diagnostic code ("E0425"); empty when absent.
	Code string
	// Primary is the location of the span flagged is_primary.
	Primary Location
	// Rendered is the checker's full human-readable rendering.
	Rendered string
	// Raw is the original message object, kept for baseline persistence.
	Raw json.RawMessage
}

// Headline returns the first line of the rendered text.
func (d Diagnostic) Headline() string {
	line, _, _ := strings.Cut(d.Rendered, "\n")
	return strings.TrimSpace(line)
}
