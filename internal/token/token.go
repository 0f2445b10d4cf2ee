package token

import (
	"stitch/internal/source"
)

// Token represents a single structural delimiter with its location.
// Line and Col are 1-based; Span carries file-absolute byte offsets.
type Token struct {
	Kind Kind
	Span source.Span
	Line uint32
	Col  uint32
}

// Closes reports whether t closes the delimiter opened by open.
func (t Token) Closes(open Token) bool {
	return t.Kind.IsClose() && open.Kind.IsOpen() && t.Kind == open.Kind.Match()
}
