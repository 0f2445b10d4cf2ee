package scanner

import "fmt"

// Mode is the scanner's carried lexical mode. Line comments never survive a
// line end, so they have no carried mode: a line that ends inside `//` hands
// the next line ModeCode.
type Mode uint8

const (
	ModeCode Mode = iota
	ModeBlockComment
	ModeString
)

func (m Mode) String() string {
	switch m {
	case ModeCode:
		return "code"
	case ModeBlockComment:
		return "block-comment"
	case ModeString:
		return "string"
	}
	return "unknown"
}

// State is the per-character lexical state carried between lines.
// Quote holds the opening delimiter while Mode == ModeString.
type State struct {
	Mode  Mode
	Quote byte
}

func (s State) String() string {
	if s.Mode == ModeString {
		return fmt.Sprintf("string(%c)", s.Quote)
	}
	return s.Mode.String()
}

// InCode reports whether the state allows token emission.
func (s State) InCode() bool {
	return s.Mode == ModeCode
}
