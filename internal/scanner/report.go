package scanner

import (
	"fmt"

	"fortio.org/safecast"

	"stitch/internal/source"
	"stitch/internal/token"
)

// Finding describes a delimiter with no partner.
type Finding struct {
	Tok      token.Token
	Unclosed bool // true: open with no close; false: stray close
}

func (f Finding) String() string {
	what := "stray closing"
	if f.Unclosed {
		what = "unclosed"
	}
	return fmt.Sprintf("%d:%d: %s '%c'", f.Tok.Line, f.Tok.Col, what, f.Tok.Kind.Rune())
}

// FileReport is the result of scanning a whole file with carried state.
type FileReport struct {
	FileID    source.FileID
	Path      string
	Tokens    []token.Token
	EndState  State
	Unmatched []Finding
}

// ScanFile streams the file line by line through ScanLine, carrying state
// across line ends, and pairs delimiters with a stack to surface unmatched
// ones. Prior lines are never re-scanned.
func ScanFile(f *source.File) *FileReport {
	rep := &FileReport{FileID: f.ID, Path: f.Path}

	st := State{Mode: ModeCode}
	lineStart := 0
	lineNum := uint32(1)

	flush := func(end int) {
		toks, next := ScanLine(f.Content[lineStart:end], f.ID, lineNum, lineOffU32(lineStart), st)
		rep.Tokens = append(rep.Tokens, toks...)
		st = next
		lineNum++
	}

	for i, b := range f.Content {
		if b == '\n' {
			flush(i)
			lineStart = i + 1
		}
	}
	if lineStart < len(f.Content) {
		flush(len(f.Content))
	}
	rep.EndState = st

	rep.Unmatched = pairDelimiters(rep.Tokens)
	return rep
}

// pairDelimiters matches opens against closes with a stack. A close that does
// not match the innermost open is reported as stray and left unpaired; opens
// remaining on the stack at end of input are reported as unclosed.
func pairDelimiters(toks []token.Token) []Finding {
	var findings []Finding
	var stack []token.Token

	for _, t := range toks {
		if t.Kind.IsOpen() {
			stack = append(stack, t)
			continue
		}
		if len(stack) > 0 && t.Closes(stack[len(stack)-1]) {
			stack = stack[:len(stack)-1]
			continue
		}
		findings = append(findings, Finding{Tok: t})
	}
	for _, t := range stack {
		findings = append(findings, Finding{Tok: t, Unclosed: true})
	}
	return findings
}

func lineOffU32(i int) uint32 {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("file offset overflow: %w", err))
	}
	return v
}
