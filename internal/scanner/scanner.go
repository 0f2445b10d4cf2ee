// Package scanner classifies source text into code, string-literal, and
// comment regions and emits structural delimiter tokens for code regions
// only. It is a heuristic lexer, not a grammar: raw string literals, nested
// block comments, and multi-character literal prefixes are out of scope.
// A lone apostrophe (e.g. a Rust lifetime) is treated as a char-literal
// opener and closes on the next unescaped apostrophe; callers patching such
// sources should anchor on markers outside lifetime-dense lines.
package scanner

import (
	"fmt"

	"fortio.org/safecast"

	"stitch/internal/source"
	"stitch/internal/token"
)

// ScanLine scans one line (without its trailing newline) starting in st and
// returns the delimiter tokens found in code state plus the state to carry
// into the next line. lineNum is 1-based, lineOff is the byte offset of the
// line start within the file; emitted spans are file-absolute.
//
// Priority of rules in code state: `//` eats the rest of the line, `/*` opens
// a block comment, a quote opens a literal, and only then delimiters are
// emitted. Inside a string a backslash consumes the following byte
// unconditionally.
func ScanLine(line []byte, fileID source.FileID, lineNum, lineOff uint32, st State) ([]token.Token, State) {
	var toks []token.Token

	i := 0
	for i < len(line) {
		b := line[i]
		switch st.Mode {
		case ModeBlockComment:
			// внутри блочного комментария распознаём только "*/"
			if b == '*' && i+1 < len(line) && line[i+1] == '/' {
				st = State{Mode: ModeCode}
				i += 2
				continue
			}
			i++

		case ModeString:
			if b == '\\' {
				// escape съедает следующий байт без анализа;
				// '\' в конце строки съедает перевод строки
				i += 2
				continue
			}
			if b == st.Quote {
				st = State{Mode: ModeCode}
			}
			i++

		default: // ModeCode
			if b == '/' && i+1 < len(line) {
				if line[i+1] == '/' {
					// остаток строки — комментарий; в начале следующей строки снова код
					return toks, State{Mode: ModeCode}
				}
				if line[i+1] == '*' {
					st = State{Mode: ModeBlockComment}
					i += 2
					continue
				}
			}
			if b == '"' || b == '\'' {
				st = State{Mode: ModeString, Quote: b}
				i++
				continue
			}
			if kind := token.KindForByte(b); kind != token.Invalid {
				off := lineOff + offU32(i)
				toks = append(toks, token.Token{
					Kind: kind,
					Span: source.Span{File: fileID, Start: off, End: off + 1},
					Line: lineNum,
					Col:  offU32(i) + 1,
				})
			}
			i++
		}
	}
	return toks, st
}

func offU32(i int) uint32 {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("line offset overflow: %w", err))
	}
	return v
}
