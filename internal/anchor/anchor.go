// Package anchor locates balanced source spans by textual marker and
// delimiter depth matching. An anchor is the structural alternative to raw
// substring patching: edits target "the block opened after marker X" instead
// of a literal substring that may also occur inside strings or comments.
package anchor

import (
	"bytes"
	"errors"
	"fmt"

	"stitch/internal/scanner"
	"stitch/internal/source"
	"stitch/internal/token"
)

var (
	// ErrAnchorNotFound is returned when the marker does not occur in the file
	// (or occurs fewer times than the requested occurrence).
	ErrAnchorNotFound = errors.New("anchor marker not found")
	// ErrUnbalancedAnchor is returned when no matching close delimiter exists
	// before end of file.
	ErrUnbalancedAnchor = errors.New("anchor block is unbalanced")
)

// Anchor is a located, balanced span of source text.
// BodyStart is the offset of the opening delimiter; BodyEnd is the offset
// immediately after the close that returns depth to zero, so the substring
// [BodyStart, BodyEnd) is balanced.
type Anchor struct {
	Marker     string
	Occurrence int
	MarkerOff  uint32
	BodyStart  uint32
	BodyEnd    uint32
}

// Span returns the anchor body as a source span.
func (a Anchor) Span(fileID source.FileID) source.Span {
	return source.Span{File: fileID, Start: a.BodyStart, End: a.BodyEnd}
}

// Options configures Locate.
type Options struct {
	// Occurrence selects the Nth occurrence of the marker, 1-based.
	// Zero means first. The first occurrence is the canonical one in
	// duplicate-removal workflows; later occurrences are patch targets.
	Occurrence int
	// Delim is the opening delimiter of the block; '{' when zero.
	Delim byte
}

// Locate finds the Nth occurrence of marker and the balanced block that
// follows it. The marker line itself is assumed delimiter-free before the
// block opens; the depth scan runs on scanner tokens, so delimiters inside
// strings and comments do not count.
func Locate(f *source.File, marker string, opts Options) (Anchor, error) {
	if marker == "" {
		return Anchor{}, fmt.Errorf("%w: empty marker", ErrAnchorNotFound)
	}
	occurrence := opts.Occurrence
	if occurrence <= 0 {
		occurrence = 1
	}
	delim := opts.Delim
	if delim == 0 {
		delim = '{'
	}
	openKind := token.KindForByte(delim)
	if !openKind.IsOpen() {
		return Anchor{}, fmt.Errorf("invalid open delimiter %q", delim)
	}

	offsets := Occurrences(f, marker)
	if len(offsets) < occurrence {
		return Anchor{}, fmt.Errorf("%w: %q occurrence %d of %d in %s",
			ErrAnchorNotFound, marker, occurrence, len(offsets), f.Path)
	}
	markerOff := offsets[occurrence-1]

	rep := scanner.ScanFile(f)

	// первый open нужного вида на/после маркера
	depth := 0
	var bodyStart uint32
	started := false
	for _, t := range rep.Tokens {
		if t.Span.Start < markerOff {
			continue
		}
		if !started {
			if t.Kind != openKind {
				continue
			}
			started = true
			bodyStart = t.Span.Start
		}
		switch t.Kind {
		case openKind:
			depth++
		case openKind.Match():
			depth--
		}
		if started && depth == 0 {
			return Anchor{
				Marker:     marker,
				Occurrence: occurrence,
				MarkerOff:  markerOff,
				BodyStart:  bodyStart,
				BodyEnd:    t.Span.End,
			}, nil
		}
	}

	if !started {
		return Anchor{}, fmt.Errorf("%w: no %q after %q in %s",
			ErrUnbalancedAnchor, string(delim), marker, f.Path)
	}
	return Anchor{}, fmt.Errorf("%w: %q opened at offset %d never closes in %s",
		ErrUnbalancedAnchor, marker, bodyStart, f.Path)
}

// Occurrences returns the byte offsets of every occurrence of marker,
// in file order. Overlapping occurrences are not counted twice.
func Occurrences(f *source.File, marker string) []uint32 {
	var out []uint32
	needle := []byte(marker)
	if len(needle) == 0 {
		return out
	}
	from := 0
	for {
		i := bytes.Index(f.Content[from:], needle)
		if i < 0 {
			return out
		}
		out = append(out, uint32(from+i))
		from += i + len(needle)
	}
}
