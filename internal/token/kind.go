package token

// Kind enumerates the structural delimiters the scanner emits. Anything that
// is not a delimiter in code state is not a token at all.
type Kind uint8

const (
	Invalid Kind = iota
	LBrace
	RBrace
	LParen
	RParen
	LBracket
	RBracket
)

func (k Kind) String() string {
	switch k {
	case LBrace:
		return "LBrace"
	case RBrace:
		return "RBrace"
	case LParen:
		return "LParen"
	case RParen:
		return "RParen"
	case LBracket:
		return "LBracket"
	case RBracket:
		return "RBracket"
	}
	return "Invalid"
}

// Rune returns the delimiter character for the kind.
func (k Kind) Rune() byte {
	switch k {
	case LBrace:
		return '{'
	case RBrace:
		return '}'
	case LParen:
		return '('
	case RParen:
		return ')'
	case LBracket:
		return '['
	case RBracket:
		return ']'
	}
	return 0
}

// IsOpen reports whether the kind opens a delimiter pair.
func (k Kind) IsOpen() bool {
	switch k {
	case LBrace, LParen, LBracket:
		return true
	default:
		return false
	}
}

// IsClose reports whether the kind closes a delimiter pair.
func (k Kind) IsClose() bool {
	switch k {
	case RBrace, RParen, RBracket:
		return true
	default:
		return false
	}
}

// Match returns the opposite kind of the pair (LBrace -> RBrace and back).
func (k Kind) Match() Kind {
	switch k {
	case LBrace:
		return RBrace
	case RBrace:
		return LBrace
	case LParen:
		return RParen
	case RParen:
		return LParen
	case LBracket:
		return RBracket
	case RBracket:
		return LBracket
	}
	return Invalid
}

// KindForByte maps a delimiter byte to its Kind; Invalid for anything else.
func KindForByte(b byte) Kind {
	switch b {
	case '{':
		return LBrace
	case '}':
		return RBrace
	case '(':
		return LParen
	case ')':
		return RParen
	case '[':
		return LBracket
	case ']':
		return RBracket
	}
	return Invalid
}
