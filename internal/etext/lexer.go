package etext

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse       = errors.New("etext: parse error")
	ErrCyclic      = errors.New("etext: cyclic value")
	ErrUnsupported = errors.New("etext: unsupported value")
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokPunct // single-rune punctuation, text holds the rune
	tokArrow // "->"
)

type token struct {
	kind tokKind
	text string
	off  int
}

type lexer struct {
	src  string
	pos  int
	look *token // 1-token buffer
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (lx *lexer) peek() token {
	if lx.look == nil {
		t := lx.scan()
		lx.look = &t
	}
	return *lx.look
}

func (lx *lexer) next() token {
	t := lx.peek()
	lx.look = nil
	return t
}

func (lx *lexer) errf(off int, format string, args ...any) error {
	return fmt.Errorf("%w: offset %d: %s", ErrParse, off, fmt.Sprintf(format, args...))
}

func (lx *lexer) scan() token {
	for lx.pos < len(lx.src) && isSpace(lx.src[lx.pos]) {
		lx.pos++
	}
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, off: lx.pos}
	}
	start := lx.pos
	ch := lx.src[lx.pos]
	switch {
	case ch == '-' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '>':
		lx.pos += 2
		return token{kind: tokArrow, text: "->", off: start}

	case ch == '-' || isDigit(ch):
		return lx.scanNumber()

	case isIdentStart(ch):
		for lx.pos < len(lx.src) && isIdentCont(lx.src[lx.pos]) {
			lx.pos++
		}
		return token{kind: tokIdent, text: lx.src[start:lx.pos], off: start}

	case ch == '"':
		return lx.scanString()

	case strings.ContainsRune("<>[]{}(),:", rune(ch)):
		lx.pos++
		return token{kind: tokPunct, text: string(ch), off: start}
	}
	// Unknown byte. Consume it so the parser reports a position and the
	// lexer still makes progress.
	lx.pos++
	return token{kind: tokPunct, text: string(ch), off: start}
}

func (lx *lexer) scanNumber() token {
	start := lx.pos
	if lx.src[lx.pos] == '-' {
		lx.pos++
	}
	// "-inf" rides through the number scanner.
	if lx.pos < len(lx.src) && lx.src[lx.pos] == 'i' {
		for lx.pos < len(lx.src) && isIdentCont(lx.src[lx.pos]) {
			lx.pos++
		}
		return token{kind: tokFloat, text: lx.src[start:lx.pos], off: start}
	}
	kind := tokInt
	for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
		lx.pos++
	}
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '.' {
		kind = tokFloat
		lx.pos++
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.pos++
		}
	}
	if lx.pos < len(lx.src) && (lx.src[lx.pos] == 'e' || lx.src[lx.pos] == 'E') {
		kind = tokFloat
		lx.pos++
		if lx.pos < len(lx.src) && (lx.src[lx.pos] == '+' || lx.src[lx.pos] == '-') {
			lx.pos++
		}
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.pos++
		}
	}
	return token{kind: kind, text: lx.src[start:lx.pos], off: start}
}

func (lx *lexer) scanString() token {
	start := lx.pos
	lx.pos++ // opening quote
	var sb strings.Builder
	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		switch ch {
		case '"':
			lx.pos++
			return token{kind: tokString, text: sb.String(), off: start}
		case '\\':
			lx.pos++
			if lx.pos >= len(lx.src) {
				return token{kind: tokEOF, off: start}
			}
			switch lx.src[lx.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case 'u':
				if lx.pos+4 < len(lx.src) {
					var r rune
					ok := true
					for _, h := range lx.src[lx.pos+1 : lx.pos+5] {
						d := hexDigit(byte(h))
						if d < 0 {
							ok = false
							break
						}
						r = r<<4 | rune(d)
					}
					if ok {
						sb.WriteRune(r)
						lx.pos += 4
					}
				}
			default:
				sb.WriteByte(lx.src[lx.pos])
			}
			lx.pos++
		default:
			sb.WriteByte(ch)
			lx.pos++
		}
	}
	// Unterminated string surfaces as EOF at the opening quote.
	return token{kind: tokEOF, off: start}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }

func hexDigit(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	}
	return -1
}
