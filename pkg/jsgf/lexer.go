package jsgf

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokSlot
	tokRule
	tokBrace
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokPipe
	tokEquals
	tokSemicolon
	tokColon
	tokStar
	tokPlus
	tokUnknown
)

var kindNames = map[tokenKind]string{
	tokEOF:       "end of input",
	tokWord:      "word",
	tokSlot:      "slot reference",
	tokRule:      "rule reference",
	tokBrace:     "{...}",
	tokLParen:    "'('",
	tokRParen:    "')'",
	tokLBracket:  "'['",
	tokRBracket:  "']'",
	tokPipe:      "'|'",
	tokEquals:    "'='",
	tokSemicolon: "';'",
	tokColon:     "':'",
	tokStar:      "'*'",
	tokPlus:      "'+'",
	tokUnknown:   "unknown operator",
}

func (k tokenKind) String() string { return kindNames[k] }

type token struct {
	kind tokenKind
	text string
	line int
	col  int
	// spaced is set when whitespace or a comment precedes the token.
	spaced bool
}

const breakChars = "()[]{}|;=<>:*+"

var singles = map[rune]tokenKind{
	'(': tokLParen, ')': tokRParen, '[': tokLBracket, ']': tokRBracket,
	'|': tokPipe, '=': tokEquals, ';': tokSemicolon, ':': tokColon,
	'*': tokStar, '+': tokPlus,
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) peekRune() (rune, int) {
	if l.pos >= len(l.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

func (l *lexer) advance() rune {
	r, size := l.peekRune()
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// skip consumes whitespace and comments. It reports whether anything was skipped.
func (l *lexer) skip() (bool, *lexError) {
	skipped := false
	for l.pos < len(l.src) {
		r, _ := l.peekRune()
		rest := l.src[l.pos:]
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case strings.HasPrefix(rest, "//"), r == '#':
			for l.pos < len(l.src) {
				if c, _ := l.peekRune(); c == '\n' {
					break
				}
				l.advance()
			}
		case strings.HasPrefix(rest, "/*"):
			line, col := l.line, l.col
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				return skipped, &lexError{line: line, col: col, msg: "unterminated comment"}
			}
			for n := end + 4; n > 0; {
				_, size := l.peekRune()
				l.advance()
				n -= size
			}
		default:
			return skipped, nil
		}
		skipped = true
	}
	return skipped, nil
}

type lexError struct {
	line, col int
	msg       string
}

func (l *lexer) next() (token, *lexError) {
	spaced, err := l.skip()
	if err != nil {
		return token{}, err
	}
	tok := token{line: l.line, col: l.col, spaced: spaced || l.pos == 0}
	if l.pos >= len(l.src) {
		tok.kind = tokEOF
		return tok, nil
	}

	r, _ := l.peekRune()
	if k, ok := singles[r]; ok {
		l.advance()
		tok.kind = k
		tok.text = string(r)
		return tok, nil
	}

	switch r {
	case '<':
		l.advance()
		start := l.pos
		for {
			c, _ := l.peekRune()
			if l.pos >= len(l.src) || c == '\n' {
				return token{}, &lexError{line: tok.line, col: tok.col, msg: "unterminated rule reference"}
			}
			if c == '>' {
				break
			}
			l.advance()
		}
		tok.text = strings.TrimSpace(l.src[start:l.pos])
		l.advance()
		if tok.text == "" {
			return token{}, &lexError{line: tok.line, col: tok.col, msg: "empty rule reference"}
		}
		tok.kind = tokRule
		return tok, nil
	case '>':
		l.advance()
		tok.kind = tokUnknown
		tok.text = ">"
		return tok, nil
	case '{':
		l.advance()
		start := l.pos
		for {
			c, _ := l.peekRune()
			if l.pos >= len(l.src) || c == '\n' {
				return token{}, &lexError{line: tok.line, col: tok.col, msg: "unbalanced '{'"}
			}
			if c == '}' {
				break
			}
			l.advance()
		}
		tok.text = strings.TrimSpace(l.src[start:l.pos])
		l.advance()
		tok.kind = tokBrace
		return tok, nil
	case '}':
		l.advance()
		tok.kind = tokUnknown
		tok.text = "}"
		return tok, nil
	case '/':
		l.advance()
		tok.kind = tokUnknown
		tok.text = "/"
		return tok, nil
	}

	start := l.pos
	for l.pos < len(l.src) {
		c, _ := l.peekRune()
		if unicode.IsSpace(c) || strings.ContainsRune(breakChars, c) {
			break
		}
		if rest := l.src[l.pos:]; strings.HasPrefix(rest, "//") || strings.HasPrefix(rest, "/*") {
			break
		}
		l.advance()
	}
	tok.text = l.src[start:l.pos]
	tok.kind = tokWord
	if strings.HasPrefix(tok.text, "$") {
		tok.kind = tokSlot
		tok.text = tok.text[1:]
		if tok.text == "" {
			return token{}, &lexError{line: tok.line, col: tok.col, msg: "empty slot name"}
		}
	}
	return tok, nil
}
