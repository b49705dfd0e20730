package dub

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	typeUnknown tokenType = iota
	typeInt
	typeFloat
	typeIdentifier
	typeString
	typeQuote
	typeComma
	typeColon
	typeEOF
)

func (t tokenType) String() string {
	switch t {
	case typeInt:
		return "int"
	case typeFloat:
		return "float"
	case typeIdentifier:
		return "identifier"
	case typeString:
		return "string"
	case typeQuote:
		return "quote"
	case typeComma:
		return "comma"
	case typeColon:
		return "colon"
	case typeEOF:
		return "EOF"
	}
	return "unknown"
}

// token is a slice of the input; pos is the byte offset where it starts.
type token struct {
	typ  tokenType
	pos  int
	text string
}

const eof = -1

var errUnterminatedString = errors.New("unterminated string")

// lex splits a command line into tokens, always ending with typeEOF.
// A '#' outside a string starts a comment that runs to the end of the line.
func lex(input string) ([]token, error) {
	s := scanner{src: input}
	var tokens []token
	for {
		tok, err := s.scan()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.typ == typeEOF {
			return tokens, nil
		}
	}
}

type scanner struct {
	src string
	off int
}

func (s *scanner) runeAt(i int) (rune, int) {
	if i >= len(s.src) {
		return eof, 0
	}
	return utf8.DecodeRuneInString(s.src[i:])
}

func (s *scanner) token(typ tokenType, start int) token {
	return token{typ: typ, pos: start, text: s.src[start:s.off]}
}

func (s *scanner) scan() (token, error) {
	for s.off < len(s.src) && isSpace(rune(s.src[s.off])) {
		s.off++
	}
	start := s.off
	r, w := s.runeAt(start)
	switch {
	case r == eof:
		return s.token(typeEOF, start), nil
	case r == '#':
		s.off = len(s.src)
		return s.token(typeEOF, s.off), nil
	case r == '"':
		return s.scanString(start)
	case unicode.IsLetter(r):
		return s.scanIdentifier(start)
	case isDigit(r) || r == '-' || r == '.':
		return s.scanNumber(start)
	}
	if typ := punctuation(r); typ != typeUnknown {
		s.off += w
		return s.token(typ, start), nil
	}
	return token{}, unexpected(r)
}

// scanIdentifier reads names like attack, lame-bass or c#4.
func (s *scanner) scanIdentifier(start int) (token, error) {
	s.off = start + spanFunc(s.src[start:], isNameRune)
	if r, _ := s.runeAt(s.off); !endsToken(r) {
		return token{}, unexpected(r)
	}
	return s.token(typeIdentifier, start), nil
}

// scanNumber reads an optional minus sign, digits and an optional fraction.
// At least one digit is required on either side of the point.
func (s *scanner) scanNumber(start int) (token, error) {
	src := s.src[start:]
	n := 0
	if strings.HasPrefix(src, "-") {
		n++
	}
	whole := spanFunc(src[n:], isDigit)
	n += whole
	typ := typeInt
	if strings.HasPrefix(src[n:], ".") {
		typ = typeFloat
		n++
	}
	frac := spanFunc(src[n:], isDigit)
	n += frac
	if whole+frac == 0 {
		r, _ := s.runeAt(start)
		return token{}, unexpected(r)
	}

	s.off = start + n
	if r, _ := s.runeAt(s.off); !endsToken(r) {
		return token{}, unexpected(r)
	}
	return s.token(typ, start), nil
}

func (s *scanner) scanString(start int) (token, error) {
	for i := start + 1; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '"':
			s.off = i + 1
			return s.token(typeString, start), nil
		}
	}
	return token{}, errUnterminatedString
}

func punctuation(r rune) tokenType {
	switch r {
	case '\'':
		return typeQuote
	case ',':
		return typeComma
	case ':':
		return typeColon
	}
	return typeUnknown
}

func unexpected(r rune) error {
	if r == eof {
		return errors.New("unexpected end of input")
	}
	return fmt.Errorf("unexpected character: %#U", r)
}

// spanFunc returns the length of the prefix of s whose runes satisfy f.
func spanFunc(s string, f func(rune) bool) int {
	n := strings.IndexFunc(s, func(r rune) bool { return !f(r) })
	if n < 0 {
		return len(s)
	}
	return n
}

func endsToken(r rune) bool {
	return isSpace(r) || r == eof || r == ',' || r == ':'
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || isDigit(r) || r == '_' || r == '-' || r == '#'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
