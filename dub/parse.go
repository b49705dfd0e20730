package dub

import (
	"fmt"
	"strconv"
)

type Node interface {
	isNode()
}

func (Identifier) isNode() {}
func (Int) isNode()        {}
func (Float) isNode()      {}
func (String) isNode()     {}
func (Notes) isNode()      {}

// Command is a single line of input: a name followed by arguments.
type Command struct {
	Name Identifier
	Args []Node
}

type Identifier string
type Int int
type Float float64
type String string

// Notes is a quoted note list such as '60,64,67 or 'c4:c5, expanded in the
// order written.
type Notes []int

// Parse parses one command line. An empty or comment-only line yields a
// Command with an empty name.
func Parse(input string) (Command, error) {
	tokens, err := lex(input)
	if err != nil {
		return Command{}, err
	}
	p := parser{tokens: tokens}
	return p.parse()
}

type parser struct {
	pos    int
	tokens []token
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.typ != typeEOF {
		p.pos++
	}
	return t
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) parse() (Command, error) {
	var cmd Command
	token := p.next()
	if token.typ == typeEOF {
		return cmd, nil
	}
	if token.typ != typeIdentifier {
		return cmd, unexpectedToken(token)
	}
	cmd.Name = Identifier(token.text)
	for token := p.next(); token.typ != typeEOF; token = p.next() {
		var arg Node
		switch token.typ {
		case typeIdentifier:
			arg = Identifier(token.text)
		case typeString:
			s, err := strconv.Unquote(token.text)
			if err != nil {
				return cmd, fmt.Errorf("invalid string %s: %w", token.text, err)
			}
			arg = String(s)
		case typeFloat:
			f, err := strconv.ParseFloat(token.text, 64)
			if err != nil {
				return cmd, err
			}
			arg = Float(f)
		case typeInt:
			n, err := strconv.Atoi(token.text)
			if err != nil {
				return cmd, err
			}
			arg = Int(n)
		case typeQuote:
			notes, err := p.notes()
			if err != nil {
				return cmd, err
			}
			arg = notes
		default:
			return cmd, unexpectedToken(token)
		}
		cmd.Args = append(cmd.Args, arg)
	}
	return cmd, nil
}

// notes parses the items of a note list: single notes and start:end ranges
// separated by commas.
func (p *parser) notes() (Notes, error) {
	var notes Notes
	for {
		start, err := p.note()
		if err != nil {
			return nil, err
		}
		if p.peek().typ == typeColon {
			p.next()
			end, err := p.note()
			if err != nil {
				return nil, err
			}
			notes = append(notes, noteRange{start, end}.expand()...)
		} else {
			notes = append(notes, start)
		}
		if p.peek().typ != typeComma {
			return notes, nil
		}
		p.next()
	}
}

func (p *parser) note() (int, error) {
	t := p.next()
	switch t.typ {
	case typeInt:
		n, err := strconv.Atoi(t.text)
		if err != nil {
			return 0, err
		}
		if n < 0 || n > maxNote {
			return 0, fmt.Errorf("note out of range: %d", n)
		}
		return n, nil
	case typeIdentifier:
		return ParseNote(t.text)
	}
	return 0, unexpectedToken(t)
}

func unexpectedToken(t token) error {
	if t.typ == typeEOF {
		return fmt.Errorf("unexpected end of input")
	}
	return fmt.Errorf("unexpected %v %q at position %d", t.typ, t.text, t.pos)
}
