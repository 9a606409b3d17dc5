// Package pathexpr parses member paths such as `order.Items[0].Total()` into access steps.
package pathexpr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ErrInvalidPath indicates that a path could not be parsed.
	ErrInvalidPath = errors.New("pathexpr: invalid path")
	// ErrArgumentsNotSupported indicates a call with arguments; only `()` is accepted.
	ErrArgumentsNotSupported = errors.New("pathexpr: calls with arguments are not supported")
)

// StepKind tells what a Step accesses.
type StepKind int

const (
	StepIdentifier StepKind = iota
	StepMember
	StepIndex
	// StepCall invokes the member named by the preceding step without arguments.
	StepCall
)

func (k StepKind) String() string {
	switch k {
	case StepIdentifier:
		return "identifier"
	case StepMember:
		return "member"
	case StepIndex:
		return "index"
	case StepCall:
		return "call"
	default:
		return "unknown"
	}
}

// Position is the 0-based rune offset and length of a step within the path.
type Position struct {
	Offset int
	Length int
}

// Step is one access in a flattened path.
type Step struct {
	Kind  StepKind
	Name  string
	Index int
	// Safe marks `?.` and `?[` accesses, which tolerate a nil owner.
	Safe bool
	Pos  Position
}

// ParseSteps splits a path into steps. The first step is always an identifier.
func ParseSteps(path string) ([]Step, error) {
	p := &parser{src: []rune(path)}
	if err := p.parse(); err != nil {
		return nil, err
	}

	return p.steps, nil
}

// String rebuilds the textual form of steps.
func String(steps []Step) string {
	var sb strings.Builder

	for _, s := range steps {
		switch s.Kind {
		case StepIdentifier:
			sb.WriteString(s.Name)
		case StepMember:
			if s.Safe {
				sb.WriteByte('?')
			}

			sb.WriteByte('.')
			sb.WriteString(s.Name)
		case StepIndex:
			if s.Safe {
				sb.WriteByte('?')
			}

			fmt.Fprintf(&sb, "[%d]", s.Index)
		case StepCall:
			sb.WriteString("()")
		}
	}

	return sb.String()
}

type parser struct {
	src   []rune
	pos   int
	steps []Step
}

func (p *parser) parse() error {
	p.skipWhitespace()

	name, start, ok := p.readIdentifier()
	if !ok {
		return p.unexpected("identifier")
	}

	p.steps = append(p.steps, Step{Kind: StepIdentifier, Name: name, Pos: p.span(start)})

	for {
		p.skipWhitespace()

		if p.eof() {
			return nil
		}

		start := p.pos
		safe := p.match('?')

		if safe {
			p.skipWhitespace()
		}

		var err error

		switch p.peek() {
		case '.':
			err = p.parseMember(start, safe)
		case '[':
			err = p.parseIndex(start, safe)
		case '(':
			if safe {
				return fmt.Errorf("%w: '?' can't precede a call at position %d", ErrInvalidPath, start+1)
			}

			err = p.parseCall(start)
		default:
			if safe {
				return fmt.Errorf("%w: '?' must be followed by '.' or '[' at position %d", ErrInvalidPath, p.pos+1)
			}

			return p.unexpected("'.', '[' or '('")
		}

		if err != nil {
			return err
		}
	}
}

func (p *parser) parseMember(start int, safe bool) error {
	p.pos++
	p.skipWhitespace()

	name, _, ok := p.readIdentifier()
	if !ok {
		return p.unexpected("identifier after '.'")
	}

	p.steps = append(p.steps, Step{Kind: StepMember, Name: name, Safe: safe, Pos: p.span(start)})

	return nil
}

func (p *parser) parseIndex(start int, safe bool) error {
	p.pos++
	p.skipWhitespace()

	idx, ok, err := p.readNumber()
	if err != nil {
		return err
	} else if !ok {
		return p.unexpected("integer index after '['")
	}

	p.skipWhitespace()

	if !p.match(']') {
		return p.unexpected("']'")
	}

	p.steps = append(p.steps, Step{Kind: StepIndex, Index: idx, Safe: safe, Pos: p.span(start)})

	return nil
}

func (p *parser) parseCall(start int) error {
	p.pos++
	p.skipWhitespace()

	if !p.match(')') {
		if p.eof() {
			return p.unexpected("')'")
		}

		return fmt.Errorf("%w: %w at position %d", ErrInvalidPath, ErrArgumentsNotSupported, p.pos+1)
	}

	if p.steps[len(p.steps)-1].Kind == StepCall {
		return fmt.Errorf("%w: result of a call can't be called at position %d", ErrInvalidPath, start+1)
	}

	p.steps = append(p.steps, Step{Kind: StepCall, Pos: p.span(start)})

	return nil
}

func (p *parser) unexpected(want string) error {
	if p.eof() {
		return fmt.Errorf("%w: expected %s at end of path", ErrInvalidPath, want)
	}

	return fmt.Errorf("%w: expected %s, found '%c' at position %d", ErrInvalidPath, want, p.peek(), p.pos+1)
}

func (p *parser) span(start int) Position {
	return Position{Offset: start, Length: p.pos - start}
}

func (p *parser) skipWhitespace() {
	for unicode.IsSpace(p.peek()) {
		p.pos++
	}
}

func (p *parser) match(r rune) bool {
	if p.eof() || p.peek() != r {
		return false
	}

	p.pos++

	return true
}

func (p *parser) readIdentifier() (string, int, bool) {
	if !isIdentStart(p.peek()) {
		return "", 0, false
	}

	start := p.pos
	for p.pos++; isIdentPart(p.peek()); p.pos++ {
	}

	return string(p.src[start:p.pos]), start, true
}

func (p *parser) readNumber() (int, bool, error) {
	if !isDigit(p.peek()) {
		return 0, false, nil
	}

	start := p.pos
	for p.pos++; isDigit(p.peek()); p.pos++ {
	}

	val, err := strconv.Atoi(string(p.src[start:p.pos]))
	if err != nil {
		return 0, false, fmt.Errorf("%w: index out of range at position %d", ErrInvalidPath, start+1)
	}

	return val, true, nil
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	return p.src[p.pos]
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
