package limbmass

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"avatar-morph/internal/morph"
)

// Condition is a compiled interplay rule evaluated against shape parameters.
// Missing variables evaluate false.
type Condition interface {
	Eval(vars map[string]float64) bool
	String() string
}

// Op is a comparison operator.
type Op string

const (
	OpGE Op = ">="
	OpLE Op = "<="
)

// Comparison tests one variable against a constant.
type Comparison struct {
	Var   string
	Op    Op
	Value float64
}

func (c Comparison) Eval(vars map[string]float64) bool {
	v, ok := vars[c.Var]
	if !ok {
		return false
	}
	switch c.Op {
	case OpGE:
		return v >= c.Value
	case OpLE:
		return v <= c.Value
	default:
		return false
	}
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Var, c.Op, strconv.FormatFloat(c.Value, 'g', -1, 64))
}

// All is true when every term is true.
type All []Condition

func (a All) Eval(vars map[string]float64) bool {
	for _, c := range a {
		if !c.Eval(vars) {
			return false
		}
	}
	return len(a) > 0
}

func (a All) String() string { return join(a, " && ") }

// Any is true when at least one term is true.
type Any []Condition

func (a Any) Eval(vars map[string]float64) bool {
	for _, c := range a {
		if c.Eval(vars) {
			return true
		}
	}
	return false
}

func (a Any) String() string { return join(a, " || ") }

// Never is the compiled form of a rule that failed to parse.
type Never struct{ Source string }

func (Never) Eval(map[string]float64) bool { return false }
func (n Never) String() string             { return "never(" + n.Source + ")" }

func join(terms []Condition, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// ParseCondition compiles a rule such as
//
//	bodybuilderSize >= 0.8 || (bodyFat <= -0.5 && muscleDefinition >= 1)
//
// Only >= and <= comparisons joined by && and || (with parentheses) are
// accepted; && binds tighter than ||. Variable names are canonicalized.
func ParseCondition(src string) (Condition, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, src: src}
	c, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("interplay %q: unexpected %q", src, p.toks[p.pos].text)
	}
	return c, nil
}

// CompileCondition is ParseCondition that fails closed: a malformed rule
// becomes Never.
func CompileCondition(src string) (Condition, error) {
	c, err := ParseCondition(src)
	if err != nil {
		return Never{Source: src}, err
	}
	return c, nil
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokNumber
	tokOp
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
}

func tokenize(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case r == '&' || r == '|' || r == '<' || r == '>' || r == '=' || r == '!':
			j := i
			for j < len(rs) && strings.ContainsRune("&|<>=!", rs[j]) {
				j++
			}
			op := string(rs[i:j])
			switch op {
			case "&&":
				toks = append(toks, token{tokAnd, op})
			case "||":
				toks = append(toks, token{tokOr, op})
			case ">=", "<=":
				toks = append(toks, token{tokOp, op})
			default:
				return nil, fmt.Errorf("interplay %q: unsupported operator %q", src, op)
			}
			i = j
		case unicode.IsDigit(r) || r == '-' || r == '+' || r == '.':
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.' || rs[j] == 'e' || rs[j] == 'E') {
				j++
			}
			toks = append(toks, token{tokNumber, string(rs[i:j])})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			toks = append(toks, token{tokIdent, string(rs[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("interplay %q: unexpected character %q", src, r)
		}
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("interplay: empty rule")
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
	src  string
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) parseOr() (Condition, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := Any{first}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOr {
			break
		}
		p.pos++
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *parser) parseAnd() (Condition, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := All{first}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokAnd {
			break
		}
		p.pos++
		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *parser) parseTerm() (Condition, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("interplay %q: unexpected end of rule", p.src)
	}
	if t.kind == tokLParen {
		p.pos++
		c, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if t, ok := p.peek(); !ok || t.kind != tokRParen {
			return nil, fmt.Errorf("interplay %q: missing )", p.src)
		}
		p.pos++
		return c, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Condition, error) {
	if p.pos+3 > len(p.toks) {
		return nil, fmt.Errorf("interplay %q: incomplete comparison", p.src)
	}
	ident, op, num := p.toks[p.pos], p.toks[p.pos+1], p.toks[p.pos+2]
	if ident.kind != tokIdent || op.kind != tokOp || num.kind != tokNumber {
		return nil, fmt.Errorf("interplay %q: expected <name> >=|<= <number> near %q", p.src, ident.text)
	}
	v, err := strconv.ParseFloat(num.text, 64)
	if err != nil {
		return nil, fmt.Errorf("interplay %q: bad number %q: %w", p.src, num.text, err)
	}
	name := morph.Canonicalize(ident.text)
	if name == "" {
		return nil, fmt.Errorf("interplay %q: bad variable %q", p.src, ident.text)
	}
	p.pos += 3
	return Comparison{Var: name, Op: Op(op.text), Value: v}, nil
}
