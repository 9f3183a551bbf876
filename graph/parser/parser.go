// Package parser reads traversals written in the same dotted syntax that
// traversal.Plan renders, plus a few Gremlin spellings:
//
//	V(1,2).outE("knows").has(weight.gt(0.5)).inV().values("name")
//	V(1).local(outE("knows").order().by("weight", desc).limit(2))
//	out("knows").has("age", gt(30)).hasLabel("person")
//
// Rendered backend steps (the {filter=... limit=...} annotations) are
// optimizer output and are not accepted.
package parser

import (
	"fmt"
	"strconv"

	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// Parser builds plans from traversal tokens
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new parser
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// Parse parses a complete traversal. The plan is returned unbound.
func Parse(input string) (*traversal.Plan, error) {
	lexer := NewLexer(input)
	if err := lexer.Lex(); err != nil {
		return nil, err
	}

	return NewParser(lexer).Parse()
}

// Parse reads one traversal and requires the input to end after it
func (p *Parser) Parse() (*traversal.Plan, error) {
	plan, err := p.readTraversal(true)
	if err != nil {
		return nil, err
	}
	if token := p.lexer.PeekToken(); token.Type != TokenEOF {
		return nil, unexpected(token, `"." or end of input`)
	}
	return plan, nil
}

// readTraversal reads step ('.' step)*. Only a top-level traversal may
// start with V().
func (p *Parser) readTraversal(topLevel bool) (*traversal.Plan, error) {
	plan := traversal.NewPlan()
	for {
		token := p.lexer.PeekToken()
		if token.Type != TokenIdent {
			return nil, unexpected(token, "step name")
		}
		if token.Value == "by" {
			return nil, fmt.Errorf("by() must follow order() at %d:%d", token.Line, token.Col)
		}

		step, err := p.readStep()
		if err != nil {
			return nil, err
		}
		if _, ok := step.(*traversal.Vertices); ok && (!topLevel || plan.Len() > 0) {
			return nil, fmt.Errorf("V() must start the traversal at %d:%d", token.Line, token.Col)
		}
		plan.Append(step)

		if p.lexer.PeekToken().Type != TokenDot {
			return plan, nil
		}
		p.lexer.NextToken() // consume .
	}
}

// readStep reads name(args) and any trailing .by(...) modulators
func (p *Parser) readStep() (traversal.Step, error) {
	name := p.lexer.NextToken()
	if _, err := p.expect(TokenLeftParen, `"("`); err != nil {
		return nil, err
	}

	switch name.Value {
	case "V":
		ids, err := p.readIDs()
		if err != nil {
			return nil, err
		}
		return &traversal.Vertices{IDs: ids}, nil

	case "out", "in", "both", "outE", "inE", "bothE":
		labels, err := p.readStrings()
		if err != nil {
			return nil, err
		}
		return newExpand(name.Value, labels), nil

	case "outV", "inV", "bothV":
		if err := p.closeEmpty(name); err != nil {
			return nil, err
		}
		return &traversal.EdgeVertex{Direction: directionOf(name.Value[:len(name.Value)-1])}, nil

	case "values", "properties", "keys":
		keys, err := p.readStrings()
		if err != nil {
			return nil, err
		}
		return &traversal.FetchProperties{Keys: keys, Return: returnKindOf(name.Value)}, nil

	case "has":
		containers, err := p.readHas()
		if err != nil {
			return nil, err
		}
		return &traversal.Filter{Containers: containers}, nil

	case "hasLabel":
		labels, err := p.readStrings()
		if err != nil {
			return nil, err
		}
		if len(labels) == 0 {
			return nil, fmt.Errorf("hasLabel() needs at least one label at %d:%d", name.Line, name.Col)
		}
		return &traversal.Filter{Containers: []graph.HasContainer{labelContainer(labels)}}, nil

	case "order":
		return p.readOrder(name)

	case "range":
		low, err := p.readInt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenComma, `","`); err != nil {
			return nil, err
		}
		high, err := p.readInt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, `")"`); err != nil {
			return nil, err
		}
		if low < 0 {
			return nil, fmt.Errorf("range low must not be negative at %d:%d", name.Line, name.Col)
		}
		return &traversal.Range{Low: low, High: high}, nil

	case "limit":
		n, err := p.readInt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, `")"`); err != nil {
			return nil, err
		}
		return &traversal.Range{Low: 0, High: n}, nil

	case "local":
		if p.lexer.PeekToken().Type == TokenRightParen {
			p.lexer.NextToken()
			return &traversal.PerElementBlock{Inner: traversal.NewPlan()}, nil
		}
		inner, err := p.readTraversal(false)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, `")"`); err != nil {
			return nil, err
		}
		return &traversal.PerElementBlock{Inner: inner}, nil

	case "identity":
		if err := p.closeEmpty(name); err != nil {
			return nil, err
		}
		return &traversal.Identity{}, nil

	default:
		return nil, fmt.Errorf("unknown step %s() at %d:%d", name.Value, name.Line, name.Col)
	}
}

func newExpand(name string, labels []string) *traversal.Expand {
	kind := graph.VertexKind
	if name[len(name)-1] == 'E' {
		kind = graph.EdgeKind
		name = name[:len(name)-1]
	}
	return &traversal.Expand{Direction: directionOf(name), Labels: labels, Kind: kind}
}

func directionOf(name string) graph.Direction {
	switch name {
	case "in":
		return graph.In
	case "both":
		return graph.Both
	default:
		return graph.Out
	}
}

func returnKindOf(name string) graph.ReturnKind {
	switch name {
	case "properties":
		return graph.ReturnProperty
	case "keys":
		return graph.ReturnKey
	default:
		return graph.ReturnValue
	}
}

func labelContainer(labels []string) graph.HasContainer {
	if len(labels) == 1 {
		return graph.Has(graph.KeyLabel, graph.Eq(labels[0]))
	}
	vs := make([]any, len(labels))
	for i, l := range labels {
		vs[i] = l
	}
	return graph.Has(graph.KeyLabel, graph.Within(vs...))
}

// readHas reads either has(key.pred(v), ...) or has("key", pred(v)) /
// has("key", v). The opening paren is already consumed.
func (p *Parser) readHas() ([]graph.HasContainer, error) {
	token := p.lexer.PeekToken()
	if token.Type == TokenString {
		p.lexer.NextToken()
		if _, err := p.expect(TokenComma, `","`); err != nil {
			return nil, err
		}
		var pred graph.Predicate
		if next := p.lexer.PeekToken(); next.Type == TokenIdent && isPredicateName(next.Value) {
			var err error
			if pred, err = p.readPredicate(); err != nil {
				return nil, err
			}
		} else {
			v, err := p.readValue()
			if err != nil {
				return nil, err
			}
			pred = graph.Eq(v)
		}
		if _, err := p.expect(TokenRightParen, `")"`); err != nil {
			return nil, err
		}
		return []graph.HasContainer{graph.Has(token.Value, pred)}, nil
	}

	var containers []graph.HasContainer
	for {
		key, err := p.expect(TokenIdent, "property key")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenDot, `"."`); err != nil {
			return nil, err
		}
		pred, err := p.readPredicate()
		if err != nil {
			return nil, err
		}
		containers = append(containers, graph.Has(key.Value, pred))

		next := p.lexer.NextToken()
		switch next.Type {
		case TokenComma:
			continue
		case TokenRightParen:
			return containers, nil
		default:
			return nil, unexpected(next, `"," or ")"`)
		}
	}
}

func isPredicateName(name string) bool {
	switch graph.CompareOp(name) {
	case graph.OpEQ, graph.OpNE, graph.OpLT, graph.OpLTE, graph.OpGT, graph.OpGTE, graph.OpWithin:
		return true
	}
	return false
}

// readPredicate reads op(value) or within(value, ...)
func (p *Parser) readPredicate() (graph.Predicate, error) {
	op, err := p.expect(TokenIdent, "predicate")
	if err != nil {
		return graph.Predicate{}, err
	}
	if !isPredicateName(op.Value) {
		return graph.Predicate{}, fmt.Errorf("unknown predicate %s at %d:%d", op.Value, op.Line, op.Col)
	}
	if _, err := p.expect(TokenLeftParen, `"("`); err != nil {
		return graph.Predicate{}, err
	}

	if graph.CompareOp(op.Value) == graph.OpWithin {
		var set []any
		if p.lexer.PeekToken().Type == TokenRightParen {
			p.lexer.NextToken()
			return graph.Within(set...), nil
		}
		for {
			v, err := p.readValue()
			if err != nil {
				return graph.Predicate{}, err
			}
			set = append(set, v)
			next := p.lexer.NextToken()
			if next.Type == TokenRightParen {
				return graph.Within(set...), nil
			}
			if next.Type != TokenComma {
				return graph.Predicate{}, unexpected(next, `"," or ")"`)
			}
		}
	}

	v, err := p.readValue()
	if err != nil {
		return graph.Predicate{}, err
	}
	if _, err := p.expect(TokenRightParen, `")"`); err != nil {
		return graph.Predicate{}, err
	}
	return graph.Predicate{Op: graph.CompareOp(op.Value), Value: v}, nil
}

// readOrder reads order(key:dir, ...) or order() followed by one or more
// .by("key"[, asc|desc]) modulators
func (p *Parser) readOrder(name Token) (traversal.Step, error) {
	var keys []graph.OrderKey
	if p.lexer.PeekToken().Type != TokenRightParen {
		for {
			key, err := p.readKeyName()
			if err != nil {
				return nil, err
			}
			k := graph.OrderKey{Key: key}
			if p.lexer.PeekToken().Type == TokenColon {
				p.lexer.NextToken()
				if k.Desc, err = p.readDirection(); err != nil {
					return nil, err
				}
			}
			keys = append(keys, k)

			next := p.lexer.NextToken()
			if next.Type == TokenRightParen {
				break
			}
			if next.Type != TokenComma {
				return nil, unexpected(next, `"," or ")"`)
			}
		}
	} else {
		p.lexer.NextToken()
	}

	for p.peekModulator("by") {
		p.lexer.NextToken() // .
		p.lexer.NextToken() // by
		if _, err := p.expect(TokenLeftParen, `"("`); err != nil {
			return nil, err
		}
		key, err := p.readKeyName()
		if err != nil {
			return nil, err
		}
		k := graph.OrderKey{Key: key}
		if p.lexer.PeekToken().Type == TokenComma {
			p.lexer.NextToken()
			if k.Desc, err = p.readDirection(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(TokenRightParen, `")"`); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("order() needs a key or a by() modulator at %d:%d", name.Line, name.Col)
	}
	return &traversal.Order{Keys: keys}, nil
}

// peekModulator reports whether the next tokens are "." name
func (p *Parser) peekModulator(name string) bool {
	l := p.lexer
	if l.current+1 >= len(l.tokens) {
		return false
	}
	dot, ident := l.tokens[l.current], l.tokens[l.current+1]
	return dot.Type == TokenDot && ident.Type == TokenIdent && ident.Value == name
}

// readKeyName accepts a bare or quoted key
func (p *Parser) readKeyName() (string, error) {
	token := p.lexer.NextToken()
	if token.Type == TokenIdent || token.Type == TokenString {
		return token.Value, nil
	}
	return "", unexpected(token, "property key")
}

func (p *Parser) readDirection() (bool, error) {
	token, err := p.expect(TokenIdent, "asc or desc")
	if err != nil {
		return false, err
	}
	switch token.Value {
	case "asc", "incr":
		return false, nil
	case "desc", "decr":
		return true, nil
	default:
		return false, fmt.Errorf("unknown order direction %s at %d:%d", token.Value, token.Line, token.Col)
	}
}

// readIDs reads a possibly empty list of vertex IDs and the closing paren
func (p *Parser) readIDs() ([]graph.ElementID, error) {
	var ids []graph.ElementID
	if p.lexer.PeekToken().Type == TokenRightParen {
		p.lexer.NextToken()
		return ids, nil
	}
	for {
		token, err := p.expect(TokenNumber, "vertex id")
		if err != nil {
			return nil, err
		}
		id, err := strconv.ParseUint(token.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vertex id %s at %d:%d", token.Value, token.Line, token.Col)
		}
		ids = append(ids, graph.ElementID(id))

		next := p.lexer.NextToken()
		if next.Type == TokenRightParen {
			return ids, nil
		}
		if next.Type != TokenComma {
			return nil, unexpected(next, `"," or ")"`)
		}
	}
}

// readStrings reads a possibly empty list of string literals and the
// closing paren
func (p *Parser) readStrings() ([]string, error) {
	var out []string
	if p.lexer.PeekToken().Type == TokenRightParen {
		p.lexer.NextToken()
		return out, nil
	}
	for {
		token, err := p.expect(TokenString, "string")
		if err != nil {
			return nil, err
		}
		out = append(out, token.Value)

		next := p.lexer.NextToken()
		if next.Type == TokenRightParen {
			return out, nil
		}
		if next.Type != TokenComma {
			return nil, unexpected(next, `"," or ")"`)
		}
	}
}

func (p *Parser) readInt() (int64, error) {
	token, err := p.expect(TokenNumber, "integer")
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(token.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %s at %d:%d", token.Value, token.Line, token.Col)
	}
	return n, nil
}

// readValue reads a literal: string, integer (int64), float (float64),
// true, false or null
func (p *Parser) readValue() (any, error) {
	token := p.lexer.NextToken()
	switch token.Type {
	case TokenString:
		return token.Value, nil
	case TokenNumber:
		if n, err := strconv.ParseInt(token.Value, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(token.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %s at %d:%d", token.Value, token.Line, token.Col)
		}
		return f, nil
	case TokenIdent:
		switch token.Value {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		}
	}
	return nil, unexpected(token, "literal")
}

func (p *Parser) closeEmpty(name Token) error {
	token := p.lexer.NextToken()
	if token.Type != TokenRightParen {
		return fmt.Errorf("%s() takes no arguments at %d:%d", name.Value, token.Line, token.Col)
	}
	return nil
}

func (p *Parser) expect(t TokenType, what string) (Token, error) {
	token := p.lexer.NextToken()
	if token.Type != t {
		return token, unexpected(token, what)
	}
	return token, nil
}

func unexpected(token Token, want string) error {
	return fmt.Errorf("expected %s, found %s at %d:%d", want, token.describe(), token.Line, token.Col)
}
