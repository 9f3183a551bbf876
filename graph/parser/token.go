package parser

import "fmt"

// TokenType represents the type of a traversal token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenString
	TokenNumber
	TokenIdent
	TokenDot
	TokenComma
	TokenColon
	TokenLeftParen
	TokenRightParen
)

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return fmt.Sprintf("EOF[%d:%d]", t.Line, t.Col)
	case TokenString:
		return fmt.Sprintf("String[%d:%d]:%q", t.Line, t.Col, t.Value)
	case TokenNumber:
		return fmt.Sprintf("Number[%d:%d]:%s", t.Line, t.Col, t.Value)
	case TokenIdent:
		return fmt.Sprintf("Ident[%d:%d]:%s", t.Line, t.Col, t.Value)
	case TokenDot:
		return fmt.Sprintf("Dot[%d:%d]", t.Line, t.Col)
	case TokenComma:
		return fmt.Sprintf("Comma[%d:%d]", t.Line, t.Col)
	case TokenColon:
		return fmt.Sprintf("Colon[%d:%d]", t.Line, t.Col)
	case TokenLeftParen:
		return fmt.Sprintf("LeftParen[%d:%d]", t.Line, t.Col)
	case TokenRightParen:
		return fmt.Sprintf("RightParen[%d:%d]", t.Line, t.Col)
	default:
		return fmt.Sprintf("Unknown[%d:%d]:%s", t.Line, t.Col, t.Value)
	}
}

// describe names a token for error messages
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return fmt.Sprintf("string %q", t.Value)
	case TokenNumber, TokenIdent:
		return fmt.Sprintf("%q", t.Value)
	case TokenDot:
		return `"."`
	case TokenComma:
		return `","`
	case TokenColon:
		return `":"`
	case TokenLeftParen:
		return `"("`
	case TokenRightParen:
		return `")"`
	default:
		return "unknown token"
	}
}
