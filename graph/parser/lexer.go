package parser

import (
	"fmt"
	"strings"
	"unicode"
)

// Lexer tokenizes traversal text
type Lexer struct {
	input   string
	pos     int
	line    int
	col     int
	tokens  []Token
	current int
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// Lex tokenizes the entire input
func (l *Lexer) Lex() error {
	for l.pos < len(l.input) {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.input) {
			break
		}

		startLine := l.line
		startCol := l.col
		emit := func(t TokenType, v string) {
			l.tokens = append(l.tokens, Token{Type: t, Value: v, Line: startLine, Col: startCol})
		}

		ch := l.peek()
		switch {
		case ch == '"':
			str, err := l.readString()
			if err != nil {
				return err
			}
			emit(TokenString, str)
		case ch == '.':
			l.advance()
			emit(TokenDot, "")
		case ch == ',':
			l.advance()
			emit(TokenComma, "")
		case ch == ':':
			l.advance()
			emit(TokenColon, "")
		case ch == '(':
			l.advance()
			emit(TokenLeftParen, "")
		case ch == ')':
			l.advance()
			emit(TokenRightParen, "")
		case isDigit(ch) || ((ch == '-' || ch == '+') && isDigit(l.peekAt(1))):
			emit(TokenNumber, l.readNumber())
		case isIdentStart(ch):
			emit(TokenIdent, l.readIdent())
		default:
			return fmt.Errorf("unexpected character '%c' at %d:%d", ch, l.line, l.col)
		}
	}

	l.tokens = append(l.tokens, Token{
		Type: TokenEOF,
		Line: l.line,
		Col:  l.col,
	})

	return nil
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	token := l.tokens[l.current]
	l.current++
	return token
}

// PeekToken returns the next token without advancing
func (l *Lexer) PeekToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	return l.tokens[l.current]
}

func (l *Lexer) peek() byte {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

// skipWhitespaceAndComments skips whitespace and # comments
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.peek()
		if unicode.IsSpace(rune(ch)) {
			l.advance()
		} else if ch == '#' {
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		} else {
			break
		}
	}
}

// readString reads a double-quoted string literal
func (l *Lexer) readString() (string, error) {
	var result strings.Builder
	startLine, startCol := l.line, l.col
	l.advance() // skip opening quote

	for l.pos < len(l.input) {
		ch := l.peek()
		if ch == '"' {
			l.advance()
			return result.String(), nil
		} else if ch == '\\' {
			l.advance()
			if l.pos >= len(l.input) {
				return "", fmt.Errorf("unexpected end of input in string at %d:%d", l.line, l.col)
			}
			escaped := l.peek()
			switch escaped {
			case 't':
				result.WriteByte('\t')
			case 'r':
				result.WriteByte('\r')
			case 'n':
				result.WriteByte('\n')
			case '\\':
				result.WriteByte('\\')
			case '"':
				result.WriteByte('"')
			default:
				return "", fmt.Errorf("invalid escape sequence '\\%c' at %d:%d", escaped, l.line, l.col)
			}
			l.advance()
		} else {
			result.WriteByte(ch)
			l.advance()
		}
	}

	return "", fmt.Errorf("unterminated string starting at %d:%d", startLine, startCol)
}

// readNumber reads an optionally signed integer or float. A dot is part of
// the number only when a digit follows it, so range(0,3).inV() lexes as
// expected.
func (l *Lexer) readNumber() string {
	start := l.pos
	if ch := l.peek(); ch == '-' || ch == '+' {
		l.advance()
	}
	l.readDigits()
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		l.readDigits()
	}
	if ch := l.peek(); ch == 'e' || ch == 'E' {
		next := l.peekAt(1)
		if isDigit(next) || ((next == '-' || next == '+') && isDigit(l.peekAt(2))) {
			l.advance()
			if !isDigit(l.peek()) {
				l.advance()
			}
			l.readDigits()
		}
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readDigits() {
	for isDigit(l.peek()) {
		l.advance()
	}
}

// readIdent reads a step name, predicate name or property key. Keys may
// start with ~ to address ~id, ~label, ~key and ~value.
func (l *Lexer) readIdent() string {
	start := l.pos
	l.advance()
	for isIdentPart(l.peek()) {
		l.advance()
	}
	return l.input[start:l.pos]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '~' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '-'
}
