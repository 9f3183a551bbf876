package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:     "empty input",
			input:    "",
			expected: []Token{{Type: TokenEOF, Line: 1, Col: 1}},
		},
		{
			name:  "step chain",
			input: `range(0,3).inV()`,
			expected: []Token{
				{Type: TokenIdent, Value: "range", Line: 1, Col: 1},
				{Type: TokenLeftParen, Line: 1, Col: 6},
				{Type: TokenNumber, Value: "0", Line: 1, Col: 7},
				{Type: TokenComma, Line: 1, Col: 8},
				{Type: TokenNumber, Value: "3", Line: 1, Col: 9},
				{Type: TokenRightParen, Line: 1, Col: 10},
				{Type: TokenDot, Line: 1, Col: 11},
				{Type: TokenIdent, Value: "inV", Line: 1, Col: 12},
				{Type: TokenLeftParen, Line: 1, Col: 15},
				{Type: TokenRightParen, Line: 1, Col: 16},
				{Type: TokenEOF, Line: 1, Col: 17},
			},
		},
		{
			name:  "numbers",
			input: `-1.5e-3 +2 7.x`,
			expected: []Token{
				{Type: TokenNumber, Value: "-1.5e-3", Line: 1, Col: 1},
				{Type: TokenNumber, Value: "+2", Line: 1, Col: 9},
				{Type: TokenNumber, Value: "7", Line: 1, Col: 12},
				{Type: TokenDot, Line: 1, Col: 13},
				{Type: TokenIdent, Value: "x", Line: 1, Col: 14},
				{Type: TokenEOF, Line: 1, Col: 15},
			},
		},
		{
			name:  "special key and colon",
			input: `~id:desc`,
			expected: []Token{
				{Type: TokenIdent, Value: "~id", Line: 1, Col: 1},
				{Type: TokenColon, Line: 1, Col: 4},
				{Type: TokenIdent, Value: "desc", Line: 1, Col: 5},
				{Type: TokenEOF, Line: 1, Col: 9},
			},
		},
		{
			name:  "lines and comments",
			input: "V(1) # start\n  .out(\"a\\\"b\")",
			expected: []Token{
				{Type: TokenIdent, Value: "V", Line: 1, Col: 1},
				{Type: TokenLeftParen, Line: 1, Col: 2},
				{Type: TokenNumber, Value: "1", Line: 1, Col: 3},
				{Type: TokenRightParen, Line: 1, Col: 4},
				{Type: TokenDot, Line: 2, Col: 3},
				{Type: TokenIdent, Value: "out", Line: 2, Col: 4},
				{Type: TokenLeftParen, Line: 2, Col: 7},
				{Type: TokenString, Value: `a"b`, Line: 2, Col: 8},
				{Type: TokenRightParen, Line: 2, Col: 14},
				{Type: TokenEOF, Line: 2, Col: 15},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lexer := NewLexer(tt.input)
			require.NoError(t, lexer.Lex())
			assert.Equal(t, tt.expected, lexer.tokens)
		})
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{`"open`, "unterminated string starting at 1:1"},
		{`"bad\q"`, `invalid escape sequence '\q' at 1:6`},
		{"out()\n  @", "unexpected character '@' at 2:3"},
	}
	for _, tt := range tests {
		err := NewLexer(tt.input).Lex()
		require.Error(t, err, tt.input)
		assert.EqualError(t, err, tt.err)
	}
}

func TestLexerPeekAndNext(t *testing.T) {
	lexer := NewLexer("a.b")
	require.NoError(t, lexer.Lex())
	assert.Equal(t, "a", lexer.PeekToken().Value)
	assert.Equal(t, "a", lexer.NextToken().Value)
	assert.Equal(t, TokenDot, lexer.NextToken().Type)
	assert.Equal(t, "b", lexer.NextToken().Value)
	assert.Equal(t, TokenEOF, lexer.NextToken().Type)
	assert.Equal(t, TokenEOF, lexer.NextToken().Type)
	assert.Equal(t, "Ident[1:1]:a", Token{Type: TokenIdent, Value: "a", Line: 1, Col: 1}.String())
}
