package token

import "fmt"

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	STRING TokenType = "STRING"

	ASSIGN    TokenType = "="
	COLON     TokenType = ":"
	DCOLON    TokenType = "::"
	SEMICOLON TokenType = ";"
	COMMA     TokenType = ","
	DOT       TokenType = "."
	ARROW     TokenType = "->"
	MINUS     TokenType = "-"

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"

	// Keywords
	LET    TokenType = "LET"
	RETURN TokenType = "RETURN"
	IF     TokenType = "IF"
	ELSE   TokenType = "ELSE"
	FOR    TokenType = "FOR"
	IN     TokenType = "IN"
	WHILE  TokenType = "WHILE"
	FN     TokenType = "FN"
	AS     TokenType = "AS"
	TRUE   TokenType = "TRUE"
	FALSE  TokenType = "FALSE"
)

var keywords = map[string]TokenType{
	"let":    LET,
	"return": RETURN,
	"if":     IF,
	"else":   ELSE,
	"for":    FOR,
	"in":     IN,
	"while":  WHILE,
	"fn":     FN,
	"as":     AS,
	"true":   TRUE,
	"false":  FALSE,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Span locates a range of source bytes. Start is inclusive, End exclusive.
// Line and Column (1-based) point at Start.
type Span struct {
	Start  int
	End    int
	Line   int
	Column int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Cover returns the span from the start of s to the end of other.
func (s Span) Cover(other Span) Span {
	s.End = other.End
	return s
}

type Token struct {
	Type   TokenType
	Lexeme string
	Span   Span
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Lexeme)
}
