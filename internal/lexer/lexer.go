package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/tot/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// NextToken scans the next token. After the end of input it keeps
// returning EOF.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	start := token.Span{Start: l.position, Line: l.line, Column: l.column}
	if l.atEOF() {
		start.End = start.Start
		return token.Token{Type: token.EOF, Span: start}
	}

	var typ token.TokenType
	switch l.ch {
	case '=':
		typ = token.ASSIGN
	case ';':
		typ = token.SEMICOLON
	case ',':
		typ = token.COMMA
	case '.':
		typ = token.DOT
	case '(':
		typ = token.LPAREN
	case ')':
		typ = token.RPAREN
	case '{':
		typ = token.LBRACE
	case '}':
		typ = token.RBRACE
	case '[':
		typ = token.LBRACKET
	case ']':
		typ = token.RBRACKET
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			typ = token.DCOLON
		} else {
			typ = token.COLON
		}
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			typ = token.ARROW
		} else {
			typ = token.MINUS
		}
	case '"':
		return l.readString(start)
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return l.finish(token.LookupIdent(ident), start)
		}
		if isDigit(l.ch) {
			return l.readNumber(start)
		}
		typ = token.ILLEGAL
	}

	l.readChar()
	return l.finish(typ, start)
}

// Tokenize scans the whole input, EOF token included.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) finish(typ token.TokenType, span token.Span) token.Token {
	span.End = l.position
	return token.Token{Type: typ, Lexeme: l.input[span.Start:span.End], Span: span}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber scans an integer or a float with a fractional part. A dot not
// followed by a digit is left for the parser.
func (l *Lexer) readNumber(start token.Span) token.Token {
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		if l.ch == 'e' || l.ch == 'E' {
			l.readExponent()
		}
		return l.finish(token.FLOAT, start)
	}
	return l.finish(token.INT, start)
}

func (l *Lexer) readExponent() {
	l.readChar()
	if l.ch == '+' || l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
}

// readString scans a double-quoted string. The lexeme keeps the quotes and
// escapes; an unterminated string is ILLEGAL.
func (l *Lexer) readString(start token.Span) token.Token {
	l.readChar() // opening quote
	for {
		switch {
		case l.atEOF() || l.ch == '\n':
			return l.finish(token.ILLEGAL, start)
		case l.ch == '\\':
			l.readChar()
			if l.atEOF() {
				return l.finish(token.ILLEGAL, start)
			}
		case l.ch == '"':
			l.readChar()
			return l.finish(token.STRING, start)
		}
		l.readChar()
	}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
