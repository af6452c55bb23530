package compiler

import (
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for Cinder source
// ---------------------------------------------------------------------------

// Lexer tokenizes Cinder source code.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
		l.ch = r
		l.pos = l.readPos
		l.readPos += size
		if r == '\n' {
			l.line++
		}
	}
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	line := l.line
	start := l.pos

	simple := func(t TokenType) Token {
		l.readChar()
		return Token{Type: t, Literal: l.input[start:l.pos], Line: line, Offset: start, Len: l.pos - start}
	}
	withEq := func(plain, eq TokenType) Token {
		l.readChar()
		if l.ch == '=' {
			l.readChar()
		}
		tt := plain
		if l.pos-start == 2 {
			tt = eq
		}
		return Token{Type: tt, Literal: l.input[start:l.pos], Line: line, Offset: start, Len: l.pos - start}
	}

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Line: line, Offset: start}

	case l.ch == '(':
		return simple(TokenLParen)
	case l.ch == ')':
		return simple(TokenRParen)
	case l.ch == '{':
		return simple(TokenLBrace)
	case l.ch == '}':
		return simple(TokenRBrace)
	case l.ch == ',':
		return simple(TokenComma)
	case l.ch == ';':
		return simple(TokenSemicolon)
	case l.ch == '+':
		return simple(TokenPlus)
	case l.ch == '-':
		return simple(TokenMinus)
	case l.ch == '*':
		return simple(TokenStar)
	case l.ch == '/':
		return simple(TokenSlash)

	case l.ch == '!':
		return withEq(TokenBang, TokenNe)
	case l.ch == '=':
		return withEq(TokenAssign, TokenEq)
	case l.ch == '<':
		return withEq(TokenLt, TokenLe)
	case l.ch == '>':
		return withEq(TokenGt, TokenGe)

	case l.ch == '"':
		return l.readString(line, start)

	case unicode.IsDigit(l.ch):
		return l.readNumber(line, start)

	case isIdentStart(l.ch):
		return l.readIdentifier(line, start)

	default:
		tok := Token{
			Type:    TokenError,
			Literal: "unexpected character '" + string(l.ch) + "'",
			Line:    line,
			Offset:  start,
			Len:     utf8.RuneLen(l.ch),
		}
		l.readChar()
		return tok
	}
}

// readString scans a double-quoted string literal. The returned token's
// Literal holds the string contents without quotes.
func (l *Lexer) readString(line, start int) Token {
	l.readChar() // consume opening quote
	for l.ch != '"' && l.ch != 0 {
		l.readChar()
	}
	if l.ch == 0 {
		return Token{
			Type:    TokenError,
			Literal: "unterminated string",
			Line:    line,
			Offset:  start,
			Len:     l.pos - start,
		}
	}
	contents := l.input[start+1 : l.pos]
	l.readChar() // consume closing quote
	return Token{Type: TokenString, Literal: contents, Line: line, Offset: start, Len: l.pos - start}
}

// readNumber scans an integer or decimal number literal.
func (l *Lexer) readNumber(line, start int) Token {
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Line: line, Offset: start, Len: l.pos - start}
}

// readIdentifier scans an identifier or keyword.
func (l *Lexer) readIdentifier(line, start int) Token {
	for isIdentStart(l.ch) || unicode.IsDigit(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.pos]
	tt := TokenIdentifier
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Literal: lexeme, Line: line, Offset: start, Len: l.pos - start}
}

// skipWhitespaceAndComments advances past whitespace and // line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}
