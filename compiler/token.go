package compiler

import "fmt"

// TokenType identifies the kind of a lexical token.
type TokenType int

const (
	// Special
	TokenEOF TokenType = iota
	TokenError

	// Literals and identifiers
	TokenNumber
	TokenString
	TokenIdentifier

	// Keywords
	TokenVar
	TokenIf
	TokenElse
	TokenWhile
	TokenPrint
	TokenTrue
	TokenFalse
	TokenNull
	TokenAnd
	TokenOr

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenSemicolon

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenBang
	TokenAssign
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenNumber:     "NUMBER",
	TokenString:     "STRING",
	TokenIdentifier: "IDENTIFIER",
	TokenVar:        "var",
	TokenIf:         "if",
	TokenElse:       "else",
	TokenWhile:      "while",
	TokenPrint:      "print",
	TokenTrue:       "true",
	TokenFalse:      "false",
	TokenNull:       "null",
	TokenAnd:        "and",
	TokenOr:         "or",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenComma:      ",",
	TokenSemicolon:  ";",
	TokenPlus:       "+",
	TokenMinus:      "-",
	TokenStar:       "*",
	TokenSlash:      "/",
	TokenBang:       "!",
	TokenAssign:     "=",
	TokenEq:         "==",
	TokenNe:         "!=",
	TokenLt:         "<",
	TokenLe:         "<=",
	TokenGt:         ">",
	TokenGe:         ">=",
}

// String returns a human-readable name for the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// keywords maps identifier spellings to keyword token types.
var keywords = map[string]TokenType{
	"var":   TokenVar,
	"if":    TokenIf,
	"else":  TokenElse,
	"while": TokenWhile,
	"print": TokenPrint,
	"true":  TokenTrue,
	"false": TokenFalse,
	"null":  TokenNull,
	"and":   TokenAnd,
	"or":    TokenOr,
}

// Token is a lexical token with its source position.
type Token struct {
	Type    TokenType
	Literal string // the lexeme, or the error message for TokenError
	Line    int    // 1-based line number
	Offset  int    // 0-based byte offset of the lexeme start
	Len     int    // lexeme length in bytes
}
