// Package token defines language keywords and tokens used when lexing source code.
package token

import "fmt"

// Type describes the type of a token as a string.
type Type string

// Token represents one token lexed from the input source code. For NEWLINE
// tokens the Literal holds the trimmed text of the line just completed.
type Token struct {
	Type    Type
	Literal string
	Line    int // 1-based
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q (line %d)", t.Type, t.Literal, t.Line)
}

// Token types
const (
	AND       Type = "&&"
	ASSIGN    Type = "="
	ASTERISK  Type = "*"
	BANG      Type = "!"
	CARET     Type = "^"
	COLON     Type = ":"
	COMMA     Type = ","
	EQ        Type = "=="
	GT        Type = ">"
	GT_EQUALS Type = ">="
	LBRACE    Type = "{"
	LPAREN    Type = "("
	LT        Type = "<"
	LT_EQUALS Type = "<="
	MINUS     Type = "-"
	MOD       Type = "%"
	NOT_EQ    Type = "!="
	OR        Type = "||"
	PLUS      Type = "+"
	QUESTION  Type = "?"
	RBRACE    Type = "}"
	RPAREN    Type = ")"
	SEMICOLON Type = ";"
	SLASH     Type = "/"

	IDENT   Type = "IDENT"
	NUMBER  Type = "NUMBER"
	STRING  Type = "STRING"
	NEWLINE Type = "EOL"
	EOF     Type = "EOF"

	BOOL_TYPE   Type = "BOOL"
	DOUBLE_TYPE Type = "DOUBLE"
	STRING_TYPE Type = "STRING_TYPE"
	IF          Type = "IF"
	ELSE        Type = "ELSE"
	WHILE       Type = "WHILE"
	FOR         Type = "FOR"
	LOOP        Type = "LOOP"
	BREAK       Type = "BREAK"
	RETURN      Type = "RETURN"
	EXIT        Type = "EXIT"
	TRUE        Type = "TRUE"
	FALSE       Type = "FALSE"
	NULL        Type = "NULL"
)

// Reserved keywords
var keywords = map[string]Type{
	"bool":   BOOL_TYPE,
	"double": DOUBLE_TYPE,
	"string": STRING_TYPE,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"loop":   LOOP,
	"break":  BREAK,
	"return": RETURN,
	"exit":   EXIT,
	"true":   TRUE,
	"false":  FALSE,
	"null":   NULL,
}

// LookupIdentifier returns the keyword type for identifier, or IDENT.
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}

// IsTypeName returns true for the three declarable type keywords.
func (t Type) IsTypeName() bool {
	return t == BOOL_TYPE || t == DOUBLE_TYPE || t == STRING_TYPE
}
