// Package lexer converts gpdsl source text into a token stream.
package lexer

import (
	"strings"
	"unicode"

	"github.com/danielteel/gpdsl-sub000/errors"
	"github.com/danielteel/gpdsl-sub000/internal/token"
)

// Lexer produces tokens one at a time. After every source line, including
// the last one, it yields a NEWLINE token whose literal is the trimmed text
// of that line. Once the input is exhausted it yields EOF forever.
type Lexer struct {
	input        []rune
	pos          int
	line         int
	lineStart    int
	inComment    bool
	finalNewline bool
}

// New returns a Lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{input: []rune(input), line: 1}
}

// Tokenize lexes the whole input and returns every token except EOF.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == token.EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token.
func (l *Lexer) Next() (token.Token, error) {
	for {
		if l.inComment {
			tok, ok, err := l.skipBlockComment()
			if err != nil || ok {
				return tok, err
			}
			continue
		}
		if l.pos >= len(l.input) {
			if !l.finalNewline {
				l.finalNewline = true
				return l.newline(), nil
			}
			return token.Token{Type: token.EOF, Line: l.line}, nil
		}
		ch := l.input[l.pos]
		switch {
		case ch == '\n':
			tok := l.newline()
			l.pos++
			l.line++
			l.lineStart = l.pos
			return tok, nil
		case unicode.IsSpace(ch):
			l.pos++
			continue
		case ch == '/' && l.peek(1) == '/':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
			continue
		case ch == '/' && l.peek(1) == '*':
			l.pos += 2
			l.inComment = true
			continue
		case isLetter(ch):
			return l.readIdentifier(), nil
		case isDigit(ch) || (ch == '.' && isDigit(l.peek(1))):
			return l.readNumber()
		case ch == '"' || ch == '\'':
			return l.readString(ch)
		}
		return l.readOperator(ch)
	}
}

// skipBlockComment consumes comment text up to and including "*/". Line
// breaks inside the comment still produce NEWLINE tokens.
func (l *Lexer) skipBlockComment() (token.Token, bool, error) {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '*' && l.peek(1) == '/' {
			l.pos += 2
			l.inComment = false
			return token.Token{}, false, nil
		}
		if ch == '\n' {
			tok := l.newline()
			l.pos++
			l.line++
			l.lineStart = l.pos
			return tok, true, nil
		}
		l.pos++
	}
	return token.Token{}, false, l.errorf(errors.E1012, "unterminated block comment")
}

func (l *Lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) newline() token.Token {
	end := l.pos
	if end > len(l.input) {
		end = len(l.input)
	}
	return token.Token{
		Type:    token.NEWLINE,
		Literal: strings.TrimSpace(string(l.input[l.lineStart:end])),
		Line:    l.line,
	}
}

func (l *Lexer) currentLine() string {
	end := l.lineStart
	for end < len(l.input) && l.input[end] != '\n' {
		end++
	}
	return strings.TrimSpace(string(l.input[l.lineStart:end]))
}

func (l *Lexer) errorf(code errors.ErrorCode, format string, args ...any) error {
	err := errors.NewLexError(code, l.line, format, args...)
	err.SourceLine = l.currentLine()
	return err
}

func (l *Lexer) token(t token.Type, literal string) token.Token {
	return token.Token{Type: t, Literal: literal, Line: l.line}
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos])) {
		l.pos++
	}
	literal := string(l.input[start:l.pos])
	return l.token(token.LookupIdentifier(literal), literal)
}

func (l *Lexer) readNumber() (token.Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			return token.Token{}, l.errorf(errors.E1008, "invalid number literal %q",
				string(l.input[start:l.pos]))
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && isLetter(l.input[l.pos]) {
		return token.Token{}, l.errorf(errors.E1008, "invalid number literal %q",
			string(l.input[start:l.pos+1]))
	}
	return l.token(token.NUMBER, string(l.input[start:l.pos])), nil
}

func (l *Lexer) readString(quote rune) (token.Token, error) {
	l.pos++
	var b strings.Builder
	for {
		if l.pos >= len(l.input) || l.input[l.pos] == '\n' {
			return token.Token{}, l.errorf(errors.E1002, "unterminated string literal")
		}
		ch := l.input[l.pos]
		if ch == quote {
			l.pos++
			return l.token(token.STRING, b.String()), nil
		}
		if ch == '\\' {
			l.pos++
			if l.pos >= len(l.input) {
				return token.Token{}, l.errorf(errors.E1002, "unterminated string literal")
			}
			switch esc := l.input[l.pos]; esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '\\', '"', '\'':
				b.WriteRune(esc)
			default:
				return token.Token{}, l.errorf(errors.E1010, "invalid escape sequence \\%c", esc)
			}
			l.pos++
			continue
		}
		b.WriteRune(ch)
		l.pos++
	}
}

var singles = map[rune]token.Type{
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.ASTERISK,
	'/': token.SLASH,
	'%': token.MOD,
	'^': token.CARET,
	'?': token.QUESTION,
	':': token.COLON,
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	',': token.COMMA,
	';': token.SEMICOLON,
}

func (l *Lexer) readOperator(ch rune) (token.Token, error) {
	two := func(t token.Type) (token.Token, error) {
		tok := l.token(t, string(l.input[l.pos:l.pos+2]))
		l.pos += 2
		return tok, nil
	}
	one := func(t token.Type) (token.Token, error) {
		tok := l.token(t, string(ch))
		l.pos++
		return tok, nil
	}
	next := l.peek(1)
	switch ch {
	case '=':
		if next == '=' {
			return two(token.EQ)
		}
		return one(token.ASSIGN)
	case '!':
		if next == '=' {
			return two(token.NOT_EQ)
		}
		return one(token.BANG)
	case '<':
		if next == '=' {
			return two(token.LT_EQUALS)
		}
		return one(token.LT)
	case '>':
		if next == '=' {
			return two(token.GT_EQUALS)
		}
		return one(token.GT)
	case '&':
		if next == '&' {
			return two(token.AND)
		}
		return token.Token{}, l.errorf(errors.E1011, "incomplete operator '&' (expected '&&')")
	case '|':
		if next == '|' {
			return two(token.OR)
		}
		return token.Token{}, l.errorf(errors.E1011, "incomplete operator '|' (expected '||')")
	}
	if t, ok := singles[ch]; ok {
		return one(t)
	}
	return token.Token{}, l.errorf(errors.E1001, "unknown symbol %q", ch)
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
