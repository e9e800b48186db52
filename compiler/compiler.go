// Package compiler turns a gpdsl token stream into an unlinked bytecode
// program.
//
// The compiler is a single-pass recursive descent code generator. Name
// resolution, static type checking and instruction emission happen together
// while the token cursor advances; there is no intermediate syntax tree.
//
// # Scopes
//
// Two kinds of scope are tracked independently:
//
//   - Lexical scopes (blocks, function bodies) control name lookup and
//     duplicate detection.
//   - Allocation scopes control storage. Depth 0 holds the external bindings,
//     depth 1 the top-level program, and each function definition opens a
//     frame one depth deeper than the scope it is defined in.
//
// A block nested in a function shares the function's frame, so its
// variables take slots from that frame.
//
// # Register Convention
//
// Every expression leaves its result in eax. Binary operators save the left
// result on the operand stack while the right operand is evaluated, then
// combine into eax using ebx as the second operand. Registers are not
// preserved across calls.
package compiler

import (
	"fmt"
	"strings"

	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/errors"
	"github.com/danielteel/gpdsl-sub000/internal/token"
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/danielteel/gpdsl-sub000/op"
	"github.com/rs/zerolog"
)

var (
	eax = bytecode.Reg(bytecode.EAX)
	ebx = bytecode.Reg(bytecode.EBX)
)

// function tracks the function body currently being compiled.
type function struct {
	name        string
	returnType  object.Type
	returnLabel int
}

// Compiler compiles one token stream into one Program.
type Compiler struct {
	tokens      []token.Token
	pos         int
	tok         token.Token
	lines       map[int]string
	debugLine   int
	pendingLine int

	program *bytecode.Program
	symbols *SymbolTable

	// Branch ids of the enclosing loops' end labels, innermost last
	loops []int

	// Nil at the top level
	function *function

	bindings  []Binding
	exitType  object.Type
	checkExit bool
	logger    zerolog.Logger
}

// New returns a Compiler for the given tokens.
func New(tokens []token.Token, opts ...Option) *Compiler {
	c := &Compiler{
		tokens:  tokens,
		lines:   map[int]string{},
		program: bytecode.NewProgram(),
		symbols: NewSymbolTable(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, tok := range tokens {
		if tok.Type == token.NEWLINE {
			c.lines[tok.Line] = tok.Literal
		}
	}
	return c
}

// Compile compiles the tokens into a Program in the Building state.
func Compile(tokens []token.Token, opts ...Option) (*bytecode.Program, error) {
	c := New(tokens, opts...)
	if err := c.Compile(); err != nil {
		return nil, err
	}
	return c.Program(), nil
}

// Program returns the program being built. After a failed Compile it holds
// the instructions emitted before the error.
func (c *Compiler) Program() *bytecode.Program {
	return c.program
}

// Symbols returns the root symbol table.
func (c *Compiler) Symbols() *SymbolTable {
	return c.symbols
}

// Compile compiles the whole token stream. The top-level statements form an
// implicit function body at allocation depth 1, preceded by a scopedepth
// instruction and a frame push, and followed by an implicit "exit null".
func (c *Compiler) Compile() error {
	if err := c.declareBindings(); err != nil {
		return err
	}
	depthIndex := c.program.Append(bytecode.NewScopeDepth(0))
	frameIndex := c.program.Append(bytecode.NewPushScope(1, 0))

	root := c.symbols
	c.symbols = root.NewChild()
	c.start()
	for c.tok.Type != token.EOF {
		if err := c.compileStatement(); err != nil {
			return err
		}
	}
	c.emit(op.Exit, bytecode.Null())

	size := c.symbols.Count()
	c.symbols = root
	depth := root.MaxDepth() + 1
	c.program.Patch(depthIndex, bytecode.NewScopeDepth(depth))
	if size > 0 {
		c.program.Patch(frameIndex, bytecode.NewPushScope(1, size))
	} else {
		c.program.Remove(frameIndex)
	}
	c.logger.Debug().
		Int("scope_depth", depth).
		Int("top_level_slots", size).
		Int("instructions", c.program.Len()).
		Msg("compiled program")
	return nil
}

func (c *Compiler) declareBindings() error {
	for _, b := range c.bindings {
		var err error
		if b.Type == object.FUNCTION {
			_, err = c.symbols.InsertExternalFunction(b.Name, b.Params, b.ReturnType)
		} else {
			_, err = c.symbols.InsertVariable(b.Name, b.Type)
		}
		if err != nil {
			return errors.NewCompileError(errors.E2006, 0, "binding %s", err)
		}
	}
	return nil
}

// start positions the cursor on the first token.
func (c *Compiler) start() {
	c.pos = 0
	c.settle()
}

// next advances past the current token.
func (c *Compiler) next() {
	c.pos++
	c.settle()
}

// settle skips NEWLINE tokens and loads the current token. The first time
// the cursor reaches a source line, a debug marker for it is queued; it is
// emitted in front of the next code instruction, so a label placed before
// that instruction leads to the marker too.
func (c *Compiler) settle() {
	for c.pos < len(c.tokens) && c.tokens[c.pos].Type == token.NEWLINE {
		c.pos++
	}
	if c.pos >= len(c.tokens) {
		line := 1
		if n := len(c.tokens); n > 0 {
			line = c.tokens[n-1].Line
		}
		c.tok = token.Token{Type: token.EOF, Line: line}
		return
	}
	c.tok = c.tokens[c.pos]
	if c.tok.Line > c.debugLine {
		c.debugLine = c.tok.Line
		c.pendingLine = c.tok.Line
	}
}

// seek moves the cursor to token index pos.
func (c *Compiler) seek(pos int) {
	c.pos = pos
	c.settle()
}

// peek returns the type of the token after the current one.
func (c *Compiler) peek() token.Type {
	for i := c.pos + 1; i < len(c.tokens); i++ {
		if c.tokens[i].Type != token.NEWLINE {
			return c.tokens[i].Type
		}
	}
	return token.EOF
}

func (c *Compiler) match(t token.Type) bool {
	if c.tok.Type == t {
		c.next()
		return true
	}
	return false
}

func (c *Compiler) expect(t token.Type) error {
	if c.tok.Type != t {
		if c.tok.Type == token.EOF && t == token.RBRACE {
			return c.errorf(errors.E2016, "missing closing brace")
		}
		return c.errorf(errors.E2011, "expected %s, found %s", describe(t), describeToken(c.tok))
	}
	c.next()
	return nil
}

func (c *Compiler) expectIdent() (string, error) {
	if c.tok.Type != token.IDENT {
		return "", c.errorf(errors.E2011, "expected identifier, found %s", describeToken(c.tok))
	}
	name := c.tok.Literal
	c.next()
	return name, nil
}

// append adds a code instruction, preceded by any queued debug marker, and
// returns its index.
func (c *Compiler) append(ins *bytecode.Instruction) int {
	if c.pendingLine > 0 {
		c.program.Append(bytecode.NewDebugLine(c.pendingLine, c.lines[c.pendingLine]))
		c.pendingLine = 0
	}
	return c.program.Append(ins)
}

func (c *Compiler) emit(code op.Code, operands ...bytecode.Operand) int {
	return c.append(bytecode.New(code, operands...))
}

// emitBranch adds a jump. Jumps cannot fail, so they never carry a debug
// marker.
func (c *Compiler) emitBranch(code op.Code, id int) {
	c.program.Append(bytecode.NewBranch(code, id))
}

func (c *Compiler) emitLabel(id int) {
	c.program.Append(bytecode.NewLabel(id))
}

func (c *Compiler) newBranch() int {
	return c.program.NewBranchID()
}

// errorf returns a CompileError located at the current token.
func (c *Compiler) errorf(code errors.ErrorCode, format string, args ...any) error {
	return c.errorAt(c.tok.Line, code, nil, format, args...)
}

func (c *Compiler) errorAt(line int, code errors.ErrorCode, suggestions []errors.Suggestion, format string, args ...any) error {
	err := errors.NewCompileError(code, line, format, args...)
	err.SourceLine = c.lines[line]
	err.Suggestions = suggestions
	return err
}

func (c *Compiler) undefinedError(code errors.ErrorCode, kind, name string, line int) error {
	suggestions := errors.SuggestSimilar(name, c.symbols.AllNames())
	return c.errorAt(line, code, suggestions, "undefined %s %q", kind, name)
}

func (c *Compiler) typeMismatch(line int, format string, args ...any) error {
	return c.errorAt(line, errors.E2012, nil, format, args...)
}

func describe(t token.Type) string {
	switch t {
	case token.IDENT:
		return "identifier"
	case token.NUMBER:
		return "number"
	case token.STRING:
		return "string literal"
	case token.EOF:
		return "end of input"
	}
	if len(t) > 0 && t[0] >= 'A' && t[0] <= 'Z' {
		return fmt.Sprintf("keyword %s", strings.ToLower(string(t)))
	}
	return fmt.Sprintf("'%s'", t)
}

func describeToken(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.STRING:
		return fmt.Sprintf("string %q", tok.Literal)
	case token.IDENT, token.NUMBER:
		return fmt.Sprintf("%q", tok.Literal)
	}
	return fmt.Sprintf("'%s'", tok.Literal)
}

func typeOfKeyword(t token.Type) object.Type {
	switch t {
	case token.BOOL_TYPE:
		return object.BOOL
	case token.DOUBLE_TYPE:
		return object.DOUBLE
	case token.STRING_TYPE:
		return object.STRING
	}
	return object.NULL
}

func allocOp(t object.Type) op.Code {
	switch t {
	case object.BOOL:
		return op.AllocBool
	case object.DOUBLE:
		return op.AllocDouble
	default:
		return op.AllocString
	}
}

func variable(s *Symbol) bytecode.Operand {
	return bytecode.Var(s.Type(), s.Depth(), s.Index(), s.Name())
}
