package compiler

import (
	"strconv"

	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/errors"
	"github.com/danielteel/gpdsl-sub000/internal/token"
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/danielteel/gpdsl-sub000/op"
)

// compileExpression compiles an expression into eax and returns its static
// type.
func (c *Compiler) compileExpression() (object.Type, error) {
	return c.compileTernary()
}

// compileTernary compiles "cond ? a : b". Both branches must agree in type,
// with null matching anything; the result takes the non-null branch type.
func (c *Compiler) compileTernary() (object.Type, error) {
	line := c.tok.Line
	cond, err := c.compileOr()
	if err != nil || c.tok.Type != token.QUESTION {
		return cond, err
	}
	if !object.Match(object.BOOL, cond, true) {
		return 0, c.typeMismatch(line, "ternary condition must be bool, got %s", cond)
	}
	falseLabel, done := c.newBranch(), c.newBranch()
	c.emit(op.Test, eax)
	c.emitBranch(op.Je, falseLabel)
	c.next()
	whenTrue, err := c.compileTernary()
	if err != nil {
		return 0, err
	}
	if err := c.expect(token.COLON); err != nil {
		return 0, err
	}
	c.emitBranch(op.Jmp, done)
	c.emitLabel(falseLabel)
	falseLine := c.tok.Line
	whenFalse, err := c.compileTernary()
	if err != nil {
		return 0, err
	}
	c.emitLabel(done)
	if !object.Match(whenTrue, whenFalse, false) {
		return 0, c.typeMismatch(falseLine, "ternary branches disagree: %s and %s", whenTrue, whenFalse)
	}
	if whenTrue == object.NULL {
		return whenFalse, nil
	}
	return whenTrue, nil
}

// compileLogical compiles a left-associative chain of && or ||. The right
// operand and the combine are skipped when the left operand already decides
// the result: jump is je for && (left false) and jne for || (left true).
func (c *Compiler) compileLogical(t token.Type, code, jump op.Code, operand func() (object.Type, error)) (object.Type, error) {
	line := c.tok.Line
	left, err := operand()
	if err != nil {
		return 0, err
	}
	for c.tok.Type == t {
		if !object.Match(object.BOOL, left, true) {
			return 0, c.typeMismatch(line, "operator %s requires bool operands, got %s", t, left)
		}
		done := c.newBranch()
		c.emit(op.Test, eax)
		c.emitBranch(jump, done)
		c.emit(op.Push, eax)
		c.next()
		line = c.tok.Line
		right, err := operand()
		if err != nil {
			return 0, err
		}
		if !object.Match(object.BOOL, right, true) {
			return 0, c.typeMismatch(line, "operator %s requires bool operands, got %s", t, right)
		}
		c.emit(op.Mov, ebx, eax)
		c.emit(op.Pop, eax)
		c.emit(code, eax, ebx)
		c.emitLabel(done)
		left = object.BOOL
	}
	return left, nil
}

func (c *Compiler) compileOr() (object.Type, error) {
	return c.compileLogical(token.OR, op.Or, op.Jne, c.compileAnd)
}

func (c *Compiler) compileAnd() (object.Type, error) {
	return c.compileLogical(token.AND, op.And, op.Je, c.compileComparison)
}

var comparisons = map[token.Type]op.Code{
	token.EQ:        op.Se,
	token.NOT_EQ:    op.Sne,
	token.GT:        op.Sa,
	token.GT_EQUALS: op.Sae,
	token.LT:        op.Sb,
	token.LT_EQUALS: op.Sbe,
}

// binaryRight emits the shared sequence that evaluates the right operand
// while the left one waits on the operand stack, leaving left in eax and
// right in ebx.
func (c *Compiler) binaryRight(operand func() (object.Type, error)) (object.Type, int, error) {
	c.emit(op.Push, eax)
	line := c.tok.Line
	right, err := operand()
	if err != nil {
		return 0, line, err
	}
	c.emit(op.Mov, ebx, eax)
	c.emit(op.Pop, eax)
	return right, line, nil
}

// compileComparison compiles equality and relational operators. Equality
// accepts null on either side; relational operators require doubles.
func (c *Compiler) compileComparison() (object.Type, error) {
	line := c.tok.Line
	left, err := c.compileAdditive()
	if err != nil {
		return 0, err
	}
	for {
		set, ok := comparisons[c.tok.Type]
		if !ok {
			return left, nil
		}
		operator := c.tok.Type
		c.next()
		right, rline, err := c.binaryRight(c.compileAdditive)
		if err != nil {
			return 0, err
		}
		if operator == token.EQ || operator == token.NOT_EQ {
			if !object.Match(left, right, false) {
				return 0, c.typeMismatch(line, "cannot compare %s %s %s", left, operator, right)
			}
		} else {
			if !object.Match(object.DOUBLE, left, true) {
				return 0, c.typeMismatch(line, "operator %s requires double operands, got %s", operator, left)
			}
			if !object.Match(object.DOUBLE, right, true) {
				return 0, c.typeMismatch(rline, "operator %s requires double operands, got %s", operator, right)
			}
		}
		c.emit(op.Cmp, eax, ebx)
		c.emit(set, eax)
		left = object.BOOL
	}
}

// compileAdditive compiles + and -. Plus adds doubles or concatenates
// strings, chosen by the left operand's type; minus requires doubles.
func (c *Compiler) compileAdditive() (object.Type, error) {
	line := c.tok.Line
	left, err := c.compileMultiplicative()
	if err != nil {
		return 0, err
	}
	for c.tok.Type == token.PLUS || c.tok.Type == token.MINUS {
		operator := c.tok.Type
		c.next()
		right, rline, err := c.binaryRight(c.compileMultiplicative)
		if err != nil {
			return 0, err
		}
		code := op.Sub
		if operator == token.PLUS {
			switch left {
			case object.DOUBLE:
				code = op.Add
			case object.STRING:
				code = op.Concat
			default:
				return 0, c.typeMismatch(line, "operator + requires double or string operands, got %s", left)
			}
		} else if !object.Match(object.DOUBLE, left, true) {
			return 0, c.typeMismatch(line, "operator - requires double operands, got %s", left)
		}
		if !object.Match(left, right, true) {
			return 0, c.typeMismatch(rline, "operator %s requires matching operands, got %s and %s", operator, left, right)
		}
		c.emit(code, eax, ebx)
	}
	return left, nil
}

var multiplicative = map[token.Type]op.Code{
	token.ASTERISK: op.Mul,
	token.SLASH:    op.Div,
	token.MOD:      op.Mod,
}

func (c *Compiler) compileMultiplicative() (object.Type, error) {
	return c.compileArithmetic(multiplicative, c.compileExponent)
}

func (c *Compiler) compileExponent() (object.Type, error) {
	return c.compileArithmetic(map[token.Type]op.Code{token.CARET: op.Pow}, c.compileUnary)
}

// compileArithmetic compiles a left-associative chain of double-only
// operators.
func (c *Compiler) compileArithmetic(operators map[token.Type]op.Code, operand func() (object.Type, error)) (object.Type, error) {
	line := c.tok.Line
	left, err := operand()
	if err != nil {
		return 0, err
	}
	for {
		code, ok := operators[c.tok.Type]
		if !ok {
			return left, nil
		}
		operator := c.tok.Type
		c.next()
		right, rline, err := c.binaryRight(operand)
		if err != nil {
			return 0, err
		}
		if !object.Match(object.DOUBLE, left, true) {
			return 0, c.typeMismatch(line, "operator %s requires double operands, got %s", operator, left)
		}
		if !object.Match(object.DOUBLE, right, true) {
			return 0, c.typeMismatch(rline, "operator %s requires double operands, got %s", operator, right)
		}
		c.emit(code, eax, ebx)
	}
}

func (c *Compiler) compileUnary() (object.Type, error) {
	line := c.tok.Line
	switch c.tok.Type {
	case token.MINUS:
		c.next()
		t, err := c.compileUnary()
		if err != nil {
			return 0, err
		}
		if !object.Match(object.DOUBLE, t, true) {
			return 0, c.typeMismatch(line, "unary - requires a double, got %s", t)
		}
		c.emit(op.Neg, eax)
		return object.DOUBLE, nil
	case token.BANG:
		c.next()
		t, err := c.compileUnary()
		if err != nil {
			return 0, err
		}
		if !object.Match(object.BOOL, t, true) {
			return 0, c.typeMismatch(line, "operator ! requires a bool, got %s", t)
		}
		c.emit(op.Not, eax)
		return object.BOOL, nil
	}
	return c.compilePrimary()
}

func (c *Compiler) compilePrimary() (object.Type, error) {
	tok := c.tok
	switch tok.Type {
	case token.NUMBER:
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return 0, c.errorf(errors.E2011, "invalid number %q", tok.Literal)
		}
		c.next()
		c.emit(op.Mov, eax, bytecode.Lit(object.NewNumber(value)))
		return object.DOUBLE, nil
	case token.STRING:
		c.next()
		c.emit(op.Mov, eax, bytecode.Lit(object.NewString(tok.Literal)))
		return object.STRING, nil
	case token.TRUE, token.FALSE:
		c.next()
		c.emit(op.Mov, eax, bytecode.Lit(object.NewBool(tok.Type == token.TRUE)))
		return object.BOOL, nil
	case token.NULL:
		c.next()
		c.emit(op.Mov, eax, bytecode.Null())
		return object.NULL, nil
	case token.LPAREN:
		c.next()
		t, err := c.compileExpression()
		if err != nil {
			return 0, err
		}
		return t, c.expect(token.RPAREN)
	case token.IDENT:
		if c.peek() == token.LPAREN {
			return c.compileCall()
		}
		sym, ok := c.symbols.Resolve(tok.Literal)
		if !ok {
			return 0, c.undefinedError(errors.E2001, "variable", tok.Literal, tok.Line)
		}
		if sym.IsFunction() {
			return 0, c.errorf(errors.E2012, "function %q cannot be used as a value", tok.Literal)
		}
		c.next()
		c.emit(op.Mov, eax, variable(sym))
		return sym.Type(), nil
	}
	return 0, c.errorf(errors.E2011, "unexpected %s", describeToken(tok))
}

// compileCall pushes each argument left to right and calls the function.
// External functions (depth 0) are called by binding slot, internal ones
// by entry label.
func (c *Compiler) compileCall() (object.Type, error) {
	line := c.tok.Line
	name := c.tok.Literal
	sym, ok := c.symbols.Resolve(name)
	if !ok {
		return 0, c.undefinedError(errors.E2002, "function", name, line)
	}
	if !sym.IsFunction() {
		return 0, c.errorf(errors.E2013, "%q is a %s, not a function", name, sym.Type())
	}
	c.next() // name
	c.next() // '('
	params := sym.Params()
	count := 0
	if c.tok.Type != token.RPAREN {
		for {
			argLine := c.tok.Line
			t, err := c.compileExpression()
			if err != nil {
				return 0, err
			}
			if count >= len(params) {
				return 0, c.errorAt(argLine, errors.E2014, nil,
					"too many arguments to %q (expected %d)", name, len(params))
			}
			if !object.Match(params[count], t, false) {
				return 0, c.typeMismatch(argLine, "argument %d of %q must be %s, got %s",
					count+1, name, params[count], t)
			}
			c.emit(op.Push, eax)
			count++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	if err := c.expect(token.RPAREN); err != nil {
		return 0, err
	}
	if count != len(params) {
		return 0, c.errorAt(line, errors.E2014, nil,
			"not enough arguments to %q (expected %d, got %d)", name, len(params), count)
	}
	if sym.IsExternal() {
		c.append(bytecode.NewExCall(sym.Index(), name))
	} else {
		c.append(bytecode.NewCall(sym.BranchID(), name))
	}
	return sym.ReturnType(), nil
}
