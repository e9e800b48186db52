package compiler

import (
	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/errors"
	"github.com/danielteel/gpdsl-sub000/internal/token"
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/danielteel/gpdsl-sub000/op"
)

func (c *Compiler) compileStatement() error {
	switch c.tok.Type {
	case token.LBRACE:
		return c.compileBlock()
	case token.BOOL_TYPE, token.DOUBLE_TYPE, token.STRING_TYPE:
		isFunction, err := c.compileDeclaration(true)
		if err != nil || isFunction {
			return err
		}
		return c.expect(token.SEMICOLON)
	case token.IF:
		return c.compileIf()
	case token.WHILE:
		return c.compileWhile()
	case token.FOR:
		return c.compileFor()
	case token.LOOP:
		return c.compileLoop()
	case token.BREAK:
		return c.compileBreak()
	case token.RETURN:
		return c.compileReturn()
	case token.EXIT:
		return c.compileExit()
	case token.SEMICOLON:
		c.next()
		return nil
	case token.RBRACE:
		return c.errorf(errors.E2011, "unexpected '}'")
	}
	if err := c.compileSimple(); err != nil {
		return err
	}
	return c.expect(token.SEMICOLON)
}

// compileSimple compiles an assignment or an expression evaluated for its
// side effects.
func (c *Compiler) compileSimple() error {
	if c.tok.Type == token.IDENT && c.peek() == token.ASSIGN {
		return c.compileAssign()
	}
	_, err := c.compileExpression()
	return err
}

func (c *Compiler) compileBlock() error {
	c.next()
	outer := c.symbols
	c.symbols = outer.NewBlock()
	defer func() { c.symbols = outer }()
	for c.tok.Type != token.RBRACE {
		if c.tok.Type == token.EOF {
			return c.errorf(errors.E2016, "missing closing brace")
		}
		if err := c.compileStatement(); err != nil {
			return err
		}
	}
	c.next()
	return nil
}

// compileDeclaration compiles "type name [= expr] (, name [= expr])*" or,
// when the first name is followed by '(', a function definition. The
// trailing ';' of a variable declaration is left for the caller.
func (c *Compiler) compileDeclaration(allowFunction bool) (bool, error) {
	typ := typeOfKeyword(c.tok.Type)
	c.next()
	line := c.tok.Line
	name, err := c.expectIdent()
	if err != nil {
		return false, err
	}
	if c.tok.Type == token.LPAREN {
		if !allowFunction {
			return false, c.errorf(errors.E2011, "function %q cannot be defined here", name)
		}
		return true, c.compileFunction(typ, name, line)
	}
	for {
		// The name stays hidden until after its initializer, so "double x = x"
		// reads any outer x.
		sym, err := c.symbols.ReserveVariable(name, typ)
		if err != nil {
			return false, c.errorAt(line, errors.E2006, nil, "%s", err)
		}
		dst := variable(sym)
		c.emit(allocOp(typ), dst)
		if c.match(token.ASSIGN) {
			exprLine := c.tok.Line
			t, err := c.compileExpression()
			if err != nil {
				return false, err
			}
			if !object.Match(typ, t, false) {
				return false, c.typeMismatch(exprLine, "cannot initialize %s %q with %s", typ, name, t)
			}
			c.emit(op.Mov, dst, eax)
		}
		if err := c.symbols.Define(sym); err != nil {
			return false, c.errorAt(line, errors.E2006, nil, "%s", err)
		}
		if !c.match(token.COMMA) {
			return false, nil
		}
		line = c.tok.Line
		if name, err = c.expectIdent(); err != nil {
			return false, err
		}
	}
}

type param struct {
	name string
	typ  object.Type
	line int
}

// compileFunction compiles a function definition. The current token is the
// '(' following the name.
//
// Layout:
//
//	jmp skip
//	entry:
//	pushscope depth, size   ; size patched once the body is compiled
//	<alloc each parameter>
//	<pop each parameter, last first>
//	<body>
//	mov eax, null
//	return:
//	popscope depth
//	ret
//	skip:
func (c *Compiler) compileFunction(returnType object.Type, name string, line int) error {
	c.next()
	var params []param
	if c.tok.Type != token.RPAREN {
		for {
			if !c.tok.Type.IsTypeName() {
				return c.errorf(errors.E2011, "expected parameter type, found %s", describeToken(c.tok))
			}
			typ := typeOfKeyword(c.tok.Type)
			c.next()
			pline := c.tok.Line
			pname, err := c.expectIdent()
			if err != nil {
				return err
			}
			params = append(params, param{name: pname, typ: typ, line: pline})
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	if err := c.expect(token.RPAREN); err != nil {
		return err
	}

	skip, entry, ret := c.newBranch(), c.newBranch(), c.newBranch()
	paramTypes := make([]object.Type, len(params))
	for i, p := range params {
		paramTypes[i] = p.typ
	}
	// Declared in the enclosing scope before the body so recursion resolves
	if _, err := c.symbols.InsertFunction(name, entry, paramTypes, returnType); err != nil {
		return c.errorAt(line, errors.E2006, nil, "%s", err)
	}

	c.emitBranch(op.Jmp, skip)
	c.emitLabel(entry)

	outer := c.symbols
	c.symbols = outer.NewChild()
	depth := c.symbols.Depth()
	frame := c.append(bytecode.NewPushScope(depth, 0))

	slots := make([]bytecode.Operand, len(params))
	for i, p := range params {
		sym, err := c.symbols.InsertVariable(p.name, p.typ)
		if err != nil {
			c.symbols = outer
			return c.errorAt(p.line, errors.E2006, nil, "%s", err)
		}
		slots[i] = variable(sym)
		c.emit(allocOp(p.typ), slots[i])
	}
	for i := len(slots) - 1; i >= 0; i-- {
		c.emit(op.Pop, slots[i])
	}

	enclosing, loops := c.function, c.loops
	c.function = &function{name: name, returnType: returnType, returnLabel: ret}
	c.loops = nil
	restore := func() {
		c.symbols = outer
		c.function, c.loops = enclosing, loops
	}

	if err := c.expect(token.LBRACE); err != nil {
		restore()
		return err
	}
	for c.tok.Type != token.RBRACE {
		if c.tok.Type == token.EOF {
			restore()
			return c.errorf(errors.E2016, "missing closing brace for function %q", name)
		}
		if err := c.compileStatement(); err != nil {
			restore()
			return err
		}
	}

	// The epilogue is emitted before moving past '}' so the marker for the
	// next line lands outside the body.
	c.emit(op.Mov, eax, bytecode.Null())
	c.emitLabel(ret)
	c.append(bytecode.NewPopScope(depth))
	c.emit(op.Ret)
	c.emitLabel(skip)

	size := c.symbols.Count()
	c.program.Patch(frame, bytecode.NewPushScope(depth, size))
	restore()
	c.next()

	c.logger.Debug().
		Str("function", name).
		Int("depth", depth).
		Int("slots", size).
		Int("params", len(params)).
		Int("entry", entry).
		Int("return", ret).
		Msg("compiled function")
	return nil
}

func (c *Compiler) compileAssign() error {
	line := c.tok.Line
	name := c.tok.Literal
	sym, ok := c.symbols.Resolve(name)
	if !ok {
		return c.undefinedError(errors.E2001, "variable", name, line)
	}
	if sym.IsFunction() {
		return c.errorAt(line, errors.E2015, nil, "cannot assign to function %q", name)
	}
	c.next() // name
	c.next() // '='
	exprLine := c.tok.Line
	t, err := c.compileExpression()
	if err != nil {
		return err
	}
	if !object.Match(sym.Type(), t, false) {
		return c.typeMismatch(exprLine, "cannot assign %s to %s %q", t, sym.Type(), name)
	}
	c.emit(op.Mov, variable(sym), eax)
	return nil
}

// compileCondition compiles "(cond)" and tests it, setting the equal flag
// when cond is false. The test is emitted before ')' is consumed so it keeps
// the condition's source line.
func (c *Compiler) compileCondition() error {
	if err := c.expect(token.LPAREN); err != nil {
		return err
	}
	line := c.tok.Line
	t, err := c.compileExpression()
	if err != nil {
		return err
	}
	if !object.Match(object.BOOL, t, true) {
		return c.typeMismatch(line, "condition must be bool, got %s", t)
	}
	c.emit(op.Test, eax)
	return c.expect(token.RPAREN)
}

func (c *Compiler) compileIf() error {
	c.next()
	if err := c.compileCondition(); err != nil {
		return err
	}
	elseLabel := c.newBranch()
	c.emitBranch(op.Je, elseLabel)
	if err := c.compileStatement(); err != nil {
		return err
	}
	if c.tok.Type != token.ELSE {
		c.emitLabel(elseLabel)
		return nil
	}
	c.next()
	end := c.newBranch()
	c.emitBranch(op.Jmp, end)
	c.emitLabel(elseLabel)
	if err := c.compileStatement(); err != nil {
		return err
	}
	c.emitLabel(end)
	return nil
}

func (c *Compiler) compileLoopBody(end int) error {
	c.loops = append(c.loops, end)
	err := c.compileStatement()
	c.loops = c.loops[:len(c.loops)-1]
	return err
}

func (c *Compiler) compileWhile() error {
	c.next()
	top, end := c.newBranch(), c.newBranch()
	c.emitLabel(top)
	if err := c.compileCondition(); err != nil {
		return err
	}
	c.emitBranch(op.Je, end)
	if err := c.compileLoopBody(end); err != nil {
		return err
	}
	c.emitBranch(op.Jmp, top)
	c.emitLabel(end)
	return nil
}

// compileFor compiles "for (init; cond; step) body". The step clause is
// skipped on the first pass and compiled after the body by rewinding the
// token cursor.
func (c *Compiler) compileFor() error {
	c.next()
	if err := c.expect(token.LPAREN); err != nil {
		return err
	}
	outer := c.symbols
	c.symbols = outer.NewBlock()
	defer func() { c.symbols = outer }()

	if c.tok.Type.IsTypeName() {
		if _, err := c.compileDeclaration(false); err != nil {
			return err
		}
	} else if c.tok.Type != token.SEMICOLON {
		if err := c.compileSimple(); err != nil {
			return err
		}
	}
	if err := c.expect(token.SEMICOLON); err != nil {
		return err
	}

	top, end := c.newBranch(), c.newBranch()
	c.emitLabel(top)
	if c.tok.Type != token.SEMICOLON {
		line := c.tok.Line
		t, err := c.compileExpression()
		if err != nil {
			return err
		}
		if !object.Match(object.BOOL, t, true) {
			return c.typeMismatch(line, "condition must be bool, got %s", t)
		}
		c.emit(op.Test, eax)
		c.emitBranch(op.Je, end)
	}
	if err := c.expect(token.SEMICOLON); err != nil {
		return err
	}

	step := c.pos
	for nesting := 0; c.tok.Type != token.RPAREN || nesting > 0; c.next() {
		switch c.tok.Type {
		case token.EOF:
			return c.errorf(errors.E2011, "expected ')' to close for clause")
		case token.LPAREN:
			nesting++
		case token.RPAREN:
			nesting--
		}
	}
	c.next()

	if err := c.compileLoopBody(end); err != nil {
		return err
	}
	resume := c.pos
	c.seek(step)
	if c.tok.Type != token.RPAREN {
		if err := c.compileSimple(); err != nil {
			return err
		}
		if c.tok.Type != token.RPAREN {
			return c.errorf(errors.E2011, "expected ')', found %s", describeToken(c.tok))
		}
	}
	c.seek(resume)
	c.emitBranch(op.Jmp, top)
	c.emitLabel(end)
	return nil
}

// compileLoop compiles the post-condition loop "loop body while (cond);".
func (c *Compiler) compileLoop() error {
	c.next()
	top, end := c.newBranch(), c.newBranch()
	c.emitLabel(top)
	if err := c.compileLoopBody(end); err != nil {
		return err
	}
	if err := c.expect(token.WHILE); err != nil {
		return err
	}
	if err := c.compileCondition(); err != nil {
		return err
	}
	c.emitBranch(op.Jne, top)
	if err := c.expect(token.SEMICOLON); err != nil {
		return err
	}
	c.emitLabel(end)
	return nil
}

func (c *Compiler) compileBreak() error {
	if len(c.loops) == 0 {
		return c.errorf(errors.E2003, "break outside of a loop")
	}
	c.next()
	if err := c.expect(token.SEMICOLON); err != nil {
		return err
	}
	c.emitBranch(op.Jmp, c.loops[len(c.loops)-1])
	return nil
}

func (c *Compiler) compileReturn() error {
	if c.function == nil {
		return c.errorf(errors.E2005, "return outside of a function")
	}
	c.next()
	if c.tok.Type == token.SEMICOLON {
		c.emit(op.Mov, eax, bytecode.Null())
	} else {
		line := c.tok.Line
		t, err := c.compileExpression()
		if err != nil {
			return err
		}
		if !object.Match(c.function.returnType, t, false) {
			return c.typeMismatch(line, "function %q returns %s, not %s",
				c.function.name, c.function.returnType, t)
		}
	}
	if err := c.expect(token.SEMICOLON); err != nil {
		return err
	}
	c.emitBranch(op.Jmp, c.function.returnLabel)
	return nil
}

func (c *Compiler) compileExit() error {
	c.next()
	if c.tok.Type == token.SEMICOLON {
		c.emit(op.Exit, bytecode.Null())
		c.next()
		return nil
	}
	line := c.tok.Line
	t, err := c.compileExpression()
	if err != nil {
		return err
	}
	if c.checkExit && !object.Match(c.exitType, t, false) {
		return c.typeMismatch(line, "exit type must be %s, got %s", c.exitType, t)
	}
	c.emit(op.Exit, eax)
	return c.expect(token.SEMICOLON)
}
