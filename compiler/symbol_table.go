package compiler

import (
	"fmt"
	"sort"

	"github.com/danielteel/gpdsl-sub000/object"
)

// SymbolTable tracks the symbols declared in one lexical scope. Tables
// created with NewChild start a new allocation frame one level deeper;
// tables created with NewBlock are nested lexical scopes that claim slots
// from the enclosing frame.
type SymbolTable struct {
	parent        *SymbolTable
	symbolsByName map[string]*Symbol
	isBlock       bool
	depth         int
	slots         int
	maxDepth      *int
}

// NewSymbolTable returns the root table. It lives at allocation depth 0,
// which holds the external bindings.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbolsByName: map[string]*Symbol{},
		maxDepth:      new(int),
	}
}

// NewChild creates a table for a new allocation frame one depth deeper.
func (t *SymbolTable) NewChild() *SymbolTable {
	child := &SymbolTable{
		parent:        t,
		symbolsByName: map[string]*Symbol{},
		depth:         t.depth + 1,
		maxDepth:      t.maxDepth,
	}
	if child.depth > *t.maxDepth {
		*t.maxDepth = child.depth
	}
	return child
}

// NewBlock creates a nested lexical scope sharing this table's frame.
func (t *SymbolTable) NewBlock() *SymbolTable {
	return &SymbolTable{
		parent:        t,
		symbolsByName: map[string]*Symbol{},
		isBlock:       true,
		depth:         t.depth,
		maxDepth:      t.maxDepth,
	}
}

func (t *SymbolTable) claimIndex() int {
	if t.isBlock {
		return t.parent.claimIndex()
	}
	idx := t.slots
	t.slots++
	return idx
}

func (t *SymbolTable) insert(s *Symbol) error {
	if _, ok := t.symbolsByName[s.name]; ok {
		return fmt.Errorf("%q is already declared in this scope", s.name)
	}
	t.symbolsByName[s.name] = s
	return nil
}

// InsertVariable declares a scalar variable and assigns it the next slot of
// the enclosing frame.
func (t *SymbolTable) InsertVariable(name string, typ object.Type) (*Symbol, error) {
	s, err := t.ReserveVariable(name, typ)
	if err != nil {
		return nil, err
	}
	return s, t.Define(s)
}

// ReserveVariable claims a slot for a variable without making its name
// visible. Lookups keep resolving name to any outer declaration until the
// symbol is passed to Define.
func (t *SymbolTable) ReserveVariable(name string, typ object.Type) (*Symbol, error) {
	if !typ.IsScalar() {
		return nil, fmt.Errorf("cannot declare %q with type %s", name, typ)
	}
	if _, ok := t.symbolsByName[name]; ok {
		return nil, fmt.Errorf("%q is already declared in this scope", name)
	}
	return &Symbol{name: name, typ: typ, depth: t.depth, index: t.claimIndex()}, nil
}

// Define makes a reserved symbol visible in this table.
func (t *SymbolTable) Define(s *Symbol) error {
	return t.insert(s)
}

// InsertFunction declares an internal function. Functions consume a branch
// id but no storage slot.
func (t *SymbolTable) InsertFunction(name string, branch int, params []object.Type, returnType object.Type) (*Symbol, error) {
	s := &Symbol{
		name:       name,
		typ:        object.FUNCTION,
		depth:      t.depth,
		index:      -1,
		branch:     branch,
		params:     params,
		returnType: returnType,
	}
	return s, t.insert(s)
}

// InsertExternalFunction declares a host function. Like every external
// binding it occupies one slot at depth 0, which is its binding index.
func (t *SymbolTable) InsertExternalFunction(name string, params []object.Type, returnType object.Type) (*Symbol, error) {
	if t.depth != 0 {
		return nil, fmt.Errorf("external function %q must be declared at depth 0", name)
	}
	if _, ok := t.symbolsByName[name]; ok {
		return nil, fmt.Errorf("%q is already declared in this scope", name)
	}
	s := &Symbol{
		name:       name,
		typ:        object.FUNCTION,
		index:      t.claimIndex(),
		params:     params,
		returnType: returnType,
	}
	return s, t.insert(s)
}

// Get returns the symbol declared in this table only.
func (t *SymbolTable) Get(name string) (*Symbol, bool) {
	s, ok := t.symbolsByName[name]
	return s, ok
}

// IsDefined returns true if name is declared in this table only.
func (t *SymbolTable) IsDefined(name string) bool {
	_, ok := t.symbolsByName[name]
	return ok
}

// Resolve looks name up innermost first across the enclosing lexical scopes.
func (t *SymbolTable) Resolve(name string) (*Symbol, bool) {
	for table := t; table != nil; table = table.parent {
		if s, ok := table.symbolsByName[name]; ok {
			return s, true
		}
	}
	return nil, false
}

// Parent returns the enclosing table, if any.
func (t *SymbolTable) Parent() *SymbolTable {
	return t.parent
}

// Depth returns the allocation depth of this table.
func (t *SymbolTable) Depth() int {
	return t.depth
}

// MaxDepth returns the deepest allocation depth created anywhere in the
// tree this table belongs to.
func (t *SymbolTable) MaxDepth() int {
	return *t.maxDepth
}

// Count returns the number of slots claimed in this table's frame.
func (t *SymbolTable) Count() int {
	if t.isBlock {
		return t.parent.Count()
	}
	return t.slots
}

// AllNames returns all symbol names visible from this table, sorted. It is
// used to generate suggestions.
func (t *SymbolTable) AllNames() []string {
	seen := map[string]bool{}
	var names []string
	for table := t; table != nil; table = table.parent {
		for name := range table.symbolsByName {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
