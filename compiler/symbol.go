package compiler

import "github.com/danielteel/gpdsl-sub000/object"

// Symbol is a declared variable, function or external binding.
type Symbol struct {
	name       string
	typ        object.Type
	depth      int
	index      int
	branch     int
	params     []object.Type
	returnType object.Type
}

// Name returns the declared name.
func (s *Symbol) Name() string {
	return s.name
}

// Type returns the static type. Functions report FUNCTION.
func (s *Symbol) Type() object.Type {
	return s.typ
}

// Depth returns the allocation depth the symbol was declared at.
func (s *Symbol) Depth() int {
	return s.depth
}

// Index returns the storage slot within the frame at Depth. Internal
// functions have no slot and report -1.
func (s *Symbol) Index() int {
	return s.index
}

// BranchID returns the entry label of an internal function.
func (s *Symbol) BranchID() int {
	return s.branch
}

// Params returns the parameter types of a function.
func (s *Symbol) Params() []object.Type {
	return s.params
}

// ReturnType returns the declared return type of a function.
func (s *Symbol) ReturnType() object.Type {
	return s.returnType
}

// IsFunction returns true for internal and external functions.
func (s *Symbol) IsFunction() bool {
	return s.typ == object.FUNCTION
}

// IsExternal returns true for host bindings.
func (s *Symbol) IsExternal() bool {
	return s.depth == 0
}
