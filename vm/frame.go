package vm

import "github.com/danielteel/gpdsl-sub000/object"

// call is one entry of the call stack.
type call struct {
	name       string
	returnAddr int
	callSiteIP int // address of the call instruction (for stack traces)
	line       int // source line of the call site, restored on return
}

// scope is the frame stack of one allocation depth. Each call of a function
// defined at that depth pushes a fresh slot array, so recursive calls get
// independent locals.
type scope struct {
	frames [][]object.Value
}

func (s *scope) push(size int) {
	s.frames = append(s.frames, make([]object.Value, size))
}

func (s *scope) pop() bool {
	if len(s.frames) == 0 {
		return false
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return true
}

func (s *scope) top() []object.Value {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}
