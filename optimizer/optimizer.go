// Package optimizer implements the peephole pass run between compilation
// and linking.
//
// The pass first strips debug line markers, then repeatedly scans the
// program applying local rewrite rules over windows of two to four
// instructions until a full pass changes nothing. Every rule checks its
// aliasing preconditions structurally with bytecode.Operand.Equal, and rules
// that drop a register or flag write first prove the value is dead with a
// reachability query over the unlinked control flow graph.
package optimizer

import (
	"fmt"

	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/op"
	"github.com/rs/zerolog"
)

// Stats summarizes one optimization run.
type Stats struct {
	Before   int
	After    int
	Passes   int
	Rewrites map[string]int
}

// Option is a configuration function for the optimizer.
type Option func(*optimizer)

// WithLogger sets the logger used to report applied rules.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *optimizer) {
		o.logger = logger
	}
}

// WithMaxPasses bounds the number of full passes. Zero means unbounded.
func WithMaxPasses(n int) Option {
	return func(o *optimizer) {
		o.maxPasses = n
	}
}

type optimizer struct {
	program   *bytecode.Program
	logger    zerolog.Logger
	maxPasses int
	labels    map[int]int
	dirty     bool
	stats     Stats
}

// Optimize rewrites a Building program in place and moves it to the
// Optimized state.
func Optimize(p *bytecode.Program, opts ...Option) (Stats, error) {
	if p.State() != bytecode.Building {
		return Stats{}, fmt.Errorf("optimizer: program is %s, not building", p.State())
	}
	o := &optimizer{
		program: p,
		logger:  zerolog.Nop(),
		dirty:   true,
		stats:   Stats{Before: p.CodeCount(), Rewrites: map[string]int{}},
	}
	for _, opt := range opts {
		opt(o)
	}

	stripped := p.Filter(func(ins *bytecode.Instruction) bool {
		return ins.Code != op.DebugLine
	})
	o.logger.Debug().Int("removed", stripped).Msg("stripped debug lines")

	for changed := true; changed; {
		if o.maxPasses > 0 && o.stats.Passes >= o.maxPasses {
			break
		}
		o.stats.Passes++
		changed = o.pass()
	}
	o.stats.After = p.CodeCount()

	if err := p.MarkOptimized(); err != nil {
		return o.stats, err
	}
	o.logger.Info().
		Str("program", p.ID()).
		Int("before", o.stats.Before).
		Int("after", o.stats.After).
		Int("passes", o.stats.Passes).
		Msg("optimized program")
	return o.stats, nil
}

// pass runs every rule at every index once and reports whether anything
// changed.
func (o *optimizer) pass() bool {
	changed := false
	for i := 0; i < o.program.Len(); i++ {
		for _, r := range rules {
			if i+r.size > o.program.Len() {
				continue
			}
			if r.apply(o, i) {
				o.dirty = true
				changed = true
				o.stats.Rewrites[r.name]++
				o.logger.Debug().Str("rule", r.name).Int("index", i).Msg("peephole")
			}
		}
	}
	return changed
}

func (o *optimizer) at(i int) *bytecode.Instruction {
	return o.program.At(i)
}

// replace swaps n instructions starting at i for the given ones.
func (o *optimizer) replace(i, n int, with ...*bytecode.Instruction) {
	o.program.Replace(i, n, with...)
	o.dirty = true
}

// label returns the index of the label for branch id.
func (o *optimizer) label(id int) (int, bool) {
	if o.dirty {
		o.labels = map[int]int{}
		for i := 0; i < o.program.Len(); i++ {
			if ins := o.program.At(i); ins.Code == op.Label {
				o.labels[ins.Branch] = i
			}
		}
		o.dirty = false
	}
	idx, ok := o.labels[id]
	return idx, ok
}
