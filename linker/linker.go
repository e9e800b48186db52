// Package linker resolves symbolic branch ids to absolute instruction
// indices and removes label pseudo-instructions.
package linker

import (
	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/errors"
	"github.com/danielteel/gpdsl-sub000/op"
	"github.com/rs/zerolog"
)

// Option is a configuration function for Link.
type Option func(*linker)

// WithLogger sets the logger used by the linker.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *linker) {
		l.logger = logger
	}
}

type linker struct {
	logger zerolog.Logger
}

// Link rewrites every jump and internal call in p to target an instruction
// index, drops the labels and moves p to the Ready state. Linking a Ready
// program does nothing.
func Link(p *bytecode.Program, opts ...Option) error {
	l := &linker{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	if p.State() == bytecode.Ready {
		return nil
	}

	// A label resolves to the index the next instruction will occupy once
	// all labels before it are gone.
	labels := map[int]int{}
	index := 0
	for _, ins := range p.Instructions() {
		if ins.Code != op.Label {
			index++
			continue
		}
		if _, found := labels[ins.Branch]; found {
			return errors.NewLinkError(errors.E4001, ins.Branch, "duplicate label L%d", ins.Branch)
		}
		labels[ins.Branch] = index
	}

	for _, i := range p.Branches() {
		ins := p.At(i)
		if _, found := labels[ins.Branch]; !found {
			return errors.NewLinkError(errors.E4002, ins.Branch, "undefined label L%d in %s", ins.Branch, ins.Code)
		}
	}

	p.Filter(func(ins *bytecode.Instruction) bool {
		return ins.Code != op.Label
	})
	for _, i := range p.Branches() {
		ins := p.At(i).Clone()
		ins.Branch = labels[ins.Branch]
		p.Patch(i, ins)
	}
	p.MarkReady()

	l.logger.Debug().
		Str("program", p.ID()).
		Int("labels", len(labels)).
		Int("instructions", p.Len()).
		Msg("linked program")
	return nil
}
