// Package dis renders gpdsl bytecode programs as text listings.
//
// A listing has one line per instruction, "<index>\t\t<instruction>",
// interleaved with "-<line>-\t<source>" markers for the debug line
// pseudo-instructions. Unlinked programs show branch targets as L<id>;
// linked programs show instruction indices. The header and footer report
// the instruction count, labels and markers excluded.
package dis

import (
	"bytes"
	"fmt"
	"io"

	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/op"
	"github.com/fatih/color"
)

// Disassemble returns the plain listing of p.
func Disassemble(p *bytecode.Program) string {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = Print(p, &buf, false)
	return buf.String()
}

// Print writes the listing of p to w, colored if useColor is set.
func Print(p *bytecode.Program, w io.Writer, useColor bool) error {
	pr := newPrinter(useColor)
	count := p.CodeCount()
	if _, err := fmt.Fprintf(w, "%s\n", pr.comment.Sprintf("; %s program: %d instructions", p.State(), count)); err != nil {
		return err
	}
	linked := p.State() == bytecode.Ready
	for i, ins := range p.Instructions() {
		if _, err := fmt.Fprintln(w, pr.line(i, ins, linked)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s\n", pr.comment.Sprintf("; %d instructions", count))
	return err
}

type printer struct {
	comment  *color.Color
	marker   *color.Color
	mnemonic *color.Color
	label    *color.Color
	index    *color.Color
}

func newPrinter(useColor bool) *printer {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &printer{
		comment:  mk(color.Faint),
		marker:   mk(color.FgGreen),
		mnemonic: mk(color.Bold),
		label:    mk(color.FgCyan),
		index:    mk(color.FgYellow),
	}
}

func (pr *printer) line(i int, ins *bytecode.Instruction, linked bool) string {
	switch ins.Code {
	case op.DebugLine:
		return pr.marker.Sprint(ins.String())
	case op.Label:
		return fmt.Sprintf("%s\t\t%s", pr.index.Sprint(i), pr.label.Sprint(ins.String()))
	}
	text := ins.String()
	if linked {
		text = ins.LinkedString()
	}
	name := ins.Code.String()
	rest := text[len(name):]
	if ins.Info().Branch {
		rest = pr.label.Sprint(rest)
	}
	return fmt.Sprintf("%s\t\t%s%s", pr.index.Sprint(i), pr.mnemonic.Sprint(name), rest)
}
