package main

import (
	gpdsl "github.com/danielteel/gpdsl-sub000"
	"github.com/danielteel/gpdsl-sub000/dis"
	"github.com/spf13/cobra"
)

func (a *app) disCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble a program",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.disassemble,
	}
	flags := cmd.Flags()
	flags.StringP("code", "c", "", "Code to disassemble")
	flags.Bool("stdin", false, "Read code from stdin")
	return cmd
}

func (a *app) disassemble(cmd *cobra.Command, args []string) error {
	source, err := a.source(cmd, args)
	if err != nil {
		return err
	}
	opts, err := a.options()
	if err != nil {
		return err
	}
	program, err := gpdsl.Compile(source, opts...)
	if err != nil {
		return a.formatError(err)
	}
	return dis.Print(program, a.stdout, a.useColor(a.stdout))
}
