package main

import (
	"fmt"
	"os"
	"os/signal"

	gpdsl "github.com/danielteel/gpdsl-sub000"
	"github.com/spf13/cobra"
)

func (a *app) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Compile and run a program",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.run,
	}
	flags := cmd.Flags()
	flags.StringP("code", "c", "", "Code to run")
	flags.Bool("stdin", false, "Read code from stdin")
	flags.String("exit-type", "", "Require exit values of this type (bool, double or string)")
	flags.Bool("dis", false, "Print the disassembly before the exit value")
	flags.StringP("output", "o", "text", "Output format (text or json)")
	flags.Int64("max-instructions", 0, "Abort after this many instructions (0 means no limit)")
	flags.Bool("trace", false, "Trace executed source lines and calls to stderr")
	return cmd
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	source, err := a.source(cmd, args)
	if err != nil {
		return err
	}
	opts, err := a.options()
	if err != nil {
		return err
	}
	if a.v.GetBool("dis") {
		opts = append(opts, gpdsl.WithDisassembly(true))
	}
	if a.v.GetBool("trace") {
		opts = append(opts, gpdsl.WithObserver(newTracer(a.stderr)))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	result, err := gpdsl.Run(ctx, source, opts...)
	if result != nil && result.Disassembly != "" {
		fmt.Fprint(a.stdout, result.Disassembly)
	}
	if err != nil {
		return a.formatError(err)
	}
	return a.printValue(result.Value)
}
