package main

import (
	"strings"

	gpdsl "github.com/danielteel/gpdsl-sub000"
	"github.com/spf13/cobra"
)

func (a *app) evalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <expr>",
		Short: "Evaluate an expression",
		Long:  "Evaluate an expression by running \"exit <expr>;\" and print its value.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.eval,
	}
	flags := cmd.Flags()
	flags.StringP("output", "o", "text", "Output format (text or json)")
	flags.String("exit-type", "", "Require the expression to have this type (bool, double or string)")
	return cmd
}

func (a *app) eval(cmd *cobra.Command, args []string) error {
	opts, err := a.options()
	if err != nil {
		return err
	}
	source := "exit " + strings.Join(args, " ") + ";"
	result, err := gpdsl.Run(cmd.Context(), source, opts...)
	if err != nil {
		return a.formatError(err)
	}
	return a.printValue(result.Value)
}
