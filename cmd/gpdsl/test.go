package main

import (
	"errors"

	"github.com/danielteel/gpdsl-sub000/testing"
	"github.com/spf13/cobra"
)

func (a *app) testCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [patterns...]",
		Short: "Run *_test.gpdsl scripts",
		RunE:  a.test,
	}
	flags := cmd.Flags()
	flags.BoolP("verbose", "v", false, "Show script output for passing tests")
	flags.StringP("run", "r", "", "Run only tests matching pattern")
	flags.Int64("max-instructions", 0, "Abort each run after this many instructions (0 means no limit)")
	return cmd
}

func (a *app) test(cmd *cobra.Command, args []string) error {
	cfg := &testing.Config{
		Patterns:         args,
		RunPattern:       a.v.GetString("run"),
		Verbose:          a.v.GetBool("verbose"),
		InstructionLimit: a.v.GetInt64("max-instructions"),
	}
	summary, err := testing.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	output := testing.NewOutput(testing.OutputConfig{
		Writer:   a.stdout,
		Verbose:  cfg.Verbose,
		UseColor: a.useColor(a.stdout),
	})
	output.PrintResults(summary)
	if !summary.Success() {
		return errors.New("tests failed")
	}
	return nil
}
