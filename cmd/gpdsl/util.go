package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gpdsl "github.com/danielteel/gpdsl-sub000"
	"github.com/danielteel/gpdsl-sub000/builtins"
	gperrors "github.com/danielteel/gpdsl-sub000/errors"
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

// formattedError carries an error already rendered for the terminal.
type formattedError struct {
	text string
	err  error
}

func (e *formattedError) Error() string { return e.err.Error() }

func (e *formattedError) Unwrap() error { return e.err }

// source determines the code to run. There are three possibilities:
// --code <code>, --stdin, or a path as args[0].
func (a *app) source(cmd *cobra.Command, args []string) (string, error) {
	var codeFlagSet, stdinFlagSet bool
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		codeFlagSet = true
	}
	if f := cmd.Flags().Lookup("stdin"); f != nil && f.Changed {
		stdinFlagSet = true
	}
	pathSupplied := len(args) > 0
	count := 0
	for _, set := range []bool{codeFlagSet, stdinFlagSet, pathSupplied} {
		if set {
			count++
		}
	}
	switch {
	case count > 1:
		return "", errors.New("multiple input sources specified")
	case count == 0:
		return "", errors.New("no input provided")
	case stdinFlagSet:
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return a.v.GetString("code"), nil
}

// options translates the configuration into gpdsl options.
func (a *app) options() ([]gpdsl.Option, error) {
	logger, err := a.logger()
	if err != nil {
		return nil, err
	}
	opts := []gpdsl.Option{
		gpdsl.WithLogger(logger),
		gpdsl.WithOptimize(a.v.GetBool("optimize")),
		gpdsl.WithExitType(a.v.GetString("exit-type")),
		gpdsl.WithInstructionLimit(a.v.GetInt64("max-instructions")),
	}
	if !a.v.GetBool("no-builtins") {
		opts = append(opts, gpdsl.WithBindings(builtins.Bindings(a.stdout)...))
	}
	return opts, nil
}

// printValue writes an exit value in the configured output format.
func (a *app) printValue(v object.Value) error {
	switch format := strings.ToLower(a.v.GetString("output")); format {
	case "", "text":
		if s, ok := v.(*object.String); ok && !s.IsNull() {
			_, err := fmt.Fprintln(a.stdout, s.Value())
			return err
		}
		_, err := fmt.Fprintln(a.stdout, v.Inspect())
		return err
	case "json":
		data, err := a.marshal(map[string]any{
			"type":  v.Type().String(),
			"value": v.Interface(),
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.stdout, string(data))
		return err
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func (a *app) marshal(v any) ([]byte, error) {
	if a.useColor(a.stdout) {
		return prettyjson.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// formatError renders gpdsl errors with source context and call trace.
func (a *app) formatError(err error) error {
	var fe gperrors.FormattableError
	if !errors.As(err, &fe) {
		return err
	}
	formatter := gperrors.NewFormatter(a.useColor(a.stderr))
	return &formattedError{text: formatter.Format(fe.ToFormatted()), err: err}
}
