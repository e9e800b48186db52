package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.rootCommand().Execute(); err != nil {
		var formatted *formattedError
		if errors.As(err, &formatted) {
			fmt.Fprintln(os.Stderr, formatted.text)
		} else {
			fmt.Fprintln(os.Stderr, color.RedString("%s", err))
		}
		os.Exit(1)
	}
}
