package testing

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// OutputConfig configures output formatting.
type OutputConfig struct {
	// Writer is where output is written.
	Writer io.Writer

	// Verbose shows script output for all tests.
	Verbose bool

	// UseColor enables ANSI color codes.
	UseColor bool
}

// Output handles formatting and printing test results.
type Output struct {
	w       io.Writer
	verbose bool
	green   *color.Color
	red     *color.Color
	yellow  *color.Color
}

// NewOutput creates a new Output formatter.
func NewOutput(cfg OutputConfig) *Output {
	mk := func(attr color.Attribute) *color.Color {
		c := color.New(attr)
		if cfg.UseColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &Output{
		w:       cfg.Writer,
		verbose: cfg.Verbose,
		green:   mk(color.FgGreen),
		red:     mk(color.FgRed),
		yellow:  mk(color.FgYellow),
	}
}

// StartTest prints the "=== RUN" line for a test.
func (o *Output) StartTest(name string) {
	fmt.Fprintf(o.w, "=== RUN   %s\n", name)
}

// EndTest prints the result line for a test (--- PASS, --- FAIL, etc.).
func (o *Output) EndTest(result *TestResult) {
	var status string
	switch result.Status {
	case StatusPassed:
		status = o.green.Sprint("--- PASS:")
	case StatusFailed:
		status = o.red.Sprint("--- FAIL:")
	case StatusSkipped:
		status = o.yellow.Sprint("--- SKIP:")
	case StatusError:
		status = o.red.Sprint("--- ERROR:")
	default:
		status = fmt.Sprintf("--- %s:", result.Status)
	}
	fmt.Fprintf(o.w, "%s %s (%.3fs)\n", status, result.Name, result.Duration.Seconds())

	if result.Status == StatusSkipped && result.SkipReason != "" {
		fmt.Fprintf(o.w, "    %s\n", result.SkipReason)
	}
	if result.Status == StatusError && result.Error != nil {
		fmt.Fprintf(o.w, "    %s\n", result.Error.Error())
	}
	for _, failure := range result.Failures {
		o.printFailure(result.Filename, &failure)
	}
	if o.verbose || result.Status == StatusFailed {
		for _, log := range result.Logs {
			fmt.Fprintf(o.w, "    %s\n", log)
		}
	}
}

func (o *Output) printFailure(filename string, f *AssertionError) {
	fmt.Fprintf(o.w, "    %s: %s\n", filename, f.Message)
	if f.Got != "" {
		fmt.Fprintf(o.w, "        %s:  %s\n", o.red.Sprint("got"), f.Got)
	}
	if f.Want != "" {
		fmt.Fprintf(o.w, "        %s: %s\n", o.green.Sprint("want"), f.Want)
	}
}

// Summary prints the final summary line.
func (o *Output) Summary(summary *Summary) {
	fmt.Fprintln(o.w)
	if summary.Success() {
		fmt.Fprintln(o.w, o.green.Sprint("PASS"))
	} else {
		fmt.Fprintln(o.w, o.red.Sprint("FAIL"))
	}

	var parts []string
	if summary.Passed > 0 {
		parts = append(parts, o.green.Sprintf("%d passed", summary.Passed))
	}
	if summary.Failed > 0 {
		parts = append(parts, o.red.Sprintf("%d failed", summary.Failed))
	}
	if summary.Skipped > 0 {
		parts = append(parts, o.yellow.Sprintf("%d skipped", summary.Skipped))
	}
	if summary.Errors > 0 {
		parts = append(parts, o.red.Sprintf("%d errors", summary.Errors))
	}
	if len(parts) > 0 {
		fmt.Fprintln(o.w, strings.Join(parts, ", "))
	}
}

// PrintResults prints all results in Go test style.
func (o *Output) PrintResults(summary *Summary) {
	for _, test := range summary.Tests {
		o.StartTest(test.Name)
		o.EndTest(test)
	}
	o.Summary(summary)
}
