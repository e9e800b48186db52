// Package testing runs gpdsl test scripts.
//
// A test is a file named *_test.gpdsl. Leading comment lines may carry
// directives:
//
//	// expect: <value>    the exit value, as rendered by Inspect
//	// error: <code>      the error code the run must fail with
//	// skip: <reason>     do not run the file
//
// Each file runs twice, without and with the optimizer. Both runs must
// meet the directives, pass every assert() and agree with each other.
package testing

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	gpdsl "github.com/danielteel/gpdsl-sub000"
	"github.com/danielteel/gpdsl-sub000/errors"
)

// Config holds configuration for running tests.
type Config struct {
	// Patterns specifies files or directories to search for tests.
	// Default is current directory.
	Patterns []string

	// RunPattern filters tests to run by name regex.
	RunPattern string

	// Verbose shows script output for passing tests too.
	Verbose bool

	// InstructionLimit bounds each run. Zero means no limit.
	InstructionLimit int64
}

// DiscoverTestFiles finds all *_test.gpdsl files matching the given
// patterns. If no patterns are provided, searches the current directory.
// A pattern ending in "..." searches recursively.
func DiscoverTestFiles(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if isTestFile(path) && !seen[path] {
			files = append(files, path)
			seen[path] = true
		}
	}

	for _, pattern := range patterns {
		if strings.Contains(pattern, "*") {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		recursive := false
		searchDir := pattern
		if strings.HasSuffix(pattern, "...") {
			recursive = true
			searchDir = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
			if searchDir == "" {
				searchDir = "."
			}
		}

		info, err := os.Stat(searchDir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("path not found: %s", searchDir)
			}
			return nil, err
		}
		if !info.IsDir() {
			add(pattern)
			continue
		}
		if recursive {
			err = filepath.Walk(searchDir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}
		entries, err := os.ReadDir(searchDir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() {
				add(filepath.Join(searchDir, e.Name()))
			}
		}
	}
	return files, nil
}

func isTestFile(path string) bool {
	return strings.HasSuffix(path, "_test.gpdsl")
}

// testName derives the name shown for a test file.
func testName(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), ".gpdsl")
}

// Run executes tests according to the given configuration.
func Run(ctx context.Context, cfg *Config) (*Summary, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	files, err := DiscoverTestFiles(cfg.Patterns)
	if err != nil {
		return nil, err
	}
	var runRe *regexp.Regexp
	if cfg.RunPattern != "" {
		runRe, err = regexp.Compile(cfg.RunPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid run pattern: %w", err)
		}
	}

	summary := &Summary{}
	start := time.Now()
	for _, file := range files {
		if runRe != nil && !runRe.MatchString(testName(file)) {
			continue
		}
		summary.Tests = append(summary.Tests, runTestFile(ctx, file, cfg))
	}
	summary.Duration = time.Since(start)
	summary.ComputeTotals()
	return summary, nil
}

type directives struct {
	expect    string
	hasExpect bool
	errorCode string
	skip      string
}

func parseDirectives(source string) directives {
	var d directives
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "//") {
			break
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "//")), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "expect":
			d.expect, d.hasExpect = value, true
		case "error":
			d.errorCode = value
		case "skip":
			d.skip = value
		}
	}
	return d
}

// outcome is what one run of a script produced.
type outcome struct {
	value string
	code  errors.ErrorCode
	err   error
	tc    *TestContext
}

func (o outcome) String() string {
	if o.err != nil {
		if o.code != "" {
			return "error " + string(o.code)
		}
		return "error " + o.err.Error()
	}
	return o.value
}

func runOnce(ctx context.Context, filename, source string, optimize bool, cfg *Config) outcome {
	tc := NewTestContext(testName(filename), filename)
	result, err := gpdsl.Run(ctx, source,
		gpdsl.WithOptimize(optimize),
		gpdsl.WithInstructionLimit(cfg.InstructionLimit),
		gpdsl.WithBindings(tc.Bindings()...))
	o := outcome{err: err, tc: tc}
	if err != nil {
		var fe errors.FormattableError
		if stderrors.As(err, &fe) {
			o.code = fe.ToFormatted().Code
		}
		return o
	}
	o.value = result.Value.Inspect()
	return o
}

// runTestFile executes one test file in both optimizer modes.
func runTestFile(ctx context.Context, filename string, cfg *Config) *TestResult {
	result := &TestResult{Name: testName(filename), Filename: filename}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	data, err := os.ReadFile(filename)
	if err != nil {
		result.Status = StatusError
		result.Error = err
		return result
	}
	source := string(data)
	d := parseDirectives(source)
	if d.skip != "" {
		result.Status = StatusSkipped
		result.SkipReason = d.skip
		return result
	}

	plain := runOnce(ctx, filename, source, false, cfg)
	optimized := runOnce(ctx, filename, source, true, cfg)
	result.Logs = plain.tc.Logs()

	if plain.tc.Skipped() {
		result.Status = StatusSkipped
		result.SkipReason = plain.tc.SkipReason()
		return result
	}
	result.Failures = append(result.Failures, plain.tc.Failures()...)
	result.Failures = append(result.Failures, check(plain, d)...)
	if plain.String() != optimized.String() {
		result.Failures = append(result.Failures, AssertionError{
			Message: "optimized run differs",
			Got:     optimized.String(),
			Want:    plain.String(),
		})
	} else if strings.Join(plain.tc.Logs(), "\n") != strings.Join(optimized.tc.Logs(), "\n") {
		result.Failures = append(result.Failures, AssertionError{Message: "optimized run printed different output"})
	}

	switch {
	case plain.err != nil && d.errorCode == "" && len(result.Failures) == 0:
		result.Status = StatusError
		result.Error = plain.err
	case len(result.Failures) > 0:
		result.Status = StatusFailed
	default:
		result.Status = StatusPassed
	}
	return result
}

// check compares an outcome against the file's directives.
func check(o outcome, d directives) []AssertionError {
	switch {
	case d.errorCode != "":
		if o.code != errors.ErrorCode(d.errorCode) {
			return []AssertionError{{Message: "wrong error", Got: o.String(), Want: "error " + d.errorCode}}
		}
	case o.err != nil:
		// Reported as a test error by the caller.
	case d.hasExpect && o.value != d.expect:
		return []AssertionError{{Message: "wrong exit value", Got: o.value, Want: d.expect}}
	}
	return nil
}
