package testing

import "time"

// Status is the outcome of one test file.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "PASS"
	case StatusFailed:
		return "FAIL"
	case StatusSkipped:
		return "SKIP"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// AssertionError describes one failed check. Got and Want are rendered
// values and may be empty.
type AssertionError struct {
	Message string
	Got     string
	Want    string
}

// TestResult holds the result of running one test file.
type TestResult struct {
	Name       string
	Filename   string
	Status     Status
	Duration   time.Duration
	Error      error
	Failures   []AssertionError
	Logs       []string
	SkipReason string
}

// Summary aggregates the results of a run.
type Summary struct {
	Tests    []*TestResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
	Errors   int
}

// ComputeTotals recounts the per-status totals.
func (s *Summary) ComputeTotals() {
	s.Passed, s.Failed, s.Skipped, s.Errors = 0, 0, 0, 0
	for _, t := range s.Tests {
		switch t.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		case StatusError:
			s.Errors++
		}
	}
}

// Success returns true if no test failed or errored.
func (s *Summary) Success() bool {
	return s.Failed == 0 && s.Errors == 0
}
