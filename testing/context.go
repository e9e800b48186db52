package testing

import (
	"bytes"
	"errors"
	"strings"

	gpdsl "github.com/danielteel/gpdsl-sub000"
	"github.com/danielteel/gpdsl-sub000/builtins"
	"github.com/danielteel/gpdsl-sub000/object"
)

// errSkipped aborts a script that called skip().
var errSkipped = errors.New("test skipped")

// TestContext collects the assertions, logs and skip requests made by one
// run of a test script.
type TestContext struct {
	name       string
	filename   string
	failures   []AssertionError
	output     bytes.Buffer
	skipped    bool
	skipReason string
}

// NewTestContext returns an empty context for the named test.
func NewTestContext(name, filename string) *TestContext {
	return &TestContext{name: name, filename: filename}
}

// Bindings returns the standard functions, with print output captured as
// test logs, plus the test functions:
//
//	bool assert(bool cond, string message)
//	bool fail(string message)
//	bool skip(string reason)
//	bool log(string message)
func (t *TestContext) Bindings() []gpdsl.Binding {
	bindings := builtins.Bindings(&t.output)
	return append(bindings,
		gpdsl.ExternalFunction{
			Name:       "assert",
			ReturnType: "bool",
			ParamTypes: []string{"bool", "string"},
			Invoke:     t.builtinAssert,
		},
		gpdsl.ExternalFunction{
			Name:       "fail",
			ReturnType: "bool",
			ParamTypes: []string{"string"},
			Invoke:     t.builtinFail,
		},
		gpdsl.ExternalFunction{
			Name:       "skip",
			ReturnType: "bool",
			ParamTypes: []string{"string"},
			Invoke:     t.builtinSkip,
		},
		gpdsl.ExternalFunction{
			Name:       "log",
			ReturnType: "bool",
			ParamTypes: []string{"string"},
			Invoke:     t.builtinLog,
		},
	)
}

func (t *TestContext) Name() string { return t.name }

func (t *TestContext) Failed() bool { return len(t.failures) > 0 }

func (t *TestContext) Skipped() bool { return t.skipped }

func (t *TestContext) SkipReason() string { return t.skipReason }

// Logs returns the lines printed by the script, in order.
func (t *TestContext) Logs() []string {
	text := strings.TrimSuffix(t.output.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func (t *TestContext) Failures() []AssertionError {
	return t.failures
}

func (t *TestContext) builtinAssert(pop func() object.Value) (object.Value, error) {
	message, cond := stringArg(pop()), pop()
	ok := false
	if b, isBool := cond.(*object.Bool); isBool && !b.IsNull() {
		ok = b.Value()
	}
	if !ok {
		if message == "" {
			message = "assertion failed"
		}
		t.addFailure(message, cond.Inspect(), "true")
	}
	return object.NewBool(ok), nil
}

func (t *TestContext) builtinFail(pop func() object.Value) (object.Value, error) {
	t.addFailure(stringArg(pop()), "", "")
	return object.NewBool(false), nil
}

func (t *TestContext) builtinSkip(pop func() object.Value) (object.Value, error) {
	t.skipped = true
	t.skipReason = stringArg(pop())
	return nil, errSkipped
}

func (t *TestContext) builtinLog(pop func() object.Value) (object.Value, error) {
	t.output.WriteString(stringArg(pop()))
	t.output.WriteString("\n")
	return object.NewBool(true), nil
}

func (t *TestContext) addFailure(message, got, want string) {
	t.failures = append(t.failures, AssertionError{Message: message, Got: got, Want: want})
}

func stringArg(v object.Value) string {
	if s, ok := v.(*object.String); ok && !s.IsNull() {
		return s.Value()
	}
	return ""
}
