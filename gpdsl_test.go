package gpdsl

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"github.com/danielteel/gpdsl-sub000/errors"
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func errorCode(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	require.NotNil(t, err)
	var fe errors.FormattableError
	require.True(t, stderrors.As(err, &fe), err.Error())
	return fe.ToFormatted().Code
}

// recorder provides functions that log each invocation, so runs can be
// compared call for call.
type recorder struct {
	calls []string
}

func (r *recorder) bindings() []Binding {
	return []Binding{
		ExternalFunction{
			Name:       "called",
			ReturnType: "bool",
			Invoke: func(pop func() object.Value) (object.Value, error) {
				r.calls = append(r.calls, "called")
				return object.NewBool(true), nil
			},
		},
		ExternalFunction{
			Name:       "trace",
			ReturnType: "double",
			ParamTypes: []string{"double"},
			Invoke: func(pop func() object.Value) (object.Value, error) {
				v := pop()
				r.calls = append(r.calls, "trace "+v.Inspect())
				return v, nil
			},
		},
		ExternalFunction{
			Name:       "join",
			ReturnType: "string",
			ParamTypes: []string{"string", "double"},
			Invoke: func(pop func() object.Value) (object.Value, error) {
				n, s := pop(), pop()
				r.calls = append(r.calls, "join "+s.Inspect()+" "+n.Inspect())
				prefix, ok := object.Native(s).(*object.String)
				if !ok {
					return object.NewNullOf(object.STRING), nil
				}
				return object.NewString(prefix.Value() + n.Inspect()), nil
			},
		},
	}
}

type outcome struct {
	value       string
	code        errors.ErrorCode
	calls       []string
	disassembly string
}

func runOnce(t *testing.T, source string, optimize bool) outcome {
	t.Helper()
	r := &recorder{}
	result, err := Run(context.Background(), source,
		WithOptimize(optimize),
		WithDisassembly(true),
		WithBindings(r.bindings()...))
	o := outcome{calls: r.calls, disassembly: result.Disassembly}
	if err != nil {
		o.code = errorCode(t, err)
	} else {
		o.value = result.Value.Type().String() + ":" + result.Value.Inspect()
	}
	return o
}

var samples = []string{
	"exit 1 + 2 * 3 - 4 / 2;",
	"double a = 5;\na = a;\nexit a;",
	"double fib(double n) {\n if (n < 2) return n;\n return fib(n - 1) + fib(n - 2);\n}\nexit trace(fib(10));",
	"double s = 0;\nfor (double i = 0; i < 10; i = i + 1) {\n if (i % 2 == 0) s = s + trace(i);\n}\nexit s;",
	"double i = 0;\nwhile (true) {\n i = i + 1;\n if (i >= 5) break;\n}\nexit i;",
	"double i = 0;\nloop {\n i = trace(i + 1);\n} while (i < 3);\nexit i;",
	"bool r = false && called();\nr = r || called();\nexit r;",
	"bool r = true || called();\nexit r && called();",
	"double a = 2;\nexit a == 1 ? 10 : a == 2 ? 20 : 30;",
	"string s = \"a\";\ns = s + \"b\" + join(\"c\", 1);\nexit s;",
	"double n;\nexit n == null;",
	"exit -(-3) + -trace(2);",
	"exit (1 <= 1) && (2 >= 3 || 1 != 2) && (1 < 2) && !(1 > 2);",
	"exit 1 / 0 == null;",
	"double n;\nexit n + 1;",
	"double x = 1;\ndouble f(double x) {\n x = x + 10;\n return x;\n}\nexit f(x) + x;",
	"double count = 0;\ndouble add(double n) {\n count = count + n;\n return count;\n}\nadd(2);\nadd(trace(3));\nexit count;",
	"double a = 3;\ndouble b = a;\nb = b * b;\na = b - a;\nexit a ^ 2;",
	"string s;\nif (s == null) s = \"empty\"; else s = \"full\";\nexit s;",
	"double total = 0;\nfor (double i = 0; i < 4; i = i + 1) {\n for (double j = 0; j < 4; j = j + 1) {\n  if (j > i) break;\n  total = total + trace(j);\n }\n}\nexit total;",
	"bool b = 1 < 2;\nbool c = b == true;\nexit c != false;",
	"double f(double n) {\n if (n <= 0) return 0;\n return f(n - 1);\n}\nexit f(100);",
}

func TestOptimizerIsTransparent(t *testing.T) {
	for _, source := range samples {
		t.Run(strings.SplitN(source, "\n", 2)[0], func(t *testing.T) {
			plain := runOnce(t, source, false)
			optimized := runOnce(t, source, true)
			require.Equal(t, plain.value, optimized.value)
			require.Equal(t, plain.code, optimized.code)
			require.Equal(t, plain.calls, optimized.calls)
			require.LessOrEqual(t,
				strings.Count(optimized.disassembly, "\n"),
				strings.Count(plain.disassembly, "\n"))
		})
	}
}

func TestOptimizerShrinksSelfAssignment(t *testing.T) {
	plain := runOnce(t, "double a=5; a=a;", false)
	optimized := runOnce(t, "double a=5; a=a;", true)
	require.Less(t,
		strings.Count(optimized.disassembly, "\n"),
		strings.Count(plain.disassembly, "\n"))
}

func TestShortCircuitCounting(t *testing.T) {
	tests := []struct {
		source string
		calls  int
	}{
		{"exit false && called();", 0},
		{"exit true && called();", 1},
		{"exit true || called();", 0},
		{"exit false || called();", 1},
	}
	for _, tt := range tests {
		r := &recorder{}
		_, err := Run(context.Background(), tt.source, WithBindings(r.bindings()...))
		require.Nil(t, err)
		require.Len(t, r.calls, tt.calls, tt.source)
	}
}

func TestDivideByAboutZero(t *testing.T) {
	for _, source := range []string{
		"exit 1 / 0;",
		"exit 1 / 0.00000001;",
		"exit 5 % 0;",
		"exit 5 % -0.00000005;",
	} {
		value, err := Eval(context.Background(), source)
		require.Nil(t, err, source)
		require.Nil(t, value, source)
	}
	value, err := Eval(context.Background(), "exit 1 / 0.001;")
	require.Nil(t, err)
	require.Equal(t, 1000.0, value)
}

func TestConstantBindings(t *testing.T) {
	for _, tt := range []struct {
		value  any
		source string
	}{
		{true, "k = false;"},
		{"s", "k = \"t\";"},
		{1.5, "k = 2;"},
	} {
		k, err := NewConstant("k", tt.value)
		require.Nil(t, err)
		_, err = Run(context.Background(), tt.source, WithBindings(k))
		require.Equal(t, errors.E3011, errorCode(t, err))
	}
}

func TestMutableBindingVisibleAfterRun(t *testing.T) {
	v, err := NewVariable("counter", 1)
	require.Nil(t, err)
	program, err := Compile("counter = counter + 1;", WithBindings(v))
	require.Nil(t, err)
	for i := 0; i < 2; i++ {
		_, err = Execute(context.Background(), program, WithBindings(v))
		require.Nil(t, err)
	}
	require.Equal(t, 3.0, v.Value.Interface())
}

func TestRecursion(t *testing.T) {
	value, err := Eval(context.Background(),
		"double fib(double n) {\n if (n < 2) return n;\n return fib(n - 1) + fib(n - 2);\n}\nexit fib(20);")
	require.Nil(t, err)
	require.Equal(t, 6765.0, value)
}

func TestMalformedInput(t *testing.T) {
	tests := []struct {
		source string
		code   errors.ErrorCode
	}{
		{"exit 1 $ 2;", errors.E1001},
		{"string s = \"open;", errors.E1002},
		{"double a;\ndouble a;", errors.E2006},
		{"double a = \"x\";", errors.E2012},
		{"if (true) {\nexit 1;", errors.E2016},
		{"break;", errors.E2003},
		{"return 1;", errors.E2005},
		{"exit b;", errors.E2001},
	}
	for _, tt := range tests {
		_, err := Run(context.Background(), tt.source)
		require.Equal(t, tt.code, errorCode(t, err), tt.source)
	}
}

func TestTernaryTypes(t *testing.T) {
	_, err := Run(context.Background(), `exit true ? "a" : false;`)
	require.Equal(t, errors.E2012, errorCode(t, err))

	r := &recorder{}
	value, err := Eval(context.Background(),
		"bool a = false;\nbool b = true;\nexit a ? trace(1) : b ? trace(2) : trace(3);",
		WithBindings(r.bindings()...))
	require.Nil(t, err)
	require.Equal(t, 2.0, value)
	require.Equal(t, []string{"trace 2"}, r.calls)
}

func TestExitType(t *testing.T) {
	_, err := Run(context.Background(), "exit 1;", WithExitType("string"))
	require.Equal(t, errors.E2012, errorCode(t, err))

	value, err := Eval(context.Background(), "exit \"ok\";", WithExitType("string"))
	require.Nil(t, err)
	require.Equal(t, "ok", value)

	_, err = Run(context.Background(), "exit 1;", WithExitType("int"))
	require.NotNil(t, err)
}

func TestInvalidBindingsAreAggregated(t *testing.T) {
	_, err := Run(context.Background(), "exit 0;", WithBindings(
		ExternalFunction{Name: "f", ReturnType: "void", ParamTypes: []string{"int"}},
		ExternalVariable{Name: "v"},
		ExternalVariable{Name: "f", Value: object.NewNumber(1)},
		ExternalVariable{Value: object.NewNumber(1)},
	))
	var merr *multierror.Error
	require.True(t, stderrors.As(err, &merr))
	require.Len(t, merr.Errors, 6)
	require.Contains(t, err.Error(), `duplicate binding "f"`)
}

func TestPartialDisassemblyOnCompileError(t *testing.T) {
	result, err := Run(context.Background(), "double a = 1;\nexit b;", WithDisassembly(true))
	require.Equal(t, errors.E2001, errorCode(t, err))
	require.Nil(t, result.Value)
	require.Contains(t, result.Disassembly, "-1-\tdouble a = 1;")
	require.Contains(t, result.Disassembly, "; building program")
}

func TestDisassemblyOnlyWhenRequested(t *testing.T) {
	result, err := Run(context.Background(), "exit 1;")
	require.Nil(t, err)
	require.Empty(t, result.Disassembly)
	require.NotEmpty(t, result.ID)
}

func TestRunIDIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	result, err := Run(context.Background(), "exit 1;", WithLogger(logger), WithOptimize(true))
	require.Nil(t, err)
	require.Contains(t, buf.String(), `"run":"`+result.ID+`"`)
	require.Contains(t, buf.String(), "optimized program")
}

func TestInstructionLimit(t *testing.T) {
	_, err := Run(context.Background(), "while (true) ;", WithInstructionLimit(100))
	require.Equal(t, errors.E3008, errorCode(t, err))
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, "while (true) ;", WithContextCheckInterval(1))
	require.Equal(t, errors.E3009, errorCode(t, err))
	require.True(t, stderrors.Is(err, context.Canceled))
}

func TestConcurrentExecution(t *testing.T) {
	template, err := NewVariable("input", 0)
	require.Nil(t, err)
	program, err := Compile("exit input * input;", WithBindings(template))
	require.Nil(t, err)

	results := make([]any, 8)
	errs := make([]error, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input, err := NewVariable("input", i)
			if err != nil {
				errs[i] = err
				return
			}
			value, err := Execute(context.Background(), program, WithBindings(input))
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = value.Interface()
		}(i)
	}
	wg.Wait()
	for i := range results {
		require.Nil(t, errs[i])
		require.Equal(t, float64(i*i), results[i])
	}
}

func TestRuntimeErrorReportsFailingLine(t *testing.T) {
	_, err := Run(context.Background(), "bool b;\nloop { } while (b);\nexit 1;")
	var runtimeErr *errors.RuntimeError
	require.True(t, stderrors.As(err, &runtimeErr))
	require.Equal(t, 2, runtimeErr.Line)
	require.Contains(t, err.Error(), "line 2")
}

func TestJoinBindingConcatenates(t *testing.T) {
	r := &recorder{}
	value, err := Eval(context.Background(), `exit join("c", 1);`, WithBindings(r.bindings()...))
	require.Nil(t, err)
	require.Equal(t, "c1", value)
	require.Equal(t, []string{`join "c" 1`}, r.calls)
}

func TestInitializerShadowsAfterDeclaration(t *testing.T) {
	value, err := Eval(context.Background(), "double x = 1;\n{ double x = x + 1; exit x; }")
	require.Nil(t, err)
	require.Equal(t, 2.0, value)
}
