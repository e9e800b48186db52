package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Lexical errors
//   - E2xxx: Compile errors
//   - E3xxx: Runtime errors
//   - E4xxx: Link errors
type ErrorCode string

const (
	// Lexical errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unknown symbol
	E1002 ErrorCode = "E1002" // Unterminated string literal
	E1008 ErrorCode = "E1008" // Invalid number literal
	E1010 ErrorCode = "E1010" // Invalid escape sequence
	E1011 ErrorCode = "E1011" // Incomplete operator
	E1012 ErrorCode = "E1012" // Unterminated block comment

	// Compile errors (E2xxx)
	E2001 ErrorCode = "E2001" // Undefined variable
	E2002 ErrorCode = "E2002" // Undefined function
	E2003 ErrorCode = "E2003" // Invalid break statement
	E2005 ErrorCode = "E2005" // Invalid return statement
	E2006 ErrorCode = "E2006" // Duplicate declaration
	E2011 ErrorCode = "E2011" // Unexpected token
	E2012 ErrorCode = "E2012" // Type mismatch
	E2013 ErrorCode = "E2013" // Not a function
	E2014 ErrorCode = "E2014" // Wrong argument count
	E2015 ErrorCode = "E2015" // Invalid assignment target
	E2016 ErrorCode = "E2016" // Unclosed block

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Type error
	E3005 ErrorCode = "E3005" // Null operand
	E3006 ErrorCode = "E3006" // Call stack overflow
	E3007 ErrorCode = "E3007" // Invalid operation
	E3008 ErrorCode = "E3008" // Instruction limit exceeded
	E3009 ErrorCode = "E3009" // Execution cancelled
	E3010 ErrorCode = "E3010" // External function failed
	E3011 ErrorCode = "E3011" // Assignment to constant
	E3012 ErrorCode = "E3012" // Stack underflow

	// Link errors (E4xxx)
	E4001 ErrorCode = "E4001" // Duplicate label
	E4002 ErrorCode = "E4002" // Undefined label
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unknown symbol",
	E1002: "unterminated string literal",
	E1008: "invalid number literal",
	E1010: "invalid escape sequence",
	E1011: "incomplete operator",
	E1012: "unterminated block comment",

	E2001: "undefined variable",
	E2002: "undefined function",
	E2003: "invalid break statement",
	E2005: "invalid return statement",
	E2006: "duplicate declaration",
	E2011: "unexpected token",
	E2012: "type mismatch",
	E2013: "not a function",
	E2014: "wrong argument count",
	E2015: "invalid assignment target",
	E2016: "unclosed block",

	E3001: "type error",
	E3005: "null operand",
	E3006: "call stack overflow",
	E3007: "invalid operation",
	E3008: "instruction limit exceeded",
	E3009: "execution cancelled",
	E3010: "external function failed",
	E3011: "assignment to constant",
	E3012: "stack underflow",

	E4001: "duplicate label",
	E4002: "undefined label",
}

// Description returns a short description of the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the category of the error code.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "lexical"
	case '2':
		return "compile"
	case '3':
		return "runtime"
	case '4':
		return "link"
	default:
		return "unknown"
	}
}
