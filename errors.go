package jsontemplate

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling. Every typed error below
// matches exactly one of them with [errors.Is].
var (
	ErrCompile           = errors.New("compile error")
	ErrConfiguration     = errors.New("configuration error")
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrFormatterNotFound = errors.New("formatter not found")
	ErrPredicateNotFound = errors.New("predicate not found")
	ErrEvaluation        = errors.New("evaluation error")
)

// Pos locates a directive in the template source.
type Pos struct {
	Offset int // byte offset of the opening delimiter
	Line   int // 1-based
	Column int // 1-based, in bytes
}

func (p Pos) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// CompileError reports malformed template syntax. No template is produced
// when compilation fails.
type CompileError struct {
	Pos     Pos
	Message string
}

func (e *CompileError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("compile error at %s: %s", e.Pos, e.Message)
	}
	return "compile error: " + e.Message
}

func (e *CompileError) Is(target error) bool { return target == ErrCompile }

// ConfigurationError reports invalid [Options].
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// UndefinedVariableError is returned when a substitution names a variable
// that no scope defines and no placeholder is configured.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return e.Name + " is not defined"
}

func (e *UndefinedVariableError) Is(target error) bool { return target == ErrUndefinedVariable }

// FormatterNotFoundError is returned when no registry resolves a formatter
// name.
type FormatterNotFoundError struct {
	Name string
}

func (e *FormatterNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrFormatterNotFound, e.Name)
}

func (e *FormatterNotFoundError) Is(target error) bool { return target == ErrFormatterNotFound }

// PredicateNotFoundError is returned when no registry resolves a predicate
// name used with an argument list.
type PredicateNotFoundError struct {
	Name string
}

func (e *PredicateNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrPredicateNotFound, e.Name)
}

func (e *PredicateNotFoundError) Is(target error) bool { return target == ErrPredicateNotFound }

// EvaluationError reports a failure while expanding: a formatter or
// predicate that returned an error, or a value of the wrong shape.
type EvaluationError struct {
	Message string
	Err     error
}

func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrEvaluation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrEvaluation, e.Message)
}

func (e *EvaluationError) Is(target error) bool { return target == ErrEvaluation }

func (e *EvaluationError) Unwrap() error { return e.Err }

func compileErrorf(pos Pos, format string, args ...any) error {
	return &CompileError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
