package report

import "fmt"

// SyntaxError is a malformed directive or configuration line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// PlacementError is a FILTER or REGEX directive which does not
// immediately follow an ACCOUNT or ACCOUNTS directive.
type PlacementError struct {
	Line      int
	Directive string
}

func (e PlacementError) Error() string {
	return fmt.Sprintf("line %d: %s must immediately follow ACCOUNT or ACCOUNTS", e.Line, e.Directive)
}

// ReferenceError is an undefined or forward [n] reference.
type ReferenceError struct {
	Line int
	Ref  int
}

func (e ReferenceError) Error() string {
	return fmt.Sprintf("line %d: reference [%d] is not defined", e.Line, e.Ref)
}

// CountMismatchError is a PLACEHOLDER whose value count does not
// match the number of report periods.
type CountMismatchError struct {
	Line int
	Got  int
	Want int
}

func (e CountMismatchError) Error() string {
	return fmt.Sprintf("line %d: PLACEHOLDER has %d values but the report has %d periods", e.Line, e.Got, e.Want)
}

// ConfigError is an invalid configuration value.
type ConfigError struct {
	Line int
	Msg  string
}

func (e ConfigError) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}
