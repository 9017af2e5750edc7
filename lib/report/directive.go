// Package report implements the report definition language: a parser
// for the line-oriented directive grammar, an evaluator which turns
// directives into rows of per-period values, and a renderer which
// lays the rows out as a table.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gnucash-go/greport/lib/common/date"
	"github.com/gnucash-go/greport/lib/gnucash"
)

// Directive is one parsed line of a report definition.
type Directive interface {
	// Line returns the source line number.
	Line() int
	// Ref returns the registered reference index, or 0.
	Ref() int
}

type directive struct {
	line int
	ref  int
}

func (d directive) Line() int {
	return d.line
}

func (d directive) Ref() int {
	return d.ref
}

// Section starts a new report section.
type Section struct {
	directive
	Title string
}

// Title emits a header row with the period labels.
type Title struct {
	directive
	Text string
}

// Operation is an elementwise arithmetic operation applied to an
// account row after aggregation. A percentage operand is stored
// already divided by 100.
type Operation struct {
	Op      byte
	Operand decimal.Decimal
}

// Account is a data row sourced from the ledger.
type Account struct {
	directive
	GUID      string
	Label     string
	Op        *Operation
	Recursive bool

	// set by a FILTER directive following this account
	FilterGUID string
	// set by a REGEX directive following this account
	Include, Exclude []string
}

// Placeholder is a data row with literal values.
type Placeholder struct {
	directive
	Label  string
	Values []decimal.Decimal
}

// Sum is the elementwise sum of the rows since the last boundary.
type Sum struct {
	directive
	Label string
}

// Calc is a data row computed from a formula over row references.
type Calc struct {
	directive
	Label   string
	Formula string
}

// Blank is an empty spacer row.
type Blank struct {
	directive
}

// Config is the resolved configuration block of a report definition.
type Config struct {
	Start        time.Time
	End          time.Time
	Interval     date.Interval
	Names        gnucash.NameFormat
	LedgerPath   string
	OutputPath   string
	InvertIncome bool
}

// Definition is a compiled report definition: the resolved
// configuration and the ordered directive list.
type Definition struct {
	Config     Config
	Directives []Directive

	// refs maps each registered reference index to the line where it
	// was declared.
	refs map[int]int
}
