// Copyright 2025 The greport authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/gnucash-go/greport/lib/common/date"
	"github.com/gnucash-go/greport/lib/gnucash"
)

// Context carries everything the evaluator needs besides the
// definition itself.
type Context struct {
	Ledger    *gnucash.Ledger
	Index     *gnucash.Index
	Partition date.Partition
	Config    Config

	// Debug, if non-nil, receives a line per evaluated data row.
	Debug io.Writer
}

// RowKind discriminates the rows the evaluator produces.
type RowKind int

const (
	SectionRow RowKind = iota
	TitleRow
	DataRow
	BlankRow
)

// Row is one evaluated report row. Values is nil except for DataRow.
type Row struct {
	Kind   RowKind
	Label  string
	Values []decimal.Decimal
}

// Total returns the sum over the row's periods.
func (r *Row) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range r.Values {
		total = total.Add(v)
	}
	return total
}

// Average returns the mean over the row's periods, rounded to two
// decimal places.
func (r *Row) Average() decimal.Decimal {
	if len(r.Values) == 0 {
		return decimal.Zero
	}
	return r.Total().Div(decimal.New(int64(len(r.Values)), 0)).Round(2)
}

// Evaluate turns a definition into report rows, one value per period
// for every data row.
func Evaluate(ctx *Context, def *Definition) ([]*Row, error) {
	e := evaluator{
		ctx:        ctx,
		periods:    ctx.Partition.Periods(),
		registered: make(map[int][]decimal.Decimal),
	}
	for _, dir := range def.Directives {
		if err := e.process(dir); err != nil {
			return nil, err
		}
	}
	return e.rows, nil
}

type evaluator struct {
	ctx     *Context
	periods []date.Period
	rows    []*Row

	// per-period vectors of referenced rows, by reference index
	registered map[int][]decimal.Decimal

	// vectors accumulated since the last SUM group boundary
	group [][]decimal.Decimal
}

func (e *evaluator) process(dir Directive) error {
	switch d := dir.(type) {
	case *Section:
		e.rows = append(e.rows, &Row{Kind: SectionRow, Label: d.Title})
	case *Title:
		e.rows = append(e.rows, &Row{Kind: TitleRow, Label: d.Text})
		e.group = nil
	case *Blank:
		e.rows = append(e.rows, &Row{Kind: BlankRow})
	case *Account:
		values, err := e.evalAccount(d)
		if err != nil {
			return err
		}
		e.emit(d, e.label(d), values)
	case *Placeholder:
		if len(d.Values) != len(e.periods) {
			return CountMismatchError{Line: d.Line(), Got: len(d.Values), Want: len(e.periods)}
		}
		e.emit(d, d.Label, d.Values)
	case *Sum:
		values := make([]decimal.Decimal, len(e.periods))
		for _, vec := range e.group {
			for i, v := range vec {
				values[i] = values[i].Add(v)
			}
		}
		e.emit(d, d.Label, values)
		e.group = nil
	case *Calc:
		values, err := e.evalCalc(d)
		if err != nil {
			return err
		}
		e.emit(d, d.Label, values)
		e.group = nil
	default:
		return fmt.Errorf("line %d: unhandled directive %T", dir.Line(), dir)
	}
	return nil
}

// emit appends a data row, registers its vector under the directive's
// reference and adds it to the running SUM group.
func (e *evaluator) emit(dir Directive, label string, values []decimal.Decimal) {
	if dir.Ref() != 0 {
		e.registered[dir.Ref()] = values
	}
	e.group = append(e.group, values)
	e.rows = append(e.rows, &Row{Kind: DataRow, Label: label, Values: values})
	if e.ctx.Debug != nil {
		fmt.Fprintf(e.ctx.Debug, "line %d: %s = %v\n", dir.Line(), label, values)
	}
}

func (e *evaluator) evalAccount(d *Account) ([]decimal.Decimal, error) {
	acct, ok := e.ctx.Ledger.Account(d.GUID)
	if !ok {
		return nil, gnucash.NotFoundError{GUID: d.GUID}
	}
	if d.FilterGUID != "" {
		if _, ok := e.ctx.Ledger.Account(d.FilterGUID); !ok {
			return nil, gnucash.NotFoundError{GUID: d.FilterGUID}
		}
	}
	pred, err := gnucash.CompilePredicate(d.Include, d.Exclude)
	if err != nil {
		return nil, SyntaxError{Line: d.Line(), Msg: err.Error()}
	}
	if e.ctx.Debug != nil && pred != nil {
		fmt.Fprintf(e.ctx.Debug, "line %d: text filter: %s\n", d.Line(), pred)
	}
	invert := e.ctx.Config.InvertIncome && acct.IsIE()
	values := make([]decimal.Decimal, len(e.periods))
	for i, period := range e.periods {
		var v decimal.Decimal
		if d.Recursive {
			v, err = e.ctx.Index.Sum(d.GUID, period, d.FilterGUID, pred)
			if err != nil {
				return nil, err
			}
		} else {
			v = e.ctx.Index.Lookup(d.GUID, period, d.FilterGUID, pred)
		}
		if invert {
			v = v.Neg()
		}
		if d.Op != nil {
			v = applyOperation(d.Op, v)
		}
		values[i] = v.Round(2)
	}
	return values, nil
}

func applyOperation(op *Operation, v decimal.Decimal) decimal.Decimal {
	switch op.Op {
	case '*', '%':
		return v.Mul(op.Operand)
	case '/':
		if op.Operand.IsZero() {
			return decimal.Zero
		}
		return v.Div(op.Operand)
	case '+':
		return v.Add(op.Operand)
	case '-':
		return v.Sub(op.Operand)
	}
	return v
}

func (e *evaluator) evalCalc(d *Calc) ([]decimal.Decimal, error) {
	f, err := ParseFormula(d.Formula)
	if err != nil {
		return nil, SyntaxError{Line: d.Line(), Msg: err.Error()}
	}
	values := make([]decimal.Decimal, len(e.periods))
	for i := range e.periods {
		v, err := f.Eval(func(ref int) (decimal.Decimal, error) {
			vec, ok := e.registered[ref]
			if !ok {
				return decimal.Zero, ReferenceError{Line: d.Line(), Ref: ref}
			}
			return vec[i], nil
		})
		if err != nil {
			return nil, err
		}
		values[i] = v.Round(2)
	}
	return values, nil
}

// label returns the row label for an account directive, falling back
// to the ledger display name.
func (e *evaluator) label(d *Account) string {
	if d.Label != "" {
		return d.Label
	}
	return e.ctx.Ledger.DisplayName(d.GUID, e.ctx.Config.Names)
}
