package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Formula is a compiled arithmetic expression over row references.
//
// The grammar:
//
//	expr    = term { ("+" | "-") term }
//	term    = factor { ("*" | "/") factor }
//	factor  = [ "-" ] primary
//	primary = number [ "%" ] | "[" index "]" | "(" expr ")"
type Formula struct {
	root node
}

// ParseFormula compiles a formula. References are not resolved here.
func ParseFormula(s string) (*Formula, error) {
	sc := &scanner{src: s}
	root, err := sc.expr()
	if err != nil {
		return nil, err
	}
	sc.skipSpace()
	if sc.pos < len(sc.src) {
		return nil, fmt.Errorf("unexpected %q in formula", sc.src[sc.pos:])
	}
	return &Formula{root: root}, nil
}

// Eval computes the formula value, resolving each [n] reference
// through the given function. Division by zero yields zero.
func (f *Formula) Eval(resolve func(ref int) (decimal.Decimal, error)) (decimal.Decimal, error) {
	return f.root.eval(resolve)
}

// Refs returns the reference indices used by the formula, in order of
// appearance.
func (f *Formula) Refs() []int {
	var refs []int
	walk(f.root, func(n node) {
		if r, ok := n.(refNode); ok {
			refs = append(refs, r.index)
		}
	})
	return refs
}

type node interface {
	eval(resolve func(int) (decimal.Decimal, error)) (decimal.Decimal, error)
}

func walk(n node, fn func(node)) {
	fn(n)
	switch n := n.(type) {
	case binaryNode:
		walk(n.left, fn)
		walk(n.right, fn)
	case negNode:
		walk(n.operand, fn)
	}
}

type literalNode struct {
	value decimal.Decimal
}

func (n literalNode) eval(func(int) (decimal.Decimal, error)) (decimal.Decimal, error) {
	return n.value, nil
}

type refNode struct {
	index int
}

func (n refNode) eval(resolve func(int) (decimal.Decimal, error)) (decimal.Decimal, error) {
	return resolve(n.index)
}

type negNode struct {
	operand node
}

func (n negNode) eval(resolve func(int) (decimal.Decimal, error)) (decimal.Decimal, error) {
	v, err := n.operand.eval(resolve)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Neg(), nil
}

type binaryNode struct {
	op          byte
	left, right node
}

func (n binaryNode) eval(resolve func(int) (decimal.Decimal, error)) (decimal.Decimal, error) {
	l, err := n.left.eval(resolve)
	if err != nil {
		return decimal.Zero, err
	}
	r, err := n.right.eval(resolve)
	if err != nil {
		return decimal.Zero, err
	}
	switch n.op {
	case '+':
		return l.Add(r), nil
	case '-':
		return l.Sub(r), nil
	case '*':
		return l.Mul(r), nil
	case '/':
		if r.IsZero() {
			return decimal.Zero, nil
		}
		return l.Div(r), nil
	}
	return decimal.Zero, fmt.Errorf("invalid operator %q", n.op)
}

type scanner struct {
	src string
	pos int
}

func (sc *scanner) expr() (node, error) {
	left, err := sc.term()
	if err != nil {
		return nil, err
	}
	for {
		sc.skipSpace()
		if op, ok := sc.peek(); !ok || (op != '+' && op != '-') {
			return left, nil
		} else {
			sc.pos++
			right, err := sc.term()
			if err != nil {
				return nil, err
			}
			left = binaryNode{op: op, left: left, right: right}
		}
	}
}

func (sc *scanner) term() (node, error) {
	left, err := sc.factor()
	if err != nil {
		return nil, err
	}
	for {
		sc.skipSpace()
		if op, ok := sc.peek(); !ok || (op != '*' && op != '/') {
			return left, nil
		} else {
			sc.pos++
			right, err := sc.factor()
			if err != nil {
				return nil, err
			}
			left = binaryNode{op: op, left: left, right: right}
		}
	}
}

func (sc *scanner) factor() (node, error) {
	sc.skipSpace()
	if ch, ok := sc.peek(); ok && ch == '-' {
		sc.pos++
		operand, err := sc.primary()
		if err != nil {
			return nil, err
		}
		return negNode{operand: operand}, nil
	}
	return sc.primary()
}

func (sc *scanner) primary() (node, error) {
	sc.skipSpace()
	ch, ok := sc.peek()
	switch {
	case !ok:
		return nil, fmt.Errorf("unexpected end of formula")
	case ch == '(':
		sc.pos++
		inner, err := sc.expr()
		if err != nil {
			return nil, err
		}
		sc.skipSpace()
		if ch, ok := sc.peek(); !ok || ch != ')' {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		sc.pos++
		return inner, nil
	case ch == '[':
		sc.pos++
		start := sc.pos
		for sc.pos < len(sc.src) && sc.src[sc.pos] != ']' {
			sc.pos++
		}
		if sc.pos == len(sc.src) {
			return nil, fmt.Errorf("missing closing bracket")
		}
		index, err := strconv.Atoi(strings.TrimSpace(sc.src[start:sc.pos]))
		if err != nil {
			return nil, fmt.Errorf("invalid reference [%s]", sc.src[start:sc.pos])
		}
		sc.pos++
		return refNode{index: index}, nil
	case ch == '.' || (ch >= '0' && ch <= '9'):
		start := sc.pos
		for sc.pos < len(sc.src) && (sc.src[sc.pos] == '.' || (sc.src[sc.pos] >= '0' && sc.src[sc.pos] <= '9')) {
			sc.pos++
		}
		value, err := decimal.NewFromString(sc.src[start:sc.pos])
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", sc.src[start:sc.pos])
		}
		if ch, ok := sc.peek(); ok && ch == '%' {
			sc.pos++
			value = value.Div(decimal.New(100, 0))
		}
		return literalNode{value: value}, nil
	}
	return nil, fmt.Errorf("unexpected %q in formula", sc.src[sc.pos:])
}

func (sc *scanner) peek() (byte, bool) {
	if sc.pos >= len(sc.src) {
		return 0, false
	}
	return sc.src[sc.pos], true
}

func (sc *scanner) skipSpace() {
	for sc.pos < len(sc.src) && (sc.src[sc.pos] == ' ' || sc.src[sc.pos] == '\t') {
		sc.pos++
	}
}
