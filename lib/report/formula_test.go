package report

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func evalFormula(t *testing.T, input string, refs map[int]string) decimal.Decimal {
	t.Helper()
	f, err := ParseFormula(input)
	if err != nil {
		t.Fatalf("ParseFormula(%q) returned unexpected error: %v", input, err)
	}
	got, err := f.Eval(func(ref int) (decimal.Decimal, error) {
		return decimal.RequireFromString(refs[ref]), nil
	})
	if err != nil {
		t.Fatalf("Eval(%q) returned unexpected error: %v", input, err)
	}
	return got
}

func TestFormulaEval(t *testing.T) {
	refs := map[int]string{1: "100", 2: "30", 3: "-2"}
	var tests = []struct {
		input string
		want  string
	}{
		{input: "1 + 2", want: "3"},
		{input: "2 * 3 + 4", want: "10"},
		{input: "2 + 3 * 4", want: "14"},
		{input: "(2 + 3) * 4", want: "20"},
		{input: "10 / 4", want: "2.5"},
		{input: "-5 + 2", want: "-3"},
		{input: "50%", want: "0.5"},
		{input: "[1] - [2]", want: "70"},
		{input: "[1] * [3]", want: "-200"},
		{input: "([1] + [2]) / 2", want: "65"},
		{input: "[1] * 10%", want: "10"},
		{input: "-[3]", want: "2"},
		// Division by zero yields zero rather than failing the report.
		{input: "[1] / 0", want: "0"},
		{input: "[1] / ([2] - [2])", want: "0"},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got := evalFormula(t, test.input, refs)
			if !got.Equal(decimal.RequireFromString(test.want)) {
				t.Errorf("want %s, got %s", test.want, got)
			}
		})
	}
}

func TestFormulaParseErrors(t *testing.T) {
	var tests = []struct {
		input string
		want  string
	}{
		{input: "", want: "unexpected end of formula"},
		{input: "1 +", want: "unexpected end of formula"},
		{input: "(1 + 2", want: "missing closing parenthesis"},
		{input: "[1", want: "missing closing bracket"},
		{input: "[x]", want: "invalid reference"},
		{input: "1 2", want: "unexpected"},
		{input: "* 2", want: "unexpected"},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, err := ParseFormula(test.input)
			if err == nil {
				t.Fatal("ParseFormula() succeeded, want error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("want error containing %q, got %q", test.want, err.Error())
			}
		})
	}
}

func TestFormulaRefs(t *testing.T) {
	f, err := ParseFormula("([1] + [2]) * [1] - 3")
	if err != nil {
		t.Fatalf("ParseFormula() returned unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 1}, f.Refs()); diff != "" {
		t.Errorf("Refs() mismatch (-want +got):\n%s", diff)
	}
}
