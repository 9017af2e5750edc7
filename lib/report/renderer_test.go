package report

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gnucash-go/greport/lib/common/table"
)

func renderCSV(t *testing.T, labels []string, rows []*Row) string {
	t.Helper()
	rn := Renderer{Labels: labels}
	var b strings.Builder
	renderer := table.CSVRenderer{Round: 2}
	if err := renderer.Render(rn.Render(rows), &b); err != nil {
		t.Fatalf("Render() returned unexpected error: %v", err)
	}
	return b.String()
}

func TestRenderCSV(t *testing.T) {
	labels := []string{"Jan 2025", "Feb 2025"}
	rows := []*Row{
		{Kind: SectionRow, Label: "Income Statement"},
		{Kind: TitleRow, Label: "Overview"},
		{Kind: DataRow, Label: "Bank", Values: values("100", "20")},
		{Kind: BlankRow},
		{Kind: DataRow, Label: "Budget", Values: values("1.5", "-2")},
	}
	got := renderCSV(t, labels, rows)
	want := strings.Join([]string{
		"Income Statement",
		"Overview,Jan 2025,Feb 2025,,TOTAL,AVERAGE",
		"Bank,100.00,20.00,,120.00,60.00",
		"",
		"Budget,1.50,-2.00,,-0.50,-0.25",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSpacing(t *testing.T) {
	labels := []string{"2025"}
	rows := []*Row{
		{Kind: SectionRow, Label: "First"},
		{Kind: TitleRow, Label: "T1"},
		{Kind: DataRow, Label: "a", Values: values("1")},
		{Kind: SectionRow, Label: "Second"},
		{Kind: TitleRow, Label: "T2"},
		{Kind: DataRow, Label: "b", Values: values("2")},
		{Kind: TitleRow, Label: "T3"},
	}
	got := renderCSV(t, labels, rows)
	want := strings.Join([]string{
		"First", // no blank line above the first section
		"T1,2025,,TOTAL,AVERAGE", // no blank line between a section and its title
		"a,1.00,,1.00,1.00",
		"",
		"Second",
		"T2,2025,,TOTAL,AVERAGE",
		"b,2.00,,2.00,2.00",
		"",
		"T3,2025,,TOTAL,AVERAGE",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}
