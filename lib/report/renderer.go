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
	"github.com/gnucash-go/greport/lib/common/table"
)

// Renderer lays out evaluated rows as a table with one column per
// period plus TOTAL and AVERAGE columns.
type Renderer struct {
	// Labels are the period column headers.
	Labels []string
}

// Render builds the table. A single blank row precedes every section
// and every title, except at the top of the report and for a title
// directly under its section heading.
func (rn *Renderer) Render(rows []*Row) *table.Table {
	n := len(rn.Labels)
	t := table.New(1, n, 1, 2)
	for i, row := range rows {
		switch row.Kind {
		case SectionRow:
			if i > 0 {
				t.AddEmptyRow()
			}
			t.AddRow().AddText(row.Label, table.Left).FillEmpty()
		case TitleRow:
			if i > 0 && rows[i-1].Kind != SectionRow {
				t.AddEmptyRow()
			}
			tr := t.AddRow().AddText(row.Label, table.Left)
			for _, label := range rn.Labels {
				tr.AddText(label, table.Center)
			}
			tr.AddEmpty().
				AddText("TOTAL", table.Center).
				AddText("AVERAGE", table.Center)
		case DataRow:
			tr := t.AddRow().AddText(row.Label, table.Left)
			for _, v := range row.Values {
				tr.AddNumber(v)
			}
			tr.AddEmpty().
				AddNumber(row.Total()).
				AddNumber(row.Average())
		case BlankRow:
			t.AddEmptyRow()
		}
	}
	return t
}
