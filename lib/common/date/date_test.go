// Copyright 2025 The greport authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package date

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseExpr(t *testing.T) {
	today := Date(2025, 8, 23)
	var tests = []struct {
		expr    string
		want    time.Time
		wantErr bool
	}{
		{expr: "TODAY", want: Date(2025, 8, 23)},
		{expr: "today", want: Date(2025, 8, 23)},
		{expr: "BY", want: Date(2025, 1, 1)},
		{expr: "BQ", want: Date(2025, 7, 1)},
		{expr: "BM", want: Date(2025, 8, 1)},
		{expr: "EY", want: Date(2025, 12, 31)},
		{expr: "EQ", want: Date(2025, 9, 30)},
		{expr: "EM", want: Date(2025, 8, 31)},
		{expr: "BPY", want: Date(2024, 1, 1)},
		{expr: "BPQ", want: Date(2025, 4, 1)},
		{expr: "BPM", want: Date(2025, 7, 1)},
		{expr: "EPY", want: Date(2024, 12, 31)},
		{expr: "EPQ", want: Date(2025, 6, 30)},
		{expr: "EPM", want: Date(2025, 7, 31)},
		{expr: "2025-02-28", want: Date(2025, 2, 28)},
		{expr: " 2025-02-28 ", want: Date(2025, 2, 28)},
		{expr: "2025-2-28", wantErr: true},
		{expr: "yesterday", wantErr: true},
		{expr: "", wantErr: true},
	}
	for _, test := range tests {
		got, err := ParseExpr(test.expr, today)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseExpr(%q): error %v, want error presence %t", test.expr, err, test.wantErr)
			continue
		}
		if err == nil && !got.Equal(test.want) {
			t.Errorf("ParseExpr(%q): got %v, want %v", test.expr, got, test.want)
		}
	}
}

func TestParseExprPreviousAcrossYear(t *testing.T) {
	today := Date(2025, 1, 15)
	var tests = []struct {
		expr string
		want time.Time
	}{
		{expr: "BPQ", want: Date(2024, 10, 1)},
		{expr: "EPQ", want: Date(2024, 12, 31)},
		{expr: "BPM", want: Date(2024, 12, 1)},
		{expr: "EPM", want: Date(2024, 12, 31)},
	}
	for _, test := range tests {
		got, err := ParseExpr(test.expr, today)
		if err != nil {
			t.Fatalf("ParseExpr(%q): unexpected error %v", test.expr, err)
		}
		if !got.Equal(test.want) {
			t.Errorf("ParseExpr(%q): got %v, want %v", test.expr, got, test.want)
		}
	}
}

func TestNewPartition(t *testing.T) {
	var tests = []struct {
		desc     string
		from, to time.Time
		interval Interval
		want     []Period
		wantErr  bool
	}{
		{
			desc:     "two full months",
			from:     Date(2025, 1, 1),
			to:       Date(2025, 2, 28),
			interval: Monthly,
			want: []Period{
				{Start: Date(2025, 1, 1), End: Date(2025, 1, 31)},
				{Start: Date(2025, 2, 1), End: Date(2025, 2, 28)},
			},
		},
		{
			desc:     "clipped first and last month",
			from:     Date(2025, 1, 15),
			to:       Date(2025, 3, 10),
			interval: Monthly,
			want: []Period{
				{Start: Date(2025, 1, 15), End: Date(2025, 1, 31)},
				{Start: Date(2025, 2, 1), End: Date(2025, 2, 28)},
				{Start: Date(2025, 3, 1), End: Date(2025, 3, 10)},
			},
		},
		{
			desc:     "quarters truncated at end date",
			from:     Date(2025, 1, 1),
			to:       Date(2025, 5, 31),
			interval: Quarterly,
			want: []Period{
				{Start: Date(2025, 1, 1), End: Date(2025, 3, 31)},
				{Start: Date(2025, 4, 1), End: Date(2025, 5, 31)},
			},
		},
		{
			desc:     "single day",
			from:     Date(2025, 6, 15),
			to:       Date(2025, 6, 15),
			interval: Monthly,
			want: []Period{
				{Start: Date(2025, 6, 15), End: Date(2025, 6, 15)},
			},
		},
		{
			desc:     "start after end",
			from:     Date(2025, 2, 1),
			to:       Date(2025, 1, 1),
			interval: Monthly,
			wantErr:  true,
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got, err := NewPartition(test.from, test.to, test.interval)
			if (err != nil) != test.wantErr {
				t.Fatalf("NewPartition(): error %v, want error presence %t", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(test.want, got.Periods()); diff != "" {
				t.Errorf("NewPartition() returned unexpected diff (-want/+got)\n%s\n", diff)
			}
		})
	}
}

func TestPartitionLabels(t *testing.T) {
	var tests = []struct {
		from, to time.Time
		interval Interval
		want     []string
	}{
		{
			from:     Date(2025, 1, 1),
			to:       Date(2025, 3, 31),
			interval: Monthly,
			want:     []string{"Jan 2025", "Feb 2025", "Mar 2025"},
		},
		{
			from:     Date(2024, 10, 1),
			to:       Date(2025, 6, 30),
			interval: Quarterly,
			want:     []string{"4Q 2024", "1Q 2025", "2Q 2025"},
		},
	}
	for _, test := range tests {
		part, err := NewPartition(test.from, test.to, test.interval)
		if err != nil {
			t.Fatalf("NewPartition(): unexpected error %v", err)
		}
		if diff := cmp.Diff(test.want, part.Labels()); diff != "" {
			t.Errorf("Labels() returned unexpected diff (-want/+got)\n%s\n", diff)
		}
	}
}
