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
	"fmt"
	"strings"
	"time"
)

// Interval is a reporting interval.
type Interval int

const (
	// Monthly is a monthly interval.
	Monthly Interval = iota
	// Quarterly is a quarterly interval.
	Quarterly
	// Yearly is a yearly interval.
	Yearly
)

func (p Interval) String() string {
	switch p {
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	}
	return ""
}

// ParseInterval parses an interval from its one-letter abbreviation.
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m":
		return Monthly, nil
	case "q":
		return Quarterly, nil
	}
	return Monthly, fmt.Errorf("invalid period %q, want 'm' or 'q'", s)
}

// Date creates a new date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOf returns the first date in the given interval which
// contains the receiver.
func StartOf(d time.Time, p Interval) time.Time {
	switch p {
	case Monthly:
		return Date(d.Year(), d.Month(), 1)
	case Quarterly:
		return Date(d.Year(), ((d.Month()-1)/3*3)+1, 1)
	case Yearly:
		return Date(d.Year(), 1, 1)
	}
	return d
}

// EndOf returns the last date in the given interval that contains
// the receiver.
func EndOf(d time.Time, p Interval) time.Time {
	switch p {
	case Monthly:
		return StartOf(d, Monthly).AddDate(0, 1, -1)
	case Quarterly:
		return StartOf(d, Quarterly).AddDate(0, 3, -1)
	case Yearly:
		return Date(d.Year(), 12, 31)
	}
	return d
}

// Today returns today's date.
func Today() time.Time {
	now := time.Now().Local()
	return Date(now.Year(), now.Month(), now.Day())
}

// Period is an inclusive date range.
type Period struct {
	Start, End time.Time
}

// Clip clips the period to the bounds of p2.
func (p Period) Clip(p2 Period) Period {
	if p2.Start.After(p.Start) {
		p.Start = p2.Start
	}
	if p2.End.Before(p.End) {
		p.End = p2.End
	}
	return p
}

// Contains reports whether t lies within the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Label formats the period for display, e.g. "Jan 2025" or "1Q 2025".
func (p Period) Label(i Interval) string {
	switch i {
	case Quarterly:
		return fmt.Sprintf("%dQ %d", (int(p.Start.Month())-1)/3+1, p.Start.Year())
	default:
		return p.Start.Format("Jan 2006")
	}
}

// Partition is an ordered sequence of contiguous, non-overlapping
// periods covering [from, to].
type Partition struct {
	periods  []Period
	interval Interval
}

// NewPartition creates a partition of [from, to] with the given interval.
// The first and last periods are clipped to the requested range.
func NewPartition(from, to time.Time, interval Interval) (Partition, error) {
	if from.After(to) {
		return Partition{}, fmt.Errorf("start date %s is after end date %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	var periods []Period
	bounds := Period{Start: from, End: to}
	for t := from; !t.After(to); t = EndOf(t, interval).AddDate(0, 0, 1) {
		p := Period{Start: StartOf(t, interval), End: EndOf(t, interval)}
		periods = append(periods, p.Clip(bounds))
	}
	return Partition{periods: periods, interval: interval}, nil
}

// Periods returns the periods of this partition.
func (part Partition) Periods() []Period {
	return part.periods
}

// Size returns the number of periods.
func (part Partition) Size() int {
	return len(part.periods)
}

// Interval returns the interval of this partition.
func (part Partition) Interval() Interval {
	return part.interval
}

// Labels returns the display labels of all periods.
func (part Partition) Labels() []string {
	res := make([]string, 0, len(part.periods))
	for _, p := range part.periods {
		res = append(res, p.Label(part.interval))
	}
	return res
}

// ParseExpr parses a date expression: either an absolute YYYY-MM-DD date
// or one of the symbolic abbreviations, resolved against today:
//
//	TODAY            the invocation date
//	BY BQ BM         beginning of the current year / quarter / month
//	EY EQ EM         end of the current year / quarter / month
//	BPY BPQ BPM      beginning of the previous year / quarter / month
//	EPY EPQ EPM      end of the previous year / quarter / month
//
// Abbreviations are case-insensitive.
func ParseExpr(s string, today time.Time) (time.Time, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TODAY":
		return today, nil
	case "BY":
		return StartOf(today, Yearly), nil
	case "BQ":
		return StartOf(today, Quarterly), nil
	case "BM":
		return StartOf(today, Monthly), nil
	case "EY":
		return EndOf(today, Yearly), nil
	case "EQ":
		return EndOf(today, Quarterly), nil
	case "EM":
		return EndOf(today, Monthly), nil
	case "BPY":
		return StartOf(StartOf(today, Yearly).AddDate(0, 0, -1), Yearly), nil
	case "BPQ":
		return StartOf(StartOf(today, Quarterly).AddDate(0, 0, -1), Quarterly), nil
	case "BPM":
		return StartOf(StartOf(today, Monthly).AddDate(0, 0, -1), Monthly), nil
	case "EPY":
		return StartOf(today, Yearly).AddDate(0, 0, -1), nil
	case "EPQ":
		return StartOf(today, Quarterly).AddDate(0, 0, -1), nil
	case "EPM":
		return StartOf(today, Monthly).AddDate(0, 0, -1), nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date expression %q: want YYYY-MM-DD or an abbreviation (TODAY, BY, EY, BPM, ...)", s)
	}
	return Date(t.Year(), t.Month(), t.Day()), nil
}
