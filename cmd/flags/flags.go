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

// Package flags provides flag types shared by the commands.
package flags

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gnucash-go/greport/lib/common/date"
)

// DateFlag manages a flag holding a date expression. Besides literal
// dates it accepts the symbolic expressions of the report definition
// language, such as BY or EPM.
type DateFlag struct {
	expr string
}

var _ pflag.Value = (*DateFlag)(nil)

func (df DateFlag) String() string {
	return df.expr
}

// Set implements pflag.Value.
func (df *DateFlag) Set(v string) error {
	if _, err := date.ParseExpr(v, time.Now()); err != nil {
		return err
	}
	df.expr = v
	return nil
}

// Type implements pflag.Value.
func (df DateFlag) Type() string {
	return "YYYY-MM-DD"
}

// ValueOr resolves the expression against today, or returns the
// fallback if the flag is unset.
func (df DateFlag) ValueOr(today, fallback time.Time) (time.Time, error) {
	if df.expr == "" {
		return fallback, nil
	}
	return date.ParseExpr(df.expr, today)
}

// IntervalFlags manages a pair of mutually exclusive flags selecting
// the report interval.
type IntervalFlags struct {
	flags [2]bool
}

// Setup configures the flags.
func (pf *IntervalFlags) Setup(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&pf.flags[0], "months", false, "group by months")
	cmd.Flags().BoolVar(&pf.flags[1], "quarters", false, "group by quarters")
	cmd.MarkFlagsMutuallyExclusive("months", "quarters")
}

// ValueOr returns the selected interval, or the fallback if neither
// flag is set.
func (pf IntervalFlags) ValueOr(fallback date.Interval) date.Interval {
	switch {
	case pf.flags[0]:
		return date.Monthly
	case pf.flags[1]:
		return date.Quarterly
	}
	return fallback
}
