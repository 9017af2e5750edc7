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

// Package report implements the report command.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/gnucash-go/greport/cmd/flags"
	"github.com/gnucash-go/greport/lib/common/date"
	"github.com/gnucash-go/greport/lib/common/table"
	"github.com/gnucash-go/greport/lib/gnucash"
	"github.com/gnucash-go/greport/lib/report"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {
	var r runner

	c := &cobra.Command{
		Use:   "report <definition> [<ledger>]",
		Short: "generate a report from a report definition",
		Long: `Evaluate a report definition against a GnuCash XML ledger and write
the result as CSV. The ledger file can be given as an argument or via the
GNUCASH_FILE key in the definition; an argument takes precedence.`,

		Args: cobra.RangeArgs(1, 2),
		Run:  r.run,
	}
	r.setupFlags(c)
	return c
}

type runner struct {
	from, to flags.DateFlag
	interval flags.IntervalFlags

	stdout  bool
	verbose bool
	text    bool
	color   bool
}

func (r *runner) setupFlags(c *cobra.Command) {
	c.Flags().Var(&r.from, "from", "override the start date")
	c.Flags().Var(&r.to, "to", "override the end date")
	r.interval.Setup(c)
	c.Flags().BoolVar(&r.stdout, "stdout", false, "write the report to stdout instead of a file")
	c.Flags().BoolVarP(&r.verbose, "verbose", "v", false, "print row values and indexing progress to stderr")
	c.Flags().BoolVarP(&r.text, "text", "t", false, "render an aligned text table instead of CSV")
	c.Flags().BoolVar(&r.color, "color", true, "print text tables in color")
}

func (r *runner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%+v\n", err)
		os.Exit(1)
	}
}

func (r *runner) execute(cmd *cobra.Command, args []string) error {
	today := date.Today()
	def, err := report.ParseFile(args[0], today)
	if err != nil {
		return err
	}
	if def.Config.Start, err = r.from.ValueOr(today, def.Config.Start); err != nil {
		return err
	}
	if def.Config.End, err = r.to.ValueOr(today, def.Config.End); err != nil {
		return err
	}
	def.Config.Interval = r.interval.ValueOr(def.Config.Interval)
	ledgerPath := def.Config.LedgerPath
	if len(args) == 2 {
		ledgerPath = args[1]
	}
	if ledgerPath == "" {
		return fmt.Errorf("no ledger file: pass one as an argument or set GNUCASH_FILE in %s", args[0])
	}
	ledger, err := gnucash.Open(ledgerPath)
	if err != nil {
		return err
	}
	var progress io.Writer
	if r.verbose {
		progress = cmd.ErrOrStderr()
	}
	index := gnucash.BuildIndex(ledger, progress)
	partition, err := date.NewPartition(def.Config.Start, def.Config.End, def.Config.Interval)
	if err != nil {
		return err
	}
	if r.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d accounts, %d transactions, %d %s periods\n",
			ledger.NumAccounts(), len(ledger.Transactions()), partition.Size(), partition.Interval())
	}
	ctx := &report.Context{
		Ledger:    ledger,
		Index:     index,
		Partition: partition,
		Config:    def.Config,
	}
	if r.verbose {
		ctx.Debug = cmd.ErrOrStderr()
	}
	rows, err := report.Evaluate(ctx, def)
	if err != nil {
		return err
	}
	renderer := report.Renderer{Labels: partition.Labels()}
	t := renderer.Render(rows)
	if r.stdout {
		return r.render(t, cmd.OutOrStdout())
	}
	return r.write(t, outputPath(def, args[0]))
}

func (r *runner) render(t *table.Table, w io.Writer) error {
	if r.text {
		renderer := table.TextRenderer{Color: r.color, Round: 2}
		return renderer.Render(t, w)
	}
	renderer := table.CSVRenderer{Round: 2}
	return renderer.Render(t, w)
}

// write renders into a temp file next to the target and atomically
// replaces it, so a failed run never leaves a truncated report.
func (r *runner) write(t *table.Table, target string) error {
	tmpfile, err := os.CreateTemp(filepath.Dir(target), "greport-")
	if err != nil {
		return err
	}
	out := bufio.NewWriter(tmpfile)
	err = r.render(t, out)
	err = multierr.Combine(err, out.Flush(), tmpfile.Close())
	if err != nil {
		return multierr.Append(err, os.Remove(tmpfile.Name()))
	}
	return atomic.ReplaceFile(tmpfile.Name(), target)
}

// outputPath is the CSV_FILE config value, or the definition path with
// its extension replaced by ".csv".
func outputPath(def *report.Definition, definitionPath string) string {
	if def.Config.OutputPath != "" {
		return def.Config.OutputPath
	}
	ext := filepath.Ext(definitionPath)
	return strings.TrimSuffix(definitionPath, ext) + ".csv"
}
