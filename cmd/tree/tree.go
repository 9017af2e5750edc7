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

// Package tree implements the tree command.
package tree

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnucash-go/greport/lib/gnucash"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {
	var r runner

	c := &cobra.Command{
		Use:   "tree <ledger>",
		Short: "print the account hierarchy of a ledger",
		Long: `Print the account hierarchy of a GnuCash XML ledger, with the
account identifiers needed to write report definitions.`,

		Args: cobra.ExactArgs(1),
		Run:  r.run,
	}
	r.setupFlags(c)
	return c
}

type runner struct {
	hidden bool
	guids  bool
}

func (r *runner) setupFlags(c *cobra.Command) {
	c.Flags().BoolVar(&r.hidden, "hidden", false, "include hidden accounts")
	c.Flags().BoolVar(&r.guids, "guids", true, "print account identifiers")
}

func (r *runner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%+v\n", err)
		os.Exit(1)
	}
}

func (r *runner) execute(cmd *cobra.Command, args []string) error {
	ledger, err := gnucash.Open(args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, root := range ledger.Roots() {
		if err := r.print(w, ledger, root, "", ""); err != nil {
			return err
		}
	}
	return nil
}

// print writes one account line and recurses into its children with
// box-drawing connectors.
func (r *runner) print(w io.Writer, ledger *gnucash.Ledger, guid, connector, prefix string) error {
	acct, ok := ledger.Account(guid)
	if !ok {
		return gnucash.NotFoundError{GUID: guid}
	}
	if acct.Hidden && !r.hidden {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s%s%s", prefix, connector, acct.Name); err != nil {
		return err
	}
	if r.guids {
		if _, err := fmt.Fprintf(w, "  [%s]", guid); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	children := r.visible(ledger, guid)
	childPrefix := prefix
	switch connector {
	case "├─ ":
		childPrefix += "│  "
	case "└─ ":
		childPrefix += "   "
	}
	for i, child := range children {
		childConnector := "├─ "
		if i == len(children)-1 {
			childConnector = "└─ "
		}
		if err := r.print(w, ledger, child, childConnector, childPrefix); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) visible(ledger *gnucash.Ledger, guid string) []string {
	var children []string
	for _, child := range ledger.Children(guid) {
		if acct, ok := ledger.Account(child); ok && (r.hidden || !acct.Hidden) {
			children = append(children, child)
		}
	}
	return children
}
