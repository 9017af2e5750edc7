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

// Package cmd is the main command file for Cobra
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnucash-go/greport/cmd/report"
	"github.com/gnucash-go/greport/cmd/tree"
)

var rootCmd = &cobra.Command{
	Use:   "greport",
	Short: "greport generates tabular reports from GnuCash ledgers",
	Long:  `greport reads a GnuCash XML ledger and a report definition and generates a periodized tabular report.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(report.CreateCmd())
	rootCmd.AddCommand(tree.CreateCmd())
}
