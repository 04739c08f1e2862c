// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/consensys/go-formula/pkg/scenario"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] batch.json rows.json",
	Short: "Run a formula batch over a set of rows.",
	Long: `Run a formula batch (a JSON array of {"target", "formula"} objects, in
evaluation order) over a set of rows (a JSON array of objects), reporting one
value per target per row.  Output is a table on a terminal, and CSV
otherwise.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		config := resolveConfig(cmd)
		compiler := config.compiler()
		executor := config.executor(compiler, getFlag(cmd, "fail-fast"))
		//
		batch := readBatchFile(args[0])
		rows := readRowsFile(args[1])
		//
		results, err := executor.Run(context.Background(), batch, rows)
		if err != nil {
			log.Fatalf("running batch: %v", err)
		}
		//
		printResults(results, len(rows))
		//
		faults := results.Faults()
		//
		for _, fault := range faults {
			if fault.Row == scenario.BatchLevel {
				log.Errorf("target %q: %v", fault.Target, fault.Err)
			} else {
				log.Errorf("row %d, target %q: %v", fault.Row, fault.Target, fault.Err)
			}
		}
		//
		if len(faults) > 0 {
			os.Exit(2)
		}
	},
}

// Print a result set, one line per row, one column per target.  On a
// terminal, render a table; otherwise (e.g. piped into another tool), render
// CSV.
func printResults(results *scenario.Results, rows int) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	//
	header := table.Row{"row"}
	//
	for _, target := range results.Targets() {
		header = append(header, target)
	}
	//
	tbl.AppendHeader(header)
	//
	for i := 0; i < rows; i++ {
		line := table.Row{i}
		//
		for _, target := range results.Targets() {
			line = append(line, results.Column(target)[i])
		}
		//
		tbl.AppendRow(line)
	}
	//
	if term.IsTerminal(int(os.Stdout.Fd())) {
		tbl.Render()
	} else {
		tbl.RenderCSV()
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("fail-fast", false, "abort the whole run on the first fault")
}
