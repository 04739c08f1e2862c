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
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-formula/pkg/formula"
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval [flags] formula",
	Short: "Evaluate a single formula.",
	Long: `Evaluate a single formula against a set of variable bindings given either
on the command line (--bind name=value) or as the first row of a JSON rows
file (--rows).  With --identifiers or --aggregates, report the formula's
static dependencies instead of evaluating it.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		config := resolveConfig(cmd)
		compiler := config.compiler()
		//
		expr, err := compiler.Compile(args[0])
		if err != nil {
			log.Fatalf("compiling formula: %v", err)
		}
		// Static analyses only?
		if getFlag(cmd, "identifiers") || getFlag(cmd, "aggregates") {
			reportAnalyses(cmd, expr)
			return
		}
		//
		env := formula.NewEnvironment(bindings(cmd))
		//
		value, err := expr.Eval(env)
		if err != nil {
			log.Fatalf("evaluating formula: %v", err)
		}
		//
		fmt.Println(value)
	},
}

// Determine the row bindings for a given invocation.
func bindings(cmd *cobra.Command) map[string]formula.Value {
	row := make(map[string]formula.Value)
	// Rows file (first row only)
	if filename := getString(cmd, "rows"); filename != "" {
		if rows := readRowsFile(filename); len(rows) > 0 {
			row = rows[0]
		}
	}
	// Explicit bindings take precedence
	for _, binding := range getStringArray(cmd, "bind") {
		name, value, err := parseBinding(binding)
		if err != nil {
			log.Fatal(err)
		}
		//
		row[name] = value
	}
	//
	return row
}

func reportAnalyses(cmd *cobra.Command, expr formula.Expr) {
	if getFlag(cmd, "identifiers") {
		for _, name := range formula.FreeIdentifiers(expr).Slice() {
			fmt.Println(name)
		}
	}
	//
	if getFlag(cmd, "aggregates") {
		for _, dep := range formula.AggregateDependencies(expr) {
			fmt.Println(dep.Key())
		}
	}
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringArray("bind", nil, "bind a variable, e.g. --bind price=10 or --bind qty=[1,2,3]")
	evalCmd.Flags().String("rows", "", "bind variables from the first row of a JSON rows file")
	evalCmd.Flags().Bool("identifiers", false, "report free identifiers instead of evaluating")
	evalCmd.Flags().Bool("aggregates", false, "report aggregate dependencies instead of evaluating")
}
