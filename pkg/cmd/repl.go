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
	"io"
	"strings"

	"github.com/chzyer/readline"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-formula/pkg/formula"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Evaluate formulas interactively.",
	Long: `Evaluate formulas interactively against a persistent set of variable
bindings.  A line of the form "name = value" binds a variable (numbers,
booleans, quoted strings and [1,2,3] vectors are understood); any other line
is compiled and evaluated as a formula.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := resolveConfig(cmd)
		compiler := config.compiler()
		//
		rl, err := readline.New("> ")
		if err != nil {
			log.Fatal(err)
		}
		//
		defer rl.Close()
		//
		row := make(map[string]formula.Value)
		//
		for {
			line, err := rl.Readline()
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				return
			}
			//
			replLine(compiler, row, strings.TrimSpace(line))
		}
	},
}

// Process one line of REPL input, either binding a variable or evaluating a
// formula against the bindings made so far.
func replLine(compiler *formula.Compiler, row map[string]formula.Value, line string) {
	switch {
	case line == "":
		return
	case line == "exit", line == "quit":
		// Handled here rather than by the parser, which would otherwise
		// report them as unknown variables.
		fmt.Println("(use ctrl-D to exit)")
		return
	}
	//
	if name, literal, ok := bindingLine(line); ok {
		value, err := parseLiteralValue(literal)
		if err != nil {
			fmt.Println(err)
			return
		}
		//
		row[name] = value
		//
		return
	}
	//
	value, err := compiler.Evaluate(line, formula.NewEnvironment(row))
	if err != nil {
		fmt.Println(err)
		return
	}
	//
	fmt.Println(value)
}

// Check whether a line has the binding form "name = value", where name is a
// bare identifier and the "=" is not part of a comparison operator.
func bindingLine(line string) (string, string, bool) {
	i := strings.Index(line, "=")
	// Exclude "==", "<=", ">=", "!=" and a leading "=".
	if i < 1 || strings.ContainsAny(line[i-1:i], "<>!") || strings.HasPrefix(line[i+1:], "=") {
		return "", "", false
	}
	//
	name := strings.TrimSpace(line[:i])
	//
	for j, c := range name {
		if !isBindingNameChar(c, j == 0) {
			return "", "", false
		}
	}
	//
	return name, strings.TrimSpace(line[i+1:]), name != ""
}

func isBindingNameChar(c rune, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	//
	return !first && c >= '0' && c <= '9'
}

func init() {
	rootCmd.AddCommand(replCmd)
}
