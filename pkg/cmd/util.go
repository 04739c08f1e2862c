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
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-formula/pkg/formula"
	"github.com/consensys/go-formula/pkg/scenario"
)

// Get an expected flag, or panic if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	return r
}

// Get an expected uint flag, or panic if an error arises.
func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	return r
}

// Get an expected string flag, or panic if an error arises.
func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	return r
}

// Get an expected string-array flag, or panic if an error arises.
func getStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	return r
}

// ============================================================================
// Input decoding
// ============================================================================

// Read a JSON rows file: an array of objects mapping column names to
// numbers, booleans, strings or numeric arrays.
func readRowsFile(filename string) []scenario.Row {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("reading rows file: %v", err)
	}
	//
	var raw []map[string]any
	//
	if err := json.Unmarshal(bytes, &raw); err != nil {
		log.Fatalf("parsing rows file %s: %v", filename, err)
	}
	//
	rows := make([]scenario.Row, len(raw))
	//
	for i, fields := range raw {
		row := make(scenario.Row, len(fields))
		//
		for name, field := range fields {
			value, err := valueFromJSON(field)
			if err != nil {
				log.Fatalf("row %d, column %q: %v", i, name, err)
			}
			//
			row[name] = value
		}
		//
		rows[i] = row
	}
	//
	return rows
}

// Read a JSON batch file: an array of {"target": ..., "formula": ...}
// objects.  An array (rather than an object) because batch order is a
// load-bearing contract.
func readBatchFile(filename string) *scenario.Batch {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("reading batch file: %v", err)
	}
	//
	var raw []struct {
		Target  string `json:"target"`
		Formula string `json:"formula"`
	}
	//
	if err := json.Unmarshal(bytes, &raw); err != nil {
		log.Fatalf("parsing batch file %s: %v", filename, err)
	}
	//
	batch := scenario.NewBatch()
	//
	for _, entry := range raw {
		batch.Add(entry.Target, entry.Formula)
	}
	//
	return batch
}

// Convert a decoded JSON field into a formula value.
func valueFromJSON(field any) (formula.Value, error) {
	switch v := field.(type) {
	case float64:
		return formula.Number(v), nil
	case bool:
		return formula.Boolean(v), nil
	case string:
		return formula.Text(v), nil
	case nil:
		return formula.Null{}, nil
	case []any:
		vector := make(formula.Vector, len(v))
		//
		for i, elem := range v {
			number, ok := elem.(float64)
			if !ok {
				return nil, fmt.Errorf("vector element %d is not a number", i)
			}
			//
			vector[i] = number
		}
		//
		return vector, nil
	}
	//
	return nil, fmt.Errorf("unsupported value %v", field)
}

// Parse a command-line binding of the form "name=value", where value is a
// number, boolean, quoted string or comma-separated vector in brackets.
func parseBinding(binding string) (string, formula.Value, error) {
	for i := 0; i < len(binding); i++ {
		if binding[i] == '=' {
			name := binding[:i]
			//
			value, err := parseLiteralValue(binding[i+1:])
			//
			return name, value, err
		}
	}
	//
	return "", nil, fmt.Errorf("malformed binding %q (expected name=value)", binding)
}

func parseLiteralValue(text string) (formula.Value, error) {
	// Vector form, e.g. "[1,2,3]"
	if len(text) >= 2 && text[0] == '[' && text[len(text)-1] == ']' {
		var elements []float64
		//
		if err := json.Unmarshal([]byte(text), &elements); err != nil {
			return nil, fmt.Errorf("malformed vector %q", text)
		}
		//
		return formula.Vector(elements), nil
	}
	//
	if number, err := strconv.ParseFloat(text, 64); err == nil {
		return formula.Number(number), nil
	}
	//
	if truth, err := strconv.ParseBool(text); err == nil {
		return formula.Boolean(truth), nil
	}
	//
	return formula.Text(text), nil
}
