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
package scenario

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-formula/pkg/formula"
)

// PrecomputeAggregates analyses a batch for whole-column aggregate
// dependencies (calls such as "SUM(sales)" whose argument is a bare column)
// and computes each required aggregate exactly once over the given rows.  The
// result maps collaborator-style keys ("SUM_sales", "AVG_price", ...) to
// values, and is intended as the aggregate overlay of an Environment: each
// row is then evaluated in O(1) extra work instead of re-walking the column,
// turning an O(n^2) row pass into O(n).
//
// Rows on which a column is missing or non-numeric contribute NaN, which the
// NaN-skipping aggregates ignore.
func PrecomputeAggregates(compiler *formula.Compiler, batch *Batch, rows []Row) (map[string]formula.Value, error) {
	deps := make(map[formula.AggregateDependency]bool)
	//
	for _, target := range batch.Targets() {
		text, _ := batch.Formula(target)
		//
		expr, err := compiler.Compile(text)
		if err != nil {
			return nil, err
		}
		//
		for _, dep := range formula.AggregateDependencies(expr) {
			deps[dep] = true
		}
	}
	//
	aggregates := make(map[string]formula.Value, len(deps))
	// Materialise each referenced column once, even when several aggregates
	// share it.
	columns := make(map[string]formula.Vector)
	//
	for dep := range deps {
		column, ok := columns[dep.Column]
		if !ok {
			column = materialiseRawColumn(dep.Column, rows)
			columns[dep.Column] = column
		}
		//
		value, err := aggregateFunction(dep.Func).Apply([]formula.Value{column})
		if err != nil {
			return nil, err
		}
		//
		aggregates[dep.Key()] = value
		//
		log.Debugf("precomputed aggregate %s = %s", dep.Key(), value)
	}
	//
	return aggregates, nil
}

func materialiseRawColumn(name string, rows []Row) formula.Vector {
	column := make(formula.Vector, len(rows))
	//
	for i, row := range rows {
		if number, ok := row[name].(formula.Number); ok {
			column[i] = float64(number)
		} else {
			column[i] = math.NaN()
		}
	}
	//
	return column
}

// Map a canonical aggregate name onto its library function.
func aggregateFunction(name string) formula.Function {
	switch name {
	case "SUM":
		return formula.Sum
	case "AVG":
		return formula.Avg
	case "COUNT":
		return formula.Count
	case "MIN":
		return formula.Min
	case "MAX":
		return formula.Max
	}
	// Unreachable: AggregateDependencies only emits the names above.
	panic("unknown aggregate function")
}
