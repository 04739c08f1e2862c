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
package formula

import (
	"fmt"
	"sort"
	"strings"

	"github.com/consensys/go-formula/pkg/util/collection/set"
)

// Static analyses over expression trees.  These are pure inspections: nothing
// here evaluates anything, so they are safe to run on formulas whose
// variables are not yet bound.

// FreeIdentifiers returns the set of variable names a given expression reads.
// Function names are not identifiers.
func FreeIdentifiers(expr Expr) *set.SortedSet[string] {
	idents := set.NewSortedSet[string]()
	//
	expr.walk(func(e Expr) {
		// A name spelled exactly like a library function is shadowed by it,
		// and so is never a free identifier.
		if v, ok := e.(*VariableAccess); ok && !IsFunctionName(v.Name) {
			idents.Insert(v.Name)
		}
	})
	//
	return idents
}

// AggregateDependency names a whole-column aggregate required by a formula,
// as a (function, column) pair.
type AggregateDependency struct {
	// Canonical (uppercase) aggregate function name.
	Func string
	// Name of column being aggregated.
	Column string
}

// Key returns the aggregate-context key under which data-layer collaborators
// supply a precomputed value for this dependency (e.g. "SUM_sales").
func (p AggregateDependency) Key() string {
	return fmt.Sprintf("%s_%s", p.Func, p.Column)
}

// The aggregate functions which data layers can precompute per column.
var aggregateFunctions = map[string]bool{
	"SUM": true, "AVG": true, "COUNT": true, "MIN": true, "MAX": true,
}

// AggregateDependencies returns every aggregate call within a given
// expression whose sole argument is a bare column reference, so that callers
// can precompute each column aggregate once rather than per row.  Calls whose
// argument is any richer expression (e.g. "SUM(x * 2)") are not reported:
// those cannot be satisfied by a per-column precomputation.  The function
// name match is case-insensitive, with the canonical uppercase name emitted.
func AggregateDependencies(expr Expr) []AggregateDependency {
	deps := make(map[AggregateDependency]bool)
	//
	expr.walk(func(e Expr) {
		call, ok := e.(*Call)
		if !ok || len(call.Args) != 1 {
			return
		}
		//
		name := strings.ToUpper(call.Name)
		if !aggregateFunctions[name] {
			return
		}
		//
		if column, ok := call.Args[0].(*VariableAccess); ok {
			deps[AggregateDependency{name, column.Name}] = true
		}
	})
	// Determinise
	sorted := make([]AggregateDependency, 0, len(deps))
	for dep := range deps {
		sorted = append(sorted, dep)
	}
	//
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Func != sorted[j].Func {
			return sorted[i].Func < sorted[j].Func
		}
		//
		return sorted[i].Column < sorted[j].Column
	})
	//
	return sorted
}

// UsesScenarioFunction checks whether a given expression calls a function
// (DOT or NORM, compared case-insensitively) which requires whole-column
// materialisation, and hence must be evaluated once per batch rather than
// once per row.
func UsesScenarioFunction(expr Expr) bool {
	uses := false
	//
	expr.walk(func(e Expr) {
		if call, ok := e.(*Call); ok {
			switch strings.ToUpper(call.Name) {
			case "DOT", "NORM":
				uses = true
			}
		}
	})
	//
	return uses
}
