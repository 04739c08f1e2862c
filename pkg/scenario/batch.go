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

import "github.com/consensys/go-formula/pkg/formula"

// Row is one record's visible fields at evaluation time, mapping column
// names to scalar or vector values.  Rows are owned by the caller; the
// executor copies rather than mutates them.
type Row map[string]formula.Value

// Clone produces a shallow copy of this row (values are immutable, so a
// shallow copy suffices).
func (p Row) Clone() Row {
	clone := make(Row, len(p))
	//
	for name, value := range p {
		clone[name] = value
	}
	//
	return clone
}

// Batch is an ordered mapping from target column names to formula texts.
// Insertion order is a load-bearing contract: it is the authoritative
// evaluation order for scenario formulas, which may reference the results of
// scenario formulas declared before them.  No topological sort is performed.
type Batch struct {
	targets  []string
	formulas map[string]string
}

// NewBatch constructs an empty formula batch.
func NewBatch() *Batch {
	return &Batch{formulas: make(map[string]string)}
}

// Add appends a target/formula pair to this batch.  Re-adding an existing
// target replaces its formula whilst keeping its original position.
func (p *Batch) Add(target, text string) {
	if _, ok := p.formulas[target]; !ok {
		p.targets = append(p.targets, target)
	}
	//
	p.formulas[target] = text
}

// Len returns the number of formulas in this batch.
func (p *Batch) Len() int {
	return len(p.targets)
}

// Targets returns the target names of this batch, in insertion order.  The
// slice is owned by the batch and must not be mutated.
func (p *Batch) Targets() []string {
	return p.targets
}

// Formula returns the formula text bound to a given target.
func (p *Batch) Formula(target string) (string, bool) {
	text, ok := p.formulas[target]
	return text, ok
}

// Classification partitions a batch into row-level formulas (evaluated
// independently per record) and scenario-level formulas (evaluated once per
// batch against whole-column vectors).  Both partitions preserve their
// relative order from the original batch.
type Classification struct {
	RowFormulas      *Batch
	ScenarioFormulas *Batch
}

// Classify partitions a given batch by whether each formula calls a
// scenario-level function (DOT or NORM).  A formula calling only per-row
// functions and plain aggregates (SUM, AVG, ...) remains row-level.  The
// first malformed formula aborts classification with its syntax error.
func Classify(compiler *formula.Compiler, batch *Batch) (Classification, error) {
	classification := Classification{NewBatch(), NewBatch()}
	//
	for _, target := range batch.Targets() {
		text, _ := batch.Formula(target)
		//
		expr, err := compiler.Compile(text)
		if err != nil {
			return classification, err
		}
		//
		if formula.UsesScenarioFunction(expr) {
			classification.ScenarioFormulas.Add(target, text)
		} else {
			classification.RowFormulas.Add(target, text)
		}
	}
	//
	return classification, nil
}
