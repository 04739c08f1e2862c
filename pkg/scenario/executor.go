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
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/go-formula/pkg/formula"
	"github.com/consensys/go-formula/pkg/util/collection/set"
)

// Executor drives the three-phase evaluation of a formula batch over a set of
// rows:
//
//  1. Row phase: every row-level formula is evaluated against every row.
//     Rows are independent, so this phase runs in parallel across rows.
//  2. Scenario phase: the free variables of the scenario formulas are
//     materialised as whole-column vectors (or first-row scalars), and the
//     scenario formulas are evaluated once each, strictly in batch order,
//     with each result immediately visible to later scenario formulas.
//  3. Back-propagation phase: scenario results are injected into every row
//     as scalar columns, and any row formula reading one of them is
//     re-evaluated (in parallel across rows), overwriting its row-phase
//     value.
//
// A batch without scenario formulas degenerates to the row phase alone.
type Executor struct {
	compiler *formula.Compiler
	// Maximum number of rows evaluated concurrently.
	workers int
	// Whether the first fault aborts the run, rather than being recorded
	// against its cell.
	failFast bool
}

// Option configures an executor.
type Option func(*Executor)

// WithWorkers bounds the number of rows evaluated concurrently during the
// row and back-propagation phases.
func WithWorkers(n int) Option {
	return func(p *Executor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithFailFast makes any fault abort the whole run.  By default faults are
// isolated: a failing formula/row yields a Null cell and a recorded fault,
// and the rest of the batch proceeds.
func WithFailFast() Option {
	return func(p *Executor) {
		p.failFast = true
	}
}

// NewExecutor constructs an executor around a given compiler.
func NewExecutor(compiler *formula.Compiler, options ...Option) *Executor {
	p := &Executor{
		compiler: compiler,
		workers:  runtime.GOMAXPROCS(0),
	}
	//
	for _, option := range options {
		option(p)
	}
	//
	return p
}

// Run executes a given batch against a given set of rows, producing one
// value per target per row.  Scenario targets repeat their single result
// once per row.  Unless the executor is configured fail-fast, evaluation
// faults are local to their cell: the cell becomes Null and the fault is
// recorded in the results.
func (p *Executor) Run(ctx context.Context, batch *Batch, rows []Row) (*Results, error) {
	run := &batchRun{
		executor: p,
		rows:     rows,
		results:  newResults(batch.Targets(), len(rows)),
		compiled: make(map[string]formula.Expr),
		free:     make(map[string]*set.SortedSet[string]),
	}
	// Compile everything up front; a formula which does not compile faults
	// once (batch-level) and leaves its column Null.
	for _, target := range batch.Targets() {
		text, _ := batch.Formula(target)
		//
		expr, err := p.compiler.Compile(text)
		if err != nil {
			run.results.fault(BatchLevel, target, err)
			continue
		}
		//
		run.compiled[target] = expr
		run.free[target] = formula.FreeIdentifiers(expr)
		// Partition, preserving batch order within each class.
		if formula.UsesScenarioFunction(expr) {
			run.scenarioTargets = append(run.scenarioTargets, target)
		} else {
			run.rowTargets = append(run.rowTargets, target)
		}
	}
	//
	if len(rows) == 0 {
		return run.results.seal(), p.checkFaults(run.results)
	}
	// Phase 1: row pass.
	if err := run.rowPhase(ctx); err != nil {
		return nil, err
	}
	//
	if len(run.scenarioTargets) > 0 {
		// Phase 2: vector assembly + scenario pass.
		run.scenarioPhase()
		// Phase 3: back-propagation pass.
		if err := run.backPropagationPhase(ctx); err != nil {
			return nil, err
		}
	}
	//
	return run.results.seal(), p.checkFaults(run.results)
}

func (p *Executor) checkFaults(results *Results) error {
	if p.failFast && len(results.faults) > 0 {
		return results.faults[0].Err
	}
	//
	return nil
}

// batchRun holds the state of one batch execution.
type batchRun struct {
	executor *Executor
	rows     []Row
	results  *Results
	// Compiled formula per target (absent on compile failure).
	compiled map[string]formula.Expr
	// Free identifiers per target.
	free map[string]*set.SortedSet[string]
	// Row-level targets, in batch order.
	rowTargets []string
	// Scenario-level targets, in batch order.
	scenarioTargets []string
	// Environments produced by the row phase, one per row, each a
	// copy-on-write extension of the corresponding input row.
	computed []Row
	// Results of the scenario phase, keyed by scenario target.
	scenarioResults map[string]formula.Value
}

// Phase 1: evaluate every row-level formula against every row.  Rows are
// mutually independent, hence evaluated in parallel.  Within one row,
// formulas are evaluated in batch order, each result becoming visible as a
// derived column of that row.
func (p *batchRun) rowPhase(ctx context.Context) error {
	log.Debugf("row phase: %d rows x %d formulas", len(p.rows), len(p.rowTargets))
	//
	p.computed = make([]Row, len(p.rows))
	//
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(p.executor.workers)
	//
	for i := range p.rows {
		i := i
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			//
			env := p.rows[i].Clone()
			//
			for _, target := range p.rowTargets {
				value, err := p.compiled[target].Eval(formula.NewEnvironment(env))
				if err != nil {
					if p.executor.failFast {
						return err
					}
					//
					p.results.fault(i, target, err)
					//
					value = formula.Null{}
				}
				//
				env[target] = value
				p.results.set(target, i, value)
			}
			//
			p.computed[i] = env
			//
			return nil
		})
	}
	//
	return group.Wait()
}

// Phase 2: materialise the free variables of the scenario formulas, then
// evaluate the scenario formulas strictly in batch order.  This phase is
// sequential by design: each scenario result is written back into the
// scenario context before the next formula runs, so later formulas may
// reference earlier results by target name.
func (p *batchRun) scenarioPhase() {
	scope := p.assembleScenarioContext()
	//
	p.scenarioResults = make(map[string]formula.Value)
	//
	for _, target := range p.scenarioTargets {
		value, err := p.compiled[target].Eval(formula.NewEnvironment(scope))
		if err != nil {
			log.Debugf("scenario formula %q faulted: %v", target, err)
			p.results.fault(BatchLevel, target, err)
			// Column stays Null; the target also stays unbound in the
			// scenario context, so dependent scenario formulas fault in turn.
			continue
		}
		// Write back immediately for later scenario formulas.
		scope[target] = value
		p.scenarioResults[target] = value
		//
		for i := range p.rows {
			p.results.set(target, i, value)
		}
	}
}

// Assemble the scenario context: for each free variable of any scenario
// formula, either a whole-column vector (when the name exists on the first
// computed row) or a scalar taken from the first raw input row (assumed
// row-invariant).  A name bound by neither is left unbound and surfaces as an
// unknown-variable fault when a formula reads it.
func (p *batchRun) assembleScenarioContext() Row {
	idents := set.NewSortedSet[string]()
	//
	for _, target := range p.scenarioTargets {
		idents.InsertSorted(p.free[target])
	}
	//
	scope := make(Row, idents.Len())
	//
	for _, name := range idents.Slice() {
		if value, ok := p.computed[0][name]; ok {
			// Presence on the first computed row makes this a column; a value
			// which is already a vector passes through unchanged.
			if vector, ok := value.(formula.Vector); ok {
				scope[name] = vector
			} else {
				scope[name] = p.materialiseColumn(name)
				log.Debugf("scenario variable %q materialised over %d rows", name, len(p.rows))
			}
		} else if value, ok := p.rows[0][name]; ok {
			// Assumed constant across rows.
			scope[name] = value
			log.Debugf("scenario variable %q bound as scalar from first row", name)
		}
	}
	//
	return scope
}

// Materialise a given column as a vector by reading it from every computed
// row in row order.  A row on which the column is missing or non-numeric
// contributes NaN, which the NaN-skipping aggregates then ignore.
func (p *batchRun) materialiseColumn(name string) formula.Vector {
	column := make(formula.Vector, len(p.computed))
	//
	for i, row := range p.computed {
		if number, ok := row[name].(formula.Number); ok {
			column[i] = float64(number)
		} else {
			column[i] = math.NaN()
		}
	}
	//
	return column
}

// Phase 3: inject every scenario result into every row as a scalar column,
// then re-evaluate any row formula whose free identifiers intersect the
// scenario result names.  This is a single pass: a row formula which merely
// depends on another re-evaluated row formula is NOT itself re-evaluated,
// and so may retain a value computed from stale inputs.  Callers needing a
// stronger guarantee must order their formulas accordingly.
func (p *batchRun) backPropagationPhase(ctx context.Context) error {
	names := make([]string, 0, len(p.scenarioResults))
	for name := range p.scenarioResults {
		names = append(names, name)
	}
	// Row formulas to re-evaluate, in batch order.
	var stale []string
	//
	for _, target := range p.rowTargets {
		if p.free[target].ContainsAny(names) {
			stale = append(stale, target)
		}
	}
	//
	log.Debugf("back-propagation phase: %d scenario results, %d dependent row formulas",
		len(p.scenarioResults), len(stale))
	//
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(p.executor.workers)
	//
	for i := range p.computed {
		i := i
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			//
			env := p.computed[i]
			//
			for name, value := range p.scenarioResults {
				env[name] = value
			}
			//
			for _, target := range stale {
				value, err := p.compiled[target].Eval(formula.NewEnvironment(env))
				if err != nil {
					if p.executor.failFast {
						return err
					}
					//
					p.results.fault(i, target, err)
					//
					value = formula.Null{}
				} else {
					// Successful recomputation supersedes any row-phase fault
					// for this cell.
					p.results.clearFault(i, target)
				}
				//
				env[target] = value
				p.results.set(target, i, value)
			}
			//
			return nil
		})
	}
	//
	return group.Wait()
}

// ============================================================================
// Results
// ============================================================================

// BatchLevel marks a fault which is not specific to any row (e.g. a formula
// which failed to compile, or a faulting scenario formula).
const BatchLevel int = -1

// Fault records one failed evaluation: the row it occurred on (or
// BatchLevel), the target column and the underlying error.
type Fault struct {
	Row    int
	Target string
	Err    error
}

// Results holds the outcome of one batch execution: per target, one value
// per row (in row order), plus any faults.
type Results struct {
	targets []string
	columns map[string][]formula.Value
	// Faults keyed per cell whilst the run is in flight.
	cellFaults map[faultKey]error
	faults     []Fault
	mu         sync.Mutex
}

type faultKey struct {
	row    int
	target string
}

func newResults(targets []string, rows int) *Results {
	columns := make(map[string][]formula.Value, len(targets))
	//
	for _, target := range targets {
		column := make([]formula.Value, rows)
		for i := range column {
			column[i] = formula.Null{}
		}
		//
		columns[target] = column
	}
	//
	return &Results{
		targets:    targets,
		columns:    columns,
		cellFaults: make(map[faultKey]error),
	}
}

// Targets returns the target names, in the original batch order.
func (p *Results) Targets() []string {
	return p.targets
}

// Column returns the per-row values of a given target, in row order.
func (p *Results) Column(target string) []formula.Value {
	return p.columns[target]
}

// Faults returns every recorded fault, ordered by row and then target.
func (p *Results) Faults() []Fault {
	return p.faults
}

func (p *Results) set(target string, row int, value formula.Value) {
	p.columns[target][row] = value
}

func (p *Results) fault(row int, target string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	p.cellFaults[faultKey{row, target}] = err
}

func (p *Results) clearFault(row int, target string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	delete(p.cellFaults, faultKey{row, target})
}

// Seal determinises the in-flight fault map into the final fault list.
func (p *Results) seal() *Results {
	p.faults = make([]Fault, 0, len(p.cellFaults))
	//
	for key, err := range p.cellFaults {
		p.faults = append(p.faults, Fault{key.row, key.target, err})
	}
	//
	sort.Slice(p.faults, func(i, j int) bool {
		if p.faults[i].Row != p.faults[j].Row {
			return p.faults[i].Row < p.faults[j].Row
		}
		//
		return p.faults[i].Target < p.faults[j].Target
	})
	//
	return p
}
