package scenario

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/go-formula/pkg/formula"
)

func TestExecutor_RowPhaseOnly(t *testing.T) {
	batch := NewBatch()
	batch.Add("rev", "price * qty")
	batch.Add("margin", "rev - cost")
	//
	rows := []Row{
		{"price": formula.Number(10), "qty": formula.Number(2), "cost": formula.Number(5)},
		{"price": formula.Number(20), "qty": formula.Number(1), "cost": formula.Number(8)},
	}
	//
	results := run(t, batch, rows)
	// Derived columns become visible to later formulas within the same row.
	assert.Equal(t, column(20, 20), results.Column("rev"))
	assert.Equal(t, column(15, 12), results.Column("margin"))
	assert.Empty(t, results.Faults())
}

func TestExecutor_EndToEnd(t *testing.T) {
	batch := NewBatch()
	batch.Add("rev", "price * qty")
	batch.Add("total", "DOT(price, qty)")
	//
	rows := []Row{
		{"price": formula.Number(10), "qty": formula.Number(2)},
		{"price": formula.Number(20), "qty": formula.Number(1)},
	}
	//
	results := run(t, batch, rows)
	// The scenario scalar repeats once per row.
	assert.Equal(t, column(20, 20), results.Column("rev"))
	assert.Equal(t, column(40, 40), results.Column("total"))
	assert.Empty(t, results.Faults())
}

func TestExecutor_ScenarioReadsDerivedColumn(t *testing.T) {
	batch := NewBatch()
	batch.Add("margin", "price - cost")
	// The derived column is materialised as a vector for DOT.
	batch.Add("profit", "DOT(margin, qty)")
	//
	rows := []Row{
		{"price": formula.Number(10), "cost": formula.Number(4), "qty": formula.Number(3)},
		{"price": formula.Number(8), "cost": formula.Number(6), "qty": formula.Number(5)},
	}
	//
	results := run(t, batch, rows)
	// 6*3 + 2*5
	assert.Equal(t, column(28, 28), results.Column("profit"))
}

func TestExecutor_ScenarioChaining(t *testing.T) {
	batch := NewBatch()
	// Later scenario formulas may reference earlier scenario results by
	// target name.  Insertion order is authoritative: no topological sort.
	batch.Add("total", "DOT(price, qty)")
	batch.Add("scaled", "NORM(qty) + total")
	//
	rows := []Row{
		{"price": formula.Number(10), "qty": formula.Number(3)},
		{"price": formula.Number(10), "qty": formula.Number(4)},
	}
	//
	results := run(t, batch, rows)
	//
	assert.Equal(t, column(70, 70), results.Column("total"))
	assert.Equal(t, column(75, 75), results.Column("scaled"))
}

func TestExecutor_BackPropagation(t *testing.T) {
	batch := NewBatch()
	// "share" reads a scenario result, so its row-phase value (a fault, since
	// "total" is unbound then) is recomputed once the scenario phase has run.
	batch.Add("rev", "price * qty")
	batch.Add("share", "rev / total")
	batch.Add("total", "DOT(price, qty)")
	//
	rows := []Row{
		{"price": formula.Number(10), "qty": formula.Number(2)},
		{"price": formula.Number(20), "qty": formula.Number(1)},
	}
	//
	results := run(t, batch, rows)
	//
	assert.Equal(t, column(20, 20), results.Column("rev"))
	assert.Equal(t, column(40, 40), results.Column("total"))
	assert.Equal(t, column(0.5, 0.5), results.Column("share"))
	// The transient row-phase faults were superseded by the recomputation.
	assert.Empty(t, results.Faults())
}

func TestExecutor_BackPropagationIsSinglePass(t *testing.T) {
	batch := NewBatch()
	// "x" reads the scenario result directly and is recomputed.  "y" reads
	// only "x", so it is NOT recomputed: its row-phase value (Null, since "x"
	// was Null then) deliberately survives.
	batch.Add("x", "a + s")
	batch.Add("y", "x * 2")
	batch.Add("s", "NORM(v)")
	//
	rows := []Row{
		{"a": formula.Number(1), "v": formula.Vector{3, 4}},
	}
	//
	results := run(t, batch, rows)
	//
	assert.Equal(t, column(5), results.Column("s"))
	assert.Equal(t, column(6), results.Column("x"))
	assert.Equal(t, []formula.Value{formula.Null{}}, results.Column("y"))
}

func TestExecutor_ScalarScenarioVariable(t *testing.T) {
	batch := NewBatch()
	// "fixed" is present on every row; its column is materialised as a
	// vector, so a whole-column aggregate sees every row's copy.
	batch.Add("profit", "DOT(margin, qty) - SUM(fixed)")
	//
	rows := []Row{
		{"margin": formula.Number(6), "qty": formula.Number(3), "fixed": formula.Number(5)},
		{"margin": formula.Number(2), "qty": formula.Number(5), "fixed": formula.Number(5)},
	}
	//
	results := run(t, batch, rows)
	// (6*3 + 2*5) - (5 + 5)
	assert.Equal(t, column(18, 18), results.Column("profit"))
}

func TestExecutor_ScenarioVariableAbsentFromFirstRow(t *testing.T) {
	batch := NewBatch()
	batch.Add("total", "DOT(price, qty)")
	//
	// Classification of a scenario variable is purely presence-based on the
	// first row, so a column appearing only later is left unbound.
	rows := []Row{
		{"price": formula.Number(10)},
		{"price": formula.Number(20), "qty": formula.Number(1)},
	}
	//
	results := run(t, batch, rows)
	//
	faults := results.Faults()
	require.Len(t, faults, 1)
	assert.Equal(t, BatchLevel, faults[0].Row)
	assert.Equal(t, "total", faults[0].Target)
	//
	var unknown *formula.UnknownVariableError
	assert.ErrorAs(t, faults[0].Err, &unknown)
	//
	assert.Equal(t, nulls(2), results.Column("total"))
}

func TestExecutor_FaultIsolation_Rows(t *testing.T) {
	batch := NewBatch()
	batch.Add("y", "sqrt(x) + 1")
	batch.Add("z", "x * 2")
	//
	rows := []Row{
		{"x": formula.Number(4)},
		{"x": formula.Text("oops")},
		{"x": formula.Number(9)},
	}
	//
	results := run(t, batch, rows)
	// The faulting row yields Null for the faulting cell only; other rows and
	// other targets are unaffected.
	assert.Equal(t, []formula.Value{
		formula.Number(3), formula.Null{}, formula.Number(4),
	}, results.Column("y"))
	assert.Equal(t, []formula.Value{
		formula.Number(8), formula.Null{}, formula.Number(18),
	}, results.Column("z"))
	//
	faults := results.Faults()
	require.Len(t, faults, 2)
	// Faults are ordered by row, then target.
	assert.Equal(t, 1, faults[0].Row)
	assert.Equal(t, "y", faults[0].Target)
	assert.Equal(t, 1, faults[1].Row)
	assert.Equal(t, "z", faults[1].Target)
}

func TestExecutor_FaultIsolation_UnknownVariable(t *testing.T) {
	batch := NewBatch()
	batch.Add("a", "missing + 1")
	batch.Add("b", "x + 1")
	//
	rows := []Row{{"x": formula.Number(1)}, {"x": formula.Number(2)}}
	//
	results := run(t, batch, rows)
	//
	assert.Equal(t, nulls(2), results.Column("a"))
	assert.Equal(t, column(2, 3), results.Column("b"))
	assert.Len(t, results.Faults(), 2)
}

func TestExecutor_CompileFailure(t *testing.T) {
	batch := NewBatch()
	batch.Add("bad", "1 +")
	batch.Add("good", "x * 2")
	//
	rows := []Row{{"x": formula.Number(1)}}
	//
	results := run(t, batch, rows)
	// The malformed formula faults once (batch-level), leaving its column
	// Null; the rest of the batch is unaffected.
	assert.Equal(t, nulls(1), results.Column("bad"))
	assert.Equal(t, column(2), results.Column("good"))
	//
	faults := results.Faults()
	require.Len(t, faults, 1)
	assert.Equal(t, BatchLevel, faults[0].Row)
	assert.Equal(t, "bad", faults[0].Target)
}

func TestExecutor_FailFast(t *testing.T) {
	compiler := formula.NewCompiler(0)
	executor := NewExecutor(compiler, WithFailFast())
	//
	batch := NewBatch()
	batch.Add("y", "missing + 1")
	//
	_, err := executor.Run(context.Background(), batch, []Row{{"x": formula.Number(1)}})
	require.Error(t, err)
	//
	var unknown *formula.UnknownVariableError
	assert.ErrorAs(t, err, &unknown)
}

func TestExecutor_EmptyRows(t *testing.T) {
	batch := NewBatch()
	batch.Add("y", "x * 2")
	//
	results := run(t, batch, nil)
	//
	assert.Empty(t, results.Column("y"))
	assert.Empty(t, results.Faults())
}

func TestExecutor_EmptyBatch(t *testing.T) {
	results := run(t, NewBatch(), []Row{{"x": formula.Number(1)}})
	//
	assert.Empty(t, results.Targets())
	assert.Empty(t, results.Faults())
}

func TestExecutor_DoesNotMutateInputRows(t *testing.T) {
	batch := NewBatch()
	batch.Add("y", "x * 2")
	//
	rows := []Row{{"x": formula.Number(1)}}
	//
	run(t, batch, rows)
	// Derived columns never leak back into the caller's rows.
	_, ok := rows[0]["y"]
	assert.False(t, ok)
	assert.Len(t, rows[0], 1)
}

func TestExecutor_WorkerLimit(t *testing.T) {
	compiler := formula.NewCompiler(0)
	executor := NewExecutor(compiler, WithWorkers(1))
	//
	batch := NewBatch()
	batch.Add("y", "x + 1")
	//
	rows := make([]Row, 100)
	for i := range rows {
		rows[i] = Row{"x": formula.Number(float64(i))}
	}
	//
	results, err := executor.Run(context.Background(), batch, rows)
	require.NoError(t, err)
	//
	for i := range rows {
		assert.Equal(t, formula.Number(float64(i+1)), results.Column("y")[i])
	}
}

func TestExecutor_CancelledContext(t *testing.T) {
	compiler := formula.NewCompiler(0)
	executor := NewExecutor(compiler)
	//
	batch := NewBatch()
	batch.Add("y", "x + 1")
	//
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	//
	_, err := executor.Run(ctx, batch, []Row{{"x": formula.Number(1)}})
	assert.ErrorIs(t, err, context.Canceled)
}

// ===================================================================

func run(t *testing.T, batch *Batch, rows []Row) *Results {
	compiler := formula.NewCompiler(0)
	executor := NewExecutor(compiler)
	//
	results, err := executor.Run(context.Background(), batch, rows)
	require.NoError(t, err)
	//
	return results
}

func column(values ...float64) []formula.Value {
	column := make([]formula.Value, len(values))
	//
	for i, x := range values {
		column[i] = formula.Number(x)
	}
	//
	return column
}

func nulls(n int) []formula.Value {
	column := make([]formula.Value, n)
	//
	for i := range column {
		column[i] = formula.Null{}
	}
	//
	return column
}
