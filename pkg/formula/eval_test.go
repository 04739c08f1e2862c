package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalArithmetic(t *testing.T) {
	checkEval(t, "1 + 2", nil, Number(3))
	checkEval(t, "2 + 3 * 4", nil, Number(14))
	checkEval(t, "10 / 4", nil, Number(2.5))
	checkEval(t, "2 ** 10", nil, Number(1024))
	checkEval(t, "2 ** 3 ** 2", nil, Number(512))
	checkEval(t, "-2 ** 2", nil, Number(-4))
	checkEval(t, "(2 + 3) * 4", nil, Number(20))
	checkEval(t, "7 - 2 - 1", nil, Number(4))
}

func TestEvalDivisionByZero(t *testing.T) {
	// IEEE-754 semantics, not an error.
	checkEval(t, "1 / 0", nil, Number(math.Inf(1)))
	checkEval(t, "-1 / 0", nil, Number(math.Inf(-1)))
}

func TestEvalComparisons(t *testing.T) {
	checkEval(t, "1 < 2", nil, Boolean(true))
	checkEval(t, "2 <= 2", nil, Boolean(true))
	checkEval(t, "2 != 3", nil, Boolean(true))
	checkEval(t, "2 == 3", nil, Boolean(false))
	checkEval(t, "3 > 4", nil, Boolean(false))
	checkEval(t, "'abc' < 'abd'", nil, Boolean(true))
	checkEval(t, "'abc' == \"abc\"", nil, Boolean(true))
	checkEval(t, "true == true", nil, Boolean(true))
	// Values of differing kinds are simply unequal.
	checkEval(t, "1 == 'one'", nil, Boolean(false))
	checkEval(t, "1 != true", nil, Boolean(true))
}

func TestEvalChainedComparisons(t *testing.T) {
	checkEval(t, "1 < 2 < 3", nil, Boolean(true))
	checkEval(t, "3 < 2 < 5", nil, Boolean(false))
	checkEval(t, "1 <= 1 < 2 <= 2", nil, Boolean(true))
	checkEval(t, "5 > 4 > 4", nil, Boolean(false))
}

func TestEvalChainShortCircuits(t *testing.T) {
	// Once a pair fails, the remaining operands are not evaluated: the unknown
	// variable after the failing pair never surfaces.
	checkEval(t, "3 < 2 < nonexistent", nil, Boolean(false))
}

func TestEvalVariables(t *testing.T) {
	row := map[string]Value{"x": Number(3), "y": Number(4)}
	//
	checkEval(t, "x * y", row, Number(12))
	checkEval(t, "x < y", row, Boolean(true))
	checkEval(t, "sqrt(x * x + y * y)", row, Number(5))
}

func TestEvalUnknownVariable(t *testing.T) {
	err := checkEvalFails(t, "x + missing", map[string]Value{"x": Number(1)})
	//
	var unknown *UnknownVariableError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.Name)
}

func TestEvalUnknownFunction(t *testing.T) {
	err := checkEvalFails(t, "eval(1)", nil)
	//
	var unknown *UnknownFunctionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "eval", unknown.Name)
}

func TestEvalFunctionDispatchIsExactName(t *testing.T) {
	// The library registers "sqrt" and "SUM"; other casings do not dispatch.
	checkEvalFails(t, "SQRT(4)", nil)
	checkEvalFails(t, "sum(x)", map[string]Value{"x": Vector{1, 2}})
}

func TestEvalTypeErrors(t *testing.T) {
	var typeError *TypeError
	//
	err := checkEvalFails(t, "true + 1", nil)
	require.ErrorAs(t, err, &typeError)
	//
	err = checkEvalFails(t, "true < false", nil)
	require.ErrorAs(t, err, &typeError)
	//
	err = checkEvalFails(t, "-'text'", nil)
	require.ErrorAs(t, err, &typeError)
}

func TestEvalNullPropagation(t *testing.T) {
	row := map[string]Value{"d": Null{}, "x": Number(2)}
	// Arithmetic
	checkEval(t, "d + 1", row, Null{})
	checkEval(t, "x * d", row, Null{})
	checkEval(t, "-d", row, Null{})
	// Comparisons
	checkEval(t, "d < 1", row, Null{})
	// Calls: a Null argument short-circuits without dispatching.
	checkEval(t, "abs(d)", row, Null{})
	checkEval(t, "pow(d, x)", row, Null{})
	// Nested: sqrt of a negative yields Null, which then propagates.
	checkEval(t, "sqrt(0 - x) + 100", row, Null{})
}

func TestEvalQuadraticDiscriminant(t *testing.T) {
	// x^2 - 4x + 3 has roots 1 and 3.
	row := map[string]Value{"a": Number(1), "b": Number(-4), "c": Number(3)}
	//
	checkEval(t, "(-b + sqrt(pow(b) - 4 * a * c)) / (2 * a)", row, Number(3))
	checkEval(t, "(-b - sqrt(pow(b) - 4 * a * c)) / (2 * a)", row, Number(1))
	// x^2 + 1 has no real roots: the discriminant is negative, so the whole
	// formula is Null rather than an error.
	row = map[string]Value{"a": Number(1), "b": Number(0), "c": Number(1)}
	//
	checkEval(t, "(-b + sqrt(pow(b) - 4 * a * c)) / (2 * a)", row, Null{})
}

func TestEvalAggregateOverlay(t *testing.T) {
	env := &Environment{
		Row:        map[string]Value{"sales": Number(10)},
		Aggregates: map[string]Value{"SUM_sales": Number(100)},
	}
	//
	expr, err := Parse("sales / SUM_sales")
	require.NoError(t, err)
	//
	value, err := expr.Eval(env)
	require.NoError(t, err)
	assert.Equal(t, Number(0.1), value)
}

func TestEvalRowShadowsAggregate(t *testing.T) {
	env := &Environment{
		Row:        map[string]Value{"k": Number(1)},
		Aggregates: map[string]Value{"k": Number(2)},
	}
	//
	expr, err := Parse("k")
	require.NoError(t, err)
	//
	value, err := expr.Eval(env)
	require.NoError(t, err)
	assert.Equal(t, Number(1), value)
}

// ===================================================================

func checkEval(t *testing.T, text string, row map[string]Value, expected Value) {
	expr, err := Parse(text)
	require.NoError(t, err, "parsing %q", text)
	//
	actual, err := expr.Eval(NewEnvironment(row))
	require.NoError(t, err, "evaluating %q", text)
	assert.Equal(t, expected, actual, "evaluating %q", text)
}

func checkEvalFails(t *testing.T, text string, row map[string]Value) error {
	expr, err := Parse(text)
	require.NoError(t, err, "parsing %q", text)
	//
	_, err = expr.Eval(NewEnvironment(row))
	require.Error(t, err, "evaluating %q", text)
	//
	return err
}
