package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeIdentifiers_1(t *testing.T) {
	checkFreeIdentifiers(t, "a + b * c", "a", "b", "c")
}

func TestFreeIdentifiers_2(t *testing.T) {
	// Function names are not identifiers.
	checkFreeIdentifiers(t, "sqrt(x) + pow(y, 2)", "x", "y")
}

func TestFreeIdentifiers_3(t *testing.T) {
	// Each name is reported once, in sorted order.
	checkFreeIdentifiers(t, "x * x + x", "x")
}

func TestFreeIdentifiers_4(t *testing.T) {
	checkFreeIdentifiers(t, "1 + 2")
}

func TestFreeIdentifiers_5(t *testing.T) {
	// A bare reference spelled like a library function is shadowed by it.
	checkFreeIdentifiers(t, "SUM(sales) + max", "sales")
}

func TestAggregateDependencies_1(t *testing.T) {
	deps := parseAggregateDependencies(t, "SUM(x) + AVG(y)")
	//
	assert.Equal(t, []AggregateDependency{{"AVG", "y"}, {"SUM", "x"}}, deps)
}

func TestAggregateDependencies_2(t *testing.T) {
	// An aggregate over a computed expression cannot be satisfied by a
	// per-column precomputation, so it is not reported.
	deps := parseAggregateDependencies(t, "SUM(x * 2)")
	//
	assert.Empty(t, deps)
}

func TestAggregateDependencies_3(t *testing.T) {
	// Detection is case-insensitive, emitting the canonical uppercase name.
	deps := parseAggregateDependencies(t, "sum(x) + Min(y)")
	//
	assert.Equal(t, []AggregateDependency{{"MIN", "y"}, {"SUM", "x"}}, deps)
}

func TestAggregateDependencies_4(t *testing.T) {
	// Duplicates collapse.
	deps := parseAggregateDependencies(t, "SUM(x) / SUM(x)")
	//
	assert.Equal(t, []AggregateDependency{{"SUM", "x"}}, deps)
}

func TestAggregateDependencies_5(t *testing.T) {
	// Non-aggregate calls are ignored, as are aggregates of the wrong arity.
	deps := parseAggregateDependencies(t, "sqrt(x) + min(a, b)")
	//
	assert.Empty(t, deps)
}

func TestAggregateDependencyKey(t *testing.T) {
	dep := AggregateDependency{"SUM", "sales"}
	//
	assert.Equal(t, "SUM_sales", dep.Key())
}

func TestUsesScenarioFunction_1(t *testing.T) {
	checkScenario(t, "DOT(margin, qty)", true)
	checkScenario(t, "NORM(xs) * 2", true)
}

func TestUsesScenarioFunction_2(t *testing.T) {
	checkScenario(t, "price * qty", false)
	checkScenario(t, "SUM(sales) / COUNT(sales)", false)
}

func TestUsesScenarioFunction_3(t *testing.T) {
	// Case-insensitive, matching how collaborators spell these calls.
	checkScenario(t, "dot(a, b)", true)
	checkScenario(t, "norm(a)", true)
}

func TestUsesScenarioFunction_4(t *testing.T) {
	// Nested occurrences still count.
	checkScenario(t, "1 + abs(DOT(a, b))", true)
}

// ===================================================================

func checkFreeIdentifiers(t *testing.T, text string, expected ...string) {
	expr, err := Parse(text)
	require.NoError(t, err)
	//
	idents := FreeIdentifiers(expr)
	//
	if expected == nil {
		assert.Empty(t, idents.Slice())
	} else {
		assert.Equal(t, expected, idents.Slice())
	}
}

func parseAggregateDependencies(t *testing.T, text string) []AggregateDependency {
	expr, err := Parse(text)
	require.NoError(t, err)
	//
	return AggregateDependencies(expr)
}

func checkScenario(t *testing.T, text string, expected bool) {
	expr, err := Parse(text)
	require.NoError(t, err)
	//
	assert.Equal(t, expected, UsesScenarioFunction(expr))
}
