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
	"math"
)

// Function identifies one of the library functions callable from a formula.
// The set is closed: adding a function means adding a variant here, not
// inserting into a registry, so an unvetted callable cannot appear at
// runtime.
type Function uint

const (
	// Pow squares its argument when given one argument, and exponentiates
	// when given two.
	Pow Function = iota
	// Sqrt takes the square root of its argument.  For a negative argument
	// it produces the Null sentinel rather than an error.
	Sqrt
	// Abs takes the absolute value of a number.
	Abs
	// Min takes the minimum element of a vector (one argument), or the
	// smaller of two numbers (two arguments).
	Min
	// Max takes the maximum element of a vector (one argument), or the
	// larger of two numbers (two arguments).
	Max
	// Sum adds the elements of a vector, skipping NaN entries.
	Sum
	// Avg takes the mean of a vector's non-NaN elements, producing 0 when
	// there are none.
	Avg
	// Count returns the number of elements in a vector, including NaN
	// entries.
	Count
	// Dot takes the dot product of two equal-length vectors, skipping any
	// pair with a NaN member.
	Dot
	// Norm takes the Euclidean (L2) norm of a vector, skipping NaN entries.
	Norm
)

// The function library, keyed by the exact spelling used in formulas.  The
// scalar helpers are lowercase and the vector aggregates uppercase, matching
// the column-aggregate naming convention (SUM_sales etc.) used by data-layer
// collaborators.
var functions = map[string]Function{
	"pow":   Pow,
	"sqrt":  Sqrt,
	"abs":   Abs,
	"min":   Min,
	"max":   Max,
	"SUM":   Sum,
	"AVG":   Avg,
	"COUNT": Count,
	"DOT":   Dot,
	"NORM":  Norm,
}

// LookupFunction resolves a name against the function library.  Resolution is
// by exact name.
func LookupFunction(name string) (Function, bool) {
	fn, ok := functions[name]
	return fn, ok
}

// IsFunctionName checks whether a given name is bound in the function
// library, and hence is not a free variable when it appears as a call target.
func IsFunctionName(name string) bool {
	_, ok := functions[name]
	return ok
}

// Name returns the spelling under which this function is registered.
func (fn Function) Name() string {
	switch fn {
	case Pow:
		return "pow"
	case Sqrt:
		return "sqrt"
	case Abs:
		return "abs"
	case Min:
		return "min"
	case Max:
		return "max"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	case Count:
		return "COUNT"
	case Dot:
		return "DOT"
	case Norm:
		return "NORM"
	}
	// Unreachable given the closed set above.
	panic("unknown function")
}

// Apply this function to a given set of (non-Null) argument values.
func (fn Function) Apply(args []Value) (Value, error) {
	switch fn {
	case Pow:
		return applyPow(args)
	case Sqrt:
		return applySqrt(args)
	case Abs:
		return applyAbs(args)
	case Min:
		return applyMinMax("min", args, math.Min)
	case Max:
		return applyMinMax("max", args, math.Max)
	case Sum:
		return applySum(args)
	case Avg:
		return applyAvg(args)
	case Count:
		return applyCount(args)
	case Dot:
		return applyDot(args)
	case Norm:
		return applyNorm(args)
	}
	// Unreachable given the closed set above.
	panic("unknown function")
}

// ============================================================================
// Scalar helpers
// ============================================================================

func applyPow(args []Value) (Value, error) {
	switch len(args) {
	case 1:
		x, err := numberArg("pow", args, 0)
		if err != nil {
			return nil, err
		}
		//
		return x * x, nil
	case 2:
		x, err := numberArg("pow", args, 0)
		if err != nil {
			return nil, err
		}
		//
		y, err := numberArg("pow", args, 1)
		if err != nil {
			return nil, err
		}
		//
		return Number(math.Pow(float64(x), float64(y))), nil
	default:
		return nil, &ArityError{"pow", len(args), "1 or 2"}
	}
}

func applySqrt(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, &ArityError{"sqrt", len(args), "1"}
	}
	//
	x, err := numberArg("sqrt", args, 0)
	if err != nil {
		return nil, err
	}
	// A negative argument is "not applicable", not an error, so that callers
	// can skip the downstream formulas which depend on it.
	if x < 0 {
		return Null{}, nil
	}
	//
	return Number(math.Sqrt(float64(x))), nil
}

func applyAbs(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, &ArityError{"abs", len(args), "1"}
	}
	//
	x, err := numberArg("abs", args, 0)
	if err != nil {
		return nil, err
	}
	//
	return Number(math.Abs(float64(x))), nil
}

func applyMinMax(name string, args []Value, pick func(float64, float64) float64) (Value, error) {
	switch len(args) {
	case 1:
		// Collection form
		vec, err := vectorArg(name, args, 0)
		if err != nil {
			return nil, err
		} else if len(vec) == 0 {
			return Null{}, nil
		}
		//
		acc := vec[0]
		for _, x := range vec[1:] {
			acc = pick(acc, x)
		}
		//
		return Number(acc), nil
	case 2:
		// Pairwise form
		x, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		//
		y, err := numberArg(name, args, 1)
		if err != nil {
			return nil, err
		}
		//
		return Number(pick(float64(x), float64(y))), nil
	default:
		return nil, &ArityError{name, len(args), "1 or 2"}
	}
}

// ============================================================================
// Vector aggregates
// ============================================================================

func applySum(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, &ArityError{"SUM", len(args), "1"}
	}
	//
	vec, err := vectorArg("SUM", args, 0)
	if err != nil {
		return nil, err
	}
	//
	var sum float64
	//
	for _, x := range vec {
		if !math.IsNaN(x) {
			sum += x
		}
	}
	//
	return Number(sum), nil
}

func applyAvg(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, &ArityError{"AVG", len(args), "1"}
	}
	//
	vec, err := vectorArg("AVG", args, 0)
	if err != nil {
		return nil, err
	}
	//
	var (
		sum float64
		n   int
	)
	//
	for _, x := range vec {
		if !math.IsNaN(x) {
			sum += x
			n++
		}
	}
	// Mean of nothing is defined as zero.
	if n == 0 {
		return Number(0), nil
	}
	//
	return Number(sum / float64(n)), nil
}

func applyCount(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, &ArityError{"COUNT", len(args), "1"}
	}
	// NaN entries still count as elements.
	vec, err := vectorArg("COUNT", args, 0)
	if err != nil {
		return nil, err
	}
	//
	return Number(len(vec)), nil
}

func applyDot(args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, &ArityError{"DOT", len(args), "2"}
	}
	//
	lhs, err := vectorArg("DOT", args, 0)
	if err != nil {
		return nil, err
	}
	//
	rhs, err := vectorArg("DOT", args, 1)
	if err != nil {
		return nil, err
	}
	//
	if len(lhs) != len(rhs) {
		return nil, &ShapeError{"DOT", fmt.Sprintf("vector length mismatch (%d vs %d)", len(lhs), len(rhs))}
	}
	//
	var sum float64
	//
	for i := range lhs {
		if !math.IsNaN(lhs[i]) && !math.IsNaN(rhs[i]) {
			sum += lhs[i] * rhs[i]
		}
	}
	//
	return Number(sum), nil
}

func applyNorm(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, &ArityError{"NORM", len(args), "1"}
	}
	//
	vec, err := vectorArg("NORM", args, 0)
	if err != nil {
		return nil, err
	}
	//
	var sum float64
	//
	for _, x := range vec {
		if !math.IsNaN(x) {
			sum += x * x
		}
	}
	//
	return Number(math.Sqrt(sum)), nil
}

// ============================================================================
// Argument helpers
// ============================================================================

func numberArg(fn string, args []Value, i int) (Number, error) {
	if n, ok := args[i].(Number); ok {
		return n, nil
	}
	//
	return 0, &ShapeError{fn, fmt.Sprintf("argument %d must be a number (got %s)", i+1, args[i].Kind())}
}

func vectorArg(fn string, args []Value, i int) (Vector, error) {
	if v, ok := args[i].(Vector); ok {
		return v, nil
	}
	// Reject scalars (and anything else) explicitly, naming the offending
	// argument and its actual shape.
	return nil, &ShapeError{fn,
		fmt.Sprintf("argument %d must be a one-dimensional vector (got %s)", i+1, args[i].Kind())}
}
