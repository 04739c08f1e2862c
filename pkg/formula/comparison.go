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

import "strings"

// Comparator identifies one of the supported comparison operators.
type Comparator uint

const (
	// EqualsComparator is "==".
	EqualsComparator Comparator = iota
	// NotEqualsComparator is "!=".
	NotEqualsComparator
	// LessThanComparator is "<".
	LessThanComparator
	// LessEqualsComparator is "<=".
	LessEqualsComparator
	// GreaterThanComparator is ">".
	GreaterThanComparator
	// GreaterEqualsComparator is ">=".
	GreaterEqualsComparator
)

// Symbol returns the concrete syntax for this comparator.
func (c Comparator) Symbol() string {
	switch c {
	case EqualsComparator:
		return "=="
	case NotEqualsComparator:
		return "!="
	case LessThanComparator:
		return "<"
	case LessEqualsComparator:
		return "<="
	case GreaterThanComparator:
		return ">"
	case GreaterEqualsComparator:
		return ">="
	}
	// Unreachable given the closed set above.
	panic("unknown comparator")
}

// Comparison represents a chain of one or more comparisons, with relational
// chaining semantics: "a < b < c" holds iff both "a < b" and "b < c" hold.
// The chain is evaluated left to right and short-circuits on the first pair
// which does not hold.  Invariant: len(Operands) == len(Ops) + 1.
type Comparison struct {
	Operands []Expr
	Ops      []Comparator
}

// Eval implementation for the Expr interface.
func (p *Comparison) Eval(env *Environment) (Value, error) {
	lhs, err := p.Operands[0].Eval(env)
	if err != nil {
		return nil, err
	}
	//
	for i, op := range p.Ops {
		rhs, err := p.Operands[i+1].Eval(env)
		if err != nil {
			return nil, err
		}
		//
		if IsNull(lhs) || IsNull(rhs) {
			return Null{}, nil
		}
		//
		holds, err := compare(op, lhs, rhs)
		if err != nil {
			return nil, err
		} else if !holds {
			// Short-circuit: remaining operands are not evaluated.
			return Boolean(false), nil
		}
		//
		lhs = rhs
	}
	//
	return Boolean(true), nil
}

func (p *Comparison) String() string {
	var builder strings.Builder
	//
	builder.WriteString(p.Operands[0].String())
	//
	for i, op := range p.Ops {
		builder.WriteString(" ")
		builder.WriteString(op.Symbol())
		builder.WriteString(" ")
		builder.WriteString(p.Operands[i+1].String())
	}
	//
	return builder.String()
}

func (p *Comparison) walk(fn func(Expr)) {
	fn(p)
	//
	for _, operand := range p.Operands {
		operand.walk(fn)
	}
}

// Compare two values under a given comparator.  Equality is defined across
// all kinds (values of differing kinds are simply unequal); orderings are
// defined for numbers and text only.
func compare(op Comparator, lhs, rhs Value) (bool, error) {
	switch op {
	case EqualsComparator:
		return equalValues(lhs, rhs), nil
	case NotEqualsComparator:
		return !equalValues(lhs, rhs), nil
	}
	// Orderings
	if l, ok := lhs.(Number); ok {
		if r, ok := rhs.(Number); ok {
			return orderedNumbers(op, l, r), nil
		}
	}
	//
	if l, ok := lhs.(Text); ok {
		if r, ok := rhs.(Text); ok {
			return orderedText(op, l, r), nil
		}
	}
	//
	return false, typeErrorf("operator %s requires two numbers or two strings (got %s and %s)",
		op.Symbol(), lhs.Kind(), rhs.Kind())
}

func equalValues(lhs, rhs Value) bool {
	switch l := lhs.(type) {
	case Number:
		r, ok := rhs.(Number)
		return ok && l == r
	case Boolean:
		r, ok := rhs.(Boolean)
		return ok && l == r
	case Text:
		r, ok := rhs.(Text)
		return ok && l == r
	}
	// Vectors are deliberately not comparable.
	return false
}

func orderedNumbers(op Comparator, l, r Number) bool {
	switch op {
	case LessThanComparator:
		return l < r
	case LessEqualsComparator:
		return l <= r
	case GreaterThanComparator:
		return l > r
	default:
		return l >= r
	}
}

func orderedText(op Comparator, l, r Text) bool {
	switch op {
	case LessThanComparator:
		return l < r
	case LessEqualsComparator:
		return l <= r
	case GreaterThanComparator:
		return l > r
	default:
		return l >= r
	}
}
