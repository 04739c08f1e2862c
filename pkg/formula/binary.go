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

// BinaryOp identifies one of the supported binary arithmetic operators.
type BinaryOp uint

const (
	// AddOp is "+".
	AddOp BinaryOp = iota
	// SubOp is "-".
	SubOp
	// MulOp is "*".
	MulOp
	// DivOp is "/".  Division by zero follows IEEE-754 semantics, producing
	// an infinity or NaN rather than an error.
	DivOp
	// PowOp is "**".
	PowOp
)

// Symbol returns the concrete syntax for this operator.
func (op BinaryOp) Symbol() string {
	switch op {
	case AddOp:
		return "+"
	case SubOp:
		return "-"
	case MulOp:
		return "*"
	case DivOp:
		return "/"
	case PowOp:
		return "**"
	}
	// Unreachable given the closed set above.
	panic("unknown binary operator")
}

// Binary represents the application of an arithmetic operator to two numeric
// subexpressions.
type Binary struct {
	Op  BinaryOp
	Lhs Expr
	Rhs Expr
}

// Eval implementation for the Expr interface.  A Null operand makes the whole
// result Null, so the "not applicable" sentinel propagates through derived
// formulas.
func (p *Binary) Eval(env *Environment) (Value, error) {
	lhs, err := p.Lhs.Eval(env)
	if err != nil {
		return nil, err
	}
	//
	rhs, err := p.Rhs.Eval(env)
	if err != nil {
		return nil, err
	}
	//
	if IsNull(lhs) || IsNull(rhs) {
		return Null{}, nil
	}
	//
	l, lok := lhs.(Number)
	r, rok := rhs.(Number)
	//
	if !lok || !rok {
		return nil, typeErrorf("operator %s requires numbers (got %s and %s)",
			p.Op.Symbol(), lhs.Kind(), rhs.Kind())
	}
	//
	switch p.Op {
	case AddOp:
		return l + r, nil
	case SubOp:
		return l - r, nil
	case MulOp:
		return l * r, nil
	case DivOp:
		return l / r, nil
	case PowOp:
		return Number(math.Pow(float64(l), float64(r))), nil
	}
	// Unreachable given the closed set above.
	panic("unknown binary operator")
}

func (p *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Lhs, p.Op.Symbol(), p.Rhs)
}

func (p *Binary) walk(fn func(Expr)) {
	fn(p)
	p.Lhs.walk(fn)
	p.Rhs.walk(fn)
}
