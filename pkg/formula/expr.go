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

import "fmt"

// Expr represents a node in a compiled formula.  The set of implementations
// is closed (constant, variable access, binary operator, negation, comparison
// chain and function call); the evaluator handles every kind explicitly, so
// there is no runtime catch-all for unsupported nodes.  Expressions are
// immutable after construction and may be shared freely across concurrent
// evaluations.
type Expr interface {
	fmt.Stringer
	// Eval this expression within a given environment, producing either a
	// value or an error.  Evaluation is pure: identical environments always
	// yield identical results.
	Eval(env *Environment) (Value, error)
	// Walk applies a given function to this node and (recursively) to all of
	// its children.  This seals the interface and drives static analysis.
	walk(fn func(Expr))
}

// ============================================================================
// Constant
// ============================================================================

// Constant represents a literal value (number, string or boolean).
type Constant struct {
	Value Value
}

// Eval implementation for the Expr interface.
func (p *Constant) Eval(_ *Environment) (Value, error) {
	return p.Value, nil
}

func (p *Constant) String() string {
	if _, ok := p.Value.(Text); ok {
		return fmt.Sprintf("%q", p.Value.String())
	}
	//
	return p.Value.String()
}

func (p *Constant) walk(fn func(Expr)) {
	fn(p)
}

// ============================================================================
// VariableAccess
// ============================================================================

// VariableAccess represents a reference to a named column or aggregate.
type VariableAccess struct {
	Name string
}

// Eval implementation for the Expr interface.  Row bindings shadow aggregate
// bindings; a name bound by neither is an error.
func (p *VariableAccess) Eval(env *Environment) (Value, error) {
	if v, ok := env.Lookup(p.Name); ok {
		return v, nil
	}
	//
	return nil, &UnknownVariableError{p.Name}
}

func (p *VariableAccess) String() string {
	return p.Name
}

func (p *VariableAccess) walk(fn func(Expr)) {
	fn(p)
}

// ============================================================================
// Negate
// ============================================================================

// Negate represents the unary negation of a numeric expression.
type Negate struct {
	Arg Expr
}

// Eval implementation for the Expr interface.
func (p *Negate) Eval(env *Environment) (Value, error) {
	val, err := p.Arg.Eval(env)
	//
	if err != nil {
		return nil, err
	} else if IsNull(val) {
		return Null{}, nil
	} else if n, ok := val.(Number); ok {
		return -n, nil
	}
	//
	return nil, typeErrorf("cannot negate %s", val.Kind())
}

func (p *Negate) String() string {
	return fmt.Sprintf("-%s", p.Arg)
}

func (p *Negate) walk(fn func(Expr)) {
	fn(p)
	p.Arg.walk(fn)
}
