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
	"strconv"
	"strings"
)

// Value represents any value which can arise during formula evaluation.  The
// set of implementations is closed: a value is either a Number, a Boolean, a
// Text string, a one-dimensional Vector or the Null sentinel.
type Value interface {
	fmt.Stringer
	// Kind returns a human-readable name for the shape of this value, as used
	// in error messages (e.g. "number", "vector").
	Kind() string
}

// Number is a scalar double-precision value.
type Number float64

// Boolean is a truth value, as produced by comparisons.
type Boolean bool

// Text is a string value.
type Text string

// Vector is a one-dimensional sequence of double-precision values.
type Vector []float64

// Null is the "not applicable here" sentinel.  It is deliberately not an
// error: a formula whose result is Null is mathematically undefined for the
// given row (e.g. the square root of a negative discriminant) and downstream
// consumers are expected to skip it.
type Null struct{}

// Kind implementation for the Value interface.
func (v Number) Kind() string { return "number" }

// Kind implementation for the Value interface.
func (v Boolean) Kind() string { return "boolean" }

// Kind implementation for the Value interface.
func (v Text) Kind() string { return "text" }

// Kind implementation for the Value interface.
func (v Vector) Kind() string { return "vector" }

// Kind implementation for the Value interface.
func (v Null) Kind() string { return "null" }

func (v Number) String() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}

func (v Boolean) String() string {
	return strconv.FormatBool(bool(v))
}

func (v Text) String() string {
	return string(v)
}

func (v Vector) String() string {
	var builder strings.Builder
	//
	builder.WriteString("[")
	//
	for i, x := range v {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	//
	builder.WriteString("]")
	//
	return builder.String()
}

func (v Null) String() string {
	return "null"
}

// IsNull checks whether a given value is the Null sentinel.
func IsNull(v Value) bool {
	_, ok := v.(Null)
	return ok
}

// Environment provides the name bindings visible during a single evaluation.
// Row bindings always take precedence over aggregate bindings on a name
// collision.  Environments are owned by the caller and never mutated by the
// evaluator.
type Environment struct {
	// Row maps column names to the values of one record.
	Row map[string]Value
	// Aggregates maps precomputed aggregate keys (e.g. "SUM_sales") to their
	// values.  May be nil.
	Aggregates map[string]Value
}

// NewEnvironment constructs an environment over a given row with no aggregate
// overlay.
func NewEnvironment(row map[string]Value) *Environment {
	return &Environment{Row: row}
}

// Lookup resolves a name against this environment, checking row bindings
// before the aggregate overlay.
func (p *Environment) Lookup(name string) (Value, bool) {
	if v, ok := p.Row[name]; ok {
		return v, true
	}
	//
	if p.Aggregates != nil {
		if v, ok := p.Aggregates[name]; ok {
			return v, true
		}
	}
	//
	return nil, false
}
