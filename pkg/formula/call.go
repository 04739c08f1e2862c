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
	"strings"
)

// Call represents the application of a library function to zero or more
// argument expressions.  Call targets are always bare names: the grammar
// rejects computed targets outright, so by construction a Call can only ever
// dispatch into the (closed) function library.
type Call struct {
	// Name of function being called, exactly as written.  Dispatch at
	// evaluation time is by exact name.
	Name string
	Args []Expr
}

// Eval implementation for the Expr interface.  A Null argument makes the
// whole result Null without dispatching, so the "not applicable" sentinel
// propagates through nested calls.
func (p *Call) Eval(env *Environment) (Value, error) {
	fn, ok := LookupFunction(p.Name)
	if !ok {
		return nil, &UnknownFunctionError{p.Name}
	}
	// Evaluate arguments
	args := make([]Value, len(p.Args))
	//
	for i, arg := range p.Args {
		val, err := arg.Eval(env)
		if err != nil {
			return nil, err
		} else if IsNull(val) {
			return Null{}, nil
		}
		//
		args[i] = val
	}
	//
	return fn.Apply(args)
}

func (p *Call) String() string {
	var builder strings.Builder
	//
	for i, arg := range p.Args {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(arg.String())
	}
	//
	return fmt.Sprintf("%s(%s)", p.Name, builder.String())
}

func (p *Call) walk(fn func(Expr)) {
	fn(p)
	//
	for _, arg := range p.Args {
		arg.walk(fn)
	}
}
