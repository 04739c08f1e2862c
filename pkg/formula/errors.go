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

// SyntaxError is a structured error which retains the span within the
// original formula text where an error occurred, along with an error message.
type SyntaxError struct {
	// Text of formula being parsed.
	text string
	// Character range within text where error arose.
	span Span
	// Error message being reported.
	msg string
}

// Text returns the formula text on which this error was reported.
func (p *SyntaxError) Text() string {
	return p.text
}

// Span returns the span of the original text on which this error is reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d:%s in %q", p.span.Start(), p.span.End(), p.msg, p.text)
}

// UnknownVariableError indicates a formula referred to a name bound neither
// by the row nor by the aggregate overlay.
type UnknownVariableError struct {
	// Name of the offending variable.
	Name string
}

// Error implements the error interface.
func (p *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable %q", p.Name)
}

// UnknownFunctionError indicates a formula called a name which is not in the
// function library.
type UnknownFunctionError struct {
	// Name of the offending function.
	Name string
}

// Error implements the error interface.
func (p *UnknownFunctionError) Error() string {
	return fmt.Sprintf("function %q is not allowed", p.Name)
}

// ArityError indicates a library function was called with an unsupported
// number of arguments.
type ArityError struct {
	// Name of function being called.
	Fn string
	// Number of arguments given.
	Given int
	// Description of acceptable arities (e.g. "1 or 2").
	Expected string
}

// Error implements the error interface.
func (p *ArityError) Error() string {
	return fmt.Sprintf("%s expects %s argument(s), got %d", p.Fn, p.Expected, p.Given)
}

// ShapeError indicates a vector-aware function was applied to a value of the
// wrong shape (e.g. a scalar where a one-dimensional vector was required, or
// two vectors of differing length).
type ShapeError struct {
	// Name of function being called.
	Fn string
	// Description of the shape violation.
	Msg string
}

// Error implements the error interface.
func (p *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", p.Fn, p.Msg)
}

// TypeError indicates an operator or function was applied to operands of an
// unsupported kind (e.g. adding a boolean to a number).
type TypeError struct {
	// Description of the violation.
	Msg string
}

// Error implements the error interface.
func (p *TypeError) Error() string {
	return p.Msg
}

// Construct a type error for a binary operator applied to bad operands.
func typeErrorf(format string, args ...any) *TypeError {
	return &TypeError{fmt.Sprintf(format, args...)}
}
