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

// Span identifies a contiguous range of characters within the formula text
// being parsed.  This is used for reporting syntax errors.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a span covering the given (half-open) character range.
func NewSpan(start, end int) Span {
	return Span{start, end}
}

// Start returns the index of the first character covered by this span.
func (p Span) Start() int {
	return p.start
}

// End returns the first character index not covered by this span.
func (p Span) End() int {
	return p.end
}

// Token kinds produced by the lexer.
const (
	// TokenEOF signals the end of the formula text.
	TokenEOF uint = iota
	// TokenNumber is a numeric literal (e.g. "1", "2.5", "1e-3").
	TokenNumber
	// TokenString is a quoted string literal.
	TokenString
	// TokenIdentifier is a bare name (variable or function).
	TokenIdentifier
	// TokenLeftParen is "(".
	TokenLeftParen
	// TokenRightParen is ")".
	TokenRightParen
	// TokenComma is ",".
	TokenComma
	// TokenPlus is "+".
	TokenPlus
	// TokenMinus is "-".
	TokenMinus
	// TokenStar is "*".
	TokenStar
	// TokenStarStar is "**".
	TokenStarStar
	// TokenSlash is "/".
	TokenSlash
	// TokenEqualsEquals is "==".
	TokenEqualsEquals
	// TokenNotEquals is "!=".
	TokenNotEquals
	// TokenLessThan is "<".
	TokenLessThan
	// TokenLessEquals is "<=".
	TokenLessEquals
	// TokenGreaterThan is ">".
	TokenGreaterThan
	// TokenGreaterEquals is ">=".
	TokenGreaterEquals
)

// Token associates a token kind with a given range of characters in the
// formula text being scanned.
type Token struct {
	Kind uint
	Span Span
}
