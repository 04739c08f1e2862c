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
	"html"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheCapacity is the number of distinct formulas retained by a
// compiler's parse cache unless configured otherwise.
const DefaultCacheCapacity uint = 1024

// Compiler parses formulas into expression trees, memoising the result in a
// bounded least-recently-used cache.  A compiler is safe for concurrent use:
// the cache guards its own state, and the trees it hands out are immutable,
// so an entry being evicted cannot affect a caller already holding it.
//
// Formula text is decoded for markup entities before parsing (and before
// cache keying), so formulas transported through markup-safe channels (e.g.
// "a &gt; b") compile correctly.
type Compiler struct {
	cache *lru.Cache[string, Expr]
}

// NewCompiler constructs a compiler with a parse cache of a given capacity.
func NewCompiler(capacity uint) *Compiler {
	if capacity == 0 {
		capacity = DefaultCacheCapacity
	}
	// Only fails for a non-positive capacity, which is excluded above.
	cache, err := lru.New[string, Expr](int(capacity))
	if err != nil {
		panic(err)
	}
	//
	return &Compiler{cache}
}

// Compile a given formula into an expression tree, or return a syntax error
// if the text is malformed.  Two formulas with identical (post-decode) text
// always yield the same tree.
func (p *Compiler) Compile(text string) (Expr, error) {
	text = html.UnescapeString(text)
	//
	if expr, ok := p.cache.Get(text); ok {
		return expr, nil
	}
	//
	expr, err := Parse(text)
	if err != nil {
		return nil, err
	}
	// Concurrent compiles of the same text may race to this point; both
	// parses yield equivalent immutable trees, so whichever insertion wins is
	// irrelevant to either caller.
	p.cache.Add(text, expr)
	//
	return expr, nil
}

// Evaluate is a convenience which compiles a given formula and immediately
// evaluates it within a given environment.
func (p *Compiler) Evaluate(text string, env *Environment) (Value, error) {
	expr, err := p.Compile(text)
	if err != nil {
		return nil, err
	}
	//
	return expr.Eval(env)
}
