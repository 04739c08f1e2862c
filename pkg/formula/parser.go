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

import "strconv"

// Parse a given formula into an expression tree, or return a syntax error if
// the text is malformed.  The grammar is a single top-level expression: there
// are no statements, assignments or definitions.
func Parse(text string) (Expr, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	//
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	// Sanity check everything was parsed
	if p.lookahead.Kind != TokenEOF {
		return nil, p.error(p.lookahead.Span, "unexpected remainder")
	}
	//
	return expr, nil
}

// Parser represents a parser in the process of parsing a given formula,
// holding a one-token lookahead over the lexer.
type parser struct {
	lexer     *lexer
	lookahead Token
}

func newParser(text string) (*parser, *SyntaxError) {
	p := &parser{lexer: newLexer(text)}
	// Prime lookahead
	if err := p.advance(); err != nil {
		return nil, err
	}
	//
	return p, nil
}

func (p *parser) advance() *SyntaxError {
	tok, err := p.lexer.next()
	if err != nil {
		return err
	}
	//
	p.lookahead = tok
	//
	return nil
}

// Accept consumes the lookahead token if it has a given kind.
func (p *parser) accept(kind uint) (Token, bool, *SyntaxError) {
	tok := p.lookahead
	//
	if tok.Kind != kind {
		return tok, false, nil
	}
	//
	return tok, true, p.advance()
}

// ============================================================================
// Grammar rules, lowest precedence first.
// ============================================================================

// expression ::= additive { comparator additive }
func (p *parser) parseExpression() (Expr, *SyntaxError) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	//
	var (
		operands = []Expr{lhs}
		ops      []Comparator
	)
	// Collect the (possibly empty) comparison chain.
	for {
		op, ok := comparatorFor(p.lookahead.Kind)
		if !ok {
			break
		}
		//
		if err := p.advance(); err != nil {
			return nil, err
		}
		//
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		//
		operands = append(operands, rhs)
		ops = append(ops, op)
	}
	//
	if len(ops) == 0 {
		return lhs, nil
	}
	//
	return &Comparison{operands, ops}, nil
}

func comparatorFor(kind uint) (Comparator, bool) {
	switch kind {
	case TokenEqualsEquals:
		return EqualsComparator, true
	case TokenNotEquals:
		return NotEqualsComparator, true
	case TokenLessThan:
		return LessThanComparator, true
	case TokenLessEquals:
		return LessEqualsComparator, true
	case TokenGreaterThan:
		return GreaterThanComparator, true
	case TokenGreaterEquals:
		return GreaterEqualsComparator, true
	}
	//
	return 0, false
}

// additive ::= multiplicative { ("+" | "-") multiplicative }
func (p *parser) parseAdditive() (Expr, *SyntaxError) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	//
	for {
		var op BinaryOp
		//
		switch p.lookahead.Kind {
		case TokenPlus:
			op = AddOp
		case TokenMinus:
			op = SubOp
		default:
			return lhs, nil
		}
		//
		if err := p.advance(); err != nil {
			return nil, err
		}
		//
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		//
		lhs = &Binary{op, lhs, rhs}
	}
}

// multiplicative ::= unary { ("*" | "/") unary }
func (p *parser) parseMultiplicative() (Expr, *SyntaxError) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	//
	for {
		var op BinaryOp
		//
		switch p.lookahead.Kind {
		case TokenStar:
			op = MulOp
		case TokenSlash:
			op = DivOp
		default:
			return lhs, nil
		}
		//
		if err := p.advance(); err != nil {
			return nil, err
		}
		//
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		//
		lhs = &Binary{op, lhs, rhs}
	}
}

// unary ::= "-" unary | power
//
// Exponentiation binds tighter than unary minus on its left, so "-x ** 2"
// reads as "-(x ** 2)".
func (p *parser) parseUnary() (Expr, *SyntaxError) {
	if _, ok, err := p.accept(TokenMinus); err != nil {
		return nil, err
	} else if ok {
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		//
		return &Negate{arg}, nil
	}
	//
	return p.parsePower()
}

// power ::= primary [ "**" unary ]
//
// Exponentiation is right-associative, and permits a signed exponent (e.g.
// "2 ** -1").
func (p *parser) parsePower() (Expr, *SyntaxError) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	//
	if _, ok, err := p.accept(TokenStarStar); err != nil {
		return nil, err
	} else if ok {
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		//
		return &Binary{PowOp, lhs, rhs}, nil
	}
	//
	return lhs, nil
}

// primary ::= number | string | boolean | identifier [ "(" args ")" ] |
// "(" expression ")"
func (p *parser) parsePrimary() (Expr, *SyntaxError) {
	tok := p.lookahead
	//
	var expr Expr
	//
	switch tok.Kind {
	case TokenNumber:
		number, err := p.parseNumber(tok)
		if err != nil {
			return nil, err
		}
		//
		expr = number
	case TokenString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		// Strip the surrounding quotes.
		text := p.lexer.slice(tok.Span)
		expr = &Constant{Text(text[1 : len(text)-1])}
	case TokenIdentifier:
		ident, err := p.parseIdentifier(tok)
		if err != nil {
			return nil, err
		}
		//
		expr = ident
	case TokenLeftParen:
		group, err := p.parseParenthesised()
		if err != nil {
			return nil, err
		}
		//
		expr = group
	case TokenEOF:
		return nil, p.error(tok.Span, "unexpected end of formula")
	default:
		return nil, p.error(tok.Span, "unexpected token "+strconv.Quote(p.lexer.slice(tok.Span)))
	}
	// A call may only ever apply a bare function name.  Hence, any primary
	// other than an identifier followed by "(" is malformed (e.g. "(f)(x)" or
	// "2(x)").  This is a hard grammar restriction, not a runtime check.
	if p.lookahead.Kind == TokenLeftParen {
		return nil, p.error(p.lookahead.Span, "call target must be a bare function name")
	}
	//
	return expr, nil
}

func (p *parser) parseNumber(tok Token) (Expr, *SyntaxError) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	//
	number, err := strconv.ParseFloat(p.lexer.slice(tok.Span), 64)
	if err != nil {
		return nil, p.error(tok.Span, "malformed number")
	}
	//
	return &Constant{Number(number)}, nil
}

// Parse an identifier, which is either a boolean literal, a variable access
// or a function call.
func (p *parser) parseIdentifier(tok Token) (Expr, *SyntaxError) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	//
	name := p.lexer.slice(tok.Span)
	// Boolean literals (accepting both spellings, since formulas routinely
	// travel through systems which capitalise them).
	switch name {
	case "true", "True":
		return &Constant{Boolean(true)}, nil
	case "false", "False":
		return &Constant{Boolean(false)}, nil
	}
	// Function call?
	if _, ok, err := p.accept(TokenLeftParen); err != nil {
		return nil, err
	} else if ok {
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		//
		return &Call{name, args}, nil
	}
	//
	return &VariableAccess{name}, nil
}

// Parse a comma-separated argument list, consuming the closing parenthesis.
func (p *parser) parseArguments() ([]Expr, *SyntaxError) {
	var args []Expr
	// Check for empty argument list
	if _, ok, err := p.accept(TokenRightParen); err != nil || ok {
		return nil, err
	}
	//
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		//
		args = append(args, arg)
		//
		if _, ok, err := p.accept(TokenComma); err != nil {
			return nil, err
		} else if ok {
			continue
		}
		//
		if _, ok, err := p.accept(TokenRightParen); err != nil {
			return nil, err
		} else if !ok {
			return nil, p.error(p.lookahead.Span, "expected ',' or ')'")
		}
		//
		return args, nil
	}
}

func (p *parser) parseParenthesised() (Expr, *SyntaxError) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	//
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	//
	if _, ok, err := p.accept(TokenRightParen); err != nil {
		return nil, err
	} else if !ok {
		return nil, p.error(p.lookahead.Span, "expected ')'")
	}
	//
	return expr, nil
}

// Construct a parser error at a given position in the input stream.
func (p *parser) error(span Span, msg string) *SyntaxError {
	return &SyntaxError{string(p.lexer.text), span, msg}
}
