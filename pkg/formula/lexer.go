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

import "unicode"

// Lexer turns a formula string into a stream of tokens.  Whitespace is
// discarded; everything else must match exactly one token rule, otherwise a
// syntax error is reported.
type lexer struct {
	// Text being scanned.
	text []rune
	// Current position within text.
	index int
}

func newLexer(text string) *lexer {
	return &lexer{
		text:  []rune(text),
		index: 0,
	}
}

// Slice returns the characters covered by a given span.
func (p *lexer) slice(span Span) string {
	return string(p.text[span.Start():span.End()])
}

// Next scans the next token, or reports a syntax error on an unexpected
// character.  Once the input is exhausted, TokenEOF is returned indefinitely.
func (p *lexer) next() (Token, *SyntaxError) {
	p.skipWhitespace()
	//
	start := p.index
	//
	if p.index >= len(p.text) {
		return Token{TokenEOF, NewSpan(start, start)}, nil
	}
	//
	c := p.text[p.index]
	//
	switch {
	case c == '(':
		return p.token(TokenLeftParen, 1), nil
	case c == ')':
		return p.token(TokenRightParen, 1), nil
	case c == ',':
		return p.token(TokenComma, 1), nil
	case c == '+':
		return p.token(TokenPlus, 1), nil
	case c == '-':
		return p.token(TokenMinus, 1), nil
	case c == '*':
		if p.lookahead(1) == '*' {
			return p.token(TokenStarStar, 2), nil
		}
		//
		return p.token(TokenStar, 1), nil
	case c == '/':
		return p.token(TokenSlash, 1), nil
	case c == '=':
		if p.lookahead(1) == '=' {
			return p.token(TokenEqualsEquals, 2), nil
		}
		//
		return Token{}, p.error(NewSpan(start, start+1), "assignment is not supported")
	case c == '!':
		if p.lookahead(1) == '=' {
			return p.token(TokenNotEquals, 2), nil
		}
		//
		return Token{}, p.error(NewSpan(start, start+1), "unexpected character '!'")
	case c == '<':
		if p.lookahead(1) == '=' {
			return p.token(TokenLessEquals, 2), nil
		}
		//
		return p.token(TokenLessThan, 1), nil
	case c == '>':
		if p.lookahead(1) == '=' {
			return p.token(TokenGreaterEquals, 2), nil
		}
		//
		return p.token(TokenGreaterThan, 1), nil
	case c == '\'' || c == '"':
		return p.scanString(c)
	case unicode.IsDigit(c):
		return p.scanNumber(), nil
	case isIdentifierStart(c):
		return p.scanIdentifier(), nil
	}
	//
	return Token{}, p.error(NewSpan(start, start+1), "unexpected character "+string('\'')+string(c)+string('\''))
}

func (p *lexer) token(kind uint, width int) Token {
	span := NewSpan(p.index, p.index+width)
	p.index += width
	//
	return Token{kind, span}
}

func (p *lexer) lookahead(i int) rune {
	if p.index+i < len(p.text) {
		return p.text[p.index+i]
	}
	//
	return 0
}

func (p *lexer) skipWhitespace() {
	for p.index < len(p.text) && unicode.IsSpace(p.text[p.index]) {
		p.index++
	}
}

// Scan a numeric literal: digits, optionally followed by a fractional part
// and/or an exponent.
func (p *lexer) scanNumber() Token {
	start := p.index
	//
	for p.index < len(p.text) && unicode.IsDigit(p.text[p.index]) {
		p.index++
	}
	// Fractional part
	if p.lookahead(0) == '.' && unicode.IsDigit(p.lookahead(1)) {
		p.index++
		//
		for p.index < len(p.text) && unicode.IsDigit(p.text[p.index]) {
			p.index++
		}
	}
	// Exponent part
	if c := p.lookahead(0); c == 'e' || c == 'E' {
		i := 1
		if c := p.lookahead(1); c == '+' || c == '-' {
			i = 2
		}
		//
		if unicode.IsDigit(p.lookahead(i)) {
			p.index += i
			//
			for p.index < len(p.text) && unicode.IsDigit(p.text[p.index]) {
				p.index++
			}
		}
	}
	//
	return Token{TokenNumber, NewSpan(start, p.index)}
}

// Scan a string literal delimited by a given quote character.  The reported
// span covers the quotes; the parser strips them.
func (p *lexer) scanString(quote rune) (Token, *SyntaxError) {
	start := p.index
	p.index++
	//
	for p.index < len(p.text) {
		if p.text[p.index] == quote {
			p.index++
			return Token{TokenString, NewSpan(start, p.index)}, nil
		}
		//
		p.index++
	}
	//
	return Token{}, p.error(NewSpan(start, p.index), "unterminated string literal")
}

func (p *lexer) scanIdentifier() Token {
	start := p.index
	//
	for p.index < len(p.text) && isIdentifierPart(p.text[p.index]) {
		p.index++
	}
	//
	return Token{TokenIdentifier, NewSpan(start, p.index)}
}

func isIdentifierStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentifierPart(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

// Construct a syntax error at a given position in the input stream.
func (p *lexer) error(span Span, msg string) *SyntaxError {
	return &SyntaxError{string(p.text), span, msg}
}
