// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package token defines the Token produced by cc/lexer and a cyclic
// doubly-linked Chain of tokens. The macro engine and preprocessor pass
// token runs around as []Token slices; they do not use Chain.
package token

import "github.com/ccfront/ccfront/cc/source"

// Kind is the coarse classification of a Token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Keyword
	Literal
	Operator
	// Placemarker is the empty token the macro engine substitutes for an
	// empty macro argument on the left of "##" while building a macro
	// body, so the paste yields the right operand unchanged. It never
	// appears in the engine's output.
	Placemarker
	// Newline marks the end of a logical (post-continuation) source line;
	// the directive engine uses it to find the end of a directive's token
	// run.
	Newline
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "identifier"
	case Keyword:
		return "keyword"
	case Literal:
		return "literal"
	case Operator:
		return "operator"
	case Placemarker:
		return "placemarker"
	case Newline:
		return "newline"
	default:
		return "unknown"
	}
}

// LiteralKind further classifies a Kind == Literal Token.
type LiteralKind int

const (
	NotLiteral LiteralKind = iota
	Int
	UnsignedInt
	Long
	UnsignedLong
	LongLong
	UnsignedLongLong
	Float
	Double
	LongDouble
	Char
	String
)

// Token is one lexical unit of the input, after the character lexer's
// substate extraction but before (for Ident tokens) macro expansion.
type Token struct {
	Kind        Kind
	LiteralKind LiteralKind
	// Text is the semantic value: the identifier spelling, the operator
	// spelling, or for a Literal the already-unescaped value (e.g. the
	// decoded rune(s) of a character constant, the unescaped string
	// contents).
	Text string
	// Src is the original source spelling, kept separate from Text so
	// stringize (#) can reproduce the exact original text of a macro
	// argument rather than a re-escaped reconstruction.
	Src string
	Pos source.Position
	// Ref marks a token that was produced by (is "tainted" by) an expansion
	// of the macro named Text, preventing that same macro from expanding
	// again during rescanning — the self-reference discipline of
	// spec.md §9.
	Ref bool
	// NoExpand additionally blocks ANY macro expansion of this token
	// (used for the identity tokens the __func__/__FUNCTION__ builtins
	// expand to; tokens pasted together by ## do not set it).
	NoExpand bool
	// SpaceBefore records whether whitespace separated this token from its
	// predecessor on the source line, needed to reproduce correct spacing
	// when stringizing a macro argument.
	SpaceBefore bool
	// Directive marks a "#" operator token that introduces a preprocessor
	// directive line (it was the first non-whitespace character of its
	// logical line), distinguishing it from an ordinary "#" operator
	// token produced mid-line (e.g. by token-paste or inside a macro
	// body).
	Directive bool
}

// IsIdent reports whether the token could be a macro name (an identifier
// or a promoted keyword both qualify, since keywords keep their spelling).
func (t Token) IsIdent() bool {
	return t.Kind == Ident || t.Kind == Keyword
}
