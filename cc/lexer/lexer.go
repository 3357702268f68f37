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

// Package lexer implements the character lexer: it turns the line array of
// the file on top of a cc/source.Stack into a stream of cc/token.Token
// values, joining backslash-continued physical lines into logical ones
// first (spec.md §4.1's StateNextLineCont) and recognizing '#' at the
// start of a logical line as the start of a preprocessor directive line.
//
// It reuses the teacher's chunked "prequalify, then extract" style
// (language/internal/cc/lexer/scanner.go's prequalifyToken/extract*Token
// functions), adapted from byte-chunk streaming over an io.Reader to
// whole-logical-line slices, since cc/source.File already holds the file
// as a materialized line array.
package lexer

import (
	"errors"
	"fmt"

	"github.com/ccfront/ccfront/cc/keyword"
	"github.com/ccfront/ccfront/cc/source"
	"github.com/ccfront/ccfront/cc/token"
)

var (
	ErrUnterminatedComment = errors.New("unterminated multi-line comment")
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedChar    = errors.New("unterminated character constant")
	ErrInvalidToken        = errors.New("invalid preprocessor token")
)

// Lexer drives one cc/source.Stack, yielding raw (unexpanded) tokens one
// at a time. It is single-threaded and holds no ownership over the stack
// itself — that belongs to the preprocessor, which pushes/pops files as
// #include/#include_next directives are processed.
type Lexer struct {
	stack *source.Stack

	// logical holds the current logical line (continuations already
	// joined, comments still present) with cur as the next byte offset to
	// scan from.
	logical string
	cur     int
	// atLineStart is true until the first non-directive-hash character of
	// a logical line has been produced, used to recognize '#' as starting
	// a directive rather than an ordinary operator token.
	atLineStart bool
	// startRow records the row where `logical` began, for Position
	// reporting once cur has advanced past the original line split points.
	startRow int
	// haveLine is true once a logical line has been loaded and its
	// closing token.Newline has not yet been handed out. It lets
	// NextRawToken emit exactly one Newline per logical-line boundary so
	// callers that need to know where a line ends (the directive engine's
	// collectLine) can tell it apart from an ordinary mid-line gap,
	// without the character lexer itself caring about line structure.
	haveLine bool

	// pending holds a single token pushed back via Unget, returned by the
	// next NextRawToken call before any further scanning happens. The
	// preprocessor uses it to hand back the token that ended a collected
	// run (EOF or a directive's "#") so the next call sees it again.
	pending *token.Token

	// allowDollar/escapeE mirror spec.md §6's configuration bits:
	// dollar_in_identifier lets '$' appear in identifiers (a common vendor
	// extension), escape_e makes '\e' decode to ASCII ESC inside string
	// and character literals.
	allowDollar bool
	escapeE     bool
}

// New returns a Lexer pulling raw tokens from stack. '$' in identifiers is
// accepted by default, matching most vendor toolchains' out-of-the-box
// behavior; SetDollarInIdentifier(false) restores strict ISO C rules.
func New(stack *source.Stack) *Lexer {
	return &Lexer{stack: stack, allowDollar: true}
}

// SetDollarInIdentifier toggles whether '$' is accepted as an identifier
// character.
func (l *Lexer) SetDollarInIdentifier(allow bool) { l.allowDollar = allow }

// SetEscapeE toggles whether '\e' inside a string or character literal
// decodes to the ASCII ESC character.
func (l *Lexer) SetEscapeE(enable bool) { l.escapeE = enable }

// Unget pushes tok back so the next NextRawToken call returns it again
// before resuming normal scanning. At most one token of pushback is
// supported.
func (l *Lexer) Unget(tok token.Token) { l.pending = &tok }

// AtDirectiveStart reports whether the next token, if it is the operator
// "#", should be treated as introducing a preprocessor directive line
// (i.e. no other token has been produced yet on the current logical
// line).
func (l *Lexer) AtDirectiveStart() bool {
	return l.atLineStart
}

// NextRawToken returns the next token from the current top-of-stack file.
// When that file is exhausted it returns a Kind==EOF token without
// popping the stack — callers (the preprocessor's directive engine) decide
// whether to pop and continue with the including file or stop.
func (l *Lexer) NextRawToken() (token.Token, error) {
	if l.pending != nil {
		tok := *l.pending
		l.pending = nil
		return tok, nil
	}

	spaceBefore := false
	for {
		if l.cur >= len(l.logical) {
			if l.haveLine {
				l.haveLine = false
				return token.Token{Kind: token.Newline, Pos: l.currentPos()}, nil
			}
			if !l.fillLogicalLine() {
				return token.Token{Kind: token.EOF, Pos: l.currentPos()}, nil
			}
		}

		tok, consumed, spaceSkipped, err := l.next()
		if err != nil {
			return token.Token{}, err
		}
		l.cur += consumed
		if tok == nil {
			// whitespace or comment: keep scanning this logical line, and
			// remember to mark the next real token SpaceBefore.
			if spaceSkipped {
				spaceBefore = true
			}
			continue
		}
		tok.SpaceBefore = spaceBefore
		return *tok, nil
	}
}

// fillLogicalLine advances to the next logical line of the top file,
// joining backslash-continued physical lines together, and returns false
// once the file has no more lines.
func (l *Lexer) fillLogicalLine() bool {
	joined, row, ok := l.nextJoinedLine()
	if !ok {
		return false
	}
	l.logical = joined
	l.cur = 0
	l.startRow = row
	l.atLineStart = true
	l.haveLine = true
	return true
}

// nextJoinedLine pulls one logical line (backslash-continued physical lines
// already spliced together, per spec.md §4.1's StateNextLineCont) from the
// active file, without touching any Lexer field. fillLogicalLine uses it to
// advance the normal scanning position; skipBlockComment uses it to keep
// pulling fresh lines while searching for an unterminated comment's closing
// "*/" across a file's own lines.
func (l *Lexer) nextJoinedLine() (joined string, startRow int, ok bool) {
	f := l.stack.Top()
	if f == nil || f.AtEOF() {
		return "", 0, false
	}
	startRow = f.Row
	for {
		line, lineOK := f.CurrentLine()
		if !lineOK {
			break
		}
		f.Advance()
		if len(line) > 0 && line[len(line)-1] == '\\' {
			joined += line[:len(line)-1]
			continue
		}
		joined += line
		break
	}
	return joined, startRow, true
}

// skipBlockComment consumes a "/* ... */" comment starting at
// l.logical[l.cur:], pulling further logical lines from the active file
// when the comment does not close within the current one (spec.md §4.1:
// block comments span lines). On success it leaves l.cur positioned just
// past the closing "*/" — possibly in a freshly pulled line, in which case
// l.logical/l.startRow are updated to that line. It returns
// ErrUnterminatedComment only once the active file has no more lines left
// to offer (true end-of-source for that file), not merely at a logical-line
// boundary.
func (l *Lexer) skipBlockComment() error {
	rest := l.logical[l.cur+2:]
	if idx := indexOf(rest, "*/"); idx >= 0 {
		l.cur = l.cur + 2 + idx + 2
		return nil
	}

	// carry holds the final byte scanned so far, so a closing "*/" split
	// across a line boundary (a lone '*' ending one line, '/' starting the
	// next) is still recognized.
	carry := lastByte(rest)
	for {
		line, row, ok := l.nextJoinedLine()
		if !ok {
			return fmt.Errorf("%w", ErrUnterminatedComment)
		}
		search := carry + line
		if idx := indexOf(search, "*/"); idx >= 0 {
			l.logical = line
			l.startRow = row
			l.cur = idx + 2 - len(carry)
			return nil
		}
		carry = lastByte(line)
	}
}

func lastByte(s string) string {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1:]
}

func (l *Lexer) currentPos() source.Position {
	f := l.stack.Top()
	if f == nil {
		return source.Position{}
	}
	return source.Position{
		File:   f.DisplayName,
		Line:   l.startRow + 1 + f.RowOffset,
		Column: l.cur + 1,
	}
}

// next extracts (at most) one token starting at l.logical[l.cur:]. A nil
// *token.Token with a nil error means "whitespace or comment consumed,
// keep scanning"; spaceSkipped is only meaningful in that case, recording
// whether the caller's next real token should carry SpaceBefore = true.
func (l *Lexer) next() (*token.Token, int, bool, error) {
	rest := l.logical[l.cur:]
	pos := l.currentPos()

	switch c := rest[0]; {
	case c == ' ' || c == '\t' || c == '\v' || c == '\f' || c == '\r':
		return nil, 1, true, nil
	case c == '/' && hasPrefix(rest, "//"):
		return nil, len(rest), true, nil
	case c == '/' && hasPrefix(rest, "/*"):
		if err := l.skipBlockComment(); err != nil {
			return nil, 0, false, err
		}
		return nil, 0, true, nil
	case c == '#' && l.atLineStart:
		l.atLineStart = false
		return &token.Token{Kind: token.Operator, Text: "#", Src: "#", Pos: pos, Directive: true}, 1, false, nil
	case l.identStart(c):
		n := l.identLen(rest)
		text := rest[:n]
		tok := identToken(text, pos)
		l.atLineStart = false
		return &tok, n, false, nil
	case c == '"':
		n, text, err := extractStringLiteral(rest, l.escapeE)
		if err != nil {
			return nil, 0, false, err
		}
		l.atLineStart = false
		return &token.Token{Kind: token.Literal, LiteralKind: token.String, Text: text, Src: rest[:n], Pos: pos}, n, false, nil
	case c == '\'':
		n, text, err := extractCharLiteral(rest, l.escapeE)
		if err != nil {
			return nil, 0, false, err
		}
		l.atLineStart = false
		return &token.Token{Kind: token.Literal, LiteralKind: token.Char, Text: text, Src: rest[:n], Pos: pos}, n, false, nil
	case isDigit(c) || (c == '.' && len(rest) > 1 && isDigit(rest[1])):
		n, lk := extractNumericLiteral(rest)
		l.atLineStart = false
		return &token.Token{Kind: token.Literal, LiteralKind: lk, Text: rest[:n], Src: rest[:n], Pos: pos}, n, false, nil
	default:
		n, op, ok := extractOperator(rest)
		if !ok {
			return nil, 0, false, fmt.Errorf("%w: %q", ErrInvalidToken, rest[:1])
		}
		l.atLineStart = false
		return &token.Token{Kind: token.Operator, Text: op, Src: op, Pos: pos}, n, false, nil
	}
}

func identToken(text string, pos source.Position) token.Token {
	if kw, ok := keyword.Lookup(text); ok {
		return token.Token{Kind: token.Keyword, Text: kw.String(), Src: text, Pos: pos}
	}
	return token.Token{Kind: token.Ident, Text: text, Src: text, Pos: pos}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func indexOf(s, sub string) int {
	n := len(sub)
	for i := 0; i+n <= len(s); i++ {
		if s[i:i+n] == sub {
			return i
		}
	}
	return -1
}
