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

package lexer

import (
	"errors"
	"strings"
)

var ErrUnterminatedConditional = errors.New("unterminated conditional directive")

// nestingDirectives lists the only directive spellings the condition
// scanner needs to recognize while skipping an inactive branch: the ones
// that affect #if/#endif nesting. "ifdef" and "ifndef" come before their
// prefix "if", mirroring the teacher's preprocessorDirectives
// ordered-keyword table (language/internal/cc/lexer/lexer.go);
// matchDirectiveLine's identifier-boundary check also keeps "if" from
// matching the start of a longer name.
var nestingDirectives = []string{"ifdef", "ifndef", "if", "elif", "else", "endif"}

// SkipInactive advances the lexer past every line of an inactive
// conditional branch, stopping exactly at the #elif/#else/#endif line
// that closes it (that line is left unconsumed: the lexer's normal
// NextRawToken path re-lexes it as real directive tokens so the
// directive engine can decide the next branch). It returns
// ErrUnterminatedConditional if the file ends first.
//
// This is the secondary FSM of spec.md §4.2: while it runs, the primary
// character lexer's substate machinery is bypassed entirely, since an
// inactive branch's ordinary text need not be tokenized at all — only
// nested #if/#endif balance and the closing directive's kind matter.
func (l *Lexer) SkipInactive() (closing string, err error) {
	depth := 0
	for {
		if l.cur >= len(l.logical) {
			if !l.fillLogicalLine() {
				return "", ErrUnterminatedConditional
			}
		}
		// A block comment is whitespace for directive-recognition purposes
		// (spec.md §4.2) and, like the main lexer's, may span any number of
		// lines; one that opens where the scan resumes (after leading
		// whitespace) is skipped wherever it closes, so a directive-shaped
		// line inside it is not taken for the closing directive. A block
		// comment that opens after other text on a line is not tracked:
		// the rest of that line is dropped and the following lines are
		// examined for directives as usual.
		if trimmed := strings.TrimLeft(l.logical[l.cur:], " \t\v\f\r"); strings.HasPrefix(trimmed, "/*") {
			l.cur = len(l.logical) - len(trimmed)
			if err := l.skipBlockComment(); err != nil {
				return "", err
			}
			continue
		}
		line := l.logical[l.cur:]
		directive, ok := matchDirectiveLine(line)
		if !ok {
			// not a directive line (or not at start); skip to next line.
			l.cur = len(l.logical)
			continue
		}
		switch directive {
		case "if", "ifdef", "ifndef":
			depth++
			l.cur = len(l.logical)
		case "elif", "else":
			if depth == 0 {
				return directive, nil
			}
			l.cur = len(l.logical)
		case "endif":
			if depth == 0 {
				return directive, nil
			}
			depth--
			l.cur = len(l.logical)
		}
	}
}

// matchDirectiveLine reports whether line, with leading whitespace
// stripped, begins with '#' followed by optional whitespace and one of
// nestingDirectives, and if so which one.
func matchDirectiveLine(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t\v\f\r")
	if len(trimmed) == 0 || trimmed[0] != '#' {
		return "", false
	}
	rest := strings.TrimLeft(trimmed[1:], " \t\v\f\r")
	for _, d := range nestingDirectives {
		if strings.HasPrefix(rest, d) {
			after := rest[len(d):]
			if len(after) == 0 || !isIdentCont(after[0]) {
				return d, true
			}
		}
	}
	return "", false
}
