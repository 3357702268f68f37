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
	"fmt"
	"strings"

	"github.com/ccfront/ccfront/cc/token"
)

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isIdentStart reports whether c can begin an identifier under the
// standard C rule. '$' is a common vendor extension (spec.md §6's
// "dollar_in_identifier" configuration bit) and is deliberately excluded
// here; callers that allow it consult Lexer.identStart instead.
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func identLen(s string) int {
	i := 1
	for i < len(s) && isIdentCont(s[i]) {
		i++
	}
	return i
}

// identStart/identContAt are the Lexer-level, configuration-aware variants
// of isIdentStart/isIdentCont: when allowDollar is set, '$' is accepted
// both to start and continue an identifier, matching the GNU/vendor
// extension spec.md §6 calls out.
func (l *Lexer) identStart(c byte) bool {
	if l.allowDollar && c == '$' {
		return true
	}
	return isIdentStart(c)
}

func (l *Lexer) identContAt(c byte) bool {
	if l.allowDollar && c == '$' {
		return true
	}
	return isIdentStart(c) || isDigit(c)
}

func (l *Lexer) identLen(s string) int {
	i := 1
	for i < len(s) && l.identContAt(s[i]) {
		i++
	}
	return i
}

// extractStringLiteral extracts a "..." literal starting at s[0] == '"',
// mirroring the teacher's extractStringLiteralToken escaped-quote walk
// (language/internal/cc/lexer/scanner.go).
func extractStringLiteral(s string, escapeE bool) (n int, text string, err error) {
	start := 1
	for {
		idx := strings.IndexByte(s[start:], '"')
		if idx < 0 {
			return 0, "", fmt.Errorf("%w", ErrUnterminatedString)
		}
		abs := start + idx
		if s[abs-1] != '\\' || isEvenBackslashRun(s, abs-1) {
			return abs + 1, unescape(s[1:abs], escapeE), nil
		}
		start = abs + 1
	}
}

// extractCharLiteral extracts a '...' literal starting at s[0] == '\''.
func extractCharLiteral(s string, escapeE bool) (n int, text string, err error) {
	start := 1
	for {
		idx := strings.IndexByte(s[start:], '\'')
		if idx < 0 {
			return 0, "", fmt.Errorf("%w", ErrUnterminatedChar)
		}
		abs := start + idx
		if s[abs-1] != '\\' || isEvenBackslashRun(s, abs-1) {
			return abs + 1, unescape(s[1:abs], escapeE), nil
		}
		start = abs + 1
	}
}

// isEvenBackslashRun reports whether s[i] (a backslash) is itself escaped,
// that is, whether an odd number of backslashes immediately precede it.
func isEvenBackslashRun(s string, i int) bool {
	count := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		count++
	}
	return count%2 == 1
}

// unescape decodes the backslash escapes \n, \t, \r, \\, \', \" and octal
// escapes of one to three digits inside string/char literals; every other
// escape (including \a, \b, \f, \v, \? and hex \x) keeps its backslash,
// a permissive preprocessor-level (not full semantic) treatment. When
// escapeE is set (spec.md §6's "escape_e" configuration bit), '\e' decodes
// to the ASCII ESC character (0x1B), a GNU/Clang extension; otherwise it
// falls through unchanged like any other unrecognized escape.
func unescape(s string, escapeE bool) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := 0
			for n := 0; n < 3 && i < len(s) && s[i] >= '0' && s[i] <= '7'; n++ {
				v = v*8 + int(s[i]-'0')
				i++
			}
			i--
			b.WriteByte(byte(v))
		case 'e':
			if escapeE {
				b.WriteByte(0x1B)
			} else {
				b.WriteByte('\\')
				b.WriteByte(s[i])
			}
		case '\\', '\'', '"':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// extractNumericLiteral extracts a pp-number: a digit sequence followed by
// any run of identifier characters, '.', or exponent signs, matching
// spec.md §4.1's deliberately loose preprocessing-number grammar (full
// lexical validation is left to a later compilation stage).
func extractNumericLiteral(s string) (n int, kind token.LiteralKind) {
	i := 1
	isFloat := s[0] == '.'
	for i < len(s) {
		c := s[i]
		switch {
		case (c == 'e' || c == 'E' || c == 'p' || c == 'P') && i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-'):
			isFloat = true
			i += 2
		case (c == 'e' || c == 'E') && i+1 < len(s) && isDigit(s[i+1]):
			isFloat = true
			i++
		case c == '.':
			isFloat = true
			i++
		case isIdentCont(c):
			i++
		default:
			goto done
		}
	}
done:
	suffix := strings.ToLower(s[:i])
	if isFloat {
		kind = floatKind(suffix)
	} else {
		kind = intKind(suffix)
	}
	return i, kind
}

func floatKind(suffix string) token.LiteralKind {
	switch {
	case strings.HasSuffix(suffix, "l"):
		return token.LongDouble
	case strings.HasSuffix(suffix, "f"):
		return token.Float
	default:
		return token.Double
	}
}

func intKind(suffix string) token.LiteralKind {
	unsigned := strings.Contains(suffix, "u")
	longCount := strings.Count(suffix, "l")
	switch {
	case longCount >= 2 && unsigned:
		return token.UnsignedLongLong
	case longCount >= 2:
		return token.LongLong
	case longCount == 1 && unsigned:
		return token.UnsignedLong
	case longCount == 1:
		return token.Long
	case unsigned:
		return token.UnsignedInt
	default:
		return token.Int
	}
}

// operators, longest spelling first so the greedy scan below never has to
// backtrack; grounded on the teacher's extractSymbolToken longest-match
// idiom (language/internal/cc/lexer/scanner.go), extended to the full C
// punctuator set.
var operatorsBySpelling = []string{
	"%:%:", "...",
	"<<=", ">>=",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=",
	"&&", "||", "*=", "/=", "%=", "+=", "-=", "&=", "^=", "|=",
	"##", "<:", ":>", "<%", "%>", "%:",
	"(", ")", "[", "]", "{", "}", ".", "&", "*", "+", "-", "~",
	"!", "/", "%", "<", ">", "^", "|", "?", ":", ";", "=", ",",
	"#",
}

func extractOperator(s string) (n int, spelling string, ok bool) {
	for _, op := range operatorsBySpelling {
		if strings.HasPrefix(s, op) {
			return len(op), op, true
		}
	}
	return 0, "", false
}
