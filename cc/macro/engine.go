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

package macro

import (
	"fmt"
	"strings"

	"github.com/ccfront/ccfront/cc/token"
)

// Engine drives macro expansion over the Table it is constructed with. It
// holds no state of its own beyond the Table (InUse flags live on the
// Symbol), so a single Engine can be reused across an entire translation
// unit by the preprocessor core.
type Engine struct {
	Table *Table
}

func NewEngine(t *Table) *Engine {
	return &Engine{Table: t}
}

// Expand fully macro-expands toks (a single already-captured logical run,
// e.g. the remainder of a source line, or one macro argument being
// substituted into stringize-free, non-# operand position), returning the
// rescanned result. It implements spec.md §4.4's rescanning rule: after
// substituting a function-like or object-like macro's body, the result is
// rescanned (together with the rest of the input) for further macro
// names to replace, stopping only at end of input or at a token painted
// blue by the self-reference discipline.
func (e *Engine) Expand(toks []token.Token) ([]token.Token, error) {
	var out []token.Token
	i := 0
	for i < len(toks) {
		tok := toks[i]
		if !tok.IsIdent() || tok.Ref || tok.NoExpand {
			out = append(out, tok)
			i++
			continue
		}
		sym, ok := e.Table.Lookup(tok.Text)
		if !ok || sym.InUse {
			if ok && sym.InUse {
				tok.Ref = true
			}
			out = append(out, tok)
			i++
			continue
		}

		if sym.Flags.Has(Builtin) {
			args, consumed, err := e.maybeCaptureArgs(sym, toks, i)
			if err != nil {
				return nil, err
			}
			replacement, err := sym.Extension(e, tok, args)
			if err != nil {
				return nil, err
			}
			i += consumed
			rescanned, err := e.Expand(replacement)
			if err != nil {
				return nil, err
			}
			out = append(out, rescanned...)
			continue
		}

		if sym.IsFunctionLike() {
			if i+1 >= len(toks) || toks[i+1].Text != "(" {
				// Not followed by '(': not invoked, left as plain text.
				out = append(out, tok)
				i++
				continue
			}
			args, consumed, err := captureArguments(toks[i+1:])
			if err != nil {
				return nil, err
			}
			if err := checkArity(sym, args); err != nil {
				return nil, err
			}
			body, err := e.substitute(sym, args)
			if err != nil {
				return nil, err
			}
			i += 1 + consumed

			sym.InUse = true
			rescanned, err := e.Expand(body)
			sym.InUse = false
			if err != nil {
				return nil, err
			}
			out = append(out, markRef(rescanned, sym.Name)...)
			continue
		}

		// object-like macro
		sym.InUse = true
		rescanned, err := e.Expand(sym.Body)
		sym.InUse = false
		if err != nil {
			return nil, err
		}
		out = append(out, markRef(rescanned, sym.Name)...)
		i++
	}
	return out, nil
}

// markRef paints every token resulting from expanding macroName so that,
// should macroName's own spelling recur within its own expansion, the
// recurrence is left unexpanded, implementing spec.md §9's
// self-reference discipline without requiring a shared "currently
// expanding" context to outlive the recursive Expand call.
func markRef(toks []token.Token, macroName string) []token.Token {
	for i := range toks {
		if toks[i].Text == macroName && toks[i].IsIdent() {
			toks[i].Ref = true
		}
	}
	return toks
}

// maybeCaptureArgs captures arguments for a builtin function-like hook
// (e.g. __has_include, defined) if it is invoked with parentheses;
// object-like builtins (e.g. __FILE__, __LINE__) return no args.
func (e *Engine) maybeCaptureArgs(sym *Symbol, toks []token.Token, pos int) ([][]token.Token, int, error) {
	if !sym.IsFunctionLike() {
		return nil, 1, nil
	}
	if pos+1 < len(toks) && toks[pos+1].Text == "(" {
		args, consumed, err := captureArguments(toks[pos+1:])
		if err != nil {
			return nil, 0, err
		}
		return args, 1 + consumed, nil
	}
	if sym.Flags.Has(OptionalParens) {
		if pos+1 >= len(toks) || !toks[pos+1].IsIdent() {
			return nil, 0, fmt.Errorf("operand of %q must be an identifier", sym.Name)
		}
		return [][]token.Token{{toks[pos+1]}}, 2, nil
	}
	return nil, 0, fmt.Errorf("%q requires parentheses", sym.Name)
}

// captureArguments splits the parenthesized argument list starting at
// toks[0] == "(" into unexpanded per-argument token runs, stopping at the
// matching ")". It returns the number of input tokens consumed (including
// both parentheses).
func captureArguments(toks []token.Token) (args [][]token.Token, consumed int, err error) {
	if len(toks) == 0 || toks[0].Text != "(" {
		return nil, 0, fmt.Errorf("expected '(' to begin macro argument list")
	}
	depth := 1
	var current []token.Token
	i := 1
	for ; i < len(toks); i++ {
		tok := toks[i]
		switch {
		case tok.Text == "(":
			depth++
			current = append(current, tok)
		case tok.Text == ")":
			depth--
			if depth == 0 {
				args = append(args, current)
				return args, i + 1, nil
			}
			current = append(current, tok)
		case tok.Text == "," && depth == 1:
			args = append(args, current)
			current = nil
		default:
			current = append(current, tok)
		}
	}
	return nil, 0, fmt.Errorf("unterminated macro argument list")
}

func checkArity(sym *Symbol, args [][]token.Token) error {
	if len(args) == 1 && len(args[0]) == 0 && len(sym.Params) == 0 && !sym.IsVariadic() {
		args = nil
	}
	switch {
	case sym.IsVariadic() && len(args) < len(sym.Params):
		return fmt.Errorf("macro %q requires at least %d arguments, got %d", sym.Name, len(sym.Params), len(args))
	case !sym.IsVariadic() && len(args) != len(sym.Params):
		return fmt.Errorf("macro %q requires %d arguments, got %d", sym.Name, len(sym.Params), len(args))
	}
	return nil
}

// substitute builds sym's replacement list for one invocation with the
// given captured (unexpanded) arguments, handling stringize (#), paste
// (##) and variadic substitution before any rescanning happens. Per the C
// standard, each non-#/##-adjacent parameter is macro-expanded before
// substitution; operands of # and ## are substituted literally.
func (e *Engine) substitute(sym *Symbol, rawArgs [][]token.Token) ([]token.Token, error) {
	args := make(map[string][]token.Token, len(sym.Params)+1)
	expandedArgs := make(map[string][]token.Token, len(sym.Params)+1)
	for i, name := range sym.Params {
		if i < len(rawArgs) {
			args[name] = rawArgs[i]
			expanded, err := e.Expand(rawArgs[i])
			if err != nil {
				return nil, err
			}
			expandedArgs[name] = expanded
		}
	}
	variadicName := sym.VariadicName
	if variadicName == "" {
		variadicName = "__VA_ARGS__"
	}
	if sym.IsVariadic() {
		var variadic []token.Token
		for i := len(sym.Params); i < len(rawArgs); i++ {
			if i > len(sym.Params) {
				variadic = append(variadic, token.Token{Kind: token.Operator, Text: ",", Src: ","})
			}
			variadic = append(variadic, rawArgs[i]...)
		}
		args[variadicName] = variadic
		expanded, err := e.Expand(variadic)
		if err != nil {
			return nil, err
		}
		expandedArgs[variadicName] = expanded
	}

	variadicNonEmpty := len(args[variadicName]) > 0

	var out []token.Token
	body := sym.Body
	for i := 0; i < len(body); i++ {
		tok := body[i]

		if e.Table.VaOptEnabled && sym.IsVariadic() && tok.IsIdent() && tok.Text == "__VA_OPT__" &&
			i+1 < len(body) && body[i+1].Text == "(" {
			inner, consumed, err := captureArguments(body[i+1:])
			if err != nil {
				return nil, fmt.Errorf("malformed __VA_OPT__ in macro %q: %w", sym.Name, err)
			}
			if len(inner) > 1 {
				return nil, fmt.Errorf("__VA_OPT__ in macro %q takes a single argument", sym.Name)
			}
			if variadicNonEmpty && len(inner) == 1 {
				subst, err := e.substitute(&Symbol{Name: sym.Name, Params: sym.Params, VariadicName: sym.VariadicName, Flags: sym.Flags, Body: inner[0]}, rawArgs)
				if err != nil {
					return nil, err
				}
				out = append(out, subst...)
			}
			i += consumed
			continue
		}

		if tok.Text == "#" && tok.Kind == token.Operator && i+1 < len(body) && isParam(body[i+1], args) {
			out = append(out, stringize(body[i+1], args))
			i++
			continue
		}

		if tok.IsIdent() && isParam(tok, args) && i+1 < len(body) && body[i+1].Text == "##" {
			if len(args[tok.Text]) == 0 {
				out = append(out, token.Token{Kind: token.Placemarker})
				continue
			}
			out = append(out, args[tok.Text]...)
			continue
		}
		if tok.Text == "##" && tok.Kind == token.Operator {
			if len(out) == 0 {
				return nil, fmt.Errorf("'##' cannot appear at the start of macro %q's body", sym.Name)
			}
			if i+1 >= len(body) {
				return nil, fmt.Errorf("'##' cannot appear at the end of macro %q's body", sym.Name)
			}
			next := body[i+1]
			var rhs []token.Token
			if isParam(next, args) {
				rhs = args[next.Text]
			} else {
				rhs = []token.Token{next}
			}
			// An empty left operand yields the right operand unchanged.
			if out[len(out)-1].Kind == token.Placemarker {
				out = append(out[:len(out)-1], rhs...)
				i++
				continue
			}
			// GNU ", ## __VA_ARGS__" special case: when the variadic
			// argument is empty, the preceding comma is deleted outright
			// rather than pasted with nothing.
			if out[len(out)-1].Text == "," && out[len(out)-1].Kind == token.Operator &&
				next.Text == variadicName && len(rhs) == 0 {
				out = out[:len(out)-1]
				i++
				continue
			}
			pasted, err := paste(out[len(out)-1], rhs)
			if err != nil {
				return nil, err
			}
			out = out[:len(out)-1]
			out = append(out, pasted...)
			i++
			continue
		}

		if tok.IsIdent() && isParam(tok, args) {
			out = append(out, expandedArgs[tok.Text]...)
			continue
		}

		out = append(out, tok)
	}
	return out, nil
}

func isParam(tok token.Token, args map[string][]token.Token) bool {
	if !tok.IsIdent() {
		return false
	}
	_, ok := args[tok.Text]
	return ok
}

// stringize implements the "#" operator: the argument's original
// (unexpanded) spelling is rendered as a single string literal token,
// with internal whitespace collapsed to single spaces between tokens that
// had SpaceBefore set, per the C standard's "#" semantics.
func stringize(paramTok token.Token, args map[string][]token.Token) token.Token {
	arg := args[paramTok.Text]
	var b strings.Builder
	b.WriteByte('"')
	for i, t := range arg {
		if i > 0 && t.SpaceBefore {
			b.WriteByte(' ')
		}
		spelling := t.Src
		if t.Kind == token.Literal && t.LiteralKind == token.String {
			spelling = escapeForStringize(spelling)
		}
		b.WriteString(spelling)
	}
	b.WriteByte('"')
	return token.Token{Kind: token.Literal, LiteralKind: token.String, Text: b.String(), Src: b.String()}
}

func escapeForStringize(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// paste implements the "##" operator between a single left-hand token
// (lhs) and a (possibly empty, for the GNU ", ## __VA_ARGS__" special
// case) run of right-hand tokens: the last spelling of lhs is
// concatenated with the first spelling of rhs to form one new token,
// which is then itself eligible for further "##" on either side. The
// pasted token is not marked NoExpand, so Expand's rescan of the
// substituted body can expand it as a macro name.
func paste(lhs token.Token, rhs []token.Token) ([]token.Token, error) {
	if len(rhs) == 0 {
		return []token.Token{lhs}, nil
	}
	combinedSrc := lhs.Src + rhs[0].Src
	pasted := token.Token{
		Kind:     classifyPasted(combinedSrc),
		Text:     combinedSrc,
		Src:      combinedSrc,
		NoExpand: false,
	}
	out := []token.Token{pasted}
	out = append(out, rhs[1:]...)
	return out, nil
}

func classifyPasted(spelling string) token.Kind {
	if spelling == "" {
		return token.Placemarker
	}
	c := spelling[0]
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return token.Ident
	}
	if c >= '0' && c <= '9' {
		return token.Literal
	}
	return token.Operator
}
