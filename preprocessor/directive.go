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

// directive.go is the directive engine of spec.md §4.3: it consumes one
// already-collected directive line (the leading "#" token plus the tokens
// following it up to end of logical line) and switches on the directive
// keyword, exactly as the teacher's parser.parseDirective switches on
// token string — but drives real side effects (push file, define/undef
// symbol, push/pop conditional frame, cc/constexpr.Parse then Eval) instead of
// building a Directive AST node.
package preprocessor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ccfront/ccfront/cc/constexpr"
	"github.com/ccfront/ccfront/cc/macro"
	"github.com/ccfront/ccfront/cc/source"
	"github.com/ccfront/ccfront/cc/token"
	"github.com/ccfront/ccfront/internal/diag"
)

// handleDirective executes one directive line. hashTok is the leading "#"
// operator token (carrying the line's reporting position); line holds every
// token after it, up to the end of its logical line (the closing Newline
// is not included).
func (p *Preprocessor) handleDirective(hashTok token.Token, line []token.Token) error {
	if len(line) == 0 {
		// A bare "#" alone on a logical line is the null directive: a
		// long-standing no-op in C.
		return nil
	}
	name := line[0]
	rest := line[1:]
	if !name.IsIdent() {
		return p.directiveError(hashTok.Pos, "invalid preprocessing directive")
	}

	switch name.Text {
	case "include":
		return p.handleInclude(hashTok, rest, false)
	case "include_next":
		return p.handleInclude(hashTok, rest, true)
	case "define":
		return p.handleDefine(hashTok, rest)
	case "undef":
		return p.handleUndef(hashTok, rest)
	case "if":
		return p.handleIf(hashTok, rest)
	case "ifdef":
		return p.handleIfdef(hashTok, rest, true)
	case "ifndef":
		return p.handleIfdef(hashTok, rest, false)
	case "elif":
		return p.handleElif(hashTok, rest)
	case "else":
		return p.handleElse(hashTok, rest)
	case "endif":
		return p.handleEndif(hashTok, rest)
	case "pragma":
		return p.handlePragma(hashTok, rest)
	case "error":
		return p.handleDiagnosticDirective(hashTok, rest, diag.Error)
	case "warning":
		return p.handleDiagnosticDirective(hashTok, rest, diag.Warning)
	case "line":
		return p.handleLine(hashTok, rest)
	case "sccs":
		return p.handleSccs(hashTok, rest)
	default:
		return p.directiveError(hashTok.Pos, "invalid preprocessing directive #%s", name.Text)
	}
}

// directiveError reports an Error-severity diagnostic and returns whatever
// the installed Reporter says: nil (by far the common case) means "abort
// this directive, resume at the next line", matching spec.md §7's recovery
// policy; a non-nil error propagates and stops preprocessing entirely,
// which only happens when the Reporter itself asks for that (e.g.
// diag.StderrReporter{FatalOnError: true}).
func (p *Preprocessor) directiveError(pos source.Position, format string, args ...any) error {
	return p.reportf(diag.Error, pos, format, args...)
}

// --- #include / #include_next -------------------------------------------

func (p *Preprocessor) handleInclude(hashTok token.Token, rest []token.Token, next bool) error {
	path, angle, ok := rawHeaderName(rest)
	if !ok {
		expanded, err := p.engine.Expand(rest)
		if err != nil {
			return err
		}
		path, angle, ok = rawHeaderName(expanded)
		if !ok {
			return p.directiveError(hashTok.Pos, `#include expects "FILENAME" or <FILENAME>`)
		}
	}

	var f *source.File
	var err error
	if next {
		if p.stack.Depth() <= 1 {
			if rerr := p.reportf(diag.Warning, hashTok.Pos, "#include_next in primary source file"); rerr != nil {
				return rerr
			}
		}
		if filepath.IsAbs(path) {
			if rerr := p.reportf(diag.Warning, hashTok.Pos, "#include_next with absolute path"); rerr != nil {
				return rerr
			}
		}
		f, err = p.stack.ResolveNext(path)
	} else {
		f, err = p.stack.Resolve(path, !angle)
	}
	if err != nil {
		return p.directiveError(hashTok.Pos, "%s: %v", path, err)
	}
	p.stack.Push(f)
	p.refreshContext()
	return nil
}

// rawHeaderName recognizes the two header-name spellings a #include line
// can take when the tokens were lexed as ordinary tokens rather than a
// dedicated INCLUDE_FILE substate (spec.md §4.1's note that "<" inside
// #include switches to a raw-byte substate is not reproduced here; instead
// the angle-bracket path is reconstructed from its constituent punctuator/
// identifier/literal tokens, which is equivalent for any header name that
// doesn't itself contain whitespace).
func rawHeaderName(toks []token.Token) (path string, angleBracket, ok bool) {
	if len(toks) == 0 {
		return "", false, false
	}
	if len(toks) == 1 && toks[0].Kind == token.Literal && toks[0].LiteralKind == token.String {
		return toks[0].Text, false, true
	}
	if toks[0].Kind == token.Operator && toks[0].Text == "<" {
		var b strings.Builder
		for _, t := range toks[1:] {
			if t.Text == ">" {
				return b.String(), true, true
			}
			b.WriteString(t.Src)
		}
	}
	return "", false, false
}

// --- #define / #undef -----------------------------------------------------

func (p *Preprocessor) handleDefine(hashTok token.Token, rest []token.Token) error {
	if len(rest) == 0 || !rest[0].IsIdent() {
		return p.directiveError(hashTok.Pos, "#define requires a macro name")
	}
	nameTok := rest[0]
	if nameTok.Text == "defined" {
		return p.directiveError(nameTok.Pos, `"defined" cannot be used as a macro name`)
	}
	rest = rest[1:]

	sym := &macro.Symbol{Name: nameTok.Text}
	if f := p.stack.Top(); f != nil && f.Sys {
		sym.Flags |= macro.Sys
	}
	if len(rest) > 0 && rest[0].Kind == token.Operator && rest[0].Text == "(" && !rest[0].SpaceBefore {
		params, variadicName, variadic, named, consumed, err := parseParamList(rest)
		if err != nil {
			return p.directiveError(hashTok.Pos, "%v", err)
		}
		sym.Flags |= macro.FunctionLike
		if variadic {
			sym.Flags |= macro.Variadic
		}
		if named {
			sym.Flags |= macro.NamedVariadic
		}
		sym.Params = params
		sym.VariadicName = variadicName
		rest = rest[consumed:]
	} else {
		sym.Flags |= macro.ObjectLike
	}

	if err := validateMacroBody(sym, rest); err != nil {
		return p.directiveError(hashTok.Pos, "%v", err)
	}
	sym.Body = rest

	prev, redefined := p.table.Define(sym)
	if !redefined {
		return nil
	}
	prevIsSys := prev.Flags.Has(macro.Sys) || prev.Flags.Has(macro.Builtin)
	switch {
	case sym.Flags.Has(macro.Sys) && !prevIsSys:
		// A SYS definition overriding a user macro is silent (spec.md §5's
		// "Supplemented features": original_source never warns when its own
		// predefined environment loads after user code).
	case prevIsSys:
		if err := p.reportf(diag.Warning, hashTok.Pos, "redefining builtin macro %q", sym.Name); err != nil {
			return err
		}
	case !macrosEquivalent(prev, sym):
		if err := p.reportf(diag.Warning, hashTok.Pos, "symbol %q redefined", sym.Name); err != nil {
			return err
		}
	}
	return nil
}

// parseParamList parses a function-like macro's formal parameter list,
// starting at toks[0] == "(". It accepts a trailing bare "..." (anonymous
// variadic) or a trailing "name..." (GCC-style named variadic).
func parseParamList(toks []token.Token) (params []string, variadicName string, variadic, named bool, consumed int, err error) {
	if len(toks) == 0 || toks[0].Text != "(" {
		return nil, "", false, false, 0, errInvalidParamList("expected '(' to begin macro parameter list")
	}
	i := 1
	for i < len(toks) {
		tok := toks[i]
		switch {
		case tok.Text == ")":
			return params, variadicName, variadic, named, i + 1, nil
		case tok.Text == ",":
			i++
		case tok.Text == "...":
			variadic = true
			variadicName = "__VA_ARGS__"
			i++
		case tok.IsIdent():
			if tok.Text == "__VA_ARGS__" || tok.Text == "__VA_OPT__" {
				return nil, "", false, false, 0, errInvalidParamList("\"" + tok.Text + "\" may not be used as a macro parameter name")
			}
			if i+1 < len(toks) && toks[i+1].Text == "..." {
				variadic = true
				named = true
				variadicName = tok.Text
				i += 2
				continue
			}
			params = append(params, tok.Text)
			i++
		default:
			return nil, "", false, false, 0, errInvalidParamList("unexpected token %q in macro parameter list", tok.Text)
		}
	}
	return nil, "", false, false, 0, errInvalidParamList("unterminated macro parameter list")
}

// validateMacroBody enforces spec.md §4.3's rule that __VA_ARGS__ and
// __VA_OPT__ may not appear as regular identifiers outside a variadic
// function-like body.
func validateMacroBody(sym *macro.Symbol, body []token.Token) error {
	if sym.IsVariadic() {
		return nil
	}
	for _, t := range body {
		if t.IsIdent() && (t.Text == "__VA_ARGS__" || t.Text == "__VA_OPT__") {
			return errInvalidParamList("%q can only appear in the expansion of a variadic macro", t.Text)
		}
	}
	return nil
}

// macrosEquivalent reports whether two Symbol definitions are equal "modulo
// source text" (spec.md §4.3): same shape (flags, parameter names, variadic
// naming) and the same body token Kind/Text sequence, ignoring each token's
// original spelling, position and surrounding whitespace.
func macrosEquivalent(a, b *macro.Symbol) bool {
	const shapeMask = macro.ObjectLike | macro.FunctionLike | macro.Variadic | macro.NamedVariadic
	if a.Flags&shapeMask != b.Flags&shapeMask {
		return false
	}
	if a.VariadicName != b.VariadicName || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	if len(a.Body) != len(b.Body) {
		return false
	}
	for i := range a.Body {
		if a.Body[i].Kind != b.Body[i].Kind || a.Body[i].Text != b.Body[i].Text {
			return false
		}
	}
	return true
}

func (p *Preprocessor) handleUndef(hashTok token.Token, rest []token.Token) error {
	if len(rest) == 0 || !rest[0].IsIdent() {
		return p.directiveError(hashTok.Pos, "#undef requires an identifier")
	}
	name := rest[0].Text
	if sym, ok := p.table.Lookup(name); ok && (sym.Flags.Has(macro.Sys) || sym.Flags.Has(macro.Builtin)) {
		if err := p.reportf(diag.Warning, hashTok.Pos, "undefining builtin macro %q", name); err != nil {
			return err
		}
	}
	p.table.Undef(name)
	return nil
}

// --- #if / #ifdef / #ifndef / #elif / #else / #endif ---------------------

func (p *Preprocessor) handleIf(hashTok token.Token, rest []token.Token) error {
	value, err := p.evalConditional(hashTok.Pos, rest)
	if err != nil {
		return err
	}
	p.conditionals = append(p.conditionals, condFrame{CurrentBranchValue: value, AnyTrueYet: value, Pos: hashTok.Pos})
	return p.afterConditionalChange()
}

func (p *Preprocessor) handleIfdef(hashTok token.Token, rest []token.Token, wantDefined bool) error {
	if len(rest) == 0 || !rest[0].IsIdent() {
		directive := "ifndef"
		if wantDefined {
			directive = "ifdef"
		}
		return p.directiveError(hashTok.Pos, "#%s requires an identifier", directive)
	}
	if rest[0].Text == "defined" {
		return p.directiveError(hashTok.Pos, `"defined" cannot be queried by #ifdef/#ifndef`)
	}
	value := p.table.Defined(rest[0].Text) == wantDefined
	p.conditionals = append(p.conditionals, condFrame{CurrentBranchValue: value, AnyTrueYet: value, Pos: hashTok.Pos})
	return p.afterConditionalChange()
}

func (p *Preprocessor) handleElif(hashTok token.Token, rest []token.Token) error {
	if len(p.conditionals) == 0 {
		return p.directiveError(hashTok.Pos, "#elif without #if")
	}
	top := &p.conditionals[len(p.conditionals)-1]
	if top.SawElse {
		return p.directiveError(hashTok.Pos, "#elif after #else")
	}
	if top.AnyTrueYet {
		top.CurrentBranchValue = false
		return p.afterConditionalChange()
	}
	value, err := p.evalConditional(hashTok.Pos, rest)
	if err != nil {
		return err
	}
	top.CurrentBranchValue = value
	if value {
		top.AnyTrueYet = true
	}
	return p.afterConditionalChange()
}

func (p *Preprocessor) handleElse(hashTok token.Token, rest []token.Token) error {
	_ = rest
	if len(p.conditionals) == 0 {
		return p.directiveError(hashTok.Pos, "#else without #if")
	}
	top := &p.conditionals[len(p.conditionals)-1]
	if top.SawElse {
		return p.directiveError(hashTok.Pos, "#else after #else")
	}
	top.SawElse = true
	if top.AnyTrueYet {
		top.CurrentBranchValue = false
	} else {
		top.CurrentBranchValue = true
		top.AnyTrueYet = true
	}
	return p.afterConditionalChange()
}

func (p *Preprocessor) handleEndif(hashTok token.Token, rest []token.Token) error {
	_ = rest
	if len(p.conditionals) == 0 {
		return p.directiveError(hashTok.Pos, "#endif without #if")
	}
	p.conditionals = p.conditionals[:len(p.conditionals)-1]
	return p.afterConditionalChange()
}

// afterConditionalChange implements the handoff between the directive
// engine and the condition scanner (spec.md §4.2): whenever the top
// conditional frame is inactive, it switches the lexer into SkipInactive
// mode to cheaply skip to the #elif/#else/#endif that closes this frame
// (any nested #if groups inside the skipped region are consumed silently
// by SkipInactive's own depth counter, never becoming frames of their
// own), then re-lexes and dispatches that closing directive normally. It
// loops because a closing #elif whose own condition is false leaves the
// (possibly new) top frame inactive again.
func (p *Preprocessor) afterConditionalChange() error {
	for len(p.conditionals) > 0 && !p.conditionals[len(p.conditionals)-1].CurrentBranchValue {
		if _, err := p.lx.SkipInactive(); err != nil {
			pos := p.conditionals[len(p.conditionals)-1].Pos
			if rerr := p.reportf(diag.Error, pos, "%v", err); rerr != nil {
				return rerr
			}
			p.conditionals = nil
			return nil
		}
		hashTok, err := p.lx.NextRawToken()
		if err != nil {
			return err
		}
		line, err := p.collectLine()
		if err != nil {
			return err
		}
		if err := p.handleDirective(hashTok, line); err != nil {
			return err
		}
	}
	return nil
}

// evalConditional macro-expands an #if/#elif line (keeping `defined` and
// `__has_include(...)`'s raw, unexpanded operand per spec.md §4.4) and runs
// the constant-expression evaluator over the result.
func (p *Preprocessor) evalConditional(pos source.Position, rest []token.Token) (bool, error) {
	if len(rest) == 0 {
		if err := p.directiveError(pos, "#if with no expression"); err != nil {
			return false, err
		}
		return false, nil
	}
	expanded, err := p.expandForConditional(rest)
	if err != nil {
		return false, err
	}
	expr, perr := constexpr.Parse(expanded)
	if perr != nil {
		if err := p.directiveError(pos, "%v", perr); err != nil {
			return false, err
		}
		return false, nil
	}
	v, eerr := expr.Eval(constexprEnv{p})
	if eerr != nil {
		if err := p.directiveError(pos, "%v", eerr); err != nil {
			return false, err
		}
		return false, nil
	}
	return v != 0, nil
}

// expandForConditional macro-expands rest except for the operand of
// `defined`/`__has_include`/`__has_include_next`, which the C standard (and
// spec.md §4.4) requires to stay raw so cc/constexpr's own Defined/
// HasInclude nodes see the literal identifier or header name rather than
// whatever it might otherwise expand to. Any occurrence of a literal
// `defined` identifier that itself came from macro substitution (rather
// than being written directly on the #if/#elif line) is flagged with the
// "undefined behavior" warning spec.md §4.4 calls for.
func (p *Preprocessor) expandForConditional(rest []token.Token) ([]token.Token, error) {
	var out []token.Token
	i := 0
	for i < len(rest) {
		tok := rest[i]
		if tok.IsIdent() && tok.Text == "defined" {
			out = append(out, tok)
			i++
			i += copyRawOperand(rest[i:], &out)
			continue
		}
		if tok.IsIdent() && (tok.Text == "__has_include" || tok.Text == "__has_include_next") {
			out = append(out, tok)
			i++
			i += copyRawParenGroup(rest[i:], &out)
			continue
		}

		// Collect the maximal run up to the next defined/__has_include(_next)
		// token and expand it as one unit, so a function-like macro
		// invocation spanning several tokens is captured correctly.
		start := i
		for i < len(rest) {
			t := rest[i]
			if t.IsIdent() && (t.Text == "defined" || t.Text == "__has_include" || t.Text == "__has_include_next") {
				break
			}
			i++
		}
		segment, err := p.engine.Expand(rest[start:i])
		if err != nil {
			return nil, err
		}
		for _, t := range segment {
			if t.IsIdent() && t.Text == "defined" {
				if err := p.reportf(diag.Warning, t.Pos, "macro expansion producing 'defined' has undefined behavior"); err != nil {
					return nil, err
				}
			}
		}
		out = append(out, segment...)
	}
	return out, nil
}

// copyRawOperand copies defined's operand ("(" IDENT ")" or a bare IDENT)
// from toks into out unexpanded, returning the number of tokens consumed.
func copyRawOperand(toks []token.Token, out *[]token.Token) int {
	if len(toks) == 0 {
		return 0
	}
	if toks[0].Text == "(" {
		return copyRawParenGroup(toks, out)
	}
	*out = append(*out, toks[0])
	return 1
}

// copyRawParenGroup copies a balanced "(" ... ")" token run from the start
// of toks into out unexpanded, returning the number of tokens consumed (0
// if toks does not start with "(").
func copyRawParenGroup(toks []token.Token, out *[]token.Token) int {
	if len(toks) == 0 || toks[0].Text != "(" {
		return 0
	}
	depth := 0
	for i, t := range toks {
		*out = append(*out, t)
		if t.Text == "(" {
			depth++
		}
		if t.Text == ")" {
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(toks)
}

// constexprEnv adapts Preprocessor to cc/constexpr.Env. Every plain
// identifier Lookup call returns ok=false: by the time an expression
// reaches cc/constexpr.Parse, every object-like macro has already been
// replaced by expandForConditional's call to cc/macro.Engine.Expand, so
// any identifier surviving to here is genuinely undefined and evaluates to
// 0 per spec.md §4.5.
type constexprEnv struct{ p *Preprocessor }

func (e constexprEnv) Lookup(name string) (int64, bool) { return 0, false }
func (e constexprEnv) Defined(name string) bool         { return e.p.table.Defined(name) }
func (e constexprEnv) HasInclude(path string, angleBracket bool) bool {
	_, err := e.p.stack.Resolve(path, !angleBracket)
	return err == nil
}

// --- #pragma / #error / #warning / #line / #sccs -------------------------

func (p *Preprocessor) handlePragma(hashTok token.Token, rest []token.Token) error {
	// spec.md §4.3/§9: #pragma is currently a no-op, its tokens discarded;
	// a production implementation would dispatch recognised pragmas
	// (#pragma once, #pragma pack, ...) instead.
	return p.report(diag.Note, hashTok.Pos, "ignoring #pragma "+joinSource(rest))
}

func (p *Preprocessor) handleDiagnosticDirective(hashTok token.Token, rest []token.Token, sev diag.Severity) error {
	return p.report(sev, hashTok.Pos, joinSource(rest))
}

func joinSource(toks []token.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && t.SpaceBefore {
			b.WriteByte(' ')
		}
		b.WriteString(t.Src)
	}
	return b.String()
}

func (p *Preprocessor) handleLine(hashTok token.Token, rest []token.Token) error {
	expanded, err := p.engine.Expand(rest)
	if err != nil {
		return err
	}
	if len(expanded) == 0 || expanded[0].Kind != token.Literal || expanded[0].LiteralKind == token.NotLiteral ||
		expanded[0].LiteralKind == token.String || expanded[0].LiteralKind == token.Char {
		return p.directiveError(hashTok.Pos, "#line requires a decimal integer line number")
	}
	numTok := expanded[0]
	if len(numTok.Text) > 1 && numTok.Text[0] == '0' {
		if rerr := p.reportf(diag.Warning, hashTok.Pos, "#line number %q has a leading zero, interpreted as decimal", numTok.Text); rerr != nil {
			return rerr
		}
	}
	n, perr := strconv.ParseInt(numTok.Text, 10, 64)
	if perr != nil {
		return p.directiveError(hashTok.Pos, "invalid #line number %q", numTok.Text)
	}

	f := p.stack.Top()
	if f == nil {
		return nil
	}
	f.RowOffset = int(n) - (f.Row + 1)

	if len(expanded) > 1 {
		nameTok := expanded[1]
		if nameTok.Kind != token.Literal || nameTok.LiteralKind != token.String {
			return p.directiveError(hashTok.Pos, "#line filename must be a string literal")
		}
		f.DisplayName = nameTok.Text
	}
	return nil
}

func (p *Preprocessor) handleSccs(hashTok token.Token, rest []token.Token) error {
	if len(rest) != 1 || rest[0].Kind != token.Literal || rest[0].LiteralKind != token.String {
		return p.directiveError(hashTok.Pos, "#sccs requires a single string literal")
	}
	p.sccsMessages = append(p.sccsMessages, rest[0].Text)
	return nil
}

// errInvalidParamList formats a macro-parameter-list diagnostic; kept as a
// tiny named helper so every #define parsing error goes through one
// spelling.
func errInvalidParamList(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
