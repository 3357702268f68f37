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

// Package preprocessor implements the directive engine (spec.md §4.3): it
// drives a cc/lexer.Lexer over a cc/source.Stack, recognizes and executes
// #if/#define/#include and friends inline, and hands everything else to
// cc/macro.Engine for expansion, yielding one fully preprocessed token
// stream via NextRawToken.
package preprocessor

import (
	"fmt"

	"github.com/ccfront/ccfront/cc/lexer"
	"github.com/ccfront/ccfront/cc/macro"
	"github.com/ccfront/ccfront/cc/source"
	"github.com/ccfront/ccfront/cc/token"
	"github.com/ccfront/ccfront/internal/diag"
)

// condFrame is one entry of the conditional-inclusion stack: one open
// #if/#ifdef/#ifndef whose matching #endif has not yet been seen.
type condFrame struct {
	// CurrentBranchValue reports whether the branch currently being read
	// is the active (emitted) one.
	CurrentBranchValue bool
	// AnyTrueYet records whether any branch of this conditional (#if,
	// #elif...) has already been taken, so later #elif/#else branches are
	// known to be permanently inactive regardless of their own condition.
	AnyTrueYet bool
	// SawElse marks that a #else has already been seen at this nesting
	// level, so a second #else (or any #elif after it) is a directive
	// ordering error.
	SawElse bool
	Pos source.Position
}

// Preprocessor is the top-level driver described by spec.md §5/§6: it owns
// the file stack, the macro table, the conditional-evaluation stack, the
// configured search paths and feature/extension sets, and the queue of
// tokens already produced but not yet returned to the caller.
type Preprocessor struct {
	stack  *source.Stack
	lx     *lexer.Lexer
	table  *macro.Table
	engine *macro.Engine
	ctx    *macro.Context

	conditionals []condFrame
	reporter     diag.Reporter

	// pending holds fully macro-expanded tokens ready to be returned by
	// NextRawToken, produced a whole directive-free run at a time.
	pending []token.Token

	baseFile                 string
	primaryIncludeNextWarned bool

	sccsMessages []string
}

// New builds a Preprocessor reading a synthetic in-memory source (e.g. for
// tests), named displayName, with lines already split.
func New(displayName string, lines []string) *Preprocessor {
	p := newPreprocessor()
	p.baseFile = displayName
	p.stack.Push(source.FromLines(displayName, lines))
	return p
}

// NewFromFile builds a Preprocessor reading path from disk as the primary
// source file.
func NewFromFile(path string) (*Preprocessor, error) {
	f, err := source.Open(path, false)
	if err != nil {
		return nil, err
	}
	p := newPreprocessor()
	p.baseFile = path
	p.stack.Push(f)
	return p, nil
}

func newPreprocessor() *Preprocessor {
	stack := source.NewStack()
	table := macro.NewTable()
	p := &Preprocessor{
		stack:    stack,
		lx:       lexer.New(stack),
		table:    table,
		engine:   macro.NewEngine(table),
		reporter: diag.NewStderrReporter(false),
	}
	p.ctx = p.newBuiltinContext()
	macro.RegisterBuiltins(table, p.ctx)
	p.definePredefined()
	return p
}

// AddIncludeDir adds a quote-form (#include "...") search directory.
func (p *Preprocessor) AddIncludeDir(dir string) { p.stack.AddIncludeDir(dir) }

// AddLibraryDir adds a system (-isystem, #include <...>) search directory.
// The directive engine makes no distinction between "library" and "system"
// include directories beyond search order, so this is an alias for
// AddSystemIncludeDir kept under the name spec.md §6 uses for it.
func (p *Preprocessor) AddLibraryDir(dir string) { p.stack.AddSystemIncludeDir(dir) }

// AddSystemIncludeDir adds a system (-isystem, #include <...>) search
// directory.
func (p *Preprocessor) AddSystemIncludeDir(dir string) { p.stack.AddSystemIncludeDir(dir) }

func (p *Preprocessor) AddBuiltin(name string)   { p.table.AddBuiltin(name) }
func (p *Preprocessor) AddFeature(name string)   { p.table.AddFeature(name) }
func (p *Preprocessor) AddExtension(name string) { p.table.AddExtension(name) }

// SetReporter installs the diag.Reporter used for every diagnostic emitted
// while preprocessing. The default is a diag.StderrReporter that never
// treats errors as fatal.
func (p *Preprocessor) SetReporter(r diag.Reporter) { p.reporter = r }

// Define installs an object-like macro NAME=VALUE the way a "-D" command
// line flag does: value, if empty, defaults to "1".
func (p *Preprocessor) Define(name, value string) error {
	if value == "" {
		value = "1"
	}
	stack := source.NewStack()
	stack.Push(source.FromLines("<command-line>", []string{value}))
	lx := lexer.New(stack)
	var body []token.Token
	for {
		tok, err := lx.NextRawToken()
		if err != nil {
			return fmt.Errorf("-D%s: %w", name, err)
		}
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind == token.Newline {
			continue
		}
		body = append(body, tok)
	}
	sym := &macro.Symbol{Name: name, Flags: macro.ObjectLike, Body: body}
	if prev, redefined := p.table.Define(sym); redefined {
		p.warnRedefinition(name, prev, source.Position{File: "<command-line>"})
	}
	return nil
}

// Undef removes name from the macro table, exactly like a "-U" flag.
func (p *Preprocessor) Undef(name string) {
	if prev, ok := p.table.Lookup(name); ok && prev.Flags.Has(macro.Builtin) {
		p.reportf(diag.Warning, source.Position{File: "<command-line>"}, "undefining builtin macro %q", name)
	}
	p.table.Undef(name)
}

func (p *Preprocessor) warnRedefinition(name string, prev *macro.Symbol, pos source.Position) {
	if prev.Flags.Has(macro.Builtin) {
		p.reportf(diag.Warning, pos, "redefining builtin macro %q", name)
		return
	}
	p.reportf(diag.Warning, pos, "symbol %q redefined", name)
}

func (p *Preprocessor) report(sev diag.Severity, pos source.Position, msg string) error {
	return p.reporter.Report(diag.Diagnostic{
		Severity: sev,
		Pos:      diag.Position{File: pos.File, Line: pos.Line, Column: pos.Column},
		Message:  msg,
	})
}

func (p *Preprocessor) reportf(sev diag.Severity, pos source.Position, format string, args ...any) error {
	return p.report(sev, pos, fmt.Sprintf(format, args...))
}

// NextRawToken returns the next fully preprocessed token: directives have
// been executed, inactive conditional branches skipped, #include files
// inlined, and macro names expanded. Kind==EOF marks the end of the
// primary source file.
func (p *Preprocessor) NextRawToken() (token.Token, error) {
	for len(p.pending) == 0 {
		done, err := p.fill()
		if err != nil {
			return token.Token{}, err
		}
		if done {
			return token.Token{Kind: token.EOF}, nil
		}
	}
	tok := p.pending[0]
	p.pending = p.pending[1:]
	return tok, nil
}

// fill advances processing until at least one token is queued in
// p.pending, or reports (done=true) that the primary file is exhausted.
func (p *Preprocessor) fill() (done bool, err error) {
	tok, err := p.lx.NextRawToken()
	if err != nil {
		return false, err
	}

	if tok.Kind == token.Newline {
		// A blank logical line (or the boundary after a run/line that
		// already consumed its own trailing Newline) produces nothing.
		return false, nil
	}

	if tok.Kind == token.EOF {
		if len(p.conditionals) > 0 {
			if rerr := p.reportf(diag.Error, tok.Pos, "unterminated conditional directive"); rerr != nil {
				return false, rerr
			}
			p.conditionals = nil
		}
		if p.stack.Depth() > 1 {
			p.stack.Pop()
			p.refreshContext()
			return false, nil
		}
		return true, nil
	}

	if tok.Directive {
		line, err := p.collectLine()
		if err != nil {
			return false, err
		}
		if err := p.handleDirective(tok, line); err != nil {
			return false, err
		}
		return false, nil
	}

	run, err := p.collectRun(tok)
	if err != nil {
		return false, err
	}
	p.refreshContextAt(run[0].Pos)
	expanded, err := p.engine.Expand(run)
	if err != nil {
		return false, err
	}
	p.pending = expanded
	return false, nil
}

// collectLine gathers the remaining tokens of a directive line (the "#"
// token itself, hashTok, is not included), stopping at the Newline that
// closes hashTok's own logical line (the directive engine never sees the
// Newline itself, matching how a directive's argument list is always
// exactly one logical line regardless of what follows it).
func (p *Preprocessor) collectLine() ([]token.Token, error) {
	var line []token.Token
	for {
		tok, err := p.lx.NextRawToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.EOF || tok.Directive || tok.Kind == token.Newline {
			if tok.Kind == token.EOF || tok.Directive {
				p.lx.Unget(tok)
			}
			return line, nil
		}
		line = append(line, tok)
	}
}

// collectRun gathers a maximal sequence of ordinary (non-directive) tokens
// starting with first, stopping just before the next directive line or
// end of the current file. Keeping an entire directive-free span together
// (rather than one source line at a time) lets a function-like macro
// invocation's argument list span physical lines exactly as it would in a
// single-pass C preprocessor; the Newline tokens marking each spanned
// line's end are discarded rather than kept, since they are a lexer
// line-structure marker, not a preprocessed output token.
func (p *Preprocessor) collectRun(first token.Token) ([]token.Token, error) {
	run := []token.Token{first}
	for {
		tok, err := p.lx.NextRawToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.EOF || tok.Directive {
			p.lx.Unget(tok)
			return run, nil
		}
		if tok.Kind == token.Newline {
			continue
		}
		run = append(run, tok)
	}
}

func (p *Preprocessor) refreshContext() {
	f := p.stack.Top()
	if f == nil {
		return
	}
	p.ctx.File = f.DisplayName
	p.ctx.IncludeLevel = p.stack.Depth() - 1
	p.ctx.BaseFile = p.baseFile
}

func (p *Preprocessor) refreshContextAt(pos source.Position) {
	p.refreshContext()
	p.ctx.Line = pos.Line
	if pos.File != "" {
		p.ctx.File = pos.File
	}
}
