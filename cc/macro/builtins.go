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

	"github.com/ccfront/ccfront/cc/token"
)

// Context carries the handful of facts the builtin extension hooks need
// that are not themselves macro arguments: the current position in the
// source, kept up to date by the preprocessor core as it advances, and
// the fixed-at-startup facts (build date/time, base file). It is the
// concrete implementation of spec.md §4.4's "receives ... an end-of-range
// sentinel" contract's missing half: position context for __FILE__ etc.
type Context struct {
	File          string
	Line          int
	BaseFile      string
	IncludeLevel  int
	Date          string
	Time          string
	Timestamp     string
	FuncName      string
	HasIncludeFn  func(path string, angleBracket, next bool) bool
	HasFeatureFn  func(name string) bool
	HasExtendFn   func(name string) bool
	HasBuiltinFn  func(name string) bool
}

// RegisterBuiltins installs the object-like and function-like extension
// macros original_source/src/lcc_lexer.c predefines (spec.md §5
// "Builtin extension inventory"): __FILE__, __LINE__, __DATE__, __TIME__,
// __TIMESTAMP__, __BASE_FILE__, __INCLUDE_LEVEL__, __func__, __FUNCTION__
// as object-like hooks, and defined/__has_include/__has_include_next/
// __has_builtin/__has_feature/__has_extension as function-like hooks. ctx
// is consulted at expansion time, not at registration time, since its
// File/Line/IncludeLevel fields change as the preprocessor advances.
func RegisterBuiltins(t *Table, ctx *Context) {
	objectLike := map[string]ExtensionHook{
		"__FILE__": func(e *Engine, inv token.Token, _ [][]token.Token) ([]token.Token, error) {
			return []token.Token{stringLiteral(ctx.File)}, nil
		},
		"__LINE__": func(e *Engine, inv token.Token, _ [][]token.Token) ([]token.Token, error) {
			return []token.Token{intLiteral(ctx.Line)}, nil
		},
		"__DATE__": func(e *Engine, inv token.Token, _ [][]token.Token) ([]token.Token, error) {
			return []token.Token{stringLiteral(ctx.Date)}, nil
		},
		"__TIME__": func(e *Engine, inv token.Token, _ [][]token.Token) ([]token.Token, error) {
			return []token.Token{stringLiteral(ctx.Time)}, nil
		},
		"__TIMESTAMP__": func(e *Engine, inv token.Token, _ [][]token.Token) ([]token.Token, error) {
			return []token.Token{stringLiteral(ctx.Timestamp)}, nil
		},
		"__BASE_FILE__": func(e *Engine, inv token.Token, _ [][]token.Token) ([]token.Token, error) {
			return []token.Token{stringLiteral(ctx.BaseFile)}, nil
		},
		"__INCLUDE_LEVEL__": func(e *Engine, inv token.Token, _ [][]token.Token) ([]token.Token, error) {
			return []token.Token{intLiteral(ctx.IncludeLevel)}, nil
		},
		// __func__/__FUNCTION__ are registered as identity builtins: a
		// later parser stage (outside this module's scope, per spec.md
		// §5) owns substituting the enclosing function's name, so here
		// they simply expand to their own spelling as an identifier.
		"__func__": func(e *Engine, inv token.Token, _ [][]token.Token) ([]token.Token, error) {
			return []token.Token{{Kind: token.Ident, Text: "__func__", Src: "__func__", NoExpand: true}}, nil
		},
		"__FUNCTION__": func(e *Engine, inv token.Token, _ [][]token.Token) ([]token.Token, error) {
			return []token.Token{{Kind: token.Ident, Text: "__FUNCTION__", Src: "__FUNCTION__", NoExpand: true}}, nil
		},
	}
	for name, hook := range objectLike {
		t.Define(&Symbol{Name: name, Flags: ObjectLike | Builtin | Sys, Extension: hook})
		t.AddBuiltin(name)
	}

	functionLike := map[string]ExtensionHook{
		// defined accepts both "defined(X)" and the bare "defined X" form
		// (spec.md §4.3's #if/#elif handling), hence OptionalParens below.
		"defined": func(e *Engine, inv token.Token, args [][]token.Token) ([]token.Token, error) {
			name, err := singleIdentArg(args, "defined")
			if err != nil {
				return nil, err
			}
			return []token.Token{intLiteral(boolToInt(e.Table.Defined(name)))}, nil
		},
		"__has_include": func(e *Engine, inv token.Token, args [][]token.Token) ([]token.Token, error) {
			path, angle := headerPathArg(args)
			return []token.Token{intLiteral(boolToInt(ctx.HasIncludeFn != nil && ctx.HasIncludeFn(path, angle, false)))}, nil
		},
		"__has_include_next": func(e *Engine, inv token.Token, args [][]token.Token) ([]token.Token, error) {
			path, angle := headerPathArg(args)
			return []token.Token{intLiteral(boolToInt(ctx.HasIncludeFn != nil && ctx.HasIncludeFn(path, angle, true)))}, nil
		},
		"__has_feature": func(e *Engine, inv token.Token, args [][]token.Token) ([]token.Token, error) {
			name, err := singleIdentArg(args, "__has_feature")
			if err != nil {
				return nil, err
			}
			return []token.Token{intLiteral(boolToInt(ctx.HasFeatureFn != nil && ctx.HasFeatureFn(name)))}, nil
		},
		"__has_extension": func(e *Engine, inv token.Token, args [][]token.Token) ([]token.Token, error) {
			name, err := singleIdentArg(args, "__has_extension")
			if err != nil {
				return nil, err
			}
			return []token.Token{intLiteral(boolToInt(ctx.HasExtendFn != nil && ctx.HasExtendFn(name)))}, nil
		},
		"__has_builtin": func(e *Engine, inv token.Token, args [][]token.Token) ([]token.Token, error) {
			name, err := singleIdentArg(args, "__has_builtin")
			if err != nil {
				return nil, err
			}
			return []token.Token{intLiteral(boolToInt(ctx.HasBuiltinFn != nil && ctx.HasBuiltinFn(name)))}, nil
		},
	}
	for name, hook := range functionLike {
		flags := FunctionLike | Builtin | Sys
		if name == "defined" {
			flags |= OptionalParens
		}
		t.Define(&Symbol{Name: name, Flags: flags, Params: []string{"x"}, Extension: hook})
		t.AddBuiltin(name)
	}
}

func singleIdentArg(args [][]token.Token, op string) (string, error) {
	if len(args) != 1 || len(args[0]) != 1 || !args[0][0].IsIdent() {
		return "", fmt.Errorf("%s expects a single identifier argument", op)
	}
	return args[0][0].Text, nil
}

func headerPathArg(args [][]token.Token) (path string, angleBracket bool) {
	if len(args) != 1 || len(args[0]) == 0 {
		return "", false
	}
	toks := args[0]
	if toks[0].Text == "<" {
		angleBracket = true
		for _, t := range toks[1:] {
			if t.Text == ">" {
				break
			}
			path += t.Src
		}
		return path, true
	}
	if toks[0].Kind == token.Literal && toks[0].LiteralKind == token.String {
		return toks[0].Text, false
	}
	return "", false
}

func stringLiteral(s string) token.Token {
	return token.Token{Kind: token.Literal, LiteralKind: token.String, Text: s, Src: fmt.Sprintf("%q", s)}
}

func intLiteral(v int) token.Token {
	text := fmt.Sprintf("%d", v)
	return token.Token{Kind: token.Literal, LiteralKind: token.Int, Text: text, Src: text}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
