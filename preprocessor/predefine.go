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

package preprocessor

import (
	"fmt"
	"runtime"
	"time"

	"github.com/ccfront/ccfront/cc/macro"
	"github.com/ccfront/ccfront/cc/platform"
	"github.com/ccfront/ccfront/cc/token"
)

// preloadedDefinitions lists the object-like macros original_source/'s
// lcc_lexer.c installs before the first line of the primary file is ever
// read, independent of host platform (spec.md §5's "Supplemented
// Features"): compiler identity, standard-conformance and ABI macros.
var preloadedDefinitions = []platform.Definition{
	{Name: "__LCC__", Value: 1},
	{Name: "__GNUC__", Value: 4},
	{Name: "__GNUC_MINOR__", Value: 8},
	{Name: "__GNUC_PATCHLEVEL__", Value: 3},
	{Name: "__STDC__", Value: 1},
	{Name: "__STDC_HOSTED__", Value: 1},
	{Name: "__STDC_VERSION__", Value: 199901},
	{Name: "_LP64", Value: 1},
	{Name: "__LP64__", Value: 1},
	{Name: "__unix__", Value: 1},
	{Name: "__amd64__", Value: 1},
	{Name: "__x86_64__", Value: 1},
}

// preloadedStringMacros holds the handful of predefined object-like macros
// whose value is textual rather than integral.
var preloadedStringMacros = map[string]string{
	"__VERSION__":           "LightCC 1.0 (GCC 4.8.3 compatible)",
	"__REGISTER_PREFIX__":   "%",
	"__USER_LABEL_PREFIX__": "_",
}

// definePredefined installs the host platform environment (cc/platform)
// plus the fixed compiler-identity macros above directly into the macro
// table. This bypasses re-lexing a synthetic "<built-in>" source file:
// predefined macros never need to be re-tokenized from text since their
// values are already known Go values, so Define-ing them straight into the
// Table is simpler than lexing a file whose entire body would just be
// "#define NAME VALUE" lines.
func (p *Preprocessor) definePredefined() {
	host := platform.Host(runtime.GOOS, runtime.GOARCH)
	defs := platform.DefaultEnvironment(host)
	defs = append(defs, preloadedDefinitions...)
	for _, d := range defs {
		p.defineInt(d.Name, d.Value)
	}
	for name, value := range preloadedStringMacros {
		p.defineString(name, value)
	}
}

func (p *Preprocessor) defineInt(name string, value int) {
	text := fmt.Sprintf("%d", value)
	p.table.Define(&macro.Symbol{
		Name:  name,
		Flags: macro.ObjectLike | macro.Sys,
		Body:  []token.Token{{Kind: token.Literal, LiteralKind: token.Int, Text: text, Src: text}},
	})
}

func (p *Preprocessor) defineString(name, value string) {
	src := fmt.Sprintf("%q", value)
	p.table.Define(&macro.Symbol{
		Name:  name,
		Flags: macro.ObjectLike | macro.Sys,
		Body:  []token.Token{{Kind: token.Literal, LiteralKind: token.String, Text: value, Src: src}},
	})
}

// newBuiltinContext wires the macro.Context the extension hooks consult,
// with HasIncludeFn/HasFeatureFn/... deferring to the preprocessor's own
// search-path and feature-set state rather than caching anything at
// registration time (position fields are updated per run, see
// preprocessor.go's refreshContext).
func (p *Preprocessor) newBuiltinContext() *macro.Context {
	now := time.Now()
	ctx := &macro.Context{
		Date:      now.Format("Jan _2 2006"),
		Time:      now.Format("15:04:05"),
		Timestamp: now.Format("Mon Jan _2 15:04:05 2006"),
	}
	ctx.HasIncludeFn = func(path string, angleBracket, next bool) bool {
		if next {
			_, err := p.stack.ResolveNext(path)
			return err == nil
		}
		_, err := p.stack.Resolve(path, !angleBracket)
		return err == nil
	}
	ctx.HasFeatureFn = p.table.HasFeature
	ctx.HasExtendFn = p.table.HasExtension
	ctx.HasBuiltinFn = p.table.HasBuiltin
	return ctx
}
