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

// Option names one of the boolean configuration bits spec.md §6 groups
// under "Configuration": vendor-extension toggles that change lexer or
// macro-engine behavior without changing the directive grammar itself.
type Option int

const (
	// DollarInIdentifier lets '$' appear inside identifiers.
	DollarInIdentifier Option = iota
	// EscapeE makes '\e' inside string/character literals decode to the
	// ASCII ESC character (a GNU/Clang extension).
	EscapeE
	// VaOptMacro enables recognition of __VA_OPT__(...) inside variadic
	// function-like macro bodies.
	VaOptMacro
)

// SetOption toggles one of the named configuration bits.
func (p *Preprocessor) SetOption(opt Option, enabled bool) {
	switch opt {
	case DollarInIdentifier:
		p.lx.SetDollarInIdentifier(enabled)
	case EscapeE:
		p.lx.SetEscapeE(enabled)
	case VaOptMacro:
		p.table.VaOptEnabled = enabled
	}
}
