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

package source

import (
	"bufio"
	"fmt"
	"os"
)

// File is one opened input file, held as a line array plus a cursor
// walking over it. Lines never include the trailing newline; #line
// directives can retarget DisplayName/RowOffset without re-opening
// anything.
type File struct {
	// Path is the real filesystem path this File was opened from, used for
	// the quote-form #include search relative to the including file. Empty
	// for files built by FromLines.
	Path string
	// DisplayName is what gets reported in diagnostics and __FILE__; it can
	// be changed by a #line directive independently of Path.
	DisplayName string
	// Lines holds the file split on logical newlines (bufio.ScanLines);
	// continuation lines (trailing backslash) are NOT joined here, that is
	// the character lexer's job (spec.md §4.1's StateNextLineCont).
	Lines []string
	// Row is the 0-based index into Lines of the next line to be consumed.
	Row int
	// Col is the 0-based byte offset into Lines[Row] of the next character.
	Col int
	// RowOffset is added to Row+1 when reporting __LINE__/diagnostics,
	// letting a #line directive renumber subsequent lines.
	RowOffset int
	// Sys marks a file found under an -isystem directory (or included by
	// quote form from such a file). Macros #defined while it is on top of
	// the stack get macro.Sys, which changes how their redefinition and
	// #undef are diagnosed.
	Sys bool
	// NoDirective is set by FromLines. Nothing reads it: the lexer handles
	// '#' at the start of a line the same way whether it is set or not.
	NoDirective bool
	// Info is the os.FileInfo captured at open time, compared by SameFile.
	// Nil for files built by FromLines.
	Info os.FileInfo
	// IncludeDir is the search directory entry this file was found under,
	// or "" if it was the primary source file, a file built by FromLines,
	// or found by the quote-form relative search. Stack.ResolveNext uses
	// it to resume an #include_next search at the entry just past this
	// one.
	IncludeDir string
}

// Open reads path from disk into a File. displayName defaults to path.
func Open(path string, sys bool) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &File{
		Path:        path,
		DisplayName: path,
		Lines:       lines,
		Sys:         sys,
		Info:        info,
	}, nil
}

// FromLines builds a synthetic File (e.g. an in-memory test source or a
// -D value) directly from already-materialized lines, with no backing
// path.
func FromLines(displayName string, lines []string) *File {
	return &File{DisplayName: displayName, Lines: lines, NoDirective: true}
}

// AtEOF reports whether every line has been consumed.
func (f *File) AtEOF() bool {
	return f.Row >= len(f.Lines)
}

// CurrentLine returns the line the cursor is positioned within, and
// whether one exists (false at EOF).
func (f *File) CurrentLine() (string, bool) {
	if f.AtEOF() {
		return "", false
	}
	return f.Lines[f.Row], true
}

// Advance moves the cursor to the start of the next line.
func (f *File) Advance() {
	f.Row++
	f.Col = 0
}

// Position returns the current cursor's reporting position, honoring any
// #line-induced RowOffset.
func (f *File) Position() Position {
	return Position{
		File:   f.DisplayName,
		Line:   f.Row + 1 + f.RowOffset,
		Column: f.Col + 1,
	}
}
