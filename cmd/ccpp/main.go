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

// Command ccpp is an example driver for the preprocessor package: it reads
// one C source file, applies -I/-isystem search paths and -D/-U command-line
// macros, and prints the fully preprocessed token stream to stdout, one
// "kind text" pair per line.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ccfront/ccfront/cc/token"
	"github.com/ccfront/ccfront/internal/diag"
	"github.com/ccfront/ccfront/preprocessor"
)

// stringList collects every occurrence of a repeatable flag (-I, -isystem,
// -D, -U) in the order given on the command line.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var includeDirs, systemDirs, defines, undefines stringList
	flag.Var(&includeDirs, "I", "add a quote-form #include search directory (repeatable)")
	flag.Var(&systemDirs, "isystem", "add a system #include search directory (repeatable)")
	flag.Var(&defines, "D", "define NAME or NAME=VALUE before preprocessing (repeatable)")
	flag.Var(&undefines, "U", "undefine NAME before preprocessing (repeatable)")
	fatalOnError := flag.Bool("fatal-errors", false, "stop and exit nonzero on the first error diagnostic")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ccpp [flags] file.c")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	pp, err := preprocessor.NewFromFile(path)
	if err != nil {
		log.Fatalf("ccpp: %v", err)
	}
	reporter := diag.NewStderrReporter(*fatalOnError)
	pp.SetReporter(reporter)

	for _, dir := range includeDirs {
		pp.AddIncludeDir(dir)
	}
	for _, dir := range systemDirs {
		pp.AddSystemIncludeDir(dir)
	}
	for _, d := range defines {
		name, value, _ := strings.Cut(d, "=")
		if err := pp.Define(name, value); err != nil {
			log.Fatalf("ccpp: -D%s: %v", d, err)
		}
	}
	for _, name := range undefines {
		pp.Undef(name)
	}

	w := os.Stdout
	for {
		tok, err := pp.NextRawToken()
		if err != nil {
			log.Fatalf("ccpp: %v", err)
		}
		if tok.Kind == token.EOF {
			break
		}
		fmt.Fprintf(w, "%s %s\n", tok.Kind, tok.Text)
	}
}
