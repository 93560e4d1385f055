// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"io"
	"strings"
)

// printer is the output-shaping helper every component writes through,
// modelled on codegen_wasm.c's println/indent/dedent: two spaces per
// indent level, one instruction per line.
type printer struct {
	out   io.Writer
	level int
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (p *printer) indent() { p.level++ }
func (p *printer) dedent() { p.level-- }

// printf writes one indented, newline-terminated line.
func (p *printer) printf(format string, args ...interface{}) {
	io.WriteString(p.out, strings.Repeat("  ", p.level))
	fmt.Fprintf(p.out, format, args...)
	io.WriteString(p.out, "\n")
}

// blank writes an empty line, matching the spacing chibicc's emitter
// puts between module sections.
func (p *printer) blank() {
	io.WriteString(p.out, "\n")
}
