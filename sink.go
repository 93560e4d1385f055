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
)

// OutputSink is the registration point for an alternative serialisation
// of the same Program/Token inputs (spec.md §2: "The JSON dumper is an
// alternative sink reading the same inputs"). Modelled on
// ArchParser/RegisterParser/GetParser from the assembly-translation
// driver this repo's CLI was ported from: one registry, many plugged-in
// emitters, looked up by name.
type OutputSink interface {
	// Name is the sink's CLI-facing identifier (e.g. "wasm").
	Name() string
	// Emit writes prog (and, for token sinks, toks) to out.
	Emit(out io.Writer, prog *Program, toks []*Token) error
}

var sinks = map[string]OutputSink{}

// RegisterSink registers an output sink under its own Name().
func RegisterSink(s OutputSink) {
	sinks[s.Name()] = s
}

// GetSink returns the sink registered under name.
func GetSink(name string) (OutputSink, error) {
	if s, ok := sinks[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("unsupported output sink: %s (available: wasm, json-ast, json-tokens)", name)
}

type wasmSink struct{}

func (wasmSink) Name() string { return "wasm" }
func (wasmSink) Emit(out io.Writer, prog *Program, _ []*Token) error {
	return CodegenWasm(prog, out)
}

type jsonASTSink struct{}

func (jsonASTSink) Name() string { return "json-ast" }
func (jsonASTSink) Emit(out io.Writer, prog *Program, _ []*Token) error {
	DumpAST(out, prog)
	return nil
}

type jsonTokensSink struct{}

func (jsonTokensSink) Name() string { return "json-tokens" }
func (jsonTokensSink) Emit(out io.Writer, _ *Program, toks []*Token) error {
	DumpTokens(out, toks)
	return nil
}

func init() {
	RegisterSink(wasmSink{})
	RegisterSink(jsonASTSink{})
	RegisterSink(jsonTokensSink{})
}
