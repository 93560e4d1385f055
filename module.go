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

	"github.com/samber/lo"
)

// CodegenWasm emits a wasm text module for the whole program to out. It
// is the sole point where a fatal *GenError raised anywhere in the
// pipeline is turned back into a returned error — the core itself never
// calls os.Exit (spec.md §6, §7).
func CodegenWasm(prog *Program, out io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ge, ok := r.(*GenError); ok {
				err = ge
				return
			}
			panic(r)
		}
	}()

	dataSize := AssignGlobalOffsets(prog)
	AssignLocalOffsets(prog)
	start := stackStart(dataSize)

	p := newPrinter(out)

	p.printf("(module")
	p.indent()

	p.printf(`(memory (export "memory") 2)`)
	p.blank()

	p.printf(";; Stack pointer (grows downward from %d)", start)
	p.printf("(global $__sp (mut i32) (i32.const %d))", start)
	p.blank()

	emitData(p, prog)
	p.blank()

	emitLiveFunctions(p, prog)

	p.dedent()
	p.printf(")")
	return nil
}

// emitData writes one (data (i32.const off) "...") segment per
// initialised global, escaping everything outside printable ASCII (and
// '"'/'\\') as lowercase hex.
func emitData(p *printer, prog *Program) {
	globals := lo.Filter(prog.Objs, func(o *Obj, _ int) bool {
		return !o.IsFunction && o.InitData != nil
	})
	for _, v := range globals {
		p.printf(";; global: %s (offset=%d, size=%d)", v.Name, v.Offset, v.Ty.Size)
		fmt.Fprintf(p.out, "  (data (i32.const %d) \"%s\")\n", v.Offset, escapeDataBytes(v.InitData))
	}
}

func escapeDataBytes(b []byte) string {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c >= 32 && c < 127 && c != '"' && c != '\\' {
			out = append(out, c)
		} else {
			out = append(out, []byte(fmt.Sprintf("\\%02x", c))...)
		}
	}
	return string(out)
}

// emitLiveFunctions writes one (func ...) per live function definition;
// main is exported as "_start".
func emitLiveFunctions(p *printer, prog *Program) {
	fns := lo.Filter(prog.Objs, func(o *Obj, _ int) bool {
		return o.IsFunction && o.IsDefinition && o.IsLive
	})
	for _, fn := range fns {
		emitFunction(p, fn)
	}
}
