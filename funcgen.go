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

// funcGen holds the process-wide state touched while emitting one
// function: the output stream, the function being emitted, and a
// label counter reset per function (spec.md §5).
type funcGen struct {
	p          *printer
	fn         *Obj
	labelCount int
}

func (g *funcGen) nextLabel() int {
	n := g.labelCount
	g.labelCount++
	return n
}

// emitFunction writes one (func ...) form: signature, locals, prologue,
// parameter spill, the body wrapped in a labelled return block, the
// default return value, and the epilogue. The header line is written
// directly to the underlying writer since it mixes un-indented inline
// fragments ((param ...) (result ...)) that printf's one-line-per-
// instruction model doesn't fit.
func emitFunction(p *printer, fn *Obj) {
	g := &funcGen{p: p, fn: fn}

	header := "  (func $" + fn.Name
	if fn.Name == "main" {
		header += ` (export "_start")`
	}
	for _, param := range fn.Params {
		header += " (param $p_" + param.Name + " " + string(wasmType(param.Ty)) + ")"
	}
	ret := fn.Ty.ReturnTy
	hasReturn := ret != nil && ret.Kind != TyVoid
	if hasReturn {
		header += " (result " + string(wasmType(ret)) + ")"
	}
	p.out.Write([]byte(header + "\n"))

	p.level = 2

	p.printf("(local $__bp i32)  ;; base pointer")
	p.printf("(local $__tmp_i32 i32)")
	p.printf("(local $__tmp_f32 f32)")
	p.printf("(local $__tmp_f64 f64)")

	p.printf(";; prologue: allocate %d bytes", fn.StackSize)
	p.printf("(global.set $__sp (i32.sub (global.get $__sp) (i32.const %d)))", fn.StackSize)
	p.printf("(local.set $__bp (global.get $__sp))")

	for _, param := range fn.Params {
		p.printf(";; store param %s at bp+%d", param.Name, param.Offset)
		p.printf("(i32.add (local.get $__bp) (i32.const %d))", param.Offset)
		p.printf("(local.get $p_%s)", param.Name)
		g.wasmStore(param.Ty)
	}

	if hasReturn {
		p.printf("(block $__return (result %s)", wasmType(ret))
	} else {
		p.printf("(block $__return")
	}
	p.indent()

	g.genStmt(fn.Body)

	if hasReturn {
		if fn.Name == "main" {
			p.printf("(i32.const 0)")
		} else {
			p.printf("(%s.const 0) ;; implicit return", wasmType(ret))
		}
	}

	p.dedent()
	p.printf(") ;; end block $__return")

	p.printf(";; epilogue")
	p.printf("(global.set $__sp (i32.add (local.get $__bp) (i32.const %d)))", fn.StackSize)

	p.level = 1
	p.printf(") ;; end func $%s", fn.Name)
	p.blank()
}
