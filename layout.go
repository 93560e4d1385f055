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

import "github.com/samber/lo"

// minStackStart is the floor below which the software stack is never
// placed, even for a program with no globals at all.
const minStackStart = 65536

// stackStartPad is the slack left between the end of global data and
// the start of the stack region, before rounding up to a 64KiB page.
const stackStartPad = 1024

// wasmPageSize matches the (memory (export "memory") 2) declaration
// emitted by the module emitter: growth boundaries round to full pages.
const wasmPageSize = 65536

// AssignGlobalOffsets assigns every global variable an offset into
// linear memory, starting at address 0, in declaration order. It
// returns the total size rounded up to 16, the convention the stack
// region is then placed after.
func AssignGlobalOffsets(prog *Program) int {
	globals := lo.Filter(prog.Objs, func(o *Obj, _ int) bool { return !o.IsFunction })

	offset := 0
	for _, v := range globals {
		align := v.Ty.Align
		if align <= 0 {
			align = 1
		}
		offset = AlignTo(offset, align)
		v.Offset = offset
		offset += v.Ty.Size
	}
	return AlignTo(offset, 16)
}

// AssignLocalOffsets assigns every function's parameters and locals an
// offset into that function's activation record, starting at 0, and
// records the 16-aligned frame size as StackSize.
func AssignLocalOffsets(prog *Program) {
	functions := lo.Filter(prog.Objs, func(o *Obj, _ int) bool { return o.IsFunction })

	for _, fn := range functions {
		offset := 0
		for _, v := range fn.Locals {
			align := v.Ty.Align
			if align <= 0 {
				align = 1
			}
			offset = AlignTo(offset, align)
			v.Offset = offset
			offset += v.Ty.Size
		}
		fn.StackSize = AlignTo(offset, 16)
	}
}

// stackStart computes the initial value of the $__sp global: the stack
// grows downward from here, placed after the global data region with
// slack, rounded up to a full wasm page, and never below one page.
func stackStart(globalsSize int) int {
	start := AlignTo(globalsSize+stackStartPad, wasmPageSize)
	if start < minStackStart {
		start = minStackStart
	}
	return start
}
