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

// genAddr emits code that leaves the linear-memory address of the
// lvalue node node on the operand stack. Any other node kind is a
// fatal, token-located error.
func (g *funcGen) genAddr(node *Node) {
	switch node.Kind {
	case NdVar:
		if node.Var.IsLocal {
			g.p.printf("(i32.add (local.get $__bp) (i32.const %d))", node.Var.Offset)
		} else {
			g.p.printf("(i32.const %d) ;; &%s", node.Var.Offset, node.Var.Name)
		}
		return
	case NdDeref:
		g.genExpr(node.Lhs)
		return
	case NdComma:
		g.genExpr(node.Lhs)
		g.p.printf("(drop)")
		g.genAddr(node.Rhs)
		return
	case NdMember:
		g.genAddr(node.Lhs)
		g.p.printf("(i32.const %d)", node.Member.Offset)
		g.p.printf("(i32.add)")
		return
	default:
		ErrorTok(node.Tok, "not an lvalue (wasm gen_addr)")
	}
}
