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

// wasmLoad emits the load instruction appropriate for ty, assuming an
// address is already on top of the operand stack. Aggregates, arrays,
// and function values decay to their address: nothing is emitted.
func (g *funcGen) wasmLoad(ty *Type) {
	if ty == nil {
		return
	}
	switch ty.Kind {
	case TyArray, TyStruct, TyUnion, TyFunc:
		return
	case TyFloat:
		g.p.printf("(f32.load)")
		return
	case TyDouble, TyLDouble:
		g.p.printf("(f64.load)")
		return
	}

	switch wasmSize(ty) {
	case 1:
		if ty.IsUnsigned {
			g.p.printf("(i32.load8_u)")
		} else {
			g.p.printf("(i32.load8_s)")
		}
	case 2:
		if ty.IsUnsigned {
			g.p.printf("(i32.load16_u)")
		} else {
			g.p.printf("(i32.load16_s)")
		}
	default:
		g.p.printf("(i32.load)")
	}
}

// wasmStore emits the store instruction appropriate for ty. Input stack
// is [addr, value]; struct/union stores are unsupported in the core and
// emit a diagnostic stub that balances the stack instead.
func (g *funcGen) wasmStore(ty *Type) {
	if ty == nil {
		return
	}
	if ty.Kind == TyStruct || ty.Kind == TyUnion {
		g.p.printf(";; TODO: struct store (size=%d)", ty.Size)
		g.p.printf("(drop)")
		g.p.printf("(drop)")
		return
	}
	if ty.Kind == TyFloat {
		g.p.printf("(f32.store)")
		return
	}
	if ty.Kind == TyDouble || ty.Kind == TyLDouble {
		g.p.printf("(f64.store)")
		return
	}
	switch wasmSize(ty) {
	case 1:
		g.p.printf("(i32.store8)")
	case 2:
		g.p.printf("(i32.store16)")
	default:
		g.p.printf("(i32.store)")
	}
}

// genExpr emits code that leaves exactly one value on the operand
// stack, of wasm type wasmType(node.Ty).
func (g *funcGen) genExpr(node *Node) {
	if node == nil {
		return
	}

	switch node.Kind {
	case NdNullExpr:
		g.p.printf("(i32.const 0)")
		return

	case NdNum:
		switch {
		case isF32(node.Ty):
			g.p.printf("(f32.const %f)", float32(node.FVal))
		case isF64(node.Ty):
			g.p.printf("(f64.const %f)", node.FVal)
		case isI64(node.Ty):
			g.p.printf("(i64.const %d)", node.Val)
		default:
			g.p.printf("(i32.const %d)", int32(node.Val))
		}
		return

	case NdVar, NdMember:
		g.genAddr(node)
		g.wasmLoad(node.Ty)
		return

	case NdAddr:
		g.genAddr(node.Lhs)
		return

	case NdDeref:
		g.genExpr(node.Lhs)
		g.wasmLoad(node.Ty)
		return

	case NdNeg:
		switch {
		case isF32(node.Ty):
			g.genExpr(node.Lhs)
			g.p.printf("(f32.neg)")
		case isF64(node.Ty):
			g.genExpr(node.Lhs)
			g.p.printf("(f64.neg)")
		default:
			g.p.printf("(i32.const 0)")
			g.genExpr(node.Lhs)
			g.p.printf("(i32.sub)")
		}
		return

	case NdNot:
		g.genExpr(node.Lhs)
		g.p.printf("(i32.eqz)")
		return

	case NdBitNot:
		g.genExpr(node.Lhs)
		g.p.printf("(i32.const -1)")
		g.p.printf("(i32.xor)")
		return

	case NdAssign:
		g.genAssign(node)
		return

	case NdComma:
		g.genExpr(node.Lhs)
		g.p.printf("(drop)")
		g.genExpr(node.Rhs)
		return

	case NdCast:
		g.genCast(node)
		return

	case NdCond:
		g.genCond(node)
		return

	case NdLogAnd:
		g.genLogAnd(node)
		return

	case NdLogOr:
		g.genLogOr(node)
		return

	case NdFunCall:
		g.genFunCall(node)
		return

	case NdStmtExpr:
		g.genStmtExpr(node)
		return

	case NdMemZero:
		size := node.Var.Ty.Size
		g.p.printf(";; memzero %s (%d bytes)", node.Var.Name, size)
		g.p.printf("(i32.add (local.get $__bp) (i32.const %d))", node.Var.Offset)
		g.p.printf("(i32.const 0)")
		g.p.printf("(i32.const %d)", size)
		g.p.printf("(memory.fill)")
		return

	case NdCAS:
		g.p.printf(";; TODO: CAS (unsupported)")
		g.genExpr(node.CasAddr)
		g.p.printf("(drop)")
		g.genExpr(node.CasOld)
		g.p.printf("(drop)")
		g.genExpr(node.CasNew)
		g.p.printf("(drop)")
		g.p.printf("(%s.const 0)", wasmType(node.Ty))
		return

	case NdExch:
		g.p.printf(";; TODO: exch (unsupported)")
		g.genExpr(node.Lhs)
		g.p.printf("(drop)")
		g.genExpr(node.Rhs)
		g.p.printf("(drop)")
		g.p.printf("(%s.const 0)", wasmType(node.Ty))
		return

	case NdVLAPtr:
		g.p.printf(";; TODO: VLA pointer %s (unsupported)", node.Var.Name)
		g.p.printf("(i32.const 0)")
		return

	case NdLabelVal:
		g.p.printf(";; TODO: label value %s (unsupported)", node.Label)
		g.p.printf("(i32.const 0)")
		return
	}

	if node.Lhs != nil && node.Rhs != nil {
		if g.genBinary(node) {
			return
		}
	}

	ErrorTok(node.Tok, "unsupported expression in wasm codegen (kind=%d)", node.Kind)
}

// genAssign evaluates the address then the value, stores through one of
// the three scratch locals, and leaves the stored value as the
// expression's result — wasm has no tee-through-store instruction, so
// the scratch local stands in for one (spec.md §9, "Assignment as
// expression").
func (g *funcGen) genAssign(node *Node) {
	g.genAddr(node.Lhs)
	g.genExpr(node.Rhs)

	wt := wasmType(node.Ty)
	scratch := "$__tmp_i32"
	if wt == wasmF32 {
		scratch = "$__tmp_f32"
	} else if wt == wasmF64 {
		scratch = "$__tmp_f64"
	}

	g.p.printf("(local.set %s)", scratch)
	g.p.printf("(local.get %s)", scratch)
	g.wasmStore(node.Ty)
	g.p.printf("(local.get %s)", scratch)
}

// genCast applies the four cast rules in order: same-family
// narrowing/bool, f32<->f64, float->int, int->float.
func (g *funcGen) genCast(node *Node) {
	g.genExpr(node.Lhs)
	from := node.Lhs.Ty
	to := node.Ty
	if from == nil || to == nil {
		return
	}

	if !isFloatTy(from) && !isFloatTy(to) && !isI64(from) && !isI64(to) {
		switch {
		case to.Kind == TyBool:
			g.p.printf("(i32.const 0)")
			g.p.printf("(i32.ne)")
		case to.Size == 1 && to.IsUnsigned:
			g.p.printf("(i32.const 255) (i32.and)")
		case to.Size == 1:
			g.p.printf("(i32.extend8_s)")
		case to.Size == 2 && to.IsUnsigned:
			g.p.printf("(i32.const 65535) (i32.and)")
		case to.Size == 2:
			g.p.printf("(i32.extend16_s)")
		}
		return
	}

	switch {
	case isF32(from) && isF64(to):
		g.p.printf("(f64.promote_f32)")
	case isF64(from) && isF32(to):
		g.p.printf("(f32.demote_f64)")
	case isFloatTy(from) && !isFloatTy(to):
		if isF32(from) {
			if to.IsUnsigned {
				g.p.printf("(i32.trunc_f32_u)")
			} else {
				g.p.printf("(i32.trunc_f32_s)")
			}
		} else {
			if to.IsUnsigned {
				g.p.printf("(i32.trunc_f64_u)")
			} else {
				g.p.printf("(i32.trunc_f64_s)")
			}
		}
	case !isFloatTy(from) && isFloatTy(to):
		if isF32(to) {
			if from.IsUnsigned {
				g.p.printf("(f32.convert_i32_u)")
			} else {
				g.p.printf("(f32.convert_i32_s)")
			}
		} else {
			if from.IsUnsigned {
				g.p.printf("(f64.convert_i32_u)")
			} else {
				g.p.printf("(f64.convert_i32_s)")
			}
		}
	}
}

func (g *funcGen) genCond(node *Node) {
	wt := wasmType(node.Ty)
	g.genExpr(node.Cond)
	g.p.printf("(if (result %s)", wt)
	g.p.indent()
	g.p.printf("(then")
	g.p.indent()
	g.genExpr(node.Then)
	g.p.dedent()
	g.p.printf(")")
	g.p.printf("(else")
	g.p.indent()
	if node.Els != nil {
		g.genExpr(node.Els)
	} else {
		g.p.printf("(%s.const 0)", wt)
	}
	g.p.dedent()
	g.p.printf(")")
	g.p.dedent()
	g.p.printf(")")
}

func (g *funcGen) genLogAnd(node *Node) {
	g.genExpr(node.Lhs)
	g.p.printf("(if (result i32)")
	g.p.indent()
	g.p.printf("(then")
	g.p.indent()
	g.genExpr(node.Rhs)
	g.p.printf("(i32.const 0)")
	g.p.printf("(i32.ne)")
	g.p.dedent()
	g.p.printf(")")
	g.p.printf("(else (i32.const 0))")
	g.p.dedent()
	g.p.printf(")")
}

func (g *funcGen) genLogOr(node *Node) {
	g.genExpr(node.Lhs)
	g.p.printf("(if (result i32)")
	g.p.indent()
	g.p.printf("(then (i32.const 1))")
	g.p.printf("(else")
	g.p.indent()
	g.genExpr(node.Rhs)
	g.p.printf("(i32.const 0)")
	g.p.printf("(i32.ne)")
	g.p.dedent()
	g.p.printf(")")
	g.p.dedent()
	g.p.printf(")")
}

func (g *funcGen) genFunCall(node *Node) {
	for arg := node.Args; arg != nil; arg = arg.Next {
		g.genExpr(arg)
	}
	if node.Lhs != nil && node.Lhs.Kind == NdVar {
		g.p.printf("(call $%s)", node.Lhs.Var.Name)
		return
	}
	g.p.printf(";; TODO: indirect call")
	g.p.printf("(drop)")
	g.p.printf("(i32.const 0)")
}

// genStmtExpr emits a statement expression's body: every statement but
// the last is emitted as a statement, the last is emitted as an
// expression (not dropped) to satisfy the caller's one-value contract.
// If the last statement isn't an expression statement, a zero is pushed
// after it.
func (g *funcGen) genStmtExpr(node *Node) {
	for n := node.Body; n != nil; n = n.Next {
		if n.Next == nil {
			if n.Kind == NdExprStmt {
				g.genExpr(n.Lhs)
			} else {
				g.genStmt(n)
				g.p.printf("(i32.const 0)")
			}
		} else {
			g.genStmt(n)
		}
	}
}

// genBinary handles the remaining binary operators by evaluating both
// sides and emitting one typed operator. Float operators use the
// node's own wasm type; integer operators always use i32. Signedness is
// taken from the left operand.
func (g *funcGen) genBinary(node *Node) bool {
	g.genExpr(node.Lhs)
	g.genExpr(node.Rhs)

	t := string(wasmI32)
	isUnsigned := node.Lhs.Ty != nil && node.Lhs.Ty.IsUnsigned
	isFloat := isFloatTy(node.Ty)
	if isFloat {
		t = string(wasmType(node.Ty))
	}

	switch node.Kind {
	case NdAdd:
		g.p.printf("(%s.add)", t)
	case NdSub:
		g.p.printf("(%s.sub)", t)
	case NdMul:
		g.p.printf("(%s.mul)", t)
	case NdDiv:
		if isFloat {
			g.p.printf("(%s.div)", t)
		} else if isUnsigned {
			g.p.printf("(%s.div_u)", t)
		} else {
			g.p.printf("(%s.div_s)", t)
		}
	case NdMod:
		if isUnsigned {
			g.p.printf("(%s.rem_u)", t)
		} else {
			g.p.printf("(%s.rem_s)", t)
		}
	case NdBitAnd:
		g.p.printf("(%s.and)", t)
	case NdBitOr:
		g.p.printf("(%s.or)", t)
	case NdBitXor:
		g.p.printf("(%s.xor)", t)
	case NdShl:
		g.p.printf("(%s.shl)", t)
	case NdShr:
		if isUnsigned {
			g.p.printf("(%s.shr_u)", t)
		} else {
			g.p.printf("(%s.shr_s)", t)
		}
	case NdEq:
		g.p.printf("(%s.eq)", t)
	case NdNe:
		g.p.printf("(%s.ne)", t)
	case NdLt:
		if isFloat {
			g.p.printf("(%s.lt)", t)
		} else if isUnsigned {
			g.p.printf("(%s.lt_u)", t)
		} else {
			g.p.printf("(%s.lt_s)", t)
		}
	case NdLe:
		if isFloat {
			g.p.printf("(%s.le)", t)
		} else if isUnsigned {
			g.p.printf("(%s.le_u)", t)
		} else {
			g.p.printf("(%s.le_s)", t)
		}
	default:
		return false
	}
	return true
}
