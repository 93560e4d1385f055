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
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// maxDumpDepth bounds node-tree recursion so a deeply nested or
// accidentally cyclic AST can't blow the stack (spec.md §4.H).
const maxDumpDepth = 20

func jsonEscape(out io.Writer, s string) {
	io.WriteString(out, `"`)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			io.WriteString(out, `\"`)
		case '\\':
			io.WriteString(out, `\\`)
		case '\n':
			io.WriteString(out, `\n`)
		case '\r':
			io.WriteString(out, `\r`)
		case '\t':
			io.WriteString(out, `\t`)
		case 0:
			io.WriteString(out, `\u0000`)
		default:
			if c < 0x20 {
				fmt.Fprintf(out, `\u%04x`, c)
			} else {
				out.Write([]byte{c})
			}
		}
	}
	io.WriteString(out, `"`)
}

func jsonString(out io.Writer, s string, isNil bool) {
	if isNil {
		io.WriteString(out, "null")
		return
	}
	jsonEscape(out, s)
}

var tokenKindNames = map[TokenKind]string{
	TkIdent:   "TK_IDENT",
	TkPunct:   "TK_PUNCT",
	TkKeyword: "TK_KEYWORD",
	TkStr:     "TK_STR",
	TkNum:     "TK_NUM",
	TkPPNum:   "TK_PP_NUM",
	TkEOF:     "TK_EOF",
}

func tokenKindName(k TokenKind) string {
	if n, ok := tokenKindNames[k]; ok {
		return n
	}
	return "TK_UNKNOWN"
}

func nodeKindName(k NodeKind) string {
	if n, ok := nodeKindNames[k]; ok {
		return n
	}
	return "ND_UNKNOWN"
}

// typeToStr renders a short, human-readable type form: "int", "unsigned
// long", "char *", "char[10]", "int[*]", "struct(N)", "union(N)",
// "int (*)()".
func typeToStr(ty *Type) string {
	if ty == nil {
		return "(null)"
	}
	switch ty.Kind {
	case TyVoid:
		if ty.IsUnsigned {
			return "unsigned void"
		}
		return "void"
	case TyBool:
		return "_Bool"
	case TyChar:
		if ty.IsUnsigned {
			return "unsigned char"
		}
		return "char"
	case TyShort:
		if ty.IsUnsigned {
			return "unsigned short"
		}
		return "short"
	case TyInt:
		if ty.IsUnsigned {
			return "unsigned int"
		}
		return "int"
	case TyLong:
		if ty.IsUnsigned {
			return "unsigned long"
		}
		return "long"
	case TyFloat:
		return "float"
	case TyDouble:
		return "double"
	case TyLDouble:
		return "long double"
	case TyEnum:
		return "enum"
	case TyStruct:
		return "struct(" + strconv.Itoa(ty.Size) + ")"
	case TyUnion:
		return "union(" + strconv.Itoa(ty.Size) + ")"
	case TyPtr:
		return typeToStr(ty.Base) + " *"
	case TyArray:
		return typeToStr(ty.Base) + "[" + strconv.Itoa(ty.ArrayLen) + "]"
	case TyVLA:
		return typeToStr(ty.Base) + "[*]"
	case TyFunc:
		return typeToStr(ty.ReturnTy) + " (*)()"
	}
	return "unknown"
}

// DumpTokens writes a JSON token array to out.
func DumpTokens(out io.Writer, toks []*Token) {
	io.WriteString(out, "[\n")
	entries := lo.Filter(toks, func(t *Token, _ int) bool { return t.Kind != TkEOF })
	for i, t := range entries {
		if i > 0 {
			io.WriteString(out, ",\n")
		}
		io.WriteString(out, `  {"kind":`)
		jsonString(out, tokenKindName(t.Kind), false)
		io.WriteString(out, `,"text":`)
		jsonEscape(out, t.Text)
		fmt.Fprintf(out, `,"line":%d`, t.Line)
		io.WriteString(out, `,"file":`)
		jsonEscape(out, t.File)
		if t.Kind == TkNum {
			if t.IsFloat {
				fmt.Fprintf(out, `,"fval":%v`, t.FVal)
			} else {
				fmt.Fprintf(out, `,"val":%d`, t.Val)
			}
		}
		io.WriteString(out, "}")
	}
	io.WriteString(out, "\n]\n")
}

// DumpAST writes a JSON program document to out (spec.md §4.H).
func DumpAST(out io.Writer, prog *Program) {
	io.WriteString(out, "{\"globals\":[\n")
	for i, obj := range prog.Objs {
		if i > 0 {
			io.WriteString(out, ",\n")
		}
		dumpObj(out, obj)
	}
	io.WriteString(out, "\n]}\n")
}

func dumpObj(out io.Writer, obj *Obj) {
	io.WriteString(out, "  {\"name\":")
	jsonString(out, obj.Name, false)
	fmt.Fprintf(out, `,"is_function":%t`, obj.IsFunction)
	fmt.Fprintf(out, `,"is_definition":%t`, obj.IsDefinition)
	fmt.Fprintf(out, `,"is_static":%t`, obj.IsStatic)

	if obj.Ty != nil {
		io.WriteString(out, `,"type":`)
		jsonString(out, typeToStr(obj.Ty), false)
	}

	if obj.IsFunction {
		if obj.Ty != nil && obj.Ty.ReturnTy != nil {
			io.WriteString(out, `,"return_type":`)
			jsonString(out, typeToStr(obj.Ty.ReturnTy), false)
		}

		io.WriteString(out, `,"params":[`)
		params := lo.Map(obj.Params, func(p *Obj, _ int) string {
			var b strings.Builder
			b.WriteString(`{"name":`)
			jsonString(&b, p.Name, false)
			b.WriteString(`,"type":`)
			jsonString(&b, typeToStr(p.Ty), false)
			fmt.Fprintf(&b, `,"offset":%d}`, p.Offset)
			return b.String()
		})
		io.WriteString(out, strings.Join(params, ","))
		io.WriteString(out, "]")

		if obj.Body != nil {
			io.WriteString(out, `,"body":`)
			dumpNode(out, obj.Body, 0)
		}

		io.WriteString(out, `,"locals":[`)
		locals := lo.Map(obj.Locals, func(l *Obj, _ int) string {
			var b strings.Builder
			b.WriteString(`{"name":`)
			jsonString(&b, l.Name, false)
			b.WriteString(`,"type":`)
			jsonString(&b, typeToStr(l.Ty), false)
			fmt.Fprintf(&b, `,"offset":%d}`, l.Offset)
			return b.String()
		})
		io.WriteString(out, strings.Join(locals, ","))
		io.WriteString(out, "]")
	} else {
		if obj.IsTentative {
			io.WriteString(out, `,"is_tentative":true`)
		}
		if obj.IsTLS {
			io.WriteString(out, `,"is_tls":true`)
		}
		if obj.InitData != nil {
			io.WriteString(out, `,"has_init_data":true`)
		}
	}

	io.WriteString(out, "}")
}

func dumpNodeField(out io.Writer, key string, node *Node, depth int) {
	fmt.Fprintf(out, `,"%s":`, key)
	if node != nil {
		dumpNode(out, node, depth)
	} else {
		io.WriteString(out, "null")
	}
}

func dumpNodeList(out io.Writer, key string, node *Node, depth int) {
	fmt.Fprintf(out, `,"%s":[`, key)
	for n, first := node, true; n != nil; n = n.Next {
		if !first {
			io.WriteString(out, ",")
		}
		first = false
		dumpNode(out, n, depth)
	}
	io.WriteString(out, "]")
}

func dumpNode(out io.Writer, node *Node, depth int) {
	if node == nil {
		io.WriteString(out, "null")
		return
	}
	if depth > maxDumpDepth {
		io.WriteString(out, `{"kind":"...(truncated)"}`)
		return
	}

	io.WriteString(out, `{"kind":`)
	jsonString(out, nodeKindName(node.Kind), false)

	if node.Ty != nil {
		io.WriteString(out, `,"type":`)
		jsonString(out, typeToStr(node.Ty), false)
	}
	if node.Tok != nil {
		fmt.Fprintf(out, `,"line":%d`, node.Tok.Line)
	}

	switch node.Kind {
	case NdNum:
		if isFloatTy(node.Ty) {
			fmt.Fprintf(out, `,"fval":%v`, node.FVal)
		} else {
			fmt.Fprintf(out, `,"val":%d`, node.Val)
		}

	case NdVar:
		if node.Var != nil {
			io.WriteString(out, `,"name":`)
			jsonString(out, node.Var.Name, false)
		}

	case NdFunCall:
		dumpNodeField(out, "func", node.Lhs, depth+1)
		dumpNodeList(out, "args", node.Args, depth+1)

	case NdMember:
		dumpNodeField(out, "lhs", node.Lhs, depth+1)
		if node.Member != nil {
			io.WriteString(out, `,"member":`)
			jsonEscape(out, node.Member.Name)
		}

	case NdIf:
		dumpNodeField(out, "cond", node.Cond, depth+1)
		dumpNodeField(out, "then", node.Then, depth+1)
		if node.Els != nil {
			dumpNodeField(out, "els", node.Els, depth+1)
		}

	case NdFor:
		if node.Init != nil {
			dumpNodeField(out, "init", node.Init, depth+1)
		}
		if node.Cond != nil {
			dumpNodeField(out, "cond", node.Cond, depth+1)
		}
		if node.Inc != nil {
			dumpNodeField(out, "inc", node.Inc, depth+1)
		}
		dumpNodeField(out, "then", node.Then, depth+1)

	case NdDo:
		dumpNodeField(out, "body", node.Then, depth+1)
		dumpNodeField(out, "cond", node.Cond, depth+1)

	case NdSwitch:
		dumpNodeField(out, "cond", node.Cond, depth+1)
		dumpNodeField(out, "then", node.Then, depth+1)

	case NdCase:
		fmt.Fprintf(out, `,"begin":%d,"end":%d`, node.Begin, node.End)
		dumpNodeField(out, "body", node.Lhs, depth+1)

	case NdBlock, NdStmtExpr:
		dumpNodeList(out, "body", node.Body, depth+1)

	case NdReturn, NdExprStmt, NdNeg, NdAddr, NdDeref, NdNot, NdBitNot, NdCast:
		if node.Lhs != nil {
			dumpNodeField(out, "lhs", node.Lhs, depth+1)
		}

	case NdGoto:
		if node.Label != "" {
			io.WriteString(out, `,"label":`)
			jsonString(out, node.Label, false)
		}

	case NdGotoExpr:
		dumpNodeField(out, "expr", node.Lhs, depth+1)

	case NdLabel:
		if node.Label != "" {
			io.WriteString(out, `,"label":`)
			jsonString(out, node.Label, false)
		}
		dumpNodeField(out, "body", node.Lhs, depth+1)

	case NdLabelVal:
		if node.Label != "" {
			io.WriteString(out, `,"label":`)
			jsonString(out, node.Label, false)
		}

	case NdAsm:
		if node.AsmStr != "" {
			io.WriteString(out, `,"asm":`)
			jsonString(out, node.AsmStr, false)
		}

	case NdCAS:
		dumpNodeField(out, "addr", node.CasAddr, depth+1)
		dumpNodeField(out, "old", node.CasOld, depth+1)
		dumpNodeField(out, "new", node.CasNew, depth+1)

	case NdExch:
		dumpNodeField(out, "lhs", node.Lhs, depth+1)
		dumpNodeField(out, "rhs", node.Rhs, depth+1)

	case NdCond:
		dumpNodeField(out, "cond", node.Cond, depth+1)
		dumpNodeField(out, "then", node.Then, depth+1)
		dumpNodeField(out, "els", node.Els, depth+1)

	case NdMemZero, NdVLAPtr:
		if node.Var != nil {
			io.WriteString(out, `,"name":`)
			jsonString(out, node.Var.Name, false)
		}

	default:
		// Binary ops: ADD SUB MUL DIV MOD BITAND BITOR BITXOR SHL SHR
		// EQ NE LT LE ASSIGN COMMA LOGAND LOGOR.
		if node.Lhs != nil {
			dumpNodeField(out, "lhs", node.Lhs, depth+1)
		}
		if node.Rhs != nil {
			dumpNodeField(out, "rhs", node.Rhs, depth+1)
		}
	}

	io.WriteString(out, "}")
}
