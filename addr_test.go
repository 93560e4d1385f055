package main

import (
	"bytes"
	"strings"
	"testing"
)

func newTestFuncGen() (*funcGen, *bytes.Buffer) {
	var buf bytes.Buffer
	p := newPrinter(&buf)
	return &funcGen{p: p, fn: &Obj{Name: "f"}}, &buf
}

func TestGenAddrLocalVar(t *testing.T) {
	g, buf := newTestFuncGen()
	v := &Obj{Name: "x", IsLocal: true, Offset: 12}
	g.genAddr(&Node{Kind: NdVar, Var: v})

	got := buf.String()
	if !strings.Contains(got, "(local.get $__bp)") || !strings.Contains(got, "(i32.const 12)") {
		t.Errorf("genAddr(local var) = %q, want base-pointer-relative address", got)
	}
}

func TestGenAddrGlobalVar(t *testing.T) {
	g, buf := newTestFuncGen()
	v := &Obj{Name: "g", Offset: 40}
	g.genAddr(&Node{Kind: NdVar, Var: v})

	got := buf.String()
	if !strings.Contains(got, "(i32.const 40)") {
		t.Errorf("genAddr(global var) = %q, want absolute offset", got)
	}
	if strings.Contains(got, "$__bp") {
		t.Errorf("genAddr(global var) = %q, should not reference the frame base pointer", got)
	}
}

func TestGenAddrComma(t *testing.T) {
	g, buf := newTestFuncGen()
	lhs := &Node{Kind: NdNum, Val: 1}
	rhsVar := &Obj{Name: "y", IsLocal: true, Offset: 8}
	rhs := &Node{Kind: NdVar, Var: rhsVar}
	g.genAddr(&Node{Kind: NdComma, Lhs: lhs, Rhs: rhs})

	got := buf.String()
	if !strings.Contains(got, "(drop)") {
		t.Errorf("genAddr(comma) = %q, want a dropped lhs value", got)
	}
	if !strings.Contains(got, "(i32.const 8)") {
		t.Errorf("genAddr(comma) = %q, want the rhs address", got)
	}
}

func TestGenAddrMember(t *testing.T) {
	g, buf := newTestFuncGen()
	base := &Obj{Name: "s", IsLocal: true, Offset: 16}
	node := &Node{
		Kind:   NdMember,
		Lhs:    &Node{Kind: NdVar, Var: base},
		Member: &Member{Name: "field", Offset: 4},
	}
	g.genAddr(node)

	got := buf.String()
	if !strings.Contains(got, "(i32.const 16)") {
		t.Errorf("genAddr(member) = %q, want base address", got)
	}
	if !strings.Contains(got, "(i32.const 4)") || !strings.Contains(got, "(i32.add)") {
		t.Errorf("genAddr(member) = %q, want member offset added on", got)
	}
}

func TestGenAddrRejectsNonLvalue(t *testing.T) {
	g, _ := newTestFuncGen()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("genAddr(non-lvalue) did not panic")
		}
		if _, ok := r.(*GenError); !ok {
			t.Fatalf("panic value is %T, want *GenError", r)
		}
	}()
	g.genAddr(&Node{Kind: NdNum, Tok: &Token{Line: 1}})
}
