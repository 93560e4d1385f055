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

	"github.com/samber/lo"
	"modernc.org/cc/v4"
)

// builtinTypes maps a C type-specifier token's source text to the Type
// this back end's lattice represents it as. Front-end work proper
// (arbitrary declarators, structs, typedefs) is out of scope (spec.md
// §1); BuildSignatures only ever needs to resolve the handful of scalar
// keywords a function signature can spell.
var builtinTypes = map[string]*Type{
	"void":   {Kind: TyVoid, Size: 1, Align: 1},
	"_Bool":  {Kind: TyBool, Size: 1, Align: 1},
	"char":   {Kind: TyChar, Size: 1, Align: 1},
	"short":  {Kind: TyShort, Size: 2, Align: 2},
	"int":    {Kind: TyInt, Size: 4, Align: 4},
	"long":   {Kind: TyLong, Size: 4, Align: 4},
	"float":  {Kind: TyFloat, Size: 4, Align: 4},
	"double": {Kind: TyDouble, Size: 8, Align: 8},
}

func lookupBuiltinType(name string) (*Type, error) {
	if ty, ok := builtinTypes[name]; ok {
		return ty, nil
	}
	return nil, fmt.Errorf("unsupported type in signature fixture: %v", name)
}

// BuildSignatures parses src as a C translation unit with
// modernc.org/cc/v4 and harvests one *Obj function stub per top-level,
// non-inline function definition in the named file — name, parameter
// names/types, return type — the
// same traversal ajroetker-goat's TranslateUnit.parseSource/
// convertFunction/convertFunctionParameters use to recover a function's
// signature for Go-stub generation. Bodies are not reconstructed from
// the parsed C (that would mean re-implementing the out-of-scope front
// end); every returned function gets the canonical stub body `return 0`
// (or a bare return for void functions), which callers may replace.
//
// It also returns a flat, front-end-shaped token stream covering the
// same translation unit, for the JSON token dumper.
func BuildSignatures(name, src string) ([]*Obj, []*Token, error) {
	cfg, err := cc.NewConfig("linux", "amd64")
	if err != nil {
		return nil, nil, fmt.Errorf("configuring C parser: %w", err)
	}

	ast, err := cc.Parse(cfg, []cc.Source{
		{Name: "<predefined>", Value: cfg.Predefined},
		{Name: "<builtin>", Value: cc.Builtin},
		{Name: name, Value: src},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	var fns []*Obj
	var toks []*Token

	for tu := ast.TranslationUnit; tu != nil; tu = tu.TranslationUnit {
		ed := tu.ExternalDeclaration
		if ed.Position().Filename != name || ed.Case != cc.ExternalDeclarationFuncDef {
			continue
		}
		fd := ed.FunctionDefinition
		if fs := fd.DeclarationSpecifiers.FunctionSpecifier; fs != nil && fs.Case == cc.FunctionSpecifierInline {
			continue
		}

		fn, fnToks, err := convertSignature(fd)
		if err != nil {
			return nil, nil, err
		}
		fns = append(fns, fn)
		toks = append(toks, fnToks...)
	}

	return fns, toks, nil
}

// convertSignature mirrors ajroetker-goat's convertFunction: it walks
// DeclarationSpecifiers for the return type and DirectDeclarator for
// the name and parameter list.
func convertSignature(fd *cc.FunctionDefinition) (*Obj, []*Token, error) {
	declSpec := fd.DeclarationSpecifiers
	if declSpec.Case != cc.DeclarationSpecifiersTypeSpec {
		return nil, nil, fmt.Errorf("invalid function return type: %v", declSpec.Case)
	}
	retTok := declSpec.TypeSpecifier.Token
	retTy, err := lookupBuiltinType(retTok.SrcStr())
	if err != nil {
		return nil, nil, err
	}

	directDeclarator := fd.Declarator.DirectDeclarator
	if directDeclarator.Case != cc.DirectDeclaratorFuncParam {
		return nil, nil, fmt.Errorf("invalid function declarator: %v", directDeclarator.Case)
	}
	nameTok := directDeclarator.DirectDeclarator.Token

	var params []*Obj
	var toks []*Token
	toks = append(toks, tokenFrom(retTok), tokenFrom(nameTok))

	if directDeclarator.ParameterTypeList != nil {
		ps, pToks, err := convertParameters(directDeclarator.ParameterTypeList.ParameterList)
		if err != nil {
			return nil, nil, err
		}
		// A lone `(void)` parameter is C's spelling of "no parameters",
		// not a parameter actually typed void.
		if len(ps) == 1 && ps[0].Ty.Kind == TyVoid {
			ps = nil
		}
		params = ps
		toks = append(toks, pToks...)
	}

	fnTy := &Type{Kind: TyFunc, Size: 4, Align: 4, ReturnTy: retTy, Params: lo.Map(params, func(p *Obj, _ int) *Type { return p.Ty })}

	body := defaultBody(retTy)
	locals := append([]*Obj{}, params...)

	return &Obj{
		Name:         nameTok.SrcStr(),
		Ty:           fnTy,
		IsFunction:   true,
		IsDefinition: true,
		IsLive:       true,
		Params:       params,
		Locals:       locals,
		Body:         body,
	}, toks, nil
}

// convertParameters mirrors convertFunctionParameters: the front end's
// ParameterList is itself a singly-linked list via ParameterList.
func convertParameters(params *cc.ParameterList) ([]*Obj, []*Token, error) {
	decl := params.ParameterDeclaration
	nameTok := decl.Declarator.DirectDeclarator.Token

	var typeTok cc.Token
	if decl.DeclarationSpecifiers.Case == cc.DeclarationSpecifiersTypeQual {
		typeTok = decl.DeclarationSpecifiers.DeclarationSpecifiers.TypeSpecifier.Token
	} else {
		typeTok = decl.DeclarationSpecifiers.TypeSpecifier.Token
	}

	ty, err := lookupBuiltinType(typeTok.SrcStr())
	if err != nil {
		return nil, nil, err
	}
	if decl.Declarator.Pointer != nil {
		ty = &Type{Kind: TyPtr, Size: 4, Align: 4, Base: ty}
	}

	obj := &Obj{Name: nameTok.SrcStr(), Ty: ty, IsLocal: true}
	toks := []*Token{tokenFrom(typeTok), tokenFrom(nameTok)}

	if params.ParameterList != nil {
		rest, restToks, err := convertParameters(params.ParameterList)
		if err != nil {
			return nil, nil, err
		}
		return append([]*Obj{obj}, rest...), append(toks, restToks...), nil
	}
	return []*Obj{obj}, toks, nil
}

func tokenFrom(t cc.Token) *Token {
	pos := t.Position()
	return &Token{
		Kind: TkIdent,
		Text: t.SrcStr(),
		Line: pos.Line,
		File: pos.Filename,
	}
}

// defaultBody is the canonical stub body a harvested signature gets
// before a caller attaches a real one: `return 0;` for a non-void
// return type, a bare `return;` otherwise.
func defaultBody(retTy *Type) *Node {
	ret := &Node{Kind: NdReturn}
	if retTy != nil && retTy.Kind != TyVoid {
		ret.Lhs = &Node{Kind: NdNum, Ty: retTy, Val: 0}
	}
	return &Node{Kind: NdBlock, Body: ret}
}
