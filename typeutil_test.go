package main

import "testing"

func TestWasmType(t *testing.T) {
	tests := []struct {
		name string
		ty   *Type
		want wasmValueType
	}{
		{"nil", nil, wasmI32},
		{"int", &Type{Kind: TyInt, Size: 4}, wasmI32},
		{"char", &Type{Kind: TyChar, Size: 1}, wasmI32},
		{"long", &Type{Kind: TyLong, Size: 4}, wasmI32},
		{"float", &Type{Kind: TyFloat, Size: 4}, wasmF32},
		{"double", &Type{Kind: TyDouble, Size: 8}, wasmF64},
		{"long double", &Type{Kind: TyLDouble, Size: 8}, wasmF64},
		{"ptr", &Type{Kind: TyPtr, Size: 4}, wasmI32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wasmType(tt.ty); got != tt.want {
				t.Errorf("wasmType(%+v) = %v, want %v", tt.ty, got, tt.want)
			}
		})
	}
}

func TestLongIsI64AlwaysFalse(t *testing.T) {
	// This back end targets a wasm32 ABI: long is always 4 bytes,
	// regardless of its nominal size.
	tys := []*Type{
		nil,
		{Kind: TyLong, Size: 4},
		{Kind: TyLong, Size: 8},
		{Kind: TyInt, Size: 4},
	}
	for _, ty := range tys {
		if longIsI64(ty) {
			t.Errorf("longIsI64(%+v) = true, want false", ty)
		}
	}
}

func TestWasmSize(t *testing.T) {
	tests := []struct {
		name string
		ty   *Type
		want int
	}{
		{"nil", nil, 4},
		{"char", &Type{Kind: TyChar, Size: 1}, 1},
		{"short", &Type{Kind: TyShort, Size: 2}, 2},
		{"int", &Type{Kind: TyInt, Size: 4}, 4},
		{"long", &Type{Kind: TyLong, Size: 8}, 4},
		{"ptr", &Type{Kind: TyPtr, Size: 4}, 4},
		{"func", &Type{Kind: TyFunc, Size: 0}, 4},
		{"double", &Type{Kind: TyDouble, Size: 8}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wasmSize(tt.ty); got != tt.want {
				t.Errorf("wasmSize(%+v) = %d, want %d", tt.ty, got, tt.want)
			}
		})
	}
}

func TestIsFloatTy(t *testing.T) {
	tests := []struct {
		name string
		ty   *Type
		want bool
	}{
		{"int", &Type{Kind: TyInt}, false},
		{"float", &Type{Kind: TyFloat}, true},
		{"double", &Type{Kind: TyDouble}, true},
		{"long double", &Type{Kind: TyLDouble}, true},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFloatTy(tt.ty); got != tt.want {
				t.Errorf("isFloatTy(%+v) = %v, want %v", tt.ty, got, tt.want)
			}
		})
	}
}
