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

// wasmValueType is one of the four wasm value categories a Type can be
// lowered to.
type wasmValueType string

const (
	wasmI32 wasmValueType = "i32"
	wasmI64 wasmValueType = "i64"
	wasmF32 wasmValueType = "f32"
	wasmF64 wasmValueType = "f64"
)

// longIsI64 decides whether a TyLong value is treated as wasm i64. It is
// the single authoritative predicate backing both wasmType and
// wasmSize, so the two can never disagree about a given long (spec.md
// §9, "Open question — long width").  This back end targets a wasm32
// ABI where long is always 4 bytes, so this always returns false; the
// helper exists so a future 64-bit ABI only has to change one place.
func longIsI64(ty *Type) bool {
	_ = ty
	return false
}

// wasmType maps a C type to its wasm value category.
func wasmType(ty *Type) wasmValueType {
	if ty == nil {
		return wasmI32
	}
	switch ty.Kind {
	case TyFloat:
		return wasmF32
	case TyDouble, TyLDouble:
		return wasmF64
	case TyLong:
		if longIsI64(ty) {
			return wasmI64
		}
		return wasmI32
	default:
		return wasmI32
	}
}

func isI64(ty *Type) bool {
	return longIsI64(ty)
}

func isF32(ty *Type) bool {
	return ty != nil && ty.Kind == TyFloat
}

func isF64(ty *Type) bool {
	return ty != nil && (ty.Kind == TyDouble || ty.Kind == TyLDouble)
}

func isFloatTy(ty *Type) bool {
	return isF32(ty) || isF64(ty)
}

// wasmSize returns the effective size used to pick a load/store variant.
// Pointers and functions are always 4 bytes under this wasm32 ABI; long
// is forced to 4 regardless of its nominal size, in lockstep with
// wasmType via longIsI64.
func wasmSize(ty *Type) int {
	if ty == nil {
		return 4
	}
	if ty.Kind == TyPtr || ty.Kind == TyFunc {
		return 4
	}
	if ty.Kind == TyLong {
		if longIsI64(ty) {
			return 8
		}
		return 4
	}
	return ty.Size
}
