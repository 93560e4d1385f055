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

import "fmt"

// GenError is a fatal, token-located code generation error (spec.md §7,
// "Fatal token-located error"). The core never calls os.Exit itself;
// ErrorTok panics one of these and CodegenWasm recovers it at the top
// frame, turning it back into a plain error for the caller.
type GenError struct {
	Tok *Token
	Msg string
}

func (e *GenError) Error() string {
	if e.Tok == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s:%d: %s", e.Tok.File, e.Tok.Line, e.Msg)
}

// ErrorTok reports a fatal generator error bound to a source token. It
// never returns.
func ErrorTok(tok *Token, format string, args ...interface{}) {
	panic(&GenError{Tok: tok, Msg: fmt.Sprintf(format, args...)})
}

// AlignTo rounds n up to the nearest multiple of align, a positive
// power-of-two alignment.
func AlignTo(n, align int) int {
	if align <= 0 {
		align = 1
	}
	return (n + align - 1) / align * align
}
