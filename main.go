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
	"os"

	"github.com/spf13/cobra"
)

var outputPath string

func runSink(sinkName, sourcePath string) error {
	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return err
	}

	fns, toks, err := BuildSignatures(sourcePath, string(src))
	if err != nil {
		return err
	}
	prog := &Program{Objs: fns}

	sink, err := GetSink(sinkName)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				_, _ = fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}()
		return sink.Emit(f, prog, toks)
	}
	return sink.Emit(out, prog, toks)
}

var emitWasmCmd = &cobra.Command{
	Use:   "emit-wasm source.c",
	Short: "lower a C translation unit's function signatures to a wasm text module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSink("wasm", args[0])
	},
}

var dumpTokensCmd = &cobra.Command{
	Use:   "dump-tokens source.c",
	Short: "dump the token stream of a C translation unit as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSink("json-tokens", args[0])
	},
}

var dumpASTCmd = &cobra.Command{
	Use:   "dump-ast source.c",
	Short: "dump a C translation unit's program AST as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSink("json-ast", args[0])
	},
}

var rootCmd = &cobra.Command{
	Use:   "ccwasm",
	Short: "C-to-WebAssembly back end: emit wasm text or JSON diagnostics",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(emitWasmCmd, dumpTokensCmd, dumpASTCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
