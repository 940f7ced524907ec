// Command mypl is the external driver around the core pipeline — lexer,
// parser, semantic analyzer, code generator, and VM — which spec.md
// explicitly places out of core scope. It reads a file, runs one or more
// pipeline stages, and prints the result or a plain error line, in the
// shape of skx-math-compiler/main.go and jcorbin-gothird/main.go rather
// than a framework-heavy CLI.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "mypl: internal error:", r)
			os.Exit(2)
		}
	}()

	app := &cli.App{
		Name:  "mypl",
		Usage: "lexer, parser, analyzer, codegen, and VM for the mypl language",
		Commands: []*cli.Command{
			tokensCommand,
			parseCommand,
			checkCommand,
			buildCommand,
			runCommand,
			replCommand,
			watchCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mypl:", err)
		os.Exit(1)
	}
}
