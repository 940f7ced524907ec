package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"

	"github.com/CalebLefcort/mypl/pkg/codegen"
	"github.com/CalebLefcort/mypl/pkg/parser"
	"github.com/CalebLefcort/mypl/pkg/vm"
)

// replCommand is a line-at-a-time read-eval-print loop: each accepted line
// must be one complete, self-contained mypl program (spec.md's core has no
// notion of incremental top-level declarations), so the REPL's value is
// line editing and history over repeatedly re-running short programs, in
// the spirit of other_examples' canonical-starlark REPL use of
// chzyer/readline.
var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "read-eval-print loop: run one self-contained program per line",
	Action: func(c *cli.Context) error {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:      "mypl> ",
			HistoryFile: replHistoryPath(),
		})
		if err != nil {
			return err
		}
		defer rl.Close()

		for {
			line, err := rl.Readline()
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if line == "" {
				continue
			}
			runReplLine(line)
		}
	},
}

func runReplLine(src string) {
	prog, err := parser.ParseString(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if err := analyzeProgram(prog); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	templates := codegen.New(prog).Generate(prog)
	m := vm.New(templates)
	m.Stdout = os.Stdout
	if err := m.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.mypl_history"
}
