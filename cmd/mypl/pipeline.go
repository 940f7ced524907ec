package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/CalebLefcort/mypl/internal/cache"
	"github.com/CalebLefcort/mypl/pkg/ast"
	"github.com/CalebLefcort/mypl/pkg/codegen"
	"github.com/CalebLefcort/mypl/pkg/lexer"
	"github.com/CalebLefcort/mypl/pkg/parser"
	"github.com/CalebLefcort/mypl/pkg/token"
	"github.com/CalebLefcort/mypl/pkg/visitors"
	"github.com/CalebLefcort/mypl/pkg/vm"
)

func readSource(c *cli.Context) (string, string, error) {
	if c.NArg() != 1 {
		return "", "", fmt.Errorf("usage: mypl %s <file.mypl>", c.Command.Name)
	}
	path := c.Args().Get(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return path, string(data), nil
}

var tokensCommand = &cli.Command{
	Name:      "tokens",
	Usage:     "print the token stream for a source file",
	ArgsUsage: "<file.mypl>",
	Action: func(c *cli.Context) error {
		_, src, err := readSource(c)
		if err != nil {
			return err
		}
		lex := lexer.New(src)
		for {
			t := lex.NextToken()
			fmt.Println(t.String())
			if t.Kind == token.EOS || t.Kind == token.ERROR {
				break
			}
		}
		return nil
	},
}

var parseCommand = &cli.Command{
	Name:      "parse",
	Usage:     "parse a source file and print its canonical re-printing",
	ArgsUsage: "<file.mypl>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "debug", Usage: "print an indented parse-tree dump instead of the canonical re-printing"},
	},
	Action: func(c *cli.Context) error {
		return withParsed(c, func(prog *ast.Program) error {
			if c.Bool("debug") {
				d := visitors.NewDebugPrinter()
				prog.Accept(d)
				fmt.Print(d.String())
				return nil
			}
			fmt.Print(printSource(prog))
			return nil
		})
	},
}

var checkCommand = &cli.Command{
	Name:      "check",
	Usage:     "parse and semantically analyze a source file",
	ArgsUsage: "<file.mypl>",
	Action: func(c *cli.Context) error {
		return withAnalyzed(c, func(prog *ast.Program) error {
			fmt.Println("ok")
			return nil
		})
	},
}

var buildCommand = &cli.Command{
	Name:      "build",
	Usage:     "compile a source file to bytecode",
	ArgsUsage: "<file.mypl>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "dump", Usage: "print every function's instructions"},
	},
	Action: func(c *cli.Context) error {
		return withAnalyzed(c, func(prog *ast.Program) error {
			templates := codegen.New(prog).Generate(prog)
			if c.Bool("dump") {
				for _, t := range templates {
					fmt.Print(t.String())
				}
			}
			return nil
		})
	},
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "compile and execute a source file",
	ArgsUsage: "<file.mypl>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "trace", Usage: "print each VM step before executing it"},
		&cli.StringFlag{Name: "cache-dir", Usage: "directory for the incremental-compile cache"},
	},
	Action: func(c *cli.Context) error {
		path, src, err := readSource(c)
		if err != nil {
			return err
		}
		templates, err := compileWithCache(c, path, src)
		if err != nil {
			return err
		}
		return execute(c, templates)
	},
}

func withParsed(c *cli.Context, f func(*ast.Program) error) error {
	_, src, err := readSource(c)
	if err != nil {
		return err
	}
	prog, err := parser.ParseString(src)
	if err != nil {
		return err
	}
	return f(prog)
}

func withAnalyzed(c *cli.Context, f func(*ast.Program) error) error {
	return withParsed(c, func(prog *ast.Program) error {
		if err := analyzeProgram(prog); err != nil {
			return err
		}
		return f(prog)
	})
}

// compileWithCache consults --cache-dir (if set) before parsing, analyzing,
// and generating code, and stores the result back for the next run.
func compileWithCache(c *cli.Context, path, src string) (map[string]*vm.FrameTemplate, error) {
	dir := c.String("cache-dir")
	if dir == "" {
		return compileSource(src)
	}

	ch, err := cache.Load(dir + "/mypl-cache.json")
	if err != nil {
		return nil, err
	}
	needs, err := ch.NeedsRegeneration(path)
	if err != nil {
		return nil, err
	}
	if !needs {
		if templates, ok := ch.LoadTemplates(path); ok {
			return templates, nil
		}
	}

	templates, err := compileSource(src)
	if err != nil {
		return nil, err
	}
	if err := ch.StoreTemplates(path, templates); err != nil {
		return nil, err
	}
	return templates, ch.Save()
}

func compileSource(src string) (map[string]*vm.FrameTemplate, error) {
	prog, err := parser.ParseString(src)
	if err != nil {
		return nil, err
	}
	if err := analyzeProgram(prog); err != nil {
		return nil, err
	}
	return codegen.New(prog).Generate(prog), nil
}

func execute(c *cli.Context, templates map[string]*vm.FrameTemplate) error {
	m := vm.New(templates)
	m.Stdout = os.Stdout
	if c.Bool("trace") {
		m.Tracer = newStderrTracer()
	}
	return m.Run()
}
