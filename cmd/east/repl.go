package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"east/internal/east"
	"east/internal/etext"
	"east/internal/interp"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Evaluate East text expressions interactively",
	Long: `Repl reads East text values line by line and prints them back.
A call-shaped input whose case names a builtin, like len([1, 2, 3]),
is evaluated instead of read literally`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

const historyFile = ".east_history"

func runRepl(cmd *cobra.Command, args []string) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	ln.SetCompleter(func(line string) []string {
		var out []string
		for _, name := range interp.BuiltinNames() {
			if strings.HasPrefix(name, line) {
				out = append(out, name+"(")
			}
		}
		return out
	})

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	if !quiet(cmd) {
		fmt.Println("east repl, :help for help, :quit to leave")
	}

	for {
		line, err := ln.Prompt("east> ")
		if err != nil {
			// Ctrl-C aborts the line, Ctrl-D leaves the loop.
			if err == liner.ErrPromptAborted {
				continue
			}
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		switch line {
		case ":quit", ":q":
			return nil
		case ":help":
			fmt.Println("enter an East text value to echo it, or call a builtin:")
			fmt.Println("  " + strings.Join(interp.BuiltinNames(), ", "))
			continue
		}

		out, err := evalLine(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println(out)
	}
}

// evalLine parses a text value and, when it is shaped like a builtin
// call, evaluates it. The payload is the single argument.
func evalLine(line string) (string, error) {
	v, err := etext.Parse(line)
	if err != nil {
		return "", err
	}
	if v.Kind() == east.Variant {
		if name := v.CaseName(); isBuiltin(name) {
			v, err = interp.Builtin(name, []*east.Value{v.Payload()})
			if err != nil {
				return "", err
			}
		}
	}
	return etext.Emit(v)
}

func isBuiltin(name string) bool {
	for _, b := range interp.BuiltinNames() {
		if b == name {
			return true
		}
	}
	return false
}
