package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	historyFile = ".lunar_history"
	promptMain  = "lunar> "
	promptCont  = "  ...> "
)

// lineReader is the subset of *liner.State the REPL needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Repl evaluates chunks against one persistent global environment.
type Repl struct {
	interp *Interpreter
	env    *Environment
	out    io.Writer
	errOut io.Writer
}

func NewRepl(out, errOut io.Writer, opts ...Option) *Repl {
	opts = append(opts, WithErrorSink(ErrorSinkFunc(func(string) {})))
	in := NewInterpreter(opts...)
	return &Repl{interp: in, env: in.NewGlobals(), out: out, errOut: errOut}
}

// Eval runs one chunk. A top-level return value is echoed.
func (r *Repl) Eval(code string) error {
	program, _, err := ParseSource(code)
	if err != nil {
		return WrapErrorWithSource(err, code)
	}
	if err := r.interp.Exec(program, r.env); err != nil {
		return WrapErrorWithSource(err, code)
	}
	if _, isNil := r.interp.Result.(NilValue); !isNil {
		fmt.Fprintln(r.out, FormatValue(r.interp.Result))
	}
	return nil
}

// Command handles a line starting with ':' and reports whether the REPL
// should exit.
func (r *Repl) Command(line string) (exit bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case ":quit", ":q":
		return true
	case ":globals":
		fmt.Fprintln(r.out, GlobalsToSExpr(r.env))
	default:
		fmt.Fprintln(r.errOut, "unknown command. Type :globals or :quit.")
	}
	return false
}

// Loop reads chunks from ln until end of input or :quit.
func (r *Repl) Loop(ln lineReader) {
	for {
		code, ok := readChunk(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(r.out)
			return
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if r.Command(trimmed) {
				return
			}
			continue
		}
		if err := r.Eval(code); err != nil {
			fmt.Fprintln(r.errOut, err)
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readChunk keeps reading lines while the accumulated source fails to
// parse only because it ends too early.
func readChunk(ln lineReader, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, _, err := ParseSource(src); IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

// runRepl drives a Repl from the terminal, keeping history in the
// user's home directory. History is skipped when there is no home
// directory.
func runRepl(logger *slog.Logger, opts ...Option) {
	fmt.Println("Lunar REPL. Type :globals to list bindings, :quit to exit.")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath, ok := historyPath(logger); ok {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	NewRepl(os.Stdout, os.Stderr, opts...).Loop(ln)
}

// historyPath returns the history file location, or false when the home
// directory cannot be resolved.
func historyPath(logger *slog.Logger) (string, bool) {
	home, err := userHomeDir()
	if err != nil || home == "" {
		logger.Debug("history disabled", slog.Any("error", err))
		return "", false
	}
	return filepath.Join(home, historyFile), true
}

var userHomeDir = os.UserHomeDir
