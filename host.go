package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

type hostBuiltin func(out io.Writer) func(args []Value) (Value, error)

var hostBuiltins = map[string]hostBuiltin{
	"print": func(out io.Writer) func([]Value) (Value, error) {
		return func(args []Value) (Value, error) {
			parts := make([]string, len(args))
			for i, arg := range args {
				parts[i] = FormatValue(arg)
			}
			if _, err := fmt.Fprintln(out, strings.Join(parts, "\t")); err != nil {
				return nil, err
			}
			return Nil, nil
		}
	},
	"type": func(io.Writer) func([]Value) (Value, error) {
		return func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
			}
			return String(args[0].TypeName()), nil
		}
	},
	"tostring": func(io.Writer) func([]Value) (Value, error) {
		return func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
			}
			return String(FormatValue(args[0])), nil
		}
	},
}

func isHostFunctionName(name string) bool {
	_, ok := hostBuiltins[name]
	return ok
}

// HostFunctionNames lists every builtin the CLI can bind, sorted.
func HostFunctionNames() []string {
	names := make([]string, 0, len(hostBuiltins))
	for name := range hostBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HostOptions binds the named builtins, writing program output to out.
// A nil names slice binds all of them.
func HostOptions(out io.Writer, names []string) []Option {
	if names == nil {
		names = HostFunctionNames()
	}
	opts := make([]Option, 0, len(names))
	for _, name := range names {
		builtin, ok := hostBuiltins[name]
		if !ok {
			continue
		}
		opts = append(opts, WithHostFunction(name, builtin(out)))
	}
	return opts
}
