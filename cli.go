package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `Lunar - A small prefix-form scripting language

Usage:
    lunar <command> [arguments]

Commands:
    run <file>      Execute a .lua file
    eval <code>     Evaluate inline Lunar code
    check <file>    Parse a file and print its syntax tree
    tokens <file>   Print the tokens of a file
    inspect <file>  List the constructs a file uses
    repl            Start an interactive session
    help            Show this help message

Examples:
    lunar run examples/fib.lua
    lunar eval 'print(+ 1 2)'
    lunar check myfile.lua
    lunar repl

Use "lunar <command> -h" for more information about a command.
`)
}

// runFlags are shared by run, eval and repl.
type runFlags struct {
	verbose    *bool
	configPath *string
	globals    *bool
}

func addRunFlags(fs *flag.FlagSet, withGlobals bool) runFlags {
	f := runFlags{
		verbose:    fs.Bool("v", false, "Log call frames and other debug details"),
		configPath: fs.String("config", "", "Path to a lunar.yml configuration file"),
	}
	if withGlobals {
		f.globals = fs.Bool("globals", false, "Print the final global environment as YAML")
	}
	return f
}

// interpreterOptions loads the configuration and builds the logger, host
// functions and predefined globals it asks for.
func (f runFlags) interpreterOptions() ([]Option, *slog.Logger) {
	cfg := DefaultConfig()
	if *f.configPath != "" {
		loaded, err := LoadConfig(*f.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	level := cfg.LogLevel
	if *f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if cfg.Path != "" {
		logger.Debug("loaded config", slog.String("path", cfg.Path), slog.Int("globals", len(cfg.Globals)))
	}

	opts := []Option{
		WithLogger(logger),
		WithErrorSink(ErrorSinkFunc(func(message string) {
			logger.Debug("evaluation stopped", slog.String("error", message))
		})),
	}
	opts = append(opts, HostOptions(os.Stdout, cfg.HostFunctions)...)
	opts = append(opts, cfg.Options()...)
	return opts, logger
}

func runCommand(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	flags := addRunFlags(fs, true)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lunar run [-v] [-config file] [-globals] <file>\n")
		fmt.Fprintf(os.Stderr, "Execute a .lua file\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	source := readSource(fs.Arg(0))
	execute(source, flags)
}

func evalCommand(args []string) {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	flags := addRunFlags(fs, true)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lunar eval [-v] [-config file] [-globals] <code>\n")
		fmt.Fprintf(os.Stderr, "Evaluate inline Lunar code\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one code argument\n")
		fs.Usage()
		os.Exit(1)
	}

	execute(fs.Arg(0), flags)
}

// execute parses and runs source, printing any error with a source
// snippet and exiting 1.
func execute(source string, flags runFlags) {
	opts, logger := flags.interpreterOptions()

	program, tokens, err := ParseSource(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, WrapErrorWithSource(err, source))
		os.Exit(1)
	}
	logger.Debug("parsed program",
		slog.Int("tokens", len(tokens)),
		slog.Int("statements", len(program.Statements)))

	interp := NewInterpreter(opts...)
	env, err := interp.Run(program)
	if err != nil {
		fmt.Fprintln(os.Stderr, WrapErrorWithSource(err, source))
		os.Exit(1)
	}

	if *flags.globals {
		out, err := GlobalsToYAML(env)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering globals: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
	}
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lunar check <file>\n")
		fmt.Fprintf(os.Stderr, "Parse a file and print its syntax tree\n")
	}
	filename := singleFileArg(fs, args)

	source := readSource(filename)
	program, _, err := ParseSource(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, WrapErrorWithSource(err, source))
		os.Exit(1)
	}
	fmt.Println(ToSExpr(program))
}

func tokensCommand(args []string) {
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lunar tokens <file>\n")
		fmt.Fprintf(os.Stderr, "Print the tokens of a file\n")
	}
	filename := singleFileArg(fs, args)

	source := readSource(filename)
	tokens, err := Tokenize(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, WrapErrorWithSource(err, source))
		os.Exit(1)
	}
	fmt.Println(TokensToSExpr(tokens))
}

func inspectCommand(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lunar inspect <file>\n")
		fmt.Fprintf(os.Stderr, "List the node kinds and keywords a file uses\n")
	}
	filename := singleFileArg(fs, args)

	source := readSource(filename)
	program, tokens, err := ParseSource(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, WrapErrorWithSource(err, source))
		os.Exit(1)
	}
	fmt.Print(Inspect(program, tokens))
}

func replCommand(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	flags := addRunFlags(fs, false)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lunar repl [-v] [-config file]\n")
		fmt.Fprintf(os.Stderr, "Start an interactive session\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	opts, logger := flags.interpreterOptions()
	runRepl(logger, opts...)
}

func singleFileArg(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func readSource(filename string) string {
	sourceBytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(sourceBytes)
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "run":
		runCommand(args)
	case "eval":
		evalCommand(args)
	case "check":
		checkCommand(args)
	case "tokens":
		tokensCommand(args)
	case "inspect":
		inspectCommand(args)
	case "repl":
		replCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
