// Command quill-shell is an interactive shell and script runner for the
// quill interpreter.
//
// Usage:
//
//	quill-shell                 # interactive REPL
//	quill-shell script.ql ...   # run a script with arguments
//	quill-shell -c 'expr 1+1'   # run a command string
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/quill-lang/quill"
)

func main() {
	var (
		command    = flag.String("c", "", "evaluate the command string and exit")
		configPath = flag.String("config", "", "path to a YAML run-control file")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	logger := newLogger(*verbose)
	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("bad config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	interp := quill.New(cfg.options()...)
	defer interp.Close()
	registerShellCommands(interp)

	switch {
	case *command != "":
		result, err := interp.Eval(*command)
		if err != nil {
			reportError(interp, err)
			os.Exit(1)
		}
		if s := result.String(); s != "" {
			fmt.Println(s)
		}
	case flag.NArg() > 0:
		runScript(interp, logger, flag.Arg(0), flag.Args()[1:])
	default:
		runRepl(interp, cfg, logger)
	}
}

// newLogger builds the shell logger: colorized tint output on a terminal,
// plain text otherwise.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

// runScript evaluates a script file, exposing the remaining command line as
// argv/argc.
func runScript(interp *quill.Interp, logger *slog.Logger, path string, scriptArgs []string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("can't read script", "path", path, "error", err)
		os.Exit(1)
	}

	argv := make([]*quill.Obj, len(scriptArgs))
	for n, a := range scriptArgs {
		argv[n] = quill.NewString(a)
	}
	interp.SetVarObj("argv", quill.NewList(argv...))
	interp.SetVarObj("argc", quill.NewInt(int64(len(scriptArgs))))
	interp.SetVar("argv0", path)

	if _, err := interp.Eval(string(data)); err != nil {
		reportError(interp, err)
		os.Exit(1)
	}
}

// runRepl drives the interactive loop, prompting for continuation lines
// while the input is syntactically incomplete.
func runRepl(interp *quill.Interp, cfg *config, logger *slog.Logger) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		runPipedRepl(interp)
		return
	}

	editor := newLineEditor(cfg.Prompt, cfg.ContinuationPrompt)
	logger.Debug("starting interactive shell")

	resultColor := color.New(color.FgCyan)
	for {
		line, err := editor.readCommand(interp)
		if err != nil {
			if errors.Is(err, errEOF) {
				fmt.Println()
				return
			}
			logger.Error("input error", "error", err)
			return
		}
		if line == "" {
			continue
		}

		result, err := interp.Eval(line)
		if err != nil {
			reportError(interp, err)
			continue
		}
		if s := result.String(); s != "" {
			resultColor.Println(s)
		}
	}
}

// runPipedRepl evaluates stdin without the line editor, for piped input.
func runPipedRepl(interp *quill.Interp) {
	data, err := os.ReadFile("/dev/stdin")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	result, err := interp.Eval(string(data))
	if err != nil {
		reportError(interp, err)
		os.Exit(1)
	}
	if s := result.String(); s != "" {
		fmt.Println(s)
	}
}

// reportError prints a script error with its code and stack trace.
func reportError(interp *quill.Interp, err error) {
	errColor := color.New(color.FgRed, color.Bold)
	if flow, ok := quill.IsFlowError(err); ok {
		errColor.Fprintln(os.Stderr, "error:", flow.Value().String())
		if code := flow.ErrorCode().String(); code != "NONE" {
			fmt.Fprintln(os.Stderr, "  code:", code)
		}
		if info := interp.LastErrorInfo(); info != "" && info != flow.Value().String() {
			fmt.Fprintln(os.Stderr, info)
		}
		return
	}
	errColor.Fprintln(os.Stderr, "error:", err)
}

// registerShellCommands adds the I/O commands the core deliberately leaves
// out: the host decides what the language can touch, and the shell decides
// scripts may write to its stdout.
func registerShellCommands(interp *quill.Interp) {
	interp.RegisterCommand("puts", func(i *quill.Interp, args []*quill.Obj) (*quill.Obj, error) {
		rest := args[1:]
		newline := true
		if len(rest) > 0 && rest[0].String() == "-nonewline" {
			newline = false
			rest = rest[1:]
		}
		if len(rest) != 1 {
			return nil, fmt.Errorf("wrong # args: should be \"puts ?-nonewline? string\"")
		}
		if newline {
			fmt.Println(rest[0].String())
		} else {
			fmt.Print(rest[0].String())
		}
		return nil, nil
	})

	interp.Register("exit", func(code int) {
		os.Exit(code)
	})
}
