// Command quill-test runs script-defined test suites against the quill
// interpreter.
//
// A manifest (YAML) names the suites and their script files:
//
//	suites:
//	  - name: core
//	    files: [tests/core/*.ql]
//	  - name: strings
//	    files: [tests/strings/*.ql]
//
// Each script file registers its cases with the test command:
//
//	test set-basic {set x 10; set x} 10
//	test expr-add {expr {1 + 2}} 3
//	test error-caught -error {error boom} boom
//
// Usage:
//
//	quill-test manifest.yaml
//	quill-test -suite core manifest.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/quill-lang/quill"
)

type manifest struct {
	Suites []suite `yaml:"suites"`
}

type suite struct {
	Name  string   `yaml:"name"`
	Files []string `yaml:"files"`
}

// tally accumulates results across files.
type tally struct {
	passed int
	failed int
}

var (
	passMark = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed, color.Bold).SprintFunc()
)

func main() {
	var (
		only    = flag.String("suite", "", "run only the named suite")
		verbose = flag.Bool("verbose", false, "log each test case")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: quill-test [-suite name] manifest.yaml")
		os.Exit(2)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      levelFor(*verbose),
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))

	m, err := loadManifest(flag.Arg(0))
	if err != nil {
		logger.Error("can't load manifest", "error", err)
		os.Exit(1)
	}

	baseDir := filepath.Dir(flag.Arg(0))
	total := tally{}
	for _, s := range m.Suites {
		if *only != "" && s.Name != *only {
			continue
		}
		t := runSuite(logger, baseDir, s)
		total.passed += t.passed
		total.failed += t.failed
	}

	fmt.Printf("\n%d passed, %d failed\n", total.passed, total.failed)
	if total.failed > 0 {
		os.Exit(1)
	}
}

func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(m.Suites) == 0 {
		return nil, fmt.Errorf("%s: no suites defined", path)
	}
	return &m, nil
}

func runSuite(logger *slog.Logger, baseDir string, s suite) tally {
	logger.Info("running suite", "suite", s.Name)
	t := tally{}

	for _, pattern := range s.Files {
		paths, err := filepath.Glob(filepath.Join(baseDir, pattern))
		if err != nil || len(paths) == 0 {
			logger.Warn("no files match", "suite", s.Name, "pattern", pattern)
			continue
		}
		for _, path := range paths {
			ft := runFile(logger, path)
			t.passed += ft.passed
			t.failed += ft.failed
		}
	}
	return t
}

// runFile evaluates one test script in a fresh interpreter with the test
// command registered.
func runFile(logger *slog.Logger, path string) tally {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("can't read test file", "path", path, "error", err)
		return tally{failed: 1}
	}

	interp := quill.New()
	defer interp.Close()

	t := &tally{}
	interp.RegisterCommand("test", testCommand(logger, path, t))

	if _, err := interp.Eval(string(data)); err != nil {
		logger.Error("test file failed", "path", path, "error", err)
		t.failed++
	}
	return *t
}

// testCommand implements: test name ?-error? body expected
func testCommand(logger *slog.Logger, path string, t *tally) quill.CommandFunc {
	return func(i *quill.Interp, args []*quill.Obj) (*quill.Obj, error) {
		rest := args[1:]
		wantError := false
		if len(rest) == 4 && rest[1].String() == "-error" {
			wantError = true
			rest = []*quill.Obj{rest[0], rest[2], rest[3]}
		}
		if len(rest) != 3 {
			return nil, fmt.Errorf("wrong # args: should be \"test name ?-error? body expected\"")
		}
		name, body, expected := rest[0].String(), rest[1], rest[2].String()

		result, err := i.EvalObj(body)
		var got string
		switch {
		case err != nil && !wantError:
			t.failed++
			fmt.Printf("%s %s: unexpected error: %v\n", failMark("FAIL"), name, err)
			return nil, nil
		case err != nil:
			if flow, ok := quill.IsFlowError(err); ok {
				got = flow.Value().String()
			} else {
				got = err.Error()
			}
		case wantError:
			t.failed++
			fmt.Printf("%s %s: expected an error, got %q\n", failMark("FAIL"), name, result.String())
			return nil, nil
		default:
			got = result.String()
		}

		if got != expected {
			t.failed++
			fmt.Printf("%s %s: got %q, want %q\n", failMark("FAIL"), name, got, expected)
			return nil, nil
		}
		t.passed++
		fmt.Printf("%s %s\n", passMark("ok"), name)
		logger.Debug("test passed", "file", path, "name", name)
		return nil, nil
	}
}
