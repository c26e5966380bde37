package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quill-lang/quill"
)

// config is the shell's YAML run-control file. Every field is optional;
// the zero config selects the defaults below.
type config struct {
	Prompt             string `yaml:"prompt"`
	ContinuationPrompt string `yaml:"continuation_prompt"`
	RecursionLimit     int    `yaml:"recursion_limit"`

	// Features toggles language surface; omitted fields default to on.
	Features map[string]bool `yaml:"features"`
}

func defaultConfig() *config {
	return &config{
		Prompt:             "% ",
		ContinuationPrompt: "> ",
	}
}

// loadConfig reads a YAML run-control file. An empty path selects the
// defaults; a missing file at an explicit path is an error.
func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "% "
	}
	if cfg.ContinuationPrompt == "" {
		cfg.ContinuationPrompt = "> "
	}
	return cfg, nil
}

// options converts the config to interpreter options.
func (c *config) options() []quill.Option {
	var opts []quill.Option

	if len(c.Features) > 0 {
		f := quill.DefaultFeatures()
		for name, on := range c.Features {
			switch name {
			case "dict":
				f.Dict = on
			case "float":
				f.Float = on
			case "wide":
				f.Wide = on
			case "expr":
				f.Expr = on
			case "string-command":
				f.StringCommand = on
			case "error-stack-trace":
				f.ErrorStackTrace = on
			case "unicode-case":
				f.UnicodeCase = on
			case "unicode-whitespace":
				f.UnicodeWhitespace = on
			case "unicode-alphanum":
				f.UnicodeAlphanum = on
			}
		}
		opts = append(opts, quill.WithFeatures(f))
	}
	if c.RecursionLimit > 0 {
		opts = append(opts, quill.WithRecursionLimit(c.RecursionLimit))
	}
	return opts
}
