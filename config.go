package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the parsed contents of a lunar.yml file.
type Config struct {
	Path     string
	LogLevel slog.Level
	// Names of CLI host functions to bind. Nil means all of them.
	HostFunctions []string
	// Predefined globals, sorted by name.
	Globals []ConfigGlobal
}

type ConfigGlobal struct {
	Name  string
	Value Value
}

type configFile struct {
	LogLevel      string         `yaml:"log_level"`
	HostFunctions []string       `yaml:"host_functions"`
	Globals       map[string]any `yaml:"globals"`
}

// ConfigError aggregates configuration validation failures.
type ConfigError struct {
	Issues []string
}

func (e *ConfigError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

func DefaultConfig() *Config {
	return &Config{LogLevel: slog.LevelWarn}
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := ParseConfig(file)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// ParseConfig decodes a YAML config. Unknown fields are rejected; an
// empty document yields the defaults.
func ParseConfig(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return raw.toConfig()
}

func (raw *configFile) toConfig() (*Config, error) {
	cfg := DefaultConfig()
	var issues []string

	if raw.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw.LogLevel)); err != nil {
			issues = append(issues, fmt.Sprintf("log_level %q must be one of debug, info, warn, error", raw.LogLevel))
		}
	}

	if raw.HostFunctions != nil {
		cfg.HostFunctions = []string{}
		for _, name := range raw.HostFunctions {
			if !isHostFunctionName(name) {
				issues = append(issues, fmt.Sprintf("host_functions: unknown host function %q", name))
				continue
			}
			cfg.HostFunctions = append(cfg.HostFunctions, name)
		}
	}

	names := make([]string, 0, len(raw.Globals))
	for name := range raw.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !isValidName(name) {
			issues = append(issues, fmt.Sprintf("globals: %q is not a valid name", name))
			continue
		}
		v, err := valueFromYAML(raw.Globals[name])
		if err != nil {
			issues = append(issues, fmt.Sprintf("globals.%s: %v", name, err))
			continue
		}
		cfg.Globals = append(cfg.Globals, ConfigGlobal{Name: name, Value: v})
	}

	if len(issues) > 0 {
		return nil, &ConfigError{Issues: issues}
	}
	return cfg, nil
}

// Options returns interpreter options for the configured globals.
func (c *Config) Options() []Option {
	opts := make([]Option, 0, len(c.Globals))
	for _, g := range c.Globals {
		opts = append(opts, WithGlobal(g.Name, g.Value))
	}
	return opts
}

func isValidName(name string) bool {
	if name == "" || keywords[name] || !isLetter(rune(name[0])) {
		return false
	}
	for _, c := range name {
		if !isIdentChar(c) {
			return false
		}
	}
	return true
}

// valueFromYAML converts a decoded YAML value. Mappings become tables;
// sequence items become positional entries.
func valueFromYAML(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Nil, nil
	case bool:
		return Boolean(v), nil
	case int:
		return Number(v), nil
	case int64:
		return Number(v), nil
	case uint64:
		return Number(v), nil
	case float64:
		return Number(v), nil
	case string:
		return String(v), nil
	case map[string]any:
		table := NewTable()
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			item, err := valueFromYAML(v[k])
			if err != nil {
				return nil, err
			}
			if err := table.Set(String(k), item); err != nil {
				return nil, err
			}
		}
		return table, nil
	case []any:
		table := NewTable()
		for _, raw := range v {
			item, err := valueFromYAML(raw)
			if err != nil {
				return nil, err
			}
			if err := table.Set(item, item); err != nil {
				return nil, err
			}
		}
		return table, nil
	}
	return nil, fmt.Errorf("unsupported value of type %T", v)
}
