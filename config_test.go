package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
log_level: debug
host_functions: [print]
globals:
  limit: 3
  name: lunar
  ratio: 0.5
  enabled: true
  point:
    y: 2
    x: 1
  tags: [a, b]
`))
	be.Err(t, err, nil)
	be.Equal(t, cfg.LogLevel, slog.LevelDebug)
	be.Equal(t, cfg.HostFunctions, []string{"print"})

	names := make([]string, len(cfg.Globals))
	for i, g := range cfg.Globals {
		names[i] = g.Name
	}
	be.Equal(t, names, []string{"enabled", "limit", "name", "point", "ratio", "tags"})

	be.Equal(t, cfg.Globals[0].Value, Value(Boolean(true)))
	be.Equal(t, cfg.Globals[1].Value, Value(Number(3)))
	be.Equal(t, cfg.Globals[2].Value, Value(String("lunar")))
	be.Equal(t, cfg.Globals[4].Value, Value(Number(0.5)))

	point := cfg.Globals[3].Value.(*Table)
	be.Equal(t, point.Keys(), []Value{String("x"), String("y")})
	be.Equal(t, point.Get(String("y")), Value(Number(2)))

	tags := cfg.Globals[5].Value.(*Table)
	be.Equal(t, tags.Keys(), []Value{String("a"), String("b")})
}

func TestParseConfigEmptyDocument(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	be.Err(t, err, nil)
	be.Equal(t, cfg.LogLevel, slog.LevelWarn)
	be.True(t, cfg.HostFunctions == nil)
	be.Equal(t, len(cfg.Globals), 0)
}

func TestParseConfigEmptyHostFunctions(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader("host_functions: []\n"))
	be.Err(t, err, nil)
	be.True(t, cfg.HostFunctions != nil)
	be.Equal(t, len(cfg.HostFunctions), 0)
	be.Equal(t, len(HostOptions(os.Stdout, cfg.HostFunctions)), 0)
}

func TestParseConfigUnknownField(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("log_levle: debug\n"))
	be.Err(t, err, "field log_levle not found")
}

func TestParseConfigValidation(t *testing.T) {
	_, err := ParseConfig(strings.NewReader(`
log_level: loud
host_functions: [print, exec]
globals:
  while: 1
  ok: 2
  2bad: 3
`))
	var cfgErr *ConfigError
	be.True(t, errors.As(err, &cfgErr))
	be.Equal(t, cfgErr.Issues, []string{
		`log_level "loud" must be one of debug, info, warn, error`,
		`host_functions: unknown host function "exec"`,
		`globals: "2bad" is not a valid name`,
		`globals: "while" is not a valid name`,
	})
	be.True(t, strings.HasPrefix(err.Error(), "config validation failed:\n- log_level"))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lunar.yml")
	err := os.WriteFile(path, []byte("globals:\n  answer: 42\n"), 0o644)
	be.Err(t, err, nil)

	cfg, err := LoadConfig(path)
	be.Err(t, err, nil)
	be.Equal(t, cfg.Path, path)
	be.Equal(t, len(cfg.Options()), 1)

	env, _, _, err := runString(t, "local doubled = * answer 2", cfg.Options()...)
	be.Err(t, err, nil)
	expectGlobal(t, env, "doubled", Number(84))
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	be.Err(t, err, os.ErrNotExist)

	_, err = LoadConfig("")
	be.Err(t, err, "config: empty path")
}
