package main

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"gopkg.in/yaml.v3"
)

func TestGlobalsToYAML(t *testing.T) {
	source := `
local flag = true
local ratio = / 1 4
local name = "lunar"
local nothing
local point = {= x 1 = y "two"}
local empty = {}
function add(a b) { return + a b }
`
	env, _, _, err := runString(t, source)
	be.Err(t, err, nil)

	out, err := GlobalsToYAML(env)
	be.Err(t, err, nil)
	be.Equal(t, string(out), `add: function(a, b)
empty: {}
flag: true
name: lunar
nothing: null
point:
    x: 1
    y: two
ratio: 0.25
`)
}

func TestGlobalsToYAMLEmpty(t *testing.T) {
	env, _, _, err := runString(t, "print(1)")
	be.Err(t, err, nil)

	out, err := GlobalsToYAML(env)
	be.Err(t, err, nil)
	be.Equal(t, string(out), "{}\n")
}

func TestGlobalsToSExpr(t *testing.T) {
	env, _, _, err := runString(t, `local t = {= k "v" 2} local n = 1`)
	be.Err(t, err, nil)
	be.Equal(t, GlobalsToSExpr(env), `{n: 1, t: (table (entry "k" "v") (entry 2 2))}`)
}

func TestSelfReferencingTable(t *testing.T) {
	env, _, _, err := runString(t, "= t {} = t:self t = t:inner {t}")
	be.Err(t, err, nil)

	be.Equal(t, GlobalsToSExpr(env),
		`{t: (table (entry "inner" (table (entry (cycle) (cycle)))) (entry "self" (cycle)))}`)

	out, err := GlobalsToYAML(env)
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(string(out), "t:\n    self: (cycle)\n    inner:\n"))
}

func TestYAMLKeepsKeyTypes(t *testing.T) {
	env, _, _, err := runString(t, `= t {= 1 "num" = "1" "str" = true "yes"}`)
	be.Err(t, err, nil)

	out, err := GlobalsToYAML(env)
	be.Err(t, err, nil)
	be.Equal(t, string(out), "t:\n    1: num\n    \"1\": str\n    true: \"yes\"\n")

	var decoded map[string]map[any]any
	be.Err(t, yaml.Unmarshal(out, &decoded), nil)
	be.Equal(t, decoded["t"][1], any("num"))
	be.Equal(t, decoded["t"]["1"], any("str"))
}
