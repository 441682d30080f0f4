package main

import (
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalsToYAML renders the bindings of env as a YAML mapping sorted by
// name. Host functions are left out.
func GlobalsToYAML(env *Environment) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range env.Names() {
		v, _ := env.Get(name)
		if _, isHost := v.(*HostFunction); isHost {
			continue
		}
		root.Content = append(root.Content, yamlScalar(name), valueToYAML(v, make(map[*Table]bool)))
	}
	if len(root.Content) == 0 {
		root.Style = yaml.FlowStyle
	}
	return yaml.Marshal(root)
}

// valueToYAML builds a node rather than marshalling Go values so that
// table key order survives. path holds the tables currently being
// rendered; a table met again on its own path becomes the scalar
// "(cycle)".
func valueToYAML(v Value, path map[*Table]bool) *yaml.Node {
	switch v := v.(type) {
	case Number:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: formatNumber(f)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatNumber(f)}
	case String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(v)}
	case Boolean:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: FormatValue(v)}
	case NilValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case *Table:
		if path[v] {
			return yamlScalar("(cycle)")
		}
		path[v] = true
		defer delete(path, v)

		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range v.Keys() {
			node.Content = append(node.Content, keyToYAML(key), valueToYAML(v.Get(key), path))
		}
		if len(node.Content) == 0 {
			node.Style = yaml.FlowStyle
		}
		return node
	case *Function:
		return yamlScalar("function(" + strings.Join(v.Parameters, ", ") + ")")
	}
	return yamlScalar(FormatValue(v))
}

// keyToYAML keeps the tag of number and boolean keys so that 1 and "1"
// stay distinct. Tables and functions used as keys render as strings.
func keyToYAML(key Value) *yaml.Node {
	switch key.(type) {
	case Number, String, Boolean:
		return valueToYAML(key, nil)
	}
	return yamlScalar(FormatValue(key))
}

func yamlScalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
