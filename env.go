package main

import "sort"

// Environment holds the bindings of one scope and links to the
// enclosing scope. The global environment has no parent.
type Environment struct {
	vars   map[string]Value
	parent *Environment
}

func NewEnvironment(parent *Environment) *Environment {
	return &Environment{vars: make(map[string]Value), parent: parent}
}

func (e *Environment) Parent() *Environment {
	return e.parent
}

// Get looks name up from this scope outwards. The innermost binding wins.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set binds name in this scope, shadowing any outer binding.
func (e *Environment) Set(name string, v Value) {
	e.vars[name] = v
}

// Names returns the names bound directly in this scope, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VisibleNames returns every name reachable from this scope, sorted.
func (e *Environment) VisibleNames() []string {
	seen := make(map[string]bool)
	var names []string
	for env := e; env != nil; env = env.parent {
		for name := range env.vars {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
