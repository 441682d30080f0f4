package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a runtime value: Number, String, Boolean, NilValue, *Table,
// *Function or *HostFunction.
type Value interface {
	TypeName() string
}

type Number float64

type String string

type Boolean bool

// NilValue is the type of Nil, the value of unset variables and missing
// table entries.
type NilValue struct{}

var Nil Value = NilValue{}

func (Number) TypeName() string   { return "number" }
func (String) TypeName() string   { return "string" }
func (Boolean) TypeName() string  { return "boolean" }
func (NilValue) TypeName() string { return "nil" }

// Function is a function declared in source. It does not capture the
// environment it was declared in; calls run against the caller's
// environment chain.
type Function struct {
	Name       string
	Parameters []string
	Body       []*ASTNode
}

func (*Function) TypeName() string { return "function" }

// HostFunction is a function provided by the embedding program.
type HostFunction struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (*HostFunction) TypeName() string { return "function" }

var (
	errNilKey = errors.New("table index is nil")
	errNaNKey = errors.New("table index is NaN")
)

// Table is a mutable mapping between values. Keys keep insertion order.
type Table struct {
	entries map[Value]Value
	keys    []Value
}

func (*Table) TypeName() string { return "table" }

func NewTable() *Table {
	return &Table{entries: make(map[Value]Value)}
}

// Get returns the value stored under key, or Nil.
func (t *Table) Get(key Value) Value {
	if v, ok := t.entries[key]; ok {
		return v
	}
	return Nil
}

// Set stores value under key. Storing Nil removes the entry.
func (t *Table) Set(key, value Value) error {
	switch k := key.(type) {
	case NilValue:
		return errNilKey
	case Number:
		if math.IsNaN(float64(k)) {
			return errNaNKey
		}
	}

	_, exists := t.entries[key]
	if _, isNil := value.(NilValue); isNil {
		if exists {
			delete(t.entries, key)
			for i, k := range t.keys {
				if k == key {
					t.keys = append(t.keys[:i], t.keys[i+1:]...)
					break
				}
			}
		}
		return nil
	}
	if !exists {
		t.keys = append(t.keys, key)
	}
	t.entries[key] = value
	return nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.keys)
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []Value {
	return append([]Value(nil), t.keys...)
}

// newFunction builds the function value for a declaration node.
func newFunction(decl *ASTNode) *Function {
	fn := &Function{Name: decl.Identifier.Name}
	for _, param := range decl.Parameters {
		fn.Parameters = append(fn.Parameters, param.Name)
	}
	if decl.Body.Kind == NodeBlockStatement {
		fn.Body = decl.Body.Statements
	} else {
		fn.Body = []*ASTNode{decl.Body}
	}
	return fn
}

// IsTruthy reports whether v counts as true in a condition. Only false
// and nil are falsy.
func IsTruthy(v Value) bool {
	switch v := v.(type) {
	case NilValue:
		return false
	case Boolean:
		return bool(v)
	}
	return true
}

// ValuesEqual compares scalars by value and tables and functions by
// identity.
func ValuesEqual(a, b Value) bool {
	return a == b
}

// toNumber converts numbers and numeric strings.
func toNumber(v Value) (float64, bool) {
	switch v := v.(type) {
	case Number:
		return float64(v), true
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f, err == nil
	}
	return 0, false
}

// formatNumber prints integral values without a fractional part.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatValue renders v the way print shows it.
func FormatValue(v Value) string {
	switch v := v.(type) {
	case Number:
		return formatNumber(float64(v))
	case String:
		return string(v)
	case Boolean:
		return strconv.FormatBool(bool(v))
	case NilValue:
		return "nil"
	case *Table:
		return fmt.Sprintf("table: %p", v)
	case *Function:
		return "function: " + v.Name
	case *HostFunction:
		return "function: builtin " + v.Name
	}
	return fmt.Sprintf("<%T>", v)
}
