package lir

import (
	"fmt"
	"strings"
	"sync"

	"jlc/src/ir/lir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Module defines a program that contains functions.
type Module struct {
	Name       string      // Name of module. Not important.
	functions  []*Function // All functions defined in module in source order.
	sync.Mutex             // Mutex for synchronising access to the module during parallel execution.
}

// ---------------------
// ----- functions -----
// ---------------------

// CreateModule creates a new empty module with the given optional name.
func CreateModule(name string) *Module {
	m := Module{functions: make([]*Function, 0, 16)}
	if len(name) > 0 {
		m.Name = name
	} else {
		m.Name = "LIR Module"
	}
	return &m
}

// String returns a textual representation of the module.
func (m *Module) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Module: %s\n", m.Name))
	for i1, e1 := range m.Strings() {
		sb.WriteString(fmt.Sprintf("str%d = %q\n", i1, e1))
	}
	sb.WriteRune('\n')
	for _, e1 := range m.functions {
		sb.WriteString(e1.String())
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Functions returns the functions of the module in source order.
func (m *Module) Functions() []*Function {
	return m.functions
}

// GetFunction returns the named function or <nil>.
func (m *Module) GetFunction(name string) *Function {
	for _, e1 := range m.functions {
		if e1.name == name {
			return e1
		}
	}
	return nil
}

// Strings returns the distinct string literals referenced by the module's functions in order of first appearance.
func (m *Module) Strings() []string {
	seen := make(map[string]bool)
	res := make([]string, 0, 8)
	for _, e1 := range m.functions {
		for _, e2 := range e1.instrs {
			if e2.Op == types.String && !seen[e2.Str] {
				seen[e2.Str] = true
				res = append(res, e2.Str)
			}
		}
	}
	return res
}

// CreateFunction creates a function with the given name, return type and parameter types. Functions keep the order
// in which they were created.
func (m *Module) CreateFunction(name string, ret types.DataType, params []types.DataType) *Function {
	f := &Function{
		m:      m,
		name:   name,
		typ:    ret,
		params: params,
		blocks: make([]*Block, 0, 8),
		instrs: make([]*Instruction, 0, 32),
	}
	m.Lock()
	defer m.Unlock()
	m.functions = append(m.functions, f)
	return f
}

// setFunctions replaces the function list. Used to restore source order after parallel lowering.
func (m *Module) setFunctions(fs []*Function) {
	m.Lock()
	defer m.Unlock()
	m.functions = fs
}
