package ir

import (
	"fmt"

	"jlc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// scope maps the identifiers declared in one lexical block to their types.
type scope map[string]Type

// Env is the symbol environment of one compilation unit. It holds a stack of variable scopes, the global function
// signature table and the function currently being checked. An Env is threaded explicitly through the checker and is
// not safe for concurrent use.
type Env struct {
	scopes util.Stack          // Stack of scope, innermost on top.
	sigs   map[string]FuncType // Function signatures.
	fn     string              // Name of function currently being checked.
	fnTyp  FuncType            // Signature of function currently being checked.
}

// ---------------------
// ----- Constants -----
// ---------------------

const sigSize = 16 // Initial capacity of the signature table.

// ---------------------
// ----- Functions -----
// ---------------------

// NewEnv returns an empty environment with no scopes pushed.
func NewEnv() *Env {
	return &Env{sigs: make(map[string]FuncType, sigSize)}
}

// EnterScope pushes a fresh innermost scope.
func (e *Env) EnterScope() {
	e.scopes.Push(scope{})
}

// ExitScope pops the innermost scope. Calling ExitScope with no scope pushed is a programming error and panics.
func (e *Env) ExitScope() {
	if e.scopes.Pop() == nil {
		panic("ExitScope called with no scope pushed")
	}
}

// Depth returns the number of scopes currently pushed.
func (e *Env) Depth() int {
	return e.scopes.Size()
}

// AddVar declares name with type t in the innermost scope. Shadowing a name of an enclosing scope is allowed,
// redeclaring a name of the innermost scope is not.
func (e *Env) AddVar(name string, t Type, p Pos) error {
	top, ok := e.scopes.Peek().(scope)
	if !ok {
		panic(fmt.Sprintf("AddVar(%s) called with no scope pushed", name))
	}
	if _, ok := top[name]; ok {
		return newError(DuplicateVariable, p, "variable %s already declared in this scope", name)
	}
	top[name] = t
	return nil
}

// FindVar looks up name from the innermost to the outermost scope.
func (e *Env) FindVar(name string, p Pos) (Type, error) {
	for i1 := 1; i1 <= e.scopes.Size(); i1++ {
		if t, ok := e.scopes.Get(i1).(scope)[name]; ok {
			return t, nil
		}
	}
	return Error, newError(UndeclaredVariable, p, "undeclared variable %s", name)
}

// AddSignature registers the signature of function name.
func (e *Env) AddSignature(name string, ft FuncType, p Pos) error {
	if _, ok := e.sigs[name]; ok {
		return newError(DuplicateFunction, p, "function %s already declared", name)
	}
	e.sigs[name] = ft
	return nil
}

// FindFn returns the signature of function name.
func (e *Env) FindFn(name string, p Pos) (FuncType, error) {
	ft, ok := e.sigs[name]
	if !ok {
		return FuncType{}, newError(UndeclaredFunction, p, "undeclared function %s", name)
	}
	return ft, nil
}

// EnterFn records function name as the function currently being checked.
func (e *Env) EnterFn(name string, p Pos) error {
	ft, err := e.FindFn(name, p)
	if err != nil {
		return err
	}
	e.fn = name
	e.fnTyp = ft
	return nil
}

// CurrentFunction returns the name and signature of the function currently being checked.
func (e *Env) CurrentFunction() (string, FuncType) {
	return e.fn, e.fnTyp
}
