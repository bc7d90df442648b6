// symtab.go implements the variable table and the function directory the
// generator fills in and the virtual machine reads.

package semantic

import (
	"fmt"
	"sort"
)

// VarEntry is a single declared variable: (name, type, address).
type VarEntry struct {
	Name string
	Type Type
	Addr Address
}

// VarTable is a per-scope table of declared variables, keyed by name.
// Redeclaration within the same scope is a semantic error.
type VarTable struct {
	byName map[string]*VarEntry
}

// NewVarTable returns an empty variable table.
func NewVarTable() *VarTable {
	return &VarTable{byName: make(map[string]*VarEntry)}
}

// Declare adds name to the table. It fails if name is already declared in
// this exact scope.
func (vt *VarTable) Declare(name string, t Type, addr Address) error {
	if _, ok := vt.byName[name]; ok {
		return fmt.Errorf("variable %q already declared", name)
	}
	vt.byName[name] = &VarEntry{Name: name, Type: t, Addr: addr}
	return nil
}

// Lookup returns the entry for name, or nil if undeclared in this table.
func (vt *VarTable) Lookup(name string) *VarEntry {
	return vt.byName[name]
}

// Len reports the number of declared variables, for listings/tests.
func (vt *VarTable) Len() int { return len(vt.byName) }

// Names returns every declared name, sorted, for deterministic listings.
func (vt *VarTable) Names() []string {
	out := make([]string, 0, len(vt.byName))
	for name := range vt.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// zeroCounts returns a fresh, zeroed per-type usage map.
func zeroCounts() map[Type]int {
	return map[Type]int{Int: 0, Float: 0, String: 0, Bool: 0}
}

// FuncEntry is a function's directory entry: signature, parameter list,
// entry quadruple, return slot and local/temp usage counts.
type FuncEntry struct {
	Name       string
	HasReturn  bool // false for a void function.
	ReturnType Type // meaningless if !HasReturn.
	ParamTypes []Type

	Params    []*VarEntry // Parameter entries, in declaration order.
	Vars      *VarTable   // This function's own local variable table.
	StartQuad int         // -1 until emission of the body begins.
	HasRet    bool        // whether ReturnAddr is valid (non-void function).
	ReturnAddr Address

	LocalsCount map[Type]int
	TempsCount  map[Type]int
}

// UnresolvedStart is the sentinel StartQuad value before emission of a
// function's body has begun.
const UnresolvedStart = -1

// FuncDirectory is the global table of declared functions, keyed by name.
type FuncDirectory struct {
	byName map[string]*FuncEntry
}

// NewFuncDirectory returns an empty function directory.
func NewFuncDirectory() *FuncDirectory {
	return &FuncDirectory{byName: make(map[string]*FuncEntry)}
}

// Declare pre-declares a function's signature so forward calls resolve.
// Duplicate function name is an error.
func (fd *FuncDirectory) Declare(name string, hasReturn bool, returnType Type, paramTypes []Type) (*FuncEntry, error) {
	if _, ok := fd.byName[name]; ok {
		return nil, fmt.Errorf("function %q already declared", name)
	}
	fe := &FuncEntry{
		Name:        name,
		HasReturn:   hasReturn,
		ReturnType:  returnType,
		ParamTypes:  paramTypes,
		Vars:        NewVarTable(),
		StartQuad:   UnresolvedStart,
		LocalsCount: zeroCounts(),
		TempsCount:  zeroCounts(),
	}
	fd.byName[name] = fe
	return fe, nil
}

// Get returns the entry for name, or nil if undeclared.
func (fd *FuncDirectory) Get(name string) *FuncEntry {
	return fd.byName[name]
}

// All returns every declared function entry. Iteration order is not
// guaranteed; callers that need deterministic output should sort.
func (fd *FuncDirectory) All() []*FuncEntry {
	out := make([]*FuncEntry, 0, len(fd.byName))
	for _, fe := range fd.byName {
		out = append(out, fe)
	}
	return out
}
