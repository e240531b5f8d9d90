package compiler

import "github.com/aretw0/lattice/pkg/fst"

// Context holds the symbol tables shared by every automaton of one
// compilation, so spliced copies never need symbol remapping.
// It is passed explicitly; there is no package-level table.
type Context struct {
	In  *fst.SymbolTable
	Out *fst.SymbolTable
}

// NewContext creates a Context with fresh symbol tables.
func NewContext() *Context {
	return &Context{In: fst.NewSymbolTable(), Out: fst.NewSymbolTable()}
}

// NewFST returns an empty automaton over the context's tables.
func (c *Context) NewFST() *fst.FST {
	return fst.New(c.In, c.Out)
}
