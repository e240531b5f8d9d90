/*
Package fst implements the weighted finite-state transducers lattice compiles
grammars into.

An FST is an arena of states addressed by dense integer ids. Each state owns
an ordered list of arcs; arc order is significant because recognizers report
interpretations in the order their paths are discovered. Symbols are interned
in two symbol tables (input and output) where id 0 is always epsilon.

Only the operations the compiler needs are provided: concatenation, union,
replace-by-copy (splicing one automaton into the placeholder arcs of another),
epsilon removal, trimming of dead states and path traversal. Automata are
never shared between hosts: Insert and Replace copy states into fresh ids.
*/
package fst
