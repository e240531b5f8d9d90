// Package compiler turns parsed grammars into intent automata.
//
// Each rule is compiled structurally into a fragment whose slot and rule
// references are placeholder arcs. Grammars are compiled once their
// dependencies exist, placeholders are spliced with copies of the
// referenced automata and the per-intent automata are merged behind a
// start state whose arcs emit __label__<Intent>.
package compiler
