/*
Package domain contains the core records and error taxonomy shared by the
lattice compiler and recognizers.

It is kept free of I/O and of automaton internals so that adapters (HTTP,
MCP, stores) can depend on it without pulling in the compiler.

# Key Entities

  - Recognition: the result of recognizing one utterance (intent, entities, slots, alternatives).
  - Entity: a named span of the recognized text with its rewritten and raw forms.
  - Meta markers: the reserved output symbols (__label__, __begin__, __end__) that
    the compiler emits and the recognizers interpret.
*/
package domain
