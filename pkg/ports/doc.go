/*
Package ports defines the driven ports (interfaces) of the lattice compiler
and recognizer.

These interfaces decouple compilation and recognition from where grammars,
slot word lists and compiled automata live.

# Key Interfaces

  - GrammarLoader: lists and reads grammar sources (directory, memory, sentences.ini).
  - SlotLoader: reads slot value lines by slot name.
  - ArtifactStore: persists compiled automata (file, memory, Redis).
*/
package ports
