// Package recognizer turns utterances into intent recognitions by walking a
// merged intent automaton.
//
// Exact recognition is an NFA simulation that reports every accepting path,
// each with confidence 1/paths. Fuzzy recognition tolerates stop words,
// unknown words and noise and always returns its best guess.
//
// A Recognizer is safe for concurrent use; the automaton is never mutated.
package recognizer
