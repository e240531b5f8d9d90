package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGrammarSyntax is matched by every *SyntaxError.
	ErrGrammarSyntax = errors.New("grammar syntax error")

	// ErrUnresolvedReference is matched by every *UnresolvedReferenceError.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrCyclicReference is matched by an *UnresolvedReferenceError describing a cycle.
	ErrCyclicReference = errors.New("cyclic reference")

	// ErrDuplicateSlotConflict is matched by every *DuplicateSlotConflictError.
	ErrDuplicateSlotConflict = errors.New("duplicate slot conflict")

	// ErrGrammarNotFound is returned by grammar loaders for unknown grammar names.
	ErrGrammarNotFound = errors.New("grammar not found")

	// ErrSlotNotFound is returned by slot loaders for unknown slot names.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrArtifactNotFound is returned by artifact stores when nothing is stored under a name.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrEmptyUtterance is returned when an utterance has no tokens left to recognize.
	ErrEmptyUtterance = errors.New("empty utterance")

	// ErrInvalidEncoding is returned for utterances that are not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid utterance encoding")
)

// SyntaxError reports malformed grammar source at a position.
type SyntaxError struct {
	Grammar string
	Line    int
	Column  int
	Msg     string
}

func (e *SyntaxError) Error() string {
	if e.Grammar == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Grammar, e.Line, e.Column, e.Msg)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrGrammarSyntax }

// ReferenceKind tells what an unresolved reference pointed at.
type ReferenceKind string

const (
	KindSlot       ReferenceKind = "slot"
	KindLocalRule  ReferenceKind = "local rule"
	KindRemoteRule ReferenceKind = "remote rule"
	KindGrammar    ReferenceKind = "grammar"
)

// UnresolvedReferenceError reports a slot, rule or grammar that could not be
// found, or a reference chain that loops back on itself (Cycle is then set).
type UnresolvedReferenceError struct {
	Grammar   string
	Reference string
	Kind      ReferenceKind
	Cycle     []string
	Err       error
}

func (e *UnresolvedReferenceError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("%s: cyclic reference: %s", e.Grammar, strings.Join(e.Cycle, " -> "))
	}
	msg := fmt.Sprintf("%s: unresolved %s %s", e.Grammar, e.Kind, e.Reference)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnresolvedReferenceError) Is(target error) bool {
	if target == ErrUnresolvedReference {
		return true
	}
	return target == ErrCyclicReference && len(e.Cycle) > 0
}

func (e *UnresolvedReferenceError) Unwrap() error { return e.Err }

// DuplicateSlotConflictError reports one slot name bound to automata that
// accept different languages.
type DuplicateSlotConflictError struct {
	Slot    string
	Sources []string
}

func (e *DuplicateSlotConflictError) Error() string {
	return fmt.Sprintf("slot %s defined differently by %s", e.Slot, strings.Join(e.Sources, ", "))
}

func (e *DuplicateSlotConflictError) Is(target error) bool { return target == ErrDuplicateSlotConflict }

// RecognitionError attributes a failure to the utterance that caused it.
// Recognizers return it together with EmptyRecognition.
type RecognitionError struct {
	Text string
	Err  error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognize %q: %v", e.Text, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }
