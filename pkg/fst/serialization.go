package fst

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ArtifactVersion is the schema version written by Encode.
const ArtifactVersion = 1

// artifact is the stable on-disk schema of a compiled FST.
type artifact struct {
	Version       int             `json:"version"`
	Start         StateID         `json:"start"`
	InputSymbols  []string        `json:"input_symbols"`
	OutputSymbols []string        `json:"output_symbols"`
	States        []artifactState `json:"states"`
}

type artifactState struct {
	Final bool          `json:"final,omitempty"`
	Arcs  []artifactArc `json:"arcs,omitempty"`
}

type artifactArc struct {
	In     int     `json:"i"`
	Out    int     `json:"o"`
	Weight float32 `json:"w"`
	Next   StateID `json:"n"`
}

// Encode writes f as a JSON artifact.
func (f *FST) Encode(w io.Writer) error {
	a := artifact{
		Version:       ArtifactVersion,
		Start:         f.start,
		InputSymbols:  f.in.Symbols(),
		OutputSymbols: f.out.Symbols(),
		States:        make([]artifactState, len(f.states)),
	}
	for i, st := range f.states {
		as := artifactState{Final: st.final}
		for _, arc := range st.arcs {
			as.Arcs = append(as.Arcs, artifactArc{In: arc.In, Out: arc.Out, Weight: arc.Weight, Next: arc.Next})
		}
		a.States[i] = as
	}
	if err := json.NewEncoder(w).Encode(a); err != nil {
		return fmt.Errorf("failed to encode fst: %w", err)
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler using the JSON artifact schema.
func (f *FST) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads an FST written by Encode and validates it.
func Decode(r io.Reader) (*FST, error) {
	var a artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode fst: %w", err)
	}
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("unsupported fst artifact version %d", a.Version)
	}

	in, ok := symbolTableFrom(a.InputSymbols)
	if !ok {
		return nil, fmt.Errorf("invalid input symbol table")
	}
	out, ok := symbolTableFrom(a.OutputSymbols)
	if !ok {
		return nil, fmt.Errorf("invalid output symbol table")
	}

	f := New(in, out)
	n := StateID(len(a.States))
	if a.Start != NoState && (a.Start < 0 || a.Start >= n) {
		return nil, fmt.Errorf("start state %d out of range", a.Start)
	}
	f.start = a.Start
	f.states = make([]state, n)
	for i, as := range a.States {
		st := state{final: as.Final, arcs: make([]Arc, 0, len(as.Arcs))}
		for _, arc := range as.Arcs {
			if arc.Next < 0 || arc.Next >= n {
				return nil, fmt.Errorf("state %d: arc target %d out of range", i, arc.Next)
			}
			if arc.In < 0 || arc.In >= in.Len() || arc.Out < 0 || arc.Out >= out.Len() {
				return nil, fmt.Errorf("state %d: arc symbol out of range", i)
			}
			st.arcs = append(st.arcs, Arc{In: arc.In, Out: arc.Out, Weight: arc.Weight, Next: arc.Next})
		}
		f.states[i] = st
	}
	return f, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (f *FST) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}
