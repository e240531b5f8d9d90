package fst_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linear builds an acceptor for one word sequence.
func linear(in, out *fst.SymbolTable, words ...string) *fst.FST {
	f := fst.New(in, out)
	s := f.AddState()
	f.SetStart(s)
	for _, w := range words {
		next := f.AddState()
		f.AddLabeledArc(s, w, w, next)
		s = next
	}
	f.SetFinal(s, true)
	return f
}

func TestSymbolTable(t *testing.T) {
	tab := fst.NewSymbolTable()
	assert.Equal(t, 1, tab.Len())
	assert.Equal(t, domain.Epsilon, tab.Symbol(0))

	a := tab.Add("light")
	b := tab.Add("lamp")
	assert.Equal(t, a, tab.Add("light"), "adding twice returns the same id")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 0, tab.Add(""), "empty label is epsilon")

	id, ok := tab.Find("lamp")
	assert.True(t, ok)
	assert.Equal(t, b, id)
	_, ok = tab.Find("missing")
	assert.False(t, ok)
	assert.Equal(t, "", tab.Symbol(99))
}

func TestConcatAndUnion(t *testing.T) {
	in, out := fst.NewSymbolTable(), fst.NewSymbolTable()

	turn := linear(in, out, "turn")
	on := linear(in, out, "on")
	off := linear(in, out, "off")

	f := fst.Concat(turn, fst.Union(on, off))
	assert.Equal(t, []string{"turn on", "turn off"}, f.Sentences(0))

	collapsed := fst.RmEpsilon(f)
	assert.Equal(t, []string{"turn on", "turn off"}, collapsed.Sentences(0))
	for s := 0; s < collapsed.NumStates(); s++ {
		for _, a := range collapsed.Arcs(fst.StateID(s)) {
			assert.False(t, fst.IsEpsilon(a), "no epsilon arcs remain")
		}
	}
}

func TestLabeledUnion_LabelFirst(t *testing.T) {
	in, out := fst.NewSymbolTable(), fst.NewSymbolTable()
	u := fst.LabeledUnion(in, out, []fst.Labeled{
		{Label: domain.LabelMarker("A"), FST: linear(in, out, "x")},
		{Label: domain.LabelMarker("B"), FST: linear(in, out, "x")},
	})

	assert.Equal(t, []string{"__label__A x", "__label__B x"}, u.OutputSentences(0))
	assert.Equal(t, []string{"x", "x"}, u.Sentences(0))
}

func TestReplace(t *testing.T) {
	in, out := fst.NewSymbolTable(), fst.NewSymbolTable()

	host := fst.New(in, out)
	s0, s1, s2 := host.AddState(), host.AddState(), host.AddState()
	host.SetStart(s0)
	host.AddLabeledArc(s0, "set", "set", s1)
	host.AddLabeledArc(s1, "", "$colors", s2)
	host.SetFinal(s2, true)

	colors := fst.Union(linear(in, out, "red"), linear(in, out, "blue"))

	t.Run("Splices a copy per placeholder", func(t *testing.T) {
		got, err := fst.Replace(host, map[string]*fst.FST{"$colors": colors})
		require.NoError(t, err)
		assert.Equal(t, []string{"set red", "set blue"}, got.Sentences(0))
		assert.Empty(t, fst.Placeholders(got))
		assert.Equal(t, []string{"$colors"}, fst.Placeholders(host), "host untouched")
	})

	t.Run("Missing reference", func(t *testing.T) {
		_, err := fst.Replace(host, map[string]*fst.FST{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnresolvedReference))

		var ref *domain.UnresolvedReferenceError
		require.ErrorAs(t, err, &ref)
		assert.Equal(t, "$colors", ref.Reference)
		assert.Equal(t, domain.KindSlot, ref.Kind)
	})

	t.Run("Same reference twice yields identical languages", func(t *testing.T) {
		twice := fst.New(in, out)
		a, b, c := twice.AddState(), twice.AddState(), twice.AddState()
		twice.SetStart(a)
		twice.AddLabeledArc(a, "", "$colors", b)
		twice.AddLabeledArc(b, "", "$colors", c)
		twice.SetFinal(c, true)

		got, err := fst.Replace(twice, map[string]*fst.FST{"$colors": colors})
		require.NoError(t, err)
		assert.Equal(t, []string{"red red", "red blue", "blue red", "blue blue"}, got.Sentences(0))
	})
}

func TestConnect_PrunesDeadStates(t *testing.T) {
	f := fst.New(nil, nil)
	s0, s1, dead, unreachable := f.AddState(), f.AddState(), f.AddState(), f.AddState()
	f.SetStart(s0)
	f.AddLabeledArc(s0, "a", "a", s1)
	f.AddLabeledArc(s0, "b", "b", dead)
	f.AddLabeledArc(unreachable, "c", "c", s1)
	f.SetFinal(s1, true)

	c := fst.Connect(f)
	assert.Equal(t, 2, c.NumStates())
	assert.Equal(t, fst.StateID(0), c.Start())
	assert.Equal(t, []string{"a"}, c.Sentences(0))

	empty := fst.New(nil, nil)
	e0 := empty.AddState()
	empty.SetStart(e0)
	assert.Equal(t, 0, fst.Connect(empty).NumStates(), "no final state means empty automaton")
}

func TestWalk_Limit(t *testing.T) {
	in, out := fst.NewSymbolTable(), fst.NewSymbolTable()
	f := fst.Union(linear(in, out, "a"), linear(in, out, "b"), linear(in, out, "c"))

	assert.Len(t, f.Sentences(2), 2)
	n := f.Walk(0, func(p fst.Path) bool { return false })
	assert.Equal(t, 1, n)
}

func TestSerialization_RoundTrip(t *testing.T) {
	in, out := fst.NewSymbolTable(), fst.NewSymbolTable()
	f := fst.Concat(linear(in, out, "turn"), fst.Union(linear(in, out, "on"), linear(in, out, "off")))
	f = fst.RmEpsilon(f)

	var buf bytes.Buffer
	require.NoError(t, f.Encode(&buf))

	decoded, err := fst.Decode(&buf)
	require.NoError(t, err)
	assert.True(t, fst.Equal(f, decoded))
	assert.Equal(t, f.Sentences(0), decoded.Sentences(0))
	assert.Equal(t, f.InputSymbols().Symbols(), decoded.InputSymbols().Symbols())

	data, err := f.MarshalBinary()
	require.NoError(t, err)
	var viaBinary fst.FST
	require.NoError(t, viaBinary.UnmarshalBinary(data))
	assert.True(t, fst.Equal(f, &viaBinary))
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Garbage", "not json"},
		{"Version", `{"version":99,"start":0,"input_symbols":["<eps>"],"output_symbols":["<eps>"],"states":[{}]}`},
		{"Symbols", `{"version":1,"start":0,"input_symbols":["x"],"output_symbols":["<eps>"],"states":[{}]}`},
		{"Start", `{"version":1,"start":3,"input_symbols":["<eps>"],"output_symbols":["<eps>"],"states":[{}]}`},
		{"Target", `{"version":1,"start":0,"input_symbols":["<eps>"],"output_symbols":["<eps>"],"states":[{"arcs":[{"i":0,"o":0,"w":1,"n":7}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fst.Decode(bytes.NewBufferString(tt.data))
			assert.Error(t, err)
		})
	}
}
