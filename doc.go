/*
Package lattice compiles sentence-template grammars into one weighted
finite-state transducer and recognizes intents and slots in text with it.

# Concept

Each intent is a grammar in a JSGF-like syntax. Rules may reference other
rules, rules of sibling grammars and slots (word lists loaded at build
time). The compiler turns every grammar into an automaton, splices the
references in, and unions the intents behind one start state whose arcs emit
the intent label. Entity tags become begin/end markers on the output side.

At runtime a Recognizer walks the merged automaton with the tokens of an
utterance. Exact search returns every accepting path; fuzzy search tolerates
stop words and unknown tokens and always yields a best-effort guess.

# Usage

	loader := file.NewLoader("./profile")
	res, err := lattice.Compile(ctx, loader, lattice.WithSlots("profile", loader))
	if err != nil {
		var be *lattice.BuildError
		if !errors.As(err, &be) {
			log.Fatal(err)
		}
		// res still holds the grammars that compiled
	}

	rec := lattice.Open(res.Merged, lattice.WithRecognizer(recognizer.Config{Lower: true}))
	got, err := rec.Recognize("turn on the light")

The lattice command wraps the same pipeline: compile a profile directory,
recognize JSON lines from stdin, or serve HTTP and MCP endpoints.
*/
package lattice
