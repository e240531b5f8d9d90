package compiler

import (
	"bufio"
	"io"

	"github.com/aretw0/lattice/pkg/fst"
)

// Vocabulary returns the words f can consume, sorted, for language-model
// and speech-to-text tooling.
func Vocabulary(f *fst.FST) []string {
	return f.Words()
}

// WriteVocabulary writes one word per line.
func WriteVocabulary(w io.Writer, words []string) error {
	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := bw.WriteString(word + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
