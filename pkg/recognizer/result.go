package recognizer

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
)

type openEntity struct {
	index int
	name  string
	value []string
	raw   []string
}

// fromArcs interprets the arcs of one accepting path.
func fromArcs(f *fst.FST, arcs []fst.Arc) domain.Recognition {
	r := domain.EmptyRecognition()
	var words, raw []string
	textLen := 0
	var open []*openEntity

	for _, a := range arcs {
		if a.In != 0 {
			in := f.InputLabel(a)
			raw = append(raw, in)
			for _, e := range open {
				e.raw = append(e.raw, in)
			}
		}
		if a.Out == 0 {
			continue
		}
		out := f.OutputLabel(a)
		switch {
		case strings.HasPrefix(out, domain.LabelPrefix):
			if r.Intent.Name == "" {
				r.Intent.Name = strings.TrimPrefix(out, domain.LabelPrefix)
			}
		case strings.HasPrefix(out, domain.BeginPrefix):
			start := textLen
			if len(words) > 0 {
				start++
			}
			r.Entities = append(r.Entities, domain.Entity{Entity: strings.TrimPrefix(out, domain.BeginPrefix), Start: start})
			open = append(open, &openEntity{index: len(r.Entities) - 1, name: strings.TrimPrefix(out, domain.BeginPrefix)})
		case strings.HasPrefix(out, domain.EndPrefix):
			name := strings.TrimPrefix(out, domain.EndPrefix)
			for i := len(open) - 1; i >= 0; i-- {
				e := open[i]
				if e.name != name {
					continue
				}
				ent := &r.Entities[e.index]
				ent.Value = strings.Join(e.value, " ")
				ent.RawValue = strings.Join(e.raw, " ")
				if ent.Value == "" {
					ent.Start = textLen
				}
				ent.End = ent.Start + utf8.RuneCountInString(ent.Value)
				open = append(open[:i], open[i+1:]...)
				break
			}
		case domain.IsMeta(out):
		default:
			if len(words) > 0 {
				textLen++
			}
			textLen += utf8.RuneCountInString(out)
			words = append(words, out)
			for _, e := range open {
				e.value = append(e.value, out)
			}
		}
	}

	// Entities never closed on this path are dropped.
	if len(open) > 0 {
		drop := make(map[int]bool, len(open))
		for _, e := range open {
			drop[e.index] = true
		}
		kept := r.Entities[:0]
		for i, e := range r.Entities {
			if !drop[i] {
				kept = append(kept, e)
			}
		}
		r.Entities = kept
	}

	r.Text = strings.Join(words, " ")
	r.RawText = strings.Join(raw, " ")
	r.FillSlots()
	return r
}

// rank turns interpretations in discovery order into one result: the first
// is primary, the rest become its alternatives.
func rank(results []domain.Recognition) domain.Recognition {
	if len(results) == 0 {
		return domain.EmptyRecognition()
	}
	primary := results[0]
	primary.Intents = make([]domain.Recognition, 0, len(results)-1)
	for _, alt := range results[1:] {
		alt.Intents = []domain.Recognition{}
		primary.Intents = append(primary.Intents, alt)
	}
	return primary
}
