package domain

// Intent names the recognized command and how sure the recognizer is about it.
type Intent struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Entity is a tagged span of the recognized sentence.
// Start and End are character offsets into Recognition.Text, so that
// Text[Start:End] (in runes) equals Value.
type Entity struct {
	Entity   string `json:"entity"`
	Value    string `json:"value"`
	RawValue string `json:"raw_value"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// Recognition is the record produced for one utterance.
// It is built fresh per call and never mutated after being returned.
type Recognition struct {
	// Text is the recognized sentence with output rewrites applied ("10" instead of "ten").
	Text string `json:"text"`
	// RawText is the sentence as it was consumed from the input tokens.
	RawText  string            `json:"raw_text"`
	Intent   Intent            `json:"intent"`
	Entities []Entity          `json:"entities"`
	Slots    map[string]string `json:"slots"`
	// Intents holds the alternative interpretations, primary excluded.
	Intents []Recognition `json:"intents"`

	// Truncated is set when the search hit its path budget before finishing.
	Truncated bool `json:"truncated,omitempty"`
	// Fuzzy is set when the result came from approximate matching.
	Fuzzy bool `json:"fuzzy,omitempty"`
}

// EmptyRecognition returns the sentinel used when nothing was recognized.
func EmptyRecognition() Recognition {
	return Recognition{
		Intent:   Intent{Name: "", Confidence: 0},
		Entities: []Entity{},
		Slots:    map[string]string{},
		Intents:  []Recognition{},
	}
}

// Recognized reports whether r carries an intent.
func (r Recognition) Recognized() bool {
	return r.Intent.Name != ""
}

// FillSlots rebuilds r.Slots from r.Entities; later entities with the same
// name overwrite earlier ones.
func (r *Recognition) FillSlots() {
	r.Slots = make(map[string]string, len(r.Entities))
	for _, e := range r.Entities {
		r.Slots[e.Entity] = e.Value
	}
}

// Report is the wire shape of one answered utterance: the recognition plus an
// inline error message when the utterance could not be processed.
type Report struct {
	Recognition
	Error string `json:"error,omitempty"`
}

// NewReport pairs a recognition with the error returned alongside it.
func NewReport(r Recognition, err error) Report {
	rep := Report{Recognition: r}
	if err != nil {
		rep.Error = err.Error()
	}
	return rep
}
