// Package social tracks directed relationships between characters and the
// conversational fatigue that keeps two actors from talking forever.
//
// Relationships are stored per ordered pair: (A,B) and (B,A) are two
// independent rows, deliberately never unified, so sentiment and history
// can diverge by direction.
package social

// MaxSentiment caps how warm a directed relationship can get.
const MaxSentiment = 100

// MaxSummaries bounds the per-relationship conversation summary list.
const MaxSummaries = 20

// Summary is one remembered conversation, deduplicated by tick.
type Summary struct {
	Tick int64  `json:"tick"`
	Text string `json:"text"`
}

// Relationship is the directed edge (Observer → Other).
type Relationship struct {
	Observer string `json:"observer"`
	Other    string `json:"other"`

	Sentiment    int   `json:"sentiment"`
	Interactions int   `json:"interactions"`
	FirstMetTick int64 `json:"first_met_tick"`
	LastTick     int64 `json:"last_interaction_tick"`

	// Fatigue state, see fatigue.go.
	RecentExchanges int   `json:"recent_exchanges"`
	CooldownUntil   int64 `json:"cooldown_until_tick"`

	Summaries []Summary `json:"conversation_summaries,omitempty"`
}

// AddSentiment raises sentiment, clamped to MaxSentiment.
func (r *Relationship) AddSentiment(amount int) {
	r.Sentiment += amount
	if r.Sentiment > MaxSentiment {
		r.Sentiment = MaxSentiment
	}
}

// AddSummary appends a conversation summary, skipping duplicates for the
// same tick and dropping the oldest past the cap.
func (r *Relationship) AddSummary(tick int64, text string) {
	for _, s := range r.Summaries {
		if s.Tick == tick {
			return
		}
	}
	r.Summaries = append(r.Summaries, Summary{Tick: tick, Text: text})
	if len(r.Summaries) > MaxSummaries {
		r.Summaries = r.Summaries[len(r.Summaries)-MaxSummaries:]
	}
}

type pairKey struct {
	observer, other string
}

// Ledger is the in-memory adjacency structure over all directed
// relationship rows.
type Ledger struct {
	rels map[pairKey]*Relationship
}

// NewLedger creates an empty relationship ledger.
func NewLedger() *Ledger {
	return &Ledger{rels: make(map[pairKey]*Relationship)}
}

// Get returns the directed relationship, or nil when the pair has never
// interacted.
func (l *Ledger) Get(observer, other string) *Relationship {
	return l.rels[pairKey{observer, other}]
}

// GetOrCreate returns the directed relationship, creating it with
// FirstMetTick set when this is the first contact.
func (l *Ledger) GetOrCreate(observer, other string, tick int64) (*Relationship, bool) {
	key := pairKey{observer, other}
	if r, ok := l.rels[key]; ok {
		return r, false
	}
	r := &Relationship{Observer: observer, Other: other, FirstMetTick: tick}
	l.rels[key] = r
	return r, true
}

// Put inserts a loaded relationship row.
func (l *Ledger) Put(r *Relationship) {
	l.rels[pairKey{r.Observer, r.Other}] = r
}

// All returns every directed relationship row.
func (l *Ledger) All() []*Relationship {
	out := make([]*Relationship, 0, len(l.rels))
	for _, r := range l.rels {
		out = append(out, r)
	}
	return out
}

// Of returns every relationship observed by the given character.
func (l *Ledger) Of(observer string) []*Relationship {
	var out []*Relationship
	for key, r := range l.rels {
		if key.observer == observer {
			out = append(out, r)
		}
	}
	return out
}

// DropCharacter removes every row that references the character, in either
// direction. Used only by world wipes.
func (l *Ledger) DropCharacter(id string) {
	for key := range l.rels {
		if key.observer == id || key.other == id {
			delete(l.rels, key)
		}
	}
}
