// State export/import for the durable store. The simulation stays
// memory-authoritative; the store receives copies and never holds
// references into live state.
package engine

import (
	"github.com/talgya/emberwood/internal/actors"
	"github.com/talgya/emberwood/internal/social"
	"github.com/talgya/emberwood/internal/world"
)

// State is a consistent copy of everything worth persisting. Append-only
// rows (activity, conversations, memories) are included only past the
// caller's high-water sequence.
type State struct {
	World         world.World
	Zones         []*world.Zone
	Connections   []*world.Connection
	Objects       []*world.Object
	Characters    []*actors.Character
	Relationships []*social.Relationship
	Activity      []ActivityEntry
	Conversations []Conversation
	Memories      []MemoryEntry
	MaxSeq        int64
}

// ExportState snapshots the simulation under the read lock, deep-copying
// mutable rows.
func (s *Simulation) ExportState(sinceSeq int64) *State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &State{
		World:  *s.World,
		MaxSeq: s.nextSeq,
	}

	for _, z := range s.Map.Zones {
		zz := *z
		st.Zones = append(st.Zones, &zz)
	}
	st.Connections = s.Map.Connections()
	for _, o := range s.Map.Objects {
		oo := *o
		st.Objects = append(st.Objects, &oo)
	}
	for _, c := range s.Characters {
		st.Characters = append(st.Characters, c.Clone())
	}
	for _, r := range s.Rels.All() {
		rr := *r
		rr.Summaries = append([]social.Summary(nil), r.Summaries...)
		st.Relationships = append(st.Relationships, &rr)
	}
	for _, a := range s.activity {
		if a.Seq > sinceSeq {
			st.Activity = append(st.Activity, a)
		}
	}
	for _, c := range s.conversations {
		if c.Seq > sinceSeq {
			st.Conversations = append(st.Conversations, c)
		}
	}
	for _, m := range s.memories {
		if m.Seq > sinceSeq {
			st.Memories = append(st.Memories, m)
		}
	}
	return st
}

// RestoreSeq sets the append-only sequence counter after a load, so new
// rows continue above everything already persisted. Everything at or
// below seq is in the store, so it is also the trim watermark.
func (s *Simulation) RestoreSeq(seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.nextSeq {
		s.nextSeq = seq
	}
	if seq > s.persistedSeq {
		s.persistedSeq = seq
	}
}

// RestoreRelationships installs loaded relationship rows.
func (s *Simulation) RestoreRelationships(rels []*social.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rels {
		s.Rels.Put(r)
	}
}
