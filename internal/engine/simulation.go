// Package engine is the simulation core: shared world state, the world
// clock, the turn gate, and the action processor.
//
// All mutation funnels through a single write lock, so the turn-gate
// check and the subsequent commit are one critical section. The clock
// goroutine and concurrent action submissions never interleave inside an
// action.
package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/emberwood/internal/actors"
	"github.com/talgya/emberwood/internal/entropy"
	"github.com/talgya/emberwood/internal/social"
	"github.com/talgya/emberwood/internal/world"
)

// Broadcaster receives fire-and-forget named events. The engine never
// blocks on delivery and expects no acknowledgement.
type Broadcaster interface {
	Publish(event string, payload any)
}

// noopBroadcaster drops everything; used until a hub is attached and in
// tests.
type noopBroadcaster struct{}

func (noopBroadcaster) Publish(string, any) {}

// retained recent rows kept in memory for the snapshot/look queries.
// The windows may grow past this between saves: rows are only dropped
// once the store has confirmed them through MarkPersisted.
const recentKeep = 500

// ActivityEntry is one append-only, human-readable action record. It is
// observability only; simulation logic never reads it back.
type ActivityEntry struct {
	Seq         int64  `json:"seq" db:"seq"`
	Tick        int64  `json:"tick" db:"tick"`
	CharacterID string `json:"character_id,omitempty" db:"character_id"`
	Summary     string `json:"summary" db:"summary"`
}

// Conversation is one spoken exchange.
type Conversation struct {
	Seq          int64  `json:"seq" db:"seq"`
	Tick         int64  `json:"tick" db:"tick"`
	SpeakerID    string `json:"speaker_id" db:"speaker_id"`
	SpeakerName  string `json:"speaker_name" db:"speaker_name"`
	ListenerID   string `json:"listener_id" db:"listener_id"`
	ListenerName string `json:"listener_name" db:"listener_name"`
	Message      string `json:"message" db:"message"`
}

// MemoryEntry is one line of a character's personal memory stream.
type MemoryEntry struct {
	Seq         int64  `json:"seq" db:"seq"`
	Tick        int64  `json:"tick" db:"tick"`
	CharacterID string `json:"character_id" db:"character_id"`
	Text        string `json:"text" db:"text"`
}

// Simulation owns the authoritative world state.
type Simulation struct {
	mu sync.RWMutex

	World *world.World
	Map   *world.Map

	Characters map[string]*actors.Character
	byName     map[string]string // lowercased name → id
	byToken    map[string]string // token → id

	Rels *social.Ledger

	Features Features

	rng *entropy.Source
	hub Broadcaster

	activity      []ActivityEntry
	conversations []Conversation
	memories      []MemoryEntry
	nextSeq       int64
	persistedSeq  int64 // highest seq confirmed durable by the store
}

// NewSimulation assembles a simulation over the given world and map.
func NewSimulation(w *world.World, m *world.Map, feats Features, rng *entropy.Source) *Simulation {
	return &Simulation{
		World:      w,
		Map:        m,
		Characters: make(map[string]*actors.Character),
		byName:     make(map[string]string),
		byToken:    make(map[string]string),
		Rels:       social.NewLedger(),
		Features:   feats,
		rng:        rng,
		hub:        noopBroadcaster{},
	}
}

// AttachHub wires the broadcast channel. Safe to call before the clock
// starts; events published earlier are dropped.
func (s *Simulation) AttachHub(b Broadcaster) {
	if b != nil {
		s.hub = b
	}
}

// CurrentTick returns the world tick.
func (s *Simulation) CurrentTick() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.World.Tick
}

// publish sends a named event to the broadcast channel. Callers hold the
// write lock; Publish must never block.
func (s *Simulation) publish(event string, payload any) {
	s.hub.Publish(event, payload)
}

// trimLog drops the oldest rows beyond recentKeep, but never a row the
// store has not confirmed durable yet.
func trimLog[E any](rows []E, persisted int64, seqOf func(E) int64) []E {
	over := len(rows) - recentKeep
	if over <= 0 {
		return rows
	}
	cut := 0
	for cut < over && seqOf(rows[cut]) <= persisted {
		cut++
	}
	return rows[cut:]
}

// MarkPersisted records the sequence high-water mark the store has
// durably saved. Rows at or below it become eligible for trimming.
func (s *Simulation) MarkPersisted(seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.persistedSeq {
		s.persistedSeq = seq
	}
	s.activity = trimLog(s.activity, s.persistedSeq, func(e ActivityEntry) int64 { return e.Seq })
	s.conversations = trimLog(s.conversations, s.persistedSeq, func(e Conversation) int64 { return e.Seq })
	s.memories = trimLog(s.memories, s.persistedSeq, func(e MemoryEntry) int64 { return e.Seq })
}

// logActivity appends an activity entry and trims the in-memory window.
func (s *Simulation) logActivity(tick int64, charID, summary string) {
	s.nextSeq++
	s.activity = append(s.activity, ActivityEntry{
		Seq:         s.nextSeq,
		Tick:        tick,
		CharacterID: charID,
		Summary:     summary,
	})
	s.activity = trimLog(s.activity, s.persistedSeq, func(e ActivityEntry) int64 { return e.Seq })
}

func (s *Simulation) logConversation(tick int64, speaker, listener *actors.Character, message string) {
	s.nextSeq++
	s.conversations = append(s.conversations, Conversation{
		Seq:          s.nextSeq,
		Tick:         tick,
		SpeakerID:    speaker.ID,
		SpeakerName:  speaker.Name,
		ListenerID:   listener.ID,
		ListenerName: listener.Name,
		Message:      message,
	})
	s.conversations = trimLog(s.conversations, s.persistedSeq, func(e Conversation) int64 { return e.Seq })
}

func (s *Simulation) logMemory(tick int64, charID, text string) {
	s.nextSeq++
	s.memories = append(s.memories, MemoryEntry{
		Seq:         s.nextSeq,
		Tick:        tick,
		CharacterID: charID,
		Text:        text,
	})
	s.memories = trimLog(s.memories, s.persistedSeq, func(e MemoryEntry) int64 { return e.Seq })
}

// Registration is the input for creating a character.
type Registration struct {
	Name         string
	Emoji        string
	Personality  string
	OriginStory  string
	Traits       []string
	TurnInterval int64
}

// Register creates a character: unique name, fresh id and token, spawn at
// a random unblocked tile in the starting zone.
func (s *Simulation) Register(reg Registration) (*actors.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(reg.Name)
	if _, taken := s.byName[strings.ToLower(name)]; taken {
		return nil, reject(ReasonDuplicateName, fmt.Sprintf("the name %q is already taken", name))
	}

	zone := s.startZone()
	x, y := s.randomUnblockedTile(zone)

	interval := reg.TurnInterval
	if interval < 1 {
		interval = 1
	}

	tick := s.World.Tick
	c := &actors.Character{
		ID:           uuid.NewString(),
		Token:        uuid.NewString(),
		Name:         name,
		Emoji:        reg.Emoji,
		Personality:  reg.Personality,
		OriginStory:  reg.OriginStory,
		Traits:       reg.Traits,
		Zone:         zone.Name,
		X:            x,
		Y:            y,
		HP:           actors.MaxHPForLevel(1),
		MaxHP:        actors.MaxHPForLevel(1),
		Energy:       100,
		MaxEnergy:    100,
		Level:        1,
		TurnInterval: interval,
		IsActive:     true,
		CreatedTick:  tick,
		// A fresh character may act immediately.
		LastActionTick: tick - interval,
	}

	s.Characters[c.ID] = c
	s.byName[strings.ToLower(name)] = c.ID
	s.byToken[c.Token] = c.ID

	actors.RecordMoment(c, tick, "arrival", fmt.Sprintf("%s arrived in the %s.", c.Name, zone.Name))
	s.logActivity(tick, c.ID, fmt.Sprintf("%s %s appeared in the %s", c.Emoji, c.Name, zone.Name))
	s.publish("spawn", map[string]any{
		"id": c.ID, "name": c.Name, "emoji": c.Emoji,
		"zone": c.Zone, "x": c.X, "y": c.Y, "tick": tick,
	})

	slog.Info("character registered", "name", c.Name, "zone", c.Zone, "x", x, "y", y)
	// A copy: the caller serializes it outside the lock.
	return c.Clone(), nil
}

// AddCharacter inserts a loaded character without spawn side effects.
func (s *Simulation) AddCharacter(c *actors.Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Characters[c.ID] = c
	s.byName[strings.ToLower(c.Name)] = c.ID
	s.byToken[c.Token] = c.ID
}

// startZone prefers a safe zone as the spawn area.
func (s *Simulation) startZone() *world.Zone {
	var fallback *world.Zone
	for _, z := range s.Map.Zones {
		if z.IsSafe {
			return z
		}
		fallback = z
	}
	return fallback
}

// randomUnblockedTile samples tiles until it finds one without a blocking
// object, scanning deterministically if sampling keeps missing.
func (s *Simulation) randomUnblockedTile(z *world.Zone) (int, int) {
	for i := 0; i < 64; i++ {
		x := s.rng.Intn(z.Width)
		y := s.rng.Intn(z.Height)
		if s.Map.BlockingAt(z.Name, x, y) == nil {
			return x, y
		}
	}
	for y := 0; y < z.Height; y++ {
		for x := 0; x < z.Width; x++ {
			if s.Map.BlockingAt(z.Name, x, y) == nil {
				return x, y
			}
		}
	}
	return 0, 0
}

// CharacterByToken resolves a bearer token to a copy of its character.
func (s *Simulation) CharacterByToken(token string) (*actors.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byToken[token]
	if !ok {
		return nil, reject(ReasonInvalidCharacter, "invalid character or token")
	}
	return s.Characters[id].Clone(), nil
}

// VerifyToken checks that the token belongs to the given character id.
func (s *Simulation) VerifyToken(id, token string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.byToken[token]
	if !ok || owner != id {
		return reject(ReasonInvalidCharacter, "invalid character or token")
	}
	return nil
}

// Wipe removes every character, relationship, and recent log row. The map
// and the tick counter survive. This is the only hard delete in the
// system.
func (s *Simulation) Wipe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.Characters)
	s.Characters = make(map[string]*actors.Character)
	s.byName = make(map[string]string)
	s.byToken = make(map[string]string)
	s.Rels = social.NewLedger()
	s.activity = nil
	s.conversations = nil
	s.memories = nil

	s.logActivity(s.World.Tick, "", "the world was wiped clean")
	slog.Warn("world wiped", "characters_removed", n, "tick", s.World.Tick)
}
