// Read-only views: the per-actor look query and the public world
// snapshot. Neither has side effects. Views hand out deep copies:
// callers serialize them after the read lock is released, while the
// clock goroutine keeps mutating the live structs.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/talgya/emberwood/internal/actors"
	"github.com/talgya/emberwood/internal/world"
)

// NearbyCharacter is another actor visible from the viewer's position.
type NearbyCharacter struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Emoji     string   `json:"emoji"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Level     int      `json:"level"`
	Direction []string `json:"direction"` // Moves that close the distance
}

// NearbyObject is an object visible from the viewer's position.
type NearbyObject struct {
	Name        string `json:"name"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	CanInteract bool   `json:"can_interact"`
}

// LookView is an actor's personal view of the world, shaped for the
// agent clients.
type LookView struct {
	Character       *actors.Character `json:"character"`
	World           world.World       `json:"world"`
	Zone            *world.Zone       `json:"zone"`
	CanAct          bool              `json:"canAct"`
	CanTalk         bool              `json:"canTalk"`
	ValidMoves      []string          `json:"validMoves"`
	NearbyChars     []NearbyCharacter `json:"nearbyCharacters"`
	NearbyObjects   []NearbyObject    `json:"nearbyObjects"`
	RecentConvos    []Conversation    `json:"recentConversations"`
	TextDescription string            `json:"textDescription"`
}

// lookSight is how far an actor can see other characters and objects.
const lookSight = 8

// Look builds the personal view for a character.
func (s *Simulation) Look(id string) (*LookView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.Characters[id]
	if !ok || !c.IsActive {
		return nil, reject(ReasonInvalidCharacter, "invalid character or token")
	}

	z := s.Map.Zone(c.Zone)
	tick := s.World.Tick

	zz := *z
	view := &LookView{
		Character: c.Clone(),
		World:     *s.World,
		Zone:      &zz,
		CanAct:    canAct(c, tick),
	}

	// Valid moves: in-bounds, unblocked target tiles.
	for _, d := range world.Directions() {
		dx, dy, _ := world.Offset(d)
		tx, ty := c.X+dx, c.Y+dy
		if z.InBounds(tx, ty) && s.Map.BlockingAt(c.Zone, tx, ty) == nil {
			view.ValidMoves = append(view.ValidMoves, string(d))
		}
	}

	// Nearby characters, closest first, with approach direction hints.
	for _, other := range s.Characters {
		if other.ID == c.ID || !other.IsActive || other.Zone != c.Zone {
			continue
		}
		if !world.WithinRadius(other.X, other.Y, c.X, c.Y, lookSight) {
			continue
		}
		view.NearbyChars = append(view.NearbyChars, NearbyCharacter{
			ID: other.ID, Name: other.Name, Emoji: other.Emoji,
			X: other.X, Y: other.Y, Level: other.Level,
			Direction: approachDirections(c.X, c.Y, other.X, other.Y),
		})
		if world.WithinRadius(other.X, other.Y, c.X, c.Y, TalkRadius) {
			view.CanTalk = true
		}
	}
	sort.Slice(view.NearbyChars, func(i, j int) bool {
		a, b := view.NearbyChars[i], view.NearbyChars[j]
		return world.DistSq(a.X, a.Y, c.X, c.Y) < world.DistSq(b.X, b.Y, c.X, c.Y)
	})

	for _, o := range s.Map.ObjectsWithin(c.Zone, c.X, c.Y, lookSight) {
		if o.Category == world.CategoryScenery {
			continue
		}
		view.NearbyObjects = append(view.NearbyObjects, NearbyObject{
			Name: o.Name, X: o.X, Y: o.Y, CanInteract: o.CanInteract,
		})
	}

	// Conversations this character took part in, most recent last.
	for _, conv := range s.conversations {
		if conv.SpeakerID == c.ID || conv.ListenerID == c.ID {
			view.RecentConvos = append(view.RecentConvos, conv)
		}
	}
	if len(view.RecentConvos) > 10 {
		view.RecentConvos = view.RecentConvos[len(view.RecentConvos)-10:]
	}

	view.TextDescription = s.describe(c, z, view)
	return view, nil
}

// approachDirections lists the moves that reduce distance to the target.
func approachDirections(fromX, fromY, toX, toY int) []string {
	var dirs []string
	if toX > fromX {
		dirs = append(dirs, string(world.East))
	} else if toX < fromX {
		dirs = append(dirs, string(world.West))
	}
	if toY > fromY {
		dirs = append(dirs, string(world.South))
	} else if toY < fromY {
		dirs = append(dirs, string(world.North))
	}
	return dirs
}

// describe composes the free-text scene description agents feed to their
// models.
func (s *Simulation) describe(c *actors.Character, z *world.Zone, view *LookView) string {
	var b strings.Builder

	phase := "It is daytime."
	if s.World.IsNight {
		phase = "It is night."
	}
	fmt.Fprintf(&b, "You are %s, standing at (%d, %d) in the %s. %s", c.Name, c.X, c.Y, z.Name, phase)
	if !z.IsSafe {
		fmt.Fprintf(&b, " This place feels dangerous.")
	}

	if len(view.NearbyObjects) > 0 {
		var names []string
		for _, o := range view.NearbyObjects {
			names = append(names, o.Name)
		}
		fmt.Fprintf(&b, " Nearby you can see: %s.", strings.Join(names, ", "))
	}
	if len(view.NearbyChars) > 0 {
		var names []string
		for _, nc := range view.NearbyChars {
			names = append(names, nc.Name)
		}
		fmt.Fprintf(&b, " Others here: %s.", strings.Join(names, ", "))
	}
	return b.String()
}

// Snapshot is the public, read-only world state.
type Snapshot struct {
	World         world.World         `json:"world"`
	Zones         []*world.Zone       `json:"zones"`
	Characters    []*actors.Character `json:"characters"`
	Objects       []*world.Object     `json:"objects"`
	Conversations []Conversation      `json:"recentConversations"`
	Activity      []ActivityEntry     `json:"recentActivity"`
}

// Snapshot returns the current public world state: active characters,
// objects, recent conversations, recent activity.
func (s *Simulation) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		World: *s.World,
	}
	for _, o := range s.Map.Objects {
		oo := *o
		snap.Objects = append(snap.Objects, &oo)
	}
	for _, z := range s.Map.Zones {
		zz := *z
		snap.Zones = append(snap.Zones, &zz)
	}
	sort.Slice(snap.Zones, func(i, j int) bool { return snap.Zones[i].Name < snap.Zones[j].Name })

	for _, c := range s.Characters {
		if c.IsActive {
			snap.Characters = append(snap.Characters, c.Clone())
		}
	}
	sort.Slice(snap.Characters, func(i, j int) bool { return snap.Characters[i].Name < snap.Characters[j].Name })

	convs := s.conversations
	if len(convs) > 50 {
		convs = convs[len(convs)-50:]
	}
	snap.Conversations = append(snap.Conversations, convs...)

	acts := s.activity
	if len(acts) > 50 {
		acts = acts[len(acts)-50:]
	}
	snap.Activity = append(snap.Activity, acts...)

	return snap
}

// MemoriesOf returns the character's recent memory stream, newest last.
func (s *Simulation) MemoriesOf(id string, limit int) []MemoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []MemoryEntry
	for _, m := range s.memories {
		if m.CharacterID == id {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
