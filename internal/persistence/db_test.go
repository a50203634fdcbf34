package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/emberwood/internal/actors"
	"github.com/talgya/emberwood/internal/engine"
	"github.com/talgya/emberwood/internal/social"
	"github.com/talgya/emberwood/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleState() *engine.State {
	return &engine.State{
		World: world.World{Tick: 123, IsNight: true, DayLength: 100, NightLength: 50},
		Zones: []*world.Zone{
			{Name: "meadow", Width: 20, Height: 20, IsSafe: true},
			{Name: "darkwood", Width: 16, Height: 16, DangerLevel: 2},
		},
		Connections: []*world.Connection{
			{FromZone: "meadow", FromX: 19, FromY: 10, ToZone: "darkwood", ToX: 0, ToY: 8},
		},
		Objects: []*world.Object{
			{ID: 1, Zone: "meadow", Name: "campfire", X: 5, Y: 5,
				CanInteract: true, Category: world.CategoryRest, RestoreAmount: 25,
				Description: "A crackling campfire.", InteractResult: "You warm your hands."},
		},
		Characters: []*actors.Character{
			{
				ID: "c1", Token: "t1", Name: "Wren", Emoji: "🦜",
				Personality: "curious", OriginStory: "hatched in a storm",
				Traits:    []string{"brave", "loud"},
				LifeStory: "Wren arrived.",
				SignificantMoments: []actors.Moment{
					{Tick: 1, Category: "arrival", Text: "Wren arrived in the meadow."},
				},
				Zone: "meadow", X: 5, Y: 4,
				HP: 110, MaxHP: 110, Energy: 80, MaxEnergy: 100,
				XP: 120, Level: 2,
				TurnInterval: 3, LastActionTick: 120, IsActive: true, CreatedTick: 1,
			},
		},
		Relationships: []*social.Relationship{
			{
				Observer: "c1", Other: "c2", Sentiment: 12, Interactions: 4,
				FirstMetTick: 10, LastTick: 100, RecentExchanges: 4, CooldownUntil: 0,
				Summaries: []social.Summary{{Tick: 100, Text: `Wren: "hello"`}},
			},
		},
		Activity: []engine.ActivityEntry{
			{Seq: 1, Tick: 10, CharacterID: "c1", Summary: "Wren moved north"},
			{Seq: 2, Tick: 11, Summary: "night falls across the world"},
		},
		Conversations: []engine.Conversation{
			{Seq: 3, Tick: 100, SpeakerID: "c1", SpeakerName: "Wren",
				ListenerID: "c2", ListenerName: "Moss", Message: "hello"},
		},
		Memories: []engine.MemoryEntry{
			{Seq: 4, Tick: 100, CharacterID: "c1", Text: `I said to Moss: "hello"`},
		},
		MaxSeq: 4,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if db.HasWorldState() {
		t.Fatal("fresh database claims saved state")
	}
	if err := db.SaveState(sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !db.HasWorldState() {
		t.Fatal("saved state not detected")
	}

	st, err := db.LoadState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if st.World.Tick != 123 || !st.World.IsNight || st.World.DayLength != 100 {
		t.Errorf("world = %+v", st.World)
	}
	if st.MaxSeq != 4 {
		t.Errorf("maxSeq = %d", st.MaxSeq)
	}
	if len(st.Zones) != 2 || len(st.Connections) != 1 || len(st.Objects) != 1 {
		t.Fatalf("map rows: zones=%d conns=%d objects=%d",
			len(st.Zones), len(st.Connections), len(st.Objects))
	}

	if len(st.Characters) != 1 {
		t.Fatalf("characters = %d", len(st.Characters))
	}
	c := st.Characters[0]
	if c.Name != "Wren" || c.Token != "t1" || c.Level != 2 || c.XP != 120 {
		t.Errorf("character = %+v", c)
	}
	if len(c.Traits) != 2 || c.Traits[1] != "loud" {
		t.Errorf("traits = %v", c.Traits)
	}
	if len(c.SignificantMoments) != 1 || c.SignificantMoments[0].Category != "arrival" {
		t.Errorf("moments = %+v", c.SignificantMoments)
	}

	if len(st.Relationships) != 1 {
		t.Fatalf("relationships = %d", len(st.Relationships))
	}
	r := st.Relationships[0]
	if r.Observer != "c1" || r.Sentiment != 12 || r.RecentExchanges != 4 {
		t.Errorf("relationship = %+v", r)
	}
	if len(r.Summaries) != 1 || r.Summaries[0].Tick != 100 {
		t.Errorf("summaries = %+v", r.Summaries)
	}
}

func TestSaveIsIdempotentAboveHighWater(t *testing.T) {
	db := openTestDB(t)

	st := sampleState()
	if err := db.SaveState(st); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Saving the same export again must not duplicate append rows.
	if err := db.SaveState(st); err != nil {
		t.Fatalf("second save: %v", err)
	}

	rows, err := db.RecentActivity(10)
	if err != nil {
		t.Fatalf("recent activity: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("activity rows = %d, want 2", len(rows))
	}
	if db.LastSavedSeq() != 4 {
		t.Errorf("lastSavedSeq = %d, want 4", db.LastSavedSeq())
	}
}

func TestRecentActivityOrder(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveState(sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}

	rows, err := db.RecentActivity(10)
	if err != nil {
		t.Fatalf("recent activity: %v", err)
	}
	if len(rows) != 2 || rows[0].Seq != 1 || rows[1].Seq != 2 {
		t.Errorf("rows = %+v, want oldest first", rows)
	}

	one, err := db.RecentActivity(1)
	if err != nil {
		t.Fatalf("recent activity: %v", err)
	}
	if len(one) != 1 || one[0].Seq != 2 {
		t.Errorf("limit 1 returned %+v, want the newest row", one)
	}
}

func TestMemoriesFor(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveState(sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}

	rows, err := db.MemoriesFor("c1", 10)
	if err != nil {
		t.Fatalf("memories: %v", err)
	}
	if len(rows) != 1 || rows[0].CharacterID != "c1" {
		t.Errorf("memories = %+v", rows)
	}

	none, err := db.MemoriesFor("c2", 10)
	if err != nil {
		t.Fatalf("memories: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("unexpected memories for c2: %+v", none)
	}
}

func TestWipeKeepsMapAndTick(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveState(sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := db.Wipe(); err != nil {
		t.Fatalf("wipe: %v", err)
	}

	st, err := db.LoadState()
	if err != nil {
		t.Fatalf("load after wipe: %v", err)
	}
	if len(st.Characters) != 0 || len(st.Relationships) != 0 {
		t.Error("wipe left characters or relationships")
	}
	if st.World.Tick != 123 || len(st.Zones) != 2 {
		t.Error("wipe removed the world or the map")
	}

	rows, _ := db.RecentActivity(10)
	if len(rows) != 0 {
		t.Errorf("wipe left %d activity rows", len(rows))
	}
}
