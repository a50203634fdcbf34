package engine

import (
	"strings"
	"testing"

	"github.com/talgya/emberwood/internal/actors"
	"github.com/talgya/emberwood/internal/social"
	"github.com/talgya/emberwood/internal/world"
)

func TestMove(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 5, 5)

	res, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "north"})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !res.Success || c.X != 5 || c.Y != 4 {
		t.Errorf("after move north: (%d,%d)", c.X, c.Y)
	}
	if res.XP == nil || res.XP.Awarded != MoveXP {
		t.Errorf("move xp = %+v, want %d", res.XP, MoveXP)
	}
	if res.Zone != "meadow" || res.X == nil || *res.X != 5 || res.Y == nil || *res.Y != 4 {
		t.Errorf("move result position: %+v", res)
	}
}

func TestMoveInvalidDirection(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 5, 5)

	_, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "upward"})
	wantReason(t, err, ReasonInvalidDirection)
	if c.X != 5 || c.Y != 5 {
		t.Error("failed move changed position")
	}
}

func TestMoveOutOfBounds(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 0, 0)

	_, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "north"})
	wantReason(t, err, ReasonOutOfBounds)
	if c.X != 0 || c.Y != 0 {
		t.Error("failed move changed position")
	}
}

func TestMoveBlocked(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 5, 5)
	sim.Map.AddObject(&world.Object{
		Zone: "meadow", Name: "oak tree", X: 6, Y: 5,
		Blocking: true, Category: world.CategoryScenery,
	})

	_, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "east"})
	rej := wantReason(t, err, ReasonBlocked)
	if !strings.Contains(rej.Message, "oak tree") {
		t.Errorf("blocked message does not name the blocker: %q", rej.Message)
	}
	if c.X != 5 || c.Y != 5 {
		t.Error("blocked move changed position")
	}
}

func TestMoveZoneTransit(t *testing.T) {
	sim := newTestSim(t)
	sim.Map.AddZone(&world.Zone{Name: "darkwood", Width: 16, Height: 16, DangerLevel: 2})
	sim.Map.Connect(&world.Connection{
		FromZone: "meadow", FromX: 19, FromY: 10,
		ToZone: "darkwood", ToX: 0, ToY: 8,
	})
	c := addTestCharacter(sim, "Wren", 18, 10)

	res, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "east"})
	if err != nil {
		t.Fatalf("transit move: %v", err)
	}
	if c.Zone != "darkwood" || c.X != 0 || c.Y != 8 {
		t.Errorf("after transit: %s (%d,%d)", c.Zone, c.X, c.Y)
	}
	if !strings.Contains(res.Message, "darkwood") {
		t.Errorf("transit message: %q", res.Message)
	}
}

func TestMoveZoneTransitDisabled(t *testing.T) {
	sim := newTestSim(t)
	sim.Features.Zones = false
	sim.Map.AddZone(&world.Zone{Name: "darkwood", Width: 16, Height: 16})
	sim.Map.Connect(&world.Connection{
		FromZone: "meadow", FromX: 19, FromY: 10,
		ToZone: "darkwood", ToX: 0, ToY: 8,
	})
	c := addTestCharacter(sim, "Wren", 18, 10)

	if _, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "east"}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if c.Zone != "meadow" || c.X != 19 {
		t.Errorf("zones disabled but transit happened: %s (%d,%d)", c.Zone, c.X, c.Y)
	}
}

func TestTalkNoTargetNearby(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 5, 5)
	addTestCharacter(sim, "Moss", 15, 15) // Far outside talk radius

	_, err := sim.Submit(c.ID, Action{Kind: "talk", Message: "hello?"})
	wantReason(t, err, ReasonNoTargetNearby)
}

func TestTalkFirstMeeting(t *testing.T) {
	sim := newTestSim(t)
	a := addTestCharacter(sim, "Wren", 5, 5)
	b := addTestCharacter(sim, "Moss", 5, 6)

	res, err := sim.Submit(a.ID, Action{Kind: "talk", Message: "well met"})
	if err != nil {
		t.Fatalf("talk: %v", err)
	}
	if res.Listener != "Moss" {
		t.Errorf("listener = %q", res.Listener)
	}
	if res.XP == nil || res.XP.Awarded != social.FirstMeetingXP {
		t.Errorf("first meeting xp = %+v, want %d", res.XP, social.FirstMeetingXP)
	}

	// Both directed rows exist, with sentiment on both sides.
	ab := sim.Rels.Get(a.ID, b.ID)
	ba := sim.Rels.Get(b.ID, a.ID)
	if ab == nil || ba == nil {
		t.Fatal("directed relationship rows missing")
	}
	if ab.Sentiment != 10 || ba.Sentiment != 10 {
		t.Errorf("sentiment ab=%d ba=%d, want 10 both", ab.Sentiment, ba.Sentiment)
	}
	if ab.Interactions != 1 || ba.Interactions != 1 {
		t.Errorf("interactions ab=%d ba=%d", ab.Interactions, ba.Interactions)
	}
	if ab.RecentExchanges != 1 {
		t.Errorf("recentExchanges = %d, want 1", ab.RecentExchanges)
	}

	// Both sides remember the first meeting.
	if !hasMomentCategory(a.SignificantMoments, "first_meeting") {
		t.Error("speaker has no first_meeting moment")
	}
	if !hasMomentCategory(b.SignificantMoments, "first_meeting") {
		t.Error("listener has no first_meeting moment")
	}

	// The speaker paid the energy cost.
	if a.Energy != 100-TalkEnergyCost {
		t.Errorf("speaker energy = %d", a.Energy)
	}
	if b.Energy != 100 {
		t.Errorf("listener energy = %d, should be untouched", b.Energy)
	}
}

func TestTalkXPSchedule(t *testing.T) {
	sim := newTestSim(t)
	a := addTestCharacter(sim, "Wren", 5, 5)
	addTestCharacter(sim, "Moss", 5, 6)
	a.MaxEnergy = 1000
	a.Energy = 1000

	var awards []int64
	for i := 0; i < 12; i++ {
		readyTurn(sim, a)
		res, err := sim.Submit(a.ID, Action{Kind: "talk", Message: "chat"})
		if err != nil {
			t.Fatalf("talk %d: %v", i+1, err)
		}
		awards = append(awards, res.XP.Awarded)
	}

	// First talk pays the meeting bonus; 2-5 full; 6-10 reduced; then zero.
	want := []int64{20, 10, 10, 10, 10, 5, 5, 5, 5, 5, 0, 0}
	for i := range want {
		if awards[i] != want[i] {
			t.Errorf("talk %d awarded %d, want %d", i+1, awards[i], want[i])
		}
	}
}

func TestTalkFatigueCooldown(t *testing.T) {
	sim := newTestSim(t)
	a := addTestCharacter(sim, "Wren", 5, 5)
	b := addTestCharacter(sim, "Moss", 5, 6)
	a.MaxEnergy = 1000
	a.Energy = 1000

	for i := 0; i < social.ExchangeCeiling; i++ {
		readyTurn(sim, a)
		if _, err := sim.Submit(a.ID, Action{Kind: "talk", Message: "chat"}); err != nil {
			t.Fatalf("talk %d: %v", i+1, err)
		}
	}

	rel := sim.Rels.Get(a.ID, b.ID)
	if rel.RecentExchanges != social.ExchangeCeiling {
		t.Fatalf("recentExchanges = %d", rel.RecentExchanges)
	}
	wantCooldown := sim.CurrentTick() + social.CooldownTicks
	if rel.CooldownUntil != wantCooldown {
		t.Errorf("cooldownUntil = %d, want %d", rel.CooldownUntil, wantCooldown)
	}

	// The next attempt is rejected without consuming the turn.
	readyTurn(sim, a)
	_, err := sim.Submit(a.ID, Action{Kind: "talk", Message: "one more"})
	rej := wantReason(t, err, ReasonConversationCooldown)
	if rej.CooldownTicks != social.CooldownTicks {
		t.Errorf("cooldownTicks = %d, want %d", rej.CooldownTicks, social.CooldownTicks)
	}
	if rel.Interactions != social.ExchangeCeiling {
		t.Error("rejected talk mutated the relationship")
	}

	// After the cooldown passes, talking works again.
	sim.mu.Lock()
	sim.World.Tick += social.CooldownTicks
	sim.mu.Unlock()
	readyTurn(sim, a)
	if _, err := sim.Submit(a.ID, Action{Kind: "talk", Message: "we're back"}); err != nil {
		t.Fatalf("talk after cooldown: %v", err)
	}
}

func TestTalkInsufficientEnergy(t *testing.T) {
	sim := newTestSim(t)
	a := addTestCharacter(sim, "Wren", 5, 5)
	b := addTestCharacter(sim, "Moss", 5, 6)
	a.Energy = TalkEnergyCost - 1

	_, err := sim.Submit(a.ID, Action{Kind: "talk", Message: "hello"})
	wantReason(t, err, ReasonInsufficientEnergy)
	if sim.Rels.Get(a.ID, b.ID) != nil {
		t.Error("rejected talk created a relationship")
	}
}

func TestExamine(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 10, 10)
	sim.Map.AddObject(&world.Object{
		Zone: "meadow", Name: "signpost", X: 10, Y: 12,
		CanInteract: true, Category: world.CategoryCurio,
		Description: "A weathered signpost.",
	})

	res, err := sim.Submit(c.ID, Action{Kind: "examine", Target: "signpost"})
	if err != nil {
		t.Fatalf("examine: %v", err)
	}
	if res.Message != "A weathered signpost." {
		t.Errorf("examine message = %q", res.Message)
	}
	// Examine XP is off by default.
	if res.XP != nil {
		t.Errorf("examine granted xp: %+v", res.XP)
	}
}

func TestExamineXPFlag(t *testing.T) {
	sim := newTestSim(t)
	sim.Features.ExamineXP = true
	c := addTestCharacter(sim, "Wren", 10, 10)
	sim.Map.AddObject(&world.Object{
		Zone: "meadow", Name: "signpost", X: 10, Y: 12,
		Description: "A weathered signpost.",
	})

	res, err := sim.Submit(c.ID, Action{Kind: "examine", Target: "signpost"})
	if err != nil {
		t.Fatalf("examine: %v", err)
	}
	if res.XP == nil || res.XP.Awarded != ExamineXP {
		t.Errorf("examine xp = %+v, want %d", res.XP, ExamineXP)
	}
}

func TestExamineOutOfRange(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 0, 0)
	sim.Map.AddObject(&world.Object{
		Zone: "meadow", Name: "signpost", X: 10, Y: 10,
		Description: "Too far away.",
	})

	_, err := sim.Submit(c.ID, Action{Kind: "examine", Target: "signpost"})
	wantReason(t, err, ReasonNoTargetNearby)
}

func TestInteractRest(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 5, 5)
	c.Energy = 50
	sim.Map.AddObject(&world.Object{
		Zone: "meadow", Name: "campfire", X: 5, Y: 6,
		CanInteract: true, Category: world.CategoryRest, RestoreAmount: 25,
		InteractResult: "You warm your hands by the fire.",
	})

	res, err := sim.Submit(c.ID, Action{Kind: "interact", Target: "campfire"})
	if err != nil {
		t.Fatalf("interact: %v", err)
	}
	if c.Energy != 75 {
		t.Errorf("energy = %d, want 75", c.Energy)
	}
	if res.XP == nil || res.XP.Awarded != RestXP {
		t.Errorf("rest xp = %+v, want %d", res.XP, RestXP)
	}
	if res.Energy == nil || *res.Energy != 75 {
		t.Errorf("result energy = %v", res.Energy)
	}
}

func TestInteractCurio(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 5, 5)
	sim.Map.AddObject(&world.Object{
		Zone: "meadow", Name: "old shrine", X: 6, Y: 5,
		CanInteract: true, Category: world.CategoryCurio,
		InteractResult: "You leave a pebble at the shrine.",
	})

	res, err := sim.Submit(c.ID, Action{Kind: "interact", Target: "shrine"})
	if err != nil {
		t.Fatalf("interact: %v", err)
	}
	if res.Message != "You leave a pebble at the shrine." {
		t.Errorf("interact message = %q", res.Message)
	}
	if res.XP == nil || res.XP.Awarded != InteractXP {
		t.Errorf("interact xp = %+v, want %d", res.XP, InteractXP)
	}
}

func TestUnknownAction(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 5, 5)

	_, err := sim.Submit(c.ID, Action{Kind: "dance"})
	wantReason(t, err, ReasonUnknownAction)
}

func TestLevelUpThroughActions(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 5, 5)
	c.HP = 60
	c.XP = 99 // One XP short of level 2

	res, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "north"})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !res.XP.LeveledUp || res.XP.NewLevel != 2 {
		t.Fatalf("xp report = %+v, want level-up to 2", res.XP)
	}
	if c.Level != 2 || c.MaxHP != 110 || c.HP != 110 {
		t.Errorf("after level-up: level=%d hp=%d/%d", c.Level, c.HP, c.MaxHP)
	}
	if !hasMomentCategory(c.SignificantMoments, "level_up") {
		t.Error("level_up moment missing")
	}
}

func hasMomentCategory(moments []actors.Moment, category string) bool {
	for _, m := range moments {
		if m.Category == category {
			return true
		}
	}
	return false
}
