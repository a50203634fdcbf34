package engine

import "testing"

func TestTurnGateBlocksUntilInterval(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 5, 5)
	c.TurnInterval = 3
	c.LastActionTick = -3

	if _, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "north"}); err != nil {
		t.Fatalf("first move: %v", err)
	}

	// Same tick: the turn is consumed.
	_, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "north"})
	rej := wantReason(t, err, ReasonNotYourTurn)
	if rej.RequiredInterval != 3 {
		t.Errorf("requiredInterval = %d, want 3", rej.RequiredInterval)
	}
	if rej.TicksRemaining != 3 {
		t.Errorf("ticksRemaining = %d, want 3", rej.TicksRemaining)
	}

	// Two ticks later: still gated.
	sim.AdvanceTick()
	sim.AdvanceTick()
	_, err = sim.Submit(c.ID, Action{Kind: "move", Direction: "north"})
	rej = wantReason(t, err, ReasonNotYourTurn)
	if rej.TicksRemaining != 1 {
		t.Errorf("ticksRemaining = %d, want 1", rej.TicksRemaining)
	}

	// Third tick: the gate opens.
	sim.AdvanceTick()
	if _, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "north"}); err != nil {
		t.Fatalf("move after interval: %v", err)
	}
}

func TestFailedActionDoesNotConsumeTurn(t *testing.T) {
	sim := newTestSim(t)
	c := addTestCharacter(sim, "Wren", 0, 0)

	// Out-of-bounds move fails validation.
	if _, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "north"}); err == nil {
		t.Fatal("expected out-of-bounds rejection")
	}

	// The turn survives: a valid move at the same tick succeeds.
	if _, err := sim.Submit(c.ID, Action{Kind: "move", Direction: "south"}); err != nil {
		t.Fatalf("move after failed attempt: %v", err)
	}
}

func TestSubmitUnknownCharacter(t *testing.T) {
	sim := newTestSim(t)
	_, err := sim.Submit("nobody", Action{Kind: "move", Direction: "north"})
	wantReason(t, err, ReasonInvalidCharacter)
}
