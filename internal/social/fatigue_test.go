package social

import "testing"

func TestOnExchangeArmsCooldownAtCeiling(t *testing.T) {
	r := &Relationship{Observer: "a", Other: "b"}
	tick := int64(100)

	for i := 0; i < ExchangeCeiling-1; i++ {
		r.OnExchange(tick)
		if r.CooldownUntil != 0 {
			t.Fatalf("cooldown armed at exchange %d", i+1)
		}
	}

	r.OnExchange(tick)
	if r.RecentExchanges != ExchangeCeiling {
		t.Fatalf("recentExchanges = %d, want %d", r.RecentExchanges, ExchangeCeiling)
	}
	if r.CooldownUntil != tick+CooldownTicks {
		t.Errorf("cooldownUntil = %d, want %d", r.CooldownUntil, tick+CooldownTicks)
	}
}

func TestCooldownRemaining(t *testing.T) {
	r := &Relationship{CooldownUntil: 130}

	if got := r.CooldownRemaining(100); got != 30 {
		t.Errorf("CooldownRemaining(100) = %d, want 30", got)
	}
	if got := r.CooldownRemaining(130); got != 0 {
		t.Errorf("CooldownRemaining(130) = %d, want 0", got)
	}
	if got := r.CooldownRemaining(200); got != 0 {
		t.Errorf("CooldownRemaining(200) = %d, want 0", got)
	}

	var nilRel *Relationship
	if got := nilRel.CooldownRemaining(100); got != 0 {
		t.Errorf("nil CooldownRemaining = %d, want 0", got)
	}
}

func TestDecay(t *testing.T) {
	r := &Relationship{RecentExchanges: 12}
	r.Decay()
	if r.RecentExchanges != 7 {
		t.Errorf("after decay: %d, want 7", r.RecentExchanges)
	}

	r.RecentExchanges = 3
	r.Decay()
	if r.RecentExchanges != 0 {
		t.Errorf("decay went below zero: %d", r.RecentExchanges)
	}

	r.RecentExchanges = 0
	r.Decay()
	if r.RecentExchanges != 0 {
		t.Errorf("decay of zero changed counter: %d", r.RecentExchanges)
	}
}

func TestTalkXPSchedule(t *testing.T) {
	cases := []struct {
		exchanges int
		want      int64
	}{
		{1, TalkXPFull},
		{5, TalkXPFull},
		{6, TalkXPReduced},
		{10, TalkXPReduced},
		{11, 0},
		{20, 0},
	}
	for _, c := range cases {
		if got := TalkXP(c.exchanges, false); got != c.want {
			t.Errorf("TalkXP(%d, false) = %d, want %d", c.exchanges, got, c.want)
		}
	}

	// First meeting pays the flat bonus regardless of the counter.
	if got := TalkXP(1, true); got != FirstMeetingXP {
		t.Errorf("TalkXP(1, true) = %d, want %d", got, FirstMeetingXP)
	}
}
