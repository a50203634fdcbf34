package actors

import "testing"

func TestXPForLevel(t *testing.T) {
	cases := []struct {
		level int
		want  int64
	}{
		{1, 100},
		{2, 150},
		{3, 225},
		{4, 337},
		{5, 506},
	}
	for _, c := range cases {
		if got := XPForLevel(c.level); got != c.want {
			t.Errorf("XPForLevel(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestXPForLevelMonotonic(t *testing.T) {
	prev := int64(0)
	for lvl := 1; lvl <= 30; lvl++ {
		cost := XPForLevel(lvl)
		if cost <= prev {
			t.Fatalf("XPForLevel(%d) = %d, not greater than previous %d", lvl, cost, prev)
		}
		prev = cost
	}
}

func TestLevelFromXP(t *testing.T) {
	if p := LevelFromXP(0); p.Level != 1 || p.CurrentLevelXP != 0 || p.XPToNext != 100 {
		t.Errorf("LevelFromXP(0) = %+v", p)
	}
	if p := LevelFromXP(99); p.Level != 1 {
		t.Errorf("LevelFromXP(99).Level = %d, want 1", p.Level)
	}
	if p := LevelFromXP(100); p.Level != 2 || p.CurrentLevelXP != 0 {
		t.Errorf("LevelFromXP(100) = %+v, want level 2 with 0 progress", p)
	}

	// Exactly the cost of levels 1 and 2 lands on level 3 with nothing
	// carried over.
	total := XPForLevel(1) + XPForLevel(2)
	if p := LevelFromXP(total); p.Level != 3 || p.CurrentLevelXP != 0 {
		t.Errorf("LevelFromXP(%d) = %+v, want level 3 with 0 progress", total, p)
	}
}

func TestMaxHPForLevel(t *testing.T) {
	if got := MaxHPForLevel(1); got != 100 {
		t.Errorf("MaxHPForLevel(1) = %d, want 100", got)
	}
	if got := MaxHPForLevel(5); got != 140 {
		t.Errorf("MaxHPForLevel(5) = %d, want 140", got)
	}
}

func TestAwardXPLevelUpHeals(t *testing.T) {
	c := &Character{Level: 1, HP: 40, MaxHP: 100, XP: 0}

	newLevel, leveledUp := AwardXP(c, 50)
	if leveledUp || newLevel != 1 {
		t.Fatalf("award below threshold leveled up: level=%d leveledUp=%v", newLevel, leveledUp)
	}
	if c.HP != 40 {
		t.Errorf("HP changed without level-up: %d", c.HP)
	}

	newLevel, leveledUp = AwardXP(c, 50)
	if !leveledUp || newLevel != 2 {
		t.Fatalf("expected level-up to 2, got level=%d leveledUp=%v", newLevel, leveledUp)
	}
	if c.MaxHP != 110 {
		t.Errorf("MaxHP after level 2 = %d, want 110", c.MaxHP)
	}
	if c.HP != c.MaxHP {
		t.Errorf("level-up did not fully heal: hp=%d max=%d", c.HP, c.MaxHP)
	}
}

func TestHealClamps(t *testing.T) {
	c := &Character{HP: 50, MaxHP: 110}

	c.Heal(20)
	if c.HP != 70 {
		t.Errorf("HP after +20 = %d, want 70", c.HP)
	}
	c.Heal(200)
	if c.HP != 110 {
		t.Errorf("HP over-healed to %d, want clamp at %d", c.HP, c.MaxHP)
	}
	c.Heal(-500)
	if c.HP != 0 {
		t.Errorf("HP after damage = %d, want floor 0", c.HP)
	}
}

func TestAwardXPMultiLevel(t *testing.T) {
	c := &Character{Level: 1, HP: 100, MaxHP: 100}

	// Enough XP for two level-ups at once.
	newLevel, leveledUp := AwardXP(c, XPForLevel(1)+XPForLevel(2))
	if !leveledUp || newLevel != 3 {
		t.Fatalf("expected level 3, got level=%d leveledUp=%v", newLevel, leveledUp)
	}
	if c.Level != 3 || c.MaxHP != 120 {
		t.Errorf("after multi-level: level=%d maxHP=%d", c.Level, c.MaxHP)
	}
}
