// Package actors holds the character model: identity, permanent traits,
// position, vitals, progression, and the life-story recorder.
package actors

// Character is one actor in the world. Identity and the permanent traits
// are set once at registration and never mutated afterward; everything
// else evolves under the action processor and the world clock.
type Character struct {
	ID    string `json:"id"`
	Token string `json:"-"` // Bearer credential; never serialized

	Name  string `json:"name"`
	Emoji string `json:"emoji"`

	// Permanent traits, fixed at creation.
	Personality string   `json:"personality"`
	OriginStory string   `json:"origin_story"`
	Traits      []string `json:"traits"`

	// Evolving narrative state.
	LifeStory          string   `json:"life_story"`
	SignificantMoments []Moment `json:"significant_moments"`

	// Position.
	Zone string `json:"zone"`
	X    int    `json:"x"`
	Y    int    `json:"y"`

	// Vitals, clamped to [0, max].
	HP        int `json:"hp"`
	MaxHP     int `json:"max_hp"`
	Energy    int `json:"energy"`
	MaxEnergy int `json:"max_energy"`

	// Progression.
	XP    int64 `json:"xp"`
	Level int   `json:"level"`

	// Activity control.
	TurnInterval   int64 `json:"turn_interval"`
	LastActionTick int64 `json:"last_action_tick"`
	IsActive       bool  `json:"is_active"`

	CreatedTick int64 `json:"created_tick"`
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (c *Character) Clone() *Character {
	dup := *c
	dup.Traits = append([]string(nil), c.Traits...)
	dup.SignificantMoments = append([]Moment(nil), c.SignificantMoments...)
	return &dup
}

// RestoreEnergy adds amount, clamped to MaxEnergy. Returns how much was
// actually restored.
func (c *Character) RestoreEnergy(amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := c.Energy
	c.Energy += amount
	if c.Energy > c.MaxEnergy {
		c.Energy = c.MaxEnergy
	}
	return c.Energy - before
}

// SpendEnergy deducts cost if the character can afford it.
func (c *Character) SpendEnergy(cost int) bool {
	if c.Energy < cost {
		return false
	}
	c.Energy -= cost
	return true
}

// Heal adds amount to HP, clamped to MaxHP.
func (c *Character) Heal(amount int) {
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
	if c.HP < 0 {
		c.HP = 0
	}
}
