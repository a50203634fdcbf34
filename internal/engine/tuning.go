package engine

// Action costs, ranges, and XP awards.
const (
	MoveXP     = 1
	ExamineXP  = 2
	RestXP     = 3
	InteractXP = 5

	TalkEnergyCost = 5

	TalkRadius     = 2
	InteractRadius = 2
	ExamineRadius  = 3
)

// World clock maintenance cadence, in ticks.
const (
	EnergyRegenEvery  = 10
	EnergyRegenAmount = 10
	IdleRegenTicks    = 20 // Only actors idle at least this long regenerate

	FatigueDecayEvery = 50
	AmbientEventEvery = 100
)

// Sentiment movement per conversation.
const (
	sentimentFirstMeeting = 10
	sentimentPerTalk      = 2
)

// Features is the capability set of a running server. The two historical
// server variants are expressed as flag combinations rather than forked
// code paths.
type Features struct {
	Zones     bool // Multiple zones and zone connections
	Energy    bool // Talk costs energy; idle actors regenerate
	Fatigue   bool // Conversation cooldowns and diminishing talk XP
	ExamineXP bool // Examine grants a small XP award
}

// DefaultFeatures is the richer variant: zones, energy, and fatigue on,
// examine XP off.
func DefaultFeatures() Features {
	return Features{Zones: true, Energy: true, Fatigue: true}
}
