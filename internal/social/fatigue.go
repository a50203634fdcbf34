// Conversational fatigue: per ordered pair, exchanges accumulate toward a
// cooldown and talk XP diminishes, so two actors cannot grind each other
// for experience indefinitely.
package social

const (
	// ExchangeCeiling is the recent-exchange count that trips a cooldown.
	ExchangeCeiling = 15

	// CooldownTicks is how long a tripped pair must wait before talking.
	CooldownTicks = 30

	// DecayStep is subtracted from every positive exchange counter each
	// time the world clock runs fatigue decay.
	DecayStep = 5

	// Talk XP schedule, keyed on the exchange count after increment.
	fullXPExchanges    = 5
	reducedXPExchanges = 10

	TalkXPFull     = 10
	TalkXPReduced  = 5
	FirstMeetingXP = 20
)

// OnExchange records one successful talk on the directed relationship:
// increments the exchange counter and, when it reaches the ceiling, arms
// a forward-looking cooldown.
func (r *Relationship) OnExchange(tick int64) {
	r.RecentExchanges++
	if r.RecentExchanges >= ExchangeCeiling {
		r.CooldownUntil = tick + CooldownTicks
	}
}

// CooldownRemaining returns how many ticks remain before this pair may
// talk again; zero when no cooldown is active.
func (r *Relationship) CooldownRemaining(tick int64) int64 {
	if r == nil || r.CooldownUntil <= tick {
		return 0
	}
	return r.CooldownUntil - tick
}

// Decay reduces a positive exchange counter by DecayStep, never below
// zero. Runs independently of any active cooldown.
func (r *Relationship) Decay() {
	if r.RecentExchanges <= 0 {
		return
	}
	r.RecentExchanges -= DecayStep
	if r.RecentExchanges < 0 {
		r.RecentExchanges = 0
	}
}

// TalkXP returns the XP for a talk given the post-increment exchange
// count. A first-ever meeting pays the flat bonus regardless of the
// diminishing schedule.
func TalkXP(recentExchanges int, firstMeeting bool) int64 {
	if firstMeeting {
		return FirstMeetingXP
	}
	switch {
	case recentExchanges <= fullXPExchanges:
		return TalkXPFull
	case recentExchanges <= reducedXPExchanges:
		return TalkXPReduced
	default:
		return 0
	}
}
