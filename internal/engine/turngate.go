// Turn gate: the per-actor pacing rule. Evaluated lazily at each
// submission; there is no per-actor scheduler.
package engine

import (
	"fmt"

	"github.com/talgya/emberwood/internal/actors"
)

// canAct reports whether the actor's turn interval has elapsed since its
// last accepted action.
func canAct(c *actors.Character, tick int64) bool {
	return tick-c.LastActionTick >= c.TurnInterval
}

// ticksUntilTurn returns how many ticks remain before the actor may act.
func ticksUntilTurn(c *actors.Character, tick int64) int64 {
	remaining := c.TurnInterval - (tick - c.LastActionTick)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// rejectNotYourTurn builds the turn-gate rejection with the interval and
// the ticks remaining.
func rejectNotYourTurn(c *actors.Character, tick int64) *Reject {
	remaining := ticksUntilTurn(c, tick)
	return &Reject{
		Reason:           ReasonNotYourTurn,
		Message:          fmt.Sprintf("not your turn yet: %d tick(s) remaining (interval %d)", remaining, c.TurnInterval),
		RequiredInterval: c.TurnInterval,
		TicksRemaining:   remaining,
	}
}
