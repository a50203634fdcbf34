// Typed action rejections. Every rejection is recoverable at the caller
// and none of them mutate state: validation always precedes mutation.
package engine

// Reason is the machine-readable rejection code returned to agents.
type Reason string

const (
	ReasonNotYourTurn          Reason = "not_your_turn"
	ReasonInvalidDirection     Reason = "invalid_direction"
	ReasonOutOfBounds          Reason = "out_of_bounds"
	ReasonBlocked              Reason = "blocked"
	ReasonNoTargetNearby       Reason = "no_target_nearby"
	ReasonInsufficientEnergy   Reason = "insufficient_energy"
	ReasonConversationCooldown Reason = "conversation_cooldown"
	ReasonInvalidCharacter     Reason = "invalid_character_or_token"
	ReasonDuplicateName        Reason = "duplicate_name"
	ReasonUnknownAction        Reason = "unknown_action"
)

// Reject is the error type for all action-layer failures.
type Reject struct {
	Reason  Reason `json:"reason"`
	Message string `json:"error"`

	// Populated per reason.
	RequiredInterval int64 `json:"required_interval,omitempty"` // not_your_turn
	TicksRemaining   int64 `json:"ticks_remaining,omitempty"`   // not_your_turn
	CooldownTicks    int64 `json:"cooldown_ticks,omitempty"`    // conversation_cooldown
}

func (e *Reject) Error() string { return e.Message }

func reject(reason Reason, msg string) *Reject {
	return &Reject{Reason: reason, Message: msg}
}
