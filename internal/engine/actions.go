// Action processor: validates and executes one of move/talk/examine/
// interact against current world state. Validation strictly precedes
// mutation; every action is all-or-nothing.
package engine

import (
	"fmt"

	"github.com/talgya/emberwood/internal/actors"
	"github.com/talgya/emberwood/internal/social"
	"github.com/talgya/emberwood/internal/world"
)

// Action is one submitted action.
type Action struct {
	Kind      string `json:"action"`
	Direction string `json:"direction,omitempty"`
	Target    string `json:"target,omitempty"`
	Message   string `json:"message,omitempty"`
}

// XPReport describes an XP award, in the wire shape agents consume.
type XPReport struct {
	Awarded   int64 `json:"awarded"`
	Total     int64 `json:"total"`
	NewLevel  int   `json:"newLevel"`
	LeveledUp bool  `json:"leveledUp"`
}

// Result is a successful action outcome.
type Result struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	XP      *XPReport `json:"xp,omitempty"`

	// Populated per action kind.
	Zone     string `json:"zone,omitempty"`
	X        *int   `json:"x,omitempty"`
	Y        *int   `json:"y,omitempty"`
	Listener string `json:"listener,omitempty"`
	Energy   *int   `json:"energy,omitempty"`
}

// Submit runs one action for the character through the turn gate and the
// action dispatcher. The gate check, the action effects, and the gate
// stamp commit under one lock acquisition.
func (s *Simulation) Submit(id string, act Action) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.Characters[id]
	if !ok || !c.IsActive {
		return nil, reject(ReasonInvalidCharacter, "invalid character or token")
	}

	tick := s.World.Tick
	if !canAct(c, tick) {
		return nil, rejectNotYourTurn(c, tick)
	}

	var res *Result
	var err error
	switch act.Kind {
	case "move":
		res, err = s.doMove(c, tick, act.Direction)
	case "talk":
		res, err = s.doTalk(c, tick, act.Message)
	case "examine":
		res, err = s.doExamine(c, tick, act.Target)
	case "interact":
		res, err = s.doInteract(c, tick, act.Target)
	default:
		err = reject(ReasonUnknownAction, fmt.Sprintf("unknown action %q", act.Kind))
	}
	if err != nil {
		return nil, err
	}

	// Turn gate companion stamp: only committed actions consume the turn.
	c.LastActionTick = tick
	return res, nil
}

// grantXP awards XP and handles the level-up side effects: full heal,
// significant moment, activity entry, level_up broadcast.
func (s *Simulation) grantXP(c *actors.Character, tick, amount int64) *XPReport {
	newLevel, up := actors.AwardXP(c, amount)
	if up {
		actors.RecordMoment(c, tick, "level_up", fmt.Sprintf("%s reached level %d.", c.Name, newLevel))
		s.logActivity(tick, c.ID, fmt.Sprintf("%s reached level %d", c.Name, newLevel))
		s.publish("level_up", map[string]any{
			"id": c.ID, "name": c.Name, "level": newLevel, "tick": tick,
		})
	}
	return &XPReport{Awarded: amount, Total: c.XP, NewLevel: newLevel, LeveledUp: up}
}

func (s *Simulation) doMove(c *actors.Character, tick int64, direction string) (*Result, error) {
	dx, dy, ok := world.Offset(world.Direction(direction))
	if !ok {
		return nil, reject(ReasonInvalidDirection, fmt.Sprintf("invalid direction %q", direction))
	}

	z := s.Map.Zone(c.Zone)
	tx, ty := c.X+dx, c.Y+dy
	if !z.InBounds(tx, ty) {
		return nil, reject(ReasonOutOfBounds, "you cannot leave the zone that way")
	}
	if blocker := s.Map.BlockingAt(c.Zone, tx, ty); blocker != nil {
		return nil, reject(ReasonBlocked, fmt.Sprintf("the way is blocked by a %s", blocker.Name))
	}

	// Stepping onto a connection tile transits to the linked zone.
	msg := fmt.Sprintf("you move %s", direction)
	if s.Features.Zones {
		if conn := s.Map.ConnectionAt(c.Zone, tx, ty); conn != nil {
			c.Zone = conn.ToZone
			c.X, c.Y = conn.ToX, conn.ToY
			msg = fmt.Sprintf("you follow the path into the %s", conn.ToZone)
			s.logActivity(tick, c.ID, fmt.Sprintf("%s crossed into the %s", c.Name, conn.ToZone))
			xp := s.grantXP(c, tick, MoveXP)
			s.publish("move", map[string]any{
				"id": c.ID, "name": c.Name, "zone": c.Zone, "x": c.X, "y": c.Y, "tick": tick,
			})
			return moveResult(c, msg, xp), nil
		}
	}

	c.X, c.Y = tx, ty
	s.logActivity(tick, c.ID, fmt.Sprintf("%s moved %s", c.Name, direction))
	xp := s.grantXP(c, tick, MoveXP)
	s.publish("move", map[string]any{
		"id": c.ID, "name": c.Name, "zone": c.Zone, "x": c.X, "y": c.Y, "tick": tick,
	})
	return moveResult(c, msg, xp), nil
}

func moveResult(c *actors.Character, msg string, xp *XPReport) *Result {
	x, y := c.X, c.Y
	return &Result{Success: true, Message: msg, XP: xp, Zone: c.Zone, X: &x, Y: &y}
}

func (s *Simulation) doTalk(c *actors.Character, tick int64, message string) (*Result, error) {
	listener := s.nearestCharacter(c, TalkRadius)
	if listener == nil {
		return nil, reject(ReasonNoTargetNearby, "there is nobody close enough to talk to")
	}

	if s.Features.Energy && c.Energy < TalkEnergyCost {
		return nil, reject(ReasonInsufficientEnergy,
			fmt.Sprintf("talking costs %d energy and you have %d", TalkEnergyCost, c.Energy))
	}

	existing := s.Rels.Get(c.ID, listener.ID)
	if s.Features.Fatigue {
		if remaining := existing.CooldownRemaining(tick); remaining > 0 {
			return nil, &Reject{
				Reason:        ReasonConversationCooldown,
				Message:       fmt.Sprintf("you and %s need a break: %d tick(s) of cooldown remain", listener.Name, remaining),
				CooldownTicks: remaining,
			}
		}
	}

	// Validation done — commit.
	if s.Features.Energy {
		c.SpendEnergy(TalkEnergyCost)
	}

	rel, firstMeeting := s.Rels.GetOrCreate(c.ID, listener.ID, tick)
	back, _ := s.Rels.GetOrCreate(listener.ID, c.ID, tick)

	if s.Features.Fatigue {
		rel.OnExchange(tick)
	} else {
		rel.RecentExchanges++
	}
	rel.Interactions++
	rel.LastTick = tick
	back.Interactions++
	back.LastTick = tick

	summary := fmt.Sprintf("%s: %q", c.Name, message)
	rel.AddSummary(tick, summary)
	back.AddSummary(tick, summary)

	var xpAmount int64
	if firstMeeting {
		rel.AddSentiment(sentimentFirstMeeting)
		back.AddSentiment(sentimentFirstMeeting)
		xpAmount = social.FirstMeetingXP
		actors.RecordMoment(c, tick, "first_meeting", fmt.Sprintf("%s met %s for the first time.", c.Name, listener.Name))
		actors.RecordMoment(listener, tick, "first_meeting", fmt.Sprintf("%s met %s for the first time.", listener.Name, c.Name))
	} else {
		rel.AddSentiment(sentimentPerTalk)
		back.AddSentiment(sentimentPerTalk)
		if s.Features.Fatigue {
			xpAmount = social.TalkXP(rel.RecentExchanges, false)
		} else {
			xpAmount = social.TalkXPFull
		}
	}

	s.logConversation(tick, c, listener, message)
	s.logMemory(tick, c.ID, fmt.Sprintf("I said to %s: %q", listener.Name, message))
	s.logMemory(tick, listener.ID, fmt.Sprintf("%s said to me: %q", c.Name, message))
	s.logActivity(tick, c.ID, fmt.Sprintf("%s spoke with %s", c.Name, listener.Name))

	xp := s.grantXP(c, tick, xpAmount)
	s.publish("talk", map[string]any{
		"speaker": c.Name, "speaker_id": c.ID,
		"listener": listener.Name, "listener_id": listener.ID,
		"message": message, "tick": tick,
	})

	energy := c.Energy
	return &Result{
		Success:  true,
		Message:  fmt.Sprintf("you say to %s: %q", listener.Name, message),
		XP:       xp,
		Listener: listener.Name,
		Energy:   &energy,
	}, nil
}

func (s *Simulation) doExamine(c *actors.Character, tick int64, target string) (*Result, error) {
	obj := s.Map.FindObject(c.Zone, c.X, c.Y, ExamineRadius, target)
	if obj == nil {
		return nil, reject(ReasonNoTargetNearby, "there is nothing like that nearby")
	}

	s.logActivity(tick, c.ID, fmt.Sprintf("%s examined the %s", c.Name, obj.Name))

	// The two historical server variants disagree on examine XP; the
	// behavior is a feature flag.
	var xp *XPReport
	if s.Features.ExamineXP {
		xp = s.grantXP(c, tick, ExamineXP)
	}
	return &Result{Success: true, Message: obj.Description, XP: xp}, nil
}

func (s *Simulation) doInteract(c *actors.Character, tick int64, target string) (*Result, error) {
	obj := s.nearestInteractable(c, target)
	if obj == nil {
		return nil, reject(ReasonNoTargetNearby, "there is nothing like that to interact with nearby")
	}

	if obj.Category == world.CategoryRest {
		restored := 0
		if s.Features.Energy {
			restored = c.RestoreEnergy(obj.RestoreAmount)
		}
		s.logActivity(tick, c.ID, fmt.Sprintf("%s rested at the %s", c.Name, obj.Name))
		xp := s.grantXP(c, tick, RestXP)
		s.publish("rest", map[string]any{
			"id": c.ID, "name": c.Name, "object": obj.Name, "restored": restored, "tick": tick,
		})
		energy := c.Energy
		return &Result{
			Success: true,
			Message: fmt.Sprintf("%s You feel rested (+%d energy).", obj.InteractResult, restored),
			XP:      xp,
			Energy:  &energy,
		}, nil
	}

	s.logActivity(tick, c.ID, fmt.Sprintf("%s interacted with the %s", c.Name, obj.Name))
	xp := s.grantXP(c, tick, InteractXP)
	s.publish("interact", map[string]any{
		"id": c.ID, "name": c.Name, "object": obj.Name, "tick": tick,
	})
	return &Result{Success: true, Message: obj.InteractResult, XP: xp}, nil
}

// nearestCharacter returns the closest other active character within the
// Euclidean radius, or nil. Ties resolve to the nearer candidate found
// first.
func (s *Simulation) nearestCharacter(c *actors.Character, radius int) *actors.Character {
	var best *actors.Character
	bestDist := radius*radius + 1
	for _, other := range s.Characters {
		if other.ID == c.ID || !other.IsActive || other.Zone != c.Zone {
			continue
		}
		d := world.DistSq(other.X, other.Y, c.X, c.Y)
		if d < bestDist {
			best = other
			bestDist = d
		}
	}
	return best
}

// nearestInteractable returns the closest interactable object matching the
// target within InteractRadius, or nil.
func (s *Simulation) nearestInteractable(c *actors.Character, target string) *world.Object {
	var best *world.Object
	bestDist := InteractRadius*InteractRadius + 1
	for _, o := range s.Map.ObjectsWithin(c.Zone, c.X, c.Y, InteractRadius) {
		if !o.CanInteract || !o.NameMatches(target) {
			continue
		}
		d := world.DistSq(o.X, o.Y, c.X, c.Y)
		if d < bestDist {
			best = o
			bestDist = d
		}
	}
	return best
}
