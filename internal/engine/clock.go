// World clock: advances the tick counter on a fixed wall-clock period and
// runs the periodic maintenance steps. Each maintenance step is isolated;
// a failure in one is logged and never blocks tick advancement or the
// other steps.
package engine

import (
	"log/slog"
	"time"
)

// DefaultTickInterval is the wall-clock period between ticks.
const DefaultTickInterval = 5 * time.Second

// Clock drives the simulation's tick loop.
type Clock struct {
	Interval time.Duration

	sim  *Simulation
	stop chan struct{}
	done chan struct{}
}

// NewClock creates a clock over the simulation. A non-positive interval
// falls back to the default.
func NewClock(sim *Simulation, interval time.Duration) *Clock {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Clock{
		Interval: interval,
		sim:      sim,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run advances ticks until Stop is called. Blocks; run it in a goroutine.
func (c *Clock) Run() {
	defer close(c.done)
	slog.Info("world clock started", "interval", c.Interval, "tick", c.sim.CurrentTick())

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			slog.Info("world clock stopped", "tick", c.sim.CurrentTick())
			return
		case <-ticker.C:
			c.sim.AdvanceTick()
		}
	}
}

// Stop halts the clock and waits for the loop to exit.
func (c *Clock) Stop() {
	close(c.stop)
	<-c.done
}

// AdvanceTick increments the tick counter, recomputes day/night, and runs
// the scheduled maintenance steps.
func (s *Simulation) AdvanceTick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.World.Tick++
	tick := s.World.Tick

	s.runStep(tick, "day_night", s.stepDayNight)
	s.publish("tick", map[string]any{"tick": tick, "is_night": s.World.IsNight})

	if tick%EnergyRegenEvery == 0 {
		s.runStep(tick, "energy_regen", s.stepEnergyRegen)
	}
	if tick%FatigueDecayEvery == 0 {
		s.runStep(tick, "fatigue_decay", s.stepFatigueDecay)
	}
	if tick%AmbientEventEvery == 0 {
		s.runStep(tick, "ambient_event", s.stepAmbientEvent)
	}
	return tick
}

// runStep executes one maintenance step, containing panics so the rest of
// the tick proceeds.
func (s *Simulation) runStep(tick int64, name string, fn func(tick int64)) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("maintenance step failed", "step", name, "tick", tick, "panic", r)
		}
	}()
	fn(tick)
}

// stepDayNight recomputes the phase and broadcasts transitions.
func (s *Simulation) stepDayNight(tick int64) {
	night := s.World.NightAt(tick)
	if night == s.World.IsNight {
		return
	}
	s.World.IsNight = night

	phase := "day"
	summary := "the sun rises over the world"
	if night {
		phase = "night"
		summary = "night falls across the world"
	}
	s.logActivity(tick, "", summary)
	s.publish("day_night", map[string]any{"phase": phase, "tick": tick})
	slog.Info("phase transition", "phase", phase, "tick", tick)
}

// stepEnergyRegen restores energy to actors idle at least IdleRegenTicks.
func (s *Simulation) stepEnergyRegen(tick int64) {
	if !s.Features.Energy {
		return
	}
	for _, c := range s.Characters {
		if !c.IsActive {
			continue
		}
		if tick-c.LastActionTick < IdleRegenTicks {
			continue
		}
		c.RestoreEnergy(EnergyRegenAmount)
	}
}

// stepFatigueDecay walks every relationship row and decays positive
// exchange counters, independent of cooldown state.
func (s *Simulation) stepFatigueDecay(tick int64) {
	if !s.Features.Fatigue {
		return
	}
	for _, r := range s.Rels.All() {
		r.Decay()
	}
}

// stepAmbientEvent emits one randomly chosen flavor event from the pool
// for the current phase.
func (s *Simulation) stepAmbientEvent(tick int64) {
	text := s.pickAmbient()
	if text == "" {
		return
	}
	s.logActivity(tick, "", text)
	s.publish("event", map[string]any{"text": text, "tick": tick})
	slog.Debug("ambient event", "tick", tick, "text", text)
}
