// Ambient flavor events, picked uniformly from per-phase pools.
package engine

var dayAmbient = []string{
	"A warm breeze carries the smell of wildflowers across the meadow.",
	"Birdsong fills the air.",
	"Clouds drift lazily overhead.",
	"A rabbit darts across the grass and vanishes into the hedgerow.",
	"Somewhere far off, a church bell rings.",
	"Sunlight glitters on the pond.",
	"A merchant's cart rattles along a distant road.",
}

var nightAmbient = []string{
	"An owl hoots somewhere in the darkwood.",
	"The stars are sharp and cold tonight.",
	"Fireflies drift over the meadow.",
	"A branch snaps in the darkness.",
	"Mist gathers low over the grass.",
	"The campfire pops and sends sparks into the night.",
	"A wolf howls, far away.",
}

// pickAmbient selects one flavor line for the current phase.
func (s *Simulation) pickAmbient() string {
	if s.World.IsNight {
		return s.rng.Pick(nightAmbient)
	}
	return s.rng.Pick(dayAmbient)
}
