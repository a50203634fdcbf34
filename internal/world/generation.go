// Starter world generation: two connected zones seeded with rest spots,
// curios, and noise-scattered blocking scenery.
package world

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig controls starter world generation.
type GenConfig struct {
	Seed          int64
	MeadowSize    int     // Width and height of the meadow zone
	DarkwoodSize  int     // Width and height of the darkwood zone
	SceneryCutoff float64 // Noise threshold above which a tile grows scenery
}

// DefaultGenConfig returns the standard starter world parameters.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:          1,
		MeadowSize:    20,
		DarkwoodSize:  16,
		SceneryCutoff: 0.82,
	}
}

// Generate builds the starter world: a safe meadow and a dangerous
// darkwood, joined by a forest path in both directions.
func Generate(cfg GenConfig) *Map {
	m := NewMap()

	meadow := &Zone{Name: "meadow", Width: cfg.MeadowSize, Height: cfg.MeadowSize, IsSafe: true}
	darkwood := &Zone{Name: "darkwood", Width: cfg.DarkwoodSize, Height: cfg.DarkwoodSize, DangerLevel: 2}
	m.AddZone(meadow)
	m.AddZone(darkwood)

	// Hand-placed landmarks. Rest spots carry an explicit category tag;
	// the cottage restores more than the outdoor spots.
	m.AddObject(&Object{
		Zone: "meadow", Name: "campfire", X: 5, Y: 5,
		CanInteract: true, Category: CategoryRest, RestoreAmount: 25,
		Description:    "A crackling campfire ringed with stones. The warmth is inviting.",
		InteractResult: "You warm your hands by the fire.",
	})
	m.AddObject(&Object{
		Zone: "meadow", Name: "cottage", X: 14, Y: 4,
		Blocking: true, CanInteract: true, Category: CategoryRest, RestoreAmount: 50,
		Description:    "A thatched cottage with smoke curling from its chimney.",
		InteractResult: "You rest inside the cottage.",
	})
	m.AddObject(&Object{
		Zone: "meadow", Name: "pond", X: 8, Y: 14,
		CanInteract: true, Category: CategoryRest, RestoreAmount: 25,
		Description:    "A still pond. Dragonflies skim its surface.",
		InteractResult: "You sit by the pond and watch the water.",
	})
	m.AddObject(&Object{
		Zone: "meadow", Name: "signpost", X: 10, Y: 10,
		CanInteract: true, Category: CategoryCurio,
		Description:    "A weathered signpost. An arrow points east: 'Darkwood — travelers beware'.",
		InteractResult: "The signpost wobbles but tells you nothing new.",
	})
	m.AddObject(&Object{
		Zone: "darkwood", Name: "old shrine", X: 8, Y: 8,
		CanInteract: true, Category: CategoryCurio,
		Description:    "A moss-covered shrine to a forgotten god.",
		InteractResult: "You leave a pebble at the shrine. The forest feels quieter.",
	})
	m.AddObject(&Object{
		Zone: "darkwood", Name: "hollow log", X: 3, Y: 12,
		CanInteract: true, Category: CategoryCurio,
		Description:    "A hollow log, big enough to crawl through.",
		InteractResult: "Something skitters away as you peer inside.",
	})

	// Noise-scattered scenery: trees in both zones, denser in the darkwood.
	noise := opensimplex.NewNormalized(cfg.Seed)
	scatterScenery(m, meadow, noise, cfg.SceneryCutoff, "oak tree")
	scatterScenery(m, darkwood, noise, cfg.SceneryCutoff-0.12, "gnarled pine")

	// The forest path between the zones, both directions.
	m.Connect(&Connection{
		FromZone: "meadow", FromX: cfg.MeadowSize - 1, FromY: cfg.MeadowSize / 2,
		ToZone: "darkwood", ToX: 0, ToY: cfg.DarkwoodSize / 2,
	})
	m.Connect(&Connection{
		FromZone: "darkwood", FromX: 0, FromY: cfg.DarkwoodSize / 2,
		ToZone: "meadow", ToX: cfg.MeadowSize - 1, ToY: cfg.MeadowSize / 2,
	})

	// Connection tiles must stay passable.
	clearTiles(m, "meadow", cfg.MeadowSize-1, cfg.MeadowSize/2)
	clearTiles(m, "darkwood", 0, cfg.DarkwoodSize/2)

	return m
}

// scatterScenery grows blocking scenery wherever the noise field exceeds
// the cutoff, skipping tiles that already hold an object.
func scatterScenery(m *Map, z *Zone, noise opensimplex.Noise, cutoff float64, name string) {
	for y := 0; y < z.Height; y++ {
		for x := 0; x < z.Width; x++ {
			v := noise.Eval2(float64(x)*0.35, float64(y)*0.35)
			if v < cutoff {
				continue
			}
			if tileOccupied(m, z.Name, x, y) {
				continue
			}
			m.AddObject(&Object{
				Zone: z.Name, Name: name, X: x, Y: y,
				Blocking: true, Category: CategoryScenery,
				Description: fmt.Sprintf("A %s. It is not going anywhere.", name),
			})
		}
	}
}

func tileOccupied(m *Map, zone string, x, y int) bool {
	for _, o := range m.Objects {
		if o.Zone == zone && o.X == x && o.Y == y {
			return true
		}
	}
	return false
}

func clearTiles(m *Map, zone string, x, y int) {
	kept := m.Objects[:0]
	for _, o := range m.Objects {
		if o.Zone == zone && o.X == x && o.Y == y && o.Blocking {
			continue
		}
		kept = append(kept, o)
	}
	m.Objects = kept
}
