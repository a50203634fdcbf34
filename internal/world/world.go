// Package world holds the map model: the singleton world record, zones,
// zone connections, and static objects, plus the spatial queries the
// action processor runs against them.
package world

// World is the singleton time-keeping record. Tick is monotonic and never
// decreases; day/night is derived from it, never stored independently.
type World struct {
	Tick        int64 `json:"tick"`
	IsNight     bool  `json:"is_night"`
	DayLength   int64 `json:"day_length"`
	NightLength int64 `json:"night_length"`
}

// NightAt reports whether the given tick falls in the night phase of the
// day/night cycle.
func (w *World) NightAt(tick int64) bool {
	cycle := w.DayLength + w.NightLength
	if cycle <= 0 {
		return false
	}
	return tick%cycle >= w.DayLength
}

// Direction is one of the four cardinal movement directions.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Offset returns the tile delta for a direction. ok is false for anything
// outside the four cardinals.
func Offset(d Direction) (dx, dy int, ok bool) {
	switch d {
	case North:
		return 0, -1, true
	case South:
		return 0, 1, true
	case East:
		return 1, 0, true
	case West:
		return -1, 0, true
	}
	return 0, 0, false
}

// Directions lists the valid movement directions in a stable order.
func Directions() []Direction {
	return []Direction{North, South, East, West}
}

// DistSq is the squared Euclidean distance between two tiles.
func DistSq(x1, y1, x2, y2 int) int {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// WithinRadius reports whether two tiles are within the given Euclidean
// radius of each other.
func WithinRadius(x1, y1, x2, y2, radius int) bool {
	return DistSq(x1, y1, x2, y2) <= radius*radius
}
