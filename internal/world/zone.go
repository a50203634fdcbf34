package world

import "strings"

// Zone is a bounded map region. Actors and objects belong to exactly one
// zone at a time.
type Zone struct {
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	IsSafe      bool   `json:"is_safe"`
	DangerLevel int    `json:"danger_level"`
}

// InBounds reports whether (x, y) lies inside [0,width) x [0,height).
func (z *Zone) InBounds(x, y int) bool {
	return x >= 0 && x < z.Width && y >= 0 && y < z.Height
}

// Connection is a directed edge between zone tiles: stepping onto
// (FromZone, FromX, FromY) transits the actor to (ToZone, ToX, ToY).
// At most one connection exists per source tile.
type Connection struct {
	FromZone string `json:"from_zone"`
	FromX    int    `json:"from_x"`
	FromY    int    `json:"from_y"`
	ToZone   string `json:"to_zone"`
	ToX      int    `json:"to_x"`
	ToY      int    `json:"to_y"`
}

// ObjectCategory tags an object's mechanical role. Rest behavior keys on
// this tag, not on the object's display name.
type ObjectCategory string

const (
	CategoryScenery ObjectCategory = "scenery"
	CategoryRest    ObjectCategory = "rest"
	CategoryCurio   ObjectCategory = "curio"
)

// Object is a static, zone-scoped entity.
type Object struct {
	ID             int64          `json:"id"`
	Zone           string         `json:"zone"`
	Name           string         `json:"name"`
	X              int            `json:"x"`
	Y              int            `json:"y"`
	Blocking       bool           `json:"blocking"`
	CanInteract    bool           `json:"can_interact"`
	Category       ObjectCategory `json:"category"`
	RestoreAmount  int            `json:"restore_amount,omitempty"`
	Description    string         `json:"description"`
	InteractResult string         `json:"interact_result,omitempty"`
}

// NameMatches reports whether the target names this object
// (case-insensitive substring; empty target matches anything).
func (o *Object) NameMatches(target string) bool {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.Name), target)
}

type tileKey struct {
	zone string
	x, y int
}

// Map aggregates zones, their objects, and the connections between them.
type Map struct {
	Zones       map[string]*Zone
	Objects     []*Object
	connections map[tileKey]*Connection
	nextID      int64
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{
		Zones:       make(map[string]*Zone),
		connections: make(map[tileKey]*Connection),
	}
}

// AddZone registers a zone.
func (m *Map) AddZone(z *Zone) {
	m.Zones[z.Name] = z
}

// Zone returns the named zone, or nil.
func (m *Map) Zone(name string) *Zone {
	return m.Zones[name]
}

// AddObject places an object, assigning it an id if it has none.
func (m *Map) AddObject(o *Object) *Object {
	if o.ID == 0 {
		m.nextID++
		o.ID = m.nextID
	} else if o.ID > m.nextID {
		m.nextID = o.ID
	}
	m.Objects = append(m.Objects, o)
	return o
}

// Connect registers a directed connection, replacing any existing edge
// from the same source tile.
func (m *Map) Connect(c *Connection) {
	m.connections[tileKey{c.FromZone, c.FromX, c.FromY}] = c
}

// ConnectionAt returns the connection leaving the given tile, or nil.
func (m *Map) ConnectionAt(zone string, x, y int) *Connection {
	return m.connections[tileKey{zone, x, y}]
}

// Connections returns all registered connections.
func (m *Map) Connections() []*Connection {
	out := make([]*Connection, 0, len(m.connections))
	for _, c := range m.connections {
		out = append(out, c)
	}
	return out
}

// ObjectsIn returns all objects in a zone.
func (m *Map) ObjectsIn(zone string) []*Object {
	var out []*Object
	for _, o := range m.Objects {
		if o.Zone == zone {
			out = append(out, o)
		}
	}
	return out
}

// BlockingAt returns the blocking object on a tile, or nil.
func (m *Map) BlockingAt(zone string, x, y int) *Object {
	for _, o := range m.Objects {
		if o.Zone == zone && o.Blocking && o.X == x && o.Y == y {
			return o
		}
	}
	return nil
}

// ObjectsWithin returns the objects within the given Euclidean radius of
// (x, y) in a zone.
func (m *Map) ObjectsWithin(zone string, x, y, radius int) []*Object {
	var out []*Object
	for _, o := range m.Objects {
		if o.Zone == zone && WithinRadius(o.X, o.Y, x, y, radius) {
			out = append(out, o)
		}
	}
	return out
}

// FindObject returns the nearest object within radius whose name matches
// the target (case-insensitive substring). An empty target matches any
// object. Returns nil when nothing qualifies.
func (m *Map) FindObject(zone string, x, y, radius int, target string) *Object {
	var best *Object
	bestDist := radius*radius + 1
	for _, o := range m.Objects {
		if o.Zone != zone || !o.NameMatches(target) {
			continue
		}
		d := DistSq(o.X, o.Y, x, y)
		if d < bestDist {
			best = o
			bestDist = d
		}
	}
	return best
}
