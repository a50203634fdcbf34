// Package persistence provides SQLite-backed world state storage. The
// simulation stays memory-authoritative; this layer durably records
// snapshot state plus the append-only activity, conversation, and memory
// logs.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/emberwood/internal/actors"
	"github.com/talgya/emberwood/internal/engine"
	"github.com/talgya/emberwood/internal/social"
	"github.com/talgya/emberwood/internal/world"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS zones (
		name TEXT PRIMARY KEY,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		is_safe INTEGER NOT NULL,
		danger_level INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS zone_connections (
		from_zone TEXT NOT NULL,
		from_x INTEGER NOT NULL,
		from_y INTEGER NOT NULL,
		to_zone TEXT NOT NULL,
		to_x INTEGER NOT NULL,
		to_y INTEGER NOT NULL,
		PRIMARY KEY (from_zone, from_x, from_y)
	);

	CREATE TABLE IF NOT EXISTS objects (
		id INTEGER PRIMARY KEY,
		zone TEXT NOT NULL,
		name TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		blocking INTEGER NOT NULL,
		can_interact INTEGER NOT NULL,
		category TEXT NOT NULL,
		restore_amount INTEGER NOT NULL,
		description TEXT NOT NULL,
		interact_result TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS characters (
		id TEXT PRIMARY KEY,
		token TEXT NOT NULL,
		name TEXT NOT NULL,
		emoji TEXT NOT NULL,
		personality TEXT NOT NULL,
		origin_story TEXT NOT NULL,
		traits_json TEXT NOT NULL,
		life_story TEXT NOT NULL,
		moments_json TEXT NOT NULL,
		zone TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		hp INTEGER NOT NULL,
		max_hp INTEGER NOT NULL,
		energy INTEGER NOT NULL,
		max_energy INTEGER NOT NULL,
		xp INTEGER NOT NULL,
		level INTEGER NOT NULL,
		turn_interval INTEGER NOT NULL,
		last_action_tick INTEGER NOT NULL,
		is_active INTEGER NOT NULL,
		created_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS relationships (
		observer TEXT NOT NULL,
		other TEXT NOT NULL,
		sentiment INTEGER NOT NULL,
		interactions INTEGER NOT NULL,
		first_met_tick INTEGER NOT NULL,
		last_interaction_tick INTEGER NOT NULL,
		recent_exchanges INTEGER NOT NULL,
		cooldown_until INTEGER NOT NULL,
		summaries_json TEXT NOT NULL,
		PRIMARY KEY (observer, other)
	);

	CREATE TABLE IF NOT EXISTS activity_log (
		seq INTEGER PRIMARY KEY,
		tick INTEGER NOT NULL,
		character_id TEXT,
		summary TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS conversations (
		seq INTEGER PRIMARY KEY,
		tick INTEGER NOT NULL,
		speaker_id TEXT NOT NULL,
		speaker_name TEXT NOT NULL,
		listener_id TEXT NOT NULL,
		listener_name TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS memories (
		seq INTEGER PRIMARY KEY,
		tick INTEGER NOT NULL,
		character_id TEXT NOT NULL,
		text TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activity_tick ON activity_log(tick);
	CREATE INDEX IF NOT EXISTS idx_conversations_tick ON conversations(tick);
	CREATE INDEX IF NOT EXISTS idx_memories_character ON memories(character_id);
	CREATE INDEX IF NOT EXISTS idx_characters_name ON characters(name);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// HasWorldState reports whether a saved world exists.
func (db *DB) HasWorldState() bool {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = 'tick'")
	return err == nil
}

// LastSavedSeq returns the append-log high-water mark from the last save.
func (db *DB) LastSavedSeq() int64 {
	var value string
	if err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = 'last_seq'"); err != nil {
		return 0
	}
	seq, _ := strconv.ParseInt(value, 10, 64)
	return seq
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SaveState writes a full state export in one transaction: snapshot
// tables are replaced, append-only rows are inserted above the previous
// high-water mark.
func (db *DB) SaveState(st *engine.State) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveMetaTx(tx, "tick", strconv.FormatInt(st.World.Tick, 10)); err != nil {
		return err
	}
	if err := saveMetaTx(tx, "is_night", strconv.Itoa(boolToInt(st.World.IsNight))); err != nil {
		return err
	}
	if err := saveMetaTx(tx, "day_length", strconv.FormatInt(st.World.DayLength, 10)); err != nil {
		return err
	}
	if err := saveMetaTx(tx, "night_length", strconv.FormatInt(st.World.NightLength, 10)); err != nil {
		return err
	}
	if err := saveMetaTx(tx, "last_seq", strconv.FormatInt(st.MaxSeq, 10)); err != nil {
		return err
	}

	if err := saveMapTx(tx, st); err != nil {
		return err
	}
	if err := saveCharactersTx(tx, st.Characters); err != nil {
		return err
	}
	if err := saveRelationshipsTx(tx, st.Relationships); err != nil {
		return err
	}
	if err := saveAppendsTx(tx, st); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("world state saved",
		"tick", st.World.Tick,
		"characters", len(st.Characters),
		"relationships", len(st.Relationships),
	)
	return nil
}

func saveMetaTx(tx *sqlx.Tx, key, value string) error {
	_, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", key, value)
	return err
}

func saveMapTx(tx *sqlx.Tx, st *engine.State) error {
	if _, err := tx.Exec("DELETE FROM zones"); err != nil {
		return err
	}
	for _, z := range st.Zones {
		_, err := tx.Exec(
			"INSERT INTO zones (name, width, height, is_safe, danger_level) VALUES (?, ?, ?, ?, ?)",
			z.Name, z.Width, z.Height, boolToInt(z.IsSafe), z.DangerLevel,
		)
		if err != nil {
			return fmt.Errorf("insert zone %s: %w", z.Name, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM zone_connections"); err != nil {
		return err
	}
	for _, c := range st.Connections {
		_, err := tx.Exec(
			`INSERT INTO zone_connections (from_zone, from_x, from_y, to_zone, to_x, to_y)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.FromZone, c.FromX, c.FromY, c.ToZone, c.ToX, c.ToY,
		)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec("DELETE FROM objects"); err != nil {
		return err
	}
	for _, o := range st.Objects {
		_, err := tx.Exec(
			`INSERT INTO objects
			 (id, zone, name, x, y, blocking, can_interact, category, restore_amount, description, interact_result)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.Zone, o.Name, o.X, o.Y, boolToInt(o.Blocking), boolToInt(o.CanInteract),
			string(o.Category), o.RestoreAmount, o.Description, o.InteractResult,
		)
		if err != nil {
			return fmt.Errorf("insert object %d: %w", o.ID, err)
		}
	}
	return nil
}

func saveCharactersTx(tx *sqlx.Tx, chars []*actors.Character) error {
	if _, err := tx.Exec("DELETE FROM characters"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO characters
		(id, token, name, emoji, personality, origin_story, traits_json, life_story, moments_json,
		 zone, x, y, hp, max_hp, energy, max_energy, xp, level,
		 turn_interval, last_action_tick, is_active, created_tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chars {
		traitsJSON, _ := json.Marshal(c.Traits)
		momentsJSON, _ := json.Marshal(c.SignificantMoments)

		_, err := stmt.Exec(
			c.ID, c.Token, c.Name, c.Emoji, c.Personality, c.OriginStory,
			string(traitsJSON), c.LifeStory, string(momentsJSON),
			c.Zone, c.X, c.Y, c.HP, c.MaxHP, c.Energy, c.MaxEnergy, c.XP, c.Level,
			c.TurnInterval, c.LastActionTick, boolToInt(c.IsActive), c.CreatedTick,
		)
		if err != nil {
			return fmt.Errorf("insert character %s: %w", c.Name, err)
		}
	}
	return nil
}

func saveRelationshipsTx(tx *sqlx.Tx, rels []*social.Relationship) error {
	if _, err := tx.Exec("DELETE FROM relationships"); err != nil {
		return err
	}
	for _, r := range rels {
		summariesJSON, _ := json.Marshal(r.Summaries)
		_, err := tx.Exec(
			`INSERT INTO relationships
			 (observer, other, sentiment, interactions, first_met_tick, last_interaction_tick,
			  recent_exchanges, cooldown_until, summaries_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Observer, r.Other, r.Sentiment, r.Interactions, r.FirstMetTick, r.LastTick,
			r.RecentExchanges, r.CooldownUntil, string(summariesJSON),
		)
		if err != nil {
			return fmt.Errorf("insert relationship %s->%s: %w", r.Observer, r.Other, err)
		}
	}
	return nil
}

func saveAppendsTx(tx *sqlx.Tx, st *engine.State) error {
	for _, a := range st.Activity {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO activity_log (seq, tick, character_id, summary) VALUES (?, ?, ?, ?)",
			a.Seq, a.Tick, a.CharacterID, a.Summary,
		); err != nil {
			return err
		}
	}
	for _, c := range st.Conversations {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO conversations
			 (seq, tick, speaker_id, speaker_name, listener_id, listener_name, message)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.Seq, c.Tick, c.SpeakerID, c.SpeakerName, c.ListenerID, c.ListenerName, c.Message,
		); err != nil {
			return err
		}
	}
	for _, m := range st.Memories {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO memories (seq, tick, character_id, text) VALUES (?, ?, ?, ?)",
			m.Seq, m.Tick, m.CharacterID, m.Text,
		); err != nil {
			return err
		}
	}
	return nil
}

// LoadState reads the saved world back into a state export.
func (db *DB) LoadState() (*engine.State, error) {
	st := &engine.State{}

	var err error
	if st.World.Tick, err = db.metaInt("tick"); err != nil {
		return nil, fmt.Errorf("load tick: %w", err)
	}
	isNight, _ := db.metaInt("is_night")
	st.World.IsNight = isNight != 0
	st.World.DayLength, _ = db.metaInt("day_length")
	st.World.NightLength, _ = db.metaInt("night_length")
	st.MaxSeq, _ = db.metaInt("last_seq")

	if err := db.loadMap(st); err != nil {
		return nil, err
	}
	if err := db.loadCharacters(st); err != nil {
		return nil, err
	}
	if err := db.loadRelationships(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (db *DB) metaInt(key string) (int64, error) {
	var value string
	if err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key); err != nil {
		return 0, err
	}
	return strconv.ParseInt(value, 10, 64)
}

func (db *DB) loadMap(st *engine.State) error {
	type zoneRow struct {
		Name        string `db:"name"`
		Width       int    `db:"width"`
		Height      int    `db:"height"`
		IsSafe      int    `db:"is_safe"`
		DangerLevel int    `db:"danger_level"`
	}
	var zones []zoneRow
	if err := db.conn.Select(&zones, "SELECT * FROM zones"); err != nil {
		return fmt.Errorf("load zones: %w", err)
	}
	for _, z := range zones {
		st.Zones = append(st.Zones, &world.Zone{
			Name: z.Name, Width: z.Width, Height: z.Height,
			IsSafe: z.IsSafe != 0, DangerLevel: z.DangerLevel,
		})
	}

	type connRow struct {
		FromZone string `db:"from_zone"`
		FromX    int    `db:"from_x"`
		FromY    int    `db:"from_y"`
		ToZone   string `db:"to_zone"`
		ToX      int    `db:"to_x"`
		ToY      int    `db:"to_y"`
	}
	var conns []connRow
	if err := db.conn.Select(&conns, "SELECT * FROM zone_connections"); err != nil {
		return fmt.Errorf("load connections: %w", err)
	}
	for _, c := range conns {
		st.Connections = append(st.Connections, &world.Connection{
			FromZone: c.FromZone, FromX: c.FromX, FromY: c.FromY,
			ToZone: c.ToZone, ToX: c.ToX, ToY: c.ToY,
		})
	}

	type objRow struct {
		ID             int64  `db:"id"`
		Zone           string `db:"zone"`
		Name           string `db:"name"`
		X              int    `db:"x"`
		Y              int    `db:"y"`
		Blocking       int    `db:"blocking"`
		CanInteract    int    `db:"can_interact"`
		Category       string `db:"category"`
		RestoreAmount  int    `db:"restore_amount"`
		Description    string `db:"description"`
		InteractResult string `db:"interact_result"`
	}
	var objs []objRow
	if err := db.conn.Select(&objs, "SELECT * FROM objects"); err != nil {
		return fmt.Errorf("load objects: %w", err)
	}
	for _, o := range objs {
		st.Objects = append(st.Objects, &world.Object{
			ID: o.ID, Zone: o.Zone, Name: o.Name, X: o.X, Y: o.Y,
			Blocking: o.Blocking != 0, CanInteract: o.CanInteract != 0,
			Category: world.ObjectCategory(o.Category), RestoreAmount: o.RestoreAmount,
			Description: o.Description, InteractResult: o.InteractResult,
		})
	}
	return nil
}

func (db *DB) loadCharacters(st *engine.State) error {
	type charRow struct {
		ID             string `db:"id"`
		Token          string `db:"token"`
		Name           string `db:"name"`
		Emoji          string `db:"emoji"`
		Personality    string `db:"personality"`
		OriginStory    string `db:"origin_story"`
		TraitsJSON     string `db:"traits_json"`
		LifeStory      string `db:"life_story"`
		MomentsJSON    string `db:"moments_json"`
		Zone           string `db:"zone"`
		X              int    `db:"x"`
		Y              int    `db:"y"`
		HP             int    `db:"hp"`
		MaxHP          int    `db:"max_hp"`
		Energy         int    `db:"energy"`
		MaxEnergy      int    `db:"max_energy"`
		XP             int64  `db:"xp"`
		Level          int    `db:"level"`
		TurnInterval   int64  `db:"turn_interval"`
		LastActionTick int64  `db:"last_action_tick"`
		IsActive       int    `db:"is_active"`
		CreatedTick    int64  `db:"created_tick"`
	}
	var rows []charRow
	if err := db.conn.Select(&rows, "SELECT * FROM characters"); err != nil {
		return fmt.Errorf("load characters: %w", err)
	}
	for _, r := range rows {
		c := &actors.Character{
			ID: r.ID, Token: r.Token, Name: r.Name, Emoji: r.Emoji,
			Personality: r.Personality, OriginStory: r.OriginStory,
			LifeStory: r.LifeStory,
			Zone:      r.Zone, X: r.X, Y: r.Y,
			HP: r.HP, MaxHP: r.MaxHP, Energy: r.Energy, MaxEnergy: r.MaxEnergy,
			XP: r.XP, Level: r.Level,
			TurnInterval: r.TurnInterval, LastActionTick: r.LastActionTick,
			IsActive: r.IsActive != 0, CreatedTick: r.CreatedTick,
		}
		if err := json.Unmarshal([]byte(r.TraitsJSON), &c.Traits); err != nil {
			slog.Warn("bad traits json, skipping", "character", r.Name, "error", err)
		}
		if err := json.Unmarshal([]byte(r.MomentsJSON), &c.SignificantMoments); err != nil {
			slog.Warn("bad moments json, skipping", "character", r.Name, "error", err)
		}
		st.Characters = append(st.Characters, c)
	}
	return nil
}

func (db *DB) loadRelationships(st *engine.State) error {
	type relRow struct {
		Observer        string `db:"observer"`
		Other           string `db:"other"`
		Sentiment       int    `db:"sentiment"`
		Interactions    int    `db:"interactions"`
		FirstMetTick    int64  `db:"first_met_tick"`
		LastTick        int64  `db:"last_interaction_tick"`
		RecentExchanges int    `db:"recent_exchanges"`
		CooldownUntil   int64  `db:"cooldown_until"`
		SummariesJSON   string `db:"summaries_json"`
	}
	var rows []relRow
	if err := db.conn.Select(&rows, "SELECT * FROM relationships"); err != nil {
		return fmt.Errorf("load relationships: %w", err)
	}
	for _, r := range rows {
		rel := &social.Relationship{
			Observer: r.Observer, Other: r.Other,
			Sentiment: r.Sentiment, Interactions: r.Interactions,
			FirstMetTick: r.FirstMetTick, LastTick: r.LastTick,
			RecentExchanges: r.RecentExchanges, CooldownUntil: r.CooldownUntil,
		}
		if err := json.Unmarshal([]byte(r.SummariesJSON), &rel.Summaries); err != nil {
			slog.Warn("bad summaries json, skipping", "observer", r.Observer, "error", err)
		}
		st.Relationships = append(st.Relationships, rel)
	}
	return nil
}

// RecentActivity returns the most recent N activity rows, oldest first.
func (db *DB) RecentActivity(limit int) ([]engine.ActivityEntry, error) {
	var rows []engine.ActivityEntry
	err := db.conn.Select(&rows,
		`SELECT seq, tick, IFNULL(character_id, '') AS character_id, summary
		 FROM activity_log ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// MemoriesFor returns a character's most recent memories, oldest first.
func (db *DB) MemoriesFor(characterID string, limit int) ([]engine.MemoryEntry, error) {
	var rows []engine.MemoryEntry
	err := db.conn.Select(&rows,
		"SELECT seq, tick, character_id, text FROM memories WHERE character_id = ? ORDER BY seq DESC LIMIT ?",
		characterID, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// Wipe deletes all characters, relationships, and logs, leaving the map
// and the tick meta intact.
func (db *DB) Wipe() error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"characters", "relationships", "activity_log", "conversations", "memories"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}
	return tx.Commit()
}
