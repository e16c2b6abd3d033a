// Package persistence is the storage collaborator: a SQLite-backed
// snapshot store. The engine hands over a complete entity list and gets a
// complete list back; saves are full replaces inside one transaction.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/spazz-core/internal/geo"
	"github.com/talgya/spazz-core/internal/match"
)

// DB wraps a SQLite connection.
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
	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		kind INTEGER NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		on_duty INTEGER NOT NULL,
		age INTEGER NOT NULL,
		gender TEXT NOT NULL,
		pref_json TEXT NOT NULL,
		blocked_json TEXT NOT NULL,
		likes_json TEXT NOT NULL,
		last_nudge INTEGER NOT NULL,
		budget_used INTEGER NOT NULL,
		budget_stamp INTEGER NOT NULL,
		premium INTEGER NOT NULL,
		credits INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS engine_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type entityRow struct {
	ID          uint64  `db:"id"`
	Name        string  `db:"name"`
	Kind        uint8   `db:"kind"`
	Lat         float64 `db:"lat"`
	Lon         float64 `db:"lon"`
	OnDuty      bool    `db:"on_duty"`
	Age         uint16  `db:"age"`
	Gender      string  `db:"gender"`
	PrefJSON    string  `db:"pref_json"`
	BlockedJSON string  `db:"blocked_json"`
	LikesJSON   string  `db:"likes_json"`
	LastNudge   int64   `db:"last_nudge"`
	BudgetUsed  int     `db:"budget_used"`
	BudgetStamp int64   `db:"budget_stamp"`
	Premium     bool    `db:"premium"`
	Credits     uint64  `db:"credits"`
	CreatedAt   int64   `db:"created_at"`
}

// SaveEntities writes the full snapshot (full replace).
func (db *DB) SaveEntities(entities []match.Entity) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entities"); err != nil {
		return err
	}

	stmt := `INSERT INTO entities
		(id, name, kind, lat, lon, on_duty, age, gender, pref_json,
		 blocked_json, likes_json, last_nudge, budget_used, budget_stamp,
		 premium, credits, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i := range entities {
		row, err := toRow(&entities[i])
		if err != nil {
			return fmt.Errorf("entity %d: %w", entities[i].ID, err)
		}
		if _, err := tx.Exec(stmt,
			row.ID, row.Name, row.Kind, row.Lat, row.Lon, row.OnDuty,
			row.Age, row.Gender, row.PrefJSON, row.BlockedJSON, row.LikesJSON,
			row.LastNudge, row.BudgetUsed, row.BudgetStamp, row.Premium,
			row.Credits, row.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert entity %d: %w", entities[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("snapshot saved", "entities", len(entities))
	return nil
}

// LoadEntities reads the full snapshot.
func (db *DB) LoadEntities() ([]match.Entity, error) {
	var rows []entityRow
	if err := db.conn.Select(&rows, "SELECT * FROM entities ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load entities: %w", err)
	}

	entities := make([]match.Entity, 0, len(rows))
	for _, row := range rows {
		e, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", row.ID, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// HasSnapshot reports whether any entities were previously saved.
func (db *DB) HasSnapshot() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM entities"); err != nil {
		return false
	}
	return count > 0
}

// SetMeta stores an engine metadata value.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO engine_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// GetMeta reads an engine metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM engine_meta WHERE key = ?", key)
	return value, err
}

func toRow(e *match.Entity) (entityRow, error) {
	prefJSON, err := json.Marshal(e.Pref)
	if err != nil {
		return entityRow{}, err
	}
	blockedJSON, err := json.Marshal(idList(e.Blocked))
	if err != nil {
		return entityRow{}, err
	}
	likesJSON, err := json.Marshal(idList(e.Likes))
	if err != nil {
		return entityRow{}, err
	}

	return entityRow{
		ID:          uint64(e.ID),
		Name:        e.Name,
		Kind:        uint8(e.Kind),
		Lat:         e.Position.Lat,
		Lon:         e.Position.Lon,
		OnDuty:      e.OnDuty,
		Age:         e.Age,
		Gender:      e.Gender,
		PrefJSON:    string(prefJSON),
		BlockedJSON: string(blockedJSON),
		LikesJSON:   string(likesJSON),
		LastNudge:   unixOrZero(e.LastNudge),
		BudgetUsed:  e.BudgetUsed,
		BudgetStamp: unixOrZero(e.BudgetStamp),
		Premium:     e.Premium,
		Credits:     e.Credits,
		CreatedAt:   unixOrZero(e.CreatedAt),
	}, nil
}

func fromRow(row entityRow) (match.Entity, error) {
	var pref match.Preference
	if err := json.Unmarshal([]byte(row.PrefJSON), &pref); err != nil {
		return match.Entity{}, err
	}
	var blockedIDs, likeIDs []match.EntityID
	if err := json.Unmarshal([]byte(row.BlockedJSON), &blockedIDs); err != nil {
		return match.Entity{}, err
	}
	if err := json.Unmarshal([]byte(row.LikesJSON), &likeIDs); err != nil {
		return match.Entity{}, err
	}

	return match.Entity{
		ID:          match.EntityID(row.ID),
		Name:        row.Name,
		Kind:        match.Kind(row.Kind),
		Position:    geo.LatLon{Lat: row.Lat, Lon: row.Lon},
		OnDuty:      row.OnDuty,
		Age:         row.Age,
		Gender:      row.Gender,
		Pref:        pref,
		Blocked:     idSet(blockedIDs),
		Likes:       idSet(likeIDs),
		LastNudge:   timeOrZero(row.LastNudge),
		BudgetUsed:  row.BudgetUsed,
		BudgetStamp: timeOrZero(row.BudgetStamp),
		Premium:     row.Premium,
		Credits:     row.Credits,
		CreatedAt:   timeOrZero(row.CreatedAt),
	}, nil
}

func idList(set map[match.EntityID]struct{}) []match.EntityID {
	out := make([]match.EntityID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func idSet(ids []match.EntityID) map[match.EntityID]struct{} {
	out := make(map[match.EntityID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(unix int64) time.Time {
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}
