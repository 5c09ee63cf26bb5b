package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/evbus/internal/bus"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Journal is an append-only SQLite log of Fire calls.
// It records what was fired; it never stores the handler table.
type Journal struct {
	db     *sql.DB
	logger *zap.Logger
}

// Entry is one journaled fire.
type Entry struct {
	ID        uuid.UUID
	Kind      string
	EventName string
	Handlers  int
	Invoked   int
	Error     string
	Duration  time.Duration
	FiredAt   time.Time
}

// Failed reports whether a handler failed during the fire.
func (e Entry) Failed() bool { return e.Error != "" }

// Open creates a SQLite connection with WAL mode. Call Migrate before use.
func Open(path string, logger *zap.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{db: db, logger: logger}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// ObserveFire implements bus.Observer. Write failures are logged and never
// reach the Fire caller.
func (j *Journal) ObserveFire(rec bus.FireRecord) {
	if err := j.Append(rec); err != nil {
		j.logger.Warn("failed to journal fire",
			zap.Stringer("kind", rec.Kind),
			zap.Stringer("fire_id", rec.ID),
			zap.Error(err),
		)
	}
}

// Append stores a fire record.
func (j *Journal) Append(rec bus.FireRecord) error {
	errText := ""
	if rec.Err != nil {
		errText = rec.Err.Error()
	}
	_, err := j.db.Exec(`
		INSERT INTO fires (id, kind, event_name, handlers, invoked, error, duration_us, fired_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Kind.String(), rec.EventName, rec.Handlers, rec.Invoked,
		errText, rec.Duration.Microseconds(), rec.FiredAt.UnixMicro())
	if err != nil {
		return fmt.Errorf("insert fire: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	rows, err := j.db.Query(`
		SELECT id, kind, event_name, handlers, invoked, error, duration_us, fired_at
		FROM fires
		ORDER BY fired_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query fires: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			id         string
			durationUs int64
			firedAt    int64
		)
		if err := rows.Scan(&id, &e.Kind, &e.EventName, &e.Handlers, &e.Invoked, &e.Error, &durationUs, &firedAt); err != nil {
			return nil, fmt.Errorf("scan fire: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse fire id %q: %w", id, err)
		}
		e.Duration = time.Duration(durationUs) * time.Microsecond
		e.FiredAt = time.UnixMicro(firedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByKind returns the number of journaled fires per kind.
func (j *Journal) CountByKind() (map[string]int, error) {
	rows, err := j.db.Query(`SELECT kind, COUNT(*) FROM fires GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count fires: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// Prune deletes all but the newest keep entries and returns how many were
// removed. keep <= 0 is a no-op.
func (j *Journal) Prune(keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := j.db.Exec(`
		DELETE FROM fires WHERE rowid NOT IN (
			SELECT rowid FROM fires ORDER BY fired_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune fires: %w", err)
	}
	return res.RowsAffected()
}
