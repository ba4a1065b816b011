// Package store keeps the rounds of a game session in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/reflex/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store wraps SQLite access for round records.
type Store struct {
	db *sql.DB
}

// Open opens the database at path and applies migrations. An in-memory
// database lives on a single connection, so the pool is pinned to one.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY,
			player TEXT NOT NULL,
			mode TEXT NOT NULL,
			appeared_at TEXT NOT NULL,
			reaction_ms INTEGER NOT NULL,
			verdict TEXT NOT NULL,
			color TEXT NOT NULL,
			switches INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_player ON rounds(player);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRound stores a fired round and returns its id.
func (s *Store) InsertRound(ctx context.Context, rec model.RoundRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds (player, mode, appeared_at, reaction_ms, verdict, color, switches)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Player,
		string(rec.Mode),
		rec.AppearedAt.Format(time.RFC3339Nano),
		rec.ReactionMs,
		rec.Verdict.String(),
		rec.Color.String(),
		rec.Switches,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert round: %w", err)
	}
	return res.LastInsertId()
}

// ListRounds returns the rounds of player in insertion order.
func (s *Store) ListRounds(ctx context.Context, player string) ([]model.RoundRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player, mode, appeared_at, reaction_ms, verdict, color, switches
		 FROM rounds
		 WHERE player = ?
		 ORDER BY id ASC`, player)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.RoundRecord
	for rows.Next() {
		var rec model.RoundRecord
		var mode, appearedAt, verdict, color string
		if err := rows.Scan(&rec.ID, &rec.Player, &mode, &appearedAt, &rec.ReactionMs, &verdict, &color, &rec.Switches); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, appearedAt)
		if err != nil {
			return nil, err
		}
		rec.Mode = model.Mode(mode)
		rec.AppearedAt = parsed
		if rec.Verdict, err = parseVerdict(verdict); err != nil {
			return nil, err
		}
		if color == model.ColorNoGo.String() {
			rec.Color = model.ColorNoGo
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Summary aggregates the rounds of player. Best and mean reaction only
// count rounds that were shot at a GO target.
func (s *Store) Summary(ctx context.Context, player string) (model.Summary, error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN verdict = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN verdict = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN verdict = ? THEN 1 ELSE 0 END), 0),
		MIN(CASE WHEN verdict != ? THEN reaction_ms END),
		AVG(CASE WHEN verdict != ? THEN reaction_ms END)
	FROM rounds
	WHERE player = ?`
	wrong := model.VerdictWrongColor.String()
	var sum model.Summary
	var best sql.NullInt64
	var mean sql.NullFloat64
	err := s.db.QueryRowContext(ctx, query,
		model.VerdictWin.String(),
		model.VerdictTooSlow.String(),
		wrong,
		wrong,
		wrong,
		player,
	).Scan(&sum.Rounds, &sum.Wins, &sum.TooSlow, &sum.WrongColor, &best, &mean)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to summarize rounds: %w", err)
	}
	if best.Valid {
		sum.HasReaction = true
		sum.BestMs = best.Int64
		sum.MeanMs = mean.Float64
	}
	return sum, nil
}

func parseVerdict(s string) (model.Verdict, error) {
	for _, v := range []model.Verdict{model.VerdictWin, model.VerdictTooSlow, model.VerdictWrongColor} {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown verdict %q", s)
}
