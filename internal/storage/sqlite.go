package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/wordalchemy/internal/models"
)

// SQLiteLeaderboard implements Leaderboard using SQLite.
type SQLiteLeaderboard struct {
	db *sql.DB
}

// NewSQLiteLeaderboard opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteLeaderboard(dbPath string) (*SQLiteLeaderboard, error) {
	inMemory := dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
	if !inMemory {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if inMemory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteLeaderboard{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_players_score ON players(score DESC);

	CREATE TABLE IF NOT EXISTS collected_words (
		player_id TEXT NOT NULL,
		word TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (player_id, word),
		FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreatePlayer inserts a player with a zero score.
func (s *SQLiteLeaderboard) CreatePlayer(ctx context.Context, id, name string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("player id cannot be empty")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO players (id, name, score, created_at) VALUES (?, ?, 0, ?)`,
		id, name, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("create player: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// GetPlayer returns a player with the words they collected, oldest first.
func (s *SQLiteLeaderboard) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	var p models.Player
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, score, created_at FROM players WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Score, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT word FROM collected_words WHERE player_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	p.Words = []string{}
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		p.Words = append(p.Words, w)
	}
	return &p, rows.Err()
}

// IncrementScore adds points to a player's score. It reports false for an unknown player.
func (s *SQLiteLeaderboard) IncrementScore(ctx context.Context, id string, points int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET score = score + ? WHERE id = ?`, points, id)
	if err != nil {
		return false, fmt.Errorf("increment score: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// AddWords records words for a player, ignoring ones already collected.
func (s *SQLiteLeaderboard) AddWords(ctx context.Context, id string, words []string) (bool, error) {
	if len(words) == 0 {
		return false, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM players WHERE id = ?`, id).Scan(&exists); err != nil {
		return false, err
	}
	if exists == 0 {
		return false, nil
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO collected_words (player_id, word, created_at) VALUES (?, ?, ?)`)
	if err != nil {
		return false, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	var added int64
	for _, w := range words {
		res, err := stmt.ExecContext(ctx, id, w, now)
		if err != nil {
			return false, fmt.Errorf("add word %q: %w", w, err)
		}
		n, _ := res.RowsAffected()
		added += n
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return added > 0, nil
}

// Leaders returns players ordered by score, highest first; ties keep join order.
func (s *SQLiteLeaderboard) Leaders(ctx context.Context, limit int) ([]*models.Player, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, score, created_at FROM players
		 ORDER BY score DESC, rowid ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []*models.Player{}
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Score, &p.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, &p)
	}
	return players, rows.Err()
}

// Rank returns the 1-based position of the player in Leaders order.
func (s *SQLiteLeaderboard) Rank(ctx context.Context, id string) (int, error) {
	var score, rowid int64
	err := s.db.QueryRowContext(ctx,
		`SELECT score, rowid FROM players WHERE id = ?`, id).Scan(&score, &rowid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var ahead int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE score > ? OR (score = ? AND rowid < ?)`,
		score, score, rowid).Scan(&ahead)
	if err != nil {
		return 0, err
	}
	return ahead + 1, nil
}

// CountPlayers returns the number of players.
func (s *SQLiteLeaderboard) CountPlayers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n)
	return n, err
}

// Close closes the database connection.
func (s *SQLiteLeaderboard) Close() error {
	return s.db.Close()
}
