package leaderboard

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createTableSQL = `
CREATE TABLE IF NOT EXISTS leaderboard (
  player     TEXT PRIMARY KEY,
  score      BIGINT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	createIndexSQL = `
CREATE INDEX IF NOT EXISTS leaderboard_score_idx
ON leaderboard (score DESC, created_at ASC)`

	upsertSQL = `
INSERT INTO leaderboard (player, score) VALUES ($1, $2)
ON CONFLICT (player) DO UPDATE
SET score = EXCLUDED.score, created_at = NOW()
WHERE EXCLUDED.score > leaderboard.score`

	trimSQL = `
DELETE FROM leaderboard
WHERE player NOT IN (
  SELECT player FROM leaderboard
  ORDER BY score DESC, created_at ASC
  LIMIT $1
)`

	topSQL = `
SELECT player, score, created_at FROM leaderboard
ORDER BY score DESC, created_at ASC
LIMIT $1`
)

// PostgresStore keeps the board in a single Postgres table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// OpenPostgres connects, pings and makes sure the table exists.
func OpenPostgres(ctx context.Context, databaseURL string, logger *log.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, logger: logger.WithPrefix("postgres")}
	if err := s.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	s.logger.Info("Database ready")
	return s, nil
}

func (s *PostgresStore) ensureTable(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create leaderboard table: %w", err)
	}
	if _, err := s.pool.Exec(ctx, createIndexSQL); err != nil {
		return fmt.Errorf("create leaderboard index: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Top(ctx context.Context, n int) ([]Entry, error) {
	return queryTop(ctx, s.pool, n)
}

func (s *PostgresStore) Submit(ctx context.Context, player string, score int64, n int) (SubmitResult, error) {
	player, err := NormalizePlayer(player)
	if err != nil {
		return SubmitResult{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after commit

	if _, err := tx.Exec(ctx, upsertSQL, player, score); err != nil {
		return SubmitResult{}, fmt.Errorf("upsert score: %w", err)
	}
	if _, err := tx.Exec(ctx, trimSQL, n); err != nil {
		return SubmitResult{}, fmt.Errorf("trim leaderboard: %w", err)
	}
	board, err := queryTop(ctx, tx, n)
	if err != nil {
		return SubmitResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return SubmitResult{}, fmt.Errorf("commit: %w", err)
	}

	res := placement(board, player, score)
	s.logger.Debug("Score submitted", "player", player, "score", score, "entered", res.Entered, "rank", res.Rank)
	return res, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryTop(ctx context.Context, q querier, n int) ([]Entry, error) {
	rows, err := q.Query(ctx, topSQL, n)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.Player, &e.Score, &e.AchievedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan leaderboard: %w", err)
	}
	return entries, nil
}
