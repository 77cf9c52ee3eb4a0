package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/facegate/facegate/internal/model"
)

// DB is the subset of pgxpool.Pool the repository needs. Tests inject
// a pgxmock pool through it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ model.PlayerStore = (*PlayerRepository)(nil)

type PlayerRepository struct {
	db DB
}

func NewPlayerRepository(db DB) *PlayerRepository {
	return &PlayerRepository{
		db: db,
	}
}

func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (model.Player, error) {
	var player model.Player
	query := `SELECT username, password_digest, photo_key, high_score, created_at, last_login_at
			  FROM players WHERE username = $1`

	err := r.db.QueryRow(ctx, query, username).Scan(
		&player.Username, &player.PasswordDigest, &player.PhotoKey,
		&player.HighScore, &player.CreatedAt, &player.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, model.ErrNotFound
		}
		return model.Player{}, fmt.Errorf("failed to get player by username: %w", err)
	}

	return player, nil
}

// Create inserts a new player record. Uniqueness is enforced by the
// primary key on username, so a concurrent insert for the same name
// loses with model.ErrUsernameTaken rather than creating a duplicate.
func (r *PlayerRepository) Create(ctx context.Context, player model.Player) (model.Player, error) {
	query := `INSERT INTO players (username, password_digest, photo_key, high_score, created_at, last_login_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING username, password_digest, photo_key, high_score, created_at, last_login_at`

	var savedPlayer model.Player
	err := r.db.QueryRow(ctx, query,
		player.Username, player.PasswordDigest, player.PhotoKey,
		player.HighScore, player.CreatedAt, player.LastLoginAt,
	).Scan(
		&savedPlayer.Username, &savedPlayer.PasswordDigest, &savedPlayer.PhotoKey,
		&savedPlayer.HighScore, &savedPlayer.CreatedAt, &savedPlayer.LastLoginAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Player{}, model.ErrUsernameTaken
		}
		return model.Player{}, fmt.Errorf("failed to create player: %w", err)
	}

	return savedPlayer, nil
}

func (r *PlayerRepository) UpdateLastLogin(ctx context.Context, username string, t time.Time) error {
	query := `UPDATE players SET last_login_at = $2 WHERE username = $1`

	tag, err := r.db.Exec(ctx, query, username, t)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// UpdateHighScore raises the stored high score to score if it is
// higher. The score only ever moves upward; a lower or equal score
// leaves the row untouched and returns false.
func (r *PlayerRepository) UpdateHighScore(ctx context.Context, username string, score int64) (bool, error) {
	query := `UPDATE players SET high_score = $2 WHERE username = $1 AND high_score < $2`

	tag, err := r.db.Exec(ctx, query, username, score)
	if err != nil {
		return false, fmt.Errorf("failed to update high score: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *PlayerRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	query := `SELECT username, high_score, last_login_at
			  FROM players ORDER BY high_score DESC, username ASC LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]model.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry model.LeaderboardEntry
		if err := rows.Scan(&entry.Username, &entry.HighScore, &entry.LastLoginAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard rows: %w", err)
	}

	return entries, nil
}
