package model

import (
	"context"
	"time"
)

// PlayerStore defines persistence operations for player records.
type PlayerStore interface {
	GetByUsername(ctx context.Context, username string) (Player, error)
	Create(ctx context.Context, player Player) (Player, error)
	UpdateLastLogin(ctx context.Context, username string, t time.Time) error
	UpdateHighScore(ctx context.Context, username string, score int64) (bool, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// Player represents a registered player. Username is the unique,
// case-sensitive key. PasswordDigest holds the salted hash, never the
// plaintext. PhotoKey references the enrollment photo in the blob store
// and is set once at enrollment.
type Player struct {
	Username       string
	PasswordDigest string
	PhotoKey       string
	HighScore      int64
	CreatedAt      time.Time
	LastLoginAt    time.Time
}

// LeaderboardEntry is a single row of the high-score table.
type LeaderboardEntry struct {
	Username    string
	HighScore   int64
	LastLoginAt time.Time
}
