package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/facegate/facegate/internal/model"
)

var _ model.PlayerStore = (*PlayerStore)(nil)

// PlayerStore is a testify mock of model.PlayerStore.
type PlayerStore struct {
	mock.Mock
}

func (m *PlayerStore) GetByUsername(ctx context.Context, username string) (model.Player, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.Player), args.Error(1)
}

func (m *PlayerStore) Create(ctx context.Context, player model.Player) (model.Player, error) {
	args := m.Called(ctx, player)
	return args.Get(0).(model.Player), args.Error(1)
}

func (m *PlayerStore) UpdateLastLogin(ctx context.Context, username string, t time.Time) error {
	args := m.Called(ctx, username, t)
	return args.Error(0)
}

func (m *PlayerStore) UpdateHighScore(ctx context.Context, username string, score int64) (bool, error) {
	args := m.Called(ctx, username, score)
	return args.Bool(0), args.Error(1)
}

func (m *PlayerStore) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LeaderboardEntry), args.Error(1)
}
