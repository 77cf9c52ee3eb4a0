package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/facegate/facegate/internal/clock"
	"github.com/facegate/facegate/internal/credential"
	"github.com/facegate/facegate/internal/facerec"
	"github.com/facegate/facegate/internal/feedback"
	"github.com/facegate/facegate/internal/logger"
	"github.com/facegate/facegate/internal/model"
)

// DefaultLeaderboardLimit bounds the leaderboard query when the caller
// does not ask for a specific size.
const DefaultLeaderboardLimit = 10

// Auth implements the enrollment and verification workflows over the
// player directory, the photo blob store and the face engine.
type Auth struct {
	players model.PlayerStore
	blobs   model.BlobStore
	faces   model.FaceEngine
	matcher *facerec.Matcher
	hasher  *credential.Hasher
	ack     feedback.Acknowledger
	clock   clock.Clock
	logger  *logger.Logger
}

func NewAuth(
	players model.PlayerStore,
	blobs model.BlobStore,
	faces model.FaceEngine,
	matcher *facerec.Matcher,
	hasher *credential.Hasher,
	ack feedback.Acknowledger,
	clock clock.Clock,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		players: players,
		blobs:   blobs,
		faces:   faces,
		matcher: matcher,
		hasher:  hasher,
		ack:     ack,
		clock:   clock,
		logger:  logger,
	}
}

// Enroll registers a new player from a (username, password, photo)
// triple. The photo must contain at least one detectable face; it is
// stored verbatim as the player's reference image. The record and the
// blob either both exist afterwards or neither does: the blob is
// written first and deleted again if the record insert fails.
func (a *Auth) Enroll(ctx context.Context, username, password string, photo []byte) error {
	if username == "" || password == "" || len(photo) == 0 {
		return model.NewAuthError(model.FailureInvalidInput, fmt.Errorf("username, password and photo are required"))
	}

	a.logger.Debug("Auth service: starting enrollment", "username", username)

	_, err := a.players.GetByUsername(ctx, username)
	if err == nil {
		a.logger.Info("Auth service: username already exists", "username", username)
		return model.NewAuthError(model.FailureUsernameTaken, model.ErrUsernameTaken)
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get player by username",
			"username", username,
			"error", err.Error())
		return model.NewAuthError(model.FailureInfrastructure, fmt.Errorf("failed to get player by username: %w", err))
	}

	regions, err := a.faces.DetectFaces(photo)
	if err != nil {
		a.logger.Error("Auth service: face detection failed",
			"username", username,
			"error", err.Error())
		return model.NewAuthError(model.FailureInfrastructure, fmt.Errorf("failed to detect faces: %w", err))
	}
	if len(regions) == 0 {
		a.logger.Info("Auth service: no face detected in enrollment photo", "username", username)
		return model.NewAuthError(model.FailureNoFace, fmt.Errorf("no face detected in photo"))
	}

	photoKey := generatePhotoKey()
	if err := a.blobs.Upload(ctx, photoKey, bytes.NewReader(photo)); err != nil {
		a.logger.Error("Auth service: failed to store reference photo",
			"username", username,
			"photo_key", photoKey,
			"error", err.Error())
		return model.NewAuthError(model.FailureInfrastructure, fmt.Errorf("failed to store reference photo: %w", err))
	}

	now := a.clock.Now()
	player := model.Player{
		Username:       username,
		PasswordDigest: a.hasher.Hash(password),
		PhotoKey:       photoKey,
		HighScore:      0,
		CreatedAt:      now,
		LastLoginAt:    now,
	}

	if _, err := a.players.Create(ctx, player); err != nil {
		// The blob is already written; remove it so a failed insert
		// leaves no orphan. Losing the uniqueness race lands here too.
		if delErr := a.blobs.Delete(ctx, photoKey); delErr != nil {
			a.logger.Error("Auth service: failed to delete orphaned photo",
				"photo_key", photoKey,
				"error", delErr.Error())
		}
		if errors.Is(err, model.ErrUsernameTaken) {
			a.logger.Info("Auth service: username already exists", "username", username)
			return model.NewAuthError(model.FailureUsernameTaken, err)
		}
		a.logger.Error("Auth service: failed to create player",
			"username", username,
			"error", err.Error())
		return model.NewAuthError(model.FailureInfrastructure, fmt.Errorf("failed to create player: %w", err))
	}

	if err := a.ack.Ack(); err != nil {
		a.logger.Debug("Auth service: acknowledgment failed", "error", err.Error())
	}

	a.logger.Info("Auth service: registered new player", "username", username)

	return nil
}

// Verify authenticates a (username, password, photo) triple against
// the stored record. The credential check runs before any biometric
// work: the blob store and the matcher are never touched for unknown
// users or wrong passwords. On success the last-login timestamp is
// updated best-effort and the player record is returned.
func (a *Auth) Verify(ctx context.Context, username, password string, photo []byte) (model.Player, error) {
	if username == "" || password == "" || len(photo) == 0 {
		return model.Player{}, model.NewAuthError(model.FailureInvalidInput, fmt.Errorf("username, password and photo are required"))
	}

	a.logger.Debug("Auth service: starting verification", "username", username)

	player, err := a.players.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: player not found", "username", username)
		return model.Player{}, model.NewAuthError(model.FailurePlayerNotFound, err)
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get player by username",
			"username", username,
			"error", err.Error())
		return model.Player{}, model.NewAuthError(model.FailureInfrastructure, fmt.Errorf("failed to get player by username: %w", err))
	}

	if !a.hasher.Verify(password, player.PasswordDigest) {
		a.logger.Info("Auth service: password mismatch", "username", username)
		return model.Player{}, model.NewAuthError(model.FailurePasswordMismatch, fmt.Errorf("password mismatch"))
	}

	stored, err := a.fetchReferencePhoto(ctx, player.PhotoKey)
	if err != nil {
		a.logger.Error("Auth service: failed to fetch reference photo",
			"username", username,
			"photo_key", player.PhotoKey,
			"error", err.Error())
		return model.Player{}, model.NewAuthError(model.FailureInfrastructure, err)
	}

	storedDescriptors, err := a.faces.DescribeFaces(stored)
	if err != nil {
		a.logger.Error("Auth service: failed to describe reference photo",
			"username", username,
			"error", err.Error())
		return model.Player{}, model.NewAuthError(model.FailureInfrastructure, fmt.Errorf("failed to describe reference photo: %w", err))
	}
	liveDescriptors, err := a.faces.DescribeFaces(photo)
	if err != nil {
		a.logger.Error("Auth service: failed to describe live photo",
			"username", username,
			"error", err.Error())
		return model.Player{}, model.NewAuthError(model.FailureInfrastructure, fmt.Errorf("failed to describe live photo: %w", err))
	}
	if len(storedDescriptors) == 0 || len(liveDescriptors) == 0 {
		a.logger.Info("Auth service: could not extract face descriptors", "username", username)
		return model.Player{}, model.NewAuthError(model.FailureNoDescriptor, fmt.Errorf("could not extract face descriptors"))
	}

	// Multiple faces in a frame are not disambiguated: the first
	// detected face on each side decides the outcome.
	if !a.matcher.Match(storedDescriptors[0], liveDescriptors[0]) {
		a.logger.Info("Auth service: face mismatch", "username", username)
		return model.Player{}, model.NewAuthError(model.FailureFaceMismatch, fmt.Errorf("face mismatch"))
	}

	now := a.clock.Now()
	if err := a.players.UpdateLastLogin(ctx, username, now); err != nil {
		// The login already succeeded; a failed timestamp write is
		// diagnostic only.
		a.logger.Error("Auth service: failed to update last login",
			"username", username,
			"error", err.Error())
	} else {
		player.LastLoginAt = now
	}

	if err := a.ack.Ack(); err != nil {
		a.logger.Debug("Auth service: acknowledgment failed", "error", err.Error())
	}

	a.logger.Info("Auth service: login successful", "username", username)

	return player, nil
}

// GetPlayer returns the record for username.
func (a *Auth) GetPlayer(ctx context.Context, username string) (model.Player, error) {
	player, err := a.players.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Player{}, model.ErrNotFound
		}
		return model.Player{}, fmt.Errorf("failed to get player by username: %w", err)
	}
	return player, nil
}

// UpdateHighScore raises the player's high score to score if higher.
// Returns whether the stored score changed.
func (a *Auth) UpdateHighScore(ctx context.Context, username string, score int64) (bool, error) {
	updated, err := a.players.UpdateHighScore(ctx, username, score)
	if err != nil {
		return false, fmt.Errorf("failed to update high score: %w", err)
	}
	if updated {
		a.logger.Info("Auth service: high score updated", "username", username, "score", score)
	}
	return updated, nil
}

// Leaderboard returns the top players by high score.
func (a *Auth) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	entries, err := a.players.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

func (a *Auth) fetchReferencePhoto(ctx context.Context, photoKey string) ([]byte, error) {
	reader, err := a.blobs.Download(ctx, photoKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download reference photo: %w", err)
	}
	defer reader.Close()

	photo, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference photo: %w", err)
	}

	return photo, nil
}

func generatePhotoKey() string {
	return fmt.Sprintf("players/%s_photo.jpg", uuid.New().String())
}
