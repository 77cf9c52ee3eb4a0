package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/facegate/facegate/internal/credential"
	"github.com/facegate/facegate/internal/facerec"
	"github.com/facegate/facegate/internal/feedback"
	"github.com/facegate/facegate/internal/mocks"
	"github.com/facegate/facegate/internal/model"
	"github.com/facegate/facegate/internal/testutil"
)

var (
	photoA = []byte("jpeg-photo-alice")
	photoB = []byte("jpeg-photo-other-person")

	oneFace = []image.Rectangle{image.Rect(10, 10, 90, 90)}
)

// descriptorAt builds a descriptor whose first component is v; all
// distances in these tests come from that single component.
func descriptorAt(v float32) model.Descriptor {
	var d model.Descriptor
	d[0] = v
	return d
}

type authFixture struct {
	players *mocks.PlayerStore
	blobs   *mocks.BlobStore
	faces   *mocks.FaceEngine
	clock   *mocks.Clock
	hasher  *credential.Hasher
	auth    *Auth
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		players: &mocks.PlayerStore{},
		blobs:   &mocks.BlobStore{},
		faces:   &mocks.FaceEngine{},
		clock:   mocks.NewClock(time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)),
		hasher:  credential.NewHasher("test_salt"),
	}
	f.auth = NewAuth(
		f.players,
		f.blobs,
		f.faces,
		facerec.NewMatcher(0.6),
		f.hasher,
		feedback.NewNoop(),
		f.clock,
		testutil.MakeNoopLogger(),
	)
	return f
}

func (f *authFixture) storedAlice() model.Player {
	return model.Player{
		Username:       "alice",
		PasswordDigest: f.hasher.Hash("pw123"),
		PhotoKey:       "players/ref_photo.jpg",
		HighScore:      0,
		CreatedAt:      f.clock.CurrentTime.Add(-time.Hour),
		LastLoginAt:    f.clock.CurrentTime.Add(-time.Hour),
	}
}

func (f *authFixture) expectReferenceDownload(photo []byte) {
	f.blobs.On("Download", mock.Anything, "players/ref_photo.jpg").
		Return(io.NopCloser(bytes.NewReader(photo)), nil)
}

func TestAuth_Enroll_Success(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "alice").Return(model.Player{}, model.ErrNotFound)
	f.faces.On("DetectFaces", photoA).Return(oneFace, nil)
	f.blobs.On("Upload", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	var created model.Player
	f.players.On("Create", mock.Anything, mock.AnythingOfType("model.Player")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(model.Player)
		}).
		Return(model.Player{Username: "alice"}, nil)

	require.NoError(t, f.auth.Enroll(ctx, "alice", "pw123", photoA))

	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, f.hasher.Hash("pw123"), created.PasswordDigest)
	assert.Equal(t, int64(0), created.HighScore)
	assert.Equal(t, f.clock.CurrentTime, created.CreatedAt)
	assert.Equal(t, f.clock.CurrentTime, created.LastLoginAt)
	assert.NotEmpty(t, created.PhotoKey)
	f.blobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAuth_Enroll_InvalidInput(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		photo    []byte
	}{
		{name: "empty username", username: "", password: "pw123", photo: photoA},
		{name: "empty password", username: "alice", password: "", photo: photoA},
		{name: "nil photo", username: "alice", password: "pw123", photo: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)

			err := f.auth.Enroll(ctx, tt.username, tt.password, tt.photo)
			require.Error(t, err)
			assert.Equal(t, model.FailureInvalidInput, model.FailureKindOf(err))

			// Rejected before any I/O.
			f.players.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
			f.faces.AssertNotCalled(t, "DetectFaces", mock.Anything)
			f.blobs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuth_Enroll_UsernameExists(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "alice").Return(f.storedAlice(), nil)

	err := f.auth.Enroll(ctx, "alice", "completely-valid-pw", photoB)
	require.Error(t, err)
	assert.Equal(t, model.FailureUsernameTaken, model.FailureKindOf(err))

	f.faces.AssertNotCalled(t, "DetectFaces", mock.Anything)
	f.blobs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	f.players.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuth_Enroll_NoFaceDetected(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "bob").Return(model.Player{}, model.ErrNotFound)
	f.faces.On("DetectFaces", photoA).Return([]image.Rectangle{}, nil)

	err := f.auth.Enroll(ctx, "bob", "pw123", photoA)
	require.Error(t, err)
	assert.Equal(t, model.FailureNoFace, model.FailureKindOf(err))

	f.blobs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	f.players.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuth_Enroll_UploadFailure_NoRecordCreated(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "bob").Return(model.Player{}, model.ErrNotFound)
	f.faces.On("DetectFaces", photoA).Return(oneFace, nil)
	f.blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	err := f.auth.Enroll(ctx, "bob", "pw123", photoA)
	require.Error(t, err)
	assert.Equal(t, model.FailureInfrastructure, model.FailureKindOf(err))

	f.players.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuth_Enroll_InsertRace_DeletesOrphanedBlob(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "alice").Return(model.Player{}, model.ErrNotFound)
	f.faces.On("DetectFaces", photoA).Return(oneFace, nil)

	var uploadedKey string
	f.blobs.On("Upload", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			uploadedKey = args.String(1)
		}).
		Return(nil)
	f.players.On("Create", mock.Anything, mock.Anything).Return(model.Player{}, model.ErrUsernameTaken)
	f.blobs.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	err := f.auth.Enroll(ctx, "alice", "pw123", photoA)
	require.Error(t, err)
	assert.Equal(t, model.FailureUsernameTaken, model.FailureKindOf(err))

	f.blobs.AssertCalled(t, "Delete", mock.Anything, uploadedKey)
}

func TestAuth_Verify_Success_UpdatesLastLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	before := f.clock.CurrentTime
	f.players.On("GetByUsername", mock.Anything, "alice").Return(f.storedAlice(), nil)
	f.expectReferenceDownload(photoA)
	f.faces.On("DescribeFaces", photoA).Return([]model.Descriptor{descriptorAt(0)}, nil)
	f.players.On("UpdateLastLogin", mock.Anything, "alice", before).Return(nil)

	player, err := f.auth.Verify(ctx, "alice", "pw123", photoA)
	require.NoError(t, err)

	assert.Equal(t, "alice", player.Username)
	assert.False(t, player.LastLoginAt.Before(before))
	f.players.AssertCalled(t, "UpdateLastLogin", mock.Anything, "alice", before)
}

func TestAuth_Verify_WrongPassword_NeverRunsBiometrics(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "alice").Return(f.storedAlice(), nil)

	_, err := f.auth.Verify(ctx, "alice", "wrongpw", photoA)
	require.Error(t, err)
	assert.Equal(t, model.FailurePasswordMismatch, model.FailureKindOf(err))

	f.blobs.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
	f.faces.AssertNotCalled(t, "DescribeFaces", mock.Anything)
	f.players.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuth_Verify_UnknownUser_NoBlobFetch(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "ghost").Return(model.Player{}, model.ErrNotFound)

	_, err := f.auth.Verify(ctx, "ghost", "pw123", photoA)
	require.Error(t, err)
	assert.Equal(t, model.FailurePlayerNotFound, model.FailureKindOf(err))

	f.blobs.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
}

func TestAuth_Verify_NoDescriptorInLivePhoto(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "alice").Return(f.storedAlice(), nil)
	f.expectReferenceDownload(photoA)
	f.faces.On("DescribeFaces", photoA).Return([]model.Descriptor{descriptorAt(0)}, nil)
	f.faces.On("DescribeFaces", photoB).Return([]model.Descriptor{}, nil)

	_, err := f.auth.Verify(ctx, "alice", "pw123", photoB)
	require.Error(t, err)
	assert.Equal(t, model.FailureNoDescriptor, model.FailureKindOf(err))

	f.players.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuth_Verify_FaceMismatch(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "alice").Return(f.storedAlice(), nil)
	f.expectReferenceDownload(photoA)
	f.faces.On("DescribeFaces", photoA).Return([]model.Descriptor{descriptorAt(0)}, nil)
	f.faces.On("DescribeFaces", photoB).Return([]model.Descriptor{descriptorAt(1)}, nil)

	_, err := f.auth.Verify(ctx, "alice", "pw123", photoB)
	require.Error(t, err)
	assert.Equal(t, model.FailureFaceMismatch, model.FailureKindOf(err))

	f.players.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuth_Verify_LastLoginWriteFailure_StillSucceeds(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	stored := f.storedAlice()
	f.players.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
	f.expectReferenceDownload(photoA)
	f.faces.On("DescribeFaces", photoA).Return([]model.Descriptor{descriptorAt(0)}, nil)
	f.players.On("UpdateLastLogin", mock.Anything, "alice", mock.Anything).Return(errors.New("connection lost"))

	player, err := f.auth.Verify(ctx, "alice", "pw123", photoA)
	require.NoError(t, err)
	assert.Equal(t, stored.LastLoginAt, player.LastLoginAt)
}

func TestAuth_Verify_BlobFetchFailure(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "alice").Return(f.storedAlice(), nil)
	f.blobs.On("Download", mock.Anything, "players/ref_photo.jpg").Return(nil, errors.New("NoSuchKey"))

	_, err := f.auth.Verify(ctx, "alice", "pw123", photoA)
	require.Error(t, err)
	assert.Equal(t, model.FailureInfrastructure, model.FailureKindOf(err))
}

func TestAuth_Verify_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "alice").Return(f.storedAlice(), nil)
	f.blobs.On("Download", mock.Anything, "players/ref_photo.jpg").
		Return(io.NopCloser(bytes.NewReader(photoA)), nil).Once()
	f.blobs.On("Download", mock.Anything, "players/ref_photo.jpg").
		Return(io.NopCloser(bytes.NewReader(photoA)), nil).Once()
	f.faces.On("DescribeFaces", photoA).Return([]model.Descriptor{descriptorAt(0)}, nil)
	f.players.On("UpdateLastLogin", mock.Anything, "alice", mock.Anything).Return(nil)

	_, err := f.auth.Verify(ctx, "alice", "pw123", photoA)
	require.NoError(t, err)
	_, err = f.auth.Verify(ctx, "alice", "pw123", photoA)
	require.NoError(t, err)

	f.players.AssertNotCalled(t, "UpdateHighScore", mock.Anything, mock.Anything, mock.Anything)
}

// Full scenario: enroll alice, self-match succeeds, wrong password
// fails, another person's photo fails.
func TestAuth_EnrollThenVerifyScenario(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "alice").
		Return(model.Player{}, model.ErrNotFound).Once()
	f.faces.On("DetectFaces", photoA).Return(oneFace, nil)

	var photoKey string
	f.blobs.On("Upload", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			photoKey = args.String(1)
		}).
		Return(nil)

	var stored model.Player
	f.players.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(model.Player)
		}).
		Return(model.Player{}, nil)

	require.NoError(t, f.auth.Enroll(ctx, "alice", "pw123", photoA))

	f.players.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
	f.blobs.On("Download", mock.Anything, photoKey).
		Return(io.NopCloser(bytes.NewReader(photoA)), nil).Once()
	f.blobs.On("Download", mock.Anything, photoKey).
		Return(io.NopCloser(bytes.NewReader(photoA)), nil).Once()
	f.faces.On("DescribeFaces", photoA).Return([]model.Descriptor{descriptorAt(0)}, nil)
	f.faces.On("DescribeFaces", photoB).Return([]model.Descriptor{descriptorAt(1)}, nil)
	f.players.On("UpdateLastLogin", mock.Anything, "alice", mock.Anything).Return(nil)

	_, err := f.auth.Verify(ctx, "alice", "pw123", photoA)
	assert.NoError(t, err, "self-match must succeed")

	_, err = f.auth.Verify(ctx, "alice", "wrongpw", photoA)
	assert.Equal(t, model.FailurePasswordMismatch, model.FailureKindOf(err))

	_, err = f.auth.Verify(ctx, "alice", "pw123", photoB)
	assert.Equal(t, model.FailureFaceMismatch, model.FailureKindOf(err))
}

func TestAuth_UpdateHighScore(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("UpdateHighScore", mock.Anything, "alice", int64(4200)).Return(true, nil)

	updated, err := f.auth.UpdateHighScore(ctx, "alice", 4200)
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestAuth_Leaderboard_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("Leaderboard", mock.Anything, DefaultLeaderboardLimit).
		Return([]model.LeaderboardEntry{{Username: "alice", HighScore: 4200}}, nil)

	entries, err := f.auth.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Username)
}

func TestAuth_GetPlayer_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	f.players.On("GetByUsername", mock.Anything, "ghost").Return(model.Player{}, model.ErrNotFound)

	_, err := f.auth.GetPlayer(ctx, "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
