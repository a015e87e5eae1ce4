package services_test

import (
	"context"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupFollows(t *testing.T) (*services.FollowService, *repositories.Store, *testutil.Fixtures) {
	store := testutil.NewStore(t)
	return services.NewFollowService(store, nil), store, testutil.NewFixtures(t, store)
}

func notificationsFor(t *testing.T, store *repositories.Store, userID uint) []models.Notification {
	t.Helper()
	list, err := store.Notifications.ListByRecipient(context.Background(), userID)
	require.NoError(t, err)
	return list
}

func TestFollowService_Request(t *testing.T) {
	ctx := context.Background()

	t.Run("public target is followed at once", func(t *testing.T) {
		svc, store, fx := setupFollows(t)
		alice, bob := fx.CreateUser(false, ""), fx.CreateUser(false, "")

		outcome, err := svc.Request(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, models.FollowStatusAccepted, outcome.Status)
		assert.True(t, outcome.Created)
		assert.Empty(t, notificationsFor(t, store, bob.ID))

		follow, err := store.Follows.GetFollow(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.NotNil(t, follow.RespondedAt)

		count, err := svc.FollowersCount(ctx, bob.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("private target gets a pending request and one notification", func(t *testing.T) {
		svc, store, fx := setupFollows(t)
		alice, bob := fx.CreateUser(false, ""), fx.CreateUser(true, "")

		outcome, err := svc.Request(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, models.FollowStatusPending, outcome.Status)

		notes := notificationsFor(t, store, bob.ID)
		require.Len(t, notes, 1)
		assert.Equal(t, models.NotificationFollow, notes[0].Type)
		require.NotNil(t, notes[0].ActorUserID)
		assert.Equal(t, alice.ID, *notes[0].ActorUserID)
		assert.Equal(t, alice.Username+" wants to follow you.", *notes[0].Message)

		count, err := svc.FollowersCount(ctx, bob.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("repeated request is idempotent", func(t *testing.T) {
		svc, store, fx := setupFollows(t)
		alice, bob := fx.CreateUser(false, ""), fx.CreateUser(true, "")

		_, err := svc.Request(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		again, err := svc.Request(ctx, alice.ID, bob.ID)
		require.NoError(t, err)

		assert.Equal(t, models.FollowStatusPending, again.Status)
		assert.False(t, again.Created)
		assert.Len(t, notificationsFor(t, store, bob.ID), 1)
	})

	t.Run("self follow is rejected", func(t *testing.T) {
		svc, _, fx := setupFollows(t)
		alice := fx.CreateUser(false, "")

		_, err := svc.Request(ctx, alice.ID, alice.ID)
		assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
	})

	t.Run("unknown target", func(t *testing.T) {
		svc, _, fx := setupFollows(t)
		alice := fx.CreateUser(false, "")

		_, err := svc.Request(ctx, alice.ID, 9999)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})
}

func TestFollowService_Accept(t *testing.T) {
	ctx := context.Background()
	svc, store, fx := setupFollows(t)
	alice, bob := fx.CreateUser(false, ""), fx.CreateUser(true, "")

	_, err := svc.Request(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	follow, err := svc.Accept(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusAccepted, follow.Status)
	assert.NotNil(t, follow.RespondedAt)
	assert.Empty(t, notificationsFor(t, store, bob.ID))

	status, err := svc.Status(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusAccepted, status)

	_, err = svc.Accept(ctx, bob.ID, alice.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))

	_, err = svc.Accept(ctx, alice.ID, bob.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestFollowService_Reject(t *testing.T) {
	ctx := context.Background()
	svc, store, fx := setupFollows(t)
	alice, bob, carol := fx.CreateUser(false, ""), fx.CreateUser(true, ""), fx.CreateUser(false, "")

	_, err := svc.Request(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, bob.ID, alice.ID))
	assert.Empty(t, notificationsFor(t, store, bob.ID))

	status, err := svc.Status(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusNone, status)

	err = svc.Reject(ctx, bob.ID, alice.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	fx.Follow(carol, bob, models.FollowStatusAccepted)
	err = svc.Reject(ctx, bob.ID, carol.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
}

func TestFollowService_UnfollowAndRemove(t *testing.T) {
	ctx := context.Background()
	svc, store, fx := setupFollows(t)
	alice, bob, carol := fx.CreateUser(false, ""), fx.CreateUser(true, ""), fx.CreateUser(false, "")

	t.Run("unfollow cancels a pending request", func(t *testing.T) {
		_, err := svc.Request(ctx, alice.ID, bob.ID)
		require.NoError(t, err)

		require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
		assert.Empty(t, notificationsFor(t, store, bob.ID))

		err = svc.Unfollow(ctx, alice.ID, bob.ID)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})

	t.Run("remove follower", func(t *testing.T) {
		fx.Follow(carol, bob, models.FollowStatusAccepted)

		followers, err := svc.Followers(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, followers, 1)
		assert.Equal(t, carol.ID, followers[0].ID)

		require.NoError(t, svc.RemoveFollower(ctx, bob.ID, carol.ID))

		count, err := svc.FollowersCount(ctx, bob.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("remove follower leaves pending requests to reject", func(t *testing.T) {
		_, err := svc.Request(ctx, alice.ID, bob.ID)
		require.NoError(t, err)

		err = svc.RemoveFollower(ctx, bob.ID, alice.ID)
		assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
		status, err := svc.Status(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, models.FollowStatusPending, status)
		assert.Len(t, notificationsFor(t, store, bob.ID), 1)

		require.NoError(t, svc.Reject(ctx, bob.ID, alice.ID))
		err = svc.RemoveFollower(ctx, bob.ID, alice.ID)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})

	t.Run("self", func(t *testing.T) {
		assert.True(t, apperrors.Is(svc.Unfollow(ctx, alice.ID, alice.ID), apperrors.CodeValidationFailed))
		assert.True(t, apperrors.Is(svc.RemoveFollower(ctx, alice.ID, alice.ID), apperrors.CodeValidationFailed))
	})
}

func TestFollowService_PendingRequests(t *testing.T) {
	ctx := context.Background()
	svc, _, fx := setupFollows(t)
	bob := fx.CreateUser(true, "")
	alice, carol := fx.CreateUser(false, ""), fx.CreateUser(false, "")

	_, err := svc.Request(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	fx.Follow(carol, bob, models.FollowStatusAccepted)

	pending, err := svc.PendingRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, alice.ID, pending[0].FollowerID)
	require.NotNil(t, pending[0].Follower)
	assert.Equal(t, alice.Username, pending[0].Follower.Username)

	following, err := svc.FollowingCount(ctx, carol.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, following)
}

// lateFollows misses the edge on its first lookup, as when a concurrent
// request inserts it right after this one checked.
type lateFollows struct {
	repositories.FollowRepository
	looked bool
}

func (l *lateFollows) GetFollow(ctx context.Context, followerID, followeeID uint) (*models.Follow, error) {
	if !l.looked {
		l.looked = true
		return nil, gorm.ErrRecordNotFound
	}
	return l.FollowRepository.GetFollow(ctx, followerID, followeeID)
}

func TestFollowService_RequestLosesInsertRace(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name     string
		private  bool
		existing models.FollowStatus
	}{
		{"private followee with pending edge", true, models.FollowStatusPending},
		{"public followee with accepted edge", false, models.FollowStatusAccepted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, fx := setupFollows(t)
			alice, bob := fx.CreateUser(false, ""), fx.CreateUser(tc.private, "")
			fx.Follow(alice, bob, tc.existing)
			store.OnTransaction = func(tx *repositories.Store) {
				tx.Follows = &lateFollows{FollowRepository: tx.Follows}
			}

			out, err := svc.Request(ctx, alice.ID, bob.ID)
			require.NoError(t, err)
			assert.False(t, out.Created)
			assert.Equal(t, tc.existing, out.Status)

			assert.EqualValues(t, 1, countRows(t, store, &models.Follow{}))
			assert.Empty(t, notificationsFor(t, store, bob.ID))
		})
	}
}
