package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/authz"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_Show(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	fx := testutil.NewFixtures(t, store)
	follows := services.NewFollowService(store, nil)
	svc := services.NewProfileService(store, follows)

	owner := fx.CreateUser(true, "")
	follower, requester, stranger := fx.CreateUser(false, ""), fx.CreateUser(false, ""), fx.CreateUser(false, "")
	admin := fx.CreateUser(false, models.RoleAdmin)
	fx.Follow(follower, owner, models.FollowStatusAccepted)
	fx.Follow(requester, owner, models.FollowStatusPending)
	fx.CreatePost(owner, nil)

	tests := []struct {
		name      string
		viewer    authz.Actor
		showPosts bool
		following bool
		pending   bool
		followBtn bool
		isCurrent bool
		wantPosts int
	}{
		{"owner", actorOf(owner), true, false, false, false, true, 1},
		{"accepted follower", actorOf(follower), true, true, false, false, false, 1},
		{"pending requester", actorOf(requester), false, false, true, false, false, 0},
		{"stranger", actorOf(stranger), false, false, false, true, false, 0},
		{"admin", actorOf(admin), true, false, false, true, false, 1},
		{"anonymous", authz.Anonymous, false, false, false, false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.Show(ctx, tt.viewer, owner.Username)
			require.NoError(t, err)
			assert.Equal(t, tt.showPosts, view.ShowPosts)
			assert.Equal(t, tt.following, view.IsFollowing)
			assert.Equal(t, tt.pending, view.IsPending)
			assert.Equal(t, tt.followBtn, view.ShowFollowButton)
			assert.Equal(t, tt.isCurrent, view.IsCurrentUser)
			assert.Len(t, view.Posts, tt.wantPosts)
			assert.EqualValues(t, 1, view.FollowersCount)
		})
	}

	_, err := svc.Show(ctx, authz.Anonymous, "nobody")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestProfileService_UpdateAndSearch(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	fx := testutil.NewFixtures(t, store)
	svc := services.NewProfileService(store, services.NewFollowService(store, nil))
	user := fx.CreateUser(false, "")

	bio := "<img src=x onerror=alert(1)>loves go"
	private := true
	updated, err := svc.Update(ctx, actorOf(user), services.UpdateProfileInput{Bio: &bio, IsPrivate: &private})
	require.NoError(t, err)
	assert.Equal(t, "loves go", updated.Bio)
	assert.True(t, updated.Private())

	_, err = svc.Update(ctx, authz.Anonymous, services.UpdateProfileInput{Bio: &bio})
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))

	found, err := svc.Search(ctx, "user")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	none, err := svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.Search(ctx, strings.Repeat("a", 65))
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}
