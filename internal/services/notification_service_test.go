package services_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notificationEnv struct {
	store         *repositories.Store
	fx            *testutil.Fixtures
	follows       *services.FollowService
	groups        *services.GroupService
	notifications *services.NotificationService
}

func setupNotifications(t *testing.T) *notificationEnv {
	store := testutil.NewStore(t)
	follows := services.NewFollowService(store, nil)
	groups := services.NewGroupService(store)
	return &notificationEnv{
		store:         store,
		fx:            testutil.NewFixtures(t, store),
		follows:       follows,
		groups:        groups,
		notifications: services.NewNotificationService(store, follows, groups),
	}
}

func ptr[T any](v T) *T { return &v }

func TestNotificationService_Create(t *testing.T) {
	ctx := context.Background()
	env := setupNotifications(t)
	bob := env.fx.CreateUser(false, "")

	_, err := env.notifications.Create(ctx, services.NotificationInput{Type: models.NotificationComment})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	_, err = env.notifications.Create(ctx, services.NotificationInput{RecipientUserID: bob.ID, Type: "poke"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	n, err := env.notifications.Create(ctx, services.NotificationInput{RecipientUserID: bob.ID, Type: models.NotificationComment, Message: ptr("hi")})
	require.NoError(t, err)
	assert.NotZero(t, n.ID)
	assert.False(t, n.Date.IsZero())
}

func TestNotificationService_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	env := setupNotifications(t)
	bob := env.fx.CreateUser(false, "")

	old := &models.Notification{RecipientUserID: bob.ID, Type: models.NotificationComment, Date: time.Now().UTC().Add(-48 * time.Hour)}
	recent := &models.Notification{RecipientUserID: bob.ID, Type: models.NotificationReaction, Date: time.Now().UTC().Add(-time.Minute)}
	require.NoError(t, env.store.Notifications.CreateNotification(ctx, recent))
	require.NoError(t, env.store.Notifications.CreateNotification(ctx, old))

	list, err := env.notifications.ListFor(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, recent.ID, list[0].ID)
	assert.Equal(t, old.ID, list[1].ID)

	page, total, err := env.notifications.Page(ctx, bob.ID, 2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, old.ID, page[0].ID)

	count, err := env.notifications.Count(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestNotificationService_Consume(t *testing.T) {
	ctx := context.Background()
	env := setupNotifications(t)
	bob, eve := env.fx.CreateUser(false, ""), env.fx.CreateUser(false, models.RoleAdmin)

	n, err := env.notifications.Create(ctx, services.NotificationInput{RecipientUserID: bob.ID, Type: models.NotificationReaction})
	require.NoError(t, err)

	err = env.notifications.Consume(ctx, actorOf(eve), n.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	require.NoError(t, env.notifications.Consume(ctx, actorOf(bob), n.ID))

	err = env.notifications.Consume(ctx, actorOf(bob), n.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestNotificationService_AcceptFollow(t *testing.T) {
	ctx := context.Background()
	env := setupNotifications(t)
	alice, bob := env.fx.CreateUser(false, ""), env.fx.CreateUser(true, "")

	_, err := env.follows.Request(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	notes := notificationsFor(t, env.store, bob.ID)
	require.Len(t, notes, 1)

	_, err = env.notifications.Accept(ctx, actorOf(alice), notes[0].ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	outcome, err := env.notifications.Accept(ctx, actorOf(bob), notes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationFollow, outcome.Type)
	require.NotNil(t, outcome.Follow)
	assert.Equal(t, models.FollowStatusAccepted, outcome.Follow.Status)

	count, err := env.follows.FollowersCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Empty(t, notificationsFor(t, env.store, bob.ID))
}

func TestNotificationService_AcceptFollowWithoutEdge(t *testing.T) {
	ctx := context.Background()
	env := setupNotifications(t)
	alice, bob := env.fx.CreateUser(false, ""), env.fx.CreateUser(true, "")

	n, err := env.notifications.Create(ctx, services.NotificationInput{RecipientUserID: bob.ID, Type: models.NotificationFollow, ActorUserID: &alice.ID})
	require.NoError(t, err)

	_, err = env.notifications.Accept(ctx, actorOf(bob), n.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.Len(t, notificationsFor(t, env.store, bob.ID), 1)
}

func TestNotificationService_AcceptGroupRequest(t *testing.T) {
	ctx := context.Background()
	env := setupNotifications(t)
	owner, applicant := env.fx.CreateUser(false, ""), env.fx.CreateUser(false, "")
	group := env.fx.CreateGroup(owner, false)

	_, err := env.groups.Join(ctx, actorOf(applicant), group.ID)
	require.NoError(t, err)
	notes := notificationsFor(t, env.store, owner.ID)
	require.Len(t, notes, 1)

	outcome, err := env.notifications.Accept(ctx, actorOf(owner), notes[0].ID)
	require.NoError(t, err)
	require.NotNil(t, outcome.Membership)
	assert.Equal(t, models.MembershipAccepted, outcome.Membership.Status)
	assert.Empty(t, notificationsFor(t, env.store, owner.ID))
}

func TestNotificationService_AcceptGroupRequestReauthorizes(t *testing.T) {
	ctx := context.Background()
	env := setupNotifications(t)
	owner, member, applicant := env.fx.CreateUser(false, ""), env.fx.CreateUser(false, ""), env.fx.CreateUser(false, "")
	group := env.fx.CreateGroup(owner, false)
	env.fx.AddMember(group, member, models.MembershipAccepted, false)
	env.fx.AddMember(group, applicant, models.MembershipPending, false)

	n, err := env.notifications.Create(ctx, services.NotificationInput{
		RecipientUserID: member.ID,
		Type:            models.NotificationGroupRequest,
		ActorUserID:     &applicant.ID,
		ReferenceID:     ptr(strconv.FormatUint(uint64(group.ID), 10)),
	})
	require.NoError(t, err)

	_, err = env.notifications.Accept(ctx, actorOf(member), n.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	membership, err := env.store.Memberships.GetMembership(ctx, group.ID, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipPending, membership.Status)
}

func TestNotificationService_AcceptInvalid(t *testing.T) {
	ctx := context.Background()
	env := setupNotifications(t)
	owner, applicant := env.fx.CreateUser(false, ""), env.fx.CreateUser(false, "")

	bad, err := env.notifications.Create(ctx, services.NotificationInput{
		RecipientUserID: owner.ID,
		Type:            models.NotificationGroupRequest,
		ActorUserID:     &applicant.ID,
		ReferenceID:     ptr("not-a-number"),
	})
	require.NoError(t, err)
	_, err = env.notifications.Accept(ctx, actorOf(owner), bad.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	comment, err := env.notifications.Create(ctx, services.NotificationInput{RecipientUserID: owner.ID, Type: models.NotificationComment})
	require.NoError(t, err)
	_, err = env.notifications.Accept(ctx, actorOf(owner), comment.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	_, err = env.notifications.Accept(ctx, actorOf(owner), 9999)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestNotificationService_Grouped(t *testing.T) {
	ctx := context.Background()
	env := setupNotifications(t)
	bob := env.fx.CreateUser(false, "")

	now := time.Now().UTC()
	for _, date := range []time.Time{now, now.AddDate(0, 0, -30)} {
		require.NoError(t, env.store.Notifications.CreateNotification(ctx, &models.Notification{
			RecipientUserID: bob.ID,
			Type:            models.NotificationReaction,
			Date:            date,
		}))
	}

	grouped, err := env.notifications.Grouped(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, grouped.Today, 1)
	assert.Len(t, grouped.Older, 1)
}
