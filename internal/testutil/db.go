// Package testutil provides an in-memory database and fixtures for service
// and handler tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every model migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// NewStore is NewDB wrapped in a repositories.Store.
func NewStore(t *testing.T) *repositories.Store {
	return repositories.NewStore(NewDB(t))
}

// Fixtures creates rows directly through the repositories.
type Fixtures struct {
	t     *testing.T
	store *repositories.Store
	seq   int
}

func NewFixtures(t *testing.T, store *repositories.Store) *Fixtures {
	return &Fixtures{t: t, store: store}
}

func (f *Fixtures) CreateUser(private bool, role string) *models.User {
	f.t.Helper()
	f.seq++
	if role == "" {
		role = models.RoleUser
	}
	user := &models.User{
		Username:    fmt.Sprintf("user%d", f.seq),
		Email:       fmt.Sprintf("user%d@example.com", f.seq),
		DisplayName: fmt.Sprintf("User %d", f.seq),
		IsPrivate:   &private,
		Role:        role,
	}
	require.NoError(f.t, f.store.Users.CreateUser(context.Background(), user))
	return user
}

// CreateGroup inserts a group and its owner as an accepted moderator.
func (f *Fixtures) CreateGroup(owner *models.User, public bool) *models.Group {
	f.t.Helper()
	f.seq++
	ctx := context.Background()
	group := &models.Group{
		Name:        fmt.Sprintf("group %d", f.seq),
		OwnerUserID: owner.ID,
		IsPublic:    public,
	}
	require.NoError(f.t, f.store.Groups.CreateGroup(ctx, group))
	require.NoError(f.t, f.store.Memberships.CreateMembership(ctx, &models.GroupMembership{
		GroupID:     group.ID,
		UserID:      owner.ID,
		Status:      models.MembershipAccepted,
		IsModerator: true,
		JoinDate:    time.Now().UTC(),
	}))
	return group
}

// AddMember inserts a membership row with the given status.
func (f *Fixtures) AddMember(group *models.Group, user *models.User, status models.MembershipStatus, moderator bool) {
	f.t.Helper()
	require.NoError(f.t, f.store.Memberships.CreateMembership(context.Background(), &models.GroupMembership{
		GroupID:     group.ID,
		UserID:      user.ID,
		Status:      status,
		IsModerator: moderator,
		JoinDate:    time.Now().UTC(),
	}))
}

func (f *Fixtures) CreatePost(author *models.User, groupID *uint) *models.Post {
	f.t.Helper()
	f.seq++
	post := &models.Post{
		UserID:  author.ID,
		GroupID: groupID,
		Title:   fmt.Sprintf("post %d", f.seq),
		Content: "hello world",
	}
	require.NoError(f.t, f.store.Posts.CreatePost(context.Background(), post))
	return post
}

func (f *Fixtures) Follow(follower, followee *models.User, status models.FollowStatus) {
	f.t.Helper()
	require.NoError(f.t, f.store.Follows.CreateFollow(context.Background(), &models.Follow{
		FollowerID:  follower.ID,
		FolloweeID:  followee.ID,
		Status:      status,
		RequestedAt: time.Now().UTC(),
	}))
}
