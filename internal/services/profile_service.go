package services

import (
	"context"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/authz"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/policy"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/security"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
)

const (
	profilePostLimit = 20
	searchLimit      = 20
)

// ProfileView is a user's profile as seen by a particular viewer.
type ProfileView struct {
	User             *models.User  `json:"user"`
	FollowersCount   int64         `json:"followers_count"`
	FollowingCount   int64         `json:"following_count"`
	IsCurrentUser    bool          `json:"is_current_user"`
	IsFollowing      bool          `json:"is_following"`
	IsPending        bool          `json:"is_pending"`
	ShowFollowButton bool          `json:"show_follow_button"`
	ShowPosts        bool          `json:"show_posts"`
	Posts            []models.Post `json:"posts,omitempty"`
}

type UpdateProfileInput struct {
	DisplayName     *string
	Bio             *string
	IsPrivate       *bool
	ProfileImageURL *string
}

type ProfileService struct {
	store   *repositories.Store
	follows *FollowService
}

func NewProfileService(store *repositories.Store, follows *FollowService) *ProfileService {
	return &ProfileService{store: store, follows: follows}
}

func (s *ProfileService) Show(ctx context.Context, viewer authz.Actor, username string) (*ProfileView, error) {
	user, err := s.store.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, boundaryErr(lookupErr(err, "user not found"))
	}

	status, err := followStatus(ctx, s.store.Follows, viewer.ID, user.ID)
	if err != nil {
		return nil, boundaryErr(err)
	}

	isCurrent := viewer.IsAuthenticated() && viewer.ID == user.ID
	view := &ProfileView{
		User:             user,
		IsCurrentUser:    isCurrent,
		IsFollowing:      status == models.FollowStatusAccepted,
		IsPending:        status == models.FollowStatusPending,
		ShowFollowButton: viewer.IsAuthenticated() && !isCurrent && status == models.FollowStatusNone,
		ShowPosts:        policy.CanViewContent(viewer.ID, user.ID, user.Private(), status, viewer.IsAdmin()),
	}

	if view.FollowersCount, err = s.follows.FollowersCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if view.FollowingCount, err = s.follows.FollowingCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if view.ShowPosts {
		if view.Posts, err = s.store.Posts.GetProfilePosts(ctx, user.ID, 0, profilePostLimit); err != nil {
			return nil, boundaryErr(err)
		}
	}
	return view, nil
}

func (s *ProfileService) Update(ctx context.Context, actor authz.Actor, in UpdateProfileInput) (*models.User, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	user, err := s.store.Users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, boundaryErr(lookupErr(err, "user not found"))
	}

	if in.DisplayName != nil {
		user.DisplayName = security.SanitizeText(*in.DisplayName)
	}
	if in.Bio != nil {
		user.Bio = security.SanitizeText(*in.Bio)
	}
	if in.IsPrivate != nil {
		private := *in.IsPrivate
		user.IsPrivate = &private
	}
	if in.ProfileImageURL != nil {
		user.ProfileImageURL = strings.TrimSpace(*in.ProfileImageURL)
	}

	if err := s.store.Users.UpdateUser(ctx, user); err != nil {
		return nil, boundaryErr(err)
	}
	return user, nil
}

func (s *ProfileService) Search(ctx context.Context, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}
	if len(query) > 64 {
		return nil, apperrors.Validation("search query is too long")
	}
	users, err := s.store.Users.SearchUsers(ctx, query, searchLimit)
	return users, boundaryErr(err)
}
