package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/nano-social/backend/internal/cache"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/anonto42/nano-social/backend/pkg/logger"
)

type FollowOutcome struct {
	Status  models.FollowStatus `json:"status"`
	Created bool                `json:"created"`
}

type FollowService struct {
	store  *repositories.Store
	counts *cache.CountCache
	now    func() time.Time
}

func NewFollowService(store *repositories.Store, counts *cache.CountCache) *FollowService {
	return &FollowService{store: store, counts: counts, now: utcNow}
}

// Request creates the edge follower -> followee. Public accounts accept at
// once; private accounts get a pending edge and a follow notification.
// Repeated requests return the current state of the existing edge.
func (s *FollowService) Request(ctx context.Context, followerID, followeeID uint) (*FollowOutcome, error) {
	if followerID == followeeID {
		return nil, apperrors.Validation("you cannot follow yourself")
	}

	var outcome *FollowOutcome
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		followee, err := tx.Users.GetUserByID(ctx, followeeID)
		if err != nil {
			return lookupErr(err, "user not found")
		}
		follower, err := tx.Users.GetUserByID(ctx, followerID)
		if err != nil {
			return lookupErr(err, "user not found")
		}

		existing, err := tx.Follows.GetFollow(ctx, followerID, followeeID)
		if err == nil {
			outcome = &FollowOutcome{Status: existing.Status}
			return nil
		}
		if !repositories.IsNotFound(err) {
			return err
		}

		now := s.now()
		follow := &models.Follow{
			FollowerID:  followerID,
			FolloweeID:  followeeID,
			Status:      models.FollowStatusAccepted,
			RequestedAt: now,
			RespondedAt: &now,
		}
		if followee.Private() {
			follow.Status = models.FollowStatusPending
			follow.RespondedAt = nil
		}
		if err := tx.Follows.CreateFollow(ctx, follow); err != nil {
			return err
		}

		if follow.Status == models.FollowStatusPending {
			_, err := createNotification(ctx, tx, NotificationInput{
				RecipientUserID: followeeID,
				Type:            models.NotificationFollow,
				ActorUserID:     uintPtr(followerID),
				Message:         strPtr(fmt.Sprintf("%s wants to follow you.", follower.Username)),
			}, now)
			if err != nil {
				return err
			}
		}

		outcome = &FollowOutcome{Status: follow.Status, Created: true}
		return nil
	})

	if errors.Is(err, repositories.ErrDuplicate) {
		// A concurrent request inserted the edge first.
		existing, gerr := s.store.Follows.GetFollow(ctx, followerID, followeeID)
		if gerr != nil {
			return nil, boundaryErr(gerr)
		}
		return &FollowOutcome{Status: existing.Status}, nil
	}
	if err != nil {
		return nil, boundaryErr(err)
	}

	if outcome.Created {
		if outcome.Status == models.FollowStatusAccepted {
			s.counts.InvalidateFollow(ctx, followerID, followeeID)
		}
		logger.Info("follow requested", "follower_id", followerID, "followee_id", followeeID, "status", outcome.Status)
	}
	return outcome, nil
}

// Accept answers a pending request from followerID to followeeID.
func (s *FollowService) Accept(ctx context.Context, followeeID, followerID uint) (*models.Follow, error) {
	var follow *models.Follow
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		follow, err = s.acceptTx(ctx, tx, followeeID, followerID)
		return err
	})
	if err != nil {
		return nil, boundaryErr(err)
	}

	s.counts.InvalidateFollow(ctx, followerID, followeeID)
	logger.Info("follow request accepted", "follower_id", followerID, "followee_id", followeeID)
	return follow, nil
}

func (s *FollowService) acceptTx(ctx context.Context, tx *repositories.Store, followeeID, followerID uint) (*models.Follow, error) {
	ok, err := tx.Follows.AcceptPending(ctx, followerID, followeeID, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := tx.Follows.GetFollow(ctx, followerID, followeeID); err != nil {
			return nil, lookupErr(err, "follow request not found")
		}
		return nil, apperrors.Conflict("follow request was already accepted")
	}

	if err := s.dropRequestNotifications(ctx, tx, followeeID, followerID); err != nil {
		return nil, err
	}

	return tx.Follows.GetFollow(ctx, followerID, followeeID)
}

// Reject deletes a pending request from followerID to followeeID.
func (s *FollowService) Reject(ctx context.Context, followeeID, followerID uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		ok, err := tx.Follows.DeletePending(ctx, followerID, followeeID)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := tx.Follows.GetFollow(ctx, followerID, followeeID); err != nil {
				return lookupErr(err, "follow request not found")
			}
			return apperrors.Conflict("follow request was already accepted")
		}
		return s.dropRequestNotifications(ctx, tx, followeeID, followerID)
	})
	if err != nil {
		return boundaryErr(err)
	}

	logger.Info("follow request rejected", "follower_id", followerID, "followee_id", followeeID)
	return nil
}

// Unfollow removes the edge follower -> followee in any state.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return apperrors.Validation("you cannot unfollow yourself")
	}
	if err := s.deleteEdge(ctx, followerID, followeeID, "you are not following this user"); err != nil {
		return err
	}
	logger.Info("unfollowed", "follower_id", followerID, "followee_id", followeeID)
	return nil
}

// RemoveFollower lets followeeID drop an accepted follower. Pending
// requests are answered with Reject instead.
func (s *FollowService) RemoveFollower(ctx context.Context, followeeID, followerID uint) error {
	if followerID == followeeID {
		return apperrors.Validation("you cannot remove yourself")
	}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		ok, err := tx.Follows.DeleteAccepted(ctx, followerID, followeeID)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := tx.Follows.GetFollow(ctx, followerID, followeeID); err != nil {
				return lookupErr(err, "this user does not follow you")
			}
			return apperrors.Conflict("follow request is still pending; reject it instead")
		}
		return nil
	})
	if err != nil {
		return boundaryErr(err)
	}
	s.counts.InvalidateFollow(ctx, followerID, followeeID)
	logger.Info("follower removed", "follower_id", followerID, "followee_id", followeeID)
	return nil
}

func (s *FollowService) deleteEdge(ctx context.Context, followerID, followeeID uint, missing string) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		ok, err := tx.Follows.DeleteFollow(ctx, followerID, followeeID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NotFound(missing)
		}
		return s.dropRequestNotifications(ctx, tx, followeeID, followerID)
	})
	if err != nil {
		return boundaryErr(err)
	}
	s.counts.InvalidateFollow(ctx, followerID, followeeID)
	return nil
}

func (s *FollowService) dropRequestNotifications(ctx context.Context, tx *repositories.Store, followeeID, followerID uint) error {
	_, err := tx.Notifications.DeleteMatching(ctx, repositories.NotificationFilter{
		RecipientUserID: followeeID,
		ActorUserID:     followerID,
		Type:            models.NotificationFollow,
	})
	return err
}

// Status returns the state of the edge follower -> followee.
func (s *FollowService) Status(ctx context.Context, followerID, followeeID uint) (models.FollowStatus, error) {
	status, err := followStatus(ctx, s.store.Follows, followerID, followeeID)
	return status, boundaryErr(err)
}

func (s *FollowService) FollowersCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.counts.GetOrLoad(ctx, cache.FollowersKey(userID), func(ctx context.Context) (int64, error) {
		return s.store.Follows.GetFollowersCount(ctx, userID)
	})
	return count, boundaryErr(err)
}

func (s *FollowService) FollowingCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.counts.GetOrLoad(ctx, cache.FollowingKey(userID), func(ctx context.Context) (int64, error) {
		return s.store.Follows.GetFollowingCount(ctx, userID)
	})
	return count, boundaryErr(err)
}

func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	users, err := s.store.Follows.GetFollowers(ctx, userID)
	return users, boundaryErr(err)
}

func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	users, err := s.store.Follows.GetFollowing(ctx, userID)
	return users, boundaryErr(err)
}

func (s *FollowService) PendingRequests(ctx context.Context, followeeID uint) ([]models.Follow, error) {
	follows, err := s.store.Follows.GetPendingRequests(ctx, followeeID)
	return follows, boundaryErr(err)
}
