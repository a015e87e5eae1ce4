package services

import (
	"context"
	"strconv"
	"time"

	"github.com/anonto42/nano-social/backend/internal/authz"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/anonto42/nano-social/backend/pkg/logger"
)

type NotificationInput struct {
	RecipientUserID uint
	Type            models.NotificationType
	ActorUserID     *uint
	ReferenceID     *string
	Message         *string
}

func createNotification(ctx context.Context, tx *repositories.Store, in NotificationInput, at time.Time) (*models.Notification, error) {
	if in.RecipientUserID == 0 {
		return nil, apperrors.Validation("notification recipient is required")
	}
	switch in.Type {
	case models.NotificationFollow, models.NotificationReaction, models.NotificationComment, models.NotificationGroupRequest:
	default:
		return nil, apperrors.Validation("unknown notification type")
	}

	n := &models.Notification{
		RecipientUserID: in.RecipientUserID,
		ActorUserID:     in.ActorUserID,
		Type:            in.Type,
		ReferenceID:     in.ReferenceID,
		Message:         in.Message,
		Date:            at,
	}
	if err := tx.Notifications.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// AcceptOutcome reports what accepting a notification changed.
type AcceptOutcome struct {
	Type       models.NotificationType `json:"type"`
	Follow     *models.Follow          `json:"follow,omitempty"`
	Membership *models.GroupMembership `json:"membership,omitempty"`
}

type GroupedNotifications struct {
	Today     []models.Notification `json:"today"`
	Yesterday []models.Notification `json:"yesterday"`
	ThisWeek  []models.Notification `json:"this_week"`
	Older     []models.Notification `json:"older"`
}

type NotificationService struct {
	store   *repositories.Store
	follows *FollowService
	groups  *GroupService
	now     func() time.Time
}

func NewNotificationService(store *repositories.Store, follows *FollowService, groups *GroupService) *NotificationService {
	return &NotificationService{store: store, follows: follows, groups: groups, now: utcNow}
}

func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	var n *models.Notification
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		n, err = createNotification(ctx, tx, in, s.now())
		return err
	})
	return n, boundaryErr(err)
}

// ListFor returns every notification of userID, newest first.
func (s *NotificationService) ListFor(ctx context.Context, userID uint) ([]models.Notification, error) {
	notifications, err := s.store.Notifications.ListByRecipient(ctx, userID)
	return notifications, boundaryErr(err)
}

func (s *NotificationService) Page(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	notifications, total, err := s.store.Notifications.GetByRecipientID(ctx, userID, page, limit)
	return notifications, total, boundaryErr(err)
}

func (s *NotificationService) Grouped(ctx context.Context, userID uint) (*GroupedNotifications, error) {
	today, yesterday, thisWeek, older, err := s.store.Notifications.GetGrouped(ctx, userID, s.now())
	if err != nil {
		return nil, boundaryErr(err)
	}
	return &GroupedNotifications{Today: today, Yesterday: yesterday, ThisWeek: thisWeek, Older: older}, nil
}

func (s *NotificationService) Count(ctx context.Context, userID uint) (int64, error) {
	count, err := s.store.Notifications.CountByRecipient(ctx, userID)
	return count, boundaryErr(err)
}

// Consume deletes a notification owned by actor.
func (s *NotificationService) Consume(ctx context.Context, actor authz.Actor, id uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		n, err := tx.Notifications.GetByID(ctx, id)
		if err != nil {
			return lookupErr(err, "notification not found")
		}
		if err := authz.Authorize(actor, authz.NotificationHandle, authz.NotificationResource(n.RecipientUserID)).Err(); err != nil {
			return err
		}
		return tx.Notifications.DeleteNotification(ctx, n.ID)
	})
	return boundaryErr(err)
}

// Accept performs the request a notification stands for and removes it.
// Group requests re-check that actor may still answer them.
func (s *NotificationService) Accept(ctx context.Context, actor authz.Actor, id uint) (*AcceptOutcome, error) {
	out := &AcceptOutcome{}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		n, err := tx.Notifications.GetByID(ctx, id)
		if err != nil {
			return lookupErr(err, "notification not found")
		}
		if err := authz.Authorize(actor, authz.NotificationHandle, authz.NotificationResource(n.RecipientUserID)).Err(); err != nil {
			return err
		}
		out.Type = n.Type

		switch n.Type {
		case models.NotificationFollow:
			if n.ActorUserID == nil {
				return apperrors.Validation("follow notification has no requester")
			}
			out.Follow, err = s.follows.acceptTx(ctx, tx, n.RecipientUserID, *n.ActorUserID)
			if err != nil {
				return err
			}

		case models.NotificationGroupRequest:
			if n.ActorUserID == nil || n.ReferenceID == nil {
				return apperrors.Validation("group request notification is incomplete")
			}
			groupID, perr := strconv.ParseUint(*n.ReferenceID, 10, 64)
			if perr != nil {
				return apperrors.Validation("group request notification has an invalid group reference")
			}
			group, err := tx.Groups.GetGroupByID(ctx, uint(groupID))
			if err != nil {
				return lookupErr(err, "group not found")
			}
			out.Membership, err = s.groups.approveTx(ctx, tx, actor, group, *n.ActorUserID)
			if err != nil {
				return err
			}

		default:
			return apperrors.Validation("this notification cannot be accepted")
		}

		// The workflow usually removed it already.
		if err := tx.Notifications.DeleteNotification(ctx, n.ID); err != nil && !repositories.IsNotFound(err) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, boundaryErr(err)
	}

	if out.Follow != nil {
		s.follows.counts.InvalidateFollow(ctx, out.Follow.FollowerID, out.Follow.FolloweeID)
	}
	logger.Info("notification accepted", "notification_id", id, "type", out.Type, "user_id", actor.ID)
	return out, nil
}
