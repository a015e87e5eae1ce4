// Package services holds the follow and group request workflows, the
// notification dispatcher and the content operations built on them.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-social/backend/internal/authz"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
)

func utcNow() time.Time {
	return time.Now().UTC()
}

// lookupErr maps a repository read error onto NotFound with msg.
func lookupErr(err error, msg string) error {
	if repositories.IsNotFound(err) {
		return apperrors.NotFound(msg)
	}
	return err
}

// boundaryErr makes sure every error leaving a service is an AppError.
func boundaryErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if repositories.IsNotFound(err) {
		return apperrors.NotFound("record not found")
	}
	return apperrors.Internal("storage failure", err)
}

func requireAuth(actor authz.Actor) error {
	if !actor.IsAuthenticated() {
		return apperrors.New(apperrors.CodeUnauthorized, "authentication required")
	}
	return nil
}

// followStatus returns the state of the edge viewer -> target, or none for
// an anonymous viewer.
func followStatus(ctx context.Context, follows repositories.FollowRepository, viewerID, targetID uint) (models.FollowStatus, error) {
	if viewerID == 0 || viewerID == targetID {
		return models.FollowStatusNone, nil
	}
	follow, err := follows.GetFollow(ctx, viewerID, targetID)
	if repositories.IsNotFound(err) {
		return models.FollowStatusNone, nil
	}
	if err != nil {
		return models.FollowStatusNone, err
	}
	return follow.Status, nil
}

// membershipOf returns the viewer's membership row, or nil when there is none.
func membershipOf(ctx context.Context, memberships repositories.MembershipRepository, groupID, userID uint) (*models.GroupMembership, error) {
	if userID == 0 {
		return nil, nil
	}
	m, err := memberships.GetMembership(ctx, groupID, userID)
	if repositories.IsNotFound(err) {
		return nil, nil
	}
	return m, err
}

func membershipStatus(m *models.GroupMembership) models.MembershipStatus {
	if m == nil {
		return models.MembershipNone
	}
	return m.Status
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }
