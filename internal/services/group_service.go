package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/nano-social/backend/internal/authz"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/policy"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/security"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/anonto42/nano-social/backend/pkg/logger"
)

const groupFeedLimit = 50

type CreateGroupInput struct {
	Name        string
	Description *string
	IsPublic    bool
}

type MembershipOutcome struct {
	Status  models.MembershipStatus `json:"status"`
	Created bool                    `json:"created"`
}

type LeaveOutcome struct {
	GroupDeleted bool `json:"group_deleted"`
}

// GroupView is what a viewer gets to see of a group. Members and Posts are
// only filled when CanView is true.
type GroupView struct {
	Group            *models.Group            `json:"group"`
	CanView          bool                     `json:"can_view"`
	IsOwner          bool                     `json:"is_owner"`
	IsAdmin          bool                     `json:"is_admin"`
	IsMember         bool                     `json:"is_member"`
	IsModerator      bool                     `json:"is_moderator"`
	MembershipStatus models.MembershipStatus  `json:"membership_status,omitempty"`
	MemberCount      int64                    `json:"member_count"`
	Members          []models.GroupMembership `json:"members,omitempty"`
	Posts            []models.Post            `json:"posts,omitempty"`
}

type GroupService struct {
	store *repositories.Store
	now   func() time.Time
}

func NewGroupService(store *repositories.Store) *GroupService {
	return &GroupService{store: store, now: utcNow}
}

// Create stores the group together with the owner's moderator membership.
func (s *GroupService) Create(ctx context.Context, actor authz.Actor, in CreateGroupInput) (*models.Group, error) {
	if err := authz.Authorize(actor, authz.GroupCreate, authz.Resource{}).Err(); err != nil {
		return nil, err
	}

	name := security.SanitizeText(in.Name)
	if name == "" {
		return nil, apperrors.Validation("group name is required")
	}
	var description *string
	if in.Description != nil {
		if d := security.SanitizeText(*in.Description); d != "" {
			description = &d
		}
	}

	now := s.now()
	group := &models.Group{
		Name:        name,
		Description: description,
		OwnerUserID: actor.ID,
		IsPublic:    in.IsPublic,
		CreatedAt:   now,
	}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Groups.CreateGroup(ctx, group); err != nil {
			return err
		}
		return tx.Memberships.CreateMembership(ctx, &models.GroupMembership{
			GroupID:     group.ID,
			UserID:      actor.ID,
			Status:      models.MembershipAccepted,
			IsModerator: true,
			JoinDate:    now,
		})
	})
	if err != nil {
		return nil, boundaryErr(err)
	}

	logger.Info("group created", "group_id", group.ID, "owner_id", actor.ID, "public", group.IsPublic)
	return group, nil
}

func (s *GroupService) Get(ctx context.Context, groupID uint) (*models.Group, error) {
	group, err := s.store.Groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, boundaryErr(lookupErr(err, "group not found"))
	}
	return group, nil
}

// Explore lists public groups.
func (s *GroupService) Explore(ctx context.Context) ([]models.Group, error) {
	groups, err := s.store.Groups.ListPublic(ctx)
	return groups, boundaryErr(err)
}

// ListFor returns every group for admins and owned or joined groups otherwise.
func (s *GroupService) ListFor(ctx context.Context, actor authz.Actor) ([]models.Group, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	var (
		groups []models.Group
		err    error
	)
	if actor.IsAdmin() {
		groups, err = s.store.Groups.ListAll(ctx)
	} else {
		groups, err = s.store.Groups.ListForUser(ctx, actor.ID)
	}
	return groups, boundaryErr(err)
}

func (s *GroupService) View(ctx context.Context, viewer authz.Actor, groupID uint) (*GroupView, error) {
	group, err := s.store.Groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, boundaryErr(lookupErr(err, "group not found"))
	}
	membership, err := membershipOf(ctx, s.store.Memberships, groupID, viewer.ID)
	if err != nil {
		return nil, boundaryErr(err)
	}

	status := membershipStatus(membership)
	view := &GroupView{
		Group:            group,
		CanView:          policy.CanViewGroup(viewer.ID, policy.AccessOf(group), status, viewer.IsAdmin()),
		IsOwner:          viewer.IsAuthenticated() && viewer.ID == group.OwnerUserID,
		IsAdmin:          viewer.IsAdmin(),
		IsMember:         status == models.MembershipAccepted,
		IsModerator:      status == models.MembershipAccepted && membership.IsModerator,
		MembershipStatus: status,
	}

	if view.MemberCount, err = s.store.Memberships.CountMembers(ctx, groupID); err != nil {
		return nil, boundaryErr(err)
	}
	if !view.CanView {
		return view, nil
	}
	if view.Members, err = s.store.Memberships.ListMembers(ctx, groupID, models.MembershipAccepted); err != nil {
		return nil, boundaryErr(err)
	}
	if view.Posts, err = s.store.Posts.GetGroupPosts(ctx, groupID, 0, groupFeedLimit); err != nil {
		return nil, boundaryErr(err)
	}
	return view, nil
}

// Feed returns a page of group posts if viewer may see them.
func (s *GroupService) Feed(ctx context.Context, viewer authz.Actor, groupID uint, offset, limit int) ([]models.Post, error) {
	if err := s.requireVisible(ctx, viewer, groupID); err != nil {
		return nil, err
	}
	posts, err := s.store.Posts.GetGroupPosts(ctx, groupID, offset, limit)
	return posts, boundaryErr(err)
}

func (s *GroupService) Members(ctx context.Context, viewer authz.Actor, groupID uint) ([]models.GroupMembership, error) {
	if err := s.requireVisible(ctx, viewer, groupID); err != nil {
		return nil, err
	}
	members, err := s.store.Memberships.ListMembers(ctx, groupID, models.MembershipAccepted)
	return members, boundaryErr(err)
}

func (s *GroupService) requireVisible(ctx context.Context, viewer authz.Actor, groupID uint) error {
	group, err := s.store.Groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return boundaryErr(lookupErr(err, "group not found"))
	}
	membership, err := membershipOf(ctx, s.store.Memberships, groupID, viewer.ID)
	if err != nil {
		return boundaryErr(err)
	}
	if !policy.CanViewGroup(viewer.ID, policy.AccessOf(group), membershipStatus(membership), viewer.IsAdmin()) {
		return apperrors.Forbidden("this group is private")
	}
	return nil
}

// PendingRequests lists join requests for moderators of the group.
func (s *GroupService) PendingRequests(ctx context.Context, actor authz.Actor, groupID uint) ([]models.GroupMembership, error) {
	var pending []models.GroupMembership
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		group, err := tx.Groups.GetGroupByID(ctx, groupID)
		if err != nil {
			return lookupErr(err, "group not found")
		}
		res, err := s.resourceFor(ctx, tx, actor, group, 0)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.GroupApprove, res).Err(); err != nil {
			return err
		}
		pending, err = tx.Memberships.ListMembers(ctx, groupID, models.MembershipPending)
		return err
	})
	return pending, boundaryErr(err)
}

// Join adds actor to a public group, or files a join request with the owner
// of a private one. An existing membership is returned unchanged.
func (s *GroupService) Join(ctx context.Context, actor authz.Actor, groupID uint) (*MembershipOutcome, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}

	var outcome *MembershipOutcome
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		group, err := tx.Groups.GetGroupByID(ctx, groupID)
		if err != nil {
			return lookupErr(err, "group not found")
		}
		user, err := tx.Users.GetUserByID(ctx, actor.ID)
		if err != nil {
			return lookupErr(err, "user not found")
		}

		existing, err := tx.Memberships.GetMembership(ctx, groupID, actor.ID)
		if err == nil {
			outcome = &MembershipOutcome{Status: existing.Status}
			return nil
		}
		if !repositories.IsNotFound(err) {
			return err
		}

		now := s.now()
		membership := &models.GroupMembership{
			GroupID:  groupID,
			UserID:   actor.ID,
			Status:   models.MembershipAccepted,
			JoinDate: now,
		}
		if !group.IsPublic {
			membership.Status = models.MembershipPending
		}
		if err := tx.Memberships.CreateMembership(ctx, membership); err != nil {
			return err
		}

		if membership.Status == models.MembershipPending {
			_, err := createNotification(ctx, tx, NotificationInput{
				RecipientUserID: group.OwnerUserID,
				Type:            models.NotificationGroupRequest,
				ActorUserID:     uintPtr(actor.ID),
				ReferenceID:     strPtr(groupRef(groupID)),
				Message:         strPtr(fmt.Sprintf("%s wants to join %s.", user.Username, group.Name)),
			}, now)
			if err != nil {
				return err
			}
		}

		outcome = &MembershipOutcome{Status: membership.Status, Created: true}
		return nil
	})

	if errors.Is(err, repositories.ErrDuplicate) {
		existing, gerr := s.store.Memberships.GetMembership(ctx, groupID, actor.ID)
		if gerr != nil {
			return nil, boundaryErr(gerr)
		}
		return &MembershipOutcome{Status: existing.Status}, nil
	}
	if err != nil {
		return nil, boundaryErr(err)
	}

	if outcome.Created {
		logger.Info("group join requested", "group_id", groupID, "user_id", actor.ID, "status", outcome.Status)
	}
	return outcome, nil
}

// Approve accepts userID's pending request to join groupID.
func (s *GroupService) Approve(ctx context.Context, actor authz.Actor, groupID, userID uint) (*models.GroupMembership, error) {
	var membership *models.GroupMembership
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		group, err := tx.Groups.GetGroupByID(ctx, groupID)
		if err != nil {
			return lookupErr(err, "group not found")
		}
		membership, err = s.approveTx(ctx, tx, actor, group, userID)
		return err
	})
	if err != nil {
		return nil, boundaryErr(err)
	}

	logger.Info("group join approved", "group_id", groupID, "user_id", userID, "approved_by", actor.ID)
	return membership, nil
}

func (s *GroupService) approveTx(ctx context.Context, tx *repositories.Store, actor authz.Actor, group *models.Group, userID uint) (*models.GroupMembership, error) {
	res, err := s.resourceFor(ctx, tx, actor, group, userID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.GroupApprove, res).Err(); err != nil {
		return nil, err
	}

	ok, err := tx.Memberships.AcceptPending(ctx, group.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := tx.Memberships.GetMembership(ctx, group.ID, userID); err != nil {
			return nil, lookupErr(err, "join request not found")
		}
		return nil, apperrors.Conflict("user is already a member of this group")
	}

	if err := dropJoinNotifications(ctx, tx, group.ID, userID); err != nil {
		return nil, err
	}
	return tx.Memberships.GetMembership(ctx, group.ID, userID)
}

// RejectRequest deletes userID's pending request to join groupID.
func (s *GroupService) RejectRequest(ctx context.Context, actor authz.Actor, groupID, userID uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		group, err := tx.Groups.GetGroupByID(ctx, groupID)
		if err != nil {
			return lookupErr(err, "group not found")
		}
		res, err := s.resourceFor(ctx, tx, actor, group, userID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.GroupApprove, res).Err(); err != nil {
			return err
		}

		ok, err := tx.Memberships.DeletePending(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := tx.Memberships.GetMembership(ctx, groupID, userID); err != nil {
				return lookupErr(err, "join request not found")
			}
			return apperrors.Conflict("user is already a member of this group")
		}
		return dropJoinNotifications(ctx, tx, groupID, userID)
	})
	if err != nil {
		return boundaryErr(err)
	}

	logger.Info("group join rejected", "group_id", groupID, "user_id", userID, "rejected_by", actor.ID)
	return nil
}

// Leave removes actor from the group. When the owner leaves, the group and
// everything in it is deleted.
func (s *GroupService) Leave(ctx context.Context, actor authz.Actor, groupID uint) (*LeaveOutcome, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}

	outcome := &LeaveOutcome{}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		group, err := tx.Groups.GetGroupByID(ctx, groupID)
		if err != nil {
			return lookupErr(err, "group not found")
		}
		if group.OwnerUserID == actor.ID {
			outcome.GroupDeleted = true
			return deleteGroupCascade(ctx, tx, groupID)
		}

		ok, err := tx.Memberships.DeleteMembership(ctx, groupID, actor.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NotFound("you are not a member of this group")
		}
		return dropJoinNotifications(ctx, tx, groupID, actor.ID)
	})
	if err != nil {
		return nil, boundaryErr(err)
	}

	logger.Info("group left", "group_id", groupID, "user_id", actor.ID, "group_deleted", outcome.GroupDeleted)
	return outcome, nil
}

// MakeModerator grants moderator rights to an accepted member.
func (s *GroupService) MakeModerator(ctx context.Context, actor authz.Actor, groupID, userID uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		group, err := tx.Groups.GetGroupByID(ctx, groupID)
		if err != nil {
			return lookupErr(err, "group not found")
		}
		res, err := s.resourceFor(ctx, tx, actor, group, userID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.GroupPromote, res).Err(); err != nil {
			return err
		}

		membership, err := tx.Memberships.GetMembership(ctx, groupID, userID)
		if err != nil {
			return lookupErr(err, "user is not a member of this group")
		}
		if membership.Status != models.MembershipAccepted {
			return apperrors.NotFound("user is not a member of this group")
		}
		if membership.IsModerator {
			return nil
		}
		return tx.Memberships.SetModerator(ctx, groupID, userID, true)
	})
	if err != nil {
		return boundaryErr(err)
	}

	logger.Info("group moderator added", "group_id", groupID, "user_id", userID, "promoted_by", actor.ID)
	return nil
}

// RemoveMember deletes userID's membership. The owner can never be removed.
func (s *GroupService) RemoveMember(ctx context.Context, actor authz.Actor, groupID, userID uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		group, err := tx.Groups.GetGroupByID(ctx, groupID)
		if err != nil {
			return lookupErr(err, "group not found")
		}
		res, err := s.resourceFor(ctx, tx, actor, group, userID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.GroupRemoveMember, res).Err(); err != nil {
			return err
		}

		ok, err := tx.Memberships.DeleteMembership(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NotFound("user is not a member of this group")
		}
		return dropJoinNotifications(ctx, tx, groupID, userID)
	})
	if err != nil {
		return boundaryErr(err)
	}

	logger.Info("group member removed", "group_id", groupID, "user_id", userID, "removed_by", actor.ID)
	return nil
}

// Delete removes the group and everything in it.
func (s *GroupService) Delete(ctx context.Context, actor authz.Actor, groupID uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		group, err := tx.Groups.GetGroupByID(ctx, groupID)
		if err != nil {
			return lookupErr(err, "group not found")
		}
		if err := authz.Authorize(actor, authz.GroupDelete, authz.GroupResource(group.OwnerUserID, false, 0)).Err(); err != nil {
			return err
		}
		return deleteGroupCascade(ctx, tx, groupID)
	})
	if err != nil {
		return boundaryErr(err)
	}

	logger.Info("group deleted", "group_id", groupID, "deleted_by", actor.ID)
	return nil
}

// resourceFor resolves whether actor moderates group.
func (s *GroupService) resourceFor(ctx context.Context, tx *repositories.Store, actor authz.Actor, group *models.Group, targetUserID uint) (authz.Resource, error) {
	membership, err := membershipOf(ctx, tx.Memberships, group.ID, actor.ID)
	if err != nil {
		return authz.Resource{}, err
	}
	isModerator := membership != nil && membership.Status == models.MembershipAccepted && membership.IsModerator
	return authz.GroupResource(group.OwnerUserID, isModerator, targetUserID), nil
}

// deleteGroupCascade removes reactions, comments and notifications of group
// posts, then the posts, memberships, join requests and the group itself.
func deleteGroupCascade(ctx context.Context, tx *repositories.Store, groupID uint) error {
	postIDs, err := tx.Posts.GetPostIDsByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if err := deletePostChildren(ctx, tx, postIDs); err != nil {
		return err
	}
	if _, err := tx.Posts.DeleteByIDs(ctx, postIDs); err != nil {
		return err
	}
	if _, err := tx.Memberships.DeleteByGroup(ctx, groupID); err != nil {
		return err
	}
	if _, err := tx.Notifications.DeleteMatching(ctx, repositories.NotificationFilter{
		Type:        models.NotificationGroupRequest,
		ReferenceID: groupRef(groupID),
	}); err != nil {
		return err
	}
	return tx.Groups.DeleteGroup(ctx, groupID)
}

func dropJoinNotifications(ctx context.Context, tx *repositories.Store, groupID, userID uint) error {
	_, err := tx.Notifications.DeleteMatching(ctx, repositories.NotificationFilter{
		ActorUserID: userID,
		Type:        models.NotificationGroupRequest,
		ReferenceID: groupRef(groupID),
	})
	return err
}

func groupRef(groupID uint) string {
	return strconv.FormatUint(uint64(groupID), 10)
}

// GroupInputFromRequest trims a create request into service input.
// Groups are public unless the request says otherwise.
func GroupInputFromRequest(req models.CreateGroupRequest) CreateGroupInput {
	in := CreateGroupInput{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsPublic:    true,
	}
	if req.IsPublic != nil {
		in.IsPublic = *req.IsPublic
	}
	return in
}
