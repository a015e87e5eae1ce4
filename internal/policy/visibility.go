// Package policy decides who may read profile and group content.
package policy

import "github.com/anonto42/nano-social/backend/internal/models"

// CanViewContent reports whether viewerID may see the posts of targetID.
// A viewerID of 0 is an anonymous viewer.
func CanViewContent(viewerID, targetID uint, targetIsPrivate bool, relationship models.FollowStatus, viewerIsAdmin bool) bool {
	if !targetIsPrivate || viewerIsAdmin {
		return true
	}
	if viewerID != 0 && viewerID == targetID {
		return true
	}
	return relationship == models.FollowStatusAccepted
}

// GroupAccess is the part of a group that visibility depends on.
type GroupAccess struct {
	IsPublic bool
	OwnerID  uint
}

func AccessOf(g *models.Group) GroupAccess {
	return GroupAccess{IsPublic: g.IsPublic, OwnerID: g.OwnerUserID}
}

// CanViewGroup reports whether viewerID may see a group's feed and members.
// Pending memberships grant nothing.
func CanViewGroup(viewerID uint, group GroupAccess, membership models.MembershipStatus, viewerIsAdmin bool) bool {
	if group.IsPublic || viewerIsAdmin {
		return true
	}
	if viewerID != 0 && viewerID == group.OwnerID {
		return true
	}
	return membership == models.MembershipAccepted
}
