// Package authz evaluates role and ownership rules for mutations.
package authz

import (
	"strings"

	"github.com/anonto42/nano-social/backend/pkg/apperrors"
)

type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleUser   Role = "User"
)

// Actor is the caller of an operation. The zero Actor is anonymous.
type Actor struct {
	ID    uint
	Roles []Role
}

var Anonymous = Actor{}

// NewActor builds an actor from stored role names, ignoring unknown ones.
func NewActor(id uint, roles ...string) Actor {
	a := Actor{ID: id}
	for _, r := range roles {
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "admin":
			a.Roles = append(a.Roles, RoleAdmin)
		case "editor":
			a.Roles = append(a.Roles, RoleEditor)
		case "user":
			a.Roles = append(a.Roles, RoleUser)
		}
	}
	return a
}

func (a Actor) IsAuthenticated() bool {
	return a.ID != 0
}

func (a Actor) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool {
	return a.IsAuthenticated() && a.HasRole(RoleAdmin)
}

type Action string

const (
	CommentEdit        Action = "comment.edit"
	CommentDelete      Action = "comment.delete"
	PostEdit           Action = "post.edit"
	PostDelete         Action = "post.delete"
	GroupCreate        Action = "group.create"
	GroupPromote       Action = "group.promote"
	GroupRemoveMember  Action = "group.remove_member"
	GroupApprove       Action = "group.approve"
	GroupDelete        Action = "group.delete"
	NotificationHandle Action = "notification.consume"
)

// Resource carries the ownership facts a rule needs. Only the fields
// relevant to the action are read.
type Resource struct {
	// OwnerID is the author of a post or comment, the owner of a group or
	// the recipient of a notification.
	OwnerID uint
	// ParentOwnerID is the author of the post a comment belongs to.
	ParentOwnerID uint
	// ActorIsModerator is true when the actor holds an accepted moderator
	// membership in the group.
	ActorIsModerator bool
	// TargetUserID is the member a group action applies to.
	TargetUserID uint
}

func CommentResource(authorID, postOwnerID uint) Resource {
	return Resource{OwnerID: authorID, ParentOwnerID: postOwnerID}
}

func PostResource(authorID uint) Resource {
	return Resource{OwnerID: authorID}
}

func GroupResource(ownerID uint, actorIsModerator bool, targetUserID uint) Resource {
	return Resource{OwnerID: ownerID, ActorIsModerator: actorIsModerator, TargetUserID: targetUserID}
}

func NotificationResource(recipientID uint) Resource {
	return Resource{OwnerID: recipientID}
}

type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err returns a Forbidden error for a denial and nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperrors.Forbidden(d.Reason)
}

// Authorize evaluates action against resource for actor.
func Authorize(actor Actor, action Action, resource Resource) Decision {
	if !actor.IsAuthenticated() {
		return Deny("authentication required")
	}

	owns := actor.ID == resource.OwnerID

	switch action {
	case CommentEdit, CommentDelete:
		if owns || actor.IsAdmin() || actor.ID == resource.ParentOwnerID {
			return Allow()
		}
		return Deny("only the comment author, the post owner or an admin may change this comment")

	case PostEdit:
		if owns {
			return Allow()
		}
		return Deny("only the author may edit this post")

	case PostDelete:
		if owns || actor.IsAdmin() {
			return Allow()
		}
		return Deny("only the author or an admin may delete this post")

	case GroupCreate:
		if actor.HasRole(RoleAdmin) || actor.HasRole(RoleEditor) || actor.HasRole(RoleUser) {
			return Allow()
		}
		return Deny("a site role is required to create groups")

	case GroupPromote:
		if owns || actor.IsAdmin() {
			return Allow()
		}
		return Deny("only the group owner or an admin may promote members")

	case GroupRemoveMember:
		if resource.TargetUserID == resource.OwnerID {
			return Deny("the group owner cannot be removed")
		}
		if owns || actor.IsAdmin() || resource.ActorIsModerator {
			return Allow()
		}
		return Deny("only the group owner, a moderator or an admin may remove members")

	case GroupApprove:
		if owns || actor.IsAdmin() || resource.ActorIsModerator {
			return Allow()
		}
		return Deny("only the group owner, a moderator or an admin may answer join requests")

	case GroupDelete:
		if owns || actor.IsAdmin() {
			return Allow()
		}
		return Deny("only the group owner or an admin may delete this group")

	case NotificationHandle:
		if owns {
			return Allow()
		}
		return Deny("notification belongs to another user")
	}

	return Deny("unknown action")
}
