package policy

import (
	"fmt"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanViewContent(t *testing.T) {
	const viewer, target uint = 1, 2

	for _, private := range []bool{false, true} {
		for _, admin := range []bool{false, true} {
			for _, rel := range []models.FollowStatus{models.FollowStatusNone, models.FollowStatusPending, models.FollowStatusAccepted} {
				want := !private || admin || rel == models.FollowStatusAccepted
				name := fmt.Sprintf("private=%v admin=%v rel=%q", private, admin, rel)
				t.Run(name, func(t *testing.T) {
					assert.Equal(t, want, CanViewContent(viewer, target, private, rel, admin))
				})
			}
		}
	}

	t.Run("self always sees own content", func(t *testing.T) {
		assert.True(t, CanViewContent(target, target, true, models.FollowStatusNone, false))
	})

	t.Run("anonymous viewer", func(t *testing.T) {
		assert.True(t, CanViewContent(0, target, false, models.FollowStatusNone, false))
		assert.False(t, CanViewContent(0, target, true, models.FollowStatusNone, false))
	})

	t.Run("anonymous is never the owner", func(t *testing.T) {
		assert.False(t, CanViewContent(0, 0, true, models.FollowStatusNone, false))
	})
}

func TestCanViewGroup(t *testing.T) {
	private := GroupAccess{IsPublic: false, OwnerID: 10}
	public := GroupAccess{IsPublic: true, OwnerID: 10}

	tests := []struct {
		name       string
		viewer     uint
		group      GroupAccess
		membership models.MembershipStatus
		admin      bool
		want       bool
	}{
		{"public group, stranger", 1, public, models.MembershipNone, false, true},
		{"public group, anonymous", 0, public, models.MembershipNone, false, true},
		{"private group, stranger", 1, private, models.MembershipNone, false, false},
		{"private group, pending member", 1, private, models.MembershipPending, false, false},
		{"private group, accepted member", 1, private, models.MembershipAccepted, false, true},
		{"private group, owner", 10, private, models.MembershipNone, false, true},
		{"private group, admin", 1, private, models.MembershipNone, true, true},
		{"private group, anonymous", 0, private, models.MembershipNone, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewGroup(tt.viewer, tt.group, tt.membership, tt.admin))
		})
	}
}

func TestAccessOf(t *testing.T) {
	access := AccessOf(&models.Group{IsPublic: true, OwnerUserID: 7})
	assert.Equal(t, GroupAccess{IsPublic: true, OwnerID: 7}, access)
}
