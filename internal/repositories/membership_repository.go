package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// MembershipRepository defines the interface for group membership operations
type MembershipRepository interface {
	CreateMembership(ctx context.Context, membership *models.GroupMembership) error
	GetMembership(ctx context.Context, groupID, userID uint) (*models.GroupMembership, error)
	AcceptPending(ctx context.Context, groupID, userID uint) (bool, error)
	SetModerator(ctx context.Context, groupID, userID uint, moderator bool) error
	DeleteMembership(ctx context.Context, groupID, userID uint) (bool, error)
	DeletePending(ctx context.Context, groupID, userID uint) (bool, error)
	DeleteByGroup(ctx context.Context, groupID uint) (int64, error)
	ListMembers(ctx context.Context, groupID uint, status models.MembershipStatus) ([]models.GroupMembership, error)
	CountMembers(ctx context.Context, groupID uint) (int64, error)
}

// PostgresMembershipRepository implements MembershipRepository for PostgreSQL
type PostgresMembershipRepository struct {
	db *gorm.DB
}

// NewPostgresMembershipRepository creates a new PostgresMembershipRepository
func NewPostgresMembershipRepository(db *gorm.DB) *PostgresMembershipRepository {
	return &PostgresMembershipRepository{db: db}
}

// CreateMembership returns ErrDuplicate if the user already has a row in the group.
func (r *PostgresMembershipRepository) CreateMembership(ctx context.Context, membership *models.GroupMembership) error {
	return translate(r.db.WithContext(ctx).Omit("User").Create(membership).Error)
}

func (r *PostgresMembershipRepository) GetMembership(ctx context.Context, groupID, userID uint) (*models.GroupMembership, error) {
	var membership models.GroupMembership
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *PostgresMembershipRepository) AcceptPending(ctx context.Context, groupID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ? AND status = ?", groupID, userID, models.MembershipPending).
		Update("status", models.MembershipAccepted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresMembershipRepository) SetModerator(ctx context.Context, groupID, userID uint, moderator bool) error {
	return r.db.WithContext(ctx).Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("is_moderator", moderator).Error
}

func (r *PostgresMembershipRepository) DeleteMembership(ctx context.Context, groupID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMembership{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresMembershipRepository) DeletePending(ctx context.Context, groupID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ? AND status = ?", groupID, userID, models.MembershipPending).
		Delete(&models.GroupMembership{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresMembershipRepository) DeleteByGroup(ctx context.Context, groupID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("group_id = ?", groupID).Delete(&models.GroupMembership{})
	return res.RowsAffected, res.Error
}

// ListMembers returns memberships with users preloaded. An empty status lists all.
func (r *PostgresMembershipRepository) ListMembers(ctx context.Context, groupID uint, status models.MembershipStatus) ([]models.GroupMembership, error) {
	var members []models.GroupMembership
	q := r.db.WithContext(ctx).Preload("User").Where("group_id = ?", groupID)
	if status != models.MembershipNone {
		q = q.Where("status = ?", status)
	}
	err := q.Order("join_date ASC, id ASC").Find(&members).Error
	return members, err
}

func (r *PostgresMembershipRepository) CountMembers(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GroupMembership{}).
		Where("group_id = ? AND status = ?", groupID, models.MembershipAccepted).
		Count(&count).Error
	return count, err
}
