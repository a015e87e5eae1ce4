package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// GroupRepository defines the interface for group data operations
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id uint) (*models.Group, error)
	DeleteGroup(ctx context.Context, id uint) error
	ListAll(ctx context.Context) ([]models.Group, error)
	ListPublic(ctx context.Context) ([]models.Group, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Group, error)
}

// PostgresGroupRepository implements GroupRepository for PostgreSQL
type PostgresGroupRepository struct {
	db *gorm.DB
}

// NewPostgresGroupRepository creates a new PostgresGroupRepository
func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Omit("Members").Create(group).Error
}

func (r *PostgresGroupRepository) GetGroupByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteGroup removes only the group row; children are the caller's job.
func (r *PostgresGroupRepository) DeleteGroup(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Group{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) ListAll(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&groups).Error
	return groups, err
}

func (r *PostgresGroupRepository) ListPublic(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).Where("is_public = ?", true).
		Order("created_at DESC, id DESC").Find(&groups).Error
	return groups, err
}

// ListForUser returns groups the user owns or is an accepted member of.
func (r *PostgresGroupRepository) ListForUser(ctx context.Context, userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).Where("owner_user_id = ? OR id IN (?)", userID,
		r.db.Table("group_memberships").Select("group_id").
			Where("user_id = ? AND status = ?", userID, models.MembershipAccepted),
	).Order("created_at DESC, id DESC").Find(&groups).Error
	return groups, err
}
