package repositories

import (
	"context"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	GetFollow(ctx context.Context, followerID, followeeID uint) (*models.Follow, error)
	AcceptPending(ctx context.Context, followerID, followeeID uint, at time.Time) (bool, error)
	DeleteFollow(ctx context.Context, followerID, followeeID uint) (bool, error)
	DeletePending(ctx context.Context, followerID, followeeID uint) (bool, error)
	DeleteAccepted(ctx context.Context, followerID, followeeID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
	GetPendingRequests(ctx context.Context, followeeID uint) ([]models.Follow, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow returns ErrDuplicate if an edge for the pair already exists.
func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return translate(r.db.WithContext(ctx).Create(follow).Error)
}

func (r *PostgresFollowRepository) GetFollow(ctx context.Context, followerID, followeeID uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		First(&follow).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

// AcceptPending flips a pending edge to accepted. It reports false when no
// pending edge matched, which covers both a missing and an already accepted edge.
func (r *PostgresFollowRepository) AcceptPending(ctx context.Context, followerID, followeeID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ? AND status = ?", followerID, followeeID, models.FollowStatusPending).
		Updates(map[string]interface{}{
			"status":       models.FollowStatusAccepted,
			"responded_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) DeletePending(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return r.deleteInState(ctx, followerID, followeeID, models.FollowStatusPending)
}

func (r *PostgresFollowRepository) DeleteAccepted(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return r.deleteInState(ctx, followerID, followeeID, models.FollowStatusAccepted)
}

func (r *PostgresFollowRepository) deleteInState(ctx context.Context, followerID, followeeID uint, status models.FollowStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ? AND status = ?", followerID, followeeID, status).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN (?)",
		r.db.Table("follows").Select("follower_id").
			Where("followee_id = ? AND status = ?", userID, models.FollowStatusAccepted),
	).Order("username ASC").Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN (?)",
		r.db.Table("follows").Select("followee_id").
			Where("follower_id = ? AND status = ?", userID, models.FollowStatusAccepted),
	).Order("username ASC").Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Count(&count).Error
	return count, err
}

// GetPendingRequests returns pending edges towards followeeID, oldest first,
// with the requesting user preloaded.
func (r *PostgresFollowRepository) GetPendingRequests(ctx context.Context, followeeID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).Preload("Follower").
		Where("followee_id = ? AND status = ?", followeeID, models.FollowStatusPending).
		Order("requested_at ASC, id ASC").
		Find(&follows).Error
	return follows, err
}
