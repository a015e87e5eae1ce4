package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	CreateReaction(ctx context.Context, reaction *models.Reaction) error
	DeleteReaction(ctx context.Context, postID, userID uint) (bool, error)
	HasReacted(ctx context.Context, postID, userID uint) (bool, error)
	CountByPostID(ctx context.Context, postID uint) (int64, error)
	DeleteByPostIDs(ctx context.Context, postIDs []uint) (int64, error)
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

// CreateReaction returns ErrDuplicate if the user already reacted to the post.
func (r *PostgresReactionRepository) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	return translate(r.db.WithContext(ctx).Create(reaction).Error)
}

func (r *PostgresReactionRepository) DeleteReaction(ctx context.Context, postID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Reaction{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresReactionRepository) HasReacted(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Reaction{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresReactionRepository) CountByPostID(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Reaction{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresReactionRepository) DeleteByPostIDs(ctx context.Context, postIDs []uint) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&models.Reaction{})
	return res.RowsAffected, res.Error
}
