package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetProfilePosts(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error)
	GetGroupPosts(ctx context.Context, groupID uint, offset, limit int) ([]models.Post, error)
	GetFeed(ctx context.Context, filter FeedFilter, offset, limit int) ([]models.Post, error)
	GetPostIDsByGroup(ctx context.Context, groupID uint) ([]uint, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
}

// FeedFilter narrows the feed to posts a viewer may read. ViewerID 0 is an
// anonymous viewer; All lifts every restriction.
type FeedFilter struct {
	ViewerID uint
	All      bool
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetProfilePosts returns the user's posts that do not belong to a group, newest first.
func (r *PostgresPostRepository) GetProfilePosts(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id IS NULL", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) GetGroupPosts(ctx context.Context, groupID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

// GetFeed returns posts newest first. Profile posts come from public
// authors, accepted followees and the viewer; group posts come from public
// groups, groups the viewer owns and groups with an accepted membership.
func (r *PostgresPostRepository) GetFeed(ctx context.Context, filter FeedFilter, offset, limit int) ([]models.Post, error) {
	q := r.db.WithContext(ctx)
	if !filter.All {
		publicAuthors := r.db.Model(&models.User{}).Select("id").
			Where("is_private IS NULL OR is_private = ?", false)
		followees := r.db.Model(&models.Follow{}).Select("followee_id").
			Where("follower_id = ? AND status = ?", filter.ViewerID, models.FollowStatusAccepted)
		memberOf := r.db.Model(&models.GroupMembership{}).Select("group_id").
			Where("user_id = ? AND status = ?", filter.ViewerID, models.MembershipAccepted)
		readableGroups := r.db.Model(&models.Group{}).Select("id").
			Where("is_public = ? OR owner_user_id = ? OR id IN (?)", true, filter.ViewerID, memberOf)

		q = q.Where(
			"(group_id IS NULL AND (user_id = ? OR user_id IN (?) OR user_id IN (?))) OR group_id IN (?)",
			filter.ViewerID, publicAuthors, followees, readableGroups,
		)
	}

	var posts []models.Post
	err := q.Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) GetPostIDsByGroup(ctx context.Context, groupID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("group_id = ?", groupID).Pluck("id", &ids).Error
	return ids, err
}

func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresPostRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Post{})
	return res.RowsAffected, res.Error
}
