package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/anonto42/nano-social/backend/internal/authz"
	"github.com/anonto42/nano-social/backend/internal/contentanalysis"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/policy"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/security"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/anonto42/nano-social/backend/pkg/logger"
)

const (
	contentTypePost    = "post"
	contentTypeComment = "comment"
)

type CreatePostInput struct {
	Title   string
	Content string
	GroupID *uint
}

type UpdatePostInput struct {
	Title   *string
	Content string
}

type ReactionOutcome struct {
	Reacted bool  `json:"reacted"`
	Count   int64 `json:"count"`
}

// ContentService owns posts, comments and reactions. Text is screened by
// the analyzer before it is stored.
type ContentService struct {
	store      *repositories.Store
	analyzer   contentanalysis.Analyzer
	moderation repositories.ModerationLogRepository
	now        func() time.Time
}

// NewContentService accepts a nil moderation log.
func NewContentService(store *repositories.Store, analyzer contentanalysis.Analyzer, moderation repositories.ModerationLogRepository) *ContentService {
	if analyzer == nil {
		analyzer = contentanalysis.AcceptAll{}
	}
	return &ContentService{store: store, analyzer: analyzer, moderation: moderation, now: utcNow}
}

func (s *ContentService) screen(ctx context.Context, userID uint, contentType, text string) error {
	result := s.analyzer.Analyze(ctx, text)

	if s.moderation != nil {
		record := &models.ModerationRecord{
			UserID:       userID,
			ContentType:  contentType,
			Success:      result.Success,
			IsAccepted:   result.IsAccepted,
			Reason:       result.Reason,
			ErrorMessage: result.ErrorMessage,
			CreatedAt:    s.now(),
		}
		if err := s.moderation.Record(ctx, record); err != nil {
			logger.Warn("moderation log write failed", "user_id", userID, "error", err)
		}
	}

	if !result.Success {
		logger.Warn("content analysis unavailable", "user_id", userID, "content_type", contentType, "error", result.ErrorMessage)
	}
	return contentanalysis.Screen(result)
}

func cleanText(text, field string) (string, error) {
	cleaned := security.SanitizeText(text)
	if cleaned == "" {
		return "", apperrors.Validation(field + " is required")
	}
	return cleaned, nil
}

func (s *ContentService) CreatePost(ctx context.Context, actor authz.Actor, in CreatePostInput) (*models.Post, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	content, err := cleanText(in.Content, "content")
	if err != nil {
		return nil, err
	}
	title := security.SanitizeText(in.Title)

	if in.GroupID != nil {
		group, err := s.store.Groups.GetGroupByID(ctx, *in.GroupID)
		if err != nil {
			return nil, boundaryErr(lookupErr(err, "group not found"))
		}
		membership, err := membershipOf(ctx, s.store.Memberships, group.ID, actor.ID)
		if err != nil {
			return nil, boundaryErr(err)
		}
		if group.OwnerUserID != actor.ID && membershipStatus(membership) != models.MembershipAccepted {
			return nil, apperrors.Forbidden("only members can post in this group")
		}
	}

	if err := s.screen(ctx, actor.ID, contentTypePost, title+"\n"+content); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:  actor.ID,
		GroupID: in.GroupID,
		Title:   title,
		Content: content,
	}
	if err := s.store.Posts.CreatePost(ctx, post); err != nil {
		return nil, boundaryErr(err)
	}

	logger.Info("post created", "post_id", post.ID, "user_id", actor.ID)
	return post, nil
}

// GetPost returns a post if viewer may see it.
func (s *ContentService) GetPost(ctx context.Context, viewer authz.Actor, postID uint) (*models.Post, error) {
	post, err := s.store.Posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, boundaryErr(lookupErr(err, "post not found"))
	}
	if err := s.requireVisible(ctx, viewer, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UserPosts returns the profile posts of userID if viewer may see them.
func (s *ContentService) UserPosts(ctx context.Context, viewer authz.Actor, userID uint, offset, limit int) ([]models.Post, error) {
	author, err := s.store.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, boundaryErr(lookupErr(err, "user not found"))
	}
	status, err := followStatus(ctx, s.store.Follows, viewer.ID, author.ID)
	if err != nil {
		return nil, boundaryErr(err)
	}
	if !policy.CanViewContent(viewer.ID, author.ID, author.Private(), status, viewer.IsAdmin()) {
		return nil, apperrors.Forbidden("this account is private")
	}
	posts, err := s.store.Posts.GetProfilePosts(ctx, userID, offset, limit)
	return posts, boundaryErr(err)
}

func (s *ContentService) UpdatePost(ctx context.Context, actor authz.Actor, postID uint, in UpdatePostInput) (*models.Post, error) {
	post, err := s.store.Posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, boundaryErr(lookupErr(err, "post not found"))
	}
	if err := authz.Authorize(actor, authz.PostEdit, authz.PostResource(post.UserID)).Err(); err != nil {
		return nil, err
	}

	content, err := cleanText(in.Content, "content")
	if err != nil {
		return nil, err
	}
	title := post.Title
	if in.Title != nil {
		title = security.SanitizeText(*in.Title)
	}
	if err := s.screen(ctx, actor.ID, contentTypePost, title+"\n"+content); err != nil {
		return nil, err
	}

	post.Title = title
	post.Content = content
	if err := s.store.Posts.UpdatePost(ctx, post); err != nil {
		return nil, boundaryErr(err)
	}
	return post, nil
}

// DeletePost removes a post with its comments, reactions and notifications.
func (s *ContentService) DeletePost(ctx context.Context, actor authz.Actor, postID uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := tx.Posts.GetPostByID(ctx, postID)
		if err != nil {
			return lookupErr(err, "post not found")
		}
		if err := authz.Authorize(actor, authz.PostDelete, authz.PostResource(post.UserID)).Err(); err != nil {
			return err
		}
		if err := deletePostChildren(ctx, tx, []uint{post.ID}); err != nil {
			return err
		}
		return tx.Posts.DeletePost(ctx, post.ID)
	})
	if err != nil {
		return boundaryErr(err)
	}

	logger.Info("post deleted", "post_id", postID, "deleted_by", actor.ID)
	return nil
}

func (s *ContentService) CreateComment(ctx context.Context, actor authz.Actor, postID uint, text string) (*models.Comment, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	post, err := s.GetPost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}
	content, err := cleanText(text, "comment")
	if err != nil {
		return nil, err
	}
	if err := s.screen(ctx, actor.ID, contentTypeComment, content); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: post.ID, UserID: actor.ID, Content: content}
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Comments.CreateComment(ctx, comment); err != nil {
			return err
		}
		return s.notifyPostOwner(ctx, tx, post, actor.ID, models.NotificationComment, "%s commented on your post.")
	})
	if err != nil {
		return nil, boundaryErr(err)
	}
	return comment, nil
}

func (s *ContentService) Comments(ctx context.Context, viewer authz.Actor, postID uint) ([]models.Comment, error) {
	if _, err := s.GetPost(ctx, viewer, postID); err != nil {
		return nil, err
	}
	comments, err := s.store.Comments.GetCommentsByPostID(ctx, postID)
	return comments, boundaryErr(err)
}

func (s *ContentService) UpdateComment(ctx context.Context, actor authz.Actor, commentID uint, text string) (*models.Comment, error) {
	comment, post, err := s.commentWithPost(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.CommentEdit, authz.CommentResource(comment.UserID, post.UserID)).Err(); err != nil {
		return nil, err
	}
	content, err := cleanText(text, "comment")
	if err != nil {
		return nil, err
	}
	if err := s.screen(ctx, actor.ID, contentTypeComment, content); err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.store.Comments.UpdateComment(ctx, comment); err != nil {
		return nil, boundaryErr(err)
	}
	return comment, nil
}

func (s *ContentService) DeleteComment(ctx context.Context, actor authz.Actor, commentID uint) error {
	comment, post, err := s.commentWithPost(ctx, commentID)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, authz.CommentDelete, authz.CommentResource(comment.UserID, post.UserID)).Err(); err != nil {
		return err
	}
	if err := s.store.Comments.DeleteComment(ctx, comment.ID); err != nil {
		return boundaryErr(lookupErr(err, "comment not found"))
	}

	logger.Info("comment deleted", "comment_id", commentID, "deleted_by", actor.ID)
	return nil
}

func (s *ContentService) commentWithPost(ctx context.Context, commentID uint) (*models.Comment, *models.Post, error) {
	comment, err := s.store.Comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, nil, boundaryErr(lookupErr(err, "comment not found"))
	}
	post, err := s.store.Posts.GetPostByID(ctx, comment.PostID)
	if err != nil {
		return nil, nil, boundaryErr(lookupErr(err, "post not found"))
	}
	return comment, post, nil
}

// ToggleReaction adds actor's reaction to the post, or removes it if present.
func (s *ContentService) ToggleReaction(ctx context.Context, actor authz.Actor, postID uint) (*ReactionOutcome, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	post, err := s.GetPost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}

	out := &ReactionOutcome{}
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		removed, err := tx.Reactions.DeleteReaction(ctx, post.ID, actor.ID)
		if err != nil {
			return err
		}
		if removed {
			return nil
		}
		if err := tx.Reactions.CreateReaction(ctx, &models.Reaction{PostID: post.ID, UserID: actor.ID}); err != nil {
			return err
		}
		out.Reacted = true
		return s.notifyPostOwner(ctx, tx, post, actor.ID, models.NotificationReaction, "%s reacted to your post.")
	})
	if errors.Is(err, repositories.ErrDuplicate) {
		out.Reacted, err = true, nil
	}
	if err != nil {
		return nil, boundaryErr(err)
	}

	if out.Count, err = s.store.Reactions.CountByPostID(ctx, post.ID); err != nil {
		return nil, boundaryErr(err)
	}
	return out, nil
}

// ReactionCount counts reactions on a post viewer may see.
func (s *ContentService) ReactionCount(ctx context.Context, viewer authz.Actor, postID uint) (int64, error) {
	if _, err := s.GetPost(ctx, viewer, postID); err != nil {
		return 0, err
	}
	count, err := s.store.Reactions.CountByPostID(ctx, postID)
	return count, boundaryErr(err)
}

// Reactions reports the reaction count and whether viewer has reacted.
// Anonymous viewers never have.
func (s *ContentService) Reactions(ctx context.Context, viewer authz.Actor, postID uint) (*ReactionOutcome, error) {
	count, err := s.ReactionCount(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}
	out := &ReactionOutcome{Count: count}
	if viewer.IsAuthenticated() {
		if out.Reacted, err = s.store.Reactions.HasReacted(ctx, postID, viewer.ID); err != nil {
			return nil, boundaryErr(err)
		}
	}
	return out, nil
}

// Feed returns the newest posts viewer may read across profiles and groups.
func (s *ContentService) Feed(ctx context.Context, viewer authz.Actor, offset, limit int) ([]models.Post, error) {
	posts, err := s.store.Posts.GetFeed(ctx, repositories.FeedFilter{
		ViewerID: viewer.ID,
		All:      viewer.IsAdmin(),
	}, offset, limit)
	if err != nil {
		return nil, boundaryErr(err)
	}

	visible := make([]models.Post, 0, len(posts))
	for i := range posts {
		ok, err := canViewPost(ctx, s.store, viewer, &posts[i])
		if err != nil {
			return nil, boundaryErr(err)
		}
		if ok {
			visible = append(visible, posts[i])
		}
	}
	return visible, nil
}

func (s *ContentService) notifyPostOwner(ctx context.Context, tx *repositories.Store, post *models.Post, actorID uint, kind models.NotificationType, format string) error {
	if post.UserID == actorID {
		return nil
	}
	actor, err := tx.Users.GetUserByID(ctx, actorID)
	if err != nil {
		return lookupErr(err, "user not found")
	}
	_, err = createNotification(ctx, tx, NotificationInput{
		RecipientUserID: post.UserID,
		Type:            kind,
		ActorUserID:     uintPtr(actorID),
		ReferenceID:     strPtr(strconv.FormatUint(uint64(post.ID), 10)),
		Message:         strPtr(fmt.Sprintf(format, actor.Username)),
	}, s.now())
	return err
}

func (s *ContentService) requireVisible(ctx context.Context, viewer authz.Actor, post *models.Post) error {
	ok, err := canViewPost(ctx, s.store, viewer, post)
	if err != nil {
		return boundaryErr(err)
	}
	if !ok {
		return apperrors.Forbidden("this content is private")
	}
	return nil
}

// canViewPost applies group visibility to group posts and profile
// visibility to everything else.
func canViewPost(ctx context.Context, store *repositories.Store, viewer authz.Actor, post *models.Post) (bool, error) {
	if post.GroupID != nil {
		group, err := store.Groups.GetGroupByID(ctx, *post.GroupID)
		if err != nil {
			return false, lookupErr(err, "group not found")
		}
		membership, err := membershipOf(ctx, store.Memberships, group.ID, viewer.ID)
		if err != nil {
			return false, err
		}
		return policy.CanViewGroup(viewer.ID, policy.AccessOf(group), membershipStatus(membership), viewer.IsAdmin()), nil
	}

	author, err := store.Users.GetUserByID(ctx, post.UserID)
	if err != nil {
		return false, lookupErr(err, "user not found")
	}
	status, err := followStatus(ctx, store.Follows, viewer.ID, author.ID)
	if err != nil {
		return false, err
	}
	return policy.CanViewContent(viewer.ID, author.ID, author.Private(), status, viewer.IsAdmin()), nil
}

// deletePostChildren removes reactions, comments and the notifications that
// point at the given posts.
func deletePostChildren(ctx context.Context, tx *repositories.Store, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	if _, err := tx.Reactions.DeleteByPostIDs(ctx, postIDs); err != nil {
		return err
	}
	if _, err := tx.Comments.DeleteByPostIDs(ctx, postIDs); err != nil {
		return err
	}
	for _, id := range postIDs {
		ref := strconv.FormatUint(uint64(id), 10)
		for _, kind := range []models.NotificationType{models.NotificationComment, models.NotificationReaction} {
			if _, err := tx.Notifications.DeleteMatching(ctx, repositories.NotificationFilter{Type: kind, ReferenceID: ref}); err != nil {
				return err
			}
		}
	}
	return nil
}
