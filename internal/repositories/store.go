package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the relational repositories over a single *gorm.DB handle.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Follows       FollowRepository
	Groups        GroupRepository
	Memberships   MembershipRepository
	Notifications NotificationRepository
	Posts         PostRepository
	Comments      CommentRepository
	Reactions     ReactionRepository

	// OnTransaction, when set, is called with every transaction-bound Store
	// before fn runs.
	OnTransaction func(tx *Store)
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewPostgresUserRepository(db),
		Follows:       NewPostgresFollowRepository(db),
		Groups:        NewPostgresGroupRepository(db),
		Memberships:   NewPostgresMembershipRepository(db),
		Notifications: NewPostgresNotificationRepository(db),
		Posts:         NewPostgresPostRepository(db),
		Comments:      NewPostgresCommentRepository(db),
		Reactions:     NewPostgresReactionRepository(db),
	}
}

// Transaction runs fn against a Store bound to one database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
// Inside fn only tx may be used.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := NewStore(tx)
		txStore.OnTransaction = s.OnTransaction
		if s.OnTransaction != nil {
			s.OnTransaction(txStore)
		}
		return fn(txStore)
	})
}

func (s *Store) DB() *gorm.DB {
	return s.db
}
