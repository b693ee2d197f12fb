package domain

import "context"

// UserRepository defines the interface for user persistence.
// Lookups return nil, nil when no user matches.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	SetCompleted(ctx context.Context, id string, completed bool) error
	Delete(ctx context.Context, id string) error
}

// AnswerKeyRepository stores answer key versions. Saving never overwrites a
// previous version; the highest version is the current key.
type AnswerKeyRepository interface {
	// GetLatest returns nil, nil when no key has been stored yet.
	GetLatest(ctx context.Context) (*AnswerKey, error)
	Save(ctx context.Context, key *AnswerKey) (version int, err error)
}

// ExamResultRepository stores at most one result per user.
type ExamResultRepository interface {
	Create(ctx context.Context, result *ExamResult) error
	// GetByUserID returns nil, nil when the user has not submitted.
	GetByUserID(ctx context.Context, userID string) (*ExamResult, error)
	List(ctx context.Context) ([]*ExamResult, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// TransactionManager runs fn inside a database transaction carried by ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
