package repository

import (
	"context"

	"improve-my-city-be/models"
)

// IssueRepository is the storage contract for issue records. Backends are
// swapped at process start (in-memory for tests and local runs, MongoDB in
// deployment); the contract is identical across them.
type IssueRepository interface {
	Create(ctx context.Context, issue models.Issue) (models.Issue, error)
	ListAll(ctx context.Context) ([]models.Issue, error)
	GetByID(ctx context.Context, id string) (models.Issue, error)
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error
	UpdatePriority(ctx context.Context, id string, priority models.Priority) error
	AttachActionPlan(ctx context.Context, id string, plan models.ActionPlan) error
	// Watch delivers a snapshot of every issue created or mutated after the
	// call, until ctx is cancelled. Delivery is eventually consistent and
	// last-write-wins; no ordering is guaranteed between concurrent writers.
	Watch(ctx context.Context) (<-chan models.Issue, error)
}

// UserRepository is the storage contract for user profiles.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}
