package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"improve-my-city-be/models"

	"github.com/google/uuid"
)

// MemoryIssueRepository keeps issues in process memory. It backs local runs
// and tests with the same contract as the Mongo backend.
type MemoryIssueRepository struct {
	mu       sync.RWMutex
	issues   map[string]models.Issue
	watchers map[int]chan models.Issue
	nextID   int
}

func NewMemoryIssueRepository() *MemoryIssueRepository {
	return &MemoryIssueRepository{
		issues:   make(map[string]models.Issue),
		watchers: make(map[int]chan models.Issue),
	}
}

func (r *MemoryIssueRepository) Create(ctx context.Context, issue models.Issue) (models.Issue, error) {
	r.mu.Lock()
	r.issues[issue.ID] = issue
	r.broadcastLocked(issue)
	r.mu.Unlock()
	return issue, nil
}

func (r *MemoryIssueRepository) ListAll(ctx context.Context) ([]models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issues := make([]models.Issue, 0, len(r.issues))
	for _, issue := range r.issues {
		issues = append(issues, issue)
	}
	// Newest first; SliceStable keeps ties stable within one call
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].CreatedAt.After(issues[j].CreatedAt)
	})
	return issues, nil
}

func (r *MemoryIssueRepository) GetByID(ctx context.Context, id string) (models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issue, ok := r.issues[id]
	if !ok {
		return models.Issue{}, ErrNotFound
	}
	return issue, nil
}

func (r *MemoryIssueRepository) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	return r.mutate(id, func(issue *models.Issue) {
		issue.Status = status
	})
}

func (r *MemoryIssueRepository) UpdatePriority(ctx context.Context, id string, priority models.Priority) error {
	return r.mutate(id, func(issue *models.Issue) {
		issue.Priority = priority
	})
}

func (r *MemoryIssueRepository) AttachActionPlan(ctx context.Context, id string, plan models.ActionPlan) error {
	return r.mutate(id, func(issue *models.Issue) {
		issue.ActionPlan = &plan
	})
}

func (r *MemoryIssueRepository) Watch(ctx context.Context) (<-chan models.Issue, error) {
	ch := make(chan models.Issue, 16)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.watchers[id] = ch
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.watchers, id)
		r.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

func (r *MemoryIssueRepository) mutate(id string, apply func(*models.Issue)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[id]
	if !ok {
		return ErrNotFound
	}
	apply(&issue)
	issue.UpdatedAt = time.Now()
	r.issues[id] = issue
	r.broadcastLocked(issue)
	return nil
}

// broadcastLocked fans a snapshot out to every watcher. A slow consumer's
// full buffer drops the snapshot rather than blocking writers.
func (r *MemoryIssueRepository) broadcastLocked(issue models.Issue) {
	for _, ch := range r.watchers {
		select {
		case ch <- issue:
		default:
		}
	}
}

// MemoryUserRepository keeps user profiles in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return models.User{}, ErrEmailTaken
		}
	}
	user.ID = uuid.NewString()
	r.users[user.ID] = user
	return user, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}
