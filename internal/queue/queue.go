package queue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

var ErrRepositoryRequired = errors.New("queue: repository required")

// Option configures a Queue.
type Option func(*Queue)

// WithLogger overrides the queue logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithClock overrides the internal clock, used mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(q *Queue) {
		if clock != nil {
			q.now = clock
		}
	}
}

// WithIDGenerator overrides the ID generator used when enqueuing items.
func WithIDGenerator(generator func() uuid.UUID) Option {
	return func(q *Queue) {
		if generator != nil {
			q.id = generator
		}
	}
}

// Queue tracks translation work. A unit has at most one pending item.
type Queue struct {
	mu     sync.Mutex
	repo   QueueRepository
	logger interfaces.Logger
	now    func() time.Time
	id     func() uuid.UUID
}

// New constructs a Queue.
func New(repo QueueRepository, opts ...Option) *Queue {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	q := &Queue{
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
		id:     uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	return q
}

// Enqueue adds a pending item for the unit. When one already exists it is
// returned, raising its priority if the new request is more urgent.
func (q *Queue) Enqueue(ctx context.Context, input EnqueueInput) (*Item, error) {
	if input.UnitID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "unit_id", Message: "unit id is required"}
	}
	locale := strings.TrimSpace(input.Locale)
	if locale == "" {
		return nil, &domain.ValidationError{Field: "locale", Message: "locale is required"}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	existing, err := q.repo.FindPendingByUnit(ctx, input.UnitID)
	switch {
	case err == nil:
		if input.Priority <= existing.Priority {
			return existing, nil
		}
		existing.Priority = input.Priority
		existing.UpdatedAt = q.now().UTC()
		return q.repo.Save(ctx, existing)
	case !domain.IsNotFound(err):
		return nil, err
	}

	now := q.now().UTC()
	item, err := q.repo.Save(ctx, &Item{
		ID:         q.id(),
		UnitID:     input.UnitID,
		EntityType: input.Entity.Type,
		EntityID:   input.Entity.ID,
		Field:      strings.TrimSpace(input.Field),
		Locale:     locale,
		Priority:   input.Priority,
		Status:     StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	q.logger.Debug("queue.enqueue", "unit", item.UnitID.String(), "locale", item.Locale, "priority", item.Priority)
	return item, nil
}

// Assign hands a pending item to assignee.
func (q *Queue) Assign(ctx context.Context, id uuid.UUID, assignee string) (*Item, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, &domain.ValidationError{Field: "assignee", Message: "assignee is required"}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	item, err := q.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.Status.Pending() {
		return nil, &domain.ValidationError{Field: "status", Message: "item is already " + string(item.Status)}
	}
	item.Status = StatusAssigned
	item.Assignee = assignee
	item.UpdatedAt = q.now().UTC()
	return q.repo.Save(ctx, item)
}

// Complete closes a pending item.
func (q *Queue) Complete(ctx context.Context, id uuid.UUID) (*Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, err := q.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return q.completeLocked(ctx, item)
}

// CompleteForUnit closes the pending item of a unit, if any.
func (q *Queue) CompleteForUnit(ctx context.Context, unitID uuid.UUID) (*Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, err := q.repo.FindPendingByUnit(ctx, unitID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return q.completeLocked(ctx, item)
}

func (q *Queue) completeLocked(ctx context.Context, item *Item) (*Item, error) {
	if !item.Status.Pending() {
		return nil, &domain.ValidationError{Field: "status", Message: "item is already " + string(item.Status)}
	}
	now := q.now().UTC()
	item.Status = StatusCompleted
	item.UpdatedAt = now
	item.CompletedAt = &now
	saved, err := q.repo.Save(ctx, item)
	if err != nil {
		return nil, err
	}
	q.logger.Debug("queue.complete", "unit", saved.UnitID.String(), "locale", saved.Locale)
	return saved, nil
}

// ListOpen returns pending items ordered by priority, then age. A blank
// locale lists every locale.
func (q *Queue) ListOpen(ctx context.Context, locale string) ([]*Item, error) {
	return q.repo.ListPending(ctx, strings.TrimSpace(locale))
}
