package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/queue"
)

var article = domain.NewEntityRef("article", "42")

type clock struct {
	now time.Time
}

func (c *clock) tick() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

func runQueueSuite(t *testing.T, newRepo func(t *testing.T) queue.QueueRepository) {
	newQueue := func(t *testing.T) *queue.Queue {
		c := &clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
		return queue.New(newRepo(t), queue.WithClock(c.tick))
	}

	t.Run("enqueue is idempotent per unit", func(t *testing.T) {
		q := newQueue(t)
		ctx := context.Background()
		unit := uuid.New()

		first, err := q.Enqueue(ctx, queue.EnqueueInput{UnitID: unit, Entity: article, Field: "title", Locale: "es", Priority: 1})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		again, err := q.Enqueue(ctx, queue.EnqueueInput{UnitID: unit, Entity: article, Field: "title", Locale: "es"})
		if err != nil {
			t.Fatalf("enqueue again: %v", err)
		}
		if again.ID != first.ID || again.Priority != 1 {
			t.Fatalf("expected same item, got %+v", again)
		}
		raised, err := q.Enqueue(ctx, queue.EnqueueInput{UnitID: unit, Entity: article, Field: "title", Locale: "es", Priority: 5})
		if err != nil {
			t.Fatalf("enqueue raised: %v", err)
		}
		if raised.ID != first.ID || raised.Priority != 5 {
			t.Fatalf("expected priority raise, got %+v", raised)
		}
		open, _ := q.ListOpen(ctx, "es")
		if len(open) != 1 {
			t.Fatalf("expected one open item, got %d", len(open))
		}
	})

	t.Run("ordering", func(t *testing.T) {
		q := newQueue(t)
		ctx := context.Background()
		low, _ := q.Enqueue(ctx, queue.EnqueueInput{UnitID: uuid.New(), Entity: article, Field: "a", Locale: "es", Priority: 1})
		high, _ := q.Enqueue(ctx, queue.EnqueueInput{UnitID: uuid.New(), Entity: article, Field: "b", Locale: "es", Priority: 9})
		older, _ := q.Enqueue(ctx, queue.EnqueueInput{UnitID: uuid.New(), Entity: article, Field: "c", Locale: "es", Priority: 5})
		newer, _ := q.Enqueue(ctx, queue.EnqueueInput{UnitID: uuid.New(), Entity: article, Field: "d", Locale: "es", Priority: 5})
		if _, err := q.Enqueue(ctx, queue.EnqueueInput{UnitID: uuid.New(), Entity: article, Field: "e", Locale: "fr", Priority: 10}); err != nil {
			t.Fatalf("enqueue fr: %v", err)
		}

		open, err := q.ListOpen(ctx, "es")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		want := []uuid.UUID{high.ID, older.ID, newer.ID, low.ID}
		if len(open) != len(want) {
			t.Fatalf("expected %d items, got %d", len(want), len(open))
		}
		for i, id := range want {
			if open[i].ID != id {
				t.Fatalf("position %d: got %s (%s) want %s", i, open[i].ID, open[i].Field, id)
			}
		}
		all, _ := q.ListOpen(ctx, "")
		if len(all) != 5 || all[0].Locale != "fr" {
			t.Fatalf("expected fr item first across locales, got %d items", len(all))
		}
	})

	t.Run("assign and complete", func(t *testing.T) {
		q := newQueue(t)
		ctx := context.Background()
		unit := uuid.New()
		item, _ := q.Enqueue(ctx, queue.EnqueueInput{UnitID: unit, Entity: article, Field: "title", Locale: "es"})

		assigned, err := q.Assign(ctx, item.ID, "ana")
		if err != nil {
			t.Fatalf("assign: %v", err)
		}
		if assigned.Status != queue.StatusAssigned || assigned.Assignee != "ana" {
			t.Fatalf("unexpected assigned item %+v", assigned)
		}
		done, err := q.Complete(ctx, item.ID)
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		if done.Status != queue.StatusCompleted || done.CompletedAt == nil {
			t.Fatalf("unexpected completed item %+v", done)
		}
		if _, err := q.Complete(ctx, item.ID); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error on second completion, got %v", err)
		}
		if _, err := q.Assign(ctx, item.ID, "bob"); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error assigning a completed item, got %v", err)
		}

		reopened, err := q.Enqueue(ctx, queue.EnqueueInput{UnitID: unit, Entity: article, Field: "title", Locale: "es"})
		if err != nil {
			t.Fatalf("re-enqueue: %v", err)
		}
		if reopened.ID == item.ID {
			t.Fatalf("expected a new item after completion")
		}
	})

	t.Run("complete for unit", func(t *testing.T) {
		q := newQueue(t)
		ctx := context.Background()
		unit := uuid.New()
		if got, err := q.CompleteForUnit(ctx, unit); err != nil || got != nil {
			t.Fatalf("expected no-op for unqueued unit, got %+v %v", got, err)
		}
		if _, err := q.Enqueue(ctx, queue.EnqueueInput{UnitID: unit, Entity: article, Field: "title", Locale: "es"}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		done, err := q.CompleteForUnit(ctx, unit)
		if err != nil || done == nil || done.Status != queue.StatusCompleted {
			t.Fatalf("expected completion, got %+v %v", done, err)
		}
		open, _ := q.ListOpen(ctx, "")
		if len(open) != 0 {
			t.Fatalf("expected empty queue, got %d", len(open))
		}
	})

	t.Run("validation", func(t *testing.T) {
		q := newQueue(t)
		ctx := context.Background()
		if _, err := q.Enqueue(ctx, queue.EnqueueInput{Locale: "es"}); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected missing unit error, got %v", err)
		}
		if _, err := q.Enqueue(ctx, queue.EnqueueInput{UnitID: uuid.New()}); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected missing locale error, got %v", err)
		}
		if _, err := q.Complete(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestQueueMemory(t *testing.T) {
	runQueueSuite(t, func(*testing.T) queue.QueueRepository {
		return queue.NewMemoryRepository()
	})
}
