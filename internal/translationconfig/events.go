package translationconfig

import (
	"context"
	"sync"
)

// broadcaster fans settings events out to subscribers. Each subscriber holds
// at most one pending event; a newer event replaces an unread one so that a
// slow reader always ends on the latest settings.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]chan ChangeEvent
	nextID uint64
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[uint64]chan ChangeEvent)}
}

func (b *broadcaster) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := make(chan ChangeEvent, 1)
	if ctx.Err() != nil {
		close(ch)
		return ch, nil
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	context.AfterFunc(ctx, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
		close(ch)
	})
	return ch, nil
}

func (b *broadcaster) Publish(changeType ChangeType, settings Settings) {
	evt := ChangeEvent{Type: changeType, Settings: settings}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- evt:
		default:
		}
	}
}
