package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

// memoryBus delivers events synchronously to every forwarder registered in
// this process. It is used when no redis address is configured.
type memoryBus struct {
	log    *logger.Logger
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
	closed bool
}

func NewMemoryBus(log *logger.Logger) Bus {
	return &memoryBus{
		log:  log.With("service", "MemoryBus"),
		subs: map[int]func(Event){},
	}
}

func (b *memoryBus) Publish(ctx context.Context, ev Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("memory bus closed")
	}
	handlers := make([]func(Event), 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		h(ev)
	}
	return nil
}

// StartForwarder registers onMsg until ctx is done.
func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(ev Event)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory bus closed")
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = onMsg
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]func(Event){}
	return nil
}
