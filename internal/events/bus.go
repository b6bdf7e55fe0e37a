package events

import (
	"sync"
)

// Topics published inside the player process.
const (
	LibraryChanged = "library.changed"
	TrackStarted   = "track.started"
	PlaybackEnded  = "playback.ended"
)

type Handler func(data interface{})

// Bus is a small in-process pub/sub used to decouple the library watcher
// and playback shell from each other.
type Bus struct {
	subscribers map[string][]Handler
	mutex       sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string][]Handler),
	}
}

func (b *Bus) Subscribe(topic string, handler Handler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

func (b *Bus) Publish(topic string, data interface{}) {
	b.mutex.RLock()
	handlers := b.subscribers[topic]
	b.mutex.RUnlock()

	for _, handler := range handlers {
		go handler(data)
	}
}

func (b *Bus) Unsubscribe(topic string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.subscribers, topic)
}
