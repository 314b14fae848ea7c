package screen

import (
	"github.com/google/uuid"
)

// Subscribe registers an observer. The channel immediately holds the
// current snapshot and then receives every change. It is buffered by one:
// a slow observer skips intermediate snapshots and always sees the latest.
// The returned func unsubscribes and closes the channel.
func (c *Controller) Subscribe() (string, <-chan Snapshot, func()) {
	id := uuid.New().String()
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	ch <- c.state
	if c.closed {
		close(ch)
		c.mu.Unlock()
		return id, ch, func() {}
	}
	c.observers[id] = ch
	c.mu.Unlock()

	c.log.Debugw("Observer subscribed", "observer_id", id)

	unsubscribe := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.observers[id]; ok {
			delete(c.observers, id)
			close(existing)
			c.log.Debugw("Observer unsubscribed", "observer_id", id)
		}
	}
	return id, ch, unsubscribe
}

// setLocked replaces the state and notifies observers. Callers hold c.mu.
func (c *Controller) setLocked(next Snapshot) {
	c.state = next
	for _, ch := range c.observers {
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}
