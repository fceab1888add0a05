package session

import "sync"

type subscribers struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Snapshot
}

// Subscribe returns a channel that receives the current snapshot immediately
// and a new one after every state change. The channel holds only the latest
// snapshot: a slow reader skips intermediate states but never misses the most
// recent one. Call cancel to unsubscribe; it closes the channel.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	// Hold subs.mu across the initial send so a concurrent publish can't be
	// overtaken by an older snapshot.
	m.subs.mu.Lock()
	ch <- m.Snapshot()
	if m.subs.subs == nil {
		m.subs.subs = make(map[int]chan Snapshot)
	}
	id := m.subs.next
	m.subs.next++
	m.subs.subs[id] = ch
	m.subs.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.subs.mu.Lock()
			delete(m.subs.subs, id)
			close(ch)
			m.subs.mu.Unlock()
		})
	}
	return ch, cancel
}

func (s *subscribers) publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		// Replace whatever the reader hasn't consumed yet.
		select {
		case <-ch:
		default:
		}
		ch <- snapshotCopy(snap)
	}
}

func snapshotCopy(s Snapshot) Snapshot {
	return Snapshot{Status: s.Status, User: s.User.Clone()}
}
