package notify

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/pimd/internal/observability"
	"github.com/danmuck/pimd/internal/protocol"
	"github.com/rs/zerolog"
)

// Manager owns every connected Subscriber and broadcasts notifications to
// them.
type Manager struct {
	mu          sync.RWMutex
	subscribers []*Subscriber

	itemScope       *AggregatedItemFetchScope
	collectionScope *AggregatedCollectionFetchScope
	tagScope        *AggregatedTagFetchScope

	// subscribers that opted into ChangeNotifications
	debugging atomic.Int32
	now       func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		itemScope:       NewAggregatedItemFetchScope(),
		collectionScope: NewAggregatedCollectionFetchScope(),
		tagScope:        NewAggregatedTagFetchScope(),
		now:             time.Now,
	}
}

// NewSubscriber creates and tracks the subscriber of a new connection.
func (m *Manager) NewSubscriber(id string, out Transport, logger zerolog.Logger) *Subscriber {
	s := NewSubscriber(id, m, out, logger)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, s)
	m.mu.Unlock()
	return s
}

// Subscribers returns every tracked subscriber in connection order.
func (m *Manager) Subscribers() []*Subscriber {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Subscriber, len(m.subscribers))
	copy(out, m.subscribers)
	return out
}

func (m *Manager) Forget(s *Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subscribers {
		if sub == s {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			return
		}
	}
}

func (m *Manager) SetNotificationDebugging(enabled bool) {
	if enabled {
		m.debugging.Add(1)
		return
	}
	if m.debugging.Add(-1) < 0 {
		m.debugging.Store(0)
	}
}

// NotificationDebugging reports whether any subscriber wants debug copies.
func (m *Manager) NotificationDebugging() bool {
	return m.debugging.Load() > 0
}

func (m *Manager) ItemFetchScope() FetchScopeAggregate[protocol.ItemFetchScope] {
	return m.itemScope
}

func (m *Manager) CollectionFetchScope() FetchScopeAggregate[protocol.CollectionFetchScope] {
	return m.collectionScope
}

func (m *Manager) TagFetchScope() FetchScopeAggregate[protocol.TagFetchScope] {
	return m.tagScope
}

// Aggregated returns the effective fetch scopes across all subscribers.
func (m *Manager) Aggregated() (protocol.ItemFetchScope, protocol.CollectionFetchScope, protocol.TagFetchScope) {
	return m.itemScope.Scope(), m.collectionScope.Scope(), m.tagScope.Scope()
}

// Notify offers each notification to every subscriber. While notification
// debugging is on, each one is followed by a DebugNotification naming the
// subscribers that accepted it.
func (m *Manager) Notify(ntfs ...protocol.ChangeNotification) {
	subs := m.Subscribers()
	for _, ntf := range ntfs {
		var listeners []string
		for _, s := range subs {
			if s.Notify(ntf) {
				listeners = append(listeners, s.Name())
			}
		}
		observability.RecordNotificationFanout(ntf.Type().String(), len(listeners))

		if !m.NotificationDebugging() || ntf.Type() == protocol.DebugChangeNotification {
			continue
		}
		dbg := &protocol.DebugNotification{
			Notification: ntf,
			Listeners:    listeners,
			Timestamp:    m.now().UnixMilli(),
		}
		for _, s := range subs {
			s.Notify(dbg)
		}
	}
}
