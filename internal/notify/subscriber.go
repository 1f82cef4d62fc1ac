package notify

import (
	"errors"
	"slices"
	"sync"

	"github.com/danmuck/pimd/internal/observability"
	"github.com/danmuck/pimd/internal/protocol"
	"github.com/danmuck/pimd/internal/protocol/session"
	"github.com/rs/zerolog"
)

// Transport is the write side of a subscriber's connection.
type Transport interface {
	// Enqueue hands a frame to the connection's single writer.
	Enqueue(tag int64, cmd protocol.Command) error
	// Close hangs up and stops the writer.
	Close()
}

// Bus is what a Subscriber needs from the component that owns all of them.
type Bus interface {
	Notify(ntfs ...protocol.ChangeNotification)
	Subscribers() []*Subscriber
	Forget(s *Subscriber)
	SetNotificationDebugging(enabled bool)
	ItemFetchScope() FetchScopeAggregate[protocol.ItemFetchScope]
	CollectionFetchScope() FetchScopeAggregate[protocol.CollectionFetchScope]
	TagFetchScope() FetchScopeAggregate[protocol.TagFetchScope]
}

var (
	ErrNotRegistered     = errors.New("notify: subscriber not registered")
	ErrAlreadyRegistered = errors.New("notify: subscriber already registered")
	ErrDisconnected      = errors.New("notify: subscriber disconnected")
)

type subscriberState uint8

const (
	stateUnregistered subscriberState = iota
	stateRegistered
	stateDisconnected
)

// Subscriber is the monitoring filter of one connection.
type Subscriber struct {
	id  string
	bus Bus
	out Transport
	log zerolog.Logger

	mu              sync.Mutex
	state           subscriberState
	name            string
	sessionID       string
	collections     set[int64]
	items           set[int64]
	tags            set[int64]
	types           set[protocol.ChangeType]
	mimeTypes       set[string]
	resources       set[string]
	ignoredSessions set[string]
	allMonitored    bool
	exclusive       bool
	debugging       bool
	itemScope       protocol.ItemFetchScope
	collectionScope protocol.CollectionFetchScope
	tagScope        protocol.TagFetchScope
}

// NewSubscriber reserves a slot in each aggregated fetch scope. The caller
// must eventually call Disconnect to release it.
func NewSubscriber(id string, bus Bus, out Transport, logger zerolog.Logger) *Subscriber {
	bus.ItemFetchScope().AddSubscriber()
	bus.CollectionFetchScope().AddSubscriber()
	bus.TagFetchScope().AddSubscriber()
	return &Subscriber{
		id:              id,
		bus:             bus,
		out:             out,
		log:             logger,
		collections:     set[int64]{},
		items:           set[int64]{},
		tags:            set[int64]{},
		types:           set[protocol.ChangeType]{},
		mimeTypes:       set[string]{},
		resources:       set[string]{},
		ignoredSessions: set[string]{},
	}
}

// ID is the connection identifier assigned on accept.
func (s *Subscriber) ID() string { return s.id }

// Name is the subscriber name, empty until registration.
func (s *Subscriber) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Subscriber) Registered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateRegistered
}

// Register names the subscriber and announces it on the bus.
func (s *Subscriber) Register(name, sessionID string) error {
	s.mu.Lock()
	switch s.state {
	case stateRegistered:
		s.mu.Unlock()
		return ErrAlreadyRegistered
	case stateDisconnected:
		s.mu.Unlock()
		return ErrDisconnected
	}
	s.state = stateRegistered
	s.name = name
	s.sessionID = sessionID
	added := s.snapshotLocked(protocol.SubscriptionAdd)
	s.mu.Unlock()

	s.log.Info().Msgf("notify.Register subscriber=%q session=%q", name, sessionID)
	s.bus.Notify(added)
	return nil
}

// Modify applies a filter change. Set-valued parts take their Start list
// when combined with ModifyAdd and their Stop list when combined with
// ModifyRemove.
func (s *Subscriber) Modify(cmd *protocol.ModifySubscriptionCommand) error {
	parts := cmd.ModifiedParts
	start := func(p protocol.ModifiedParts) bool { return parts.Has(p | protocol.ModifyAdd) }
	stop := func(p protocol.ModifiedParts) bool { return parts.Has(p | protocol.ModifyRemove) }

	s.mu.Lock()
	if s.state != stateRegistered {
		s.mu.Unlock()
		if s.state == stateDisconnected {
			return ErrDisconnected
		}
		return ErrNotRegistered
	}

	if start(protocol.ModifyTypes) {
		s.types.add(cmd.StartTypes...)
	}
	if stop(protocol.ModifyTypes) {
		s.types.remove(cmd.StopTypes...)
	}
	if start(protocol.ModifyCollections) {
		s.collections.add(cmd.StartCollections...)
	}
	if stop(protocol.ModifyCollections) {
		s.collections.remove(cmd.StopCollections...)
	}
	if start(protocol.ModifyItemIDs) {
		s.items.add(cmd.StartItems...)
	}
	if stop(protocol.ModifyItemIDs) {
		s.items.remove(cmd.StopItems...)
	}
	if start(protocol.ModifyTags) {
		s.tags.add(cmd.StartTags...)
	}
	if stop(protocol.ModifyTags) {
		s.tags.remove(cmd.StopTags...)
	}
	if start(protocol.ModifyResources) {
		s.resources.add(cmd.StartResources...)
	}
	if stop(protocol.ModifyResources) {
		s.resources.remove(cmd.StopResources...)
	}
	if start(protocol.ModifyMimeTypes) {
		for _, mt := range cmd.StartMimeTypes {
			s.mimeTypes.add(CanonicalMimeType(mt))
		}
	}
	if stop(protocol.ModifyMimeTypes) {
		for _, mt := range cmd.StopMimeTypes {
			s.mimeTypes.remove(CanonicalMimeType(mt))
		}
	}
	if start(protocol.ModifySessions) {
		s.ignoredSessions.add(cmd.StartSessions...)
	}
	if stop(protocol.ModifySessions) {
		s.ignoredSessions.remove(cmd.StopSessions...)
	}
	if parts.Has(protocol.ModifyAllFlag) {
		s.allMonitored = cmd.AllMonitored
	}
	if parts.Has(protocol.ModifyExclusiveFlag) {
		s.exclusive = cmd.Exclusive
	}
	if parts.Has(protocol.ModifyItemFetchScope) {
		s.bus.ItemFetchScope().Apply(s.itemScope, cmd.ItemFetchScope)
		s.itemScope = cmd.ItemFetchScope
	}
	if parts.Has(protocol.ModifyCollectionFetchScope) {
		s.bus.CollectionFetchScope().Apply(s.collectionScope, cmd.CollectionFetchScope)
		s.collectionScope = cmd.CollectionFetchScope
	}
	if parts.Has(protocol.ModifyTagFetchScope) {
		s.bus.TagFetchScope().Apply(s.tagScope, cmd.TagFetchScope)
		s.tagScope = cmd.TagFetchScope
	}

	var replay bool
	debugChanged := false
	if parts.Has(protocol.ModifyTypes) {
		replay = start(protocol.ModifyTypes) && slices.Contains(cmd.StartTypes, protocol.SubscriptionChanges)
		switch {
		case start(protocol.ModifyTypes) && slices.Contains(cmd.StartTypes, protocol.ChangeNotifications):
			debugChanged = !s.debugging
			s.debugging = true
		case stop(protocol.ModifyTypes) && slices.Contains(cmd.StopTypes, protocol.ChangeNotifications):
			debugChanged = s.debugging
			s.debugging = false
		}
	}
	debugging := s.debugging
	modified := s.snapshotLocked(protocol.SubscriptionModify)
	s.mu.Unlock()

	if replay {
		for _, other := range s.bus.Subscribers() {
			if state, ok := other.Snapshot(); ok {
				state.Operation = protocol.SubscriptionAdd
				s.Notify(state)
			}
		}
	}
	if debugChanged {
		s.bus.SetNotificationDebugging(debugging)
	}
	s.bus.Notify(modified)
	return nil
}

// Disconnect is terminal: it announces the removal, hangs up, releases the
// aggregated fetch scopes and leaves the bus. Later calls do nothing.
func (s *Subscriber) Disconnect() {
	s.mu.Lock()
	if s.state == stateDisconnected {
		s.mu.Unlock()
		return
	}
	registered := s.state == stateRegistered
	s.state = stateDisconnected
	removed := s.snapshotLocked(protocol.SubscriptionRemove)
	itemScope, collectionScope, tagScope := s.itemScope, s.collectionScope, s.tagScope
	debugging := s.debugging
	s.debugging = false
	s.mu.Unlock()

	s.out.Close()
	if registered {
		s.bus.Notify(removed)
	}

	s.bus.CollectionFetchScope().Apply(collectionScope, protocol.CollectionFetchScope{})
	s.bus.CollectionFetchScope().RemoveSubscriber()
	s.bus.TagFetchScope().Apply(tagScope, protocol.TagFetchScope{})
	s.bus.TagFetchScope().RemoveSubscriber()
	s.bus.ItemFetchScope().Apply(itemScope, protocol.ItemFetchScope{})
	s.bus.ItemFetchScope().RemoveSubscriber()

	if debugging {
		s.bus.SetNotificationDebugging(false)
	}
	s.bus.Forget(s)
	s.log.Debug().Msgf("notify.Disconnect subscriber=%q", removed.Subscriber)
}

// Notify queues ntf for delivery when the filter accepts it and reports the
// decision.
func (s *Subscriber) Notify(ntf protocol.ChangeNotification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	accepted := s.acceptsLocked(ntf)
	observability.RecordNotificationDecision(ntf.Type().String(), accepted)
	if !accepted {
		return false
	}
	s.writeLocked(session.NotificationTag, ntf)
	return true
}

// AcceptsNotification runs the filter without delivering anything.
func (s *Subscriber) AcceptsNotification(ntf protocol.ChangeNotification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acceptsLocked(ntf)
}

// WriteCommand queues a response or command for this connection.
func (s *Subscriber) WriteCommand(tag int64, cmd protocol.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLocked(tag, cmd)
}

func (s *Subscriber) writeLocked(tag int64, cmd protocol.Command) {
	if s.state == stateDisconnected {
		return
	}
	err := s.out.Enqueue(tag, cmd)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrOutboxClose):
		// peer already gone
	default:
		observability.RecordWriteFailure("enqueue")
		s.log.Warn().Err(err).Msgf("notify.write dropped type=%s tag=%d subscriber=%q", cmd.Type(), tag, s.name)
	}
}

// Snapshot describes the current filter as a subscription notification. It
// reports false until the subscriber is registered.
func (s *Subscriber) Snapshot() (*protocol.SubscriptionNotification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateRegistered {
		return nil, false
	}
	return s.snapshotLocked(protocol.SubscriptionModify), true
}

func (s *Subscriber) snapshotLocked(op protocol.SubscriptionOperation) *protocol.SubscriptionNotification {
	ntf := &protocol.SubscriptionNotification{
		Operation:            op,
		Subscriber:           s.name,
		Collections:          s.collections.sorted(),
		Items:                s.items.sorted(),
		Tags:                 s.tags.sorted(),
		Types:                s.types.sorted(),
		MimeTypes:            s.mimeTypes.sorted(),
		Resources:            s.resources.sorted(),
		IgnoredSessions:      s.ignoredSessions.sorted(),
		AllMonitored:         s.allMonitored,
		Exclusive:            s.exclusive,
		ItemFetchScope:       s.itemScope,
		CollectionFetchScope: s.collectionScope,
		TagFetchScope:        s.tagScope,
	}
	ntf.SessionID = s.sessionID
	return ntf
}
