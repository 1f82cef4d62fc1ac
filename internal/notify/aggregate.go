package notify

import (
	"sync"
	"time"

	"github.com/danmuck/pimd/internal/protocol"
)

// FetchScopeAggregate is the shared, reference-counted union of one kind of
// fetch scope across all subscribers. Each subscriber is added once, applies
// every change of its own scope as an (old, new) pair, and is removed when it
// goes away after applying (current, zero).
type FetchScopeAggregate[S any] interface {
	AddSubscriber()
	RemoveSubscriber()
	Apply(old, new S)
}

// options a subscriber can only have honoured when every subscriber agrees
const unanimousItemOptions = protocol.ItemCacheOnly |
	protocol.ItemCheckCachedPayloadPartsOnly |
	protocol.ItemIgnoreErrors

// AggregatedItemFetchScope unions ItemFetchScopes.
type AggregatedItemFetchScope struct {
	mu           sync.Mutex
	subscribers  int
	parts        counter[string]
	ancestors    counter[protocol.AncestorDepth]
	changedSince counter[int64]
	options      map[protocol.ItemFetchOptions]*flag
}

func NewAggregatedItemFetchScope() *AggregatedItemFetchScope {
	a := &AggregatedItemFetchScope{
		parts:        counter[string]{},
		ancestors:    counter[protocol.AncestorDepth]{},
		changedSince: counter[int64]{},
		options:      make(map[protocol.ItemFetchOptions]*flag, len(protocol.ItemFetchOptionList)),
	}
	for _, opt := range protocol.ItemFetchOptionList {
		a.options[opt] = new(flag)
	}
	return a
}

func (a *AggregatedItemFetchScope) AddSubscriber() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subscribers++
}

func (a *AggregatedItemFetchScope) RemoveSubscriber() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.subscribers > 0 {
		a.subscribers--
	}
}

func (a *AggregatedItemFetchScope) Apply(old, new protocol.ItemFetchScope) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.parts.diff(old.RequestedParts, new.RequestedParts)
	a.ancestors.diff(ancestorKey(old.AncestorDepth), ancestorKey(new.AncestorDepth))
	a.changedSince.diff(timeKey(old.ChangedSince), timeKey(new.ChangedSince))
	for opt, f := range a.options {
		f.update(old.Has(opt), new.Has(opt))
	}
}

// Scope returns the effective union.
func (a *AggregatedItemFetchScope) Scope() protocol.ItemFetchScope {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := protocol.ItemFetchScope{RequestedParts: a.parts.keys()}
	if depths := a.ancestors.keys(); len(depths) > 0 {
		out.AncestorDepth = depths[len(depths)-1]
	}
	if since := a.changedSince.keys(); len(since) > 0 {
		out.ChangedSince = time.Unix(0, since[0]).UTC()
	}
	for opt, f := range a.options {
		want := *f > 0
		if opt&unanimousItemOptions != 0 {
			want = a.subscribers > 0 && int(*f) == a.subscribers
		}
		if want {
			out.Options |= opt
		}
	}
	return out
}

func (a *AggregatedItemFetchScope) Subscribers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.subscribers
}

// AggregatedCollectionFetchScope unions CollectionFetchScopes. List filter,
// resource and content mimetypes are per request and are not aggregated.
type AggregatedCollectionFetchScope struct {
	mu                 sync.Mutex
	subscribers        int
	attributes         counter[string]
	ancestorAttributes counter[string]
	ancestors          counter[protocol.AncestorDepth]
	statistics         flag
	idOnly             flag
	ignoreErrors       flag
}

func NewAggregatedCollectionFetchScope() *AggregatedCollectionFetchScope {
	return &AggregatedCollectionFetchScope{
		attributes:         counter[string]{},
		ancestorAttributes: counter[string]{},
		ancestors:          counter[protocol.AncestorDepth]{},
	}
}

func (a *AggregatedCollectionFetchScope) AddSubscriber() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subscribers++
}

func (a *AggregatedCollectionFetchScope) RemoveSubscriber() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.subscribers > 0 {
		a.subscribers--
	}
}

func (a *AggregatedCollectionFetchScope) Apply(old, new protocol.CollectionFetchScope) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attributes.diff(old.Attributes, new.Attributes)
	a.ancestorAttributes.diff(old.AncestorAttributes, new.AncestorAttributes)
	a.ancestors.diff(ancestorKey(old.AncestorRetrieval), ancestorKey(new.AncestorRetrieval))
	a.statistics.update(old.IncludeStatistics, new.IncludeStatistics)
	a.idOnly.update(old.FetchIDOnly, new.FetchIDOnly)
	a.ignoreErrors.update(old.IgnoreRetrievalErrors, new.IgnoreRetrievalErrors)
}

func (a *AggregatedCollectionFetchScope) Scope() protocol.CollectionFetchScope {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := protocol.CollectionFetchScope{
		Attributes:            a.attributes.keys(),
		AncestorAttributes:    a.ancestorAttributes.keys(),
		IncludeStatistics:     a.statistics > 0,
		FetchIDOnly:           a.subscribers > 0 && int(a.idOnly) == a.subscribers,
		IgnoreRetrievalErrors: a.subscribers > 0 && int(a.ignoreErrors) == a.subscribers,
	}
	if depths := a.ancestors.keys(); len(depths) > 0 {
		out.AncestorRetrieval = depths[len(depths)-1]
	}
	return out
}

func (a *AggregatedCollectionFetchScope) Subscribers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.subscribers
}

// AggregatedTagFetchScope unions TagFetchScopes.
type AggregatedTagFetchScope struct {
	mu            sync.Mutex
	subscribers   int
	attributes    counter[string]
	idOnly        flag
	remoteID      flag
	allAttributes flag
}

func NewAggregatedTagFetchScope() *AggregatedTagFetchScope {
	return &AggregatedTagFetchScope{attributes: counter[string]{}}
}

func (a *AggregatedTagFetchScope) AddSubscriber() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subscribers++
}

func (a *AggregatedTagFetchScope) RemoveSubscriber() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.subscribers > 0 {
		a.subscribers--
	}
}

func (a *AggregatedTagFetchScope) Apply(old, new protocol.TagFetchScope) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attributes.diff(old.Attributes, new.Attributes)
	a.idOnly.update(old.FetchIDOnly, new.FetchIDOnly)
	a.remoteID.update(old.FetchRemoteID, new.FetchRemoteID)
	a.allAttributes.update(old.FetchAllAttributes, new.FetchAllAttributes)
}

func (a *AggregatedTagFetchScope) Scope() protocol.TagFetchScope {
	a.mu.Lock()
	defer a.mu.Unlock()
	return protocol.TagFetchScope{
		FetchIDOnly:        a.subscribers > 0 && int(a.idOnly) == a.subscribers,
		FetchRemoteID:      a.remoteID > 0,
		FetchAllAttributes: a.allAttributes > 0,
		Attributes:         a.attributes.keys(),
	}
}

func (a *AggregatedTagFetchScope) Subscribers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.subscribers
}

func ancestorKey(d protocol.AncestorDepth) []protocol.AncestorDepth {
	if d == protocol.NoAncestor {
		return nil
	}
	return []protocol.AncestorDepth{d}
}

func timeKey(t time.Time) []int64 {
	if t.IsZero() {
		return nil
	}
	return []int64{t.UnixNano()}
}
