package protocol

import (
	"slices"
	"time"

	"github.com/danmuck/pimd/internal/protocol/datastream"
)

// AncestorDepth selects how many parents are returned with a record.
type AncestorDepth uint8

const (
	NoAncestor AncestorDepth = iota
	ParentAncestor
	AllAncestors
)

// ItemFetchOptions are the boolean knobs of an ItemFetchScope.
type ItemFetchOptions uint32

const (
	ItemCacheOnly ItemFetchOptions = 1 << iota
	ItemCheckCachedPayloadPartsOnly
	ItemFullPayload
	ItemAllAttributes
	ItemSize
	ItemMTime
	ItemRemoteRevision
	ItemIgnoreErrors
	ItemFlags
	ItemRemoteID
	ItemGID
	ItemTags
	ItemRelations
	ItemVirtualReferences
)

// ItemFetchOptionList lists every ItemFetchOptions bit.
var ItemFetchOptionList = []ItemFetchOptions{
	ItemCacheOnly, ItemCheckCachedPayloadPartsOnly, ItemFullPayload, ItemAllAttributes,
	ItemSize, ItemMTime, ItemRemoteRevision, ItemIgnoreErrors, ItemFlags, ItemRemoteID,
	ItemGID, ItemTags, ItemRelations, ItemVirtualReferences,
}

// ItemFetchScope selects the parts and metadata delivered with items.
type ItemFetchScope struct {
	RequestedParts []string
	ChangedSince   time.Time
	AncestorDepth  AncestorDepth
	Options        ItemFetchOptions
}

func (s ItemFetchScope) Has(opt ItemFetchOptions) bool {
	return s.Options&opt != 0
}

func (s ItemFetchScope) IsEmpty() bool {
	return len(s.RequestedParts) == 0 && s.ChangedSince.IsZero() &&
		s.AncestorDepth == NoAncestor && s.Options == 0
}

func (s ItemFetchScope) Equal(o ItemFetchScope) bool {
	return slices.Equal(s.RequestedParts, o.RequestedParts) && s.ChangedSince.Equal(o.ChangedSince) &&
		s.AncestorDepth == o.AncestorDepth && s.Options == o.Options
}

func (s *ItemFetchScope) encode(w *datastream.Stream) {
	writeByteStrings(w, s.RequestedParts)
	w.WriteTime(s.ChangedSince)
	w.WriteUint8(uint8(s.AncestorDepth))
	w.WriteUint32(uint32(s.Options))
}

func (s *ItemFetchScope) decode(d *decoder) {
	s.RequestedParts = d.byteStrings()
	s.ChangedSince = d.time()
	s.AncestorDepth = AncestorDepth(d.uint8())
	s.Options = ItemFetchOptions(d.uint32())
}

// ListFilter restricts fetched collections by a preference.
type ListFilter uint8

const (
	NoFilter ListFilter = iota
	DisplayFilter
	SyncFilter
	IndexFilter
	EnabledFilter
)

// CollectionFetchScope selects the metadata delivered with collections.
type CollectionFetchScope struct {
	ListFilter            ListFilter
	IncludeStatistics     bool
	Resource              string
	ContentMimeTypes      []string
	Attributes            []string
	FetchIDOnly           bool
	AncestorRetrieval     AncestorDepth
	AncestorAttributes    []string
	IgnoreRetrievalErrors bool
}

func (s CollectionFetchScope) IsEmpty() bool {
	return s.ListFilter == NoFilter && !s.IncludeStatistics && s.Resource == "" &&
		len(s.ContentMimeTypes) == 0 && len(s.Attributes) == 0 && !s.FetchIDOnly &&
		s.AncestorRetrieval == NoAncestor && len(s.AncestorAttributes) == 0 && !s.IgnoreRetrievalErrors
}

func (s CollectionFetchScope) Equal(o CollectionFetchScope) bool {
	return s.ListFilter == o.ListFilter && s.IncludeStatistics == o.IncludeStatistics &&
		s.Resource == o.Resource && slices.Equal(s.ContentMimeTypes, o.ContentMimeTypes) &&
		slices.Equal(s.Attributes, o.Attributes) && s.FetchIDOnly == o.FetchIDOnly &&
		s.AncestorRetrieval == o.AncestorRetrieval &&
		slices.Equal(s.AncestorAttributes, o.AncestorAttributes) &&
		s.IgnoreRetrievalErrors == o.IgnoreRetrievalErrors
}

func (s *CollectionFetchScope) encode(w *datastream.Stream) {
	w.WriteUint8(uint8(s.ListFilter))
	w.WriteBool(s.IncludeStatistics)
	w.WriteString(s.Resource)
	writeStrings(w, s.ContentMimeTypes)
	writeByteStrings(w, s.Attributes)
	w.WriteBool(s.FetchIDOnly)
	w.WriteUint8(uint8(s.AncestorRetrieval))
	writeByteStrings(w, s.AncestorAttributes)
	w.WriteBool(s.IgnoreRetrievalErrors)
}

func (s *CollectionFetchScope) decode(d *decoder) {
	s.ListFilter = ListFilter(d.uint8())
	s.IncludeStatistics = d.bool()
	s.Resource = d.string()
	s.ContentMimeTypes = d.strings()
	s.Attributes = d.byteStrings()
	s.FetchIDOnly = d.bool()
	s.AncestorRetrieval = AncestorDepth(d.uint8())
	s.AncestorAttributes = d.byteStrings()
	s.IgnoreRetrievalErrors = d.bool()
}

// TagFetchScope selects the metadata delivered with tags.
type TagFetchScope struct {
	FetchIDOnly        bool
	FetchRemoteID      bool
	FetchAllAttributes bool
	Attributes         []string
}

func (s TagFetchScope) IsEmpty() bool {
	return !s.FetchIDOnly && !s.FetchRemoteID && !s.FetchAllAttributes && len(s.Attributes) == 0
}

func (s TagFetchScope) Equal(o TagFetchScope) bool {
	return s.FetchIDOnly == o.FetchIDOnly && s.FetchRemoteID == o.FetchRemoteID &&
		s.FetchAllAttributes == o.FetchAllAttributes && slices.Equal(s.Attributes, o.Attributes)
}

func (s *TagFetchScope) encode(w *datastream.Stream) {
	w.WriteBool(s.FetchIDOnly)
	w.WriteBool(s.FetchRemoteID)
	w.WriteBool(s.FetchAllAttributes)
	writeByteStrings(w, s.Attributes)
}

func (s *TagFetchScope) decode(d *decoder) {
	s.FetchIDOnly = d.bool()
	s.FetchRemoteID = d.bool()
	s.FetchAllAttributes = d.bool()
	s.Attributes = d.byteStrings()
}
