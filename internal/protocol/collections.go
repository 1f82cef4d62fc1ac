package protocol

import (
	"github.com/danmuck/pimd/internal/protocol/datastream"
	"github.com/danmuck/pimd/internal/protocol/scope"
)

type CreateCollectionCommand struct {
	commandBase
	Parent         scope.Scope
	Name           string
	RemoteID       string
	RemoteRevision string
	MimeTypes      []string
	CachePolicy    CachePolicy
	Attributes     Attributes
	IsVirtual      bool
	Enabled        bool
	SyncPref       Tristate
	DisplayPref    Tristate
	IndexPref      Tristate
}

func (*CreateCollectionCommand) Type() Type { return CreateCollection }

func (c *CreateCollectionCommand) encode(w *datastream.Stream) {
	c.Parent.Write(w)
	w.WriteString(c.Name)
	w.WriteString(c.RemoteID)
	w.WriteString(c.RemoteRevision)
	writeStrings(w, c.MimeTypes)
	c.CachePolicy.encode(w)
	writeAttributes(w, c.Attributes)
	w.WriteBool(c.IsVirtual)
	w.WriteBool(c.Enabled)
	w.WriteUint8(uint8(c.SyncPref))
	w.WriteUint8(uint8(c.DisplayPref))
	w.WriteUint8(uint8(c.IndexPref))
}

func (c *CreateCollectionCommand) decode(d *decoder) {
	c.Parent = d.scope()
	c.Name = d.string()
	c.RemoteID = d.string()
	c.RemoteRevision = d.string()
	c.MimeTypes = d.strings()
	c.CachePolicy.decode(d)
	c.Attributes = d.attributes()
	c.IsVirtual = d.bool()
	c.Enabled = d.bool()
	c.SyncPref = Tristate(d.uint8())
	c.DisplayPref = Tristate(d.uint8())
	c.IndexPref = Tristate(d.uint8())
}

type CreateCollectionResponse struct{ ResponseBase }

func (*CreateCollectionResponse) Type() Type { return CreateCollection }

// collectionToDestination is the shared shape of CopyCollection and MoveCollection.
type collectionToDestination struct {
	commandBase
	Collection  scope.Scope
	Destination scope.Scope
}

func (c *collectionToDestination) encode(w *datastream.Stream) {
	c.Collection.Write(w)
	c.Destination.Write(w)
}

func (c *collectionToDestination) decode(d *decoder) {
	c.Collection = d.scope()
	c.Destination = d.scope()
}

type CopyCollectionCommand struct{ collectionToDestination }

func (*CopyCollectionCommand) Type() Type { return CopyCollection }

type CopyCollectionResponse struct{ ResponseBase }

func (*CopyCollectionResponse) Type() Type { return CopyCollection }

type MoveCollectionCommand struct{ collectionToDestination }

func (*MoveCollectionCommand) Type() Type { return MoveCollection }

type MoveCollectionResponse struct{ ResponseBase }

func (*MoveCollectionResponse) Type() Type { return MoveCollection }

type DeleteCollectionCommand struct {
	commandBase
	Collection scope.Scope
}

func (*DeleteCollectionCommand) Type() Type { return DeleteCollection }

func (c *DeleteCollectionCommand) encode(w *datastream.Stream) { c.Collection.Write(w) }
func (c *DeleteCollectionCommand) decode(d *decoder)           { c.Collection = d.scope() }

type DeleteCollectionResponse struct{ ResponseBase }

func (*DeleteCollectionResponse) Type() Type { return DeleteCollection }

// CollectionDepth bounds how far FetchCollections descends below the scope.
type CollectionDepth uint8

const (
	DepthBase CollectionDepth = iota
	DepthParent
	DepthAll
)

type FetchCollectionsCommand struct {
	commandBase
	Collections         scope.Scope
	Resource            string
	MimeTypes           []string
	Depth               CollectionDepth
	AncestorsDepth      AncestorDepth
	AncestorsAttributes []string
	Enabled             bool
	SyncPref            Tristate
	DisplayPref         Tristate
	IndexPref           Tristate
	FetchStats          bool
}

func (*FetchCollectionsCommand) Type() Type { return FetchCollections }

func (c *FetchCollectionsCommand) encode(w *datastream.Stream) {
	c.Collections.Write(w)
	w.WriteString(c.Resource)
	writeStrings(w, c.MimeTypes)
	w.WriteUint8(uint8(c.Depth))
	w.WriteUint8(uint8(c.AncestorsDepth))
	writeByteStrings(w, c.AncestorsAttributes)
	w.WriteBool(c.Enabled)
	w.WriteUint8(uint8(c.SyncPref))
	w.WriteUint8(uint8(c.DisplayPref))
	w.WriteUint8(uint8(c.IndexPref))
	w.WriteBool(c.FetchStats)
}

func (c *FetchCollectionsCommand) decode(d *decoder) {
	c.Collections = d.scope()
	c.Resource = d.string()
	c.MimeTypes = d.strings()
	c.Depth = CollectionDepth(d.uint8())
	c.AncestorsDepth = AncestorDepth(d.uint8())
	c.AncestorsAttributes = d.byteStrings()
	c.Enabled = d.bool()
	c.SyncPref = Tristate(d.uint8())
	c.DisplayPref = Tristate(d.uint8())
	c.IndexPref = Tristate(d.uint8())
	c.FetchStats = d.bool()
}

// FetchCollectionsResponse is one collection record. It is also the
// collection payload of CollectionChangeNotification.
type FetchCollectionsResponse struct {
	ResponseBase
	ID                int64
	ParentID          int64
	Name              string
	MimeTypes         []string
	RemoteID          string
	RemoteRevision    string
	Resource          string
	Statistics        CollectionStatistics
	SearchQuery       string
	SearchCollections []int64
	Ancestors         []Ancestor
	CachePolicy       CachePolicy
	Attributes        Attributes
	Enabled           bool
	DisplayPref       Tristate
	SyncPref          Tristate
	IndexPref         Tristate
	Referenced        bool
	IsVirtual         bool
}

func (*FetchCollectionsResponse) Type() Type { return FetchCollections }

func (r *FetchCollectionsResponse) encode(w *datastream.Stream) {
	w.WriteInt64(r.ID)
	w.WriteInt64(r.ParentID)
	w.WriteString(r.Name)
	writeStrings(w, r.MimeTypes)
	w.WriteString(r.RemoteID)
	w.WriteString(r.RemoteRevision)
	w.WriteString(r.Resource)
	r.Statistics.encode(w)
	w.WriteString(r.SearchQuery)
	writeInt64s(w, r.SearchCollections)
	writeRecords(w, r.Ancestors)
	r.CachePolicy.encode(w)
	writeAttributes(w, r.Attributes)
	w.WriteBool(r.Enabled)
	w.WriteUint8(uint8(r.DisplayPref))
	w.WriteUint8(uint8(r.SyncPref))
	w.WriteUint8(uint8(r.IndexPref))
	w.WriteBool(r.Referenced)
	w.WriteBool(r.IsVirtual)
}

func (r *FetchCollectionsResponse) decode(d *decoder) {
	r.ID = d.int64()
	r.ParentID = d.int64()
	r.Name = d.string()
	r.MimeTypes = d.strings()
	r.RemoteID = d.string()
	r.RemoteRevision = d.string()
	r.Resource = d.string()
	r.Statistics.decode(d)
	r.SearchQuery = d.string()
	r.SearchCollections = d.int64s()
	r.Ancestors = decodeRecords[Ancestor](d)
	r.CachePolicy.decode(d)
	r.Attributes = d.attributes()
	r.Enabled = d.bool()
	r.DisplayPref = Tristate(d.uint8())
	r.SyncPref = Tristate(d.uint8())
	r.IndexPref = Tristate(d.uint8())
	r.Referenced = d.bool()
	r.IsVirtual = d.bool()
}

type FetchCollectionStatsCommand struct {
	commandBase
	Collection scope.Scope
}

func (*FetchCollectionStatsCommand) Type() Type { return FetchCollectionStats }

func (c *FetchCollectionStatsCommand) encode(w *datastream.Stream) { c.Collection.Write(w) }
func (c *FetchCollectionStatsCommand) decode(d *decoder)           { c.Collection = d.scope() }

type FetchCollectionStatsResponse struct {
	ResponseBase
	Statistics CollectionStatistics
}

func (*FetchCollectionStatsResponse) Type() Type { return FetchCollectionStats }

func (r *FetchCollectionStatsResponse) encode(w *datastream.Stream) { r.Statistics.encode(w) }
func (r *FetchCollectionStatsResponse) decode(d *decoder)           { r.Statistics.decode(d) }

// ModifyCollectionParts marks which ModifyCollectionCommand fields carry changes.
type ModifyCollectionParts uint32

const (
	ModifyCollectionName ModifyCollectionParts = 1 << iota
	ModifyCollectionRemoteID
	ModifyCollectionRemoteRevision
	ModifyCollectionParentID
	ModifyCollectionMimeTypes
	ModifyCollectionCachePolicy
	ModifyCollectionPersistentSearch
	ModifyCollectionRemovedAttributes
	ModifyCollectionAttributes
	ModifyCollectionListPreferences
)

type ModifyCollectionCommand struct {
	commandBase
	Collection                  scope.Scope
	ModifiedParts               ModifyCollectionParts
	ParentID                    int64
	MimeTypes                   []string
	CachePolicy                 CachePolicy
	Name                        string
	RemoteID                    string
	RemoteRevision              string
	PersistentSearchQuery       string
	PersistentSearchCollections []int64
	PersistentSearchRemote      bool
	PersistentSearchRecursive   bool
	RemovedAttributes           []string
	Attributes                  Attributes
	Enabled                     bool
	SyncPref                    Tristate
	DisplayPref                 Tristate
	IndexPref                   Tristate
}

func (*ModifyCollectionCommand) Type() Type { return ModifyCollection }

func (c *ModifyCollectionCommand) encode(w *datastream.Stream) {
	c.Collection.Write(w)
	w.WriteUint32(uint32(c.ModifiedParts))
	w.WriteInt64(c.ParentID)
	writeStrings(w, c.MimeTypes)
	c.CachePolicy.encode(w)
	w.WriteString(c.Name)
	w.WriteString(c.RemoteID)
	w.WriteString(c.RemoteRevision)
	w.WriteString(c.PersistentSearchQuery)
	writeInt64s(w, c.PersistentSearchCollections)
	w.WriteBool(c.PersistentSearchRemote)
	w.WriteBool(c.PersistentSearchRecursive)
	writeByteStrings(w, c.RemovedAttributes)
	writeAttributes(w, c.Attributes)
	w.WriteBool(c.Enabled)
	w.WriteUint8(uint8(c.SyncPref))
	w.WriteUint8(uint8(c.DisplayPref))
	w.WriteUint8(uint8(c.IndexPref))
}

func (c *ModifyCollectionCommand) decode(d *decoder) {
	c.Collection = d.scope()
	c.ModifiedParts = ModifyCollectionParts(d.uint32())
	c.ParentID = d.int64()
	c.MimeTypes = d.strings()
	c.CachePolicy.decode(d)
	c.Name = d.string()
	c.RemoteID = d.string()
	c.RemoteRevision = d.string()
	c.PersistentSearchQuery = d.string()
	c.PersistentSearchCollections = d.int64s()
	c.PersistentSearchRemote = d.bool()
	c.PersistentSearchRecursive = d.bool()
	c.RemovedAttributes = d.byteStrings()
	c.Attributes = d.attributes()
	c.Enabled = d.bool()
	c.SyncPref = Tristate(d.uint8())
	c.DisplayPref = Tristate(d.uint8())
	c.IndexPref = Tristate(d.uint8())
}

type ModifyCollectionResponse struct{ ResponseBase }

func (*ModifyCollectionResponse) Type() Type { return ModifyCollection }
