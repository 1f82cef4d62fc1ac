package protocol

import (
	"time"

	"github.com/danmuck/pimd/internal/protocol/datastream"
	"github.com/danmuck/pimd/internal/protocol/scope"
)

// MergeModes tells CreateItem how to merge with an existing item.
type MergeModes uint8

const (
	MergeNone   MergeModes = 0
	MergeGID    MergeModes = 1 << 0
	MergeRID    MergeModes = 1 << 1
	MergeSilent MergeModes = 1 << 2
)

type CreateItemCommand struct {
	commandBase
	Collection     scope.Scope
	ItemSize       int64
	MimeType       string
	GID            string
	RemoteID       string
	RemoteRevision string
	DateTime       time.Time
	Flags          []string
	AddedFlags     []string
	RemovedFlags   []string
	Tags           scope.Scope
	AddedTags      scope.Scope
	RemovedTags    scope.Scope
	Parts          []string
	Attributes     Attributes
	MergeModes     MergeModes
}

func (*CreateItemCommand) Type() Type { return CreateItem }

func (c *CreateItemCommand) encode(w *datastream.Stream) {
	c.Collection.Write(w)
	w.WriteInt64(c.ItemSize)
	w.WriteString(c.MimeType)
	w.WriteString(c.GID)
	w.WriteString(c.RemoteID)
	w.WriteString(c.RemoteRevision)
	w.WriteTime(c.DateTime)
	writeByteStrings(w, c.Flags)
	writeByteStrings(w, c.AddedFlags)
	writeByteStrings(w, c.RemovedFlags)
	c.Tags.Write(w)
	c.AddedTags.Write(w)
	c.RemovedTags.Write(w)
	writeByteStrings(w, c.Parts)
	writeAttributes(w, c.Attributes)
	w.WriteUint8(uint8(c.MergeModes))
}

func (c *CreateItemCommand) decode(d *decoder) {
	c.Collection = d.scope()
	c.ItemSize = d.int64()
	c.MimeType = d.string()
	c.GID = d.string()
	c.RemoteID = d.string()
	c.RemoteRevision = d.string()
	c.DateTime = d.time()
	c.Flags = d.byteStrings()
	c.AddedFlags = d.byteStrings()
	c.RemovedFlags = d.byteStrings()
	c.Tags = d.scope()
	c.AddedTags = d.scope()
	c.RemovedTags = d.scope()
	c.Parts = d.byteStrings()
	c.Attributes = d.attributes()
	c.MergeModes = MergeModes(d.uint8())
}

type CreateItemResponse struct{ ResponseBase }

func (*CreateItemResponse) Type() Type { return CreateItem }

// itemsToDestination is the shared shape of CopyItems and MoveItems.
type itemsToDestination struct {
	commandBase
	Items       scope.Scope
	Destination scope.Scope
}

func (c *itemsToDestination) encode(w *datastream.Stream) {
	c.Items.Write(w)
	c.Destination.Write(w)
}

func (c *itemsToDestination) decode(d *decoder) {
	c.Items = d.scope()
	c.Destination = d.scope()
}

type CopyItemsCommand struct{ itemsToDestination }

func (*CopyItemsCommand) Type() Type { return CopyItems }

type CopyItemsResponse struct{ ResponseBase }

func (*CopyItemsResponse) Type() Type { return CopyItems }

type MoveItemsCommand struct{ itemsToDestination }

func (*MoveItemsCommand) Type() Type { return MoveItems }

type MoveItemsResponse struct{ ResponseBase }

func (*MoveItemsResponse) Type() Type { return MoveItems }

type DeleteItemsCommand struct {
	commandBase
	Items scope.Scope
}

func (*DeleteItemsCommand) Type() Type { return DeleteItems }

func (c *DeleteItemsCommand) encode(w *datastream.Stream) { c.Items.Write(w) }
func (c *DeleteItemsCommand) decode(d *decoder)           { c.Items = d.scope() }

type DeleteItemsResponse struct{ ResponseBase }

func (*DeleteItemsResponse) Type() Type { return DeleteItems }

// LinkAction tells LinkItems whether to add or drop virtual references.
type LinkAction uint8

const (
	Link LinkAction = iota
	Unlink
)

type LinkItemsCommand struct {
	commandBase
	Action      LinkAction
	Items       scope.Scope
	Destination scope.Scope
}

func (*LinkItemsCommand) Type() Type { return LinkItems }

func (c *LinkItemsCommand) encode(w *datastream.Stream) {
	w.WriteUint8(uint8(c.Action))
	c.Items.Write(w)
	c.Destination.Write(w)
}

func (c *LinkItemsCommand) decode(d *decoder) {
	c.Action = LinkAction(d.uint8())
	c.Items = d.scope()
	c.Destination = d.scope()
}

type LinkItemsResponse struct{ ResponseBase }

func (*LinkItemsResponse) Type() Type { return LinkItems }

// FetchItemsCommand fetches the items in Scope, resolved within Collection and
// Tag when those are set.
type FetchItemsCommand struct {
	commandBase
	Scope          scope.Scope
	Collection     scope.Scope
	Tag            scope.Scope
	ItemFetchScope ItemFetchScope
	TagFetchScope  TagFetchScope
}

func (*FetchItemsCommand) Type() Type { return FetchItems }

func (c *FetchItemsCommand) encode(w *datastream.Stream) {
	c.Scope.Write(w)
	c.Collection.Write(w)
	c.Tag.Write(w)
	c.ItemFetchScope.encode(w)
	c.TagFetchScope.encode(w)
}

func (c *FetchItemsCommand) decode(d *decoder) {
	c.Scope = d.scope()
	c.Collection = d.scope()
	c.Tag = d.scope()
	c.ItemFetchScope.decode(d)
	c.TagFetchScope.decode(d)
}

// FetchItemsResponse is one item record. It is also the item payload of
// ItemChangeNotification.
type FetchItemsResponse struct {
	ResponseBase
	ID                int64
	Revision          int32
	ParentID          int64
	RemoteID          string
	RemoteRevision    string
	GID               string
	Size              int64
	MimeType          string
	MTime             time.Time
	Flags             []string
	Tags              []FetchTagsResponse
	VirtualReferences []int64
	Relations         []FetchRelationsResponse
	Ancestors         []Ancestor
	Parts             []StreamPayloadResponse
	CachedParts       []string
}

func (*FetchItemsResponse) Type() Type { return FetchItems }

func (r *FetchItemsResponse) encode(w *datastream.Stream) {
	w.WriteInt64(r.ID)
	w.WriteInt32(r.Revision)
	w.WriteInt64(r.ParentID)
	w.WriteString(r.RemoteID)
	w.WriteString(r.RemoteRevision)
	w.WriteString(r.GID)
	w.WriteInt64(r.Size)
	w.WriteString(r.MimeType)
	w.WriteTime(r.MTime)
	writeByteStrings(w, r.Flags)
	writeRecords(w, r.Tags)
	writeInt64s(w, r.VirtualReferences)
	writeRecords(w, r.Relations)
	writeRecords(w, r.Ancestors)
	writeRecords(w, r.Parts)
	writeByteStrings(w, r.CachedParts)
}

func (r *FetchItemsResponse) decode(d *decoder) {
	r.ID = d.int64()
	r.Revision = d.int32()
	r.ParentID = d.int64()
	r.RemoteID = d.string()
	r.RemoteRevision = d.string()
	r.GID = d.string()
	r.Size = d.int64()
	r.MimeType = d.string()
	r.MTime = d.time()
	r.Flags = d.byteStrings()
	r.Tags = decodeRecords[FetchTagsResponse](d)
	r.VirtualReferences = d.int64s()
	r.Relations = decodeRecords[FetchRelationsResponse](d)
	r.Ancestors = decodeRecords[Ancestor](d)
	r.Parts = decodeRecords[StreamPayloadResponse](d)
	r.CachedParts = d.byteStrings()
}

// ModifyItemsParts marks which ModifyItemsCommand fields carry changes.
type ModifyItemsParts uint32

const (
	ModifyItemsFlags ModifyItemsParts = 1 << iota
	ModifyItemsAddedFlags
	ModifyItemsRemovedFlags
	ModifyItemsTags
	ModifyItemsAddedTags
	ModifyItemsRemovedTags
	ModifyItemsRemoteID
	ModifyItemsRemoteRevision
	ModifyItemsGID
	ModifyItemsSize
	ModifyItemsPayloadParts
	ModifyItemsRemovedParts
	ModifyItemsAttributes
)

type ModifyItemsCommand struct {
	commandBase
	Items          scope.Scope
	OldRevision    int32
	ModifiedParts  ModifyItemsParts
	Flags          []string
	AddedFlags     []string
	RemovedFlags   []string
	Tags           scope.Scope
	AddedTags      scope.Scope
	RemovedTags    scope.Scope
	RemoteID       string
	RemoteRevision string
	GID            string
	Size           int64
	Parts          []string
	RemovedParts   []string
	Attributes     Attributes
	Dirty          bool
	Invalidate     bool
	NoResponse     bool
	NotifyOnly     bool
}

func (*ModifyItemsCommand) Type() Type { return ModifyItems }

func (c *ModifyItemsCommand) encode(w *datastream.Stream) {
	c.Items.Write(w)
	w.WriteInt32(c.OldRevision)
	w.WriteUint32(uint32(c.ModifiedParts))
	writeByteStrings(w, c.Flags)
	writeByteStrings(w, c.AddedFlags)
	writeByteStrings(w, c.RemovedFlags)
	c.Tags.Write(w)
	c.AddedTags.Write(w)
	c.RemovedTags.Write(w)
	w.WriteString(c.RemoteID)
	w.WriteString(c.RemoteRevision)
	w.WriteString(c.GID)
	w.WriteInt64(c.Size)
	writeByteStrings(w, c.Parts)
	writeByteStrings(w, c.RemovedParts)
	writeAttributes(w, c.Attributes)
	w.WriteBool(c.Dirty)
	w.WriteBool(c.Invalidate)
	w.WriteBool(c.NoResponse)
	w.WriteBool(c.NotifyOnly)
}

func (c *ModifyItemsCommand) decode(d *decoder) {
	c.Items = d.scope()
	c.OldRevision = d.int32()
	c.ModifiedParts = ModifyItemsParts(d.uint32())
	c.Flags = d.byteStrings()
	c.AddedFlags = d.byteStrings()
	c.RemovedFlags = d.byteStrings()
	c.Tags = d.scope()
	c.AddedTags = d.scope()
	c.RemovedTags = d.scope()
	c.RemoteID = d.string()
	c.RemoteRevision = d.string()
	c.GID = d.string()
	c.Size = d.int64()
	c.Parts = d.byteStrings()
	c.RemovedParts = d.byteStrings()
	c.Attributes = d.attributes()
	c.Dirty = d.bool()
	c.Invalidate = d.bool()
	c.NoResponse = d.bool()
	c.NotifyOnly = d.bool()
}

type ModifyItemsResponse struct {
	ResponseBase
	ID          int64
	NewRevision int32
}

func (*ModifyItemsResponse) Type() Type { return ModifyItems }

func (r *ModifyItemsResponse) encode(w *datastream.Stream) {
	w.WriteInt64(r.ID)
	w.WriteInt32(r.NewRevision)
}

func (r *ModifyItemsResponse) decode(d *decoder) {
	r.ID = d.int64()
	r.NewRevision = d.int32()
}
