package protocol

import (
	"github.com/danmuck/pimd/internal/protocol/datastream"
	"github.com/danmuck/pimd/internal/protocol/scope"
)

type CreateTagCommand struct {
	commandBase
	GID        string
	RemoteID   string
	TagType    string
	Attributes Attributes
	ParentID   int64
	Merge      bool
}

func (*CreateTagCommand) Type() Type { return CreateTag }

func (c *CreateTagCommand) encode(w *datastream.Stream) {
	writeByteString(w, c.GID)
	writeByteString(w, c.RemoteID)
	writeByteString(w, c.TagType)
	writeAttributes(w, c.Attributes)
	w.WriteInt64(c.ParentID)
	w.WriteBool(c.Merge)
}

func (c *CreateTagCommand) decode(d *decoder) {
	c.GID = d.byteString()
	c.RemoteID = d.byteString()
	c.TagType = d.byteString()
	c.Attributes = d.attributes()
	c.ParentID = d.int64()
	c.Merge = d.bool()
}

type CreateTagResponse struct{ ResponseBase }

func (*CreateTagResponse) Type() Type { return CreateTag }

type DeleteTagCommand struct {
	commandBase
	Tag scope.Scope
}

func (*DeleteTagCommand) Type() Type { return DeleteTag }

func (c *DeleteTagCommand) encode(w *datastream.Stream) { c.Tag.Write(w) }
func (c *DeleteTagCommand) decode(d *decoder)           { c.Tag = d.scope() }

type DeleteTagResponse struct{ ResponseBase }

func (*DeleteTagResponse) Type() Type { return DeleteTag }

type FetchTagsCommand struct {
	commandBase
	Scope         scope.Scope
	TagFetchScope TagFetchScope
}

func (*FetchTagsCommand) Type() Type { return FetchTags }

func (c *FetchTagsCommand) encode(w *datastream.Stream) {
	c.Scope.Write(w)
	c.TagFetchScope.encode(w)
}

func (c *FetchTagsCommand) decode(d *decoder) {
	c.Scope = d.scope()
	c.TagFetchScope.decode(d)
}

// FetchTagsResponse is one tag record. It is also the tag payload of
// TagChangeNotification.
type FetchTagsResponse struct {
	ResponseBase
	ID         int64
	ParentID   int64
	GID        string
	TagType    string
	RemoteID   string
	Attributes Attributes
}

func (*FetchTagsResponse) Type() Type { return FetchTags }

func (r *FetchTagsResponse) encode(w *datastream.Stream) {
	w.WriteInt64(r.ID)
	w.WriteInt64(r.ParentID)
	writeByteString(w, r.GID)
	writeByteString(w, r.TagType)
	writeByteString(w, r.RemoteID)
	writeAttributes(w, r.Attributes)
}

func (r *FetchTagsResponse) decode(d *decoder) {
	r.ID = d.int64()
	r.ParentID = d.int64()
	r.GID = d.byteString()
	r.TagType = d.byteString()
	r.RemoteID = d.byteString()
	r.Attributes = d.attributes()
}

// ModifyTagParts marks which ModifyTagCommand fields carry changes.
type ModifyTagParts uint32

const (
	ModifyTagParentID ModifyTagParts = 1 << iota
	ModifyTagType
	ModifyTagRemoteID
	ModifyTagRemovedAttributes
	ModifyTagAttributes
)

type ModifyTagCommand struct {
	commandBase
	TagID             int64
	ModifiedParts     ModifyTagParts
	ParentID          int64
	TagType           string
	RemoteID          string
	RemovedAttributes []string
	Attributes        Attributes
}

func (*ModifyTagCommand) Type() Type { return ModifyTag }

func (c *ModifyTagCommand) encode(w *datastream.Stream) {
	w.WriteInt64(c.TagID)
	w.WriteUint32(uint32(c.ModifiedParts))
	w.WriteInt64(c.ParentID)
	writeByteString(w, c.TagType)
	writeByteString(w, c.RemoteID)
	writeByteStrings(w, c.RemovedAttributes)
	writeAttributes(w, c.Attributes)
}

func (c *ModifyTagCommand) decode(d *decoder) {
	c.TagID = d.int64()
	c.ModifiedParts = ModifyTagParts(d.uint32())
	c.ParentID = d.int64()
	c.TagType = d.byteString()
	c.RemoteID = d.byteString()
	c.RemovedAttributes = d.byteStrings()
	c.Attributes = d.attributes()
}

type ModifyTagResponse struct{ ResponseBase }

func (*ModifyTagResponse) Type() Type { return ModifyTag }
