package protocol

import "github.com/danmuck/pimd/internal/protocol/datastream"

// FetchRelationsCommand matches relations by their ends. Side matches either end.
type FetchRelationsCommand struct {
	commandBase
	Left     int64
	Right    int64
	Side     int64
	Types    []string
	Resource string
}

func (*FetchRelationsCommand) Type() Type { return FetchRelations }

func (c *FetchRelationsCommand) encode(w *datastream.Stream) {
	w.WriteInt64(c.Left)
	w.WriteInt64(c.Right)
	w.WriteInt64(c.Side)
	writeByteStrings(w, c.Types)
	w.WriteString(c.Resource)
}

func (c *FetchRelationsCommand) decode(d *decoder) {
	c.Left = d.int64()
	c.Right = d.int64()
	c.Side = d.int64()
	c.Types = d.byteStrings()
	c.Resource = d.string()
}

// FetchRelationsResponse is one relation record. It is also the relation
// payload of RelationChangeNotification.
type FetchRelationsResponse struct {
	ResponseBase
	Left          int64
	LeftMimeType  string
	Right         int64
	RightMimeType string
	RelationType  string
	RemoteID      string
}

func (*FetchRelationsResponse) Type() Type { return FetchRelations }

func (r *FetchRelationsResponse) encode(w *datastream.Stream) {
	w.WriteInt64(r.Left)
	writeByteString(w, r.LeftMimeType)
	w.WriteInt64(r.Right)
	writeByteString(w, r.RightMimeType)
	writeByteString(w, r.RelationType)
	writeByteString(w, r.RemoteID)
}

func (r *FetchRelationsResponse) decode(d *decoder) {
	r.Left = d.int64()
	r.LeftMimeType = d.byteString()
	r.Right = d.int64()
	r.RightMimeType = d.byteString()
	r.RelationType = d.byteString()
	r.RemoteID = d.byteString()
}

type ModifyRelationCommand struct {
	commandBase
	Left         int64
	Right        int64
	RelationType string
	RemoteID     string
}

func (*ModifyRelationCommand) Type() Type { return ModifyRelation }

func (c *ModifyRelationCommand) encode(w *datastream.Stream) {
	w.WriteInt64(c.Left)
	w.WriteInt64(c.Right)
	writeByteString(w, c.RelationType)
	writeByteString(w, c.RemoteID)
}

func (c *ModifyRelationCommand) decode(d *decoder) {
	c.Left = d.int64()
	c.Right = d.int64()
	c.RelationType = d.byteString()
	c.RemoteID = d.byteString()
}

type ModifyRelationResponse struct{ ResponseBase }

func (*ModifyRelationResponse) Type() Type { return ModifyRelation }

type RemoveRelationsCommand struct {
	commandBase
	Left         int64
	Right        int64
	RelationType string
}

func (*RemoveRelationsCommand) Type() Type { return RemoveRelations }

func (c *RemoveRelationsCommand) encode(w *datastream.Stream) {
	w.WriteInt64(c.Left)
	w.WriteInt64(c.Right)
	writeByteString(w, c.RelationType)
}

func (c *RemoveRelationsCommand) decode(d *decoder) {
	c.Left = d.int64()
	c.Right = d.int64()
	c.RelationType = d.byteString()
}

type RemoveRelationsResponse struct{ ResponseBase }

func (*RemoveRelationsResponse) Type() Type { return RemoveRelations }
