package protocol

import "github.com/danmuck/pimd/internal/protocol/datastream"

// Attributes maps an attribute type to its serialized value.
type Attributes map[string][]byte

// Tristate is a preference that may be left undecided.
type Tristate uint8

const (
	TristateTrue Tristate = iota
	TristateFalse
	TristateUndefined
)

func (t Tristate) String() string {
	switch t {
	case TristateTrue:
		return "true"
	case TristateFalse:
		return "false"
	default:
		return "undefined"
	}
}

// Ancestor is one parent of a fetched item or collection.
type Ancestor struct {
	ID         int64
	RemoteID   string
	Name       string
	Attributes Attributes
}

func (a *Ancestor) encode(w *datastream.Stream) {
	w.WriteInt64(a.ID)
	w.WriteString(a.RemoteID)
	w.WriteString(a.Name)
	writeAttributes(w, a.Attributes)
}

func (a *Ancestor) decode(d *decoder) {
	a.ID = d.int64()
	a.RemoteID = d.string()
	a.Name = d.string()
	a.Attributes = d.attributes()
}

// PartMetaData describes a payload part without its data.
type PartMetaData struct {
	Name        string
	Size        int64
	Version     int32
	StorageType int32
}

func (p *PartMetaData) encode(w *datastream.Stream) {
	writeByteString(w, p.Name)
	w.WriteInt64(p.Size)
	w.WriteInt32(p.Version)
	w.WriteInt32(p.StorageType)
}

func (p *PartMetaData) decode(d *decoder) {
	p.Name = d.byteString()
	p.Size = d.int64()
	p.Version = d.int32()
	p.StorageType = d.int32()
}

// CachePolicy controls how long a collection keeps payload locally.
type CachePolicy struct {
	Inherit       bool
	CheckInterval int32
	CacheTimeout  int32
	SyncOnDemand  bool
	LocalParts    []string
}

func (c *CachePolicy) encode(w *datastream.Stream) {
	w.WriteBool(c.Inherit)
	w.WriteInt32(c.CheckInterval)
	w.WriteInt32(c.CacheTimeout)
	w.WriteBool(c.SyncOnDemand)
	writeStrings(w, c.LocalParts)
}

func (c *CachePolicy) decode(d *decoder) {
	c.Inherit = d.bool()
	c.CheckInterval = d.int32()
	c.CacheTimeout = d.int32()
	c.SyncOnDemand = d.bool()
	c.LocalParts = d.strings()
}

// CollectionStatistics counts a collection's items.
type CollectionStatistics struct {
	Count  int64
	Unseen int64
	Size   int64
}

func (c *CollectionStatistics) encode(w *datastream.Stream) {
	w.WriteInt64(c.Count)
	w.WriteInt64(c.Unseen)
	w.WriteInt64(c.Size)
}

func (c *CollectionStatistics) decode(d *decoder) {
	c.Count = d.int64()
	c.Unseen = d.int64()
	c.Size = d.int64()
}

// encodable is satisfied by pointers to records nested inside payloads.
type encodable interface {
	encode(w *datastream.Stream)
	decode(d *decoder)
}

func writeRecords[T any, P interface {
	*T
	encodable
}](w *datastream.Stream, list []T) {
	w.WriteUint32(uint32(len(list)))
	for i := range list {
		P(&list[i]).encode(w)
	}
}

func decodeRecords[T any, P interface {
	*T
	encodable
}](d *decoder) []T {
	return decodeList(d, func(d *decoder) T {
		var v T
		P(&v).decode(d)
		return v
	})
}
