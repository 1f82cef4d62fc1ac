package protocol

import "github.com/danmuck/pimd/internal/protocol/datastream"

// ChangeType is a category of notifications a subscriber can opt into.
type ChangeType uint8

const (
	NoType ChangeType = iota
	ItemChanges
	CollectionChanges
	TagChanges
	RelationChanges
	SubscriptionChanges
	ChangeNotifications
)

var changeTypeNames = []string{"NoType", "ItemChanges", "CollectionChanges", "TagChanges", "RelationChanges", "SubscriptionChanges", "ChangeNotifications"}

func (c ChangeType) String() string { return enumName(changeTypeNames, int(c)) }

func writeChangeTypes(w *datastream.Stream, v []ChangeType) {
	datastream.WriteList(w, v, func(w *datastream.Stream, c ChangeType) { w.WriteUint8(uint8(c)) })
}

func (d *decoder) changeTypes() []ChangeType {
	return decodeList(d, func(d *decoder) ChangeType { return ChangeType(d.uint8()) })
}

// ModifiedParts says which categories a ModifySubscriptionCommand touches.
// A set-valued category applies its Start list when combined with Add and
// its Stop list when combined with Remove.
type ModifiedParts uint32

const (
	ModifyTypes                ModifiedParts = 1 << 0
	ModifyCollections          ModifiedParts = 1 << 1
	ModifyItemIDs              ModifiedParts = 1 << 2
	ModifyTags                 ModifiedParts = 1 << 3
	ModifyResources            ModifiedParts = 1 << 4
	ModifyMimeTypes            ModifiedParts = 1 << 5
	ModifySessions             ModifiedParts = 1 << 6
	ModifyAllFlag              ModifiedParts = 1 << 7
	ModifyExclusiveFlag        ModifiedParts = 1 << 8
	ModifyItemFetchScope       ModifiedParts = 1 << 9
	ModifyCollectionFetchScope ModifiedParts = 1 << 10
	ModifyTagFetchScope        ModifiedParts = 1 << 11
	ModifyAdd                  ModifiedParts = 1 << 12
	ModifyRemove               ModifiedParts = 1 << 13
)

// Has reports whether every bit of p is set.
func (m ModifiedParts) Has(p ModifiedParts) bool {
	return m&p == p
}

// CreateSubscriptionCommand registers the connection as a named subscriber.
type CreateSubscriptionCommand struct {
	commandBase
	SubscriberName string
	Session        string
}

func (*CreateSubscriptionCommand) Type() Type { return CreateSubscription }

func (c *CreateSubscriptionCommand) encode(w *datastream.Stream) {
	writeByteString(w, c.SubscriberName)
	writeByteString(w, c.Session)
}

func (c *CreateSubscriptionCommand) decode(d *decoder) {
	c.SubscriberName = d.byteString()
	c.Session = d.byteString()
}

type CreateSubscriptionResponse struct{ ResponseBase }

func (*CreateSubscriptionResponse) Type() Type { return CreateSubscription }

// ModifySubscriptionCommand changes the filter of a registered subscriber.
type ModifySubscriptionCommand struct {
	commandBase
	ModifiedParts        ModifiedParts
	StartTypes           []ChangeType
	StopTypes            []ChangeType
	StartCollections     []int64
	StopCollections      []int64
	StartItems           []int64
	StopItems            []int64
	StartTags            []int64
	StopTags             []int64
	StartResources       []string
	StopResources        []string
	StartMimeTypes       []string
	StopMimeTypes        []string
	StartSessions        []string
	StopSessions         []string
	AllMonitored         bool
	Exclusive            bool
	ItemFetchScope       ItemFetchScope
	CollectionFetchScope CollectionFetchScope
	TagFetchScope        TagFetchScope
}

func (*ModifySubscriptionCommand) Type() Type { return ModifySubscription }

func (c *ModifySubscriptionCommand) encode(w *datastream.Stream) {
	w.WriteUint32(uint32(c.ModifiedParts))
	writeChangeTypes(w, c.StartTypes)
	writeChangeTypes(w, c.StopTypes)
	writeInt64s(w, c.StartCollections)
	writeInt64s(w, c.StopCollections)
	writeInt64s(w, c.StartItems)
	writeInt64s(w, c.StopItems)
	writeInt64s(w, c.StartTags)
	writeInt64s(w, c.StopTags)
	writeByteStrings(w, c.StartResources)
	writeByteStrings(w, c.StopResources)
	writeStrings(w, c.StartMimeTypes)
	writeStrings(w, c.StopMimeTypes)
	writeByteStrings(w, c.StartSessions)
	writeByteStrings(w, c.StopSessions)
	w.WriteBool(c.AllMonitored)
	w.WriteBool(c.Exclusive)
	c.ItemFetchScope.encode(w)
	c.CollectionFetchScope.encode(w)
	c.TagFetchScope.encode(w)
}

func (c *ModifySubscriptionCommand) decode(d *decoder) {
	c.ModifiedParts = ModifiedParts(d.uint32())
	c.StartTypes = d.changeTypes()
	c.StopTypes = d.changeTypes()
	c.StartCollections = d.int64s()
	c.StopCollections = d.int64s()
	c.StartItems = d.int64s()
	c.StopItems = d.int64s()
	c.StartTags = d.int64s()
	c.StopTags = d.int64s()
	c.StartResources = d.byteStrings()
	c.StopResources = d.byteStrings()
	c.StartMimeTypes = d.strings()
	c.StopMimeTypes = d.strings()
	c.StartSessions = d.byteStrings()
	c.StopSessions = d.byteStrings()
	c.AllMonitored = d.bool()
	c.Exclusive = d.bool()
	c.ItemFetchScope.decode(d)
	c.CollectionFetchScope.decode(d)
	c.TagFetchScope.decode(d)
}

type ModifySubscriptionResponse struct{ ResponseBase }

func (*ModifySubscriptionResponse) Type() Type { return ModifySubscription }
