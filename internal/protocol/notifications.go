package protocol

import (
	"fmt"
	"slices"

	"github.com/danmuck/pimd/internal/protocol/datastream"
)

// ChangeNotification is implemented by every notification pushed to subscribers.
type ChangeNotification interface {
	Command
	Base() *NotificationBase
}

// NotificationBase carries the fields shared by all change notifications.
// SessionID is the session that caused the change.
type NotificationBase struct {
	SessionID string
	Metadata  []string
}

func (n *NotificationBase) Base() *NotificationBase { return n }
func (*NotificationBase) IsValid() bool              { return true }
func (*NotificationBase) IsResponse() bool           { return false }

func (n *NotificationBase) HasMetadata(key string) bool {
	return slices.Contains(n.Metadata, key)
}

func (n *NotificationBase) encodeBase(w *datastream.Stream) {
	writeByteString(w, n.SessionID)
	writeByteStrings(w, n.Metadata)
}

func (n *NotificationBase) decodeBase(d *decoder) {
	n.SessionID = d.byteString()
	n.Metadata = d.byteStrings()
}

// ItemOperation is the change an ItemNotification reports.
type ItemOperation uint8

const (
	ItemOpInvalid ItemOperation = iota
	ItemAdd
	ItemModify
	ItemMove
	ItemRemove
	ItemLink
	ItemUnlink
	ItemModifyFlags
	ItemModifyTags
	ItemModifyRelations
)

var itemOperationNames = []string{"Invalid", "Add", "Modify", "Move", "Remove", "Link", "Unlink", "ModifyFlags", "ModifyTags", "ModifyRelations"}

func (o ItemOperation) String() string { return enumName(itemOperationNames, int(o)) }

// ItemNotification reports a change to one or more items of one collection.
type ItemNotification struct {
	NotificationBase
	Operation           ItemOperation
	Items               []FetchItemsResponse
	Resource            string
	DestinationResource string
	Parent              int64
	ParentDestination   int64
	ItemParts           []string
	AddedFlags          []string
	RemovedFlags        []string
	AddedTags           []int64
	RemovedTags         []int64
	MustRetrieve        bool
}

func (*ItemNotification) Type() Type { return ItemChangeNotification }

func (n *ItemNotification) encode(w *datastream.Stream) {
	n.encodeBase(w)
	w.WriteUint8(uint8(n.Operation))
	writeRecords(w, n.Items)
	writeByteString(w, n.Resource)
	writeByteString(w, n.DestinationResource)
	w.WriteInt64(n.Parent)
	w.WriteInt64(n.ParentDestination)
	writeByteStrings(w, n.ItemParts)
	writeByteStrings(w, n.AddedFlags)
	writeByteStrings(w, n.RemovedFlags)
	writeInt64s(w, n.AddedTags)
	writeInt64s(w, n.RemovedTags)
	w.WriteBool(n.MustRetrieve)
}

func (n *ItemNotification) decode(d *decoder) {
	n.decodeBase(d)
	n.Operation = ItemOperation(d.uint8())
	n.Items = decodeRecords[FetchItemsResponse](d)
	n.Resource = d.byteString()
	n.DestinationResource = d.byteString()
	n.Parent = d.int64()
	n.ParentDestination = d.int64()
	n.ItemParts = d.byteStrings()
	n.AddedFlags = d.byteStrings()
	n.RemovedFlags = d.byteStrings()
	n.AddedTags = d.int64s()
	n.RemovedTags = d.int64s()
	n.MustRetrieve = d.bool()
}

// CollectionOperation is the change a CollectionNotification reports.
type CollectionOperation uint8

const (
	CollectionOpInvalid CollectionOperation = iota
	CollectionAdd
	CollectionModify
	CollectionMove
	CollectionRemove
	CollectionSubscribe
	CollectionUnsubscribe
)

var collectionOperationNames = []string{"Invalid", "Add", "Modify", "Move", "Remove", "Subscribe", "Unsubscribe"}

func (o CollectionOperation) String() string { return enumName(collectionOperationNames, int(o)) }

// CollectionNotification reports a change to one collection.
type CollectionNotification struct {
	NotificationBase
	Operation            CollectionOperation
	Collection           FetchCollectionsResponse
	ParentCollection     int64
	ParentDestCollection int64
	Resource             string
	DestinationResource  string
	ChangedParts         []string
}

func (*CollectionNotification) Type() Type { return CollectionChangeNotification }

func (n *CollectionNotification) encode(w *datastream.Stream) {
	n.encodeBase(w)
	w.WriteUint8(uint8(n.Operation))
	n.Collection.encode(w)
	w.WriteInt64(n.ParentCollection)
	w.WriteInt64(n.ParentDestCollection)
	writeByteString(w, n.Resource)
	writeByteString(w, n.DestinationResource)
	writeByteStrings(w, n.ChangedParts)
}

func (n *CollectionNotification) decode(d *decoder) {
	n.decodeBase(d)
	n.Operation = CollectionOperation(d.uint8())
	n.Collection.decode(d)
	n.ParentCollection = d.int64()
	n.ParentDestCollection = d.int64()
	n.Resource = d.byteString()
	n.DestinationResource = d.byteString()
	n.ChangedParts = d.byteStrings()
}

// TagOperation is the change a TagNotification reports.
type TagOperation uint8

const (
	TagOpInvalid TagOperation = iota
	TagAdd
	TagModify
	TagRemove
)

var tagOperationNames = []string{"Invalid", "Add", "Modify", "Remove"}

func (o TagOperation) String() string { return enumName(tagOperationNames, int(o)) }

// TagNotification reports a change to one tag. A removal carries the
// resource it is addressed to, or no resource for the generic copy.
type TagNotification struct {
	NotificationBase
	Operation TagOperation
	Tag       FetchTagsResponse
	Resource  string
}

func (*TagNotification) Type() Type { return TagChangeNotification }

func (n *TagNotification) encode(w *datastream.Stream) {
	n.encodeBase(w)
	w.WriteUint8(uint8(n.Operation))
	n.Tag.encode(w)
	writeByteString(w, n.Resource)
}

func (n *TagNotification) decode(d *decoder) {
	n.decodeBase(d)
	n.Operation = TagOperation(d.uint8())
	n.Tag.decode(d)
	n.Resource = d.byteString()
}

// RelationOperation is the change a RelationNotification reports.
type RelationOperation uint8

const (
	RelationOpInvalid RelationOperation = iota
	RelationAdd
	RelationRemove
)

var relationOperationNames = []string{"Invalid", "Add", "Remove"}

func (o RelationOperation) String() string { return enumName(relationOperationNames, int(o)) }

type RelationNotification struct {
	NotificationBase
	Operation RelationOperation
	Relation  FetchRelationsResponse
}

func (*RelationNotification) Type() Type { return RelationChangeNotification }

func (n *RelationNotification) encode(w *datastream.Stream) {
	n.encodeBase(w)
	w.WriteUint8(uint8(n.Operation))
	n.Relation.encode(w)
}

func (n *RelationNotification) decode(d *decoder) {
	n.decodeBase(d)
	n.Operation = RelationOperation(d.uint8())
	n.Relation.decode(d)
}

// SubscriptionOperation is the change a SubscriptionNotification reports.
type SubscriptionOperation uint8

const (
	SubscriptionOpInvalid SubscriptionOperation = iota
	SubscriptionAdd
	SubscriptionModify
	SubscriptionRemove
)

var subscriptionOperationNames = []string{"Invalid", "Add", "Modify", "Remove"}

func (o SubscriptionOperation) String() string { return enumName(subscriptionOperationNames, int(o)) }

// SubscriptionNotification reports a subscriber joining, changing its filter
// or leaving, together with its complete filter state.
type SubscriptionNotification struct {
	NotificationBase
	Operation            SubscriptionOperation
	Subscriber           string
	Collections          []int64
	Items                []int64
	Tags                 []int64
	Types                []ChangeType
	MimeTypes            []string
	Resources            []string
	IgnoredSessions      []string
	AllMonitored         bool
	Exclusive            bool
	ItemFetchScope       ItemFetchScope
	CollectionFetchScope CollectionFetchScope
	TagFetchScope        TagFetchScope
}

func (*SubscriptionNotification) Type() Type { return SubscriptionChangeNotification }

func (n *SubscriptionNotification) encode(w *datastream.Stream) {
	n.encodeBase(w)
	w.WriteUint8(uint8(n.Operation))
	writeByteString(w, n.Subscriber)
	writeInt64s(w, n.Collections)
	writeInt64s(w, n.Items)
	writeInt64s(w, n.Tags)
	writeChangeTypes(w, n.Types)
	writeStrings(w, n.MimeTypes)
	writeByteStrings(w, n.Resources)
	writeByteStrings(w, n.IgnoredSessions)
	w.WriteBool(n.AllMonitored)
	w.WriteBool(n.Exclusive)
	n.ItemFetchScope.encode(w)
	n.CollectionFetchScope.encode(w)
	n.TagFetchScope.encode(w)
}

func (n *SubscriptionNotification) decode(d *decoder) {
	n.decodeBase(d)
	n.Operation = SubscriptionOperation(d.uint8())
	n.Subscriber = d.byteString()
	n.Collections = d.int64s()
	n.Items = d.int64s()
	n.Tags = d.int64s()
	n.Types = d.changeTypes()
	n.MimeTypes = d.strings()
	n.Resources = d.byteStrings()
	n.IgnoredSessions = d.byteStrings()
	n.AllMonitored = d.bool()
	n.Exclusive = d.bool()
	n.ItemFetchScope.decode(d)
	n.CollectionFetchScope.decode(d)
	n.TagFetchScope.decode(d)
}

// DebugNotification wraps another notification with the names of the
// subscribers that accepted it. Timestamp is in milliseconds since the epoch.
type DebugNotification struct {
	NotificationBase
	Notification ChangeNotification
	Listeners    []string
	Timestamp    int64
}

func (*DebugNotification) Type() Type { return DebugChangeNotification }

func (n *DebugNotification) encode(w *datastream.Stream) {
	n.encodeBase(w)
	if n.Notification == nil {
		Serialize(w, &InvalidCommand{})
	} else {
		Serialize(w, n.Notification)
	}
	writeByteStrings(w, n.Listeners)
	w.WriteInt64(n.Timestamp)
}

func (n *DebugNotification) decode(d *decoder) {
	n.decodeBase(d)
	n.Notification = d.wrappedNotification()
	n.Listeners = d.byteStrings()
	n.Timestamp = d.int64()
}

// wrappedNotification reads the notification inside a debug notification.
// Only plain change notifications may be wrapped, so decoding never nests.
func (d *decoder) wrappedNotification() ChangeNotification {
	code := Type(readWith(d, (*datastream.Stream).PeekUint8))
	if d.err != nil {
		return nil
	}
	switch code {
	case Invalid:
		d.uint8()
		return nil
	case ItemChangeNotification, CollectionChangeNotification, TagChangeNotification,
		RelationChangeNotification, SubscriptionChangeNotification:
	default:
		d.err = fmt.Errorf("%w: debug notification cannot wrap %s", datastream.ErrCorruptData, code)
		return nil
	}
	inner, _ := readWith(d, Deserialize).(ChangeNotification)
	return inner
}

func enumName(names []string, v int) string {
	if v >= 0 && v < len(names) {
		return names[v]
	}
	return "Unknown"
}
