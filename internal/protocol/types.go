package protocol

import "fmt"

// Type identifies a logical operation. Commands travel with the bare value,
// responses with ResponseBit set.
type Type uint8

const (
	Invalid Type = 0

	Hello  Type = 1
	Login  Type = 2
	Logout Type = 3

	Transaction Type = 10

	CreateItem  Type = 20
	CopyItems   Type = 21
	DeleteItems Type = 22
	FetchItems  Type = 23
	LinkItems   Type = 24
	ModifyItems Type = 25
	MoveItems   Type = 26

	CreateCollection     Type = 40
	CopyCollection       Type = 41
	DeleteCollection     Type = 42
	FetchCollections     Type = 43
	FetchCollectionStats Type = 44
	ModifyCollection     Type = 45
	MoveCollection       Type = 46

	Search       Type = 60
	SearchResult Type = 61
	StoreSearch  Type = 62

	CreateTag Type = 70
	DeleteTag Type = 71
	FetchTags Type = 72
	ModifyTag Type = 73

	FetchRelations  Type = 80
	ModifyRelation  Type = 81
	RemoveRelations Type = 82

	SelectResource Type = 90

	StreamPayload Type = 100

	ItemChangeNotification         Type = 110
	CollectionChangeNotification   Type = 111
	TagChangeNotification          Type = 112
	RelationChangeNotification     Type = 113
	SubscriptionChangeNotification Type = 114
	DebugChangeNotification        Type = 115
	CreateSubscription             Type = 116
	ModifySubscription             Type = 117

	// ResponseBit marks a response on the wire. It is never part of Type().
	ResponseBit Type = 0x80
)

var typeNames = map[Type]string{
	Invalid:                        "Invalid",
	Hello:                          "Hello",
	Login:                          "Login",
	Logout:                         "Logout",
	Transaction:                    "Transaction",
	CreateItem:                     "CreateItem",
	CopyItems:                      "CopyItems",
	DeleteItems:                    "DeleteItems",
	FetchItems:                     "FetchItems",
	LinkItems:                      "LinkItems",
	ModifyItems:                    "ModifyItems",
	MoveItems:                      "MoveItems",
	CreateCollection:               "CreateCollection",
	CopyCollection:                 "CopyCollection",
	DeleteCollection:               "DeleteCollection",
	FetchCollections:               "FetchCollections",
	FetchCollectionStats:           "FetchCollectionStats",
	ModifyCollection:               "ModifyCollection",
	MoveCollection:                 "MoveCollection",
	Search:                         "Search",
	SearchResult:                   "SearchResult",
	StoreSearch:                    "StoreSearch",
	CreateTag:                      "CreateTag",
	DeleteTag:                      "DeleteTag",
	FetchTags:                      "FetchTags",
	ModifyTag:                      "ModifyTag",
	FetchRelations:                 "FetchRelations",
	ModifyRelation:                 "ModifyRelation",
	RemoveRelations:                "RemoveRelations",
	SelectResource:                 "SelectResource",
	StreamPayload:                  "StreamPayload",
	ItemChangeNotification:         "ItemChangeNotification",
	CollectionChangeNotification:   "CollectionChangeNotification",
	TagChangeNotification:          "TagChangeNotification",
	RelationChangeNotification:     "RelationChangeNotification",
	SubscriptionChangeNotification: "SubscriptionChangeNotification",
	DebugChangeNotification:        "DebugChangeNotification",
	CreateSubscription:             "CreateSubscription",
	ModifySubscription:             "ModifySubscription",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	if t&ResponseBit != 0 {
		if name, ok := typeNames[t&^ResponseBit]; ok {
			return name + "Response"
		}
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Types lists every catalogue entry except Invalid, in numeric order.
func Types() []Type {
	out := make([]Type, 0, len(typeNames)-1)
	for t := Type(1); t < ResponseBit; t++ {
		if _, ok := typeNames[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// ProtocolVersion is announced in the server greeting.
const ProtocolVersion int32 = 62
