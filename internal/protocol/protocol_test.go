package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/pimd/internal/protocol/datastream"
	"github.com/danmuck/pimd/internal/protocol/scope"
	"github.com/danmuck/pimd/internal/testutil/testlog"
)

func roundTrip(t *testing.T, in Command) Command {
	t.Helper()
	var buf bytes.Buffer
	w := datastream.NewWriter(&buf)
	Serialize(w, in)
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	r := datastream.NewReader(&buf)
	out, err := Deserialize(r)
	if err != nil {
		t.Fatalf("deserialize %s: %v", in.Type(), err)
	}
	if r.Buffered() != 0 {
		t.Fatalf("%s left %d bytes unread", in.Type(), r.Buffered())
	}
	return out
}

func isNotification(t Type) bool {
	return t >= ItemChangeNotification && t <= DebugChangeNotification
}

func TestFactorySymmetry(t *testing.T) {
	testlog.Start(t)
	for _, typ := range Types() {
		if HasResponse(typ) {
			resp := NewResponse(typ)
			if !resp.IsValid() || !resp.IsResponse() || resp.Type() != typ {
				t.Fatalf("response %s: valid=%v response=%v type=%s", typ, resp.IsValid(), resp.IsResponse(), resp.Type())
			}
		} else if NewResponse(typ).IsValid() {
			t.Fatalf("response %s should be invalid", typ)
		}
		if HasCommand(typ) {
			cmd := NewCommand(typ)
			if !cmd.IsValid() || cmd.IsResponse() || cmd.Type() != typ {
				t.Fatalf("command %s: valid=%v response=%v type=%s", typ, cmd.IsValid(), cmd.IsResponse(), cmd.Type())
			}
		} else if NewCommand(typ).IsValid() {
			t.Fatalf("command %s should be invalid", typ)
		}
	}
}

func TestFactoryValidityTable(t *testing.T) {
	testlog.Start(t)
	for _, typ := range Types() {
		wantCommand := typ != Hello
		wantResponse := !isNotification(typ)
		if HasCommand(typ) != wantCommand {
			t.Fatalf("%s command form=%v want=%v", typ, HasCommand(typ), wantCommand)
		}
		if HasResponse(typ) != wantResponse {
			t.Fatalf("%s response form=%v want=%v", typ, HasResponse(typ), wantResponse)
		}
	}
	if !NewResponse(Hello).IsValid() {
		t.Fatalf("hello response should be valid")
	}
	if NewCommand(Hello).IsValid() {
		t.Fatalf("hello command should be invalid")
	}
	if !NewCommand(FetchCollectionStats).IsValid() || !NewResponse(FetchCollectionStats).IsValid() {
		t.Fatalf("fetch collection stats should have both forms")
	}
	for _, typ := range []Type{Invalid, ResponseBit, ResponseBit | Login, 99} {
		if NewCommand(typ).IsValid() || NewResponse(typ).IsValid() {
			t.Fatalf("type %s should not build", typ)
		}
	}
}

func TestTypeNames(t *testing.T) {
	testlog.Start(t)
	if Hello.String() != "Hello" {
		t.Fatalf("unexpected name %q", Hello.String())
	}
	if got := (Login | ResponseBit).String(); got != "LoginResponse" {
		t.Fatalf("unexpected response name %q", got)
	}
	if got := Type(99).String(); got != "Type(99)" {
		t.Fatalf("unexpected unknown name %q", got)
	}
}

func TestHelloRoundTrip(t *testing.T) {
	testlog.Start(t)
	in := &HelloResponse{ServerName: "pimd", Message: "not authenticated", Protocol: 62, Generation: 7}
	out, ok := roundTrip(t, in).(*HelloResponse)
	if !ok {
		t.Fatalf("expected hello response")
	}
	if *out != *in {
		t.Fatalf("got=%+v want=%+v", out, in)
	}
}

func TestResponseWireCodeCarriesResponseBit(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	w := datastream.NewWriter(&buf)
	Serialize(w, &LogoutResponse{})
	Serialize(w, &LogoutCommand{})
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	b := buf.Bytes()
	if b[0] != uint8(Logout|ResponseBit) {
		t.Fatalf("response code got=%#x", b[0])
	}
	// response: code + int32 error code + empty string length
	if b[9] != uint8(Logout) {
		t.Fatalf("command code got=%#x", b[9])
	}
}

func TestErrorResponseRoundTrip(t *testing.T) {
	testlog.Start(t)
	in := NewErrorResponse(FetchItems, 3, "no such item")
	out, ok := roundTrip(t, in).(*FetchItemsResponse)
	if !ok {
		t.Fatalf("expected fetch items response")
	}
	if !out.IsError() || out.ErrorCode() != 3 || out.ErrorMessage() != "no such item" {
		t.Fatalf("unexpected error fields code=%d msg=%q", out.ErrorCode(), out.ErrorMessage())
	}
}

func TestUnknownCommandIsTolerated(t *testing.T) {
	testlog.Start(t)
	r := datastream.NewReader(bytes.NewReader([]byte{99, 1, 2, 3}))
	cmd, err := Deserialize(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inv, ok := cmd.(*InvalidCommand)
	if !ok || inv.IsValid() || inv.RawType != 99 {
		t.Fatalf("unexpected command %#v", cmd)
	}
	if r.Buffered() != 3 {
		t.Fatalf("payload of unknown command should stay unread, buffered=%d", r.Buffered())
	}
}

func TestUnknownResponseIsTolerated(t *testing.T) {
	testlog.Start(t)
	out := roundTrip(t, NewErrorResponse(Type(99), 1, "gone"))
	inv, ok := out.(*InvalidResponse)
	if !ok || inv.IsValid() || inv.RawType != Type(99)|ResponseBit {
		t.Fatalf("unexpected response %#v", out)
	}
	if inv.ErrorMessage() != "gone" {
		t.Fatalf("unexpected message %q", inv.ErrorMessage())
	}
}

func TestTruncatedCommandFails(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	w := datastream.NewWriter(&buf)
	Serialize(w, &SelectResourceCommand{ResourceID: "akonadi_ical_resource_0"})
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-3]
	_, err := Deserialize(datastream.NewReader(bytes.NewReader(truncated)))
	if !errors.Is(err, datastream.ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestCommandRoundTrips(t *testing.T) {
	testlog.Start(t)
	mtime := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cases := []Command{
		&LoginCommand{SessionID: "session-1", SessionMode: NotificationBusMode},
		&TransactionCommand{Mode: TransactionCommit},
		&CreateItemCommand{
			Collection: scope.FromUID(4),
			MimeType:   "text/calendar",
			RemoteID:   "rid",
			DateTime:   mtime,
			Flags:      []string{"\\SEEN"},
			Tags:       scope.FromGID("tag-gid"),
			Attributes: Attributes{"ENTITYDISPLAY": []byte("x")},
			MergeModes: MergeGID | MergeSilent,
		},
		&MoveItemsCommand{itemsToDestination{Items: scope.FromUIDs([]int64{1, 2, 3}), Destination: scope.FromUID(9)}},
		&FetchItemsCommand{
			Scope:          scope.FromHRID([]scope.HRID{{ID: -1, RemoteID: "leaf"}, {ID: 3, RemoteID: "root"}}),
			ItemFetchScope: ItemFetchScope{RequestedParts: []string{"PLD:RFC822"}, AncestorDepth: ParentAncestor, Options: ItemFullPayload | ItemFlags},
			TagFetchScope:  TagFetchScope{FetchIDOnly: true},
		},
		&ModifyCollectionCommand{Collection: scope.FromUID(2), ModifiedParts: ModifyCollectionName, Name: "Inbox", SyncPref: TristateUndefined},
		&FetchCollectionStatsCommand{Collection: scope.FromUID(5)},
		&StoreSearchCommand{Name: "flagged", Query: "{}", QueryCollections: []int64{1, 2}, Recursive: true},
		&ModifyTagCommand{TagID: 8, ModifiedParts: ModifyTagRemoteID, RemoteID: "tag-rid"},
		&RemoveRelationsCommand{Left: 1, Right: 2, RelationType: "GENERIC"},
		&StreamPayloadCommand{PayloadName: "PLD:DATA", Request: PayloadData, Destination: "/tmp/x"},
		&CreateSubscriptionCommand{SubscriberName: "monitor", Session: "session-1"},
		&ModifySubscriptionCommand{
			ModifiedParts:    ModifyTypes | ModifyCollections | ModifyAdd,
			StartTypes:       []ChangeType{ItemChanges, SubscriptionChanges},
			StartCollections: []int64{0},
			StartMimeTypes:   []string{"text/vcard"},
			AllMonitored:     true,
		},
	}
	for _, in := range cases {
		out := roundTrip(t, in)
		if out.Type() != in.Type() || out.IsResponse() {
			t.Fatalf("type mismatch in=%s out=%s", in.Type(), out.Type())
		}
		inJSON, err := DebugJSON(in)
		if err != nil {
			t.Fatalf("debug %s: %v", in.Type(), err)
		}
		outJSON, err := DebugJSON(out)
		if err != nil {
			t.Fatalf("debug %s: %v", out.Type(), err)
		}
		if !bytes.Equal(inJSON, outJSON) {
			t.Fatalf("%s mismatch\n in=%s\nout=%s", in.Type(), inJSON, outJSON)
		}
	}
}

func TestFetchItemsResponseRoundTrip(t *testing.T) {
	testlog.Start(t)
	in := &FetchItemsResponse{
		ID:       10,
		Revision: 2,
		ParentID: 4,
		MimeType: "message/rfc822",
		MTime:    time.Date(2023, 7, 4, 12, 0, 0, 0, time.UTC),
		Flags:    []string{"\\SEEN", "\\FLAGGED"},
		Tags:     []FetchTagsResponse{{ID: 1, GID: "important"}},
		Parts: []StreamPayloadResponse{{
			PayloadName: "PLD:RFC822",
			MetaData:    PartMetaData{Name: "PLD:RFC822", Size: 3},
			Data:        []byte("abc"),
		}},
		Ancestors: []Ancestor{{ID: 4, RemoteID: "inbox"}},
	}
	out, ok := roundTrip(t, in).(*FetchItemsResponse)
	if !ok {
		t.Fatalf("expected fetch items response")
	}
	if out.ID != 10 || !out.MTime.Equal(in.MTime) || len(out.Tags) != 1 || out.Tags[0].GID != "important" {
		t.Fatalf("unexpected record %+v", out)
	}
	if len(out.Parts) != 1 || string(out.Parts[0].Data) != "abc" || out.Parts[0].MetaData.Size != 3 {
		t.Fatalf("unexpected parts %+v", out.Parts)
	}
}

func TestNotificationRoundTrips(t *testing.T) {
	testlog.Start(t)
	item := &ItemNotification{
		NotificationBase:    NotificationBase{SessionID: "res-session", Metadata: []string{"X"}},
		Operation:           ItemMove,
		Items:               []FetchItemsResponse{{ID: 1, MimeType: "text/vcard", ParentID: 3}},
		Resource:            "resA",
		DestinationResource: "resB",
		Parent:              3,
		ParentDestination:   5,
	}
	coll := &CollectionNotification{
		Operation:    CollectionModify,
		Collection:   FetchCollectionsResponse{ID: 7, Name: "Calendar", Enabled: true},
		ChangedParts: []string{"ENABLED"},
		Resource:     "resA",
	}
	tag := &TagNotification{Operation: TagRemove, Tag: FetchTagsResponse{ID: 2}, Resource: "resA"}
	rel := &RelationNotification{Operation: RelationAdd, Relation: FetchRelationsResponse{Left: 1, Right: 2, RelationType: "GENERIC"}}
	sub := &SubscriptionNotification{
		Operation:   SubscriptionModify,
		Subscriber:  "monitor",
		Collections: []int64{0},
		Types:       []ChangeType{ItemChanges, TagChanges},
		Exclusive:   true,
	}
	for _, in := range []ChangeNotification{item, coll, tag, rel, sub} {
		out, ok := roundTrip(t, in).(ChangeNotification)
		if !ok {
			t.Fatalf("%s did not decode as a notification", in.Type())
		}
		inJSON, _ := DebugJSON(in)
		outJSON, _ := DebugJSON(out)
		if !bytes.Equal(inJSON, outJSON) {
			t.Fatalf("%s mismatch\n in=%s\nout=%s", in.Type(), inJSON, outJSON)
		}
	}
	if got := item.Base().SessionID; got != "res-session" || !item.HasMetadata("X") {
		t.Fatalf("unexpected base %+v", item.Base())
	}
}

func TestDebugNotificationWrapsInner(t *testing.T) {
	testlog.Start(t)
	in := &DebugNotification{
		Notification: &TagNotification{Operation: TagAdd, Tag: FetchTagsResponse{ID: 4}},
		Listeners:    []string{"a", "b"},
		Timestamp:    1700000000000,
	}
	out, ok := roundTrip(t, in).(*DebugNotification)
	if !ok {
		t.Fatalf("expected debug notification")
	}
	inner, ok := out.Notification.(*TagNotification)
	if !ok || inner.Tag.ID != 4 || inner.Operation != TagAdd {
		t.Fatalf("unexpected inner notification %#v", out.Notification)
	}
	if len(out.Listeners) != 2 || out.Timestamp != in.Timestamp {
		t.Fatalf("unexpected debug fields %+v", out)
	}
	js, err := DebugJSON(out)
	if err != nil {
		t.Fatalf("debug json: %v", err)
	}
	if !strings.Contains(string(js), `"TagChangeNotification"`) {
		t.Fatalf("nested notification missing from %s", js)
	}
}

func TestDebugNotificationWithoutInner(t *testing.T) {
	testlog.Start(t)
	out, ok := roundTrip(t, &DebugNotification{Listeners: []string{"a"}, Timestamp: 7}).(*DebugNotification)
	if !ok {
		t.Fatalf("expected debug notification")
	}
	if out.Notification != nil || out.Timestamp != 7 || len(out.Listeners) != 1 {
		t.Fatalf("unexpected debug notification %+v", out)
	}
}

func TestNestedDebugNotificationIsRejected(t *testing.T) {
	testlog.Start(t)
	var nested ChangeNotification = &ItemNotification{}
	for i := 0; i < 10000; i++ {
		nested = &DebugNotification{Notification: nested}
	}
	var buf bytes.Buffer
	w := datastream.NewWriter(&buf)
	Serialize(w, nested)
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if _, err := Deserialize(datastream.NewReader(&buf)); !errors.Is(err, datastream.ErrCorruptData) {
		t.Fatalf("expected corrupt data for nested debug notification, got %v", err)
	}
}

func TestModifiedPartsBitsAreDistinct(t *testing.T) {
	testlog.Start(t)
	parts := []ModifiedParts{
		ModifyTypes, ModifyCollections, ModifyItemIDs, ModifyTags, ModifyResources,
		ModifyMimeTypes, ModifySessions, ModifyAllFlag, ModifyExclusiveFlag,
		ModifyItemFetchScope, ModifyCollectionFetchScope, ModifyTagFetchScope,
		ModifyAdd, ModifyRemove,
	}
	var seen ModifiedParts
	for _, p := range parts {
		if seen&p != 0 {
			t.Fatalf("bit %b reused", p)
		}
		seen |= p
	}
	m := ModifyItemIDs | ModifyAdd
	if !m.Has(ModifyItemIDs|ModifyAdd) || m.Has(ModifyItemIDs|ModifyRemove) {
		t.Fatalf("unexpected Has results for %b", m)
	}
}
