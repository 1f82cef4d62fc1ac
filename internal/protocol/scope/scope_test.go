package scope

import (
	"bytes"
	"errors"
	"testing"

	"github.com/goccy/go-json"

	"github.com/danmuck/pimd/internal/protocol/datastream"
	"github.com/danmuck/pimd/internal/testutil/testlog"
)

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestSingleElementAccessors(t *testing.T) {
	testlog.Start(t)
	if got := FromUIDs([]int64{7}).UID(); got != 7 {
		t.Fatalf("uid got=%d", got)
	}
	if got := FromUID(42).UID(); got != 42 {
		t.Fatalf("uid got=%d", got)
	}
	if got := FromRID("r1").RID(); got != "r1" {
		t.Fatalf("rid got=%q", got)
	}
	if got := FromGID("g1").GID(); got != "g1" {
		t.Fatalf("gid got=%q", got)
	}
}

func TestAccessorContractViolations(t *testing.T) {
	testlog.Start(t)
	mustPanic(t, "multi uid", func() { FromUIDs([]int64{1, 2}).UID() })
	mustPanic(t, "disjoint uid", func() { FromUIDs([]int64{1, 5}).UID() })
	mustPanic(t, "empty uid", func() { FromUIDs(nil).UID() })
	mustPanic(t, "rid on uid", func() { FromUID(1).RID() })
	mustPanic(t, "multi gid", func() { FromRemoteIDs(GID, []string{"a", "b"}).GID() })
	mustPanic(t, "hrid kind", func() { FromRemoteIDs(HierarchicalRID, nil) })
}

func TestIsEmpty(t *testing.T) {
	testlog.Start(t)
	if !(Scope{}).IsEmpty() {
		t.Fatalf("invalid scope should be empty")
	}
	if !FromUIDs(nil).IsEmpty() || !FromRemoteIDs(RID, nil).IsEmpty() || !FromHRID(nil).IsEmpty() {
		t.Fatalf("empty payloads should be empty")
	}
	if FromUID(3).IsEmpty() {
		t.Fatalf("uid scope should not be empty")
	}
}

func TestEqual(t *testing.T) {
	testlog.Start(t)
	if !FromUIDs([]int64{3, 1, 2}).Equal(FromUIDs([]int64{1, 2, 3})) {
		t.Fatalf("order should not matter for uid scopes")
	}
	if FromRemoteIDs(RID, []string{"a"}).Equal(FromRemoteIDs(GID, []string{"a"})) {
		t.Fatalf("rid and gid scopes must differ")
	}
	if !(Scope{}).Equal(Scope{}) {
		t.Fatalf("invalid scopes should be equal")
	}
}

func TestJSONProjection(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		in   Scope
		want string
	}{
		{FromUIDs([]int64{1, 2, 3, 9}), `{"type":"UID","value":"1:3,9"}`},
		{FromRemoteIDs(RID, []string{"a", "b"}), `{"type":"RID","value":["a","b"]}`},
		{FromGID("g"), `{"type":"GID","value":["g"]}`},
		{FromHRID([]HRID{{ID: 5, RemoteID: "leaf"}, {ID: 0, RemoteID: ""}}), `{"type":"HRID","value":[{"id":5,"remoteId":"leaf"},{"id":0,"remoteId":""}]}`},
		{Scope{}, `{"type":"invalid"}`},
	}
	for _, tc := range cases {
		got, err := json.Marshal(tc.in)
		if err != nil {
			t.Fatalf("marshal %v: %v", tc.in, err)
		}
		if string(got) != tc.want {
			t.Fatalf("got=%s want=%s", got, tc.want)
		}
	}
}

func TestWireRoundTrip(t *testing.T) {
	testlog.Start(t)
	cases := []Scope{
		{},
		FromUIDs([]int64{4, 5, 6, 10}),
		FromRemoteIDs(RID, []string{"rid-1", "ríd-2"}),
		FromGID("gid"),
		FromHRID([]HRID{{ID: -1, RemoteID: "child"}, {ID: 12, RemoteID: "parent"}}),
	}
	for _, in := range cases {
		var buf bytes.Buffer
		w := datastream.NewWriter(&buf)
		in.Write(w)
		if err := w.Flush(); err != nil {
			t.Fatalf("flush: %v", err)
		}
		got, err := Read(datastream.NewReader(&buf))
		if err != nil {
			t.Fatalf("read %v: %v", in, err)
		}
		if !got.Equal(in) {
			t.Fatalf("got=%v want=%v", got, in)
		}
	}
}

func TestReadUnknownKind(t *testing.T) {
	testlog.Start(t)
	_, err := Read(datastream.NewReader(bytes.NewReader([]byte{9})))
	if !errors.Is(err, datastream.ErrCorruptData) {
		t.Fatalf("expected corrupt data, got %v", err)
	}
}
