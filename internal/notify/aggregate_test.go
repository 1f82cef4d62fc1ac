package notify

import (
	"slices"
	"testing"
	"time"

	"github.com/danmuck/pimd/internal/protocol"
	"github.com/danmuck/pimd/internal/testutil/testlog"
)

func TestAggregatedItemFetchScopeRefCounts(t *testing.T) {
	testlog.Start(t)
	a := NewAggregatedItemFetchScope()
	a.AddSubscriber()
	a.AddSubscriber()

	one := protocol.ItemFetchScope{RequestedParts: []string{"PLD:HEAD", "PLD:RFC822"}, Options: protocol.ItemFlags | protocol.ItemCacheOnly}
	two := protocol.ItemFetchScope{RequestedParts: []string{"PLD:HEAD"}, AncestorDepth: protocol.AllAncestors, Options: protocol.ItemCacheOnly}
	a.Apply(protocol.ItemFetchScope{}, one)
	a.Apply(protocol.ItemFetchScope{}, two)

	got := a.Scope()
	if !slices.Equal(got.RequestedParts, []string{"PLD:HEAD", "PLD:RFC822"}) {
		t.Fatalf("unexpected parts: %v", got.RequestedParts)
	}
	if got.AncestorDepth != protocol.AllAncestors {
		t.Fatalf("unexpected ancestor depth: %v", got.AncestorDepth)
	}
	if !got.Has(protocol.ItemFlags) || !got.Has(protocol.ItemCacheOnly) {
		t.Fatalf("unexpected options: %b", got.Options)
	}

	a.Apply(one, protocol.ItemFetchScope{})
	a.RemoveSubscriber()
	got = a.Scope()
	if !slices.Equal(got.RequestedParts, []string{"PLD:HEAD"}) {
		t.Fatalf("shared part released early: %v", got.RequestedParts)
	}
	if got.Has(protocol.ItemFlags) {
		t.Fatalf("flags still requested after release")
	}
}

func TestAggregatedCacheOnlyNeedsEverySubscriber(t *testing.T) {
	testlog.Start(t)
	a := NewAggregatedItemFetchScope()
	a.AddSubscriber()
	a.AddSubscriber()
	a.Apply(protocol.ItemFetchScope{}, protocol.ItemFetchScope{Options: protocol.ItemCacheOnly})
	if a.Scope().Has(protocol.ItemCacheOnly) {
		t.Fatalf("cache-only granted while another subscriber wants full data")
	}
	a.Apply(protocol.ItemFetchScope{}, protocol.ItemFetchScope{Options: protocol.ItemCacheOnly})
	if !a.Scope().Has(protocol.ItemCacheOnly) {
		t.Fatalf("cache-only not granted when unanimous")
	}
}

func TestAggregatedChangedSinceTakesEarliest(t *testing.T) {
	testlog.Start(t)
	a := NewAggregatedItemFetchScope()
	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	a.Apply(protocol.ItemFetchScope{}, protocol.ItemFetchScope{ChangedSince: late})
	a.Apply(protocol.ItemFetchScope{}, protocol.ItemFetchScope{ChangedSince: early})
	if got := a.Scope().ChangedSince; !got.Equal(early) {
		t.Fatalf("changedSince got=%v want=%v", got, early)
	}
	a.Apply(protocol.ItemFetchScope{ChangedSince: early}, protocol.ItemFetchScope{})
	if got := a.Scope().ChangedSince; !got.Equal(late) {
		t.Fatalf("changedSince got=%v want=%v", got, late)
	}
}

func TestAggregatedCollectionAndTagScopes(t *testing.T) {
	testlog.Start(t)
	c := NewAggregatedCollectionFetchScope()
	c.AddSubscriber()
	c.Apply(protocol.CollectionFetchScope{}, protocol.CollectionFetchScope{
		Attributes:        []string{"ENTITYDISPLAY"},
		IncludeStatistics: true,
		FetchIDOnly:       true,
		AncestorRetrieval: protocol.ParentAncestor,
	})
	got := c.Scope()
	if !got.IncludeStatistics || !got.FetchIDOnly || got.AncestorRetrieval != protocol.ParentAncestor {
		t.Fatalf("unexpected collection scope: %+v", got)
	}
	c.AddSubscriber()
	if c.Scope().FetchIDOnly {
		t.Fatalf("id-only kept with a second subscriber that wants full data")
	}

	tags := NewAggregatedTagFetchScope()
	tags.AddSubscriber()
	tags.Apply(protocol.TagFetchScope{}, protocol.TagFetchScope{FetchRemoteID: true, Attributes: []string{"COLOR"}})
	tags.Apply(protocol.TagFetchScope{FetchRemoteID: true, Attributes: []string{"COLOR"}}, protocol.TagFetchScope{})
	if !tags.Scope().IsEmpty() {
		t.Fatalf("tag scope not released: %+v", tags.Scope())
	}
}

func TestCanonicalMimeType(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"text/directory":               "text/vcard",
		"TEXT/X-VCARD":                 "text/vcard",
		"text/calendar; charset=utf-8": "text/calendar",
		"message/rfc822":               "message/rfc822",
		" application/ics ":            "text/calendar",
	}
	for in, want := range cases {
		if got := CanonicalMimeType(in); got != want {
			t.Fatalf("CanonicalMimeType(%q)=%q want=%q", in, got, want)
		}
	}
}
