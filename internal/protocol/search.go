package protocol

import (
	"github.com/danmuck/pimd/internal/protocol/datastream"
	"github.com/danmuck/pimd/internal/protocol/scope"
)

type SearchCommand struct {
	commandBase
	MimeTypes      []string
	Collections    []int64
	Query          string
	ItemFetchScope ItemFetchScope
	TagFetchScope  TagFetchScope
	Recursive      bool
	Remote         bool
}

func (*SearchCommand) Type() Type { return Search }

func (c *SearchCommand) encode(w *datastream.Stream) {
	writeStrings(w, c.MimeTypes)
	writeInt64s(w, c.Collections)
	w.WriteString(c.Query)
	c.ItemFetchScope.encode(w)
	c.TagFetchScope.encode(w)
	w.WriteBool(c.Recursive)
	w.WriteBool(c.Remote)
}

func (c *SearchCommand) decode(d *decoder) {
	c.MimeTypes = d.strings()
	c.Collections = d.int64s()
	c.Query = d.string()
	c.ItemFetchScope.decode(d)
	c.TagFetchScope.decode(d)
	c.Recursive = d.bool()
	c.Remote = d.bool()
}

type SearchResponse struct{ ResponseBase }

func (*SearchResponse) Type() Type { return Search }

// SearchResultCommand reports matches found by a search plugin or resource.
type SearchResultCommand struct {
	commandBase
	SearchID   string
	Collection int64
	Result     scope.Scope
}

func (*SearchResultCommand) Type() Type { return SearchResult }

func (c *SearchResultCommand) encode(w *datastream.Stream) {
	writeByteString(w, c.SearchID)
	w.WriteInt64(c.Collection)
	c.Result.Write(w)
}

func (c *SearchResultCommand) decode(d *decoder) {
	c.SearchID = d.byteString()
	c.Collection = d.int64()
	c.Result = d.scope()
}

type SearchResultResponse struct{ ResponseBase }

func (*SearchResultResponse) Type() Type { return SearchResult }

// StoreSearchCommand persists a search as a virtual collection.
type StoreSearchCommand struct {
	commandBase
	Name             string
	Query            string
	QueryAttributes  Attributes
	MimeTypes        []string
	QueryCollections []int64
	Remote           bool
	Recursive        bool
}

func (*StoreSearchCommand) Type() Type { return StoreSearch }

func (c *StoreSearchCommand) encode(w *datastream.Stream) {
	w.WriteString(c.Name)
	w.WriteString(c.Query)
	writeAttributes(w, c.QueryAttributes)
	writeStrings(w, c.MimeTypes)
	writeInt64s(w, c.QueryCollections)
	w.WriteBool(c.Remote)
	w.WriteBool(c.Recursive)
}

func (c *StoreSearchCommand) decode(d *decoder) {
	c.Name = d.string()
	c.Query = d.string()
	c.QueryAttributes = d.attributes()
	c.MimeTypes = d.strings()
	c.QueryCollections = d.int64s()
	c.Remote = d.bool()
	c.Recursive = d.bool()
}

type StoreSearchResponse struct{ ResponseBase }

func (*StoreSearchResponse) Type() Type { return StoreSearch }
