// Package scope addresses entities by internal id, remote id, global id or
// by a chain of ancestors.
package scope

import (
	"fmt"
	"slices"

	"github.com/goccy/go-json"

	"github.com/danmuck/pimd/internal/protocol/datastream"
	"github.com/danmuck/pimd/internal/protocol/imapset"
)

// Kind is the variant tag written before the payload.
type Kind uint8

const (
	Invalid         Kind = 0
	UID             Kind = 1
	RID             Kind = 2
	HierarchicalRID Kind = 3
	GID             Kind = 4
)

func (k Kind) String() string {
	switch k {
	case UID:
		return "UID"
	case RID:
		return "RID"
	case HierarchicalRID:
		return "HRID"
	case GID:
		return "GID"
	default:
		return "invalid"
	}
}

// HRID is one link of an ancestor chain.
type HRID struct {
	ID       int64  `json:"id"`
	RemoteID string `json:"remoteId"`
}

// Scope is immutable once built. The zero value is the Invalid scope.
type Scope struct {
	kind Kind
	uids imapset.Set
	rids []string
	hrid []HRID
}

func FromUID(id int64) Scope {
	return Scope{kind: UID, uids: imapset.FromIntervals(imapset.Single(id))}
}

// FromUIDs compresses ids into an interval set.
func FromUIDs(ids []int64) Scope {
	return Scope{kind: UID, uids: imapset.FromIDs(ids...)}
}

func FromSet(set imapset.Set) Scope {
	return Scope{kind: UID, uids: set}
}

// FromRemoteIDs builds a RID or GID scope.
func FromRemoteIDs(kind Kind, ids []string) Scope {
	if kind != RID && kind != GID {
		panic(fmt.Sprintf("scope: %s is not a remote id kind", kind))
	}
	return Scope{kind: kind, rids: slices.Clone(ids)}
}

func FromRID(id string) Scope {
	return FromRemoteIDs(RID, []string{id})
}

func FromGID(id string) Scope {
	return FromRemoteIDs(GID, []string{id})
}

// FromHRID builds a scope from an ancestor chain ordered leaf to root.
func FromHRID(chain []HRID) Scope {
	return Scope{kind: HierarchicalRID, hrid: slices.Clone(chain)}
}

func (s Scope) Kind() Kind {
	return s.kind
}

func (s Scope) IsEmpty() bool {
	switch s.kind {
	case UID:
		return s.uids.IsEmpty()
	case RID, GID:
		return len(s.rids) == 0
	case HierarchicalRID:
		return len(s.hrid) == 0
	default:
		return true
	}
}

// UIDSet returns the id payload; it is empty for other kinds.
func (s Scope) UIDSet() imapset.Set {
	return s.uids
}

func (s Scope) RIDSet() []string {
	if s.kind != RID {
		return nil
	}
	return slices.Clone(s.rids)
}

func (s Scope) GIDSet() []string {
	if s.kind != GID {
		return nil
	}
	return slices.Clone(s.rids)
}

func (s Scope) HRIDChain() []HRID {
	return slices.Clone(s.hrid)
}

// UID returns the single id. It panics unless the scope holds exactly one id.
func (s Scope) UID() int64 {
	ivs := s.uids.Intervals()
	if s.kind != UID || len(ivs) != 1 || ivs[0].Size() != 1 {
		panic(fmt.Sprintf("scope: UID() on %s scope %q", s.kind, s.uids.Text()))
	}
	return ivs[0].Begin
}

// RID returns the single remote id. It panics unless exactly one is held.
func (s Scope) RID() string {
	if s.kind != RID || len(s.rids) != 1 {
		panic(fmt.Sprintf("scope: RID() on %s scope with %d ids", s.kind, len(s.rids)))
	}
	return s.rids[0]
}

// GID returns the single global id. It panics unless exactly one is held.
func (s Scope) GID() string {
	if s.kind != GID || len(s.rids) != 1 {
		panic(fmt.Sprintf("scope: GID() on %s scope with %d ids", s.kind, len(s.rids)))
	}
	return s.rids[0]
}

func (s Scope) Equal(other Scope) bool {
	if s.kind != other.kind {
		return false
	}
	switch s.kind {
	case UID:
		return s.uids.Equal(other.uids)
	case RID, GID:
		return slices.Equal(s.rids, other.rids)
	case HierarchicalRID:
		return slices.Equal(s.hrid, other.hrid)
	default:
		return true
	}
}

func (s Scope) String() string {
	switch s.kind {
	case UID:
		return "UID " + s.uids.Text()
	case RID, GID:
		return fmt.Sprintf("%s %v", s.kind, s.rids)
	case HierarchicalRID:
		return fmt.Sprintf("HRID %v", s.hrid)
	default:
		return "invalid"
	}
}

type jsonScope struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
}

// MarshalJSON projects the scope as {"type": ..., "value": ...}.
func (s Scope) MarshalJSON() ([]byte, error) {
	out := jsonScope{Type: s.kind.String()}
	switch s.kind {
	case UID:
		out.Value = s.uids.Text()
	case RID, GID:
		out.Value = s.rids
	case HierarchicalRID:
		out.Value = s.hrid
	}
	return json.Marshal(out)
}

// Write encodes the variant tag followed by its payload.
func (s Scope) Write(w *datastream.Stream) {
	w.WriteUint8(uint8(s.kind))
	switch s.kind {
	case UID:
		s.uids.Write(w)
	case RID, GID:
		datastream.WriteList(w, s.rids, (*datastream.Stream).WriteString)
	case HierarchicalRID:
		datastream.WriteList(w, s.hrid, writeHRID)
	}
}

// Read decodes a scope written by Write.
func Read(r *datastream.Stream) (Scope, error) {
	raw, err := r.ReadUint8()
	if err != nil {
		return Scope{}, err
	}
	s := Scope{kind: Kind(raw)}
	switch s.kind {
	case Invalid:
	case UID:
		s.uids, err = imapset.Read(r)
	case RID, GID:
		s.rids, err = datastream.ReadList(r, (*datastream.Stream).ReadString)
	case HierarchicalRID:
		s.hrid, err = datastream.ReadList(r, readHRID)
	default:
		return Scope{}, fmt.Errorf("%w: unknown scope kind %d", datastream.ErrCorruptData, raw)
	}
	if err != nil {
		return Scope{}, fmt.Errorf("scope %s: %w", s.kind, err)
	}
	return s, nil
}

func writeHRID(w *datastream.Stream, h HRID) {
	w.WriteInt64(h.ID)
	w.WriteString(h.RemoteID)
}

func readHRID(r *datastream.Stream) (HRID, error) {
	id, err := r.ReadInt64()
	if err != nil {
		return HRID{}, err
	}
	rid, err := r.ReadString()
	if err != nil {
		return HRID{}, err
	}
	return HRID{ID: id, RemoteID: rid}, nil
}
