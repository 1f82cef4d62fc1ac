package datastream

import (
	"cmp"
	"fmt"
	"slices"
)

// maxPrealloc caps capacity reserved from an untrusted element count.
const maxPrealloc = 4096

// WriteList writes a uint32 element count followed by each element.
func WriteList[T any](s *Stream, list []T, write func(*Stream, T)) {
	s.WriteUint32(uint32(len(list)))
	for _, v := range list {
		write(s, v)
	}
}

// ReadList reads a list written by WriteList. The wire form does not tell nil
// from empty, so any zero-length list reads back as nil; compare with len.
func ReadList[T any](s *Stream, read func(*Stream) (T, error)) ([]T, error) {
	count, err := s.ReadUint32()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	out := make([]T, 0, min(int(count), maxPrealloc))
	for i := uint32(0); i < count; i++ {
		v, err := read(s)
		if err != nil {
			return nil, fmt.Errorf("list element %d/%d: %w", i, count, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// WriteSet writes the members of set in ascending order, encoded like a list.
func WriteSet[T cmp.Ordered](s *Stream, set map[T]struct{}, write func(*Stream, T)) {
	keys := make([]T, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	WriteList(s, keys, write)
}

// ReadSet reads a set written by WriteSet. Duplicate members collapse.
func ReadSet[T comparable](s *Stream, read func(*Stream) (T, error)) (map[T]struct{}, error) {
	list, err := ReadList(s, read)
	if err != nil {
		return nil, err
	}
	out := make(map[T]struct{}, len(list))
	for _, v := range list {
		out[v] = struct{}{}
	}
	return out, nil
}

// WriteMap writes a uint32 entry count followed by key/value pairs in
// ascending key order.
func WriteMap[K cmp.Ordered, V any](s *Stream, m map[K]V, writeKey func(*Stream, K), writeValue func(*Stream, V)) {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	s.WriteUint32(uint32(len(keys)))
	for _, k := range keys {
		writeKey(s, k)
		writeValue(s, m[k])
	}
}

// ReadMap reads a map written by WriteMap. Later duplicates win.
func ReadMap[K comparable, V any](s *Stream, readKey func(*Stream) (K, error), readValue func(*Stream) (V, error)) (map[K]V, error) {
	count, err := s.ReadUint32()
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, min(int(count), maxPrealloc))
	for i := uint32(0); i < count; i++ {
		k, err := readKey(s)
		if err != nil {
			return nil, fmt.Errorf("map key %d/%d: %w", i, count, err)
		}
		v, err := readValue(s)
		if err != nil {
			return nil, fmt.Errorf("map value %d/%d: %w", i, count, err)
		}
		out[k] = v
	}
	return out, nil
}
