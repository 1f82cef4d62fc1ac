package notify

import (
	"cmp"
	"slices"
)

type set[T cmp.Ordered] map[T]struct{}

func (s set[T]) add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

func (s set[T]) remove(vs ...T) {
	for _, v := range vs {
		delete(s, v)
	}
}

func (s set[T]) has(v T) bool {
	_, ok := s[v]
	return ok
}

func (s set[T]) sorted() []T {
	var keys []T
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// counter is a multiset: a key stays present while its count is positive.
type counter[K cmp.Ordered] map[K]int

func (c counter[K]) inc(k K) {
	c[k]++
}

func (c counter[K]) dec(k K) {
	if c[k] <= 1 {
		delete(c, k)
		return
	}
	c[k]--
}

// diff releases the keys only in old and reserves the keys only in new.
func (c counter[K]) diff(old, new []K) {
	before := set[K]{}
	before.add(old...)
	after := set[K]{}
	after.add(new...)
	for k := range before {
		if !after.has(k) {
			c.dec(k)
		}
	}
	for k := range after {
		if !before.has(k) {
			c.inc(k)
		}
	}
}

func (c counter[K]) keys() []K {
	var keys []K
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// flag counts the subscribers that want a boolean option.
type flag int

func (f *flag) update(old, new bool) {
	switch {
	case new && !old:
		*f++
	case old && !new && *f > 0:
		*f--
	}
}
