// Package reconcile splices a known create/update/delete into a cached list.
//
// Every helper is a no-op unless the list is Loaded: a list that was never
// fetched stays unfetched. Inputs are never mutated; a new slice is returned.
package reconcile

import "scrumbringer-admin/internal/remote"

// Keyed is implemented by every list entity.
type Keyed interface {
	Key() int64
}

// Created prepends e. It needs no key, so it serves unkeyed lists too.
func Created[T any](list remote.Value[[]T], e T) remote.Value[[]T] {
	items, ok := list.Get()
	if !ok {
		return list
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, e)
	out = append(out, items...)
	return remote.NewLoaded(out)
}

// Updated replaces the element whose key equals e.Key(). Other elements are
// copied as-is.
func Updated[T Keyed](list remote.Value[[]T], e T) remote.Value[[]T] {
	items, ok := list.Get()
	if !ok {
		return list
	}
	out := make([]T, len(items))
	for i, it := range items {
		if it.Key() == e.Key() {
			out[i] = e
			continue
		}
		out[i] = it
	}
	return remote.NewLoaded(out)
}

// Deleted filters out every element with the given key.
func Deleted[T Keyed](list remote.Value[[]T], key int64) remote.Value[[]T] {
	items, ok := list.Get()
	if !ok {
		return list
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.Key() != key {
			out = append(out, it)
		}
	}
	return remote.NewLoaded(out)
}

// UpdatedFunc is Updated for entities without a Key method (e.g. invite links
// keyed by email).
func UpdatedFunc[T any](list remote.Value[[]T], e T, same func(a, b T) bool) remote.Value[[]T] {
	items, ok := list.Get()
	if !ok {
		return list
	}
	out := make([]T, len(items))
	for i, it := range items {
		if same(it, e) {
			out[i] = e
			continue
		}
		out[i] = it
	}
	return remote.NewLoaded(out)
}
