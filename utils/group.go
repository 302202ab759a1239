// Package utils provides utility functions for the application.
package utils

import "sort"

// Group holds the items that share one key, in the order the key was first seen.
type Group[T any] struct {
	Key   string
	Items []T
}

// GroupBy partitions items by key. Group order follows the first occurrence of
// each key in the input, item order within a group follows the input.
func GroupBy[T any](items []T, key func(T) string) []Group[T] {
	index := make(map[string]int, len(items))
	groups := make([]Group[T], 0)
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// SortWithin stable-sorts the items of every group in place.
func SortWithin[T any](groups []Group[T], less func(a, b T) bool) {
	for i := range groups {
		items := groups[i].Items
		sort.SliceStable(items, func(a, b int) bool { return less(items[a], items[b]) })
	}
}
