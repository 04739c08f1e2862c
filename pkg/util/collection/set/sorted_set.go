// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package set

import (
	"cmp"
	"sort"
)

// SortedSet is an array of unique sorted values (i.e. no duplicates).
type SortedSet[T cmp.Ordered] []T

// NewSortedSet returns an empty sorted set.
func NewSortedSet[T cmp.Ordered]() *SortedSet[T] {
	return &SortedSet[T]{}
}

// Len returns the number of elements in this set.
//
//nolint:revive
func (p *SortedSet[T]) Len() uint {
	return uint(len(*p))
}

// Contains returns true if a given element is in the set.
//
//nolint:revive
func (p *SortedSet[T]) Contains(element T) bool {
	data := *p
	// Find index where element either does occur, or should occur.
	i := sort.Search(len(*p), func(i int) bool {
		return element <= data[i]
	})
	// Check whether item existed or not.
	return i < len(data) && data[i] == element
}

// ContainsAny returns true if any element of a given slice is in the set.
//
//nolint:revive
func (p *SortedSet[T]) ContainsAny(elements []T) bool {
	for _, e := range elements {
		if p.Contains(e) {
			return true
		}
	}
	//
	return false
}

// Insert an element into this sorted set.
//
//nolint:revive
func (p *SortedSet[T]) Insert(element T) {
	data := *p
	// Find index where element either does occur, or should occur.
	i := sort.Search(len(*p), func(i int) bool {
		return element <= data[i]
	})
	// Check whether item existed or not.
	if i >= len(data) || data[i] != element {
		// No, item was not found
		ndata := make([]T, len(data)+1)
		copy(ndata, data[0:i])
		ndata[i] = element
		copy(ndata[i+1:], data[i:])
		*p = ndata
	}
}

// InsertSorted inserts all elements in a given sorted set into this set.
//
//nolint:revive
func (p *SortedSet[T]) InsertSorted(q *SortedSet[T]) {
	left := *p
	right := *q
	// Check containment
	n := countDuplicates(left, right)
	// Check for total inclusion
	if n == len(right) {
		// Right set completedly included in left, so actually there is nothing
		// to do.
		return
	}
	// Allocate space
	ndata := make([]T, len(left)+len(right)-n)
	// Merge
	mergeSorted(ndata, left, right)
	// Finally copy over new data
	*p = ndata
}

// Slice returns the (sorted) elements of this set as a slice.  The slice is
// owned by the set and must not be mutated.
//
//nolint:revive
func (p *SortedSet[T]) Slice() []T {
	return *p
}

// UnionSortedSets unions together a number of things which can be turned into
// a sorted set using a given mapping function.  At some level, this is a
// map/reduce function.
func UnionSortedSets[S any, T cmp.Ordered](elems []S, fn func(S) *SortedSet[T]) *SortedSet[T] {
	if len(elems) == 0 {
		return NewSortedSet[T]()
	}
	// Map first element
	set := fn(elems[0])
	// Map/reduce the rest
	for i := 1; i < len(elems); i++ {
		// Map ith element
		ith := fn(elems[i])
		// Reduce
		set.InsertSorted(ith)
	}
	//
	return set
}

// Determine number of duplicate elements between two sorted sets.
func countDuplicates[T cmp.Ordered](left, right []T) int {
	i, j, n := 0, 0, 0
	//
	for i < len(left) && j < len(right) {
		switch {
		case left[i] < right[j]:
			i++
		case left[i] > right[j]:
			j++
		default:
			n++
			i++
			j++
		}
	}
	//
	return n
}

// Merge two sorted sets into a given target array, which is assumed to be
// large enough to hold the union.
func mergeSorted[T cmp.Ordered](target, left, right []T) {
	i, j, k := 0, 0, 0
	//
	for i < len(left) && j < len(right) {
		switch {
		case left[i] < right[j]:
			target[k] = left[i]
			i++
		case left[i] > right[j]:
			target[k] = right[j]
			j++
		default:
			target[k] = left[i]
			i++
			j++
		}
		//
		k++
	}
	// Copy any remainder
	copy(target[k:], left[i:])
	copy(target[k:], right[j:])
}
