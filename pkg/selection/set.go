package selection

import "sort"

// Set is a deduplicated collection of record identifiers.
type Set struct {
	ids map[int]struct{}
}

// NewSet creates an empty selection set.
func NewSet() *Set {
	return &Set{ids: make(map[int]struct{})}
}

// NewSetFromIDs creates a set holding the given identifiers.
// Duplicates collapse.
func NewSetFromIDs(ids []int) *Set {
	s := NewSet()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Add inserts an identifier and reports whether it was newly added.
func (s *Set) Add(id int) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Remove deletes an identifier and reports whether it was present.
func (s *Set) Remove(id int) bool {
	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	return true
}

// Toggle flips an identifier and reports whether it is now selected.
func (s *Set) Toggle(id int) bool {
	if s.Add(id) {
		return true
	}
	delete(s.ids, id)
	return false
}

// Has reports whether an identifier is selected.
func (s *Set) Has(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected identifiers.
func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns the identifiers in ascending order. Sorting keeps the
// serialized form deterministic; selection order is not meaningful.
func (s *Set) IDs() []int {
	ids := make([]int, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
