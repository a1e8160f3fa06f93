package etext

import "slices"

// dirtySet is an ordered, deduplicated set of text area handles that
// need their vertex buffers rebuilt. Handles are kept sorted so marking
// is a binary search and draining processes areas in creation order.
type dirtySet struct {
	handles []AreaHandle
}

// mark adds a handle to the set. Marking an already-dirty handle is a
// no-op.
func (s *dirtySet) mark(h AreaHandle) {
	i, found := slices.BinarySearch(s.handles, h)
	if found {
		return
	}
	s.handles = slices.Insert(s.handles, i, h)
}

// drain returns the marked handles and empties the set. The returned
// slice is owned by the caller.
func (s *dirtySet) drain() []AreaHandle {
	out := s.handles
	s.handles = nil
	return out
}

func (s *dirtySet) len() int { return len(s.handles) }
