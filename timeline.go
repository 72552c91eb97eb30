package reel

// Timeline is the source of items for the frame loop.
type Timeline interface {
	// IntersectingAt returns the items whose window contains t, in a
	// deterministic order.
	IntersectingAt(t float64) []*Item
	// ItemByID resolves an item by id, or returns nil.
	ItemByID(id string) *Item
}

// RevisionedTimeline is a Timeline that counts structural edits, letting
// automation notice added, replaced or removed items without lookups.
type RevisionedTimeline interface {
	Timeline
	Revision() uint64
}

// MemoryTimeline is an in-memory Timeline. Items are kept in insertion order.
type MemoryTimeline struct {
	items []*Item
	byID  map[string]*Item
	hits  []*Item
	rev   uint64
}

// NewMemoryTimeline creates a timeline holding items.
func NewMemoryTimeline(items ...*Item) *MemoryTimeline {
	tl := &MemoryTimeline{byID: make(map[string]*Item)}
	for _, it := range items {
		tl.Add(it)
	}
	return tl
}

// Add appends an item. An item with the same id is replaced in place and
// its node is released; automation bound to it rebinds on its next
// evaluation.
func (tl *MemoryTimeline) Add(it *Item) {
	tl.rev++
	if old, ok := tl.byID[it.ID]; ok {
		for i, c := range tl.items {
			if c == old {
				tl.items[i] = it
				break
			}
		}
		old.releaseNode()
	} else {
		tl.items = append(tl.items, it)
	}
	tl.byID[it.ID] = it
}

// Remove drops the item with the given id and disposes its node. Automation
// that targets it drops the binding on its next evaluation.
func (tl *MemoryTimeline) Remove(id string) bool {
	it, ok := tl.byID[id]
	if !ok {
		return false
	}
	tl.rev++
	delete(tl.byID, id)
	for i, c := range tl.items {
		if c == it {
			copy(tl.items[i:], tl.items[i+1:])
			tl.items[len(tl.items)-1] = nil
			tl.items = tl.items[:len(tl.items)-1]
			break
		}
	}
	it.releaseNode()
	return true
}

// Revision returns a counter bumped by every Add and Remove.
func (tl *MemoryTimeline) Revision() uint64 {
	return tl.rev
}

// ItemByID implements Timeline.
func (tl *MemoryTimeline) ItemByID(id string) *Item {
	return tl.byID[id]
}

// IntersectingAt implements Timeline. The returned slice is reused by the
// next call.
func (tl *MemoryTimeline) IntersectingAt(t float64) []*Item {
	tl.hits = tl.hits[:0]
	for _, it := range tl.items {
		if it.Contains(t) {
			tl.hits = append(tl.hits, it)
		}
	}
	return tl.hits
}

// Items returns every item in insertion order. The slice MUST NOT be mutated.
func (tl *MemoryTimeline) Items() []*Item {
	return tl.items
}

// End returns the latest end time of any item.
func (tl *MemoryTimeline) End() float64 {
	var end float64
	for _, it := range tl.items {
		if e := it.End(); e > end {
			end = e
		}
	}
	return end
}
