package reel

import (
	"context"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultRenderCap = 256
	loadedQueueSize  = 64
)

// renderEntry is one item queued for submission.
type renderEntry struct {
	item   *Item
	parent *Item // container drawing this item, nil at the top level
	key    int   // z-index, else row
	order  int   // encounter order, for stable sort
}

// loadedAsset is the outcome of an asynchronous resource refresh.
type loadedAsset struct {
	item *Item
	ref  string
	img  image.Image
	err  error
}

// Composition drives one frame at a time: it evaluates automation, creates
// nodes on first need, orders the visible items and hands them to the
// backend. It is not safe for concurrent use; call RenderAtTime from a
// single goroutine.
type Composition struct {
	timeline Timeline
	factory  NodeFactory
	backend  Backend
	assets   AssetLoader
	eval     Evaluator
	editing  *Item
	debug    bool

	// Render state
	list     []renderEntry
	sortBuf  []renderEntry
	rendered []*Item

	// Asset refresh
	refresh singleflight.Group
	loaded  chan loadedAsset
	pending int
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewComposition creates a composition over tl drawing through backend. It
// uses DefaultFactory and has no asset loader until one is set.
func NewComposition(tl Timeline, backend Backend) *Composition {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Composition{
		timeline: tl,
		backend:  backend,
		list:     make([]renderEntry, 0, defaultRenderCap),
		sortBuf:  make([]renderEntry, 0, defaultRenderCap),
		loaded:   make(chan loadedAsset, loadedQueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	c.eval.Lookup = tl.ItemByID
	if rt, ok := tl.(RevisionedTimeline); ok {
		c.eval.Revision = rt.Revision
	}
	c.SetNodeFactory(DefaultFactory{})
	return c
}

// Timeline returns the composition's timeline.
func (c *Composition) Timeline() Timeline {
	return c.timeline
}

// SetNodeFactory replaces the factory used to create live nodes.
func (c *Composition) SetNodeFactory(f NodeFactory) {
	c.factory = f
	c.eval.Factory = f
}

// SetAssetLoader sets the loader used to refresh stale resources. A nil
// loader leaves image-backed items on their placeholder.
func (c *Composition) SetAssetLoader(l AssetLoader) {
	c.assets = l
}

// SetEditing sets the item being edited. It is rendered at every time, even
// outside its window. Pass nil to clear.
func (c *Composition) SetEditing(it *Item) {
	c.editing = it
}

// Editing returns the item being edited, or nil.
func (c *Composition) Editing() *Item {
	return c.editing
}

// SetDebugMode enables or disables per-frame timing stats, traced at debug
// level.
func (c *Composition) SetDebugMode(enabled bool) {
	c.debug = enabled
}

// Rendered returns the items drawn by the last frame in draw order, each
// container followed by the items it parents. The slice MUST NOT be mutated
// and is reused by the next frame.
func (c *Composition) Rendered() []*Item {
	return c.rendered
}

// PendingAssets returns the number of resource refreshes not yet applied.
func (c *Composition) PendingAssets() int {
	return c.pending
}

// Close cancels outstanding resource refreshes.
func (c *Composition) Close() {
	c.cancel()
}

// RenderAtTime renders the composition at time t. It never fails: problems
// with a single item, target or expression are logged and that item keeps
// its last good state.
func (c *Composition) RenderAtTime(t float64) {
	var stats frameStats
	var t0 time.Time

	if c.debug {
		t0 = time.Now()
	}

	c.applyLoaded()
	c.backend.Clear()

	items := c.timeline.IntersectingAt(t)
	c.list = c.list[:0]
	order := 0
	for _, it := range items {
		c.processItem(it, t, &order)
	}
	if c.editing != nil && !containsItem(items, c.editing) {
		c.processItem(c.editing, t, &order)
	}

	if c.debug {
		stats.evaluateTime = time.Since(t0)
		stats.itemCount = len(items)
		t0 = time.Now()
	}

	c.mergeSort()

	if c.debug {
		stats.sortTime = time.Since(t0)
		t0 = time.Now()
	}

	c.rendered = c.rendered[:0]
	c.attach()
	for i := range c.list {
		if e := &c.list[i]; e.parent == nil {
			c.submit(e.item)
		}
	}
	c.detach()

	if c.debug {
		stats.submitTime = time.Since(t0)
		stats.renderCount = len(c.rendered)
		stats.pendingLoads = c.pending
		c.debugLog(stats)
	}
}

// processItem evaluates the automation of one item and queues it for
// rendering when it has a visible node.
func (c *Composition) processItem(it *Item, t float64, order *int) {
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("reel: item %s: recovered: %v", it.ID, r)
		}
	}()

	if it.Kind == KindAutomation {
		c.eval.Evaluate(it.Automation, it, t)
		return
	}
	if it.Disabled || it.Hidden {
		return
	}
	if it.ensureNode(c.factory) == nil {
		return
	}
	if it.stale {
		it.stale = false
		c.refreshAsset(it)
	}
	for _, a := range it.Animations {
		c.eval.Evaluate(a, it, t)
	}
	c.list = append(c.list, renderEntry{
		item:   it,
		parent: c.resolveParent(it),
		key:    it.sortKey(),
		order:  *order,
	})
	*order++
}

// resolveParent returns the container item that draws it, or nil when it
// has none or its parent id does not name a live container.
func (c *Composition) resolveParent(it *Item) *Item {
	if it.Parent == "" {
		return nil
	}
	p := c.timeline.ItemByID(it.Parent)
	if p == nil || p == it || p.Kind != KindContainer {
		tracer().Debugf("reel: item %s: parent %q is not a container", it.ID, it.Parent)
		return nil
	}
	if p.ensureNode(c.factory) == nil {
		return nil
	}
	return p
}

// attach parents the node of every queued child to its container's node,
// in draw order. A child that would close a cycle is drawn at the top level.
// A child whose container is not drawn this frame is not drawn either.
func (c *Composition) attach() {
	for i := range c.list {
		e := &c.list[i]
		if e.parent == nil {
			continue
		}
		if isAncestor(e.item.node, e.parent.node) {
			tracer().Infof("reel: item %s: parent %s would form a cycle", e.item.ID, e.parent.ID)
			e.parent = nil
			continue
		}
		e.parent.node.AddChild(e.item.node)
	}
	for i := range c.list {
		c.list[i].item.node.worldAlpha = 0
	}
}

// detach undoes attach so that parenting follows the timeline every frame.
func (c *Composition) detach() {
	for i := range c.list {
		if e := &c.list[i]; e.parent != nil {
			e.item.node.RemoveFromParent()
		}
	}
}

func (c *Composition) submit(it *Item) {
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("reel: item %s: render recovered: %v", it.ID, r)
		}
	}()
	c.backend.Render(it.node)
	c.collectDrawn(it.node)
}

func (c *Composition) collectDrawn(n *Node) {
	if n.owner != nil {
		c.rendered = append(c.rendered, n.owner)
	}
	for _, child := range n.Children() {
		c.collectDrawn(child)
	}
}

// ItemAt returns the topmost item drawn by the last frame whose content
// covers the world point (x, y), or nil. It relies on the world transforms
// computed by ImageBackend.
func (c *Composition) ItemAt(x, y float64) *Item {
	for i := len(c.rendered) - 1; i >= 0; i-- {
		it := c.rendered[i]
		n := it.node
		if n == nil || n.worldAlpha <= 0 {
			continue
		}
		if n.hitLocal(n.WorldToLocal(x, y)) {
			return it
		}
	}
	return nil
}

func containsItem(items []*Item, it *Item) bool {
	for _, c := range items {
		if c == it {
			return true
		}
	}
	return false
}

// --- Asset refresh ---

// refreshAsset starts loading the item's resource in the background. Loads
// of the same reference share one request. The result is applied by a later
// frame.
func (c *Composition) refreshAsset(it *Item) {
	if c.assets == nil || it.Source == "" {
		return
	}
	ref := it.Source
	ch := c.refresh.DoChan(ref, func() (any, error) {
		return c.assets.LoadAsset(c.ctx, ref)
	})
	c.pending++
	go func() {
		var res singleflight.Result
		select {
		case res = <-ch:
		case <-c.ctx.Done():
			return
		}
		la := loadedAsset{item: it, ref: ref, err: res.Err}
		if res.Err == nil {
			la.img, _ = res.Val.(image.Image)
		}
		select {
		case c.loaded <- la:
		case <-c.ctx.Done():
		}
	}()
}

// applyLoaded installs every finished refresh without blocking.
func (c *Composition) applyLoaded() {
	for {
		select {
		case la := <-c.loaded:
			c.pending--
			c.applyAsset(la)
		default:
			return
		}
	}
}

func (c *Composition) applyAsset(la loadedAsset) {
	if la.err != nil {
		tracer().Errorf("reel: item %s: %v", la.item.ID, la.err)
		return
	}
	n := la.item.node
	if n == nil || la.img == nil || la.item.Source != la.ref {
		return
	}
	if old := n.Image(); old != nil && old != magentaImage && old != whitePixelImage {
		old.Deallocate()
	}
	n.SetImage(ebiten.NewImageFromImage(la.img))
}

// --- Merge sort ---

// entryLessOrEqual reports whether a sorts before or at the same position as
// b. Using <= on order keeps the sort stable.
func entryLessOrEqual(a, b renderEntry) bool {
	if a.key != b.key {
		return a.key < b.key
	}
	return a.order <= b.order
}

// mergeSort sorts c.list in place using c.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches its
// high-water mark.
func (c *Composition) mergeSort() {
	n := len(c.list)
	if n <= 1 {
		return
	}
	if cap(c.sortBuf) < n {
		c.sortBuf = make([]renderEntry, n)
	}
	c.sortBuf = c.sortBuf[:n]

	a := c.list
	b := c.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(c.list, c.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []renderEntry, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if entryLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
