package reel

import (
	"github.com/phanxgames/reel/mapping"
)

// Target binds an automation clip to one property of one item. An empty
// NodeID targets the item that owns the clip. Mapping is an optional
// expression applied to the clip value for this target only.
//
// Edit targets through the Automation methods, or call MarkDirty after
// changing a field directly.
type Target struct {
	NodeID   string
	Property string
	Mapping  string
	Relative bool

	cache mapping.Cache
}

// NewTarget creates an absolute target without a mapping.
func NewTarget(nodeID, property string) *Target {
	return &Target{NodeID: nodeID, Property: property}
}

// binding is a resolved target, ready to apply without lookups.
type binding struct {
	set      PropertySetter
	prop     *property
	item     *Item
	transfer mapping.Func
	relative bool
	// saved is the value the property had before the clip bound it. Item
	// fields have no separate saved form, so this snapshot is their base.
	saved float64
}

// base returns the value a relative binding adds to.
func (b *binding) base() float64 {
	if b.prop.scope == scopeItem {
		return b.saved
	}
	if v, ok := b.prop.saved(b.item); ok {
		return v
	}
	return b.prop.def
}

func (b *binding) apply(value, t float64) {
	v := b.transfer(value, t)
	if b.relative {
		v += b.base()
	}
	b.set(b.item, v)
}

// restore puts back the value the property had before it was bound.
func (b *binding) restore() {
	b.set(b.item, b.base())
}

// Automation is a clip producing a time-varying value that drives the
// properties named by its targets.
//
// Its bindings are either absent or fully valid: any edit of the mapping,
// curve or targets drops them, and the next Evaluate rebuilds them all.
type Automation struct {
	Enabled bool
	// Start offsets the clip inside its owner's window.
	Start float64
	// BaseValue is the value of the curve before its first keyframe.
	BaseValue float64

	mapping  string
	curve    Curve
	targets  []*Target
	transfer mapping.Func

	bindings []binding
	clean    bool
	// rev is the timeline revision the bindings were resolved against.
	rev uint64
}

// NewAutomation creates an enabled clip with no curve and no targets.
func NewAutomation() *Automation {
	return &Automation{Enabled: true}
}

// Mapping returns the global mapping expression.
func (a *Automation) Mapping() string { return a.mapping }

// SetMapping replaces the global mapping expression.
func (a *Automation) SetMapping(src string) {
	if src == a.mapping {
		return
	}
	a.mapping = src
	a.transfer = nil
	a.MarkDirty()
}

// Curve returns the curve sampled by the clip.
func (a *Automation) Curve() Curve { return a.curve }

// SetCurve replaces the curve.
func (a *Automation) SetCurve(c Curve) {
	a.curve = c
	a.MarkDirty()
}

// Targets returns the targets in order. The slice MUST NOT be mutated.
func (a *Automation) Targets() []*Target { return a.targets }

// SetTargets replaces every target.
func (a *Automation) SetTargets(ts ...*Target) {
	a.targets = append(a.targets[:0:0], ts...)
	a.MarkDirty()
}

// AddTarget appends a target.
func (a *Automation) AddTarget(t *Target) {
	a.targets = append(a.targets, t)
	a.MarkDirty()
}

// RemoveTarget removes the target at index i.
func (a *Automation) RemoveTarget(i int) bool {
	if i < 0 || i >= len(a.targets) {
		return false
	}
	a.targets = append(a.targets[:i:i], a.targets[i+1:]...)
	a.MarkDirty()
	return true
}

// SetTargetMapping replaces the mapping of the target at index i.
func (a *Automation) SetTargetMapping(i int, src string) bool {
	if i < 0 || i >= len(a.targets) {
		return false
	}
	a.targets[i].Mapping = src
	a.MarkDirty()
	return true
}

// SetTargetRelative switches the target at index i between relative and
// absolute mode.
func (a *Automation) SetTargetRelative(i int, relative bool) bool {
	if i < 0 || i >= len(a.targets) {
		return false
	}
	a.targets[i].Relative = relative
	a.MarkDirty()
	return true
}

// MarkDirty forces the bindings to be rebuilt on the next evaluation.
func (a *Automation) MarkDirty() {
	a.clean = false
}

// Dirty reports whether the bindings will be rebuilt on the next evaluation.
func (a *Automation) Dirty() bool {
	return !a.clean
}

// BindingCount returns the number of resolved bindings.
func (a *Automation) BindingCount() int {
	return len(a.bindings)
}

// compileMapping compiles the global mapping, falling back to the identity
// function on error.
func (a *Automation) compileMapping(owner *Item) {
	fn, err := mapping.Compile(a.mapping)
	if err != nil {
		tracer().Errorf("reel: item %s: %v, using identity mapping", ownerID(owner), err)
		fn = mapping.Identity
	}
	a.transfer = fn
}

// --- Evaluator ---

// Evaluator applies automation clips to the items they target.
type Evaluator struct {
	// Lookup resolves target ids. Required.
	Lookup func(id string) *Item
	// Factory creates nodes for targets that have none yet.
	Factory NodeFactory
	// Revision reports the timeline revision, bumped whenever items are
	// added, replaced or removed. Bindings resolved against an older
	// revision are rebuilt. Nil disables the check.
	Revision func() uint64
}

// Evaluate samples a at time t and applies the result to every target. owner
// is the item that holds a; the curve is sampled at t - owner.Start - a.Start.
// Evaluate never fails: unresolved targets and bad expressions are logged and
// skipped.
func (e *Evaluator) Evaluate(a *Automation, owner *Item, t float64) {
	if a == nil || !a.Enabled {
		return
	}
	if a.curve == nil || len(a.targets) == 0 {
		if !a.clean {
			a.dropBindings()
		}
		return
	}
	if a.clean && e.Revision != nil && e.Revision() != a.rev {
		a.clean = false
	}
	if a.transfer == nil {
		a.compileMapping(owner)
	}

	rel := t - a.Start
	if owner != nil {
		rel -= owner.Start
	}
	value := a.transfer(a.curve.ValueAt(rel), t)

	if a.clean {
		for i := range a.bindings {
			a.bindings[i].apply(value, t)
		}
		return
	}
	e.rebuild(a, owner, value, t)
}

// rebuild resolves every target from scratch, applies it at once and then
// swaps in the new bindings. Properties that lost their binding are restored.
func (e *Evaluator) rebuild(a *Automation, owner *Item, value, t float64) {
	next := make([]binding, 0, len(a.targets))
	for _, tg := range a.targets {
		b, ok := e.resolve(a, owner, tg)
		if !ok {
			continue
		}
		b.apply(value, t)
		next = append(next, b)
	}

	for i := range a.bindings {
		old := &a.bindings[i]
		if !hasBinding(next, old.item, old.prop) {
			old.restore()
		}
	}
	a.bindings = next
	a.clean = true
	if e.Revision != nil {
		a.rev = e.Revision()
	}
}

// dropBindings restores every bound property and leaves the clip clean with
// no bindings.
func (a *Automation) dropBindings() {
	for i := range a.bindings {
		a.bindings[i].restore()
	}
	a.bindings = a.bindings[:0]
	a.clean = true
}

func (e *Evaluator) resolve(a *Automation, owner *Item, tg *Target) (binding, bool) {
	item := owner
	if tg.NodeID != "" {
		item = nil
		if e.Lookup != nil {
			item = e.Lookup(tg.NodeID)
		}
	}
	if item == nil {
		tracer().Infof("reel: item %s: target %q not found, skipped", ownerID(owner), tg.NodeID)
		return binding{}, false
	}
	p, ok := registry[tg.Property]
	if !ok {
		tracer().Infof("reel: item %s: unknown property %q, skipped", ownerID(owner), tg.Property)
		return binding{}, false
	}
	if !p.legalOn(item.Kind) {
		tracer().Infof("reel: item %s: property %q does not apply to %s item %s, skipped",
			ownerID(owner), tg.Property, item.Kind, item.ID)
		return binding{}, false
	}
	if p.scope != scopeItem && item.ensureNode(e.Factory) == nil {
		tracer().Infof("reel: item %s: target %s has no node, skipped", ownerID(owner), item.ID)
		return binding{}, false
	}
	fn, err := tg.cache.Get(tg.Mapping)
	if err != nil {
		tracer().Errorf("reel: item %s: target %s.%s: %v, using identity mapping",
			ownerID(owner), item.ID, tg.Property, err)
		fn = mapping.Identity
	}

	b := binding{set: p.set, prop: p, item: item, transfer: fn, relative: tg.Relative}
	if prev := findBinding(a.bindings, item, p); prev != nil {
		b.saved = prev.saved
	} else if p.scope == scopeItem {
		b.saved = p.get(item)
	}
	return b, true
}

func findBinding(bs []binding, item *Item, p *property) *binding {
	for i := range bs {
		if bs[i].item == item && bs[i].prop == p {
			return &bs[i]
		}
	}
	return nil
}

func hasBinding(bs []binding, item *Item, p *property) bool {
	return findBinding(bs, item, p) != nil
}

func ownerID(owner *Item) string {
	if owner == nil {
		return "-"
	}
	return owner.ID
}
