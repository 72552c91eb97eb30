// Package reel renders timeline compositions with [Ebitengine], driving item
// properties from automation clips.
//
// A composition is a [Timeline] of [Item] values. Visual items (containers,
// graphics, sprites, images, videos and text) get a live [Node] the first
// time they are needed. Automation items hold an [Automation] clip: a [Curve]
// sampled over time, an optional mapping expression (see package
// [github.com/phanxgames/reel/mapping]) and a list of [Target] properties the
// result is written to.
//
// # Quick start
//
//	tl, err := reel.LoadProject("project.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	backend := reel.NewImageBackend(nil)
//	comp := reel.NewComposition(tl, backend)
//	comp.SetAssetLoader(&reel.FileAssets{Root: "assets"})
//	player := reel.NewPlayer(comp, backend, reel.DefaultConfig(), tl.End())
//	player.Play()
//	log.Fatal(player.Run())
//
// To drive frames yourself, call [Composition.RenderAtTime] once per frame
// from a single goroutine.
//
// # Frame pipeline
//
// Each frame clears the backend, then walks the items intersecting the
// frame time in timeline order. Automation items are evaluated; visual items
// are created on first need, get their embedded animations evaluated and are
// queued. The queue is stable-sorted by z-index (or row) and submitted. All
// automation of a frame is applied before anything is drawn.
//
// An item whose [Item.Parent] names a container item is drawn inside that
// container for the frame, so their transforms and opacity compose.
// [Composition.ItemAt] picks the topmost item drawn at a point.
//
// # Properties
//
// Automation writes numbers. The registry ([Setter], [Getter], [SetterFor])
// maps property names such as "positionX", "opacity", "tint" or
// "textStyleFontSize" to node fields. Colors are packed 0xRRGGBB numbers,
// booleans are 1 or 0 and enumerations are indices. Three properties,
// "tileColor", "clipDuration" and "clipStartTime", write to the item itself.
//
// A relative target adds its value to the property's saved value from
// [Item.Data]; an absolute target replaces it.
//
// # Failure containment
//
// [Composition.RenderAtTime] never returns an error. A bad mapping expression
// falls back to the identity mapping, an unknown target or property is
// skipped, and a failed resource load keeps the previous image. Everything
// is reported through the "reel" tracer.
//
// [Ebitengine]: https://ebitengine.org
package reel
