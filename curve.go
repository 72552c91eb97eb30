package reel

import (
	"sort"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Curve produces the raw value of an automation clip at a time relative to
// the clip start.
type Curve interface {
	ValueAt(t float64) float64
}

// CurveFunc adapts a plain function to Curve.
type CurveFunc func(t float64) float64

// ValueAt implements Curve.
func (f CurveFunc) ValueAt(t float64) float64 { return f(t) }

// Keyframe is one point of a KeyframeCurve. Ease names the easing of the
// segment that ends at this point.
type Keyframe struct {
	Time  float64
	Value float64
	Ease  string
}

// KeyframeCurve interpolates between keyframes with gween easing functions.
// Before the first keyframe it eases from Base at time 0; after the last one
// it holds the last value. A curve without keyframes is constant at Base.
type KeyframeCurve struct {
	Base float64

	points   []Keyframe
	segments []*gween.Tween
}

// NewKeyframeCurve builds a curve from points in any order. Unknown easing
// names fall back to linear.
func NewKeyframeCurve(base float64, points ...Keyframe) *KeyframeCurve {
	c := &KeyframeCurve{Base: base, points: append([]Keyframe(nil), points...)}
	sort.SliceStable(c.points, func(i, j int) bool { return c.points[i].Time < c.points[j].Time })

	c.segments = make([]*gween.Tween, len(c.points))
	fromT, fromV := 0.0, base
	for i, p := range c.points {
		fn, ok := EaseByName(p.Ease)
		if !ok {
			tracer().Infof("reel: unknown ease %q, using linear", p.Ease)
			fn = ease.Linear
		}
		c.segments[i] = gween.New(float32(fromV), float32(p.Value), float32(p.Time-fromT), fn)
		fromT, fromV = p.Time, p.Value
	}
	return c
}

// Points returns a copy of the keyframes in time order.
func (c *KeyframeCurve) Points() []Keyframe {
	return append([]Keyframe(nil), c.points...)
}

// ValueAt implements Curve.
func (c *KeyframeCurve) ValueAt(t float64) float64 {
	n := len(c.points)
	if n == 0 {
		return c.Base
	}
	if t >= c.points[n-1].Time {
		return c.points[n-1].Value
	}
	// First keyframe strictly after t; its segment covers t.
	i := sort.Search(n, func(i int) bool { return c.points[i].Time > t })
	var from float64
	if i > 0 {
		if t == c.points[i-1].Time {
			return c.points[i-1].Value
		}
		from = c.points[i-1].Time
	} else if t <= 0 {
		return c.Base
	}
	v, _ := c.segments[i].Set(float32(t - from))
	return float64(v)
}

// hold keeps the segment's start value until the segment ends.
func hold(t, b, c, d float32) float32 { return b }

var eases = map[string]ease.TweenFunc{
	"linear": ease.Linear,
	"hold":   hold,

	"inquad": ease.InQuad, "outquad": ease.OutQuad, "inoutquad": ease.InOutQuad, "outinquad": ease.OutInQuad,
	"incubic": ease.InCubic, "outcubic": ease.OutCubic, "inoutcubic": ease.InOutCubic, "outincubic": ease.OutInCubic,
	"inquart": ease.InQuart, "outquart": ease.OutQuart, "inoutquart": ease.InOutQuart, "outinquart": ease.OutInQuart,
	"inquint": ease.InQuint, "outquint": ease.OutQuint, "inoutquint": ease.InOutQuint, "outinquint": ease.OutInQuint,
	"insine": ease.InSine, "outsine": ease.OutSine, "inoutsine": ease.InOutSine, "outinsine": ease.OutInSine,
	"inexpo": ease.InExpo, "outexpo": ease.OutExpo, "inoutexpo": ease.InOutExpo, "outinexpo": ease.OutInExpo,
	"incirc": ease.InCirc, "outcirc": ease.OutCirc, "inoutcirc": ease.InOutCirc, "outincirc": ease.OutInCirc,
	"inback": ease.InBack, "outback": ease.OutBack, "inoutback": ease.InOutBack, "outinback": ease.OutInBack,
	"inbounce": ease.InBounce, "outbounce": ease.OutBounce, "inoutbounce": ease.InOutBounce, "outinbounce": ease.OutInBounce,
	"inelastic": ease.InElastic, "outelastic": ease.OutElastic, "inoutelastic": ease.InOutElastic, "outinelastic": ease.OutInElastic,
}

// EaseByName resolves an easing function by case-insensitive name such as
// "inOutSine". The empty name is linear.
func EaseByName(name string) (ease.TweenFunc, bool) {
	if name == "" {
		return ease.Linear, true
	}
	fn, ok := eases[strings.ToLower(name)]
	return fn, ok
}
