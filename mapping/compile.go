package mapping

import (
	"math"
	"math/rand/v2"
	"strings"
)

// Func is a compiled transfer function. It maps the automation input and
// the current time to an output value and never returns NaN or an
// infinity.
type Func func(input, time float64) float64

// Identity passes the input through unchanged.
func Identity(input, _ float64) float64 { return input }

// Compile turns a mapping expression into a transfer function. An empty
// source, "x" and "input" compile to [Identity]. Malformed sources return a
// *CompileError and a nil Func.
func Compile(source string) (Func, error) {
	src := strings.ToLower(strings.TrimSpace(source))
	if src == "" {
		return Identity, nil
	}
	if sym, ok := symbols[src]; ok && sym.kind == symInput {
		return Identity, nil
	}

	toks, err := scan(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return func(float64, float64) float64 { return 0 }, nil
	}
	root, err := parse(src, toks)
	if err != nil {
		return nil, err
	}

	return func(input, time float64) float64 {
		v := root.eval(input, time)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}, nil
}

// MustCompile is like Compile but panics if the source does not compile.
func MustCompile(source string) Func {
	f, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return f
}

// Cache holds the compiled form of a single mapping source and recompiles
// only when the source string changes. The zero value is ready to use.
type Cache struct {
	source string
	fn     Func
	err    error
	valid  bool
}

// Get returns the transfer function for source, compiling it on first use
// or when source differs from the previously compiled one. The compile
// error, if any, is cached alongside a nil Func.
func (c *Cache) Get(source string) (Func, error) {
	if c.valid && c.source == source {
		return c.fn, c.err
	}
	c.source = source
	c.fn, c.err = Compile(source)
	c.valid = true
	return c.fn, c.err
}

// Reset drops the cached function so the next Get recompiles.
func (c *Cache) Reset() {
	*c = Cache{}
}

// --- expression tree ---

type expr interface {
	eval(input, time float64) float64
}

type constant float64

func (c constant) eval(float64, float64) float64 { return float64(c) }

type inputRef struct{}

func (inputRef) eval(input, _ float64) float64 { return input }

type timeRef struct{}

func (timeRef) eval(_, time float64) float64 { return time }

type randRef struct{}

func (randRef) eval(float64, float64) float64 { return rand.Float64() }

// prefix is unary minus or logical not. !v is 1 when v is 0, else 0.
type prefix struct {
	op byte
	x  expr
}

func (p *prefix) eval(input, time float64) float64 {
	v := p.x.eval(input, time)
	if p.op == '!' {
		if v == 0 {
			return 1
		}
		return 0
	}
	return -v
}

type binary struct {
	op   byte
	l, r expr
}

func (b *binary) eval(input, time float64) float64 {
	l := b.l.eval(input, time)
	r := b.r.eval(input, time)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	case '%':
		return math.Mod(l, r)
	case '^':
		return math.Pow(l, r)
	}
	return math.NaN()
}

type call1 struct {
	fn  func(float64) float64
	arg expr
}

func (c *call1) eval(input, time float64) float64 {
	return c.fn(c.arg.eval(input, time))
}

type callN struct {
	fn   func([]float64) float64
	args []expr
}

func (c *callN) eval(input, time float64) float64 {
	var buf [4]float64
	vals := buf[:0]
	for _, a := range c.args {
		vals = append(vals, a.eval(input, time))
	}
	return c.fn(vals)
}
