package mapping

import "math"

// symbolKind tells the scanner how an identifier is expanded.
type symbolKind uint8

const (
	symConst symbolKind = iota // numeric constant
	symInput                   // first transfer argument
	symTime                    // second transfer argument
	symRand                    // uniform random in [0, 1), sampled per call
	symFunc                    // named function call
	symWrap                    // prefix form wrapped around the user's call
	symSum                     // variadic sum, commas become +
)

// symbol is one entry of the fixed identifier table.
type symbol struct {
	kind  symbolKind
	value float64

	// symFunc
	minArgs, maxArgs int // maxArgs < 0 means variadic
	fn               func(args []float64) float64
	fn1              func(float64) float64 // single-argument fast form

	// symWrap: tokens emitted in place of the identifier. Every
	// parenthesis the fragment opens is closed after the user's own call.
	wrap []token
}

func unary(f func(float64) float64) *symbol {
	return &symbol{kind: symFunc, minArgs: 1, maxArgs: 1, fn1: f}
}

func compare(f func(a, b float64) bool) *symbol {
	return &symbol{kind: symFunc, minArgs: 2, maxArgs: 2, fn: func(a []float64) float64 {
		if f(a[0], a[1]) {
			return 1
		}
		return 0
	}}
}

// reciprocal builds the "(1 / fn(" fragment used by the reciprocal trig forms.
func reciprocal(fn string) *symbol {
	return &symbol{kind: symWrap, wrap: []token{
		{kind: tokLParen},
		{kind: tokNumber, num: 1},
		{kind: tokOp, op: '/'},
		{kind: tokIdent, name: fn},
		{kind: tokLParen},
	}}
}

// symbols is the identifier table. It is never mutated after init.
var symbols map[string]*symbol

func init() {
	symbols = map[string]*symbol{
		"x":     {kind: symInput},
		"input": {kind: symInput},
		"y":     {kind: symTime},
		"time":  {kind: symTime},
		"pi":    {kind: symConst, value: math.Pi},
		"e":     {kind: symConst, value: math.E},
		"rand":  {kind: symRand},

		"sin":    unary(math.Sin),
		"cos":    unary(math.Cos),
		"tan":    unary(math.Tan),
		"tg":     unary(math.Tan),
		"arcsin": unary(math.Asin),
		"arccos": unary(math.Acos),
		"arctan": unary(math.Atan),
		"arctg":  unary(math.Atan),
		"exp":    unary(math.Exp),
		"sqrt":   unary(math.Sqrt),
		"ln":     unary(math.Log),
		"log10":  unary(math.Log10),
		"log2":   unary(math.Log2),
		"abs":    unary(math.Abs),
		"round":  unary(roundHalfUp),
		"int":    unary(math.Trunc),
		"frac": unary(func(v float64) float64 {
			return v - math.Trunc(v)
		}),

		"ctg":   reciprocal("tan"),
		"sec":   reciprocal("cos"),
		"cosec": reciprocal("sin"),
		"neg": {kind: symWrap, wrap: []token{
			{kind: tokLParen},
			{kind: tokOp, op: '-'},
			{kind: tokLParen},
		}},

		"sum": {kind: symSum},

		"min": {kind: symFunc, minArgs: 1, maxArgs: -1, fn: func(a []float64) float64 {
			m := a[0]
			for _, v := range a[1:] {
				m = math.Min(m, v)
			}
			return m
		}},
		"max": {kind: symFunc, minArgs: 1, maxArgs: -1, fn: func(a []float64) float64 {
			m := a[0]
			for _, v := range a[1:] {
				m = math.Max(m, v)
			}
			return m
		}},
		"clamp": {kind: symFunc, minArgs: 3, maxArgs: 3, fn: func(a []float64) float64 {
			return math.Min(math.Max(a[0], a[1]), a[2])
		}},

		"ife":  compare(func(a, b float64) bool { return a == b }),
		"ifl":  compare(func(a, b float64) bool { return a < b }),
		"ifg":  compare(func(a, b float64) bool { return a > b }),
		"ifle": compare(func(a, b float64) bool { return a <= b }),
		"ifge": compare(func(a, b float64) bool { return a >= b }),
		"case": {kind: symFunc, minArgs: 3, maxArgs: 3, fn: func(a []float64) float64 {
			if a[0] == 1 {
				return a[1]
			}
			return a[2]
		}},
	}
}

// roundHalfUp rounds to the nearest integer, halves toward +Inf.
func roundHalfUp(v float64) float64 { return math.Floor(v + 0.5) }
