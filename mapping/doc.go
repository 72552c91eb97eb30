// Package mapping compiles automation mapping expressions into transfer
// functions.
//
// A mapping expression is a small arithmetic formula over the automation
// input (x) and the current project time (time). Expressions are
// case-insensitive and ignore whitespace:
//
//	f, err := mapping.Compile("sin(x * pi) * 100 + 50")
//	if err != nil {
//		// handle *mapping.CompileError
//	}
//	v := f(0.25, 3.0)
//
// Compilation happens once; the returned [Func] is pure apart from rand and
// may be called every frame without allocating.
//
// # Language
//
// Operators, from highest to lowest precedence: ^ (power, right
// associative), prefix - + ! (negate, plus, logical not), * / %, + -.
//
// Variables are x (alias input) and time (alias y). Constants are pi and e.
// rand yields a uniform value in [0, 1) on every call.
//
// Functions: sin cos tan tg ctg sec cosec arcsin arccos arctan arctg exp
// sqrt ln log10 log2 abs neg round int frac min max clamp sum ife ifl ifg
// ifle ifge case. The comparison functions return 1 or 0 and case(c, a, b)
// returns a when c is 1, otherwise b.
//
// An expression that evaluates to NaN or an infinity yields 0.
package mapping
