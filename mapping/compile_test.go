package mapping

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func eval(t *testing.T, src string, input, time float64) float64 {
	t.Helper()
	f, err := Compile(src)
	require.NoError(t, err, "compile %q", src)
	require.NotNil(t, f)
	return f(input, time)
}

func TestIdentitySources(t *testing.T) {
	for _, src := range []string{"", "   ", "x", "input", " X ", "INPUT"} {
		f, err := Compile(src)
		require.NoError(t, err, src)
		for _, v := range []float64{-3.5, 0, 0.25, 1, 1e6} {
			assert.Equal(t, v, f(v, 42), "source %q", src)
		}
	}
}

func TestArithmetic(t *testing.T) {
	assert.InDelta(t, 15, eval(t, "x+10", 5, 0), eps)
	assert.InDelta(t, 20, eval(t, "x*2+10", 5, 0), eps)
	assert.InDelta(t, 0.7, eval(t, "1-x", 0.3, 0), eps)
	assert.InDelta(t, 2.5, eval(t, "x / 2", 5, 0), eps)
	assert.InDelta(t, 1, eval(t, "7 % 3", 0, 0), eps)
	assert.InDelta(t, -0.5, eval(t, "-x * 0.5", 1, 0), eps)
	assert.InDelta(t, 14, eval(t, "2 + 3 * 4", 0, 0), eps)
	assert.InDelta(t, 20, eval(t, "(2 + 3) * 4", 0, 0), eps)
}

func TestCaseAndWhitespaceInsensitive(t *testing.T) {
	assert.InDelta(t, 15, eval(t, "  X   +\t10 ", 5, 0), eps)
	assert.InDelta(t, 0, eval(t, "SIN(x * PI)", 1, 0), eps)
}

func TestPowerPrecedence(t *testing.T) {
	assert.InDelta(t, 512, eval(t, "2^3^2", 0, 0), eps, "power is right associative")
	assert.InDelta(t, -4, eval(t, "-2^2", 0, 0), eps, "power binds tighter than unary minus")
	assert.InDelta(t, 0.5, eval(t, "2^-1", 0, 0), eps)
	assert.InDelta(t, 18, eval(t, "2*3^2", 0, 0), eps)
}

func TestTimeVariable(t *testing.T) {
	assert.InDelta(t, 7, eval(t, "x + time", 3, 4), eps)
	assert.InDelta(t, 12, eval(t, "x * y", 3, 4), eps)
}

func TestTrig(t *testing.T) {
	assert.InDelta(t, math.Sin(math.Pi), eval(t, "sin(x*pi)", 1, 0), eps)
	assert.InDelta(t, 1, eval(t, "cos(0)", 0, 0), eps)
	assert.InDelta(t, math.Tan(0.4), eval(t, "tg(x)", 0.4, 0), eps)
	assert.InDelta(t, math.Atan(0.4), eval(t, "arctg(x)", 0.4, 0), eps)
}

func TestReciprocalForms(t *testing.T) {
	for _, v := range []float64{0.3, 1, 2.5, -0.7} {
		assert.InDelta(t, 1/math.Tan(v), eval(t, "ctg(x)", v, 0), eps)
		assert.InDelta(t, 1/math.Cos(v), eval(t, "sec(x)", v, 0), eps)
		assert.InDelta(t, 1/math.Sin(v), eval(t, "cosec(x)", v, 0), eps)
	}
	assert.InDelta(t, 1/math.Tan(1.5), eval(t, "ctg(x+1)", 0.5, 0), eps)
	assert.InDelta(t, 2/math.Tan(0.5), eval(t, "ctg(x)*2", 0.5, 0), eps)
	assert.InDelta(t, 1/math.Tan(1/math.Tan(0.5)), eval(t, "ctg(ctg(x))", 0.5, 0), eps)
}

func TestNeg(t *testing.T) {
	assert.InDelta(t, -3, eval(t, "neg(x)", 3, 0), eps)
	assert.InDelta(t, -5, eval(t, "neg(x+2)", 3, 0), eps)
	assert.InDelta(t, 7, eval(t, "10 + neg(x)", 3, 0), eps)
	assert.InDelta(t, 9, eval(t, "neg(x)^2", 3, 0), eps)
}

func TestSum(t *testing.T) {
	assert.InDelta(t, 16, eval(t, "sum(x,10,5)", 1, 0), eps)
	assert.InDelta(t, 32, eval(t, "sum(x,10,5)*2", 1, 0), eps)
	assert.InDelta(t, 13, eval(t, "sum(max(x, 2), 10, 1)", 1, 0), eps, "commas of nested calls are kept")
	assert.InDelta(t, 4, eval(t, "sum(x)", 4, 0), eps)
}

func TestConditionals(t *testing.T) {
	assert.Equal(t, 0.0, eval(t, "case(ifl(x,0.5),0,1)", 0.2, 0))
	assert.Equal(t, 1.0, eval(t, "case(ifl(x,0.5),0,1)", 0.8, 0))
	assert.Equal(t, 1.0, eval(t, "ife(x, 2)", 2, 0))
	assert.Equal(t, 1.0, eval(t, "ifg(x, 2)", 3, 0))
	assert.Equal(t, 1.0, eval(t, "ifle(x, 2)", 2, 0))
	assert.Equal(t, 0.0, eval(t, "ifge(x, 2)", 1, 0))
}

func TestMiscFunctions(t *testing.T) {
	assert.InDelta(t, 3, eval(t, "sqrt(x)", 9, 0), eps)
	assert.InDelta(t, 2, eval(t, "log10(100)", 0, 0), eps)
	assert.InDelta(t, 3, eval(t, "log2(8)", 0, 0), eps)
	assert.InDelta(t, 1, eval(t, "ln(e)", 0, 0), eps)
	assert.InDelta(t, 2.5, eval(t, "abs(x)", -2.5, 0), eps)
	assert.InDelta(t, -2, eval(t, "round(x)", -2.5, 0), eps)
	assert.InDelta(t, 3, eval(t, "round(x)", 2.5, 0), eps)
	assert.InDelta(t, -3, eval(t, "round(x)", -2.6, 0), eps)
	assert.InDelta(t, -2, eval(t, "int(x)", -2.7, 0), eps)
	assert.InDelta(t, 0.25, eval(t, "frac(x)", 3.25, 0), eps)
	assert.InDelta(t, 1, eval(t, "min(x, 10, 1)", 4, 0), eps)
	assert.InDelta(t, 10, eval(t, "max(x, 10)", 4, 0), eps)
	assert.InDelta(t, 1, eval(t, "clamp(x, 0, 1)", 4, 0), eps)
}

// The scanner accepts "!" anywhere a prefix operator may appear and the
// evaluator treats it as logical not. Postfix use is rejected.
func TestBangIsPrefixLogicalNot(t *testing.T) {
	assert.Equal(t, 1.0, eval(t, "!x", 0, 0))
	assert.Equal(t, 0.0, eval(t, "!x", 0.3, 0))
	assert.Equal(t, 1.0, eval(t, "!!x", 5, 0))

	_, err := Compile("x!")
	assert.Error(t, err)
}

func TestRand(t *testing.T) {
	f, err := Compile("rand")
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		v := f(0, 0)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestNonFiniteYieldsZero(t *testing.T) {
	assert.Equal(t, 0.0, eval(t, "1/x", 0, 0))
	assert.Equal(t, 0.0, eval(t, "sqrt(x)", -1, 0))
	assert.Equal(t, 0.0, eval(t, "ln(0)", 0, 0))
}

func TestCompileErrors(t *testing.T) {
	for _, src := range []string{
		"foo(x)",
		"x +",
		"x*",
		"(x + 1",
		"x + 1)",
		"sin x",
		"ctg x",
		"sum",
		"x $ 2",
		"1.2.3",
		"min()",
		"clamp(x, 1)",
		"sin(x, 2)",
		"x 2",
		"x,2",
		"2^",
	} {
		f, err := Compile(src)
		assert.Nil(t, f, "source %q", src)
		var ce *CompileError
		if assert.ErrorAs(t, err, &ce, "source %q", src) {
			assert.NotEmpty(t, ce.Msg)
		}
	}
}

func TestUnexpectedRuneIsReportedWhole(t *testing.T) {
	_, err := Compile("x + é")
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 4, ce.Pos)
	assert.Contains(t, ce.Msg, "'é'")
}

func TestUnknownIdentifierPosition(t *testing.T) {
	_, err := Compile("x + Foo(x)")
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 4, ce.Pos)
	assert.Contains(t, ce.Error(), "foo")
}

func TestCacheRecompilesOnlyOnChange(t *testing.T) {
	var c Cache
	f1, err := c.Get("x*2")
	require.NoError(t, err)
	assert.Equal(t, 6.0, f1(3, 0))

	f2, _ := c.Get("x*2")
	assert.Equal(t, 6.0, f2(3, 0))

	f3, err := c.Get("x*3")
	require.NoError(t, err)
	assert.Equal(t, 9.0, f3(3, 0))

	_, err = c.Get("bogus(")
	assert.Error(t, err)
	_, err = c.Get("bogus(")
	assert.Error(t, err, "errors are cached with the source")

	c.Reset()
	f4, err := c.Get("x")
	require.NoError(t, err)
	assert.Equal(t, 1.5, f4(1.5, 0))
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("nope") })
	assert.NotPanics(t, func() { MustCompile("x") })
}

func BenchmarkTransfer(b *testing.B) {
	f := MustCompile("clamp(sin(x * pi) * 100 + time, 0, 80)")
	b.ReportAllocs()
	b.ResetTimer()
	var sink float64
	for i := 0; i < b.N; i++ {
		sink += f(0.3, float64(i))
	}
	_ = sink
}
