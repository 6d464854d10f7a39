package curvefit

import (
	"math"
	"testing"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestGetSingleKeyframeIsConstant(t *testing.T) {
	for _, typ := range []Type{Spline, Linear, Constant} {
		c := Get(typ, []float64{0.3}, [][]float64{{4, 5}})
		if _, ok := c.(*ConstantCurve); !ok {
			t.Fatalf("%s with one keyframe should be constant, got %T", typ, c)
		}
		out := make([]float64, 2)
		c.Pos(-10, out)
		if out[0] != 4 || out[1] != 5 {
			t.Fatalf("constant should ignore t, got %v", out)
		}
		if c.SlopeAt(2, 1) != 0 {
			t.Fatalf("constant slope must be 0")
		}
		if tp := c.TimePoints(); len(tp) != 1 || tp[0] != 0.3 {
			t.Fatalf("unexpected time points %v", tp)
		}
	}
}

func TestGetDispatch(t *testing.T) {
	time := []float64{0, 1}
	values := [][]float64{{0}, {1}}
	if _, ok := Get(Spline, time, values).(*MonotonicCurve); !ok {
		t.Fatalf("spline should be monotonic")
	}
	if _, ok := Get(Linear, time, values).(*LinearCurve); !ok {
		t.Fatalf("linear should be linear")
	}
	if _, ok := Get(Constant, time, values).(*ConstantCurve); !ok {
		t.Fatalf("constant should be constant")
	}
	if typ, err := ParseType("linear"); err != nil || typ != Linear {
		t.Fatalf("ParseType(linear) = %v, %v", typ, err)
	}
	if _, err := ParseType("bezier"); err == nil {
		t.Fatalf("unknown curve type must fail")
	}
}

func TestLinearRoundTrip(t *testing.T) {
	time := []float64{0, 0.5, 1}
	values := [][]float64{{0, 10}, {1, 20}, {3, 20}}
	c := NewLinear(time, values)
	out := make([]float64, 2)
	for i, tt := range time {
		c.Pos(tt, out)
		if !near(out[0], values[i][0], 1e-12) || !near(out[1], values[i][1], 1e-12) {
			t.Fatalf("t=%g: expected %v, got %v", tt, values[i], out)
		}
	}
	if got := c.PosAt(0.75, 0); !near(got, 2, 1e-12) {
		t.Fatalf("midpoint expected 2, got %g", got)
	}
	if got := c.SlopeAt(0.75, 0); !near(got, 4, 1e-12) {
		t.Fatalf("slope expected 4, got %g", got)
	}
	// 外推沿端点斜率。
	if got := c.PosAt(1.5, 0); !near(got, 5, 1e-12) {
		t.Fatalf("extrapolation expected 5, got %g", got)
	}
	if got := c.PosAt(-0.5, 1); !near(got, 0, 1e-12) {
		t.Fatalf("extrapolation before start expected 0, got %g", got)
	}
	if got := c.Length(); !near(got, math.Hypot(1, 10)+2, 1e-12) {
		t.Fatalf("unexpected length %g", got)
	}
}

func TestLinearTwoPointsExtrapolates(t *testing.T) {
	c := NewLinear([]float64{0, 1}, [][]float64{{0}, {10}})
	if got := c.PosAt(0.5, 0); !near(got, 5, 1e-12) {
		t.Fatalf("PosAt(0.5) expected 5, got %g", got)
	}
	for _, tt := range []float64{-1, 0.5, 2} {
		if got := c.SlopeAt(tt, 0); !near(got, 10, 1e-12) {
			t.Fatalf("SlopeAt(%g) expected 10, got %g", tt, got)
		}
	}
	if got := c.PosAt(2, 0); !near(got, 20, 1e-12) {
		t.Fatalf("PosAt(2) expected 20, got %g", got)
	}
	if got := c.PosAt(-1, 0); !near(got, -10, 1e-12) {
		t.Fatalf("PosAt(-1) expected -10, got %g", got)
	}
}

func TestSingleKeyframeConstructorsAreFlat(t *testing.T) {
	curves := map[string]CurveFit{
		"linear": NewLinear([]float64{0.4}, [][]float64{{7, -2}}),
		"spline": NewMonotonic([]float64{0.4}, [][]float64{{7, -2}}),
	}
	for name, c := range curves {
		out := make([]float64, 2)
		for _, tt := range []float64{-3, 0.4, 0.9, 5} {
			c.Pos(tt, out)
			if !near(out[0], 7, 1e-12) || !near(out[1], -2, 1e-12) {
				t.Fatalf("%s: Pos(%g) = %v, want [7 -2]", name, tt, out)
			}
			if !near(c.SlopeAt(tt, 0), 0, 1e-12) {
				t.Fatalf("%s: slope at %g should be 0", name, tt)
			}
		}
	}

	empty := Get(Spline, nil, nil)
	if tp := empty.TimePoints(); len(tp) != 1 {
		t.Fatalf("empty curve time points %v", tp)
	}
	empty.Pos(0.5, nil)

	defer func() {
		if recover() == nil {
			t.Fatalf("NewLinear without keyframes should panic")
		}
	}()
	NewLinear(nil, nil)
}

func TestMonotonicPassesThroughKeyframes(t *testing.T) {
	time := []float64{0, 0.2, 0.6, 1}
	values := [][]float64{{0}, {5}, {5.5}, {10}}
	c := NewMonotonic(time, values)
	for i, tt := range time {
		if got := c.PosAt(tt, 0); !near(got, values[i][0], 1e-9) {
			t.Fatalf("t=%g: expected %g, got %g", tt, values[i][0], got)
		}
	}
	prev := c.PosAt(0, 0)
	for tt := 0.01; tt <= 1; tt += 0.01 {
		v := c.PosAt(tt, 0)
		if v < prev-1e-9 {
			t.Fatalf("curve must stay monotonic, dropped from %g to %g at %g", prev, v, tt)
		}
		prev = v
	}
}

func TestMonotonicFlatSegmentStaysFlat(t *testing.T) {
	c := NewMonotonic([]float64{0, 1, 2}, [][]float64{{0}, {1}, {1}})
	for _, tt := range []float64{1.1, 1.5, 1.9} {
		if got := c.PosAt(tt, 0); !near(got, 1, 1e-12) {
			t.Fatalf("flat segment overshoots: t=%g got %g", tt, got)
		}
	}
	if got := c.SlopeAt(1, 0); got != 0 {
		t.Fatalf("tangent at the start of a flat segment must be 0, got %g", got)
	}
}

func TestMonotonicExtrapolates(t *testing.T) {
	c := NewMonotonic([]float64{0, 1}, [][]float64{{0}, {2}})
	out := make([]float64, 1)
	c.Pos(2, out)
	if !near(out[0], 4, 1e-12) {
		t.Fatalf("expected 4 after extrapolation, got %g", out[0])
	}
	c.Slope(0.5, out)
	if !near(out[0], 2, 1e-12) {
		t.Fatalf("two keyframes give a straight line, slope %g", out[0])
	}
}

func TestArcQuarterCircle(t *testing.T) {
	c := GetArc([]ArcMode{ArcStartVertical}, []float64{0, 1}, [][]float64{{0, 0}, {1, 1}})
	out := make([]float64, 2)
	c.Pos(0, out)
	if !near(out[0], 0, 1e-9) || !near(out[1], 0, 1e-9) {
		t.Fatalf("start expected (0,0), got %v", out)
	}
	c.Pos(1, out)
	if !near(out[0], 1, 1e-9) || !near(out[1], 1, 1e-9) {
		t.Fatalf("end expected (1,1), got %v", out)
	}
	c.Pos(0.5, out)
	h := math.Sqrt2 / 2
	if !near(out[0], 1-h, 1e-6) || !near(out[1], h, 1e-6) {
		t.Fatalf("midpoint expected (%g,%g), got %v", 1-h, h, out)
	}
	// 弧长匀速：速度大小为四分之一圆周长。
	c.Slope(0.25, out)
	if speed := math.Hypot(out[0], out[1]); !near(speed, math.Pi/2, 1e-3) {
		t.Fatalf("expected speed pi/2, got %g", speed)
	}
}

func TestArcHorizontalAndFlip(t *testing.T) {
	c := NewArc([]ArcMode{ArcStartHorizontal, ArcStartFlip},
		[]float64{0, 1, 2}, [][]float64{{0, 0}, {1, 1}, {2, 2}})
	if c.arcs[0].vertical || !c.arcs[1].vertical {
		t.Fatalf("flip after horizontal must start vertical")
	}
	// 先水平：起点处速度沿 x 方向。
	dx, dy := c.SlopeAt(0, 0), c.SlopeAt(0, 1)
	if math.Abs(dy) > 1e-9 || dx <= 0 {
		t.Fatalf("horizontal start expected slope along x, got (%g,%g)", dx, dy)
	}
	if got := c.PosAt(1.5, 0); got <= 1 || got >= 2 {
		t.Fatalf("second arc x out of range: %g", got)
	}
}

func TestArcLinearSegments(t *testing.T) {
	c := NewArc([]ArcMode{ArcStartLinear, ArcStartVertical},
		[]float64{0, 1, 2}, [][]float64{{0, 0}, {2, 2}, {4, 2}})
	if !c.arcs[0].linear || !c.arcs[1].linear {
		t.Fatalf("linear mode and flat dy must both be linear")
	}
	if got := c.PosAt(0.5, 0); !near(got, 1, 1e-12) {
		t.Fatalf("expected 1, got %g", got)
	}
	if got := c.PosAt(3, 0); !near(got, 6, 1e-12) {
		t.Fatalf("extrapolated x expected 6, got %g", got)
	}
}

func TestCubicEasing(t *testing.T) {
	e, err := EasingFor("standard")
	if err != nil {
		t.Fatalf("standard: %v", err)
	}
	if e.Get(0) != 0 || e.Get(1) != 1 {
		t.Fatalf("easing must pin the endpoints")
	}
	prev := 0.0
	for x := 0.05; x < 1; x += 0.05 {
		v := e.Get(x)
		if v < prev {
			t.Fatalf("standard easing must be increasing, %g after %g", v, prev)
		}
		prev = v
	}
	if e.Get(0.5) <= 0.5 {
		t.Fatalf("standard easing decelerates, got %g at 0.5", e.Get(0.5))
	}

	lin, _ := EasingFor("linear")
	for _, x := range []float64{0.1, 0.3, 0.77} {
		if got := lin.Get(x); !near(got, x, 1e-9) {
			t.Fatalf("linear cubic at %g returned %g", x, got)
		}
		if got := lin.Diff(x); !near(got, 1, 1e-6) {
			t.Fatalf("linear cubic slope at %g returned %g", x, got)
		}
	}

	custom, err := EasingFor("cubic(0.25, 0.1, 0.25, 1)")
	if err != nil {
		t.Fatalf("cubic(): %v", err)
	}
	if c, ok := custom.(*CubicEasing); !ok || c.X1 != 0.25 || c.Y2 != 1 {
		t.Fatalf("unexpected easing %#v", custom)
	}
}

func TestTweenEasing(t *testing.T) {
	for _, name := range []string{"bounce", "elastic", "sine", "quad", "cubic", "easeOut"} {
		e, err := EasingFor(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !near(e.Get(0), 0, 1e-6) || !near(e.Get(1), 1, 1e-6) {
			t.Fatalf("%s must map 0->0 and 1->1, got %g and %g", name, e.Get(0), e.Get(1))
		}
	}
	sine, _ := EasingFor("sine")
	if got := sine.Get(0.5); !near(got, 0.5, 1e-5) {
		t.Fatalf("in-out sine is symmetric, got %g", got)
	}
	if d := sine.Diff(0.5); !near(d, math.Pi/2, 1e-3) {
		t.Fatalf("in-out sine slope at 0.5 expected pi/2, got %g", d)
	}
}

func TestStepEasing(t *testing.T) {
	e, err := EasingFor("spline(0, 0.5, 1)")
	if err != nil {
		t.Fatalf("spline(): %v", err)
	}
	for _, tc := range []struct{ x, want float64 }{{0, 0}, {0.5, 0.5}, {1, 1}} {
		if got := e.Get(tc.x); !near(got, tc.want, 1e-9) {
			t.Fatalf("x=%g: expected %g, got %g", tc.x, tc.want, got)
		}
	}
}

func TestEasingForErrors(t *testing.T) {
	for _, desc := range []string{"wobble", "cubic(1,2)", "cubic(a,b,c,d)", "spline(1)", "cubic(1"} {
		if _, err := EasingFor(desc); err == nil {
			t.Fatalf("%q should fail", desc)
		}
	}
	if e, err := EasingFor(""); err != nil || e.Get(0.3) != 0.3 {
		t.Fatalf("empty easing should be identity")
	}
}

func TestTweenFuncAndArcModeNames(t *testing.T) {
	fn, ok := TweenFunc("")
	if !ok || fn(0.25, 0, 1, 1) != 0.25 {
		t.Fatalf("empty name should be linear")
	}
	if _, ok := TweenFunc("bounce"); !ok {
		t.Fatalf("bounce should be known")
	}
	if _, ok := TweenFunc("standard"); ok {
		t.Fatalf("cubic-bezier names are not tween functions")
	}
	if m, err := ParseArcMode("startHorizontal"); err != nil || m != ArcStartHorizontal {
		t.Fatalf("ParseArcMode: %v %v", m, err)
	}
	if _, err := ParseArcMode("zigzag"); err == nil {
		t.Fatalf("expected error")
	}
}
