package layout

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func newRoot(t *testing.T, width, height float64) *Container {
	t.Helper()
	c := NewContainer(Options{})
	c.Root().SetWidth(width)
	c.Root().SetHeight(height)
	return c
}

func sized(c *Container, name string, width, height float64) *Widget {
	w := c.AddWidget(name)
	w.SetWidth(width)
	w.SetHeight(height)
	return w
}

func mustLayout(t *testing.T, c *Container) {
	t.Helper()
	if err := c.Layout(); err != nil {
		t.Fatalf("layout failed: %v", err)
	}
}

func expectFrame(t *testing.T, w *Widget, x, y, width, height float64) {
	t.Helper()
	if !approx(w.AbsoluteX(), x) || !approx(w.AbsoluteY(), y) || !approx(w.Width(), width) || !approx(w.Height(), height) {
		t.Fatalf("%s: expected (%g,%g %gx%g), got (%g,%g %gx%g)",
			w.Name(), x, y, width, height, w.AbsoluteX(), w.AbsoluteY(), w.Width(), w.Height())
	}
}

func TestLayoutDirectResolution(t *testing.T) {
	c := newRoot(t, 400, 300)
	root := c.Root()
	a := sized(c, "a", 100, 50)
	a.Connect(AnchorLeft, root, AnchorLeft, 10)
	a.Connect(AnchorTop, root, AnchorTop, 20)

	b := sized(c, "b", 80, 40)
	b.Connect(AnchorLeft, a, AnchorRight, 5)
	b.Connect(AnchorTop, a, AnchorBottom, 0)

	centred := sized(c, "centred", 100, 10)
	centred.Connect(AnchorCenterX, root, AnchorCenterX, 0)

	biased := sized(c, "biased", 100, 10)
	biased.Connect(AnchorLeft, root, AnchorLeft, 0)
	biased.Connect(AnchorRight, root, AnchorRight, 0)
	biased.SetBias(Horizontal, 0.25)

	mustLayout(t, c)
	expectFrame(t, a, 10, 20, 100, 50)
	expectFrame(t, b, 115, 70, 80, 40)
	expectFrame(t, centred, 150, 0, 100, 10)
	expectFrame(t, biased, 75, 0, 100, 10)
	for _, w := range []*Widget{a, b, centred, biased} {
		if !w.IsResolvedHorizontally() || !w.IsResolvedVertically() {
			t.Fatalf("%s should be resolved without the solver", w.Name())
		}
	}
	if got := b.Anchor(AnchorLeft).FinalValue(); got != 115 {
		t.Fatalf("expected final value 115 on b.left, got %g", got)
	}
}

func TestLayoutMatchConstraintSpread(t *testing.T) {
	c := newRoot(t, 400, 300)
	w := c.AddWidget("w")
	w.SetDimension(Horizontal, Dimension{Behaviour: MatchConstraint})
	w.SetHeight(30)
	w.Connect(AnchorLeft, c.Root(), AnchorLeft, 10)
	w.Connect(AnchorRight, c.Root(), AnchorRight, 10)

	mustLayout(t, c)
	expectFrame(t, w, 10, 0, 380, 30)
	if w.IsResolvedHorizontally() {
		t.Fatalf("match constraint width goes through the solver")
	}
}

func TestLayoutMatchConstraintPercentAndMax(t *testing.T) {
	c := newRoot(t, 400, 300)
	half := c.AddWidget("half")
	half.SetDimension(Horizontal, Dimension{Behaviour: MatchConstraint, MatchDefault: MatchPercent, Percent: 0.5})
	half.Connect(AnchorLeft, c.Root(), AnchorLeft, 0)

	capped := c.AddWidget("capped")
	capped.SetDimension(Horizontal, Dimension{Behaviour: MatchConstraint, Max: 120})
	capped.Connect(AnchorLeft, c.Root(), AnchorLeft, 0)
	capped.Connect(AnchorRight, c.Root(), AnchorRight, 0)

	mustLayout(t, c)
	if !approx(half.Width(), 200) {
		t.Fatalf("expected percent width 200, got %g", half.Width())
	}
	if !approx(capped.Width(), 120) {
		t.Fatalf("expected width capped at 120, got %g", capped.Width())
	}
	if !approx(capped.X(), 140) {
		t.Fatalf("capped widget should stay centred at 140, got %g", capped.X())
	}
}

func TestLayoutDimensionRatio(t *testing.T) {
	c := newRoot(t, 400, 300)
	w := c.AddWidget("video")
	w.SetWidth(160)
	w.SetDimension(Vertical, Dimension{Behaviour: MatchConstraint})
	w.Connect(AnchorTop, c.Root(), AnchorTop, 0)
	if err := w.SetDimensionRatio("16:9"); err != nil {
		t.Fatalf("ratio: %v", err)
	}
	mustLayout(t, c)
	if !approx(w.Height(), 90) {
		t.Fatalf("expected height 90, got %g", w.Height())
	}

	if err := w.SetDimensionRatio("Q,1:2"); err == nil {
		t.Fatalf("expected error for unknown ratio side")
	}
	if err := w.SetDimensionRatio("0:2"); err == nil {
		t.Fatalf("expected error for zero ratio")
	}
}

func TestLayoutGoneAndBaseline(t *testing.T) {
	c := newRoot(t, 400, 300)
	root := c.Root()
	a := sized(c, "a", 100, 50)
	a.Connect(AnchorLeft, root, AnchorLeft, 30)
	a.Connect(AnchorTop, root, AnchorTop, 10)
	a.SetBaselineDistance(30)

	b := sized(c, "b", 60, 20)
	b.Anchor(AnchorLeft).Connect(a.Anchor(AnchorRight), 20, 7, false)
	b.SetBaselineDistance(12)
	if !b.Connect(AnchorBaseline, a, AnchorBaseline, 0) {
		t.Fatalf("baseline connect failed")
	}

	mustLayout(t, c)
	expectFrame(t, b, 150, 28, 60, 20)

	a.SetVisibility(Gone)
	mustLayout(t, c)
	if a.Width() != 0 || a.X() != 0 {
		t.Fatalf("gone widget collapses to zero at its target, got x=%g w=%g", a.X(), a.Width())
	}
	if !approx(b.X(), 7) {
		t.Fatalf("expected gone margin 7, got %g", b.X())
	}
}

func TestLayoutBarrierDirect(t *testing.T) {
	c := NewContainer(Options{})
	ws := []*Widget{c.AddWidget("w1"), c.AddWidget("w2"), c.AddWidget("w3")}
	for i, v := range []float64{10, 20, 5} {
		ws[i].Anchor(AnchorLeft).SetFinalValue(v)
	}
	b := c.AddBarrier(nil, "barrier", BarrierLeft)
	b.Margin = 2
	b.Add(ws...)
	if !b.AllSolved() {
		t.Fatalf("all references have final values")
	}
	if got := b.Anchor(AnchorLeft).FinalValue(); got != 7 {
		t.Fatalf("expected barrier at 7, got %g", got)
	}

	ws[1].Anchor(AnchorLeft).ResetFinalResolution()
	b.ResetFinalResolution()
	if b.AllSolved() {
		t.Fatalf("a reference without final value blocks the fast path")
	}
	if b.Anchor(AnchorLeft).HasFinalValue() {
		t.Fatalf("barrier must stay unresolved")
	}
}

func TestLayoutBarrierThroughLayout(t *testing.T) {
	c := newRoot(t, 400, 300)
	root := c.Root()
	for i, x := range []float64{10, 20, 5} {
		w := sized(c, []string{"w1", "w2", "w3"}[i], 40, 10)
		w.Connect(AnchorLeft, root, AnchorLeft, x)
	}
	b := c.AddBarrier(nil, "start", BarrierLeft)
	b.Margin = 2
	b.Add(c.WidgetByName("w1"), c.WidgetByName("w2"), c.WidgetByName("w3"))
	mustLayout(t, c)
	if got := b.Anchor(AnchorLeft).FinalValue(); got != 7 {
		t.Fatalf("expected barrier at 7, got %g", got)
	}
}

func TestLayoutBarrierSolved(t *testing.T) {
	c := newRoot(t, 400, 300)
	root := c.Root()
	w1 := sized(c, "w1", 100, 10)
	w1.Connect(AnchorLeft, root, AnchorLeft, 10)

	// MATCH_PARENT 不能直接解析，屏障走求解器。
	w2 := c.AddWidget("w2")
	w2.SetDimension(Horizontal, Dimension{Behaviour: MatchParent})
	w2.Connect(AnchorLeft, root, AnchorLeft, 0)
	w2.Connect(AnchorRight, root, AnchorRight, 250)

	b := c.AddBarrier(nil, "end", BarrierRight)
	b.Add(w1, w2)

	w3 := sized(c, "w3", 50, 10)
	w3.Connect(AnchorLeft, b.Widget, AnchorRight, 0)

	mustLayout(t, c)
	if !approx(w2.Width(), 150) {
		t.Fatalf("expected w2 width 150, got %g", w2.Width())
	}
	if !approx(b.X(), 150) {
		t.Fatalf("expected barrier at 150, got %g", b.X())
	}
	if !approx(w3.X(), 150) {
		t.Fatalf("expected w3 after barrier at 150, got %g", w3.X())
	}
}

func TestLayoutGuidelines(t *testing.T) {
	c := newRoot(t, 400, 300)
	g := c.AddGuideline(nil, "quarter", Vertical)
	g.SetPercent(0.25)
	h := c.AddGuideline(nil, "footer", Horizontal)
	h.SetEnd(50)

	w := sized(c, "w", 40, 20)
	w.Connect(AnchorLeft, g.Widget, AnchorLeft, 0)
	w.Connect(AnchorBottom, h.Widget, AnchorTop, 0)

	mustLayout(t, c)
	if g.X() != 100 || g.Height() != 300 {
		t.Fatalf("vertical guideline should sit at 100 spanning 300, got x=%g h=%g", g.X(), g.Height())
	}
	expectFrame(t, w, 100, 230, 40, 20)
}

func chainOf(t *testing.T, c *Container, widths ...float64) []*Widget {
	t.Helper()
	root := c.Root()
	var ws []*Widget
	for i, width := range widths {
		w := c.AddWidget(string(rune('a' + i)))
		w.SetHeight(10)
		if width < 0 {
			w.SetDimension(Horizontal, Dimension{Behaviour: MatchConstraint})
		} else {
			w.SetWidth(width)
		}
		ws = append(ws, w)
	}
	ws[0].Connect(AnchorLeft, root, AnchorLeft, 0)
	for i := 0; i+1 < len(ws); i++ {
		if !ws[i].Connect(AnchorRight, ws[i+1], AnchorLeft, 0) || !ws[i+1].Connect(AnchorLeft, ws[i], AnchorRight, 0) {
			t.Fatalf("chain link %d failed", i)
		}
	}
	ws[len(ws)-1].Connect(AnchorRight, root, AnchorRight, 0)
	return ws
}

func TestLayoutChainStyles(t *testing.T) {
	cases := []struct {
		style ChainStyle
		want  []float64
	}{
		{ChainSpread, []float64{62.5, 175, 287.5}},
		{ChainSpreadInside, []float64{0, 175, 350}},
		{ChainPacked, []float64{125, 175, 225}},
	}
	for _, tc := range cases {
		c := newRoot(t, 400, 100)
		ws := chainOf(t, c, 50, 50, 50)
		ws[0].SetChainStyle(Horizontal, tc.style)
		mustLayout(t, c)
		for i, w := range ws {
			if !approx(w.X(), tc.want[i]) {
				t.Fatalf("%s: %s expected x=%g, got %g", tc.style, w.Name(), tc.want[i], w.X())
			}
		}
		if chains := c.Chains(Horizontal); len(chains) != 1 || len(chains[0]) != 3 {
			t.Fatalf("expected one chain of three, got %v", chains)
		}
	}
}

func TestLayoutPackedChainBias(t *testing.T) {
	c := newRoot(t, 400, 100)
	ws := chainOf(t, c, 50, 50, 50)
	ws[0].SetChainStyle(Horizontal, ChainPacked)
	ws[0].SetBias(Horizontal, 0)
	mustLayout(t, c)
	if !approx(ws[0].X(), 0) || !approx(ws[2].X(), 100) {
		t.Fatalf("bias 0 packs to the start, got %g and %g", ws[0].X(), ws[2].X())
	}
}

func TestLayoutWeightedChain(t *testing.T) {
	c := newRoot(t, 400, 100)
	ws := chainOf(t, c, 50, -1, -1)
	ws[1].SetWeight(Horizontal, 2)
	ws[2].SetWeight(Horizontal, 1)
	mustLayout(t, c)
	expect := []struct{ x, w float64 }{{0, 50}, {50, 700.0 / 3}, {50 + 700.0/3, 350.0 / 3}}
	for i, e := range expect {
		if !approx(ws[i].X(), e.x) || !approx(ws[i].Width(), e.w) {
			t.Fatalf("%s: expected x=%g w=%g, got x=%g w=%g", ws[i].Name(), e.x, e.w, ws[i].X(), ws[i].Width())
		}
	}
}

func TestLayoutLongWeightedChainScales(t *testing.T) {
	const n = 200
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = -1
	}
	c := newRoot(t, 3000, 100)
	ws := chainOf(t, c, widths...)
	for i, w := range ws {
		w.SetWeight(Horizontal, float64(1+i%2))
	}
	start := time.Now()
	mustLayout(t, c)
	if d := time.Since(start); d > 3*time.Second {
		t.Fatalf("layout of a %d member weighted chain took %v", n, d)
	}
	// 总权重 300，每单位 10。
	x := 0.0
	for i, w := range ws {
		want := float64(10 * (1 + i%2))
		if !approx(w.X(), x) || !approx(w.Width(), want) {
			t.Fatalf("member %d: expected x=%g w=%g, got x=%g w=%g", i, x, want, w.X(), w.Width())
		}
		x += want
	}
}

func TestLayoutLongSpreadChainScales(t *testing.T) {
	const n = 200
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = 10
	}
	c := newRoot(t, 4010, 100)
	ws := chainOf(t, c, widths...)
	start := time.Now()
	mustLayout(t, c)
	if d := time.Since(start); d > 3*time.Second {
		t.Fatalf("layout of a %d member spread chain took %v", n, d)
	}
	// 201 段间隙平分 2010。
	gap := 2010.0 / (n + 1)
	for _, i := range []int{0, 1, n / 2, n - 1} {
		want := gap*float64(i+1) + 10*float64(i)
		if !approx(ws[i].X(), want) {
			t.Fatalf("member %d: expected x=%g, got %g", i, want, ws[i].X())
		}
	}
}

func TestLayoutFlowWraps(t *testing.T) {
	c := newRoot(t, 300, 200)
	f := c.AddFlow(nil, "flow", Horizontal)
	f.Wrap = WrapChain
	f.HorizontalGap = 10
	f.VerticalGap = 5
	f.SetWidth(300)
	f.Connect(AnchorLeft, c.Root(), AnchorLeft, 0)
	f.Connect(AnchorTop, c.Root(), AnchorTop, 0)
	var items []*Widget
	for i := 0; i < 5; i++ {
		items = append(items, sized(c, string(rune('p'+i)), 80, 20))
	}
	f.Add(items...)

	mustLayout(t, c)
	rows := f.Rows()
	if len(rows) != 2 || len(rows[0]) != 3 || len(rows[1]) != 2 {
		t.Fatalf("expected rows of 3 and 2, got %d rows", len(rows))
	}
	if !approx(f.Height(), 45) {
		t.Fatalf("expected flow height 45, got %g", f.Height())
	}
	if !approx(items[0].X(), 10) || !approx(items[0].Y(), 0) {
		t.Fatalf("first item expected at (10,0), got (%g,%g)", items[0].X(), items[0].Y())
	}
	if !approx(items[3].Y(), 25) || !approx(items[4].Y(), 25) {
		t.Fatalf("second row expected at y=25, got %g and %g", items[3].Y(), items[4].Y())
	}
}

func TestLayoutFlowAligned(t *testing.T) {
	c := newRoot(t, 300, 200)
	f := c.AddFlow(nil, "grid", Horizontal)
	f.Wrap = WrapAligned
	f.MaxElementsWrap = 2
	f.HorizontalGap = 10
	f.VerticalGap = 5
	f.Connect(AnchorLeft, c.Root(), AnchorLeft, 0)
	f.Connect(AnchorTop, c.Root(), AnchorTop, 0)
	p, q, r := sized(c, "p", 80, 20), sized(c, "q", 40, 20), sized(c, "r", 60, 20)
	f.Add(p, q, r)

	mustLayout(t, c)
	if !approx(q.X(), 90) || !approx(q.Y(), 0) {
		t.Fatalf("q expected at (90,0), got (%g,%g)", q.X(), q.Y())
	}
	if !approx(r.X(), 0) || !approx(r.Y(), 25) {
		t.Fatalf("r expected at (0,25), got (%g,%g)", r.X(), r.Y())
	}
	if !approx(f.Width(), 130) || !approx(f.Height(), 45) {
		t.Fatalf("expected flow 130x45, got %gx%g", f.Width(), f.Height())
	}
}

func TestLayoutWrapRoot(t *testing.T) {
	c := NewContainer(Options{})
	root := c.Root()
	root.SetDimension(Horizontal, Dimension{Behaviour: WrapContent})
	root.SetDimension(Vertical, Dimension{Behaviour: WrapContent})
	a := sized(c, "a", 100, 50)
	a.Connect(AnchorLeft, root, AnchorLeft, 10)
	a.Connect(AnchorTop, root, AnchorTop, 10)
	b := sized(c, "b", 60, 30)
	b.Connect(AnchorLeft, a, AnchorRight, 20)

	mustLayout(t, c)
	res := c.Result()
	if !approx(res.Width, 190) || !approx(res.Height, 60) {
		t.Fatalf("expected wrapped root 190x60, got %gx%g", res.Width, res.Height)
	}
}

func TestLayoutRootMustBeFixedOrWrap(t *testing.T) {
	c := NewContainer(Options{})
	c.Root().SetDimension(Horizontal, Dimension{Behaviour: MatchConstraint})
	if err := c.Layout(); err == nil {
		t.Fatalf("expected error for match constraint root")
	}
}

func TestLayoutNestedContainer(t *testing.T) {
	c := newRoot(t, 400, 300)
	root := c.Root()
	box := c.AddContainer(nil, "box")
	box.SetDimension(Horizontal, Dimension{Behaviour: WrapContent})
	box.SetDimension(Vertical, Dimension{Behaviour: WrapContent})
	box.Connect(AnchorLeft, root, AnchorLeft, 10)
	box.Connect(AnchorTop, root, AnchorTop, 10)

	inner := c.AddChild(box, "inner")
	inner.SetWidth(50)
	inner.SetHeight(20)
	inner.Connect(AnchorLeft, box, AnchorLeft, 5)
	inner.Connect(AnchorTop, box, AnchorTop, 5)

	mustLayout(t, c)
	expectFrame(t, box, 10, 10, 55, 25)
	expectFrame(t, inner, 15, 15, 50, 20)

	f, ok := c.Result().Frame("inner")
	if !ok || f.Parent != "box" || f.X != 15 {
		t.Fatalf("unexpected frame for inner: %+v", f)
	}
}

func TestLayoutMeasurer(t *testing.T) {
	c := NewContainer(Options{Measurer: MeasureFunc(func(w *Widget) (float64, float64, float64) {
		return float64(len(w.Name())) * 10, 16, 12
	})})
	c.Root().SetWidth(400)
	c.Root().SetHeight(100)
	label := c.AddWidget("label")
	label.SetDimension(Horizontal, Dimension{Behaviour: WrapContent})
	label.SetDimension(Vertical, Dimension{Behaviour: WrapContent})

	mustLayout(t, c)
	if label.Width() != 50 || label.Height() != 16 || label.BaselineDistance() != 12 {
		t.Fatalf("measured size not applied: %gx%g baseline %g", label.Width(), label.Height(), label.BaselineDistance())
	}
}

func buildSample(c *Container) {
	root := c.Root()
	ws := []*Widget{sized(c, "a", 40, 20), sized(c, "b", 60, 20), sized(c, "c", 30, 20)}
	ws[0].Connect(AnchorLeft, root, AnchorLeft, 0)
	for i := 0; i+1 < len(ws); i++ {
		ws[i].Connect(AnchorRight, ws[i+1], AnchorLeft, 4)
		ws[i+1].Connect(AnchorLeft, ws[i], AnchorRight, 4)
	}
	ws[2].Connect(AnchorRight, root, AnchorRight, 0)
	for _, w := range ws {
		w.Connect(AnchorTop, root, AnchorTop, 0)
		w.Connect(AnchorBottom, root, AnchorBottom, 0)
	}
	ws[1].SetBias(Vertical, 0.3)
}

func TestLayoutIsDeterministic(t *testing.T) {
	c := newRoot(t, 320, 120)
	buildSample(c)
	mustLayout(t, c)
	first := c.Result()
	mustLayout(t, c)
	if second := c.Result(); !reflect.DeepEqual(first, second) {
		t.Fatalf("layout is not deterministic:\n%+v\n%+v", first, second)
	}

	other := newRoot(t, 320, 120)
	buildSample(other)
	mustLayout(t, other)
	if !reflect.DeepEqual(first, other.Result()) {
		t.Fatalf("identical trees produced different results")
	}
}

func TestAnchorGraphDOT(t *testing.T) {
	c := newRoot(t, 200, 100)
	a := sized(c, "a", 10, 10)
	b := sized(c, "b", 10, 10)
	b.Connect(AnchorLeft, a, AnchorRight, 5)
	mustLayout(t, c)

	res := c.Result()
	if len(res.Connections) != 1 {
		t.Fatalf("expected one connection, got %d", len(res.Connections))
	}
	dot := AnchorGraphDOT(res)
	for _, want := range []string{"digraph anchors", `"b" -> "a"`, "left→right (5)"} {
		if !strings.Contains(dot, want) {
			t.Fatalf("DOT output missing %q:\n%s", want, dot)
		}
	}

	if err := WriteDebugJSON(nil, t.TempDir()+"/none.json"); err != nil {
		t.Fatalf("nil result should be ignored: %v", err)
	}
}
