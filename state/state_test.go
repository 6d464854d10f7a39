package state

import (
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/layout"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func expectLink(t *testing.T, r *ConstraintReference, from layout.AnchorType, target string, to layout.AnchorType) {
	t.Helper()
	got, anchor, _, ok := r.Link(from)
	if !ok {
		t.Fatalf("%s.%s: expected a link to %s.%s, got none", r.Key(), from, target, to)
	}
	if got != target || anchor != to {
		t.Fatalf("%s.%s: expected link to %s.%s, got %s.%s", r.Key(), from, target, to, got, anchor)
	}
}

func TestVerticalPackedChainConnections(t *testing.T) {
	s := New()
	s.VerticalChain("A", "B", "C").Style(layout.ChainPacked)
	s.Chains()[0].Apply()

	a, b, c := s.Reference("A"), s.Reference("B"), s.Reference("C")
	expectLink(t, a, layout.AnchorTop, Parent, layout.AnchorTop)
	expectLink(t, a, layout.AnchorBottom, "B", layout.AnchorTop)
	expectLink(t, b, layout.AnchorTop, "A", layout.AnchorBottom)
	expectLink(t, b, layout.AnchorBottom, "C", layout.AnchorTop)
	expectLink(t, c, layout.AnchorTop, "B", layout.AnchorBottom)
	expectLink(t, c, layout.AnchorBottom, Parent, layout.AnchorBottom)

	if style, ok := a.ChainStyle(layout.Vertical); !ok || style != layout.ChainPacked {
		t.Fatalf("expected packed style on the head, got %s (set=%v)", style, ok)
	}
	if _, ok := b.ChainStyle(layout.Vertical); ok {
		t.Fatalf("style must only be written on the first member")
	}
	if _, _, _, ok := a.Link(layout.AnchorLeft); ok {
		t.Fatalf("vertical chain must not touch horizontal anchors")
	}
}

func TestChainApplyClearsAxisAndKeepsMargins(t *testing.T) {
	s := New()
	s.Constraints("a").LeftToLeft("x").Margin(40).TopToTop(Parent).Margin(3)
	s.HorizontalChain("a", "b").
		Margins("a", 4, 6).
		Weight("b", 2).
		Bias(0.3).
		StartTo("g", layout.AnchorRight, 12)
	s.Chains()[0].Apply()

	a, b := s.Reference("a"), s.Reference("b")
	if target, to, margin, _ := a.Link(layout.AnchorLeft); target != "g" || to != layout.AnchorRight || margin != 12 {
		t.Fatalf("explicit start expected g.right (12), got %s.%s (%g)", target, to, margin)
	}
	if _, _, margin, _ := a.Link(layout.AnchorRight); margin != 6 {
		t.Fatalf("post margin of a expected 6, got %g", margin)
	}
	if _, _, margin, _ := b.Link(layout.AnchorLeft); margin != 0 {
		t.Fatalf("unspecified margins are 0, got %g", margin)
	}
	if _, _, margin, ok := a.Link(layout.AnchorTop); !ok || margin != 3 {
		t.Fatalf("vertical links must survive a horizontal chain")
	}
	if b.Weight(layout.Horizontal) != 2 || a.Weight(layout.Horizontal) != layout.UnknownWeight {
		t.Fatalf("weights: a=%g b=%g", a.Weight(layout.Horizontal), b.Weight(layout.Horizontal))
	}
	if a.Bias(layout.Horizontal) != 0.3 || b.Bias(layout.Horizontal) != 0.5 {
		t.Fatalf("bias belongs to the head: a=%g b=%g", a.Bias(layout.Horizontal), b.Bias(layout.Horizontal))
	}
}

func TestParseDimension(t *testing.T) {
	cases := []struct {
		in   string
		want Dimension
	}{
		{"120", Fixed(120)},
		{" 7.5 ", Fixed(7.5)},
		{"wrap", Wrap()},
		{"WRAP_CONTENT", Wrap()},
		{"spread", Spread()},
		{"match_constraint", Spread()},
		{"preferWrap", PreferWrap()},
		{"parent", MatchParent()},
		{"50%", Percent(0.5)},
		{"ratio:16:9", Ratio("16:9")},
		{"H,2:1", Ratio("H,2:1")},
	}
	for _, tc := range cases {
		got, err := ParseDimension(tc.in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %+v, got %+v", tc.in, tc.want, got)
		}
	}
	for _, bad := range []string{"", "abc", "x%"} {
		if _, err := ParseDimension(bad); err == nil {
			t.Fatalf("%q: expected an error", bad)
		}
	}
	if s := Percent(0.25).AtMost(80).String(); s != "25%" {
		t.Fatalf("expected 25%%, got %s", s)
	}
}

func TestSolveHorizontalPackedChain(t *testing.T) {
	s := New().Width(Fixed(400)).Height(Fixed(100))
	for _, k := range []string{"a", "b", "c"} {
		s.Constraints(k).Width(Fixed(50)).Height(Fixed(10))
	}
	s.HorizontalChain("a", "b", "c").Style(layout.ChainPacked)

	c, err := s.Solve(layout.Options{})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	for i, x := range []float64{125, 175, 225} {
		w := c.WidgetByName(string(rune('a' + i)))
		if !approx(w.X(), x) {
			t.Fatalf("%s: expected x=%g, got %g", w.Name(), x, w.X())
		}
	}
	if s.Reference("a").Widget() != c.WidgetByName("a") {
		t.Fatalf("references must point at the built widgets")
	}
}

func TestSolveGuidelineAndBarrier(t *testing.T) {
	s := New().Width(Fixed(400)).Height(Fixed(300))
	s.VerticalGuideline("half").Percent(0.5)
	s.Constraints("w1").Width(Fixed(40)).Height(Fixed(10)).LeftToLeft(Parent).Margin(10)
	s.Constraints("w2").Width(Fixed(60)).Height(Fixed(10)).LeftToLeft("half")
	s.Barrier("edge", layout.BarrierRight).Add("w1", "w2").BarrierMargin(5)
	s.Constraints("after").Width(Fixed(20)).Height(Fixed(10)).LeftToRight("edge")

	c, err := s.Solve(layout.Options{})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if x := c.WidgetByName("w2").X(); !approx(x, 200) {
		t.Fatalf("w2 should follow the guideline at 200, got %g", x)
	}
	if x := c.WidgetByName("after").X(); !approx(x, 265) {
		t.Fatalf("after should follow the barrier at 260+5, got %g", x)
	}
}

func TestApplyUnknownReference(t *testing.T) {
	s := New().Width(Fixed(100)).Height(Fixed(100))
	s.Constraints("a").LeftToRight("missing")
	_, err := s.Build(layout.Options{})
	if err == nil || !strings.Contains(err.Error(), `unknown reference "missing"`) {
		t.Fatalf("expected unknown reference error, got %v", err)
	}
}

func TestApplyRejectsInvalidConnection(t *testing.T) {
	s := New().Width(Fixed(100)).Height(Fixed(100))
	s.Constraints("a").LeftToRight("b")
	s.Constraints("b").LeftToRight("c")
	s.Constraints("c").LeftToRight("a")
	if _, err := s.Build(layout.Options{}); err == nil || !strings.Contains(err.Error(), "cannot connect") {
		t.Fatalf("expected a cycle to be rejected, got %v", err)
	}
}

const sampleCL = `
{
  Header: { exportAs: 'sample' },
  Variables: { m: 8 },
  parent: { width: 400, height: 300 },
  a: {
    width: 100, height: 50,
    start: ['parent', 'start', 'm'],
    top: ['parent', 'top', 20],
    alpha: 0.5,
    custom: { tint: '#FF0000FF', count: 3, label: 'hi', on: true },
  },
  b: {
    width: 'spread', height: { value: 40, max: 30 },
    start: ['a', 'end', 'm'],
    end: ['parent', 'end', m],
    top: ['a', 'bottom'],
    visibility: 'visible',
  },
  g: { type: 'vGuideline', percent: 0.5 },
  c: { width: 20, height: 10, start: ['g', 'start'], top: ['parent', 'top'] },
  row: { type: 'hChain', contains: ['x', ['y', 4, 0]], style: 'spread_inside' },
  x: { width: 50, height: 10 },
  y: { width: 50, height: 10 },
}
`

func TestParseConstraintSet(t *testing.T) {
	s := New()
	if err := ParseConstraintSet(sampleCL, s); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	a := s.Reference("a")
	if v, ok := a.PropertyValue(binding.Alpha); !ok || v != 0.5 {
		t.Fatalf("expected alpha 0.5, got %g (%v)", v, ok)
	}
	custom := a.CustomAttributes()
	if len(custom) != 4 {
		t.Fatalf("expected 4 custom attributes, got %d", len(custom))
	}
	kinds := map[string]binding.AttributeKind{}
	for _, attr := range custom {
		kinds[attr.Name] = attr.Kind
	}
	if kinds["tint"] != binding.KindColor || kinds["count"] != binding.KindInt ||
		kinds["label"] != binding.KindString || kinds["on"] != binding.KindBoolean {
		t.Fatalf("unexpected custom kinds %v", kinds)
	}
	if d := s.Reference("b").Dimension(layout.Vertical); d.Kind != DimFixed || d.Max != 30 {
		t.Fatalf("expected bounded fixed height, got %+v", d)
	}

	c, err := s.Solve(layout.Options{})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	res := c.Result()
	if res.Width != 400 || res.Height != 300 {
		t.Fatalf("parent size expected 400x300, got %gx%g", res.Width, res.Height)
	}
	check := func(name string, x, y, w float64) {
		t.Helper()
		f, ok := res.Frame(name)
		if !ok {
			t.Fatalf("%s missing from result", name)
		}
		if !approx(f.X, x) || !approx(f.Y, y) || !approx(f.Width, w) {
			t.Fatalf("%s: expected x=%g y=%g w=%g, got %+v", name, x, y, w, f)
		}
	}
	check("a", 8, 20, 100)
	check("b", 116, 70, 276)
	check("c", 200, 0, 20)
	check("x", 0, 0, 50)
	check("y", 350, 0, 50)
}

func TestParseConstraintSetErrors(t *testing.T) {
	cases := map[string]string{
		"unknown variable": `{ a: { start: ['parent', 'start', 'nope'] } }`,
		"unknown type":     `{ a: { type: 'grid' } }`,
		"unknown anchor":   `{ a: { start: ['parent', 'middle'] } }`,
		"bad guideline":    `{ g: { type: 'hGuideline' } }`,
		"unknown attr":     `{ a: { colour: 3 } }`,
		"syntax":           `{ a: `,
	}
	for name, doc := range cases {
		if err := ParseConstraintSet(doc, New()); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}
