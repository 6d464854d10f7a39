package spline

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/motion/curvefit"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestWaveShapes(t *testing.T) {
	cases := []struct {
		shape WaveShape
		angle float64
		want  float64
	}{
		{WaveSin, 0, 0},
		{WaveSin, 0.25, 1},
		{WaveSin, 0.75, -1},
		{WaveSquare, 0.25, 1},
		{WaveSquare, 0.75, -1},
		{WaveTriangle, 0, 0},
		{WaveTriangle, 0.25, 1},
		{WaveSaw, 0.25, 0.5},
		{WaveReverseSaw, 0.25, -0.5},
		{WaveCos, 0.5, -1},
		{WaveBounce, 0, 0},
		{WaveBounce, 0.25, 1},
	}
	for _, tc := range cases {
		if got := Wave(tc.shape, tc.angle, nil); !near(got, tc.want, 1e-9) {
			t.Fatalf("%s(%v) = %v, want %v", tc.shape, tc.angle, got, tc.want)
		}
	}
	if got := Wave(WaveSin, 0, nil); got != 0 {
		t.Fatalf("sin at phase 0 should be exactly 0, got %v", got)
	}
	if got := Wave(WaveCustom, 0.3, nil); got != 0 {
		t.Fatalf("custom wave without curve should be 0, got %v", got)
	}
}

func TestParseWaveShape(t *testing.T) {
	for in, want := range map[string]WaveShape{
		"sin":             WaveSin,
		"SQUARE":          WaveSquare,
		"sawtooth":        WaveSaw,
		"saw":             WaveSaw,
		"reverseSawtooth": WaveReverseSaw,
		"bounce":          WaveBounce,
		"spline(0,1,0)":   WaveCustom,
	} {
		got, err := ParseWaveShape(in)
		if err != nil || got != want {
			t.Fatalf("ParseWaveShape(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseWaveShape("zigzag"); err == nil {
		t.Fatalf("expected error for unknown shape")
	}
}

func TestSetSortsAndKeepsFirstDuplicate(t *testing.T) {
	s := New(binding.TranslationX)
	s.SetPoint(50, 5)
	s.SetPoint(0, 0)
	s.SetPoint(100, 10)
	s.SetPoint(50, 7)
	s.Setup(curvefit.Linear)

	if tp := s.Curve().TimePoints(); len(tp) != 3 {
		t.Fatalf("duplicate position should be dropped, got %v", tp)
	}
	for _, tc := range []struct{ t, want float64 }{{0, 0}, {0.25, 2.5}, {0.5, 5}, {0.75, 7.5}, {1, 10}} {
		if got := s.Get(tc.t); !near(got, tc.want, 1e-9) {
			t.Fatalf("Get(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
	if got := s.Slope(0.3); !near(got, 10, 1e-9) {
		t.Fatalf("slope = %v, want 10", got)
	}

	r := binding.NewRecorder()
	s.SetProperty(r, 0.5)
	if r.Property(binding.TranslationX) != 5 {
		t.Fatalf("recorder got %v", r.Properties)
	}
}

func TestSetWithoutKeyframes(t *testing.T) {
	var buf bytes.Buffer
	s := New(binding.Alpha)
	s.Logger = log.New(&buf)
	s.Setup(curvefit.Spline)
	if s.Curve() != nil {
		t.Fatalf("curve should stay nil")
	}
	if !strings.Contains(buf.String(), "no keyframes added") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
	if s.Get(0.5) != 1 || s.Slope(0.5) != 0 {
		t.Fatalf("empty set should return the property default")
	}
}

func TestSortParallel(t *testing.T) {
	keys := []int{9, 3, 7, 1, 5, 3}
	vals := []string{"9", "3a", "7", "1", "5", "3b"}
	sortParallel(keys, func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
	for i, k := range keys {
		if !strings.HasPrefix(vals[i], string(rune('0'+k))) {
			t.Fatalf("values out of step with keys: %v %v", keys, vals)
		}
	}
}

func TestCustomSetRejectsScalarPoint(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("SetPoint on a custom set should panic")
		}
	}()
	NewCustom("tint").SetPoint(0, 1)
}

func TestCustomSetInterpolatesColor(t *testing.T) {
	black := binding.ColorAttribute("tint", binding.PackARGB(255, 0, 0, 0))
	white := binding.ColorAttribute("tint", binding.PackARGB(255, 255, 255, 255))
	red := binding.ColorAttribute("tint", binding.PackARGB(255, 255, 0, 0))

	c := NewCustom("tint")
	c.SetCustomPoint(100, red)
	c.SetCustomPoint(0, black)
	c.SetCustomPoint(100, white)
	if c.Len() != 2 {
		t.Fatalf("same position should replace, got %d points", c.Len())
	}
	c.Setup(curvefit.Linear)

	r := binding.NewRecorder()
	c.SetProperty(r, 1)
	if got := r.Custom["tint"].Color; got != 0xffffffff {
		t.Fatalf("end color = %08x", got)
	}
	c.SetProperty(r, 0)
	if got := r.Custom["tint"].Color; got != 0xff000000 {
		t.Fatalf("start color = %08x", got)
	}

	out := make([]float64, 4)
	c.Values(0.5, out)
	if !near(out[0], 0.5, 1e-9) || !near(out[3], 1, 1e-9) {
		t.Fatalf("linear midpoint = %v", out)
	}
}

func TestTimeCycleAdvancesPhase(t *testing.T) {
	cache := NewKeyCache()
	s := NewTimeCycle(binding.TranslationX)
	s.SetPoint(0, 10, 1, WaveSin, 5)
	s.SetPoint(100, 10, 1, WaveSin, 5)
	s.Setup(curvefit.Linear)

	v, cont := s.Get(0.5, 1_000_000_000, "box", cache)
	if !near(v, 5, 1e-9) || !cont {
		t.Fatalf("first frame = %v, %v", v, cont)
	}
	v, _ = s.Get(0.5, 1_250_000_000, "box", cache)
	if !near(v, 15, 1e-6) {
		t.Fatalf("quarter cycle later = %v, want 15", v)
	}
	if got := cache.FloatValue("box", "translationX", 0); !near(got, 0.25, 1e-9) {
		t.Fatalf("cached phase = %v", got)
	}

	// 新的集合从缓存的相位继续。
	again := NewTimeCycle(binding.TranslationX)
	again.SetPoint(0, 10, 1, WaveSin, 5)
	again.Setup(curvefit.Linear)
	v, _ = again.Get(0, 42, "box", cache)
	if !near(v, 15, 1e-6) || !near(again.Phase(), 0.25, 1e-9) {
		t.Fatalf("resumed value = %v phase = %v", v, again.Phase())
	}

	r := binding.NewRecorder()
	if !again.SetProperty(r, 0, 42, "box", cache) {
		t.Fatalf("oscillation should request another frame")
	}
}

func TestTimeCycleZeroPeriod(t *testing.T) {
	s := NewTimeCycle(binding.Rotation)
	s.SetPoint(0, 10, 0, WaveSquare, 3)
	s.Setup(curvefit.Spline)
	v, cont := s.Get(0.3, 100, "w", nil)
	if v != 3 || cont {
		t.Fatalf("zero period should return the offset, got %v %v", v, cont)
	}
	if !math.IsNaN(s.Phase()) {
		t.Fatalf("phase should not be touched")
	}
}

func TestTimeCycleKeepsLargestShape(t *testing.T) {
	s := NewTimeCycle(binding.Alpha)
	s.SetPoint(0, 1, 1, WaveSquare, 0)
	s.SetPoint(100, 1, 1, WaveSin, 0)
	if s.Shape != WaveSquare {
		t.Fatalf("shape = %s", s.Shape)
	}
}

func TestKeyCacheReset(t *testing.T) {
	c := NewKeyCache()
	c.SetFloatValue("a", "alpha", 2, 1.5)
	c.SetFloatValue("a", "rotationZ", 0, 2)
	c.SetFloatValue("b", "alpha", 0, 3)
	if got := c.FloatValue("a", "alpha", 2); got != 1.5 {
		t.Fatalf("got %v", got)
	}
	if !math.IsNaN(c.FloatValue("a", "alpha", 0)) {
		t.Fatalf("unset index should be NaN")
	}
	c.Reset("a")
	if c.Len() != 1 || !math.IsNaN(c.FloatValue("a", "rotationZ", 0)) {
		t.Fatalf("reset should drop widget a, len = %d", c.Len())
	}

	var nilCache *KeyCache
	nilCache.SetFloatValue("a", "alpha", 0, 1)
	if !math.IsNaN(nilCache.FloatValue("a", "alpha", 0)) {
		t.Fatalf("nil cache should read NaN")
	}
}

func TestOscillatorPhase(t *testing.T) {
	o, err := NewOscillator(WaveSin, "")
	if err != nil {
		t.Fatal(err)
	}
	o.AddPoint(1, 2)
	o.AddPoint(0, 2)
	if got := o.phase(1); !near(got, 2, 1e-12) {
		t.Fatalf("constant period: phase(1) = %v, want 2", got)
	}
	if got := o.phase(0.5); !near(got, 1, 1e-12) {
		t.Fatalf("phase(0.5) = %v", got)
	}

	ramp, _ := NewOscillator(WaveSin, "")
	ramp.AddPoint(0, 1)
	ramp.AddPoint(1, 3)
	if got := ramp.phase(0.5); !near(got, 0.75, 1e-12) {
		t.Fatalf("ramp phase(0.5) = %v, want 0.75", got)
	}
	if got := ramp.periodAt(0.5); !near(got, 2, 1e-12) {
		t.Fatalf("ramp period(0.5) = %v, want 2", got)
	}
	if got := ramp.periodAt(1); got != 3 {
		t.Fatalf("period at knot = %v", got)
	}
	if got := ramp.Value(0.5, 0.25); !near(got, math.Sin(2*math.Pi*1.0), 1e-9) {
		t.Fatalf("value = %v", got)
	}

	if _, err := NewOscillator(WaveCustom, "spline(0,"); err == nil {
		t.Fatalf("expected error for bad custom wave")
	}
}

func TestCycleOscillator(t *testing.T) {
	c, err := NewCycleOscillator(binding.TranslationY, WaveSin, "")
	if err != nil {
		t.Fatal(err)
	}
	if c.Value(0.5) != 0 {
		t.Fatalf("empty oscillator should return the default")
	}
	c.SetPoint(CyclePoint{Position: 50, Period: 1, Offset: 2, Value: 3})
	c.Setup()
	if got := c.Value(0.25); !near(got, 5, 1e-9) {
		t.Fatalf("Value(0.25) = %v, want 5", got)
	}
	if got := c.Value(0.5); !near(got, 2, 1e-9) {
		t.Fatalf("Value(0.5) = %v, want 2", got)
	}

	drift, _ := NewCycleOscillator(binding.TranslationX, WaveSin, "")
	drift.SetPoint(CyclePoint{Position: 100, Period: 1, Offset: 10})
	drift.SetPoint(CyclePoint{Position: 0, Period: 1, Offset: 0})
	drift.Setup()
	if got := drift.Value(0.5); !near(got, 5, 1e-9) {
		t.Fatalf("zero amplitude should follow the offset, got %v", got)
	}
	if got := drift.Slope(0.5); !near(got, 10, 1e-9) {
		t.Fatalf("slope = %v, want 10", got)
	}
	r := binding.NewRecorder()
	drift.SetProperty(r, 1)
	if !near(r.Property(binding.TranslationX), 10, 1e-9) {
		t.Fatalf("recorder = %v", r.Properties)
	}
}
