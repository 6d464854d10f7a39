package curvefit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tanema/gween/ease"
)

// Easing 把 [0,1] 的进度映射为缓动后的进度。
type Easing interface {
	Get(x float64) float64
	Diff(x float64) float64
}

// linearEasing 是恒等映射。
type linearEasing struct{}

func (linearEasing) Get(x float64) float64 { return x }
func (linearEasing) Diff(float64) float64  { return 1 }
func (linearEasing) String() string        { return "linear" }

// Identity 返回恒等缓动。
func Identity() Easing { return linearEasing{} }

var namedCubic = map[string]string{
	"standard":   "cubic(0.4, 0.0, 0.2, 1)",
	"accelerate": "cubic(0.4, 0.05, 0.8, 0.7)",
	"decelerate": "cubic(0.0, 0.0, 0.2, 0.95)",
	"linear":     "cubic(1, 1, 0, 0)",
	"anticipate": "cubic(0.36, 0, 0.66, -0.56)",
	"overshoot":  "cubic(0.34, 1.56, 0.64, 1)",
}

var namedTween = map[string]ease.TweenFunc{
	"bounce":  ease.OutBounce,
	"elastic": ease.OutElastic,
	"sine":    ease.InOutSine,
	"quad":    ease.InOutQuad,
	"cubic":   ease.InOutCubic,
	"easeOut": ease.OutCubic,
}

// TweenFunc 返回名为 name 的 gween 缓动函数，"linear" 为匀速。
func TweenFunc(name string) (ease.TweenFunc, bool) {
	if name == "" || name == "linear" {
		return ease.Linear, true
	}
	fn, ok := namedTween[name]
	return fn, ok
}

// EasingFor 解析缓动描述："cubic(x1,y1,x2,y2)"、"spline(v0,v1,...)"、
// standard/accelerate/decelerate/linear/anticipate/overshoot，
// 以及 bounce/elastic/sine/quad/cubic/easeOut。空字符串为恒等缓动。
func EasingFor(desc string) (Easing, error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return Identity(), nil
	}
	if s, ok := namedCubic[desc]; ok {
		desc = s
	}
	if fn, ok := namedTween[desc]; ok {
		return &TweenEasing{Name: desc, fn: fn}, nil
	}
	switch {
	case strings.HasPrefix(desc, "cubic("):
		v, err := parseArgs(desc)
		if err != nil {
			return nil, err
		}
		if len(v) != 4 {
			return nil, fmt.Errorf("cubic easing needs 4 values, got %d", len(v))
		}
		return NewCubicEasing(v[0], v[1], v[2], v[3]), nil
	case strings.HasPrefix(desc, "spline("):
		v, err := parseArgs(desc)
		if err != nil {
			return nil, err
		}
		if len(v) < 2 {
			return nil, fmt.Errorf("spline easing needs at least 2 values")
		}
		return NewStepEasing(v), nil
	}
	return nil, fmt.Errorf("unknown easing %q", desc)
}

func parseArgs(desc string) ([]float64, error) {
	open := strings.IndexByte(desc, '(')
	end := strings.LastIndexByte(desc, ')')
	if open < 0 || end < open {
		return nil, fmt.Errorf("malformed easing %q", desc)
	}
	parts := strings.Split(desc[open+1:end], ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("easing %q: %w", desc, err)
		}
		out = append(out, f)
	}
	return out, nil
}

const (
	cubicError     = 0.01
	cubicDiffError = 0.0001
)

// CubicEasing 是控制点为 (x1,y1)、(x2,y2) 的三次贝塞尔缓动，
// 首尾固定在 (0,0) 与 (1,1)。
type CubicEasing struct {
	X1, Y1, X2, Y2 float64
}

func NewCubicEasing(x1, y1, x2, y2 float64) *CubicEasing {
	return &CubicEasing{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func (c *CubicEasing) String() string {
	return fmt.Sprintf("cubic(%g, %g, %g, %g)", c.X1, c.Y1, c.X2, c.Y2)
}

func bezier(p1, p2, t float64) float64 {
	t1 := 1 - t
	return p1*3*t1*t1*t + p2*3*t1*t*t + t*t*t
}

func (c *CubicEasing) x(t float64) float64 { return bezier(c.X1, c.X2, t) }
func (c *CubicEasing) y(t float64) float64 { return bezier(c.Y1, c.Y2, t) }

// solve 二分查找参数 t，使 x(t) 接近 x。
func (c *CubicEasing) solve(x, limit float64) (t, r float64) {
	t, r = 0.5, 0.5
	for r > limit {
		tx := c.x(t)
		r *= 0.5
		if tx < x {
			t += r
		} else {
			t -= r
		}
	}
	return t, r
}

func (c *CubicEasing) Get(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	t, r := c.solve(x, cubicError)
	x1, x2 := c.x(t-r), c.x(t+r)
	y1, y2 := c.y(t-r), c.y(t+r)
	return (y2-y1)*(x-x1)/(x2-x1) + y1
}

func (c *CubicEasing) Diff(x float64) float64 {
	t, r := c.solve(x, cubicDiffError)
	x1, x2 := c.x(t-r), c.x(t+r)
	y1, y2 := c.y(t-r), c.y(t+r)
	return (y2 - y1) / (x2 - x1)
}

// StepEasing 用单调样条穿过等间距的取值。
type StepEasing struct {
	values []float64
	curve  *MonotonicCurve
}

func NewStepEasing(values []float64) *StepEasing {
	return &StepEasing{values: values, curve: BuildWave(values)}
}

func (s *StepEasing) Get(x float64) float64  { return s.curve.PosAt(x, 0) }
func (s *StepEasing) Diff(x float64) float64 { return s.curve.SlopeAt(x, 0) }

// TweenEasing 适配 gween 的缓动函数，输入输出都在 [0,1]。
type TweenEasing struct {
	Name string
	fn   ease.TweenFunc
}

// NewTweenEasing 包装任意 ease.TweenFunc。
func NewTweenEasing(name string, fn ease.TweenFunc) *TweenEasing {
	return &TweenEasing{Name: name, fn: fn}
}

func (e *TweenEasing) String() string { return e.Name }

func (e *TweenEasing) Get(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return float64(e.fn(float32(x), 0, 1, 1))
}

// Diff 用中心差分近似导数，gween 只给出函数值。
func (e *TweenEasing) Diff(x float64) float64 {
	const h = 1e-3
	lo, hi := x-h, x+h
	if lo < 0 {
		lo = 0
	}
	if hi > 1 {
		hi = 1
	}
	return (e.Get(hi) - e.Get(lo)) / (hi - lo)
}
