package curvefit

import (
	"fmt"
	"math"
)

// MonotonicCurve 是逐维的三次 Hermite 样条，切线经过 Fritsch–Carlson 式的
// 缩放，保证相邻关键帧之间不会越过端点值。
type MonotonicCurve struct {
	time    []float64
	values  [][]float64
	tangent [][]float64
	slope   []float64
}

// NewMonotonic 需要至少一个关键帧，只有一个时曲线是水平的。
func NewMonotonic(time []float64, values [][]float64) *MonotonicCurve {
	time, values = atLeastTwo("spline", time, values)
	n := len(time)
	dim := len(values[0])
	slope := make([][]float64, n-1)
	for i := range slope {
		slope[i] = make([]float64, dim)
	}
	tangent := make([][]float64, n)
	for i := range tangent {
		tangent[i] = make([]float64, dim)
	}

	for j := 0; j < dim; j++ {
		for i := 0; i < n-1; i++ {
			dt := time[i+1] - time[i]
			slope[i][j] = (values[i+1][j] - values[i][j]) / dt
			if i == 0 {
				tangent[i][j] = slope[i][j]
			} else {
				tangent[i][j] = (slope[i-1][j] + slope[i][j]) * 0.5
			}
		}
		tangent[n-1][j] = slope[n-2][j]
	}

	for i := 0; i < n-1; i++ {
		for j := 0; j < dim; j++ {
			if slope[i][j] == 0 {
				tangent[i][j] = 0
				tangent[i+1][j] = 0
				continue
			}
			a := tangent[i][j] / slope[i][j]
			b := tangent[i+1][j] / slope[i][j]
			if h := math.Hypot(a, b); h > 9 {
				t := 3 / h
				tangent[i][j] = t * a * slope[i][j]
				tangent[i+1][j] = t * b * slope[i][j]
			}
		}
	}
	return &MonotonicCurve{time: time, values: values, tangent: tangent, slope: make([]float64, dim)}
}

func (c *MonotonicCurve) Pos(t float64, out []float64) {
	n := len(c.time)
	if t <= c.time[0] {
		c.Slope(c.time[0], c.slope)
		for j := range out {
			out[j] = c.values[0][j] + (t-c.time[0])*c.slope[j]
		}
		return
	}
	if t >= c.time[n-1] {
		c.Slope(c.time[n-1], c.slope)
		for j := range out {
			out[j] = c.values[n-1][j] + (t-c.time[n-1])*c.slope[j]
		}
		return
	}
	i := segment(c.time, t)
	h := c.time[i+1] - c.time[i]
	x := (t - c.time[i]) / h
	for j := range out {
		out[j] = hermite(h, x, c.values[i][j], c.values[i+1][j], c.tangent[i][j], c.tangent[i+1][j])
	}
}

func (c *MonotonicCurve) PosAt(t float64, j int) float64 {
	n := len(c.time)
	if t <= c.time[0] {
		return c.values[0][j] + (t-c.time[0])*c.SlopeAt(c.time[0], j)
	}
	if t >= c.time[n-1] {
		return c.values[n-1][j] + (t-c.time[n-1])*c.SlopeAt(c.time[n-1], j)
	}
	i := segment(c.time, t)
	h := c.time[i+1] - c.time[i]
	x := (t - c.time[i]) / h
	return hermite(h, x, c.values[i][j], c.values[i+1][j], c.tangent[i][j], c.tangent[i+1][j])
}

func (c *MonotonicCurve) Slope(t float64, out []float64) {
	t = clampTime(c.time, t)
	i := segment(c.time, t)
	h := c.time[i+1] - c.time[i]
	x := (t - c.time[i]) / h
	for j := range out {
		out[j] = hermiteDiff(h, x, c.values[i][j], c.values[i+1][j], c.tangent[i][j], c.tangent[i+1][j]) / h
	}
}

func (c *MonotonicCurve) SlopeAt(t float64, j int) float64 {
	t = clampTime(c.time, t)
	i := segment(c.time, t)
	h := c.time[i+1] - c.time[i]
	x := (t - c.time[i]) / h
	return hermiteDiff(h, x, c.values[i][j], c.values[i+1][j], c.tangent[i][j], c.tangent[i+1][j]) / h
}

func (c *MonotonicCurve) TimePoints() []float64 { return c.time }

// hermite 在区间 [0,1] 上的 x 处求值，h 是区间时长，t1/t2 是端点切线。
func hermite(h, x, y1, y2, t1, t2 float64) float64 {
	x2 := x * x
	x3 := x2 * x
	return -2*x3*y2 + 3*x2*y2 + 2*x3*y1 - 3*x2*y1 + y1 +
		h*t2*x3 + h*t1*x3 - h*t2*x2 - 2*h*t1*x2 + h*t1*x
}

// hermiteDiff 是 hermite 对 x 的导数。
func hermiteDiff(h, x, y1, y2, t1, t2 float64) float64 {
	x2 := x * x
	return -6*x2*y2 + 6*x*y2 + 6*x2*y1 - 6*x*y1 +
		3*h*t2*x2 + 3*h*t1*x2 - 2*h*t2*x - 4*h*t1*x + h*t1
}

// BuildWave 用等间距的取值构造周期为 1 的波形曲线：取值位于 [0,1]，
// 前后各平移一个周期，使端点处的切线与相邻周期连续。至少需要两个值。
func BuildWave(values []float64) *MonotonicCurve {
	n := len(values)
	last := n - 1
	gap := 1 / float64(last)
	time := make([]float64, n*3-2)
	points := make([][]float64, len(time))
	for i := range points {
		points[i] = make([]float64, 1)
	}
	for i, v := range values {
		points[i+last][0] = v
		time[i+last] = float64(i) * gap
		if i > 0 {
			points[i+last*2][0] = v + 1
			time[i+last*2] = float64(i)*gap + 1
			points[i-1][0] = v - 1 - gap
			time[i-1] = float64(i)*gap - 1 - gap
		}
	}
	return NewMonotonic(time, points)
}

// ParseWave 解析 "spline(v0, v1, ...)" 形式的自定义波形。
func ParseWave(desc string) (*MonotonicCurve, error) {
	v, err := parseArgs(desc)
	if err != nil {
		return nil, err
	}
	if len(v) < 2 {
		return nil, fmt.Errorf("wave %q needs at least 2 values", desc)
	}
	return BuildWave(v), nil
}
