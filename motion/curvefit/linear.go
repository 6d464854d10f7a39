package curvefit

import "math"

// LinearCurve 在相邻关键帧之间线性插值。
type LinearCurve struct {
	time   []float64
	values [][]float64
	slope  []float64

	// 二维及以上时记录折线总长，供路径长度查询。
	totalLength float64
}

// NewLinear 需要至少一个关键帧，只有一个时曲线是水平的。
func NewLinear(time []float64, values [][]float64) *LinearCurve {
	time, values = atLeastTwo("linear", time, values)
	c := &LinearCurve{time: time, values: values, slope: make([]float64, len(values[0]))}
	if len(values[0]) >= 2 {
		for i := 1; i < len(values); i++ {
			c.totalLength += math.Hypot(values[i][0]-values[i-1][0], values[i][1]-values[i-1][1])
		}
	}
	return c
}

// Length 返回折线前两维的总长度，一维曲线为 0。
func (c *LinearCurve) Length() float64 { return c.totalLength }

func (c *LinearCurve) Pos(t float64, out []float64) {
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
	x := (t - c.time[i]) / (c.time[i+1] - c.time[i])
	for j := range out {
		out[j] = c.values[i][j]*(1-x) + c.values[i+1][j]*x
	}
}

func (c *LinearCurve) PosAt(t float64, j int) float64 {
	n := len(c.time)
	if t <= c.time[0] {
		return c.values[0][j] + (t-c.time[0])*c.SlopeAt(c.time[0], j)
	}
	if t >= c.time[n-1] {
		return c.values[n-1][j] + (t-c.time[n-1])*c.SlopeAt(c.time[n-1], j)
	}
	i := segment(c.time, t)
	x := (t - c.time[i]) / (c.time[i+1] - c.time[i])
	return c.values[i][j]*(1-x) + c.values[i+1][j]*x
}

func (c *LinearCurve) Slope(t float64, out []float64) {
	i := segment(c.time, clampTime(c.time, t))
	h := c.time[i+1] - c.time[i]
	for j := range out {
		out[j] = (c.values[i+1][j] - c.values[i][j]) / h
	}
}

func (c *LinearCurve) SlopeAt(t float64, j int) float64 {
	i := segment(c.time, clampTime(c.time, t))
	return (c.values[i+1][j] - c.values[i][j]) / (c.time[i+1] - c.time[i])
}

func (c *LinearCurve) TimePoints() []float64 { return c.time }

func clampTime(time []float64, t float64) float64 {
	if t < time[0] {
		return time[0]
	}
	if last := time[len(time)-1]; t > last {
		return last
	}
	return t
}
