package spline

import (
	"sort"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/motion/curvefit"
)

// CyclePoint 是一个周期关键帧：在 Position（0 到 100）处的周期数、偏移、
// 相位（以周期为单位）与振幅。
type CyclePoint struct {
	Position int
	Period   float64
	Offset   float64
	Phase    float64
	Value    float64
}

const (
	oscOffset = iota
	oscPhase
	oscValue
)

// CycleOscillator 按进度振荡：偏移、相位与振幅由样条插值，
// 波形的周期由 Oscillator 随进度变化。
type CycleOscillator struct {
	Property binding.Property

	osc    *Oscillator
	points []CyclePoint
	curve  curvefit.CurveFit
	value  []float64
	slope  []float64
}

// NewCycleOscillator 创建振荡属性。shape 为 WaveCustom 时 custom 是 "spline(...)" 描述。
func NewCycleOscillator(p binding.Property, shape WaveShape, custom string) (*CycleOscillator, error) {
	osc, err := NewOscillator(shape, custom)
	if err != nil {
		return nil, err
	}
	return &CycleOscillator{Property: p, osc: osc}, nil
}

// SetPoint 追加一个周期关键帧。
func (c *CycleOscillator) SetPoint(p CyclePoint) {
	c.points = append(c.points, p)
}

// Setup 按位置排序关键帧，在 0 与 1 处补齐周期并构造曲线。
func (c *CycleOscillator) Setup() {
	if len(c.points) == 0 {
		return
	}
	sort.SliceStable(c.points, func(i, j int) bool { return c.points[i].Position < c.points[j].Position })
	c.value = make([]float64, 3)
	c.slope = make([]float64, 3)

	first, last := c.points[0], c.points[len(c.points)-1]
	if first.Position > 0 {
		c.osc.AddPoint(0, first.Period)
	}
	if last.Position < 100 {
		c.osc.AddPoint(1, last.Period)
	}
	time := make([]float64, len(c.points))
	values := make([][]float64, len(c.points))
	for i, p := range c.points {
		time[i] = float64(p.Position) * timeScale
		values[i] = []float64{p.Offset, p.Phase, p.Value}
		c.osc.AddPoint(time[i], p.Period)
	}
	c.osc.Normalize()
	if len(c.points) > 1 {
		c.curve = curvefit.Get(curvefit.Spline, time, values)
	} else {
		c.curve = nil
		copy(c.value, values[0])
	}
}

// Value 返回进度 t 处的 offset + wave·amplitude。
func (c *CycleOscillator) Value(t float64) float64 {
	if c.value == nil {
		return c.Property.Default()
	}
	if c.curve != nil {
		c.curve.Pos(t, c.value)
	}
	return c.value[oscOffset] + c.osc.Value(t, c.value[oscPhase])*c.value[oscValue]
}

// Slope 返回 Value 对进度的导数。
func (c *CycleOscillator) Slope(t float64) float64 {
	if c.value == nil {
		return 0
	}
	if c.curve != nil {
		c.curve.Slope(t, c.slope)
		c.curve.Pos(t, c.value)
	}
	wave := c.osc.Value(t, c.value[oscPhase])
	waveSlope := c.osc.Slope(t, c.value[oscPhase], c.slope[oscPhase])
	return c.slope[oscOffset] + wave*c.slope[oscValue] + waveSlope*c.value[oscValue]
}

// SetProperty 把 t 处的值写入视图。
func (c *CycleOscillator) SetProperty(v binding.View, t float64) {
	v.SetProperty(c.Property, c.Value(t))
}
