package spline

import (
	"sort"

	"github.com/ByLCY/constraintkit/motion/curvefit"
)

// Oscillator 是周期随进度变化的波形。各位置的周期按梯形面积积分得到相位，
// Normalize 之后把周期整体缩放，使 [0,1] 内的周期总数等于各点周期的平均值。
type Oscillator struct {
	Shape  WaveShape
	custom curvefit.CurveFit

	position   []float64
	period     []float64
	area       []float64
	normalized bool
}

// NewOscillator 创建振荡器。shape 为 WaveCustom 时 custom 是 "spline(...)" 描述。
func NewOscillator(shape WaveShape, custom string) (*Oscillator, error) {
	o := &Oscillator{Shape: shape}
	if shape == WaveCustom {
		c, err := curvefit.ParseWave(custom)
		if err != nil {
			return nil, err
		}
		o.custom = c
	}
	return o, nil
}

// AddPoint 在 position（0 到 1）处设置周期数，按位置有序插入。
func (o *Oscillator) AddPoint(position, period float64) {
	j := sort.SearchFloat64s(o.position, position)
	o.position = append(o.position, 0)
	o.period = append(o.period, 0)
	copy(o.position[j+1:], o.position[j:])
	copy(o.period[j+1:], o.period[j:])
	o.position[j] = position
	o.period[j] = period
	o.normalized = false
}

// Normalize 计算相位积分表。
func (o *Oscillator) Normalize() {
	var totalArea, totalCount float64
	for _, p := range o.period {
		totalCount += p
	}
	for i := 1; i < len(o.period); i++ {
		h := (o.period[i-1] + o.period[i]) / 2
		totalArea += (o.position[i] - o.position[i-1]) * h
	}
	if totalArea != 0 {
		scale := totalCount / float64(len(o.period)) / totalArea
		for i := range o.period {
			o.period[i] *= scale
		}
	}
	o.area = make([]float64, len(o.period))
	for i := 1; i < len(o.period); i++ {
		h := (o.period[i-1] + o.period[i]) / 2
		o.area[i] = o.area[i-1] + (o.position[i]-o.position[i-1])*h
	}
	o.normalized = true
}

// segment 返回 time 所在区间的右端下标，time 恰好落在点上时 exact 为 true。
func (o *Oscillator) segment(time float64) (index int, exact bool) {
	index = sort.SearchFloat64s(o.position, time)
	if index < len(o.position) && o.position[index] == time {
		return index, true
	}
	return index, false
}

// phase 是 [0,time] 内累计的周期数。
func (o *Oscillator) phase(time float64) float64 {
	if !o.normalized {
		o.Normalize()
	}
	time = clamp01(time)
	index, exact := o.segment(time)
	switch {
	case exact:
		return o.area[index]
	case index == 0 || index >= len(o.position):
		return 0
	}
	p0, p1 := o.position[index-1], o.position[index]
	m := (o.period[index] - o.period[index-1]) / (p1 - p0)
	return o.area[index-1] + (o.period[index-1]-m*p0)*(time-p0) + m*(time*time-p0*p0)/2
}

// periodAt 是 time 处的周期，即 phase 的导数。
func (o *Oscillator) periodAt(time float64) float64 {
	if !o.normalized {
		o.Normalize()
	}
	time = clamp01(time)
	index, exact := o.segment(time)
	switch {
	case exact:
		return o.period[index]
	case index == 0 || index >= len(o.position):
		return 0
	}
	p0, p1 := o.position[index-1], o.position[index]
	m := (o.period[index] - o.period[index-1]) / (p1 - p0)
	return m*time + (o.period[index-1] - m*p0)
}

// Value 返回 time 处的波形值，phase 以周期为单位叠加在积分相位上。
func (o *Oscillator) Value(time, phase float64) float64 {
	return Wave(o.Shape, phase+o.phase(time), o.custom)
}

// Slope 返回 Value 对 time 的导数，dPhase 是 phase 的导数。
func (o *Oscillator) Slope(time, phase, dPhase float64) float64 {
	return WaveSlope(o.Shape, phase+o.phase(time), o.periodAt(time)+dPhase, o.custom)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
