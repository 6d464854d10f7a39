package spline

import (
	"sort"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/motion/curvefit"
)

// Interpolatable 是可以插值的自定义属性值。binding.CustomAttribute 实现了它。
type Interpolatable interface {
	NumberOfInterpolatedValues() int
	ValuesToInterpolate(out []float64)
	ApplyInterpolatedValue(v binding.View, values []float64)
}

type customPoint struct {
	position int
	value    Interpolatable
}

// CustomSet 是多维自定义属性的关键帧集合，例如颜色的四个线性分量。
type CustomSet struct {
	Set
	Name string

	points []customPoint
	temp   []float64
}

// NewCustom 创建自定义属性 name 的关键帧集合。
func NewCustom(name string) *CustomSet {
	return &CustomSet{Set: Set{Property: binding.Custom(name)}, Name: name}
}

// SetPoint 不适用于自定义属性，调用即为编程错误。
func (c *CustomSet) SetPoint(int, float64) {
	panic("spline: SetPoint on custom attribute " + c.Name + ", use SetCustomPoint")
}

// SetCustomPoint 记录 position 处的属性值，同一位置的旧值被替换。
func (c *CustomSet) SetCustomPoint(position int, value Interpolatable) {
	i := sort.Search(len(c.points), func(i int) bool { return c.points[i].position >= position })
	if i < len(c.points) && c.points[i].position == position {
		c.points[i].value = value
		return
	}
	c.points = append(c.points, customPoint{})
	copy(c.points[i+1:], c.points[i:])
	c.points[i] = customPoint{position: position, value: value}
}

// Len 返回关键帧数。
func (c *CustomSet) Len() int { return len(c.points) }

// Setup 用各关键帧的插值分量构造曲线。
func (c *CustomSet) Setup(typ curvefit.Type) {
	if len(c.points) == 0 {
		c.logger().Warn("no keyframes added", "attribute", c.Name)
		c.curve = nil
		return
	}
	dim := c.points[0].value.NumberOfInterpolatedValues()
	c.temp = make([]float64, dim)
	time := make([]float64, len(c.points))
	values := make([][]float64, len(c.points))
	for i, p := range c.points {
		time[i] = float64(p.position) * timeScale
		values[i] = make([]float64, dim)
		p.value.ValuesToInterpolate(values[i])
	}
	c.curve = curvefit.Get(typ, time, values)
}

// Values 把 t 处的插值分量写入 out。
func (c *CustomSet) Values(t float64, out []float64) {
	if c.curve == nil {
		return
	}
	c.curve.Pos(t, out)
}

// SetProperty 把 t 处的插值结果写入视图。
func (c *CustomSet) SetProperty(v binding.View, t float64) {
	if c.curve == nil {
		return
	}
	c.curve.Pos(t, c.temp)
	c.points[0].value.ApplyInterpolatedValue(v, c.temp)
}
