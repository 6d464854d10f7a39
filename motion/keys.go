// Package motion 在两个求解后的布局之间插值：每个控件一个 Controller，
// 按进度写出矩形、属性、自定义属性以及振荡值。
package motion

import (
	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/layout"
	"github.com/ByLCY/constraintkit/motion/spline"
	"github.com/ByLCY/constraintkit/state"
)

// Endpoint 是过渡一端的控件状态。
type Endpoint struct {
	Frame      layout.WidgetFrame
	Properties map[binding.Property]float64
	Custom     []binding.CustomAttribute
}

// EndpointOf 取出 res 中控件 name 的矩形，以及 s 里为它记录的属性。
func EndpointOf(res *layout.Result, s *state.State, name string) (Endpoint, bool) {
	f, ok := res.Frame(name)
	if !ok {
		return Endpoint{}, false
	}
	ep := Endpoint{Frame: f, Properties: make(map[binding.Property]float64)}
	if s == nil {
		return ep, true
	}
	if ref := s.Reference(name); ref != nil {
		for _, p := range ref.Properties() {
			ep.Properties[p], _ = ref.PropertyValue(p)
		}
		ep.Custom = ref.CustomAttributes()
	}
	return ep, true
}

func (e Endpoint) custom(name string) (binding.CustomAttribute, bool) {
	for _, c := range e.Custom {
		if c.Name == name {
			return c, true
		}
	}
	return binding.CustomAttribute{}, false
}

// KeyAttribute 在 Position（0 到 100）处固定一个属性值。
type KeyAttribute struct {
	Position int
	Property binding.Property
	Value    float64
}

// KeyCustom 在 Position 处固定一个自定义属性值。
type KeyCustom struct {
	Position  int
	Attribute binding.CustomAttribute
}

// KeyPosition 让控件中心在 Position 处位于起点到终点连线的
// (PercentX, PercentY) 比例位置。
type KeyPosition struct {
	Position int
	PercentX float64
	PercentY float64
}

// KeyCycle 是按进度振荡的关键帧，Period 为整个过渡内的周期数。
type KeyCycle struct {
	Position   int
	Property   binding.Property
	Shape      spline.WaveShape
	CustomWave string
	Period     float64
	Offset     float64
	Phase      float64
	Value      float64
}

// KeyTimeCycle 是按时间振荡的关键帧，Period 为每秒周期数。
type KeyTimeCycle struct {
	Position   int
	Property   binding.Property
	Shape      spline.WaveShape
	CustomWave string
	Period     float64
	Offset     float64
	Value      float64
}
