// Package curvefit 提供关键帧插值曲线：单调三次样条、分段线性、常量以及
// 椭圆弧路径，另有 Easing 曲线。所有计算使用 float64。
package curvefit

import "fmt"

// Type 选择 Get 返回的曲线。
type Type int

const (
	Spline   Type = iota // 单调三次 Hermite
	Linear               // 分段线性
	Constant             // 常量
)

func (t Type) String() string {
	switch t {
	case Linear:
		return "linear"
	case Constant:
		return "constant"
	default:
		return "spline"
	}
}

// ParseType 解析 spline / linear / constant。
func ParseType(s string) (Type, error) {
	switch s {
	case "spline", "":
		return Spline, nil
	case "linear":
		return Linear, nil
	case "constant":
		return Constant, nil
	}
	return Spline, fmt.Errorf("unknown curve type %q", s)
}

// CurveFit 是一条多维曲线，values[i] 是 time[i] 处的取值向量。
// 超出首尾时间时按端点斜率外推。
type CurveFit interface {
	Pos(t float64, out []float64)
	PosAt(t float64, j int) float64
	Slope(t float64, out []float64)
	SlopeAt(t float64, j int) float64
	TimePoints() []float64
}

// Get 按类型构造曲线。只有一个关键帧时总是返回常量曲线，没有关键帧时返回空的常量曲线。
// time 必须严格递增，values 的每一行维度相同。
func Get(typ Type, time []float64, values [][]float64) CurveFit {
	if len(time) == 0 {
		return NewConstant(0, nil)
	}
	if len(time) == 1 {
		typ = Constant
	}
	switch typ {
	case Spline:
		return NewMonotonic(time, values)
	case Constant:
		return NewConstant(time[0], values[0])
	default:
		return NewLinear(time, values)
	}
}

// GetArc 构造二维弧线路径，modes[i] 决定第 i 段的弧形，见 ArcMode。
func GetArc(modes []ArcMode, time []float64, values [][]float64) CurveFit {
	return NewArc(modes, time, values)
}

// atLeastTwo 把单个关键帧扩成相隔 1 的两个等值关键帧，分段插值至少需要一个区间。
// 没有关键帧属于调用错误。
func atLeastTwo(kind string, time []float64, values [][]float64) ([]float64, [][]float64) {
	switch len(time) {
	case 0:
		panic("curvefit: " + kind + " curve needs at least one keyframe")
	case 1:
		return []float64{time[0], time[0] + 1}, [][]float64{values[0], values[0]}
	}
	return time, values
}

// segment 返回 t 所在区间的下标 i（time[i] <= t <= time[i+1]）。
func segment(time []float64, t float64) int {
	n := len(time)
	for i := 0; i < n-2; i++ {
		if t < time[i+1] {
			return i
		}
	}
	return n - 2
}
