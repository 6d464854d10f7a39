// Package spline 把关键帧整理成随进度变化的属性曲线：普通样条、自定义属性、
// 按时间循环的振荡以及按进度变化的周期振荡。
package spline

import (
	"github.com/charmbracelet/log"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/motion/curvefit"
)

// timeScale 把关键帧位置（0 到 100）换算为进度。
const timeScale = 1e-2

// Set 是一个属性的关键帧集合。SetPoint 之后必须调用 Setup 才能求值。
type Set struct {
	Property binding.Property
	Logger   *log.Logger

	curve     curvefit.CurveFit
	positions []int
	values    []float64
}

// New 创建属性 p 的关键帧集合。
func New(p binding.Property) *Set {
	return &Set{Property: p}
}

func (s *Set) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// SetPoint 记录 position（0 到 100）处的值。
func (s *Set) SetPoint(position int, value float64) {
	s.positions = append(s.positions, position)
	s.values = append(s.values, value)
}

// Len 返回记录的关键帧数。
func (s *Set) Len() int { return len(s.positions) }

// Setup 排序、去重并构造曲线。同一位置有多个关键帧时保留排序后的第一个。
// 没有关键帧时只记录警告，曲线保持为空。
func (s *Set) Setup(typ curvefit.Type) {
	if len(s.positions) == 0 {
		s.logger().Warn("no keyframes added", "property", s.Property)
		s.curve = nil
		return
	}
	sortParallel(s.positions, func(i, j int) { s.values[i], s.values[j] = s.values[j], s.values[i] })

	var time []float64
	var values [][]float64
	for i, pos := range s.positions {
		if i > 0 && pos == s.positions[i-1] {
			continue
		}
		time = append(time, float64(pos)*timeScale)
		values = append(values, []float64{s.values[i]})
	}
	s.curve = curvefit.Get(typ, time, values)
}

// Curve 返回 Setup 构造的曲线，未构造时为 nil。
func (s *Set) Curve() curvefit.CurveFit { return s.curve }

// Get 返回进度 t 处的值，曲线为空时返回属性默认值。
func (s *Set) Get(t float64) float64 {
	if s.curve == nil {
		return s.Property.Default()
	}
	return s.curve.PosAt(t, 0)
}

// Slope 返回进度 t 处的斜率。
func (s *Set) Slope(t float64) float64 {
	if s.curve == nil {
		return 0
	}
	return s.curve.SlopeAt(t, 0)
}

// SetProperty 把 t 处的值写入视图。
func (s *Set) SetProperty(v binding.View, t float64) {
	v.SetProperty(s.Property, s.Get(t))
}

func (s *Set) String() string {
	return s.Property.String()
}

// sortParallel 对 keys 做非递归快速排序，swap 同步交换其他并行数组。
// 排序不稳定：相同 key 的先后由分区过程决定。
func sortParallel(keys []int, swap func(i, j int)) {
	if len(keys) < 2 {
		return
	}
	exchange := func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
		swap(i, j)
	}
	partition := func(low, hi int) int {
		pivot := keys[hi]
		i := low
		for j := low; j < hi; j++ {
			if keys[j] <= pivot {
				exchange(i, j)
				i++
			}
		}
		exchange(i, hi)
		return i
	}
	stack := []int{len(keys) - 1, 0}
	for len(stack) > 0 {
		low := stack[len(stack)-1]
		hi := stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		if low < hi {
			p := partition(low, hi)
			stack = append(stack, p-1, low, hi, p+1)
		}
	}
}
