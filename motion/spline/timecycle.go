package spline

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/motion/curvefit"
)

const (
	cycleValue = iota
	cyclePeriod
	cycleOffset
)

// TimeCycleSet 是按真实时间振荡的属性：振幅、每秒周期数与偏移随进度插值，
// 相位随时间推进并保存在 KeyCache 中，进度停止时振荡仍可继续。
type TimeCycleSet struct {
	Property binding.Property
	Logger   *log.Logger
	Shape    WaveShape
	custom   curvefit.CurveFit

	curve     curvefit.CurveFit
	positions []int
	values    [][3]float64
	cache     []float64

	lastTime  int64
	hasTime   bool
	lastCycle float64
	cont      bool
}

func NewTimeCycle(p binding.Property) *TimeCycleSet {
	return &TimeCycleSet{Property: p, lastCycle: math.NaN(), cache: make([]float64, 3)}
}

// SetCustomWave 设置 WaveCustom 使用的波形。
func (s *TimeCycleSet) SetCustomWave(desc string) error {
	c, err := curvefit.ParseWave(desc)
	if err != nil {
		return err
	}
	s.custom = c
	return nil
}

// SetPoint 记录 position 处的振幅、周期、波形与偏移。波形取所有关键帧中的最大值。
func (s *TimeCycleSet) SetPoint(position int, value, period float64, shape WaveShape, offset float64) {
	s.positions = append(s.positions, position)
	s.values = append(s.values, [3]float64{value, period, offset})
	if shape > s.Shape {
		s.Shape = shape
	}
}

// Setup 构造 [振幅, 周期, 偏移] 三维曲线。
func (s *TimeCycleSet) Setup(typ curvefit.Type) {
	if len(s.positions) == 0 {
		logger := s.Logger
		if logger == nil {
			logger = log.Default()
		}
		logger.Warn("no keyframes added", "property", s.Property)
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
		v := s.values[i]
		time = append(time, float64(pos)*timeScale)
		values = append(values, []float64{v[cycleValue], v[cyclePeriod], v[cycleOffset]})
	}
	s.curve = curvefit.Get(typ, time, values)
}

// Get 返回进度 t、时间 nanoTime（纳秒）处的值，以及是否需要下一帧。
// widget 与 cache 用于在多次调用之间保存相位。
func (s *TimeCycleSet) Get(t float64, nanoTime int64, widget string, cache *KeyCache) (float64, bool) {
	if s.curve == nil {
		return s.Property.Default(), false
	}
	s.curve.Pos(t, s.cache)
	period := s.cache[cyclePeriod]
	if period == 0 {
		s.cont = false
		return s.cache[cycleOffset], false
	}
	if math.IsNaN(s.lastCycle) {
		s.lastCycle = cache.FloatValue(widget, s.Property.String(), 0)
		if math.IsNaN(s.lastCycle) {
			s.lastCycle = 0
		}
	}
	var dt int64
	if s.hasTime {
		dt = nanoTime - s.lastTime
	}
	s.lastCycle = math.Mod(s.lastCycle+float64(dt)*1e-9*period, 1)
	cache.SetFloatValue(widget, s.Property.String(), 0, s.lastCycle)
	s.lastTime, s.hasTime = nanoTime, true

	v := s.cache[cycleValue]
	wave := Wave(s.Shape, s.lastCycle, s.custom)
	s.cont = v != 0 || period != 0
	return v*wave + s.cache[cycleOffset], s.cont
}

// SetProperty 把 Get 的结果写入视图并返回是否需要下一帧。
func (s *TimeCycleSet) SetProperty(v binding.View, t float64, nanoTime int64, widget string, cache *KeyCache) bool {
	value, cont := s.Get(t, nanoTime, widget, cache)
	v.SetProperty(s.Property, value)
	return cont
}

// Phase 返回当前相位（以周期为单位），尚未求值时为 NaN。
func (s *TimeCycleSet) Phase() float64 { return s.lastCycle }
