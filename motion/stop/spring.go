package stop

import (
	"fmt"
	"math"
)

// Spring 描述一次弹簧停止：质量 Mass、刚度 Stiffness、阻尼 Damping，
// 振幅能量对应的最大偏移不超过 StopThreshold 时视为停止。
type Spring struct {
	Position      float64
	Destination   float64
	Velocity      float64
	Mass          float64
	Stiffness     float64
	Damping       float64
	StopThreshold float64
	Boundary      BoundaryMode
}

// SpringEngine 对 a = (-k·x - c·v)/m 做过采样的中点积分。
type SpringEngine struct {
	cfg      Spring
	pos      float64
	v        float64
	lastTime float64
}

// NewSpringEngine 返回按 s 配置好的引擎。
func NewSpringEngine(s Spring) *SpringEngine {
	e := &SpringEngine{}
	e.Configure(s)
	return e
}

// Configure 重置弹簧状态，时间从 0 重新开始。
func (e *SpringEngine) Configure(s Spring) {
	if s.Mass <= 0 {
		s.Mass = 1
	}
	e.cfg = s
	e.pos = s.Position
	e.v = s.Velocity
	e.lastTime = 0
}

// Interpolation 把状态推进到时间 t 并返回位置。t 不能后退，后退时状态不变。
// 停止之后位置直接落在目标上。
func (e *SpringEngine) Interpolation(t float64) float64 {
	e.step(t - e.lastTime)
	e.lastTime = t
	if e.IsStopped() {
		e.pos = e.cfg.Destination
	}
	return e.pos
}

// Velocity 返回当前速度，t 只用于满足 Engine。
func (e *SpringEngine) Velocity(float64) float64 { return e.v }

func (e *SpringEngine) LastVelocity() float64 { return e.v }

// Acceleration 返回当前加速度。
func (e *SpringEngine) Acceleration() float64 {
	x := e.pos - e.cfg.Destination
	return (-e.cfg.Stiffness*x - e.cfg.Damping*e.v) / e.cfg.Mass
}

// IsStopped 比较剩余能量对应的最大偏移与阈值。
func (e *SpringEngine) IsStopped() bool {
	k := e.cfg.Stiffness
	if k <= 0 {
		return math.Abs(e.v) <= e.cfg.StopThreshold
	}
	x := e.pos - e.cfg.Destination
	energy := e.v*e.v*e.cfg.Mass + k*x*x
	return math.Sqrt(energy/k) <= e.cfg.StopThreshold
}

func (e *SpringEngine) Debug(desc string, t float64) string {
	return fmt.Sprintf("%s spring %s time = %g pos %g vel %g target %g\n",
		desc, e.cfg.Boundary, t, e.pos, e.v, e.cfg.Destination)
}

func (e *SpringEngine) step(dt float64) {
	if dt <= 0 {
		return
	}
	k, c, m := e.cfg.Stiffness, e.cfg.Damping, e.cfg.Mass
	target := e.cfg.Destination
	// 按固有频率与帧间隔估计过采样次数。
	over := 1
	if omega := math.Sqrt(k / m); omega > 0 {
		over = int(1 + 9/(omega*dt*4))
	}
	dt /= float64(over)

	for range over {
		x := e.pos - target
		a := (-k*x - c*e.v) / m
		avgV := e.v + a*dt/2
		avgX := e.pos + dt*avgV/2 - target
		a = (-avgX*k - avgV*c) / m

		dv := a * dt
		avgV = e.v + dv/2
		e.v += dv
		e.pos += avgV * dt

		if e.cfg.Boundary.bounceStart() && e.pos < 0 {
			e.pos, e.v = -e.pos, -e.v
		}
		if e.cfg.Boundary.bounceEnd() && e.pos > 1 {
			e.pos, e.v = 2-e.pos, -e.v
		}
	}
}
