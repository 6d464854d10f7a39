package stop

import (
	"fmt"
	"math"
	"strings"
)

const epsilon = 1e-5

// Ramp 描述一次减速停止：从 Position 以 Velocity 出发到达 Destination，
// 加速度不超过 MaxAcceleration，速度不超过 MaxVelocity，
// 匀速滑行加刹车能在 MaxTime 内完成时就不再加速。
type Ramp struct {
	Position        float64
	Destination     float64
	Velocity        float64
	MaxTime         float64
	MaxAcceleration float64
	MaxVelocity     float64
}

// LogicEngine 用至多三段线性速度曲线到达目标，速度全程连续。
// 各段起点速度分别为 v1、v2、v3，每段内速度线性变化到下一段起点速度，
// 最后一段降到 0。
type LogicEngine struct {
	v1, v2, v3 float64
	d1, d2, d3 float64
	e1, e2, e3 float64
	stages     int
	profile    string

	backwards bool
	start     float64
	lastTime  float64
	lastY     float64
}

// NewLogicEngine 返回按 r 配置好的引擎。
func NewLogicEngine(r Ramp) *LogicEngine {
	e := &LogicEngine{}
	e.Configure(r)
	return e
}

// Configure 重新规划速度曲线。
func (e *LogicEngine) Configure(r Ramp) {
	*e = LogicEngine{start: r.Position}
	e.backwards = r.Position > r.Destination
	if e.backwards {
		e.setup(-r.Velocity, r.Position-r.Destination, r.MaxAcceleration, r.MaxVelocity, r.MaxTime)
	} else {
		e.setup(r.Velocity, r.Destination-r.Position, r.MaxAcceleration, r.MaxVelocity, r.MaxTime)
	}
}

func (e *LogicEngine) setup(velocity, distance, maxAcc, maxVel, maxTime float64) {
	e.e3 = distance
	if velocity == 0 {
		velocity = 0.0001
	}
	timeToStop := velocity / maxAcc
	stopDistance := timeToStop * velocity / 2

	if velocity < 0 {
		// 先反向减速到 0，再按正向规划。
		back := -velocity / maxAcc * velocity / 2
		peak := math.Sqrt(maxAcc * (distance - back))
		if peak < maxVel {
			e.profile = "backward accelerate decelerate"
			e.twoStage(velocity, peak, maxAcc, distance)
			return
		}
		e.profile = "backward accelerate cruise decelerate"
		e.threeStage(velocity, maxAcc, maxVel, distance)
		return
	}

	if stopDistance >= distance {
		// 来不及刹车，强制在 distance 处停下。
		e.profile = "hard stop"
		e.stages = 1
		e.v1, e.v2 = velocity, 0
		e.e1 = distance
		e.d1 = 2 * distance / velocity
		return
	}

	beforeBrake := distance - stopDistance
	cruise := beforeBrake / velocity
	if cruise+timeToStop < maxTime {
		e.profile = "cruise decelerate"
		e.stages = 2
		e.v1, e.v2, e.v3 = velocity, velocity, 0
		e.e1, e.e2 = beforeBrake, distance
		e.d1 = cruise
		e.d2 = velocity / maxAcc
		return
	}

	peak := math.Sqrt(maxAcc*distance + velocity*velocity/2)
	if peak < maxVel {
		e.profile = "accelerate decelerate"
		e.twoStage(velocity, peak, maxAcc, distance)
		return
	}
	e.profile = "accelerate cruise decelerate"
	e.threeStage(velocity, maxAcc, maxVel, distance)
}

func (e *LogicEngine) twoStage(velocity, peak, maxAcc, distance float64) {
	e.stages = 2
	e.v1, e.v2, e.v3 = velocity, peak, 0
	e.d1 = (peak - velocity) / maxAcc
	e.d2 = peak / maxAcc
	e.e1 = (velocity + peak) * e.d1 / 2
	e.e2 = distance
	e.e3 = distance
}

func (e *LogicEngine) threeStage(velocity, maxAcc, maxVel, distance float64) {
	e.stages = 3
	e.v1, e.v2, e.v3 = velocity, maxVel, maxVel
	e.d1 = (maxVel - velocity) / maxAcc
	e.d3 = maxVel / maxAcc
	acc := (velocity + maxVel) * e.d1 / 2
	dec := maxVel * e.d3 / 2
	e.d2 = (distance - acc - dec) / maxVel
	e.e1 = acc
	e.e2 = distance - dec
	e.e3 = distance
}

// travelled 是 t 时离起点的距离。
func (e *LogicEngine) travelled(t float64) float64 {
	if t <= e.d1 {
		return e.v1*t + (e.v2-e.v1)*t*t/(2*e.d1)
	}
	if e.stages == 1 {
		return e.e1
	}
	t -= e.d1
	if t < e.d2 {
		return e.e1 + e.v2*t + (e.v3-e.v2)*t*t/(2*e.d2)
	}
	if e.stages == 2 {
		return e.e2
	}
	t -= e.d2
	if t <= e.d3 {
		return e.e2 + e.v3*t - e.v3*t*t/(2*e.d3)
	}
	return e.e3
}

// speed 是 t 时沿行进方向的速度，结束后为 0。
func (e *LogicEngine) speed(t float64) float64 {
	if t <= e.d1 {
		return e.v1 + (e.v2-e.v1)*t/e.d1
	}
	if e.stages == 1 {
		return 0
	}
	t -= e.d1
	if t < e.d2 {
		return e.v2 + (e.v3-e.v2)*t/e.d2
	}
	if e.stages == 2 {
		return 0
	}
	t -= e.d2
	if t < e.d3 {
		return e.v3 - e.v3*t/e.d3
	}
	return 0
}

func (e *LogicEngine) Interpolation(t float64) float64 {
	y := e.travelled(t)
	e.lastTime, e.lastY = t, y
	if e.backwards {
		return e.start - y
	}
	return e.start + y
}

func (e *LogicEngine) Velocity(t float64) float64 {
	if e.backwards {
		return -e.speed(t)
	}
	return e.speed(t)
}

func (e *LogicEngine) LastVelocity() float64 { return e.Velocity(e.lastTime) }

// IsStopped 表示最近一次求值时已经到达终点且速度为 0。
func (e *LogicEngine) IsStopped() bool {
	return math.Abs(e.speed(e.lastTime)) < epsilon && math.Abs(e.e3-e.lastY) < epsilon
}

// Profile 返回规划出的曲线类型，例如 "cruise decelerate"。
func (e *LogicEngine) Profile() string { return e.profile }

// Duration 返回到达终点所需的总时间。
func (e *LogicEngine) Duration() float64 {
	switch e.stages {
	case 1:
		return e.d1
	case 2:
		return e.d1 + e.d2
	}
	return e.d1 + e.d2 + e.d3
}

func (e *LogicEngine) Debug(desc string, t float64) string {
	var b strings.Builder
	dir := "forward"
	if e.backwards {
		dir = "backward"
	}
	fmt.Fprintf(&b, "%s ===== %s\n", desc, e.profile)
	fmt.Fprintf(&b, "%s %s time = %g stages %d\n", desc, dir, t, e.stages)
	stages := [3][3]float64{{e.d1, e.v1, e.e1}, {e.d2, e.v2, e.e2}, {e.d3, e.v3, e.e3}}
	for i := 0; i < e.stages; i++ {
		fmt.Fprintf(&b, "%s dur %g vel %g pos %g\n", desc, stages[i][0], stages[i][1], stages[i][2])
	}
	for i := 0; i < e.stages; i++ {
		if t <= stages[i][0] {
			fmt.Fprintf(&b, "%s stage %d\n", desc, i)
			return b.String()
		}
		t -= stages[i][0]
	}
	fmt.Fprintf(&b, "%s end stage %d\n", desc, e.stages-1)
	return b.String()
}
