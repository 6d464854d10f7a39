// Package stop 计算松手之后进度如何停下来：按速度斜坡减速到目标，
// 或者用阻尼弹簧回弹到目标。
package stop

import "fmt"

// Engine 是一种停止方式。t 是从配置时刻起经过的秒数，
// Interpolation 返回 t 时的进度。
type Engine interface {
	Interpolation(t float64) float64
	Velocity(t float64) float64
	// LastVelocity 是最近一次 Interpolation 时的速度。
	LastVelocity() float64
	IsStopped() bool
	Debug(desc string, t float64) string
}

// BoundaryMode 决定弹簧越过 [0,1] 边界时的行为。
type BoundaryMode int

const (
	Overshoot BoundaryMode = iota
	BounceStart
	BounceEnd
	BounceBoth
)

var boundaryNames = [...]string{
	Overshoot:   "overshoot",
	BounceStart: "bounceStart",
	BounceEnd:   "bounceEnd",
	BounceBoth:  "bounceBoth",
}

func (b BoundaryMode) String() string {
	if b < 0 || int(b) >= len(boundaryNames) {
		return fmt.Sprintf("BoundaryMode(%d)", int(b))
	}
	return boundaryNames[b]
}

// ParseBoundaryMode 解析边界模式名。
func ParseBoundaryMode(s string) (BoundaryMode, error) {
	if s == "" {
		return Overshoot, nil
	}
	for i, n := range boundaryNames {
		if n == s {
			return BoundaryMode(i), nil
		}
	}
	return Overshoot, fmt.Errorf("unknown boundary mode %q", s)
}

func (b BoundaryMode) bounceStart() bool { return b&BounceStart != 0 }
func (b BoundaryMode) bounceEnd() bool   { return b&BounceEnd != 0 }
