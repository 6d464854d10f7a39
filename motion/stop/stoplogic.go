package stop

import "fmt"

// Mode 是 Logic 当前使用的引擎。
type Mode int

const (
	Unconfigured Mode = iota
	ModeRamp
	ModeSpring
)

func (m Mode) String() string {
	switch m {
	case Unconfigured:
		return "unconfigured"
	case ModeRamp:
		return "ramp"
	case ModeSpring:
		return "spring"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Logic 在速度斜坡与弹簧之间切换，同一时刻只有一个引擎生效。
// 零值为未配置状态：进度原样返回，且总是视为已停止。
type Logic struct {
	mode   Mode
	ramp   LogicEngine
	spring SpringEngine
}

// Config 切换到速度斜坡引擎。
func (l *Logic) Config(r Ramp) {
	l.ramp.Configure(r)
	l.mode = ModeRamp
}

// SpringConfig 切换到弹簧引擎。
func (l *Logic) SpringConfig(s Spring) {
	l.spring.Configure(s)
	l.mode = ModeSpring
}

// Mode 返回当前模式。
func (l *Logic) Mode() Mode { return l.mode }

// Engine 返回当前引擎，未配置时为 nil。
func (l *Logic) Engine() Engine {
	switch l.mode {
	case ModeRamp:
		return &l.ramp
	case ModeSpring:
		return &l.spring
	}
	return nil
}

func (l *Logic) Interpolation(t float64) float64 {
	if e := l.Engine(); e != nil {
		return e.Interpolation(t)
	}
	return t
}

func (l *Logic) Velocity(t float64) float64 {
	if e := l.Engine(); e != nil {
		return e.Velocity(t)
	}
	return 0
}

func (l *Logic) LastVelocity() float64 {
	if e := l.Engine(); e != nil {
		return e.LastVelocity()
	}
	return 0
}

func (l *Logic) IsStopped() bool {
	if e := l.Engine(); e != nil {
		return e.IsStopped()
	}
	return true
}

func (l *Logic) Debug(desc string, t float64) string {
	if e := l.Engine(); e != nil {
		return e.Debug(desc, t)
	}
	return desc + " unconfigured\n"
}

var (
	_ Engine = (*LogicEngine)(nil)
	_ Engine = (*SpringEngine)(nil)
	_ Engine = (*Logic)(nil)
)
