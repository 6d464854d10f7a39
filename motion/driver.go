package motion

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/ByLCY/constraintkit/motion/stop"
)

// Driver 推进过渡进度。默认由补间驱动，Fling 或 Spring 之后改由停止逻辑驱动。
// 没有全局调度：调用方每帧调用 Update。
type Driver struct {
	tween    *gween.Tween
	logic    stop.Logic
	elapsed  float64
	progress float64
	done     bool
}

// NewDriver 在 duration 秒内把进度从 from 补间到 to，fn 为空时匀速。
func NewDriver(from, to float64, duration float32, fn ease.TweenFunc) *Driver {
	if fn == nil {
		fn = ease.Linear
	}
	return &Driver{tween: gween.New(float32(from), float32(to), duration, fn), progress: from}
}

// Fling 从当前进度以 r.Velocity 出发，按速度斜坡停在 r.Destination。
func (d *Driver) Fling(r stop.Ramp) {
	r.Position = d.progress
	d.logic.Config(r)
	d.elapsed, d.done = 0, false
}

// Spring 从当前进度用弹簧回到 s.Destination。
func (d *Driver) Spring(s stop.Spring) {
	s.Position = d.progress
	d.logic.SpringConfig(s)
	d.elapsed, d.done = 0, false
}

// Update 推进 dt 秒，返回新的进度以及是否已经结束。
func (d *Driver) Update(dt float32) (float64, bool) {
	if d.done {
		return d.progress, true
	}
	if d.logic.Mode() != stop.Unconfigured {
		d.elapsed += float64(dt)
		d.progress = d.logic.Interpolation(d.elapsed)
		d.done = d.logic.IsStopped()
		return d.progress, d.done
	}
	p, finished := d.tween.Update(dt)
	d.progress, d.done = float64(p), finished
	return d.progress, d.done
}

// Progress 返回最近一次 Update 的进度。
func (d *Driver) Progress() float64 { return d.progress }

// Done 表示进度已经停止。
func (d *Driver) Done() bool { return d.done }

// Velocity 返回停止逻辑的当前速度，补间模式下为 0。
func (d *Driver) Velocity() float64 { return d.logic.LastVelocity() }

// Mode 返回当前驱动方式，补间时为 stop.Unconfigured。
func (d *Driver) Mode() stop.Mode { return d.logic.Mode() }
