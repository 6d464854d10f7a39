package curvefit

import (
	"fmt"
	"math"
	"sort"
)

// ArcMode 描述一段弧线路径的起始方向。
type ArcMode int

const (
	ArcStartLinear     ArcMode = 0 // 直线
	ArcStartVertical   ArcMode = 1 // 先竖直
	ArcStartHorizontal ArcMode = 2 // 先水平
	ArcStartFlip       ArcMode = 3 // 与上一段相反
	ArcBelow           ArcMode = 4 // 弧线在连线下方
	ArcAbove           ArcMode = 5 // 弧线在连线上方
)

var arcModeNames = map[string]ArcMode{
	"none":            ArcStartLinear,
	"startVertical":   ArcStartVertical,
	"startHorizontal": ArcStartHorizontal,
	"flip":            ArcStartFlip,
	"below":           ArcBelow,
	"above":           ArcAbove,
}

// ParseArcMode 解析弧线模式名，例如 "startVertical"。空字符串为直线。
func ParseArcMode(s string) (ArcMode, error) {
	if s == "" {
		return ArcStartLinear, nil
	}
	if m, ok := arcModeNames[s]; ok {
		return m, nil
	}
	return ArcStartLinear, fmt.Errorf("unknown arc mode %q", s)
}

type arcShape int

const (
	shapeVertical arcShape = iota + 1
	shapeHorizontal
	shapeLinear
	shapeDown
	shapeUp
)

const (
	arcEpsilon     = 0.001
	arcPercentSize = 91
	arcLUTSize     = 101
)

// ArcCurve 由若干四分之一椭圆弧拼成的二维路径，弧上按弧长匀速运动。
type ArcCurve struct {
	time []float64
	arcs []*arc
}

func NewArc(modes []ArcMode, time []float64, values [][]float64) *ArcCurve {
	c := &ArcCurve{time: time, arcs: make([]*arc, len(time)-1)}
	shape, last := shapeVertical, shapeVertical
	for i := range c.arcs {
		var m ArcMode
		if i < len(modes) {
			m = modes[i]
		}
		switch m {
		case ArcStartVertical:
			shape, last = shapeVertical, shapeVertical
		case ArcStartHorizontal:
			shape, last = shapeHorizontal, shapeHorizontal
		case ArcStartFlip:
			if last == shapeVertical {
				shape = shapeHorizontal
			} else {
				shape = shapeVertical
			}
			last = shape
		case ArcStartLinear:
			shape = shapeLinear
		case ArcAbove:
			shape = shapeUp
		case ArcBelow:
			shape = shapeDown
		}
		c.arcs[i] = newArc(shape, time[i], time[i+1], values[i][0], values[i][1], values[i+1][0], values[i+1][1])
	}
	return c
}

func (c *ArcCurve) Pos(t float64, out []float64) {
	out[0], out[1] = c.pos(t)
}

func (c *ArcCurve) PosAt(t float64, j int) float64 {
	x, y := c.pos(t)
	if j == 0 {
		return x
	}
	return y
}

func (c *ArcCurve) Slope(t float64, out []float64) {
	out[0], out[1] = c.slope(t)
}

func (c *ArcCurve) SlopeAt(t float64, j int) float64 {
	dx, dy := c.slope(t)
	if j == 0 {
		return dx
	}
	return dy
}

func (c *ArcCurve) TimePoints() []float64 { return c.time }

func (c *ArcCurve) pos(t float64) (float64, float64) {
	first, last := c.arcs[0], c.arcs[len(c.arcs)-1]
	switch {
	case t < first.time1:
		return first.extrapolate(first.time1, t-first.time1)
	case t > last.time2:
		return last.extrapolate(last.time2, t-last.time2)
	}
	for _, a := range c.arcs {
		if t <= a.time2 {
			if a.linear {
				return a.linearX(t), a.linearY(t)
			}
			a.setPoint(t)
			return a.x(), a.y()
		}
	}
	return last.linearX(t), last.linearY(t)
}

func (c *ArcCurve) slope(t float64) (float64, float64) {
	first, last := c.arcs[0], c.arcs[len(c.arcs)-1]
	t = math.Max(first.time1, math.Min(t, last.time2))
	for _, a := range c.arcs {
		if t <= a.time2 {
			if a.linear {
				return a.centerX, a.centerY
			}
			a.setPoint(t)
			return a.dx(), a.dy()
		}
	}
	return 0, 0
}

// arc 是一段四分之一椭圆弧。直线段复用 centerX/centerY 保存速度。
type arc struct {
	lut                []float64
	arcDistance        float64
	time1, time2       float64
	x1, x2, y1, y2     float64
	oneOverDeltaTime   float64
	ellipseA, ellipseB float64
	centerX, centerY   float64
	arcVelocity        float64
	sin, cos           float64
	vertical           bool
	linear             bool
}

func newArc(shape arcShape, t1, t2, x1, y1, x2, y2 float64) *arc {
	dx, dy := x2-x1, y2-y1
	a := &arc{time1: t1, time2: t2, oneOverDeltaTime: 1 / (t2 - t1)}
	switch shape {
	case shapeVertical:
		a.vertical = true
	case shapeUp:
		a.vertical = dy < 0
	case shapeDown:
		a.vertical = dy > 0
	}
	if shape == shapeLinear || math.Abs(dx) < arcEpsilon || math.Abs(dy) < arcEpsilon {
		a.linear = true
		a.x1, a.x2, a.y1, a.y2 = x1, x2, y1, y2
		a.arcDistance = math.Hypot(dy, dx)
		a.arcVelocity = a.arcDistance * a.oneOverDeltaTime
		a.centerX = dx / (t2 - t1)
		a.centerY = dy / (t2 - t1)
		return a
	}
	if a.vertical {
		a.ellipseA, a.ellipseB = -dx, dy
		a.centerX, a.centerY = x2, y1
	} else {
		a.ellipseA, a.ellipseB = dx, -dy
		a.centerX, a.centerY = x1, y2
	}
	a.buildTable(x1, y1, x2, y2)
	a.arcVelocity = a.arcDistance * a.oneOverDeltaTime
	return a
}

func (a *arc) extrapolate(t0, dt float64) (float64, float64) {
	if a.linear {
		return a.linearX(t0) + dt*a.centerX, a.linearY(t0) + dt*a.centerY
	}
	a.setPoint(t0)
	return a.x() + dt*a.dx(), a.y() + dt*a.dy()
}

func (a *arc) setPoint(time float64) {
	var percent float64
	if a.vertical {
		percent = (a.time2 - time) * a.oneOverDeltaTime
	} else {
		percent = (time - a.time1) * a.oneOverDeltaTime
	}
	angle := math.Pi * 0.5 * a.lookup(percent)
	a.sin, a.cos = math.Sincos(angle)
}

func (a *arc) x() float64 { return a.centerX + a.ellipseA*a.sin }
func (a *arc) y() float64 { return a.centerY + a.ellipseB*a.cos }

func (a *arc) velocity() (vx, vy, norm float64) {
	vx = a.ellipseA * a.cos
	vy = -a.ellipseB * a.sin
	norm = a.arcVelocity / math.Hypot(vx, vy)
	return vx, vy, norm
}

func (a *arc) dx() float64 {
	vx, _, norm := a.velocity()
	if a.vertical {
		return -vx * norm
	}
	return vx * norm
}

func (a *arc) dy() float64 {
	_, vy, norm := a.velocity()
	if a.vertical {
		return -vy * norm
	}
	return vy * norm
}

func (a *arc) linearX(t float64) float64 {
	t = (t - a.time1) * a.oneOverDeltaTime
	return a.x1 + t*(a.x2-a.x1)
}

func (a *arc) linearY(t float64) float64 {
	t = (t - a.time1) * a.oneOverDeltaTime
	return a.y1 + t*(a.y2-a.y1)
}

// lookup 把时间比例映射为角度比例，使弧长随时间线性增长。
func (a *arc) lookup(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	pos := v * float64(len(a.lut)-1)
	iv := int(pos)
	off := pos - float64(iv)
	return a.lut[iv] + off*(a.lut[iv+1]-a.lut[iv])
}

// buildTable 用 90 段折线近似椭圆弧长，再反查得到等弧长的角度表。
func (a *arc) buildTable(x1, y1, x2, y2 float64) {
	ea, eb := x2-x1, y1-y2
	percent := make([]float64, arcPercentSize)
	var lx, ly, dist float64
	for i := range percent {
		angle := (math.Pi / 2) * float64(i) / float64(arcPercentSize-1)
		s, c := math.Sincos(angle)
		px, py := ea*s, eb*c
		if i > 0 {
			dist += math.Hypot(px-lx, py-ly)
			percent[i] = dist
		}
		lx, ly = px, py
	}
	a.arcDistance = dist
	for i := range percent {
		percent[i] /= dist
	}

	a.lut = make([]float64, arcLUTSize)
	for i := range a.lut {
		pos := float64(i) / float64(arcLUTSize-1)
		idx := sort.SearchFloat64s(percent, pos)
		switch {
		case idx < len(percent) && percent[idx] == pos:
			a.lut[i] = float64(idx) / float64(arcPercentSize-1)
		case idx == 0:
			a.lut[i] = 0
		case idx >= len(percent):
			a.lut[i] = 1
		default:
			p1, p2 := idx-1, idx
			frac := (pos - percent[p1]) / (percent[p2] - percent[p1])
			a.lut[i] = (float64(p1) + frac) / float64(arcPercentSize-1)
		}
	}
}
