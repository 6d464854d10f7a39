package layout

import "github.com/ByLCY/constraintkit/solver"

// Guideline 是相对父容器定位的辅助线。Orientation 为 Vertical 表示竖线，
// 其位置在水平方向上。
type Guideline struct {
	*Widget
	Orientation Axis
	relBegin    float64
	relEnd      float64
	percent     float64
}

// AddGuideline 添加辅助线，默认位于父容器起点。
func (c *Container) AddGuideline(parent *Widget, name string, orientation Axis) *Guideline {
	w := c.newWidget(name, KindGuideline, c.parentOrRoot(parent))
	g := &Guideline{Widget: w, Orientation: orientation, relBegin: 0, relEnd: -1, percent: -1}
	w.guideline = g
	return g
}

// SetBegin 距父容器起点的距离。
func (g *Guideline) SetBegin(v float64) {
	g.relBegin, g.relEnd, g.percent = v, -1, -1
}

// SetEnd 距父容器终点的距离。
func (g *Guideline) SetEnd(v float64) {
	g.relBegin, g.relEnd, g.percent = -1, v, -1
}

// SetPercent 父容器尺寸的比例，0 到 1。
func (g *Guideline) SetPercent(p float64) {
	g.relBegin, g.relEnd, g.percent = -1, -1, p
}

// axis 是辅助线定位所在的轴。
func (g *Guideline) axis() Axis {
	if g.Orientation == Vertical {
		return Horizontal
	}
	return Vertical
}

// Position 根据父容器尺寸计算辅助线位置。
func (g *Guideline) Position(parentSize float64) float64 {
	switch {
	case g.percent >= 0:
		return parentSize * g.percent
	case g.relEnd >= 0:
		return parentSize - g.relEnd
	default:
		return g.relBegin
	}
}

func (g *Guideline) resolve(ps *pass, axis Axis) bool {
	known := !ps.wrap[axis]
	if axis != g.axis() {
		// 另一轴上横跨整个父容器。
		if !known {
			return false
		}
		ps.setAxis(g.Widget, axis, 0, ps.p.size[axis])
		return true
	}
	if !known && (g.percent >= 0 || g.relEnd >= 0) {
		return false
	}
	pos := g.Position(ps.p.size[axis])
	ps.setAxis(g.Widget, axis, pos, pos)
	return true
}

func (g *Guideline) addToSystem(ps *pass, axis Axis) {
	l, r := ps.variable(g.begin(axis)), ps.variable(g.end(axis))
	pb, pe := ps.variable(ps.p.begin(axis)), ps.variable(ps.p.end(axis))
	if axis != g.axis() {
		ps.add(ps.sys.AddEquality(l, pb, 0, solver.StrengthFixed))
		ps.add(ps.sys.AddEquality(r, pe, 0, solver.StrengthFixed))
		return
	}
	ps.add(ps.sys.AddEquality(r, l, 0, solver.StrengthFixed))
	switch {
	case g.percent >= 0:
		ps.add(ps.sys.AddRatio(l, pb, pe, pb, g.percent, solver.StrengthFixed))
	case g.relEnd >= 0:
		ps.add(ps.sys.AddEquality(l, pe, -g.relEnd, solver.StrengthFixed))
	default:
		ps.add(ps.sys.AddEquality(l, pb, g.relBegin, solver.StrengthFixed))
	}
}
