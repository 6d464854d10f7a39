package layout

import (
	"fmt"
	"math"

	"github.com/ByLCY/constraintkit/solver"
)

// BarrierType 决定屏障取哪一侧的极值。
type BarrierType int

const (
	BarrierLeft BarrierType = iota
	BarrierRight
	BarrierTop
	BarrierBottom
)

func (t BarrierType) String() string {
	switch t {
	case BarrierRight:
		return "right"
	case BarrierTop:
		return "top"
	case BarrierBottom:
		return "bottom"
	default:
		return "left"
	}
}

// ParseBarrierType 接受 left/start/right/end/top/bottom。
func ParseBarrierType(s string) (BarrierType, error) {
	switch s {
	case "left", "start":
		return BarrierLeft, nil
	case "right", "end":
		return BarrierRight, nil
	case "top":
		return BarrierTop, nil
	case "bottom":
		return BarrierBottom, nil
	}
	return BarrierLeft, fmt.Errorf("unknown barrier direction %q", s)
}

func (t BarrierType) axis() Axis {
	if t == BarrierTop || t == BarrierBottom {
		return Vertical
	}
	return Horizontal
}

// anchorType 是屏障读取被引用控件的哪个锚点。
func (t BarrierType) anchorType() AnchorType {
	switch t {
	case BarrierRight:
		return AnchorRight
	case BarrierTop:
		return AnchorTop
	case BarrierBottom:
		return AnchorBottom
	default:
		return AnchorLeft
	}
}

// takesMin 表示 LEFT/TOP 取最小值。
func (t BarrierType) takesMin() bool { return t == BarrierLeft || t == BarrierTop }

// Barrier 的位置是被引用控件某一侧的最小或最大值加上 Margin。
type Barrier struct {
	*Widget
	Type             BarrierType
	Margin           float64
	AllowsGoneWidget bool
	refs             []WidgetID
}

// AddBarrier 添加屏障，AllowsGoneWidget 默认为 true。
func (c *Container) AddBarrier(parent *Widget, name string, typ BarrierType) *Barrier {
	w := c.newWidget(name, KindBarrier, c.parentOrRoot(parent))
	b := &Barrier{Widget: w, Type: typ, AllowsGoneWidget: true}
	w.barrier = b
	return b
}

// Add 追加被引用的控件。
func (b *Barrier) Add(ws ...*Widget) {
	for _, w := range ws {
		if w != nil && w.id != b.id {
			b.refs = append(b.refs, w.id)
		}
	}
}

// Refs 返回被引用的控件。
func (b *Barrier) Refs() []*Widget {
	out := make([]*Widget, 0, len(b.refs))
	for _, id := range b.refs {
		if w := b.c.Widget(id); w != nil {
			out = append(out, w)
		}
	}
	return out
}

func (b *Barrier) removeRef(id WidgetID) {
	kept := b.refs[:0]
	for _, r := range b.refs {
		if r != id {
			kept = append(kept, r)
		}
	}
	b.refs = kept
}

// contributing 返回参与计算的控件，GONE 控件只在 AllowsGoneWidget 时参与。
func (b *Barrier) contributing() []*Widget {
	var out []*Widget
	for _, w := range b.Refs() {
		if w.visibility == Gone && !b.AllowsGoneWidget {
			continue
		}
		out = append(out, w)
	}
	return out
}

// position 返回屏障在所在轴上的锚点，另一端与之重合。
func (b *Barrier) position() *Anchor {
	return b.Anchor(b.Type.anchorType())
}

// AllSolved 在所有被引用控件都已有位置时直接计算屏障位置并返回 true。
func (b *Barrier) AllSolved() bool {
	refs := b.contributing()
	value := 0.0
	if len(refs) > 0 {
		value = math.Inf(1)
		if !b.Type.takesMin() {
			value = math.Inf(-1)
		}
	}
	for _, w := range refs {
		a := w.Anchor(b.Type.anchorType())
		if !a.HasFinalValue() {
			return false
		}
		if b.Type.takesMin() {
			value = math.Min(value, a.FinalValue())
		} else {
			value = math.Max(value, a.FinalValue())
		}
	}
	value += b.Margin
	axis := b.Type.axis()
	b.begin(axis).SetFinalValue(value)
	b.end(axis).SetFinalValue(value)
	b.center(axis).SetFinalValue(value)
	b.pos[axis] = value
	b.size[axis] = 0
	b.resolved[axis] = true
	return true
}

func (b *Barrier) resolve(ps *pass, axis Axis) bool {
	if axis != b.Type.axis() {
		// 屏障在另一轴上没有尺寸。
		ps.setAxis(b.Widget, axis, 0, 0)
		return true
	}
	return b.AllSolved()
}

// hasMatchConstraintWidgets 表示被引用控件在屏障轴上是否有 MATCH_CONSTRAINT。
func (b *Barrier) hasMatchConstraintWidgets() bool {
	axis := b.Type.axis()
	for _, w := range b.contributing() {
		if w.dims[axis].Behaviour == MatchConstraint {
			return true
		}
	}
	return false
}

func (b *Barrier) addToSystem(ps *pass, axis Axis) {
	if axis != b.Type.axis() {
		return
	}
	pos := ps.variable(b.position())
	ps.add(ps.sys.AddEquality(ps.variable(b.Anchor(b.Type.anchorType().opposite())), pos, 0, solver.StrengthFixed))

	strength := solver.StrengthHighest
	if b.hasMatchConstraintWidgets() {
		strength = solver.StrengthEquality
	}
	refs := b.contributing()
	if len(refs) == 0 {
		ps.add(ps.sys.AddEquality(pos, ps.variable(ps.p.begin(axis)), b.Margin, solver.StrengthFixed))
		return
	}
	for _, w := range refs {
		target := ps.variable(w.Anchor(b.Type.anchorType()))
		if b.Type.takesMin() {
			ps.add(ps.sys.AddLowerBarrier(pos, target, b.Margin))
		} else {
			ps.add(ps.sys.AddGreaterBarrier(pos, target, b.Margin))
		}
		ps.add(ps.sys.AddEquality(pos, target, b.Margin, strength))
	}
}
