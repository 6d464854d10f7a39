package layout

import (
	"math"
	"sort"
)

// AnchorType 表示控件上的一个连接点。
type AnchorType int

const (
	AnchorNone AnchorType = iota
	AnchorLeft
	AnchorTop
	AnchorRight
	AnchorBottom
	AnchorBaseline
	AnchorCenter
	AnchorCenterX
	AnchorCenterY
)

// anchorTypes 是每个控件都会创建的锚点，顺序即 AnchorID 的分配顺序。
var anchorTypes = [...]AnchorType{
	AnchorLeft, AnchorTop, AnchorRight, AnchorBottom,
	AnchorBaseline, AnchorCenterX, AnchorCenterY, AnchorCenter,
}

func (t AnchorType) String() string {
	switch t {
	case AnchorLeft:
		return "left"
	case AnchorTop:
		return "top"
	case AnchorRight:
		return "right"
	case AnchorBottom:
		return "bottom"
	case AnchorBaseline:
		return "baseline"
	case AnchorCenter:
		return "center"
	case AnchorCenterX:
		return "centerX"
	case AnchorCenterY:
		return "centerY"
	default:
		return "none"
	}
}

// ParseAnchorType 接受 start/end 作为 left/right 的别名。
func ParseAnchorType(s string) (AnchorType, bool) {
	switch s {
	case "left", "start":
		return AnchorLeft, true
	case "right", "end":
		return AnchorRight, true
	case "top":
		return AnchorTop, true
	case "bottom":
		return AnchorBottom, true
	case "baseline":
		return AnchorBaseline, true
	case "center":
		return AnchorCenter, true
	case "centerX", "centerHorizontally":
		return AnchorCenterX, true
	case "centerY", "centerVertically":
		return AnchorCenterY, true
	}
	return AnchorNone, false
}

func (t AnchorType) horizontal() bool {
	return t == AnchorLeft || t == AnchorRight || t == AnchorCenterX
}

func (t AnchorType) vertical() bool {
	return t == AnchorTop || t == AnchorBottom || t == AnchorCenterY || t == AnchorBaseline
}

// opposite 返回同一轴上的另一端。
func (t AnchorType) opposite() AnchorType {
	switch t {
	case AnchorLeft:
		return AnchorRight
	case AnchorRight:
		return AnchorLeft
	case AnchorTop:
		return AnchorBottom
	case AnchorBottom:
		return AnchorTop
	}
	return AnchorNone
}

// AnchorID 是锚点在 Container 中的稳定下标。
type AnchorID int

// NoAnchor 表示未连接。
const NoAnchor AnchorID = -1

// UnsetGoneMargin 表示没有设置 gone margin。
const UnsetGoneMargin = math.MinInt32

// Anchor 属于且仅属于一个控件，可以指向另一个锚点。dependents 是反向索引，
// 只记录 AnchorID，不代表所有权。
type Anchor struct {
	c          *Container
	id         AnchorID
	owner      WidgetID
	typ        AnchorType
	target     AnchorID
	margin     float64
	goneMargin float64
	dependents map[AnchorID]struct{}

	finalValue    float64
	hasFinalValue bool
}

func (a *Anchor) ID() AnchorID     { return a.id }
func (a *Anchor) Type() AnchorType { return a.typ }

// Owner 返回持有该锚点的控件。
func (a *Anchor) Owner() *Widget { return a.c.Widget(a.owner) }

// Target 返回连接目标，未连接时为 nil。
func (a *Anchor) Target() *Anchor {
	if a.target == NoAnchor {
		return nil
	}
	return a.c.Anchor(a.target)
}

// IsConnected 表示是否存在目标锚点。
func (a *Anchor) IsConnected() bool { return a.target != NoAnchor }

// RawMargin 返回未考虑可见性的 margin。
func (a *Anchor) RawMargin() float64 { return a.margin }

// GoneMargin 返回 gone margin 以及是否设置过。
func (a *Anchor) GoneMargin() (float64, bool) {
	return a.goneMargin, a.goneMargin != UnsetGoneMargin
}

// SetMargin 只在已连接时生效。
func (a *Anchor) SetMargin(m float64) {
	if a.IsConnected() {
		a.margin = m
	}
}

// SetGoneMargin 只在已连接时生效。
func (a *Anchor) SetGoneMargin(m float64) {
	if a.IsConnected() {
		a.goneMargin = m
	}
}

// Margin 返回实际生效的 margin：自身 GONE 时为 0，目标 GONE 且设置了
// gone margin 时使用 gone margin。
func (a *Anchor) Margin() float64 {
	owner := a.Owner()
	if owner != nil && owner.Visibility() == Gone {
		return 0
	}
	if t := a.Target(); t != nil && a.goneMargin != UnsetGoneMargin {
		if to := t.Owner(); to != nil && to.Visibility() == Gone {
			return a.goneMargin
		}
	}
	return a.margin
}

// Dependents 返回所有指向本锚点的锚点，按 ID 排序。
func (a *Anchor) Dependents() []*Anchor {
	ids := make([]int, 0, len(a.dependents))
	for id := range a.dependents {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	out := make([]*Anchor, 0, len(ids))
	for _, id := range ids {
		if dep := a.c.Anchor(AnchorID(id)); dep != nil {
			out = append(out, dep)
		}
	}
	return out
}

// HasDependents 表示是否有锚点指向本锚点。
func (a *Anchor) HasDependents() bool { return len(a.dependents) > 0 }

// Connect 把锚点连接到 target。force 为 false 且类型不兼容时返回 false；
// 传入 nil 等价于 Reset。旧目标的 dependents 会先被清理。
func (a *Anchor) Connect(target *Anchor, margin, goneMargin float64, force bool) bool {
	if target == nil {
		a.Reset()
		return true
	}
	if !force && !a.IsValidConnection(target) {
		return false
	}
	a.detach()
	a.target = target.id
	a.margin = margin
	a.goneMargin = goneMargin
	if target.dependents == nil {
		target.dependents = make(map[AnchorID]struct{})
	}
	target.dependents[a.id] = struct{}{}
	return true
}

// ConnectMargin 是不带 gone margin 的 Connect。
func (a *Anchor) ConnectMargin(target *Anchor, margin float64) bool {
	return a.Connect(target, margin, UnsetGoneMargin, false)
}

// Reset 断开连接，清理目标的 dependents、margin 与解算缓存。
func (a *Anchor) Reset() {
	a.detach()
	a.target = NoAnchor
	a.margin = 0
	a.goneMargin = UnsetGoneMargin
	a.ResetFinalResolution()
}

func (a *Anchor) detach() {
	if t := a.Target(); t != nil {
		delete(t.dependents, a.id)
	}
}

// IsValidConnection 检查锚点类型是否兼容。
func (a *Anchor) IsValidConnection(target *Anchor) bool {
	if target == nil {
		return false
	}
	targetType := target.typ
	if targetType == a.typ {
		if a.typ == AnchorBaseline {
			ao, to := a.Owner(), target.Owner()
			return ao != nil && to != nil && ao.HasBaseline() && to.HasBaseline()
		}
		return true
	}
	targetIsGuideline := false
	if to := target.Owner(); to != nil {
		targetIsGuideline = to.Kind() == KindGuideline
	}
	switch a.typ {
	case AnchorCenter:
		return targetType != AnchorBaseline && targetType != AnchorCenterX && targetType != AnchorCenterY
	case AnchorLeft, AnchorRight:
		ok := targetType == AnchorLeft || targetType == AnchorRight
		if targetIsGuideline {
			ok = ok || targetType == AnchorCenterX
		}
		return ok
	case AnchorTop, AnchorBottom:
		ok := targetType == AnchorTop || targetType == AnchorBottom
		if targetIsGuideline {
			ok = ok || targetType == AnchorCenterY
		}
		return ok
	case AnchorBaseline:
		return targetType != AnchorLeft && targetType != AnchorRight
	}
	return false
}

// IsSimilarDimensionConnection 判断两个锚点是否在同一轴上。
func (a *Anchor) IsSimilarDimensionConnection(other *Anchor) bool {
	t := other.typ
	if t == a.typ {
		return true
	}
	switch a.typ {
	case AnchorCenter:
		return t != AnchorBaseline
	case AnchorLeft, AnchorRight, AnchorCenterX:
		return t.horizontal()
	case AnchorTop, AnchorBottom, AnchorCenterY, AnchorBaseline:
		return t.vertical()
	}
	return false
}

// IsConnectionAllowed 检查连接到 target 控件（可选具体锚点）是否会形成回到
// 自身的环。直接回连（链的互相连接）是允许的。target 必须是父容器或兄弟控件。
func (a *Anchor) IsConnectionAllowed(target *Widget, anchor *Anchor) bool {
	if target == nil {
		return false
	}
	if anchor != nil {
		if anchor.target == a.id {
			return true
		}
		if !a.IsSimilarDimensionConnection(anchor) {
			return false
		}
	}
	visited := make(map[WidgetID]bool)
	if a.isConnectionToMe(target, visited) {
		return false
	}
	owner := a.Owner()
	if owner == nil {
		return false
	}
	if owner.parent == target.id {
		return true
	}
	return target.parent == owner.parent
}

func (a *Anchor) isConnectionToMe(w *Widget, visited map[WidgetID]bool) bool {
	if visited[w.id] {
		return false
	}
	visited[w.id] = true
	if w.id == a.owner {
		return true
	}
	for _, other := range w.Anchors() {
		if !other.IsConnected() || !other.IsSimilarDimensionConnection(a) {
			continue
		}
		if next := other.Target().Owner(); next != nil && a.isConnectionToMe(next, visited) {
			return true
		}
	}
	return false
}

// SetFinalValue 缓存本轮解算得到的位置（相对父容器）。
func (a *Anchor) SetFinalValue(v float64) {
	a.finalValue = v
	a.hasFinalValue = true
}

// HasFinalValue 表示本轮是否已经得到位置。
func (a *Anchor) HasFinalValue() bool { return a.hasFinalValue }

// FinalValue 返回缓存位置，调用前需检查 HasFinalValue。
func (a *Anchor) FinalValue() float64 { return a.finalValue }

// ResetFinalResolution 清除缓存位置。
func (a *Anchor) ResetFinalResolution() {
	a.hasFinalValue = false
	a.finalValue = 0
}
