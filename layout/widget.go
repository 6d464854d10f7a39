package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// WidgetID 是控件在 Container 中的稳定下标，删除后不会复用。
type WidgetID int

// NoWidget 表示没有父容器。
const NoWidget WidgetID = -1

// WidgetKind 区分普通控件与各类辅助控件。
type WidgetKind int

const (
	KindWidget WidgetKind = iota
	KindContainer
	KindGuideline
	KindBarrier
	KindFlow
)

func (k WidgetKind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindGuideline:
		return "guideline"
	case KindBarrier:
		return "barrier"
	case KindFlow:
		return "flow"
	default:
		return "widget"
	}
}

// Visibility 控件可见性。GONE 的控件尺寸与 margin 都视为 0。
type Visibility int

const (
	Visible Visibility = iota
	Invisible
	Gone
)

func (v Visibility) String() string {
	switch v {
	case Invisible:
		return "invisible"
	case Gone:
		return "gone"
	default:
		return "visible"
	}
}

// Axis 布局方向。
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// DimensionBehaviour 描述某一轴上的尺寸策略。
type DimensionBehaviour int

const (
	Fixed DimensionBehaviour = iota
	WrapContent
	MatchConstraint
	MatchParent
)

func (b DimensionBehaviour) String() string {
	switch b {
	case WrapContent:
		return "wrap"
	case MatchConstraint:
		return "matchConstraint"
	case MatchParent:
		return "matchParent"
	default:
		return "fixed"
	}
}

// MatchDefault 是 MATCH_CONSTRAINT 的具体模式。
type MatchDefault int

const (
	MatchSpread MatchDefault = iota
	MatchWrap
	MatchPercent
)

// ChainStyle 链的分布方式。
type ChainStyle int

const (
	ChainSpread ChainStyle = iota
	ChainSpreadInside
	ChainPacked
)

func (s ChainStyle) String() string {
	switch s {
	case ChainSpreadInside:
		return "spread_inside"
	case ChainPacked:
		return "packed"
	default:
		return "spread"
	}
}

// ParseChainStyle 解析 spread / spread_inside / packed。
func ParseChainStyle(s string) (ChainStyle, error) {
	switch strings.ToLower(s) {
	case "spread", "":
		return ChainSpread, nil
	case "spread_inside", "spreadinside":
		return ChainSpreadInside, nil
	case "packed":
		return ChainPacked, nil
	}
	return ChainSpread, fmt.Errorf("unknown chain style %q", s)
}

// UnknownWeight 表示链权重未设置。
const UnknownWeight = -1.0

// Dimension 是一个轴上的尺寸描述。Min/Max 为 0 时不生效。
type Dimension struct {
	Behaviour    DimensionBehaviour
	Size         float64
	Min          float64
	Max          float64
	MatchDefault MatchDefault
	Percent      float64
}

// FixedDimension 返回固定尺寸。
func FixedDimension(size float64) Dimension { return Dimension{Behaviour: Fixed, Size: size} }

// Widget 是矩形节点。所有锚点都存放在 Container 的 arena 里。
type Widget struct {
	c        *Container
	id       WidgetID
	name     string
	kind     WidgetKind
	parent   WidgetID
	children []WidgetID
	anchors  [len(anchorTypes)]AnchorID

	dims        [2]Dimension
	wrap        [2]float64
	origin      [2]float64
	baseline    float64
	hasBaseline bool
	visibility  Visibility
	bias        [2]float64
	weight      [2]float64
	chainStyle  [2]ChainStyle
	ratio       float64
	ratioSide   Axis
	ratioSet    bool

	// 解算结果，相对父容器。
	pos      [2]float64
	size     [2]float64
	resolved [2]bool

	barrier   *Barrier
	guideline *Guideline
	flow      *Flow
}

func anchorIndex(t AnchorType) int {
	for i, at := range anchorTypes {
		if at == t {
			return i
		}
	}
	return -1
}

func (w *Widget) ID() WidgetID     { return w.id }
func (w *Widget) Name() string     { return w.name }
func (w *Widget) Kind() WidgetKind { return w.kind }

// Parent 返回父容器，根容器返回 nil。
func (w *Widget) Parent() *Widget {
	if w.parent == NoWidget {
		return nil
	}
	return w.c.Widget(w.parent)
}

// Children 返回子控件（按 ID 顺序）。
func (w *Widget) Children() []*Widget {
	out := make([]*Widget, 0, len(w.children))
	for _, id := range w.children {
		if child := w.c.Widget(id); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// Anchor 返回指定类型的锚点。
func (w *Widget) Anchor(t AnchorType) *Anchor {
	i := anchorIndex(t)
	if i < 0 {
		return nil
	}
	return w.c.Anchor(w.anchors[i])
}

// Anchors 返回全部锚点。
func (w *Widget) Anchors() []*Anchor {
	out := make([]*Anchor, 0, len(w.anchors))
	for _, id := range w.anchors {
		out = append(out, w.c.Anchor(id))
	}
	return out
}

func (w *Widget) Visibility() Visibility      { return w.visibility }
func (w *Widget) SetVisibility(v Visibility) { w.visibility = v }

// HasBaseline 表示控件是否提供基线。
func (w *Widget) HasBaseline() bool { return w.hasBaseline }

// BaselineDistance 返回基线相对顶部的距离。
func (w *Widget) BaselineDistance() float64 { return w.baseline }

// SetBaselineDistance 设置基线位置，同时标记控件拥有基线。
func (w *Widget) SetBaselineDistance(d float64) {
	w.baseline = d
	w.hasBaseline = true
}

// Dimension 返回某一轴的尺寸描述。
func (w *Widget) Dimension(axis Axis) Dimension { return w.dims[axis] }

// SetDimension 设置某一轴的尺寸描述。
func (w *Widget) SetDimension(axis Axis, d Dimension) { w.dims[axis] = d }

func (w *Widget) SetWidth(width float64)   { w.dims[Horizontal] = FixedDimension(width) }
func (w *Widget) SetHeight(height float64) { w.dims[Vertical] = FixedDimension(height) }

// SetWrapSize 设置内容尺寸，WRAP_CONTENT 时使用。
func (w *Widget) SetWrapSize(width, height float64) {
	w.wrap[Horizontal] = width
	w.wrap[Vertical] = height
}

// WrapSize 返回内容尺寸。
func (w *Widget) WrapSize(axis Axis) float64 { return w.wrap[axis] }

// SetOrigin 设置未约束时使用的位置。
func (w *Widget) SetOrigin(x, y float64) {
	w.origin[Horizontal] = x
	w.origin[Vertical] = y
}

// Bias 默认 0.5。
func (w *Widget) Bias(axis Axis) float64         { return w.bias[axis] }
func (w *Widget) SetBias(axis Axis, bias float64) { w.bias[axis] = bias }

// Weight 返回链权重，未设置时为 UnknownWeight。
func (w *Widget) Weight(axis Axis) float64           { return w.weight[axis] }
func (w *Widget) SetWeight(axis Axis, weight float64) { w.weight[axis] = weight }

func (w *Widget) ChainStyle(axis Axis) ChainStyle              { return w.chainStyle[axis] }
func (w *Widget) SetChainStyle(axis Axis, style ChainStyle) { w.chainStyle[axis] = style }

// DimensionRatio 返回宽高比（宽/高）与被推导的一侧。
func (w *Widget) DimensionRatio() (ratio float64, side Axis, ok bool) {
	return w.ratio, w.ratioSide, w.ratioSet
}

// SetDimensionRatio 解析 "16:9"、"1.5"、"W,16:9"、"H,16:9"。
// 没有前缀时，只有一侧为 MATCH_CONSTRAINT 则推导该侧，否则推导高度。
func (w *Widget) SetDimensionRatio(spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		w.ratioSet = false
		return nil
	}
	side := Axis(-1)
	if i := strings.IndexByte(spec, ','); i > 0 {
		switch strings.ToUpper(strings.TrimSpace(spec[:i])) {
		case "W":
			side = Horizontal
		case "H":
			side = Vertical
		default:
			return fmt.Errorf("widget %s: invalid ratio side in %q", w.name, spec)
		}
		spec = spec[i+1:]
	}
	var ratio float64
	if num, den, found := strings.Cut(spec, ":"); found {
		n, err1 := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, err2 := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
			return fmt.Errorf("widget %s: invalid ratio %q", w.name, spec)
		}
		ratio = n / d
	} else {
		r, err := strconv.ParseFloat(spec, 64)
		if err != nil || r <= 0 {
			return fmt.Errorf("widget %s: invalid ratio %q", w.name, spec)
		}
		ratio = r
	}
	w.ratio = ratio
	w.ratioSide = side
	w.ratioSet = true
	return nil
}

// ratioDerivedAxis 返回由宽高比推导的轴，没有可推导的轴时 ok=false。
func (w *Widget) ratioDerivedAxis() (Axis, bool) {
	if !w.ratioSet {
		return Horizontal, false
	}
	hMatch := w.dims[Horizontal].Behaviour == MatchConstraint
	vMatch := w.dims[Vertical].Behaviour == MatchConstraint
	switch {
	case w.ratioSide == Horizontal && hMatch:
		return Horizontal, true
	case w.ratioSide == Vertical && vMatch:
		return Vertical, true
	case w.ratioSide >= 0:
		return Horizontal, false
	case hMatch && !vMatch:
		return Horizontal, true
	case vMatch:
		return Vertical, true
	}
	return Horizontal, false
}

// X/Y/Width/Height 返回解算结果（相对父容器）。
func (w *Widget) X() float64      { return w.pos[Horizontal] }
func (w *Widget) Y() float64      { return w.pos[Vertical] }
func (w *Widget) Width() float64  { return w.size[Horizontal] }
func (w *Widget) Height() float64 { return w.size[Vertical] }

// AbsoluteX 返回相对根容器的横坐标。
func (w *Widget) AbsoluteX() float64 {
	x := w.pos[Horizontal]
	for p := w.Parent(); p != nil; p = p.Parent() {
		x += p.pos[Horizontal]
	}
	return x
}

// AbsoluteY 返回相对根容器的纵坐标。
func (w *Widget) AbsoluteY() float64 {
	y := w.pos[Vertical]
	for p := w.Parent(); p != nil; p = p.Parent() {
		y += p.pos[Vertical]
	}
	return y
}

// IsResolved 表示某一轴是否已经在直接解析阶段得到结果。
func (w *Widget) IsResolved(axis Axis) bool { return w.resolved[axis] }

// IsResolvedHorizontally 与 IsResolvedVertically 是 IsResolved 的便捷形式。
func (w *Widget) IsResolvedHorizontally() bool { return w.resolved[Horizontal] }
func (w *Widget) IsResolvedVertically() bool   { return w.resolved[Vertical] }

// Connect 连接 from 到 target 的 to 锚点。CENTER/CENTER_X/CENTER_Y 会被展开为两端连接。
func (w *Widget) Connect(from AnchorType, target *Widget, to AnchorType, margin float64) bool {
	if target == nil {
		return false
	}
	switch from {
	case AnchorCenter:
		if to != AnchorCenter {
			return false
		}
		ok := w.Connect(AnchorCenterX, target, AnchorCenterX, 0)
		ok = w.Connect(AnchorCenterY, target, AnchorCenterY, 0) && ok
		w.Anchor(AnchorCenter).Connect(target.Anchor(AnchorCenter), 0, UnsetGoneMargin, true)
		return ok
	case AnchorCenterX:
		switch to {
		case AnchorCenterX:
			ok := w.connectAnchor(AnchorLeft, target, AnchorLeft, 0)
			ok = w.connectAnchor(AnchorRight, target, AnchorRight, 0) && ok
			w.Anchor(AnchorCenterX).Connect(target.Anchor(AnchorCenterX), 0, UnsetGoneMargin, true)
			return ok
		case AnchorLeft, AnchorRight:
			ok := w.connectAnchor(AnchorLeft, target, to, 0)
			return w.connectAnchor(AnchorRight, target, to, 0) && ok
		}
		return false
	case AnchorCenterY:
		switch to {
		case AnchorCenterY:
			ok := w.connectAnchor(AnchorTop, target, AnchorTop, 0)
			ok = w.connectAnchor(AnchorBottom, target, AnchorBottom, 0) && ok
			w.Anchor(AnchorCenterY).Connect(target.Anchor(AnchorCenterY), 0, UnsetGoneMargin, true)
			return ok
		case AnchorTop, AnchorBottom:
			ok := w.connectAnchor(AnchorTop, target, to, 0)
			return w.connectAnchor(AnchorBottom, target, to, 0) && ok
		}
		return false
	}
	return w.connectAnchor(from, target, to, margin)
}

func (w *Widget) connectAnchor(from AnchorType, target *Widget, to AnchorType, margin float64) bool {
	src, dst := w.Anchor(from), target.Anchor(to)
	if src == nil || dst == nil || !src.IsConnectionAllowed(target, dst) {
		return false
	}
	return src.ConnectMargin(dst, margin)
}

// ClearHorizontal 重置水平方向的锚点。
func (w *Widget) ClearHorizontal() {
	for _, t := range []AnchorType{AnchorLeft, AnchorRight, AnchorCenterX} {
		w.Anchor(t).Reset()
	}
	w.Anchor(AnchorCenter).Reset()
}

// ClearVertical 重置垂直方向的锚点。
func (w *Widget) ClearVertical() {
	for _, t := range []AnchorType{AnchorTop, AnchorBottom, AnchorBaseline, AnchorCenterY} {
		w.Anchor(t).Reset()
	}
	w.Anchor(AnchorCenter).Reset()
}

// ClearAxis 按轴重置锚点。
func (w *Widget) ClearAxis(axis Axis) {
	if axis == Horizontal {
		w.ClearHorizontal()
	} else {
		w.ClearVertical()
	}
}

// ResetAnchors 断开所有锚点。
func (w *Widget) ResetAnchors() {
	for _, a := range w.Anchors() {
		a.Reset()
	}
}

// ResetFinalResolution 清除本控件所有锚点的解算缓存。
func (w *Widget) ResetFinalResolution() {
	for _, a := range w.Anchors() {
		a.ResetFinalResolution()
	}
	w.resolved = [2]bool{}
}

// begin/end 返回某轴的起止锚点。
func (w *Widget) begin(axis Axis) *Anchor {
	if axis == Horizontal {
		return w.Anchor(AnchorLeft)
	}
	return w.Anchor(AnchorTop)
}

func (w *Widget) end(axis Axis) *Anchor {
	if axis == Horizontal {
		return w.Anchor(AnchorRight)
	}
	return w.Anchor(AnchorBottom)
}

func (w *Widget) center(axis Axis) *Anchor {
	if axis == Horizontal {
		return w.Anchor(AnchorCenterX)
	}
	return w.Anchor(AnchorCenterY)
}

// knownSize 返回不需要求解器即可确定的尺寸。
func (w *Widget) knownSize(axis Axis) (float64, bool) {
	if w.visibility == Gone {
		return 0, true
	}
	d := w.dims[axis]
	switch d.Behaviour {
	case Fixed:
		return clampSize(d.Size, d), true
	case WrapContent:
		return clampSize(w.wrap[axis], d), true
	}
	return 0, false
}

func clampSize(v float64, d Dimension) float64 {
	if d.Min > 0 && v < d.Min {
		v = d.Min
	}
	if d.Max > 0 && v > d.Max {
		v = d.Max
	}
	if v < 0 {
		v = 0
	}
	return v
}

func (w *Widget) isHelper() bool {
	return w.kind == KindGuideline || w.kind == KindBarrier
}

func (w *Widget) String() string { return fmt.Sprintf("%s(%s)", w.name, w.kind) }
