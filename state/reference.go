package state

import (
	"sort"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/layout"
)

type refKind int

const (
	refWidget refKind = iota
	refContainer
	refGuideline
	refBarrier
	refFlow
)

// link 是一条待建立的锚点连接，目标以 key 引用。
type link struct {
	target     string
	anchor     layout.AnchorType
	margin     float64
	goneMargin float64
}

// linkOrder 是连接的建立顺序。
var linkOrder = [...]layout.AnchorType{
	layout.AnchorLeft, layout.AnchorTop, layout.AnchorRight, layout.AnchorBottom, layout.AnchorBaseline,
}

// ConstraintReference 记录一个控件的约束，Apply 时才写入 layout.Container。
// 所有设置方法都返回自身，便于链式调用。
type ConstraintReference struct {
	s    *State
	key  string
	kind refKind

	links map[layout.AnchorType]*link
	last  layout.AnchorType

	width, height Dimension
	bias          [2]float64
	weight        [2]float64
	style         [2]layout.ChainStyle
	styleSet      [2]bool
	visibility    layout.Visibility
	ratio         string
	baseline      float64
	hasBaseline   bool
	wrap          [2]float64
	origin        [2]float64
	parent        string

	properties map[binding.Property]float64
	custom     map[string]binding.CustomAttribute

	widget *layout.Widget
}

func newReference(s *State, key string, kind refKind) *ConstraintReference {
	return &ConstraintReference{
		s:          s,
		key:        key,
		kind:       kind,
		links:      make(map[layout.AnchorType]*link),
		width:      Wrap(),
		height:     Wrap(),
		bias:       [2]float64{0.5, 0.5},
		weight:     [2]float64{layout.UnknownWeight, layout.UnknownWeight},
		properties: make(map[binding.Property]float64),
		custom:     make(map[string]binding.CustomAttribute),
	}
}

// Key 返回引用的 key。
func (r *ConstraintReference) Key() string { return r.key }

// Widget 返回 Apply 之后对应的控件，Apply 之前为 nil。
func (r *ConstraintReference) Widget() *layout.Widget { return r.widget }

func (r *ConstraintReference) connect(from layout.AnchorType, target string, to layout.AnchorType) *ConstraintReference {
	r.links[from] = &link{target: target, anchor: to, goneMargin: layout.UnsetGoneMargin}
	r.last = from
	return r
}

func (r *ConstraintReference) LeftToLeft(target string) *ConstraintReference {
	return r.connect(layout.AnchorLeft, target, layout.AnchorLeft)
}

func (r *ConstraintReference) LeftToRight(target string) *ConstraintReference {
	return r.connect(layout.AnchorLeft, target, layout.AnchorRight)
}

func (r *ConstraintReference) RightToLeft(target string) *ConstraintReference {
	return r.connect(layout.AnchorRight, target, layout.AnchorLeft)
}

func (r *ConstraintReference) RightToRight(target string) *ConstraintReference {
	return r.connect(layout.AnchorRight, target, layout.AnchorRight)
}

// Start/End 是 Left/Right 的别名（只支持从左到右）。
func (r *ConstraintReference) StartToStart(target string) *ConstraintReference { return r.LeftToLeft(target) }
func (r *ConstraintReference) StartToEnd(target string) *ConstraintReference   { return r.LeftToRight(target) }
func (r *ConstraintReference) EndToStart(target string) *ConstraintReference   { return r.RightToLeft(target) }
func (r *ConstraintReference) EndToEnd(target string) *ConstraintReference     { return r.RightToRight(target) }

func (r *ConstraintReference) TopToTop(target string) *ConstraintReference {
	return r.connect(layout.AnchorTop, target, layout.AnchorTop)
}

func (r *ConstraintReference) TopToBottom(target string) *ConstraintReference {
	return r.connect(layout.AnchorTop, target, layout.AnchorBottom)
}

func (r *ConstraintReference) BottomToTop(target string) *ConstraintReference {
	return r.connect(layout.AnchorBottom, target, layout.AnchorTop)
}

func (r *ConstraintReference) BottomToBottom(target string) *ConstraintReference {
	return r.connect(layout.AnchorBottom, target, layout.AnchorBottom)
}

func (r *ConstraintReference) BaselineToBaseline(target string) *ConstraintReference {
	return r.connect(layout.AnchorBaseline, target, layout.AnchorBaseline)
}

func (r *ConstraintReference) BaselineToTop(target string) *ConstraintReference {
	return r.connect(layout.AnchorBaseline, target, layout.AnchorTop)
}

func (r *ConstraintReference) BaselineToBottom(target string) *ConstraintReference {
	return r.connect(layout.AnchorBaseline, target, layout.AnchorBottom)
}

// CenterHorizontally 把左右两边分别连到 target 的左右两边。
func (r *ConstraintReference) CenterHorizontally(target string) *ConstraintReference {
	return r.LeftToLeft(target).RightToRight(target)
}

// CenterVertically 把上下两边分别连到 target 的上下两边。
func (r *ConstraintReference) CenterVertically(target string) *ConstraintReference {
	return r.TopToTop(target).BottomToBottom(target)
}

// Centered 同时水平和垂直居中。
func (r *ConstraintReference) Centered(target string) *ConstraintReference {
	return r.CenterHorizontally(target).CenterVertically(target)
}

// Margin 设置最近一条连接的 margin。
func (r *ConstraintReference) Margin(m float64) *ConstraintReference {
	if l := r.links[r.last]; l != nil {
		l.margin = m
	}
	return r
}

// MarginGone 设置最近一条连接在目标 GONE 时使用的 margin。
func (r *ConstraintReference) MarginGone(m float64) *ConstraintReference {
	if l := r.links[r.last]; l != nil {
		l.goneMargin = m
	}
	return r
}

// Link 返回某个锚点上待建立的连接。
func (r *ConstraintReference) Link(from layout.AnchorType) (target string, to layout.AnchorType, margin float64, ok bool) {
	l := r.links[from]
	if l == nil {
		return "", layout.AnchorNone, 0, false
	}
	return l.target, l.anchor, l.margin, true
}

// GoneMargin 返回某个锚点的 gone margin。
func (r *ConstraintReference) GoneMargin(from layout.AnchorType) (float64, bool) {
	l := r.links[from]
	if l == nil || l.goneMargin == layout.UnsetGoneMargin {
		return 0, false
	}
	return l.goneMargin, true
}

func (r *ConstraintReference) Width(d Dimension) *ConstraintReference  { r.width = d; return r }
func (r *ConstraintReference) Height(d Dimension) *ConstraintReference { r.height = d; return r }

// Dimension 返回某一轴上的尺寸描述。
func (r *ConstraintReference) Dimension(axis layout.Axis) Dimension {
	if axis == layout.Vertical {
		return r.height
	}
	return r.width
}

func (r *ConstraintReference) HorizontalBias(b float64) *ConstraintReference {
	r.bias[layout.Horizontal] = b
	return r
}

func (r *ConstraintReference) VerticalBias(b float64) *ConstraintReference {
	r.bias[layout.Vertical] = b
	return r
}

// Bias 返回某一轴上的 bias。
func (r *ConstraintReference) Bias(axis layout.Axis) float64 { return r.bias[axis] }

func (r *ConstraintReference) HorizontalWeight(w float64) *ConstraintReference {
	r.weight[layout.Horizontal] = w
	return r
}

func (r *ConstraintReference) VerticalWeight(w float64) *ConstraintReference {
	r.weight[layout.Vertical] = w
	return r
}

// Weight 返回链权重，未设置时为 layout.UnknownWeight。
func (r *ConstraintReference) Weight(axis layout.Axis) float64 { return r.weight[axis] }

func (r *ConstraintReference) HorizontalChainStyle(s layout.ChainStyle) *ConstraintReference {
	r.style[layout.Horizontal], r.styleSet[layout.Horizontal] = s, true
	return r
}

func (r *ConstraintReference) VerticalChainStyle(s layout.ChainStyle) *ConstraintReference {
	r.style[layout.Vertical], r.styleSet[layout.Vertical] = s, true
	return r
}

// ChainStyle 返回链样式以及是否显式设置过。
func (r *ConstraintReference) ChainStyle(axis layout.Axis) (layout.ChainStyle, bool) {
	return r.style[axis], r.styleSet[axis]
}

func (r *ConstraintReference) Visibility(v layout.Visibility) *ConstraintReference {
	r.visibility = v
	return r
}

// DimensionRatio 接受 "16:9"、"W,16:9"、"H,1.5" 等写法。
func (r *ConstraintReference) DimensionRatio(ratio string) *ConstraintReference {
	r.ratio = ratio
	return r
}

func (r *ConstraintReference) BaselineDistance(d float64) *ConstraintReference {
	r.baseline, r.hasBaseline = d, true
	return r
}

// WrapSize 设置内容尺寸，WRAP_CONTENT 时使用。
func (r *ConstraintReference) WrapSize(width, height float64) *ConstraintReference {
	r.wrap = [2]float64{width, height}
	return r
}

// Origin 设置没有任何连接时的位置。
func (r *ConstraintReference) Origin(x, y float64) *ConstraintReference {
	r.origin = [2]float64{x, y}
	return r
}

// ChildOf 把控件放进由 Container 声明的嵌套容器。
func (r *ConstraintReference) ChildOf(container string) *ConstraintReference {
	r.parent = container
	return r
}

// Property 记录一个可动画属性的值。
func (r *ConstraintReference) Property(p binding.Property, v float64) *ConstraintReference {
	r.properties[p] = v
	return r
}

// Custom 记录一个自定义属性。
func (r *ConstraintReference) Custom(attr binding.CustomAttribute) *ConstraintReference {
	r.custom[attr.Name] = attr
	return r
}

// Properties 返回已记录的属性，按名称排序。
func (r *ConstraintReference) Properties() []binding.Property {
	out := make([]binding.Property, 0, len(r.properties))
	for p := range r.properties {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// PropertyValue 返回属性值，没有记录时返回属性默认值。
func (r *ConstraintReference) PropertyValue(p binding.Property) (float64, bool) {
	v, ok := r.properties[p]
	if !ok {
		return p.Default(), false
	}
	return v, true
}

// CustomAttributes 返回自定义属性，按名称排序。
func (r *ConstraintReference) CustomAttributes() []binding.CustomAttribute {
	out := make([]binding.CustomAttribute, 0, len(r.custom))
	for _, a := range r.custom {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ClearHorizontal 移除水平方向的连接。
func (r *ConstraintReference) ClearHorizontal() *ConstraintReference {
	delete(r.links, layout.AnchorLeft)
	delete(r.links, layout.AnchorRight)
	return r
}

// ClearVertical 移除垂直方向的连接（含基线）。
func (r *ConstraintReference) ClearVertical() *ConstraintReference {
	delete(r.links, layout.AnchorTop)
	delete(r.links, layout.AnchorBottom)
	delete(r.links, layout.AnchorBaseline)
	return r
}

// Clear 移除所有连接。
func (r *ConstraintReference) Clear() *ConstraintReference {
	return r.ClearHorizontal().ClearVertical()
}

func (r *ConstraintReference) clearAxis(axis layout.Axis) {
	if axis == layout.Horizontal {
		r.ClearHorizontal()
	} else {
		r.ClearVertical()
	}
}

// applyAttributes 把尺寸、bias 等写入控件。
func (r *ConstraintReference) applyAttributes(w *layout.Widget) error {
	if r.kind == refGuideline || r.kind == refBarrier {
		// 辅助线与屏障的尺寸由布局决定。
		w.SetVisibility(r.visibility)
		return nil
	}
	if err := r.width.apply(w, layout.Horizontal); err != nil {
		return err
	}
	if err := r.height.apply(w, layout.Vertical); err != nil {
		return err
	}
	if r.ratio != "" {
		if err := w.SetDimensionRatio(r.ratio); err != nil {
			return err
		}
	}
	for _, axis := range []layout.Axis{layout.Horizontal, layout.Vertical} {
		w.SetBias(axis, r.bias[axis])
		w.SetWeight(axis, r.weight[axis])
		if r.styleSet[axis] {
			w.SetChainStyle(axis, r.style[axis])
		}
	}
	w.SetVisibility(r.visibility)
	if r.hasBaseline {
		w.SetBaselineDistance(r.baseline)
	}
	w.SetWrapSize(r.wrap[layout.Horizontal], r.wrap[layout.Vertical])
	w.SetOrigin(r.origin[layout.Horizontal], r.origin[layout.Vertical])
	return nil
}
