package state

import "github.com/ByLCY/constraintkit/layout"

// GuidelineReference 描述一条辅助线。
type GuidelineReference struct {
	*ConstraintReference
	orientation layout.Axis
	begin       float64
	end         float64
	percent     float64

	lg *layout.Guideline
}

// Begin 距父容器起点。
func (g *GuidelineReference) Begin(v float64) *GuidelineReference {
	g.begin, g.end, g.percent = v, -1, -1
	return g
}

// End 距父容器终点。
func (g *GuidelineReference) End(v float64) *GuidelineReference {
	g.begin, g.end, g.percent = -1, v, -1
	return g
}

// Percent 父容器尺寸的比例。
func (g *GuidelineReference) Percent(p float64) *GuidelineReference {
	g.begin, g.end, g.percent = -1, -1, p
	return g
}

func (g *GuidelineReference) configure(lg *layout.Guideline) {
	switch {
	case g.percent >= 0:
		lg.SetPercent(g.percent)
	case g.end >= 0:
		lg.SetEnd(g.end)
	default:
		lg.SetBegin(g.begin)
	}
}

// BarrierReference 描述一个屏障。
type BarrierReference struct {
	*ConstraintReference
	direction  layout.BarrierType
	margin     float64
	allowsGone bool
	keys       []string

	lb *layout.Barrier
}

// Add 追加被引用的控件。
func (b *BarrierReference) Add(keys ...string) *BarrierReference {
	b.keys = append(b.keys, keys...)
	return b
}

func (b *BarrierReference) BarrierMargin(m float64) *BarrierReference { b.margin = m; return b }

// AllowsGoneWidget 控制 GONE 控件是否参与计算，默认 true。
func (b *BarrierReference) AllowsGoneWidget(allow bool) *BarrierReference {
	b.allowsGone = allow
	return b
}

// FlowReference 描述一个 Flow 虚拟布局。
type FlowReference struct {
	*ConstraintReference
	orientation layout.Axis
	mode        layout.WrapMode
	hGap, vGap  float64
	maxElements int
	flowStyle   layout.ChainStyle
	flowBias    float64
	keys        []string

	lf *layout.Flow
}

// Add 追加被引用的控件。
func (f *FlowReference) Add(keys ...string) *FlowReference {
	f.keys = append(f.keys, keys...)
	return f
}

func (f *FlowReference) WrapMode(m layout.WrapMode) *FlowReference { f.mode = m; return f }

// Gaps 设置水平与垂直间距。
func (f *FlowReference) Gaps(horizontal, vertical float64) *FlowReference {
	f.hGap, f.vGap = horizontal, vertical
	return f
}

// MaxElementsWrap 每行（列）最多的控件数，0 表示不限制。
func (f *FlowReference) MaxElementsWrap(n int) *FlowReference { f.maxElements = n; return f }

// FlowStyle 设置每行的链样式与 bias。
func (f *FlowReference) FlowStyle(s layout.ChainStyle, bias float64) *FlowReference {
	f.flowStyle, f.flowBias = s, bias
	return f
}

func (f *FlowReference) configure(lf *layout.Flow) {
	lf.Wrap = f.mode
	lf.HorizontalGap = f.hGap
	lf.VerticalGap = f.vGap
	lf.MaxElementsWrap = f.maxElements
	lf.Style = f.flowStyle
	lf.FlowBias = f.flowBias
}
