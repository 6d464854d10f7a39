package state

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/constraintkit/layout"
)

// 该文件定义尺寸描述及其解析，支持固定值、wrap、spread、parent、百分比与宽高比。

// DimensionKind 是尺寸描述的类型。
type DimensionKind int

const (
	DimFixed      DimensionKind = iota // 固定数值
	DimWrap                            // 内容尺寸
	DimSpread                          // MATCH_CONSTRAINT，占满约束空间
	DimPreferWrap                      // MATCH_CONSTRAINT，不超过内容尺寸
	DimParent                          // MATCH_PARENT
	DimPercent                         // 父容器的比例
	DimRatio                           // 由宽高比推导
)

// DimensionKindToString 返回类型的短名。
func DimensionKindToString(k DimensionKind) string {
	switch k {
	case DimWrap:
		return "wrap"
	case DimSpread:
		return "spread"
	case DimPreferWrap:
		return "preferWrap"
	case DimParent:
		return "parent"
	case DimPercent:
		return "percent"
	case DimRatio:
		return "ratio"
	default:
		return "fixed"
	}
}

// Dimension 保留尺寸类型与数值，Min/Max 为 0 表示不限制。
type Dimension struct {
	Kind    DimensionKind `json:"kind"`
	Value   float64       `json:"value,omitempty"`
	Percent float64       `json:"percent,omitempty"`
	Ratio   string        `json:"ratio,omitempty"`
	Min     float64       `json:"min,omitempty"`
	Max     float64       `json:"max,omitempty"`
}

func Fixed(v float64) Dimension    { return Dimension{Kind: DimFixed, Value: v} }
func Wrap() Dimension              { return Dimension{Kind: DimWrap} }
func Spread() Dimension            { return Dimension{Kind: DimSpread} }
func PreferWrap() Dimension        { return Dimension{Kind: DimPreferWrap} }
func MatchParent() Dimension       { return Dimension{Kind: DimParent} }
func Percent(p float64) Dimension  { return Dimension{Kind: DimPercent, Percent: p} }
func Ratio(ratio string) Dimension { return Dimension{Kind: DimRatio, Ratio: ratio} }

// AtLeast 与 AtMost 设置尺寸上下限。
func (d Dimension) AtLeast(v float64) Dimension { d.Min = v; return d }
func (d Dimension) AtMost(v float64) Dimension  { d.Max = v; return d }

func (d Dimension) String() string {
	switch d.Kind {
	case DimFixed:
		return strconv.FormatFloat(d.Value, 'g', -1, 64)
	case DimPercent:
		return strconv.FormatFloat(d.Percent*100, 'g', -1, 64) + "%"
	case DimRatio:
		return "ratio:" + d.Ratio
	}
	return DimensionKindToString(d.Kind)
}

var dimensionKeywords = []struct {
	s string
	k DimensionKind
}{
	{"wrap", DimWrap}, {"wrap_content", DimWrap},
	{"spread", DimSpread}, {"match_constraint", DimSpread},
	{"preferwrap", DimPreferWrap},
	{"parent", DimParent}, {"match_parent", DimParent},
}

// ParseDimension 解析尺寸字符串："120"、"wrap"、"spread"、"preferWrap"、
// "parent"、"50%"、"ratio:16:9"（也接受 "16:9"）。
func ParseDimension(value string) (Dimension, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Dimension{}, fmt.Errorf("empty dimension")
	}
	lower := strings.ToLower(v)
	for _, kw := range dimensionKeywords {
		if lower == kw.s {
			return Dimension{Kind: kw.k}, nil
		}
	}
	if num, ok := strings.CutSuffix(lower, "%"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return Dimension{}, fmt.Errorf("invalid percent dimension %q: %w", value, err)
		}
		return Percent(f / 100), nil
	}
	if ratio, ok := strings.CutPrefix(v, "ratio:"); ok {
		return Ratio(strings.TrimSpace(ratio)), nil
	}
	if strings.Contains(v, ":") {
		return Ratio(v), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Dimension{}, fmt.Errorf("invalid dimension %q", value)
	}
	return Fixed(f), nil
}

// layoutDimension 转换为 layout 的尺寸描述。
func (d Dimension) layoutDimension() layout.Dimension {
	out := layout.Dimension{Min: d.Min, Max: d.Max}
	switch d.Kind {
	case DimFixed:
		out.Behaviour = layout.Fixed
		out.Size = d.Value
	case DimWrap:
		out.Behaviour = layout.WrapContent
	case DimParent:
		out.Behaviour = layout.MatchParent
	case DimPreferWrap:
		out.Behaviour = layout.MatchConstraint
		out.MatchDefault = layout.MatchWrap
	case DimPercent:
		out.Behaviour = layout.MatchConstraint
		out.MatchDefault = layout.MatchPercent
		out.Percent = d.Percent
	default:
		out.Behaviour = layout.MatchConstraint
	}
	return out
}

// apply 把尺寸写入控件的某一轴，宽高比会一并设置。
func (d Dimension) apply(w *layout.Widget, axis layout.Axis) error {
	w.SetDimension(axis, d.layoutDimension())
	if d.Kind != DimRatio {
		return nil
	}
	spec := d.Ratio
	if !strings.Contains(spec, ",") {
		side := "W"
		if axis == layout.Vertical {
			side = "H"
		}
		spec = side + "," + spec
	}
	return w.SetDimensionRatio(spec)
}
