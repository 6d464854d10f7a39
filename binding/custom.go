package binding

import (
	"encoding/json"
	"math"
	"strings"
)

// AttributeKind 是自定义属性的值类型。
type AttributeKind int

const (
	KindInt AttributeKind = iota
	KindFloat
	KindColor
	KindBoolean
	KindString
	KindDimension
)

func (k AttributeKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindColor:
		return "color"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindDimension:
		return "dimension"
	default:
		return "float"
	}
}

// CustomAttribute 是带类型的自定义属性值。
type CustomAttribute struct {
	Name  string
	Kind  AttributeKind
	Int   int
	Float float64
	Color uint32
	Bool  bool
	Str   string
}

func IntAttribute(name string, v int) CustomAttribute {
	return CustomAttribute{Name: name, Kind: KindInt, Int: v}
}

func FloatAttribute(name string, v float64) CustomAttribute {
	return CustomAttribute{Name: name, Kind: KindFloat, Float: v}
}

func DimensionAttribute(name string, v float64) CustomAttribute {
	return CustomAttribute{Name: name, Kind: KindDimension, Float: v}
}

func ColorAttribute(name string, argb uint32) CustomAttribute {
	return CustomAttribute{Name: name, Kind: KindColor, Color: argb}
}

func BoolAttribute(name string, v bool) CustomAttribute {
	return CustomAttribute{Name: name, Kind: KindBoolean, Bool: v}
}

func StringAttribute(name, v string) CustomAttribute {
	return CustomAttribute{Name: name, Kind: KindString, Str: v}
}

// CustomFromValue 根据解析得到的值推断类型：以 '#' 开头的字符串为颜色，
// 数字为 float，布尔为 boolean，其余字符串为 string。
func CustomFromValue(name string, v any) CustomAttribute {
	switch x := v.(type) {
	case int:
		return IntAttribute(name, x)
	case float64:
		return FloatAttribute(name, x)
	case bool:
		return BoolAttribute(name, x)
	case string:
		if strings.HasPrefix(x, "#") {
			if c, err := ParseColor(x); err == nil {
				return ColorAttribute(name, c)
			}
		}
		return StringAttribute(name, x)
	}
	return StringAttribute(name, "")
}

// NumberOfInterpolatedValues 颜色为 4，其余为 1。
func (c CustomAttribute) NumberOfInterpolatedValues() int {
	if c.Kind == KindColor {
		return 4
	}
	return 1
}

// ValuesToInterpolate 把值写入 out。字符串不可插值，写入 0。
func (c CustomAttribute) ValuesToInterpolate(out []float64) {
	switch c.Kind {
	case KindInt:
		out[0] = float64(c.Int)
	case KindFloat, KindDimension:
		out[0] = c.Float
	case KindColor:
		lin := ToLinear(c.Color)
		copy(out, lin[:])
	case KindBoolean:
		out[0] = 0
		if c.Bool {
			out[0] = 1
		}
	case KindString:
		out[0] = 0
	}
}

// WithInterpolatedValue 返回用插值结果替换后的属性。
func (c CustomAttribute) WithInterpolatedValue(values []float64) CustomAttribute {
	switch c.Kind {
	case KindInt:
		c.Int = int(values[0])
	case KindFloat, KindDimension:
		c.Float = values[0]
	case KindColor:
		c.Color = FromLinear(values)
	case KindBoolean:
		c.Bool = values[0] > 0.5
	}
	return c
}

// ApplyInterpolatedValue 把插值结果写入视图。字符串属性什么也不做。
func (c CustomAttribute) ApplyInterpolatedValue(v View, values []float64) {
	if c.Kind == KindString {
		return
	}
	v.SetCustom(c.Name, c.WithInterpolatedValue(values))
}

// Value 返回属性的 Go 值。
func (c CustomAttribute) Value() any {
	switch c.Kind {
	case KindInt:
		return c.Int
	case KindColor:
		return FormatColor(c.Color)
	case KindBoolean:
		return c.Bool
	case KindString:
		return c.Str
	}
	if math.IsNaN(c.Float) {
		return nil
	}
	return c.Float
}

// MarshalJSON 只输出类型与值。
func (c CustomAttribute) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string `json:"kind"`
		Value any    `json:"value"`
	}{c.Kind.String(), c.Value()})
}
