package binding

import "strings"

type propertyKind int

const (
	propNone propertyKind = iota
	propAlpha
	propElevation
	propRotation
	propRotationX
	propRotationY
	propScaleX
	propScaleY
	propPivotX
	propPivotY
	propTranslationX
	propTranslationY
	propTranslationZ
	propProgress
	propPathRotate
	propWaveOffset
	propWavePhase
	propCustom
)

var propertyNames = [...]string{
	propNone:         "",
	propAlpha:        "alpha",
	propElevation:    "elevation",
	propRotation:     "rotationZ",
	propRotationX:    "rotationX",
	propRotationY:    "rotationY",
	propScaleX:       "scaleX",
	propScaleY:       "scaleY",
	propPivotX:       "pivotX",
	propPivotY:       "pivotY",
	propTranslationX: "translationX",
	propTranslationY: "translationY",
	propTranslationZ: "translationZ",
	propProgress:     "progress",
	propPathRotate:   "pathRotate",
	propWaveOffset:   "waveOffset",
	propWavePhase:    "wavePhase",
}

// Property 是可以插值的视图属性。内置属性是固定的集合，
// Custom 变体额外携带属性名。
type Property struct {
	kind propertyKind
	name string
}

// 内置属性。
var (
	Alpha        = Property{kind: propAlpha}
	Elevation    = Property{kind: propElevation}
	Rotation     = Property{kind: propRotation}
	RotationX    = Property{kind: propRotationX}
	RotationY    = Property{kind: propRotationY}
	ScaleX       = Property{kind: propScaleX}
	ScaleY       = Property{kind: propScaleY}
	PivotX       = Property{kind: propPivotX}
	PivotY       = Property{kind: propPivotY}
	TranslationX = Property{kind: propTranslationX}
	TranslationY = Property{kind: propTranslationY}
	TranslationZ = Property{kind: propTranslationZ}
	Progress     = Property{kind: propProgress}
	PathRotate   = Property{kind: propPathRotate}
	WaveOffset   = Property{kind: propWaveOffset}
	WavePhase    = Property{kind: propWavePhase}
)

// Custom 返回名为 name 的自定义属性。
func Custom(name string) Property { return Property{kind: propCustom, name: name} }

// Builtin 按固定顺序返回所有内置属性。
func Builtin() []Property {
	out := make([]Property, 0, int(propCustom)-1)
	for k := propAlpha; k < propCustom; k++ {
		out = append(out, Property{kind: k})
	}
	return out
}

// ParseProperty 解析属性名。"rotation" 是 "rotationZ" 的别名，
// "CUSTOM:name" 或 "custom:name" 返回自定义属性。
func ParseProperty(name string) (Property, bool) {
	if rest, ok := strings.CutPrefix(name, "CUSTOM:"); ok {
		return Custom(rest), rest != ""
	}
	if rest, ok := strings.CutPrefix(name, "custom:"); ok {
		return Custom(rest), rest != ""
	}
	if name == "rotation" {
		return Rotation, true
	}
	for k := propAlpha; k < propCustom; k++ {
		if propertyNames[k] == name {
			return Property{kind: k}, true
		}
	}
	return Property{}, false
}

// IsValid 表示不是零值。
func (p Property) IsValid() bool { return p.kind != propNone }

// IsCustom 表示是否为自定义属性。
func (p Property) IsCustom() bool { return p.kind == propCustom }

// CustomName 返回自定义属性名，内置属性返回空串。
func (p Property) CustomName() string { return p.name }

// IsWave 表示属性只用于振荡器参数，不直接写入视图。
func (p Property) IsWave() bool { return p.kind == propWaveOffset || p.kind == propWavePhase }

func (p Property) String() string {
	if p.kind == propCustom {
		return "CUSTOM:" + p.name
	}
	if p.kind < 0 || int(p.kind) >= len(propertyNames) {
		return ""
	}
	return propertyNames[p.kind]
}

// Default 返回视图未设置时的属性值。
func (p Property) Default() float64 {
	switch p.kind {
	case propAlpha, propScaleX, propScaleY:
		return 1
	}
	return 0
}
