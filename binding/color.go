package binding

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 颜色以 ARGB8888 存储，插值在线性空间进行（gamma 2.2）。
const gamma = 2.2

// Clamp 把 c 限制在 [0, 255]，不使用分支。
func Clamp(c int32) int32 {
	c &= ^(c >> 31)
	c -= 255
	c &= c >> 31
	c += 255
	return c
}

// PackARGB 把四个分量打包成 ARGB8888，分量会先被限制到 [0, 255]。
func PackARGB(a, r, g, b int32) uint32 {
	return uint32(Clamp(a))<<24 | uint32(Clamp(r))<<16 | uint32(Clamp(g))<<8 | uint32(Clamp(b))
}

// UnpackARGB 拆出四个分量。
func UnpackARGB(c uint32) (a, r, g, b int32) {
	return int32(c >> 24 & 0xff), int32(c >> 16 & 0xff), int32(c >> 8 & 0xff), int32(c & 0xff)
}

// ToLinear 返回 {r, g, b, a}，rgb 经过 gamma 展开，a 线性映射到 [0, 1]。
func ToLinear(c uint32) [4]float64 {
	a, r, g, b := UnpackARGB(c)
	return [4]float64{
		math.Pow(float64(r)/255, gamma),
		math.Pow(float64(g)/255, gamma),
		math.Pow(float64(b)/255, gamma),
		float64(a) / 255,
	}
}

// FromLinear 是 ToLinear 的逆过程，v 至少有四个元素。
// 外推得到的通道先截到 [0, 1]，NaN 视为 0。
func FromLinear(v []float64) uint32 {
	r := int32(math.Pow(unit(v[0]), 1/gamma) * 255)
	g := int32(math.Pow(unit(v[1]), 1/gamma) * 255)
	b := int32(math.Pow(unit(v[2]), 1/gamma) * 255)
	a := int32(unit(v[3]) * 255)
	return PackARGB(a, r, g, b)
}

func unit(x float64) float64 {
	switch {
	case math.IsNaN(x), x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	return x
}

// ParseColor 解析 #RGB、#RRGGBB 与 #AARRGGBB，没有 alpha 时为不透明。
func ParseColor(s string) (uint32, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok {
		return 0, fmt.Errorf("color %q: missing '#'", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	switch len(hex) {
	case 6:
		return 0xff000000 | uint32(v), nil
	case 8:
		return uint32(v), nil
	}
	return 0, fmt.Errorf("color %q: expected 3, 6 or 8 hex digits", s)
}

// FormatColor 输出 #AARRGGBB。
func FormatColor(c uint32) string { return fmt.Sprintf("#%08X", c) }
