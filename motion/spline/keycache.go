package spline

import "math"

type cacheKey struct {
	widget    string
	attribute string
}

// KeyCache 保存跨帧的振荡相位，按 (控件, 属性) 索引。
// 由调用方持有并显式传入，控件移除时调用 Reset。
type KeyCache struct {
	values map[cacheKey][]float64
}

func NewKeyCache() *KeyCache {
	return &KeyCache{values: make(map[cacheKey][]float64)}
}

// FloatValue 返回缓存值，不存在时为 NaN。
func (c *KeyCache) FloatValue(widget, attribute string, index int) float64 {
	if c == nil {
		return math.NaN()
	}
	v, ok := c.values[cacheKey{widget, attribute}]
	if !ok || index >= len(v) {
		return math.NaN()
	}
	return v[index]
}

// SetFloatValue 写入缓存值。
func (c *KeyCache) SetFloatValue(widget, attribute string, index int, value float64) {
	if c == nil {
		return
	}
	k := cacheKey{widget, attribute}
	v := c.values[k]
	for len(v) <= index {
		v = append(v, math.NaN())
	}
	v[index] = value
	c.values[k] = v
}

// Reset 丢弃一个控件的全部缓存。
func (c *KeyCache) Reset(widget string) {
	if c == nil {
		return
	}
	for k := range c.values {
		if k.widget == widget {
			delete(c.values, k)
		}
	}
}

// Len 返回缓存的 (控件, 属性) 数。
func (c *KeyCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}
