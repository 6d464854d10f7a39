package state

import "github.com/ByLCY/constraintkit/layout"

type chainElement struct {
	key               string
	pre, post         float64
	preGone, postGone float64
	weight            float64
}

type chainEnd struct {
	target     string
	anchor     layout.AnchorType
	margin     float64
	goneMargin float64
}

// ChainReference 描述一条水平或垂直链。Apply 把它展开成成员之间的互连，
// 写入各成员的 ConstraintReference。
type ChainReference struct {
	s          *State
	axis       layout.Axis
	elements   []chainElement
	style      layout.ChainStyle
	bias       float64
	start, end *chainEnd
}

// Axis 返回链的方向。
func (c *ChainReference) Axis() layout.Axis { return c.axis }

// Keys 返回成员 key。
func (c *ChainReference) Keys() []string {
	out := make([]string, len(c.elements))
	for i, e := range c.elements {
		out[i] = e.key
	}
	return out
}

// Add 追加成员，margin 为 0。
func (c *ChainReference) Add(keys ...string) *ChainReference {
	for _, k := range keys {
		c.elements = append(c.elements, chainElement{
			key:     k,
			preGone: layout.UnsetGoneMargin, postGone: layout.UnsetGoneMargin,
			weight: layout.UnknownWeight,
		})
	}
	return c
}

func (c *ChainReference) element(key string) *chainElement {
	for i := range c.elements {
		if c.elements[i].key == key {
			return &c.elements[i]
		}
	}
	c.Add(key)
	return &c.elements[len(c.elements)-1]
}

// Margins 设置成员前后的 margin，成员不存在时追加。
func (c *ChainReference) Margins(key string, pre, post float64) *ChainReference {
	e := c.element(key)
	e.pre, e.post = pre, post
	return c
}

// GoneMargins 设置成员前后在邻居 GONE 时使用的 margin。
func (c *ChainReference) GoneMargins(key string, pre, post float64) *ChainReference {
	e := c.element(key)
	e.preGone, e.postGone = pre, post
	return c
}

// Weight 设置成员的链权重。
func (c *ChainReference) Weight(key string, w float64) *ChainReference {
	c.element(key).weight = w
	return c
}

func (c *ChainReference) Style(s layout.ChainStyle) *ChainReference { c.style = s; return c }
func (c *ChainReference) Bias(b float64) *ChainReference            { c.bias = b; return c }

// StartTo 指定首个成员连接的外部目标，默认为 parent 的起点。
func (c *ChainReference) StartTo(target string, anchor layout.AnchorType, margin float64) *ChainReference {
	c.start = &chainEnd{target: target, anchor: anchor, margin: margin, goneMargin: layout.UnsetGoneMargin}
	return c
}

// EndTo 指定最后一个成员连接的外部目标，默认为 parent 的终点。
func (c *ChainReference) EndTo(target string, anchor layout.AnchorType, margin float64) *ChainReference {
	c.end = &chainEnd{target: target, anchor: anchor, margin: margin, goneMargin: layout.UnsetGoneMargin}
	return c
}

func (c *ChainReference) anchors() (begin, end layout.AnchorType) {
	if c.axis == layout.Vertical {
		return layout.AnchorTop, layout.AnchorBottom
	}
	return layout.AnchorLeft, layout.AnchorRight
}

func (c *ChainReference) setLink(r *ConstraintReference, from layout.AnchorType, target string, to layout.AnchorType, margin, gone float64) {
	r.connect(from, target, to)
	r.Margin(margin)
	r.MarginGone(gone)
}

// Apply 按成员顺序单次展开：清除成员在链方向上的连接，首尾连到外部目标
// （未指定时为 parent），相邻成员互相连接，设置权重，样式写在首个成员上，
// bias 不为 0.5 时同样写在首个成员上。
func (c *ChainReference) Apply() {
	if len(c.elements) == 0 {
		return
	}
	begin, end := c.anchors()
	refs := make([]*ConstraintReference, len(c.elements))
	for i, e := range c.elements {
		refs[i] = c.s.Constraints(e.key)
		refs[i].clearAxis(c.axis)
	}

	for i, e := range c.elements {
		ref := refs[i]
		if i == 0 {
			if c.start != nil {
				c.setLink(ref, begin, c.start.target, c.start.anchor, c.start.margin, c.start.goneMargin)
			} else {
				c.setLink(ref, begin, Parent, begin, e.pre, e.preGone)
			}
		} else {
			prevElem, prev := c.elements[i-1], refs[i-1]
			c.setLink(prev, end, e.key, begin, prevElem.post, prevElem.postGone)
			c.setLink(ref, begin, prevElem.key, end, e.pre, e.preGone)
		}
		if e.weight != layout.UnknownWeight {
			ref.weight[c.axis] = e.weight
		}
	}

	lastElem, last := c.elements[len(c.elements)-1], refs[len(refs)-1]
	if c.end != nil {
		c.setLink(last, end, c.end.target, c.end.anchor, c.end.margin, c.end.goneMargin)
	} else {
		c.setLink(last, end, Parent, end, lastElem.post, lastElem.postGone)
	}

	first := refs[0]
	if c.bias != 0.5 {
		first.bias[c.axis] = c.bias
	}
	first.style[c.axis], first.styleSet[c.axis] = c.style, true
}
