package state

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/dsl"
	"github.com/ByLCY/constraintkit/layout"
)

// ParseConstraintSet 把 CL 文档写入 s。
//
// 顶层的每个 key 是一个控件；带 type 字段的 key 是辅助对象
// （hChain、vChain、hGuideline、vGuideline、barrier、hFlow、vFlow、container）。
// Variables 声明可在 margin 等数值处按名字引用的常量，Header 被忽略。
func ParseConstraintSet(content string, s *State) error {
	doc, err := dsl.ParseString(content)
	if err != nil {
		return fmt.Errorf("parse constraint set: %w", err)
	}
	return ApplyDocument(doc, s)
}

// ApplyDocument 与 ParseConstraintSet 相同，输入是已解析的文档。
func ApplyDocument(doc *dsl.Object, s *State) error {
	p := &clParser{s: s, vars: map[string]float64{}}
	if vars := doc.GetObjectOrNull("Variables"); vars != nil {
		if err := p.variables(vars); err != nil {
			return err
		}
	}
	// 容器要先于子控件声明，ChildOf 才能找到它们。
	for _, k := range doc.Keys() {
		if obj, ok := k.Value.(*dsl.Object); ok && obj.GetStringOrNull("type") == "container" {
			s.Container(k.Name)
		}
	}
	for _, k := range doc.Keys() {
		switch k.Name {
		case "Variables", "Header":
			continue
		}
		obj, ok := k.Value.(*dsl.Object)
		if !ok {
			return fmt.Errorf("%s: expected object, got %s", k.Name, k.Value.ToJSON())
		}
		if err := p.entry(k.Name, obj); err != nil {
			return fmt.Errorf("%s: %w", k.Name, err)
		}
	}
	return nil
}

type clParser struct {
	s    *State
	vars map[string]float64
}

func (p *clParser) variables(vars *dsl.Object) error {
	for _, k := range vars.Keys() {
		n, ok := k.Value.(*dsl.Number)
		if !ok {
			return fmt.Errorf("Variables: %s must be a number", k.Name)
		}
		p.vars[k.Name] = n.Value
	}
	return nil
}

// float 解析数值，允许直接写变量名。
func (p *clParser) float(el dsl.Element) (float64, error) {
	switch v := el.(type) {
	case *dsl.Number:
		return v.Value, nil
	case *dsl.String, *dsl.Token:
		name := v.Content()
		if f, ok := p.vars[name]; ok {
			return f, nil
		}
		if f, err := strconv.ParseFloat(name, 64); err == nil {
			return f, nil
		}
		return 0, fmt.Errorf("unknown variable %q", name)
	case nil:
		return 0, fmt.Errorf("missing number")
	}
	return 0, fmt.Errorf("expected number, got %s", el.ToJSON())
}

func (p *clParser) optionalFloat(arr *dsl.Array, i int, def float64) (float64, error) {
	if i >= arr.Len() {
		return def, nil
	}
	el, err := arr.At(i)
	if err != nil {
		return 0, err
	}
	return p.float(el)
}

func (p *clParser) entry(key string, obj *dsl.Object) error {
	if key == Parent {
		return p.parent(obj)
	}
	switch typ := obj.GetStringOrNull("type"); typ {
	case "":
		return p.widget(p.s.Constraints(key), obj)
	case "container":
		return p.widget(p.s.Container(key), obj)
	case "hChain":
		return p.chain(p.s.HorizontalChain(), obj)
	case "vChain":
		return p.chain(p.s.VerticalChain(), obj)
	case "hGuideline":
		return p.guideline(p.s.HorizontalGuideline(key), obj)
	case "vGuideline":
		return p.guideline(p.s.VerticalGuideline(key), obj)
	case "barrier":
		return p.barrier(key, obj)
	case "hFlow":
		return p.flow(p.s.HorizontalFlow(key), obj)
	case "vFlow":
		return p.flow(p.s.VerticalFlow(key), obj)
	default:
		return fmt.Errorf("unknown type %q", typ)
	}
}

func (p *clParser) parent(obj *dsl.Object) error {
	if el := obj.GetOrNull("width"); el != nil {
		d, err := p.dimension(el)
		if err != nil {
			return fmt.Errorf("width: %w", err)
		}
		p.s.Width(d)
	}
	if el := obj.GetOrNull("height"); el != nil {
		d, err := p.dimension(el)
		if err != nil {
			return fmt.Errorf("height: %w", err)
		}
		p.s.Height(d)
	}
	return nil
}

// dimension 接受数字、字符串，或 {value, min, max} 对象。
func (p *clParser) dimension(el dsl.Element) (Dimension, error) {
	switch v := el.(type) {
	case *dsl.Number:
		return Fixed(v.Value), nil
	case *dsl.String, *dsl.Token:
		if f, ok := p.vars[v.Content()]; ok {
			return Fixed(f), nil
		}
		return ParseDimension(v.Content())
	case *dsl.Object:
		value, err := v.Get("value")
		if err != nil {
			return Dimension{}, err
		}
		d, err := p.dimension(value)
		if err != nil {
			return Dimension{}, err
		}
		if m := v.GetOrNull("min"); m != nil {
			f, err := p.float(m)
			if err != nil {
				return Dimension{}, fmt.Errorf("min: %w", err)
			}
			d = d.AtLeast(f)
		}
		if m := v.GetOrNull("max"); m != nil {
			f, err := p.float(m)
			if err != nil {
				return Dimension{}, fmt.Errorf("max: %w", err)
			}
			d = d.AtMost(f)
		}
		return d, nil
	}
	return Dimension{}, fmt.Errorf("invalid dimension %s", el.ToJSON())
}

var anchorKeys = []string{"start", "end", "left", "right", "top", "bottom", "baseline"}

func (p *clParser) widget(r *ConstraintReference, obj *dsl.Object) error {
	for _, name := range obj.Names() {
		el := obj.GetOrNull(name)
		if err := p.widgetAttribute(r, name, el); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (p *clParser) widgetAttribute(r *ConstraintReference, name string, el dsl.Element) error {
	for _, a := range anchorKeys {
		if name == a {
			return p.anchor(r, name, el)
		}
	}
	switch name {
	case "type":
		return nil
	case "width", "height":
		d, err := p.dimension(el)
		if err != nil {
			return err
		}
		if name == "width" {
			r.Width(d)
		} else {
			r.Height(d)
		}
	case "center":
		r.Centered(el.Content())
	case "centerHorizontally":
		r.CenterHorizontally(el.Content())
	case "centerVertically":
		r.CenterVertically(el.Content())
	case "visibility":
		v, err := parseVisibility(el.Content())
		if err != nil {
			return err
		}
		r.Visibility(v)
	case "hBias", "vBias", "hWeight", "vWeight", "baselineDistance":
		f, err := p.float(el)
		if err != nil {
			return err
		}
		switch name {
		case "hBias":
			r.HorizontalBias(f)
		case "vBias":
			r.VerticalBias(f)
		case "hWeight":
			r.HorizontalWeight(f)
		case "vWeight":
			r.VerticalWeight(f)
		default:
			r.BaselineDistance(f)
		}
	case "dimensionRatio":
		r.DimensionRatio(el.Content())
	case "hChainStyle", "vChainStyle":
		style, err := layout.ParseChainStyle(el.Content())
		if err != nil {
			return err
		}
		if name == "hChainStyle" {
			r.HorizontalChainStyle(style)
		} else {
			r.VerticalChainStyle(style)
		}
	case "contentSize":
		arr, ok := el.(*dsl.Array)
		if !ok || arr.Len() != 2 {
			return fmt.Errorf("expected [width, height]")
		}
		w, err := p.optionalFloat(arr, 0, 0)
		if err != nil {
			return err
		}
		h, err := p.optionalFloat(arr, 1, 0)
		if err != nil {
			return err
		}
		r.WrapSize(w, h)
	case "parent":
		r.ChildOf(el.Content())
	case "custom":
		obj, ok := el.(*dsl.Object)
		if !ok {
			return fmt.Errorf("expected object")
		}
		for _, k := range obj.Keys() {
			r.Custom(binding.CustomFromValue(k.Name, customValue(k.Value)))
		}
	default:
		prop, ok := binding.ParseProperty(name)
		if !ok {
			return fmt.Errorf("unknown attribute")
		}
		f, err := p.float(el)
		if err != nil {
			return err
		}
		r.Property(prop, f)
	}
	return nil
}

// anchor 解析 [target, anchor, margin?, goneMargin?]。
func (p *clParser) anchor(r *ConstraintReference, name string, el dsl.Element) error {
	arr, ok := el.(*dsl.Array)
	if !ok || arr.Len() < 2 {
		return fmt.Errorf("expected [target, anchor, margin?, goneMargin?]")
	}
	target, err := arr.StringAt(0)
	if err != nil {
		return err
	}
	toName, err := arr.StringAt(1)
	if err != nil {
		return err
	}
	from, _ := layout.ParseAnchorType(name)
	to, ok := layout.ParseAnchorType(toName)
	if !ok {
		return fmt.Errorf("unknown anchor %q", toName)
	}
	margin, err := p.optionalFloat(arr, 2, 0)
	if err != nil {
		return err
	}
	gone, err := p.optionalFloat(arr, 3, layout.UnsetGoneMargin)
	if err != nil {
		return err
	}
	r.connect(from, target, to).Margin(margin).MarginGone(gone)
	return nil
}

func parseVisibility(s string) (layout.Visibility, error) {
	switch strings.ToLower(s) {
	case "visible":
		return layout.Visible, nil
	case "invisible":
		return layout.Invisible, nil
	case "gone":
		return layout.Gone, nil
	}
	return layout.Visible, fmt.Errorf("unknown visibility %q", s)
}

func customValue(el dsl.Element) any {
	switch v := el.(type) {
	case *dsl.Number:
		if v.Value == math.Trunc(v.Value) && !strings.ContainsAny(v.Raw, ".eE") {
			return int(v.Value)
		}
		return v.Value
	case *dsl.Token:
		if b, ok := v.Bool(); ok {
			return b
		}
		return v.Value
	}
	return el.Content()
}

// chainEndpoint 解析 [target, anchor, margin?]。
func (p *clParser) chainEndpoint(el dsl.Element) (string, layout.AnchorType, float64, error) {
	arr, ok := el.(*dsl.Array)
	if !ok || arr.Len() < 2 {
		return "", layout.AnchorNone, 0, fmt.Errorf("expected [target, anchor, margin?]")
	}
	target, err := arr.StringAt(0)
	if err != nil {
		return "", layout.AnchorNone, 0, err
	}
	anchorName, err := arr.StringAt(1)
	if err != nil {
		return "", layout.AnchorNone, 0, err
	}
	to, ok := layout.ParseAnchorType(anchorName)
	if !ok {
		return "", layout.AnchorNone, 0, fmt.Errorf("unknown anchor %q", anchorName)
	}
	margin, err := p.optionalFloat(arr, 2, 0)
	return target, to, margin, err
}

// chain 解析 contains（成员为 key 或 [key, pre, post, preGone, postGone]）、
// start、end、style 与 bias。
func (p *clParser) chain(c *ChainReference, obj *dsl.Object) error {
	contains, err := obj.GetArray("contains")
	if err != nil {
		return err
	}
	for i := 0; i < contains.Len(); i++ {
		el, _ := contains.At(i)
		member, ok := el.(*dsl.Array)
		if !ok {
			c.Add(el.Content())
			continue
		}
		key, err := member.StringAt(0)
		if err != nil {
			return err
		}
		var m [4]float64
		for j := range m {
			def := 0.0
			if j >= 2 {
				def = layout.UnsetGoneMargin
			}
			if m[j], err = p.optionalFloat(member, j+1, def); err != nil {
				return fmt.Errorf("contains[%d]: %w", i, err)
			}
		}
		c.Margins(key, m[0], m[1]).GoneMargins(key, m[2], m[3])
	}
	if el := obj.GetOrNull("start"); el != nil {
		target, to, margin, err := p.chainEndpoint(el)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		c.StartTo(target, to, margin)
	}
	if el := obj.GetOrNull("end"); el != nil {
		target, to, margin, err := p.chainEndpoint(el)
		if err != nil {
			return fmt.Errorf("end: %w", err)
		}
		c.EndTo(target, to, margin)
	}
	if s := obj.GetStringOrNull("style"); s != "" {
		style, err := layout.ParseChainStyle(s)
		if err != nil {
			return err
		}
		c.Style(style)
	}
	if el := obj.GetOrNull("bias"); el != nil {
		b, err := p.float(el)
		if err != nil {
			return fmt.Errorf("bias: %w", err)
		}
		c.Bias(b)
	}
	return nil
}

func (p *clParser) guideline(g *GuidelineReference, obj *dsl.Object) error {
	for _, name := range []string{"percent", "begin", "start", "end"} {
		el := obj.GetOrNull(name)
		if el == nil {
			continue
		}
		f, err := p.float(el)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		switch name {
		case "percent":
			g.Percent(f)
		case "end":
			g.End(f)
		default:
			g.Begin(f)
		}
		return nil
	}
	return fmt.Errorf("guideline needs one of percent, begin or end")
}

func (p *clParser) barrier(key string, obj *dsl.Object) error {
	dir, err := obj.GetString("direction")
	if err != nil {
		return err
	}
	bt, err := layout.ParseBarrierType(dir)
	if err != nil {
		return err
	}
	b := p.s.Barrier(key, bt)
	if el := obj.GetOrNull("margin"); el != nil {
		m, err := p.float(el)
		if err != nil {
			return fmt.Errorf("margin: %w", err)
		}
		b.BarrierMargin(m)
	}
	b.AllowsGoneWidget(obj.GetBooleanOrDefault("allowsGoneWidget", true))
	contains, err := obj.GetArray("contains")
	if err != nil {
		return err
	}
	for i := 0; i < contains.Len(); i++ {
		k, err := contains.StringAt(i)
		if err != nil {
			return err
		}
		b.Add(k)
	}
	return nil
}

func (p *clParser) flow(f *FlowReference, obj *dsl.Object) error {
	contains, err := obj.GetArray("contains")
	if err != nil {
		return err
	}
	for i := 0; i < contains.Len(); i++ {
		k, err := contains.StringAt(i)
		if err != nil {
			return err
		}
		f.Add(k)
	}
	if s := obj.GetStringOrNull("wrap"); s != "" {
		mode, err := layout.ParseWrapMode(s)
		if err != nil {
			return err
		}
		f.WrapMode(mode)
	}
	var hGap, vGap float64
	if el := obj.GetOrNull("hGap"); el != nil {
		if hGap, err = p.float(el); err != nil {
			return fmt.Errorf("hGap: %w", err)
		}
	}
	if el := obj.GetOrNull("vGap"); el != nil {
		if vGap, err = p.float(el); err != nil {
			return fmt.Errorf("vGap: %w", err)
		}
	}
	f.Gaps(hGap, vGap)
	if obj.Has("maxElement") {
		n, err := obj.GetInt("maxElement")
		if err != nil {
			return err
		}
		f.MaxElementsWrap(n)
	}
	style, bias := layout.ChainSpread, 0.5
	if s := obj.GetStringOrNull("flowStyle"); s != "" {
		if style, err = layout.ParseChainStyle(s); err != nil {
			return err
		}
	}
	if el := obj.GetOrNull("flowBias"); el != nil {
		if bias, err = p.float(el); err != nil {
			return fmt.Errorf("flowBias: %w", err)
		}
	}
	f.FlowStyle(style, bias)
	return p.widget(f.ConstraintReference, without(obj, "type", "contains", "wrap", "hGap", "vGap", "maxElement", "flowStyle", "flowBias"))
}

// without 返回去掉若干 key 的浅拷贝。
func without(obj *dsl.Object, names ...string) *dsl.Object {
	out := dsl.NewObject()
	for _, k := range obj.Keys() {
		skip := false
		for _, n := range names {
			if k.Name == n {
				skip = true
				break
			}
		}
		if !skip {
			out.Put(k)
		}
	}
	return out
}
