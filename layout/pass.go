package layout

import (
	"fmt"
	"math"

	"github.com/ByLCY/constraintkit/solver"
)

// pass 负责一个容器一层子控件的求解。父容器自身的锚点不会被写入，
// 子控件坐标都相对父容器左上角。
type pass struct {
	c        *Container
	p        *Widget
	wrap     [2]bool
	children []*Widget
	sys      *solver.System
	vars     map[AnchorID]*solver.Variable
	chains   [2][]*chain
	inChain  [2]map[WidgetID]bool
	err      error
}

// layoutContainer 求解 p 的直接子控件，然后递归嵌套容器。
// wrap 为 true 的方向由子控件撑开，否则使用 p.size。
func (c *Container) layoutContainer(p *Widget) error {
	wrap := [2]bool{}
	if p.id == 0 {
		for _, axis := range []Axis{Horizontal, Vertical} {
			wrap[axis] = p.dims[axis].Behaviour == WrapContent
			if !wrap[axis] {
				p.size[axis] = p.dims[axis].Size
			}
		}
	}
	if err := c.solveLevel(p, wrap); err != nil {
		return err
	}
	for _, child := range p.Children() {
		if child.kind != KindContainer || child.visibility == Gone {
			continue
		}
		if err := c.layoutContainer(child); err != nil {
			return fmt.Errorf("container %s: %w", child.name, err)
		}
	}
	return nil
}

// measureContainer 以 wrap 方式求解嵌套容器，得到其内容尺寸。
func (c *Container) measureContainer(w *Widget) error {
	wrap := [2]bool{}
	for _, axis := range []Axis{Horizontal, Vertical} {
		if w.dims[axis].Behaviour == Fixed {
			w.size[axis] = w.dims[axis].Size
		} else {
			wrap[axis] = true
		}
	}
	if err := c.solveLevel(w, wrap); err != nil {
		return err
	}
	for _, axis := range []Axis{Horizontal, Vertical} {
		if wrap[axis] {
			w.wrap[axis] = w.size[axis]
		}
	}
	return nil
}

func (c *Container) solveLevel(p *Widget, wrap [2]bool) error {
	ps := &pass{
		c:        c,
		p:        p,
		wrap:     wrap,
		children: p.Children(),
		sys:      solver.NewSystem(),
		vars:     make(map[AnchorID]*solver.Variable),
		inChain:  [2]map[WidgetID]bool{{}, {}},
	}
	for _, child := range ps.children {
		child.ResetFinalResolution()
	}

	// 1. 测量：嵌套的 wrap 容器与自定义 Measurer。
	for _, child := range ps.children {
		if child.visibility == Gone {
			continue
		}
		switch {
		case child.kind == KindContainer && (child.dims[Horizontal].Behaviour == WrapContent || child.dims[Vertical].Behaviour == WrapContent):
			if err := c.measureContainer(child); err != nil {
				return fmt.Errorf("measure %s: %w", child.name, err)
			}
		case child.kind == KindWidget && c.opts.Measurer != nil:
			w, h, baseline := c.opts.Measurer.Measure(child)
			child.SetWrapSize(w, h)
			if baseline > 0 {
				child.SetBaselineDistance(baseline)
			}
		}
	}

	// 2. flow 先把引用的控件连接好，并得到自身的内容尺寸。
	for _, child := range ps.children {
		if child.flow != nil {
			child.flow.measure(ps)
		}
	}

	// 3. 链识别，链成员不参与直接解析。
	for _, axis := range []Axis{Horizontal, Vertical} {
		ps.detectChains(axis)
	}

	// 4. 直接解析，迭代到不动点。
	ps.resolveDirect()

	// 5. 剩余部分交给线性系统。
	ps.buildSystem()
	if ps.err != nil {
		return ps.err
	}
	ps.sys.Minimize()
	ps.writeBack()
	if n := len(ps.sys.Conflicts()); n > 0 {
		c.lastConflicts += n
		for _, con := range ps.sys.Conflicts() {
			c.log.Debug("demoted conflicting constraint", "container", p.name, "row", con.String())
		}
	}
	c.log.Debug("solved level", "container", p.name, "children", len(ps.children), "rows", ps.sys.NumRows())
	return nil
}

// parentValue 返回父容器锚点在本层坐标系中的位置。
func (ps *pass) parentValue(t AnchorType) (float64, bool) {
	switch t {
	case AnchorLeft, AnchorTop:
		return 0, true
	case AnchorRight:
		return ps.p.size[Horizontal], !ps.wrap[Horizontal]
	case AnchorBottom:
		return ps.p.size[Vertical], !ps.wrap[Vertical]
	case AnchorCenterX:
		return ps.p.size[Horizontal] / 2, !ps.wrap[Horizontal]
	case AnchorCenterY:
		return ps.p.size[Vertical] / 2, !ps.wrap[Vertical]
	}
	return 0, false
}

// targetValue 返回已知的目标位置。
func (ps *pass) targetValue(a *Anchor) (float64, bool) {
	if a == nil {
		return 0, false
	}
	if a.owner == ps.p.id {
		return ps.parentValue(a.typ)
	}
	if a.hasFinalValue {
		return a.finalValue, true
	}
	return 0, false
}

// resolveDirect 对尺寸已知且目标已解析的控件直接计算位置。
func (ps *pass) resolveDirect() {
	for changed := true; changed; {
		changed = false
		for _, w := range ps.children {
			for _, axis := range []Axis{Horizontal, Vertical} {
				if w.resolved[axis] || ps.inChain[axis][w.id] {
					continue
				}
				var ok bool
				switch {
				case w.guideline != nil:
					ok = w.guideline.resolve(ps, axis)
				case w.barrier != nil:
					ok = w.barrier.resolve(ps, axis)
				default:
					ok = ps.resolveWidgetAxis(w, axis)
				}
				if ok {
					changed = true
				}
			}
		}
	}
}

func (ps *pass) resolveWidgetAxis(w *Widget, axis Axis) bool {
	size, ok := w.knownSize(axis)
	if !ok {
		return false
	}
	b, e, cx := w.begin(axis), w.end(axis), w.center(axis)
	var start float64
	switch {
	case axis == Vertical && w.Anchor(AnchorBaseline).IsConnected():
		bl := w.Anchor(AnchorBaseline)
		t, ok := ps.targetValue(bl.Target())
		if !ok {
			return false
		}
		start = t + bl.Margin() - w.baseline
	case b.IsConnected() && e.IsConnected():
		tb, okb := ps.targetValue(b.Target())
		te, oke := ps.targetValue(e.Target())
		if !okb || !oke {
			return false
		}
		bias := w.bias[axis]
		start = (tb+b.Margin())*(1-bias) + (te-e.Margin()-size)*bias
	case b.IsConnected():
		tb, ok := ps.targetValue(b.Target())
		if !ok {
			return false
		}
		start = tb + b.Margin()
	case e.IsConnected():
		te, ok := ps.targetValue(e.Target())
		if !ok {
			return false
		}
		start = te - e.Margin() - size
	case cx.IsConnected():
		t, ok := ps.targetValue(cx.Target())
		if !ok {
			return false
		}
		start = t + cx.Margin() - size/2
	default:
		start = w.origin[axis]
	}
	ps.setAxis(w, axis, start, start+size)
	return true
}

// setAxis 写入某一轴的解算结果并标记为已解析。
func (ps *pass) setAxis(w *Widget, axis Axis, begin, end float64) {
	w.begin(axis).SetFinalValue(begin)
	w.end(axis).SetFinalValue(end)
	w.center(axis).SetFinalValue((begin + end) / 2)
	if axis == Vertical {
		w.Anchor(AnchorBaseline).SetFinalValue(begin + w.baseline)
	}
	w.pos[axis] = begin
	w.size[axis] = end - begin
	w.resolved[axis] = true
}

// add 记录第一个错误。
func (ps *pass) add(_ *solver.Constraint, err error) {
	if err != nil && ps.err == nil {
		ps.err = err
	}
}

// variable 返回锚点对应的变量，首次创建时写入定义它的约束。
func (ps *pass) variable(a *Anchor) *solver.Variable {
	if v, ok := ps.vars[a.id]; ok {
		return v
	}
	owner := a.Owner()
	v := ps.sys.CreateVariable(fmt.Sprintf("%s.%s", owner.name, a.typ))
	ps.vars[a.id] = v

	if owner.id == ps.p.id {
		ps.defineParentVariable(a, v)
		return v
	}
	if a.hasFinalValue {
		ps.add(ps.sys.AddEqualityConstant(v, a.finalValue, solver.StrengthFixed))
		return v
	}
	switch a.typ {
	case AnchorCenterX, AnchorCenterY:
		axis := Horizontal
		if a.typ == AnchorCenterY {
			axis = Vertical
		}
		l, r := ps.variable(owner.begin(axis)), ps.variable(owner.end(axis))
		ps.add(ps.sys.AddConstraint(solver.Expr(0).Plus(v, 2).Plus(l, -1).Plus(r, -1), solver.OpEQ, solver.StrengthFixed))
	case AnchorBaseline:
		ps.add(ps.sys.AddEquality(v, ps.variable(owner.Anchor(AnchorTop)), owner.baseline, solver.StrengthFixed))
	case AnchorCenter:
		// CENTER 只作为连接展开的记号，位置跟随 centerX。
		ps.add(ps.sys.AddEquality(v, ps.variable(owner.Anchor(AnchorCenterX)), 0, solver.StrengthFixed))
	}
	return v
}

func (ps *pass) defineParentVariable(a *Anchor, v *solver.Variable) {
	switch a.typ {
	case AnchorLeft, AnchorTop:
		ps.add(ps.sys.AddEqualityConstant(v, 0, solver.StrengthFixed))
	case AnchorRight, AnchorBottom:
		axis := Horizontal
		if a.typ == AnchorBottom {
			axis = Vertical
		}
		if ps.wrap[axis] {
			ps.add(ps.sys.AddGreaterThan(v, ps.variable(ps.p.begin(axis)), 0, solver.StrengthFixed))
			ps.add(ps.sys.AddEqualityConstant(v, 0, solver.StrengthLow))
		} else {
			ps.add(ps.sys.AddEqualityConstant(v, ps.p.size[axis], solver.StrengthFixed))
		}
	case AnchorCenterX, AnchorCenterY:
		axis := Horizontal
		if a.typ == AnchorCenterY {
			axis = Vertical
		}
		l, r := ps.variable(ps.p.begin(axis)), ps.variable(ps.p.end(axis))
		ps.add(ps.sys.AddConstraint(solver.Expr(0).Plus(v, 2).Plus(l, -1).Plus(r, -1), solver.OpEQ, solver.StrengthFixed))
	default:
		ps.add(ps.sys.AddEqualityConstant(v, 0, solver.StrengthFixed))
	}
}

func (ps *pass) buildSystem() {
	for _, axis := range []Axis{Horizontal, Vertical} {
		// 父容器两端总是需要变量，wrap 时用于回写尺寸。
		ps.variable(ps.p.begin(axis))
		ps.variable(ps.p.end(axis))
	}
	for _, w := range ps.children {
		for _, axis := range []Axis{Horizontal, Vertical} {
			if w.resolved[axis] {
				ps.variable(w.begin(axis))
				ps.variable(w.end(axis))
				continue
			}
			switch {
			case w.guideline != nil:
				w.guideline.addToSystem(ps, axis)
			case w.barrier != nil:
				w.barrier.addToSystem(ps, axis)
			default:
				ps.addWidgetAxis(w, axis)
			}
		}
		ps.addRatio(w)
	}
	for _, axis := range []Axis{Horizontal, Vertical} {
		for _, ch := range ps.chains[axis] {
			ch.addToSystem(ps)
		}
	}
	ps.addWrapExtents()
}

func (ps *pass) addWidgetAxis(w *Widget, axis Axis) {
	b, e := w.begin(axis), w.end(axis)
	l, r := ps.variable(b), ps.variable(e)
	d := w.dims[axis]
	pb, pe := ps.variable(ps.p.begin(axis)), ps.variable(ps.p.end(axis))
	derived, hasRatio := w.ratioDerivedAxis()
	ratioDriven := hasRatio && derived == axis

	if size, ok := w.knownSize(axis); ok {
		ps.add(ps.sys.AddEquality(r, l, size, solver.StrengthFixed))
	} else if d.Behaviour == MatchParent {
		ps.add(ps.sys.AddEquality(l, pb, b.Margin(), solver.StrengthFixed))
		ps.add(ps.sys.AddEquality(r, pe, -e.Margin(), solver.StrengthFixed))
		return
	} else {
		ps.add(ps.sys.AddGreaterThan(r, l, math.Max(d.Min, 0), solver.StrengthFixed))
		if d.Max > 0 {
			ps.add(ps.sys.AddLowerThan(r, l, d.Max, solver.StrengthFixed))
		}
		switch {
		case ratioDriven:
		case d.MatchDefault == MatchPercent:
			ps.add(ps.sys.AddRatio(r, l, pe, pb, d.Percent, solver.StrengthFixed))
		case d.MatchDefault == MatchWrap:
			ps.add(ps.sys.AddLowerThan(r, l, w.wrap[axis], solver.StrengthFixed))
			ps.add(ps.sys.AddEquality(r, l, w.wrap[axis], solver.StrengthEquality))
		default:
			ps.add(ps.sys.AddEquality(r, l, w.wrap[axis], solver.StrengthLow))
		}
	}

	if ps.inChain[axis][w.id] {
		return
	}
	ps.addConnections(w, axis, d.Behaviour == MatchConstraint, ratioDriven)
}

func (ps *pass) addConnections(w *Widget, axis Axis, match, ratioDriven bool) {
	b, e, cx := w.begin(axis), w.end(axis), w.center(axis)
	l, r := ps.variable(b), ps.variable(e)
	if axis == Vertical {
		if bl := w.Anchor(AnchorBaseline); bl.IsConnected() {
			ps.add(ps.sys.AddEquality(ps.variable(bl), ps.variable(bl.Target()), bl.Margin(), solver.StrengthFixed))
			return
		}
	}
	switch {
	case b.IsConnected() && e.IsConnected():
		tb, te := ps.variable(b.Target()), ps.variable(e.Target())
		m1, m2 := b.Margin(), e.Margin()
		bias := w.bias[axis]
		switch {
		case match && !ratioDriven && w.dims[axis].MatchDefault == MatchSpread:
			ps.add(ps.sys.AddEquality(l, tb, m1, solver.StrengthCentering))
			ps.add(ps.sys.AddEquality(r, te, -m2, solver.StrengthCentering))
			ps.add(ps.sys.AddCentering(l, tb, m1, bias, te, r, m2, solver.StrengthEquality))
		case match:
			ps.add(ps.sys.AddGreaterThan(l, tb, m1, solver.StrengthFixed))
			ps.add(ps.sys.AddLowerThan(r, te, -m2, solver.StrengthFixed))
			ps.add(ps.sys.AddCentering(l, tb, m1, bias, te, r, m2, solver.StrengthCentering))
		default:
			ps.add(ps.sys.AddCentering(l, tb, m1, bias, te, r, m2, solver.StrengthCentering))
		}
	case b.IsConnected():
		ps.add(ps.sys.AddEquality(l, ps.variable(b.Target()), b.Margin(), solver.StrengthFixed))
	case e.IsConnected():
		ps.add(ps.sys.AddEquality(r, ps.variable(e.Target()), -e.Margin(), solver.StrengthFixed))
	case cx.IsConnected():
		ps.add(ps.sys.AddEquality(ps.variable(cx), ps.variable(cx.Target()), cx.Margin(), solver.StrengthFixed))
	default:
		ps.add(ps.sys.AddEquality(l, ps.variable(ps.p.begin(axis)), w.origin[axis], solver.StrengthFixed))
	}
}

// addRatio 添加宽高比约束：width = ratio * height。
func (ps *pass) addRatio(w *Widget) {
	axis, ok := w.ratioDerivedAxis()
	if !ok || w.visibility == Gone || w.resolved[axis] {
		return
	}
	l, r := ps.variable(w.begin(Horizontal)), ps.variable(w.end(Horizontal))
	t, b := ps.variable(w.begin(Vertical)), ps.variable(w.end(Vertical))
	if axis == Horizontal {
		ps.add(ps.sys.AddRatio(r, l, b, t, w.ratio, solver.StrengthFixed))
	} else {
		ps.add(ps.sys.AddRatio(b, t, r, l, 1/w.ratio, solver.StrengthFixed))
	}
}

// addWrapExtents 让 wrap 父容器包住所有子控件。
func (ps *pass) addWrapExtents() {
	for _, axis := range []Axis{Horizontal, Vertical} {
		if !ps.wrap[axis] {
			continue
		}
		pb, pe := ps.variable(ps.p.begin(axis)), ps.variable(ps.p.end(axis))
		for _, w := range ps.children {
			if w.visibility == Gone || w.isHelper() {
				continue
			}
			b, e := w.begin(axis), w.end(axis)
			endMargin, beginMargin := 0.0, 0.0
			if t := e.Target(); t != nil && t.owner == ps.p.id {
				endMargin = e.Margin()
			}
			if t := b.Target(); t != nil && t.owner == ps.p.id {
				beginMargin = b.Margin()
			}
			ps.add(ps.sys.AddGreaterThan(pe, ps.variable(e), endMargin, solver.StrengthBarrier))
			ps.add(ps.sys.AddGreaterThan(ps.variable(b), pb, beginMargin, solver.StrengthBarrier))
		}
	}
}

func (ps *pass) writeBack() {
	for _, axis := range []Axis{Horizontal, Vertical} {
		if ps.wrap[axis] {
			ps.p.size[axis] = ps.variable(ps.p.end(axis)).Value() - ps.variable(ps.p.begin(axis)).Value()
		}
	}
	for _, w := range ps.children {
		for _, axis := range []Axis{Horizontal, Vertical} {
			if w.resolved[axis] {
				continue
			}
			begin := ps.variable(w.begin(axis)).Value()
			end := ps.variable(w.end(axis)).Value()
			ps.setAxis(w, axis, begin, end)
			w.resolved[axis] = false
		}
	}
}
