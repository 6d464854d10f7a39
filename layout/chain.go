package layout

import "github.com/ByLCY/constraintkit/solver"

// chain 是通过首尾互相连接识别出的一组控件。
type chain struct {
	axis    Axis
	members []*Widget
}

func (ch *chain) head() *Widget { return ch.members[0] }

// chainNext 返回通过 end↔begin 互连的下一个兄弟控件。
func chainNext(w *Widget, axis Axis) *Widget {
	e := w.end(axis)
	t := e.Target()
	if t == nil || t.typ != w.begin(axis).typ || t.target != e.id {
		return nil
	}
	next := t.Owner()
	if next == nil || next.parent != w.parent || next.isHelper() {
		return nil
	}
	return next
}

func chainPrev(w *Widget, axis Axis) *Widget {
	b := w.begin(axis)
	t := b.Target()
	if t == nil || t.typ != w.end(axis).typ || t.target != b.id {
		return nil
	}
	prev := t.Owner()
	if prev == nil || prev.parent != w.parent {
		return nil
	}
	return prev
}

// detectChains 找出以 head 开头的链，head 的 begin 不是互连。
func (ps *pass) detectChains(axis Axis) {
	for _, w := range ps.children {
		if w.isHelper() || ps.inChain[axis][w.id] {
			continue
		}
		if chainPrev(w, axis) != nil || chainNext(w, axis) == nil {
			continue
		}
		ch := &chain{axis: axis, members: []*Widget{w}}
		seen := map[WidgetID]bool{w.id: true}
		for cur := chainNext(w, axis); cur != nil && !seen[cur.id]; cur = chainNext(cur, axis) {
			seen[cur.id] = true
			ch.members = append(ch.members, cur)
		}
		for _, m := range ch.members {
			ps.inChain[axis][m.id] = true
		}
		ps.chains[axis] = append(ps.chains[axis], ch)
		ps.c.log.Debug("chain detected", "axis", axis, "head", w.name, "size", len(ch.members))
	}
}

// Chains 返回根容器下当前的链，每条链按成员名称列出。
func (c *Container) Chains(axis Axis) [][]string {
	var out [][]string
	for _, w := range c.Root().Children() {
		if w.isHelper() || chainPrev(w, axis) != nil || chainNext(w, axis) == nil {
			continue
		}
		names := []string{w.name}
		seen := map[WidgetID]bool{w.id: true}
		for cur := chainNext(w, axis); cur != nil && !seen[cur.id]; cur = chainNext(cur, axis) {
			seen[cur.id] = true
			names = append(names, cur.name)
		}
		out = append(out, names)
	}
	return out
}

func (ch *chain) addToSystem(ps *pass) {
	axis := ch.axis
	head := ch.head()
	style := head.chainStyle[axis]
	bias := head.bias[axis]
	first, last := ch.members[0], ch.members[len(ch.members)-1]
	sys := ps.sys

	hasMatch := false
	for _, m := range ch.members {
		if m.visibility != Gone && m.dims[axis].Behaviour == MatchConstraint {
			hasMatch = true
		}
	}
	weighted := hasMatch && style != ChainPacked

	// gaps 保存 begin - end - margin 表达式，spread 时要求相等。
	var gaps []solver.Expression

	// 内部连接。
	for i := 0; i+1 < len(ch.members); i++ {
		prev, next := ch.members[i], ch.members[i+1]
		pe, nb := ps.variable(prev.end(axis)), ps.variable(next.begin(axis))
		margin := prev.end(axis).Margin() + next.begin(axis).Margin()
		glued := weighted || style == ChainPacked || prev.visibility == Gone || next.visibility == Gone
		if glued {
			ps.add(sys.AddEquality(nb, pe, margin, solver.StrengthFixed))
			continue
		}
		ps.add(sys.AddGreaterThan(nb, pe, margin, solver.StrengthFixed))
		gaps = append(gaps, solver.Expr(-margin).Plus(nb, 1).Plus(pe, -1))
	}

	fb, le := first.begin(axis), last.end(axis)
	fl, lr := ps.variable(fb), ps.variable(le)
	var tb, te *solver.Variable
	if fb.IsConnected() {
		tb = ps.variable(fb.Target())
	}
	if le.IsConnected() {
		te = ps.variable(le.Target())
	}
	m1, m2 := fb.Margin(), le.Margin()

	switch {
	case tb == nil && te == nil:
		ps.add(sys.AddEquality(fl, ps.variable(ps.p.begin(axis)), first.origin[axis], solver.StrengthFixed))
	case tb == nil:
		ps.add(sys.AddEquality(lr, te, -m2, solver.StrengthFixed))
	case te == nil:
		ps.add(sys.AddEquality(fl, tb, m1, solver.StrengthFixed))
	case weighted || style == ChainSpreadInside:
		ps.add(sys.AddEquality(fl, tb, m1, solver.StrengthFixed))
		ps.add(sys.AddEquality(lr, te, -m2, solver.StrengthFixed))
	case style == ChainPacked:
		ps.add(sys.AddCentering(fl, tb, m1, bias, te, lr, m2, solver.StrengthCentering))
	default:
		ps.add(sys.AddGreaterThan(fl, tb, m1, solver.StrengthFixed))
		ps.add(sys.AddLowerThan(lr, te, -m2, solver.StrengthFixed))
		lead := solver.Expr(-m1).Plus(fl, 1).Plus(tb, -1)
		tail := solver.Expr(-m2).Plus(te, 1).Plus(lr, -1)
		gaps = append([]solver.Expression{lead}, append(gaps, tail)...)
	}

	if !weighted && tb != nil && te != nil && style != ChainPacked {
		for i := 0; i+1 < len(gaps); i++ {
			ps.add(sys.AddConstraint(subtract(gaps[i], gaps[i+1]), solver.OpEQ, solver.StrengthCentering))
		}
	}

	if weighted {
		ch.addWeights(ps)
	}
}

// addWeights 按权重分配 MATCH_CONSTRAINT 成员的尺寸，未设置的权重按 1 处理。
// 每个成员只与前一个匹配成员建立比例，行保持稀疏。
func (ch *chain) addWeights(ps *pass) {
	axis := ch.axis
	var prev *Widget
	var prevWeight float64
	for _, m := range ch.members {
		if m.visibility == Gone || m.dims[axis].Behaviour != MatchConstraint {
			continue
		}
		w := m.weight[axis]
		if w == UnknownWeight {
			w = 1
		}
		if prev != nil {
			// size_m * prevWeight = size_prev * w
			ps.add(ps.sys.AddProportion(
				ps.variable(m.end(axis)), ps.variable(m.begin(axis)), prevWeight,
				ps.variable(prev.end(axis)), ps.variable(prev.begin(axis)), w,
				solver.StrengthHighest))
		}
		prev, prevWeight = m, w
	}
}

func subtract(a, b solver.Expression) solver.Expression {
	out := solver.Expr(a.Constant - b.Constant)
	for _, t := range a.Terms {
		out = out.Plus(t.Variable, t.Coefficient)
	}
	for _, t := range b.Terms {
		out = out.Plus(t.Variable, -t.Coefficient)
	}
	return out
}
