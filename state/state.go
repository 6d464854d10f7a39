package state

import (
	"fmt"

	"github.com/ByLCY/constraintkit/layout"
)

// Parent 是根容器的保留 key。
const Parent = layout.ParentName

// State 以字符串 key 收集控件与辅助对象的约束，Apply 时一次性构建
// layout.Container。引用按首次出现的顺序保存，构建结果因此是确定的。
type State struct {
	refs       map[string]*ConstraintReference
	order      []string
	chains     []*ChainReference
	guidelines map[string]*GuidelineReference
	barriers   map[string]*BarrierReference
	flows      map[string]*FlowReference
}

// New 创建只包含 parent 的 State，parent 默认 WRAP_CONTENT。
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset 清空所有引用。
func (s *State) Reset() {
	s.refs = make(map[string]*ConstraintReference)
	s.order = nil
	s.chains = nil
	s.guidelines = make(map[string]*GuidelineReference)
	s.barriers = make(map[string]*BarrierReference)
	s.flows = make(map[string]*FlowReference)
	s.refs[Parent] = newReference(s, Parent, refContainer)
}

func (s *State) reference(key string, kind refKind) *ConstraintReference {
	if r, ok := s.refs[key]; ok {
		return r
	}
	r := newReference(s, key, kind)
	s.refs[key] = r
	s.order = append(s.order, key)
	return r
}

// Constraints 返回 key 对应的引用，不存在时创建。
func (s *State) Constraints(key string) *ConstraintReference {
	return s.reference(key, refWidget)
}

// Reference 返回已存在的引用，不存在时为 nil。
func (s *State) Reference(key string) *ConstraintReference { return s.refs[key] }

// Keys 按声明顺序返回除 parent 以外的 key。
func (s *State) Keys() []string { return append([]string(nil), s.order...) }

// Width 与 Height 设置根容器尺寸。
func (s *State) Width(d Dimension) *State  { s.refs[Parent].width = d; return s }
func (s *State) Height(d Dimension) *State { s.refs[Parent].height = d; return s }

// Container 声明一个嵌套容器，子控件用 ChildOf 放入其中。
func (s *State) Container(key string) *ConstraintReference {
	r := s.reference(key, refContainer)
	r.kind = refContainer
	return r
}

// HorizontalChain 创建水平链，默认样式为 SPREAD。
func (s *State) HorizontalChain(keys ...string) *ChainReference {
	return s.chain(layout.Horizontal, keys)
}

// VerticalChain 创建垂直链，默认样式为 SPREAD。
func (s *State) VerticalChain(keys ...string) *ChainReference {
	return s.chain(layout.Vertical, keys)
}

func (s *State) chain(axis layout.Axis, keys []string) *ChainReference {
	c := &ChainReference{s: s, axis: axis, style: layout.ChainSpread, bias: 0.5}
	c.Add(keys...)
	s.chains = append(s.chains, c)
	return c
}

// Chains 返回声明过的链。
func (s *State) Chains() []*ChainReference { return s.chains }

// HorizontalGuideline 是水平辅助线，位置在垂直方向上。
func (s *State) HorizontalGuideline(key string) *GuidelineReference {
	return s.guideline(key, layout.Horizontal)
}

// VerticalGuideline 是竖直辅助线，位置在水平方向上。
func (s *State) VerticalGuideline(key string) *GuidelineReference {
	return s.guideline(key, layout.Vertical)
}

func (s *State) guideline(key string, orientation layout.Axis) *GuidelineReference {
	if g, ok := s.guidelines[key]; ok {
		return g
	}
	r := s.reference(key, refGuideline)
	r.kind = refGuideline
	g := &GuidelineReference{ConstraintReference: r, orientation: orientation, end: -1, percent: -1}
	s.guidelines[key] = g
	return g
}

// Barrier 创建屏障。
func (s *State) Barrier(key string, direction layout.BarrierType) *BarrierReference {
	if b, ok := s.barriers[key]; ok {
		b.direction = direction
		return b
	}
	r := s.reference(key, refBarrier)
	r.kind = refBarrier
	b := &BarrierReference{ConstraintReference: r, direction: direction, allowsGone: true}
	s.barriers[key] = b
	return b
}

// HorizontalFlow 创建沿水平方向排列的 Flow。
func (s *State) HorizontalFlow(key string, keys ...string) *FlowReference {
	return s.flow(key, layout.Horizontal, keys)
}

// VerticalFlow 创建沿垂直方向排列的 Flow。
func (s *State) VerticalFlow(key string, keys ...string) *FlowReference {
	return s.flow(key, layout.Vertical, keys)
}

func (s *State) flow(key string, orientation layout.Axis, keys []string) *FlowReference {
	f, ok := s.flows[key]
	if !ok {
		r := s.reference(key, refFlow)
		r.kind = refFlow
		f = &FlowReference{ConstraintReference: r, orientation: orientation, flowBias: 0.5}
		s.flows[key] = f
	}
	f.orientation = orientation
	return f.Add(keys...)
}

// Build 创建新的 Container 并写入全部约束。
func (s *State) Build(opts layout.Options) (*layout.Container, error) {
	c := layout.NewContainer(opts)
	if err := s.Apply(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Solve 是 Build 之后立即 Layout。
func (s *State) Solve(opts layout.Options) (*layout.Container, error) {
	c, err := s.Build(opts)
	if err != nil {
		return nil, err
	}
	if err := c.Layout(); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply 把 State 写入一个新建的 Container：先展开链，再按声明顺序创建控件，
// 设置属性，最后建立连接。c 应当只包含根容器。
func (s *State) Apply(c *layout.Container) error {
	for _, ch := range s.chains {
		ch.Apply()
	}

	for _, r := range s.refs {
		r.widget = nil
	}
	root := c.Root()
	parent := s.refs[Parent]
	parent.widget = root
	if err := parent.width.apply(root, layout.Horizontal); err != nil {
		return fmt.Errorf("state: parent: %w", err)
	}
	if err := parent.height.apply(root, layout.Vertical); err != nil {
		return fmt.Errorf("state: parent: %w", err)
	}

	for _, key := range s.order {
		if _, err := s.create(c, s.refs[key], map[string]bool{}); err != nil {
			return err
		}
	}

	for _, key := range s.order {
		r := s.refs[key]
		if err := r.applyAttributes(r.widget); err != nil {
			return fmt.Errorf("state: %s: %w", key, err)
		}
		if err := s.configureHelper(r); err != nil {
			return err
		}
	}

	for _, key := range append([]string{Parent}, s.order...) {
		r := s.refs[key]
		for _, from := range linkOrder {
			l := r.links[from]
			if l == nil {
				continue
			}
			if err := s.connect(r, from, l); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *State) create(c *layout.Container, r *ConstraintReference, visiting map[string]bool) (*layout.Widget, error) {
	if r.widget != nil {
		return r.widget, nil
	}
	if visiting[r.key] {
		return nil, fmt.Errorf("state: container cycle at %q", r.key)
	}
	visiting[r.key] = true

	var parent *layout.Widget
	if r.parent != "" && r.parent != Parent {
		pr := s.refs[r.parent]
		if pr == nil || pr.kind != refContainer {
			return nil, fmt.Errorf("state: %s: unknown container %q", r.key, r.parent)
		}
		p, err := s.create(c, pr, visiting)
		if err != nil {
			return nil, err
		}
		parent = p
	}

	switch r.kind {
	case refContainer:
		r.widget = c.AddContainer(parent, r.key)
	case refGuideline:
		g := s.guidelines[r.key]
		g.lg = c.AddGuideline(parent, r.key, g.orientation)
		r.widget = g.lg.Widget
	case refBarrier:
		b := s.barriers[r.key]
		b.lb = c.AddBarrier(parent, r.key, b.direction)
		r.widget = b.lb.Widget
	case refFlow:
		f := s.flows[r.key]
		f.lf = c.AddFlow(parent, r.key, f.orientation)
		r.widget = f.lf.Widget
	default:
		r.widget = c.AddChild(parent, r.key)
	}
	return r.widget, nil
}

func (s *State) lookup(owner, key string) (*layout.Widget, error) {
	r := s.refs[key]
	if r == nil || r.widget == nil {
		return nil, fmt.Errorf("state: %s: unknown reference %q", owner, key)
	}
	return r.widget, nil
}

func (s *State) configureHelper(r *ConstraintReference) error {
	switch r.kind {
	case refGuideline:
		g := s.guidelines[r.key]
		g.configure(g.lg)
	case refBarrier:
		br := s.barriers[r.key]
		lb := br.lb
		lb.Margin = br.margin
		lb.AllowsGoneWidget = br.allowsGone
		for _, k := range br.keys {
			w, err := s.lookup(r.key, k)
			if err != nil {
				return err
			}
			lb.Add(w)
		}
	case refFlow:
		fr := s.flows[r.key]
		lf := fr.lf
		fr.configure(lf)
		for _, k := range fr.keys {
			w, err := s.lookup(r.key, k)
			if err != nil {
				return err
			}
			lf.Add(w)
		}
	}
	return nil
}

func (s *State) connect(r *ConstraintReference, from layout.AnchorType, l *link) error {
	target, err := s.lookup(r.key, l.target)
	if err != nil {
		return err
	}
	if !r.widget.Connect(from, target, l.anchor, l.margin) {
		return fmt.Errorf("state: cannot connect %s.%s to %s.%s", r.key, from, l.target, l.anchor)
	}
	if l.goneMargin != layout.UnsetGoneMargin {
		r.widget.Anchor(from).SetGoneMargin(l.goneMargin)
	}
	return nil
}
