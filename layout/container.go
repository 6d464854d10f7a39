package layout

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Container 是控件与锚点的 arena，根控件名为 "parent"。
// 控件和锚点通过稳定的整数下标访问，删除后槽位置空，不会复用。
type Container struct {
	widgets []*Widget
	anchors []*Anchor
	byName  map[string]WidgetID
	opts    Options
	log     *log.Logger

	lastConflicts int
}

// ParentName 是根容器的保留名。
const ParentName = "parent"

// NewContainer 创建只包含根容器的 arena。
func NewContainer(opts Options) *Container {
	c := &Container{byName: make(map[string]WidgetID), opts: opts, log: opts.logger()}
	c.newWidget(ParentName, KindContainer, NoWidget)
	return c
}

// Root 返回根容器。
func (c *Container) Root() *Widget { return c.widgets[0] }

// Widget 按下标返回控件，不存在或已删除时返回 nil。
func (c *Container) Widget(id WidgetID) *Widget {
	if id < 0 || int(id) >= len(c.widgets) {
		return nil
	}
	return c.widgets[id]
}

// Anchor 按下标返回锚点。
func (c *Container) Anchor(id AnchorID) *Anchor {
	if id < 0 || int(id) >= len(c.anchors) {
		return nil
	}
	return c.anchors[id]
}

// WidgetByName 按名称查找控件。
func (c *Container) WidgetByName(name string) *Widget {
	id, ok := c.byName[name]
	if !ok {
		return nil
	}
	return c.Widget(id)
}

// Widgets 返回所有存活控件，按 ID 排序。
func (c *Container) Widgets() []*Widget {
	out := make([]*Widget, 0, len(c.widgets))
	for _, w := range c.widgets {
		if w != nil {
			out = append(out, w)
		}
	}
	return out
}

func (c *Container) newWidget(name string, kind WidgetKind, parent WidgetID) *Widget {
	w := &Widget{
		c:      c,
		id:     WidgetID(len(c.widgets)),
		name:   name,
		kind:   kind,
		parent: parent,
		bias:   [2]float64{0.5, 0.5},
		weight: [2]float64{UnknownWeight, UnknownWeight},
	}
	for i, t := range anchorTypes {
		a := &Anchor{
			c:          c,
			id:         AnchorID(len(c.anchors)),
			owner:      w.id,
			typ:        t,
			target:     NoAnchor,
			goneMargin: UnsetGoneMargin,
		}
		c.anchors = append(c.anchors, a)
		w.anchors[i] = a.id
	}
	c.widgets = append(c.widgets, w)
	if name != "" {
		c.byName[name] = w.id
	}
	if p := c.Widget(parent); p != nil {
		p.children = append(p.children, w.id)
	}
	return w
}

func (c *Container) parentOrRoot(parent *Widget) WidgetID {
	if parent == nil {
		return 0
	}
	return parent.id
}

// AddWidget 在根容器下添加普通控件。
func (c *Container) AddWidget(name string) *Widget {
	return c.newWidget(name, KindWidget, 0)
}

// AddChild 在指定容器下添加普通控件，parent 为 nil 时使用根容器。
func (c *Container) AddChild(parent *Widget, name string) *Widget {
	return c.newWidget(name, KindWidget, c.parentOrRoot(parent))
}

// AddContainer 添加嵌套容器。
func (c *Container) AddContainer(parent *Widget, name string) *Widget {
	return c.newWidget(name, KindContainer, c.parentOrRoot(parent))
}

// Remove 删除控件及其子树，并断开所有指向它的连接。
func (c *Container) Remove(w *Widget) {
	if w == nil || w.id == 0 || c.Widget(w.id) != w {
		return
	}
	for _, child := range w.Children() {
		c.Remove(child)
	}
	for _, a := range w.Anchors() {
		for _, dep := range a.Dependents() {
			dep.Reset()
		}
		a.Reset()
	}
	for _, other := range c.Widgets() {
		switch {
		case other.barrier != nil:
			other.barrier.removeRef(w.id)
		case other.flow != nil:
			other.flow.removeRef(w.id)
		}
	}
	if p := w.Parent(); p != nil {
		kept := p.children[:0]
		for _, id := range p.children {
			if id != w.id {
				kept = append(kept, id)
			}
		}
		p.children = kept
	}
	for _, id := range w.anchors {
		c.anchors[id] = nil
	}
	if c.byName[w.name] == w.id {
		delete(c.byName, w.name)
	}
	c.widgets[w.id] = nil
}

// ResetFinalResolution 清除所有锚点的解算缓存。
func (c *Container) ResetFinalResolution() {
	for _, w := range c.Widgets() {
		w.ResetFinalResolution()
	}
}

// Conflicts 返回最近一次 Layout 中被降级的必需约束数量。
func (c *Container) Conflicts() int { return c.lastConflicts }

// Layout 求解整棵控件树。根容器的尺寸来自其 Dimension，
// WRAP_CONTENT 时由子控件撑开。
func (c *Container) Layout() error {
	c.ResetFinalResolution()
	c.lastConflicts = 0
	root := c.Root()
	root.pos = [2]float64{}
	for _, axis := range []Axis{Horizontal, Vertical} {
		if root.dims[axis].Behaviour != WrapContent && root.dims[axis].Behaviour != Fixed {
			return fmt.Errorf("layout: 根容器 %s 方向只支持 fixed 或 wrap", axis)
		}
	}
	if err := c.layoutContainer(root); err != nil {
		return err
	}
	if c.lastConflicts > 0 {
		c.log.Warn("layout finished with conflicting constraints", "conflicts", c.lastConflicts)
	}
	return nil
}
