package layout

// 该文件定义求解结果快照，供渲染、调试 JSON 与锚点图导出共用。

// Result 保存一次 Layout 之后的全部控件位置（相对根容器，单位与输入一致）。
type Result struct {
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Widgets     []WidgetFrame `json:"widgets"`
	Connections []Connection  `json:"connections"`
	Conflicts   int           `json:"conflicts,omitempty"`
}

// WidgetFrame 是一个控件的最终矩形。
type WidgetFrame struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Parent     string  `json:"parent,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Baseline   float64 `json:"baseline,omitempty"` // 相对控件顶部
	Visibility string  `json:"visibility"`
	// Line 只用于辅助线与屏障："vertical" 或 "horizontal"。
	Line string `json:"line,omitempty"`
}

// Connection 描述一条锚点连接。
type Connection struct {
	From       string   `json:"from"`
	FromAnchor string   `json:"fromAnchor"`
	To         string   `json:"to"`
	ToAnchor   string   `json:"toAnchor"`
	Margin     float64  `json:"margin"`
	GoneMargin *float64 `json:"goneMargin,omitempty"`
}

// Frame 按名称查找控件矩形。
func (r *Result) Frame(name string) (WidgetFrame, bool) {
	for _, f := range r.Widgets {
		if f.Name == name {
			return f, true
		}
	}
	return WidgetFrame{}, false
}

// Result 生成当前解算结果的快照。CENTER 类连接只在展开后的两端出现。
func (c *Container) Result() *Result {
	root := c.Root()
	res := &Result{
		Width:     root.size[Horizontal],
		Height:    root.size[Vertical],
		Conflicts: c.lastConflicts,
	}
	for _, w := range c.Widgets() {
		if w.id == 0 {
			continue
		}
		frame := WidgetFrame{
			ID:         int(w.id),
			Name:       w.name,
			Kind:       w.kind.String(),
			X:          w.AbsoluteX(),
			Y:          w.AbsoluteY(),
			Width:      w.size[Horizontal],
			Height:     w.size[Vertical],
			Visibility: w.visibility.String(),
		}
		if p := w.Parent(); p != nil {
			frame.Parent = p.name
		}
		if w.hasBaseline {
			frame.Baseline = w.baseline
		}
		switch {
		case w.guideline != nil:
			frame.Line = w.guideline.Orientation.String()
		case w.barrier != nil:
			// 沿水平轴定位的屏障是竖线。
			frame.Line = Vertical.String()
			if w.barrier.Type.axis() == Vertical {
				frame.Line = Horizontal.String()
			}
		}
		res.Widgets = append(res.Widgets, frame)

		for _, a := range w.Anchors() {
			t := a.Target()
			if t == nil || a.typ == AnchorCenter {
				continue
			}
			conn := Connection{
				From:       w.name,
				FromAnchor: a.typ.String(),
				To:         t.Owner().name,
				ToAnchor:   t.typ.String(),
				Margin:     a.margin,
			}
			if gm, ok := a.GoneMargin(); ok {
				conn.GoneMargin = &gm
			}
			res.Connections = append(res.Connections, conn)
		}
	}
	return res
}
