package layout

import (
	"fmt"
	"math"
)

// WrapMode 决定 Flow 如何换行。
type WrapMode int

const (
	WrapNone WrapMode = iota
	WrapChain
	WrapAligned
)

// ParseWrapMode 解析 none / chain / aligned。
func ParseWrapMode(s string) (WrapMode, error) {
	switch s {
	case "none", "":
		return WrapNone, nil
	case "chain":
		return WrapChain, nil
	case "aligned":
		return WrapAligned, nil
	}
	return WrapNone, fmt.Errorf("unknown wrap mode %q", s)
}

// Flow 是虚拟布局：把引用的控件按行（或列）排列，必要时换行。
// Orientation 为 Horizontal 时沿水平方向排列。
type Flow struct {
	*Widget
	Orientation     Axis
	Wrap            WrapMode
	HorizontalGap   float64
	VerticalGap     float64
	MaxElementsWrap int
	Style           ChainStyle
	FlowBias        float64
	refs            []WidgetID

	rows [][]*Widget
}

// AddFlow 添加 Flow，尺寸默认为 WRAP_CONTENT。
func (c *Container) AddFlow(parent *Widget, name string, orientation Axis) *Flow {
	w := c.newWidget(name, KindFlow, c.parentOrRoot(parent))
	w.dims = [2]Dimension{{Behaviour: WrapContent}, {Behaviour: WrapContent}}
	f := &Flow{Widget: w, Orientation: orientation, FlowBias: 0.5}
	w.flow = f
	return f
}

// Add 追加被引用的控件。
func (f *Flow) Add(ws ...*Widget) {
	for _, w := range ws {
		if w != nil && w.id != f.id {
			f.refs = append(f.refs, w.id)
		}
	}
}

// Refs 返回被引用的控件。
func (f *Flow) Refs() []*Widget {
	out := make([]*Widget, 0, len(f.refs))
	for _, id := range f.refs {
		if w := f.c.Widget(id); w != nil {
			out = append(out, w)
		}
	}
	return out
}

// Rows 返回最近一次测量得到的行（或列）。
func (f *Flow) Rows() [][]*Widget { return f.rows }

func (f *Flow) removeRef(id WidgetID) {
	kept := f.refs[:0]
	for _, r := range f.refs {
		if r != id {
			kept = append(kept, r)
		}
	}
	f.refs = kept
}

func (f *Flow) gaps() (main, cross float64) {
	if f.Orientation == Horizontal {
		return f.HorizontalGap, f.VerticalGap
	}
	return f.VerticalGap, f.HorizontalGap
}

// itemSize 返回测量时使用的尺寸，MATCH_CONSTRAINT 按内容尺寸处理。
func itemSize(w *Widget, axis Axis) float64 {
	if s, ok := w.knownSize(axis); ok {
		return s
	}
	return clampSize(w.wrap[axis], w.dims[axis])
}

// available 返回主轴上的可用空间，未知时为 +Inf。
func (f *Flow) available(ps *pass) float64 {
	main := f.Orientation
	d := f.dims[main]
	switch d.Behaviour {
	case Fixed:
		return d.Size
	case MatchParent, MatchConstraint:
		if ps.wrap[main] {
			return math.Inf(1)
		}
		space := ps.p.size[main]
		if b := f.begin(main); b.IsConnected() {
			space -= b.Margin()
		}
		if e := f.end(main); e.IsConnected() {
			space -= e.Margin()
		}
		if d.Max > 0 && space > d.Max {
			space = d.Max
		}
		return space
	}
	if d.Max > 0 {
		return d.Max
	}
	return math.Inf(1)
}

// measure 计算行并把引用的控件连接到 Flow，最后设置 Flow 的内容尺寸。
func (f *Flow) measure(ps *pass) {
	main := f.Orientation
	cross := Vertical
	if main == Vertical {
		cross = Horizontal
	}
	mainGap, crossGap := f.gaps()
	avail := f.available(ps)

	var items []*Widget
	for _, w := range f.Refs() {
		w.ClearAxis(main)
		w.ClearAxis(cross)
		if w.visibility != Gone {
			items = append(items, w)
		}
	}

	switch f.Wrap {
	case WrapAligned:
		f.rows = f.alignedRows(items, avail, mainGap)
	case WrapChain:
		f.rows = f.greedyRows(items, avail, mainGap)
	default:
		f.rows = nil
		if len(items) > 0 {
			f.rows = [][]*Widget{items}
		}
	}

	var crossOffset, mainExtent float64
	var colSizes []float64
	if f.Wrap == WrapAligned {
		colSizes = columnSizes(f.rows, main)
		for i, s := range colSizes {
			mainExtent += s
			if i > 0 {
				mainExtent += mainGap
			}
		}
	}
	for r, row := range f.rows {
		if r > 0 {
			crossOffset += crossGap
		}
		rowCross := 0.0
		for _, w := range row {
			rowCross = math.Max(rowCross, itemSize(w, cross))
			w.begin(cross).Connect(f.begin(cross), crossOffset, UnsetGoneMargin, true)
		}
		if f.Wrap == WrapAligned {
			offset := 0.0
			for j, w := range row {
				w.begin(main).Connect(f.begin(main), offset, UnsetGoneMargin, true)
				offset += colSizes[j] + mainGap
			}
		} else {
			mainExtent = math.Max(mainExtent, f.connectRow(row, mainGap))
		}
		crossOffset += rowCross
	}

	f.wrap[main] = mainExtent
	f.wrap[cross] = crossOffset
	ps.c.log.Debug("flow measured", "flow", f.name, "rows", len(f.rows), "width", f.wrap[Horizontal], "height", f.wrap[Vertical])
}

// connectRow 把一行控件连成链，两端接到 Flow 上，返回该行内容长度。
func (f *Flow) connectRow(row []*Widget, gap float64) float64 {
	main := f.Orientation
	extent := 0.0
	for i, w := range row {
		extent += itemSize(w, main)
		if i == 0 {
			w.begin(main).Connect(f.begin(main), 0, UnsetGoneMargin, true)
		} else {
			prev := row[i-1]
			extent += gap
			prev.end(main).Connect(w.begin(main), 0, UnsetGoneMargin, true)
			w.begin(main).Connect(prev.end(main), gap, UnsetGoneMargin, true)
		}
		if i == len(row)-1 {
			w.end(main).Connect(f.end(main), 0, UnsetGoneMargin, true)
		}
	}
	if len(row) > 0 {
		row[0].chainStyle[main] = f.Style
		row[0].bias[main] = f.FlowBias
	}
	return extent
}

func (f *Flow) greedyRows(items []*Widget, avail, gap float64) [][]*Widget {
	var rows [][]*Widget
	var row []*Widget
	used := 0.0
	for _, w := range items {
		size := itemSize(w, f.Orientation)
		need := size
		if len(row) > 0 {
			need += gap
		}
		full := f.MaxElementsWrap > 0 && len(row) >= f.MaxElementsWrap
		if len(row) > 0 && (full || used+need > avail) {
			rows = append(rows, row)
			row, used, need = nil, 0, size
		}
		row = append(row, w)
		used += need
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// alignedRows 计算列数，使每列宽度取该列最大值后仍能放下。
func (f *Flow) alignedRows(items []*Widget, avail, gap float64) [][]*Widget {
	if len(items) == 0 {
		return nil
	}
	cols := len(items)
	if f.MaxElementsWrap > 0 && f.MaxElementsWrap < cols {
		cols = f.MaxElementsWrap
	}
	for ; cols > 1; cols-- {
		rows := chunk(items, cols)
		total := 0.0
		for i, s := range columnSizes(rows, f.Orientation) {
			total += s
			if i > 0 {
				total += gap
			}
		}
		if total <= avail {
			break
		}
	}
	return chunk(items, cols)
}

func chunk(items []*Widget, size int) [][]*Widget {
	var rows [][]*Widget
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		rows = append(rows, items[i:end])
	}
	return rows
}

func columnSizes(rows [][]*Widget, axis Axis) []float64 {
	var sizes []float64
	for _, row := range rows {
		for j, w := range row {
			if j >= len(sizes) {
				sizes = append(sizes, 0)
			}
			sizes[j] = math.Max(sizes[j], itemSize(w, axis))
		}
	}
	return sizes
}
