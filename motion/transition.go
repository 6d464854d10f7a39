package motion

import (
	"fmt"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/layout"
	"github.com/ByLCY/constraintkit/motion/spline"
	"github.com/ByLCY/constraintkit/state"
)

// Transition 是两个约束集之间全部控件的过渡。辅助控件不参与插值。
type Transition struct {
	Start *layout.Result
	End   *layout.Result

	controllers []*Controller
	byName      map[string]*Controller
}

// NewTransition 分别求解 start 与 end，为任一端出现的普通控件与容器创建 Controller。
// 只出现在一端的控件两端使用同一个矩形。
func NewTransition(start, end *state.State, lopts layout.Options, opts Options) (*Transition, error) {
	sc, err := start.Solve(lopts)
	if err != nil {
		return nil, fmt.Errorf("solve start: %w", err)
	}
	ec, err := end.Solve(lopts)
	if err != nil {
		return nil, fmt.Errorf("solve end: %w", err)
	}
	return NewTransitionFromResults(sc.Result(), start, ec.Result(), end, opts), nil
}

// NewTransitionFromResults 用已经求解好的结果创建过渡，状态只用于读取属性，可以为 nil。
func NewTransitionFromResults(startRes *layout.Result, start *state.State, endRes *layout.Result, end *state.State, opts Options) *Transition {
	t := &Transition{Start: startRes, End: endRes, byName: make(map[string]*Controller)}
	var names []string
	seen := make(map[string]bool)
	for _, res := range []*layout.Result{startRes, endRes} {
		for _, f := range res.Widgets {
			if seen[f.Name] || !animated(f.Kind) {
				continue
			}
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	for _, name := range names {
		s, sok := EndpointOf(startRes, start, name)
		e, eok := EndpointOf(endRes, end, name)
		if !sok {
			s.Frame = e.Frame
			if s.Properties == nil {
				s.Properties = map[binding.Property]float64{}
			}
		}
		if !eok {
			e.Frame = s.Frame
			if e.Properties == nil {
				e.Properties = map[binding.Property]float64{}
			}
		}
		c := NewController(name, s, e, opts)
		t.controllers = append(t.controllers, c)
		t.byName[name] = c
	}
	return t
}

func animated(kind string) bool {
	return kind == layout.KindWidget.String() || kind == layout.KindContainer.String()
}

// Controller 返回控件 name 的 Controller。
func (t *Transition) Controller(name string) *Controller { return t.byName[name] }

// Controllers 按控件出现顺序返回全部 Controller。
func (t *Transition) Controllers() []*Controller { return t.controllers }

// Setup 对每个 Controller 调用 Setup。
func (t *Transition) Setup() error {
	for _, c := range t.controllers {
		if err := c.Setup(); err != nil {
			return err
		}
	}
	return nil
}

// Interpolate 把 progress 处的状态写入各控件的视图，没有视图的控件被跳过。
func (t *Transition) Interpolate(views map[string]binding.View, progress float64, nanoTime int64, cache *spline.KeyCache) bool {
	more := false
	for _, c := range t.controllers {
		v, ok := views[c.Name]
		if !ok {
			continue
		}
		if c.Interpolate(v, progress, nanoTime, cache) {
			more = true
		}
	}
	return more
}
