package motion

import (
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/motion/curvefit"
	"github.com/ByLCY/constraintkit/motion/spline"
)

// Options 配置控件动画。
type Options struct {
	// Logger 为空时使用 log.Default()。
	Logger *log.Logger
	// CurveType 是路径与属性的插值方式，零值为单调样条。
	CurveType curvefit.Type
	// Easing 为空时为恒等缓动。
	Easing curvefit.Easing
	// Arc 不是 ArcStartLinear 时，路径的每一段都走四分之一椭圆弧。
	Arc curvefit.ArcMode
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// Controller 负责一个控件在过渡中的全部插值。
// 添加关键帧之后调用 Setup，再按帧调用 Interpolate。
type Controller struct {
	Name  string
	Start Endpoint
	End   Endpoint

	opts       Options
	attrs      []KeyAttribute
	customs    []KeyCustom
	positions  []KeyPosition
	cycles     []KeyCycle
	timeCycles []KeyTimeCycle

	path       curvefit.CurveFit // [cx, cy, w, h]，弧线模式下为 [cx, cy]
	size       curvefit.CurveFit // 弧线模式下的 [w, h]
	easing     curvefit.Easing
	sets       []*spline.Set
	customSets []*spline.CustomSet
	cycleSets  []*spline.CycleOscillator
	timeSets   []*spline.TimeCycleSet
	buf        [4]float64
	ready      bool
}

func NewController(name string, start, end Endpoint, opts Options) *Controller {
	return &Controller{Name: name, Start: start, End: end, opts: opts}
}

func (c *Controller) AddKeyAttribute(k KeyAttribute) { c.attrs = append(c.attrs, k); c.ready = false }
func (c *Controller) AddKeyCustom(k KeyCustom)       { c.customs = append(c.customs, k); c.ready = false }
func (c *Controller) AddKeyPosition(k KeyPosition)   { c.positions = append(c.positions, k); c.ready = false }
func (c *Controller) AddKeyCycle(k KeyCycle)         { c.cycles = append(c.cycles, k); c.ready = false }
func (c *Controller) AddKeyTimeCycle(k KeyTimeCycle) { c.timeCycles = append(c.timeCycles, k); c.ready = false }

// Setup 构造路径与全部属性曲线。
func (c *Controller) Setup() error {
	c.easing = c.opts.Easing
	if c.easing == nil {
		c.easing = curvefit.Identity()
	}
	c.setupPath()
	c.setupAttributes()
	if err := c.setupCustom(); err != nil {
		return err
	}
	if err := c.setupCycles(); err != nil {
		return err
	}
	if err := c.setupTimeCycles(); err != nil {
		return err
	}
	c.ready = true
	c.opts.logger().Debug("motion ready", "widget", c.Name,
		"attributes", len(c.sets), "custom", len(c.customSets),
		"cycles", len(c.cycleSets), "timeCycles", len(c.timeSets))
	return nil
}

func (c *Controller) setupPath() {
	s, e := c.Start.Frame, c.End.Frame
	scx, scy := s.X+s.Width/2, s.Y+s.Height/2
	ecx, ecy := e.X+e.Width/2, e.Y+e.Height/2

	keys := append([]KeyPosition(nil), c.positions...)
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Position < keys[j].Position })

	time := []float64{0}
	points := [][]float64{{scx, scy, s.Width, s.Height}}
	for _, k := range keys {
		if k.Position <= 0 || k.Position >= 100 || float64(k.Position)/100 == time[len(time)-1] {
			c.opts.logger().Warn("key position ignored", "widget", c.Name, "position", k.Position)
			continue
		}
		f := float64(k.Position) / 100
		time = append(time, f)
		points = append(points, []float64{
			scx + k.PercentX*(ecx-scx),
			scy + k.PercentY*(ecy-scy),
			s.Width + f*(e.Width-s.Width),
			s.Height + f*(e.Height-s.Height),
		})
	}
	time = append(time, 1)
	points = append(points, []float64{ecx, ecy, e.Width, e.Height})

	if c.opts.Arc == curvefit.ArcStartLinear {
		c.path = curvefit.Get(c.opts.CurveType, time, points)
		c.size = nil
		return
	}
	modes := make([]curvefit.ArcMode, len(time)-1)
	xy := make([][]float64, len(points))
	wh := make([][]float64, len(points))
	for i, p := range points {
		xy[i], wh[i] = p[:2], p[2:]
	}
	for i := range modes {
		modes[i] = c.opts.Arc
	}
	c.path = curvefit.GetArc(modes, time, xy)
	c.size = curvefit.Get(curvefit.Linear, time, wh)
}

func (c *Controller) setupAttributes() {
	byProp := make(map[binding.Property][]KeyAttribute)
	for p := range c.Start.Properties {
		byProp[p] = nil
	}
	for p := range c.End.Properties {
		byProp[p] = nil
	}
	for _, k := range c.attrs {
		byProp[k.Property] = append(byProp[k.Property], k)
	}

	c.sets = c.sets[:0]
	for _, p := range sortedProperties(byProp) {
		if p.IsWave() {
			// 只作为振荡参数出现。
			continue
		}
		sv, ok := c.Start.Properties[p]
		if !ok {
			sv = p.Default()
		}
		ev, ok := c.End.Properties[p]
		if !ok {
			ev = p.Default()
		}
		keys := byProp[p]
		if len(keys) == 0 && sv == ev {
			continue
		}
		set := spline.New(p)
		set.Logger = c.opts.Logger
		set.SetPoint(0, sv)
		for _, k := range keys {
			set.SetPoint(k.Position, k.Value)
		}
		set.SetPoint(100, ev)
		set.Setup(c.opts.CurveType)
		c.sets = append(c.sets, set)
	}
}

func (c *Controller) setupCustom() error {
	byName := make(map[string][]KeyCustom)
	for _, a := range c.Start.Custom {
		byName[a.Name] = nil
	}
	for _, a := range c.End.Custom {
		byName[a.Name] = nil
	}
	for _, k := range c.customs {
		byName[k.Attribute.Name] = append(byName[k.Attribute.Name], k)
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	c.customSets = c.customSets[:0]
	for _, name := range names {
		keys := byName[name]
		sa, sok := c.Start.custom(name)
		ea, eok := c.End.custom(name)
		switch {
		case !sok && !eok:
			sa, ea = keys[0].Attribute, keys[len(keys)-1].Attribute
		case !sok:
			sa = ea
		case !eok:
			ea = sa
		}
		if sa.Kind != ea.Kind {
			return fmt.Errorf("custom attribute %q of %s: %s at start, %s at end", name, c.Name, sa.Kind, ea.Kind)
		}
		if sa.Kind == binding.KindString {
			continue
		}
		cs := spline.NewCustom(name)
		cs.Logger = c.opts.Logger
		cs.SetCustomPoint(0, sa)
		cs.SetCustomPoint(100, ea)
		for _, k := range keys {
			if k.Attribute.Kind != sa.Kind {
				return fmt.Errorf("custom attribute %q of %s: key at %d is %s, want %s",
					name, c.Name, k.Position, k.Attribute.Kind, sa.Kind)
			}
			cs.SetCustomPoint(k.Position, k.Attribute)
		}
		cs.Setup(c.opts.CurveType)
		c.customSets = append(c.customSets, cs)
	}
	return nil
}

func (c *Controller) setupCycles() error {
	byProp := make(map[binding.Property][]KeyCycle)
	for _, k := range c.cycles {
		byProp[k.Property] = append(byProp[k.Property], k)
	}
	c.cycleSets = c.cycleSets[:0]
	for _, p := range sortedProperties(byProp) {
		keys := byProp[p]
		osc, err := spline.NewCycleOscillator(p, keys[0].Shape, keys[0].CustomWave)
		if err != nil {
			return fmt.Errorf("key cycle %s of %s: %w", p, c.Name, err)
		}
		for _, k := range keys {
			osc.SetPoint(spline.CyclePoint{
				Position: k.Position,
				Period:   k.Period,
				Offset:   k.Offset,
				Phase:    k.Phase,
				Value:    k.Value,
			})
		}
		osc.Setup()
		c.cycleSets = append(c.cycleSets, osc)
	}
	return nil
}

func (c *Controller) setupTimeCycles() error {
	byProp := make(map[binding.Property][]KeyTimeCycle)
	for _, k := range c.timeCycles {
		byProp[k.Property] = append(byProp[k.Property], k)
	}
	c.timeSets = c.timeSets[:0]
	for _, p := range sortedProperties(byProp) {
		ts := spline.NewTimeCycle(p)
		ts.Logger = c.opts.Logger
		for _, k := range byProp[p] {
			if k.Shape == spline.WaveCustom {
				if err := ts.SetCustomWave(k.CustomWave); err != nil {
					return fmt.Errorf("key time cycle %s of %s: %w", p, c.Name, err)
				}
			}
			ts.SetPoint(k.Position, k.Value, k.Period, k.Shape, k.Offset)
		}
		ts.Setup(c.opts.CurveType)
		c.timeSets = append(c.timeSets, ts)
	}
	return nil
}

// Interpolate 把进度 progress（0 到 1）处的状态写入 v。nanoTime 是当前时间，
// 只有按时间振荡的属性使用它。返回 true 表示即使进度不变也需要下一帧。
func (c *Controller) Interpolate(v binding.View, progress float64, nanoTime int64, cache *spline.KeyCache) bool {
	if !c.ready {
		c.opts.logger().Warn("interpolate before setup", "widget", c.Name)
		return false
	}
	t := c.easing.Get(math.Max(0, math.Min(1, progress)))

	if c.size == nil {
		c.path.Pos(t, c.buf[:])
	} else {
		c.path.Pos(t, c.buf[:2])
		c.size.Pos(t, c.buf[2:])
	}
	w, h := c.buf[2], c.buf[3]
	v.SetLayout(c.buf[0]-w/2, c.buf[1]-h/2, w, h)

	for _, s := range c.sets {
		s.SetProperty(v, t)
	}
	for _, s := range c.customSets {
		s.SetProperty(v, t)
	}
	for _, s := range c.cycleSets {
		s.SetProperty(v, t)
	}
	more := false
	for _, s := range c.timeSets {
		if s.SetProperty(v, t, nanoTime, c.Name, cache) {
			more = true
		}
	}
	return more
}

// Ready 表示 Setup 之后没有再添加关键帧。
func (c *Controller) Ready() bool { return c.ready }

func sortedProperties[V any](m map[binding.Property]V) []binding.Property {
	out := make([]binding.Property, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
