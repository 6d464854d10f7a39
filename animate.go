package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/layout"
	"github.com/ByLCY/constraintkit/motion"
	"github.com/ByLCY/constraintkit/motion/curvefit"
	"github.com/ByLCY/constraintkit/motion/spline"
	"github.com/ByLCY/constraintkit/motion/stop"
)

const defaultMaxFrames = 10000

// MotionFile 是 animate 读取的 YAML 文档。start 与 end 相对于文档所在目录。
type MotionFile struct {
	Start    string                  `yaml:"start"`
	End      string                  `yaml:"end"`
	Duration float64                 `yaml:"duration"`
	FPS      int                     `yaml:"fps"`
	Curve    string                  `yaml:"curve"`
	Easing   string                  `yaml:"easing"`
	Arc      string                  `yaml:"arc"`
	Driver   DriverSpec              `yaml:"driver"`
	Widgets  map[string]WidgetMotion `yaml:"widgets"`
}

// DriverSpec 选择进度的驱动方式：默认补间，给出 fling 或 spring 时改用停止逻辑。
type DriverSpec struct {
	Tween  string      `yaml:"tween"`
	Fling  *FlingSpec  `yaml:"fling"`
	Spring *SpringSpec `yaml:"spring"`
}

type FlingSpec struct {
	Velocity        float64 `yaml:"velocity"`
	MaxTime         float64 `yaml:"maxTime"`
	MaxAcceleration float64 `yaml:"maxAcceleration"`
	MaxVelocity     float64 `yaml:"maxVelocity"`
}

type SpringSpec struct {
	Velocity  float64 `yaml:"velocity"`
	Mass      float64 `yaml:"mass"`
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
	Threshold float64 `yaml:"threshold"`
	Boundary  string  `yaml:"boundary"`
}

// WidgetMotion 是一个控件的关键帧。
type WidgetMotion struct {
	Attributes []AttributeKey `yaml:"attributes"`
	Custom     []CustomKey    `yaml:"custom"`
	Positions  []PositionKey  `yaml:"positions"`
	Cycles     []CycleKey     `yaml:"cycles"`
	TimeCycles []CycleKey     `yaml:"timeCycles"`
}

type AttributeKey struct {
	Position int     `yaml:"position"`
	Property string  `yaml:"property"`
	Value    float64 `yaml:"value"`
}

type CustomKey struct {
	Position int    `yaml:"position"`
	Name     string `yaml:"name"`
	Value    any    `yaml:"value"`
}

type PositionKey struct {
	Position int     `yaml:"position"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
}

// CycleKey 同时描述 cycles 与 timeCycles，timeCycles 忽略 phase。
type CycleKey struct {
	Position int     `yaml:"position"`
	Property string  `yaml:"property"`
	Shape    string  `yaml:"shape"`
	Period   float64 `yaml:"period"`
	Offset   float64 `yaml:"offset"`
	Phase    float64 `yaml:"phase"`
	Value    float64 `yaml:"value"`
}

// FrameRecord 是 animate 每一帧输出的一行 JSON。
type FrameRecord struct {
	Frame    int                      `json:"frame"`
	Time     float64                  `json:"time"`
	Progress float64                  `json:"progress"`
	Widgets  map[string]binding.Frame `json:"widgets"`
}

type animateOptions struct {
	out       string
	fps       int
	duration  float64
	maxFrames int
}

func newAnimateCmd() *cobra.Command {
	var opts animateOptions
	cmd := &cobra.Command{
		Use:   "animate FILE",
		Short: "在两个约束集之间插值，逐帧输出 JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			mf, err := loadMotionFile(args[0], cfg.Motion)
			if err != nil {
				return err
			}
			if opts.fps > 0 {
				mf.FPS = opts.fps
			}
			if opts.duration > 0 {
				mf.Duration = opts.duration
			}
			w := cmd.OutOrStdout()
			if opts.out != "" {
				if err := ensureDir(opts.out); err != nil {
					return err
				}
				f, err := os.Create(opts.out)
				if err != nil {
					return fmt.Errorf("创建输出文件失败: %w", err)
				}
				defer f.Close()
				w = f
			}
			return runAnimate(cmd, mf, cfg.Canvas, opts.maxFrames, w)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "", "帧输出路径（默认写到标准输出）")
	f.IntVar(&opts.fps, "fps", 0, "覆盖每秒帧数")
	f.Float64Var(&opts.duration, "duration", 0, "覆盖补间时长（秒）")
	f.IntVar(&opts.maxFrames, "max-frames", defaultMaxFrames, "最多输出的帧数")
	return cmd
}

// loadMotionFile 读取 YAML，未给出的字段取 defaults，start 与 end 解析为相对文档的路径。
func loadMotionFile(path string, defaults MotionConfig) (MotionFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return MotionFile{}, fmt.Errorf("无法打开动画文件 %s: %w", path, err)
	}
	mf := MotionFile{
		Duration: defaults.Duration,
		FPS:      defaults.FPS,
		Curve:    defaults.Curve,
		Easing:   defaults.Easing,
	}
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return MotionFile{}, fmt.Errorf("解析动画文件 %s 失败: %w", path, err)
	}
	if mf.Start == "" || mf.End == "" {
		return MotionFile{}, fmt.Errorf("动画文件 %s 缺少 start 或 end", path)
	}
	dir := filepath.Dir(path)
	for _, p := range []*string{&mf.Start, &mf.End} {
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return mf, nil
}

func runAnimate(cmd *cobra.Command, mf MotionFile, canvas CanvasConfig, maxFrames int, w io.Writer) error {
	logger := loggerFromContext(cmd.Context())
	if mf.FPS <= 0 {
		return fmt.Errorf("fps 必须为正数")
	}
	if maxFrames <= 0 {
		maxFrames = defaultMaxFrames
	}

	opts, err := motionOptions(mf, logger)
	if err != nil {
		return err
	}
	start, err := loadState(mf.Start, nil, canvas)
	if err != nil {
		return err
	}
	end, err := loadState(mf.End, nil, canvas)
	if err != nil {
		return err
	}
	tr, err := motion.NewTransition(start, end, layout.Options{Logger: logger}, opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	if err := addKeys(tr, mf.Widgets); err != nil {
		return err
	}
	if err := tr.Setup(); err != nil {
		return fmt.Errorf("准备动画失败: %w", err)
	}
	driver, err := newDriver(mf)
	if err != nil {
		return err
	}

	views := make(map[string]binding.View, len(tr.Controllers()))
	recorders := make(map[string]*binding.Recorder, len(tr.Controllers()))
	for _, c := range tr.Controllers() {
		r := binding.NewRecorder()
		views[c.Name], recorders[c.Name] = r, r
	}
	cache := spline.NewKeyCache()
	enc := json.NewEncoder(w)
	dt := 1 / float64(mf.FPS)

	progress, done := driver.Progress(), false
	frames := 0
	for frame := 0; frame < maxFrames; frame++ {
		elapsed := float64(frame) * dt
		tr.Interpolate(views, progress, int64(elapsed*1e9), cache)
		rec := FrameRecord{Frame: frame, Time: elapsed, Progress: progress, Widgets: make(map[string]binding.Frame, len(recorders))}
		for name, r := range recorders {
			rec.Widgets[name] = r.Snapshot()
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("输出帧失败: %w", err)
		}
		frames++
		if done {
			break
		}
		progress, done = driver.Update(float32(dt))
	}
	if !done {
		logger.Warn("frame limit reached", "frames", maxFrames, "progress", progress)
	}
	logger.Info("animated", "frames", frames, "mode", driver.Mode(), "widgets", len(recorders))
	return nil
}

func motionOptions(mf MotionFile, logger *log.Logger) (motion.Options, error) {
	curve, err := curvefit.ParseType(mf.Curve)
	if err != nil {
		return motion.Options{}, err
	}
	easing, err := curvefit.EasingFor(mf.Easing)
	if err != nil {
		return motion.Options{}, err
	}
	arc, err := curvefit.ParseArcMode(mf.Arc)
	if err != nil {
		return motion.Options{}, err
	}
	return motion.Options{Logger: logger, CurveType: curve, Easing: easing, Arc: arc}, nil
}

func newDriver(mf MotionFile) (*motion.Driver, error) {
	fn, ok := curvefit.TweenFunc(mf.Driver.Tween)
	if !ok {
		return nil, fmt.Errorf("未知的补间函数 %q", mf.Driver.Tween)
	}
	duration := mf.Duration
	if duration <= 0 {
		duration = 1
	}
	d := motion.NewDriver(0, 1, float32(duration), fn)
	switch {
	case mf.Driver.Fling != nil:
		f := mf.Driver.Fling
		d.Fling(stop.Ramp{
			Destination:     1,
			Velocity:        f.Velocity,
			MaxTime:         f.MaxTime,
			MaxAcceleration: f.MaxAcceleration,
			MaxVelocity:     f.MaxVelocity,
		})
	case mf.Driver.Spring != nil:
		s := mf.Driver.Spring
		boundary, err := stop.ParseBoundaryMode(s.Boundary)
		if err != nil {
			return nil, err
		}
		d.Spring(stop.Spring{
			Destination:   1,
			Velocity:      s.Velocity,
			Mass:          s.Mass,
			Stiffness:     s.Stiffness,
			Damping:       s.Damping,
			StopThreshold: s.Threshold,
			Boundary:      boundary,
		})
	}
	return d, nil
}

// addKeys 把 YAML 中的关键帧加到对应的 Controller，控件不存在时报错。
func addKeys(tr *motion.Transition, widgets map[string]WidgetMotion) error {
	names := make([]string, 0, len(widgets))
	for name := range widgets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := tr.Controller(name)
		if c == nil {
			return fmt.Errorf("动画文件引用了不存在的控件 %q", name)
		}
		wm := widgets[name]
		for _, k := range wm.Attributes {
			p, err := property(k.Property)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			c.AddKeyAttribute(motion.KeyAttribute{Position: k.Position, Property: p, Value: k.Value})
		}
		for _, k := range wm.Custom {
			c.AddKeyCustom(motion.KeyCustom{Position: k.Position, Attribute: binding.CustomFromValue(k.Name, k.Value)})
		}
		for _, k := range wm.Positions {
			c.AddKeyPosition(motion.KeyPosition{Position: k.Position, PercentX: k.X, PercentY: k.Y})
		}
		for _, k := range wm.Cycles {
			p, shape, custom, err := cycleKey(k)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			c.AddKeyCycle(motion.KeyCycle{
				Position: k.Position, Property: p, Shape: shape, CustomWave: custom,
				Period: k.Period, Offset: k.Offset, Phase: k.Phase, Value: k.Value,
			})
		}
		for _, k := range wm.TimeCycles {
			p, shape, custom, err := cycleKey(k)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			c.AddKeyTimeCycle(motion.KeyTimeCycle{
				Position: k.Position, Property: p, Shape: shape, CustomWave: custom,
				Period: k.Period, Offset: k.Offset, Value: k.Value,
			})
		}
	}
	return nil
}

func property(name string) (binding.Property, error) {
	p, ok := binding.ParseProperty(name)
	if !ok {
		return binding.Property{}, fmt.Errorf("未知属性 %q", name)
	}
	return p, nil
}

// cycleKey 解析属性与波形，shape 为空时为 sin；custom 只在自定义波形时非空。
func cycleKey(k CycleKey) (p binding.Property, shape spline.WaveShape, custom string, err error) {
	if p, err = property(k.Property); err != nil {
		return
	}
	if k.Shape == "" {
		return p, spline.WaveSin, "", nil
	}
	if shape, err = spline.ParseWaveShape(k.Shape); err != nil {
		return
	}
	if shape == spline.WaveCustom {
		custom = k.Shape
	}
	return p, shape, custom, nil
}
