package layout

import "github.com/charmbracelet/log"

// Options 配置布局阶段所需的依赖。
type Options struct {
	// Logger 为空时使用 log.Default()。
	Logger *log.Logger
	// Measurer 为 WRAP_CONTENT 控件提供内容尺寸，为空时使用 SetWrapSize 的值。
	Measurer Measurer
}

// Measurer 负责测量控件内容尺寸与基线。
type Measurer interface {
	Measure(w *Widget) (width, height, baseline float64)
}

// MeasureFunc 让普通函数满足 Measurer。
type MeasureFunc func(w *Widget) (width, height, baseline float64)

func (f MeasureFunc) Measure(w *Widget) (float64, float64, float64) { return f(w) }

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}
