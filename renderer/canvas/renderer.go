package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/constraintkit/layout"
	"github.com/ByLCY/constraintkit/renderer"
)

const (
	defaultScale    = 0.25 // mm / 布局单位
	defaultMargin   = 10.0 // mm
	defaultFontSize = 7.0  // pt
	strokeWidth     = 0.2  // mm
)

// Renderer draws solved layouts as wireframes via github.com/tdewolff/canvas.
type Renderer struct {
	opts Options

	fontMu sync.Mutex
	family *canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the wireframe renderer.
type Options struct {
	// Scale 是每个布局单位对应的毫米数。
	Scale float64
	// Margin 是页面四周留白（mm）。
	Margin float64
	// Font 为空时不绘制控件名。
	Font     Resource
	FontSize float64 // pt
	// HideConnections 为 true 时不绘制锚点连接。
	HideConnections bool
	Title           string
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

func (r Resource) load() ([]byte, error) {
	if len(r.Bytes) > 0 {
		return r.Bytes, nil
	}
	if r.Path == "" {
		return nil, nil
	}
	return os.ReadFile(r.Path)
}

// NewRenderer creates a renderer with default scale and margins.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer; zero fields take defaults.
func NewRendererWithOptions(opts Options) *Renderer {
	if opts.Scale <= 0 {
		opts.Scale = defaultScale
	}
	if opts.Margin < 0 {
		opts.Margin = 0
	} else if opts.Margin == 0 {
		opts.Margin = defaultMargin
	}
	if opts.FontSize <= 0 {
		opts.FontSize = defaultFontSize
	}
	return &Renderer{opts: opts}
}

// PageSize 返回 result 对应的页面尺寸（mm）。
func (r *Renderer) PageSize(result *layout.Result) (width, height float64) {
	return result.Width*r.opts.Scale + 2*r.opts.Margin, result.Height*r.opts.Scale + 2*r.opts.Margin
}

// Render renders the result into a single-page PDF.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.Width <= 0 || result.Height <= 0 {
		return nil, fmt.Errorf("根容器尺寸无效: %gx%g", result.Width, result.Height)
	}
	face, err := r.face()
	if err != nil {
		return nil, err
	}

	w, h := r.PageSize(result)
	var buf bytes.Buffer
	writer := pdf.New(&buf, w, h, nil)
	if r.opts.Title != "" {
		writer.SetInfo(r.opts.Title, "", "", "", "constraintkit")
	}
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 与布局一致，左上角为原点

	r.draw(ctx, result, face)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) face() (*canvas.FontFace, error) {
	data, err := r.opts.Font.load()
	if err != nil {
		return nil, fmt.Errorf("读取字体失败: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family == nil {
		family := canvas.NewFontFamily("label")
		if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
			return nil, fmt.Errorf("加载字体失败: %w", err)
		}
		r.family = family
	}
	return r.family.Face(r.opts.FontSize, canvas.Hex("#333333"), canvas.FontRegular, canvas.FontNormal), nil
}

// box 是换算到页面坐标（mm）的矩形。
type box struct{ x, y, w, h float64 }

func (r *Renderer) project(f layout.WidgetFrame) box {
	s, m := r.opts.Scale, r.opts.Margin
	return box{x: m + f.X*s, y: m + f.Y*s, w: f.Width * s, h: f.Height * s}
}

func (r *Renderer) draw(ctx *canvas.Context, result *layout.Result, face *canvas.FontFace) {
	root := layout.WidgetFrame{Name: layout.ParentName, Width: result.Width, Height: result.Height}
	frames := map[string]box{layout.ParentName: r.project(root)}
	for _, f := range result.Widgets {
		frames[f.Name] = r.project(f)
	}

	stroke(ctx, canvas.Hex("#999999"), nil)
	rect(ctx, frames[layout.ParentName])

	for _, f := range result.Widgets {
		if f.Visibility == layout.Gone.String() {
			continue
		}
		b := frames[f.Name]
		switch f.Kind {
		case layout.KindGuideline.String():
			stroke(ctx, canvas.Hex("#2e7d32"), []float64{1, 1})
			r.helperLine(ctx, b, f, result)
		case layout.KindBarrier.String():
			stroke(ctx, canvas.Hex("#c62828"), []float64{2, 1})
			r.helperLine(ctx, b, f, result)
		case layout.KindFlow.String():
			stroke(ctx, canvas.Hex("#6a1b9a"), []float64{0.5, 0.5})
			rect(ctx, b)
		case layout.KindContainer.String():
			stroke(ctx, canvas.Hex("#00838f"), nil)
			rect(ctx, b)
		default:
			var dashes []float64
			if f.Visibility == layout.Invisible.String() {
				dashes = []float64{1, 1}
			}
			stroke(ctx, canvas.Hex("#1565c0"), dashes)
			ctx.SetFillColor(canvas.Hex("#e3f2fd"))
			ctx.DrawPath(b.x, b.y, canvas.Rectangle(b.w, b.h))
			if f.Baseline > 0 {
				stroke(ctx, canvas.Hex("#90caf9"), nil)
				line(ctx, b.x, b.y+f.Baseline*r.opts.Scale, b.x+b.w, b.y+f.Baseline*r.opts.Scale)
			}
		}
		if face != nil && f.Kind != layout.KindGuideline.String() && f.Kind != layout.KindBarrier.String() {
			ctx.DrawText(b.x+0.5, b.y+face.Metrics().Ascent+0.5, canvas.NewTextLine(face, f.Name, canvas.Left))
		}
	}

	if r.opts.HideConnections {
		return
	}
	stroke(ctx, canvas.Hex("#ef6c00"), nil)
	for _, conn := range result.Connections {
		from, ok := frames[conn.From]
		if !ok {
			continue
		}
		to, ok := frames[conn.To]
		if !ok {
			continue
		}
		x1, y1 := anchorPoint(from, conn.FromAnchor)
		x2, y2 := anchorPoint(to, conn.ToAnchor)
		line(ctx, x1, y1, x2, y2)
		ctx.SetFillColor(canvas.Hex("#ef6c00"))
		ctx.DrawPath(x1-0.4, y1-0.4, canvas.Circle(0.4))
	}
}

// helperLine 把辅助线与屏障画成贯穿父容器的线段。
func (r *Renderer) helperLine(ctx *canvas.Context, b box, f layout.WidgetFrame, result *layout.Result) {
	s, m := r.opts.Scale, r.opts.Margin
	if f.Line == layout.Vertical.String() {
		line(ctx, b.x, m, b.x, m+result.Height*s)
		return
	}
	line(ctx, m, b.y, m+result.Width*s, b.y)
}

// anchorPoint 返回锚点在矩形上的位置。
func anchorPoint(b box, anchor string) (float64, float64) {
	cx, cy := b.x+b.w/2, b.y+b.h/2
	switch anchor {
	case layout.AnchorLeft.String():
		return b.x, cy
	case layout.AnchorRight.String():
		return b.x + b.w, cy
	case layout.AnchorTop.String():
		return cx, b.y
	case layout.AnchorBottom.String():
		return cx, b.y + b.h
	}
	return cx, cy
}

func stroke(ctx *canvas.Context, col color.Color, dashes []float64) {
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(strokeWidth)
	ctx.SetDashes(0, dashes...)
}

func rect(ctx *canvas.Context, b box) {
	ctx.DrawPath(b.x, b.y, canvas.Rectangle(b.w, b.h))
}

func line(ctx *canvas.Context, x1, y1, x2, y2 float64) {
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(x2-x1, y2-y1)
	ctx.DrawPath(x1, y1, p)
}
