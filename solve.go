package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ByLCY/constraintkit/binding"
	"github.com/ByLCY/constraintkit/layout"
	"github.com/ByLCY/constraintkit/renderer"
	canvasrenderer "github.com/ByLCY/constraintkit/renderer/canvas"
	"github.com/ByLCY/constraintkit/state"
)

type solveOptions struct {
	data   string
	debug  string
	pdf    string
	dot    string
	svg    string
	width  float64
	height float64
}

func newSolveCmd() *cobra.Command {
	var opts solveOptions
	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "求解 CL 约束集并输出控件矩形",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			opts.applyConfig(cfg)
			return runSolve(cmd, args[0], opts, cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.data, "data", "", "替换文档中 ${...} 的 JSON 数据")
	f.StringVar(&opts.debug, "debug", "", "结果 JSON 输出路径（默认写到标准输出）")
	f.StringVar(&opts.pdf, "pdf", "", "线框 PDF 输出路径")
	f.StringVar(&opts.dot, "dot", "", "锚点图 DOT 输出路径")
	f.StringVar(&opts.svg, "svg", "", "锚点图 SVG 输出路径")
	f.Float64Var(&opts.width, "width", 0, "覆盖根容器宽度")
	f.Float64Var(&opts.height, "height", 0, "覆盖根容器高度")
	return cmd
}

// applyConfig 用配置补全没有在命令行给出的输出路径。
func (o *solveOptions) applyConfig(cfg Config) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&o.debug, cfg.Output.Debug)
	fill(&o.pdf, cfg.Output.PDF)
	fill(&o.dot, cfg.Output.DOT)
	fill(&o.svg, cfg.Output.SVG)
}

func runSolve(cmd *cobra.Command, path string, opts solveOptions, cfg Config) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	var data any
	if opts.data != "" {
		if err := json.Unmarshal([]byte(opts.data), &data); err != nil {
			return fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}
	s, err := loadState(path, data, cfg.Canvas)
	if err != nil {
		return err
	}
	if opts.width > 0 {
		s.Width(state.Fixed(opts.width))
	}
	if opts.height > 0 {
		s.Height(state.Fixed(opts.height))
	}

	c, err := s.Solve(layout.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	res := c.Result()
	logger.Info("solved", "file", path, "widgets", len(res.Widgets), "width", res.Width, "height", res.Height)

	if opts.debug != "" {
		if err := ensureDir(opts.debug); err != nil {
			return err
		}
		if err := layout.WriteDebugJSON(res, opts.debug); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	} else if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}

	if opts.pdf != "" {
		r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			Scale:  cfg.Render.Scale,
			Margin: cfg.Render.Margin,
			Font:   canvasrenderer.Resource{Path: cfg.Render.Font},
			Title:  filepath.Base(path),
		})
		if err := renderTo(r, res, opts.pdf); err != nil {
			return err
		}
		logger.Info("wrote pdf", "path", opts.pdf)
	}
	if opts.dot != "" {
		if err := writeFile(opts.dot, []byte(layout.AnchorGraphDOT(res))); err != nil {
			return err
		}
	}
	if opts.svg != "" {
		var buf bytes.Buffer
		if err := layout.RenderAnchorGraphSVG(ctx, res, &buf); err != nil {
			return fmt.Errorf("渲染锚点图失败: %w", err)
		}
		if err := writeFile(opts.svg, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// loadState 读取 CL 文档，替换模板变量后应用到新的 State。
// canvas 中的尺寸先于文档生效，文档里的 parent 尺寸可以覆盖它。
func loadState(path string, data any, canvas CanvasConfig) (*state.State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开 CL 文件 %s: %w", path, err)
	}
	text, err := binding.Expand(string(raw), data)
	if err != nil {
		return nil, fmt.Errorf("替换模板变量失败: %w", err)
	}
	s := state.New()
	if canvas.Width > 0 {
		s.Width(state.Fixed(canvas.Width))
	}
	if canvas.Height > 0 {
		s.Height(state.Fixed(canvas.Height))
	}
	if err := state.ParseConstraintSet(text, s); err != nil {
		return nil, fmt.Errorf("解析 CL 文件 %s 失败: %w", path, err)
	}
	return s, nil
}

func renderTo(r renderer.Renderer, res *layout.Result, path string) error {
	out, err := r.Render(res)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	return writeFile(path, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("输出 JSON 失败: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}
