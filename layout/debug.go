package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-graphviz"
)

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// AnchorGraphDOT 把锚点连接导出为 Graphviz DOT，节点为控件，边为连接。
func AnchorGraphDOT(res *Result) string {
	var buf bytes.Buffer
	buf.WriteString("digraph anchors {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  \"parent\" [shape=doubleoctagon];\n")
	for _, f := range res.Widgets {
		label := fmt.Sprintf("%s\n%.1f,%.1f %.1fx%.1f", f.Name, f.X, f.Y, f.Width, f.Height)
		attrs := fmt.Sprintf("label=%q", label)
		switch f.Kind {
		case "guideline", "barrier":
			attrs += ", style=\"rounded,dashed\""
		case "flow", "container":
			attrs += ", fillcolor=lightgrey"
		}
		if f.Visibility == "gone" {
			attrs += ", fontcolor=grey"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", f.Name, attrs)
	}
	for _, c := range res.Connections {
		label := fmt.Sprintf("%s→%s", c.FromAnchor, c.ToAnchor)
		if c.Margin != 0 {
			label += fmt.Sprintf(" (%g)", c.Margin)
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", c.From, c.To, label)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderAnchorGraphSVG 通过 Graphviz 把锚点图渲染为 SVG。
func RenderAnchorGraphSVG(ctx context.Context, res *Result, w io.Writer) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(AnchorGraphDOT(res)))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if err := gv.Render(ctx, g, graphviz.SVG, w); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
