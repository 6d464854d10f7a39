package renderer

import "github.com/ByLCY/constraintkit/layout"

// Renderer 将求解结果输出为文件内容，例如线框 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
