package renderer

import "github.com/ByLCY/calligram/layout"

// Renderer 将合成页面编码为最终文件，例如 PNG 图像或 PDF。
// Render 返回生成的二进制数据以及可能的错误；Ext 返回对应的文件扩展名（不含点）。
type Renderer interface {
	Render(page *layout.Page) ([]byte, error)
	Ext() string
}
