package layout

import "image"

// 该文件定义排版结果，供渲染输出与调试 JSON 共用。

// Page 是一页合成结果：固定尺寸的页面图像与逐字对应的标注文本。
type Page struct {
	Image   *image.RGBA `json:"-"`
	Text    string      `json:"text"` // 以换行连接的各行标注，与图像中的字形一一对应
	Variant int         `json:"variant"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Scale   float64     `json:"scale"` // 行堆叠放入页面时的缩放比例，1 表示未缩放
	Lines   []Line      `json:"lines"`
}

// Line 记录单行图像及其字形摆放信息。
type Line struct {
	Image  *image.RGBA `json:"-"`
	Text   string      `json:"text"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Glyphs []Placement `json:"glyphs"`
}

// Placement 描述一个字符在行内的处理方式。
type Placement struct {
	Char     string   `json:"char"`
	Kind     string   `json:"kind"` // blank | special | glyph
	Rotation float64  `json:"rotation,omitempty"`
	Width    int      `json:"width"` // 旋转、裁边后、拼接缩放前的宽度
	Height   int      `json:"height"`
	Position Position `json:"position"` // 处理该字符后的抖动状态
}

const (
	kindBlank   = "blank"
	kindSpecial = "special"
	kindGlyph   = "glyph"
)
