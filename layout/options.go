package layout

import (
	"fmt"
	"image"
)

// 原始生成脚本使用的默认版式参数（单位：像素）。
const (
	DefaultCellWidth    = 50
	DefaultCellHeight   = 50
	DefaultMarginWidth  = 100
	DefaultMarginHeight = 100
	DefaultPageWidth    = 1000
	DefaultPageHeight   = 1000
	DefaultMaxRotation  = 10.0
	DefaultLineGap      = 30.0
	DefaultCharsPerLine = 50
	DefaultRotationStep = 10.0
)

// DefaultSpecial 是无需裁边、按原样贴入的标点字形。
var DefaultSpecial = []rune{
	'.', ',', '?', ';', '!', '"', '\'', '/', '~', '@', '#', '%', '^', '&', '*',
	'(', ')', '-', '+', '>', '<', '[', ']', '{', '}', '₩',
}

// Params 是一次生成任务内固定不变的版式参数。
type Params struct {
	CellWidth    int     `json:"cellWidth"`
	CellHeight   int     `json:"cellHeight"`
	PageWidth    int     `json:"pageWidth"`
	PageHeight   int     `json:"pageHeight"`
	MarginWidth  int     `json:"marginWidth"`
	MarginHeight int     `json:"marginHeight"`
	LineGap      float64 `json:"lineGap"`     // 行间距基数，实际间距为 U(0.3, 1.0) × LineGap
	MaxRotation  float64 `json:"maxRotation"` // 单个字形的最大旋转角（度）
	RotationStep float64 `json:"rotationStep"`
	CharsPerLine int     `json:"charsPerLine"` // 为 0 时由页宽推导
	CharsPerPage int     `json:"charsPerPage"` // 为 0 时由页高推导
	Special      []rune  `json:"special"`
}

// DefaultParams 返回原始生成脚本的参数组合。
func DefaultParams() Params {
	return Params{
		CellWidth:    DefaultCellWidth,
		CellHeight:   DefaultCellHeight,
		PageWidth:    DefaultPageWidth,
		PageHeight:   DefaultPageHeight,
		MarginWidth:  DefaultMarginWidth,
		MarginHeight: DefaultMarginHeight,
		LineGap:      DefaultLineGap,
		MaxRotation:  DefaultMaxRotation,
		RotationStep: DefaultRotationStep,
		CharsPerLine: DefaultCharsPerLine,
		Special:      append([]rune(nil), DefaultSpecial...),
	}
}

// Resolved 补齐可推导的字段：每行字数、每页字数。
func (p Params) Resolved() Params {
	if p.CharsPerLine <= 0 && p.CellWidth > 0 {
		p.CharsPerLine = max((p.PageWidth-2*p.MarginWidth)/p.CellWidth, 1)
	}
	if p.CharsPerPage <= 0 {
		p.CharsPerPage = p.LinesPerPage() * p.CharsPerLine
	}
	return p
}

// LinesPerPage 按 页高 / (字高 + 行距) 推导每页行数，至少为 1。
func (p Params) LinesPerPage() int {
	pitch := float64(p.CellHeight) + p.LineGap
	if pitch <= 0 {
		return 1
	}
	return max(int(float64(p.PageHeight)/pitch), 1)
}

// ContentBox 返回页面上放置行堆叠的区域。行图像自带左右边距，因此只在上下方向留白。
func (p Params) ContentBox() image.Rectangle {
	return image.Rect(0, p.MarginHeight, p.PageWidth, p.PageHeight-p.MarginHeight)
}

// Validate 检查参数组合是否可用于排版。
func (p Params) Validate() error {
	switch {
	case p.CellWidth <= 0 || p.CellHeight <= 0:
		return fmt.Errorf("layout: 字格尺寸必须为正数（%dx%d）", p.CellWidth, p.CellHeight)
	case p.PageWidth <= 0 || p.PageHeight <= 0:
		return fmt.Errorf("layout: 页面尺寸必须为正数（%dx%d）", p.PageWidth, p.PageHeight)
	case p.MarginWidth < 0 || p.MarginHeight < 0:
		return fmt.Errorf("layout: 边距不能为负数")
	case 2*p.MarginHeight >= p.PageHeight:
		return fmt.Errorf("layout: 上下边距 %d 超出页高 %d", p.MarginHeight, p.PageHeight)
	case p.LineGap < 0:
		return fmt.Errorf("layout: 行距不能为负数")
	case p.MaxRotation < 0 || p.RotationStep < 0:
		return fmt.Errorf("layout: 旋转角不能为负数")
	case p.CharsPerLine <= 0:
		return fmt.Errorf("layout: 每行字数必须为正数")
	case p.CharsPerPage <= 0:
		return fmt.Errorf("layout: 每页字数必须为正数")
	}
	return nil
}
