package glyph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDatasetEmpty 表示数据集目录下没有任何匹配扩展名的字形文件。
var ErrDatasetEmpty = errors.New("glyph: 数据集为空")

// InvalidFileError 表示数据集中存在不符合 <variant>/<HHHH>.<ext> 命名约定的文件。
type InvalidFileError struct {
	Root string
	Path string
}

func (e *InvalidFileError) Error() string {
	return fmt.Sprintf("glyph: 数据集 %s 中存在非法文件: %s", e.Root, e.Path)
}

// InconsistentVariantError 表示某个变体的字符集合与基准变体（字典序最小者）不一致。
type InconsistentVariantError struct {
	Base    string
	Variant string
	Missing []rune // 基准变体有、该变体缺少的字符
	Extra   []rune // 该变体多出的字符
}

func (e *InconsistentVariantError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "glyph: 变体 %s 的字符集合与 %s 不一致", e.Variant, e.Base)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "，缺少 %s", codepointList(e.Missing))
	}
	if len(e.Extra) > 0 {
		fmt.Fprintf(&b, "，多出 %s", codepointList(e.Extra))
	}
	return b.String()
}

// InvalidVariantError 表示请求的变体下标越界。
type InvalidVariantError struct {
	Index int
	Count int
}

func (e *InvalidVariantError) Error() string {
	return fmt.Sprintf("glyph: 变体下标 %d 越界（共 %d 个变体）", e.Index, e.Count)
}

// MissingGlyphError 表示解析出的字形路径在加载时不存在或无法读取。
type MissingGlyphError struct {
	Char    rune
	Variant int
	Path    string
	Err     error
}

func (e *MissingGlyphError) Error() string {
	return fmt.Sprintf("glyph: 字形 %q (U+%04X, 变体 %d) 缺失: %s", e.Char, e.Char, e.Variant, e.Path)
}

func (e *MissingGlyphError) Unwrap() error { return e.Err }

func codepointList(rs []rune) string {
	const limit = 8
	parts := make([]string, 0, min(len(rs), limit)+1)
	for i, r := range rs {
		if i == limit {
			parts = append(parts, fmt.Sprintf("…共 %d 个", len(rs)))
			break
		}
		parts = append(parts, fmt.Sprintf("U+%04X", r))
	}
	return strings.Join(parts, " ")
}
