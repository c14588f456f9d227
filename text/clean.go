// Package text 将原始语料清洗为数据集可渲染的字符串，并生成用于预热训练的随机文本。
package text

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Charset 是可渲染字符的集合。空白字符不需要出现在集合中。
type Charset map[rune]struct{}

// NewCharset 由字符列表构造集合。
func NewCharset(chars []rune) Charset {
	cs := make(Charset, len(chars))
	for _, r := range chars {
		cs[r] = struct{}{}
	}
	return cs
}

// Contains 报告 r 是否可渲染。
func (cs Charset) Contains(r rune) bool {
	_, ok := cs[r]
	return ok
}

// Runes 返回按码位升序排列的非空白字符。
func (cs Charset) Runes() []rune {
	out := make([]rune, 0, len(cs))
	for r := range cs {
		if !unicode.IsSpace(r) {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return out
}

// 括号对：定界符本身不可渲染时，整段注释（如汉字注音“(大韓)”）连同内容一起删除。
var brackets = map[rune]rune{
	'(': ')',
	'[': ']',
	'{': '}',
	'（': '）',
	'［': '］',
}

// Clean 只保留 cs 中的字符，把任意空白串折叠为单个空格并去掉首尾空白。
// 输入先做 NFC 归一化，使分解形式的韩文音节与数据集码位一致。
// 删除字符后相邻的组合字母（如 U+1100 U+1161）可能重新组合，
// 因此重复清洗直到结果不再变化；Clean 是幂等的。
func Clean(raw string, cs Charset) string {
	s := cleanOnce(raw, cs)
	for range len(s) {
		next := cleanOnce(s, cs)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func cleanOnce(raw string, cs Charset) string {
	src := []rune(norm.NFC.String(raw))
	var b strings.Builder
	b.Grow(len(raw))
	pendingSpace := false
	for i := 0; i < len(src); i++ {
		r := src[i]
		if closer, ok := brackets[r]; ok && !cs.Contains(r) {
			if end := matchBracket(src, i, r, closer); end > i {
				i = end
				continue
			}
		}
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if !cs.Contains(r) {
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// matchBracket 返回与 src[start] 配对的闭合括号下标，不存在时返回 -1。支持嵌套。
func matchBracket(src []rune, start int, open, closer rune) int {
	depth := 0
	for j := start; j < len(src); j++ {
		switch src[j] {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}
