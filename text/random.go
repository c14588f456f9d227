package text

import (
	"strings"
	"unicode"
)

const maxWordLength = 5

// Rand 是随机文本生成所需的随机源，*rand.Rand（math/rand/v2）满足该接口。
type Rand interface {
	IntN(n int) int
}

// Random 生成长度不超过 maxLength 的随机文本：每个“单词”长度在 [1, 5] 之间，
// 字符从 chars 中有放回地均匀抽取，单词之间以单个空格分隔。
// 达到 maxLength 时截断最后一个单词，并去掉末尾空格。
// 用于生成覆盖稀有字符的预热数据，不受语料词频影响。
func Random(chars []rune, maxLength int, rng Rand) string {
	pool := printable(chars)
	if len(pool) == 0 || maxLength <= 0 {
		return ""
	}
	out := make([]rune, 0, maxLength)
	for len(out) < maxLength {
		n := 1 + rng.IntN(maxWordLength)
		for i := 0; i < n && len(out) < maxLength; i++ {
			out = append(out, pool[rng.IntN(len(pool))])
		}
		if len(out) < maxLength {
			out = append(out, ' ')
		}
	}
	return strings.TrimRight(string(out), " ")
}

// Coverage 生成恰好包含 chars 中每个字符一次的文本，字符顺序随机，
// 按 [1, 5] 的随机长度分词。
func Coverage(chars []rune, rng Rand) string {
	pool := printable(chars)
	for i := len(pool) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	var b strings.Builder
	for len(pool) > 0 {
		n := min(1+rng.IntN(maxWordLength), len(pool))
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(pool[:n]))
		pool = pool[n:]
	}
	return b.String()
}

// printable 复制 chars 并剔除空白，避免产生连续空格。
func printable(chars []rune) []rune {
	out := make([]rune, 0, len(chars))
	for _, r := range chars {
		if !unicode.IsSpace(r) {
			out = append(out, r)
		}
	}
	return out
}
