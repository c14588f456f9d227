package text

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func hangulSet() Charset {
	return NewCharset([]rune{'가', '나', '다', '라'})
}

func TestCleanDropsParentheticalAndCollapsesSpaces(t *testing.T) {
	assert.Equal(t, "가다 라", Clean("가(나)다  라", hangulSet()))
}

func TestCleanCases(t *testing.T) {
	cs := NewCharset([]rune{'a', 'b', 'c', '.', '('})
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"  a  b  ", "a b"},
		{"a\t\n　b", "a b"},
		{"a % b", "a b"},
		{"%%a", "a"},
		{"a.b", "a.b"},
		{"x(a)", "(a"}, // '(' 可渲染时不视为注释
		{"a [zz] b", "a b"},
		{"a [unclosed b", "a c b"}, // 未闭合的括号只丢弃自身
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Clean(c.in, cs), "Clean(%q)", c.in)
	}
}

func TestCleanNormalizesDecomposedHangul(t *testing.T) {
	// U+1100 U+1161 是“가”的分解形式
	assert.Equal(t, "\uAC00", Clean("\u1100\u1161", hangulSet()))
}

func TestCleanRecomposesAfterFiltering(t *testing.T) {
	// 中间的 x 被删掉后，两侧的组合字母重新组合为“가”
	cs := NewCharset([]rune{'\u1100', '\u1161', '가'})
	once := Clean("\u1100x\u1161", cs)
	assert.Equal(t, "가", once)
	assert.Equal(t, once, Clean(once, cs))

	// 组合结果不在字符集中时一并删除
	jamo := NewCharset([]rune{'\u1100', '\u1161'})
	once = Clean("\u1100x\u1161 \u1100", jamo)
	assert.Equal(t, "\u1100", once)
	assert.Equal(t, once, Clean(once, jamo))
}

func TestCleanIsIdempotentSubsequence(t *testing.T) {
	cs := hangulSet()
	rng := rand.New(rand.NewPCG(3, 5))
	alphabet := []rune("가나다라마 ()\t.")
	for range 200 {
		raw := make([]rune, rng.IntN(40))
		for i := range raw {
			raw[i] = alphabet[rng.IntN(len(alphabet))]
		}
		once := Clean(string(raw), cs)
		assert.Equal(t, once, Clean(once, cs))
		assert.NotContains(t, once, "  ")
		assert.Equal(t, strings.TrimSpace(once), once)
		for _, r := range once {
			assert.True(t, r == ' ' || cs.Contains(r), "unexpected %q in %q", r, once)
		}
		assert.True(t, isSubsequence([]rune(once), raw), "%q not a subsequence of %q", once, string(raw))
	}
}

func isSubsequence(sub, full []rune) bool {
	i := 0
	for _, r := range full {
		if i < len(sub) && (sub[i] == r || (sub[i] == ' ' && (r == '\t' || r == ' '))) {
			i++
		}
	}
	return i == len(sub)
}

func TestRandomRespectsLengthAndAlphabet(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	for range 500 {
		s := Random([]rune{'가', '나'}, 5, rng)
		assert.LessOrEqual(t, utf8.RuneCountInString(s), 5)
		assert.NotEmpty(t, s)
		assert.Equal(t, strings.TrimSpace(s), s)
		assert.NotContains(t, s, "  ")
		for _, r := range s {
			assert.Contains(t, []rune{'가', '나', ' '}, r)
		}
	}
}

func TestRandomWordLengths(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	s := Random([]rune("abc"), 400, rng)
	words := strings.Split(s, " ")
	for _, w := range words[:len(words)-1] {
		assert.GreaterOrEqual(t, len(w), 1)
		assert.LessOrEqual(t, len(w), maxWordLength)
	}
}

func TestRandomDegenerateInputs(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	assert.Equal(t, "", Random(nil, 10, rng))
	assert.Equal(t, "", Random([]rune{' '}, 10, rng))
	assert.Equal(t, "", Random([]rune{'a'}, 0, rng))
	assert.Equal(t, "a", Random([]rune{'a', ' '}, 1, rng))
}

func TestCoverageUsesEveryCharacterOnce(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 2))
	chars := []rune("가나다라마바사아자차카타파하")
	s := Coverage(chars, rng)
	got := []rune(strings.ReplaceAll(s, " ", ""))
	slices.Sort(got)
	want := slices.Clone(chars)
	slices.Sort(want)
	assert.Equal(t, want, got)
	assert.NotContains(t, s, "  ")
	assert.Equal(t, strings.TrimSpace(s), s)
}

func TestCharsetRunesSkipsWhitespace(t *testing.T) {
	cs := NewCharset([]rune{'다', ' ', '가'})
	assert.Equal(t, []rune{'가', '다'}, cs.Runes())
}
