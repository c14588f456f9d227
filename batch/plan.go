package batch

import (
	"fmt"

	"github.com/ByLCY/calligram/corpus"
	"github.com/ByLCY/calligram/layout"
	"github.com/ByLCY/calligram/text"
)

// Kind 标记任务文本的来源。
type Kind string

const (
	KindCorpus   Kind = "corpus"
	KindWarmup   Kind = "warmup"
	KindCoverage Kind = "coverage"
)

// Task 是一个独立的生成单元：一段文本在一个变体下渲染成一页。
type Task struct {
	Ordinal int    `json:"ordinal"` // 在整批任务中的序号，决定该任务的随机种子
	Kind    Kind   `json:"kind"`
	Doc     string `json:"doc"`
	Index   int    `json:"index"` // 文档序号，从 1 开始
	Page    int    `json:"page"`  // 文档内页号，从 1 开始
	Variant int    `json:"variant"`
	Offset  int    `json:"offset"` // 页面文本在文档中的字符偏移
	Text    string `json:"-"`
}

func (t Task) String() string {
	return fmt.Sprintf("%s#%d page %d variant %d", t.Doc, t.Index, t.Page, t.Variant)
}

// PlanSplit 把每篇文档切成连续不重叠的整页，每页在每个变体下各生成一个任务。
// 空文档被跳过，但仍占用文档序号，使序号与语料顺序一致。
func PlanSplit(docs []corpus.Document, perPage, variants int) []Task {
	var tasks []Task
	for i, doc := range docs {
		for j, chunk := range layout.Split(doc.Text, perPage) {
			for v := range variants {
				tasks = append(tasks, Task{
					Kind: KindCorpus, Doc: doc.Key, Index: i + 1,
					Page: j + 1, Variant: v, Offset: chunk.Offset, Text: chunk.Text,
				})
			}
		}
	}
	return tasks
}

// PlanSample 为每篇文档在每个变体下从随机偏移处抽取一页。
func PlanSample(docs []corpus.Document, perPage, variants int, rng layout.Intn) []Task {
	var tasks []Task
	for i, doc := range docs {
		if doc.Text == "" {
			continue
		}
		for v := range variants {
			chunk := layout.Sample(doc.Text, perPage, rng)
			tasks = append(tasks, Task{
				Kind: KindCorpus, Doc: doc.Key, Index: i + 1,
				Page: 1, Variant: v, Offset: chunk.Offset, Text: chunk.Text,
			})
		}
	}
	return tasks
}

// Warmup 描述随机预热文本的生成方式。
type Warmup struct {
	Pages    int  // 每个变体的随机文本页数
	Length   int  // 每页随机文本长度，超过每页字数时按每页字数截断
	Coverage bool // 额外生成覆盖全部字符的文本，超过一页时切成多页
}

// PlanWarmup 为每个变体生成随机文本任务。随机文本不依赖变体，
// 同一页号在所有变体下使用相同的文本，便于比较不同笔迹。
// perPage 是一页可容纳的字数，<=0 表示不限制。
func PlanWarmup(chars []rune, w Warmup, perPage, variants int, rng text.Rand) []Task {
	length := w.Length
	if perPage > 0 && (length <= 0 || length > perPage) {
		length = perPage
	}
	var tasks []Task
	for p := range w.Pages {
		s := text.Random(chars, length, rng)
		for v := range variants {
			tasks = append(tasks, Task{Kind: KindWarmup, Doc: "warmup", Page: p + 1, Variant: v, Text: s})
		}
	}
	if w.Coverage {
		for j, chunk := range layout.Split(text.Coverage(chars, rng), length) {
			for v := range variants {
				tasks = append(tasks, Task{
					Kind: KindCoverage, Doc: "coverage", Page: j + 1,
					Variant: v, Offset: chunk.Offset, Text: chunk.Text,
				})
			}
		}
	}
	return tasks
}

// Number 按顺序为任务分配序号。
func Number(tasks []Task) []Task {
	for i := range tasks {
		tasks[i].Ordinal = i
	}
	return tasks
}
