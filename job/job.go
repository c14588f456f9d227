// Package job 描述一次生成任务：字形数据集位置、版式参数、输出方式与补充文本，
// 并负责把 DSL 任务文件转换为该模型。
package job

import (
	"fmt"
	"os"
	"slices"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ByLCY/calligram/cache"
	"github.com/ByLCY/calligram/glyph"
	"github.com/ByLCY/calligram/layout"
)

// tracer traces with key 'calligram.job'
func tracer() tracing.Trace {
	return tracing.Select("calligram.job")
}

// Mode 决定长文本如何切成页面。
type Mode string

const (
	// ModeSplit 将文本切成连续不重叠的整页，每页在每个变体下各渲染一次。
	ModeSplit Mode = "split"
	// ModeSample 每个文档在每个变体下从随机偏移处抽取一页。
	ModeSample Mode = "sample"
)

// Formats 是支持的输出格式。
var Formats = []string{"png", "jpeg", "tiff", "bmp", "pdf"}

// Default values that have no counterpart in layout.Params.
const (
	DefaultDPI          = 300.0
	DefaultNameTemplate = "text${doc}_${page}_${variant}"
	DefaultWarmupLength = 600
)

// Job 是一次生成任务的完整配置。
type Job struct {
	Name    string        `json:"name"`
	Version string        `json:"version"`
	Dataset Dataset       `json:"dataset"`
	Layout  layout.Params `json:"layout"`
	Output  Output        `json:"output"`
	Text    Text          `json:"text"`
}

// Dataset 定位字形数据集。
type Dataset struct {
	Root  string `json:"root"`
	Ext   string `json:"ext"`
	Cache int    `json:"cache"`
}

// Output 控制输出命名、格式与批处理执行。
type Output struct {
	Dir     string  `json:"dir"`
	Name    string  `json:"name"`
	Format  string  `json:"format"`
	Mode    Mode    `json:"mode"`
	Seed    uint64  `json:"seed"`
	Workers int     `json:"workers"`
	DPI     float64 `json:"dpi"`
	Quality int     `json:"quality,omitempty"` // JPEG 质量 1–100，0 表示默认
	Debug   bool    `json:"debug"`
}

// Text 配置随机热身文本与任务文件内联的文档。
type Text struct {
	Warmup       int      `json:"warmup"`       // 每个变体生成的随机文本页数
	WarmupLength int      `json:"warmupLength"` // 随机文本长度，0 表示按每页字数
	Coverage     bool     `json:"coverage"`     // 额外生成覆盖全部字符各一次的文本
	Encoding     string   `json:"encoding"`     // 语料文件字符集，空表示 UTF-8
	Inline       []string `json:"inline,omitempty"`
}

// Default 返回原始生成脚本的默认任务。
func Default() *Job {
	return &Job{
		Name:    "calligram",
		Version: "v1",
		Dataset: Dataset{Ext: glyph.DefaultExt, Cache: cache.DefaultCapacity},
		Layout:  layout.DefaultParams(),
		Output: Output{
			Dir:    "output",
			Name:   DefaultNameTemplate,
			Format: "png",
			Mode:   ModeSplit,
			DPI:    DefaultDPI,
		},
		Text: Text{WarmupLength: DefaultWarmupLength},
	}
}

// Load 读取并解析任务文件。
func Load(path string) (*Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("job: 打开任务文件失败: %w", err)
	}
	defer f.Close()
	j, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("job: %s: %w", path, err)
	}
	tracer().Infof("loaded job %s %s from %s", j.Name, j.Version, path)
	return j, nil
}

// Validate 检查任务配置是否完整可用。
func (j *Job) Validate() error {
	if j.Dataset.Root == "" {
		return fmt.Errorf("job: 未指定字形数据集目录")
	}
	if j.Dataset.Ext == "" {
		return fmt.Errorf("job: 未指定字形图像扩展名")
	}
	if !slices.Contains(Formats, j.Output.Format) {
		return fmt.Errorf("job: 不支持的输出格式 %q", j.Output.Format)
	}
	switch j.Output.Mode {
	case ModeSplit, ModeSample:
	default:
		return fmt.Errorf("job: 未知的分页模式 %q", j.Output.Mode)
	}
	if j.Output.Quality < 0 || j.Output.Quality > 100 {
		return fmt.Errorf("job: 输出质量 %d 超出 0–100", j.Output.Quality)
	}
	if j.Output.Workers < 0 {
		return fmt.Errorf("job: 并发数不能为负数")
	}
	if j.Text.Warmup < 0 || j.Text.WarmupLength < 0 {
		return fmt.Errorf("job: 热身文本参数不能为负数")
	}
	return j.Layout.Resolved().Validate()
}
