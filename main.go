package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"

	"github.com/ByLCY/calligram/batch"
	"github.com/ByLCY/calligram/corpus"
	"github.com/ByLCY/calligram/glyph"
	"github.com/ByLCY/calligram/job"
	"github.com/ByLCY/calligram/layout"
	"github.com/ByLCY/calligram/text"
)

// tracer traces with key 'calligram.cli'
func tracer() tracing.Trace {
	return tracing.Select("calligram.cli")
}

var traceKeys = []string{"cli", "job", "glyph", "layout", "batch"}

// flags 是可覆盖任务文件的命令行参数。
type flags struct {
	job     string
	corpus  string
	out     string
	workers int
	seed    uint64
	mode    string
	format  string
	debug   bool
	trace   string
}

func main() {
	var f flags
	flag.StringVar(&f.job, "job", "", "任务文件路径（缺省时使用默认参数）")
	flag.StringVar(&f.corpus, "corpus", "", "语料目录（递归读取 .txt）")
	flag.StringVar(&f.out, "out", "", "输出目录")
	flag.IntVar(&f.workers, "workers", 0, "并发 worker 数")
	flag.Uint64Var(&f.seed, "seed", 0, "随机种子")
	flag.StringVar(&f.mode, "mode", "", "分页模式 [split|sample]")
	flag.StringVar(&f.format, "format", "", "输出格式 [png|jpeg|tiff|bmp|pdf]")
	flag.BoolVar(&f.debug, "debug", false, "输出每页的排版调试 JSON")
	flag.StringVar(&f.trace, "trace", "Info", "Trace level [Debug|Info|Error]")
	flag.Parse()

	if err := setupTracing(f.trace); err != nil {
		fmt.Fprintf(os.Stderr, "error configuring tracing: %v\n", err)
		os.Exit(1)
	}

	set := map[string]bool{}
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	failed, err := run(ctx, f, set)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(2)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func setupTracing(level string) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{"tracing.adapter": "go"}
	for _, key := range traceKeys {
		conf["trace.calligram."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return err
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

// loadJob 读取任务文件并应用命令行覆盖项。
func loadJob(f flags, set map[string]bool) (*job.Job, error) {
	j := job.Default()
	if f.job != "" {
		var err error
		if j, err = job.Load(f.job); err != nil {
			return nil, err
		}
	}
	if set["out"] {
		j.Output.Dir = f.out
	}
	if set["workers"] {
		j.Output.Workers = f.workers
	}
	if set["seed"] {
		j.Output.Seed = f.seed
	}
	if set["mode"] {
		j.Output.Mode = job.Mode(f.mode)
	}
	if set["format"] {
		j.Output.Format = f.format
	}
	if set["debug"] {
		j.Output.Debug = f.debug
	}
	return j, j.Validate()
}

// run 串联任务加载、数据集校验、任务规划与批量生成，返回失败的任务数。
func run(ctx context.Context, f flags, set map[string]bool) (int, error) {
	j, err := loadJob(f, set)
	if err != nil {
		return 0, err
	}

	// 数据集结构错误在任何任务开始前终止整批
	idx, err := glyph.OpenWithOptions(glyph.Options{
		Root:          j.Dataset.Root,
		Ext:           j.Dataset.Ext,
		CacheCapacity: j.Dataset.Cache,
	})
	if err != nil {
		return 0, fmt.Errorf("加载字形数据集失败: %w", err)
	}
	asm, err := layout.NewAssembler(idx, j.Layout)
	if err != nil {
		return 0, err
	}
	params := asm.Params()
	pterm.Info.Printfln("数据集 %s: %d 个变体, %d 个字符, 每页 %d 字",
		idx.Root(), idx.VariantCount(), len(idx.Characters()), params.CharsPerPage)

	docs, err := loadDocuments(f.corpus, j, text.NewCharset(idx.Characters()))
	if err != nil {
		return 0, err
	}
	tasks := plan(j, docs, idx, params)
	if len(tasks) == 0 {
		pterm.Warning.Println("没有可生成的页面：请指定 -corpus、内联文本或热身页数")
		return 0, nil
	}

	if err := batch.CheckTemplate(j.Output.Name); err != nil {
		return 0, err
	}
	rend, err := batch.RendererFor(j.Output.Format, j.Output.DPI, j.Output.Quality)
	if err != nil {
		return 0, err
	}
	sink := &batch.FileSink{Dir: j.Output.Dir, Template: j.Output.Name, Renderer: rend, Debug: j.Output.Debug}

	bar, err := pterm.DefaultProgressbar.WithTotal(len(tasks)).WithTitle("生成页面").Start()
	if err != nil {
		return 0, err
	}
	runner := batch.NewRunner(asm, sink, batch.Options{
		Workers:  j.Output.Workers,
		Seed:     j.Output.Seed,
		OnResult: func(batch.Result) { bar.Increment() },
	})
	tracer().Infof("running %d tasks on %d workers", len(tasks), runner.Workers())
	results := runner.Run(ctx, tasks)
	_, _ = bar.Stop()

	summary := batch.Summarize(results)
	for _, e := range summary.Errors {
		pterm.Error.Println(e)
	}
	pterm.Success.Printfln("完成 %d/%d 页，写出 %d 个文件到 %s",
		summary.Total-summary.Failed, summary.Total, summary.Files, j.Output.Dir)
	return summary.Failed, nil
}

// loadDocuments 读取语料与内联文本并清洗为可渲染字符。
func loadDocuments(dir string, j *job.Job, cs text.Charset) ([]corpus.Document, error) {
	var docs []corpus.Document
	if dir != "" {
		var err error
		docs, err = corpus.LoadEncoded(dir, j.Text.Encoding)
		if err != nil {
			return nil, err
		}
	}
	for i, s := range j.Text.Inline {
		docs = append(docs, corpus.Document{Key: fmt.Sprintf("inline%02d", i+1), Text: s})
	}
	for i := range docs {
		docs[i].Text = text.Clean(docs[i].Text, cs)
	}
	tracer().Infof("loaded %d documents", len(docs))
	return docs, nil
}

// plan 按分页模式与热身配置生成全部任务。规划所用的随机源独立于各任务的随机源。
func plan(j *job.Job, docs []corpus.Document, idx *glyph.Index, params layout.Params) []batch.Task {
	rng := batch.TaskRand(j.Output.Seed, -1)
	variants := idx.VariantCount()

	var tasks []batch.Task
	switch j.Output.Mode {
	case job.ModeSample:
		tasks = batch.PlanSample(docs, params.CharsPerPage, variants, rng)
	default:
		tasks = batch.PlanSplit(docs, params.CharsPerPage, variants)
	}

	warm := batch.Warmup{Pages: j.Text.Warmup, Length: j.Text.WarmupLength, Coverage: j.Text.Coverage}
	tasks = append(tasks, batch.PlanWarmup(idx.Characters(), warm, params.CharsPerPage, variants, rng)...)
	return batch.Number(tasks)
}
