// Package batch 将语料规划为独立的页面任务，并用固定数量的 worker 并发生成。
// 单个任务失败（缺失或损坏的字形、写文件失败、panic）只记录在该任务的结果中，不中断整批。
package batch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ByLCY/calligram/compose"
	"github.com/ByLCY/calligram/layout"
)

// tracer traces with key 'calligram.batch'
func tracer() tracing.Trace {
	return tracing.Select("calligram.batch")
}

// PageRenderer 将文本渲染为页面，*layout.Assembler 满足该接口。
type PageRenderer interface {
	RenderPage(text string, variant int, rng compose.Rand) (*layout.Page, error)
}

// Sink 持久化一页结果，返回写出的文件路径。
type Sink interface {
	Write(task Task, page *layout.Page) ([]string, error)
}

// Options 配置批处理执行。
type Options struct {
	Workers int    // worker 数量，<= 0 时使用 GOMAXPROCS
	Seed    uint64 // 与任务序号一起决定每个任务的随机源
	// OnResult 在每个任务完成后调用，调用之间互斥，可用于进度显示。
	OnResult func(Result)
}

// Result 是单个任务的执行结果。
type Result struct {
	Task     Task
	Label    string
	Files    []string
	Err      error
	Duration time.Duration
}

// OK 报告任务是否成功。
func (r Result) OK() bool { return r.Err == nil }

// Runner 以 worker 池执行任务。
type Runner struct {
	pages PageRenderer
	sink  Sink
	opts  Options
	mu    sync.Mutex
}

// NewRunner 构造 Runner。
func NewRunner(pages PageRenderer, sink Sink, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{pages: pages, sink: sink, opts: opts}
}

// Workers 返回 worker 数量。
func (r *Runner) Workers() int { return r.opts.Workers }

// TaskRand 返回任务专属的随机源。种子只取决于批次种子与任务序号，
// 因此结果与调度顺序无关。
func TaskRand(seed uint64, ordinal int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(ordinal)))
}

// Run 执行全部任务，返回与 tasks 一一对应的结果。
// ctx 取消后不再分派新任务，已开始的任务会执行完毕；未分派的任务结果带有 ctx.Err()。
func (r *Runner) Run(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	queue := make(chan int)

	var wg sync.WaitGroup
	wg.Add(r.opts.Workers)
	for range r.opts.Workers {
		go func() {
			defer wg.Done()
			for i := range queue {
				results[i] = r.execute(tasks[i])
				r.report(results[i])
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(tasks); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case queue <- next:
		}
	}
	close(queue)
	wg.Wait()

	for i := next; i < len(tasks); i++ {
		results[i] = Result{Task: tasks[i], Err: ctx.Err()}
	}
	return results
}

func (r *Runner) report(res Result) {
	if r.opts.OnResult == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.OnResult(res)
}

// execute 运行单个任务，panic 被转换为该任务的错误。
func (r *Runner) execute(task Task) (res Result) {
	start := time.Now()
	res.Task = task
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("batch: 任务 %s panic: %v", task, p)
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			tracer().Errorf("task %s failed: %v", task, res.Err)
		} else {
			tracer().Debugf("task %s done in %s", task, res.Duration)
		}
	}()

	rng := TaskRand(r.opts.Seed, task.Ordinal)
	page, err := r.pages.RenderPage(task.Text, task.Variant, rng)
	if err != nil {
		res.Err = fmt.Errorf("batch: 渲染 %s 失败: %w", task, err)
		return res
	}
	res.Label = page.Text
	if r.sink == nil {
		return res
	}
	files, err := r.sink.Write(task, page)
	res.Files = files
	if err != nil {
		res.Err = fmt.Errorf("batch: 写出 %s 失败: %w", task, err)
	}
	return res
}

// Summary 汇总一批结果。
type Summary struct {
	Total  int
	Failed int
	Files  int
	Errors []error
}

// Summarize 统计结果。
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		s.Files += len(r.Files)
		if r.Err != nil {
			s.Failed++
			s.Errors = append(s.Errors, r.Err)
		}
	}
	return s
}
