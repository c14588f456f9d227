package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/calligram/binding"
	"github.com/ByLCY/calligram/layout"
	"github.com/ByLCY/calligram/renderer"
	canvasrenderer "github.com/ByLCY/calligram/renderer/canvas"
	"github.com/ByLCY/calligram/renderer/raster"
)

// RendererFor 按输出格式选择渲染器：pdf 使用 canvas，其余为位图编码。
// quality 只对 jpeg 生效，<=0 时使用默认质量。
func RendererFor(format string, dpi float64, quality int) (renderer.Renderer, error) {
	if format == "pdf" {
		return canvasrenderer.NewRenderer(dpi), nil
	}
	r, err := raster.New(format)
	if err != nil {
		return nil, err
	}
	if quality > 0 {
		r.WithQuality(quality)
	}
	return r, nil
}

// FileSink 把每页写成同名的一组文件：页面图像、标注文本（.txt），
// 以及可选的排版调试信息（.json）。文件名由模板插值得到。
type FileSink struct {
	Dir      string
	Template string
	Renderer renderer.Renderer
	Debug    bool
}

// Name 返回任务对应的文件名（不含扩展名）。文档键中的路径分隔符替换为 “_”。
func (s *FileSink) Name(task Task) string {
	return binding.Interpolate(s.Template, nameFields(task))
}

func nameFields(task Task) map[string]any {
	return map[string]any{
		"doc":     strings.NewReplacer("/", "_", "\\", "_").Replace(task.Doc),
		"index":   task.Index,
		"page":    task.Page,
		"variant": task.Variant,
		"offset":  task.Offset,
		"kind":    string(task.Kind),
		"ordinal": task.Ordinal,
	}
}

// CheckTemplate 检查文件名模板至少引用一个字段，且只引用已知字段。
// 未知字段在插值时会原样保留在文件名中。
func CheckTemplate(tmpl string) error {
	fields := nameFields(Task{})
	refs := binding.Placeholders(tmpl)
	for _, ref := range refs {
		if _, ok := fields[ref]; !ok {
			return fmt.Errorf("文件名模板引用了未知字段 ${%s}", ref)
		}
	}
	if len(refs) == 0 {
		return fmt.Errorf("文件名模板 %q 不含任何字段，所有页面会写到同一个文件", tmpl)
	}
	return nil
}

// Write 实现 Sink。
func (s *FileSink) Write(task Task, page *layout.Page) ([]string, error) {
	if s.Renderer == nil {
		return nil, fmt.Errorf("未配置渲染器")
	}
	base := filepath.Join(s.Dir, s.Name(task))
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return nil, err
	}

	data, err := s.Renderer.Render(page)
	if err != nil {
		return nil, err
	}
	var files []string
	img := base + "." + s.Renderer.Ext()
	if err := os.WriteFile(img, data, 0o644); err != nil {
		return files, err
	}
	files = append(files, img)

	label := base + ".txt"
	if err := os.WriteFile(label, []byte(page.Text), 0o644); err != nil {
		return files, err
	}
	files = append(files, label)

	if s.Debug {
		dbg := base + ".json"
		if err := layout.WriteDebugJSON(page, dbg); err != nil {
			return files, err
		}
		files = append(files, dbg)
	}
	return files, nil
}
