package job

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/calligram/dsl"
)

// Parse 解析 DSL 任务文件，未出现的配置项保持 Default 中的取值。
func Parse(r io.Reader) (*Job, error) {
	doc, err := dsl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析任务文件失败: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument 将 AST 转换为任务模型。长度在 output.dpi 确定之后统一换算为像素。
func FromDocument(doc *dsl.Document) (*Job, error) {
	j := Default()
	j.Name, j.Version = doc.Name, doc.Version

	c := &converter{job: j}
	// dpi 影响 page 段中物理长度的换算，需先于其他配置读取
	for _, sec := range doc.Sections {
		if sec.Output == nil {
			continue
		}
		for _, st := range sec.Block().Statements {
			if a := st.Assignment; a != nil && a.Key == "dpi" {
				dpi, err := c.floatValue(a)
				if err != nil {
					return nil, err
				}
				if dpi <= 0 {
					return nil, c.errorf(a, "dpi 必须为正数")
				}
				j.Output.DPI = dpi
			}
		}
	}

	for _, sec := range doc.Sections {
		for _, st := range sec.Block().Statements {
			var err error
			switch {
			case st.Text != nil:
				err = c.literal(sec.Kind(), st.Text)
			case st.Assignment != nil:
				err = c.assign(sec.Kind(), st.Assignment)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	tracer().Debugf("job %s: %d sections", j.Name, len(doc.Sections))
	return j, nil
}

type converter struct {
	job *Job
}

func (c *converter) errorf(a *dsl.Assignment, format string, args ...any) error {
	return fmt.Errorf("第 %d 行 %s: %s", a.Pos.Line, a.Key, fmt.Sprintf(format, args...))
}

func (c *converter) literal(section string, t *dsl.TextLiteral) error {
	if section != "text" {
		return fmt.Errorf("第 %d 行: %s 段不接受文本字面量", t.Pos.Line, section)
	}
	c.job.Text.Inline = append(c.job.Text.Inline, string(t.Value))
	return nil
}

func (c *converter) assign(section string, a *dsl.Assignment) error {
	j := c.job
	var err error
	switch section + "." + a.Key {
	case "dataset.root":
		j.Dataset.Root, err = c.str(a)
	case "dataset.ext":
		var ext string
		ext, err = c.str(a)
		j.Dataset.Ext = strings.TrimPrefix(ext, ".")
	case "dataset.cache":
		j.Dataset.Cache, err = c.intValue(a)

	case "page.size":
		j.Layout.PageWidth, j.Layout.PageHeight, err = c.pair(a)
	case "page.cell":
		j.Layout.CellWidth, j.Layout.CellHeight, err = c.pair(a)
	case "page.margin":
		j.Layout.MarginWidth, j.Layout.MarginHeight, err = c.pair(a)
	case "page.rotation":
		j.Layout.MaxRotation, err = c.angle(a)
	case "page.step":
		j.Layout.RotationStep, err = c.angle(a)
	case "page.gap":
		var px int
		px, err = c.pixels(a)
		j.Layout.LineGap = float64(px)
	case "page.chars-per-line":
		j.Layout.CharsPerLine, err = c.intValue(a)
	case "page.chars-per-page":
		j.Layout.CharsPerPage, err = c.intValue(a)
	case "page.special":
		j.Layout.Special, err = c.runes(a)

	case "output.dir":
		j.Output.Dir, err = c.str(a)
	case "output.name":
		j.Output.Name, err = c.str(a)
	case "output.format":
		var f string
		f, err = c.str(a)
		j.Output.Format = normalizeFormat(f)
	case "output.mode":
		var m string
		m, err = c.str(a)
		j.Output.Mode = Mode(strings.ToLower(m))
	case "output.seed":
		var n int
		n, err = c.intValue(a)
		j.Output.Seed = uint64(n)
	case "output.workers":
		j.Output.Workers, err = c.intValue(a)
	case "output.dpi":
		// 已在第一轮读取
	case "output.quality":
		j.Output.Quality, err = c.intValue(a)
	case "output.debug":
		j.Output.Debug, err = c.boolValue(a)

	case "text.warmup":
		j.Text.Warmup, err = c.intValue(a)
	case "text.warmup-length":
		j.Text.WarmupLength, err = c.intValue(a)
	case "text.coverage":
		j.Text.Coverage, err = c.boolValue(a)
	case "text.encoding":
		j.Text.Encoding, err = c.str(a)

	default:
		return c.errorf(a, "%s 段中未知的配置项", section)
	}
	return err
}

// normalizeFormat 统一格式名的常见别名。
func normalizeFormat(f string) string {
	switch f = strings.ToLower(f); f {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	default:
		return f
	}
}

func (c *converter) str(a *dsl.Assignment) (string, error) {
	switch v := a.Value; {
	case v.String != nil:
		return string(*v.String), nil
	case v.Ident != nil:
		return *v.Ident, nil
	default:
		return "", c.errorf(a, "需要字符串，得到 %s", v.Raw())
	}
}

func (c *converter) number(a *dsl.Assignment) (Length, error) {
	if len(a.Value.Numbers) != 1 {
		return Length{}, c.errorf(a, "需要单个数值，得到 %s", a.Value.Raw())
	}
	l, err := ParseLength(a.Value.Numbers[0])
	if err != nil {
		return Length{}, c.errorf(a, "%v", err)
	}
	return l, nil
}

func (c *converter) intValue(a *dsl.Assignment) (int, error) {
	if len(a.Value.Numbers) != 1 {
		return 0, c.errorf(a, "需要整数，得到 %s", a.Value.Raw())
	}
	n, err := strconv.Atoi(a.Value.Numbers[0])
	if err != nil {
		return 0, c.errorf(a, "需要整数，得到 %s", a.Value.Raw())
	}
	return n, nil
}

func (c *converter) floatValue(a *dsl.Assignment) (float64, error) {
	l, err := c.number(a)
	if err != nil {
		return 0, err
	}
	if l.Unit != UnitNone {
		return 0, c.errorf(a, "不接受单位 %s", l.Unit)
	}
	return l.Value, nil
}

func (c *converter) boolValue(a *dsl.Assignment) (bool, error) {
	s, err := c.str(a)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, c.errorf(a, "需要 true 或 false，得到 %s", s)
	}
	return b, nil
}

func (c *converter) angle(a *dsl.Assignment) (float64, error) {
	l, err := c.number(a)
	if err != nil {
		return 0, err
	}
	deg, err := l.Degrees()
	if err != nil {
		return 0, c.errorf(a, "%v", err)
	}
	return deg, nil
}

func (c *converter) pixels(a *dsl.Assignment) (int, error) {
	l, err := c.number(a)
	if err != nil {
		return 0, err
	}
	px, err := l.Pixels(c.job.Output.DPI)
	if err != nil {
		return 0, c.errorf(a, "%v", err)
	}
	return px, nil
}

// pair 读取 “宽 高” 两个长度；只写一个时宽高相同。
func (c *converter) pair(a *dsl.Assignment) (int, int, error) {
	nums := a.Value.Numbers
	if len(nums) != 1 && len(nums) != 2 {
		return 0, 0, c.errorf(a, "需要一到两个长度，得到 %s", a.Value.Raw())
	}
	out := make([]int, 0, 2)
	for _, n := range nums {
		l, err := ParseLength(n)
		if err != nil {
			return 0, 0, c.errorf(a, "%v", err)
		}
		px, err := l.Pixels(c.job.Output.DPI)
		if err != nil {
			return 0, 0, c.errorf(a, "%v", err)
		}
		out = append(out, px)
	}
	if len(out) == 1 {
		return out[0], out[0], nil
	}
	return out[0], out[1], nil
}

func (c *converter) runes(a *dsl.Assignment) ([]rune, error) {
	if a.Value.Array == nil {
		return nil, c.errorf(a, "需要字符数组，得到 %s", a.Value.Raw())
	}
	out := make([]rune, 0, len(a.Value.Array.Values))
	for _, v := range a.Value.Array.Values {
		if v.String == nil || utf8.RuneCountInString(string(*v.String)) != 1 {
			return nil, c.errorf(a, "数组元素必须是单个字符，得到 %s", v.Raw())
		}
		r, _ := utf8.DecodeRuneInString(string(*v.String))
		out = append(out, r)
	}
	return out, nil
}
