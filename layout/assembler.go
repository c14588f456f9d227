package layout

import (
	"fmt"
	"image"
	"image/draw"
	"strings"
	"unicode"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ByLCY/calligram/compose"
)

// tracer traces with key 'calligram.layout'
func tracer() tracing.Trace {
	return tracing.Select("calligram.layout")
}

// GlyphSource 提供按 (字符, 变体序号) 取字形图像的能力，*glyph.Index 满足该接口。
type GlyphSource interface {
	Load(ch rune, variant int) (*image.RGBA, error)
}

// Assembler 将文本排成行图像与页面图像。除只读的字形源外不持有可变状态，
// 可在多个 goroutine 中并发使用（各自传入独立的随机源）。
type Assembler struct {
	glyphs  GlyphSource
	params  Params
	special map[rune]struct{}
}

// NewAssembler 校验并补齐版式参数后构造 Assembler。
func NewAssembler(glyphs GlyphSource, params Params) (*Assembler, error) {
	if glyphs == nil {
		return nil, fmt.Errorf("layout: 缺少字形来源")
	}
	params = params.Resolved()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	special := make(map[rune]struct{}, len(params.Special))
	for _, r := range params.Special {
		special[r] = struct{}{}
	}
	return &Assembler{glyphs: glyphs, params: params, special: special}, nil
}

// Params 返回补齐后的版式参数。
func (a *Assembler) Params() Params { return a.params }

// RenderLine 渲染单行：去掉行首空白，用空格补足到每行字数，再在两端加上边距。
//   - 空白字符：字格大小的空白块，不旋转；
//   - 标点（Special）：原样贴入并随机旋转；
//   - 其他字符：裁边后随机旋转贴入。
//
// 每个字符之后推进一次抖动状态，使随机数的消耗顺序保持固定。
func (a *Assembler) RenderLine(text string, variant int, rng compose.Rand) (*Line, error) {
	p := a.params
	runes := []rune(strings.TrimLeftFunc(text, unicode.IsSpace))
	for len(runes) < p.CharsPerLine {
		runes = append(runes, ' ')
	}

	jitter := Jitter{CellWidth: float64(p.CellWidth), Step: p.RotationStep}
	pos := Position{X: p.MarginWidth, Y: p.MarginHeight}
	dst := compose.Blank(p.MarginWidth, p.CellHeight)
	glyphs := make([]Placement, 0, len(runes))

	for _, ch := range runes {
		pl := Placement{Char: string(ch)}
		var img *image.RGBA
		opts := compose.HOptions{Policy: compose.ShrinkLarger}

		switch {
		case unicode.IsSpace(ch):
			pl.Kind = kindBlank
			img = compose.Blank(p.CellWidth, p.CellHeight)
			opts.Policy = compose.GrowSmaller
		default:
			g, err := a.glyphs.Load(ch, variant)
			if err != nil {
				return nil, fmt.Errorf("layout: 渲染字符 %q 失败: %w", ch, err)
			}
			if _, ok := a.special[ch]; ok {
				pl.Kind = kindSpecial
			} else {
				pl.Kind = kindGlyph
				g = compose.Trim(g)
			}
			pl.Rotation = compose.RandomAngle(p.MaxRotation, rng)
			img = compose.Rotate(g, pl.Rotation)
		}

		pl.Width, pl.Height = img.Bounds().Dx(), img.Bounds().Dy()
		dst = compose.ConcatH(dst, img, opts, rng)
		pos = jitter.Next(pos, rng)
		pl.Position = pos
		glyphs = append(glyphs, pl)
	}

	margin := compose.Blank(p.MarginWidth, p.CellHeight)
	dst = compose.ConcatH(dst, margin, compose.HOptions{Policy: compose.GrowSmaller}, rng)

	line := &Line{
		Image:  dst,
		Text:   strings.TrimRightFunc(string(runes), unicode.IsSpace),
		Width:  dst.Bounds().Dx(),
		Height: dst.Bounds().Dy(),
		Glyphs: glyphs,
	}
	tracer().Debugf("line %q: %dx%d", line.Text, line.Width, line.Height)
	return line, nil
}

// RenderPage 渲染一页：截断到每页字数，按每行字数切分，逐行渲染后以随机行距纵向堆叠，
// 再贴到固定尺寸的白色页面上（上边距处）。堆叠超出版心时等比缩小，不放大。
// 返回的 Page.Text 是实际渲染的各行文本（去掉首尾空白）以换行连接的结果。
func (a *Assembler) RenderPage(text string, variant int, rng compose.Rand) (*Page, error) {
	p := a.params
	runes := []rune(text)
	if len(runes) > p.CharsPerPage {
		runes = runes[:p.CharsPerPage]
	}

	page := &Page{Variant: variant, Width: p.PageWidth, Height: p.PageHeight, Scale: 1}
	labels := make([]string, 0)
	var stack *image.RGBA
	for _, chunk := range Split(string(runes), p.CharsPerLine) {
		line, err := a.RenderLine(chunk.Text, variant, rng)
		if err != nil {
			return nil, err
		}
		page.Lines = append(page.Lines, *line)
		labels = append(labels, strings.TrimSpace(chunk.Text))
		if stack == nil {
			stack = line.Image
			continue
		}
		stack = compose.ConcatV(stack, line.Image, compose.VOptions{
			Policy:  compose.ShrinkLarger,
			Gap:     true,
			GapBase: p.LineGap,
		}, rng)
	}

	canvas := compose.Blank(p.PageWidth, p.PageHeight)
	if stack != nil {
		stack, page.Scale = fit(stack, p.ContentBox())
		box := p.ContentBox()
		r := image.Rectangle{Min: box.Min, Max: box.Min.Add(stack.Bounds().Size())}
		draw.Draw(canvas, r, stack, image.Point{}, draw.Src)
	}
	page.Image = canvas
	page.Text = strings.Join(labels, "\n")

	tracer().Debugf("page variant=%d: %d lines, scale %.3f", variant, len(page.Lines), page.Scale)
	return page, nil
}

// fit 将 img 等比缩小到能放进 box，已能放下时原样返回。
func fit(img *image.RGBA, box image.Rectangle) (*image.RGBA, float64) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scale := min(1, float64(box.Dx())/float64(w), float64(box.Dy())/float64(h))
	if scale >= 1 {
		return img, 1
	}
	nw := max(int(float64(w)*scale), 1)
	nh := max(int(float64(h)*scale), 1)
	return compose.Resize(img, nw, nh), scale
}
