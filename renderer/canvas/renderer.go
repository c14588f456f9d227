package canvasrenderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/calligram/layout"
	"github.com/ByLCY/calligram/renderer"
)

const mmPerInch = 25.4

// Renderer draws composed pages into PDF documents via github.com/tdewolff/canvas.
// Each page becomes a PDF page of the physical size implied by its pixel
// dimensions at DPI; the label text is stored in the document info.
type Renderer struct {
	dpi     float64
	creator string
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	DPI     float64 // pixels per inch of the page bitmap; defaults to 300
	Creator string
}

// NewRenderer creates a PDF renderer for bitmaps at dpi.
func NewRenderer(dpi float64) *Renderer { return NewRendererWithOptions(Options{DPI: dpi}) }

// NewRendererWithOptions creates a renderer from opts.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{dpi: opts.DPI, creator: opts.Creator}
	if r.dpi <= 0 {
		r.dpi = 300
	}
	if r.creator == "" {
		r.creator = "calligram"
	}
	return r
}

// Ext returns "pdf".
func (r *Renderer) Ext() string { return "pdf" }

// Render renders a single page into a PDF byte slice.
func (r *Renderer) Render(page *layout.Page) ([]byte, error) {
	return r.RenderDocument([]*layout.Page{page})
}

// RenderDocument renders pages into one multi-page PDF.
func (r *Renderer) RenderDocument(pages []*layout.Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	for i, p := range pages {
		if p == nil || p.Image == nil {
			return nil, fmt.Errorf("第 %d 页缺少图像", i+1)
		}
	}

	var buf bytes.Buffer
	w, h := r.pageSize(pages[0])
	writer := pdf.New(&buf, w, h, nil)
	r.applyMeta(writer, pages)
	for i, page := range pages {
		w, h := r.pageSize(page)
		if i > 0 {
			writer.NewPage(w, h)
		}
		c := canvas.New(w, h)
		ctx := canvas.NewContext(c)
		r.drawPage(ctx, page)
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// pageSize returns the page dimensions in millimeters.
func (r *Renderer) pageSize(page *layout.Page) (float64, float64) {
	b := page.Image.Bounds()
	return r.toMM(b.Dx()), r.toMM(b.Dy())
}

func (r *Renderer) toMM(px int) float64 { return float64(px) / r.dpi * mmPerInch }

func (r *Renderer) applyMeta(writer *pdf.PDF, pages []*layout.Page) {
	if writer == nil {
		return
	}
	subject := pages[0].Text
	keywords := "variant " + strconv.Itoa(pages[0].Variant)
	writer.SetInfo("calligram page", subject, keywords, "", r.creator)
}

// drawPage places the page bitmap so that it covers the whole PDF page.
func (r *Renderer) drawPage(ctx *canvas.Context, page *layout.Page) {
	ctx.DrawImage(0, 0, page.Image, canvas.DPMM(r.dpi/mmPerInch))
}
