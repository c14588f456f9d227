// Package raster encodes composed pages as bitmap files.
package raster

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/ByLCY/calligram/layout"
	"github.com/ByLCY/calligram/renderer"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 95

// Renderer encodes the page image in a single raster format.
type Renderer struct {
	format  string
	quality int
}

var _ renderer.Renderer = (*Renderer)(nil)

// New returns a renderer for format, one of png, jpeg, tiff or bmp.
func New(format string) (*Renderer, error) {
	switch format {
	case "png", "jpeg", "tiff", "bmp":
		return &Renderer{format: format, quality: DefaultQuality}, nil
	default:
		return nil, fmt.Errorf("不支持的图像格式 %q", format)
	}
}

// WithQuality sets the JPEG quality (1–100). Other formats ignore it.
func (r *Renderer) WithQuality(q int) *Renderer {
	r.quality = min(max(q, 1), 100)
	return r
}

// Ext returns the file extension of the format.
func (r *Renderer) Ext() string {
	if r.format == "jpeg" {
		return "jpg"
	}
	return r.format
}

// Render encodes page.Image.
func (r *Renderer) Render(page *layout.Page) ([]byte, error) {
	if page == nil || page.Image == nil {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	var buf bytes.Buffer
	var err error
	switch r.format {
	case "png":
		err = png.Encode(&buf, page.Image)
	case "jpeg":
		err = jpeg.Encode(&buf, page.Image, &jpeg.Options{Quality: r.quality})
	case "tiff":
		err = tiff.Encode(&buf, page.Image, &tiff.Options{Compression: tiff.Deflate})
	case "bmp":
		err = bmp.Encode(&buf, page.Image)
	}
	if err != nil {
		return nil, fmt.Errorf("编码 %s 失败: %w", r.format, err)
	}
	return buf.Bytes(), nil
}
