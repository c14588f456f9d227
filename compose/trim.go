package compose

import "image"

// TrimThreshold is the per-channel difference (0–255) a pixel must exceed to
// count as foreground. Scanner noise below it is treated as background.
const TrimThreshold = 100

// Trim crops img to the bounding box of pixels that differ from the color at
// its top-left corner. An image that is uniformly background comes back
// unchanged.
func Trim(img image.Image) *image.RGBA {
	src := toRGBA(img)
	box, ok := contentBounds(src)
	if !ok || box == src.Bounds() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	for y := 0; y < box.Dy(); y++ {
		from := src.PixOffset(box.Min.X, box.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+4*box.Dx()], src.Pix[from:from+4*box.Dx()])
	}
	return dst
}

// contentBounds returns the bounding box of foreground pixels in src.
func contentBounds(src *image.RGBA) (image.Rectangle, bool) {
	b := src.Bounds()
	if b.Empty() {
		return image.Rectangle{}, false
	}
	bg := src.Pix[0:4]
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			p := row[4*x : 4*x+4]
			if !differs(p, bg) {
				continue
			}
			px := b.Min.X + x
			minX, maxX = min(minX, px), max(maxX, px)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func differs(p, bg []uint8) bool {
	for i := range 3 {
		d := int(p[i]) - int(bg[i])
		if d > TrimThreshold || d < -TrimThreshold {
			return true
		}
	}
	return false
}
