// Package compose implements the image algebra used to build lines and pages
// out of glyph bitmaps: size-tolerant horizontal/vertical concatenation,
// random rotation with canvas expansion, and trimming to content.
//
// All functions are pure: inputs are never modified. Results are *image.RGBA
// with their origin at (0, 0) and may alias the input when no change was
// needed, so treat every image as read-only. The background is always white.
package compose

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// White is the background color of every canvas produced by this package.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Policy decides which side is rescaled when two images disagree on the
// dimension they are joined along.
type Policy int

const (
	// ShrinkLarger scales the larger image down to the smaller one.
	ShrinkLarger Policy = iota
	// GrowSmaller scales the smaller image up to the larger one.
	GrowSmaller
)

func (p Policy) String() string {
	switch p {
	case ShrinkLarger:
		return "shrink-larger"
	case GrowSmaller:
		return "grow-smaller"
	default:
		return "unknown"
	}
}

// Rand is the random source used for rotation angles and line gaps.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// Uniform draws from U(lo, hi).
func Uniform(rng Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// HOptions configures ConcatH.
type HOptions struct {
	Policy Policy
	// Rotate rotates the right image by U(-MaxRotation, MaxRotation) degrees
	// before joining.
	Rotate      bool
	MaxRotation float64
}

// VOptions configures ConcatV.
type VOptions struct {
	Policy Policy
	// Gap inserts a white strip of height U(0.3, 1.0) × GapBase between the images.
	Gap     bool
	GapBase float64
}

// Blank returns a white w×h canvas.
func Blank(w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(White), image.Point{}, draw.Src)
	return dst
}

// ConcatH places right immediately to the right of left. When the heights
// differ, one side is rescaled (aspect preserved) according to opts.Policy.
// The result is (left width + right width) × common height.
func ConcatH(left, right image.Image, opts HOptions, rng Rand) *image.RGBA {
	if opts.Rotate {
		right = Rotate(right, RandomAngle(opts.MaxRotation, rng))
	}
	lb, rb := left.Bounds(), right.Bounds()
	lw, lh, rw, rh := lb.Dx(), lb.Dy(), rb.Dx(), rb.Dy()

	switch {
	case lh == rh:
	case (lh > rh && opts.Policy == ShrinkLarger) || (lh < rh && opts.Policy == GrowSmaller):
		left = Resize(left, scaled(lw, rh, lh), rh)
	default:
		right = Resize(right, scaled(rw, lh, rh), lh)
	}

	lb, rb = left.Bounds(), right.Bounds()
	dst := Blank(lb.Dx()+rb.Dx(), lb.Dy())
	draw.Draw(dst, image.Rect(0, 0, lb.Dx(), lb.Dy()), left, lb.Min, draw.Src)
	draw.Draw(dst, image.Rect(lb.Dx(), 0, lb.Dx()+rb.Dx(), rb.Dy()), right, rb.Min, draw.Src)
	return dst
}

// ConcatV stacks bottom under top, optionally separated by a random gap.
// When the widths differ, one side is rescaled according to opts.Policy.
func ConcatV(top, bottom image.Image, opts VOptions, rng Rand) *image.RGBA {
	tb, bb := top.Bounds(), bottom.Bounds()
	tw, th, bw, bh := tb.Dx(), tb.Dy(), bb.Dx(), bb.Dy()

	switch {
	case tw == bw:
	case (tw > bw && opts.Policy == ShrinkLarger) || (tw < bw && opts.Policy == GrowSmaller):
		top = Resize(top, bw, scaled(th, bw, tw))
	default:
		bottom = Resize(bottom, tw, scaled(bh, tw, bw))
	}

	gap := 0
	if opts.Gap {
		gap = int(opts.GapBase * Uniform(rng, 0.3, 1))
	}

	tb, bb = top.Bounds(), bottom.Bounds()
	dst := Blank(tb.Dx(), tb.Dy()+gap+bb.Dy())
	draw.Draw(dst, image.Rect(0, 0, tb.Dx(), tb.Dy()), top, tb.Min, draw.Src)
	y := tb.Dy() + gap
	draw.Draw(dst, image.Rect(0, y, bb.Dx(), y+bb.Dy()), bottom, bb.Min, draw.Src)
	return dst
}

// Resize rescales img to exactly w×h with Catmull-Rom (bicubic) filtering.
func Resize(img image.Image, w, h int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return toRGBA(img)
	}
	dst := Blank(w, h)
	if w == 0 || h == 0 || b.Empty() {
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// scaled returns length × num / den, truncated, never below 1.
func scaled(length, num, den int) int {
	if den == 0 {
		return max(length, 1)
	}
	return max(length*num/den, 1)
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
