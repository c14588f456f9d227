package compose

import (
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand 总是返回同一个值，便于断言随机间距与角度。
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

var ink = color.RGBA{R: 10, G: 10, B: 10, A: 255}

func size(img image.Image) [2]int {
	return [2]int{img.Bounds().Dx(), img.Bounds().Dy()}
}

func TestConcatHShrinkLarger(t *testing.T) {
	left, right := solid(10, 20, ink), solid(30, 40, ink)
	got := ConcatH(left, right, HOptions{Policy: ShrinkLarger}, fixedRand(0.5))
	assert.Equal(t, [2]int{25, 20}, size(got))
}

func TestConcatHShrinkLargerLeftSide(t *testing.T) {
	left, right := solid(30, 40, ink), solid(10, 20, ink)
	got := ConcatH(left, right, HOptions{Policy: ShrinkLarger}, fixedRand(0.5))
	assert.Equal(t, [2]int{25, 20}, size(got))
}

func TestConcatHGrowSmaller(t *testing.T) {
	left, right := solid(10, 20, ink), solid(30, 40, ink)
	got := ConcatH(left, right, HOptions{Policy: GrowSmaller}, fixedRand(0.5))
	assert.Equal(t, [2]int{50, 40}, size(got))
}

func TestConcatHEqualHeightsKeepsPixels(t *testing.T) {
	red := color.RGBA{R: 200, A: 255}
	left, right := solid(3, 5, ink), solid(4, 5, red)
	got := ConcatH(left, right, HOptions{}, fixedRand(0.5))
	require.Equal(t, [2]int{7, 5}, size(got))
	assert.Equal(t, ink, got.RGBAAt(2, 4))
	assert.Equal(t, red, got.RGBAAt(3, 0))
	assert.Equal(t, red, got.RGBAAt(6, 4))
}

func TestConcatHDoesNotMutateInputs(t *testing.T) {
	left, right := solid(10, 20, ink), solid(30, 40, ink)
	before := append([]uint8(nil), right.Pix...)
	_ = ConcatH(left, right, HOptions{Rotate: true, MaxRotation: 10}, rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, before, right.Pix)
	assert.Equal(t, [2]int{30, 40}, size(right))
}

func TestConcatHRotationExpandsCanvas(t *testing.T) {
	left, right := solid(10, 40, ink), solid(40, 40, ink)
	// fixedRand(1) → U(-1,1) = 1 → 旋转 +10°
	got := ConcatH(left, right, HOptions{Policy: GrowSmaller, Rotate: true, MaxRotation: 10}, fixedRand(1))
	// 旋转后右图高度变大，GrowSmaller 把左图放大到相同高度
	assert.Greater(t, got.Bounds().Dy(), 40)
	assert.Equal(t, White, got.RGBAAt(got.Bounds().Dx()-1, 0), "rotated corners must be white")
}

func TestConcatVGap(t *testing.T) {
	top, bottom := solid(20, 10, ink), solid(20, 5, ink)
	got := ConcatV(top, bottom, VOptions{Gap: true, GapBase: 30}, fixedRand(1))
	// U(0.3, 1) 取到上界 → gap = 30
	assert.Equal(t, [2]int{20, 45}, size(got))
	assert.Equal(t, White, got.RGBAAt(0, 10))
	assert.Equal(t, White, got.RGBAAt(19, 39))
	assert.Equal(t, ink, got.RGBAAt(0, 40))

	// 下界 0.3×base，截断可能差 1 像素
	h := ConcatV(top, bottom, VOptions{Gap: true, GapBase: 30}, fixedRand(0)).Bounds().Dy()
	assert.InDelta(t, 24, h, 1)
}

func TestConcatVGapRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))
	top, bottom := solid(8, 8, ink), solid(8, 8, ink)
	for range 100 {
		h := ConcatV(top, bottom, VOptions{Gap: true, GapBase: 30}, rng).Bounds().Dy()
		gap := h - 16
		assert.GreaterOrEqual(t, gap, 8)
		assert.LessOrEqual(t, gap, 30)
	}
}

func TestConcatVResizesWidth(t *testing.T) {
	top, bottom := solid(100, 10, ink), solid(50, 20, ink)
	got := ConcatV(top, bottom, VOptions{Policy: ShrinkLarger}, fixedRand(0))
	assert.Equal(t, [2]int{50, 25}, size(got))

	got = ConcatV(top, bottom, VOptions{Policy: GrowSmaller}, fixedRand(0))
	assert.Equal(t, [2]int{100, 50}, size(got))
}

func TestTrimBlankImageUnchanged(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {7, 3}, {64, 64}} {
		blank := Blank(dims[0], dims[1])
		got := Trim(blank)
		assert.Equal(t, dims, size(got))
	}
	dark := solid(9, 4, ink)
	assert.Equal(t, [2]int{9, 4}, size(Trim(dark)))
}

func TestTrimCropsToContent(t *testing.T) {
	img := Blank(20, 30)
	for y := 5; y < 12; y++ {
		for x := 3; x < 9; x++ {
			img.SetRGBA(x, y, ink)
		}
	}
	// 低于阈值的噪点不算前景
	img.SetRGBA(18, 28, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	got := Trim(img)
	assert.Equal(t, [2]int{6, 7}, size(got))
	assert.Equal(t, ink, got.RGBAAt(0, 0))
	assert.Equal(t, ink, got.RGBAAt(5, 6))
}

func TestTrimHandlesOffsetSubImage(t *testing.T) {
	img := Blank(20, 20)
	img.SetRGBA(12, 12, ink)
	sub := img.SubImage(image.Rect(10, 10, 20, 20))
	got := Trim(sub)
	assert.Equal(t, [2]int{1, 1}, size(got))
}

func TestRotateZeroIsIdentity(t *testing.T) {
	img := solid(12, 7, ink)
	assert.Equal(t, [2]int{12, 7}, size(Rotate(img, 0)))
}

func TestRotateRightAngle(t *testing.T) {
	img := solid(12, 7, ink)
	got := Rotate(img, 90)
	assert.Equal(t, [2]int{7, 12}, size(got))
	assert.Equal(t, ink, got.RGBAAt(3, 6))
}

func TestResize(t *testing.T) {
	got := Resize(solid(10, 10, ink), 5, 20)
	assert.Equal(t, [2]int{5, 20}, size(got))
	c := got.RGBAAt(2, 10)
	assert.InDelta(t, 10, int(c.R), 2)
}
