package compose

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// RandomAngle draws a rotation in degrees from U(-maxDegrees, maxDegrees).
// The draw happens even when maxDegrees is 0 so that the random stream stays
// aligned across configurations.
func RandomAngle(maxDegrees float64, rng Rand) float64 {
	return maxDegrees * Uniform(rng, -1, 1)
}

// Rotate turns img counter-clockwise by degrees around its center. The canvas
// is expanded to hold the whole rotated image and the uncovered corners are
// filled with white.
func Rotate(img image.Image, degrees float64) *image.RGBA {
	if degrees == 0 {
		return toRGBA(img)
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)

	nw := ceilLen(math.Abs(w*cos) + math.Abs(h*sin))
	nh := ceilLen(math.Abs(w*sin) + math.Abs(h*cos))
	dst := Blank(nw, nh)

	// 源坐标 → 目标坐标：绕源中心旋转后平移到新画布中心（y 轴向下）。
	cx, cy := float64(b.Min.X)+w/2, float64(b.Min.Y)+h/2
	ncx, ncy := float64(nw)/2, float64(nh)/2
	s2d := f64.Aff3{
		cos, sin, ncx - cos*cx - sin*cy,
		-sin, cos, ncy + sin*cx - cos*cy,
	}
	xdraw.BiLinear.Transform(dst, s2d, img, b, draw.Over, nil)
	return dst
}

func ceilLen(v float64) int {
	return max(int(math.Ceil(v-1e-9)), 1)
}
