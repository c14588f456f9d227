// Package glyphtest 在临时目录中生成合成字形数据集，供各包测试使用。
package glyphtest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// Spec 描述一个合成数据集。
type Spec struct {
	Variants []string
	Chars    []rune
	Width    int
	Height   int
	// Inset 为 0 时字形整块填充深色；否则在白底上绘制内缩 Inset 像素的深色矩形。
	Inset int
}

// Write 按 Spec 写出 PNG 字形文件并返回数据集根目录。
func Write(t testing.TB, spec Spec) string {
	t.Helper()
	root := t.TempDir()
	for vi, v := range spec.Variants {
		dir := filepath.Join(root, v)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("创建变体目录失败: %v", err)
		}
		shade := uint8(20 + 10*vi)
		for _, ch := range spec.Chars {
			WriteGlyph(t, filepath.Join(dir, fmt.Sprintf("%04X.png", ch)), spec.Width, spec.Height, spec.Inset, shade)
		}
	}
	return root
}

// WriteGlyph 写出单个字形文件。
func WriteGlyph(t testing.TB, path string, w, h, inset int, shade uint8) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	ink := color.RGBA{R: shade, G: shade, B: shade, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if inset == 0 || (x >= inset && x < w-inset && y >= inset && y < h-inset) {
				c = ink
			}
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("创建字形文件失败: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("写入字形文件失败: %v", err)
	}
}
