// Package glyph 负责扫描并校验字形数据集，按（字符，变体）解析路径并加载字形图像。
//
// 数据集目录结构为 <root>/<variant-id>/<HHHH>.<ext>，其中 HHHH 是字符码位的 4 位十六进制。
// 所有变体必须拥有完全相同的字符集合，否则在加载阶段直接失败。
package glyph

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/schuko/tracing"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/calligram/cache"
)

// DefaultExt 是原始数据集使用的扩展名。
const DefaultExt = "tif"

var hexStem = regexp.MustCompile(`^[0-9A-Fa-f]{4}$`)

// tracer traces with key 'calligram.glyph'
func tracer() tracing.Trace {
	return tracing.Select("calligram.glyph")
}

// Options 配置数据集加载。
type Options struct {
	Root          string
	Ext           string // 不带点，默认 DefaultExt
	CacheCapacity int    // <=0 时使用 cache.DefaultCapacity
}

type glyphKey struct {
	char    rune
	variant int
}

// Index 是只读的字形数据集索引，加载后可被多个 goroutine 共享。
type Index struct {
	root     string
	ext      string
	variants []string
	chars    []rune
	charSet  map[rune]struct{}
	cache    *cache.LRU[glyphKey, *image.RGBA]
}

// Open 以默认缓存容量打开数据集。
func Open(root, ext string) (*Index, error) {
	return OpenWithOptions(Options{Root: root, Ext: ext})
}

// OpenWithOptions 扫描数据集并校验命名与变体一致性。
func OpenWithOptions(opts Options) (*Index, error) {
	ext := strings.TrimPrefix(opts.Ext, ".")
	if ext == "" {
		ext = DefaultExt
	}
	byVariant, err := scan(opts.Root, ext)
	if err != nil {
		return nil, err
	}

	variants := treeset.NewWithStringComparator()
	for id := range byVariant {
		variants.Add(id)
	}
	ids := make([]string, 0, variants.Size())
	for _, v := range variants.Values() {
		ids = append(ids, v.(string))
	}

	base := byVariant[ids[0]]
	for _, id := range ids[1:] {
		if err := compareSets(ids[0], base, id, byVariant[id]); err != nil {
			return nil, err
		}
	}

	chars := make([]rune, 0, base.Size())
	charSet := make(map[rune]struct{}, base.Size())
	for _, v := range base.Values() {
		r := rune(v.(int))
		chars = append(chars, r)
		charSet[r] = struct{}{}
	}

	idx := &Index{
		root:     opts.Root,
		ext:      ext,
		variants: ids,
		chars:    chars,
		charSet:  charSet,
		cache:    cache.New[glyphKey, *image.RGBA](opts.CacheCapacity),
	}
	tracer().Infof("glyph dataset %s: %d variants, %d characters", opts.Root, len(ids), len(chars))
	return idx, nil
}

// scan 收集 variant-id → 码位集合，命名不合法的文件立即报错。
func scan(root, ext string) (map[string]*treeset.Set, error) {
	dirs, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: 目录 %s 不存在", ErrDatasetEmpty, root)
		}
		return nil, fmt.Errorf("读取数据集目录 %s 失败: %w", root, err)
	}
	suffix := "." + ext
	found := 0
	byVariant := map[string]*treeset.Set{}
	for _, d := range dirs {
		if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		files, err := os.ReadDir(filepath.Join(root, d.Name()))
		if err != nil {
			return nil, fmt.Errorf("读取变体目录 %s 失败: %w", d.Name(), err)
		}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, suffix) {
				continue
			}
			found++
			stem := strings.TrimSuffix(name, suffix)
			if !hexStem.MatchString(stem) {
				return nil, &InvalidFileError{Root: root, Path: filepath.Join(root, d.Name(), name)}
			}
			cp, _ := strconv.ParseUint(stem, 16, 32)
			set, ok := byVariant[d.Name()]
			if !ok {
				set = treeset.NewWithIntComparator()
				byVariant[d.Name()] = set
			}
			set.Add(int(cp))
		}
	}
	if found == 0 {
		return nil, fmt.Errorf("%w: %s 下没有 .%s 文件", ErrDatasetEmpty, root, ext)
	}
	return byVariant, nil
}

func compareSets(baseID string, base *treeset.Set, id string, other *treeset.Set) error {
	var missing, extra []rune
	for _, v := range base.Values() {
		if !other.Contains(v) {
			missing = append(missing, rune(v.(int)))
		}
	}
	for _, v := range other.Values() {
		if !base.Contains(v) {
			extra = append(extra, rune(v.(int)))
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	return &InconsistentVariantError{Base: baseID, Variant: id, Missing: missing, Extra: extra}
}

// Root 返回数据集根目录。
func (x *Index) Root() string { return x.root }

// Ext 返回字形文件扩展名（不带点）。
func (x *Index) Ext() string { return x.ext }

// Variants 返回按字典序排列的变体 ID。
func (x *Index) Variants() []string { return append([]string(nil), x.variants...) }

// VariantCount 返回变体数量。
func (x *Index) VariantCount() int { return len(x.variants) }

// Characters 返回按码位升序排列的字符集合。
func (x *Index) Characters() []rune { return append([]rune(nil), x.chars...) }

// Contains 报告字符是否在数据集中。
func (x *Index) Contains(r rune) bool {
	_, ok := x.charSet[r]
	return ok
}

// CacheStats 返回字形缓存的统计信息。
func (x *Index) CacheStats() cache.Stats { return x.cache.Stats() }

// Path 将（字符，变体下标）解析为字形文件路径，不检查文件是否存在。
func (x *Index) Path(ch rune, variant int) (string, error) {
	if variant < 0 || variant >= len(x.variants) {
		return "", &InvalidVariantError{Index: variant, Count: len(x.variants)}
	}
	name := fmt.Sprintf("%04X.%s", ch, x.ext)
	return filepath.Join(x.root, x.variants[variant], name), nil
}

// Load 解码字形图像并缓存。返回的图像由缓存共享，调用方不得修改。
func (x *Index) Load(ch rune, variant int) (*image.RGBA, error) {
	path, err := x.Path(ch, variant)
	if err != nil {
		return nil, err
	}
	return x.cache.GetOrLoad(glyphKey{char: ch, variant: variant}, func() (*image.RGBA, error) {
		tracer().Debugf("loading glyph %s", path)
		return decode(ch, variant, path)
	})
}

// Intn 是 LoadRandom 所需的随机源。
type Intn interface {
	IntN(n int) int
}

// LoadRandom 在 [0, VariantCount) 中均匀选择一个变体加载，并返回所选下标。
func (x *Index) LoadRandom(ch rune, rng Intn) (*image.RGBA, int, error) {
	variant := rng.IntN(len(x.variants))
	img, err := x.Load(ch, variant)
	return img, variant, err
}

func decode(ch rune, variant int, path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &MissingGlyphError{Char: ch, Variant: variant, Path: path, Err: err}
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码字形 %s 失败: %w", path, err)
	}
	return toRGBA(src), nil
}

// toRGBA 将任意格式的字形铺到白底上，透明区域视为背景。
func toRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}
