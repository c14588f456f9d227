package job

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/calligram/glyph"
	"github.com/ByLCY/calligram/layout"
)

const sampleJob = `
job Hicau v2 {
  dataset {
    root: "glyphs/hicau_mod0"
    ext: ".tif"
    cache: 800
  }
  page {
    size: 1200px 900px
    cell: 40px
    margin: 80px 60px
    rotation: 5deg
    step: 8
    gap: 20px
    chars-per-line: 25
    special: [".", "₩"]
  }
  output {
    dir: "out"
    name: "p${page:03}_v${variant}"
    format: jpg
    mode: sample
    seed: 7
    workers: 4
    quality: 80
    debug: true
  }
  text {
    warmup: 3
    warmup-length: 100
    coverage: true
    encoding: "euc-kr"
    "가나다 라마"
  }
}
`

func TestParseSampleJob(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "calligram.job")
	defer teardown()

	j, err := Parse(strings.NewReader(sampleJob))
	require.NoError(t, err)
	require.NoError(t, j.Validate())

	want := Default()
	want.Name, want.Version = "Hicau", "v2"
	want.Dataset = Dataset{Root: "glyphs/hicau_mod0", Ext: "tif", Cache: 800}
	want.Layout = layout.Params{
		CellWidth: 40, CellHeight: 40,
		PageWidth: 1200, PageHeight: 900,
		MarginWidth: 80, MarginHeight: 60,
		LineGap:      20,
		MaxRotation:  5,
		RotationStep: 8,
		CharsPerLine: 25,
		Special:      []rune{'.', '₩'},
	}
	want.Output = Output{
		Dir: "out", Name: "p${page:03}_v${variant}", Format: "jpeg", Mode: ModeSample,
		Seed: 7, Workers: 4, DPI: DefaultDPI, Quality: 80, Debug: true,
	}
	want.Text = Text{Warmup: 3, WarmupLength: 100, Coverage: true, Encoding: "euc-kr", Inline: []string{"가나다 라마"}}

	if diff := cmp.Diff(want, j); diff != "" {
		t.Fatalf("job mismatch (-want +got):\n%s", diff)
	}
}

func TestPhysicalUnitsUseDPI(t *testing.T) {
	src := `job U v1 {
  page {
    size: 2in 10cm
    margin: 72pt
    gap: 5mm
  }
  output { dpi: 100 }
}`
	j, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 200, j.Layout.PageWidth)
	assert.Equal(t, 394, j.Layout.PageHeight) // 100mm / 25.4 × 100 = 393.7
	assert.Equal(t, 100, j.Layout.MarginWidth)
	assert.Equal(t, 100, j.Layout.MarginHeight)
	assert.Equal(t, 20.0, j.Layout.LineGap) // 5mm = 19.69px
	assert.Equal(t, 100.0, j.Output.DPI)
}

func TestDefaultsMatchGenerator(t *testing.T) {
	j := Default()
	p := j.Layout.Resolved()
	assert.Equal(t, 50, p.CellWidth)
	assert.Equal(t, 100, p.MarginWidth)
	assert.Equal(t, 1000, p.PageWidth)
	assert.Equal(t, 10.0, p.MaxRotation)
	assert.Equal(t, 50, p.CharsPerLine)
	assert.Equal(t, 600, p.CharsPerPage)
	assert.Equal(t, ModeSplit, j.Output.Mode)
	assert.Equal(t, "png", j.Output.Format)
	assert.Equal(t, glyph.DefaultExt, j.Dataset.Ext)

	// 未指定数据集目录
	assert.Error(t, j.Validate())
	j.Dataset.Root = "glyphs"
	assert.NoError(t, j.Validate())
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":     `job E v1 { page { colour: 1 } }`,
		"angle as length": `job E v1 { page { gap: 3deg } }`,
		"length as angle": `job E v1 { page { rotation: 3mm } }`,
		"three lengths":   `job E v1 { page { size: 1 2 3 } }`,
		"bad special":     `job E v1 { page { special: ["ab"] } }`,
		"bad bool":        `job E v1 { output { debug: maybe } }`,
		"bad int":         `job E v1 { output { workers: 2.5 } }`,
		"zero dpi":        `job E v1 { output { dpi: 0 } }`,
		"literal in page": "job E v1 {\n page { \"text\" }\n}",
		"syntax":          `job E v1 { page { size: } }`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Job {
		j := Default()
		j.Dataset.Root = "glyphs"
		return j
	}
	j := base()
	j.Output.Format = "gif"
	assert.Error(t, j.Validate())

	j = base()
	j.Output.Mode = "random"
	assert.Error(t, j.Validate())

	j = base()
	j.Layout.MarginHeight = 600
	assert.Error(t, j.Validate())

	j = base()
	j.Output.Quality = 101
	assert.Error(t, j.Validate())

	j = base()
	j.Text.Warmup = -1
	assert.Error(t, j.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.cal")
	require.NoError(t, os.WriteFile(path, []byte(sampleJob), 0o644))
	j, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Hicau", j.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.cal"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLength(t *testing.T) {
	l, err := ParseLength("12.5MM")
	require.NoError(t, err)
	assert.Equal(t, Length{Value: 12.5, Unit: UnitMM}, l)
	assert.Equal(t, "12.5mm", l.String())

	_, err = ParseLength("abc")
	assert.Error(t, err)
	_, err = ParseLength("")
	assert.Error(t, err)

	px, err := Length{Value: 1, Unit: UnitIN}.Pixels(300)
	require.NoError(t, err)
	assert.Equal(t, 300, px)

	_, err = Length{Value: 1, Unit: UnitMM}.Pixels(0)
	assert.Error(t, err)

	deg, err := Length{Value: 7}.Degrees()
	require.NoError(t, err)
	assert.Equal(t, 7.0, deg)
}
