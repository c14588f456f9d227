package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/calligram/glyph/glyphtest"
)

func writeJob(t *testing.T, root, out string, extra string) string {
	t.Helper()
	src := fmt.Sprintf(`job Test v1 {
  dataset { root: %q; ext: "png" }
  page {
    size: 300px 300px
    cell: 20px
    margin: 10px
    chars-per-line: 6
    chars-per-page: 12
  }
  output {
    dir: %q
    name: "${doc}_${page:02}_${variant}"
    seed: 5
    workers: 2
  }
  text {
%s
  }
}
`, root, out, extra)
	path := filepath.Join(t.TempDir(), "test.job")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunGeneratesPages(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "calligram.cli")
	defer teardown()
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	root := glyphtest.Write(t, glyphtest.Spec{
		Variants: []string{"w1", "w2"}, Chars: []rune{'가', '나', '다'},
		Width: 20, Height: 20, Inset: 2,
	})
	corpusDir := t.TempDir()
	// 括号注释与数据集外的字符在清洗时被去掉
	require.NoError(t, os.WriteFile(filepath.Join(corpusDir, "doc.txt"), []byte("가나(漢字)다 라 나다가 다가나 가나다"), 0o644))

	out := t.TempDir()
	jobPath := writeJob(t, root, out, `    warmup: 1
    warmup-length: 8
    "다다다"`)

	// 测试跟踪适配器不是并发安全的，这里只用一个 worker
	f := flags{job: jobPath, corpus: corpusDir, workers: 1}
	failed, err := run(context.Background(), f, map[string]bool{"workers": true})
	require.NoError(t, err)
	assert.Zero(t, failed)

	// doc 清洗后 15 字 → 2 页 × 2 变体；inline01: 1 页 × 2；warmup: 1 页 × 2
	label, err := os.ReadFile(filepath.Join(out, "doc_01_0.txt"))
	require.NoError(t, err)
	assert.Equal(t, "가나다 나다\n가 다가나", string(label))

	for _, name := range []string{"doc_02_1.png", "inline01_01_0.png", "inline01_01_1.txt", "warmup_01_1.png"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 16)
}

func TestRunFlagOverrides(t *testing.T) {
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	root := glyphtest.Write(t, glyphtest.Spec{Variants: []string{"w"}, Chars: []rune{'가'}, Width: 20, Height: 20})
	jobPath := writeJob(t, root, t.TempDir(), `"가가"`)

	out := t.TempDir()
	f := flags{job: jobPath, out: out, format: "pdf", debug: true}
	set := map[string]bool{"out": true, "format": true, "debug": true}
	failed, err := run(context.Background(), f, set)
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.FileExists(t, filepath.Join(out, "inline01_01_0.pdf"))
	assert.FileExists(t, filepath.Join(out, "inline01_01_0.json"))

	_, err = run(context.Background(), flags{job: jobPath, mode: "bogus"}, map[string]bool{"mode": true})
	assert.Error(t, err)
}

func TestRunFailsFastOnBadDataset(t *testing.T) {
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "w"), 0o755))
	jobPath := writeJob(t, root, t.TempDir(), "")
	_, err := run(context.Background(), flags{job: jobPath}, map[string]bool{})
	assert.Error(t, err)
}

func TestRunCoverageSpansPages(t *testing.T) {
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	chars := make([]rune, 40)
	for i := range chars {
		chars[i] = '가' + rune(i)
	}
	root := glyphtest.Write(t, glyphtest.Spec{Variants: []string{"w"}, Chars: chars, Width: 20, Height: 20})
	out := t.TempDir()
	jobPath := writeJob(t, root, out, `    coverage: true`)

	failed, err := run(context.Background(), flags{job: jobPath}, map[string]bool{})
	require.NoError(t, err)
	assert.Zero(t, failed)

	labels, err := filepath.Glob(filepath.Join(out, "coverage_*_0.txt"))
	require.NoError(t, err)
	assert.Greater(t, len(labels), 1)
	seen := map[rune]bool{}
	for _, name := range labels {
		b, err := os.ReadFile(name)
		require.NoError(t, err)
		for _, r := range strings.Join(strings.Fields(string(b)), "") {
			seen[r] = true
		}
	}
	assert.Len(t, seen, len(chars))
}
