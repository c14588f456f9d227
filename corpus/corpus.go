// Package corpus 读取语料目录下的 .txt 文档。
package corpus

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Ext 是语料文件的扩展名。
const Ext = ".txt"

// Document 是一篇语料。Key 为相对语料根目录、去掉扩展名的路径（以 / 分隔）。
type Document struct {
	Key  string
	Text string
}

// Load 递归读取 dir 下的全部 UTF-8 语料，按 Key 排序返回。
func Load(dir string) ([]Document, error) {
	return LoadEncoded(dir, "")
}

// LoadEncoded 与 Load 相同，但按给定字符集（如 "euc-kr"、"utf-8"）解码文件。
// 空字符集表示 UTF-8；UTF-8 文件开头的 BOM 会被去掉。
func LoadEncoded(dir, charset string) ([]Document, error) {
	enc, err := lookup(charset)
	if err != nil {
		return nil, err
	}
	var docs []Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), Ext) {
			return nil
		}
		text, err := readFile(path, enc)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		docs = append(docs, Document{Key: key, Text: text})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("corpus: 读取语料 %s 失败: %w", dir, err)
	}
	slices.SortFunc(docs, func(a, b Document) int { return strings.Compare(a.Key, b.Key) })
	return docs, nil
}

func lookup(charset string) (encoding.Encoding, error) {
	if charset == "" {
		return unicode.UTF8BOM, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("corpus: 未知字符集 %q: %w", charset, err)
	}
	if enc == unicode.UTF8 {
		return unicode.UTF8BOM, nil
	}
	return enc, nil
}

func readFile(path string, enc encoding.Encoding) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(transform.NewReader(f, enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("解码 %s 失败: %w", path, err)
	}
	return string(data), nil
}
