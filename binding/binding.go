package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将输出文件名模板中的 ${path.to.value} 替换为 data 中的值。
// 占位符可带格式后缀 ${page:03}，表示以 0 左补齐到 3 位；未带 0 前缀的宽度以空格补齐。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path, spec, _ := strings.Cut(strings.TrimSpace(groups[1]), ":")
		path = strings.TrimSpace(path)
		if path == "" {
			return match
		}
		val, ok := resolvePath(data, path)
		if !ok {
			return match
		}
		return format(val, strings.TrimSpace(spec))
	})
}

// Placeholders 返回模板中引用的全部路径（去掉格式后缀），按出现顺序。
func Placeholders(text string) []string {
	var out []string
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		path, _, _ := strings.Cut(groups[1], ":")
		out = append(out, strings.TrimSpace(path))
	}
	return out
}

func format(val any, spec string) string {
	s := fmt.Sprint(val)
	if spec == "" {
		return s
	}
	pad := " "
	if strings.HasPrefix(spec, "0") {
		pad = "0"
	}
	width, err := strconv.Atoi(spec)
	if err != nil || width <= len(s) {
		return s
	}
	if pad == "0" && strings.HasPrefix(s, "-") {
		return "-" + strings.Repeat("0", width-len(s)) + s[1:]
	}
	return strings.Repeat(pad, width-len(s)) + s
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
