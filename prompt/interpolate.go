package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Vars 是模板变量；值可以是嵌套的 map，用点号路径访问，如 ${user.name}。
type Vars map[string]any

// Interpolate 将文本中的 ${path} 替换为 vars 中的值。
// 路径不存在时保留原占位符，便于发现拼写错误。
func Interpolate(text string, vars Vars) string {
	if len(vars) == 0 {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		if val, ok := lookup(vars, path); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// Missing 返回文本中无法解析的占位符路径，按出现顺序去重。
func Missing(text string, vars Vars) []string {
	var out []string
	seen := map[string]bool{}
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		path := strings.TrimSpace(groups[1])
		if _, ok := lookup(vars, path); ok || seen[path] {
			continue
		}
		seen[path] = true
		out = append(out, path)
	}
	return out
}

func lookup(vars Vars, path string) (any, bool) {
	var current any = map[string]any(vars)
	for _, segment := range strings.Split(path, ".") {
		var m map[string]any
		switch c := current.(type) {
		case map[string]any:
			m = c
		case Vars:
			m = c
		default:
			return nil, false
		}
		val, ok := m[segment]
		if !ok {
			return nil, false
		}
		current = val
	}
	return current, true
}
