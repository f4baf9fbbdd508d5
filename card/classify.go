package card

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Classify 按固定的前缀规则判断一行文本的类型，并返回去除标记后的内容。
// 规则依次为：三级标题、四级标题、列表符号、普通文本，先匹配者生效。
// 强调标记 ** 在分类前整体移除。
func Classify(line string) (LineKind, string) {
	s := strings.TrimSpace(strings.ReplaceAll(line, "**", ""))

	if level, rest, ok := cutHeading(s); ok {
		if level >= 4 {
			return SubHeading, rest
		}
		return Heading, rest
	}
	if rest, ok := cutBullet(s); ok {
		return Bullet, rest
	}
	return Plain, s
}

// cutHeading 识别行首的 # 序列。一、二级标题要求 # 后跟空白，
// 三级及以上只看前缀（生成内容常出现 "###标题" 的写法）。
func cutHeading(s string) (int, string, bool) {
	level := 0
	for level < len(s) && s[level] == '#' {
		level++
	}
	if level == 0 {
		return 0, "", false
	}
	rest := s[level:]
	if level < 3 && rest != "" {
		r, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsSpace(r) {
			return 0, "", false
		}
	}
	return level, strings.TrimSpace(rest), true
}

func cutBullet(s string) (string, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return "", false
	}
	rest := s[size:]
	switch r {
	case '-', '•', '·':
	case '*', '+':
		// *强调* 与 +1 之类不是列表项
		if rest != "" {
			next, _ := utf8.DecodeRuneInString(rest)
			if !unicode.IsSpace(next) {
				return "", false
			}
		}
	default:
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// isThematicBreak 判断分隔线（---、***、___），这类行不产生任何内容。
func isThematicBreak(s string) bool {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if len(s) < 3 {
		return false
	}
	c := s[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	return strings.Count(s, string(c)) == len(s)
}

// ParseLines 将文档按换行拆分并逐行分类，跳过空行、分隔线与去除标记后为空的行。
func ParseLines(text string) []Line {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]Line, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" || isThematicBreak(l) {
			continue
		}
		kind, content := Classify(l)
		if content == "" {
			continue
		}
		lines = append(lines, Line{Kind: kind, Text: content, Index: len(lines)})
	}
	return lines
}
