package card

import "strings"

// Section 是按一级标题切分出的一段内容，每段渲染为一张卡片。
type Section struct {
	Title string
	Body  string
}

// SplitSections 按一级标题（"# 标题"）切分文档。第一个一级标题之前的非空内容
// 作为无标题的首段；没有任何一级标题时整篇作为一段。空白文档返回 nil。
func SplitSections(text string) []Section {
	var (
		sections []Section
		current  *Section
		body     []string
	)
	flush := func() {
		if current == nil {
			if strings.TrimSpace(strings.Join(body, "\n")) == "" {
				body = nil
				return
			}
			current = &Section{}
		}
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		sections = append(sections, *current)
		current = nil
		body = nil
	}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if title, ok := cutSectionTitle(line); ok {
			flush()
			current = &Section{Title: title}
			continue
		}
		body = append(body, line)
	}
	flush()
	return sections
}

func cutSectionTitle(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "# ") && s != "#" {
		return "", false
	}
	return strings.TrimSpace(strings.ReplaceAll(s[1:], "**", "")), true
}

// LayoutSections 对每个段落分别排版，Result.Section 记录段落序号，供渲染器选择配色。
func (e *Engine) LayoutSections(text string) []*Result {
	sections := SplitSections(text)
	results := make([]*Result, 0, len(sections))
	for i, sec := range sections {
		res := e.Layout(sec.Body)
		res.Title = sec.Title
		res.Section = i
		results = append(results, res)
	}
	return results
}
