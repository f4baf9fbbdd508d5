package markup

import (
	"html"
	"strings"
)

const styleSheet = `.topiccard { display: flex; flex-direction: column; gap: 24px; }
.topiccard-section svg { width: 100%; height: auto; display: block; }
.topiccard-error { color: #e74c3c; padding: 20px; text-align: center; background: #fdf0ed; border-radius: 8px; }
.topiccard-error-title { font-weight: bold; margin-bottom: 10px; }
`

// StyleSheet 返回卡片与错误面板所需的 CSS，由宿主页面在边界处一次性注入。
func StyleSheet() string { return styleSheet }

// ErrorPanel 返回内联错误面板的 HTML 片段。
func ErrorPanel(title, detail string) string {
	var b strings.Builder
	b.WriteString(`<div class="topiccard-error"><div class="topiccard-error-title">`)
	b.WriteString(html.EscapeString(title))
	b.WriteString(`</div><div>`)
	b.WriteString(html.EscapeString(detail))
	b.WriteString(`</div></div>`)
	return b.String()
}
