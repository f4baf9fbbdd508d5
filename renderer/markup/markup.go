// Package markup 将卡片布局结果序列化为自包含的 SVG 文本。
package markup

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/tdewolff/minify/v2"
	minsvg "github.com/tdewolff/minify/v2/svg"

	"github.com/ByLCY/topiccard/card"
	"github.com/ByLCY/topiccard/renderer"
)

const (
	svgMediaType = "image/svg+xml"
	cardInset    = 10.0
	bulletRadius = 4.0
)

// Options 配置 SVG 输出。
type Options struct {
	Palettes   []renderer.Palette
	FontFamily string
	Radius     float64 // 背景圆角，默认 15
	Minify     bool
	NoShadow   bool
}

// Renderer 输出 SVG 卡片。
type Renderer struct {
	opts Options
	min  *minify.M
}

var _ renderer.Renderer = (*Renderer)(nil)

// New 创建 SVG 渲染器。
func New(opts Options) *Renderer {
	if opts.Radius <= 0 {
		opts.Radius = 15
	}
	if opts.FontFamily == "" {
		opts.FontFamily = "'PingFang SC', 'Microsoft YaHei', sans-serif"
	}
	r := &Renderer{opts: opts}
	if opts.Minify {
		r.min = minify.New()
		r.min.AddFunc(svgMediaType, minsvg.Minify)
	}
	return r
}

// Render 输出单张卡片的 SVG。
func (r *Renderer) Render(res *card.Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	var buf bytes.Buffer
	r.writeCard(&buf, res)
	return r.finish(buf.Bytes())
}

// RenderAll 将多张卡片依次包装进 HTML 片段，可直接嵌入宿主页面。
func (r *Renderer) RenderAll(results []*card.Result) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<div class="topiccard">`)
	for _, res := range results {
		if res == nil {
			continue
		}
		svg, err := r.Render(res)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`<div class="topiccard-section">`)
		buf.Write(svg)
		buf.WriteString(`</div>`)
	}
	buf.WriteString(`</div>`)
	return buf.Bytes(), nil
}

func (r *Renderer) finish(out []byte) ([]byte, error) {
	if r.min == nil {
		return out, nil
	}
	small, err := r.min.Bytes(svgMediaType, out)
	if err != nil {
		return nil, fmt.Errorf("压缩 SVG 失败: %w", err)
	}
	return small, nil
}

func (r *Renderer) writeCard(buf *bytes.Buffer, res *card.Result) {
	pal := renderer.PaletteFor(r.opts.Palettes, res.Section)
	w, h := res.Canvas.Width, res.Canvas.Height
	id := fmt.Sprintf("topiccard-%d", res.Section)

	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" xml:space="preserve" width="%s" height="%s" viewBox="0 0 %s %s" font-family="%s">`,
		num(w), num(h), num(w), num(h), attr(r.opts.FontFamily))
	if res.Title != "" {
		buf.WriteString("<title>")
		escape(buf, res.Title)
		buf.WriteString("</title>")
	}

	buf.WriteString("<defs>")
	fmt.Fprintf(buf, `<linearGradient id="%s-gradient" x1="0" y1="0" x2="1" y2="1">`, id)
	fmt.Fprintf(buf, `<stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/>`, attr(pal.From), attr(pal.To))
	buf.WriteString("</linearGradient>")
	if !r.opts.NoShadow {
		fmt.Fprintf(buf, `<filter id="%s-shadow"><feDropShadow dx="3" dy="3" stdDeviation="4" flood-opacity="0.2"/></filter>`, id)
	}
	buf.WriteString("</defs>")

	fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s" fill="url(#%s-gradient)"`,
		num(cardInset), num(cardInset), num(math.Max(w-2*cardInset, 0)), num(math.Max(h-2*cardInset, 0)),
		num(r.opts.Radius), num(r.opts.Radius), id)
	if !r.opts.NoShadow {
		fmt.Fprintf(buf, ` filter="url(#%s-shadow)"`, id)
	}
	buf.WriteString("/>")

	for _, run := range res.Runs {
		if run.Kind == card.Bullet && run.Sub == 0 {
			fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="%s" fill="%s"/>`,
				num(run.X-3*bulletRadius), num(run.Y-run.FontSize*0.35), num(bulletRadius), attr(pal.Text))
		}
		fmt.Fprintf(buf, `<text x="%s" y="%s" font-size="%s"`, num(run.X), num(run.Y), num(run.FontSize))
		if run.Weight == card.WeightBold {
			buf.WriteString(` font-weight="bold"`)
		}
		if run.Align == card.AlignCenter {
			buf.WriteString(` text-anchor="middle"`)
		}
		fmt.Fprintf(buf, ` fill="%s">`, attr(pal.Text))
		escape(buf, run.Content)
		buf.WriteString("</text>")
	}
	buf.WriteString("</svg>")
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func attr(s string) string {
	var b bytes.Buffer
	escape(&b, s)
	return b.String()
}

func escape(buf *bytes.Buffer, s string) {
	// bytes.Buffer 的写入不会失败
	_ = xml.EscapeText(buf, []byte(s))
}
