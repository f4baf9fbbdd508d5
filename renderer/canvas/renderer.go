package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/topiccard/card"
	"github.com/ByLCY/topiccard/fonts"
	"github.com/ByLCY/topiccard/renderer"
)

const (
	cardInset    = 10.0 // px
	cardRadius   = 15.0 // px
	bulletRadius = 4.0  // px
)

// Format 为输出格式。
type Format string

const (
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// Renderer draws card results via github.com/tdewolff/canvas.
type Renderer struct {
	opts Options

	fontMu sync.Mutex
	family *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ card.Wrapper      = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	Format   Format
	Palettes []renderer.Palette
	Regular  Resource // 为空时使用内置 go-regular
	Bold     Resource // 为空时使用内置 go-bold
	Creator  string
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer.
func NewRenderer(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatSVG
	}
	if opts.Creator == "" {
		opts.Creator = "topiccard"
	}
	return &Renderer{opts: opts}
}

// Render 将单张卡片绘制为 SVG 或 PDF。
func (r *Renderer) Render(res *card.Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	family, err := r.ensureFontFamily()
	if err != nil {
		return nil, err
	}

	width, height := toMm(res.Canvas.Width), toMm(res.Canvas.Height)
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	pal := renderer.PaletteFor(r.opts.Palettes, res.Section)
	r.drawBackground(ctx, res.Canvas, pal)
	textColor := canvas.Hex(pal.Text)
	for _, run := range res.Runs {
		if run.Kind == card.Bullet && run.Sub == 0 {
			ctx.SetFillColor(textColor)
			ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
			ctx.DrawPath(toMm(run.X-3*bulletRadius), toMm(run.Y-run.FontSize*0.35), canvas.Circle(toMm(bulletRadius)))
		}
		face := family.Face(toPt(run.FontSize), textColor, fontStyle(run.Weight), canvas.FontNormal)
		align := canvas.Left
		if run.Align == card.AlignCenter {
			align = canvas.Center
		}
		// TextRun.Y 即基线位置
		ctx.DrawText(toMm(run.X), toMm(run.Y), canvas.NewTextLine(face, run.Content, align))
	}

	var buf bytes.Buffer
	switch r.opts.Format {
	case FormatPDF:
		writer := pdf.New(&buf, width, height, nil)
		writer.SetInfo(res.Title, "", "", "", r.opts.Creator)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	case FormatSVG:
		writer := svg.New(&buf, width, height, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 SVG 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的输出格式：%s", r.opts.Format)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawBackground(ctx *canvas.Context, cv card.Canvas, pal renderer.Palette) {
	w := cv.Width - 2*cardInset
	h := cv.Height - 2*cardInset
	if w <= 0 || h <= 0 {
		return
	}
	ctx.SetFillColor(canvas.Hex(pal.From))
	ctx.SetStrokeColor(canvas.Hex(pal.To))
	ctx.SetStrokeWidth(toMm(1))
	ctx.DrawPath(toMm(cardInset), toMm(cardInset), canvas.RoundedRectangle(toMm(w), toMm(h), toMm(cardRadius)))
}

// Wrap 实现 card.Wrapper：按字体真实字宽贪心折行，超出宽度即在字符处断开。
// 字体加载失败时退回字符计数折行。
func (r *Renderer) Wrap(text string, usableWidth, fontSize float64) []string {
	if text == "" {
		return nil
	}
	family, err := r.ensureFontFamily()
	if err != nil {
		return card.CharWrapper{}.Wrap(text, usableWidth, fontSize)
	}
	face := family.Face(toPt(fontSize), canvas.Black, canvas.FontRegular, canvas.FontNormal)
	limit := toMm(usableWidth)

	var (
		lines   []string
		builder strings.Builder
		current float64
	)
	for _, ch := range text {
		s := string(ch)
		cw := face.TextWidth(s)
		if builder.Len() > 0 && current+cw > limit {
			lines = append(lines, builder.String())
			builder.Reset()
			current = 0
		}
		builder.WriteString(s)
		current += cw
	}
	if builder.Len() > 0 {
		lines = append(lines, builder.String())
	}
	return lines
}

func (r *Renderer) ensureFontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family != nil {
		return r.family, nil
	}

	regular, err := loadResource(r.opts.Regular, fonts.Regular)
	if err != nil {
		return nil, err
	}
	bold, err := loadResource(r.opts.Bold, fonts.Bold)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("topiccard")
	if err := family.LoadFont(regular, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载常规字体失败: %w", err)
	}
	if err := family.LoadFont(bold, 0, canvas.FontBold); err != nil {
		return nil, fmt.Errorf("加载粗体字体失败: %w", err)
	}
	r.family = family
	return family, nil
}

func loadResource(res Resource, fallback string) ([]byte, error) {
	if len(res.Bytes) > 0 {
		return res.Bytes, nil
	}
	if res.Path != "" {
		if strings.HasPrefix(res.Path, "embed:") {
			return fonts.Load(res.Path)
		}
		data, err := os.ReadFile(res.Path)
		if err != nil {
			return nil, fmt.Errorf("读取字体 %s 失败: %w", res.Path, err)
		}
		return data, nil
	}
	return fonts.Load(fallback)
}

func fontStyle(w card.Weight) canvas.FontStyle {
	if w == card.WeightBold {
		return canvas.FontBold
	}
	return canvas.FontRegular
}
