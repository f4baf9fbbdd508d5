package renderer

import "github.com/ByLCY/topiccard/card"

// Renderer 将单张卡片的布局结果输出为最终文件，例如 SVG 或 PDF。
type Renderer interface {
	Render(result *card.Result) ([]byte, error)
}

// Palette 描述一张卡片的配色：背景渐变起止色与文字颜色（#rrggbb）。
type Palette struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// DefaultPalettes 返回默认配色：第一段蓝色，第二段红色。
func DefaultPalettes() []Palette {
	return []Palette{
		{Name: "quick", From: "#3498db", To: "#2980b9", Text: "#ffffff"},
		{Name: "deep", From: "#e74c3c", To: "#c0392b", Text: "#ffffff"},
	}
}

// PaletteFor 按段落序号循环选择配色；palettes 为空时使用默认配色。
func PaletteFor(palettes []Palette, section int) Palette {
	if len(palettes) == 0 {
		palettes = DefaultPalettes()
	}
	if section < 0 {
		section = 0
	}
	p := palettes[section%len(palettes)]
	if p.Text == "" {
		p.Text = "#ffffff"
	}
	if p.To == "" {
		p.To = p.From
	}
	return p
}
