package card

// 该文件定义布局结果，供渲染器与调试 JSON 共用。

// LineKind 是源文本行的语法分类。
type LineKind int

const (
	Plain LineKind = iota
	Heading
	SubHeading
	Bullet
)

func (k LineKind) String() string {
	switch k {
	case Heading:
		return "heading"
	case SubHeading:
		return "subheading"
	case Bullet:
		return "bullet"
	default:
		return "plain"
	}
}

// MarshalText 让调试 JSON 输出可读的分类名。
func (k LineKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Weight 表示文本粗细。
type Weight string

const (
	WeightRegular Weight = "regular"
	WeightBold    Weight = "bold"
)

// Align 表示文本水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
)

// Line 是一行已分类、已去除标记的源文本。
type Line struct {
	Kind  LineKind `json:"kind"`
	Text  string   `json:"text"`
	Index int      `json:"index"` // 在非空行序列中的位置
}

// TextRun 是一个已经排好坐标的文本图元。Y 为基线位置。
type TextRun struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	FontSize float64  `json:"fontSize"`
	Weight   Weight   `json:"weight"`
	Align    Align    `json:"align"`
	Kind     LineKind `json:"kind"`
	Line     int      `json:"line"` // 对应 Line.Index
	Sub      int      `json:"sub"`  // 折行后的子行序号，从 0 开始
	Content  string   `json:"content"`
}

// Canvas 记录画布尺寸。Height 为排版后的精确高度，Estimate 仅用于诊断。
type Canvas struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	PaddingLeft  float64 `json:"paddingLeft"`
	PaddingRight float64 `json:"paddingRight"`
	UsableWidth  float64 `json:"usableWidth"`
	Estimate     float64 `json:"estimate"`
}

// Result 保存一张卡片的布局结果。
type Result struct {
	Canvas  Canvas    `json:"canvas"`
	Lines   []Line    `json:"lines"`
	Runs    []TextRun `json:"runs"`
	Title   string    `json:"title,omitempty"`
	Section int       `json:"section"`
}
