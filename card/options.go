package card

// Options 描述一次排版所需的全部参数，单位均为 SVG 用户单位（px）。
// 构造 Engine 后不再修改。宽度、字号、步进与字宽为零时取 DefaultOptions 的值，
// 边距与间距允许显式为 0，一般应从 DefaultOptions 出发再覆盖需要的字段。
type Options struct {
	Width         float64
	PaddingLeft   float64
	PaddingRight  float64
	SafetyMargin  float64 // 折行宽度额外预留的安全边距
	TopOffset     float64 // 游标初始位置
	BottomPadding float64
	MinHeight     float64

	HeadingSize    float64
	SubHeadingSize float64
	BodySize       float64

	HeadingAdvance    float64
	SubHeadingAdvance float64
	LineHeight        float64
	ParagraphGap      float64
	BulletIndent      float64

	// AvgCharWidth 是字符计数折行使用的平均字宽（经验值，非字体度量）。
	AvgCharWidth float64
	// CharWidthRatio > 0 时，平均字宽改为 fontSize * CharWidthRatio。
	CharWidthRatio float64

	// Wrapper 为空时使用 CharWrapper。
	Wrapper Wrapper
}

// DefaultOptions 返回与卡片默认样式匹配的参数。
func DefaultOptions() Options {
	return Options{
		Width:             850,
		PaddingLeft:       40,
		PaddingRight:      40,
		SafetyMargin:      20,
		TopOffset:         120,
		BottomPadding:     40,
		HeadingSize:       32,
		SubHeadingSize:    26,
		BodySize:          22,
		HeadingAdvance:    60,
		SubHeadingAdvance: 50,
		LineHeight:        45,
		ParagraphGap:      20,
		BulletIndent:      20,
		AvgCharWidth:      22,
	}
}

// UsableWidth = 画布宽度 - 左右内边距 - 安全边距。
func (o Options) UsableWidth() float64 {
	return o.Width - o.PaddingLeft - o.PaddingRight - o.SafetyMargin
}

// BaseHeight 是空文档的高度。
func (o Options) BaseHeight() float64 {
	return finalHeight(o, o.TopOffset)
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	fill := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&o.Width, def.Width)
	fill(&o.TopOffset, def.TopOffset)
	fill(&o.HeadingSize, def.HeadingSize)
	fill(&o.SubHeadingSize, def.SubHeadingSize)
	fill(&o.BodySize, def.BodySize)
	fill(&o.HeadingAdvance, def.HeadingAdvance)
	fill(&o.SubHeadingAdvance, def.SubHeadingAdvance)
	fill(&o.LineHeight, def.LineHeight)
	fill(&o.AvgCharWidth, def.AvgCharWidth)
	// 以下字段允许显式为 0，仅在为负数时回退
	nonNeg := func(v *float64) {
		if *v < 0 {
			*v = 0
		}
	}
	nonNeg(&o.PaddingLeft)
	nonNeg(&o.PaddingRight)
	nonNeg(&o.SafetyMargin)
	nonNeg(&o.BottomPadding)
	nonNeg(&o.MinHeight)
	nonNeg(&o.ParagraphGap)
	nonNeg(&o.BulletIndent)
	if o.Wrapper == nil {
		o.Wrapper = CharWrapper{AvgCharWidth: o.AvgCharWidth, Ratio: o.CharWidthRatio}
	}
	return o
}
