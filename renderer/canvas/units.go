package canvasrenderer

// 布局使用 SVG 用户单位（CSS px，96dpi）；canvas 的坐标为毫米，字号为点。
const (
	pxToMm = 25.4 / 96
	pxToPt = 72.0 / 96
)

// toMm 将 px 转换为毫米。
func toMm(px float64) float64 { return px * pxToMm }

// toPt 将 px 转换为点(pt)。
func toPt(px float64) float64 { return px * pxToPt }
