package card

import "math"

// Engine 是卡片排版引擎。同一个 Engine 可以并发使用：它只持有只读参数，
// 每次调用的游标都是局部变量。
type Engine struct {
	opts Options
}

// New 使用给定参数创建排版引擎。
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options 返回补全默认值后的参数副本。
func (e *Engine) Options() Options { return e.opts }

// Build 是 New(opts).Layout(text) 的简写。
func Build(text string, opts Options) *Result {
	return New(opts).Layout(text)
}

// Measure 是空跑的第一遍：只推进游标，不生成图元，返回精确的画布尺寸。
func (e *Engine) Measure(text string) Canvas {
	return e.measure(ParseLines(text))
}

// Layout 先计算精确高度，再进行唯一一次图元输出。
func (e *Engine) Layout(text string) *Result {
	lines := ParseLines(text)
	canvas := e.measure(lines)
	runs := make([]TextRun, 0, len(lines))
	e.walk(lines, func(run TextRun) {
		runs = append(runs, run)
	})
	return &Result{
		Canvas: canvas,
		Lines:  lines,
		Runs:   runs,
	}
}

func (e *Engine) measure(lines []Line) Canvas {
	cursor := e.walk(lines, nil)
	return Canvas{
		Width:        e.opts.Width,
		Height:       finalHeight(e.opts, cursor),
		PaddingLeft:  e.opts.PaddingLeft,
		PaddingRight: e.opts.PaddingRight,
		UsableWidth:  e.opts.UsableWidth(),
		Estimate:     e.estimate(lines),
	}
}

// walk 逐行推进游标；emit 为空时即为测量模式。返回最后的游标位置。
func (e *Engine) walk(lines []Line, emit func(TextRun)) float64 {
	o := e.opts
	usable := o.UsableWidth()
	y := o.TopOffset
	for _, line := range lines {
		switch line.Kind {
		case Heading:
			if emit != nil {
				emit(TextRun{
					X: o.Width / 2, Y: y, FontSize: o.HeadingSize,
					Weight: WeightBold, Align: AlignCenter,
					Kind: line.Kind, Line: line.Index, Content: line.Text,
				})
			}
			y += o.HeadingAdvance
		case SubHeading:
			if emit != nil {
				emit(TextRun{
					X: o.PaddingLeft, Y: y, FontSize: o.SubHeadingSize,
					Weight: WeightBold, Align: AlignLeft,
					Kind: line.Kind, Line: line.Index, Content: line.Text,
				})
			}
			y += o.SubHeadingAdvance
		default:
			x := o.PaddingLeft
			if line.Kind == Bullet {
				x += o.BulletIndent
			}
			subs := o.Wrapper.Wrap(line.Text, usable, o.BodySize)
			for i, sub := range subs {
				if emit != nil {
					emit(TextRun{
						X: x, Y: y, FontSize: o.BodySize,
						Weight: WeightRegular, Align: AlignLeft,
						Kind: line.Kind, Line: line.Index, Sub: i, Content: sub,
					})
				}
				y += o.LineHeight
			}
			y += o.ParagraphGap
		}
	}
	return y
}

// estimate 是排版前的粗略上界：每行按最坏情况计。只用于诊断输出。
func (e *Engine) estimate(lines []Line) float64 {
	o := e.opts
	perLine := CharWrapper{AvgCharWidth: o.AvgCharWidth, Ratio: o.CharWidthRatio}.
		CharsPerLine(o.UsableWidth(), o.BodySize)
	total := o.TopOffset
	for _, line := range lines {
		n := 0
		for range line.Text {
			n++
		}
		body := math.Ceil(float64(n)/float64(perLine))*o.LineHeight + o.ParagraphGap
		total += math.Max(body, math.Max(o.HeadingAdvance, o.SubHeadingAdvance))
	}
	return finalHeight(o, total)
}

func finalHeight(o Options, cursor float64) float64 {
	return math.Max(cursor+o.BottomPadding, o.MinHeight)
}
