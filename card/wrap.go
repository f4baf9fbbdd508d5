package card

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Wrapper 负责把一行文本拆成若干子行，使每个子行的估算宽度不超过 usableWidth。
// 空字符串返回空切片；非空字符串至少返回一个子行。
type Wrapper interface {
	Wrap(text string, usableWidth, fontSize float64) []string
}

// CharWrapper 按固定平均字宽做硬折行：每 charsPerLine 个字符切一刀，不考虑词边界。
type CharWrapper struct {
	AvgCharWidth float64
	Ratio        float64 // > 0 时平均字宽为 fontSize * Ratio
}

// CharsPerLine 返回每行可容纳的字符数，最小为 1。
func (c CharWrapper) CharsPerLine(usableWidth, fontSize float64) int {
	w := c.AvgCharWidth
	if c.Ratio > 0 && fontSize > 0 {
		w = fontSize * c.Ratio
	}
	if w <= 0 {
		w = DefaultOptions().AvgCharWidth
	}
	return clampCount(usableWidth / w)
}

func (c CharWrapper) Wrap(text string, usableWidth, fontSize float64) []string {
	if text == "" {
		return nil
	}
	limit := c.CharsPerLine(usableWidth, fontSize)
	var (
		lines []string
		buf   strings.Builder
		count int
	)
	for _, r := range text {
		buf.WriteRune(r)
		count++
		if count == limit {
			lines = append(lines, buf.String())
			buf.Reset()
			count = 0
		}
	}
	if count > 0 {
		lines = append(lines, buf.String())
	}
	return lines
}

// RuneWidthWrapper 以终端单元格宽度计数：东亚宽字符占两格，组合字符不占格。
// CellWidth 为单格对应的宽度（px），默认取平均字宽的一半。
type RuneWidthWrapper struct {
	CellWidth float64
}

func (w RuneWidthWrapper) Wrap(text string, usableWidth, fontSize float64) []string {
	if text == "" {
		return nil
	}
	cell := w.CellWidth
	if cell <= 0 {
		cell = DefaultOptions().AvgCharWidth / 2
	}
	limit := clampCount(usableWidth / cell)
	var (
		lines []string
		buf   strings.Builder
		used  int
	)
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if used > 0 && used+rw > limit {
			lines = append(lines, buf.String())
			buf.Reset()
			used = 0
		}
		buf.WriteRune(r)
		used += rw
	}
	if buf.Len() > 0 {
		lines = append(lines, buf.String())
	}
	return lines
}

// WordWrapper 优先在空白处断行，单词超过行宽时再硬切。
type WordWrapper struct {
	CharWrapper
}

func (w WordWrapper) Wrap(text string, usableWidth, fontSize float64) []string {
	if text == "" {
		return nil
	}
	limit := w.CharsPerLine(usableWidth, fontSize)
	wrapped := wrap.String(wordwrap.String(text, limit), limit)
	var lines []string
	for _, l := range strings.Split(wrapped, "\n") {
		if l = strings.TrimRight(l, " "); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		// 纯空白内容：保留原文，避免丢失子行
		lines = []string{text}
	}
	return lines
}

// WrapperByName 根据名称构造折行器：char（默认）、runewidth、word。
func WrapperByName(name string, opts Options) (Wrapper, error) {
	base := CharWrapper{AvgCharWidth: opts.AvgCharWidth, Ratio: opts.CharWidthRatio}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "char":
		return base, nil
	case "runewidth", "rune-width":
		return RuneWidthWrapper{CellWidth: opts.AvgCharWidth / 2}, nil
	case "word":
		return WordWrapper{CharWrapper: base}, nil
	default:
		return nil, fmt.Errorf("未知的折行方式：%s", name)
	}
}

func clampCount(v float64) int {
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(v))
}
