package card

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCharWrapperBoundsAndPreservesContent(t *testing.T) {
	w := CharWrapper{AvgCharWidth: 22}
	inputs := []string{
		"a",
		strings.Repeat("abcdefghij", 13),
		"混合 mixed 文本，带有 punctuation！" + strings.Repeat("字", 70),
	}
	for _, usable := range []float64{1, 22, 100, 750} {
		limit := w.CharsPerLine(usable, 22)
		for _, in := range inputs {
			subs := w.Wrap(in, usable, 22)
			total := 0
			for _, s := range subs {
				n := utf8.RuneCountInString(s)
				if n == 0 || n > limit {
					t.Fatalf("usable=%g 子行长度 %d 超出 [1,%d]", usable, n, limit)
				}
				total += n
			}
			if total != utf8.RuneCountInString(in) {
				t.Fatalf("字符数不守恒: got=%d want=%d", total, utf8.RuneCountInString(in))
			}
			if strings.Join(subs, "") != in {
				t.Fatalf("拼接后与原文不一致")
			}
		}
	}
}

func TestCharWrapperLongLine(t *testing.T) {
	w := CharWrapper{AvgCharWidth: 22}
	usable := DefaultOptions().UsableWidth()
	limit := w.CharsPerLine(usable, 22)
	if limit != 34 {
		t.Fatalf("默认参数下每行应为 34 个字符，实际 %d", limit)
	}
	in := strings.Repeat("x", 100)
	subs := w.Wrap(in, usable, 22)
	want := int(math.Ceil(float64(len(in)) / float64(limit)))
	if len(subs) != want {
		t.Fatalf("期望 %d 个子行，实际 %d", want, len(subs))
	}
	last := subs[len(subs)-1]
	if last == "" || len(last) >= limit {
		t.Fatalf("最后一个子行应非空且短于 %d，实际 %q", limit, last)
	}
}

func TestCharWrapperDegenerateWidth(t *testing.T) {
	w := CharWrapper{AvgCharWidth: 22}
	for _, usable := range []float64{0, -10, 5, math.NaN()} {
		subs := w.Wrap("abc", usable, 22)
		if len(subs) != 3 {
			t.Fatalf("usable=%g 时应逐字切分，实际 %#v", usable, subs)
		}
	}
	if subs := w.Wrap("", 750, 22); len(subs) != 0 {
		t.Fatalf("空输入应返回 0 个子行，实际 %d", len(subs))
	}
}

func TestCharWrapperRatioUsesFontSize(t *testing.T) {
	w := CharWrapper{AvgCharWidth: 22, Ratio: 0.5}
	if got := w.CharsPerLine(100, 20); got != 10 {
		t.Fatalf("Ratio 模式下期望 10，实际 %d", got)
	}
}

func TestRuneWidthWrapperCountsWideGlyphs(t *testing.T) {
	w := RuneWidthWrapper{CellWidth: 10}
	// 40px -> 4 格：两个汉字或四个 ASCII 字符
	subs := w.Wrap("汉字测试abcd", 40, 22)
	want := []string{"汉字", "测试", "abcd"}
	if strings.Join(subs, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q want %q", subs, want)
	}
	// 单格宽度下宽字符仍单独成行，不会死循环
	subs = w.Wrap("汉字", 1, 22)
	if len(subs) != 2 {
		t.Fatalf("宽字符应各占一行，实际 %q", subs)
	}
}

func TestWordWrapperBreaksOnSpaces(t *testing.T) {
	w := WordWrapper{CharWrapper{AvgCharWidth: 10}}
	subs := w.Wrap("hello brave new world", 110, 22)
	for _, s := range subs {
		if utf8.RuneCountInString(s) > 11 {
			t.Fatalf("子行超出限制：%q", s)
		}
	}
	if strings.Join(strings.Fields(strings.Join(subs, " ")), " ") != "hello brave new world" {
		t.Fatalf("内容丢失：%q", subs)
	}
	if len(subs) < 2 {
		t.Fatalf("应当折为多行：%q", subs)
	}
}

func TestWrapperByName(t *testing.T) {
	opts := DefaultOptions()
	for _, name := range []string{"", "char", "runewidth", "word"} {
		if _, err := WrapperByName(name, opts); err != nil {
			t.Fatalf("%q: %v", name, err)
		}
	}
	if _, err := WrapperByName("pixel", opts); err == nil {
		t.Fatalf("未知名称应返回错误")
	}
}
