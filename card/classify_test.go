package card

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		kind LineKind
		text string
	}{
		{"### Title", Heading, "Title"},
		{"  ###   **📌 第一部分：五分钟扫盲**  ", Heading, "📌 第一部分：五分钟扫盲"},
		{"###Title", Heading, "Title"},
		{"## 二级标题", Heading, "二级标题"},
		{"#### Sub", SubHeading, "Sub"},
		{"##### Deeper", SubHeading, "Deeper"},
		{"- point one", Bullet, "point one"},
		{"-point", Bullet, "point"},
		{"• 圆点", Bullet, "圆点"},
		{"* star item", Bullet, "star item"},
		{"- **关键**：说明", Bullet, "关键：说明"},
		{"*强调*开头", Plain, "*强调*开头"},
		{"#hashtag", Plain, "#hashtag"},
		{"1. 它是什么？", Plain, "1. 它是什么？"},
		{"plain text", Plain, "plain text"},
	}
	for _, tc := range cases {
		kind, text := Classify(tc.in)
		if kind != tc.kind || text != tc.text {
			t.Fatalf("Classify(%q) = (%s, %q)，期望 (%s, %q)", tc.in, kind, text, tc.kind, tc.text)
		}
	}
}

// 去除标记后的文本不应再带有触发分类的标记。
func TestClassifyStripsOriginatingMarker(t *testing.T) {
	inputs := []string{"### a", "#### b", "###### c", "- d", "• e", "+ f", "**g**"}
	for _, in := range inputs {
		kind, text := Classify(in)
		switch kind {
		case Heading, SubHeading:
			if strings.HasPrefix(text, "#") {
				t.Fatalf("%q 分类为 %s 但仍以 # 开头：%q", in, kind, text)
			}
		case Bullet:
			if strings.HasPrefix(text, "-") || strings.HasPrefix(text, "•") || strings.HasPrefix(text, "+") {
				t.Fatalf("%q 分类为 bullet 但仍带列表符号：%q", in, text)
			}
		}
		if strings.Contains(text, "**") {
			t.Fatalf("%q 的输出仍包含强调标记：%q", in, text)
		}
	}
}

func TestParseLinesSkipsBlankAndBreaks(t *testing.T) {
	lines := ParseLines("### T\r\n\n   \n---\n- a\n####\nbody")
	if len(lines) != 3 {
		t.Fatalf("期望 3 行，实际 %d: %#v", len(lines), lines)
	}
	want := []LineKind{Heading, Bullet, Plain}
	for i, l := range lines {
		if l.Kind != want[i] {
			t.Fatalf("第 %d 行类型 %s，期望 %s", i, l.Kind, want[i])
		}
		if l.Index != i {
			t.Fatalf("第 %d 行 Index=%d", i, l.Index)
		}
	}
}
