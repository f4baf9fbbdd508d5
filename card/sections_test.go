package card

import "testing"

func TestSplitSections(t *testing.T) {
	text := "\n# 五分钟扫盲\n### 它是什么\n- 简介\n\n# 深入学习框架\n### 学习目标\n"
	secs := SplitSections(text)
	if len(secs) != 2 {
		t.Fatalf("期望 2 段，实际 %d: %#v", len(secs), secs)
	}
	if secs[0].Title != "五分钟扫盲" || secs[1].Title != "深入学习框架" {
		t.Fatalf("标题错误: %#v", secs)
	}
	if secs[0].Body != "### 它是什么\n- 简介" {
		t.Fatalf("正文错误: %q", secs[0].Body)
	}
}

func TestSplitSectionsWithoutTitles(t *testing.T) {
	secs := SplitSections("### a\n- b")
	if len(secs) != 1 || secs[0].Title != "" {
		t.Fatalf("没有一级标题时应为单段: %#v", secs)
	}
	if SplitSections("  \n ") != nil {
		t.Fatalf("空白文档应返回 nil")
	}
}

func TestLayoutSectionsNumbersResults(t *testing.T) {
	e := New(DefaultOptions())
	results := e.LayoutSections("intro line\n# A\n- x\n# B\n- y")
	if len(results) != 3 {
		t.Fatalf("期望 3 张卡片，实际 %d", len(results))
	}
	for i, r := range results {
		if r.Section != i {
			t.Fatalf("第 %d 张卡片 Section=%d", i, r.Section)
		}
	}
	if results[1].Title != "A" || results[0].Title != "" {
		t.Fatalf("标题错误: %q %q", results[0].Title, results[1].Title)
	}
}
