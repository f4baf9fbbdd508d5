package app

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/ByLCY/topiccard/card"
	"github.com/ByLCY/topiccard/client"
	"github.com/ByLCY/topiccard/renderer/markup"
)

// stubGenerator 返回预设文本或错误，并可在返回前阻塞。
type stubGenerator struct {
	text    string
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (g *stubGenerator) Generate(ctx context.Context, topic string) (string, error) {
	g.calls++
	if g.started != nil {
		close(g.started)
	}
	if g.release != nil {
		<-g.release
	}
	return g.text, g.err
}

type countingLayout struct {
	engine *card.Engine
	calls  int
}

func (l *countingLayout) LayoutSections(text string) []*card.Result {
	l.calls++
	return l.engine.LayoutSections(text)
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func newTrigger(gen Generator) (*Trigger, *countingLayout) {
	lay := &countingLayout{engine: card.New(card.DefaultOptions())}
	return NewTrigger(gen, lay, markup.New(markup.Options{}), quietLogger()), lay
}

func TestActivateRendersCards(t *testing.T) {
	gen := &stubGenerator{text: "# 五分钟扫盲\n### Go\n- 并发\n# 深入学习框架\n#### 基础\n语法"}
	trig, lay := newTrigger(gen)
	out := trig.Activate(context.Background(), "Go")
	if out.Err != nil {
		t.Fatalf("Activate: %v", out.Err)
	}
	if lay.calls != 1 || len(out.Results) != 2 {
		t.Fatalf("期望一次排版、两张卡片，得到 calls=%d results=%d", lay.calls, len(out.Results))
	}
	s := string(out.Markup)
	if strings.Count(s, "<svg") != 2 || !strings.Contains(s, "并发") {
		t.Fatalf("输出缺少卡片内容: %s", s)
	}
	if trig.Busy() {
		t.Fatalf("激活结束后不应仍处于忙碌状态")
	}
}

func TestActivateEmptyTopic(t *testing.T) {
	gen := &stubGenerator{text: "x"}
	trig, lay := newTrigger(gen)
	out := trig.Activate(context.Background(), "  ")
	if !errors.Is(out.Err, client.ErrEmptyTopic) {
		t.Fatalf("err = %v", out.Err)
	}
	if gen.calls != 0 || lay.calls != 0 {
		t.Fatalf("空主题不应调用生成或排版")
	}
	if !strings.Contains(string(out.Markup), "请输入要了解的领域！") {
		t.Fatalf("错误面板缺少提示: %s", out.Markup)
	}
}

// 返回数据格式错误时绝不进入排版。
func TestActivateMalformedSkipsLayout(t *testing.T) {
	gen := &stubGenerator{err: client.ErrMalformedResponse}
	trig, lay := newTrigger(gen)
	out := trig.Activate(context.Background(), "topic")
	if !errors.Is(out.Err, client.ErrMalformedResponse) {
		t.Fatalf("err = %v", out.Err)
	}
	if lay.calls != 0 {
		t.Fatalf("排版不应被调用，calls=%d", lay.calls)
	}
	s := string(out.Markup)
	if !strings.Contains(s, ErrorTitle) || !strings.Contains(s, "返回数据格式错误") {
		t.Fatalf("错误面板内容不对: %s", s)
	}
}

func TestActivateStatusErrorShowsDetail(t *testing.T) {
	gen := &stubGenerator{err: &client.StatusError{Code: 500, Detail: "boom"}}
	trig, _ := newTrigger(gen)
	out := trig.Activate(context.Background(), "topic")
	if !strings.Contains(string(out.Markup), "boom") {
		t.Fatalf("错误面板应包含 boom: %s", out.Markup)
	}
}

func TestActivateRefusesOverlap(t *testing.T) {
	gen := &stubGenerator{
		text:    "### 标题",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	trig, _ := newTrigger(gen)
	done := make(chan Output)
	go func() { done <- trig.Activate(context.Background(), "first") }()
	<-gen.started

	if out := trig.Activate(context.Background(), "second"); !errors.Is(out.Err, ErrBusy) {
		t.Fatalf("重叠激活应返回 ErrBusy，得到 %v", out.Err)
	}
	close(gen.release)
	if out := <-done; out.Err != nil {
		t.Fatalf("第一次激活失败: %v", out.Err)
	}
	if gen.calls != 1 {
		t.Fatalf("只应发出一次请求，得到 %d", gen.calls)
	}
}
