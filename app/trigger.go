// Package app 把生成接口、排版引擎与输出面串成一次完整的渲染。
package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/ByLCY/topiccard/card"
	"github.com/ByLCY/topiccard/client"
	"github.com/ByLCY/topiccard/renderer/markup"
)

// ErrBusy 表示上一次渲染尚未结束。
var ErrBusy = errors.New("正在生成中，请稍候")

// ErrorTitle 是错误面板的标题。
const ErrorTitle = "请求失败"

// Generator 把主题换成文本，通常是 *client.Client。
type Generator interface {
	Generate(ctx context.Context, topic string) (string, error)
}

// Layout 把文本排成一张或多张卡片，通常是 *card.Engine。
type Layout interface {
	LayoutSections(text string) []*card.Result
}

// Surface 把卡片序列化为可展示的标记，通常是 *markup.Renderer。
type Surface interface {
	RenderAll(results []*card.Result) ([]byte, error)
}

// Output 是一次激活的结果。Err 非空时 Markup 为错误面板。
type Output struct {
	Results []*card.Result
	Markup  []byte
	Err     error
}

// Trigger 对应页面上的“生成”按钮：同一时刻只允许一次激活。
type Trigger struct {
	gen     Generator
	layout  Layout
	surface Surface
	logger  *log.Logger
	busy    atomic.Bool
}

// NewTrigger 创建触发器；logger 为空时使用标准 logger。
func NewTrigger(gen Generator, layout Layout, surface Surface, logger *log.Logger) *Trigger {
	if logger == nil {
		logger = log.Default()
	}
	return &Trigger{gen: gen, layout: layout, surface: surface, logger: logger}
}

// Busy 报告是否有激活正在进行。
func (t *Trigger) Busy() bool { return t.busy.Load() }

// Activate 执行一次完整流程。空主题在任何 I/O 之前失败；
// 重叠的激活直接返回 ErrBusy，不会发出第二个请求。
func (t *Trigger) Activate(ctx context.Context, topic string) Output {
	if strings.TrimSpace(topic) == "" {
		return t.fail(client.ErrEmptyTopic)
	}
	if !t.busy.CompareAndSwap(false, true) {
		return Output{Err: ErrBusy}
	}
	defer t.busy.Store(false)

	text, err := t.gen.Generate(ctx, topic)
	if err != nil {
		t.logger.Printf("生成失败: %v", err)
		return t.fail(err)
	}
	results := t.layout.LayoutSections(text)
	out, err := t.surface.RenderAll(results)
	if err != nil {
		t.logger.Printf("渲染失败: %v", err)
		return t.fail(err)
	}
	return Output{Results: results, Markup: out}
}

func (t *Trigger) fail(err error) Output {
	return Output{
		Markup: []byte(markup.ErrorPanel(ErrorTitle, client.Message(err))),
		Err:    err,
	}
}
