package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ByLCY/topiccard/app"
	"github.com/ByLCY/topiccard/card"
	"github.com/ByLCY/topiccard/client"
	"github.com/ByLCY/topiccard/prompt"
	"github.com/ByLCY/topiccard/renderer/markup"
)

// stubCompleter 按提示词返回固定内容，记录收到的提示词。
type stubCompleter struct {
	mu      sync.Mutex
	prompts []string
	err     error
}

func (c *stubCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, user)
	if c.err != nil {
		return "", c.err
	}
	if strings.Contains(user, "学习框架") {
		return "### 学习目标\n- 入门", nil
	}
	return "### 它是什么\n- 一种技术", nil
}

func newServer(c Completer) *httptest.Server {
	s := New(Options{Completer: c, Logger: log.New(io.Discard, "", 0)})
	return httptest.NewServer(s.Handler())
}

func postJSON(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp, raw
}

func TestGenerateCombinesBothPrompts(t *testing.T) {
	stub := &stubCompleter{}
	srv := newServer(stub)
	defer srv.Close()

	resp, raw := postJSON(t, srv.URL+"/generate", `{"topic":"  区块链 "}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body=%s", resp.StatusCode, raw)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("缺少 CORS 头")
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("缺少请求编号")
	}
	var body map[string]string
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	secs := card.SplitSections(body["result"])
	if len(secs) != 2 || secs[0].Title != prompt.QuickTitle || secs[1].Title != prompt.FrameworkTitle {
		t.Fatalf("结果分段错误: %+v", secs)
	}
	if len(stub.prompts) != 2 || !strings.Contains(stub.prompts[0], "区块链") || strings.Contains(stub.prompts[0], "  区块链 ") {
		t.Fatalf("提示词应包含去除空白后的主题: %q", stub.prompts)
	}
}

func TestGenerateRejectsEmptyTopic(t *testing.T) {
	stub := &stubCompleter{}
	srv := newServer(stub)
	defer srv.Close()

	cases := map[string]string{
		`{"topic":"   "}`: "主题不能为空",
		`{}`:              "请输入要学习的领域",
		`not json`:        "请输入要学习的领域",
	}
	for body, want := range cases {
		resp, raw := postJSON(t, srv.URL+"/generate", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", body, resp.StatusCode)
		}
		if !strings.Contains(string(raw), want) {
			t.Fatalf("%s: body = %s，期望包含 %s", body, raw, want)
		}
	}
	if len(stub.prompts) != 0 {
		t.Fatalf("非法请求不应调用模型")
	}
}

func TestGenerateCompleterFailure(t *testing.T) {
	srv := newServer(&stubCompleter{err: errors.New("quota exceeded")})
	defer srv.Close()
	resp, raw := postJSON(t, srv.URL+"/generate", `{"topic":"x"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(raw), "AI 生成失败") {
		t.Fatalf("body = %s", raw)
	}
}

func TestGenerateWithoutCompleter(t *testing.T) {
	srv := newServer(nil)
	defer srv.Close()
	resp, _ := postJSON(t, srv.URL+"/generate", `{"topic":"x"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestRender(t *testing.T) {
	srv := newServer(nil)
	defer srv.Close()
	text := `{"text":"# 一\n### 标题\n- 要点\n# 二\n正文"}`

	resp, raw := postJSON(t, srv.URL+"/render", text)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("status = %d type=%s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if strings.Count(string(raw), "<svg") != 2 {
		t.Fatalf("应包含两张卡片: %s", raw)
	}

	resp, raw = postJSON(t, srv.URL+"/render?card=1", text)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("status = %d type=%s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.HasPrefix(string(raw), "<svg") || !strings.Contains(string(raw), "正文") {
		t.Fatalf("单卡输出错误: %s", raw)
	}

	resp, _ = postJSON(t, srv.URL+"/render?card=5", text)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("越界卡片应返回 404，得到 %d", resp.StatusCode)
	}
}

func TestHealthAndPreflight(t *testing.T) {
	srv := newServer(nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(raw) != "OK" {
		t.Fatalf("health = %d %q", resp.StatusCode, raw)
	}

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/generate", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Fatalf("预检响应错误: %d %v", resp.StatusCode, resp.Header)
	}
}

// 客户端、触发器与服务端串联的完整流程。
func TestTriggerAgainstServer(t *testing.T) {
	srv := newServer(&stubCompleter{})
	defer srv.Close()

	c, err := client.New(client.Options{Endpoint: "/generate", BaseURL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	trig := app.NewTrigger(c, card.New(card.DefaultOptions()), markup.New(markup.Options{}), log.New(io.Discard, "", 0))
	out := trig.Activate(context.Background(), "Go")
	if out.Err != nil {
		t.Fatalf("Activate: %v", out.Err)
	}
	if len(out.Results) != 2 || out.Results[0].Title != prompt.QuickTitle {
		t.Fatalf("卡片错误: %d", len(out.Results))
	}
	if !strings.Contains(string(out.Markup), "一种技术") {
		t.Fatalf("输出缺少生成内容")
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := New(Options{Logger: log.New(io.Discard, "", 0)})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ListenAndServe: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("服务未在取消后退出")
	}
}
