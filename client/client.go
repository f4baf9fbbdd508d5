// Package client 调用远端生成接口，把主题换成类 markdown 文本。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEmptyTopic 表示主题为空或只含空白，请求不会发出。
	ErrEmptyTopic = errors.New("请输入要了解的领域！")
	// ErrMalformedResponse 表示 2xx 响应中缺少字符串 result 字段。
	ErrMalformedResponse = errors.New("返回数据格式错误")
)

const transportMessage = "服务器连接失败，请检查后端服务是否正常运行"

// TransportError 表示请求未得到任何 HTTP 响应。
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", transportMessage, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError 表示非 2xx 响应；Detail 取自响应体的 error 字段。
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// Message 返回面向用户的错误文案。
func Message(err error) string {
	var (
		te *TransportError
		se *StatusError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyTopic):
		return ErrEmptyTopic.Error()
	case errors.Is(err, ErrMalformedResponse):
		return ErrMalformedResponse.Error()
	case errors.As(err, &se):
		return se.Error()
	case errors.As(err, &te):
		return transportMessage
	case err.Error() != "":
		return err.Error()
	default:
		return transportMessage
	}
}

// Options 配置 Client。Endpoint 为相对地址时按 BaseURL 解析。
type Options struct {
	Endpoint   string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client 是生成接口的 HTTP 客户端，可并发使用。
type Client struct {
	url  string
	http *http.Client
}

// New 创建客户端；Endpoint 为空时返回错误。
func New(opts Options) (*Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("未配置生成接口地址")
	}
	url := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("相对地址 %s 需要配置 base", endpoint)
		}
		url = strings.TrimRight(opts.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{url: url, http: hc}, nil
}

// URL 返回实际请求的地址。
func (c *Client) URL() string { return c.url }

type generateRequest struct {
	Topic string `json:"topic"`
}

type generateResponse struct {
	Result *string `json:"result"`
	Error  string  `json:"error"`
}

// Generate 提交主题并返回生成的文本。空主题在发出请求前即返回 ErrEmptyTopic。
func (c *Client) Generate(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", ErrEmptyTopic
	}
	body, err := json.Marshal(generateRequest{Topic: topic})
	if err != nil {
		return "", fmt.Errorf("编码请求失败: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload generateResponse
		// 错误体不是 JSON 时只保留状态码
		_ = json.Unmarshal(raw, &payload)
		return "", &StatusError{Code: resp.StatusCode, Detail: payload.Error}
	}

	var payload generateResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Result == nil || *payload.Result == "" {
		return "", ErrMalformedResponse
	}
	return *payload.Result, nil
}
