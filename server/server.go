// Package server 提供生成与渲染接口：POST /generate、POST /render、GET /health。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ByLCY/topiccard/card"
	"github.com/ByLCY/topiccard/prompt"
	"github.com/ByLCY/topiccard/renderer/markup"
)

const maxBodyBytes = 1 << 20

// Completer 执行一次对话，通常是 *llm.Client。
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options 配置 Server。
type Options struct {
	Completer Completer
	Engine    *card.Engine
	Markup    *markup.Renderer
	Logger    *log.Logger
}

// Server 持有各接口的依赖，可并发使用。
type Server struct {
	completer Completer
	engine    *card.Engine
	markup    *markup.Renderer
	logger    *log.Logger
}

type ctxKey struct{}

// New 创建 Server；未提供的排版与渲染依赖使用默认值。
func New(opts Options) *Server {
	s := &Server{
		completer: opts.Completer,
		engine:    opts.Engine,
		markup:    opts.Markup,
		logger:    opts.Logger,
	}
	if s.engine == nil {
		s.engine = card.New(card.DefaultOptions())
	}
	if s.markup == nil {
		s.markup = markup.New(markup.Options{})
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Handler 返回挂好路由与中间件的 http.Handler。
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID, cors)
	r.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/render", s.handleRender).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	return r
}

// ListenAndServe 监听 addr，ctx 取消后优雅退出。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Printf("listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("关闭服务失败: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type generateRequest struct {
	Topic *string `json:"topic"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	var req generateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Topic == nil {
		writeError(w, http.StatusBadRequest, "请输入要学习的领域")
		return
	}
	topic := strings.TrimSpace(*req.Topic)
	if topic == "" {
		writeError(w, http.StatusBadRequest, "主题不能为空")
		return
	}
	if s.completer == nil {
		writeError(w, http.StatusServiceUnavailable, "未配置模型后端")
		return
	}

	id := RequestID(r.Context())
	s.logger.Printf("[%s] 开始生成: %s", id, topic)
	start := time.Now()
	quick, err := s.completer.Complete(r.Context(), prompt.System, prompt.QuickIntro(topic))
	if err != nil {
		s.logger.Printf("[%s] 生成扫盲内容失败: %v", id, err)
		writeError(w, http.StatusInternalServerError, "AI 生成失败，请稍后再试")
		return
	}
	detailed, err := s.completer.Complete(r.Context(), prompt.System, prompt.Framework(topic))
	if err != nil {
		s.logger.Printf("[%s] 生成学习框架失败: %v", id, err)
		writeError(w, http.StatusInternalServerError, "AI 生成失败，请稍后再试")
		return
	}
	s.logger.Printf("[%s] 生成完成，用时 %v", id, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]string{"result": prompt.Combine(quick, detailed)})
}

type renderRequest struct {
	Text string `json:"text"`
}

// handleRender 默认返回包含全部卡片的 HTML 片段；带 ?card=N 时只返回第 N 张卡片的 SVG。
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	var req renderRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体格式错误")
		return
	}
	results := s.engine.LayoutSections(req.Text)

	if raw := r.URL.Query().Get("card"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 || idx >= len(results) {
			writeError(w, http.StatusNotFound, "卡片不存在")
			return
		}
		out, err := s.markup.Render(results[idx])
		if err != nil {
			s.logger.Printf("[%s] 渲染失败: %v", RequestID(r.Context()), err)
			writeError(w, http.StatusInternalServerError, "渲染失败")
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(out)
		return
	}

	out, err := s.markup.RenderAll(results)
	if err != nil {
		s.logger.Printf("[%s] 渲染失败: %v", RequestID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, "渲染失败")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}

// RequestID 返回中间件写入的请求编号。
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
		s.logger.Printf("[%s] %s %s %v", id, r.Method, r.URL.Path, time.Since(start))
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, X-Request-ID")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
