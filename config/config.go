// Package config 把卡片配置文件（dsl）与环境变量合并为运行时配置。
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/topiccard/card"
	"github.com/ByLCY/topiccard/dsl"
	"github.com/ByLCY/topiccard/renderer"
)

// 环境变量名。
const (
	EnvEndpoint = "TOPICCARD_ENDPOINT"
	EnvBaseURL  = "TOPICCARD_BASE_URL"
	EnvAPIKey   = "DASHSCOPE_API_KEY"
	EnvModel    = "TOPICCARD_MODEL"
	EnvAddr     = "TOPICCARD_ADDR"
)

// Endpoint 是客户端请求的生成接口。
type Endpoint struct {
	URL     string
	Base    string
	Timeout time.Duration
}

// Backend 是 serve 子命令使用的模型后端配置。
type Backend struct {
	Addr        string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Config 汇总排版、配色、客户端与后端配置。
type Config struct {
	Card       card.Options
	Palettes   []renderer.Palette
	Endpoint   Endpoint
	Backend    Backend
	FontFamily string
	Wrap       string
}

// Default 返回未加载任何文件时的配置。
func Default() Config {
	return Config{
		Card:     card.DefaultOptions(),
		Palettes: renderer.DefaultPalettes(),
		Endpoint: Endpoint{
			URL:     "/generate",
			Base:    "http://localhost:8080",
			Timeout: 60 * time.Second,
		},
		Backend: Backend{
			Addr:        ":8080",
			BaseURL:     "https://dashscope.aliyuncs.com/compatible-mode/v1",
			Model:       "qwen-max",
			Temperature: 0.3,
			MaxTokens:   2000,
		},
		FontFamily: "Microsoft YaHei, PingFang SC, sans-serif",
		Wrap:       "char",
	}
}

// FullURL 拼接出完整请求地址；URL 已是绝对地址时忽略 Base。
func (e Endpoint) FullURL() string {
	if strings.HasPrefix(e.URL, "http://") || strings.HasPrefix(e.URL, "https://") || e.Base == "" {
		return e.URL
	}
	return strings.TrimRight(e.Base, "/") + "/" + strings.TrimLeft(e.URL, "/")
}

// Load 读取配置文件；path 为空时返回默认配置。两种情况都会叠加环境变量。
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		cfg.ApplyEnv(os.LookupEnv)
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("打开配置失败: %w", err)
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// Parse 解析配置语言并在默认值之上覆盖。
func Parse(r io.Reader) (Config, error) {
	doc, err := dsl.Parse(r)
	if err != nil {
		return Config{}, fmt.Errorf("解析配置失败: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument 把 AST 转为 Config。
func FromDocument(doc *dsl.Document) (Config, error) {
	cfg := Default()
	if doc == nil {
		return cfg, nil
	}
	if doc.Name != "cards" {
		return Config{}, fmt.Errorf("未知的配置类型：%s", doc.Name)
	}
	var palettes []renderer.Palette
	for _, sec := range doc.Sections {
		var err error
		switch sec.Kind {
		case "canvas":
			err = applyCanvas(&cfg, sec.Block)
		case "font":
			err = applyFont(&cfg, sec.Block)
		case "spacing":
			err = applySpacing(&cfg, sec.Block)
		case "palette":
			var p renderer.Palette
			p, err = parsePalette(sec)
			if err == nil {
				palettes = append(palettes, p)
			}
		case "endpoint":
			err = applyEndpoint(&cfg, sec.Block)
		case "backend":
			err = applyBackend(&cfg, sec.Block)
		case "wrap":
			if v, ok := sec.Block.Lookup("mode"); ok {
				cfg.Wrap = v.Text()
			}
		default:
			err = fmt.Errorf("未知的配置段：%s", sec.Kind)
		}
		if err != nil {
			return Config{}, fmt.Errorf("%s (第 %d 行): %w", sec.Kind, sec.Pos.Line, err)
		}
	}
	if len(palettes) > 0 {
		cfg.Palettes = palettes
	}
	return cfg, nil
}

// ApplyEnv 用环境变量覆盖配置；lookup 通常为 os.LookupEnv。
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvEndpoint, &c.Endpoint.URL)
	set(EnvBaseURL, &c.Endpoint.Base)
	set(EnvAPIKey, &c.Backend.APIKey)
	set(EnvModel, &c.Backend.Model)
	set(EnvAddr, &c.Backend.Addr)
}

func applyCanvas(cfg *Config, b *dsl.Block) error {
	o := &cfg.Card
	if err := lengthInto(b, "width", &o.Width); err != nil {
		return err
	}
	if v, ok := b.Lookup("padding"); ok {
		// 一个值：左右相同；两个值：左、右。
		vals, err := lengths(v)
		if err != nil {
			return fmt.Errorf("padding: %w", err)
		}
		switch len(vals) {
		case 1:
			o.PaddingLeft, o.PaddingRight = vals[0], vals[0]
		case 2:
			o.PaddingLeft, o.PaddingRight = vals[0], vals[1]
		default:
			return fmt.Errorf("padding 需要 1 或 2 个值，得到 %d 个", len(vals))
		}
	}
	if err := lengthInto(b, "safety", &o.SafetyMargin); err != nil {
		return err
	}
	return lengthInto(b, "min-height", &o.MinHeight)
}

func applyFont(cfg *Config, b *dsl.Block) error {
	o := &cfg.Card
	for key, dst := range map[string]*float64{
		"heading":    &o.HeadingSize,
		"subheading": &o.SubHeadingSize,
		"body":       &o.BodySize,
		"char-width": &o.AvgCharWidth,
	} {
		if err := lengthInto(b, key, dst); err != nil {
			return err
		}
	}
	if v, ok := b.Lookup("char-ratio"); ok {
		f, err := strconv.ParseFloat(v.Text(), 64)
		if err != nil {
			return fmt.Errorf("char-ratio 无法解析：%s", v.Text())
		}
		o.CharWidthRatio = f
	}
	if v, ok := b.Lookup("family"); ok {
		cfg.FontFamily = v.Text()
	}
	return nil
}

func applySpacing(cfg *Config, b *dsl.Block) error {
	o := &cfg.Card
	for key, dst := range map[string]*float64{
		"top":           &o.TopOffset,
		"heading":       &o.HeadingAdvance,
		"subheading":    &o.SubHeadingAdvance,
		"line":          &o.LineHeight,
		"gap":           &o.ParagraphGap,
		"bottom":        &o.BottomPadding,
		"bullet-indent": &o.BulletIndent,
	} {
		if err := lengthInto(b, key, dst); err != nil {
			return err
		}
	}
	return nil
}

func parsePalette(sec *dsl.Section) (renderer.Palette, error) {
	p := renderer.Palette{Name: sec.Name}
	if p.Name == "" {
		return p, fmt.Errorf("palette 缺少名称")
	}
	for key, dst := range map[string]*string{"from": &p.From, "to": &p.To, "text": &p.Text} {
		v, ok := sec.Block.Lookup(key)
		if !ok {
			continue
		}
		if v.Color == nil {
			return p, fmt.Errorf("palette %s 的 %s 不是颜色值：%s", p.Name, key, v.Text())
		}
		*dst = *v.Color
	}
	if p.From == "" {
		return p, fmt.Errorf("palette %s 缺少 from", p.Name)
	}
	return p, nil
}

func applyEndpoint(cfg *Config, b *dsl.Block) error {
	if v, ok := b.Lookup("url"); ok {
		cfg.Endpoint.URL = v.Text()
	}
	if v, ok := b.Lookup("base"); ok {
		cfg.Endpoint.Base = v.Text()
	}
	if v, ok := b.Lookup("timeout"); ok {
		d, err := time.ParseDuration(v.Text())
		if err != nil {
			return fmt.Errorf("timeout 无法解析：%s", v.Text())
		}
		cfg.Endpoint.Timeout = d
	}
	return nil
}

func applyBackend(cfg *Config, b *dsl.Block) error {
	if v, ok := b.Lookup("addr"); ok {
		cfg.Backend.Addr = v.Text()
	}
	if v, ok := b.Lookup("base-url"); ok {
		cfg.Backend.BaseURL = v.Text()
	}
	if v, ok := b.Lookup("model"); ok {
		cfg.Backend.Model = v.Text()
	}
	if v, ok := b.Lookup("temperature"); ok {
		f, err := strconv.ParseFloat(v.Text(), 64)
		if err != nil {
			return fmt.Errorf("temperature 无法解析：%s", v.Text())
		}
		cfg.Backend.Temperature = f
	}
	if v, ok := b.Lookup("max-tokens"); ok {
		n, err := strconv.Atoi(v.Text())
		if err != nil {
			return fmt.Errorf("max-tokens 无法解析：%s", v.Text())
		}
		cfg.Backend.MaxTokens = n
	}
	return nil
}

func lengthInto(b *dsl.Block, key string, dst *float64) error {
	v, ok := b.Lookup(key)
	if !ok {
		return nil
	}
	l, err := ParseLength(v.Text())
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = l.PX()
	return nil
}

func lengths(v *dsl.Value) ([]float64, error) {
	var out []float64
	for _, item := range v.Items() {
		l, err := ParseLength(item.Text())
		if err != nil {
			return nil, err
		}
		out = append(out, l.PX())
	}
	return out, nil
}
