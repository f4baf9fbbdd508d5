package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/version"

	"github.com/ByLCY/topiccard/app"
	"github.com/ByLCY/topiccard/card"
	"github.com/ByLCY/topiccard/client"
	"github.com/ByLCY/topiccard/config"
	"github.com/ByLCY/topiccard/llm"
	"github.com/ByLCY/topiccard/renderer"
	canvasrenderer "github.com/ByLCY/topiccard/renderer/canvas"
	"github.com/ByLCY/topiccard/renderer/markup"
	"github.com/ByLCY/topiccard/server"
)

func init() {
	version.SetDefaultModule("github.com/ByLCY/topiccard")
}

// 输出格式。svg 与 html 由 markup 渲染器生成，pdf 与 canvas-svg 由 canvas 绘制。
const (
	formatSVG       = "svg"
	formatHTML      = "html"
	formatPDF       = "pdf"
	formatCanvasSVG = "canvas-svg"
)

// commonFlags 是所有子命令共享的参数。
type commonFlags struct {
	configPath  string
	width       float64
	wrap        string
	minify      bool
	showVersion bool
	fontRegular string
	fontBold    string
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.configPath, "config", "c", "", "卡片配置文件路径")
	fs.Float64VarP(&c.width, "width", "w", 0, "卡片宽度（px），0 表示使用配置")
	fs.StringVar(&c.wrap, "wrap", "", "折行方式：char|runewidth|word|font")
	fs.BoolVar(&c.minify, "minify", false, "压缩 SVG 输出")
	fs.BoolVar(&c.showVersion, "version", false, "显示版本")
	fs.StringVar(&c.fontRegular, "font-regular", "", "canvas 渲染使用的常规字体 TTF 路径")
	fs.StringVar(&c.fontBold, "font-bold", "", "canvas 渲染使用的粗体 TTF 路径")
}

func main() {
	log.SetPrefix("[topiccard] ")
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "render":
		err = renderCmd(args)
	case "generate":
		err = generateCmd(args)
	case "serve":
		err = serveCmd(args)
	case "version", "--version", "-v":
		fmt.Println(version.Module(), version.Current())
	case "help", "--help", "-h":
		usage()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s 失败: %v", cmd, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, version.Module(), version.Current())
	fmt.Fprintln(os.Stderr, "Usage: topiccard <render|generate|serve> [flags]")
	fmt.Fprintln(os.Stderr, "\n  render    将本地文本排版为卡片")
	fmt.Fprintln(os.Stderr, "  generate  请求生成接口并输出卡片")
	fmt.Fprintln(os.Stderr, "  serve     启动生成与渲染服务")
}

func newFlagSet(name string, common *commonFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	common.register(fs)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, version.Module(), version.Current())
		fmt.Fprintf(os.Stderr, "Usage: topiccard %s [flags]\n\nFlags:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

func renderCmd(args []string) error {
	var (
		common commonFlags
		opts   runOptions
	)
	fs := newFlagSet("render", &common)
	fs.StringVarP(&opts.inputPath, "in", "i", "-", "输入文本路径，- 表示标准输入")
	fs.StringVarP(&opts.outputPath, "out", "o", "-", "输出路径，- 表示标准输出；多张卡片时追加序号")
	fs.StringVarP(&opts.format, "format", "f", formatSVG, "输出格式：svg|html|pdf|canvas-svg")
	fs.StringVar(&opts.debugPath, "debug", "", "布局调试 JSON 输出路径")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.showVersion {
		fmt.Println(version.Module(), version.Current())
		return nil
	}
	cfg, err := loadConfig(common)
	if err != nil {
		return err
	}
	if err := run(cfg, common, opts); err != nil {
		return err
	}
	if opts.outputPath != "-" {
		fmt.Fprintf(os.Stderr, "已生成卡片：%s\n", opts.outputPath)
	}
	return nil
}

func generateCmd(args []string) error {
	var (
		common commonFlags
		topic  string
		out    string
	)
	fs := newFlagSet("generate", &common)
	fs.StringVarP(&topic, "topic", "t", "", "要了解的领域")
	fs.StringVarP(&out, "out", "o", "-", "HTML 输出路径，- 表示标准输出")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.showVersion {
		fmt.Println(version.Module(), version.Current())
		return nil
	}
	if topic == "" && fs.NArg() > 0 {
		topic = strings.Join(fs.Args(), " ")
	}
	cfg, err := loadConfig(common)
	if err != nil {
		return err
	}

	c, err := client.New(client.Options{
		Endpoint: cfg.Endpoint.URL,
		BaseURL:  cfg.Endpoint.Base,
		Timeout:  cfg.Endpoint.Timeout,
	})
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg, common)
	if err != nil {
		return err
	}
	surface := markup.New(markupOptions(cfg, common))
	trig := app.NewTrigger(c, engine, surface, log.Default())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Printf("请求 %s", c.URL())
	result := trig.Activate(ctx, topic)
	if err := writeOutput(out, htmlPage(topic, result.Markup)); err != nil {
		return err
	}
	return result.Err
}

func serveCmd(args []string) error {
	var common commonFlags
	var addr string
	fs := newFlagSet("serve", &common)
	fs.StringVarP(&addr, "addr", "a", "", "监听地址，默认取配置")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.showVersion {
		fmt.Println(version.Module(), version.Current())
		return nil
	}
	cfg, err := loadConfig(common)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Backend.Addr
	}

	completer, err := llm.New(llm.Options{
		BaseURL:     cfg.Backend.BaseURL,
		APIKey:      cfg.Backend.APIKey,
		Model:       cfg.Backend.Model,
		Temperature: cfg.Backend.Temperature,
		MaxTokens:   cfg.Backend.MaxTokens,
	})
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg, common)
	if err != nil {
		return err
	}
	srv := server.New(server.Options{
		Completer: completer,
		Engine:    engine,
		Markup:    markup.New(markupOptions(cfg, common)),
		Logger:    log.New(os.Stderr, "[server] ", log.LstdFlags),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, addr)
}

func loadConfig(common commonFlags) (config.Config, error) {
	cfg, err := config.Load(common.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if common.width > 0 {
		cfg.Card.Width = common.width
	}
	if common.wrap != "" {
		cfg.Wrap = common.wrap
	}
	return cfg, nil
}

// newEngine 按折行方式构造排版引擎；font 模式使用 canvas 字体度量。
func newEngine(cfg config.Config, common commonFlags) (*card.Engine, error) {
	opts := cfg.Card
	if cfg.Wrap == "font" {
		opts.Wrapper = newCanvasRenderer(cfg, common, canvasrenderer.FormatSVG)
		return card.New(opts), nil
	}
	w, err := card.WrapperByName(cfg.Wrap, opts)
	if err != nil {
		return nil, err
	}
	opts.Wrapper = w
	return card.New(opts), nil
}

func newCanvasRenderer(cfg config.Config, common commonFlags, format canvasrenderer.Format) *canvasrenderer.Renderer {
	return canvasrenderer.NewRenderer(canvasrenderer.Options{
		Format:   format,
		Palettes: cfg.Palettes,
		Regular:  canvasrenderer.Resource{Path: common.fontRegular},
		Bold:     canvasrenderer.Resource{Path: common.fontBold},
		Creator:  fmt.Sprint(version.Module(), " ", version.Current()),
	})
}

func markupOptions(cfg config.Config, common commonFlags) markup.Options {
	return markup.Options{
		Palettes:   cfg.Palettes,
		FontFamily: cfg.FontFamily,
		Minify:     common.minify,
	}
}

type runOptions struct {
	inputPath  string
	outputPath string
	format     string
	debugPath  string
}

// run 串联读取、排版与渲染。
func run(cfg config.Config, common commonFlags, opts runOptions) error {
	text, err := readInput(opts.inputPath)
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg, common)
	if err != nil {
		return err
	}
	results := engine.LayoutSections(text)
	if len(results) == 0 {
		// 空文档仍输出一张基础高度的卡片
		results = []*card.Result{engine.Layout("")}
	}

	if opts.debugPath != "" {
		if err := writeDebug(results, opts.debugPath); err != nil {
			return err
		}
	}

	if opts.format == formatHTML {
		out, err := markup.New(markupOptions(cfg, common)).RenderAll(results)
		if err != nil {
			return fmt.Errorf("渲染 HTML 失败: %w", err)
		}
		return writeOutput(opts.outputPath, htmlPage(results[0].Title, out))
	}

	var r renderer.Renderer
	switch opts.format {
	case formatSVG:
		r = markup.New(markupOptions(cfg, common))
	case formatCanvasSVG:
		r = newCanvasRenderer(cfg, common, canvasrenderer.FormatSVG)
	case formatPDF:
		if opts.outputPath == "-" && term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("拒绝向终端输出 PDF，请使用 --out 指定文件")
		}
		r = newCanvasRenderer(cfg, common, canvasrenderer.FormatPDF)
	default:
		return fmt.Errorf("不支持的输出格式：%s", opts.format)
	}

	if (opts.outputPath == "-" || opts.outputPath == "") && len(results) > 1 {
		return fmt.Errorf("多张卡片无法同时写入标准输出，请使用 --out 指定文件或 --format html")
	}
	for i, res := range results {
		data, err := r.Render(res)
		if err != nil {
			return fmt.Errorf("渲染第 %d 张卡片失败: %w", i+1, err)
		}
		if err := writeOutput(numberedPath(opts.outputPath, i, len(results)), data); err != nil {
			return err
		}
	}
	return nil
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("读取标准输入失败: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("无法打开输入文件 %s: %w", path, err)
	}
	return string(data), nil
}

// numberedPath 为多张卡片的输出追加序号：cards.svg → cards-1.svg。
func numberedPath(path string, i, total int) string {
	if total <= 1 || path == "" || path == "-" {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), i+1, ext)
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}

func writeDebug(results []*card.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := card.WriteDebugJSON(results, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

// htmlPage 把卡片或错误面板包装成独立页面，样式在此一次性注入。
func htmlPage(title string, body []byte) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"zh-CN\"><head><meta charset=\"utf-8\"><title>")
	b.WriteString(markupTitle(title))
	b.WriteString("</title><style>\n")
	b.WriteString(markup.StyleSheet())
	b.WriteString("</style></head><body>\n")
	b.Write(body)
	b.WriteString("\n</body></html>\n")
	return []byte(b.String())
}

func markupTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "topiccard"
	}
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(title)
}
