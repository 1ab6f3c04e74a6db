package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/panes/config"
	"github.com/ByLCY/panes/dsl"
	"github.com/ByLCY/panes/fonts"
	"github.com/ByLCY/panes/layout"
	"github.com/ByLCY/panes/metrics"
	canvasrenderer "github.com/ByLCY/panes/renderer/canvas"
)

func main() {
	input := flag.String("in", "examples/demo.panes", "DSL 文件路径")
	output := flag.String("out", "output/demo.pdf", "输出路径（.pdf 或 .png）")
	configPath := flag.String("config", "", "TOML 配置文件路径")
	debug := flag.String("debug", "", "绘制场景调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据，以 @ 开头时表示文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	level, _ := cfg.LogLevel()
	layout.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	data, err := loadData(*dataJSON)
	if err != nil {
		log.Fatalf("读取 data 失败: %v", err)
	}

	opts := runOptions{
		input:  *input,
		output: *output,
		debug:  *debug,
		data:   data,
		config: cfg,
	}
	if err := run(opts); err != nil {
		log.Fatalf("生成失败: %v", err)
	}
	fmt.Printf("已生成：%s\n", *output)
}

type runOptions struct {
	input  string
	output string
	debug  string
	data   []byte
	config config.Config
}

// run 串联解析、布局与渲染。
func run(opts runOptions) error {
	cfg := opts.config
	src, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", opts.input, err)
	}
	doc, err := dsl.ParseString(string(src))
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}
	built, err := dsl.Build(doc, dsl.BuildOptions{Data: opts.data, Font: cfg.Text.Font, Size: cfg.Text.Size})
	if err != nil {
		return fmt.Errorf("构建布局树失败: %w", err)
	}

	lib := fonts.NewLibrary(filepath.Dir(opts.input))
	for name, src := range cfg.Fonts {
		lib.Register(name, src)
	}
	for name, src := range built.Fonts {
		lib.Register(name, src)
	}

	format := canvasrenderer.Format(cfg.Output.Format)
	if format == "" {
		if format, err = canvasrenderer.ParseFormat(filepath.Ext(opts.output)); err != nil {
			return err
		}
	}
	r := canvasrenderer.NewRenderer(canvasrenderer.Options{
		Fonts:  lib,
		Format: format,
		DPMM:   cfg.Output.DPMM,
		Meta: canvasrenderer.Meta{
			Title:    built.Meta.Title,
			Subject:  built.Meta.Subject,
			Author:   built.Meta.Author,
			Creator:  built.Meta.Creator,
			Keywords: built.Meta.Keywords,
		},
	})
	m := newMetrics(cfg.Metrics, lib, r)

	root, err := fit(built.Root, m, cfg)
	if err != nil {
		return err
	}

	scene, err := layout.Record(root, m, cfg.AffineTransform())
	if err != nil {
		return fmt.Errorf("绘制布局失败: %w", err)
	}
	if cache, ok := m.(*metrics.Cache); ok {
		hits, misses := cache.Stats()
		layout.Logger().Debug("metrics cache", "hits", hits, "misses", misses)
	}

	if opts.debug != "" {
		if err := writeDebug(scene, opts.debug); err != nil {
			return err
		}
	}

	out, err := r.Render(scene)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func newMetrics(cfg config.MetricsConfig, lib *fonts.Library, r *canvasrenderer.Renderer) layout.Metrics {
	var m layout.Metrics
	switch cfg.Provider {
	case config.ProviderSFNT:
		m = metrics.NewSFNT(lib)
	case config.ProviderShaping:
		m = metrics.NewShaper(lib)
	default:
		m = r
	}
	if cfg.Cache {
		m = metrics.NewCache(m)
	}
	return m
}

// fit 应用页面尺寸配置，并按 page.fit 与 fit_fonts 调整布局。
func fit(root layout.Pane, m layout.Metrics, cfg config.Config) (layout.Pane, error) {
	width, height, err := cfg.PageSize()
	if err != nil {
		return layout.Pane{}, err
	}
	rect := root.Rect()
	if width > 0 {
		rect.Width = width
	}
	if height > 0 {
		rect.Height = height
	}
	root = layout.Resolve(root, rect)

	switch cfg.Page.Fit {
	case config.FitGrow, config.FitShrink:
		root, err = layout.FitText(root, m, layout.FitOptions{Shrink: cfg.Page.Fit == config.FitShrink})
		if err != nil {
			return layout.Pane{}, fmt.Errorf("适配文本失败: %w", err)
		}
	}
	if cfg.FitFonts.Enabled {
		root, err = layout.FitFonts(root, m, cfg.FontFitOptions())
		if err != nil {
			return layout.Pane{}, fmt.Errorf("适配字号失败: %w", err)
		}
	}
	return root, nil
}

func loadData(arg string) ([]byte, error) {
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		return os.ReadFile(path)
	}
	return []byte(arg), nil
}

func writeDebug(scene *layout.Scene, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(scene, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
