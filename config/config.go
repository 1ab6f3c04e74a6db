package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/image/math/f64"

	"github.com/ByLCY/panes/layout"
)

// Config 对应 panes.toml 配置文件。
type Config struct {
	Output    OutputConfig      `toml:"output"`
	Page      PageConfig        `toml:"page"`
	Text      TextConfig        `toml:"text"`
	Fonts     map[string]string `toml:"fonts"`
	FitFonts  FitFontsConfig    `toml:"fit_fonts"`
	Transform TransformConfig   `toml:"transform"`
	Log       LogConfig         `toml:"log"`
	Metrics   MetricsConfig     `toml:"metrics"`
}

type OutputConfig struct {
	// pdf 或 png；为空时按输出文件扩展名决定
	Format string `toml:"format"`
	// PNG 分辨率（每毫米像素数）
	DPMM float64 `toml:"dpmm"`
}

// PageConfig 设置根矩形。宽高为空时由文档或 fit 决定。
type PageConfig struct {
	Width  string `toml:"width"`
	Height string `toml:"height"`
	// grow：只增不减；shrink：取内容尺寸；none：不调整
	Fit string `toml:"fit"`
}

type TextConfig struct {
	Font string  `toml:"font"`
	Size float64 `toml:"size"`
}

type FitFontsConfig struct {
	Enabled bool    `toml:"enabled"`
	Min     float64 `toml:"min"`
	Max     float64 `toml:"max"`
	Step    float64 `toml:"step"`
}

type TransformConfig struct {
	Scale      float64 `toml:"scale"`
	TranslateX float64 `toml:"translate_x"`
	TranslateY float64 `toml:"translate_y"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type MetricsConfig struct {
	// canvas、sfnt 或 shaping
	Provider string `toml:"provider"`
	Cache    bool   `toml:"cache"`
}

const (
	FitGrow   = "grow"
	FitShrink = "shrink"
	FitNone   = "none"

	FormatPDF = "pdf"
	FormatPNG = "png"

	ProviderCanvas  = "canvas"
	ProviderSFNT    = "sfnt"
	ProviderShaping = "shaping"
)

// Default 返回默认配置。
func Default() Config {
	return Config{
		Output:    OutputConfig{DPMM: 8},
		Page:      PageConfig{Fit: FitGrow},
		Text:      TextConfig{Size: 12},
		Fonts:     map[string]string{},
		FitFonts:  FitFontsConfig{Min: 4, Step: 0.5},
		Transform: TransformConfig{Scale: 1},
		Log:       LogConfig{Level: "info"},
		Metrics:   MetricsConfig{Provider: ProviderCanvas, Cache: true},
	}
}

// Load 读取 path 指向的 TOML 文件，缺省的键保留默认值。path 为空时返回默认配置。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置 %s 失败: %w", path, err)
	}
	if cfg.Fonts == nil {
		cfg.Fonts = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("配置 %s 无效: %w", path, err)
	}
	return cfg, nil
}

// Save 把配置写入 path。
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入配置 %s 失败: %w", path, err)
	}
	return nil
}

// Validate 检查枚举值与数值范围。
func (c Config) Validate() error {
	var errs []error
	switch c.Output.Format {
	case "", FormatPDF, FormatPNG:
	default:
		errs = append(errs, fmt.Errorf("output.format 必须是 pdf 或 png，得到 %q", c.Output.Format))
	}
	if c.Output.DPMM < 0 {
		errs = append(errs, fmt.Errorf("output.dpmm 不能为负数"))
	}
	switch c.Page.Fit {
	case FitGrow, FitShrink, FitNone:
	default:
		errs = append(errs, fmt.Errorf("page.fit 必须是 grow、shrink 或 none，得到 %q", c.Page.Fit))
	}
	switch c.Metrics.Provider {
	case ProviderCanvas, ProviderSFNT, ProviderShaping:
	default:
		errs = append(errs, fmt.Errorf("metrics.provider 不支持 %q", c.Metrics.Provider))
	}
	if c.Text.Size <= 0 {
		errs = append(errs, fmt.Errorf("text.size 必须为正数"))
	}
	if ff := c.FitFonts; ff.Min < 0 || ff.Step < 0 || ff.Max < 0 {
		errs = append(errs, fmt.Errorf("fit_fonts 的 min、max、step 不能为负数"))
	} else if ff.Max > 0 && ff.Min > ff.Max {
		errs = append(errs, fmt.Errorf("fit_fonts.min (%g) 不能大于 max (%g)", ff.Min, ff.Max))
	}
	if c.Transform.Scale <= 0 {
		errs = append(errs, fmt.Errorf("transform.scale 必须为正数"))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if _, _, err := c.PageSize(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PageSize 返回以毫米表示的页面宽高，未设置的维度为 0。
func (c Config) PageSize() (width, height float64, err error) {
	parse := func(key, v string) (float64, error) {
		if v == "" {
			return 0, nil
		}
		l, err := layout.ParseLength(v)
		if err != nil {
			return 0, fmt.Errorf("page.%s: %w", key, err)
		}
		return l.ToMM(), nil
	}
	if width, err = parse("width", c.Page.Width); err != nil {
		return 0, 0, err
	}
	if height, err = parse("height", c.Page.Height); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// AffineTransform 返回先缩放后平移的绘制变换。
func (c Config) AffineTransform() f64.Aff3 {
	scale := c.Transform.Scale
	if scale <= 0 {
		scale = 1
	}
	return layout.Compose(
		layout.Translate(c.Transform.TranslateX, c.Transform.TranslateY),
		layout.Scale(scale, scale),
	)
}

// LogLevel 解析 log.level（debug/info/warn/error）。
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// FontFitOptions 返回 FitFonts 使用的搜索范围。
func (c Config) FontFitOptions() layout.FontFitOptions {
	return layout.FontFitOptions{Min: c.FitFonts.Min, Max: c.FitFonts.Max, Step: c.FitFonts.Step}
}
