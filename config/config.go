package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

//go:embed default/config.toml
var configFS embed.FS

// Config 汇总编辑器的全部可调参数，默认值来自内嵌的 default/config.toml。
type Config struct {
	Artboard ArtboardConfig `toml:"artboard"`
	Bubble   BubbleConfig   `toml:"bubble"`
	Upload   UploadConfig   `toml:"upload"`
	Export   ExportConfig   `toml:"export"`
	Editor   EditorConfig   `toml:"editor"`
	Font     FontConfig     `toml:"font"`
}

// ArtboardConfig 描述画板在工作区中的固定位置与尺寸（逻辑单位）。
type ArtboardConfig struct {
	Size            float64 `toml:"size"`
	X               float64 `toml:"x"`
	Y               float64 `toml:"y"`
	WorkspaceExtent float64 `toml:"workspace_extent"`
}

type BubbleConfig struct {
	Padding      float64 `toml:"padding"`
	CornerRadius float64 `toml:"corner_radius"`
	FontSize     float64 `toml:"font_size"`
	LineHeight   float64 `toml:"line_height"`
	MaxWidth     float64 `toml:"max_width"`
	TextColor    string  `toml:"text_color"`
	Fill         string  `toml:"fill"`
	Border       string  `toml:"border"`
	FillAlpha    float64 `toml:"fill_alpha"`
	StrokeWidth  float64 `toml:"stroke_width"`
	DefaultText  string  `toml:"default_text"`
	OffsetY      float64 `toml:"offset_y"`
	Wrap         string  `toml:"wrap"`
}

type UploadConfig struct {
	FitBox       float64 `toml:"fit_box"`
	SingleAvatar bool    `toml:"single_avatar"`
}

type ExportConfig struct {
	Sizes       []int  `toml:"sizes"`
	DefaultSize int    `toml:"default_size"`
	Filename    string `toml:"filename"`
}

type EditorConfig struct {
	CloneOffset  float64 `toml:"clone_offset"`
	MinZoom      float64 `toml:"min_zoom"`
	MaxZoom      float64 `toml:"max_zoom"`
	CheckerSize  float64 `toml:"checker_size"`
	CheckerDark  string  `toml:"checker_dark"`
	CheckerLight string  `toml:"checker_light"`
	GuideColor   string  `toml:"guide_color"`
	ShroudAlpha  float64 `toml:"shroud_alpha"`
	EmojiSize    float64 `toml:"emoji_size"`
}

// FontConfig 中 src 支持 embed:<name>、built-in:<name> 或文件路径。
// files 把名字映射到字体文件，之后可以 built-in:<name> 引用。
type FontConfig struct {
	Src   string            `toml:"src"`
	Style string            `toml:"style"`
	Files map[string]string `toml:"files"`
}

// Default 返回内嵌默认配置的副本。
func Default() (*Config, error) {
	data, err := configFS.ReadFile("default/config.toml")
	if err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}
	c := &Config{}
	if err := c.Load(string(data)); err != nil {
		return nil, fmt.Errorf("解析内置配置失败: %w", err)
	}
	return c, nil
}

// MustDefault 与 Default 相同，但在内置配置损坏时 panic。
func MustDefault() *Config {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load 将 TOML 内容叠加到当前配置上，未出现的键保持原值。
func (c *Config) Load(data string) error {
	if _, err := toml.Decode(data, c); err != nil {
		return err
	}
	return c.Validate()
}

// Validate 检查会破坏尺寸计算的取值。
func (c *Config) Validate() error {
	if c.Artboard.Size <= 0 {
		return fmt.Errorf("artboard.size 必须为正数，当前为 %g", c.Artboard.Size)
	}
	if c.Bubble.Padding < 0 {
		return fmt.Errorf("bubble.padding 不能为负数，当前为 %g", c.Bubble.Padding)
	}
	if c.Bubble.FontSize <= 0 {
		return fmt.Errorf("bubble.font_size 必须为正数，当前为 %g", c.Bubble.FontSize)
	}
	if len(c.Export.Sizes) == 0 {
		return errors.New("export.sizes 不能为空")
	}
	for _, s := range c.Export.Sizes {
		if s <= 0 {
			return fmt.Errorf("export.sizes 含有无效尺寸 %d", s)
		}
	}
	if c.Export.DefaultSize <= 0 {
		c.Export.DefaultSize = c.Export.Sizes[0]
	}
	if err := checkFilename(c.Export.Filename); err != nil {
		return fmt.Errorf("export.filename %q 无效: %w", c.Export.Filename, err)
	}
	if c.Editor.MinZoom <= 0 || c.Editor.MaxZoom < c.Editor.MinZoom {
		return fmt.Errorf("editor 缩放范围无效: [%g, %g]", c.Editor.MinZoom, c.Editor.MaxZoom)
	}
	return nil
}

// checkFilename 要求模板恰好含一个 %d（可带宽度，如 %04d），其余 % 只能写作 %%。
// 空模板交由导出时的默认值处理。
func checkFilename(pattern string) error {
	if pattern == "" {
		return nil
	}
	verbs := 0
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' {
			continue
		}
		i++
		if i < len(pattern) && pattern[i] == '%' {
			continue
		}
		for i < len(pattern) && pattern[i] >= '0' && pattern[i] <= '9' {
			i++
		}
		if i >= len(pattern) || pattern[i] != 'd' {
			return errors.New("只支持 %d 与 %%")
		}
		verbs++
	}
	if verbs != 1 {
		return fmt.Errorf("需要恰好一个 %%d，实际 %d 个", verbs)
	}
	return nil
}

// AllowsSize 报告 size 是否在 export.sizes 中。
func (c *Config) AllowsSize(size int) bool {
	return slices.Contains(c.Export.Sizes, size)
}

// Resolve 加载默认配置，并按以下顺序叠加用户配置：显式 path、
// $STICKERBOARD_CONFIG_DIR/config.toml、用户配置目录下的 stickerboard/config.toml。
// 显式 path 不存在时报错，其余位置不存在时静默跳过。
func Resolve(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	explicit := path != ""
	if !explicit {
		path = userConfigPath()
	}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	if err := c.Load(string(data)); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return c, nil
}

func userConfigPath() string {
	if dir := os.Getenv("STICKERBOARD_CONFIG_DIR"); dir != "" {
		if s, err := os.Stat(dir); err == nil && s.IsDir() {
			return filepath.Join(dir, "config.toml")
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "stickerboard", "config.toml")
	}
	return ""
}
