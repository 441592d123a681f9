package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/stickerboard/config"
	"github.com/ByLCY/stickerboard/dsl"
	"github.com/ByLCY/stickerboard/editor"
	canvasrenderer "github.com/ByLCY/stickerboard/renderer/canvas"
	"github.com/ByLCY/stickerboard/scene"
	"github.com/ByLCY/stickerboard/script"
)

// sessionOpts 是 render 与 layers 共用的参数。
type sessionOpts struct {
	config    string            // 配置文件路径
	data      string            // JSON 字面量，或 @file 从文件读取
	fontFiles map[string]string // --font-file name=path，覆盖 [font.files]
}

// loaded 是执行完脚本后的会话。
type loaded struct {
	cfg      *config.Config
	renderer *canvasrenderer.Renderer
	session  *editor.Session
	result   *script.Result
}

// newRenderer 按配置创建画布渲染器，字体相对路径以 baseDir 为基准。
// [font.files] 与 files 中的字体以 built-in:<name> 注入，同名时 files 优先。
func newRenderer(cfg *config.Config, baseDir string, files map[string]string) (*canvasrenderer.Renderer, error) {
	guide, err := scene.ParseHex(cfg.Editor.GuideColor)
	if err != nil {
		return nil, fmt.Errorf("editor.guide_color 无效: %w", err)
	}
	fonts := map[string]canvasrenderer.Resource{}
	for _, src := range []map[string]string{cfg.Font.Files, files} {
		for name, path := range src {
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("字体 %s 不可用: %w", name, err)
			}
			fonts[name] = canvasrenderer.Resource{Path: path}
		}
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir:     baseDir,
		DefaultFont: cfg.Font.Src,
		Fonts:       fonts,
		GuideColor:  guide,
	}), nil
}

// loadScript 解析配置与数据，新建会话并回放 path 指向的脚本。
func loadScript(ctx context.Context, path string, opts sessionOpts) (*loaded, error) {
	logger := loggerFromContext(ctx)

	cfg, err := config.Resolve(opts.config)
	if err != nil {
		return nil, err
	}
	data, err := parseData(opts.data)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(path)
	r, err := newRenderer(cfg, baseDir, opts.fontFiles)
	if err != nil {
		return nil, err
	}
	s, err := editor.New(editor.Options{Config: cfg, Typesetter: r, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("创建会话失败: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开脚本 %s: %w", path, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析脚本失败: %w", err)
	}
	logger.Debug("script parsed", "name", doc.Name, "version", doc.Version, "sections", len(doc.Sections))

	res, err := script.Apply(ctx, doc, s, script.Options{Data: data, BaseDir: baseDir})
	if err != nil {
		return nil, fmt.Errorf("执行脚本失败: %w", err)
	}
	return &loaded{cfg: cfg, renderer: r, session: s, result: res}, nil
}

// parseData 解析 --data：空串返回 nil，@path 从文件读取，其余按 JSON 字面量解析。
func parseData(arg string) (any, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, nil
	}
	raw := []byte(arg)
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取数据文件 %s 失败: %w", path, err)
		}
		raw = b
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}
