package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/stickerboard/errs"
	"github.com/ByLCY/stickerboard/fonts"
	"github.com/ByLCY/stickerboard/layout"
	"github.com/ByLCY/stickerboard/renderer"
	"github.com/ByLCY/stickerboard/scene"
)

// DefaultMaxPixels 限制单次光栅化的像素总数（约 4096×4096）。
const DefaultMaxPixels = 4096 * 4096

// Renderer draws scenes via github.com/tdewolff/canvas.
// One logical unit is drawn as one canvas millimetre; Frame.Multiplier is the
// pixels-per-unit resolution handed to the rasterizer.
type Renderer struct {
	baseDir     string
	defaultFont string
	maxPixels   int
	guideColor  scene.Color

	// injected resources
	fontBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir     string
	DefaultFont string              // used when a text block has no font src, defaults to embed:goregular
	Fonts       map[string]Resource // injected fonts accessible via built-in:<name>
	MaxPixels   int
	GuideColor  scene.Color // selection handle color
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		defaultFont:  opts.DefaultFont,
		maxPixels:    opts.MaxPixels,
		guideColor:   opts.GuideColor,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	if r.defaultFont == "" {
		r.defaultFont = "embed:" + fonts.Default
	}
	if r.maxPixels <= 0 {
		r.maxPixels = DefaultMaxPixels
	}
	if r.guideColor == (scene.Color{}) {
		r.guideColor = scene.MustHex("#4ade80")
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // ignore error here; will be caught when actually used
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// Render 光栅化 Frame 描述的区域。不可见图层跳过，未绘制的像素保持透明。
func (r *Renderer) Render(f renderer.Frame) (image.Image, error) {
	if f.Scene == nil {
		return nil, errs.New(errs.CodeInvalidInput, "渲染场景为空")
	}
	if f.Multiplier <= 0 || math.IsInf(f.Multiplier, 0) || math.IsNaN(f.Multiplier) {
		return nil, errs.New(errs.CodeCaptureFailed, "无效的输出倍率 %g", f.Multiplier)
	}
	w, h := f.Size()
	if w <= 0 || h <= 0 {
		return nil, errs.New(errs.CodeCaptureFailed, "裁剪区域为空: %gx%g", f.Region.Width, f.Region.Height)
	}
	if w*h > r.maxPixels {
		return nil, errs.New(errs.CodeCaptureFailed, "输出尺寸 %dx%d 超过上限 %d 像素", w, h, r.maxPixels)
	}

	c := canvas.New(f.Region.Width, f.Region.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与场景保持左上角为原点

	// 屏幕坐标 = 世界坐标 × zoom + pan；再平移使 Region 左上角落在画布原点。
	zoom := f.View.Scale()
	ctx.SetView(canvas.Identity.
		Translate(f.View.PanX-f.Region.X, f.View.PanY-f.Region.Y).
		Scale(zoom, zoom))

	x0, y0 := f.View.Invert(f.Region.X, f.Region.Y)
	clip := scene.Rect{X: x0, Y: y0, Width: f.Region.Width / zoom, Height: f.Region.Height / zoom}
	for _, l := range f.Scene.Layers() {
		if !l.Visible {
			continue
		}
		if err := r.drawLayer(ctx, l, clip); err != nil {
			return nil, err
		}
	}
	if sel, ok := f.Scene.Find(f.Selected); ok && sel.Visible {
		r.drawSelection(ctx, sel, zoom)
	}

	return rasterizer.Draw(c, canvas.DPMM(f.Multiplier), canvas.DefaultColorSpace), nil
}

// LayoutLines 实现 layout.Typesetter 接口，使用按字形簇的贪心换行。
// 约定：fontSize/lineHeight 入参均为逻辑单位。渲染器内部与字体系统交互使用 pt，并在边界做换算。
func (r *Renderer) LayoutLines(content string, width float64, font layout.FontResource, fontSize, lineHeight float64, wrap string) ([]layout.TextLine, error) {
	face, err := r.fontFace(font, toPt(fontSize), scene.Black, 1)
	if err != nil {
		return nil, err
	}

	lines := wrapLines(content, width, face, normalizeWrap(wrap))
	textHeight := face.Metrics().LineHeight
	if textHeight <= 0 {
		textHeight = lineHeight
	}
	leading := math.Max(lineHeight-textHeight, 0)
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: ""}}
	}
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = textHeight
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

func (r *Renderer) fontFace(font layout.FontResource, sizePt float64, col scene.Color, alpha float64) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, errs.Wrap(errs.CodeFontUnavailable, err, "加载字体 %s 失败", font.Src)
	}
	return family.Face(sizePt, colorWithAlpha(col, alpha), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	if font.Src == "" {
		font.Src = r.defaultFont
	}
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	family := canvas.NewFontFamily(font.Src)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	src := font.Src
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	}
	if strings.HasPrefix(src, "embed:") {
		return fonts.Load(goVariant(src, parseFontStyle(font.Style)))
	}
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 built-in: 或 embed:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("stickerboard-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

// goVariant 将带字重或斜体的 embed:goregular 换成对应的 Go 字体文件，
// 其它来源原样返回。
func goVariant(src string, style canvas.FontStyle) string {
	if strings.ToLower(strings.TrimPrefix(src, "embed:")) != fonts.Default {
		return src
	}
	bold, medium := false, false
	switch style.Weight() {
	case canvas.FontSemiBold, canvas.FontBold, canvas.FontExtraBold, canvas.FontBlack:
		bold = true
	case canvas.FontMedium:
		medium = true
	}
	switch {
	case bold && style.Italic():
		return "embed:gobolditalic"
	case bold:
		return "embed:gobold"
	case style.Italic():
		return "embed:goitalic"
	case medium:
		return "embed:gomedium"
	}
	return src
}

func fontCacheKey(font layout.FontResource) string {
	return font.Src + "|" + strings.ToLower(font.Style)
}

func colorWithAlpha(c scene.Color, alpha float64) color.Color {
	alpha = math.Min(math.Max(alpha, 0), 1)
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, alpha)
}

// toPt 将逻辑单位转换为点(pt)。
func toPt(units float64) float64 { return units * layout.UnitToPt }
