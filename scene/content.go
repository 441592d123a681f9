package scene

import (
	"image"
	"math"
	"strconv"
	"strings"
)

// Content 是图层负载的带标签变体，每种实现对应一个 Kind。
// Size 返回未缩放的局部宽高。
type Content interface {
	Kind() Kind
	Size() (w, h float64)
	clone() Content
}

var (
	_ Content = (*Background)(nil)
	_ Content = (*Guide)(nil)
	_ Content = (*Image)(nil)
	_ Content = (*Bubble)(nil)
	_ Content = (*Decoration)(nil)
	_ Content = (*Emoji)(nil)
	_ Content = (*Shape)(nil)
)

// Background 是画板下方的棋盘格透明指示。
type Background struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	CheckerSize float64 `json:"checkerSize"`
	Dark        Color   `json:"dark"`
	Light       Color   `json:"light"`
}

func (b *Background) Kind() Kind              { return KindBackground }
func (b *Background) Size() (float64, float64) { return b.Width, b.Height }
func (b *Background) clone() Content          { c := *b; return &c }

// GuideStyle 区分虚线边框与画板外的遮罩。
type GuideStyle int

const (
	GuideBorder GuideStyle = iota
	GuideShroud
)

// Guide 是不参与导出的辅助层。
type Guide struct {
	Style       GuideStyle `json:"style"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Fill        *Color     `json:"fill,omitempty"`
	FillAlpha   float64    `json:"fillAlpha"`
	Stroke      *Color     `json:"stroke,omitempty"`
	StrokeWidth float64    `json:"strokeWidth"`
	Dashes      []float64  `json:"dashes,omitempty"`
}

func (g *Guide) Kind() Kind              { return KindGuide }
func (g *Guide) Size() (float64, float64) { return g.Width, g.Height }
func (g *Guide) clone() Content {
	c := *g
	c.Dashes = append([]float64(nil), g.Dashes...)
	return &c
}

// Image 持有已解码的上传图片，像素数据在复制时共享（只读）。
type Image struct {
	Source image.Image `json:"-"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
}

// NewImage 以像素尺寸作为局部尺寸包装 img。
func NewImage(img image.Image) *Image {
	b := img.Bounds()
	return &Image{Source: img, Width: float64(b.Dx()), Height: float64(b.Dy())}
}

func (i *Image) Kind() Kind              { return KindImage }
func (i *Image) Size() (float64, float64) { return i.Width, i.Height }
func (i *Image) clone() Content          { c := *i; return &c }

// DecorationType 是内置装饰图形。
type DecorationType string

const (
	DecoStar    DecorationType = "star"
	DecoHeart   DecorationType = "heart"
	DecoSparkle DecorationType = "sparkle"
)

// DefaultDecorationColors 为每种装饰给出默认填充色。
var DefaultDecorationColors = map[DecorationType]Color{
	DecoStar:    MustHex("#fcc419"),
	DecoHeart:   MustHex("#ff8787"),
	DecoSparkle: MustHex("#a5d8ff"),
}

const heartPath = "M 272 238 C 206 238 152 292 152 358 C 152 493 288 528 381 662 C 468 524 609 490 609 358 C 609 292 556 238 489 238 C 441 238 400 267 381 307 C 362 267 320 238 272 238 z"

// heartBox 是 heartPath 的包围盒。
var heartBox = Rect{X: 152, Y: 238, Width: 457, Height: 424}

// HeartScale 是心形在创建时附带的缩放。
const HeartScale = 0.15

// Decoration 是以 SVG path 描述的装饰图形；Box 为 path 自身坐标下的包围盒，
// 渲染时会将 Box 中心对齐到图层原点。
type Decoration struct {
	Type DecorationType `json:"type"`
	Path string         `json:"path"`
	Box  Rect           `json:"box"`
	Fill Color          `json:"fill"`
}

// NewDecoration 构造指定类型的装饰；未知类型返回 false。
func NewDecoration(t DecorationType) (*Decoration, bool) {
	fill := DefaultDecorationColors[t]
	switch t {
	case DecoStar:
		path, box := starPath(5, 30, 15)
		return &Decoration{Type: t, Path: path, Box: box, Fill: fill}, true
	case DecoSparkle:
		path, box := starPath(4, 30, 6)
		return &Decoration{Type: t, Path: path, Box: box, Fill: fill}, true
	case DecoHeart:
		return &Decoration{Type: t, Path: heartPath, Box: heartBox, Fill: fill}, true
	default:
		return nil, false
	}
}

// starPath 生成 n 角星多边形，外半径 outer、内半径 inner，顶点朝上。
func starPath(n int, outer, inner float64) (string, Rect) {
	var sb strings.Builder
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i < n*2; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := float64(i) * math.Pi / float64(n)
		x := r * math.Sin(a)
		y := -r * math.Cos(a)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		if i == 0 {
			sb.WriteString("M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(strconv.FormatFloat(x, 'f', 3, 64))
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(y, 'f', 3, 64))
	}
	sb.WriteString(" z")
	return sb.String(), Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (d *Decoration) Kind() Kind              { return KindDecoration }
func (d *Decoration) Size() (float64, float64) { return d.Box.Width, d.Box.Height }
func (d *Decoration) clone() Content          { c := *d; return &c }

// Emoji 是单个字形图层，Width/Height 由排版后端测量后写入。
type Emoji struct {
	Char     string  `json:"char"`
	FontSize float64 `json:"fontSize"`
	Font     string  `json:"font"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

func (e *Emoji) Kind() Kind              { return KindEmoji }
func (e *Emoji) Size() (float64, float64) { return e.Width, e.Height }
func (e *Emoji) clone() Content          { c := *e; return &c }

// Shape 是没有特殊语义的通用矩形。
type Shape struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Fill   Color   `json:"fill"`
}

func (s *Shape) Kind() Kind              { return KindGeneric }
func (s *Shape) Size() (float64, float64) { return s.Width, s.Height }
func (s *Shape) clone() Content          { c := *s; return &c }
