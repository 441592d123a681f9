package scene

// 该文件定义场景模型共用的基础类型：图层种类、几何、颜色与画板。

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind 是图层的显式类型标签。
type Kind int

const (
	KindBackground Kind = iota // 画板棋盘格底，仅作透明指示
	KindGuide                  // 虚线边框与遮罩，导出时隐藏
	KindImage
	KindBubble
	KindDecoration
	KindEmoji
	KindGeneric
)

var kindNames = map[Kind]string{
	KindBackground: "background",
	KindGuide:      "guide",
	KindImage:      "image",
	KindBubble:     "bubble",
	KindDecoration: "decoration",
	KindEmoji:      "emoji",
	KindGeneric:    "generic",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Protected 报告该类图层是否为辅助层：不可选中、不可复制/删除/移动，也不会被导出。
func (k Kind) Protected() bool { return k == KindBackground || k == KindGuide }

// MarshalText 让 Kind 在调试 JSON 中以名称输出。
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Origin 决定 Transform.X/Y 指向图层的哪个点。
type Origin int

const (
	OriginTopLeft Origin = iota
	OriginCenter
)

// Transform 描述图层的位置、缩放与旋转（角度，顺时针）。
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
	Rotation float64 `json:"rotation"`
}

// At 返回位于 (x, y)、无缩放无旋转的变换。
func At(x, y float64) Transform {
	return Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}
}

// Apply 将局部坐标映射到工作区坐标：先缩放，再绕原点旋转，最后平移。
func (t Transform) Apply(x, y float64) (float64, float64) {
	x *= t.ScaleX
	y *= t.ScaleY
	if t.Rotation != 0 {
		rad := t.Rotation * math.Pi / 180
		sin, cos := math.Sincos(rad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}
	return x + t.X, y + t.Y
}

// Point 是二维坐标。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect 是轴对齐矩形，X/Y 为左上角。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains 报告点是否落在矩形内（含边界）。
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Union 返回同时包含 r 与 o 的最小矩形。
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.Right(), o.Right())
	y1 := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Expand 将每条边向外推 d（d<0 时向内收缩）。
func (r Rect) Expand(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Center 返回矩形中心。
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Color 采用 0-255 的 RGB 数值，透明度由持有者单独记录。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// White 和 Black 是常用颜色。
var (
	White = Color{R: 255, G: 255, B: 255}
	Black = Color{}
)

// ParseHex 解析 #RRGGBB（允许省略 #）。
func ParseHex(s string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) != 6 {
		return Color{}, fmt.Errorf("颜色 %q 必须是 6 位十六进制 RGB", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色 %q 不是合法的十六进制: %w", s, err)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

// MustHex 与 ParseHex 相同，解析失败时 panic，仅用于常量。
func MustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex 返回小写 #rrggbb。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R&0xff, c.G&0xff, c.B&0xff)
}

// Artboard 是工作区内固定位置、固定尺寸的导出区域。
type Artboard struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Region 返回画板在工作区中的矩形，也就是导出的裁剪区域。
func (a Artboard) Region() Rect {
	return Rect{X: a.X, Y: a.Y, Width: a.Size, Height: a.Size}
}

// Center 返回画板中心点。
func (a Artboard) Center() Point { return a.Region().Center() }
