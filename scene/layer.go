package scene

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Layer 是画板上的一个可绘制单元。z 序由其在 Scene 中的位置决定。
// Copy 为复制计数（0 或 1 表示原件），显示名称由 Name 与 Copy 组合得到。
type Layer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Copy      int       `json:"copy,omitempty"`
	Transform Transform `json:"transform"`
	Origin    Origin    `json:"origin"`
	Opacity   float64   `json:"opacity"`
	Visible   bool      `json:"visible"`
	Content   Content   `json:"content"`
}

// NewLayer 创建可见、不透明的新图层；内容图层使用中心原点，辅助层使用左上角原点。
func NewLayer(name string, c Content, t Transform) *Layer {
	origin := OriginCenter
	if c.Kind().Protected() {
		origin = OriginTopLeft
	}
	return &Layer{
		ID:        uuid.New(),
		Name:      name,
		Transform: t,
		Origin:    origin,
		Opacity:   1,
		Visible:   true,
		Content:   c,
	}
}

// Kind 返回负载的类型标签。
func (l *Layer) Kind() Kind { return l.Content.Kind() }

// Label 返回带复制计数的显示名称，例如 "Star (3)"。
func (l *Layer) Label() string {
	if l.Copy >= 2 {
		return fmt.Sprintf("%s (%d)", l.Name, l.Copy)
	}
	return l.Name
}

// Bubble 在图层为气泡时返回其内容。
func (l *Layer) Bubble() (*Bubble, bool) {
	b, ok := l.Content.(*Bubble)
	return b, ok
}

// LocalBounds 返回未变换的局部矩形，取决于原点约定。
func (l *Layer) LocalBounds() Rect {
	if b, ok := l.Content.(*Bubble); ok {
		return b.Bounds()
	}
	w, h := l.Content.Size()
	if l.Origin == OriginCenter {
		return Rect{X: -w / 2, Y: -h / 2, Width: w, Height: h}
	}
	return Rect{Width: w, Height: h}
}

// Bounds 返回经过缩放、旋转、平移后的工作区轴对齐包围盒。
func (l *Layer) Bounds() Rect {
	lb := l.LocalBounds()
	corners := [4]Point{
		{lb.X, lb.Y}, {lb.Right(), lb.Y}, {lb.X, lb.Bottom()}, {lb.Right(), lb.Bottom()},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y := l.Transform.Apply(c.X, c.Y)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Clone 深拷贝图层并分配新 ID；图片像素共享。
func (l *Layer) Clone() *Layer {
	c := *l
	c.ID = uuid.New()
	c.Content = l.Content.clone()
	return &c
}
