package layout

import (
	"fmt"

	"github.com/ByLCY/stickerboard/scene"
)

// DefaultPadding 是气泡底框相对文本四边的留白。
const DefaultPadding = 16.0

// Fitter 让气泡底框贴合其文本：底框 = 文本实测尺寸 + 四边 Padding。
type Fitter struct {
	Typesetter Typesetter
	Padding    float64
}

// NewFitter 使用给定排版后端与留白创建 Fitter。
func NewFitter(ts Typesetter, padding float64) *Fitter {
	return &Fitter{Typesetter: ts, Padding: padding}
}

// Fit 将 text 写入气泡并重新计算两个子元素的尺寸与位置，最后更新气泡包围盒。
// 不改变 z 序、选中状态或图层缩放。MaxWidth 仅作为折行提示：
// 单个无法断开的字形簇比 MaxWidth 更宽时，底框按实际宽度扩展。
func (f *Fitter) Fit(b *scene.Bubble, text string) error {
	if b == nil {
		return fmt.Errorf("气泡为空")
	}
	if f.Typesetter == nil {
		return fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	t := &b.Text
	lineHeight := LineHeightSpec{Kind: LineHeightFactor, Factor: t.LineHeight}.
		Resolve(Length{Value: t.FontSize, Unit: UnitPx}, UnitPx)

	lines, err := f.Typesetter.LayoutLines(text, t.MaxWidth, FontResource{Src: t.Font, Style: t.FontStyle}, t.FontSize, lineHeight, t.Wrap)
	if err != nil {
		return fmt.Errorf("气泡文本排版失败: %w", err)
	}
	if len(lines) == 0 {
		lines = []TextLine{{Height: lineHeight}}
	}

	scale := t.Scale
	if scale <= 0 {
		scale = 1
	}
	contentW := MaxLineWidth(lines) * scale
	contentH := BlockHeight(lines) * scale

	t.Content = text
	t.Lines = lines
	t.Width, t.Height = contentW, contentH
	t.X, t.Y = -contentW/2, -contentH/2

	bg := &b.Background
	bg.Width = contentW + 2*f.Padding
	bg.Height = contentH + 2*f.Padding
	bg.X, bg.Y = -bg.Width/2, -bg.Height/2

	b.UpdateBounds()
	return nil
}

// Refit 以当前文本重新计算，用于字号、字体或文本缩放变化之后。
func (f *Fitter) Refit(b *scene.Bubble) error {
	if b == nil {
		return fmt.Errorf("气泡为空")
	}
	return f.Fit(b, b.Text.Content)
}
