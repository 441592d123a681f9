package canvasrenderer

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/stickerboard/errs"
	"github.com/ByLCY/stickerboard/layout"
	"github.com/ByLCY/stickerboard/scene"
)

// 选中框手柄在屏幕上的边长与线宽（逻辑单位，绘制时按 zoom 抵消）。
const (
	handleSize      = 8.0
	selectionStroke = 1.5
)

// drawLayer 在图层局部坐标系中绘制内容。clip 为工作区坐标下的可见区域，
// 用于限制棋盘格的格子数量。
func (r *Renderer) drawLayer(ctx *canvas.Context, l *scene.Layer, clip scene.Rect) error {
	ctx.Push()
	defer ctx.Pop()
	ctx.ComposeView(layerMatrix(l.Transform))

	opacity := math.Min(math.Max(l.Opacity, 0), 1)
	switch c := l.Content.(type) {
	case *scene.Background:
		r.drawBackground(ctx, c, localClip(l.Transform, clip), opacity)
	case *scene.Guide:
		r.drawGuide(ctx, c, opacity)
	case *scene.Image:
		return r.drawImage(ctx, c, opacity)
	case *scene.Bubble:
		return r.drawBubble(ctx, c, opacity)
	case *scene.Decoration:
		return r.drawDecoration(ctx, c, opacity)
	case *scene.Emoji:
		return r.drawEmoji(ctx, c, opacity)
	case *scene.Shape:
		ctx.SetFillColor(colorWithAlpha(c.Fill, opacity))
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.DrawPath(-c.Width/2, -c.Height/2, canvas.Rectangle(c.Width, c.Height))
	}
	return nil
}

// layerMatrix 与 scene.Transform.Apply 一致：先缩放，再旋转，最后平移。
func layerMatrix(t scene.Transform) canvas.Matrix {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return canvas.Identity.Translate(t.X, t.Y).Rotate(t.Rotation).Scale(sx, sy)
}

// localClip 把工作区矩形换算到未旋转图层的局部坐标。辅助层从不旋转。
func localClip(t scene.Transform, clip scene.Rect) scene.Rect {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return scene.Rect{
		X:      (clip.X - t.X) / sx,
		Y:      (clip.Y - t.Y) / sy,
		Width:  clip.Width / sx,
		Height: clip.Height / sy,
	}
}

func (r *Renderer) drawBackground(ctx *canvas.Context, bg *scene.Background, clip scene.Rect, opacity float64) {
	area := scene.Rect{Width: bg.Width, Height: bg.Height}
	x0, y0 := math.Max(area.X, clip.X), math.Max(area.Y, clip.Y)
	x1, y1 := math.Min(area.Right(), clip.Right()), math.Min(area.Bottom(), clip.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return
	}
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(colorWithAlpha(bg.Light, opacity))
	ctx.DrawPath(x0, y0, canvas.Rectangle(x1-x0, y1-y0))

	size := bg.CheckerSize
	if size <= 0 {
		return
	}
	// 只生成与可见区域相交的深色格子
	p := &canvas.Path{}
	for row := math.Floor(y0 / size); row*size < y1; row++ {
		for col := math.Floor(x0 / size); col*size < x1; col++ {
			if int(row+col)%2 == 0 {
				continue
			}
			cx0, cy0 := math.Max(col*size, x0), math.Max(row*size, y0)
			cx1, cy1 := math.Min((col+1)*size, x1), math.Min((row+1)*size, y1)
			p.MoveTo(cx0, cy0)
			p.LineTo(cx1, cy0)
			p.LineTo(cx1, cy1)
			p.LineTo(cx0, cy1)
			p.Close()
		}
	}
	if p.Empty() {
		return
	}
	ctx.SetFillColor(colorWithAlpha(bg.Dark, opacity))
	ctx.DrawPath(0, 0, p)
}

func (r *Renderer) drawGuide(ctx *canvas.Context, g *scene.Guide, opacity float64) {
	if g.Fill != nil {
		ctx.SetFillColor(colorWithAlpha(*g.Fill, g.FillAlpha*opacity))
	} else {
		ctx.SetFillColor(canvas.Transparent)
	}
	if g.Stroke != nil && g.StrokeWidth > 0 {
		ctx.SetStrokeColor(colorWithAlpha(*g.Stroke, opacity))
		ctx.SetStrokeWidth(g.StrokeWidth)
		if len(g.Dashes) > 0 {
			ctx.SetDashes(0, g.Dashes...)
		}
	} else {
		ctx.SetStrokeColor(canvas.Transparent)
	}
	ctx.DrawPath(0, 0, canvas.Rectangle(g.Width, g.Height))
}

func (r *Renderer) drawImage(ctx *canvas.Context, img *scene.Image, opacity float64) error {
	if img.Source == nil {
		return errs.New(errs.CodeInvalidInput, "图片图层缺少像素数据")
	}
	b := img.Source.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || img.Width <= 0 {
		return nil
	}
	src := img.Source
	if opacity < 1 {
		// 透明度通过叠加到全透明底图实现
		src = imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.NRGBA{}), src, image.Pt(0, 0), opacity)
	}
	dpmm := float64(b.Dx()) / img.Width
	ctx.DrawImage(-img.Width/2, -img.Height/2, src, canvas.DPMM(dpmm))
	return nil
}

func (r *Renderer) drawBubble(ctx *canvas.Context, b *scene.Bubble, opacity float64) error {
	bg := b.Background
	ctx.SetFillColor(colorWithAlpha(bg.Fill, bg.FillAlpha*opacity))
	if bg.Stroke != nil && bg.StrokeWidth > 0 {
		ctx.SetStrokeColor(colorWithAlpha(*bg.Stroke, opacity))
		ctx.SetStrokeWidth(bg.StrokeWidth)
	} else {
		ctx.SetStrokeColor(canvas.Transparent)
	}
	radius := math.Min(bg.Radius, math.Min(bg.Width, bg.Height)/2)
	ctx.DrawPath(bg.X, bg.Y, canvas.RoundedRectangle(bg.Width, bg.Height, radius))

	t := b.Text
	face, err := r.fontFace(layout.FontResource{Src: t.Font, Style: t.FontStyle}, toPt(t.FontSize), t.Color, opacity)
	if err != nil {
		return err
	}
	lines := t.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: t.Content, Width: t.Width, Height: t.FontSize}}
	}
	scale := t.Scale
	if scale <= 0 {
		scale = 1
	}

	// 行数据为未缩放尺寸，在文本块顶部中点处缩放后按行居中绘制
	ctx.Push()
	defer ctx.Pop()
	ctx.ComposeView(canvas.Identity.Translate(t.X+t.Width/2, t.Y).Scale(scale, scale))
	ascent := face.Metrics().Ascent
	cursorY := 0.0
	for _, line := range lines {
		cursorY += line.GapBefore
		if line.Content != "" {
			ctx.DrawText(0, cursorY+ascent, canvas.NewTextLine(face, line.Content, canvas.Center))
		}
		h := line.Height
		if h <= 0 {
			h = t.FontSize
		}
		cursorY += h
	}
	return nil
}

func (r *Renderer) drawDecoration(ctx *canvas.Context, d *scene.Decoration, opacity float64) error {
	p, err := canvas.ParseSVGPath(d.Path)
	if err != nil {
		return errs.Wrap(errs.CodeInvalidInput, err, "装饰 %s 的路径无效", d.Type)
	}
	ctx.SetFillColor(colorWithAlpha(d.Fill, opacity))
	ctx.SetStrokeColor(canvas.Transparent)
	center := d.Box.Center()
	ctx.DrawPath(-center.X, -center.Y, p)
	return nil
}

func (r *Renderer) drawEmoji(ctx *canvas.Context, e *scene.Emoji, opacity float64) error {
	face, err := r.fontFace(layout.FontResource{Src: e.Font}, toPt(e.FontSize), scene.Black, opacity)
	if err != nil {
		return err
	}
	ascent := face.Metrics().Ascent
	ctx.DrawText(0, -e.Height/2+ascent, canvas.NewTextLine(face, e.Char, canvas.Center))
	return nil
}

// drawSelection 以工作区坐标绘制选中图层的包围框与四角手柄，线宽不随 zoom 变化。
func (r *Renderer) drawSelection(ctx *canvas.Context, l *scene.Layer, zoom float64) {
	b := l.Bounds()
	ctx.Push()
	defer ctx.Pop()
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(colorWithAlpha(r.guideColor, 1))
	ctx.SetStrokeWidth(selectionStroke / zoom)
	ctx.DrawPath(b.X, b.Y, canvas.Rectangle(b.Width, b.Height))

	hs := handleSize / zoom
	ctx.SetFillColor(canvas.White)
	for _, pt := range []scene.Point{
		{X: b.X, Y: b.Y}, {X: b.Right(), Y: b.Y}, {X: b.X, Y: b.Bottom()}, {X: b.Right(), Y: b.Bottom()},
	} {
		ctx.DrawPath(pt.X-hs/2, pt.Y-hs/2, canvas.Rectangle(hs, hs))
	}
}
