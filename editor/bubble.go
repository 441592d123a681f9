package editor

import (
	"github.com/google/uuid"

	"github.com/ByLCY/stickerboard/errs"
	"github.com/ByLCY/stickerboard/scene"
)

// AddBubble 以当前样式新建气泡，放在画板中心下方 offset_y 处，并设为当前气泡。
func (s *Session) AddBubble(text string) (*scene.Layer, error) {
	bc := s.cfg.Bubble
	b := &scene.Bubble{
		Background: scene.BubbleBackground{
			Radius:      bc.CornerRadius,
			FillAlpha:   bc.FillAlpha,
			StrokeWidth: bc.StrokeWidth,
		},
		Text: scene.BubbleText{
			Font:       s.cfg.Font.Src,
			FontStyle:  s.cfg.Font.Style,
			FontSize:   bc.FontSize,
			LineHeight: bc.LineHeight,
			MaxWidth:   bc.MaxWidth,
			Color:      s.style.Text,
			Wrap:       bc.Wrap,
			Scale:      1,
		},
	}
	b.SetColors(s.style.Fill, s.style.Border)
	if err := s.fitter.Fit(b, text); err != nil {
		return nil, err
	}

	c := s.board.Center()
	l := scene.NewLayer("Bubble", b, scene.At(c.X, c.Y+bc.OffsetY))
	s.add(l)
	return l, nil
}

// currentBubble 返回当前气泡，没有当前气泡时返回 NOT_FOUND。
func (s *Session) currentBubble() (*scene.Layer, *scene.Bubble, error) {
	l, ok := s.CurrentBubble()
	if !ok {
		return nil, nil, errs.New(errs.CodeNotFound, "没有当前气泡")
	}
	b, _ := l.Bubble()
	return l, b, nil
}

// SetBubbleText 更新当前气泡文本并重新计算底框。
func (s *Session) SetBubbleText(text string) error {
	_, b, err := s.currentBubble()
	if err != nil {
		return err
	}
	return s.fitter.Fit(b, text)
}

// SetBubbleColors 解析 6 位十六进制颜色，更新样式默认值并应用到当前气泡（若有）。
// 描边色与底色相同时不绘制描边。
func (s *Session) SetBubbleColors(fillHex, borderHex string) error {
	fill, err := scene.ParseHex(fillHex)
	if err != nil {
		return errs.Wrap(errs.CodeInvalidColor, err, "底色无效")
	}
	border, err := scene.ParseHex(borderHex)
	if err != nil {
		return errs.Wrap(errs.CodeInvalidColor, err, "描边色无效")
	}
	s.style.Fill, s.style.Border = fill, border
	if _, b, err := s.currentBubble(); err == nil {
		b.SetColors(fill, border)
		b.UpdateBounds()
	}
	return nil
}

// SetBubbleTextColor 更新文字颜色默认值并应用到当前气泡（若有）。
func (s *Session) SetBubbleTextColor(hex string) error {
	c, err := scene.ParseHex(hex)
	if err != nil {
		return errs.Wrap(errs.CodeInvalidColor, err, "文字颜色无效")
	}
	s.style.Text = c
	if _, b, err := s.currentBubble(); err == nil {
		b.Text.Color = c
	}
	return nil
}

// SetBubbleScale 设置当前气泡图层的等比缩放。
func (s *Session) SetBubbleScale(v float64) error {
	if v <= 0 {
		return errs.New(errs.CodeInvalidInput, "缩放必须为正数，当前为 %g", v)
	}
	l, _, err := s.currentBubble()
	if err != nil {
		return err
	}
	l.Transform.ScaleX, l.Transform.ScaleY = v, v
	return nil
}

// ResetBubbleScale 将当前气泡缩放恢复为 1。
func (s *Session) ResetBubbleScale() error { return s.SetBubbleScale(1) }

// SetBubbleFontSize 修改当前气泡字号并重新计算底框。
func (s *Session) SetBubbleFontSize(size float64) error {
	if size <= 0 {
		return errs.New(errs.CodeInvalidInput, "字号必须为正数，当前为 %g", size)
	}
	_, b, err := s.currentBubble()
	if err != nil {
		return err
	}
	b.Text.FontSize = size
	return s.fitter.Refit(b)
}

// SetBubbleFont 修改当前气泡字体并重新计算底框。
func (s *Session) SetBubbleFont(src string) error {
	_, b, err := s.currentBubble()
	if err != nil {
		return err
	}
	b.Text.Font = src
	return s.fitter.Refit(b)
}

// SetBubbleFontStyle 修改当前气泡字重/斜体（如 "bold"、"italic"）并重新计算底框。
func (s *Session) SetBubbleFontStyle(style string) error {
	_, b, err := s.currentBubble()
	if err != nil {
		return err
	}
	b.Text.FontStyle = style
	return s.fitter.Refit(b)
}

// SetTextScale 修改当前气泡文本块的缩放（不同于图层缩放），底框随之重新计算。
func (s *Session) SetTextScale(v float64) error {
	if v <= 0 {
		return errs.New(errs.CodeInvalidInput, "文本缩放必须为正数，当前为 %g", v)
	}
	_, b, err := s.currentBubble()
	if err != nil {
		return err
	}
	b.Text.Scale = v
	return s.fitter.Refit(b)
}

// BubbleText 返回气泡图层的文本；id 为 uuid.Nil 时使用当前气泡。
func (s *Session) BubbleText(id uuid.UUID) (string, error) {
	if id == uuid.Nil {
		_, b, err := s.currentBubble()
		if err != nil {
			return "", err
		}
		return b.Text.Content, nil
	}
	l, err := s.layer(id)
	if err != nil {
		return "", err
	}
	b, ok := l.Bubble()
	if !ok {
		return "", errs.New(errs.CodeInvalidInput, "图层 %s 不是气泡", l.Label())
	}
	return b.Text.Content, nil
}
