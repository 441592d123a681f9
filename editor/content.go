package editor

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/ByLCY/stickerboard/errs"
	"github.com/ByLCY/stickerboard/layout"
	"github.com/ByLCY/stickerboard/scene"
	"github.com/ByLCY/stickerboard/upload"
)

var decorationNames = map[scene.DecorationType]string{
	scene.DecoStar:    "Star",
	scene.DecoHeart:   "Heart",
	scene.DecoSparkle: "Sparkle",
}

// AddDecoration 在画板中心添加内置装饰图形，kind 为 star、heart 或 sparkle。
func (s *Session) AddDecoration(kind string) (*scene.Layer, error) {
	t := scene.DecorationType(strings.ToLower(strings.TrimSpace(kind)))
	d, ok := scene.NewDecoration(t)
	if !ok {
		return nil, errs.New(errs.CodeInvalidInput, "未知的装饰类型 %q", kind)
	}
	c := s.board.Center()
	tr := scene.At(c.X, c.Y)
	if t == scene.DecoHeart {
		tr.ScaleX, tr.ScaleY = scene.HeartScale, scene.HeartScale
	}
	l := scene.NewLayer(decorationNames[t], d, tr)
	s.add(l)
	return l, nil
}

// SetDecorationColor 修改装饰图形的填充色。
func (s *Session) SetDecorationColor(id uuid.UUID, hex string) error {
	l, err := s.layer(id)
	if err != nil {
		return err
	}
	d, ok := l.Content.(*scene.Decoration)
	if !ok {
		return errs.New(errs.CodeInvalidInput, "图层 %s 不是装饰", l.Label())
	}
	c, err := scene.ParseHex(hex)
	if err != nil {
		return errs.Wrap(errs.CodeInvalidColor, err, "装饰颜色无效")
	}
	d.Fill = c
	return nil
}

// AddEmoji 在画板中心添加单个字形图层，尺寸由排版后端测量。
func (s *Session) AddEmoji(char string) (*scene.Layer, error) {
	if strings.TrimSpace(char) == "" {
		return nil, errs.New(errs.CodeInvalidInput, "emoji 不能为空")
	}
	size := s.cfg.Editor.EmojiSize
	font := s.cfg.Font.Src
	lines, err := s.typesetter.LayoutLines(char, 0, layout.FontResource{Src: font}, size, size, "nowrap")
	if err != nil {
		return nil, errs.Wrap(errs.CodeFontUnavailable, err, "测量 emoji 失败")
	}
	e := &scene.Emoji{
		Char:     char,
		FontSize: size,
		Font:     font,
		Width:    layout.MaxLineWidth(lines),
		Height:   layout.BlockHeight(lines),
	}
	c := s.board.Center()
	l := scene.NewLayer(char, e, scene.At(c.X, c.Y))
	s.add(l)
	return l, nil
}

// AddShape 添加通用矩形图层。
func (s *Session) AddShape(name string, w, h float64, hex string) (*scene.Layer, error) {
	if w <= 0 || h <= 0 {
		return nil, errs.New(errs.CodeInvalidSize, "矩形尺寸无效: %gx%g", w, h)
	}
	fill, err := scene.ParseHex(hex)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInvalidColor, err, "矩形颜色无效")
	}
	if name == "" {
		name = "Object"
	}
	c := s.board.Center()
	l := scene.NewLayer(name, &scene.Shape{Width: w, Height: h, Fill: fill}, scene.At(c.X, c.Y))
	s.add(l)
	return l, nil
}

// BeginUpload 开始异步解码，返回的 Pending 须交给 FinishUpload。
func (s *Session) BeginUpload(ctx context.Context, r io.Reader) *upload.Pending {
	p := s.loader.Start(ctx, r)
	s.logger.Debug("upload started", "seq", p.Seq)
	return p
}

// FinishUpload 等待解码完成并把图片放到画板中心，等比缩放至 fit_box 以内。
// 只有最近一次发起的上传会被应用，且只应用一次：过期或已应用过的结果返回 STALE_UPLOAD，
// 解码失败返回原错误，这些情况下场景均保持不变。
func (s *Session) FinishUpload(ctx context.Context, p *upload.Pending) (*scene.Layer, error) {
	if p == nil {
		return nil, errs.New(errs.CodeInvalidInput, "上传为空")
	}
	img, err := p.Wait(ctx)
	if !s.loader.IsLatest(p) {
		s.logger.Debug("stale upload dropped", "seq", p.Seq, "latest", s.loader.Latest())
		return nil, errs.New(errs.CodeStaleUpload, "上传 #%d 已被 #%d 取代", p.Seq, s.loader.Latest())
	}
	if p.Seq == s.applied {
		return nil, errs.New(errs.CodeStaleUpload, "上传 #%d 已应用", p.Seq)
	}
	if err != nil {
		s.logger.Warn("upload aborted", "seq", p.Seq, "err", err)
		return nil, err
	}

	if s.cfg.Upload.SingleAvatar {
		for _, l := range s.scene.Content() {
			if l.Kind() == scene.KindImage {
				_ = s.Delete(l.ID)
			}
		}
	}

	content := scene.NewImage(img)
	scale := upload.FitScale(content.Width, content.Height, s.cfg.Upload.FitBox)
	c := s.board.Center()
	tr := scene.At(c.X, c.Y)
	tr.ScaleX, tr.ScaleY = scale, scale
	l := scene.NewLayer("Image", content, tr)
	s.add(l)
	s.applied = p.Seq
	return l, nil
}

// Upload 同步完成一次上传。
func (s *Session) Upload(ctx context.Context, r io.Reader) (*scene.Layer, error) {
	return s.FinishUpload(ctx, s.BeginUpload(ctx, r))
}
