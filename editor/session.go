// Package editor 持有一次编辑会话的全部状态：场景、当前气泡与选中图层的引用、视口、
// 样式默认值以及上传加载器。Session 不是并发安全的，所有调用应来自同一个 goroutine。
package editor

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ByLCY/stickerboard/compositor"
	"github.com/ByLCY/stickerboard/config"
	"github.com/ByLCY/stickerboard/errs"
	"github.com/ByLCY/stickerboard/layout"
	"github.com/ByLCY/stickerboard/renderer"
	"github.com/ByLCY/stickerboard/scene"
	"github.com/ByLCY/stickerboard/upload"
)

var _ compositor.Surface = (*Session)(nil)

// Options 配置新会话。Config 为 nil 时使用内置默认配置；Logger 为 nil 时使用 log.Default()。
type Options struct {
	Config     *config.Config
	Typesetter layout.Typesetter
	Logger     *log.Logger
}

// Style 是新建气泡时使用的颜色，对应调色面板的当前值。
type Style struct {
	Fill   scene.Color
	Border scene.Color
	Text   scene.Color
}

// Session 是编辑器的会话上下文。
type Session struct {
	cfg        *config.Config
	scene      *scene.Scene
	board      scene.Artboard
	view       scene.View
	typesetter layout.Typesetter
	fitter     *layout.Fitter
	logger     *log.Logger
	loader     upload.Loader
	style      Style
	guideColor scene.Color

	current  uuid.UUID // 当前气泡，仅按 ID 引用
	selected uuid.UUID
	applied  uint64 // 最近一次已放入场景的上传序号
}

// New 创建会话：铺设画板背景、遮罩与虚线边框，并添加初始气泡。
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Default(); err != nil {
			return nil, err
		}
	}
	if opts.Typesetter == nil {
		return nil, errs.New(errs.CodeInvalidInput, "editor: 缺少排版后端")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	style, err := parseStyle(cfg.Bubble)
	if err != nil {
		return nil, err
	}
	guide, err := scene.ParseHex(cfg.Editor.GuideColor)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInvalidColor, err, "editor.guide_color 无效")
	}

	s := &Session{
		cfg:        cfg,
		scene:      scene.New(),
		board:      scene.Artboard{X: cfg.Artboard.X, Y: cfg.Artboard.Y, Size: cfg.Artboard.Size},
		view:       scene.Identity,
		typesetter: opts.Typesetter,
		fitter:     layout.NewFitter(opts.Typesetter, cfg.Bubble.Padding),
		logger:     logger.WithPrefix("editor"),
		style:      style,
		guideColor: guide,
	}
	if err := s.setupBasics(); err != nil {
		return nil, err
	}
	if _, err := s.AddBubble(cfg.Bubble.DefaultText); err != nil {
		return nil, err
	}
	return s, nil
}

func parseStyle(b config.BubbleConfig) (Style, error) {
	var st Style
	var err error
	if st.Fill, err = scene.ParseHex(b.Fill); err != nil {
		return st, errs.Wrap(errs.CodeInvalidColor, err, "bubble.fill 无效")
	}
	if st.Border, err = scene.ParseHex(b.Border); err != nil {
		return st, errs.Wrap(errs.CodeInvalidColor, err, "bubble.border 无效")
	}
	if st.Text, err = scene.ParseHex(b.TextColor); err != nil {
		return st, errs.Wrap(errs.CodeInvalidColor, err, "bubble.text_color 无效")
	}
	return st, nil
}

// setupBasics 添加棋盘格背景、画板外四块遮罩与虚线边框。
func (s *Session) setupBasics() error {
	ed := s.cfg.Editor
	dark, err := scene.ParseHex(ed.CheckerDark)
	if err != nil {
		return errs.Wrap(errs.CodeInvalidColor, err, "editor.checker_dark 无效")
	}
	light, err := scene.ParseHex(ed.CheckerLight)
	if err != nil {
		return errs.Wrap(errs.CodeInvalidColor, err, "editor.checker_light 无效")
	}

	b := s.board
	s.scene.Add(scene.NewLayer("artboard_bg", &scene.Background{
		Width: b.Size, Height: b.Size, CheckerSize: ed.CheckerSize, Dark: dark, Light: light,
	}, scene.At(b.X, b.Y)))

	ext := s.cfg.Artboard.WorkspaceExtent
	shroud := func(x, y, w, h float64) *scene.Layer {
		fill := scene.Black
		return scene.NewLayer("shroud_item", &scene.Guide{
			Style: scene.GuideShroud, Width: w, Height: h, Fill: &fill, FillAlpha: ed.ShroudAlpha,
		}, scene.At(x, y))
	}
	s.scene.Add(shroud(b.X-ext, b.Y-ext, ext*2+b.Size, ext))
	s.scene.Add(shroud(b.X-ext, b.Y+b.Size, ext*2+b.Size, ext))
	s.scene.Add(shroud(b.X-ext, b.Y, ext, b.Size))
	s.scene.Add(shroud(b.X+b.Size, b.Y, ext, b.Size))

	stroke := s.guideColor
	s.scene.Add(scene.NewLayer("guide_border", &scene.Guide{
		Style: scene.GuideBorder, Width: b.Size, Height: b.Size,
		Stroke: &stroke, StrokeWidth: 2, Dashes: []float64{10, 5},
	}, scene.At(b.X, b.Y)))
	return nil
}

// Scene 返回会话持有的场景。
func (s *Session) Scene() *scene.Scene { return s.scene }

// Artboard 返回画板区域。
func (s *Session) Artboard() scene.Artboard { return s.board }

// Config 返回会话使用的配置。
func (s *Session) Config() *config.Config { return s.cfg }

// Style 返回新建气泡使用的颜色。
func (s *Session) Style() Style { return s.style }

// Selection 返回当前选中图层的 ID，未选中时为 uuid.Nil。
func (s *Session) Selection() uuid.UUID { return s.selected }

// Selected 返回当前选中的图层。
func (s *Session) Selected() (*scene.Layer, bool) {
	if s.selected == uuid.Nil {
		return nil, false
	}
	return s.scene.Find(s.selected)
}

// CurrentBubble 返回当前气泡图层。
func (s *Session) CurrentBubble() (*scene.Layer, bool) {
	if s.current == uuid.Nil {
		return nil, false
	}
	return s.scene.Find(s.current)
}

// Select 选中内容图层；选中气泡时它成为当前气泡，选中其他图层时当前气泡被解除。
func (s *Session) Select(id uuid.UUID) error {
	l, ok := s.scene.Find(id)
	if !ok {
		return errs.New(errs.CodeNotFound, "图层 %s 不存在", id)
	}
	if l.Kind().Protected() {
		return errs.New(errs.CodeProtectedLayer, "辅助图层 %s 不可选中", l.Name)
	}
	s.selected = id
	if l.Kind() == scene.KindBubble {
		s.current = id
	} else {
		s.current = uuid.Nil
	}
	return nil
}

// SelectAt 选中屏幕坐标 (x, y) 处最上层的可见内容图层；没有命中时清除选中。
func (s *Session) SelectAt(x, y float64) (*scene.Layer, bool) {
	wx, wy := s.view.Invert(x, y)
	l, ok := s.scene.HitTest(wx, wy)
	if !ok {
		s.ClearSelection()
		return nil, false
	}
	_ = s.Select(l.ID)
	return l, true
}

// ClearSelection 取消选中，不影响当前气泡。
func (s *Session) ClearSelection() { s.selected = uuid.Nil }

// Clone 复制内容图层并选中副本。辅助图层的复制请求被拒绝并记录日志，场景保持不变。
func (s *Session) Clone(id uuid.UUID) (*scene.Layer, error) {
	c, err := s.scene.Clone(id, s.cfg.Editor.CloneOffset)
	if err != nil {
		if errs.Is(err, errs.CodeProtectedLayer) {
			s.logger.Warn("clone ignored", "layer", id, "reason", errs.UserMessage(err))
		}
		return nil, err
	}
	s.logger.Debug("layer cloned", "source", id, "clone", c.ID, "label", c.Label())
	_ = s.Select(c.ID)
	return c, nil
}

// Delete 删除内容图层；被删除的图层若为当前气泡或选中图层，对应引用被清除。
func (s *Session) Delete(id uuid.UUID) error {
	l, err := s.scene.Remove(id)
	if err != nil {
		if errs.Is(err, errs.CodeProtectedLayer) {
			s.logger.Warn("delete ignored", "layer", id, "reason", errs.UserMessage(err))
		}
		return err
	}
	if s.current == id {
		s.current = uuid.Nil
	}
	if s.selected == id {
		s.selected = uuid.Nil
	}
	s.logger.Debug("layer removed", "layer", id, "kind", l.Kind())
	return nil
}

// Reorder 将图层移动到场景中的 index 位置（底→顶计数，含辅助层）。
func (s *Session) Reorder(id uuid.UUID, index int) error {
	if err := s.scene.Reorder(id, index); err != nil {
		if errs.Is(err, errs.CodeProtectedLayer) {
			s.logger.Warn("reorder ignored", "layer", id, "reason", errs.UserMessage(err))
		}
		return err
	}
	s.logger.Debug("layer reordered", "layer", id, "index", s.scene.IndexOf(id))
	return nil
}

// Reset 清空画布，重新铺设辅助层并添加初始气泡。
func (s *Session) Reset() error {
	s.scene.Clear()
	s.current, s.selected = uuid.Nil, uuid.Nil
	if err := s.setupBasics(); err != nil {
		return err
	}
	_, err := s.AddBubble(s.cfg.Bubble.DefaultText)
	s.logger.Debug("canvas reset")
	return err
}

// Export 以配置的文件名模板导出画板区域。
func (s *Session) Export(r renderer.Renderer, size int) (*compositor.Result, error) {
	res, err := compositor.ExportWithOptions(s, r, size, compositor.Options{Filename: s.cfg.Export.Filename})
	if err != nil {
		s.logger.Error("export failed", "size", size, "err", err)
		return nil, err
	}
	s.logger.Debug("exported", "file", res.Filename, "bytes", len(res.Data))
	return res, nil
}

// layer 查找可编辑的内容图层；id 为 uuid.Nil 时使用当前选中图层。
func (s *Session) layer(id uuid.UUID) (*scene.Layer, error) {
	if id == uuid.Nil {
		id = s.selected
	}
	if id == uuid.Nil {
		return nil, errs.New(errs.CodeNotFound, "没有选中的图层")
	}
	l, ok := s.scene.Find(id)
	if !ok {
		return nil, errs.New(errs.CodeNotFound, "图层 %s 不存在", id)
	}
	if l.Kind().Protected() {
		return nil, errs.New(errs.CodeProtectedLayer, "辅助图层 %s 不可编辑", l.Name)
	}
	return l, nil
}

// SetOpacity 设置图层不透明度，取值截断到 [0, 1]。
func (s *Session) SetOpacity(id uuid.UUID, v float64) error {
	l, err := s.layer(id)
	if err != nil {
		return err
	}
	l.Opacity = min(max(v, 0), 1)
	return nil
}

// Rotate 设置图层绝对旋转角度（度，顺时针）。
func (s *Session) Rotate(id uuid.UUID, deg float64) error {
	l, err := s.layer(id)
	if err != nil {
		return err
	}
	l.Transform.Rotation = deg
	return nil
}

// ResetRotation 将图层旋转归零。
func (s *Session) ResetRotation(id uuid.UUID) error { return s.Rotate(id, 0) }

// Move 将图层原点移动到工作区坐标 (x, y)。
func (s *Session) Move(id uuid.UUID, x, y float64) error {
	l, err := s.layer(id)
	if err != nil {
		return err
	}
	l.Transform.X, l.Transform.Y = x, y
	return nil
}

// add 将图层加入场景并选中。
func (s *Session) add(l *scene.Layer) {
	s.scene.Add(l)
	_ = s.Select(l.ID)
	s.logger.Debug("layer added", "kind", l.Kind(), "label", l.Label(), "id", l.ID)
}
