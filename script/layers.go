package script

import (
	"github.com/google/uuid"

	"github.com/ByLCY/stickerboard/binding"
	"github.com/ByLCY/stickerboard/dsl"
	"github.com/ByLCY/stickerboard/errs"
	"github.com/ByLCY/stickerboard/layout"
	"github.com/ByLCY/stickerboard/scene"
)

// 所有图层声明都接受的摆放属性。
var placement = []string{"x", "y", "opacity", "rotate"}

// layer 处理 layers 段中的一条声明，例如 `bubble hello size 28 { "Hi" }`。
func (r *runner) layer(cmd *dsl.Command) error {
	a, err := parseAttrs(cmd)
	if err != nil {
		return err
	}
	var l *scene.Layer
	switch cmd.Name {
	case "bubble":
		l, err = r.addBubble(a)
	case "image":
		l, err = r.addImage(a)
	case "deco":
		l, err = r.addDecoration(a)
	case "emoji":
		l, err = r.addEmoji(a)
	case "shape":
		l, err = r.addShape(a)
	default:
		return errorf(cmd, errs.CodeInvalidInput, "未知的图层类型 %q", cmd.Name)
	}
	if err != nil {
		return wrapAt(cmd, err)
	}
	if err := r.place(a, l.ID); err != nil {
		return err
	}
	return r.bind(cmd, a.handle, l.ID)
}

func (r *runner) checkAttrs(a *args, own ...string) error {
	if k, bad := a.unknown(append(own, placement...)...); bad {
		return errorf(a.cmd, errs.CodeInvalidInput, "%s 不支持属性 %q", a.cmd.Name, k)
	}
	return nil
}

func (r *runner) addBubble(a *args) (*scene.Layer, error) {
	if err := r.checkAttrs(a, "text", "size", "font", "fill", "border", "color", "font-style", "scale", "text-scale"); err != nil {
		return nil, err
	}
	text := extractText(a.cmd.Block)
	if a.has("text") {
		text = a.str("text", "")
	}
	if a.has("fill") || a.has("border") {
		st := r.s.Style()
		if err := r.s.SetBubbleColors(a.str("fill", st.Fill.Hex()), a.str("border", st.Border.Hex())); err != nil {
			return nil, err
		}
	}
	if a.has("color") {
		if err := r.s.SetBubbleTextColor(a.str("color", "")); err != nil {
			return nil, err
		}
	}
	l, err := r.s.AddBubble(binding.Interpolate(text, r.opts.Data))
	if err != nil {
		return nil, err
	}
	if a.has("font") {
		if err := r.s.SetBubbleFont(a.str("font", "")); err != nil {
			return nil, err
		}
	}
	if a.has("font-style") {
		if err := r.s.SetBubbleFontStyle(a.str("font-style", "")); err != nil {
			return nil, err
		}
	}
	if a.has("size") {
		size, ok := layout.ParseLength(a.str("size", ""))
		if !ok {
			return nil, errorf(a.cmd, errs.CodeInvalidInput, "bubble: size 不是长度: %q", a.attrs["size"].Raw)
		}
		if err := r.s.SetBubbleFontSize(size.ToPx()); err != nil {
			return nil, err
		}
	}
	if v, ok, err := a.num("text-scale"); err != nil {
		return nil, err
	} else if ok {
		if err := r.s.SetTextScale(v); err != nil {
			return nil, err
		}
	}
	if v, ok, err := a.num("scale"); err != nil {
		return nil, err
	} else if ok {
		if err := r.s.SetBubbleScale(v); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (r *runner) addImage(a *args) (*scene.Layer, error) {
	if err := r.checkAttrs(a, "src"); err != nil {
		return nil, err
	}
	src := a.str("src", "")
	if src == "" {
		return nil, errs.New(errs.CodeInvalidInput, "image 缺少 src")
	}
	path := r.imagePath(binding.Interpolate(src, r.opts.Data))
	f, err := r.opts.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInvalidInput, err, "打开图片 %s 失败", path)
	}
	defer f.Close()
	return r.s.Upload(r.ctx, f)
}

func (r *runner) addDecoration(a *args) (*scene.Layer, error) {
	if err := r.checkAttrs(a, "type", "color"); err != nil {
		return nil, err
	}
	l, err := r.s.AddDecoration(a.str("type", ""))
	if err != nil {
		return nil, err
	}
	if a.has("color") {
		if err := r.s.SetDecorationColor(l.ID, a.str("color", "")); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (r *runner) addEmoji(a *args) (*scene.Layer, error) {
	if err := r.checkAttrs(a, "char"); err != nil {
		return nil, err
	}
	return r.s.AddEmoji(a.str("char", ""))
}

func (r *runner) addShape(a *args) (*scene.Layer, error) {
	if err := r.checkAttrs(a, "width", "height", "fill"); err != nil {
		return nil, err
	}
	w, _, err := a.num("width")
	if err != nil {
		return nil, err
	}
	h, _, err := a.num("height")
	if err != nil {
		return nil, err
	}
	return r.s.AddShape(a.handle, w, h, a.str("fill", "#ffffff"))
}

// place 应用 x、y、opacity 与 rotate；只给出 x 或 y 时另一轴保持原值。
func (r *runner) place(a *args, id uuid.UUID) error {
	l, ok := r.s.Scene().Find(id)
	if !ok {
		return errorf(a.cmd, errs.CodeNotFound, "图层 %s 不存在", id)
	}
	x, hasX, err := a.num("x")
	if err != nil {
		return err
	}
	y, hasY, err := a.num("y")
	if err != nil {
		return err
	}
	if hasX || hasY {
		if !hasX {
			x = l.Transform.X
		}
		if !hasY {
			y = l.Transform.Y
		}
		if err := r.s.Move(id, x, y); err != nil {
			return wrapAt(a.cmd, err)
		}
	}
	if v, ok, err := a.num("opacity"); err != nil {
		return err
	} else if ok {
		if err := r.s.SetOpacity(id, v); err != nil {
			return wrapAt(a.cmd, err)
		}
	}
	if v, ok, err := a.num("rotate"); err != nil {
		return err
	} else if ok {
		if err := r.s.Rotate(id, v); err != nil {
			return wrapAt(a.cmd, err)
		}
	}
	return nil
}
