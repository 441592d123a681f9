package script

import (
	"github.com/google/uuid"

	"github.com/ByLCY/stickerboard/binding"
	"github.com/ByLCY/stickerboard/dsl"
	"github.com/ByLCY/stickerboard/errs"
)

// action 处理 actions 段中的一条操作。除视口与 reset 外，第一个参数都是图层名。
func (r *runner) action(cmd *dsl.Command) error {
	switch cmd.Name {
	case "zoom":
		return r.zoom(cmd)
	case "pan":
		args, err := positional(cmd, 2, 2)
		if err != nil {
			return err
		}
		dx, err := numberArg(cmd, args[0])
		if err != nil {
			return err
		}
		dy, err := numberArg(cmd, args[1])
		if err != nil {
			return err
		}
		r.s.Pan(dx, dy)
		return nil
	case "center":
		args, err := positional(cmd, 2, 2)
		if err != nil {
			return err
		}
		w, err := numberArg(cmd, args[0])
		if err != nil {
			return err
		}
		h, err := numberArg(cmd, args[1])
		if err != nil {
			return err
		}
		r.s.CenterArtboard(w, h)
		return nil
	case "deselect":
		if _, err := positional(cmd, 0, 0); err != nil {
			return err
		}
		r.s.ClearSelection()
		return nil
	case "reset":
		if _, err := positional(cmd, 0, 0); err != nil {
			return err
		}
		if err := r.s.Reset(); err != nil {
			return wrapAt(cmd, err)
		}
		r.handles = map[string]uuid.UUID{}
		r.bindBuiltins()
		return nil
	}

	if len(cmd.Args) == 0 {
		return errorf(cmd, errs.CodeInvalidInput, "%s 缺少图层名", cmd.Name)
	}
	id, err := r.lookup(cmd, cmd.Args[0].Value)
	if err != nil {
		return err
	}

	switch cmd.Name {
	case "select":
		if _, err := positional(cmd, 1, 1); err != nil {
			return err
		}
		return wrapAt(cmd, r.s.Select(id))
	case "clone":
		return r.clone(cmd, id)
	case "remove":
		if _, err := positional(cmd, 1, 1); err != nil {
			return err
		}
		if err := ignoreProtected(r.s.Delete(id)); err != nil {
			return wrapAt(cmd, err)
		}
		if _, ok := r.s.Scene().Find(id); !ok {
			r.unbind(id)
		}
		return nil
	case "reorder":
		v, err := r.number(cmd)
		if err != nil {
			return err
		}
		return wrapAt(cmd, ignoreProtected(r.s.Reorder(id, int(v))))
	case "opacity":
		v, err := r.number(cmd)
		if err != nil {
			return err
		}
		return wrapAt(cmd, r.s.SetOpacity(id, v))
	case "rotate":
		v, err := r.number(cmd)
		if err != nil {
			return err
		}
		return wrapAt(cmd, r.s.Rotate(id, v))
	case "move":
		args, err := positional(cmd, 3, 3)
		if err != nil {
			return err
		}
		x, err := numberArg(cmd, args[1])
		if err != nil {
			return err
		}
		y, err := numberArg(cmd, args[2])
		if err != nil {
			return err
		}
		return wrapAt(cmd, r.s.Move(id, x, y))
	case "scale":
		v, err := r.number(cmd)
		if err != nil {
			return err
		}
		if err := r.s.Select(id); err != nil {
			return wrapAt(cmd, err)
		}
		return wrapAt(cmd, r.s.SetBubbleScale(v))
	case "text":
		args, err := positional(cmd, 2, 2)
		if err != nil {
			return err
		}
		if err := r.s.Select(id); err != nil {
			return wrapAt(cmd, err)
		}
		return wrapAt(cmd, r.s.SetBubbleText(binding.Interpolate(args[1].Value, r.opts.Data)))
	case "color":
		args, err := positional(cmd, 2, 2)
		if err != nil {
			return err
		}
		return wrapAt(cmd, r.s.SetDecorationColor(id, args[1].Value))
	default:
		return errorf(cmd, errs.CodeInvalidInput, "未知的操作 %q", cmd.Name)
	}
}

// clone 执行 `clone <name> [as <new>]`。
func (r *runner) clone(cmd *dsl.Command, id uuid.UUID) error {
	args, err := positional(cmd, 1, 3)
	if err != nil {
		return err
	}
	var name string
	switch len(args) {
	case 1:
	case 3:
		if args[1].Value != "as" || args[2].Type != "Ident" {
			return errorf(cmd, errs.CodeInvalidInput, "clone 语法为 clone <name> [as <new>]")
		}
		name = args[2].Value
	default:
		return errorf(cmd, errs.CodeInvalidInput, "clone 语法为 clone <name> [as <new>]")
	}
	c, err := r.s.Clone(id)
	if err != nil {
		return wrapAt(cmd, ignoreProtected(err))
	}
	return r.bind(cmd, name, c.ID)
}

// zoom 执行 `zoom <z>` 或 `zoom <z> at <x> <y>`（以屏幕点为不动点）。
func (r *runner) zoom(cmd *dsl.Command) error {
	args, err := positional(cmd, 1, 4)
	if err != nil {
		return err
	}
	z, err := numberArg(cmd, args[0])
	if err != nil {
		return err
	}
	switch len(args) {
	case 1:
		r.s.SetZoom(z)
		return nil
	case 4:
		if args[1].Value != "at" {
			break
		}
		x, err := numberArg(cmd, args[2])
		if err != nil {
			return err
		}
		y, err := numberArg(cmd, args[3])
		if err != nil {
			return err
		}
		r.s.ZoomAt(x, y, z)
		return nil
	}
	return errorf(cmd, errs.CodeInvalidInput, "zoom 语法为 zoom <z> [at <x> <y>]")
}

// number 读取 `<cmd> <name> <value>` 中的数值。
func (r *runner) number(cmd *dsl.Command) (float64, error) {
	args, err := positional(cmd, 2, 2)
	if err != nil {
		return 0, err
	}
	return numberArg(cmd, args[1])
}
