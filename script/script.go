// Package script 把解析后的贴纸脚本逐条作用到编辑会话上，相当于按顺序回放一次界面操作。
//
//	sticker Greeting v1 {
//	  board   { fill: #222222 }
//	  layers  { bubble hello { "Hi ${user.name}" } }
//	  actions { clone hello as copy; move copy 256 120 }
//	  export 512 1024
//	}
package script

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ByLCY/stickerboard/dsl"
	"github.com/ByLCY/stickerboard/editor"
	"github.com/ByLCY/stickerboard/errs"
)

// 预置的图层名。
const (
	HandleInitial    = "initial" // 会话创建时的默认气泡
	HandleBackground = "background"
	HandleGuide      = "guide"
)

// Options 控制脚本执行。
type Options struct {
	// Data 是 ${path} 占位符的数据源，通常来自 json.Unmarshal。
	Data any
	// BaseDir 是 image src 相对路径的基准目录。
	BaseDir string
	// Open 打开图片文件，为 nil 时使用 os.Open。
	Open func(path string) (io.ReadCloser, error)
}

// Result 汇总执行结果。
type Result struct {
	Name    string
	Version string
	Meta    map[string][]string
	Handles map[string]uuid.UUID
	Exports []int
}

type runner struct {
	ctx     context.Context
	s       *editor.Session
	opts    Options
	logger  *log.Logger
	handles map[string]uuid.UUID
}

// Apply 依次执行 board、layers、actions 段落并收集 export 尺寸。
// 针对辅助图层的结构操作（复制、删除、调整层级）会被忽略并记录日志，其余错误中止执行。
func Apply(ctx context.Context, doc *dsl.Document, s *editor.Session, opts Options) (*Result, error) {
	if doc == nil {
		return nil, errs.New(errs.CodeInvalidInput, "脚本为空")
	}
	if s == nil {
		return nil, errs.New(errs.CodeInvalidInput, "会话为空")
	}
	if opts.Open == nil {
		opts.Open = func(path string) (io.ReadCloser, error) { return os.Open(path) }
	}
	r := &runner{
		ctx:     ctx,
		s:       s,
		opts:    opts,
		logger:  log.FromContext(ctx),
		handles: map[string]uuid.UUID{},
	}
	r.bindBuiltins()

	res := &Result{Name: doc.Name, Version: doc.Version, Meta: map[string][]string{}}
	for _, sec := range doc.Sections {
		var err error
		switch {
		case sec.Meta != nil:
			collectMeta(sec.Meta.Block, res.Meta)
		case sec.Board != nil:
			err = r.board(sec.Board.Block)
		case sec.Layers != nil:
			err = r.block(sec.Layers.Block, r.layer)
		case sec.Actions != nil:
			err = r.block(sec.Actions.Block, r.action)
		case sec.Export != nil:
			var sizes []int
			sizes, err = r.exports(sec.Export)
			res.Exports = append(res.Exports, sizes...)
		}
		if err != nil {
			return nil, err
		}
	}
	res.Handles = r.handles
	return res, nil
}

// bindBuiltins 登记初始气泡与两个辅助图层的名字。
func (r *runner) bindBuiltins() {
	if l, ok := r.s.CurrentBubble(); ok {
		r.handles[HandleInitial] = l.ID
	}
	for _, l := range r.s.Scene().Overlays() {
		switch l.Name {
		case "artboard_bg":
			r.handles[HandleBackground] = l.ID
		case "guide_border":
			r.handles[HandleGuide] = l.ID
		}
	}
}

func (r *runner) block(b *dsl.Block, fn func(*dsl.Command) error) error {
	if b == nil {
		return nil
	}
	for _, stmt := range b.Statements {
		if stmt.Command == nil {
			continue
		}
		if err := r.ctx.Err(); err != nil {
			return err
		}
		r.logger.Debug("script", "cmd", stmt.Command.Name, "pos", stmt.Command.Pos.String())
		if err := fn(stmt.Command); err != nil {
			return err
		}
	}
	return nil
}

// lookup 把图层名解析为 ID。
func (r *runner) lookup(cmd *dsl.Command, name string) (uuid.UUID, error) {
	id, ok := r.handles[name]
	if !ok {
		return uuid.Nil, errorf(cmd, errs.CodeNotFound, "%s: 未定义的图层 %q", cmd.Name, name)
	}
	return id, nil
}

func (r *runner) bind(cmd *dsl.Command, name string, id uuid.UUID) error {
	if name == "" {
		return nil
	}
	if _, dup := r.handles[name]; dup {
		return errorf(cmd, errs.CodeInvalidInput, "%s: 图层名 %q 已被使用", cmd.Name, name)
	}
	r.handles[name] = id
	return nil
}

func (r *runner) unbind(id uuid.UUID) {
	for name, v := range r.handles {
		if v == id {
			delete(r.handles, name)
		}
	}
}

// board 处理样式默认值：fill、border、text 颜色与 initial 开关。
func (r *runner) board(b *dsl.Block) error {
	if b == nil {
		return nil
	}
	st := r.s.Style()
	fill, border := st.Fill.Hex(), st.Border.Hex()
	colors := false
	for _, stmt := range b.Statements {
		a := stmt.Assignment
		if a == nil {
			continue
		}
		switch a.Key {
		case "fill":
			fill, colors = valueToString(a.Value), true
		case "border":
			border, colors = valueToString(a.Value), true
		case "text":
			if err := r.s.SetBubbleTextColor(valueToString(a.Value)); err != nil {
				return err
			}
		case "initial":
			keep, ok := parseBool(a.Value)
			if !ok {
				return errs.New(errs.CodeInvalidInput, "board.initial 必须为布尔值")
			}
			if !keep {
				if err := r.dropInitial(); err != nil {
					return err
				}
			}
		default:
			return errs.New(errs.CodeInvalidInput, "board 不支持属性 %q", a.Key)
		}
	}
	if colors {
		return r.s.SetBubbleColors(fill, border)
	}
	return nil
}

func (r *runner) dropInitial() error {
	id, ok := r.handles[HandleInitial]
	if !ok {
		return nil
	}
	if err := r.s.Delete(id); err != nil && !errs.Is(err, errs.CodeNotFound) {
		return err
	}
	r.unbind(id)
	return nil
}

func (r *runner) exports(sec *dsl.ExportSection) ([]int, error) {
	cfg := r.s.Config()
	out := make([]int, 0, len(sec.Sizes))
	for _, raw := range sec.Sizes {
		v, err := parseNumber(raw)
		if err != nil || v != float64(int(v)) {
			return nil, errs.New(errs.CodeInvalidSize, "%s: 导出尺寸 %q 必须是整数", sec.Pos, raw)
		}
		size := int(v)
		if !cfg.AllowsSize(size) {
			return nil, errs.New(errs.CodeInvalidSize, "%s: 导出尺寸 %d 不在允许列表 %v 中", sec.Pos, size, cfg.Export.Sizes)
		}
		out = append(out, size)
	}
	return out, nil
}

func collectMeta(b *dsl.Block, out map[string][]string) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		if a := stmt.Assignment; a != nil {
			out[a.Key] = valueToStringSlice(a.Value)
		}
	}
}

func (r *runner) imagePath(src string) string {
	if filepath.IsAbs(src) || r.opts.BaseDir == "" {
		return src
	}
	return filepath.Join(r.opts.BaseDir, src)
}

// ignoreProtected 吞掉针对辅助图层的结构操作错误：会话已记录日志且场景未变。
func ignoreProtected(err error) error {
	if errs.Is(err, errs.CodeProtectedLayer) {
		return nil
	}
	return err
}
