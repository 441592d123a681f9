// Package compositor 导出画板区域：隐藏辅助层、规范化视口、按目标尺寸光栅化为带 alpha 的 PNG，
// 并在任何退出路径上恢复场景原状。
package compositor

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/ByLCY/stickerboard/errs"
	"github.com/ByLCY/stickerboard/renderer"
	"github.com/ByLCY/stickerboard/scene"
)

// DefaultFilename 是导出文件名模板，%d 替换为目标像素尺寸。
const DefaultFilename = "vrc_sticker_%d.png"

// Surface 是导出所需的编辑会话能力。
type Surface interface {
	Scene() *scene.Scene
	View() scene.View
	SetView(v scene.View)
	Selection() uuid.UUID
	ClearSelection()
	Artboard() scene.Artboard
}

// Result 是一次导出的产物。
type Result struct {
	Data     []byte
	Width    int
	Height   int
	Filename string
}

// Options 控制导出文件名。
type Options struct {
	Filename string
}

// Export 以默认文件名模板导出。
func Export(s Surface, r renderer.Renderer, target int) (*Result, error) {
	return ExportWithOptions(s, r, target, Options{})
}

// ExportWithOptions 将画板区域导出为 target×target 的 PNG。
// 视口与辅助层可见性在返回前恢复，渲染器 panic 时同样恢复后继续向上抛出。
func ExportWithOptions(s Surface, r renderer.Renderer, target int, opts Options) (res *Result, err error) {
	if target <= 0 {
		return nil, errs.New(errs.CodeInvalidSize, "导出尺寸必须为正数，当前为 %d", target)
	}
	if s == nil || r == nil {
		return nil, errs.New(errs.CodeInvalidInput, "导出缺少场景或渲染器")
	}
	board := s.Artboard()
	if board.Size <= 0 {
		return nil, errs.New(errs.CodeInvalidSize, "画板尺寸无效: %g", board.Size)
	}

	s.ClearSelection()
	prevView := s.View()
	s.SetView(scene.Identity)
	sc := s.Scene()
	prevVisible := sc.SetOverlaysVisible(false)
	defer func() {
		// 先恢复辅助层，再恢复视口
		sc.RestoreVisibility(prevVisible)
		s.SetView(prevView)
	}()

	frame := renderer.Frame{
		Scene:      sc,
		View:       scene.Identity,
		Region:     board.Region(),
		Multiplier: float64(target) / board.Size,
		Selected:   s.Selection(),
	}
	img, err := r.Render(frame)
	if err != nil {
		return nil, errs.Wrap(errs.CodeCaptureFailed, err, "导出 %dpx 失败", target)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errs.Wrap(errs.CodeCaptureFailed, err, "PNG 编码失败")
	}
	b := img.Bounds()
	return &Result{
		Data:     buf.Bytes(),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Filename: Filename(opts.Filename, target),
	}, nil
}

// Filename 依据模板生成导出文件名；模板为空时使用 DefaultFilename。
func Filename(pattern string, size int) string {
	if pattern == "" {
		pattern = DefaultFilename
	}
	return fmt.Sprintf(pattern, size)
}
