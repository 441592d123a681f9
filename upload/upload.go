// Package upload 在后台 goroutine 中解码上传的图片，并用递增序号识别最近一次上传，
// 使较早发起但较晚完成的解码结果可以被丢弃。
package upload

import (
	"context"
	"image"
	"io"
	"math"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/webp" // register WebP

	"github.com/ByLCY/stickerboard/errs"
)

// Loader 发起异步解码。零值可用。
type Loader struct {
	seq atomic.Uint64
}

// Pending 是一次进行中的解码。
type Pending struct {
	Seq uint64

	done chan struct{}
	img  image.Image
	err  error
}

// Start 为 r 分配新的序号并在 goroutine 中解码，EXIF 方向会被自动校正。
// 解码不可取消，ctx 仅用于取得 logger。
func (l *Loader) Start(ctx context.Context, r io.Reader) *Pending {
	p := &Pending{Seq: l.seq.Add(1), done: make(chan struct{})}
	logger := log.FromContext(ctx)
	if r == nil {
		p.err = errs.New(errs.CodeInvalidInput, "上传内容为空")
		close(p.done)
		return p
	}
	go func() {
		defer close(p.done)
		img, err := imaging.Decode(r, imaging.AutoOrientation(true))
		if err != nil {
			logger.Debug("upload decode failed", "seq", p.Seq, "err", err)
			p.err = errs.Wrap(errs.CodeDecodeFailed, err, "无法解码上传的图片")
			return
		}
		b := img.Bounds()
		if b.Dx() == 0 || b.Dy() == 0 {
			p.err = errs.New(errs.CodeDecodeFailed, "上传的图片尺寸为 0")
			return
		}
		logger.Debug("upload decoded", "seq", p.Seq, "width", b.Dx(), "height", b.Dy())
		p.img = img
	}()
	return p
}

// Latest 返回最近一次 Start 分配的序号，尚未上传时为 0。
func (l *Loader) Latest() uint64 { return l.seq.Load() }

// IsLatest 报告 p 是否为最近一次发起的上传。
func (l *Loader) IsLatest(p *Pending) bool { return p != nil && p.Seq == l.Latest() }

// Wait 阻塞直到解码完成或 ctx 结束。
func (p *Pending) Wait(ctx context.Context) (image.Image, error) {
	select {
	case <-p.done:
		return p.img, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done 在解码完成时关闭。
func (p *Pending) Done() <-chan struct{} { return p.done }

// FitScale 返回使 w×h 等比缩放后恰好落入 box×box 的缩放倍数。
func FitScale(w, h, box float64) float64 {
	if w <= 0 || h <= 0 || box <= 0 {
		return 1
	}
	return math.Min(box/w, box/h)
}
