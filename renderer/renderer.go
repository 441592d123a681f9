package renderer

import (
	"image"

	"github.com/google/uuid"

	"github.com/ByLCY/stickerboard/scene"
)

// Frame 描述一次光栅化请求。Region 为屏幕坐标（经过 View 变换之后）中的裁剪矩形，
// 输出像素尺寸为 Region 尺寸 × Multiplier。Selected 非空时绘制该图层的选中框。
type Frame struct {
	Scene      *scene.Scene
	View       scene.View
	Region     scene.Rect
	Multiplier float64
	Selected   uuid.UUID
}

// Size 返回输出图像的像素尺寸。
func (f Frame) Size() (int, int) {
	return int(f.Region.Width*f.Multiplier + 0.5), int(f.Region.Height*f.Multiplier + 0.5)
}

// Renderer 将场景的一个区域光栅化为带 alpha 通道的图像。
// 未绘制任何内容的像素必须保持完全透明。
type Renderer interface {
	Render(f Frame) (image.Image, error)
}
