package editor

import "github.com/ByLCY/stickerboard/scene"

// View 返回当前视口。
func (s *Session) View() scene.View { return s.view }

// SetView 直接替换视口，导出时用于规范化与恢复。
func (s *Session) SetView(v scene.View) { s.view = v }

func (s *Session) clampZoom(z float64) float64 {
	return min(max(z, s.cfg.Editor.MinZoom), s.cfg.Editor.MaxZoom)
}

// SetZoom 设置缩放倍数（截断到 [min_zoom, max_zoom]），平移量不变。
func (s *Session) SetZoom(z float64) float64 {
	s.view.Zoom = s.clampZoom(z)
	return s.view.Zoom
}

// ZoomAt 以屏幕点 (x, y) 为不动点缩放。
func (s *Session) ZoomAt(x, y, z float64) float64 {
	z = s.clampZoom(z)
	wx, wy := s.view.Invert(x, y)
	s.view = scene.View{Zoom: z, PanX: x - wx*z, PanY: y - wy*z}
	return z
}

// Pan 按屏幕像素平移视口。
func (s *Session) Pan(dx, dy float64) {
	s.view.Zoom = s.view.Scale()
	s.view.PanX += dx
	s.view.PanY += dy
}

// CenterArtboard 重置为 1:1 并使画板中心位于 viewportW×viewportH 视口的中心。
func (s *Session) CenterArtboard(viewportW, viewportH float64) {
	c := s.board.Center()
	s.view = scene.View{Zoom: 1, PanX: viewportW/2 - c.X, PanY: viewportH/2 - c.Y}
}

// ZoomPercent 返回用于显示的缩放百分比。
func (s *Session) ZoomPercent() int { return int(s.view.Scale()*100 + 0.5) }
