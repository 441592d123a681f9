package scene

// View 是工作区到屏幕的视口变换：screen = world*Zoom + Pan。
type View struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
}

// Identity 是 1:1、无平移的视口。
var Identity = View{Zoom: 1}

// Apply 将工作区坐标映射为屏幕坐标。
func (v View) Apply(x, y float64) (float64, float64) {
	z := v.zoom()
	return x*z + v.PanX, y*z + v.PanY
}

// Invert 将屏幕坐标映射回工作区坐标。
func (v View) Invert(x, y float64) (float64, float64) {
	z := v.zoom()
	return (x - v.PanX) / z, (y - v.PanY) / z
}

// IsIdentity 报告视口是否为 1:1 且无平移。
func (v View) IsIdentity() bool { return v.zoom() == 1 && v.PanX == 0 && v.PanY == 0 }

// zoom 把零值视为 1，使零值 View 等同于 Identity。
func (v View) zoom() float64 {
	if v.Zoom == 0 {
		return 1
	}
	return v.Zoom
}

// Scale 返回实际生效的缩放倍数。
func (v View) Scale() float64 { return v.zoom() }
