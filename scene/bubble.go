package scene

// TextLine 表示排版后的一行文本内容及其宽高（逻辑单位）。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// BubbleBackground 是气泡的第一个子元素：圆角矩形底。X/Y 为相对气泡原点的左上角。
type BubbleBackground struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Radius      float64 `json:"radius"`
	Fill        Color   `json:"fill"`
	FillAlpha   float64 `json:"fillAlpha"`
	Stroke      *Color  `json:"stroke,omitempty"` // nil 表示无描边
	StrokeWidth float64 `json:"strokeWidth"`
}

// BubbleText 是气泡的第二个子元素：居中对齐的文本块。
// MaxWidth 只是折行提示，不限制底框宽度。LineHeight 为字号倍数。
type BubbleText struct {
	Content    string     `json:"content"`
	Font       string     `json:"font"`
	FontStyle  string     `json:"fontStyle,omitempty"` // 如 bold、italic、semibold italic
	FontSize   float64    `json:"fontSize"`
	LineHeight float64    `json:"lineHeight"`
	MaxWidth   float64    `json:"maxWidth"`
	Color      Color      `json:"color"`
	Wrap       string     `json:"wrap,omitempty"`
	Scale      float64    `json:"scale"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Lines      []TextLine `json:"lines"`
}

// Bubble 由固定顺序的两个子元素组成：底框与文本。
type Bubble struct {
	Background BubbleBackground `json:"background"`
	Text       BubbleText       `json:"text"`

	bounds Rect
}

// SetColors 更新底色与描边；描边色等于底色时不绘制描边。
func (b *Bubble) SetColors(fill, border Color) {
	b.Background.Fill = fill
	if border == fill {
		b.Background.Stroke = nil
		return
	}
	c := border
	b.Background.Stroke = &c
}

// UpdateBounds 依据两个子元素重新计算气泡自身的包围盒（相对气泡原点）。
func (b *Bubble) UpdateBounds() {
	bg := Rect{X: b.Background.X, Y: b.Background.Y, Width: b.Background.Width, Height: b.Background.Height}
	if b.Background.Stroke != nil && b.Background.StrokeWidth > 0 {
		bg = bg.Expand(b.Background.StrokeWidth / 2)
	}
	text := Rect{X: b.Text.X, Y: b.Text.Y, Width: b.Text.Width, Height: b.Text.Height}
	b.bounds = bg.Union(text)
}

// Bounds 返回最近一次 UpdateBounds 的结果。
func (b *Bubble) Bounds() Rect { return b.bounds }

func (b *Bubble) Kind() Kind { return KindBubble }

func (b *Bubble) Size() (float64, float64) { return b.bounds.Width, b.bounds.Height }

func (b *Bubble) clone() Content {
	c := *b
	if b.Background.Stroke != nil {
		s := *b.Background.Stroke
		c.Background.Stroke = &s
	}
	c.Text.Lines = append([]TextLine(nil), b.Text.Lines...)
	return &c
}
