package layout

import "github.com/ByLCY/stickerboard/scene"

// TextLine 表示排版后的一行文本内容及其宽高，与气泡中保存的行一致。
type TextLine = scene.TextLine

// FontResource 描述字体资源。src 可以是文件路径、内置 embed:<name>，
// 或渲染器注入的 built-in:<name>；style 为空表示常规字重。
type FontResource struct {
	Src   string `json:"src"`
	Style string `json:"style"`
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// 约定：width/fontSize/lineHeight 均为逻辑单位；width<=0 表示不限宽。
// 空文本也必须返回一行（Content 为空），其 Height 即单行高度。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}

// BlockHeight 返回多行文本块的总高度：Σ(GapBefore + Height)。
// 渲染器按同一规则逐行推进基线，因此底框永远不会裁掉下行部。
func BlockHeight(lines []TextLine) float64 {
	total := 0.0
	for _, ln := range lines {
		total += ln.GapBefore + ln.Height
	}
	return total
}

// MaxLineWidth 返回各行宽度的最大值。
func MaxLineWidth(lines []TextLine) float64 {
	w := 0.0
	for _, ln := range lines {
		w = max(w, ln.Width)
	}
	return w
}
