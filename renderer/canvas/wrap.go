package canvasrenderer

import (
	"math"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/stickerboard/layout"
)

// 支持的折行模式。
const (
	WrapGrapheme = "grapheme" // 任意字形簇之间均可断行（默认）
	WrapWord     = "word"     // 优先在空白处断行，超长单词再按字形簇拆分
	WrapNone     = "nowrap"   // 仅按显式换行
)

func normalizeWrap(wrap string) string {
	switch strings.ToLower(strings.TrimSpace(wrap)) {
	case WrapWord, "normal", "break-word":
		return WrapWord
	case WrapNone, "none":
		return WrapNone
	default:
		return WrapGrapheme
	}
}

// measurer 返回字符串宽度（逻辑单位）。
type measurer func(s string) float64

// wrapLines 对内容做贪心折行。只有当追加下一个片段会使行宽严格大于 width 时才断行，
// 因此与限制恰好等宽的行不会多出空行。width <= 0 表示不限制。
func wrapLines(content string, width float64, face *canvas.FontFace, wrap string) []layout.TextLine {
	return greedyWrap(content, width, face.TextWidth, wrap)
}

func greedyWrap(content string, width float64, measure measurer, wrap string) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "")

	var lines []layout.TextLine
	for _, para := range strings.Split(content, "\n") {
		switch wrap {
		case WrapNone:
			lines = append(lines, layout.TextLine{Content: para, Width: measure(para)})
		case WrapWord:
			lines = append(lines, wrapWords(para, limit, measure)...)
		default:
			lines = append(lines, wrapGraphemes(para, limit, measure)...)
		}
	}
	return lines
}

// lineBuilder 累积当前行；宽度总是对整行重新测量，以包含字距调整。
type lineBuilder struct {
	measure measurer
	limit   float64
	trim    bool // word 模式下去掉行尾空白
	sb      strings.Builder
	width   float64
	lines   []layout.TextLine
}

func (b *lineBuilder) fits(piece string) bool {
	if b.sb.Len() == 0 {
		return true
	}
	return b.measure(b.sb.String()+piece) <= b.limit
}

func (b *lineBuilder) add(piece string) {
	b.sb.WriteString(piece)
	b.width = b.measure(b.sb.String())
}

func (b *lineBuilder) emit() {
	line := layout.TextLine{Content: b.sb.String(), Width: b.width}
	if b.trim {
		if trimmed := strings.TrimRightFunc(line.Content, unicode.IsSpace); trimmed != line.Content {
			line.Content, line.Width = trimmed, b.measure(trimmed)
		}
	}
	b.lines = append(b.lines, line)
	b.sb.Reset()
	b.width = 0
}

func (b *lineBuilder) empty() bool { return b.sb.Len() == 0 }

func wrapGraphemes(para string, limit float64, measure measurer) []layout.TextLine {
	b := &lineBuilder{measure: measure, limit: limit}
	if para == "" {
		b.emit()
		return b.lines
	}
	g := uniseg.NewGraphemes(para)
	for g.Next() {
		cluster := g.Str()
		if !b.fits(cluster) {
			b.emit()
		}
		b.add(cluster)
	}
	b.emit()
	return b.lines
}

func wrapWords(para string, limit float64, measure measurer) []layout.TextLine {
	b := &lineBuilder{measure: measure, limit: limit, trim: true}
	if para == "" {
		b.emit()
		return b.lines
	}
	for _, token := range tokenize(para) {
		if isBlank(token) && b.empty() {
			// 行首空白丢弃
			continue
		}
		if b.fits(token) {
			b.add(token)
			continue
		}
		if isBlank(token) {
			b.emit()
			continue
		}
		if !b.empty() {
			b.emit()
		}
		if measure(token) <= limit {
			b.add(token)
			continue
		}
		g := uniseg.NewGraphemes(token)
		for g.Next() {
			cluster := g.Str()
			if !b.fits(cluster) {
				b.emit()
			}
			b.add(cluster)
		}
	}
	if !b.empty() || len(b.lines) == 0 {
		b.emit()
	}
	return b.lines
}

// tokenize 将段落切分为交替的空白与非空白片段。
func tokenize(s string) []string {
	var tokens []string
	var sb strings.Builder
	lastWasSpace := false
	for _, r := range s {
		isSpace := unicode.IsSpace(r)
		if sb.Len() > 0 && lastWasSpace != isSpace {
			tokens = append(tokens, sb.String())
			sb.Reset()
		}
		lastWasSpace = isSpace
		sb.WriteRune(r)
	}
	if sb.Len() > 0 {
		tokens = append(tokens, sb.String())
	}
	return tokens
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
