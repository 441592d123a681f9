package editor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"github.com/ByLCY/stickerboard/scene"
)

// bubblePreview 是图层列表中气泡文本的最大字形簇数。
const bubblePreview = 8

// LayerEntry 是图层列表中的一行。
type LayerEntry struct {
	ID     uuid.UUID  `json:"id"`
	Index  int        `json:"index"` // 场景中的真实下标（底→顶，含辅助层）
	Kind   scene.Kind `json:"kind"`
	Label  string     `json:"label"`
	Active bool       `json:"active"`
	Fill   string     `json:"fill,omitempty"` // 仅装饰图层，可用于颜色选择器
}

// LayerList 返回内容图层列表，顶层在前，不含辅助层。
func (s *Session) LayerList() []LayerEntry {
	layers := s.scene.Layers()
	var out []LayerEntry
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		if l.Kind().Protected() {
			continue
		}
		e := LayerEntry{ID: l.ID, Index: i, Kind: l.Kind(), Label: DisplayLabel(l), Active: l.ID == s.selected}
		if d, ok := l.Content.(*scene.Decoration); ok {
			e.Fill = d.Fill.Hex()
		}
		out = append(out, e)
	}
	return out
}

// DisplayLabel 生成图层列表显示名，例如 "💬 Hello!"、"★ Star (2)"。
func DisplayLabel(l *scene.Layer) string {
	var name string
	switch c := l.Content.(type) {
	case *scene.Bubble:
		name = "💬 " + truncateGraphemes(strings.ReplaceAll(c.Text.Content, "\n", " "), bubblePreview)
	case *scene.Decoration:
		switch c.Type {
		case scene.DecoStar:
			name = "★ Star"
		case scene.DecoHeart:
			name = "♥ Heart"
		default:
			name = "✨ Sparkle"
		}
	case *scene.Emoji:
		name = "😀 " + c.Char
	case *scene.Image:
		name = "🖼 Image"
	default:
		name = l.Name
		if name == "" {
			name = "Object"
		}
	}
	if l.Copy >= 2 {
		name = fmt.Sprintf("%s (%d)", name, l.Copy)
	}
	return name
}

// truncateGraphemes 截取前 n 个字形簇，超出时追加 "..."，不会切断组合字符或 emoji 序列。
func truncateGraphemes(s string, n int) string {
	var sb strings.Builder
	g := uniseg.NewGraphemes(s)
	count := 0
	for g.Next() {
		if count == n {
			return sb.String() + "..."
		}
		sb.WriteString(g.Str())
		count++
	}
	return sb.String()
}
