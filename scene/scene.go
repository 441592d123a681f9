// Package scene 保存编辑器的图层列表，并在每次结构变更后恢复 z 序不变式：
// 背景层始终在最底部，辅助层始终在最顶部，内容层之间的相对顺序保持不变。
package scene

import (
	"slices"

	"github.com/google/uuid"

	"github.com/ByLCY/stickerboard/errs"
)

// Scene 是有序图层列表，下标 0 为最底层。
// 所有结构变更（Add/Clone/Remove/Reorder/Clear）都在返回前调用 normalizeZOrder。
type Scene struct {
	layers []*Layer
}

// New 返回空场景。
func New() *Scene { return &Scene{} }

// Len 返回图层总数（含辅助层）。
func (s *Scene) Len() int { return len(s.layers) }

// Layers 返回全部图层的副本切片（底→顶）。
func (s *Scene) Layers() []*Layer { return slices.Clone(s.layers) }

// Content 返回所有非辅助图层（底→顶）。
func (s *Scene) Content() []*Layer {
	out := make([]*Layer, 0, len(s.layers))
	for _, l := range s.layers {
		if !l.Kind().Protected() {
			out = append(out, l)
		}
	}
	return out
}

// Overlays 返回全部背景层与辅助层。
func (s *Scene) Overlays() []*Layer {
	var out []*Layer
	for _, l := range s.layers {
		if l.Kind().Protected() {
			out = append(out, l)
		}
	}
	return out
}

// Find 按 ID 查找图层。
func (s *Scene) Find(id uuid.UUID) (*Layer, bool) {
	if i := s.IndexOf(id); i >= 0 {
		return s.layers[i], true
	}
	return nil, false
}

// IndexOf 返回图层下标，不存在时为 -1。
func (s *Scene) IndexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.layers, func(l *Layer) bool { return l.ID == id })
}

// Add 将图层追加到顶部，随后把辅助层重新提到最上方。
func (s *Scene) Add(l *Layer) {
	s.layers = append(s.layers, l)
	s.normalizeZOrder()
}

// Clone 复制 id 对应的图层，偏移 (offset, offset) 后插入到源图层正上方。
// 背景层与辅助层不可复制，返回 PROTECTED_LAYER 且场景保持不变。
func (s *Scene) Clone(id uuid.UUID, offset float64) (*Layer, error) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return nil, errs.New(errs.CodeNotFound, "图层 %s 不存在", id)
	}
	src := s.layers[idx]
	if src.Kind().Protected() {
		return nil, errs.New(errs.CodeProtectedLayer, "辅助图层 %q 不可复制", src.Name)
	}
	c := src.Clone()
	c.Transform.X += offset
	c.Transform.Y += offset
	c.Copy = max(src.Copy, 1) + 1
	s.layers = slices.Insert(s.layers, idx+1, c)
	s.normalizeZOrder()
	return c, nil
}

// Remove 删除图层并返回它。辅助图层不可删除。
func (s *Scene) Remove(id uuid.UUID) (*Layer, error) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return nil, errs.New(errs.CodeNotFound, "图层 %s 不存在", id)
	}
	l := s.layers[idx]
	if l.Kind().Protected() {
		return nil, errs.New(errs.CodeProtectedLayer, "辅助图层 %q 不可删除", l.Name)
	}
	s.layers = slices.Delete(s.layers, idx, idx+1)
	s.normalizeZOrder()
	return l, nil
}

// Reorder 将图层移动到列表下标 index（越界时夹取到两端），随后无条件恢复 z 序。
func (s *Scene) Reorder(id uuid.UUID, index int) error {
	idx := s.IndexOf(id)
	if idx < 0 {
		return errs.New(errs.CodeNotFound, "图层 %s 不存在", id)
	}
	l := s.layers[idx]
	if l.Kind().Protected() {
		return errs.New(errs.CodeProtectedLayer, "辅助图层 %q 不可移动", l.Name)
	}
	s.layers = slices.Delete(s.layers, idx, idx+1)
	index = min(max(index, 0), len(s.layers))
	s.layers = slices.Insert(s.layers, index, l)
	s.normalizeZOrder()
	return nil
}

// Clear 删除全部图层（含辅助层）。
func (s *Scene) Clear() {
	s.layers = nil
}

// HitTest 返回包含 (x, y) 的最上层可见内容图层。
func (s *Scene) HitTest(x, y float64) (*Layer, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		if l.Kind().Protected() || !l.Visible {
			continue
		}
		if l.Bounds().Contains(x, y) {
			return l, true
		}
	}
	return nil, false
}

// SetOverlaysVisible 设置所有背景层与辅助层的可见性，返回修改前的状态，供 RestoreVisibility 使用。
func (s *Scene) SetOverlaysVisible(visible bool) map[uuid.UUID]bool {
	prev := make(map[uuid.UUID]bool)
	for _, l := range s.layers {
		if l.Kind().Protected() {
			prev[l.ID] = l.Visible
			l.Visible = visible
		}
	}
	return prev
}

// RestoreVisibility 恢复 SetOverlaysVisible 记录的可见性。
func (s *Scene) RestoreVisibility(prev map[uuid.UUID]bool) {
	for _, l := range s.layers {
		if v, ok := prev[l.ID]; ok {
			l.Visible = v
		}
	}
}

// normalizeZOrder 稳定地将背景层移到底部、辅助层移到顶部。
func (s *Scene) normalizeZOrder() {
	ordered := make([]*Layer, 0, len(s.layers))
	for _, pass := range []func(Kind) bool{
		func(k Kind) bool { return k == KindBackground },
		func(k Kind) bool { return !k.Protected() },
		func(k Kind) bool { return k == KindGuide },
	} {
		for _, l := range s.layers {
			if pass(l.Kind()) {
				ordered = append(ordered, l)
			}
		}
	}
	s.layers = ordered
}
