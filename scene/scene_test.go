package scene

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/stickerboard/errs"
)

// newBoard 构造与编辑器相同形状的场景：底部背景、4 块遮罩与虚线边框。
func newBoard() *Scene {
	s := New()
	s.Add(NewLayer("artboard", &Background{Width: 512, Height: 512, CheckerSize: 20}, At(0, 0)))
	for i := 0; i < 4; i++ {
		s.Add(NewLayer("shroud", &Guide{Style: GuideShroud, Width: 10, Height: 10}, At(0, 0)))
	}
	s.Add(NewLayer("guide", &Guide{Style: GuideBorder, Width: 512, Height: 512}, At(0, 0)))
	return s
}

func shape(name string) *Layer {
	return NewLayer(name, &Shape{Width: 40, Height: 20}, At(100, 100))
}

// assertZOrder 检查背景在底、辅助层在顶，内容层夹在中间。
func assertZOrder(t *testing.T, s *Scene) {
	t.Helper()
	layers := s.Layers()
	phase := 0
	for i, l := range layers {
		var want int
		switch l.Kind() {
		case KindBackground:
			want = 0
		case KindGuide:
			want = 2
		default:
			want = 1
		}
		require.GreaterOrEqualf(t, want, phase, "layer %d (%s) breaks z-order", i, l.Kind())
		phase = want
	}
}

func TestAddKeepsGuidesOnTopAtEveryStep(t *testing.T) {
	s := newBoard()
	for i := 0; i < 5; i++ {
		s.Add(shape("content"))
		assertZOrder(t, s)
		layers := s.Layers()
		lastContent := -1
		firstGuide := len(layers)
		for idx, l := range layers {
			if !l.Kind().Protected() {
				lastContent = idx
			}
			if l.Kind() == KindGuide && idx < firstGuide {
				firstGuide = idx
			}
		}
		assert.Less(t, lastContent, firstGuide, "step %d", i)
	}
	assert.Len(t, s.Content(), 5)
	assert.Len(t, s.Overlays(), 6)
}

func TestCloneRejectsProtectedLayers(t *testing.T) {
	s := newBoard()
	s.Add(shape("a"))
	before := s.Layers()

	for _, l := range s.Overlays() {
		_, err := s.Clone(l.ID, 20)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.CodeProtectedLayer))
	}
	assert.Equal(t, before, s.Layers())
}

func TestCloneInsertsAboveSourceWithCounter(t *testing.T) {
	s := newBoard()
	a := shape("Star")
	b := shape("Heart")
	s.Add(a)
	s.Add(b)

	c, err := s.Clone(a.ID, 20)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, s.IndexOf(a.ID)+1, s.IndexOf(c.ID))
	assert.Less(t, s.IndexOf(c.ID), s.IndexOf(b.ID))
	assert.Equal(t, 120.0, c.Transform.X)
	assert.Equal(t, 120.0, c.Transform.Y)
	assert.Equal(t, "Star (2)", c.Label())

	cc, err := s.Clone(c.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, "Star (3)", cc.Label())
	assert.Equal(t, "Star", a.Label())
	assertZOrder(t, s)
}

func TestCloneIsDeep(t *testing.T) {
	s := newBoard()
	b := &Bubble{Text: BubbleText{Content: "hi", Lines: []TextLine{{Content: "hi"}}}}
	b.SetColors(MustHex("#000000"), MustHex("#ffffff"))
	src := NewLayer("bubble", b, At(10, 10))
	s.Add(src)

	c, err := s.Clone(src.ID, 20)
	require.NoError(t, err)
	cb, ok := c.Bubble()
	require.True(t, ok)
	cb.Text.Lines[0].Content = "changed"
	cb.Background.Stroke.R = 1
	assert.Equal(t, "hi", b.Text.Lines[0].Content)
	assert.Equal(t, 255, b.Background.Stroke.R)
}

func TestRemoveAndReorder(t *testing.T) {
	s := newBoard()
	a, b, c := shape("a"), shape("b"), shape("c")
	s.Add(a)
	s.Add(b)
	s.Add(c)

	require.NoError(t, s.Reorder(c.ID, 0))
	assertZOrder(t, s)
	content := s.Content()
	assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID}, []uuid.UUID{content[0].ID, content[1].ID, content[2].ID})

	require.NoError(t, s.Reorder(c.ID, 1000))
	assertZOrder(t, s)
	content = s.Content()
	assert.Equal(t, c.ID, content[len(content)-1].ID)

	removed, err := s.Remove(b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, removed)
	_, ok := s.Find(b.ID)
	assert.False(t, ok)

	_, err = s.Remove(uuid.New())
	assert.True(t, errs.Is(err, errs.CodeNotFound))

	guide := s.Overlays()[len(s.Overlays())-1]
	assert.True(t, errs.Is(s.Reorder(guide.ID, 0), errs.CodeProtectedLayer))
	_, err = s.Remove(guide.ID)
	assert.True(t, errs.Is(err, errs.CodeProtectedLayer))
}

func TestHitTestReturnsTopmostContent(t *testing.T) {
	s := newBoard()
	low := shape("low")
	high := shape("high")
	s.Add(low)
	s.Add(high)

	got, ok := s.HitTest(100, 100)
	require.True(t, ok)
	assert.Equal(t, high.ID, got.ID)

	high.Visible = false
	got, ok = s.HitTest(100, 100)
	require.True(t, ok)
	assert.Equal(t, low.ID, got.ID)

	_, ok = s.HitTest(400, 400)
	assert.False(t, ok, "overlays are never hit")
}

func TestOverlayVisibilityRoundTrip(t *testing.T) {
	s := newBoard()
	s.Add(shape("a"))
	s.Overlays()[1].Visible = false

	prev := s.SetOverlaysVisible(false)
	for _, l := range s.Overlays() {
		assert.False(t, l.Visible)
	}
	assert.True(t, s.Content()[0].Visible)

	s.RestoreVisibility(prev)
	for i, l := range s.Overlays() {
		assert.Equal(t, i != 1, l.Visible)
	}
}

func TestBoundsFollowTransform(t *testing.T) {
	l := shape("a")
	assert.Equal(t, Rect{X: 80, Y: 90, Width: 40, Height: 20}, l.Bounds())

	l.Transform.ScaleX, l.Transform.ScaleY = 2, 2
	assert.Equal(t, Rect{X: 60, Y: 80, Width: 80, Height: 40}, l.Bounds())

	l.Transform.ScaleX, l.Transform.ScaleY = 1, 1
	l.Transform.Rotation = 90
	b := l.Bounds()
	assert.InDelta(t, 20, b.Width, 1e-9)
	assert.InDelta(t, 40, b.Height, 1e-9)
}

func TestBubbleStrokeOmittedWhenSameAsFill(t *testing.T) {
	b := &Bubble{Background: BubbleBackground{StrokeWidth: 1.5}}
	b.SetColors(MustHex("#336699"), MustHex("#336699"))
	assert.Nil(t, b.Background.Stroke)

	b.SetColors(MustHex("#336699"), MustHex("#ffffff"))
	require.NotNil(t, b.Background.Stroke)
	assert.Equal(t, "#ffffff", b.Background.Stroke.Hex())
}

func TestRectExpand(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	assert.Equal(t, Rect{X: 8, Y: 18, Width: 104, Height: 54}, r.Expand(2))
	assert.Equal(t, Rect{X: 12, Y: 22, Width: 96, Height: 46}, r.Expand(-2))
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#4ADE80")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x4a, G: 0xde, B: 0x80}, c)
	assert.Equal(t, "#4ade80", c.Hex())

	for _, bad := range []string{"", "#fff", "#12345g", "#1234567"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestDecorationsAreCentered(t *testing.T) {
	for _, typ := range []DecorationType{DecoStar, DecoSparkle, DecoHeart} {
		d, ok := NewDecoration(typ)
		require.True(t, ok)
		assert.Equal(t, DefaultDecorationColors[typ], d.Fill)
		w, h := d.Size()
		assert.Greater(t, w, 0.0)
		assert.Greater(t, h, 0.0)
	}
	star, _ := NewDecoration(DecoStar)
	assert.InDelta(t, 60, star.Box.Height, 1e-6, "star spans outer radius up and down")
	_, ok := NewDecoration("moon")
	assert.False(t, ok)
}

func TestWriteDebugJSON(t *testing.T) {
	s := newBoard()
	s.Add(shape("a"))
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, WriteDebugJSON(s, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 7)
	assert.Equal(t, "background", out[0]["kind"])
	assert.Equal(t, "generic", out[5]["kind"])
	assert.Equal(t, "guide", out[6]["kind"])
}
