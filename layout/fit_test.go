package layout

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/stickerboard/scene"
)

// stubTypesetter 每个字符宽 fontSize/2，按 width 逐字符折行，显式换行切分段落。
// 只用于测试，避免依赖真实字体。
type stubTypesetter struct {
	calls int
}

func (s *stubTypesetter) LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error) {
	s.calls++
	charW := fontSize / 2
	var lines []TextLine
	for _, para := range strings.Split(content, "\n") {
		n := utf8.RuneCountInString(para)
		perLine := n
		if width > 0 && wrap != "nowrap" {
			perLine = max(int(width/charW), 1)
		}
		if n == 0 {
			lines = append(lines, TextLine{Height: lineHeight})
			continue
		}
		runes := []rune(para)
		for len(runes) > 0 {
			k := min(perLine, len(runes))
			lines = append(lines, TextLine{Content: string(runes[:k]), Width: float64(k) * charW, Height: lineHeight})
			runes = runes[k:]
		}
	}
	for i := 1; i < len(lines); i++ {
		lines[i].GapBefore = 2
	}
	return lines, nil
}

func newBubble() *scene.Bubble {
	b := &scene.Bubble{
		Background: scene.BubbleBackground{Radius: 12, StrokeWidth: 1.5, FillAlpha: 0.9},
		Text:       scene.BubbleText{FontSize: 24, LineHeight: 1.25, MaxWidth: 380, Scale: 1},
	}
	b.SetColors(scene.MustHex("#222222"), scene.MustHex("#ffffff"))
	return b
}

func TestFitPaddingInvariant(t *testing.T) {
	f := NewFitter(&stubTypesetter{}, DefaultPadding)
	for _, text := range []string{"Hello!", "a much longer sentence that will wrap across several lines", "一行\n二行\n\n四行", "😀🎉"} {
		b := newBubble()
		require.NoError(t, f.Fit(b, text))

		assert.InDelta(t, 2*DefaultPadding, b.Background.Width-b.Text.Width, 1e-9, text)
		assert.InDelta(t, 2*DefaultPadding, b.Background.Height-b.Text.Height, 1e-9, text)
		assert.Equal(t, MaxLineWidth(b.Text.Lines), b.Text.Width)
		assert.Equal(t, BlockHeight(b.Text.Lines), b.Text.Height)
		assert.Equal(t, text, b.Text.Content)
	}
}

func TestFitCentersChildren(t *testing.T) {
	f := NewFitter(&stubTypesetter{}, DefaultPadding)
	b := newBubble()
	require.NoError(t, f.Fit(b, "center me"))

	bg := b.Background
	assert.InDelta(t, 0, bg.X+bg.Width/2, 1e-9)
	assert.InDelta(t, 0, bg.Y+bg.Height/2, 1e-9)
	assert.InDelta(t, 0, b.Text.X+b.Text.Width/2, 1e-9)
	assert.InDelta(t, 0, b.Text.Y+b.Text.Height/2, 1e-9)
}

func TestFitIsIdempotent(t *testing.T) {
	f := NewFitter(&stubTypesetter{}, DefaultPadding)
	b := newBubble()
	require.NoError(t, f.Fit(b, "same text twice"))
	first := b.Background
	firstBounds := b.Bounds()

	require.NoError(t, f.Fit(b, "same text twice"))
	assert.Equal(t, first, b.Background)
	assert.Equal(t, firstBounds, b.Bounds())

	require.NoError(t, f.Refit(b))
	assert.Equal(t, first, b.Background)
}

func TestFitEmptyText(t *testing.T) {
	f := NewFitter(&stubTypesetter{}, DefaultPadding)
	b := newBubble()
	require.NoError(t, f.Fit(b, ""))

	lineHeight := 24 * 1.25
	assert.Equal(t, 2*DefaultPadding, b.Background.Width)
	assert.Equal(t, 2*DefaultPadding+lineHeight, b.Background.Height)
	require.Len(t, b.Text.Lines, 1)
}

func TestFitEmptyLayoutFallsBackToOneLine(t *testing.T) {
	f := NewFitter(typesetterFunc(func(string) []TextLine { return nil }), 10)
	b := newBubble()
	require.NoError(t, f.Fit(b, ""))
	assert.Equal(t, 20.0, b.Background.Width)
	assert.Equal(t, 20+24*1.25, b.Background.Height)
}

func TestFitGrowsPastWrapHintForUnbreakableRun(t *testing.T) {
	wide := typesetterFunc(func(s string) []TextLine {
		return []TextLine{{Content: s, Width: 500, Height: 30}}
	})
	f := NewFitter(wide, DefaultPadding)
	b := newBubble()
	require.NoError(t, f.Fit(b, "Supercalifragilistic"))
	assert.Equal(t, 500+2*DefaultPadding, b.Background.Width, "max width is a hint, not a cap")
}

func TestFitBoundsIncludeStroke(t *testing.T) {
	f := NewFitter(&stubTypesetter{}, DefaultPadding)
	b := newBubble()
	require.NoError(t, f.Fit(b, "stroke"))
	assert.InDelta(t, b.Background.Width+1.5, b.Bounds().Width, 1e-9)

	b.SetColors(scene.MustHex("#222222"), scene.MustHex("#222222"))
	require.NoError(t, f.Refit(b))
	assert.InDelta(t, b.Background.Width, b.Bounds().Width, 1e-9)
}

func TestFitTextScale(t *testing.T) {
	f := NewFitter(&stubTypesetter{}, DefaultPadding)
	b := newBubble()
	require.NoError(t, f.Fit(b, "scaled"))
	w1, h1 := b.Background.Width, b.Background.Height

	b.Text.Scale = 2
	require.NoError(t, f.Refit(b))
	assert.InDelta(t, 2*(w1-2*DefaultPadding)+2*DefaultPadding, b.Background.Width, 1e-9)

	b.Text.Scale = 1
	require.NoError(t, f.Refit(b))
	assert.Equal(t, w1, b.Background.Width)
	assert.Equal(t, h1, b.Background.Height)
}

func TestFitRequiresTypesetter(t *testing.T) {
	assert.Error(t, (&Fitter{}).Fit(newBubble(), "x"))
	assert.Error(t, NewFitter(&stubTypesetter{}, 1).Fit(nil, "x"))
}

type typesetterFunc func(string) []TextLine

func (f typesetterFunc) LayoutLines(content string, _ float64, _ FontResource, _ float64, _ float64, _ string) ([]TextLine, error) {
	return f(content), nil
}
