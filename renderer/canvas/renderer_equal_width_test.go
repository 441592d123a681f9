package canvasrenderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/stickerboard/layout"
)

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r := NewRenderer("")
	fontSize := 24.0
	lineHeight := fontSize * 1.2

	first := "SAMPLE-A"
	measured, err := r.LayoutLines(first, 1e6, bodyFont, fontSize, lineHeight, "")
	require.NoError(t, err)
	require.Len(t, measured, 1)
	limit := measured[0].Width
	require.Greater(t, limit, 0.0)

	lines, err := r.LayoutLines(first+"\n"+"SAMPLE-B", limit, bodyFont, fontSize, lineHeight, "")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, first, lines[0].Content)
	assert.Equal(t, "SAMPLE-B", lines[1].Content)
}

// 每个码点宽 1 的测量函数，便于验证字形簇不被拆开。
func runeCount(s string) float64 { return float64(len([]rune(s))) }

func TestGraphemeWrapKeepsClustersIntact(t *testing.T) {
	family := "\U0001F468\u200d\U0001F469\u200d\U0001F467" // 5 个码点组成一个字形簇
	lines := greedyWrap("ab"+family+"cd", 3, runeCount, WrapGrapheme)
	var joined string
	for _, ln := range lines {
		joined += ln.Content
		if ln.Content == family {
			continue
		}
		assert.NotContains(t, ln.Content, "\u200d", "zwj sequence split across lines: %q", ln.Content)
	}
	assert.Equal(t, "ab"+family+"cd", joined)
	assert.Contains(t, []string{lines[0].Content, lines[1].Content}, family)
}

func TestWordWrapPrefersSpaces(t *testing.T) {
	lines := greedyWrap("hello big world", 9, runeCount, WrapWord)
	require.Len(t, lines, 2)
	assert.Equal(t, "hello big", lines[0].Content)
	assert.Equal(t, "world", lines[1].Content)

	lines = greedyWrap("abcdefghij", 4, runeCount, WrapWord)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, contents(lines))
}

func TestNoWrapOnlySplitsOnNewlines(t *testing.T) {
	lines := greedyWrap("a very long line\nnext", 2, runeCount, WrapNone)
	assert.Equal(t, []string{"a very long line", "next"}, contents(lines))
	assert.Equal(t, 16.0, lines[0].Width)
}

func TestNormalizeWrap(t *testing.T) {
	assert.Equal(t, WrapGrapheme, normalizeWrap(""))
	assert.Equal(t, WrapGrapheme, normalizeWrap("anywhere"))
	assert.Equal(t, WrapWord, normalizeWrap("Word"))
	assert.Equal(t, WrapNone, normalizeWrap("nowrap"))
}

func contents(lines []layout.TextLine) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Content
	}
	return out
}
