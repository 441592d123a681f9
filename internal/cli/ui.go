package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/ByLCY/stickerboard/editor"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleActive  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconArrow   = "→"
	iconActive  = "●"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+styleValue.Render(value))
}

// 图层表的列宽（按显示宽度计）。
const (
	colIndex = 4
	colKind  = 14
	colLabel = 24
)

// printLayers 输出图层表，顶层在前；当前选中的图层以 ● 标记。
func printLayers(w io.Writer, entries []editor.LayerEntry) {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		cell("  ", 2),
		cell("#", colIndex),
		cell("KIND", colKind),
		cell("LABEL", colLabel),
		"FILL",
	)
	fmt.Fprintln(w, styleTitle.Render(header))
	if len(entries) == 0 {
		fmt.Fprintln(w, styleDim.Render("  (no layers)"))
		return
	}
	for _, e := range entries {
		mark := "  "
		if e.Active {
			mark = styleActive.Render(iconActive) + " "
		}
		label := e.Label
		if lipgloss.Width(label) > colLabel-1 {
			label = truncate(label, colLabel-2) + "…"
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			cell(mark, 2),
			styleNumber.Render(cell(fmt.Sprint(e.Index), colIndex)),
			styleDim.Render(cell(e.Kind.String(), colKind)),
			styleValue.Render(cell(label, colLabel)),
			styleDim.Render(e.Fill),
		)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

func cell(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// truncate 按字形簇与显示宽度截断，结果不超过 width 列。
func truncate(s string, width int) string {
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if lipgloss.Width(b.String()+g.Str()) > width {
			break
		}
		b.WriteString(g.Str())
	}
	return b.String()
}
