// Package chart renders dashboard readings as coloured terminal glyphs:
// status-coloured values, the gas fill bar, signal bars and threshold scales.
package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/smarttent/internal/status"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// partialBlocks are left-aligned eighths, used for the tip of a fill bar.
var partialBlocks = []rune{'▏', '▎', '▍', '▌', '▋', '▊', '▉'}

var (
	colorNormal   = lipgloss.Color("78")  // soft green
	colorWarning  = lipgloss.Color("220") // yellow
	colorCritical = lipgloss.Color("196") // red
	colorPlain    = lipgloss.Color("250")
	colorTrack    = lipgloss.Color("236")
	colorMark     = lipgloss.Color("240")
)

// LevelColor returns the colour a status level is drawn in.
func LevelColor(l status.Level) lipgloss.Color {
	switch l {
	case status.Critical:
		return colorCritical
	case status.Warning:
		return colorWarning
	case status.Normal:
		return colorNormal
	default:
		return colorPlain
	}
}

// RenderValue renders a reading's display text in its level colour.
// Critical values are bold.
func RenderValue(text string, l status.Level) string {
	style := lipgloss.NewStyle().Foreground(LevelColor(l))
	if l == status.Critical {
		style = style.Bold(true)
	}
	return style.Render(text)
}

// RenderFillBar renders a horizontal bar filled to pct percent of width
// cells, with eighth-cell resolution at the tip.
func RenderFillBar(pct float64, l status.Level, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(pct) {
		pct = 0
	}
	pct = math.Max(0, math.Min(100, pct))

	eighths := int(math.Round(pct / 100 * float64(width*8)))
	full := eighths / 8
	rem := eighths % 8

	var fill strings.Builder
	fill.WriteString(strings.Repeat("█", full))
	used := full
	if rem > 0 && used < width {
		fill.WriteRune(partialBlocks[rem-1])
		used++
	}

	fg := lipgloss.NewStyle().Foreground(LevelColor(l))
	track := lipgloss.NewStyle().Foreground(colorTrack)
	return fg.Render(fill.String()) + track.Render(strings.Repeat("░", width-used))
}

// RenderSignalBars renders n bars of rising height, the first active of
// them lit.
func RenderSignalBars(active, n int) string {
	if n <= 0 {
		return ""
	}
	lit := lipgloss.NewStyle().Foreground(colorNormal).Bold(true)
	off := lipgloss.NewStyle().Foreground(colorTrack)

	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i < active {
			sb.WriteString(lit.Render(string(barGlyph(i, n))))
		} else {
			sb.WriteString(off.Render(string(sparkBlocks[0])))
		}
	}
	return sb.String()
}

// barGlyph picks the block for bar i so the last of n bars is full height.
func barGlyph(i, n int) rune {
	if n == 1 {
		return sparkBlocks[len(sparkBlocks)-1]
	}
	idx := 1 + i*(len(sparkBlocks)-2)/(n-1)
	if idx >= len(sparkBlocks) {
		idx = len(sparkBlocks) - 1
	}
	return sparkBlocks[idx]
}

// RenderStatusDot renders the connection indicator.
func RenderStatusDot(online bool) string {
	c := colorCritical
	if online {
		c = colorNormal
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

// Mark is a threshold drawn on a scale.
type Mark struct {
	Value float64
	Level status.Level
}

// RenderScale renders a scale bar from rangeMin to rangeMax with threshold
// marks and a diamond at current.
func RenderScale(current, rangeMin, rangeMax float64, marks []Mark, l status.Level, width int) string {
	if width <= 0 {
		return ""
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}
	pos := func(v float64) int {
		return int(float64(width-1) * (v - rangeMin) / span)
	}

	markAt := make(map[int]status.Level)
	for _, mk := range marks {
		if p := pos(mk.Value); p >= 0 && p < width {
			markAt[p] = mk.Level
		}
	}

	curPos := pos(current)
	if curPos < 0 {
		curPos = 0
	}
	if curPos >= width {
		curPos = width - 1
	}

	dot := lipgloss.NewStyle().Foreground(colorTrack).Render("·")

	var sb strings.Builder
	for i := 0; i < width; i++ {
		if i == curPos {
			sb.WriteString(lipgloss.NewStyle().Foreground(LevelColor(l)).Bold(true).Render("◆"))
			continue
		}
		if ml, ok := markAt[i]; ok {
			c := colorMark
			if ml == status.Warning || ml == status.Critical {
				c = LevelColor(ml)
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(c).Render("▪"))
			continue
		}
		sb.WriteString(dot)
	}
	return sb.String()
}

// TemperatureMarks are the temperature warning and critical bounds.
var TemperatureMarks = []Mark{
	{Value: status.TempCriticalLow, Level: status.Critical},
	{Value: status.TempWarningLow, Level: status.Warning},
	{Value: status.TempWarningHigh, Level: status.Warning},
	{Value: status.TempCriticalHigh, Level: status.Critical},
}

// GasMarks are the gas warning and critical bounds.
var GasMarks = []Mark{
	{Value: status.GasWarning, Level: status.Warning},
	{Value: status.GasCritical, Level: status.Critical},
}
