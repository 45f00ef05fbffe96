// Package chart renders a price series as a terminal line chart.
//
// A LineChart is created once and then rebound to new data in place, so the
// hover cursor and sizing survive switching between coins.
package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Transition names the redraw mode requested by Update.
type Transition string

const (
	TransitionNone   Transition = "none"
	TransitionActive Transition = "active"
)

// Options configures the chart look.
type Options struct {
	Height     int
	Precision  uint
	TickPrefix string
	Colors     bool
	LineColor  asciigraph.AnsiColor
	AxisColor  asciigraph.AnsiColor
	LabelColor lipgloss.Color
	// Tooltip formats the value under the cursor.
	Tooltip func(float64) string
}

// DefaultOptions is a single faint-axis line on a dark background with
// dollar-prefixed y ticks.
func DefaultOptions(tooltip func(float64) string) Options {
	return Options{
		Height:     10,
		Precision:  2,
		TickPrefix: "$",
		Colors:     true,
		LineColor:  asciigraph.SpringGreen,
		AxisColor:  asciigraph.DarkGray,
		LabelColor: lipgloss.Color("#8A8F98"),
		Tooltip:    tooltip,
	}
}

// LineChart is a mutable single-series chart.
type LineChart struct {
	Labels  []string
	Data    []float64
	Options Options

	// LastTransition and Updates record redraw requests.
	LastTransition Transition
	Updates        int

	cursor int
}

// New creates a chart with the cursor on the latest point.
func New(labels []string, data []float64, opts Options) *LineChart {
	c := &LineChart{Options: opts, LastTransition: TransitionNone}
	c.SetData(labels, data)
	return c
}

// SetData replaces labels and values in place and parks the cursor on the
// latest point.
func (c *LineChart) SetData(labels []string, data []float64) {
	c.Labels = labels
	c.Data = data
	c.cursor = len(data) - 1
	if c.cursor < 0 {
		c.cursor = 0
	}
}

// Update asks the chart to redraw with the given transition.
func (c *LineChart) Update(mode Transition) {
	c.LastTransition = mode
	c.Updates++
}

// MoveCursor shifts the hover cursor, clamped to the series.
func (c *LineChart) MoveCursor(delta int) {
	if len(c.Data) == 0 {
		c.cursor = 0
		return
	}
	c.cursor += delta
	if c.cursor < 0 {
		c.cursor = 0
	}
	if c.cursor > len(c.Data)-1 {
		c.cursor = len(c.Data) - 1
	}
}

// Point returns the label and value under the cursor.
func (c *LineChart) Point() (string, float64, bool) {
	if len(c.Data) == 0 {
		return "", 0, false
	}
	label := ""
	if c.cursor < len(c.Labels) {
		label = c.Labels[c.cursor]
	}
	return label, c.Data[c.cursor], true
}

// Tooltip renders the hover text for the cursor point.
func (c *LineChart) Tooltip() string {
	label, value, ok := c.Point()
	if !ok {
		return ""
	}
	text := fmt.Sprintf("%v", value)
	if c.Options.Tooltip != nil {
		text = c.Options.Tooltip(value)
	}
	if label == "" {
		return text
	}
	return label + "  " + text
}

// Render draws the chart into at most width columns. It returns an empty
// string when there is nothing to plot.
func (c *LineChart) Render(width int) string {
	if len(c.Data) == 0 {
		return ""
	}
	series := c.Data
	if len(series) == 1 {
		series = []float64{series[0], series[0]}
	}

	plotWidth := width - 14
	if plotWidth < 10 {
		plotWidth = 10
	}
	height := c.Options.Height
	if height < 2 {
		height = 2
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(plotWidth),
		asciigraph.Precision(c.Options.Precision),
	}
	if lo, hi := bounds(series); lo == hi {
		// flat series: give the axis some room
		opts = append(opts, asciigraph.LowerBound(lo-1), asciigraph.UpperBound(hi+1))
	}
	if c.Options.Colors {
		opts = append(opts,
			asciigraph.SeriesColors(c.Options.LineColor),
			asciigraph.AxisColor(c.Options.AxisColor),
		)
	}

	lines := strings.Split(asciigraph.Plot(series, opts...), "\n")
	axisCol := -1
	for i, line := range lines {
		lines[i] = c.prefixTick(line)
		if axisCol < 0 {
			axisCol = axisColumn(lines[i])
		}
	}

	if axisCol >= 0 {
		lines = append(lines, c.cursorLine(axisCol+1, plotWidth))
	}
	return strings.Join(lines, "\n")
}

// prefixTick puts the tick prefix in front of the y label of an axis line.
// Labels are right-aligned, so the prefix takes one of the leading spaces
// when there is one and keeps the axis column straight.
func (c *LineChart) prefixTick(line string) string {
	if c.Options.TickPrefix == "" || axisColumn(line) < 0 {
		return line
	}
	trimmed := strings.TrimLeft(line, " ")
	if trimmed == "" {
		return line
	}
	if ch := trimmed[0]; ch != '-' && (ch < '0' || ch > '9') {
		return line
	}
	pad := len(line) - len(trimmed)
	if pad > 0 {
		pad--
	}
	label := strings.Repeat(" ", pad) + c.Options.TickPrefix + trimmed
	if c.Options.Colors {
		idx := strings.IndexAny(label, "\x1b┤┼")
		if idx > 0 {
			tick := lipgloss.NewStyle().Foreground(c.Options.LabelColor).Render(label[:idx])
			return tick + label[idx:]
		}
	}
	return label
}

func (c *LineChart) cursorLine(start, plotWidth int) string {
	n := len(c.Data)
	pos := 0
	if n > 1 {
		pos = int(float64(c.cursor)*float64(plotWidth-1)/float64(n-1) + 0.5)
	}
	return strings.Repeat(" ", start+pos) + "▲"
}

// axisColumn is the display column of the y axis glyph, or -1.
func axisColumn(line string) int {
	idx := strings.IndexAny(line, "┤┼")
	if idx < 0 {
		return -1
	}
	return lipgloss.Width(line[:idx])
}

func bounds(series []float64) (float64, float64) {
	lo, hi := series[0], series[0]
	for _, v := range series[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
