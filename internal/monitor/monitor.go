// Package monitor implements the live smart-tent dashboard TUI using
// BubbleTea. It draws the visual tree the renderer keeps current.
package monitor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/smarttent/internal/chart"
	"github.com/luki/smarttent/internal/dashboard"
	"github.com/luki/smarttent/internal/status"
)

// ── Messages ─────────────────────────────────────────────────────────

// RenderedMsg tells the model a render pass finished.
type RenderedMsg time.Time

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the live monitor.
type Model struct {
	tree     *dashboard.Tree
	deviceID string
	interval time.Duration

	// refresh starts a render pass now; dismiss hides the alert banner.
	refresh func()
	dismiss func()

	width      int
	height     int
	scroll     int
	lastRender time.Time
	startTime  time.Time
}

// Options configure a Model.
type Options struct {
	Tree     *dashboard.Tree
	DeviceID string
	Interval time.Duration
	Refresh  func()
	Dismiss  func()
}

// New creates the initial model for the live monitor.
func New(opts Options) Model {
	noop := func() {}
	if opts.Refresh == nil {
		opts.Refresh = noop
	}
	if opts.Dismiss == nil {
		opts.Dismiss = noop
	}
	return Model{
		tree:      opts.Tree,
		deviceID:  opts.DeviceID,
		interval:  opts.Interval,
		refresh:   opts.Refresh,
		dismiss:   opts.Dismiss,
		startTime: time.Now(),
	}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			m.scroll++
		case "home":
			m.scroll = 0
		case "r":
			m.refresh()
		case "d":
			m.dismiss()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case RenderedMsg:
		m.lastRender = time.Time(msg)
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorPanel    = lipgloss.Color("147")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorOk       = lipgloss.Color("78")
	colorWarn     = lipgloss.Color("220")
	colorCrit     = lipgloss.Color("196")
	colorAlertBg  = lipgloss.Color("52")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string

	sections = append(sections, m.renderTitleBar(contentWidth))

	if banner := m.renderAlert(contentWidth); banner != "" {
		sections = append(sections, banner)
	}

	if m.lastRender.IsZero() {
		waiting := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for telemetry...")
		sections = append(sections, waiting)
	} else {
		sections = append(sections, m.renderPanels(contentWidth)...)
	}

	sections = append(sections, m.renderFooter(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	lines := strings.Split(content, "\n")
	visibleLines := m.height
	if visibleLines < 5 {
		visibleLines = 5
	}
	maxScroll := len(lines) - visibleLines
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}

	start := m.scroll
	end := start + visibleLines
	if end > len(lines) {
		end = len(lines)
	}

	return strings.Join(lines[start:end], "\n")
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("SMART TENT")

	dimS := lipgloss.NewStyle().Foreground(colorDim)

	var statusParts []string

	statusParts = append(statusParts, dimS.Render(m.deviceID))

	conn := m.tree.Get(dashboard.IDConnectionStatus)
	online := conn != nil && conn.HasClass("online")
	connText := "--"
	if conn != nil {
		connText = conn.Text
	}
	statusParts = append(statusParts, chart.RenderStatusDot(online)+" "+
		lipgloss.NewStyle().Foreground(colorLabel).Render(connText))

	if !m.lastRender.IsZero() {
		statusParts = append(statusParts, dimS.Render("updated "+m.lastRender.Format("15:04:05")))
	}
	statusParts = append(statusParts, dimS.Render(fmt.Sprintf("every %s", m.interval)))
	statusParts = append(statusParts, dimS.Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startTime)))))

	sep := dimS.Render(" │ ")
	right := strings.Join(statusParts, sep)

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + filler + right)
}

func (m Model) renderAlert(width int) string {
	banner := m.tree.Get(dashboard.IDCriticalAlerts)
	if banner == nil || !banner.HasClass(dashboard.ClassVisible) {
		return ""
	}
	var msg string
	if slots := banner.ChildrenWithClass(dashboard.ClassAlertMessage); len(slots) > 0 {
		msg = slots[0].Text
	}
	hint := lipgloss.NewStyle().Foreground(colorLabel).Render("  [d] dismiss")
	return lipgloss.NewStyle().
		Background(colorAlertBg).
		Foreground(colorCrit).
		Bold(true).
		Width(width).
		Padding(0, 1).
		Render(msg + hint)
}

type row struct {
	label string
	id    string
}

func (m Model) renderPanels(totalWidth int) []string {
	innerWidth := totalWidth - 4
	if innerWidth < 30 {
		innerWidth = 30
	}
	labelW := 14
	valueW := 12
	barW := innerWidth - labelW - valueW - 4
	if barW < 10 {
		barW = 10
	}
	if barW > 60 {
		barW = 60
	}

	interior := []string{
		m.renderReading(row{"Temperature", dashboard.IDTempInterior}, labelW, valueW,
			m.temperatureScale(dashboard.IDTempInterior, barW)),
		m.renderReading(row{"Humidity", dashboard.IDHumidityInterior}, labelW, valueW, ""),
		m.renderReading(row{"Gas", dashboard.IDGasSensor}, labelW, valueW, m.gasBar(barW)),
		m.renderReading(row{"Motion", dashboard.IDMotionInterior}, labelW, valueW, ""),
	}
	exterior := []string{
		m.renderReading(row{"Temperature", dashboard.IDTempExterior}, labelW, valueW,
			m.temperatureScale(dashboard.IDTempExterior, barW)),
		m.renderReading(row{"Humidity", dashboard.IDHumidityExterior}, labelW, valueW, ""),
		m.renderReading(row{"Wind", dashboard.IDWindSpeed}, labelW, valueW, ""),
		m.renderReading(row{"Motion", dashboard.IDMotionExterior}, labelW, valueW, ""),
	}
	system := []string{
		m.renderReading(row{"4G signal", dashboard.IDSignal4G}, labelW, valueW, m.signalBars()),
		m.renderReading(row{"Battery", dashboard.IDBattery}, labelW, valueW, ""),
	}

	return []string{
		panel("Interior", interior, totalWidth),
		panel("Exterior", exterior, totalWidth),
		panel("System", system, totalWidth),
	}
}

func panel(title string, rows []string, width int) string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(colorPanel).Render(title)
	content := lipgloss.JoinVertical(lipgloss.Left, append([]string{heading}, rows...)...)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(content)
}

func (m Model) renderReading(r row, labelW, valueW int, extra string) string {
	el := m.tree.Get(r.id)
	text, lvl := "--", status.None
	if el != nil {
		text, lvl = el.Text, levelOf(el)
	}

	label := lipgloss.NewStyle().
		Foreground(colorLabel).
		Width(labelW).
		Render(truncate(r.label, labelW))
	value := lipgloss.NewStyle().
		Width(valueW).
		Align(lipgloss.Right).
		Render(chart.RenderValue(text, lvl))

	if extra == "" {
		return label + " " + value
	}
	return label + " " + value + "  " + extra
}

func (m Model) temperatureScale(id string, width int) string {
	el := m.tree.Get(id)
	if el == nil {
		return ""
	}
	v, ok := leadingNumber(el.Text)
	if !ok {
		return ""
	}
	return chart.RenderScale(v, -10, 50, chart.TemperatureMarks, levelOf(el), width)
}

func (m Model) gasBar(width int) string {
	el := m.tree.Get(dashboard.IDGasSensorBar)
	if el == nil {
		return ""
	}
	w, ok := el.Style["width"]
	if !ok {
		return ""
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(w, "%"), 64)
	if err != nil {
		return ""
	}
	lvl := status.Normal
	switch {
	case el.HasClass("critical"):
		lvl = status.Critical
	case el.HasClass("low"):
		lvl = status.Warning
	}
	return chart.RenderFillBar(pct, lvl, width)
}

func (m Model) signalBars() string {
	el := m.tree.Get(dashboard.IDSignalBars)
	if el == nil {
		return ""
	}
	bars := el.ChildrenWithClass(dashboard.ClassBar)
	active := 0
	for _, b := range bars {
		if b.HasClass("active") {
			active++
		}
	}
	return chart.RenderSignalBars(active, len(bars))
}

func (m Model) renderFooter(width int) string {
	block := "██"
	okS := lipgloss.NewStyle().Foreground(colorOk).Render(block)
	warnS := lipgloss.NewStyle().Foreground(colorWarn).Render(block)
	critS := lipgloss.NewStyle().Foreground(colorCrit).Render(block)

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)
	legend := okS + dimS.Render(" normal ") +
		warnS + dimS.Render(" warning ") +
		critS + dimS.Render(" critical")

	keys := dimS.Render("q") + keyS.Render(":quit") +
		dimS.Render("  r") + keyS.Render(":refresh") +
		dimS.Render("  d") + keyS.Render(":dismiss") +
		dimS.Render("  j/k") + keyS.Render(":scroll")

	gap := width - lipgloss.Width(legend) - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + filler + keys)
}

// levelOf reads the status class the renderer put on an element.
func levelOf(el *dashboard.Element) status.Level {
	switch {
	case el.HasClass(status.Critical.Class()):
		return status.Critical
	case el.HasClass(status.Warning.Class()):
		return status.Warning
	case el.HasClass(status.Normal.Class()):
		return status.Normal
	default:
		return status.None
	}
}

// leadingNumber parses the number at the start of a display text such as
// "21.5°C".
func leadingNumber(s string) (float64, bool) {
	end := 0
	for end < len(s) && strings.ContainsRune("+-.0123456789eE", rune(s[end])) {
		end++
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	return f, err == nil
}

func truncate(s string, w int) string {
	if len(s) <= w {
		return s
	}
	if w <= 3 {
		return s[:w]
	}
	return s[:w-1] + "…"
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
