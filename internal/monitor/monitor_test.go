package monitor

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/smarttent/internal/dashboard"
	"github.com/luki/smarttent/internal/status"
)

func renderedTree() *dashboard.Tree {
	tree := dashboard.NewDefaultTree(dashboard.DefaultSignalBars)
	tree.Update(func(get func(string) *dashboard.Element) {
		t := get(dashboard.IDTempInterior)
		t.Text = "21.5°C"
		t.AddClass("normal")

		g := get(dashboard.IDGasSensor)
		g.Text = "350 ppm"
		g.AddClass("critical")

		bar := get(dashboard.IDGasSensorBar)
		bar.SetStyle("width", "70%")
		bar.SetClassName("battery-fill", "critical")

		c := get(dashboard.IDConnectionStatus)
		c.Text = "Online"
		c.SetClassName("status-indicator", "online")

		sig := get(dashboard.IDSignalBars)
		sig.Children[0].AddClass("active")
		sig.Children[1].AddClass("active")

		alert := get(dashboard.IDCriticalAlerts)
		alert.AddClass(dashboard.ClassVisible)
		alert.Children[0].Text = "GAS ALERT! 350 ppm"
	})
	return tree
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	return next.(Model)
}

func TestViewInitializing(t *testing.T) {
	m := New(Options{Tree: dashboard.NewDefaultTree(4)})
	if got := m.View(); !strings.Contains(got, "Initializing") {
		t.Errorf("View() before size = %q", got)
	}
}

func TestViewWaitingForTelemetry(t *testing.T) {
	m := sized(New(Options{Tree: dashboard.NewDefaultTree(4), DeviceID: "smart_tent_001"}))
	view := m.View()
	if !strings.Contains(view, "Waiting for telemetry") {
		t.Errorf("expected waiting message in view:\n%s", view)
	}
	if !strings.Contains(view, "smart_tent_001") {
		t.Errorf("expected device id in title bar:\n%s", view)
	}
}

func TestViewRendersTree(t *testing.T) {
	m := sized(New(Options{Tree: renderedTree(), DeviceID: "smart_tent_001", Interval: 10 * time.Second}))
	next, _ := m.Update(RenderedMsg(time.Date(2026, 10, 15, 9, 30, 0, 0, time.Local)))
	m = next.(Model)

	view := m.View()
	for _, want := range []string{
		"SMART TENT", "Online", "updated 09:30:00",
		"Interior", "Exterior", "System",
		"21.5°C", "350 ppm", "GAS ALERT! 350 ppm",
		"q", ":dismiss",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestKeys(t *testing.T) {
	var refreshed, dismissed int
	m := sized(New(Options{
		Tree:    renderedTree(),
		Refresh: func() { refreshed++ },
		Dismiss: func() { dismissed++ },
	}))

	press := func(m Model, k string) (Model, tea.Cmd) {
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		return next.(Model), cmd
	}

	m, _ = press(m, "r")
	m, _ = press(m, "d")
	if refreshed != 1 || dismissed != 1 {
		t.Errorf("refreshed=%d dismissed=%d, want 1 and 1", refreshed, dismissed)
	}

	m, _ = press(m, "j")
	m, _ = press(m, "j")
	m, _ = press(m, "k")
	if m.scroll != 1 {
		t.Errorf("scroll = %d, want 1", m.scroll)
	}

	_, cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		classes []string
		want    status.Level
	}{
		{nil, status.None},
		{[]string{"normal"}, status.Normal},
		{[]string{"card", "warning"}, status.Warning},
		{[]string{"critical"}, status.Critical},
	}
	for _, tt := range tests {
		if got := levelOf(&dashboard.Element{Classes: tt.classes}); got != tt.want {
			t.Errorf("levelOf(%v) = %v, want %v", tt.classes, got, tt.want)
		}
	}
}

func TestLeadingNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"21.5°C", 21.5, true},
		{"-3°C", -3, true},
		{"n/a°C", 0, false},
		{"--", 0, false},
	}
	for _, tt := range tests {
		got, ok := leadingNumber(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("leadingNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
