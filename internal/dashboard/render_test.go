package dashboard

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/luki/smarttent/internal/status"
	"github.com/luki/smarttent/internal/telemetry"
)

type fakeSource struct {
	mu        sync.Mutex
	snap      *telemetry.Snapshot
	connected bool
	fetches   int
	block     chan struct{} // if set, FetchSnapshot waits on it
}

func (f *fakeSource) FetchSnapshot(ctx context.Context) *telemetry.Snapshot {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.snap
}

func (f *fakeSource) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeSource) Fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRenderer(src Source, tree *Tree) *Renderer {
	return NewRenderer(src, tree, English, quietLogger())
}

func snapshot(s telemetry.Sensors, sys telemetry.System) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Timestamp: "2026-10-15T09:30:00",
		Data:      &telemetry.Payload{Sensors: &s, System: &sys},
	}
}

func text(t *testing.T, tree *Tree, id string) string {
	t.Helper()
	el := tree.Get(id)
	if el == nil {
		t.Fatalf("element %q missing", id)
	}
	return el.Text
}

func TestRenderUpdate_FullSnapshot(t *testing.T) {
	tree := NewDefaultTree(DefaultSignalBars)
	src := &fakeSource{connected: true, snap: snapshot(telemetry.Sensors{
		Temperature:    telemetry.Number(21.5),
		Humidity:       telemetry.Number(90),
		GasLevel:       telemetry.Number(250),
		TemperatureExt: telemetry.Number(3),
		HumidityExt:    telemetry.Number(40),
		WindSpeed:      telemetry.Number(12.5),
		MotionDetected: telemetry.Bool(true),
		MotionExterior: telemetry.Bool(false),
	}, telemetry.System{
		SignalStrength: telemetry.Number(50),
		BatteryLevel:   telemetry.Number(64),
	})}

	newRenderer(src, tree).RenderUpdate(context.Background())

	wantText := map[string]string{
		IDTempInterior:     "21.5°C",
		IDHumidityInterior: "90%",
		IDGasSensor:        "250 ppm",
		IDMotionInterior:   "DETECTED",
		IDTempExterior:     "3°C",
		IDHumidityExterior: "40%",
		IDWindSpeed:        "12.5 km/h",
		IDMotionExterior:   "none",
		IDSignal4G:         "50%",
		IDBattery:          "64%",
		IDConnectionStatus: "Online",
	}
	for id, want := range wantText {
		if got := text(t, tree, id); got != want {
			t.Errorf("%s text = %q, want %q", id, got, want)
		}
	}

	wantClasses := map[string][]string{
		IDTempInterior:     {"normal"},
		IDHumidityInterior: {"warning"},
		IDGasSensor:        {"warning"},
		IDTempExterior:     {"critical"},
		IDHumidityExterior: {"normal"},
		IDWindSpeed:        nil,
		IDBattery:          nil,
		IDConnectionStatus: {"status-indicator", "online"},
		IDStatusIndicator:  {"online"},
		IDGasSensorBar:     {"battery-fill", "low"},
	}
	for id, want := range wantClasses {
		got := tree.Get(id).Classes
		if len(got) == 0 && len(want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s classes = %v, want %v", id, got, want)
		}
	}

	if w := tree.Get(IDGasSensorBar).Style["width"]; w != "50%" {
		t.Errorf("gas bar width = %q, want 50%%", w)
	}
	if tree.Get(IDCriticalAlerts).HasClass(ClassVisible) {
		t.Error("alert banner should be hidden")
	}
}

func TestRenderUpdate_Defaults(t *testing.T) {
	tree := NewDefaultTree(DefaultSignalBars)
	src := &fakeSource{connected: true, snap: snapshot(telemetry.Sensors{
		Temperature: telemetry.Number(18),
		Humidity:    telemetry.Number(55),
	}, telemetry.System{})}

	newRenderer(src, tree).RenderUpdate(context.Background())

	tests := map[string]string{
		IDTempExterior:     "18°C",
		IDHumidityExterior: "55%",
		IDWindSpeed:        "0 km/h",
		IDSignal4G:         "75%",
		IDBattery:          "85%",
		IDMotionInterior:   "none",
		IDMotionExterior:   "none",
		IDGasSensor:        "--",
	}
	for id, want := range tests {
		if got := text(t, tree, id); got != want {
			t.Errorf("%s text = %q, want %q", id, got, want)
		}
	}
	if _, ok := tree.Get(IDGasSensorBar).Style["width"]; ok {
		t.Error("gas bar must not change when gas_level is absent")
	}

	bars := tree.Get(IDSignalBars).Children
	active := 0
	for _, b := range bars {
		if b.HasClass("active") {
			active++
		}
	}
	if active != 3 {
		t.Errorf("default signal lit %d bars, want 3", active)
	}
}

func TestRenderUpdate_NoDataLeavesTreeUntouched(t *testing.T) {
	tests := []struct {
		name string
		snap *telemetry.Snapshot
	}{
		{name: "nil snapshot", snap: nil},
		{name: "missing data", snap: &telemetry.Snapshot{Timestamp: "2026-10-15T09:30:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewDefaultTree(DefaultSignalBars)
			tree.Update(func(get func(string) *Element) {
				get(IDTempInterior).Text = "19°C"
				get(IDConnectionStatus).Text = "Online"
			})
			before := tree.Version()

			newRenderer(&fakeSource{snap: tt.snap}, tree).RenderUpdate(context.Background())

			if tree.Version() != before {
				t.Error("tree was modified")
			}
			if got := text(t, tree, IDTempInterior); got != "19°C" {
				t.Errorf("tempInterior = %q, want stale 19°C", got)
			}
			if got := text(t, tree, IDConnectionStatus); got != "Online" {
				t.Errorf("connectionStatus = %q, want stale Online", got)
			}
		})
	}
}

func TestRenderUpdate_EmptyPayload(t *testing.T) {
	tree := NewDefaultTree(DefaultSignalBars)
	src := &fakeSource{connected: true, snap: &telemetry.Snapshot{Data: &telemetry.Payload{}}}

	newRenderer(src, tree).RenderUpdate(context.Background())

	if got := text(t, tree, IDTempInterior); got != "--" {
		t.Errorf("tempInterior = %q, want untouched", got)
	}
	if got := text(t, tree, IDBattery); got != "85%" {
		t.Errorf("battery = %q, want default 85%%", got)
	}
}

func TestRenderUpdate_MissingElements(t *testing.T) {
	tree := NewDefaultTree(DefaultSignalBars)
	for _, id := range []string{IDTempInterior, IDGasSensorBar, IDSignalBars, IDStatusIndicator, IDCriticalAlerts} {
		tree.Remove(id)
	}
	src := &fakeSource{snap: snapshot(telemetry.Sensors{
		Temperature: telemetry.Number(45),
		GasLevel:    telemetry.Number(400),
	}, telemetry.System{})}

	newRenderer(src, tree).RenderUpdate(context.Background())

	if got := text(t, tree, IDGasSensor); got != "400 ppm" {
		t.Errorf("gasSensor = %q, want 400 ppm", got)
	}
	if got := text(t, tree, IDConnectionStatus); got != "Offline" {
		t.Errorf("connectionStatus = %q, want Offline", got)
	}
}

func TestRenderUpdate_NonNumericValue(t *testing.T) {
	tree := NewDefaultTree(DefaultSignalBars)
	tree.Update(func(get func(string) *Element) {
		get(IDTempInterior).AddClass("critical")
	})
	src := &fakeSource{snap: snapshot(telemetry.Sensors{
		Temperature: telemetry.Text("n/a"),
	}, telemetry.System{})}

	newRenderer(src, tree).RenderUpdate(context.Background())

	el := tree.Get(IDTempInterior)
	if el.Text != "n/a°C" {
		t.Errorf("text = %q, want n/a°C", el.Text)
	}
	if len(el.Classes) != 0 {
		t.Errorf("classes = %v, want none", el.Classes)
	}
}

func TestRenderUpdate_Alerts(t *testing.T) {
	tests := []struct {
		name    string
		gas     float64
		temp    float64
		visible bool
		want    string
	}{
		{name: "gas alert", gas: 350, temp: 20, visible: true, want: "GAS ALERT"},
		{name: "temperature alert", gas: 50, temp: 45, visible: true, want: "EXTREME TEMPERATURE"},
		{name: "temperature overwrites gas", gas: 350, temp: 45, visible: true, want: "EXTREME TEMPERATURE"},
		{name: "no alert", gas: 50, temp: 20, visible: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewDefaultTree(DefaultSignalBars)
			src := &fakeSource{snap: snapshot(telemetry.Sensors{
				GasLevel:    telemetry.Number(tt.gas),
				Temperature: telemetry.Number(tt.temp),
			}, telemetry.System{})}

			newRenderer(src, tree).RenderUpdate(context.Background())

			banner := tree.Get(IDCriticalAlerts)
			if banner.HasClass(ClassVisible) != tt.visible {
				t.Fatalf("visible = %v, want %v", banner.HasClass(ClassVisible), tt.visible)
			}
			if !tt.visible {
				return
			}
			msg := banner.Children[0].Text
			if !strings.Contains(msg, tt.want) {
				t.Errorf("message = %q, want it to contain %q", msg, tt.want)
			}
			if tt.want == "EXTREME TEMPERATURE" && strings.Contains(msg, "GAS") {
				t.Errorf("message = %q, gas text should have been replaced", msg)
			}
		})
	}
}

func TestRenderUpdate_AlertClearsOnNextPass(t *testing.T) {
	tree := NewDefaultTree(DefaultSignalBars)
	src := &fakeSource{snap: snapshot(telemetry.Sensors{GasLevel: telemetry.Number(500)}, telemetry.System{})}
	r := newRenderer(src, tree)

	r.RenderUpdate(context.Background())
	if !tree.Get(IDCriticalAlerts).HasClass(ClassVisible) {
		t.Fatal("expected visible alert")
	}

	src.mu.Lock()
	src.snap = snapshot(telemetry.Sensors{GasLevel: telemetry.Number(10)}, telemetry.System{})
	src.mu.Unlock()
	r.RenderUpdate(context.Background())
	if tree.Get(IDCriticalAlerts).HasClass(ClassVisible) {
		t.Fatal("alert should be hidden once the condition clears")
	}
}

func TestDismissAlert(t *testing.T) {
	tree := NewDefaultTree(DefaultSignalBars)
	src := &fakeSource{snap: snapshot(telemetry.Sensors{Temperature: telemetry.Number(-5)}, telemetry.System{})}
	r := newRenderer(src, tree)

	r.RenderUpdate(context.Background())
	r.DismissAlert()
	if tree.Get(IDCriticalAlerts).HasClass(ClassVisible) {
		t.Fatal("DismissAlert should hide the banner")
	}

	r.RenderUpdate(context.Background())
	if !tree.Get(IDCriticalAlerts).HasClass(ClassVisible) {
		t.Fatal("the next pass should show the alert again")
	}
}

func TestSignalBars(t *testing.T) {
	for _, n := range []int{1, 4, 5, 8} {
		for _, s := range []float64{0, 10, 33, 50, 74, 75, 99, 100} {
			container := &Element{}
			for i := 0; i < n; i++ {
				container.Children = append(container.Children, &Element{Classes: []string{ClassBar}})
			}
			renderSignalBars(container, s)

			want := status.ActiveBars(s, n)
			for i, bar := range container.Children {
				active := i < want
				if bar.HasClass("active") != active {
					t.Errorf("n=%d s=%v: bar %d active = %v, want %v", n, s, i, !active, active)
				}
				if active {
					if bar.Style["backgroundColor"] != barActiveColor {
						t.Errorf("n=%d s=%v: bar %d color = %q", n, s, i, bar.Style["backgroundColor"])
					}
					if wantH := []string{"10px", "14px", "18px", "22px", "26px", "30px", "34px", "38px"}[i]; bar.Style["height"] != wantH {
						t.Errorf("n=%d s=%v: bar %d height = %q, want %q", n, s, i, bar.Style["height"], wantH)
					}
				} else if bar.Style["height"] != barInactiveH || bar.Style["backgroundColor"] != barInactiveColor {
					t.Errorf("n=%d s=%v: bar %d style = %v, want inactive", n, s, i, bar.Style)
				}
			}
		}
	}
}

func TestApplyStatusClass(t *testing.T) {
	el := &Element{Classes: []string{"card", "warning"}}

	ApplyStatusClass(el, status.Gas, telemetry.Number(301))
	if !reflect.DeepEqual(el.Classes, []string{"card", "critical"}) {
		t.Errorf("classes = %v, want [card critical]", el.Classes)
	}

	ApplyStatusClass(el, status.Other, telemetry.Number(301))
	if !reflect.DeepEqual(el.Classes, []string{"card"}) {
		t.Errorf("classes = %v, want [card]", el.Classes)
	}
}

func TestLabelsFor(t *testing.T) {
	if got := LabelsFor("fr-FR"); got.Online != "En ligne" {
		t.Errorf("LabelsFor(fr-FR).Online = %q", got.Online)
	}
	if got := LabelsFor("de"); got.Online != English.Online {
		t.Errorf("LabelsFor(de).Online = %q, want English", got.Online)
	}
	msg := French.AlertMessage(status.Alert{Kind: status.GasAlert, Value: 350})
	if !strings.Contains(msg, "350 ppm") {
		t.Errorf("French gas alert = %q, want level 350 ppm", msg)
	}
}

func TestRenderUpdate_NumericStringSignal(t *testing.T) {
	tree := NewDefaultTree(DefaultSignalBars)
	src := &fakeSource{snap: snapshot(telemetry.Sensors{}, telemetry.System{
		SignalStrength: telemetry.Text("50"),
	})}

	newRenderer(src, tree).RenderUpdate(context.Background())

	if got := text(t, tree, IDSignal4G); got != "50%" {
		t.Errorf("signal4g = %q, want 50%%", got)
	}
	active := 0
	for _, b := range tree.Get(IDSignalBars).Children {
		if b.HasClass("active") {
			active++
		}
	}
	if active != 2 {
		t.Errorf("lit %d bars for \"50\", want 2", active)
	}
}
