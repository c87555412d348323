package dashboard

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/luki/smarttent/internal/status"
	"github.com/luki/smarttent/internal/telemetry"
)

const (
	DefaultSignalStrength = 75.0
	DefaultBatteryLevel   = 85.0

	barActiveColor   = "#4CAF50"
	barInactiveColor = "#ddd"
	barInactiveH     = "6px"
)

// Source is what the renderer polls. *telemetry.Client satisfies it.
type Source interface {
	FetchSnapshot(ctx context.Context) *telemetry.Snapshot
	Connected() bool
}

// Renderer maps snapshots onto the visual tree.
type Renderer struct {
	source Source
	tree   *Tree
	labels Labels
	logger *slog.Logger
}

func NewRenderer(source Source, tree *Tree, labels Labels, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{source: source, tree: tree, labels: labels, logger: logger}
}

func (r *Renderer) Tree() *Tree { return r.tree }

// RenderUpdate fetches once and redraws every element it has data for. When
// the fetch yields nothing the tree is left as it was, so the last good
// values stay on screen.
func (r *Renderer) RenderUpdate(ctx context.Context) {
	snap := r.source.FetchSnapshot(ctx)
	if snap == nil || snap.Data == nil {
		r.logger.Warn("no data received")
		return
	}

	sensors := snap.Data.Sensors
	if sensors == nil {
		sensors = &telemetry.Sensors{}
	}
	system := snap.Data.System
	if system == nil {
		system = &telemetry.System{}
	}
	r.logger.Debug("updating dashboard",
		"temperature", sensors.Temperature.Raw(),
		"humidity", sensors.Humidity.Raw(),
		"gas_level", sensors.GasLevel.Raw(),
	)

	connected := r.source.Connected()
	signal := system.SignalStrength.Or(telemetry.Number(DefaultSignalStrength))
	alert := status.EvaluateAlert(sensors)

	r.tree.Update(func(get func(string) *Element) {
		// interior
		updateElement(get(IDTempInterior), IDTempInterior, sensors.Temperature, "°C")
		updateElement(get(IDHumidityInterior), IDHumidityInterior, sensors.Humidity, "%")
		updateElement(get(IDGasSensor), IDGasSensor, sensors.GasLevel, " ppm")
		renderGasBar(get(IDGasSensorBar), sensors.GasLevel)
		updateElement(get(IDMotionInterior), IDMotionInterior, telemetry.Text(r.labels.motion(sensors.MotionDetected.Truthy())), "")

		// exterior, falling back to the interior sensor
		updateElement(get(IDTempExterior), IDTempExterior, sensors.TemperatureExt.Or(sensors.Temperature), "°C")
		updateElement(get(IDHumidityExterior), IDHumidityExterior, sensors.HumidityExt.Or(sensors.Humidity), "%")
		updateElement(get(IDWindSpeed), IDWindSpeed, sensors.WindSpeed.Or(telemetry.Number(0)), " km/h")
		updateElement(get(IDMotionExterior), IDMotionExterior, telemetry.Text(r.labels.motion(sensors.MotionExterior.Truthy())), "")

		// system
		updateElement(get(IDSignal4G), IDSignal4G, signal, "%")
		strength, _ := signal.Float()
		renderSignalBars(get(IDSignalBars), strength)
		updateElement(get(IDBattery), IDBattery, system.BatteryLevel.Or(telemetry.Number(DefaultBatteryLevel)), "%")

		renderConnectionStatus(get(IDConnectionStatus), get(IDStatusIndicator), connected, r.labels)
		renderAlert(get(IDCriticalAlerts), r.labels.AlertMessage(alert))
	})

	if ts, ok := snap.Time(); ok {
		r.logger.Info("dashboard updated", "last_update", ts.Format("2006-01-02 15:04:05"))
	}
	if alert.Active() {
		r.logger.Warn("critical alert", "message", r.labels.AlertMessage(alert))
	}
}

// DismissAlert hides the alert banner. The next render pass re-evaluates it.
func (r *Renderer) DismissAlert() {
	r.tree.Update(func(get func(string) *Element) {
		if el := get(IDCriticalAlerts); el != nil {
			el.RemoveClass(ClassVisible)
		}
	})
}

func updateElement(el *Element, id string, v telemetry.Value, suffix string) {
	if el == nil || !v.Present() {
		return
	}
	el.Text = v.String() + suffix
	ApplyStatusClass(el, status.KindOf(id), v)
}

// ApplyStatusClass replaces el's status class with the one for v. Values
// that are not numbers, and kinds without thresholds, end up with none.
func ApplyStatusClass(el *Element, kind status.Kind, v telemetry.Value) {
	el.RemoveClass(status.Classes...)
	f, ok := v.Float()
	if !ok {
		return
	}
	if lvl := status.Classify(kind, f); lvl != status.None {
		el.AddClass(lvl.Class())
	}
}

func renderGasBar(el *Element, v telemetry.Value) {
	if el == nil {
		return
	}
	gas, ok := v.Float()
	if !ok {
		return
	}
	pct, lvl := status.GasFill(gas)
	el.SetStyle("width", strconv.FormatFloat(pct, 'f', -1, 64)+"%")
	switch lvl {
	case status.Critical:
		el.SetClassName("battery-fill", "critical")
	case status.Warning:
		el.SetClassName("battery-fill", "low")
	default:
		el.SetClassName("battery-fill")
	}
}

func renderSignalBars(container *Element, strength float64) {
	if container == nil {
		return
	}
	bars := container.ChildrenWithClass(ClassBar)
	active := status.ActiveBars(strength, len(bars))
	for i, bar := range bars {
		if i < active {
			bar.SetStyle("backgroundColor", barActiveColor)
			bar.SetStyle("height", strconv.Itoa(10+i*4)+"px")
			bar.AddClass("active")
		} else {
			bar.SetStyle("backgroundColor", barInactiveColor)
			bar.SetStyle("height", barInactiveH)
			bar.RemoveClass("active")
		}
	}
}

func renderConnectionStatus(label, indicator *Element, online bool, labels Labels) {
	state := "offline"
	if online {
		state = "online"
	}
	if label != nil {
		label.Text = labels.connection(online)
		label.SetClassName("status-indicator", state)
	}
	if indicator != nil {
		indicator.SetClassName(state)
	}
}

func renderAlert(banner *Element, message string) {
	if banner == nil {
		return
	}
	if message == "" {
		banner.RemoveClass(ClassVisible)
		return
	}
	banner.AddClass(ClassVisible)
	if slots := banner.ChildrenWithClass(ClassAlertMessage); len(slots) > 0 {
		slots[0].Text = message
	}
}
