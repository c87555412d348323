package status

import "github.com/luki/smarttent/internal/telemetry"

const (
	AlertGasAbove  = 300.0
	AlertTempBelow = 0.0
	AlertTempAbove = 40.0
)

// AlertKind identifies which condition owns the alert banner.
type AlertKind int

const (
	NoAlert AlertKind = iota
	GasAlert
	TemperatureAlert
)

// Alert is the single-slot banner state for one render pass.
type Alert struct {
	Kind  AlertKind
	Value float64 // reading that triggered Kind
}

func (a Alert) Active() bool { return a.Kind != NoAlert }

// EvaluateAlert checks the raw readings in order: gas first, then
// temperature. The banner has one slot, so when both fire the temperature
// alert replaces the gas alert. Absent or non-numeric readings never fire.
func EvaluateAlert(s *telemetry.Sensors) Alert {
	var a Alert
	if s == nil {
		return a
	}
	if gas, ok := s.GasLevel.Float(); ok && gas > AlertGasAbove {
		a = Alert{Kind: GasAlert, Value: gas}
	}
	if temp, ok := s.Temperature.Float(); ok && (temp < AlertTempBelow || temp > AlertTempAbove) {
		a = Alert{Kind: TemperatureAlert, Value: temp}
	}
	return a
}
