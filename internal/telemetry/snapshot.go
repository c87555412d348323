// Package telemetry provides the smart-tent API client: snapshot polling,
// connectivity tracking, and reading submission.
package telemetry

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Snapshot is one polled payload as served by GET /api/data/{device}.
type Snapshot struct {
	Timestamp string   `json:"timestamp,omitempty"` // ISO-8601, zone optional
	Data      *Payload `json:"data,omitempty"`
}

// Payload is the device body stored by the relay.
type Payload struct {
	DeviceID Value    `json:"device_id"`
	Sensors  *Sensors `json:"sensors,omitempty"`
	System   *System  `json:"system,omitempty"`
}

// UnmarshalJSON decodes a snapshot without letting one badly typed member
// reject the rest. A non-string timestamp is dropped and a non-object data
// counts as missing.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var raw struct {
		Timestamp json.RawMessage `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = Snapshot{}
	_ = json.Unmarshal(raw.Timestamp, &s.Timestamp)
	if isObject(raw.Data) {
		var p Payload
		if err := json.Unmarshal(raw.Data, &p); err != nil {
			return err
		}
		s.Data = &p
	}
	return nil
}

// UnmarshalJSON decodes sensors and system leniently: a member that is not an
// object decodes as an empty one, so the other member still renders.
func (p *Payload) UnmarshalJSON(b []byte) error {
	var raw struct {
		DeviceID Value           `json:"device_id"`
		Sensors  json.RawMessage `json:"sensors"`
		System   json.RawMessage `json:"system"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Payload{DeviceID: raw.DeviceID}
	if raw.Sensors != nil {
		p.Sensors = &Sensors{}
		if isObject(raw.Sensors) {
			if err := json.Unmarshal(raw.Sensors, p.Sensors); err != nil {
				return err
			}
		}
	}
	if raw.System != nil {
		p.System = &System{}
		if isObject(raw.System) {
			if err := json.Unmarshal(raw.System, p.System); err != nil {
				return err
			}
		}
	}
	return nil
}

func isObject(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

// Sensors holds the environmental readings. Every field may be absent.
type Sensors struct {
	Temperature    Value `json:"temperature"`
	Humidity       Value `json:"humidity"`
	GasLevel       Value `json:"gas_level"`
	TemperatureExt Value `json:"temperature_ext"`
	HumidityExt    Value `json:"humidity_ext"`
	WindSpeed      Value `json:"wind_speed"`
	MotionDetected Value `json:"motion_detected"`
	MotionExterior Value `json:"motion_exterior"`
}

// System holds device health readings.
type System struct {
	SignalStrength Value `json:"signal_strength"`
	BatteryLevel   Value `json:"battery_level"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Time parses the snapshot timestamp. Zoneless timestamps are read as local time.
func (s *Snapshot) Time() (time.Time, bool) {
	if s == nil || s.Timestamp == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s.Timestamp, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Value is a loosely typed JSON field. Devices are not strict about types,
// so a reading may arrive as a number, a boolean, a string, or not at all.
type Value struct {
	v   any
	set bool
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{v: f, set: true} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{v: b, set: true} }

// Text returns a string Value.
func Text(s string) Value { return Value{v: s, set: true} }

// Present reports whether the field was sent with a non-null value.
func (v Value) Present() bool { return v.set }

// Float returns the value if it is a JSON number or a string holding a
// finite decimal number, such as "80".
func (v Value) Float() (float64, bool) {
	if !v.set {
		return 0, false
	}
	switch x := v.v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Truthy reports whether the value counts as "on": true, non-zero, or a
// non-empty string.
func (v Value) Truthy() bool {
	if !v.set {
		return false
	}
	switch x := v.v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

// Raw returns the decoded value, or nil when absent.
func (v Value) Raw() any {
	if !v.set {
		return nil
	}
	return v.v
}

// Or returns v when present, otherwise fallback.
func (v Value) Or(fallback Value) Value {
	if v.set {
		return v
	}
	return fallback
}

func (v Value) String() string {
	if !v.set {
		return ""
	}
	switch x := v.v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*v = Value{}
		return nil
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	*v = Value{v: x, set: true}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}
