// Package status turns raw sensor values into display decisions: status
// levels, gas bar fill, signal bar counts and the critical alert. Nothing
// here touches the visual tree.
package status

import (
	"math"
	"strings"
)

// Level is the visual status of a reading.
type Level int

const (
	None Level = iota // not classified
	Normal
	Warning
	Critical
)

// Class returns the CSS-style class name for the level.
func (l Level) Class() string {
	switch l {
	case Normal:
		return "normal"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return ""
	}
}

func (l Level) String() string {
	if l == None {
		return "none"
	}
	return l.Class()
}

// Classes lists every class a Level can produce, for removal.
var Classes = []string{"normal", "warning", "critical"}

// Kind is the semantic family of a field, which selects its thresholds.
type Kind int

const (
	Other Kind = iota
	Temperature
	Gas
	Humidity
)

// KindOf derives the field kind from an element id, e.g. "tempExterior"
// is a temperature and "gasSensor" is a gas reading.
func KindOf(id string) Kind {
	switch {
	case strings.Contains(id, "temp"):
		return Temperature
	case strings.Contains(id, "gas"):
		return Gas
	case strings.Contains(id, "humidity"):
		return Humidity
	default:
		return Other
	}
}

const (
	TempCriticalLow  = 5.0
	TempCriticalHigh = 35.0
	TempWarningLow   = 10.0
	TempWarningHigh  = 30.0

	GasCritical = 300.0
	GasWarning  = 200.0
	GasCeiling  = 500.0 // full gas bar

	HumidityWarning = 85.0
)

// Classify maps a value of the given kind onto a Level. Kinds without a
// threshold table yield None.
func Classify(kind Kind, v float64) Level {
	switch kind {
	case Temperature:
		switch {
		case v < TempCriticalLow || v > TempCriticalHigh:
			return Critical
		case v < TempWarningLow || v > TempWarningHigh:
			return Warning
		default:
			return Normal
		}
	case Gas:
		return gasLevel(v)
	case Humidity:
		if v > HumidityWarning {
			return Warning
		}
		return Normal
	default:
		return None
	}
}

func gasLevel(v float64) Level {
	switch {
	case v > GasCritical:
		return Critical
	case v > GasWarning:
		return Warning
	default:
		return Normal
	}
}

// GasFill returns the gas bar width in percent of GasCeiling, capped at 100,
// and the bar's level.
func GasFill(v float64) (float64, Level) {
	return math.Min(v/GasCeiling*100, 100), gasLevel(v)
}

// ActiveBars returns how many of n signal bars light up for a strength in
// percent: ceil(strength/100*n), kept within [0, n].
func ActiveBars(strength float64, n int) int {
	if n <= 0 || math.IsNaN(strength) {
		return 0
	}
	active := int(math.Ceil(strength / 100 * float64(n)))
	if active < 0 {
		return 0
	}
	if active > n {
		return n
	}
	return active
}
