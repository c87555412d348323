package dashboard

import (
	"fmt"
	"strings"

	"github.com/luki/smarttent/internal/status"
)

// Labels are the user-facing strings of the dashboard.
type Labels struct {
	MotionDetected string
	MotionNone     string
	Online         string
	Offline        string
	GasAlert       string // fmt verb: gas level
	TempAlert      string // fmt verb: temperature
}

var (
	English = Labels{
		MotionDetected: "DETECTED",
		MotionNone:     "none",
		Online:         "Online",
		Offline:        "Offline",
		GasAlert:       "⚠️ GAS ALERT! Level detected: %v ppm - Ventilate immediately",
		TempAlert:      "🌡️ EXTREME TEMPERATURE! %v°C - Check conditions",
	}

	French = Labels{
		MotionDetected: "DÉTECTÉ",
		MotionNone:     "Aucun",
		Online:         "En ligne",
		Offline:        "Hors ligne",
		GasAlert:       "⚠️ ALERTE GAZ! Niveau détecté: %v ppm - Ventilez immédiatement",
		TempAlert:      "🌡️ TEMPÉRATURE EXTRÊME! %v°C - Vérifiez les conditions",
	}
)

// LabelsFor returns the label set for a locale tag such as "fr" or "en-GB".
// Unknown locales get English.
func LabelsFor(locale string) Labels {
	lang, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(locale)), "-")
	if lang == "fr" {
		return French
	}
	return English
}

// AlertMessage formats the banner text for an alert; empty when inactive.
func (l Labels) AlertMessage(a status.Alert) string {
	switch a.Kind {
	case status.GasAlert:
		return fmt.Sprintf(l.GasAlert, a.Value)
	case status.TemperatureAlert:
		return fmt.Sprintf(l.TempAlert, a.Value)
	default:
		return ""
	}
}

func (l Labels) motion(on bool) string {
	if on {
		return l.MotionDetected
	}
	return l.MotionNone
}

func (l Labels) connection(online bool) string {
	if online {
		return l.Online
	}
	return l.Offline
}
